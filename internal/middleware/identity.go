// Package middleware holds the Fiber middleware shared by all routes.
package middleware

import (
	"errors"
	"log/slog"

	"sharedepot/internal/auth"
	"sharedepot/internal/models"
	"sharedepot/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const (
	localsIdentity   = "identity"
	localsCredential = "credentialState"
	localsUserID     = "userID"
)

// ResolveIdentity runs once per request and publishes the caller's identity
// when the bearer token verifies and its user still exists. It never rejects
// a request; protected routes add RequireIdentity.
func ResolveIdentity(resolver *auth.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id, state, err := resolver.Resolve(ctx, c.Get(fiber.HeaderAuthorization))
		c.Locals(localsCredential, state)

		switch {
		case state == auth.CredentialAccepted:
			c.Locals(localsIdentity, id)
			c.Locals(localsUserID, id.UserID)
			c.SetUserContext(auth.WithIdentity(ctx, id))
		case err != nil:
			observability.CredentialRejections.WithLabelValues(state.String()).Inc()
			if models.KindOf(err) == models.KindInternal {
				Logger.ErrorContext(ctx, "identity lookup failed", slog.String("error", err.Error()))
			} else {
				Logger.DebugContext(ctx, "credential ignored",
					slog.String("state", state.String()),
					slog.String("reason", err.Error()),
				)
			}
		}

		return c.Next()
	}
}

// RequireIdentity rejects requests without a resolved identity. The error
// code says whether the credential was missing, expired or invalid. When the
// user store failed the caller gets a 500 and keeps its token.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFrom(c); ok {
			return c.Next()
		}

		state, _ := c.Locals(localsCredential).(auth.CredentialState)
		switch state {
		case auth.CredentialExpired:
			return models.RespondWithError(c, models.NewInvalidCredentialError(models.CodeTokenExpired, "Token has expired"))
		case auth.CredentialInvalid:
			return models.RespondWithError(c, models.NewInvalidCredentialError(models.CodeTokenInvalid, "Invalid token"))
		case auth.CredentialUnverifiable:
			return models.RespondWithError(c, models.NewInternalError(errors.New("identity lookup failed")))
		default:
			return models.RespondWithError(c, models.NewInvalidCredentialError(models.CodeTokenMissing, "Authentication required"))
		}
	}
}

// IdentityFrom returns the identity resolved for this request, if any.
func IdentityFrom(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(localsIdentity).(auth.Identity)
	return id, ok
}
