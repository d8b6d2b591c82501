package auth

import (
	"context"
	"errors"
	"strings"

	"sharedepot/internal/models"
)

// Identity is the authenticated caller of a single request.
type Identity struct {
	UserID uint
	Email  string
}

// CredentialState records what happened to the credential a request carried.
type CredentialState int

const (
	// CredentialAbsent means no Authorization header was sent.
	CredentialAbsent CredentialState = iota
	// CredentialAccepted means the token verified and its user exists.
	CredentialAccepted
	// CredentialInvalid means a credential was sent but could not be used.
	CredentialInvalid
	// CredentialExpired means a well-signed token was sent after its expiry.
	CredentialExpired
	// CredentialUnverifiable means the token verified but the user store
	// could not be asked whether its subject still exists.
	CredentialUnverifiable
)

func (s CredentialState) String() string {
	switch s {
	case CredentialAbsent:
		return "absent"
	case CredentialAccepted:
		return "accepted"
	case CredentialExpired:
		return "expired"
	case CredentialUnverifiable:
		return "unverifiable"
	default:
		return "invalid"
	}
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// UserLookup finds users by their unique email.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Resolver turns raw Authorization header values into identities.
type Resolver struct {
	codec *Codec
	users UserLookup
}

// NewResolver creates a Resolver backed by codec and the user store.
func NewResolver(codec *Codec, users UserLookup) *Resolver {
	return &Resolver{codec: codec, users: users}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Resolve returns the identity for header. A missing header yields
// CredentialAbsent and no error. A rejected credential yields its state and
// the reason; callers decide whether that matters. A store failure yields
// CredentialUnverifiable with an internal error, never CredentialInvalid.
func (r *Resolver) Resolve(ctx context.Context, header string) (Identity, CredentialState, error) {
	if strings.TrimSpace(header) == "" {
		return Identity{}, CredentialAbsent, nil
	}

	raw, ok := BearerToken(header)
	if !ok {
		return Identity{}, CredentialInvalid, models.NewInvalidCredentialError(models.CodeTokenInvalid, "authorization header must use the Bearer scheme")
	}

	claims, err := r.codec.Verify(raw)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeTokenExpired {
			return Identity{}, CredentialExpired, err
		}
		return Identity{}, CredentialInvalid, err
	}

	user, err := r.users.GetByEmail(ctx, claims.Email())
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return Identity{}, CredentialInvalid, err
		}
		return Identity{}, CredentialUnverifiable, models.NewInternalError(err)
	}
	// A withdrawn account whose email was later reused must not inherit old tokens.
	if user.ID != claims.UserID {
		return Identity{}, CredentialInvalid, models.NewInvalidCredentialError(models.CodeTokenInvalid, "token user no longer matches account")
	}

	return Identity{UserID: user.ID, Email: user.Email}, CredentialAccepted, nil
}
