package server

import (
	"log/slog"
	"strings"

	"sharedepot/internal/auth"
	"sharedepot/internal/middleware"
	"sharedepot/internal/models"
	"sharedepot/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a route parameter by name as a positive uint.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid " + humanizeParam(param))
	}
	return uint(id), nil
}

// humanizeParam turns "postId" into "post ID" and "id" into "ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	return strings.ToLower(strings.TrimSuffix(param, "Id")) + " ID"
}

// parsePage reads the 1-based page and size query parameters.
func parsePage(c *fiber.Ctx) service.Page {
	return service.NewPage(c.QueryInt("page", 1), c.QueryInt("size", 0))
}

// parseBody decodes the JSON body into dest.
func parseBody(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// identity returns the caller resolved for this request. Routes behind
// RequireIdentity always have one.
func identity(c *fiber.Ctx) auth.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

// respondError logs unexpected failures and writes the error envelope.
func respondError(c *fiber.Ctx, err error) error {
	if models.KindOf(err) == models.KindInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, err)
}
