// Package service implements the application's use cases on top of the
// repositories.
package service

import (
	"context"

	"sharedepot/internal/models"
	"sharedepot/internal/repository"
)

// AssertOwner fails with an authorization error unless actingID is ownerID.
func AssertOwner(ownerID, actingID uint) error {
	if ownerID != actingID {
		return models.NewAuthorizationError("You can only modify your own content")
	}
	return nil
}

// actor resolves the acting user from the identity's email.
func actor(ctx context.Context, users repository.UserRepository, email string) (*models.User, error) {
	if email == "" {
		return nil, models.NewInvalidCredentialError(models.CodeTokenMissing, "Authentication required")
	}
	return users.GetByEmail(ctx, email)
}
