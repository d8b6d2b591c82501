package service

import (
	"context"

	"sharedepot/internal/auth"
	"sharedepot/internal/content"
	"sharedepot/internal/models"
	"sharedepot/internal/repository"
)

// UserCache serves profile reads and forgets users whose profile changed.
type UserCache interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Forget(ctx context.Context, user *models.User)
}

type UserService struct {
	repos   repository.Repositories
	uow     repository.UnitOfWork
	cache   UserCache
	cascade *Cascade
}

// UpdateProfileInput carries optional profile changes. Nil fields are left alone.
type UpdateProfileInput struct {
	Nickname     *string
	ProfileImage *string
}

type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	NewPasswordConfirm string
}

func NewUserService(repos repository.Repositories, uow repository.UnitOfWork, cache UserCache, cascade *Cascade) *UserService {
	return &UserService{repos: repos, uow: uow, cache: cache, cascade: cascade}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.cache.GetByID(ctx, id)
}

// GetMe returns the profile of the authenticated user.
func (s *UserService) GetMe(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, models.NewInvalidCredentialError(models.CodeTokenMissing, "Authentication required")
	}
	return s.cache.GetByEmail(ctx, email)
}

func (s *UserService) UpdateProfile(ctx context.Context, email string, in UpdateProfileInput) (*models.User, error) {
	var before *models.User
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := actor(ctx, repos.Users, email)
		if err != nil {
			return err
		}
		before = user

		nickname := user.Nickname
		if in.Nickname != nil {
			nickname = content.PlainText(*in.Nickname)
			if err := validateNickname(nickname); err != nil {
				return err
			}
		}
		if nickname != user.Nickname {
			taken, err := repos.Users.ExistsByNickname(ctx, nickname)
			if err != nil {
				return err
			}
			if taken {
				return models.NewConflictError(models.CodeNicknameExists, "Nickname is already in use")
			}
		}

		profileImage := user.ProfileImage
		if in.ProfileImage != nil {
			profileImage = *in.ProfileImage
			if err := validateImageRef(profileImage); err != nil {
				return err
			}
		}

		return repos.Users.UpdateProfile(ctx, user.ID, nickname, profileImage)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Forget(ctx, before)
	return s.repos.Users.GetByID(ctx, before.ID)
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, email string, in ChangePasswordInput) error {
	if err := validatePassword(in.NewPassword); err != nil {
		return err
	}
	if in.NewPassword != in.NewPasswordConfirm {
		return models.NewValidationErrorWithCode(models.CodePasswordConfirmMismatch, "New password confirmation does not match")
	}

	return s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := actor(ctx, repos.Users, email)
		if err != nil {
			return err
		}
		ok, err := auth.CheckPassword(user.Password, in.CurrentPassword)
		if err != nil {
			return models.NewInternalError(err)
		}
		if !ok {
			return models.NewInvalidCredentialError(models.CodeInvalidCurrentPassword, "Current password is incorrect")
		}
		hashed, err := auth.HashPassword(in.NewPassword)
		if err != nil {
			return models.NewInternalError(err)
		}
		return repos.Users.UpdatePassword(ctx, user.ID, hashed)
	})
}

// Withdraw deletes the account of email's user and everything it owns.
func (s *UserService) Withdraw(ctx context.Context, email string) error {
	if email == "" {
		return models.NewInvalidCredentialError(models.CodeTokenMissing, "Authentication required")
	}
	return s.cascade.WithdrawUser(ctx, email)
}
