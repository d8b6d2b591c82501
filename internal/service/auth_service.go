package service

import (
	"context"
	"errors"
	"strings"

	"sharedepot/internal/auth"
	"sharedepot/internal/content"
	"sharedepot/internal/models"
	"sharedepot/internal/repository"

	"gorm.io/gorm"
)

type AuthService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	codec *auth.Codec
}

type SignupInput struct {
	Email        string
	Password     string
	Nickname     string
	ProfileImage string
}

// LoginResult is a freshly issued token and the user it identifies.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewAuthService(repos repository.Repositories, uow repository.UnitOfWork, codec *auth.Codec) *AuthService {
	return &AuthService{repos: repos, uow: uow, codec: codec}
}

// Signup registers a new account. Email uniqueness is checked before
// nickname uniqueness, so a request colliding on both reports the email.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	nickname := content.PlainText(in.Nickname)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validateNickname(nickname); err != nil {
		return nil, err
	}
	if err := validateImageRef(in.ProfileImage); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:        email,
		Nickname:     nickname,
		Password:     hashed,
		ProfileImage: in.ProfileImage,
	}
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := checkIdentityFree(ctx, repos.Users, email, nickname); err != nil {
			return err
		}
		return repos.Users.Create(ctx, user)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent signup; report whichever field is now taken.
		if err := checkIdentityFree(ctx, s.repos.Users, email, nickname); err != nil {
			return nil, err
		}
		return nil, models.NewConflictError(models.CodeEmailExists, "Email is already registered")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	invalid := models.NewInvalidCredentialError(models.CodeInvalidCredentials, "Invalid email or password")

	user, err := s.repos.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	ok, err := auth.CheckPassword(user.Password, password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !ok {
		return nil, invalid
	}

	token, err := s.codec.Issue(user.Email, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

func checkIdentityFree(ctx context.Context, users repository.UserRepository, email, nickname string) error {
	taken, err := users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return models.NewConflictError(models.CodeEmailExists, "Email is already registered")
	}
	taken, err = users.ExistsByNickname(ctx, nickname)
	if err != nil {
		return err
	}
	if taken {
		return models.NewConflictError(models.CodeNicknameExists, "Nickname is already in use")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
