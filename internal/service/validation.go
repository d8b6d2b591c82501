package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"sharedepot/internal/models"
)

const (
	maxTitleLen       = 255
	maxContentLen     = 50000
	maxCommentLen     = 2000
	minNicknameLen    = 2
	maxNicknameLen    = 20
	minPasswordLen    = 4
	maxPasswordLen    = 72
	maxEmailLen       = 254
	maxImageRefLength = 512
)

func validateEmail(email string) error {
	if email == "" {
		return models.NewValidationError("Email is required")
	}
	if len(email) > maxEmailLen {
		return models.NewValidationError("Email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return models.NewValidationError("Email format is invalid")
	}
	return nil
}

func validateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n < minNicknameLen || n > maxNicknameLen {
		return models.NewValidationError(fmt.Sprintf("Nickname must be %d to %d characters", minNicknameLen, maxNicknameLen))
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return models.NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}
	// bcrypt rejects inputs longer than 72 bytes.
	if len(password) > maxPasswordLen {
		return models.NewValidationError(fmt.Sprintf("Password must be at most %d bytes", maxPasswordLen))
	}
	return nil
}

func validatePostFields(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", maxContentLen))
	}
	return nil
}

func validateComment(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLen))
	}
	return nil
}

func validateImageRef(ref string) error {
	if len(ref) > maxImageRefLength {
		return models.NewValidationError("Image reference is too long")
	}
	return nil
}
