package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorKind groups error codes into the categories callers branch on.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInvalidCredential ErrorKind = "INVALID_CREDENTIAL"
	KindAuthorization     ErrorKind = "AUTHORIZATION"
	KindConflict          ErrorKind = "CONFLICT"
	KindValidation        ErrorKind = "VALIDATION"
	KindInternal          ErrorKind = "INTERNAL"
)

// Stable machine-readable codes returned to clients.
const (
	CodeEntityNotFound  = "ENTITY_NOT_FOUND"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodePostNotFound    = "POST_NOT_FOUND"
	CodeCommentNotFound = "COMMENT_NOT_FOUND"
	CodeFileNotFound    = "FILE_NOT_FOUND"

	CodeEmailExists    = "EMAIL_ALREADY_EXISTS"
	CodeNicknameExists = "NICKNAME_ALREADY_EXISTS"
	CodeLikeExists     = "LIKE_ALREADY_EXISTS"

	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeInvalidCurrentPassword = "INVALID_CURRENT_PASSWORD"
	CodeTokenExpired           = "TOKEN_EXPIRED"
	CodeTokenInvalid           = "TOKEN_INVALID"
	CodeTokenMissing           = "TOKEN_MISSING"

	CodeUnauthorizedAction = "UNAUTHORIZED_ACTION"

	CodeInvalidInput            = "INVALID_INPUT"
	CodePasswordConfirmMismatch = "PASSWORD_CONFIRM_MISMATCH"
	CodeInvalidFileFormat       = "INVALID_FILE_FORMAT"
	CodeFileTooLarge            = "FILE_TOO_LARGE"

	CodeFileUploadFailed = "FILE_UPLOAD_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError carrying the same code, so sentinel values
// work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	code := CodeEntityNotFound
	switch resource {
	case "User":
		code = CodeUserNotFound
	case "Post":
		code = CodePostNotFound
	case "Comment":
		code = CodeCommentNotFound
	case "File":
		code = CodeFileNotFound
	}
	return &AppError{
		Kind:    KindNotFound,
		Code:    code,
		Message: fmt.Sprintf("%s %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return NewValidationErrorWithCode(CodeInvalidInput, message)
}

func NewValidationErrorWithCode(code, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
	}
}

func NewInvalidCredentialError(code, message string) *AppError {
	return &AppError{
		Kind:    KindInvalidCredential,
		Code:    code,
		Message: message,
	}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Kind:    KindAuthorization,
		Code:    CodeUnauthorizedAction,
		Message: message,
	}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Code:    code,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrLikeExists is returned by storage when a (user, post) like is already present.
var ErrLikeExists = NewConflictError(CodeLikeExists, "like already exists")

// KindOf reports the kind of err, treating anything that is not an AppError as internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// StatusFor maps an error onto the HTTP status reported to clients.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch KindOf(err) {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInvalidCredential:
		return fiber.StatusUnauthorized
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	case KindValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes the standardized error body. Internal causes are
// never echoed to the client.
func RespondWithError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)

	var response ErrorResponse
	var appErr *AppError
	var fe *fiber.Error
	switch {
	case errors.As(err, &appErr) && appErr.Kind != KindInternal:
		response = ErrorResponse{Error: appErr.Message, Code: appErr.Code}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	case errors.As(err, &fe):
		response = ErrorResponse{Error: fe.Message}
	default:
		response = ErrorResponse{Error: "Internal server error", Code: CodeInternal}
	}

	return c.Status(status).JSON(response)
}
