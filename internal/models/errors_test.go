package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFoundError("Post", 10), fiber.StatusNotFound},
		{"invalid credential", NewInvalidCredentialError(CodeTokenInvalid, "bad token"), fiber.StatusUnauthorized},
		{"authorization", NewAuthorizationError("not yours"), fiber.StatusForbidden},
		{"conflict", NewConflictError(CodeEmailExists, "taken"), fiber.StatusConflict},
		{"validation", NewValidationError("title is required"), fiber.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("delete: %w", NewNotFoundError("User", 1)), fiber.StatusNotFound},
		{"fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), fiber.StatusMethodNotAllowed},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestNewNotFoundError_Codes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CodeUserNotFound, NewNotFoundError("User", 1).Code)
	assert.Equal(t, CodePostNotFound, NewNotFoundError("Post", 1).Code)
	assert.Equal(t, CodeCommentNotFound, NewNotFoundError("Comment", 1).Code)
	assert.Equal(t, CodeFileNotFound, NewNotFoundError("File", "a.png").Code)
	assert.Equal(t, CodeEntityNotFound, NewNotFoundError("Widget", 1).Code)
}

func TestAppError_IsMatchesCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("insert like: %w", NewConflictError(CodeLikeExists, "duplicate"))
	assert.True(t, errors.Is(err, ErrLikeExists))
	assert.False(t, errors.Is(NewConflictError(CodeEmailExists, "dup"), ErrLikeExists))
	assert.True(t, IsKind(err, KindConflict))
	assert.Equal(t, KindInternal, KindOf(errors.New("raw")))
}

func TestDuplicateEmailAndNicknameCodesDiffer(t *testing.T) {
	t.Parallel()

	email := NewConflictError(CodeEmailExists, "email taken")
	nickname := NewConflictError(CodeNicknameExists, "nickname taken")
	assert.Equal(t, email.Kind, nickname.Kind)
	assert.NotEqual(t, email.Code, nickname.Code)
}

func TestRespondWithError_HidesInternalCause(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithError(c, NewInternalError(errors.New("pq: password authentication failed")))
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return RespondWithError(c, NewNotFoundError("Post", 7))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "password authentication")
	var payload ErrorResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, CodeInternal, payload.Code)

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, CodePostNotFound, payload.Code)
	assert.Equal(t, "Post 7 not found", payload.Error)
}

func TestNewPostPage(t *testing.T) {
	t.Parallel()

	posts := []Post{
		{ID: 2, Title: "b", User: User{Nickname: "kim"}, Views: 3, LikesCount: 1},
		{ID: 1, Title: "a", User: User{Nickname: "lee"}},
	}
	page := NewPostPage(posts, 21, 2, 10)

	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, int64(21), page.TotalCount)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "kim", page.Posts[0].Author)
	assert.Equal(t, int64(1), page.Posts[0].Likes)
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.size), "total=%d size=%d", tt.total, tt.size)
	}
}

func TestNewCommentPage(t *testing.T) {
	t.Parallel()

	page := NewCommentPage(nil, 0, 1, 10)
	assert.NotNil(t, page.Comments)
	assert.Zero(t, page.TotalPages)

	page = NewCommentPage([]Comment{{ID: 4}}, 21, 3, 10)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.CurrentPage)
}
