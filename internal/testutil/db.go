// Package testutil provides shared fixtures for tests that need a real database.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"sharedepot/internal/database"
	"sharedepot/internal/middleware"
	"sharedepot/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns a migrated in-memory SQLite database with foreign keys
// enforced. It uses a single connection so every query sees the same memory
// database, which also means nested use of the pool inside a transaction
// would block.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:?_foreign_keys=on"), database.NewGormLogger(middleware.Logger, logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, nickname string) *models.User {
	t.Helper()
	u := &models.User{
		Email:    fmt.Sprintf("%s@example.com", nickname),
		Nickname: nickname,
		Password: "$2a$10$placeholderplaceholderplaceholderplaceholderplaceho",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post owned by author.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, title string) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Content: title + " body", UserID: author.ID}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreatePostAt inserts a post with an explicit creation time.
func CreatePostAt(t *testing.T, db *gorm.DB, author *models.User, title string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Content: title + " body", UserID: author.ID, CreatedAt: at}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateComment inserts a comment by author on post.
func CreateComment(t *testing.T, db *gorm.DB, author *models.User, post *models.Post, content string) *models.Comment {
	t.Helper()
	c := &models.Comment{Content: content, UserID: author.ID, PostID: post.ID}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateLike inserts a like by user on post.
func CreateLike(t *testing.T, db *gorm.DB, user *models.User, post *models.Post) *models.Like {
	t.Helper()
	l := &models.Like{UserID: user.ID, PostID: post.ID}
	require.NoError(t, db.Create(l).Error)
	return l
}

// Count returns the number of rows of model matching the optional condition.
func Count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
