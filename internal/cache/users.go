package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sharedepot/internal/models"
)

// UserKey returns the cache key for a user by id.
func UserKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// UserEmailKey returns the cache key for a user by email.
func UserEmailKey(email string) string {
	return "user:email:" + strings.ToLower(email)
}

// UserLoader is the uncached user source.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Users caches user lookups. Cached users never carry a password hash, so
// callers that verify passwords must read the store directly.
type Users struct {
	cache *Cache
	users UserLoader
	ttl   time.Duration
}

// NewUsers wraps loader with cache-aside lookups.
func NewUsers(c *Cache, loader UserLoader, ttl time.Duration) *Users {
	return &Users{cache: c, users: loader, ttl: ttl}
}

func (u *Users) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return Aside(ctx, u.cache, UserKey(id), u.ttl, func() (*models.User, error) {
		return u.users.GetByID(ctx, id)
	})
}

func (u *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return Aside(ctx, u.cache, UserEmailKey(email), u.ttl, func() (*models.User, error) {
		return u.users.GetByEmail(ctx, email)
	})
}

// Forget drops every cached entry for user.
func (u *Users) Forget(ctx context.Context, user *models.User) {
	u.cache.Invalidate(ctx, UserKey(user.ID), UserEmailKey(user.Email))
}
