package service

import (
	"context"
	"testing"
	"time"

	"sharedepot/internal/cache"
	"sharedepot/internal/models"
	"sharedepot/internal/repository"
	"sharedepot/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type userFixture struct {
	db    *gorm.DB
	users *UserService
	auth  *AuthService
	redis *miniredis.Miniredis
}

func newUserFixture(t *testing.T) userFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repos := repository.NewRepositories(db)
	uow := repository.NewUnitOfWork(db)
	cached := cache.NewUsers(cache.New(client), repos.Users, time.Minute)
	cascade := NewCascade(uow, cached)
	return userFixture{
		db:    db,
		users: NewUserService(repos, uow, cached, cascade),
		auth:  NewAuthService(repos, uow, newTestCodec(t)),
		redis: mr,
	}
}

func TestUserProfileIsCachedAndRefreshed(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice")
	testutil.CreateUser(t, f.db, "bob")

	got, err := f.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Nickname)
	assert.True(t, f.redis.Exists(cache.UserKey(alice.ID)))

	got, err = f.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Nickname)
	assert.Empty(t, got.Password, "cached profiles never carry the hash")

	me, err := f.users.GetMe(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, me.ID)

	nickname := "alicia"
	updated, err := f.users.UpdateProfile(ctx, alice.Email, UpdateProfileInput{Nickname: &nickname})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Nickname)
	assert.False(t, f.redis.Exists(cache.UserKey(alice.ID)))

	got, err = f.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Nickname)

	taken := "bob"
	_, err = f.users.UpdateProfile(ctx, alice.Email, UpdateProfileInput{Nickname: &taken})
	assertAppError(t, err, models.CodeNicknameExists)

	image := "/api/files/profile/x.png"
	updated, err = f.users.UpdateProfile(ctx, alice.Email, UpdateProfileInput{ProfileImage: &image})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Nickname)
	assert.Equal(t, image, updated.ProfileImage)

	_, err = f.users.GetUser(ctx, 9999)
	assertAppError(t, err, models.CodeUserNotFound)

	_, err = f.users.GetMe(ctx, "")
	assertAppError(t, err, models.CodeTokenMissing)
}

func TestChangePassword(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	_, err := f.auth.Signup(ctx, SignupInput{Email: "alice@example.com", Password: "secret", Nickname: "alice"})
	require.NoError(t, err)

	err = f.users.ChangePassword(ctx, "alice@example.com", ChangePasswordInput{
		CurrentPassword: "wrong", NewPassword: "newsecret", NewPasswordConfirm: "newsecret",
	})
	assertAppError(t, err, models.CodeInvalidCurrentPassword)

	err = f.users.ChangePassword(ctx, "alice@example.com", ChangePasswordInput{
		CurrentPassword: "secret", NewPassword: "newsecret", NewPasswordConfirm: "different",
	})
	assertAppError(t, err, models.CodePasswordConfirmMismatch)

	err = f.users.ChangePassword(ctx, "alice@example.com", ChangePasswordInput{
		CurrentPassword: "secret", NewPassword: "newsecret", NewPasswordConfirm: "newsecret",
	})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, "alice@example.com", "secret")
	assertAppError(t, err, models.CodeInvalidCredentials)
	_, err = f.auth.Login(ctx, "alice@example.com", "newsecret")
	require.NoError(t, err)
}

func TestWithdrawEvictsCachedProfile(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice")
	testutil.CreatePost(t, f.db, alice, "bye")

	_, err := f.users.GetMe(ctx, alice.Email)
	require.NoError(t, err)
	require.True(t, f.redis.Exists(cache.UserEmailKey(alice.Email)))

	require.NoError(t, f.users.Withdraw(ctx, alice.Email))
	assert.False(t, f.redis.Exists(cache.UserEmailKey(alice.Email)))
	assert.Zero(t, testutil.Count(t, f.db, &models.User{}, ""))
	assert.Zero(t, testutil.Count(t, f.db, &models.Post{}, ""))

	_, err = f.users.GetMe(ctx, alice.Email)
	assertAppError(t, err, models.CodeUserNotFound)

	err = f.users.Withdraw(ctx, "")
	assertAppError(t, err, models.CodeTokenMissing)
}
