package service

import (
	"context"
	"errors"
	"testing"

	"sharedepot/internal/models"
	"sharedepot/internal/repository"
	"sharedepot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLikeService(db *gorm.DB) *LikeService {
	return NewLikeService(repository.NewRepositories(db), repository.NewUnitOfWork(db))
}

func TestToggleLike_TwiceReturnsToUnliked(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "hello")
	svc := newLikeService(db)

	status, err := svc.ToggleLike(ctx, post.ID, bob.Email)
	require.NoError(t, err)
	assert.Equal(t, &models.LikeStatus{PostID: post.ID, LikesCount: 1, UserLiked: true}, status)

	status, err = svc.ToggleLike(ctx, post.ID, bob.Email)
	require.NoError(t, err)
	assert.Equal(t, &models.LikeStatus{PostID: post.ID, LikesCount: 0, UserLiked: false}, status)
	assert.Zero(t, testutil.Count(t, db, &models.Like{}, "post_id = ?", post.ID))
}

// staleLikes reports every like as absent, as a concurrent toggle would see
// it just before the other insert commits.
type staleLikes struct {
	repository.LikeRepository
}

func (staleLikes) Exists(context.Context, uint, uint) (bool, error) {
	return false, nil
}

type staleUnitOfWork struct {
	db *gorm.DB
}

func (u staleUnitOfWork) Do(ctx context.Context, fn func(context.Context, repository.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		repos.Likes = staleLikes{repos.Likes}
		return fn(ctx, repos)
	})
}

func TestToggleLike_LosingInsertConvergesToLiked(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "hello")
	testutil.CreateLike(t, db, bob, post)

	svc := NewLikeService(repository.NewRepositories(db), staleUnitOfWork{db: db})

	status, err := svc.ToggleLike(ctx, post.ID, bob.Email)
	require.NoError(t, err)
	assert.True(t, status.UserLiked)
	assert.EqualValues(t, 1, status.LikesCount)
	assert.EqualValues(t, 1, testutil.Count(t, db, &models.Like{}, "user_id = ? AND post_id = ?", bob.ID, post.ID))
}

func TestToggleLike_Errors(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "hello")
	svc := newLikeService(db)

	t.Run("missing post", func(t *testing.T) {
		_, err := svc.ToggleLike(ctx, post.ID+100, alice.Email)
		assertAppError(t, err, models.CodePostNotFound)
	})
	t.Run("no identity", func(t *testing.T) {
		_, err := svc.ToggleLike(ctx, post.ID, "")
		assertAppError(t, err, models.CodeTokenMissing)
	})
	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.ToggleLike(ctx, post.ID, "ghost@example.com")
		assertAppError(t, err, models.CodeUserNotFound)
	})
}

func TestToggleLike_InsertFailureRollsBack(t *testing.T) {
	boom := errors.New("insert failed")
	likes := noopLikeRepo()
	likes.insertFn = func(_ context.Context, _, _ uint) error { return boom }
	likes.countByPostFn = func(_ context.Context, _ uint) (int64, error) {
		t.Fatal("count must not run after a failed insert")
		return 0, nil
	}
	repos := stubRepos(noopUserRepo(), noopPostRepo(), noopCommentRepo(), likes)

	_, err := NewLikeService(repos, &stubUnitOfWork{repos: repos}).ToggleLike(context.Background(), 1, "a@example.com")
	require.ErrorIs(t, err, boom)
}

func TestLikeQueries(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	first := testutil.CreatePost(t, db, alice, "first")
	second := testutil.CreatePost(t, db, alice, "second")
	testutil.CreateLike(t, db, bob, first)
	testutil.CreateLike(t, db, bob, second)
	testutil.CreateLike(t, db, alice, second)
	svc := newLikeService(db)

	status, err := svc.Status(ctx, second.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.LikeStatus{PostID: second.ID, LikesCount: 2, UserLiked: true}, status)

	status, err = svc.Status(ctx, first.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, status.UserLiked)
	assert.EqualValues(t, 1, status.LikesCount)

	count, err := svc.Count(ctx, second.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	_, err = svc.Count(ctx, second.ID+100)
	assertAppError(t, err, models.CodePostNotFound)

	ids, err := svc.LikedPostIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)

	ids, err = svc.LikedPostIDs(ctx, testutil.CreateUser(t, db, "carol").ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)

	_, err = svc.LikedPostIDs(ctx, 9999)
	assertAppError(t, err, models.CodeUserNotFound)
}
