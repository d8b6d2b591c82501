package service

import (
	"context"
	"errors"
	"testing"

	"sharedepot/internal/models"
	"sharedepot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn           func(context.Context, *models.User) error
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	existsByEmailFn    func(context.Context, string) (bool, error)
	existsByNicknameFn func(context.Context, string) (bool, error)
	updateProfileFn    func(context.Context, uint, string, string) error
	updatePasswordFn   func(context.Context, uint, string) error
	deleteFn           func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.existsByEmailFn(ctx, email)
}
func (s *userRepoStub) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return s.existsByNicknameFn(ctx, nickname)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, id uint, nickname, profileImage string) error {
	return s.updateProfileFn(ctx, id, nickname, profileImage)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:           func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn:          func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:       func(_ context.Context, email string) (*models.User, error) { return &models.User{ID: 1, Email: email}, nil },
		existsByEmailFn:    func(_ context.Context, _ string) (bool, error) { return false, nil },
		existsByNicknameFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		updateProfileFn:    func(_ context.Context, _ uint, _, _ string) error { return nil },
		updatePasswordFn:   func(_ context.Context, _ uint, _ string) error { return nil },
		deleteFn:           func(_ context.Context, _ uint) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	listFn           func(context.Context, int, int) ([]models.Post, int64, error)
	listPopularFn    func(context.Context, int, int) ([]models.Post, int64, error)
	listIDsByUserFn  func(context.Context, uint) ([]uint, error)
	updateFn         func(context.Context, *models.Post) error
	incrementViewsFn func(context.Context, uint) error
	deleteFn         func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]models.Post, int64, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) ListPopular(ctx context.Context, limit, offset int) ([]models.Post, int64, error) {
	return s.listPopularFn(ctx, limit, offset)
}
func (s *postRepoStub) ListIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	return s.listIDsByUserFn(ctx, userID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) IncrementViews(ctx context.Context, id uint) error {
	return s.incrementViewsFn(ctx, id)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:         func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:        func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:           func(_ context.Context, _, _ int) ([]models.Post, int64, error) { return nil, 0, nil },
		listPopularFn:    func(_ context.Context, _, _ int) ([]models.Post, int64, error) { return nil, 0, nil },
		listIDsByUserFn:  func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		updateFn:         func(_ context.Context, _ *models.Post) error { return nil },
		incrementViewsFn: func(_ context.Context, _ uint) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	listByPostFn    func(context.Context, uint) ([]models.Comment, error)
	listByUserFn    func(context.Context, uint, int, int) ([]models.Comment, int64, error)
	updateContentFn func(context.Context, uint, string) error
	deleteFn        func(context.Context, uint) error
	deleteByPostFn  func(context.Context, uint) (int64, error)
	deleteByUserFn  func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Comment, int64, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, id uint, content string) error {
	return s.updateContentFn(ctx, id, content)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	return s.deleteByPostFn(ctx, postID)
}
func (s *commentRepoStub) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	return s.deleteByUserFn(ctx, userID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:        func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn:    func(_ context.Context, _ uint) ([]models.Comment, error) { return nil, nil },
		listByUserFn:    func(_ context.Context, _ uint, _, _ int) ([]models.Comment, int64, error) { return nil, 0, nil },
		updateContentFn: func(_ context.Context, _ uint, _ string) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		deleteByPostFn:  func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		deleteByUserFn:  func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	existsFn            func(context.Context, uint, uint) (bool, error)
	insertFn            func(context.Context, uint, uint) error
	removeFn            func(context.Context, uint, uint) (bool, error)
	countByPostFn       func(context.Context, uint) (int64, error)
	listPostIDsByUserFn func(context.Context, uint) ([]uint, error)
	deleteByPostFn      func(context.Context, uint) (int64, error)
	deleteByUserFn      func(context.Context, uint) (int64, error)
}

func (s *likeRepoStub) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	return s.existsFn(ctx, userID, postID)
}
func (s *likeRepoStub) Insert(ctx context.Context, userID, postID uint) error {
	return s.insertFn(ctx, userID, postID)
}
func (s *likeRepoStub) Remove(ctx context.Context, userID, postID uint) (bool, error) {
	return s.removeFn(ctx, userID, postID)
}
func (s *likeRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *likeRepoStub) ListPostIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	return s.listPostIDsByUserFn(ctx, userID)
}
func (s *likeRepoStub) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	return s.deleteByPostFn(ctx, postID)
}
func (s *likeRepoStub) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	return s.deleteByUserFn(ctx, userID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		existsFn:            func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		insertFn:            func(_ context.Context, _, _ uint) error { return nil },
		removeFn:            func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		countByPostFn:       func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		listPostIDsByUserFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		deleteByPostFn:      func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		deleteByUserFn:      func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// stubUnitOfWork runs fn directly against fixed repositories.
type stubUnitOfWork struct {
	repos repository.Repositories
	calls int
	err   error
}

func (u *stubUnitOfWork) Do(ctx context.Context, fn func(context.Context, repository.Repositories) error) error {
	u.calls++
	if u.err != nil {
		return u.err
	}
	return fn(ctx, u.repos)
}

func stubRepos(users *userRepoStub, posts *postRepoStub, comments *commentRepoStub, likes *likeRepoStub) repository.Repositories {
	return repository.Repositories{Users: users, Posts: posts, Comments: comments, Likes: likes}
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
