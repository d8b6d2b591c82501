package repository

import (
	"context"

	"sharedepot/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations.
// At most one like exists per (user, post); the unique index enforces it.
type LikeRepository interface {
	Exists(ctx context.Context, userID, postID uint) (bool, error)
	Insert(ctx context.Context, userID, postID uint) error
	Remove(ctx context.Context, userID, postID uint) (bool, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	ListPostIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	DeleteByPost(ctx context.Context, postID uint) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

// likeRepository implements LikeRepository
type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// Insert adds the like or returns models.ErrLikeExists when the pair is
// already present. The insert runs in its own savepoint so a rejected row
// does not abort an enclosing transaction.
func (r *likeRepository) Insert(ctx context.Context, userID, postID uint) error {
	like := &models.Like{UserID: userID, PostID: postID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User", "Post").Create(like).Error
	})
	if isUniqueViolation(err) {
		return models.ErrLikeExists
	}
	return err
}

// Remove deletes the like and reports whether a row was removed. Removing
// an absent like is a no-op.
func (r *likeRepository) Remove(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	return res.RowsAffected > 0, res.Error
}

func (r *likeRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *likeRepository) ListPostIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Pluck("post_id", &ids).Error
	return ids, err
}

// DeleteByPost removes every like on postID. Zero matches is not an error.
func (r *likeRepository) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{})
	return res.RowsAffected, res.Error
}

// DeleteByUser removes every like made by userID, on any post.
func (r *likeRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Like{})
	return res.RowsAffected, res.Error
}
