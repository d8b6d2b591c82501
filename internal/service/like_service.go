package service

import (
	"context"
	"errors"

	"sharedepot/internal/models"
	"sharedepot/internal/observability"
	"sharedepot/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// LikeService toggles and reports likes.
type LikeService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
}

func NewLikeService(repos repository.Repositories, uow repository.UnitOfWork) *LikeService {
	return &LikeService{repos: repos, uow: uow}
}

// ToggleLike flips whether email's user likes postID. When a concurrent
// toggle inserted the same like first, the unique index rejects this insert
// and the result converges to liked. Removing a like that a concurrent
// toggle already removed converges to not liked.
func (s *LikeService) ToggleLike(ctx context.Context, postID uint, email string) (*models.LikeStatus, error) {
	span, ctx := observability.NewSpan(ctx, "like.toggle", attribute.Int64("post.id", int64(postID)))
	defer span.End()

	var status *models.LikeStatus
	outcome := ""
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := actor(ctx, repos.Users, email)
		if err != nil {
			return err
		}
		if _, err := repos.Posts.GetByID(ctx, postID); err != nil {
			return err
		}

		liked, err := repos.Likes.Exists(ctx, user.ID, postID)
		if err != nil {
			return err
		}

		if liked {
			if _, err := repos.Likes.Remove(ctx, user.ID, postID); err != nil {
				return err
			}
			outcome = "unliked"
		} else {
			err := repos.Likes.Insert(ctx, user.ID, postID)
			switch {
			case errors.Is(err, models.ErrLikeExists):
				outcome = "converged"
			case err != nil:
				return err
			default:
				outcome = "liked"
			}
		}

		count, err := repos.Likes.CountByPost(ctx, postID)
		if err != nil {
			return err
		}
		status = &models.LikeStatus{PostID: postID, LikesCount: count, UserLiked: !liked}
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	observability.LikeToggles.WithLabelValues(outcome).Inc()
	span.AddAttributes(attribute.String("like.outcome", outcome))
	return status, nil
}

// Status reports the like count of postID and whether userID likes it.
func (s *LikeService) Status(ctx context.Context, postID, userID uint) (*models.LikeStatus, error) {
	count, err := s.Count(ctx, postID)
	if err != nil {
		return nil, err
	}
	liked, err := s.repos.Likes.Exists(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return &models.LikeStatus{PostID: postID, LikesCount: count, UserLiked: liked}, nil
}

// Count returns the number of likes on postID.
func (s *LikeService) Count(ctx context.Context, postID uint) (int64, error) {
	if _, err := s.repos.Posts.GetByID(ctx, postID); err != nil {
		return 0, err
	}
	return s.repos.Likes.CountByPost(ctx, postID)
}

// LikedPostIDs lists the posts userID likes, most recent first.
func (s *LikeService) LikedPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.repos.Likes.ListPostIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}
