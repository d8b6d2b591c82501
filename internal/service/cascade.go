package service

import (
	"context"

	"sharedepot/internal/models"
	"sharedepot/internal/observability"
	"sharedepot/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// UserForgetter drops cached copies of a user.
type UserForgetter interface {
	Forget(ctx context.Context, user *models.User)
}

// Cascade deletes posts and users together with every row that references
// them. Storage does not cascade, so children always go before parents and
// each top-level delete runs in one unit of work.
type Cascade struct {
	uow    repository.UnitOfWork
	forget UserForgetter
}

// NewCascade creates a Cascade. forget may be nil.
func NewCascade(uow repository.UnitOfWork, forget UserForgetter) *Cascade {
	return &Cascade{uow: uow, forget: forget}
}

// DeletePost removes postID, its likes and its comments after checking that
// actingEmail owns it.
func (c *Cascade) DeletePost(ctx context.Context, postID uint, actingEmail string) error {
	span, ctx := observability.NewSpan(ctx, "cascade.delete_post", attribute.Int64("post.id", int64(postID)))
	defer span.End()

	err := c.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		post, err := repos.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		user, err := actor(ctx, repos.Users, actingEmail)
		if err != nil {
			return err
		}
		if err := AssertOwner(post.UserID, user.ID); err != nil {
			return err
		}
		return deletePostTree(ctx, repos, postID, "post")
	})
	span.SetError(err)
	return err
}

// WithdrawUser removes the account for email and everything that refers to
// it: its likes and comments anywhere, its posts with their likes and
// comments, and finally the user row.
func (c *Cascade) WithdrawUser(ctx context.Context, email string) error {
	span, ctx := observability.NewSpan(ctx, "cascade.withdraw_user")
	defer span.End()

	var removed *models.User
	err := c.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		span.AddAttributes(attribute.Int64("user.id", int64(user.ID)))

		likes, err := repos.Likes.DeleteByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		observability.CascadeRowsDeleted.WithLabelValues("user", "likes").Add(float64(likes))

		comments, err := repos.Comments.DeleteByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		observability.CascadeRowsDeleted.WithLabelValues("user", "comments").Add(float64(comments))

		postIDs, err := repos.Posts.ListIDsByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		for _, postID := range postIDs {
			if err := deletePostTree(ctx, repos, postID, "user"); err != nil {
				return err
			}
		}

		if err := repos.Users.Delete(ctx, user.ID); err != nil {
			return err
		}
		removed = user
		return nil
	})
	span.SetError(err)
	if err != nil {
		return err
	}

	if c.forget != nil {
		c.forget.Forget(ctx, removed)
	}
	return nil
}

func deletePostTree(ctx context.Context, repos repository.Repositories, postID uint, root string) error {
	likes, err := repos.Likes.DeleteByPost(ctx, postID)
	if err != nil {
		return err
	}
	comments, err := repos.Comments.DeleteByPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := repos.Posts.Delete(ctx, postID); err != nil {
		return err
	}

	observability.CascadeRowsDeleted.WithLabelValues(root, "likes").Add(float64(likes))
	observability.CascadeRowsDeleted.WithLabelValues(root, "comments").Add(float64(comments))
	observability.CascadeRowsDeleted.WithLabelValues(root, "posts").Inc()
	return nil
}
