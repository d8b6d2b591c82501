package service

import (
	"context"

	"sharedepot/internal/content"
	"sharedepot/internal/models"
	"sharedepot/internal/repository"
)

type CommentService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
}

func NewCommentService(repos repository.Repositories, uow repository.UnitOfWork) *CommentService {
	return &CommentService{repos: repos, uow: uow}
}

// Create adds a comment by email's user to an existing post.
func (s *CommentService) Create(ctx context.Context, postID uint, email, text string) (*models.Comment, error) {
	text = content.PlainText(text)
	if err := validateComment(text); err != nil {
		return nil, err
	}

	var created *models.Comment
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := actor(ctx, repos.Users, email)
		if err != nil {
			return err
		}
		if _, err := repos.Posts.GetByID(ctx, postID); err != nil {
			return err
		}
		comment := &models.Comment{Content: text, UserID: user.ID, PostID: postID}
		if err := repos.Comments.Create(ctx, comment); err != nil {
			return err
		}
		created, err = repos.Comments.GetByID(ctx, comment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListByPost returns the comments on postID, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := s.repos.Posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.repos.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// ListByUser returns one page of userID's comments, newest first.
func (s *CommentService) ListByUser(ctx context.Context, userID uint, page Page) (models.CommentPage, error) {
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return models.CommentPage{}, err
	}
	comments, total, err := s.repos.Comments.ListByUser(ctx, userID, page.Size, page.Offset())
	if err != nil {
		return models.CommentPage{}, err
	}
	return models.NewCommentPage(comments, total, page.Number, page.Size), nil
}

func (s *CommentService) Update(ctx context.Context, commentID uint, email, text string) (*models.Comment, error) {
	text = content.PlainText(text)
	if err := validateComment(text); err != nil {
		return nil, err
	}

	var updated *models.Comment
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		comment, err := repos.Comments.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		user, err := actor(ctx, repos.Users, email)
		if err != nil {
			return err
		}
		if err := AssertOwner(comment.UserID, user.ID); err != nil {
			return err
		}
		if err := repos.Comments.UpdateContent(ctx, commentID, text); err != nil {
			return err
		}
		updated, err = repos.Comments.GetByID(ctx, commentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CommentService) Delete(ctx context.Context, commentID uint, email string) error {
	return s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		comment, err := repos.Comments.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		user, err := actor(ctx, repos.Users, email)
		if err != nil {
			return err
		}
		if err := AssertOwner(comment.UserID, user.ID); err != nil {
			return err
		}
		return repos.Comments.Delete(ctx, commentID)
	})
}
