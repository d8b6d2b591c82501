package service

import (
	"context"

	"sharedepot/internal/content"
	"sharedepot/internal/models"
	"sharedepot/internal/repository"
)

type PostService struct {
	repos   repository.Repositories
	uow     repository.UnitOfWork
	cascade *Cascade
}

type CreatePostInput struct {
	Title     string
	Content   string
	Thumbnail string
}

type UpdatePostInput struct {
	PostID    uint
	Title     string
	Content   string
	Thumbnail string
}

func NewPostService(repos repository.Repositories, uow repository.UnitOfWork, cascade *Cascade) *PostService {
	return &PostService{repos: repos, uow: uow, cascade: cascade}
}

// ListPosts returns one page of posts, newest first.
func (s *PostService) ListPosts(ctx context.Context, page Page) (models.PostPage, error) {
	posts, total, err := s.repos.Posts.List(ctx, page.Size, page.Offset())
	if err != nil {
		return models.PostPage{}, err
	}
	return models.NewPostPage(posts, total, page.Number, page.Size), nil
}

// ListPopular returns one page of posts, most viewed first.
func (s *PostService) ListPopular(ctx context.Context, page Page) (models.PostPage, error) {
	posts, total, err := s.repos.Posts.ListPopular(ctx, page.Size, page.Offset())
	if err != nil {
		return models.PostPage{}, err
	}
	return models.NewPostPage(posts, total, page.Number, page.Size), nil
}

// GetPostDetail counts a view and returns the post with its comments. The
// returned view count includes this read.
func (s *PostService) GetPostDetail(ctx context.Context, id uint) (*models.PostDetail, error) {
	var detail *models.PostDetail
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Posts.IncrementViews(ctx, id); err != nil {
			return err
		}
		post, err := repos.Posts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		comments, err := repos.Comments.ListByPost(ctx, id)
		if err != nil {
			return err
		}
		if comments == nil {
			comments = []models.Comment{}
		}
		detail = &models.PostDetail{
			Post:        *post,
			ContentHTML: content.RenderMarkdown(post.Content),
			Comments:    comments,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *PostService) CreatePost(ctx context.Context, email string, in CreatePostInput) (*models.Post, error) {
	title := content.PlainText(in.Title)
	if err := validatePostFields(title, in.Content); err != nil {
		return nil, err
	}
	if err := validateImageRef(in.Thumbnail); err != nil {
		return nil, err
	}

	var created *models.Post
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := actor(ctx, repos.Users, email)
		if err != nil {
			return err
		}
		post := &models.Post{
			Title:     title,
			Content:   in.Content,
			Thumbnail: in.Thumbnail,
			UserID:    user.ID,
		}
		if err := repos.Posts.Create(ctx, post); err != nil {
			return err
		}
		created, err = repos.Posts.GetByID(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdatePost replaces the title, content and thumbnail of a post owned by
// email's user.
func (s *PostService) UpdatePost(ctx context.Context, email string, in UpdatePostInput) (*models.Post, error) {
	title := content.PlainText(in.Title)
	if err := validatePostFields(title, in.Content); err != nil {
		return nil, err
	}
	if err := validateImageRef(in.Thumbnail); err != nil {
		return nil, err
	}

	var updated *models.Post
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		post, err := repos.Posts.GetByID(ctx, in.PostID)
		if err != nil {
			return err
		}
		user, err := actor(ctx, repos.Users, email)
		if err != nil {
			return err
		}
		if err := AssertOwner(post.UserID, user.ID); err != nil {
			return err
		}

		post.Title = title
		post.Content = in.Content
		post.Thumbnail = in.Thumbnail
		if err := repos.Posts.Update(ctx, post); err != nil {
			return err
		}
		updated, err = repos.Posts.GetByID(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePost removes a post owned by email's user along with its likes and
// comments.
func (s *PostService) DeletePost(ctx context.Context, id uint, email string) error {
	return s.cascade.DeletePost(ctx, id, email)
}
