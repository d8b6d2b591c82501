package models

import "time"

// PostSummary is the list projection of a post.
type PostSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Date      time.Time `json:"date"`
	Likes     int64     `json:"likes"`
	Comments  int64     `json:"comments"`
	Views     int64     `json:"views"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

// PostPage is one page of post summaries. CurrentPage is 1-based.
type PostPage struct {
	Posts       []PostSummary `json:"posts"`
	TotalCount  int64         `json:"totalCount"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

// PostDetail is a post as shown on its own page.
type PostDetail struct {
	Post
	ContentHTML string    `json:"contentHtml"`
	Comments    []Comment `json:"commentList"`
}

// Summarize projects a post loaded with its author and counts.
func (p *Post) Summarize() PostSummary {
	return PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Author:    p.User.Nickname,
		Date:      p.CreatedAt,
		Likes:     p.LikesCount,
		Comments:  p.CommentsCount,
		Views:     p.Views,
		Thumbnail: p.Thumbnail,
	}
}

// NewPostPage builds a page envelope from a zero-based offset window.
func NewPostPage(posts []Post, total int64, page, size int) PostPage {
	summaries := make([]PostSummary, 0, len(posts))
	for i := range posts {
		summaries = append(summaries, posts[i].Summarize())
	}
	return PostPage{
		Posts:       summaries,
		TotalCount:  total,
		TotalPages:  TotalPages(total, size),
		CurrentPage: page,
	}
}

// TotalPages is the number of size-row pages needed for total rows.
func TotalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// CommentPage is one page of a user's comments. CurrentPage is 1-based.
type CommentPage struct {
	Comments    []Comment `json:"comments"`
	TotalCount  int64     `json:"totalCount"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}

// NewCommentPage builds a page envelope. A nil slice is sent as [].
func NewCommentPage(comments []Comment, total int64, page, size int) CommentPage {
	if comments == nil {
		comments = []Comment{}
	}
	return CommentPage{
		Comments:    comments,
		TotalCount:  total,
		TotalPages:  TotalPages(total, size),
		CurrentPage: page,
	}
}
