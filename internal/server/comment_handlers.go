package server

import (
	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content"`
}

// GetComments handles GET /api/comments/posts/:postId
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return respondError(c, err)
	}
	comments, err := s.commentService.ListByPost(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// GetUserComments handles GET /api/comments/user/:userId?page=&size=
func (s *Server) GetUserComments(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	page, err := s.commentService.ListByUser(c.UserContext(), userID, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// CreateComment handles POST /api/comments/posts/:postId
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return respondError(c, err)
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	comment, err := s.commentService.Create(c.UserContext(), postID, identity(c).Email, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return respondError(c, err)
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	comment, err := s.commentService.Update(c.UserContext(), commentID, identity(c).Email, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.commentService.Delete(c.UserContext(), commentID, identity(c).Email); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
