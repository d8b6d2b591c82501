package server

import (
	"github.com/gofiber/fiber/v2"
)

// ToggleLike handles POST /api/likes/posts/:postId
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return respondError(c, err)
	}
	status, err := s.likeService.ToggleLike(c.UserContext(), postID, identity(c).Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

// GetLikeStatus handles GET /api/likes/posts/:postId/status
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return respondError(c, err)
	}
	status, err := s.likeService.Status(c.UserContext(), postID, identity(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

// GetLikeCount handles GET /api/likes/posts/:postId/count
func (s *Server) GetLikeCount(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return respondError(c, err)
	}
	count, err := s.likeService.Count(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"postId": postID, "likesCount": count})
}

// GetUserLikes handles GET /api/likes/user/:userId
func (s *Server) GetUserLikes(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	ids, err := s.likeService.LikedPostIDs(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ids)
}
