package server

import (
	"fmt"

	"sharedepot/internal/models"
	"sharedepot/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadProfileImage handles POST /api/files/profile
func (s *Server) UploadProfileImage(c *fiber.Ctx) error {
	return s.upload(c, service.FileKindProfile)
}

// UploadPostImage handles POST /api/files/post
func (s *Server) UploadPostImage(c *fiber.Ctx) error {
	return s.upload(c, service.FileKindPost)
}

func (s *Server) upload(c *fiber.Ctx, kind string) error {
	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, models.NewValidationError("No file uploaded"))
	}
	if file.Size > s.fileService.MaxBytes() {
		return respondError(c, models.NewValidationErrorWithCode(models.CodeFileTooLarge,
			fmt.Sprintf("File exceeds %d bytes", s.fileService.MaxBytes())))
	}

	src, err := file.Open()
	if err != nil {
		return respondError(c, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	stored, err := s.fileService.Upload(c.UserContext(), kind, src)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(stored)
}

// GetFile handles GET /api/files/:kind/:filename
func (s *Server) GetFile(c *fiber.Ctx) error {
	f, contentType, err := s.fileService.Open(c.UserContext(), c.Params("kind"), c.Params("filename"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	// fasthttp closes the file once the body is sent.
	return c.SendStream(f)
}

// DeleteFile handles DELETE /api/files/:kind/:filename
func (s *Server) DeleteFile(c *fiber.Ctx) error {
	if err := s.fileService.Delete(c.UserContext(), c.Params("kind"), c.Params("filename")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
