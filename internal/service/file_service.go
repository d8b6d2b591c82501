package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"sharedepot/internal/config"
	"sharedepot/internal/models"

	"github.com/google/uuid"
)

const (
	FileKindProfile = "profile"
	FileKindPost    = "post"

	DefaultUploadDir       = "uploads"
	DefaultMaxUploadSizeMB = 10
	sniffLen               = 512
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// StoredFile describes an uploaded file.
type StoredFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// FileService stores uploaded images on local disk under one directory per kind.
type FileService struct {
	uploadDir string
	maxBytes  int64
}

func NewFileService(cfg *config.Config) *FileService {
	dir := DefaultUploadDir
	maxBytes := int64(DefaultMaxUploadSizeMB) << 20
	if cfg != nil {
		if cfg.UploadDir != "" {
			dir = cfg.UploadDir
		}
		if cfg.UploadMaxSizeMB > 0 {
			maxBytes = cfg.UploadMaxBytes()
		}
	}
	return &FileService{uploadDir: dir, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted upload.
func (s *FileService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores r as a new file of the given kind. The content type is
// sniffed from the bytes; the client's filename and type are ignored.
func (s *FileService) Upload(_ context.Context, kind string, r io.Reader) (*StoredFile, error) {
	if !validKind(kind) {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown file kind %q", kind))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, uploadFailed(err)
	}
	head = head[:n]
	if n == 0 {
		return nil, models.NewValidationErrorWithCode(models.CodeInvalidFileFormat, "File is empty")
	}

	ext, ok := imageExtensions[http.DetectContentType(head)]
	if !ok {
		return nil, models.NewValidationErrorWithCode(models.CodeInvalidFileFormat, "Only PNG, JPEG, GIF and WebP images are allowed")
	}

	dir := filepath.Join(s.uploadDir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, uploadFailed(err)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, uploadFailed(err)
	}

	written, err := io.Copy(f, io.LimitReader(io.MultiReader(bytes.NewReader(head), r), s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, uploadFailed(err)
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return nil, models.NewValidationErrorWithCode(models.CodeFileTooLarge, fmt.Sprintf("File exceeds %d bytes", s.maxBytes))
	}

	return &StoredFile{URL: fileURL(kind, name), Filename: name}, nil
}

// Open returns the stored file and its content type.
func (s *FileService) Open(_ context.Context, kind, name string) (*os.File, string, error) {
	path, err := s.resolve(kind, name)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", models.NewNotFoundError("File", name)
	}
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	head := make([]byte, sniffLen)
	n, _ := io.ReadFull(f, head)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, "", models.NewInternalError(err)
	}
	return f, http.DetectContentType(head[:n]), nil
}

func (s *FileService) Delete(_ context.Context, kind, name string) error {
	path, err := s.resolve(kind, name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return models.NewNotFoundError("File", name)
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// resolve maps kind and name onto a path inside the upload directory. Only
// names this service generated are accepted.
func (s *FileService) resolve(kind, name string) (string, error) {
	if !validKind(kind) {
		return "", models.NewNotFoundError("File", name)
	}
	ext := filepath.Ext(name)
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", models.NewNotFoundError("File", name)
	}
	if _, err := uuid.Parse(strings.TrimSuffix(name, ext)); err != nil {
		return "", models.NewNotFoundError("File", name)
	}
	return filepath.Join(s.uploadDir, kind, name), nil
}

func validKind(kind string) bool {
	return kind == FileKindProfile || kind == FileKindPost
}

func fileURL(kind, name string) string {
	return "/api/files/" + kind + "/" + name
}

func uploadFailed(err error) *models.AppError {
	return &models.AppError{
		Kind:    models.KindInternal,
		Code:    models.CodeFileUploadFailed,
		Message: "File upload failed",
		Err:     err,
	}
}
