// Package storage abstracts image hosting behind a URL-returning service.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploader stores an uploaded file and returns the public URL to embed in
// documents. The backing service is opaque to the handlers.
type Uploader interface {
	Upload(file *multipart.FileHeader) (string, error)
}

// LocalUploader writes files under the static public directory the server
// already serves.
type LocalUploader struct {
	Dir     string
	BaseURL string
}

func NewLocalUploader() *LocalUploader {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./public/uploads"
	}
	return &LocalUploader{
		Dir:     dir,
		BaseURL: "/uploads",
	}
}

func (u *LocalUploader) Upload(file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// Nombre aleatorio; conservar solo la extensión original
	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := uuid.NewString() + ext

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(u.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return u.BaseURL + "/" + name, nil
}
