// Package images stores uploaded post images on local disk and cleans
// up superseded files. Removal is fire-and-forget: it runs detached
// from the request that triggered it, and its outcome is logged, never
// propagated.
package images

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"example.com/feedapp/internal/logger"
)

var logg = logger.New()

// ErrUnsupportedType is returned for uploads that are not png/jpg/jpeg.
var ErrUnsupportedType = errors.New("unsupported image type")

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// Store writes images under a root directory and serves them by
// relative path.
type Store struct {
	rootDir string
}

// New creates the image store, ensuring the root directory exists.
func New(rootDir string) (*Store, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{rootDir: rootDir}, nil
}

// Dir returns the root directory images are stored under.
func (s *Store) Dir() string {
	return s.rootDir
}

// Save persists one uploaded file part and returns its reference path
// (rootDir/timestamped-name). Non-image uploads are rejected before
// anything touches disk.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if !allowedTypes[header.Header.Get("Content-Type")] {
		return "", ErrUnsupportedType
	}

	name := time.Now().UTC().Format(time.RFC3339Nano) + "-" + filepath.Base(header.Filename)
	// RFC3339 colons are unfriendly to some filesystems
	name = strings.ReplaceAll(name, ":", "-")

	dst, err := os.Create(filepath.Join(s.rootDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join(s.rootDir, name)), nil
}

// Remove deletes a stored image in a detached goroutine. It never
// blocks or fails the calling operation; errors are logged and
// swallowed.
func (s *Store) Remove(imagePath string) {
	if imagePath == "" {
		return
	}
	go func() {
		if err := os.Remove(filepath.FromSlash(imagePath)); err != nil {
			logg.Error("images", "Failed to delete image file", err)
			return
		}
		logg.Info("images", "Deleted image file")
	}()
}
