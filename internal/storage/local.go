package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxLogoSize is the largest slate logo upload accepted
const MaxLogoSize = 10 << 20

// ErrInvalidPath is returned for paths that escape the storage root
var ErrInvalidPath = errors.New("storage: invalid path")

// LocalStorage keeps uploaded files (slate logos) on the local filesystem.
// Paths handed out are relative to the base directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	return &LocalStorage{basePath: abs}, nil
}

// UploadFromBytes writes data under subDir/YYYY/MM with a random name that
// keeps the extension of filename, and returns the relative path
func (s *LocalStorage) UploadFromBytes(data []byte, filename string, subDir string) (string, error) {
	dir, err := s.resolve(filepath.Join(subDir, time.Now().Format("2006/01")))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	filePath := filepath.Join(dir, name)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	relPath, err := filepath.Rel(s.basePath, filePath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(relPath), nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *LocalStorage) Delete(relativePath string) error {
	filePath, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	filePath, err := s.resolve(relativePath)
	if err != nil {
		return false
	}
	info, err := os.Stat(filePath)
	return err == nil && !info.IsDir()
}

// BasePath is the directory served under /uploads
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// resolve joins a relative path to the base directory and rejects anything
// that would land outside it
func (s *LocalStorage) resolve(relativePath string) (string, error) {
	if filepath.IsAbs(relativePath) {
		return "", ErrInvalidPath
	}
	full := filepath.Join(s.basePath, filepath.FromSlash(relativePath))
	rel, err := filepath.Rel(s.basePath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}

// IsLogoContentType reports whether an upload content type can be a logo
func IsLogoContentType(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png", "image/jpeg", "image/jpg":
		return true
	}
	return false
}
