package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStorage is the byte store behind attachments. Paths it hands out are
// relative to the storage root.
type FileStorage interface {
	Store(ctx context.Context, ownerID, name string, r io.Reader) (StoredFile, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

type StoredFile struct {
	Path string
	Name string
	Size int64
}

// LocalFileStorage keeps files under baseDir/<ownerID>/<uuid>-<name>.
type LocalFileStorage struct {
	baseDir string
	logger  *slog.Logger
}

func NewLocalFileStorage(baseDir string, logger *slog.Logger) *LocalFileStorage {
	return &LocalFileStorage{
		baseDir: baseDir,
		logger:  logger,
	}
}

func (s *LocalFileStorage) Store(ctx context.Context, ownerID, name string, r io.Reader) (StoredFile, error) {
	cleanName := sanitizeFileName(name)
	relative := filepath.Join(sanitizeFileName(ownerID), uuid.New().String()+"-"+cleanName)
	fullPath, err := s.resolve(relative)
	if err != nil {
		return StoredFile{}, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("failed to create directories: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create file: %w", err)
	}

	written, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(fullPath)
		if copyErr != nil {
			return StoredFile{}, fmt.Errorf("failed to write file: %w", copyErr)
		}
		return StoredFile{}, fmt.Errorf("failed to close file: %w", closeErr)
	}

	s.logger.Debug("file stored", "path", relative, "size", written)
	return StoredFile{Path: relative, Name: cleanName, Size: written}, nil
}

func (s *LocalFileStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete is idempotent: a missing file is not an error.
func (s *LocalFileStorage) Delete(ctx context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	// drop the owner directory once it is empty
	_ = os.Remove(filepath.Dir(fullPath))
	return nil
}

// resolve joins path onto the base dir and rejects anything that escapes it.
func (s *LocalFileStorage) resolve(path string) (string, error) {
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(absBase, path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory: %s", path)
	}
	return absPath, nil
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == 0:
			return -1
		case r < 0x20:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
