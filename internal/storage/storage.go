package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const MaxFileSize = 5 * 1024 * 1024

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var (
	ErrFileType     = errors.New("File type not allowed. Only JPEG and PNG are allowed.")
	ErrFileTooLarge = fmt.Errorf("File size exceeds the maximum limit of %d MB.", MaxFileSize/(1024*1024))
)

// Store writes uploaded files under a single directory on the local disk.
type Store struct {
	Dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Save validates the upload and writes it under a timestamped name,
// returning the stored path.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if !allowedTypes[fh.Header.Get("Content-Type")] {
		return "", ErrFileType
	}
	if fh.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("storage: open upload: %w", err)
	}
	defer src.Close()

	ext := "bin"
	if i := strings.LastIndex(fh.Filename, "."); i >= 0 && i < len(fh.Filename)-1 {
		ext = fh.Filename[i+1:]
	}
	name := fmt.Sprintf("%s.%s", time.Now().UTC().Format("20060102150405"), ext)
	path := filepath.Join(s.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, MaxFileSize)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: write file: %w", err)
	}

	return path, nil
}

func (s *Store) Remove(path string) error {
	return os.Remove(path)
}
