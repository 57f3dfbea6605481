package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// OpenLocalStorage is NewLocalStorage for read paths: basePath must already
// exist as a directory and is never created.
func OpenLocalStorage(basePath string) (*LocalStorage, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage directory %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage path %s is not a directory", basePath)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

func (ls *LocalStorage) resolve(name string) (string, error) {
	cleanPath := filepath.Clean(name)
	if strings.Contains(cleanPath, "..") || filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("invalid path: %s", name)
	}
	return filepath.Join(ls.basePath, cleanPath), nil
}

// SaveFile writes r to a uuid-named temp file and renames it over name, so
// a running server never observes a half-written artifact.
func (ls *LocalStorage) SaveFile(name string, r io.Reader) (FileInfo, error) {
	fullPath, err := ls.resolve(name)
	if err != nil {
		return FileInfo{}, err
	}

	tmpPath := filepath.Join(ls.basePath, fmt.Sprintf(".%s.tmp", uuid.New().String()))
	dst, err := os.Create(tmpPath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return FileInfo{}, fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return FileInfo{}, fmt.Errorf("failed to save file: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return FileInfo{}, fmt.Errorf("failed to move file into place: %w", err)
	}

	return ls.Stat(name)
}

func (ls *LocalStorage) OpenFile(name string) (io.ReadSeekCloser, error) {
	fullPath, err := ls.resolve(name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (ls *LocalStorage) Stat(name string) (FileInfo, error) {
	fullPath, err := ls.resolve(name)
	if err != nil {
		return FileInfo{}, err
	}

	fi, err := os.Stat(fullPath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to stat file: %w", err)
	}

	return FileInfo{Name: name, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}
