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
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) Save(r io.Reader, originalName string) (string, error) {
	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".jpg"
	}

	name := uuid.NewString() + ext
	fullPath := filepath.Join(ls.basePath, name)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("writing file: %w", err)
	}
	return name, nil
}

func (ls *LocalStorage) Open(name string) (io.ReadSeekCloser, error) {
	fullPath, err := ls.resolve(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return file, nil
}

func (ls *LocalStorage) Delete(name string) error {
	fullPath, err := ls.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

func (ls *LocalStorage) resolve(name string) (string, error) {
	clean := filepath.Clean(name)
	if strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(ls.basePath, clean), nil
}
