package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gridioStorage "github.com/airbusgeo/gridio/interface/storage"
)

type fileSystemStrategy struct {
}

func NewFileSystemStrategy(ctx context.Context) (gridioStorage.Strategy, error) {
	return fileSystemStrategy{}, nil
}

func formatError(err error) error {
	var epath *os.PathError
	if errors.As(err, &epath) && os.IsNotExist(epath) {
		return gridioStorage.ErrFileNotFound
	}
	return err
}

func localPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func createParent(path string) error {
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		return os.MkdirAll(filepath.Dir(path), os.ModePerm)
	}
	return nil
}

func (s fileSystemStrategy) Download(ctx context.Context, uri string, options ...gridioStorage.Option) ([]byte, error) {
	data, err := os.ReadFile(localPath(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", formatError(err))
	}
	return data, nil
}

func (s fileSystemStrategy) UploadFile(ctx context.Context, uri string, data io.ReadCloser, options ...gridioStorage.Option) error {
	uri = localPath(uri)
	if err := createParent(uri); err != nil {
		return err
	}

	f, err := os.Create(uri)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err = io.Copy(f, data); err != nil {
		f.Close()
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return f.Close()
}

func (s fileSystemStrategy) Delete(ctx context.Context, uri string, options ...gridioStorage.Option) error {
	opts := gridioStorage.Apply(options...)

	if err := os.Remove(localPath(uri)); err != nil {
		if !opts.IgnoreNotFound || !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove file: %w", formatError(err))
		}
	}

	return nil
}

func (s fileSystemStrategy) Exist(ctx context.Context, uri string) (bool, error) {
	if _, err := os.Stat(localPath(uri)); err != nil {
		if os.IsNotExist(err) {
			return false, gridioStorage.ErrFileNotFound
		}
		return false, err
	}
	return true, nil
}
