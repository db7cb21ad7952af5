// Package local stores attachments in a directory on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
	"github.com/angelmondragon/commissary-backend/pkg/storage"
)

type Store struct {
	dir       string
	publicURL string
	maxBytes  int64
}

// New ensures dir exists and returns a store that publishes objects under publicURL.
func New(dir, publicURL string, maxBytes int64) (*Store, error) {
	if dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %q: %w", dir, err)
	}
	return &Store{dir: dir, publicURL: publicURL, maxBytes: maxBytes}, nil
}

func (s *Store) Save(ctx context.Context, filename string, r io.Reader) (storage.Object, error) {
	upload, err := storage.Prepare(filename, r, s.maxBytes)
	if err != nil {
		return storage.Object{}, err
	}

	full := filepath.Join(s.dir, upload.Name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return storage.Object{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create upload file")
	}
	if _, err := f.Write(upload.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return storage.Object{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write upload file")
	}
	if err := f.Close(); err != nil {
		return storage.Object{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close upload file")
	}

	return storage.Object{
		Name:        upload.Name,
		URL:         storage.PublicURL(s.publicURL, upload.Name),
		ContentType: upload.ContentType,
		Size:        int64(len(upload.Data)),
	}, nil
}

func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, storage.Object, error) {
	if !storage.ValidName(name) {
		return nil, storage.Object{}, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
	}
	full := filepath.Join(s.dir, name)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return nil, storage.Object{}, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
		}
		return nil, storage.Object{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stat upload file")
	}

	detected, err := mimetype.DetectFile(full)
	if err != nil {
		return nil, storage.Object{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detect upload type")
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, storage.Object{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open upload file")
	}
	return f, storage.Object{
		Name:        name,
		URL:         storage.PublicURL(s.publicURL, name),
		ContentType: detected.String(),
		Size:        info.Size(),
	}, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if !storage.ValidName(name) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete upload file")
	}
	return nil
}
