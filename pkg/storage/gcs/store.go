package gcs

import (
	"context"
	"errors"
	"io"

	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
	"github.com/angelmondragon/commissary-backend/pkg/storage"
)

const objectPrefix = "uploads/"

// Store keeps attachments in the default bucket under uploads/ and publishes
// them through the API's /uploads route.
type Store struct {
	client    *Client
	publicURL string
	maxBytes  int64
}

func NewStore(client *Client, publicURL string, maxBytes int64) (*Store, error) {
	if client == nil {
		return nil, errors.New("gcs client required")
	}
	return &Store{client: client, publicURL: publicURL, maxBytes: maxBytes}, nil
}

func (s *Store) Save(ctx context.Context, filename string, r io.Reader) (storage.Object, error) {
	upload, err := storage.Prepare(filename, r, s.maxBytes)
	if err != nil {
		return storage.Object{}, err
	}
	if err := s.client.Upload(ctx, objectPrefix+upload.Name, upload.ContentType, upload.Data); err != nil {
		return storage.Object{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload to gcs")
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
	body, contentType, size, err := s.client.Download(ctx, objectPrefix+name)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, storage.Object{}, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
		}
		return nil, storage.Object{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "download from gcs")
	}
	return body, storage.Object{
		Name:        name,
		URL:         storage.PublicURL(s.publicURL, name),
		ContentType: contentType,
		Size:        size,
	}, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if !storage.ValidName(name) {
		return nil
	}
	if err := s.client.DeleteObject(ctx, objectPrefix+name); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete from gcs")
	}
	return nil
}
