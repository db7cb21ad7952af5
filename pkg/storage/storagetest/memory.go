// Package storagetest provides an in-memory storage.Store for service tests.
package storagetest

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
	"github.com/angelmondragon/commissary-backend/pkg/storage"
)

// Memory keeps saved files in a map. Names are prefixed with a run of "x"
// characters, one per save, so tests can predict them.
type Memory struct {
	mu      sync.Mutex
	Saved   map[string][]byte
	Deleted []string
	SaveErr error
	counter int
}

func NewMemory() *Memory {
	return &Memory{Saved: map[string][]byte{}}
}

func (m *Memory) Save(ctx context.Context, filename string, r io.Reader) (storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return storage.Object{}, m.SaveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.Object{}, err
	}
	m.counter++
	name := strings.Repeat("x", m.counter) + "_" + storage.SanitizeFilename(filename)
	m.Saved[name] = data
	return storage.Object{Name: name, URL: "/uploads/" + name, Size: int64(len(data))}, nil
}

func (m *Memory) Open(ctx context.Context, name string) (io.ReadCloser, storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Saved[name]
	if !ok {
		return nil, storage.Object{}, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), storage.Object{Name: name, Size: int64(len(data))}, nil
}

func (m *Memory) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, name)
	delete(m.Saved, name)
	return nil
}
