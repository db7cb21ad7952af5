package gcs

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeBucketServer(t *testing.T) (*httptest.Server, *fakeBucket) {
	t.Helper()
	bucket := &fakeBucket{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		bucket.mu.Lock()
		defer bucket.mu.Unlock()

		switch {
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/upload/storage/v1/b/bucket/o"):
			name := r.URL.Query().Get("name")
			data, _ := io.ReadAll(r.Body)
			bucket.objects[name] = data
			bucket.types[name] = r.Header.Get("Content-Type")
			_, _ = w.Write([]byte(`{}`))
		case r.Method == http.MethodGet && r.URL.Path == "/storage/v1/b/bucket/o":
			_, _ = w.Write([]byte(`{"items":[]}`))
		case strings.HasPrefix(r.URL.Path, "/storage/v1/b/bucket/o/"):
			name := strings.TrimPrefix(r.URL.Path, "/storage/v1/b/bucket/o/")
			data, ok := bucket.objects[name]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if r.Method == http.MethodDelete {
				delete(bucket.objects, name)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.Header().Set("Content-Type", bucket.types[name])
			_, _ = w.Write(data)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, bucket
}

func newTestClient(endpoint string) *Client {
	return &Client{
		httpClient:    http.DefaultClient,
		endpoint:      endpoint,
		defaultBucket: "bucket",
		tokenSource: &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
			return "test-token", time.Now().Add(time.Hour), nil
		}},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	srv, bucket := newFakeBucketServer(t)
	client := newTestClient(srv.URL)
	require.NoError(t, client.Ping(context.Background()))

	store, err := NewStore(client, "/uploads", 1024)
	require.NoError(t, err)
	ctx := context.Background()

	obj, err := store.Save(ctx, "receipt.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+obj.Name, obj.URL)
	assert.Contains(t, bucket.objects, "uploads/"+obj.Name)
	assert.Equal(t, "image/png", bucket.types["uploads/"+obj.Name])

	rc, opened, err := store.Open(ctx, obj.Name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", opened.ContentType)

	require.NoError(t, store.Delete(ctx, obj.Name))
	_, _, err = store.Open(ctx, obj.Name)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestPingFailsOnUnauthorized(t *testing.T) {
	srv, _ := newFakeBucketServer(t)
	client := newTestClient(srv.URL)
	client.tokenSource = &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		return "wrong", time.Now().Add(time.Hour), nil
	}}
	require.Error(t, client.Ping(context.Background()))
}

func TestTokenSourceCachesUntilExpiry(t *testing.T) {
	calls := 0
	ts := &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		calls++
		return "tok", time.Now().Add(time.Hour), nil
	}}
	for i := 0; i < 3; i++ {
		tok, err := ts.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok", tok)
	}
	assert.Equal(t, 1, calls)
}

func TestParsePrivateKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	parsed, err := parsePrivateKey(string(pkcs1))
	require.NoError(t, err)
	assert.Equal(t, key.N, parsed.N)

	_, err = parsePrivateKey("not a key")
	require.Error(t, err)
}
