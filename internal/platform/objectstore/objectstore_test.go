// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package objectstore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/laundrytrack/internal/platform/objectstore"
)

/*
TestParseDataURL covers the accepted shapes and the rejections.
*/
func TestParseDataURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantExt string
	}{
		{"png", "data:image/png;base64,iVBORw0KGgo=", nil, "png"},
		{"jpeg becomes jpg", "data:image/jpeg;base64,/9j/4AAQ", nil, "jpg"},
		{"svg", "data:image/svg+xml;base64,PHN2Zz4=", nil, "svg"},
		{"unpadded", "data:image/png;base64,AAA", nil, "png"},
		{"not a data url", "https://example.com/a.png", objectstore.ErrInvalidDataURL, ""},
		{"not base64", "data:image/png;base64,%%%", objectstore.ErrInvalidDataURL, ""},
		{"not an image", "data:text/plain;base64,aGVsbG8=", objectstore.ErrNotImage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := objectstore.ParseDataURL(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, parsed.Data)
			assert.Equal(t, tt.wantExt, parsed.Extension())
		})
	}
}

func TestDataURL_ExtensionFallback(t *testing.T) {
	d := &objectstore.DataURL{MimeType: "image/"}
	assert.Equal(t, "jpg", d.Extension())

	d = &objectstore.DataURL{MimeType: "image/webp;q=1"}
	assert.Equal(t, "webp", d.Extension())
	assert.Equal(t, "image/webp", d.ContentType())
}

func TestNewKey(t *testing.T) {
	key, err := objectstore.NewKey("user-1", "png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "user-1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	other, err := objectstore.NewKey("user-1", "png")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

/*
TestFileStore covers put, URL round-trip, serving and delete.
*/
func TestFileStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	store, err := objectstore.NewFileStore(root, "http://localhost:8080/photos/")
	require.NoError(t, err)

	// 1. Put
	publicURL, err := store.Put(ctx, "u1/abc.png", []byte("pixels"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/photos/u1/abc.png", publicURL)

	content, err := os.ReadFile(filepath.Join(root, "u1", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(content))

	// 2. Same key again is a collision
	_, err = store.Put(ctx, "u1/abc.png", []byte("other"), "image/png")
	assert.Error(t, err)

	// 3. Key recovery
	key, ok := store.KeyFromURL(publicURL)
	require.True(t, ok)
	assert.Equal(t, "u1/abc.png", key)

	_, ok = store.KeyFromURL("https://elsewhere.example/u1/abc.png")
	assert.False(t, ok)

	// 4. Serving
	recorder := httptest.NewRecorder()
	store.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/u1/abc.png", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pixels", recorder.Body.String())

	recorder = httptest.NewRecorder()
	store.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/u1/", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	// 5. Delete is idempotent
	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, "u1", "abc.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_RejectsEscapingKeys(t *testing.T) {
	store, err := objectstore.NewFileStore(t.TempDir(), "http://x")
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../up.png", "u1/../../up.png"} {
		_, err := store.Put(context.Background(), key, []byte("x"), "image/png")
		assert.ErrorIs(t, err, objectstore.ErrInvalidKey, key)
	}
}
