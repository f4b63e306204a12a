// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps photos in a local directory.
type FileStore struct {
	root string
	urls publicURLs
}

// NewFileStore creates the directory if needed.
func NewFileStore(root, publicBaseURL string) (*FileStore, error) {
	if root == "" {
		return nil, errors.New("objectstore: photo directory cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("objectstore: create photo directory: %w", err)
	}
	return &FileStore{root: root, urls: newPublicURLs(publicBaseURL)}, nil
}

// Put writes the photo to disk and returns its public URL.
func (s *FileStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}

	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("objectstore: create user directory: %w", err)
	}

	// O_EXCL: keys are random, an existing file means a collision.
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("objectstore: create %s: %w", key, err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("objectstore: write %s: %w", key, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("objectstore: close %s: %w", key, err)
	}

	return s.urls.url(key), nil
}

// Delete removes the photo file.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("objectstore: delete %s: %w", key, err)
	}
	return nil
}

// KeyFromURL implements [PhotoStore].
func (s *FileStore) KeyFromURL(publicURL string) (string, bool) {
	return s.urls.key(publicURL)
}

// Handler serves stored photos. Directory listings are not exposed.
func (s *FileStore) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.root))
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "" || strings.HasSuffix(request.URL.Path, "/") {
			http.NotFound(writer, request)
			return
		}
		files.ServeHTTP(writer, request)
	})
}
