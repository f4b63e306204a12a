// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package objectstore stores clothes photos and hands back their public URLs.

Two backends implement [PhotoStore]:

  - [S3Store]: any S3-compatible bucket (AWS, Cloudflare R2, MinIO), used by the remote mode.
  - [FileStore]: a directory on disk served under /photos, used by the local mode.

Object keys have the form {userID}/{nanoid}.{ext}. The public URL of an object
is PUBLIC_BASE_URL + "/" + key, so the key can be recovered from a stored URL
when the photo has to be deleted.
*/
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrInvalidKey is returned for keys that are empty or escape the user prefix.
var ErrInvalidKey = errors.New("objectstore: invalid object key")

// PhotoStore is the storage used by the clothes library.
type PhotoStore interface {
	// Put uploads data under key and returns the object's public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// KeyFromURL recovers the key of an object this store produced.
	KeyFromURL(publicURL string) (string, bool)
}

// NewKey builds a fresh object key for one of the user's photos.
func NewKey(userID, extension string) (string, error) {
	name, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("objectstore: generate name: %w", err)
	}
	return userID + "/" + name + "." + extension, nil
}

// publicURLs converts between keys and public URLs for a base URL.
type publicURLs struct {
	base string
}

func newPublicURLs(base string) publicURLs {
	return publicURLs{base: strings.TrimRight(base, "/")}
}

func (p publicURLs) url(key string) string {
	return p.base + "/" + key
}

func (p publicURLs) key(publicURL string) (string, bool) {
	key, found := strings.CutPrefix(publicURL, p.base+"/")
	if !found || checkKey(key) != nil {
		return "", false
	}
	return key, true
}

// checkKey rejects keys that are empty, absolute or contain dot segments.
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
