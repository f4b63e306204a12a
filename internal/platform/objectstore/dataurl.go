// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package objectstore

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidDataURL is returned when a photo payload is not a base64 data URL.
	ErrInvalidDataURL = errors.New("objectstore: photo is not a base64 data URL")

	// ErrNotImage is returned when a data URL declares a non-image MIME type.
	ErrNotImage = errors.New("objectstore: photo is not an image")
)

var dataURLPattern = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

// DataURL is a decoded `data:<mime>;base64,<payload>` photo.
type DataURL struct {
	MimeType string
	Data     []byte
}

// IsDataURL reports whether s has the data URL shape, without decoding it.
func IsDataURL(s string) bool {
	return dataURLPattern.MatchString(s)
}

// ParseDataURL decodes an inline image. Missing base64 padding is tolerated.
func ParseDataURL(s string) (*DataURL, error) {
	matches := dataURLPattern.FindStringSubmatch(s)
	if matches == nil {
		return nil, ErrInvalidDataURL
	}

	mimeType := strings.ToLower(strings.TrimSpace(matches[1]))
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, ErrNotImage
	}

	payload := strings.TrimRight(strings.Join(strings.Fields(matches[2]), ""), "=")
	data, err := base64.RawStdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidDataURL
	}

	return &DataURL{MimeType: mimeType, Data: data}, nil
}

// Extension returns the file extension for the MIME subtype, defaulting to jpg.
func (d *DataURL) Extension() string {
	_, subtype, _ := strings.Cut(d.MimeType, "/")
	subtype, _, _ = strings.Cut(subtype, ";")

	switch subtype = strings.TrimSpace(subtype); subtype {
	case "":
		return "jpg"
	case "jpeg":
		return "jpg"
	case "svg+xml":
		return "svg"
	default:
		return subtype
	}
}

// ContentType returns the MIME type without parameters.
func (d *DataURL) ContentType() string {
	contentType, _, _ := strings.Cut(d.MimeType, ";")
	return contentType
}
