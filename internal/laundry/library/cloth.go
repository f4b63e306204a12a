// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library is the per-user catalog of reusable clothes.

A user photographs a garment once, stores it here, and later copies it into
any number of batches. The photo is uploaded to object storage; the catalog
only keeps its public URL.
*/
package library

import "time"

// JSON and validation field names.
const (
	FieldPhoto = "photo"
	FieldLabel = "label"
	FieldTag   = "tag"
)

// MaxLabelLength bounds a label, in characters.
const MaxLabelLength = 100

// ClothesItem is one catalog entry.
type ClothesItem struct {
	ID       string  `json:"id"`
	PhotoURL string  `json:"photo_url"`
	Label    *string `json:"label"`
	Tag      string  `json:"tag"`

	// BlurHash is a compact placeholder of the photo. Empty when it could not be computed.
	BlurHash  string    `json:"blur_hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ClothPatch holds the fields of a combined update. Nil fields are left alone.
// Photo is a base64 data URL; Label may point to "" to clear it.
type ClothPatch struct {
	Photo *string `json:"photo"`
	Label *string `json:"label"`
	Tag   *string `json:"tag"`
}

// IsEmpty reports whether the patch changes nothing.
func (patch ClothPatch) IsEmpty() bool {
	return patch.Photo == nil && patch.Label == nil && patch.Tag == nil
}
