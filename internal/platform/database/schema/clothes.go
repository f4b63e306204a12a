// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ClothesTable represents the 'clothes' table
type ClothesTable struct {
	Table     string
	ID        string
	UserID    string
	PhotoURL  string
	Label     string
	Tag       string
	BlurHash  string
	CreatedAt string
}

// Clothes is the schema definition for clothes
var Clothes = ClothesTable{
	Table:     "clothes",
	ID:        "id",
	UserID:    "user_id",
	PhotoURL:  "photo_url",
	Label:     "label",
	Tag:       "tag",
	BlurHash:  "blur_hash",
	CreatedAt: "created_at",
}

// Columns returns all standard column names
func (t ClothesTable) Columns() []string {
	return []string{t.ID, t.UserID, t.PhotoURL, t.Label, t.Tag, t.BlurHash, t.CreatedAt}
}
