// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CustomTagTable represents the 'custom_tags' table
type CustomTagTable struct {
	Table     string
	ID        string
	UserID    string
	Name      string
	Emoji     string
	CreatedAt string
}

// CustomTag is the schema definition for custom_tags
var CustomTag = CustomTagTable{
	Table:     "custom_tags",
	ID:        "id",
	UserID:    "user_id",
	Name:      "name",
	Emoji:     "emoji",
	CreatedAt: "created_at",
}

// Columns returns all standard column names
func (t CustomTagTable) Columns() []string {
	return []string{t.ID, t.UserID, t.Name, t.Emoji, t.CreatedAt}
}
