// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// BatchItemTable represents the 'batch_items' table
type BatchItemTable struct {
	Table        string
	ID           string
	BatchID      string
	UserID       string
	Photo        string
	Label        string
	Tag          string
	IsReceived   string
	ReceivedAt   string
	UncheckCount string
	CreatedAt    string
}

// BatchItem is the schema definition for batch_items
var BatchItem = BatchItemTable{
	Table:        "batch_items",
	ID:           "id",
	BatchID:      "batch_id",
	UserID:       "user_id",
	Photo:        "photo",
	Label:        "label",
	Tag:          "tag",
	IsReceived:   "is_received",
	ReceivedAt:   "received_at",
	UncheckCount: "uncheck_count",
	CreatedAt:    "created_at",
}

// Columns returns all standard column names
func (t BatchItemTable) Columns() []string {
	return []string{
		t.ID, t.BatchID, t.UserID, t.Photo, t.Label, t.Tag,
		t.IsReceived, t.ReceivedAt, t.UncheckCount, t.CreatedAt,
	}
}
