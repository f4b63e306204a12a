// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// LaundryBatchTable represents the 'laundry_batches' table
type LaundryBatchTable struct {
	Table     string
	ID        string
	UserID    string
	Name      string
	CreatedAt string
}

// LaundryBatch is the schema definition for laundry_batches
var LaundryBatch = LaundryBatchTable{
	Table:     "laundry_batches",
	ID:        "id",
	UserID:    "user_id",
	Name:      "name",
	CreatedAt: "created_at",
}

// Columns returns all standard column names
func (t LaundryBatchTable) Columns() []string {
	return []string{t.ID, t.UserID, t.Name, t.CreatedAt}
}
