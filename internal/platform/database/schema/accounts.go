// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// AccountTable represents the 'accounts' table
type AccountTable struct {
	Table       string
	ID          string
	Email       string
	Password    string
	LastLoginAt string
	CreatedAt   string
	UpdatedAt   string
}

// Account is the schema definition for accounts
var Account = AccountTable{
	Table:       "accounts",
	ID:          "id",
	Email:       "email",
	Password:    "password_hash",
	LastLoginAt: "last_login_at",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
}

// Columns returns all standard column names
func (t AccountTable) Columns() []string {
	return []string{t.ID, t.Email, t.Password, t.LastLoginAt, t.CreatedAt, t.UpdatedAt}
}
