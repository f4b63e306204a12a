// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/database/schema"
	"github.com/taibuivan/laundrytrack/internal/platform/dberr"
	"github.com/taibuivan/laundrytrack/internal/platform/postgres"
)

// # User Repository

// PostgresUserRepository stores accounts in the accounts table.
type PostgresUserRepository struct {
	db postgres.Querier
}

// NewUserRepository creates a [PostgresUserRepository].
func NewUserRepository(db postgres.Querier) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		schema.Account.Table,
		schema.Account.ID, schema.Account.Email, schema.Account.Password,
		schema.Account.CreatedAt, schema.Account.UpdatedAt)

	_, err := repository.db.Exec(context, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)

	wrapped := dberr.Wrap(err, "create_account")
	if apperr.HasCode(wrapped, "CONFLICT") {
		return apperr.Conflict("Email is already registered")
	}
	return wrapped
}

func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, schema.Account.ID, id)
}

func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, schema.Account.Email, email)
}

func (repository *PostgresUserRepository) TouchLastLogin(context context.Context, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1`,
		schema.Account.Table, schema.Account.LastLoginAt, schema.Account.UpdatedAt, schema.Account.ID)

	result, err := repository.db.Exec(context, query, userID)
	if err != nil {
		return dberr.Wrap(err, "touch_last_login")
	}
	return dberr.NotFoundUnless(result, "User")
}

func (repository *PostgresUserRepository) findOne(context context.Context, column, value string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.Account.Columns(), ", "), schema.Account.Table, column)

	var user User
	err := repository.db.QueryRow(context, query, value).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		wrapped := dberr.Wrap(err, "find_account")
		if apperr.HasCode(wrapped, "NOT_FOUND") {
			return nil, apperr.NotFound("User")
		}
		return nil, wrapped
	}
	return &user, nil
}
