// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"fmt"

	"github.com/taibuivan/laundrytrack/internal/platform/database/schema"
	"github.com/taibuivan/laundrytrack/internal/platform/dberr"
	"github.com/taibuivan/laundrytrack/internal/platform/postgres"
)

// PostgresRepository stores custom tags in the custom_tags table.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a [PostgresRepository].
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) List(context context.Context, userID string) ([]CustomTag, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		schema.CustomTag.ID, schema.CustomTag.Name, schema.CustomTag.Emoji, schema.CustomTag.CreatedAt,
		schema.CustomTag.Table, schema.CustomTag.UserID, schema.CustomTag.CreatedAt)

	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_custom_tags")
	}
	defer rows.Close()

	tags := make([]CustomTag, 0)
	for rows.Next() {
		var customTag CustomTag
		if err := rows.Scan(&customTag.ID, &customTag.Name, &customTag.Emoji, &customTag.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_custom_tag")
		}
		tags = append(tags, customTag)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_custom_tags")
	}
	return tags, nil
}

func (repository *PostgresRepository) Create(context context.Context, userID string, customTag *CustomTag) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		schema.CustomTag.Table,
		schema.CustomTag.ID, schema.CustomTag.UserID, schema.CustomTag.Name, schema.CustomTag.Emoji, schema.CustomTag.CreatedAt)

	_, err := repository.db.Exec(context, query,
		customTag.ID, userID, customTag.Name, customTag.Emoji, customTag.CreatedAt)
	return dberr.Wrap(err, "create_custom_tag")
}

func (repository *PostgresRepository) Delete(context context.Context, userID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CustomTag.Table, schema.CustomTag.ID, schema.CustomTag.UserID)

	result, err := repository.db.Exec(context, query, id, userID)
	if err != nil {
		return dberr.Wrap(err, "delete_custom_tag")
	}
	return dberr.NotFoundUnless(result, "Tag")
}
