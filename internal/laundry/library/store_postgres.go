// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"

	"github.com/taibuivan/laundrytrack/internal/platform/database/schema"
	"github.com/taibuivan/laundrytrack/internal/platform/dberr"
	"github.com/taibuivan/laundrytrack/internal/platform/postgres"
	"github.com/taibuivan/laundrytrack/pkg/pointer"
)

// PostgresRepository stores the catalog in the clothes table.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a [PostgresRepository].
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
List returns the user's catalog, newest first.
*/
func (repository *PostgresRepository) List(context context.Context, userID string) ([]ClothesItem, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s DESC`,
		schema.Clothes.ID, schema.Clothes.PhotoURL, schema.Clothes.Label, schema.Clothes.Tag,
		schema.Clothes.BlurHash, schema.Clothes.CreatedAt,
		schema.Clothes.Table, schema.Clothes.UserID, schema.Clothes.CreatedAt)

	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_clothes")
	}
	defer rows.Close()

	items := make([]ClothesItem, 0)
	for rows.Next() {
		var item ClothesItem
		var blurHash *string

		if err := rows.Scan(&item.ID, &item.PhotoURL, &item.Label, &item.Tag, &blurHash, &item.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_clothes")
		}

		item.BlurHash = pointer.Val(blurHash)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_clothes")
	}
	return items, nil
}

func (repository *PostgresRepository) Create(context context.Context, userID string, item *ClothesItem) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`,
		schema.Clothes.Table,
		schema.Clothes.ID, schema.Clothes.UserID, schema.Clothes.PhotoURL, schema.Clothes.Label,
		schema.Clothes.Tag, schema.Clothes.BlurHash, schema.Clothes.CreatedAt)

	_, err := repository.db.Exec(context, query,
		item.ID, userID, item.PhotoURL, item.Label, item.Tag, item.BlurHash, item.CreatedAt)
	return dberr.Wrap(err, "create_clothes")
}

func (repository *PostgresRepository) UpdateLabel(context context.Context, userID, id string, label *string) error {
	return repository.update(context, "update_clothes_label",
		fmt.Sprintf(`%s = $3`, schema.Clothes.Label), userID, id, label)
}

func (repository *PostgresRepository) UpdateTag(context context.Context, userID, id, tag string) error {
	return repository.update(context, "update_clothes_tag",
		fmt.Sprintf(`%s = $3`, schema.Clothes.Tag), userID, id, tag)
}

func (repository *PostgresRepository) UpdatePhoto(context context.Context, userID, id, photoURL, blurHash string) error {
	return repository.update(context, "update_clothes_photo",
		fmt.Sprintf(`%s = $3, %s = NULLIF($4, '')`, schema.Clothes.PhotoURL, schema.Clothes.BlurHash),
		userID, id, photoURL, blurHash)
}

func (repository *PostgresRepository) Delete(context context.Context, userID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.Clothes.Table, schema.Clothes.ID, schema.Clothes.UserID)

	result, err := repository.db.Exec(context, query, id, userID)
	if err != nil {
		return dberr.Wrap(err, "delete_clothes")
	}
	return dberr.NotFoundUnless(result, "Cloth")
}

// update runs a single-row UPDATE whose SET clause uses $3 onwards.
func (repository *PostgresRepository) update(context context.Context, action, setClause, userID, id string, args ...any) error {
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1 AND %s = $2`,
		schema.Clothes.Table, setClause, schema.Clothes.ID, schema.Clothes.UserID)

	result, err := repository.db.Exec(context, query, append([]any{id, userID}, args...)...)
	if err != nil {
		return dberr.Wrap(err, action)
	}
	return dberr.NotFoundUnless(result, "Cloth")
}
