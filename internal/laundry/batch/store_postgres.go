// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package batch

import (
	"context"
	"fmt"

	"github.com/taibuivan/laundrytrack/internal/platform/database/schema"
	"github.com/taibuivan/laundrytrack/internal/platform/dberr"
	"github.com/taibuivan/laundrytrack/internal/platform/postgres"
)

// PostgresRepository stores batches in laundry_batches and items in batch_items.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a [PostgresRepository].
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Batches

/*
ListBatches loads the batches, then all of the user's items, and groups the
items under their batch.
*/
func (repository *PostgresRepository) ListBatches(context context.Context, userID string) ([]LaundryBatch, error) {
	batchQuery := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s DESC`,
		schema.LaundryBatch.ID, schema.LaundryBatch.Name, schema.LaundryBatch.CreatedAt,
		schema.LaundryBatch.Table, schema.LaundryBatch.UserID, schema.LaundryBatch.CreatedAt)

	batchRows, err := repository.db.Query(context, batchQuery, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_batches")
	}
	defer batchRows.Close()

	batches := make([]LaundryBatch, 0)
	indexByID := make(map[string]int)

	for batchRows.Next() {
		batch := LaundryBatch{Items: make([]ClothItem, 0)}
		if err := batchRows.Scan(&batch.ID, &batch.Name, &batch.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_batch")
		}
		indexByID[batch.ID] = len(batches)
		batches = append(batches, batch)
	}
	if err := batchRows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_batches")
	}
	batchRows.Close()

	itemQuery := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		schema.BatchItem.ID, schema.BatchItem.BatchID, schema.BatchItem.Photo, schema.BatchItem.Label,
		schema.BatchItem.Tag, schema.BatchItem.IsReceived, schema.BatchItem.ReceivedAt,
		schema.BatchItem.UncheckCount, schema.BatchItem.CreatedAt,
		schema.BatchItem.Table, schema.BatchItem.UserID, schema.BatchItem.CreatedAt)

	itemRows, err := repository.db.Query(context, itemQuery, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_batch_items")
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item ClothItem
		var batchID string

		err := itemRows.Scan(&item.ID, &batchID, &item.Photo, &item.Label, &item.Tag,
			&item.IsReceived, &item.ReceivedAt, &item.UncheckCount, &item.AddedAt)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_batch_item")
		}

		if index, ok := indexByID[batchID]; ok {
			batches[index].Items = append(batches[index].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_batch_items")
	}

	return batches, nil
}

func (repository *PostgresRepository) CreateBatch(context context.Context, userID string, batch *LaundryBatch) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)`,
		schema.LaundryBatch.Table,
		schema.LaundryBatch.ID, schema.LaundryBatch.UserID, schema.LaundryBatch.Name, schema.LaundryBatch.CreatedAt)

	_, err := repository.db.Exec(context, query, batch.ID, userID, batch.Name, batch.CreatedAt)
	return dberr.Wrap(err, "create_batch")
}

// DeleteBatch relies on ON DELETE CASCADE to remove the items.
func (repository *PostgresRepository) DeleteBatch(context context.Context, userID, batchID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.LaundryBatch.Table, schema.LaundryBatch.ID, schema.LaundryBatch.UserID)

	result, err := repository.db.Exec(context, query, batchID, userID)
	if err != nil {
		return dberr.Wrap(err, "delete_batch")
	}
	return dberr.NotFoundUnless(result, "Batch")
}

// # Items

func (repository *PostgresRepository) CreateItem(context context.Context, userID, batchID string, item *ClothItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		SELECT $1, b.%s, $3, $4, $5, $6, $7, $8, $9, $10
		FROM %s b
		WHERE b.%s = $2 AND b.%s = $3
	`,
		schema.BatchItem.Table,
		schema.BatchItem.ID, schema.BatchItem.BatchID, schema.BatchItem.UserID, schema.BatchItem.Photo,
		schema.BatchItem.Label, schema.BatchItem.Tag, schema.BatchItem.IsReceived, schema.BatchItem.ReceivedAt,
		schema.BatchItem.UncheckCount, schema.BatchItem.CreatedAt,
		schema.LaundryBatch.ID,
		schema.LaundryBatch.Table,
		schema.LaundryBatch.ID, schema.LaundryBatch.UserID,
	)

	result, err := repository.db.Exec(context, query,
		item.ID, batchID, userID, item.Photo, item.Label, item.Tag,
		item.IsReceived, item.ReceivedAt, item.UncheckCount, item.AddedAt)
	if err != nil {
		return dberr.Wrap(err, "create_batch_item")
	}
	return dberr.NotFoundUnless(result, "Batch")
}

func (repository *PostgresRepository) DeleteItem(context context.Context, userID, batchID, itemID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		schema.BatchItem.Table, schema.BatchItem.ID, schema.BatchItem.BatchID, schema.BatchItem.UserID)

	result, err := repository.db.Exec(context, query, itemID, batchID, userID)
	if err != nil {
		return dberr.Wrap(err, "delete_batch_item")
	}
	return dberr.NotFoundUnless(result, "Item")
}

func (repository *PostgresRepository) UpdateItemReceived(context context.Context, userID, batchID, itemID string, state ReceivedState) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $4, %s = $5, %s = $6 WHERE %s = $1 AND %s = $2 AND %s = $3`,
		schema.BatchItem.Table,
		schema.BatchItem.IsReceived, schema.BatchItem.ReceivedAt, schema.BatchItem.UncheckCount,
		schema.BatchItem.ID, schema.BatchItem.BatchID, schema.BatchItem.UserID)

	result, err := repository.db.Exec(context, query,
		itemID, batchID, userID, state.IsReceived, state.ReceivedAt, state.UncheckCount)
	if err != nil {
		return dberr.Wrap(err, "update_item_received")
	}
	return dberr.NotFoundUnless(result, "Item")
}

func (repository *PostgresRepository) ResetUncheckCounts(context context.Context, userID, batchID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = 0 WHERE %s = $1 AND %s = $2`,
		schema.BatchItem.Table, schema.BatchItem.UncheckCount, schema.BatchItem.BatchID, schema.BatchItem.UserID)

	_, err := repository.db.Exec(context, query, batchID, userID)
	return dberr.Wrap(err, "reset_uncheck_counts")
}
