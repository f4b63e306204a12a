// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package batch

import "context"

// Repository persists batches and items. Every call is scoped to one user and
// unknown ids yield NOT_FOUND.
//
// A batch and its items are written by separate calls; nothing spans them in a
// transaction.
type Repository interface {
	// ListBatches returns the user's batches newest first, each with its items in insertion order.
	ListBatches(ctx context.Context, userID string) ([]LaundryBatch, error)

	CreateBatch(ctx context.Context, userID string, batch *LaundryBatch) error

	// DeleteBatch removes the batch together with its items.
	DeleteBatch(ctx context.Context, userID, batchID string) error

	CreateItem(ctx context.Context, userID, batchID string, item *ClothItem) error
	DeleteItem(ctx context.Context, userID, batchID, itemID string) error

	// UpdateItemReceived writes the absolute received state of an item.
	UpdateItemReceived(ctx context.Context, userID, batchID, itemID string, state ReceivedState) error

	// ResetUncheckCounts sets the uncheck counter of every item of the batch to zero.
	ResetUncheckCounts(ctx context.Context, userID, batchID string) error
}
