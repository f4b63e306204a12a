// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package batch

import (
	"context"
	"slices"

	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/kv"
)

// LocalRepository stores each user's batches as one JSON array, newest first.
// Every write rewrites the whole array.
type LocalRepository struct {
	store *kv.Store
}

// NewLocalRepository creates a [LocalRepository].
func NewLocalRepository(store *kv.Store) *LocalRepository {
	return &LocalRepository{store: store}
}

func (repository *LocalRepository) ListBatches(_ context.Context, userID string) ([]LaundryBatch, error) {
	batches, err := kv.Load[LaundryBatch](repository.store, repository.key(userID))
	if err != nil {
		return nil, err
	}
	for i := range batches {
		if batches[i].Items == nil {
			batches[i].Items = make([]ClothItem, 0)
		}
	}
	return batches, nil
}

func (repository *LocalRepository) CreateBatch(_ context.Context, userID string, batch *LaundryBatch) error {
	return kv.Modify(repository.store, repository.key(userID), func(batches []LaundryBatch) ([]LaundryBatch, error) {
		return append([]LaundryBatch{batch.clone()}, batches...), nil
	})
}

func (repository *LocalRepository) DeleteBatch(_ context.Context, userID, batchID string) error {
	return kv.Modify(repository.store, repository.key(userID), func(batches []LaundryBatch) ([]LaundryBatch, error) {
		index := indexOfBatch(batches, batchID)
		if index < 0 {
			return nil, apperr.NotFound("Batch")
		}
		return slices.Delete(batches, index, index+1), nil
	})
}

func (repository *LocalRepository) CreateItem(_ context.Context, userID, batchID string, item *ClothItem) error {
	return repository.modifyBatch(userID, batchID, func(batch *LaundryBatch) error {
		batch.Items = append(batch.Items, item.clone())
		return nil
	})
}

func (repository *LocalRepository) DeleteItem(_ context.Context, userID, batchID, itemID string) error {
	return repository.modifyBatch(userID, batchID, func(batch *LaundryBatch) error {
		index := indexOfItem(batch.Items, itemID)
		if index < 0 {
			return apperr.NotFound("Item")
		}
		batch.Items = slices.Delete(batch.Items, index, index+1)
		return nil
	})
}

func (repository *LocalRepository) UpdateItemReceived(_ context.Context, userID, batchID, itemID string, state ReceivedState) error {
	return repository.modifyBatch(userID, batchID, func(batch *LaundryBatch) error {
		index := indexOfItem(batch.Items, itemID)
		if index < 0 {
			return apperr.NotFound("Item")
		}
		batch.Items[index].setReceivedState(state)
		return nil
	})
}

func (repository *LocalRepository) ResetUncheckCounts(_ context.Context, userID, batchID string) error {
	return repository.modifyBatch(userID, batchID, func(batch *LaundryBatch) error {
		for i := range batch.Items {
			batch.Items[i].UncheckCount = 0
		}
		return nil
	})
}

func (repository *LocalRepository) key(userID string) []byte {
	return kv.UserKey(userID, kv.CollectionBatches)
}

func (repository *LocalRepository) modifyBatch(userID, batchID string, apply func(batch *LaundryBatch) error) error {
	return kv.Modify(repository.store, repository.key(userID), func(batches []LaundryBatch) ([]LaundryBatch, error) {
		index := indexOfBatch(batches, batchID)
		if index < 0 {
			return nil, apperr.NotFound("Batch")
		}
		if err := apply(&batches[index]); err != nil {
			return nil, err
		}
		return batches, nil
	})
}

func indexOfBatch(batches []LaundryBatch, batchID string) int {
	return slices.IndexFunc(batches, func(batch LaundryBatch) bool { return batch.ID == batchID })
}

func indexOfItem(items []ClothItem, itemID string) int {
	return slices.IndexFunc(items, func(item ClothItem) bool { return item.ID == itemID })
}
