// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"slices"

	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/kv"
)

// LocalRepository stores each user's catalog as one JSON array, newest first.
type LocalRepository struct {
	store *kv.Store
}

// NewLocalRepository creates a [LocalRepository].
func NewLocalRepository(store *kv.Store) *LocalRepository {
	return &LocalRepository{store: store}
}

func (repository *LocalRepository) List(_ context.Context, userID string) ([]ClothesItem, error) {
	return kv.Load[ClothesItem](repository.store, kv.UserKey(userID, kv.CollectionClothes))
}

func (repository *LocalRepository) Create(_ context.Context, userID string, item *ClothesItem) error {
	return kv.Modify(repository.store, kv.UserKey(userID, kv.CollectionClothes), func(items []ClothesItem) ([]ClothesItem, error) {
		return append([]ClothesItem{*item}, items...), nil
	})
}

func (repository *LocalRepository) UpdateLabel(_ context.Context, userID, id string, label *string) error {
	return repository.modifyOne(userID, id, func(item *ClothesItem) {
		item.Label = label
	})
}

func (repository *LocalRepository) UpdateTag(_ context.Context, userID, id, tag string) error {
	return repository.modifyOne(userID, id, func(item *ClothesItem) {
		item.Tag = tag
	})
}

func (repository *LocalRepository) UpdatePhoto(_ context.Context, userID, id, photoURL, blurHash string) error {
	return repository.modifyOne(userID, id, func(item *ClothesItem) {
		item.PhotoURL = photoURL
		item.BlurHash = blurHash
	})
}

func (repository *LocalRepository) Delete(_ context.Context, userID, id string) error {
	return kv.Modify(repository.store, kv.UserKey(userID, kv.CollectionClothes), func(items []ClothesItem) ([]ClothesItem, error) {
		index := slices.IndexFunc(items, func(item ClothesItem) bool { return item.ID == id })
		if index < 0 {
			return nil, apperr.NotFound("Cloth")
		}
		return slices.Delete(items, index, index+1), nil
	})
}

func (repository *LocalRepository) modifyOne(userID, id string, apply func(item *ClothesItem)) error {
	return kv.Modify(repository.store, kv.UserKey(userID, kv.CollectionClothes), func(items []ClothesItem) ([]ClothesItem, error) {
		index := slices.IndexFunc(items, func(item ClothesItem) bool { return item.ID == id })
		if index < 0 {
			return nil, apperr.NotFound("Cloth")
		}
		apply(&items[index])
		return items, nil
	})
}
