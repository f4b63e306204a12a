// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"slices"

	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/kv"
)

// LocalRepository stores each user's custom tags as one JSON array in the kv store.
type LocalRepository struct {
	store *kv.Store
}

// NewLocalRepository creates a [LocalRepository].
func NewLocalRepository(store *kv.Store) *LocalRepository {
	return &LocalRepository{store: store}
}

func (repository *LocalRepository) List(_ context.Context, userID string) ([]CustomTag, error) {
	return kv.Load[CustomTag](repository.store, kv.UserKey(userID, kv.CollectionCustomTags))
}

func (repository *LocalRepository) Create(_ context.Context, userID string, customTag *CustomTag) error {
	return kv.Modify(repository.store, kv.UserKey(userID, kv.CollectionCustomTags), func(tags []CustomTag) ([]CustomTag, error) {
		return append(tags, *customTag), nil
	})
}

func (repository *LocalRepository) Delete(_ context.Context, userID, id string) error {
	return kv.Modify(repository.store, kv.UserKey(userID, kv.CollectionCustomTags), func(tags []CustomTag) ([]CustomTag, error) {
		index := slices.IndexFunc(tags, func(customTag CustomTag) bool { return customTag.ID == id })
		if index < 0 {
			return nil, apperr.NotFound("Tag")
		}
		return slices.Delete(tags, index, index+1), nil
	})
}
