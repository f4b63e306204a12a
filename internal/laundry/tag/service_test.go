// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/laundrytrack/internal/laundry/notify"
	"github.com/taibuivan/laundrytrack/internal/laundry/tag"
	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/kv"
)

// flakyRepository wraps a repository, counts List calls and can fail them.
type flakyRepository struct {
	tag.Repository
	lists     atomic.Int32
	failList  error
	failWrite error
}

func (r *flakyRepository) List(ctx context.Context, userID string) ([]tag.CustomTag, error) {
	r.lists.Add(1)
	if r.failList != nil {
		return nil, r.failList
	}
	return r.Repository.List(ctx, userID)
}

func (r *flakyRepository) Create(ctx context.Context, userID string, customTag *tag.CustomTag) error {
	if r.failWrite != nil {
		return r.failWrite
	}
	return r.Repository.Create(ctx, userID, customTag)
}

func newRegistry(t *testing.T) (*tag.Registry, *flakyRepository, *notify.MemoryFeed) {
	t.Helper()

	store, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	repo := &flakyRepository{Repository: tag.NewLocalRepository(store)}
	feed := notify.NewMemoryFeed(20)
	return tag.NewRegistry(repo, notify.NewNotifier(feed)), repo, feed
}

func TestRegistry_AddCustomTag(t *testing.T) {
	ctx := context.Background()
	registry, _, _ := newRegistry(t)

	created, err := registry.AddCustomTag(ctx, "u1", "  Work   jacket ", "")
	require.NoError(t, err)
	assert.Equal(t, "Work jacket", created.Name)
	assert.Equal(t, tag.FallbackEmoji, created.Emoji)
	assert.NotEmpty(t, created.ID)

	display := registry.GetTagDisplay(ctx, "u1", created.ID)
	assert.Equal(t, tag.KindCustom, display.Kind)
	assert.Equal(t, "Work jacket", display.Label)

	// Other users do not see it
	display = registry.GetTagDisplay(ctx, "u2", created.ID)
	assert.Equal(t, tag.KindUnknown, display.Kind)
}

func TestRegistry_AddCustomTag_Rejections(t *testing.T) {
	ctx := context.Background()
	registry, _, _ := newRegistry(t)

	_, err := registry.AddCustomTag(ctx, "u1", "   ", "🧦")
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	_, err = registry.AddCustomTag(ctx, "u1", "Áo", "")
	require.NoError(t, err)

	_, err = registry.AddCustomTag(ctx, "u1", "ao", "")
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
}

func TestRegistry_FailedCreateLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	registry, repo, feed := newRegistry(t)
	repo.failWrite = errors.New("disk full")

	_, err := registry.AddCustomTag(ctx, "u1", "Scarf", "🧣")
	require.Error(t, err)

	custom, err := registry.CustomTags(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, custom)

	recent, _ := feed.List(ctx, "u1", 1)
	require.Len(t, recent, 1)
	assert.Equal(t, notify.LevelError, recent[0].Level)
}

func TestRegistry_LoadsOncePerUser(t *testing.T) {
	ctx := context.Background()
	registry, repo, _ := newRegistry(t)

	for i := 0; i < 3; i++ {
		_, err := registry.GetAllTagOptions(ctx, "u1")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), repo.lists.Load())

	_, err := registry.Refetch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.lists.Load())
}

func TestRegistry_DeleteCustomTag(t *testing.T) {
	ctx := context.Background()
	registry, _, _ := newRegistry(t)

	created, err := registry.AddCustomTag(ctx, "u1", "Socks", "🧦")
	require.NoError(t, err)

	require.NoError(t, registry.DeleteCustomTag(ctx, "u1", created.ID))

	options, err := registry.GetAllTagOptions(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, options, len(tag.BuiltIns))

	err = registry.DeleteCustomTag(ctx, "u1", created.ID)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

func TestRegistry_GetTagDisplay_LoadFailure(t *testing.T) {
	ctx := context.Background()
	registry, repo, feed := newRegistry(t)
	repo.failList = errors.New("backend down")

	tests := []struct {
		value string
		want  tag.TagDisplay
	}{
		{"shirt", tag.TagDisplay{Kind: tag.KindBuiltIn, Value: "shirt", Label: "Shirt", Emoji: "👕"}},
		{"0192f0c4-custom", tag.TagDisplay{Kind: tag.KindUnknown, Value: "0192f0c4-custom", Label: "0192f0c4-custom", Emoji: tag.FallbackEmoji}},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, registry.GetTagDisplay(ctx, "u1", tt.value))
		})
	}

	recent, err := feed.List(ctx, "u1", 1)
	require.NoError(t, err)
	require.NotEmpty(t, recent)
	assert.Equal(t, notify.LevelError, recent[0].Level)

	// The failure is not cached: the next call loads again.
	repo.failList = nil
	created, err := registry.AddCustomTag(ctx, "u1", "Scarf", "🧣")
	require.NoError(t, err)
	assert.Equal(t, "Scarf", registry.GetTagDisplay(ctx, "u1", created.ID).Label)
}
