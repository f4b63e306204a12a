// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package batch_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/laundrytrack/internal/laundry/batch"
	"github.com/taibuivan/laundrytrack/internal/laundry/library"
	"github.com/taibuivan/laundrytrack/internal/laundry/notify"
	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/kv"
	"github.com/taibuivan/laundrytrack/pkg/pointer"
)

const (
	userID   = "u1"
	photoURL = "https://cdn.test/u1/shirt.jpg"
)

var errWrite = errors.New("connection reset")

// gatedRepository can hold or fail UpdateItemReceived calls.
type gatedRepository struct {
	batch.Repository

	mu       sync.Mutex
	calls    int
	gateCall int
	entered  chan struct{}
	release  chan error
	failNext error
}

func (r *gatedRepository) UpdateItemReceived(ctx context.Context, userID, batchID, itemID string, state batch.ReceivedState) error {
	r.mu.Lock()
	r.calls++
	call := r.calls
	fail := r.failNext
	r.failNext = nil
	r.mu.Unlock()

	if r.gateCall == call {
		r.entered <- struct{}{}
		if err := <-r.release; err != nil {
			return err
		}
	}
	if fail != nil {
		return fail
	}
	return r.Repository.UpdateItemReceived(ctx, userID, batchID, itemID, state)
}

func (r *gatedRepository) failOnce(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = err
}

type fixture struct {
	store *batch.Store
	repo  *gatedRepository
	local *batch.LocalRepository
	feed  *notify.MemoryFeed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	local := batch.NewLocalRepository(db)
	repo := &gatedRepository{
		Repository: local,
		entered:    make(chan struct{}, 1),
		release:    make(chan error, 1),
	}
	feed := notify.NewMemoryFeed(50)

	return &fixture{
		store: batch.NewStore(repo, notify.NewNotifier(feed), batch.DefaultOptions()),
		repo:  repo,
		local: local,
		feed:  feed,
	}
}

// seed creates a batch holding one pending shirt.
func (f *fixture) seed(t *testing.T) (batch.LaundryBatch, batch.ClothItem) {
	t.Helper()

	created, err := f.store.CreateBatch(context.Background(), userID, "Monday wash")
	require.NoError(t, err)

	item, err := f.store.AddClothToBatch(context.Background(), userID, created.ID, batch.NewCloth{
		Photo: photoURL,
		Tag:   "shirt",
	})
	require.NoError(t, err)
	return created, item
}

func (f *fixture) memoryItem(t *testing.T, batchID, itemID string) batch.ClothItem {
	t.Helper()

	current, ok := f.store.GetBatch(context.Background(), userID, batchID)
	require.True(t, ok)
	for _, item := range current.Items {
		if item.ID == itemID {
			return item
		}
	}
	t.Fatalf("item %s not in memory", itemID)
	return batch.ClothItem{}
}

// isReceived reads the in-memory flag without failing the test.
func (f *fixture) isReceived(batchID, itemID string) bool {
	current, _ := f.store.GetBatch(context.Background(), userID, batchID)
	for _, item := range current.Items {
		if item.ID == itemID {
			return item.IsReceived
		}
	}
	return false
}

func (f *fixture) persistedItem(t *testing.T, batchID, itemID string) batch.ClothItem {
	t.Helper()

	batches, err := f.local.ListBatches(context.Background(), userID)
	require.NoError(t, err)
	for _, stored := range batches {
		if stored.ID != batchID {
			continue
		}
		for _, item := range stored.Items {
			if item.ID == itemID {
				return item
			}
		}
	}
	t.Fatalf("item %s not persisted", itemID)
	return batch.ClothItem{}
}

func (f *fixture) lastNotification(t *testing.T) notify.Notification {
	t.Helper()
	recent, err := f.feed.List(context.Background(), userID, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	return recent[0]
}

func TestCreateBatch(t *testing.T) {
	f := newFixture(t)

	created, err := f.store.CreateBatch(context.Background(), userID, "  Monday wash  ")
	require.NoError(t, err)

	assert.Equal(t, "Monday wash", created.Name)
	assert.Empty(t, created.Items)
	assert.False(t, created.CreatedAt.IsZero())

	found, ok := f.store.GetBatch(context.Background(), userID, created.ID)
	require.True(t, ok)
	assert.Equal(t, created.Name, found.Name)
	assert.Equal(t, notify.LevelSuccess, f.lastNotification(t).Level)
}

func TestCreateBatch_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"too long", strings.Repeat("a", batch.MaxNameLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.store.CreateBatch(context.Background(), userID, tt.input)
			assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
		})
	}
}

func TestCreateBatch_NewestFirst(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateBatch(context.Background(), userID, "First")
	require.NoError(t, err)
	_, err = f.store.CreateBatch(context.Background(), userID, "Second")
	require.NoError(t, err)

	batches, err := f.store.ListBatches(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "Second", batches[0].Name)
	assert.Equal(t, "First", batches[1].Name)
}

func TestDeleteBatch(t *testing.T) {
	f := newFixture(t)
	created, _ := f.seed(t)

	require.NoError(t, f.store.DeleteBatch(context.Background(), userID, created.ID))

	_, ok := f.store.GetBatch(context.Background(), userID, created.ID)
	assert.False(t, ok)

	err := f.store.DeleteBatch(context.Background(), userID, created.ID)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

func TestAddClothToBatch(t *testing.T) {
	f := newFixture(t)
	created, item := f.seed(t)

	assert.False(t, item.IsReceived)
	assert.Nil(t, item.ReceivedAt)
	assert.Nil(t, item.Label)
	assert.Zero(t, item.UncheckCount)

	second, err := f.store.AddClothToBatch(context.Background(), userID, created.ID, batch.NewCloth{
		Photo: "data:image/png;base64,iVBORw0KGgo=",
		Label: "Blue jeans",
		Tag:   "pant",
	})
	require.NoError(t, err)
	assert.Equal(t, "Blue jeans", pointer.Val(second.Label))

	current, ok := f.store.GetBatch(context.Background(), userID, created.ID)
	require.True(t, ok)
	require.Len(t, current.Items, 2)
	assert.Equal(t, item.ID, current.Items[0].ID)
	assert.Equal(t, second.ID, current.Items[1].ID)
}

func TestAddClothToBatch_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		cloth batch.NewCloth
		code  string
	}{
		{"missing photo", batch.NewCloth{Tag: "shirt"}, "VALIDATION_ERROR"},
		{"photo not a url", batch.NewCloth{Photo: "shirt.jpg", Tag: "shirt"}, "VALIDATION_ERROR"},
		{"non image data url", batch.NewCloth{Photo: "data:text/plain;base64,aGVsbG8=", Tag: "shirt"}, "VALIDATION_ERROR"},
		{"missing tag", batch.NewCloth{Photo: photoURL}, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			created, err := f.store.CreateBatch(context.Background(), userID, "Wash")
			require.NoError(t, err)

			_, err = f.store.AddClothToBatch(context.Background(), userID, created.ID, tt.cloth)
			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
		})
	}

	t.Run("unknown batch", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.store.AddClothToBatch(context.Background(), userID, "missing", batch.NewCloth{Photo: photoURL, Tag: "shirt"})
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
	})
}

func TestAddLibraryClothToBatch(t *testing.T) {
	f := newFixture(t)
	created, err := f.store.CreateBatch(context.Background(), userID, "Wash")
	require.NoError(t, err)

	item, err := f.store.AddLibraryClothToBatch(context.Background(), userID, created.ID, library.ClothesItem{
		ID:       "cloth-1",
		PhotoURL: photoURL,
		Label:    pointer.To("Work shirt"),
		Tag:      "shirt",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "cloth-1", item.ID)
	assert.Equal(t, photoURL, item.Photo)
	assert.Equal(t, "Work shirt", pointer.Val(item.Label))
	assert.Equal(t, "shirt", item.Tag)
	assert.False(t, item.IsReceived)
}

func TestRemoveClothFromBatch(t *testing.T) {
	f := newFixture(t)
	created, item := f.seed(t)

	require.NoError(t, f.store.RemoveClothFromBatch(context.Background(), userID, created.ID, item.ID))

	current, _ := f.store.GetBatch(context.Background(), userID, created.ID)
	assert.Empty(t, current.Items)

	err := f.store.RemoveClothFromBatch(context.Background(), userID, created.ID, item.ID)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

func TestToggleClothReceived(t *testing.T) {
	f := newFixture(t)
	created, item := f.seed(t)

	received, err := f.store.ToggleClothReceived(context.Background(), userID, created.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, received.IsReceived)
	require.NotNil(t, received.ReceivedAt)
	assert.Zero(t, received.UncheckCount)

	pending, err := f.store.ToggleClothReceived(context.Background(), userID, created.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, pending.IsReceived)
	assert.Nil(t, pending.ReceivedAt)
	assert.Equal(t, 1, pending.UncheckCount)

	persisted := f.persistedItem(t, created.ID, item.ID)
	assert.False(t, persisted.IsReceived)
	assert.Equal(t, 1, persisted.UncheckCount)
}

func TestToggleClothReceived_UncheckLimit(t *testing.T) {
	f := newFixture(t)
	created, item := f.seed(t)
	ctx := context.Background()

	// Three full round trips use up the limit.
	for range 3 {
		_, err := f.store.ToggleClothReceived(ctx, userID, created.ID, item.ID)
		require.NoError(t, err)
		_, err = f.store.ToggleClothReceived(ctx, userID, created.ID, item.ID)
		require.NoError(t, err)
	}

	received, err := f.store.ToggleClothReceived(ctx, userID, created.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, received.IsReceived)
	assert.Equal(t, 3, received.UncheckCount)

	_, err = f.store.ToggleClothReceived(ctx, userID, created.ID, item.ID)
	assert.True(t, apperr.HasCode(err, "UNPROCESSABLE"))

	current := f.memoryItem(t, created.ID, item.ID)
	assert.True(t, current.IsReceived)
	assert.Equal(t, 3, current.UncheckCount)
}

func TestResetUncheckCount(t *testing.T) {
	f := newFixture(t)
	created, item := f.seed(t)
	ctx := context.Background()

	for range 3 {
		_, err := f.store.ToggleClothReceived(ctx, userID, created.ID, item.ID)
		require.NoError(t, err)
		_, err = f.store.ToggleClothReceived(ctx, userID, created.ID, item.ID)
		require.NoError(t, err)
	}
	_, err := f.store.ToggleClothReceived(ctx, userID, created.ID, item.ID)
	require.NoError(t, err)

	require.NoError(t, f.store.ResetUncheckCount(ctx, userID, created.ID))
	assert.Zero(t, f.memoryItem(t, created.ID, item.ID).UncheckCount)
	assert.Zero(t, f.persistedItem(t, created.ID, item.ID).UncheckCount)

	pending, err := f.store.ToggleClothReceived(ctx, userID, created.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, pending.IsReceived)
	assert.Equal(t, 1, pending.UncheckCount)
}

func TestToggleClothReceived_FailureReverts(t *testing.T) {
	f := newFixture(t)
	created, item := f.seed(t)

	f.repo.failOnce(errWrite)

	_, err := f.store.ToggleClothReceived(context.Background(), userID, created.ID, item.ID)
	require.ErrorIs(t, err, errWrite)

	current := f.memoryItem(t, created.ID, item.ID)
	assert.False(t, current.IsReceived)
	assert.Nil(t, current.ReceivedAt)

	notification := f.lastNotification(t)
	assert.Equal(t, notify.LevelError, notification.Level)
	assert.Equal(t, "Failed to update cloth status", notification.Message)
}

func TestToggleClothReceived_VisibleBeforeWrite(t *testing.T) {
	f := newFixture(t)
	created, item := f.seed(t)
	f.repo.gateCall = 1

	done := make(chan error, 1)
	go func() {
		_, err := f.store.ToggleClothReceived(context.Background(), userID, created.ID, item.ID)
		done <- err
	}()

	<-f.repo.entered
	assert.True(t, f.memoryItem(t, created.ID, item.ID).IsReceived)

	f.repo.release <- errWrite
	require.ErrorIs(t, <-done, errWrite)
	assert.False(t, f.memoryItem(t, created.ID, item.ID).IsReceived)
}

func TestToggleClothReceived_LastIssuedWins(t *testing.T) {
	t.Run("older write fails", func(t *testing.T) {
		f := newFixture(t)
		created, item := f.seed(t)
		f.repo.gateCall = 1

		first := make(chan error, 1)
		go func() {
			_, err := f.store.ToggleClothReceived(context.Background(), userID, created.ID, item.ID)
			first <- err
		}()
		<-f.repo.entered

		second := make(chan batch.ClothItem, 1)
		go func() {
			result, err := f.store.ToggleClothReceived(context.Background(), userID, created.ID, item.ID)
			assert.NoError(t, err)
			second <- result
		}()
		require.Eventually(t, func() bool {
			return !f.isReceived(created.ID, item.ID)
		}, time.Second, 5*time.Millisecond)

		f.repo.release <- errWrite
		require.ErrorIs(t, <-first, errWrite)

		result := <-second
		assert.False(t, result.IsReceived)
		assert.Equal(t, 1, result.UncheckCount)

		assert.False(t, f.memoryItem(t, created.ID, item.ID).IsReceived)
		persisted := f.persistedItem(t, created.ID, item.ID)
		assert.False(t, persisted.IsReceived)
		assert.Equal(t, 1, persisted.UncheckCount)
	})

	t.Run("newer write fails", func(t *testing.T) {
		f := newFixture(t)
		created, item := f.seed(t)
		f.repo.gateCall = 1

		first := make(chan error, 1)
		go func() {
			_, err := f.store.ToggleClothReceived(context.Background(), userID, created.ID, item.ID)
			first <- err
		}()
		<-f.repo.entered

		second := make(chan error, 1)
		go func() {
			_, err := f.store.ToggleClothReceived(context.Background(), userID, created.ID, item.ID)
			second <- err
		}()
		require.Eventually(t, func() bool {
			return !f.isReceived(created.ID, item.ID)
		}, time.Second, 5*time.Millisecond)

		f.repo.failOnce(errWrite)
		f.repo.release <- nil
		require.NoError(t, <-first)
		require.ErrorIs(t, <-second, errWrite)

		// The first toggle is the last one persisted.
		assert.True(t, f.memoryItem(t, created.ID, item.ID).IsReceived)
		assert.True(t, f.persistedItem(t, created.ID, item.ID).IsReceived)
	})
}

func TestToggleClothReceived_SyncingPhase(t *testing.T) {
	f := newFixture(t)
	created, item := f.seed(t)
	f.repo.gateCall = 1

	done := make(chan error, 1)
	go func() {
		_, err := f.store.ToggleClothReceived(context.Background(), userID, created.ID, item.ID)
		done <- err
	}()

	<-f.repo.entered
	assert.Equal(t, map[string]batch.Phase{item.ID: batch.PhasePending}, f.store.Syncing(userID, created.ID))

	f.repo.release <- nil
	require.NoError(t, <-done)
	assert.Empty(t, f.store.Syncing(userID, created.ID))
}

func TestResetUncheckCount_WaitsForToggleInFlight(t *testing.T) {
	f := newFixture(t)
	created, item := f.seed(t)
	ctx := context.Background()

	// received, pending (one uncheck), received
	for range 3 {
		_, err := f.store.ToggleClothReceived(ctx, userID, created.ID, item.ID)
		require.NoError(t, err)
	}

	f.repo.gateCall = 4
	toggled := make(chan error, 1)
	go func() {
		_, err := f.store.ToggleClothReceived(ctx, userID, created.ID, item.ID)
		toggled <- err
	}()
	<-f.repo.entered

	reset := make(chan error, 1)
	go func() {
		reset <- f.store.ResetUncheckCount(ctx, userID, created.ID)
	}()
	assert.Never(t, func() bool { return len(reset) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	f.repo.release <- nil
	require.NoError(t, <-toggled)
	require.NoError(t, <-reset)

	memory := f.memoryItem(t, created.ID, item.ID)
	persisted := f.persistedItem(t, created.ID, item.ID)
	assert.False(t, memory.IsReceived)
	assert.False(t, persisted.IsReceived)
	assert.Zero(t, memory.UncheckCount)
	assert.Zero(t, persisted.UncheckCount)
}

func TestCountsInvariant(t *testing.T) {
	f := newFixture(t)
	created, item := f.seed(t)
	ctx := context.Background()

	for range 4 {
		_, err := f.store.AddClothToBatch(ctx, userID, created.ID, batch.NewCloth{Photo: photoURL, Tag: "towel"})
		require.NoError(t, err)
	}
	_, err := f.store.ToggleClothReceived(ctx, userID, created.ID, item.ID)
	require.NoError(t, err)

	current, ok := f.store.GetBatch(ctx, userID, created.ID)
	require.True(t, ok)

	received, pending := current.Counts()
	assert.Equal(t, 1, received)
	assert.Equal(t, 4, pending)
	assert.Equal(t, len(current.Items), received+pending)
}

func TestRefetch(t *testing.T) {
	f := newFixture(t)
	created, _ := f.seed(t)

	// Written behind the store's back.
	require.NoError(t, f.local.DeleteBatch(context.Background(), userID, created.ID))

	batches, err := f.store.Refetch(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, batches)

	_, ok := f.store.GetBatch(context.Background(), userID, created.ID)
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	created, item := f.seed(t)

	_, err := f.store.ToggleClothReceived(context.Background(), userID, created.ID, item.ID)
	require.NoError(t, err)

	stats, err := f.store.Stats(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalBatches)
	assert.Equal(t, 1, stats.TotalItems)
	assert.Equal(t, 1, stats.Received)
	assert.Zero(t, stats.Pending)
	assert.Equal(t, 500, stats.MaxItems)
}

// The end-to-end flow of one laundry trip.
func TestLaundryTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip, err := f.store.CreateBatch(ctx, userID, "Weekend")
	require.NoError(t, err)

	var ids []string
	for _, tag := range []string{"shirt", "pant", "towel"} {
		item, err := f.store.AddClothToBatch(ctx, userID, trip.ID, batch.NewCloth{Photo: photoURL, Tag: tag})
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	for _, id := range ids[:2] {
		_, err := f.store.ToggleClothReceived(ctx, userID, trip.ID, id)
		require.NoError(t, err)
	}

	current, ok := f.store.GetBatch(ctx, userID, trip.ID)
	require.True(t, ok)

	pendingItems := batch.FilterItems(current.Items, batch.StatusPending, "")
	require.Len(t, pendingItems, 1)
	assert.Equal(t, "towel", pendingItems[0].Tag)

	// A fresh store over the same storage sees the same state.
	reloaded := batch.NewStore(f.local, notify.NewNotifier(notify.NewMemoryFeed(10)), batch.DefaultOptions())
	again, ok := reloaded.GetBatch(ctx, userID, trip.ID)
	require.True(t, ok)
	received, pending := again.Counts()
	assert.Equal(t, 2, received)
	assert.Equal(t, 1, pending)
}

// A fresh store over the same local storage restores every field.
func TestLocalRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	weekend, err := f.store.CreateBatch(ctx, userID, "Weekend")
	require.NoError(t, err)
	gym, err := f.store.CreateBatch(ctx, userID, "Gym")
	require.NoError(t, err)

	shirt, err := f.store.AddClothToBatch(ctx, userID, weekend.ID, batch.NewCloth{Photo: photoURL, Label: "Work shirt", Tag: "shirt"})
	require.NoError(t, err)
	jeans, err := f.store.AddClothToBatch(ctx, userID, weekend.ID, batch.NewCloth{Photo: "data:image/png;base64,iVBORw0KGgo=", Tag: "pant"})
	require.NoError(t, err)
	_, err = f.store.AddClothToBatch(ctx, userID, weekend.ID, batch.NewCloth{Photo: photoURL, Tag: "towel"})
	require.NoError(t, err)
	_, err = f.store.AddClothToBatch(ctx, userID, gym.ID, batch.NewCloth{Photo: photoURL, Label: "Socks", Tag: "custom-tag-id"})
	require.NoError(t, err)

	_, err = f.store.ToggleClothReceived(ctx, userID, weekend.ID, shirt.ID)
	require.NoError(t, err)
	for range 2 {
		_, err = f.store.ToggleClothReceived(ctx, userID, weekend.ID, jeans.ID)
		require.NoError(t, err)
	}

	original, err := f.store.ListBatches(ctx, userID)
	require.NoError(t, err)

	reloaded := batch.NewStore(f.local, notify.NewNotifier(notify.NewMemoryFeed(10)), batch.DefaultOptions())
	restored, err := reloaded.ListBatches(ctx, userID)
	require.NoError(t, err)
	require.Len(t, restored, len(original))

	for i, want := range original {
		got := restored[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.CreatedAt.Unix(), got.CreatedAt.Unix())
		require.Len(t, got.Items, len(want.Items))

		for j, wantItem := range want.Items {
			gotItem := got.Items[j]
			assert.Equal(t, wantItem.ID, gotItem.ID)
			assert.Equal(t, wantItem.Photo, gotItem.Photo)
			assert.Equal(t, wantItem.Label, gotItem.Label)
			assert.Equal(t, wantItem.Tag, gotItem.Tag)
			assert.Equal(t, wantItem.IsReceived, gotItem.IsReceived)
			assert.Equal(t, wantItem.UncheckCount, gotItem.UncheckCount)
			assert.Equal(t, wantItem.AddedAt.Unix(), gotItem.AddedAt.Unix())

			if wantItem.ReceivedAt == nil {
				assert.Nil(t, gotItem.ReceivedAt)
				continue
			}
			require.NotNil(t, gotItem.ReceivedAt)
			assert.Equal(t, wantItem.ReceivedAt.Unix(), gotItem.ReceivedAt.Unix())
		}
	}

	// jeans went received then pending again
	restoredJeans := restored[1].Items[1]
	assert.False(t, restoredJeans.IsReceived)
	assert.Equal(t, 1, restoredJeans.UncheckCount)
}
