// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package batch

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/laundrytrack/internal/laundry/library"
	"github.com/taibuivan/laundrytrack/internal/laundry/notify"
	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/constants"
	"github.com/taibuivan/laundrytrack/internal/platform/objectstore"
	"github.com/taibuivan/laundrytrack/internal/platform/validate"
	"github.com/taibuivan/laundrytrack/pkg/pointer"
	"github.com/taibuivan/laundrytrack/pkg/uuid"
)

// Options tunes a [Store].
type Options struct {
	// UncheckLimit is how often an item may go from received back to pending.
	UncheckLimit int

	// MaxItems is the capacity reported by Stats.
	MaxItems int
}

// DefaultOptions returns the production limits.
func DefaultOptions() Options {
	return Options{
		UncheckLimit: constants.DefaultUncheckLimit,
		MaxItems:     constants.DefaultMaxItems,
	}
}

// # Service Layer

/*
Store keeps each user's batches in memory in front of the repository.

Structural changes (create, delete, add, remove, reset) touch memory only
after the repository confirms them. Toggles are optimistic: memory changes
first and is rolled back when the write fails.

The mutex guards users, tracks, gates and seq. It is never held across a
repository call. Each batch also has a gate: toggles of its items share it,
ResetUncheckCount holds it exclusively.
*/
type Store struct {
	repo     Repository
	notifier *notify.Notifier
	options  Options
	now      func() time.Time

	mu     sync.Mutex
	users  map[string][]LaundryBatch
	tracks map[itemKey]*itemTrack
	gates  map[batchKey]*sync.RWMutex
	seq    uint64
}

// NewStore constructs a [Store].
func NewStore(repo Repository, notifier *notify.Notifier, options Options) *Store {
	return &Store{
		repo:     repo,
		notifier: notifier,
		options:  options,
		now:      time.Now,
		users:    make(map[string][]LaundryBatch),
		tracks:   make(map[itemKey]*itemTrack),
		gates:    make(map[batchKey]*sync.RWMutex),
	}
}

// # Internal State

// load makes sure the user's batches are in memory.
func (store *Store) load(ctx context.Context, userID string) error {
	store.mu.Lock()
	_, loaded := store.users[userID]
	store.mu.Unlock()

	if loaded {
		return nil
	}

	fetched, err := store.repo.ListBatches(ctx, userID)
	if err != nil {
		store.notifier.Error(ctx, userID, "Failed to load batches", err)
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.users[userID]; !ok {
		store.users[userID] = fetched
	}
	return nil
}

// locate returns the positions of a batch and, when itemID is set, of an item.
// Callers hold the mutex.
func (store *Store) locate(userID, batchID, itemID string) (int, int, error) {
	batches := store.users[userID]

	batchIndex := indexOfBatch(batches, batchID)
	if batchIndex < 0 {
		return -1, -1, apperr.NotFound("Batch")
	}
	if itemID == "" {
		return batchIndex, -1, nil
	}

	itemIndex := indexOfItem(batches[batchIndex].Items, itemID)
	if itemIndex < 0 {
		return batchIndex, -1, apperr.NotFound("Item")
	}
	return batchIndex, itemIndex, nil
}

// gate returns the batch's gate, creating it on first use.
func (store *Store) gate(userID, batchID string) *sync.RWMutex {
	store.mu.Lock()
	defer store.mu.Unlock()

	key := batchKey{userID: userID, batchID: batchID}
	gate, ok := store.gates[key]
	if !ok {
		gate = &sync.RWMutex{}
		store.gates[key] = gate
	}
	return gate
}

// item returns a copy of the in-memory item.
func (store *Store) item(userID, batchID, itemID string) (ClothItem, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	batchIndex, itemIndex, err := store.locate(userID, batchID, itemID)
	if err != nil {
		return ClothItem{}, err
	}
	return store.users[userID][batchIndex].Items[itemIndex].clone(), nil
}

// # Batch Commands

/*
CreateBatch creates an empty batch and puts it first in the list.

Parameters:
  - name: string (trimmed, required, at most [MaxNameLength] characters)

Returns:
  - LaundryBatch: The new batch
  - error: VALIDATION_ERROR or a repository failure
*/
func (store *Store) CreateBatch(ctx context.Context, userID, name string) (LaundryBatch, error) {
	name = strings.TrimSpace(name)

	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, MaxNameLength)
	if err := validator.Err(); err != nil {
		return LaundryBatch{}, err
	}

	if err := store.load(ctx, userID); err != nil {
		return LaundryBatch{}, err
	}

	batch := LaundryBatch{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: store.now().UTC(),
		Items:     make([]ClothItem, 0),
	}

	if err := store.repo.CreateBatch(ctx, userID, &batch); err != nil {
		store.notifier.Error(ctx, userID, "Failed to create batch", err)
		return LaundryBatch{}, err
	}

	store.mu.Lock()
	store.users[userID] = append([]LaundryBatch{batch.clone()}, store.users[userID]...)
	store.mu.Unlock()

	store.notifier.Success(ctx, userID, "Batch created")
	return batch, nil
}

// DeleteBatch removes a batch and all of its items.
func (store *Store) DeleteBatch(ctx context.Context, userID, batchID string) error {
	if _, err := store.RequireBatch(ctx, userID, batchID); err != nil {
		return err
	}

	if err := store.repo.DeleteBatch(ctx, userID, batchID); err != nil {
		store.notifier.Error(ctx, userID, "Failed to delete batch", err)
		return err
	}

	store.mu.Lock()
	store.users[userID] = slices.DeleteFunc(store.users[userID], func(batch LaundryBatch) bool {
		return batch.ID == batchID
	})
	for key := range store.tracks {
		if key.userID == userID && key.batchID == batchID {
			delete(store.tracks, key)
		}
	}
	delete(store.gates, batchKey{userID: userID, batchID: batchID})
	store.mu.Unlock()

	store.notifier.Success(ctx, userID, "Batch deleted")
	return nil
}

/*
ResetUncheckCount sets the uncheck counter of every item in the batch to zero.

It waits for toggles of the batch that are in flight, and toggles issued
meanwhile wait for it, so no toggle writes a counter read before the reset.
*/
func (store *Store) ResetUncheckCount(ctx context.Context, userID, batchID string) error {
	if _, err := store.RequireBatch(ctx, userID, batchID); err != nil {
		return err
	}

	gate := store.gate(userID, batchID)
	gate.Lock()
	defer gate.Unlock()

	if err := store.repo.ResetUncheckCounts(ctx, userID, batchID); err != nil {
		store.notifier.Error(ctx, userID, "Failed to reset uncheck count", err)
		return err
	}

	store.mu.Lock()
	if batchIndex, _, err := store.locate(userID, batchID, ""); err == nil {
		items := store.users[userID][batchIndex].Items
		for i := range items {
			items[i].UncheckCount = 0
		}
	}
	for key, track := range store.tracks {
		if key.userID == userID && key.batchID == batchID {
			track.confirmed.UncheckCount = 0
		}
	}
	store.mu.Unlock()

	store.notifier.Success(ctx, userID, "Uncheck count reset")
	return nil
}

// # Item Commands

/*
AddClothToBatch appends a new pending item to the batch.

Description: The photo is stored as given. It must be a base64 image data URL
or an absolute http(s) URL.

Returns:
  - ClothItem: The new item
  - error: VALIDATION_ERROR, NOT_FOUND (batch) or a repository failure
*/
func (store *Store) AddClothToBatch(ctx context.Context, userID, batchID string, cloth NewCloth) (ClothItem, error) {
	photo := strings.TrimSpace(cloth.Photo)
	tag := strings.TrimSpace(cloth.Tag)

	validator := &validate.Validator{}
	validator.Required(FieldPhoto, photo)
	if photo != "" {
		checkPhoto(validator, photo)
	}
	validator.Required(FieldTag, tag).MaxLen(FieldLabel, strings.TrimSpace(cloth.Label), MaxLabelLength)
	if err := validator.Err(); err != nil {
		return ClothItem{}, err
	}

	if _, err := store.RequireBatch(ctx, userID, batchID); err != nil {
		return ClothItem{}, err
	}

	item := ClothItem{
		ID:         uuid.New(),
		Photo:      photo,
		Label:      pointer.NonBlank(cloth.Label),
		Tag:        tag,
		IsReceived: false,
		AddedAt:    store.now().UTC(),
	}

	if err := store.repo.CreateItem(ctx, userID, batchID, &item); err != nil {
		store.notifier.Error(ctx, userID, "Failed to add cloth to batch", err)
		return ClothItem{}, err
	}

	store.mu.Lock()
	if batchIndex, _, err := store.locate(userID, batchID, ""); err == nil {
		batches := store.users[userID]
		batches[batchIndex].Items = append(batches[batchIndex].Items, item.clone())
	}
	store.mu.Unlock()

	store.notifier.Success(ctx, userID, "Cloth added to batch")
	return item, nil
}

// AddLibraryClothToBatch copies a catalog entry into the batch as a new pending item.
func (store *Store) AddLibraryClothToBatch(ctx context.Context, userID, batchID string, cloth library.ClothesItem) (ClothItem, error) {
	return store.AddClothToBatch(ctx, userID, batchID, NewCloth{
		Photo: cloth.PhotoURL,
		Label: pointer.Val(cloth.Label),
		Tag:   cloth.Tag,
	})
}

// RemoveClothFromBatch deletes one item from the batch.
func (store *Store) RemoveClothFromBatch(ctx context.Context, userID, batchID, itemID string) error {
	if err := store.load(ctx, userID); err != nil {
		return err
	}
	if _, err := store.item(userID, batchID, itemID); err != nil {
		return err
	}

	if err := store.repo.DeleteItem(ctx, userID, batchID, itemID); err != nil {
		store.notifier.Error(ctx, userID, "Failed to remove cloth", err)
		return err
	}

	store.mu.Lock()
	if batchIndex, _, err := store.locate(userID, batchID, ""); err == nil {
		batches := store.users[userID]
		batches[batchIndex].Items = slices.DeleteFunc(batches[batchIndex].Items, func(item ClothItem) bool {
			return item.ID == itemID
		})
	}
	delete(store.tracks, itemKey{userID: userID, batchID: batchID, itemID: itemID})
	store.mu.Unlock()

	store.notifier.Success(ctx, userID, "Cloth removed from batch")
	return nil
}

// # Optimistic Toggle

/*
ToggleClothReceived flips the received flag of an item.

Description: The new state is visible in memory before the write. Going from
received to pending stamps nothing and increments the uncheck counter; going
from pending to received stamps ReceivedAt. Going back to pending is refused
once the counter reaches the uncheck limit.

When several toggles of one item overlap, the last one issued decides the
final value. Writes of the same item are serialised and a toggle that has been
superseded before its turn skips the write. A failed write restores the last
persisted state unless a newer toggle already owns the item.

Returns:
  - ClothItem: The item as it is in memory after the toggle settled
  - error: NOT_FOUND, UNPROCESSABLE (limit reached) or a repository failure
*/
func (store *Store) ToggleClothReceived(ctx context.Context, userID, batchID, itemID string) (ClothItem, error) {
	if err := store.load(ctx, userID); err != nil {
		return ClothItem{}, err
	}

	gate := store.gate(userID, batchID)
	gate.RLock()
	defer gate.RUnlock()

	mutation, track, err := store.begin(userID, batchID, itemID)
	if err != nil {
		return ClothItem{}, err
	}
	defer store.finish(mutation, track)

	track.write.Lock()
	defer track.write.Unlock()

	if !store.prepare(mutation, track) {
		return store.item(userID, batchID, itemID)
	}

	err = store.repo.UpdateItemReceived(ctx, userID, batchID, itemID, mutation.Next)
	store.settle(mutation, track, err)
	if err != nil {
		store.notifier.Error(ctx, userID, "Failed to update cloth status", err)
		return ClothItem{}, err
	}
	return store.item(userID, batchID, itemID)
}

// begin checks the uncheck limit and applies the toggle to memory.
func (store *Store) begin(userID, batchID, itemID string) (*Mutation, *itemTrack, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	batchIndex, itemIndex, err := store.locate(userID, batchID, itemID)
	if err != nil {
		return nil, nil, err
	}
	item := &store.users[userID][batchIndex].Items[itemIndex]
	current := item.receivedState()

	if current.IsReceived && current.UncheckCount >= store.options.UncheckLimit {
		return nil, nil, apperr.Unprocessable(fmt.Sprintf(
			"This item has been unchecked %d times and can no longer be marked as pending", store.options.UncheckLimit))
	}

	next := ReceivedState{IsReceived: !current.IsReceived, UncheckCount: current.UncheckCount}
	if next.IsReceived {
		next.ReceivedAt = pointer.To(store.now().UTC())
	} else {
		next.UncheckCount++
	}

	key := itemKey{userID: userID, batchID: batchID, itemID: itemID}
	track, ok := store.tracks[key]
	if !ok {
		track = &itemTrack{confirmed: current}
		store.tracks[key] = track
	}

	store.seq++
	mutation := &Mutation{Version: store.seq, Next: next, Phase: PhasePending, key: key}
	track.latest = mutation
	track.inflight++
	item.setReceivedState(next)

	return mutation, track, nil
}

/*
prepare runs once the mutation holds the item's write lock.

A superseded mutation is marked committed and skips its write. Otherwise the
state to write is taken from memory, which is the mutation's own state.
*/
func (store *Store) prepare(mutation *Mutation, track *itemTrack) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	if track.latest != mutation {
		mutation.Phase = PhaseCommitted
		return false
	}

	key := mutation.key
	batchIndex, itemIndex, err := store.locate(key.userID, key.batchID, key.itemID)
	if err != nil {
		mutation.Phase = PhaseCommitted
		return false
	}
	mutation.Next = store.users[key.userID][batchIndex].Items[itemIndex].receivedState()
	return true
}

/*
settle moves the mutation out of PhasePending after its write.

  - success: committed, and Next becomes the revert target.
  - failure while still the latest: reverting, and memory goes back to the
    last persisted state.
  - failure after a newer toggle was issued: committed; the newer one owns
    the value.
*/
func (store *Store) settle(mutation *Mutation, track *itemTrack, err error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	switch {
	case err == nil:
		mutation.Phase = PhaseCommitted
		track.confirmed = mutation.Next
	case track.latest == mutation:
		mutation.Phase = PhaseReverting
	default:
		mutation.Phase = PhaseCommitted
	}

	if mutation.Phase == PhaseReverting {
		key := mutation.key
		if batchIndex, itemIndex, err := store.locate(key.userID, key.batchID, key.itemID); err == nil {
			store.users[key.userID][batchIndex].Items[itemIndex].setReceivedState(track.confirmed)
		}
	}
}

// finish drops the track once no toggle of the item is in flight.
func (store *Store) finish(mutation *Mutation, track *itemTrack) {
	store.mu.Lock()
	defer store.mu.Unlock()

	track.inflight--
	if track.inflight == 0 && store.tracks[mutation.key] == track {
		delete(store.tracks, mutation.key)
	}
}

// Syncing returns the phase of the latest toggle of each item of the batch
// that still has a toggle in flight.
func (store *Store) Syncing(userID, batchID string) map[string]Phase {
	store.mu.Lock()
	defer store.mu.Unlock()

	phases := make(map[string]Phase)
	for key, track := range store.tracks {
		if key.userID == userID && key.batchID == batchID && track.latest != nil {
			phases[key.itemID] = track.latest.Phase
		}
	}
	return phases
}

// # Queries

// GetBatch returns a batch and whether it exists.
func (store *Store) GetBatch(ctx context.Context, userID, batchID string) (LaundryBatch, bool) {
	batch, err := store.RequireBatch(ctx, userID, batchID)
	return batch, err == nil
}

// RequireBatch returns a batch or NOT_FOUND.
func (store *Store) RequireBatch(ctx context.Context, userID, batchID string) (LaundryBatch, error) {
	if err := store.load(ctx, userID); err != nil {
		return LaundryBatch{}, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	batchIndex, _, err := store.locate(userID, batchID, "")
	if err != nil {
		return LaundryBatch{}, err
	}
	return store.users[userID][batchIndex].clone(), nil
}

// ListBatches returns the user's batches, newest first.
func (store *Store) ListBatches(ctx context.Context, userID string) ([]LaundryBatch, error) {
	if err := store.load(ctx, userID); err != nil {
		return nil, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	return cloneBatches(store.users[userID]), nil
}

// Refetch reloads the user's batches from the repository.
func (store *Store) Refetch(ctx context.Context, userID string) ([]LaundryBatch, error) {
	fetched, err := store.repo.ListBatches(ctx, userID)
	if err != nil {
		store.notifier.Error(ctx, userID, "Failed to load batches", err)
		return nil, err
	}

	store.mu.Lock()
	store.users[userID] = fetched
	batches := cloneBatches(fetched)
	store.mu.Unlock()

	if len(batches) > 0 {
		store.notifier.Info(ctx, userID, fmt.Sprintf("Loaded %d batches", len(batches)))
	}
	return batches, nil
}

// ReferencesPhoto reports whether any of the user's items shows photoURL.
func (store *Store) ReferencesPhoto(ctx context.Context, userID, photoURL string) (bool, error) {
	if err := store.load(ctx, userID); err != nil {
		return false, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	for _, batch := range store.users[userID] {
		if slices.ContainsFunc(batch.Items, func(item ClothItem) bool { return item.Photo == photoURL }) {
			return true, nil
		}
	}
	return false, nil
}

// Stats summarises the user's batches.
func (store *Store) Stats(ctx context.Context, userID string) (Stats, error) {
	batches, err := store.ListBatches(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(batches, store.options.MaxItems), nil
}

// # Helpers

// checkPhoto accepts a base64 image data URL or an absolute http(s) URL.
func checkPhoto(validator *validate.Validator, photo string) {
	if objectstore.IsDataURL(photo) {
		_, err := objectstore.ParseDataURL(photo)
		validator.Custom(FieldPhoto, err != nil, "Photo must be a base64 image data URL")
		return
	}
	validator.URL(FieldPhoto, photo)
}

func cloneBatches(batches []LaundryBatch) []LaundryBatch {
	out := make([]LaundryBatch, len(batches))
	for i, batch := range batches {
		out[i] = batch.clone()
	}
	return out
}
