// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/laundrytrack/internal/laundry/notify"
	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/constants"
	"github.com/taibuivan/laundrytrack/internal/platform/ctxutil"
	"github.com/taibuivan/laundrytrack/internal/platform/media"
	"github.com/taibuivan/laundrytrack/internal/platform/objectstore"
	"github.com/taibuivan/laundrytrack/internal/platform/validate"
	"github.com/taibuivan/laundrytrack/pkg/pointer"
	"github.com/taibuivan/laundrytrack/pkg/uuid"
)

// # Service Layer

// PhotoReferences reports whether a photo URL is used outside the catalog.
// Batch items copied from a catalog entry share its photo object.
type PhotoReferences interface {
	ReferencesPhoto(ctx context.Context, userID, photoURL string) (bool, error)
}

// Library keeps an in-memory copy of each user's catalog in front of the
// repository and the photo store. The copy is loaded on first access and
// only changed after the repository confirms a write.
type Library struct {
	repo     Repository
	photos   objectstore.PhotoStore
	notifier *notify.Notifier
	now      func() time.Time

	references []PhotoReferences

	mu    sync.Mutex
	users map[string][]ClothesItem
}

// NewLibrary constructs a [Library].
func NewLibrary(repo Repository, photos objectstore.PhotoStore, notifier *notify.Notifier) *Library {
	return &Library{
		repo:     repo,
		photos:   photos,
		notifier: notifier,
		now:      time.Now,
		users:    make(map[string][]ClothesItem),
	}
}

// AddPhotoReferences registers another holder of catalog photo URLs. Objects a
// holder still references are never deleted. Call it while wiring, before
// requests are served.
func (library *Library) AddPhotoReferences(references PhotoReferences) {
	library.references = append(library.references, references)
}

// uploadedPhoto is the result of a successful upload.
type uploadedPhoto struct {
	key      string
	url      string
	blurHash string
}

// # Internal State

func (library *Library) snapshot(ctx context.Context, userID string) ([]ClothesItem, error) {
	library.mu.Lock()
	items, loaded := library.users[userID]
	library.mu.Unlock()

	if loaded {
		return cloneItems(items), nil
	}

	fetched, err := library.repo.List(ctx, userID)
	if err != nil {
		library.notifier.Error(ctx, userID, "Failed to load clothes library", err)
		return nil, err
	}

	library.mu.Lock()
	defer library.mu.Unlock()

	if current, ok := library.users[userID]; ok {
		return cloneItems(current), nil
	}
	library.users[userID] = fetched
	return cloneItems(fetched), nil
}

// apply mutates the cached entry with the given id, if the cache holds it.
func (library *Library) apply(userID, id string, mutate func(item *ClothesItem)) (ClothesItem, bool) {
	library.mu.Lock()
	defer library.mu.Unlock()

	items := library.users[userID]
	index := slices.IndexFunc(items, func(item ClothesItem) bool { return item.ID == id })
	if index < 0 {
		return ClothesItem{}, false
	}

	mutate(&items[index])
	return cloneItem(items[index]), true
}

// # Photo Handling

/*
uploadPhoto decodes a data URL and stores it under the user's prefix.

The upload runs on a context detached from the request: a client that hangs up
mid-upload does not abort it. [constants.UploadTimeout] still bounds it.
The BlurHash is best effort and left empty when the image cannot be decoded.
*/
func (library *Library) uploadPhoto(ctx context.Context, userID, photoData string) (uploadedPhoto, error) {
	dataURL, err := objectstore.ParseDataURL(photoData)
	if err != nil {
		return uploadedPhoto{}, validate.RequiredError(FieldPhoto, "Photo must be a base64 image data URL")
	}

	key, err := objectstore.NewKey(userID, dataURL.Extension())
	if err != nil {
		return uploadedPhoto{}, apperr.Internal(err)
	}

	uploadCtx, cancel := ctxutil.Detached(ctx, constants.UploadTimeout)
	defer cancel()

	publicURL, err := library.photos.Put(uploadCtx, key, dataURL.Data, dataURL.ContentType())
	if err != nil {
		return uploadedPhoto{}, apperr.Upstream("Failed to upload photo", err)
	}

	blurHash, err := media.BlurHash(dataURL.Data)
	if err != nil {
		ctxutil.GetLogger(ctx).DebugContext(ctx, "blurhash_skipped", slog.String("key", key), slog.Any("error", err))
	}

	return uploadedPhoto{key: key, url: publicURL, blurHash: blurHash}, nil
}

// discardPhoto removes an object no row references. Failures are only logged.
func (library *Library) discardPhoto(ctx context.Context, key string) {
	deleteCtx, cancel := ctxutil.Detached(ctx, constants.CleanupTimeout)
	defer cancel()

	if err := library.photos.Delete(deleteCtx, key); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "photo_cleanup_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

// discardPhotoURL removes the object behind a stored URL when this store
// produced it and nothing references it any more.
func (library *Library) discardPhotoURL(ctx context.Context, userID, publicURL string) {
	key, ok := library.photos.KeyFromURL(publicURL)
	if !ok || library.inUse(ctx, userID, publicURL) {
		return
	}
	library.discardPhoto(ctx, key)
}

// inUse reports whether a cached entry or a registered holder uses photoURL.
// A holder that cannot answer counts as a reference.
func (library *Library) inUse(ctx context.Context, userID, photoURL string) bool {
	library.mu.Lock()
	cached := slices.ContainsFunc(library.users[userID], func(entry ClothesItem) bool {
		return entry.PhotoURL == photoURL
	})
	library.mu.Unlock()

	if cached {
		return true
	}

	for _, references := range library.references {
		used, err := references.ReferencesPhoto(ctx, userID, photoURL)
		if err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "photo_reference_check_failed",
				slog.String("url", photoURL),
				slog.Any("error", err),
			)
			return true
		}
		if used {
			return true
		}
	}
	return false
}

// # Commands

/*
AddCloth uploads the photo and creates a catalog entry.

Description: Upload failure or insert failure fails the call. When the insert
fails after a successful upload, the uploaded object is deleted again.

Parameters:
  - photoData: string (base64 image data URL)
  - label: string (optional, blank means none)
  - tag: string (built-in value or custom tag id)

Returns:
  - ClothesItem: The new entry
  - error: VALIDATION_ERROR, UPSTREAM_ERROR or a repository failure
*/
func (library *Library) AddCloth(ctx context.Context, userID, photoData, label, tag string) (ClothesItem, error) {
	tag = strings.TrimSpace(tag)

	validator := &validate.Validator{}
	validator.Required(FieldTag, tag).MaxLen(FieldLabel, strings.TrimSpace(label), MaxLabelLength)
	if err := validator.Err(); err != nil {
		return ClothesItem{}, err
	}

	if _, err := library.snapshot(ctx, userID); err != nil {
		return ClothesItem{}, err
	}

	photo, err := library.uploadPhoto(ctx, userID, photoData)
	if err != nil {
		if !apperr.HasCode(err, "VALIDATION_ERROR") {
			library.notifier.Error(ctx, userID, "Failed to upload photo", err)
		}
		return ClothesItem{}, err
	}

	item := ClothesItem{
		ID:        uuid.New(),
		PhotoURL:  photo.url,
		Label:     pointer.NonBlank(label),
		Tag:       tag,
		BlurHash:  photo.blurHash,
		CreatedAt: library.now().UTC(),
	}

	if err := library.repo.Create(ctx, userID, &item); err != nil {
		library.discardPhoto(ctx, photo.key)
		library.notifier.Error(ctx, userID, "Failed to add cloth", err)
		return ClothesItem{}, err
	}

	library.mu.Lock()
	library.users[userID] = append([]ClothesItem{item}, library.users[userID]...)
	library.mu.Unlock()

	library.notifier.Success(ctx, userID, "Cloth added to library")
	return cloneItem(item), nil
}

// UpdateClothLabel sets or clears (blank) the label.
func (library *Library) UpdateClothLabel(ctx context.Context, userID, id, label string) (ClothesItem, error) {
	if err := (&validate.Validator{}).MaxLen(FieldLabel, strings.TrimSpace(label), MaxLabelLength).Err(); err != nil {
		return ClothesItem{}, err
	}
	if _, err := library.Get(ctx, userID, id); err != nil {
		return ClothesItem{}, err
	}

	value := pointer.NonBlank(label)
	if err := library.repo.UpdateLabel(ctx, userID, id, value); err != nil {
		library.notifier.Error(ctx, userID, "Failed to update label", err)
		return ClothesItem{}, err
	}

	item, _ := library.apply(userID, id, func(item *ClothesItem) { item.Label = value })
	return item, nil
}

// UpdateClothTag changes the category.
func (library *Library) UpdateClothTag(ctx context.Context, userID, id, tag string) (ClothesItem, error) {
	tag = strings.TrimSpace(tag)
	if err := (&validate.Validator{}).Required(FieldTag, tag).Err(); err != nil {
		return ClothesItem{}, err
	}
	if _, err := library.Get(ctx, userID, id); err != nil {
		return ClothesItem{}, err
	}

	if err := library.repo.UpdateTag(ctx, userID, id, tag); err != nil {
		library.notifier.Error(ctx, userID, "Failed to update category", err)
		return ClothesItem{}, err
	}

	item, _ := library.apply(userID, id, func(item *ClothesItem) { item.Tag = tag })
	return item, nil
}

/*
UpdatePhoto replaces the photo of an entry.

The new object is uploaded first. If the row update fails the new object is
deleted. If it succeeds the previous object is deleted unless batch items
still show it.
*/
func (library *Library) UpdatePhoto(ctx context.Context, userID, id, photoData string) (ClothesItem, error) {
	previous, err := library.Get(ctx, userID, id)
	if err != nil {
		return ClothesItem{}, err
	}

	photo, err := library.uploadPhoto(ctx, userID, photoData)
	if err != nil {
		if !apperr.HasCode(err, "VALIDATION_ERROR") {
			library.notifier.Error(ctx, userID, "Failed to upload photo", err)
		}
		return ClothesItem{}, err
	}

	if err := library.repo.UpdatePhoto(ctx, userID, id, photo.url, photo.blurHash); err != nil {
		library.discardPhoto(ctx, photo.key)
		library.notifier.Error(ctx, userID, "Failed to update photo", err)
		return ClothesItem{}, err
	}

	item, _ := library.apply(userID, id, func(item *ClothesItem) {
		item.PhotoURL = photo.url
		item.BlurHash = photo.blurHash
	})

	library.discardPhotoURL(ctx, userID, previous.PhotoURL)
	return item, nil
}

/*
UpdateCloth applies a combined edit in the order photo, label, tag.

The first failing step aborts the rest. Steps that already succeeded stay
committed; nothing is rolled back.
*/
func (library *Library) UpdateCloth(ctx context.Context, userID, id string, patch ClothPatch) (ClothesItem, error) {
	if patch.IsEmpty() {
		return library.Get(ctx, userID, id)
	}

	var item ClothesItem
	var err error

	if patch.Photo != nil {
		if item, err = library.UpdatePhoto(ctx, userID, id, *patch.Photo); err != nil {
			return ClothesItem{}, err
		}
	}
	if patch.Label != nil {
		if item, err = library.UpdateClothLabel(ctx, userID, id, *patch.Label); err != nil {
			return ClothesItem{}, err
		}
	}
	if patch.Tag != nil {
		if item, err = library.UpdateClothTag(ctx, userID, id, *patch.Tag); err != nil {
			return ClothesItem{}, err
		}
	}

	library.notifier.Success(ctx, userID, "Cloth updated")
	return item, nil
}

/*
DeleteCloth removes the entry, then its photo object.

Batch items copied from this entry share its photo object. The object is only
removed when neither the catalog nor a registered [PhotoReferences] holder
uses it.
*/
func (library *Library) DeleteCloth(ctx context.Context, userID, id string) error {
	item, err := library.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := library.repo.Delete(ctx, userID, id); err != nil {
		library.notifier.Error(ctx, userID, "Failed to delete cloth", err)
		return err
	}

	library.mu.Lock()
	library.users[userID] = slices.DeleteFunc(library.users[userID], func(entry ClothesItem) bool {
		return entry.ID == id
	})
	library.mu.Unlock()

	library.discardPhotoURL(ctx, userID, item.PhotoURL)

	library.notifier.Success(ctx, userID, "Cloth removed from library")
	return nil
}

// Refetch reloads the catalog and replaces the in-memory copy wholesale.
func (library *Library) Refetch(ctx context.Context, userID string) ([]ClothesItem, error) {
	fetched, err := library.repo.List(ctx, userID)
	if err != nil {
		library.notifier.Error(ctx, userID, "Failed to load clothes library", err)
		return nil, err
	}

	library.mu.Lock()
	library.users[userID] = fetched
	library.mu.Unlock()

	return cloneItems(fetched), nil
}

// # Queries

// List returns the catalog, newest first.
func (library *Library) List(ctx context.Context, userID string) ([]ClothesItem, error) {
	return library.snapshot(ctx, userID)
}

// Get returns one entry or NOT_FOUND.
func (library *Library) Get(ctx context.Context, userID, id string) (ClothesItem, error) {
	items, err := library.snapshot(ctx, userID)
	if err != nil {
		return ClothesItem{}, err
	}

	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return ClothesItem{}, apperr.NotFound("Cloth")
}

// # Helpers

func cloneItem(item ClothesItem) ClothesItem {
	item.Label = pointer.Clone(item.Label)
	return item
}

func cloneItems(items []ClothesItem) []ClothesItem {
	out := make([]ClothesItem, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}
