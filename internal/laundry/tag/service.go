// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/laundrytrack/internal/laundry/notify"
	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/validate"
	"github.com/taibuivan/laundrytrack/pkg/textnorm"
	"github.com/taibuivan/laundrytrack/pkg/uuid"
)

// # Registry

// Registry serves tag options and display resolution from an in-memory copy
// of each user's custom tags. The copy is loaded on first access.
type Registry struct {
	repo     Repository
	notifier *notify.Notifier
	now      func() time.Time

	mu    sync.Mutex
	users map[string][]CustomTag
}

// NewRegistry constructs a [Registry] over repo.
func NewRegistry(repo Repository, notifier *notify.Notifier) *Registry {
	return &Registry{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
		users:    make(map[string][]CustomTag),
	}
}

// snapshot returns a copy of the user's tags, loading them first if needed.
func (registry *Registry) snapshot(ctx context.Context, userID string) ([]CustomTag, error) {
	registry.mu.Lock()
	tags, loaded := registry.users[userID]
	registry.mu.Unlock()

	if loaded {
		return slices.Clone(tags), nil
	}

	fetched, err := registry.repo.List(ctx, userID)
	if err != nil {
		registry.notifier.Error(ctx, userID, "Failed to load tags", err)
		return nil, err
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	// Another request may have loaded and mutated the list meanwhile; keep its copy.
	if current, ok := registry.users[userID]; ok {
		return slices.Clone(current), nil
	}
	registry.users[userID] = fetched
	return slices.Clone(fetched), nil
}

// # Commands

/*
AddCustomTag creates a custom tag.

Description: The name is NFC-normalized and trimmed; a blank emoji becomes
[FallbackEmoji]. A name equal to an existing custom tag (ignoring case and
accents) is rejected. Memory is only updated once the repository confirms.

Returns:
  - CustomTag: The stored tag
  - error: VALIDATION_ERROR, CONFLICT or a repository failure
*/
func (registry *Registry) AddCustomTag(ctx context.Context, userID, name, emoji string) (CustomTag, error) {
	name = textnorm.Name(name)
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		emoji = FallbackEmoji
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, MaxNameLength)
	if err := validator.Err(); err != nil {
		return CustomTag{}, err
	}

	existing, err := registry.snapshot(ctx, userID)
	if err != nil {
		return CustomTag{}, err
	}

	key := textnorm.Key(name)
	for _, customTag := range existing {
		if textnorm.Key(customTag.Name) == key {
			return CustomTag{}, apperr.Conflict("A tag with this name already exists")
		}
	}

	customTag := CustomTag{
		ID:        uuid.New(),
		Name:      name,
		Emoji:     emoji,
		CreatedAt: registry.now().UTC(),
	}

	if err := registry.repo.Create(ctx, userID, &customTag); err != nil {
		registry.notifier.Error(ctx, userID, "Failed to add tag", err)
		return CustomTag{}, err
	}

	registry.mu.Lock()
	registry.users[userID] = append(registry.users[userID], customTag)
	registry.mu.Unlock()

	registry.notifier.Success(ctx, userID, "Tag \""+customTag.Name+"\" added")
	return customTag, nil
}

/*
DeleteCustomTag removes a custom tag.

Items and library entries keep the deleted id as their tag value; it resolves
as an unknown value from then on.
*/
func (registry *Registry) DeleteCustomTag(ctx context.Context, userID, id string) error {
	if _, err := registry.snapshot(ctx, userID); err != nil {
		return err
	}

	if err := registry.repo.Delete(ctx, userID, id); err != nil {
		if !apperr.HasCode(err, "NOT_FOUND") {
			registry.notifier.Error(ctx, userID, "Failed to delete tag", err)
		}
		return err
	}

	registry.mu.Lock()
	registry.users[userID] = slices.DeleteFunc(registry.users[userID], func(customTag CustomTag) bool {
		return customTag.ID == id
	})
	registry.mu.Unlock()

	registry.notifier.Success(ctx, userID, "Tag deleted")
	return nil
}

// Refetch replaces the in-memory tags with the repository's current list.
func (registry *Registry) Refetch(ctx context.Context, userID string) ([]CustomTag, error) {
	fetched, err := registry.repo.List(ctx, userID)
	if err != nil {
		registry.notifier.Error(ctx, userID, "Failed to load tags", err)
		return nil, err
	}

	registry.mu.Lock()
	registry.users[userID] = fetched
	registry.mu.Unlock()

	return slices.Clone(fetched), nil
}

// # Queries

// CustomTags returns the user's custom tags in stored order.
func (registry *Registry) CustomTags(ctx context.Context, userID string) ([]CustomTag, error) {
	return registry.snapshot(ctx, userID)
}

// GetAllTagOptions returns the built-ins followed by the user's custom tags.
func (registry *Registry) GetAllTagOptions(ctx context.Context, userID string) ([]TagOption, error) {
	custom, err := registry.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Options(custom), nil
}

/*
GetTagDisplay resolves value against the built-ins and the user's custom tags.

It never fails. When the custom tags cannot be loaded the failure is recorded
as a notification and value resolves against the built-ins alone.
*/
func (registry *Registry) GetTagDisplay(ctx context.Context, userID, value string) TagDisplay {
	custom, err := registry.snapshot(ctx, userID)
	if err != nil {
		return Resolve(value, nil)
	}
	return Resolve(value, custom)
}
