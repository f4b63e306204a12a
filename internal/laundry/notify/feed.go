// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"sync"
)

// Feed stores notifications per user, newest first.
type Feed interface {
	Push(ctx context.Context, userID string, notification Notification) error
	List(ctx context.Context, userID string, limit int) ([]Notification, error)
}

// MemoryFeed keeps each user's feed in process memory. It backs the local
// storage mode and tests.
type MemoryFeed struct {
	mu       sync.Mutex
	capacity int
	feeds    map[string][]Notification
}

// NewMemoryFeed creates a feed keeping at most capacity entries per user.
func NewMemoryFeed(capacity int) *MemoryFeed {
	return &MemoryFeed{
		capacity: capacity,
		feeds:    make(map[string][]Notification),
	}
}

// Push prepends the notification and drops the oldest beyond capacity.
func (feed *MemoryFeed) Push(_ context.Context, userID string, notification Notification) error {
	feed.mu.Lock()
	defer feed.mu.Unlock()

	entries := append([]Notification{notification}, feed.feeds[userID]...)
	if len(entries) > feed.capacity {
		entries = entries[:feed.capacity]
	}
	feed.feeds[userID] = entries
	return nil
}

// List returns up to limit entries, newest first. A non-positive limit returns all.
func (feed *MemoryFeed) List(_ context.Context, userID string, limit int) ([]Notification, error) {
	feed.mu.Lock()
	defer feed.mu.Unlock()

	entries := feed.feeds[userID]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	out := make([]Notification, len(entries))
	copy(out, entries)
	return out, nil
}
