// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/laundrytrack/internal/platform/constants"
)

// RedisFeed keeps each user's feed in a capped Redis list.
type RedisFeed struct {
	client   *redis.Client
	capacity int
	ttl      time.Duration
}

// NewRedisFeed creates a Redis-backed [Feed].
func NewRedisFeed(client *redis.Client, capacity int, ttl time.Duration) *RedisFeed {
	return &RedisFeed{client: client, capacity: capacity, ttl: ttl}
}

func feedKey(userID string) string {
	return constants.RedisPrefixNotifications + userID
}

/*
Push prepends the notification, trims the list to capacity and refreshes its TTL.

The three commands run in one MULTI/EXEC so a reader never sees an untrimmed list.
*/
func (feed *RedisFeed) Push(ctx context.Context, userID string, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("redis_feed_marshal_failed: %w", err)
	}

	key := feedKey(userID)
	_, err = feed.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, int64(feed.capacity-1))
		pipe.Expire(ctx, key, feed.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_feed_push_failed: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. A non-positive limit returns the whole feed.
func (feed *RedisFeed) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	raw, err := feed.client.LRange(ctx, feedKey(userID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_feed_list_failed: %w", err)
	}

	notifications := make([]Notification, 0, len(raw))
	for _, entry := range raw {
		var notification Notification
		if err := json.Unmarshal([]byte(entry), &notification); err != nil {
			// Skip entries written by an incompatible version.
			continue
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}
