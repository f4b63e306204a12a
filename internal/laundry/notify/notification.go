// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify records the outcome messages of laundry operations.

Every store operation that succeeds or fails in a way the user should hear
about pushes a [Notification] into that user's feed. The mobile client polls
GET /notifications and shows the newest entries as transient toasts.

Feeds are capped: only the most recent [constants.NotificationFeedSize]
entries are kept. Recording a notification never fails the operation that
produced it.
*/
package notify

import "time"

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is one entry of a user's feed.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
