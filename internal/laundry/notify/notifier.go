// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/laundrytrack/internal/platform/constants"
	"github.com/taibuivan/laundrytrack/internal/platform/ctxutil"
	"github.com/taibuivan/laundrytrack/pkg/uuid"
)

// Notifier is the store-boundary reporter: it logs the outcome and appends it
// to the user's feed.
type Notifier struct {
	feed Feed
	now  func() time.Time
}

// NewNotifier creates a [Notifier] writing to feed.
func NewNotifier(feed Feed) *Notifier {
	return &Notifier{feed: feed, now: time.Now}
}

// Success records a success message.
func (notifier *Notifier) Success(ctx context.Context, userID, message string) {
	notifier.record(ctx, userID, LevelSuccess, message)
}

// Info records an informational message.
func (notifier *Notifier) Info(ctx context.Context, userID, message string) {
	notifier.record(ctx, userID, LevelInfo, message)
}

// Error logs cause and records message as an error notification.
func (notifier *Notifier) Error(ctx context.Context, userID, message string, cause error) {
	ctxutil.GetLogger(ctx).ErrorContext(ctx, "laundry_operation_failed",
		slog.String("message", message),
		slog.Any("error", cause),
	)
	notifier.record(ctx, userID, LevelError, message)
}

// Recent returns the newest notifications of the user.
func (notifier *Notifier) Recent(ctx context.Context, userID string, limit int) ([]Notification, error) {
	return notifier.feed.List(ctx, userID, limit)
}

func (notifier *Notifier) record(ctx context.Context, userID string, level Level, message string) {
	notification := Notification{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		CreatedAt: notifier.now().UTC(),
	}

	// The request may already be cancelled when a failure is reported.
	pushCtx, cancel := ctxutil.Detached(ctx, constants.CleanupTimeout)
	defer cancel()

	if err := notifier.feed.Push(pushCtx, userID, notification); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "notification_push_failed",
			slog.String("level", string(level)),
			slog.Any("error", err),
		)
	}
}
