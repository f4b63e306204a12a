// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/laundrytrack/internal/platform/ctxutil"
	"github.com/taibuivan/laundrytrack/internal/platform/sec"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", ctxutil.GetRequestID(ctx))
}

func TestAuthUser(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetAuthUser(ctx))
	assert.Empty(t, ctxutil.GetUserID(ctx))

	ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{UserID: "user-123", Email: "ana@example.com"})

	claims := ctxutil.GetAuthUser(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "user-123", ctxutil.GetUserID(ctx))
}

func TestGetLogger(t *testing.T) {
	t.Run("falls back to the default logger", func(t *testing.T) {
		assert.Equal(t, slog.Default(), ctxutil.GetLogger(context.Background()))
	})

	t.Run("tags the signed-in user", func(t *testing.T) {
		var out bytes.Buffer
		ctx := ctxutil.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&out, nil)))
		ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{UserID: "user-123"})

		ctxutil.GetLogger(ctx).Info("batch_created")

		var line map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &line))
		assert.Equal(t, "batch_created", line["msg"])
		assert.Equal(t, "user-123", line["user_id"])
	})
}

func TestDetached(t *testing.T) {
	parent, cancel := context.WithCancel(ctxutil.WithRequestID(context.Background(), "req-7"))

	detached, stop := ctxutil.Detached(parent, time.Minute)
	defer stop()

	cancel()
	require.Error(t, parent.Err())
	assert.NoError(t, detached.Err(), "parent cancellation must not reach the detached context")
	assert.Equal(t, "req-7", ctxutil.GetRequestID(detached))

	deadline, ok := detached.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
