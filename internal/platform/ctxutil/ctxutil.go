// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ctxutil reads and writes the per-request values the middleware puts
on a [context.Context]: request id, logger and the signed-in user.

Work that must outlive the request (photo uploads, cleanup of orphaned
objects, notification writes) runs on a [Detached] context, which keeps these
values but not the request's cancellation.
*/
package ctxutil

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/laundrytrack/internal/platform/ctxkey"
	"github.com/taibuivan/laundrytrack/internal/platform/sec"
)

// WithRequestID attaches the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the request id, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// WithLogger attaches the request logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request logger, or [slog.Default]. When a user is
// signed in the logger carries their id as user_id.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		logger = slog.Default()
	}
	if userID := GetUserID(ctx); userID != "" {
		logger = logger.With(slog.String("user_id", userID))
	}
	return logger
}

// WithAuthUser attaches the verified token claims.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser returns the verified token claims, or nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	return claims
}

// GetUserID returns the signed-in user's id, or "".
func GetUserID(ctx context.Context) string {
	if claims := GetAuthUser(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}

// Detached returns a context that keeps the values of ctx, ignores its
// cancellation and expires after timeout.
func Detached(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}
