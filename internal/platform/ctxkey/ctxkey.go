// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the context keys set by the HTTP middleware. Read the
// values through ctxutil rather than with these keys directly.
package ctxkey

// key keeps these entries apart from string keys set by other packages.
type key string

const (
	// KeyRequestID carries the X-Request-ID of the request.
	KeyRequestID key = "request_id"

	// KeyUser carries the verified access token claims ([sec.AuthClaims]).
	KeyUser key = "user"

	// KeyLogger carries the request-scoped [*log/slog.Logger].
	KeyLogger key = "logger"
)
