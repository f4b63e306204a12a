// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and cookie configuration.
  - Laundry: Limits shared by the batch store and the HTTP layer.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "laundrytrack-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Photo payloads arrive inline as data URLs, so this is longer than a plain JSON API needs.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 20 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// UploadTimeout bounds a photo upload once started. Uploads run on a
	// context detached from the request so a closed client does not abort them.
	UploadTimeout = 60 * time.Second

	// CleanupTimeout bounds detached follow-up writes: deleting orphaned photo
	// objects and recording notifications.
	CleanupTimeout = 10 * time.Second
)

// # Request Limits

const (
	// MaxRequestBodyBytes caps JSON bodies, which may carry a base64 photo.
	MaxRequestBodyBytes = 12 << 20
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "laundrytrack.app"

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"
)

// # Laundry

const (
	// DefaultUncheckLimit is how many times a received item may go back to pending.
	DefaultUncheckLimit = 3

	// DefaultMaxItems is the soft storage capacity reported by the stats endpoint.
	DefaultMaxItems = 500

	// NearFullPercent is the usage threshold at which storage is reported as near full.
	NearFullPercent = 80.0

	// NotificationFeedSize is how many notifications are kept per user.
	NotificationFeedSize = 50

	// NotificationFeedTTL expires an idle user's feed.
	NotificationFeedTTL = 7 * 24 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession       = "auth:session:"
	RedisPrefixNotifications = "laundry:notifications:"
)
