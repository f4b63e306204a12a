// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a session/refresh token remains valid.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random secure token.
	RefreshTokenLength = 32

	// MinPasswordLength is the shortest password accepted at registration.
	MinPasswordLength = 8

	// MaxPasswordLength is the bcrypt input limit.
	MaxPasswordLength = 72
)
