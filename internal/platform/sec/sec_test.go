// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/laundrytrack/internal/platform/sec"
)

/*
TestTokenService_RoundTrip verifies that a signed token verifies back to its claims.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service, err := sec.NewEphemeralTokenService("laundrytrack.test")
	require.NoError(t, err)

	token, err := service.GenerateAccessToken("user-1", "ana@example.com", time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
}

/*
TestTokenService_Rejects covers expired tokens and tokens from another key pair.
*/
func TestTokenService_Rejects(t *testing.T) {
	service, err := sec.NewEphemeralTokenService("laundrytrack.test")
	require.NoError(t, err)

	other, err := sec.NewEphemeralTokenService("laundrytrack.test")
	require.NoError(t, err)

	expired, err := service.GenerateAccessToken("user-1", "ana@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = service.VerifyToken(expired)
	assert.Error(t, err)

	foreign, err := other.GenerateAccessToken("user-1", "ana@example.com", time.Minute)
	require.NoError(t, err)
	_, err = service.VerifyToken(foreign)
	assert.Error(t, err)

	_, err = service.VerifyToken("not-a-jwt")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, sec.PasswordMatches(hash, "correct horse"))
	assert.False(t, sec.PasswordMatches(hash, "wrong horse"))
	assert.False(t, sec.RejectPassword("correct horse"))

	// 24 three-byte runes: 72 bytes is accepted, one more rune is not.
	_, err = sec.HashPassword(strings.Repeat("ả", 24))
	require.NoError(t, err)
	_, err = sec.HashPassword(strings.Repeat("ả", 25))
	assert.ErrorIs(t, err, sec.ErrPasswordTooLong)
}

func TestSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, sec.HashToken(first), 64)
	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
}
