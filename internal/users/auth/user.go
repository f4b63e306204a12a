// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements accounts and sessions.

A user registers with an email and a password and receives a short-lived JWT
access token plus a rotating refresh token. Every laundry route derives the
owning user from the access token.
*/
package auth

import (
	"strings"
	"time"
)

// # Domain Entities

// User is a registered account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Session is one refresh-token session. Only the token hash is stored.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
)

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
