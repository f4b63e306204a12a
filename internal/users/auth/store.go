// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository stores accounts. Lookups of unknown users return NOT_FOUND.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail expects an email already passed through [NormalizeEmail].
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create fails with CONFLICT when the email is taken.
	Create(ctx context.Context, user *User) error

	TouchLastLogin(ctx context.Context, userID string) error
}

// # Session Data Access

// SessionRepository stores refresh-token sessions keyed by token hash.
// Expired sessions are not returned.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Revoke deletes the session. Revoking an unknown session is not an error.
	Revoke(ctx context.Context, tokenHash string) error
}
