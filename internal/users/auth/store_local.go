// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/kv"
)

// # User Repository

// LocalUserRepository stores accounts in the local key-value store, with an
// email index pointing at the account key.
type LocalUserRepository struct {
	store *kv.Store
	now   func() time.Time

	// mu makes the email uniqueness check and the insert one step.
	mu sync.Mutex
}

// NewLocalUserRepository creates a [LocalUserRepository].
func NewLocalUserRepository(store *kv.Store) *LocalUserRepository {
	return &LocalUserRepository{store: store, now: time.Now}
}

func (repository *LocalUserRepository) Create(_ context.Context, user *User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var existing string
	err := repository.store.Get(emailKey(user.Email), &existing)
	if err == nil {
		return apperr.Conflict("Email is already registered")
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return err
	}

	if err := repository.store.Set(accountKey(user.ID), newAccountRecord(user)); err != nil {
		return err
	}
	return repository.store.Set(emailKey(user.Email), user.ID)
}

func (repository *LocalUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	var user accountRecord
	if err := repository.store.Get(accountKey(id), &user); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}
	return user.toUser(), nil
}

func (repository *LocalUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var id string
	if err := repository.store.Get(emailKey(email), &id); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}
	return repository.FindByID(ctx, id)
}

func (repository *LocalUserRepository) TouchLastLogin(ctx context.Context, userID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, err := repository.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	now := repository.now().UTC()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	return repository.store.Set(accountKey(userID), newAccountRecord(user))
}

// accountRecord is the stored form of a [User]; unlike the API form it keeps the hash.
type accountRecord struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func newAccountRecord(user *User) accountRecord {
	return accountRecord(*user)
}

func (record accountRecord) toUser() *User {
	user := User(record)
	return &user
}

func accountKey(id string) []byte {
	return []byte("account/id/" + id)
}

func emailKey(email string) []byte {
	return []byte("account/email/" + email)
}

// # Session Repository

// LocalSessionRepository stores sessions in the local key-value store using
// its native key expiry.
type LocalSessionRepository struct {
	store *kv.Store
	now   func() time.Time
}

// NewLocalSessionRepository creates a [LocalSessionRepository].
func NewLocalSessionRepository(store *kv.Store) *LocalSessionRepository {
	return &LocalSessionRepository{store: store, now: time.Now}
}

func (repository *LocalSessionRepository) Create(_ context.Context, session *Session) error {
	ttl := session.ExpiresAt.Sub(repository.now())
	if ttl <= 0 {
		return apperr.Unauthorized("Session already expired")
	}
	return repository.store.SetWithTTL(localSessionKey(session.TokenHash), session, ttl)
}

func (repository *LocalSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	var session Session
	if err := repository.store.Get(localSessionKey(tokenHash), &session); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, apperr.NotFound("Session")
		}
		return nil, err
	}
	return &session, nil
}

func (repository *LocalSessionRepository) Revoke(_ context.Context, tokenHash string) error {
	return repository.store.Delete(localSessionKey(tokenHash))
}

func localSessionKey(tokenHash string) []byte {
	return []byte("session/" + tokenHash)
}
