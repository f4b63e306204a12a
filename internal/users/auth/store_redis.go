// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/constants"
)

// RedisSessionRepository stores sessions as JSON values that expire with the session.
type RedisSessionRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisSessionRepository creates a [RedisSessionRepository].
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, now: time.Now}
}

func (repository *RedisSessionRepository) Create(context context.Context, session *Session) error {
	ttl := session.ExpiresAt.Sub(repository.now())
	if ttl <= 0 {
		return apperr.Unauthorized("Session already expired")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_marshal_failed: %w", err)
	}

	if err := repository.client.Set(context, sessionKey(session.TokenHash), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

/*
FindByTokenHash returns the session stored for the token hash.

Returns:
  - *Session: The live session
  - error: apperr.NotFound if absent or expired, or connectivity errors
*/
func (repository *RedisSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	data, err := repository.client.Get(context, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("redis_session_unmarshal_failed: %w", err)
	}
	return &session, nil
}

func (repository *RedisSessionRepository) Revoke(context context.Context, tokenHash string) error {
	if err := repository.client.Del(context, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}
