// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
	"github.com/taibuivan/laundrytrack/internal/platform/ctxutil"
	"github.com/taibuivan/laundrytrack/internal/platform/sec"
	"github.com/taibuivan/laundrytrack/internal/platform/validate"
	"github.com/taibuivan/laundrytrack/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, email string, timeToLive time.Duration) (string, error)
}

// Service implements registration, login and session rotation.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
	now               func() time.Time
}

// NewService constructs a [Service].
func NewService(userRepo UserRepository, sessionRepo SessionRepository, tokenProv TokenProvider) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
		now:               time.Now,
	}
}

// # Registration Flow

// RegisterInput holds the data required to create an account.
type RegisterInput struct {
	Email    string
	Password string
}

/*
Register validates, hashes, and persists a new account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: VALIDATION_ERROR, CONFLICT (email taken) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	email := NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		MaxLen(FieldPassword, input.Password, MaxPasswordLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.userRepository.FindByEmail(context, email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	} else if !apperr.HasCode(err, "NOT_FOUND") {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if errors.Is(err, sec.ErrPasswordTooLong) {
		return nil, validate.RequiredError(FieldPassword, fmt.Sprintf("Password must be at most %d bytes", sec.MaxPasswordBytes))
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	now := service.now().UTC()
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "account_registered", slog.String("user_id", user.ID))
	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates credentials and issues an access token and a refresh token.

Unknown email and wrong password produce the same UNAUTHORIZED error.
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.userRepository.FindByEmail(context, NormalizeEmail(input.Email))
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			sec.RejectPassword(input.Password)
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, err
	}

	if !sec.PasswordMatches(user.PasswordHash, input.Password) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	session, err := service.issue(context, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	if err := service.userRepository.TouchLastLogin(context, user.ID); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "last_login_update_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return session, nil
}

// Logout revokes the session of the refresh token. Unknown tokens are ignored.
func (service *Service) Logout(context context.Context, refreshToken string) error {
	if err := service.sessionRepository.Revoke(context, sec.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// CurrentUser returns the account of an authenticated caller.
func (service *Service) CurrentUser(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

// # Session Management

/*
RefreshSession rotates a refresh token.

Description: The presented token's session is revoked before a new pair is
issued, so each refresh token works once.

Returns:
  - *LoginSession: New session credentials
  - err: UNAUTHORIZED or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {
	tokenHash := sec.HashToken(refreshToken)

	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, apperr.Unauthorized("Invalid or expired refresh token")
		}
		return nil, err
	}
	if !session.ExpiresAt.After(service.now()) {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	if err := service.sessionRepository.Revoke(context, tokenHash); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found")
	}

	return service.issue(context, user, userAgent, ipAddress)
}

// issue signs an access token and persists a new refresh session.
func (service *Service) issue(context context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	now := service.now()
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: now.Add(RefreshTokenTTL),
		CreatedAt: now.UTC(),
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
		User:                  user,
	}, nil
}
