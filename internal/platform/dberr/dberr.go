// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
)

// SQLSTATE codes the laundry tables can raise.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// action is a snake_case label (e.g. "insert_batch_item") kept on the cause for logs.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Constraint violations carry a SQLSTATE the client can act on
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return apperr.Conflict("Resource already exists")
		case foreignKeyViolation:
			return apperr.NotFound("Parent resource")
		case checkViolation:
			return apperr.Unprocessable("Value rejected by storage constraints")
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// NotFoundUnless returns a NOT_FOUND error for resource when no row was affected.
func NotFoundUnless(tag pgconn.CommandTag, resource string) error {
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}
