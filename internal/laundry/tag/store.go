// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import "context"

// Repository persists custom tags. Every call is scoped to one user.
type Repository interface {
	// List returns the user's custom tags, oldest first.
	List(ctx context.Context, userID string) ([]CustomTag, error)

	// Create stores a tag whose id and timestamp are already set.
	Create(ctx context.Context, userID string, customTag *CustomTag) error

	// Delete removes a tag. Items still referencing it keep the dangling value.
	Delete(ctx context.Context, userID, id string) error
}
