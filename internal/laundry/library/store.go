// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import "context"

// Repository persists catalog entries. Every call is scoped to one user and
// unknown ids yield NOT_FOUND.
type Repository interface {
	List(ctx context.Context, userID string) ([]ClothesItem, error)
	Create(ctx context.Context, userID string, item *ClothesItem) error
	UpdateLabel(ctx context.Context, userID, id string, label *string) error
	UpdateTag(ctx context.Context, userID, id, tag string) error
	UpdatePhoto(ctx context.Context, userID, id, photoURL, blurHash string) error
	Delete(ctx context.Context, userID, id string) error
}
