// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package batch

import (
	"github.com/taibuivan/laundrytrack/internal/platform/validate"
	"github.com/taibuivan/laundrytrack/pkg/slice"
)

// StatusFilter selects items by received state.
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusPending  StatusFilter = "pending"
	StatusReceived StatusFilter = "received"
)

// ParseStatusFilter maps a query value to a filter. Empty means all.
func ParseStatusFilter(value string) (StatusFilter, error) {
	if value == "" {
		return StatusAll, nil
	}

	validator := &validate.Validator{}
	validator.OneOf(FieldStatus, value, string(StatusAll), string(StatusPending), string(StatusReceived))
	if err := validator.Err(); err != nil {
		return "", err
	}
	return StatusFilter(value), nil
}

// FilterItems returns the items matching status and, when tag is non-empty, the tag.
// Order is preserved and the result is never nil.
func FilterItems(items []ClothItem, status StatusFilter, tag string) []ClothItem {
	return slice.Filter(items, func(item ClothItem) bool {
		switch status {
		case StatusPending:
			if item.IsReceived {
				return false
			}
		case StatusReceived:
			if !item.IsReceived {
				return false
			}
		}
		return tag == "" || item.Tag == tag
	})
}
