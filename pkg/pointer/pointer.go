// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides generic helpers for optional fields.

Laundry entities carry several optional values (an item's label, its received
timestamp). They are modelled as pointers, and these helpers keep the
nil-handling out of the domain code.
*/
package pointer

import "strings"

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}

// Val safely dereferences a pointer.
// If the pointer is nil, it returns the zero value of the underlying type.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Clone returns a new pointer holding a copy of *p, or nil.
// Snapshots handed to callers must not alias store state.
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// NonBlank returns nil for a blank string and a pointer to the trimmed value otherwise.
func NonBlank(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
