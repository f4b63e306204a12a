// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates the identifiers of every laundry entity.

Version 7 values are used so ids sort by creation time. The local storage mode
has no database to assign ids, so both modes mint them here before the write.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// IsValid reports whether s parses as a UUID of any version.
func IsValid(s string) bool {
	return uuid.Validate(s) == nil
}
