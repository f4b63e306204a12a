// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm normalizes user-entered names such as custom tag names.
//
// # Usage
//
// Name produces the stored form (NFC, trimmed, inner whitespace collapsed).
// Key produces a comparison form that ignores case and accents, so "Áo" and
// "ao" are treated as the same tag name.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name returns s in NFC with surrounding whitespace removed and inner runs collapsed to one space.
func Name(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Key returns the case- and accent-insensitive comparison form of s.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Folds case.
func Key(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, Name(s))
	return cases.Fold().String(result)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
