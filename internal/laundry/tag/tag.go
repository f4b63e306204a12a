// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package tag is the registry of clothing categories.

A tag value stored on an item or a library entry is either the value of a
built-in category ("shirt", "pant", ...) or the id of one of the user's custom
tags. Display resolution is total: a value that matches neither still renders,
using the value itself as its label.

Built-in tags are hard-coded and never persisted. Custom tags are loaded once
per user, then served from memory.
*/
package tag

import "time"

// Kind tells which source resolved a tag value.
type Kind string

const (
	KindBuiltIn Kind = "builtin"
	KindCustom  Kind = "custom"
	KindUnknown Kind = "unknown"
)

const (
	// FallbackEmoji is shown for custom tags created without an emoji and for unknown values.
	FallbackEmoji = "🏷️"

	// UntaggedLabel is the label of a blank tag value.
	UntaggedLabel = "Untagged"

	// MaxNameLength bounds a custom tag name, in characters.
	MaxNameLength = 30
)

// JSON and validation field names.
const (
	FieldName  = "name"
	FieldEmoji = "emoji"
	FieldValue = "value"
)

// BuiltIn is one of the fixed categories.
type BuiltIn struct {
	Value string
	Label string
	Emoji string
}

// BuiltIns lists the fixed categories in display order.
var BuiltIns = []BuiltIn{
	{Value: "shirt", Label: "Shirt", Emoji: "👕"},
	{Value: "pant", Label: "Pant", Emoji: "👖"},
	{Value: "towel", Label: "Towel", Emoji: "🧴"},
	{Value: "bedsheet", Label: "Bedsheet", Emoji: "🛏️"},
	{Value: "other", Label: "Other", Emoji: "📦"},
}

// CustomTag is a user-defined category. Its id is the value stored on items.
type CustomTag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// TagDisplay is the resolved presentation of a tag value.
type TagDisplay struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// TagOption is an entry of the tag picker.
type TagOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Emoji    string `json:"emoji"`
	IsCustom bool   `json:"is_custom"`
}
