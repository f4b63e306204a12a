// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import "strings"

// LookupBuiltIn returns the built-in category with the given value.
func LookupBuiltIn(value string) (BuiltIn, bool) {
	for _, builtIn := range BuiltIns {
		if builtIn.Value == value {
			return builtIn, true
		}
	}
	return BuiltIn{}, false
}

/*
Resolve maps a tag value to its display form.

Lookup order:
 1. Built-in value (exact match).
 2. Custom tag id.
 3. Anything else: the value is its own label with [FallbackEmoji].

A blank value resolves to [UntaggedLabel] so the label is never empty.
*/
func Resolve(value string, custom []CustomTag) TagDisplay {
	if builtIn, ok := LookupBuiltIn(value); ok {
		return TagDisplay{Kind: KindBuiltIn, Value: builtIn.Value, Label: builtIn.Label, Emoji: builtIn.Emoji}
	}

	for _, customTag := range custom {
		if customTag.ID == value {
			return TagDisplay{Kind: KindCustom, Value: customTag.ID, Label: customTag.Name, Emoji: customTag.Emoji}
		}
	}

	label := value
	if strings.TrimSpace(value) == "" {
		label = UntaggedLabel
	}
	return TagDisplay{Kind: KindUnknown, Value: value, Label: label, Emoji: FallbackEmoji}
}

// Options lists the built-ins followed by the custom tags in their stored order.
func Options(custom []CustomTag) []TagOption {
	options := make([]TagOption, 0, len(BuiltIns)+len(custom))

	for _, builtIn := range BuiltIns {
		options = append(options, TagOption{Value: builtIn.Value, Label: builtIn.Label, Emoji: builtIn.Emoji})
	}
	for _, customTag := range custom {
		options = append(options, TagOption{Value: customTag.ID, Label: customTag.Name, Emoji: customTag.Emoji, IsCustom: true})
	}

	return options
}
