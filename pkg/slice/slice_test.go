// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/laundrytrack/pkg/slice"
)

func TestFilter(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }

	assert.Equal(t, []int{2, 4}, slice.Filter([]int{1, 2, 3, 4}, even))
	assert.NotNil(t, slice.Filter(nil, even))
	assert.Empty(t, slice.Filter([]int{1, 3}, even))
}

func TestCountAndReduce(t *testing.T) {
	words := []string{"shirt", "pant", "towel"}

	assert.Equal(t, 2, slice.Count(words, func(w string) bool { return len(w) == 5 }))
	assert.Equal(t, 14, slice.Reduce(words, 0, func(sum int, w string) int { return sum + len(w) }))
	assert.Equal(t, []int{5, 4, 5}, slice.Map(words, func(w string) int { return len(w) }))
}
