// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/laundrytrack/pkg/textnorm"
)

func TestName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Jacket  ", "Jacket"},
		{"Work   shirt", "Work shirt"},
		{"Café", "Café"},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, textnorm.Name(tt.in))
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, textnorm.Key("Áo Dài"), textnorm.Key("  ao  dai "))
	assert.NotEqual(t, textnorm.Key("Socks"), textnorm.Key("Sock"))
}
