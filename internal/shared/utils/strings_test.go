package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane's Bakery", "Jane_s_Bakery"},
		{"  acme/inc  ", "acme_inc"},
		{"", "untitled"},
		{"...", "untitled"},
		{"report-2024.v2", "report-2024.v2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFileName(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello world", 6))
	assert.Equal(t, "₹₹", Truncate("₹₹₹", 2))
}
