// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short unchanged", "alice", 20, "alice"},
		{"exact length unchanged", "12345678901234567890", 20, "12345678901234567890"},
		{"long ascii cut", "a_very_long_username_indeed", 20, "a_very_long_usern..."},
		{"multibyte cut on rune boundary", "üéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéß", 20, "üéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéßüéß..."},
		{"multibyte short unchanged", "müller", 20, "müller"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
			}
		})
	}
}
