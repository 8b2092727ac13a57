// cmd/podium/main_test.go
package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateKeepsRunesIntact(t *testing.T) {
	if got := truncate("short topic", 40); got != "short topic" {
		t.Errorf("short input modified: %q", got)
	}

	long := strings.Repeat("ö", 60)
	got := truncate(long, 40)
	if !utf8.ValidString(got) {
		t.Errorf("truncate split a rune: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long input not truncated: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 40 {
		t.Errorf("truncate length = %d runes, want 40", n)
	}
}
