package telegram

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitByBytes(t *testing.T) {
	text := strings.Repeat("漫", 10) // 3 bytes each
	parts := splitByBytes(text, 7)

	if len(parts) != 5 {
		t.Fatalf("len(parts) = %d, want 5", len(parts))
	}
	for _, p := range parts {
		if len(p) > 7 || !utf8.ValidString(p) {
			t.Fatalf("bad part %q", p)
		}
	}
	if strings.Join(parts, "") != text {
		t.Fatal("parts do not reassemble to the input")
	}

	if got := splitByBytes("short", 4096); len(got) != 1 || got[0] != "short" {
		t.Fatalf("short text split = %q", got)
	}
}

func TestTruncateByBytes(t *testing.T) {
	if got := truncateByBytes("證件照", 7); got != "證件" {
		t.Fatalf("truncateByBytes = %q", got)
	}
	if got := truncateByBytes("abc", 0); got != "abc" {
		t.Fatalf("zero limit = %q", got)
	}
}

func TestDetectMime(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	tests := []struct {
		name     string
		header   string
		data     []byte
		declared string
		want     string
	}{
		{name: "specific header wins", header: "image/webp", data: png, declared: "image/png", want: "image/webp"},
		{name: "declared over octet stream", header: "application/octet-stream", data: []byte("a,b\n1,2"), declared: "text/csv", want: "text/csv"},
		{name: "sniffed photo", header: "application/octet-stream", data: png, want: "image/png"},
		{name: "header params dropped", header: "Text/Plain; charset=utf-8", data: nil, want: "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMime(tt.header, tt.data, tt.declared); got != tt.want {
				t.Fatalf("detectMime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsNotModified(t *testing.T) {
	if !isNotModified(errors.New("Bad Request: message is not modified: specified new message content")) {
		t.Fatal("not-modified error not recognised")
	}
	if isNotModified(errors.New("Forbidden")) || isNotModified(nil) {
		t.Fatal("unrelated error recognised")
	}
}
