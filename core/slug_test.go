package core

import (
	"testing"
)

func TestSlugFromName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Slug
	}{
		{
			name:  "simple name",
			input: "Quiet Confidence",
			want:  "quiet-confidence",
		},
		{
			name:  "punctuation stripped",
			input: "Systems Thinking: A Primer!",
			want:  "systems-thinking-a-primer",
		},
		{
			name:  "surrounding whitespace",
			input: "  Deep Work  ",
			want:  "deep-work",
		},
		{
			name:  "repeated separators collapse",
			input: "a --  b",
			want:  "a-b",
		},
		{
			name:  "digits preserved",
			input: "80/20 Rule",
			want:  "80-20-rule",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SlugFromName(tt.input)
			if got != tt.want {
				t.Errorf("SlugFromName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugFromName_Stable(t *testing.T) {
	a := SlugFromName("Growth Mindset")
	b := SlugFromName("Growth Mindset")
	if a != b {
		t.Errorf("SlugFromName() not deterministic: %q vs %q", a, b)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "case folded",
			input: "Quiet Confidence",
			want:  "quiet confidence",
		},
		{
			name:  "whitespace collapsed",
			input: "  Deep   Work ",
			want:  "deep work",
		},
		{
			name:  "already normalized",
			input: "habits",
			want:  "habits",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIDFromContent(t *testing.T) {
	id1 := IDFromContent("https://example.com/episode-1")
	id2 := IDFromContent("https://example.com/episode-1")
	if id1 != id2 {
		t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
	}

	id3 := IDFromContent("https://example.com/episode-2")
	if id1 == id3 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}
