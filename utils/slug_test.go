package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Modern Web Dev!!", "modern-web-dev"},
		{"Intro to Testing", "intro-to-testing"},
		{"  --Go & Rust: 101--  ", "go-rust-101"},
		{"already-a-slug", "already-a-slug"},
		{"Café au lait", "caf-au-lait"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	for _, in := range []string{"Modern Web Dev!!", "A  B__C", "x", "Data Science 2024 (Part 2)"} {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q then %q", in, once, twice)
		}
		if again := Slugify(in); again != once {
			t.Errorf("Slugify not deterministic for %q: %q vs %q", in, once, again)
		}
	}
}
