package service

import (
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	k := ObjectKey(PrefixThumbnails, "../../My Photo.PNG")
	if !strings.HasPrefix(k, PrefixThumbnails) || !strings.HasSuffix(k, ".png") {
		t.Errorf("key = %q", k)
	}
	if strings.Contains(k, "..") || strings.Contains(k, " ") {
		t.Errorf("key leaks the client filename: %q", k)
	}
	if ObjectKey(PrefixLectures, "a.mp4") == ObjectKey(PrefixLectures, "a.mp4") {
		t.Error("keys are not unique")
	}
}

func TestIsObjectKey(t *testing.T) {
	for ref, want := range map[string]bool{
		"thumbnails/abc.png":            true,
		"lectures/abc.mp4":              true,
		"https://cdn.example.com/a.png": false,
		"":                              false,
	} {
		if got := IsObjectKey(ref); got != want {
			t.Errorf("IsObjectKey(%q) = %v", ref, got)
		}
	}
}

func TestAllowedMedia(t *testing.T) {
	tests := []struct {
		prefix, ct string
		want       bool
	}{
		{PrefixThumbnails, "image/png", true},
		{PrefixThumbnails, "IMAGE/JPEG", true},
		{PrefixThumbnails, "video/mp4", false},
		{PrefixLectures, "video/mp4", true},
		{PrefixLectures, "application/pdf", true},
		{PrefixLectures, "application/pdf; charset=binary", true},
		{PrefixLectures, "application/zip", false},
		{"other/", "image/png", false},
	}
	for _, tt := range tests {
		if got := AllowedMedia(tt.prefix, tt.ct); got != tt.want {
			t.Errorf("AllowedMedia(%q, %q) = %v", tt.prefix, tt.ct, got)
		}
	}
}
