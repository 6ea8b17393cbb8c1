package media

import (
	"encoding/base64"
	"testing"
)

func TestDecodeInline(t *testing.T) {
	payload := []byte("fake-image-bytes")
	value := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	img, err := DecodeInline(value)
	if err != nil {
		t.Fatalf("DecodeInline returned error: %v", err)
	}
	if img.ContentType != "image/png" {
		t.Fatalf("expected content type image/png, got %q", img.ContentType)
	}
	if string(img.Data) != string(payload) {
		t.Fatalf("expected decoded payload to round-trip")
	}
	if img.Extension() != ".png" {
		t.Fatalf("expected .png extension, got %q", img.Extension())
	}
}

func TestDecodeInlineRejectsPlainURL(t *testing.T) {
	if _, err := DecodeInline("https://cdn.example.com/photo.jpg"); err != ErrNotInline {
		t.Fatalf("expected ErrNotInline, got %v", err)
	}
}

func TestDecodeInlineMalformed(t *testing.T) {
	cases := []string{
		"data:image/png;base64",            // missing separator
		"data:image/png,aGVsbG8=",          // not base64-flagged
		"data:;base64,aGVsbG8=",            // missing content type
		"data:image/png;base64,@@invalid@", // bad base64
		"data:image/png;base64,",           // empty payload
	}
	for _, value := range cases {
		if _, err := DecodeInline(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func TestIsInline(t *testing.T) {
	if !IsInline("data:image/jpeg;base64,xxxx") {
		t.Fatalf("expected inline payload to be detected")
	}
	if IsInline("https://example.com/a.jpg") {
		t.Fatalf("expected URL to not be inline")
	}
}
