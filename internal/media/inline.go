package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// Inline-encoded image payloads arrive as data URIs:
// data:<mime-type>;base64,<payload>. They are a transient input
// representation only; persisted records carry resolved URLs.

const inlinePrefix = "data:"

var ErrNotInline = errors.New("media: not an inline image payload")

type InlineImage struct {
	ContentType string
	Data        []byte
}

// IsInline reports whether a value carries inline-encoded image bytes rather
// than a URL reference.
func IsInline(value string) bool {
	return strings.HasPrefix(value, inlinePrefix)
}

// DecodeInline parses the self-describing prefix and decodes the base64
// payload. Values without the prefix return ErrNotInline so callers can pass
// plain URLs through unchanged.
func DecodeInline(value string) (*InlineImage, error) {
	rest, ok := strings.CutPrefix(value, inlinePrefix)
	if !ok {
		return nil, ErrNotInline
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("media: malformed inline payload: missing separator")
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, fmt.Errorf("media: malformed inline payload: expected base64 encoding")
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" {
		return nil, fmt.Errorf("media: malformed inline payload: missing content type")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("media: decode inline payload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media: empty inline payload")
	}
	return &InlineImage{ContentType: contentType, Data: data}, nil
}

// Dimensions decodes just enough of the image header to report its size.
// Supports JPEG, PNG, GIF and WebP.
func (img *InlineImage) Dimensions() (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return 0, 0, fmt.Errorf("media: decode dimensions: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("media: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// Extension maps the declared content type to an object-name suffix.
func (img *InlineImage) Extension() string {
	switch img.ContentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ""
}
