package remote

import (
	"bytes"
	"fmt"
	"image"

	// Preview images in the wild are png, jpeg, or gif.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ImageMeta extracts pixel dimensions from downloaded image bytes.
// A nil provider degrades the preview check to content-type only.
type ImageMeta interface {
	Size(data []byte) (width, height int, err error)
}

// StdImageMeta decodes dimensions with the registered stdlib image formats.
type StdImageMeta struct{}

func (StdImageMeta) Size(data []byte) (int, int, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%s image has degenerate dimensions %dx%d", format, cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}
