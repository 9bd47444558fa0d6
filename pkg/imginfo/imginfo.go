// Package imginfo probes image files for their pixel dimensions without
// decoding the full bitmap.
package imginfo

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Probe returns the width and height of the image at path. Only PNG and
// JPEG are recognized; anything else fails with the decoder's error.
func Probe(path string) (w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
