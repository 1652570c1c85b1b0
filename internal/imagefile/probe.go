// Package imagefile reads the photos referenced by a label store: it probes
// their dimensions, renders labels onto previews and exports dorsal crops.
package imagefile

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

// Prober reports the pixel size of an image file.
type Prober interface {
	Dimensions(path string) (width, height int, err error)
}

// DiskProber reads the image header from disk without decoding pixels.
type DiskProber struct{}

// Dimensions returns the width and height stored in the image header.
func (DiskProber) Dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
