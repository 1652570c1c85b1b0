package imagefile

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/kozaktomas/photo-labeler/internal/constants"
	"github.com/kozaktomas/photo-labeler/internal/labelstore"
)

// ExportOptions configures ExportDorsals.
type ExportOptions struct {
	OutDir     string
	Format     string // "jpg" or "png"
	Quality    int    // JPEG quality
	OnProgress func() // Optional, called once per photo
}

// ExportResult reports what ExportDorsals wrote.
type ExportResult struct {
	Photos  int
	Written int
	Skipped int // numbered dorsals whose box falls outside the image
	Errors  []error
}

// ExportDorsals crops every numbered dorsal box out of the photos in dir and
// writes it to OutDir/<number>/<photo>_<index>.<format>. The photo name keeps
// its extension so a.jpg and a.png never share a crop path. Per-photo
// failures are collected in the result and do not stop the export.
func ExportDorsals(dir string, s *labelstore.Store, opts ExportOptions) (*ExportResult, error) {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = constants.DefaultExportFormat
	}
	if format == "jpeg" {
		format = "jpg"
	}
	if format != "jpg" && format != "png" {
		return nil, fmt.Errorf("unsupported export format %q", opts.Format)
	}
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = constants.DefaultExportQuality
	}
	if opts.OutDir == "" {
		return nil, errors.New("output directory is required")
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	result := &ExportResult{}
	for _, name := range s.Keys() {
		labels := s.Labels(name)
		numbered := false
		for _, a := range labels {
			if a.Dorsal != nil {
				numbered = true
				break
			}
		}
		if !numbered {
			continue
		}
		result.Photos++

		img, err := imaging.Open(filepath.Join(dir, name))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("photo %s: %w", name, err))
			if opts.OnProgress != nil {
				opts.OnProgress()
			}
			continue
		}

		for i, a := range labels {
			if a.Dorsal == nil {
				continue
			}
			rect := a.Dorsal.Position.Image().Intersect(img.Bounds())
			if rect.Empty() {
				result.Skipped++
				continue
			}
			if err := writeCrop(img, rect, opts.OutDir, a.Dorsal.Number, name, i, format, quality); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("photo %s label %d: %w", name, i, err))
				continue
			}
			result.Written++
		}
		if opts.OnProgress != nil {
			opts.OnProgress()
		}
	}
	return result, nil
}

func writeCrop(img image.Image, rect image.Rectangle, outDir string, number int, photo string, index int, format string, quality int) error {
	dir := filepath.Join(outDir, strconv.Itoa(number))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.%s", photo, index, format))
	cropped := imaging.Crop(img, rect)
	if format == "png" {
		return imaging.Save(cropped, path)
	}
	return imaging.Save(cropped, path, imaging.JPEGQuality(quality))
}

// NumberedPhotos returns how many photos carry at least one numbered dorsal.
func NumberedPhotos(s *labelstore.Store) int {
	n := 0
	for _, name := range s.Keys() {
		for _, a := range s.Labels(name) {
			if a.Dorsal != nil {
				n++
				break
			}
		}
	}
	return n
}
