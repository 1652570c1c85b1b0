// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Label file constants
const (
	// LabelFilePerm is the permission used when writing the label file
	LabelFilePerm = 0o644

	// DuplicateIoU is the overlap above which two person boxes on one photo
	// are reported as a probable double click
	DuplicateIoU = 0.9
)

// Export constants
const (
	// DefaultExportQuality is the JPEG quality used for exported dorsal crops
	DefaultExportQuality = 92

	// DefaultExportFormat is the file format used for exported dorsal crops
	DefaultExportFormat = "jpg"
)

// Preview constants
const (
	// DefaultPreviewSize is the maximum dimension of a rendered overlay preview
	DefaultPreviewSize = 1600

	// OverlayStroke is the line width in pixels of preview rectangles
	OverlayStroke = 3
)
