// Package ocr provides text recognition capabilities for ID card images.
//
// Recognition engines are external collaborators behind the Engine interface:
// Google Cloud Vision, Google Document AI, and Tesseract (via gosseract) are
// provided. Engines normalize heterogeneous backend output into a uniform
// ordered sequence of TextItem records; all downstream field extraction works
// on that sequence only.
//
// Required Environment Variables (cloud engines):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_PROJECT_ID, GOOGLE_LOCATION, GOOGLE_PROCESSOR_ID (Document AI only)
//
// The Tesseract engine runs fully offline and supports multilingual
// recognition (e.g. "ben,eng" for Bengali plus English on NID back sides).
package ocr

import (
	"bytes"
	"context"
	"fmt"
)

// Engine defines the recognition capability consumed by the extractor.
// Implementations are safe for concurrent use by multiple goroutines.
type Engine interface {
	// Name returns a short identifier for the engine ("vision", "tesseract", ...).
	Name() string

	// Recognize extracts text items from a single image, in detection order.
	// The returned slice is never mutated by the engine after return.
	Recognize(ctx context.Context, image []byte) ([]TextItem, error)

	// Close releases any resources held by the engine.
	Close() error
}

// Point is one vertex of a bounding polygon, in pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TextItem is one recognized text fragment with its confidence score and
// position. Items are immutable once produced.
type TextItem struct {
	Text        string  `json:"text"`
	Confidence  float64 `json:"confidence"`
	BoundingBox []Point `json:"bounding_box,omitempty"`
}

// Options configures engine construction.
type Options struct {
	// Languages lists recognition languages for engines that support them
	// (Tesseract language codes, e.g. "ben", "eng").
	Languages []string

	// MaxImageBytes caps the accepted image size. Zero means DefaultMaxImageBytes.
	MaxImageBytes int64
}

// DefaultMaxImageBytes is the default maximum accepted image size (5MB).
const DefaultMaxImageBytes = 5 * 1024 * 1024

func (o Options) maxBytes() int64 {
	if o.MaxImageBytes > 0 {
		return o.MaxImageBytes
	}
	return DefaultMaxImageBytes
}

// NewEngine constructs a recognition engine by kind: "vision", "documentai"
// or "tesseract". Cloud engines read credentials from the environment.
func NewEngine(ctx context.Context, kind string, opts Options) (Engine, error) {
	switch kind {
	case "vision":
		return NewVisionEngine(ctx, opts)
	case "documentai":
		return NewDocumentAIEngine(ctx, opts)
	case "tesseract":
		return NewTesseractEngine(opts)
	default:
		return nil, WrapRecognitionError("NewEngine", ErrUnsupportedEngine, fmt.Sprintf("unknown engine kind: %q", kind))
	}
}

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	bmpMagic  = []byte{0x42, 0x4D}
)

// DetectImageMIME returns the MIME type of the image data, or "" when the
// format is not one of the supported types (JPEG, PNG, BMP).
func DetectImageMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return "image/jpeg"
	case bytes.HasPrefix(data, pngMagic):
		return "image/png"
	case bytes.HasPrefix(data, bmpMagic):
		return "image/bmp"
	default:
		return ""
	}
}

// ValidateImage checks size bounds and the magic bytes of the image data.
func ValidateImage(data []byte, maxBytes int64) error {
	const op = "ValidateImage"

	if len(data) == 0 {
		return WrapRecognitionError(op, ErrEmptyImage, "")
	}
	if int64(len(data)) > maxBytes {
		return WrapRecognitionError(op, ErrImageTooLarge, fmt.Sprintf("image size: %d bytes, limit: %d bytes", len(data), maxBytes))
	}
	if DetectImageMIME(data) == "" {
		return WrapRecognitionError(op, ErrInvalidImage, "unrecognized image format (expected JPEG, PNG or BMP)")
	}
	return nil
}
