package ocr

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine using a local Tesseract installation via
// gosseract. It runs fully offline and is the default for NID back sides,
// where Bengali plus English recognition is needed ("ben,eng").
type TesseractEngine struct {
	languages     []string
	maxBytes      int64
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed engine. A fresh gosseract
// client is created per recognition; the client is not safe for concurrent use.
func NewTesseractEngine(opts Options) (Engine, error) {
	languages := opts.Languages
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractEngine{
		languages:     languages,
		maxBytes:      opts.maxBytes(),
		clientFactory: gosseract.NewClient,
	}, nil
}

// Name returns the engine identifier.
func (t *TesseractEngine) Name() string { return "tesseract" }

// Recognize extracts text items from an image, one per detected text line.
func (t *TesseractEngine) Recognize(ctx context.Context, image []byte) ([]TextItem, error) {
	const op = "Recognize"

	if err := ValidateImage(image, t.maxBytes); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, WrapRecognitionError(op, err, "context done before recognition")
	}

	client := t.clientFactory()
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		return nil, WrapRecognitionError(op, ErrInvalidImage, err.Error())
	}
	if err := client.SetLanguage(t.languages...); err != nil {
		return nil, WrapRecognitionError(op, ErrRecognitionFailed, "failed to set languages: "+err.Error())
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, WrapRecognitionError(op, ErrRecognitionFailed, err.Error())
	}

	items := make([]TextItem, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		r := box.Box
		items = append(items, TextItem{
			Text:       text,
			Confidence: box.Confidence / 100.0,
			BoundingBox: []Point{
				{X: float64(r.Min.X), Y: float64(r.Min.Y)},
				{X: float64(r.Max.X), Y: float64(r.Min.Y)},
				{X: float64(r.Max.X), Y: float64(r.Max.Y)},
				{X: float64(r.Min.X), Y: float64(r.Max.Y)},
			},
		})
	}
	return items, nil
}

// Close releases engine resources. Clients are per-call, so this is a no-op.
func (t *TesseractEngine) Close() error { return nil }
