package ocr

import (
	"context"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionEngine implements Engine using Google Cloud Vision document text detection.
type VisionEngine struct {
	client   *vision.ImageAnnotatorClient
	maxBytes int64
}

// NewVisionEngine creates a Vision-backed engine with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewVisionEngine(ctx context.Context, opts Options) (Engine, error) {
	const op = "NewVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapRecognitionError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapRecognitionError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapRecognitionError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionEngine{
		client:   client,
		maxBytes: opts.maxBytes(),
	}, nil
}

// NewVisionEngineWithClient creates a Vision-backed engine with an explicit client (for testing).
func NewVisionEngineWithClient(client *vision.ImageAnnotatorClient, opts Options) Engine {
	return &VisionEngine{
		client:   client,
		maxBytes: opts.maxBytes(),
	}
}

// Name returns the engine identifier.
func (v *VisionEngine) Name() string { return "vision" }

// Recognize extracts text items from an image via document text detection.
// Items are returned in the API's reading order, one per detected paragraph.
func (v *VisionEngine) Recognize(ctx context.Context, image []byte) ([]TextItem, error) {
	const op = "Recognize"

	if err := ValidateImage(image, v.maxBytes); err != nil {
		return nil, err
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, WrapRecognitionError(op, ErrRecognitionFailed, err.Error())
	}
	if len(resp.Responses) == 0 {
		return nil, WrapRecognitionError(op, ErrRecognitionFailed, "no response from Vision API")
	}

	imgResp := resp.Responses[0]
	if imgResp.Error != nil {
		return nil, WrapRecognitionError(op, ErrRecognitionFailed, imgResp.Error.Message)
	}

	return itemsFromAnnotation(imgResp.FullTextAnnotation), nil
}

// itemsFromAnnotation flattens a full text annotation into paragraph-level items.
func itemsFromAnnotation(annotation *visionpb.TextAnnotation) []TextItem {
	if annotation == nil {
		return nil
	}

	var items []TextItem
	for _, page := range annotation.Pages {
		for _, block := range page.Blocks {
			for _, paragraph := range block.Paragraphs {
				text := paragraphText(paragraph)
				if strings.TrimSpace(text) == "" {
					continue
				}
				items = append(items, TextItem{
					Text:        text,
					Confidence:  float64(paragraph.Confidence),
					BoundingBox: polyToPoints(paragraph.BoundingBox),
				})
			}
		}
	}
	return items
}

func paragraphText(paragraph *visionpb.Paragraph) string {
	var words []string
	for _, word := range paragraph.Words {
		var sb strings.Builder
		for _, symbol := range word.Symbols {
			sb.WriteString(symbol.Text)
		}
		if sb.Len() > 0 {
			words = append(words, sb.String())
		}
	}
	return strings.Join(words, " ")
}

func polyToPoints(poly *visionpb.BoundingPoly) []Point {
	if poly == nil {
		return nil
	}
	points := make([]Point, 0, len(poly.Vertices))
	for _, v := range poly.Vertices {
		points = append(points, Point{X: float64(v.X), Y: float64(v.Y)})
	}
	return points
}

// Close closes the underlying Vision client.
func (v *VisionEngine) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
