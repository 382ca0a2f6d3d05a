package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIEngine implements Engine using a Google Document AI OCR processor.
type DocumentAIEngine struct {
	client        *documentai.DocumentProcessorClient
	processorName string
	maxBytes      int64
}

// NewDocumentAIEngine creates a Document AI backed engine with credentials
// from environment.
// Expects: GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS
// Requires: GOOGLE_PROJECT_ID, GOOGLE_PROCESSOR_ID
// Optional: GOOGLE_LOCATION (defaults to "us"), GOOGLE_PROCESSOR_VERSION
func NewDocumentAIEngine(ctx context.Context, opts Options) (Engine, error) {
	const op = "NewDocumentAIEngine"

	projectID := getEnvVar("GOOGLE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT")
	location := getEnvVar("GOOGLE_LOCATION", "GOOGLE_CLOUD_LOCATION")
	processorID := getEnvVar("GOOGLE_PROCESSOR_ID", "DOCUMENT_AI_PROCESSOR_ID")
	processorVersion := os.Getenv("GOOGLE_PROCESSOR_VERSION")

	if projectID == "" {
		return nil, WrapRecognitionError(op, ErrRecognitionFailed, "GOOGLE_PROJECT_ID or GOOGLE_CLOUD_PROJECT is required")
	}
	if processorID == "" {
		return nil, WrapRecognitionError(op, ErrRecognitionFailed, "GOOGLE_PROCESSOR_ID or DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if location == "" {
		location = "us"
	}

	var clientOptions []option.ClientOption

	// Regional endpoints are required outside "us"
	if location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(clientOptions) == 0 {
			return nil, WrapRecognitionError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapRecognitionError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", location))
	}

	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID)
	if processorVersion != "" {
		name = fmt.Sprintf("%s/processorVersions/%s", name, processorVersion)
	}

	return &DocumentAIEngine{
		client:        client,
		processorName: name,
		maxBytes:      opts.maxBytes(),
	}, nil
}

// NewDocumentAIEngineWithClient creates the engine with an explicit client (for testing).
func NewDocumentAIEngineWithClient(client *documentai.DocumentProcessorClient, processorName string, opts Options) Engine {
	return &DocumentAIEngine{
		client:        client,
		processorName: processorName,
		maxBytes:      opts.maxBytes(),
	}
}

// Name returns the engine identifier.
func (d *DocumentAIEngine) Name() string { return "documentai" }

// Recognize extracts text items from an image, one per detected line.
func (d *DocumentAIEngine) Recognize(ctx context.Context, image []byte) ([]TextItem, error) {
	const op = "Recognize"

	if err := ValidateImage(image, d.maxBytes); err != nil {
		return nil, err
	}

	req := &documentaipb.ProcessRequest{
		Name: d.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  image,
				MimeType: DetectImageMIME(image),
			},
		},
	}

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, WrapRecognitionError(op, ErrRecognitionFailed, err.Error())
	}
	if resp.Document == nil {
		return nil, WrapRecognitionError(op, ErrRecognitionFailed, "no document in response")
	}

	return itemsFromDocument(resp.Document), nil
}

// itemsFromDocument flattens a Document AI document into line-level items.
func itemsFromDocument(doc *documentaipb.Document) []TextItem {
	var items []TextItem
	for _, page := range doc.Pages {
		for _, line := range page.Lines {
			layout := line.Layout
			if layout == nil {
				continue
			}
			text := strings.TrimSpace(anchorText(doc.Text, layout.TextAnchor))
			if text == "" {
				continue
			}
			items = append(items, TextItem{
				Text:        text,
				Confidence:  float64(layout.Confidence),
				BoundingBox: docAIPolyToPoints(layout.BoundingPoly),
			})
		}
	}
	return items
}

// anchorText resolves a text anchor's segments against the full document text.
func anchorText(fullText string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil {
		return ""
	}
	var sb strings.Builder
	for _, segment := range anchor.TextSegments {
		start, end := segment.StartIndex, segment.EndIndex
		if start < 0 || end <= start || end > int64(len(fullText)) {
			continue
		}
		sb.WriteString(fullText[start:end])
	}
	return sb.String()
}

func docAIPolyToPoints(poly *documentaipb.BoundingPoly) []Point {
	if poly == nil {
		return nil
	}
	if len(poly.Vertices) > 0 {
		points := make([]Point, 0, len(poly.Vertices))
		for _, v := range poly.Vertices {
			points = append(points, Point{X: float64(v.X), Y: float64(v.Y)})
		}
		return points
	}
	points := make([]Point, 0, len(poly.NormalizedVertices))
	for _, v := range poly.NormalizedVertices {
		points = append(points, Point{X: float64(v.X), Y: float64(v.Y)})
	}
	return points
}

// Close closes the underlying Document AI client.
func (d *DocumentAIEngine) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}

// getEnvVar returns the first non-empty environment variable from the list.
func getEnvVar(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}
