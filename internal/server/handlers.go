package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"nidextract/internal/cache"
	"nidextract/internal/extractor"
	"nidextract/internal/ocr"
	"nidextract/pkg/models"
)

// Version identifies the service in health responses.
const Version = "1.0.0"

// Extractor is the extraction capability the handlers depend on.
type Extractor interface {
	Extract(ctx context.Context, image []byte, side extractor.Side) (*extractor.Result, error)
	ClearCache() int
	CacheStats() cache.Stats
	CacheEnabled() bool
}

type handlers struct {
	extractor   Extractor
	maxFileSize int64
	allowedExts map[string]bool
	started     time.Time
}

func newHandlers(svc Extractor, maxFileSize int64, allowedExtensions []string) *handlers {
	exts := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		exts[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &handlers{
		extractor:   svc,
		maxFileSize: maxFileSize,
		allowedExts: exts,
		started:     time.Now(),
	}
}

// handleRoot describes the API surface.
func (h *handlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "NID extraction service", 0, map[string]string{
		"health":      "GET /health",
		"metrics":     "GET /metrics",
		"extract":     "POST /api/v1/nid/extract",
		"clear_cache": "POST /api/v1/cache/clear",
	})
}

// handleHealth reports liveness.
func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "Service is healthy", 0, HealthData{
		Service: "nidextract",
		Version: Version,
		Healthy: true,
	})
}

// handleMetrics exposes cache counters and process uptime.
func (h *handlers) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "Service metrics", 0, map[string]any{
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"cache_enabled":  h.extractor.CacheEnabled(),
		"cache":          h.extractor.CacheStats(),
	})
}

// handleClearCache empties the extraction result cache.
func (h *handlers) handleClearCache(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	count := h.extractor.ClearCache()
	writeSuccess(w, http.StatusOK, "Cache cleared",
		time.Since(start).Milliseconds(),
		ClearCacheData{EntriesCleared: count})
}

// handleExtract accepts multipart form files nid_front and/or nid_back and
// returns the extracted fields for each side provided.
func (h *handlers) handleExtract(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxFileSize+1<<20)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form", err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	front, err := h.readUpload(r, "nid_front")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid nid_front upload", err.Error())
		return
	}
	back, err := h.readUpload(r, "nid_back")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid nid_back upload", err.Error())
		return
	}
	if front == nil && back == nil {
		writeError(w, http.StatusBadRequest, "No card image provided",
			"at least one of nid_front, nid_back is required")
		return
	}

	data := models.ExtractionData{}
	if front != nil {
		result, err := h.extractor.Extract(r.Context(), front, extractor.SideFront)
		if err != nil {
			h.writeExtractionError(w, "nid_front", err)
			return
		}
		data.NIDFront = result.Front
	}
	if back != nil {
		result, err := h.extractor.Extract(r.Context(), back, extractor.SideBack)
		if err != nil {
			h.writeExtractionError(w, "nid_back", err)
			return
		}
		data.NIDBack = result.Back
	}

	writeSuccess(w, http.StatusOK, "Extraction completed",
		time.Since(start).Milliseconds(), data)
}

// readUpload returns the bytes of the named form file, or nil when the field
// is absent. It enforces the extension allow-list and the size cap.
func (h *handlers) readUpload(r *http.Request, field string) ([]byte, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := h.validateFilename(header); err != nil {
		return nil, err
	}
	if header.Size > h.maxFileSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", h.maxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.maxFileSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", h.maxFileSize)
	}
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	return data, nil
}

func (h *handlers) validateFilename(header *multipart.FileHeader) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if ext == "" {
		return errors.New("filename has no extension")
	}
	if !h.allowedExts[ext] {
		return fmt.Errorf("extension %q is not allowed", ext)
	}
	return nil
}

func (h *handlers) writeExtractionError(w http.ResponseWriter, field string, err error) {
	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, ocr.ErrImageTooLarge),
		errors.Is(err, ocr.ErrInvalidImage),
		errors.Is(err, ocr.ErrEmptyImage):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	writeError(w, status, fmt.Sprintf("Extraction failed for %s", field), err.Error())
}
