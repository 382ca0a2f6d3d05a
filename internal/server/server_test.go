package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nidextract/internal/cache"
	"nidextract/internal/config"
	"nidextract/internal/extractor"
	"nidextract/internal/ocr"
	"nidextract/internal/server"
	"nidextract/pkg/models"
)

// stubExtractor is a canned-response test double for the extraction service.
type stubExtractor struct {
	calls   int
	err     error
	cleared int
	stats   cache.Stats
}

func (s *stubExtractor) Extract(ctx context.Context, image []byte, side extractor.Side) (*extractor.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if side == extractor.SideFront {
		return &extractor.Result{Front: &models.FrontData{
			Name:      "JOHN DOE",
			NIDNumber: "1234567890",
			RawText:   []string{"Name: JOHN DOE"},
		}}, nil
	}
	return &extractor.Result{Back: &models.BackData{
		Address: "Village: ABC, Post: XYZ",
		RawText: []string{"Village: ABC"},
	}}, nil
}

func (s *stubExtractor) ClearCache() int         { return s.cleared }
func (s *stubExtractor) CacheStats() cache.Stats { return s.stats }
func (s *stubExtractor) CacheEnabled() bool      { return true }

func testConfig() *config.Config {
	return &config.Config{
		Host:              "127.0.0.1",
		Port:              0,
		MaxFileSize:       1 << 20,
		AllowedExtensions: []string{"jpg", "jpeg", "png", "bmp"},
		OCRTimeout:        5 * time.Second,
		RateLimitEnabled:  false,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, svc server.Extractor) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(server.Handler(cfg, svc))
	t.Cleanup(srv.Close)
	return srv
}

func decodeSuccess(t *testing.T, body io.Reader) server.SuccessResponse {
	t.Helper()
	var resp server.SuccessResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, body io.Reader) server.ErrorResponse {
	t.Helper()
	var resp server.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, data := range files {
		part, err := writer.CreateFormFile(field, field+".jpg")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubExtractor{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	success := decodeSuccess(t, resp.Body)
	assert.Equal(t, "success", success.Status)
}

func TestMetrics(t *testing.T) {
	stub := &stubExtractor{stats: cache.Stats{Hits: 7, Misses: 3, Size: 2}}
	srv := newTestServer(t, testConfig(), stub)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"hits":7`)
	assert.Contains(t, string(raw), `"misses":3`)
}

func TestClearCache(t *testing.T) {
	stub := &stubExtractor{cleared: 5}
	srv := newTestServer(t, testConfig(), stub)

	resp, err := http.Post(srv.URL+"/api/v1/cache/clear", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"entries_cleared":5`)
}

func TestExtract_BothSides(t *testing.T) {
	stub := &stubExtractor{}
	srv := newTestServer(t, testConfig(), stub)

	body, contentType := multipartBody(t, map[string][]byte{
		"nid_front": []byte("front-image-bytes"),
		"nid_back":  []byte("back-image-bytes"),
	})

	resp, err := http.Post(srv.URL+"/api/v1/nid/extract", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, stub.calls)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"nid_front"`)
	assert.Contains(t, string(raw), `"nid_back"`)
	assert.Contains(t, string(raw), "JOHN DOE")
	assert.Contains(t, string(raw), "Village: ABC, Post: XYZ")
}

func TestExtract_FrontOnly(t *testing.T) {
	stub := &stubExtractor{}
	srv := newTestServer(t, testConfig(), stub)

	body, contentType := multipartBody(t, map[string][]byte{
		"nid_front": []byte("front-image-bytes"),
	})

	resp, err := http.Post(srv.URL+"/api/v1/nid/extract", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stub.calls)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"nid_front"`)
	assert.NotContains(t, string(raw), `"nid_back"`)
}

func TestExtract_NoFiles(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubExtractor{})

	body, contentType := multipartBody(t, nil)

	resp, err := http.Post(srv.URL+"/api/v1/nid/extract", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decodeError(t, resp.Body)
	assert.Equal(t, "error", errResp.Status)
}

func TestExtract_DisallowedExtension(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubExtractor{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("nid_front", "card.gif")
	require.NoError(t, err)
	_, err = part.Write([]byte("gif-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(srv.URL+"/api/v1/nid/extract", writer.FormDataContentType(), body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExtract_RecognitionFailure(t *testing.T) {
	stub := &stubExtractor{err: ocr.NewRecognitionError("Recognize", ocr.ErrRecognitionFailed, "backend down")}
	srv := newTestServer(t, testConfig(), stub)

	body, contentType := multipartBody(t, map[string][]byte{
		"nid_front": []byte("front-image-bytes"),
	})

	resp, err := http.Post(srv.URL+"/api/v1/nid/extract", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestExtract_InvalidImageIsBadRequest(t *testing.T) {
	stub := &stubExtractor{err: ocr.NewRecognitionError("ValidateImage", ocr.ErrInvalidImage, "")}
	srv := newTestServer(t, testConfig(), stub)

	body, contentType := multipartBody(t, map[string][]byte{
		"nid_front": []byte("not-an-image"),
	})

	resp, err := http.Post(srv.URL+"/api/v1/nid/extract", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubExtractor{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimitMax = 3
	cfg.RateLimitWindow = time.Minute
	srv := newTestServer(t, cfg, &stubExtractor{})

	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestRootAndNotFound(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubExtractor{})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
