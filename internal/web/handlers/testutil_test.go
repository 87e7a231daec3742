package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/gallery"
	"github.com/facegate/facegate/internal/notify"
	"github.com/facegate/facegate/internal/service"
)

// memStore is an in-memory gallery store for handler tests
type memStore struct {
	records []gallery.Record
	failPut bool
}

func (m *memStore) ListAll(ctx context.Context) []gallery.Record {
	return m.records
}

func (m *memStore) Append(ctx context.Context, rec gallery.Record) error {
	if m.failPut {
		return errors.New("disk full")
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) DeleteByName(ctx context.Context, name string) (int, error) {
	kept := m.records[:0]
	removed := 0
	for _, rec := range m.records {
		if rec.Name == name {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	if removed == 0 {
		return 0, gallery.ErrNameNotFound
	}
	return removed, nil
}

func (m *memStore) Names(ctx context.Context) []string {
	var names []string
	seen := map[string]bool{}
	for _, rec := range m.records {
		if !seen[rec.Name] {
			seen[rec.Name] = true
			names = append(names, rec.Name)
		}
	}
	return names
}

// stubEncoder returns a fixed detection, or nil when no face should be found
type stubEncoder struct {
	detection *embedder.Detection
	err       error
}

func (s *stubEncoder) EncodeFace(ctx context.Context, imageData []byte) (*embedder.Detection, error) {
	return s.detection, s.err
}

// encodingAt returns a 128-dim encoding at the given distance from the origin
func encodingAt(d float64) []float64 {
	enc := make([]float64, gallery.EncodingDim)
	enc[0] = d
	return enc
}

// testDetection wraps an encoding in a single-face detection
func testDetection(enc []float64) *embedder.Detection {
	return &embedder.Detection{FaceIndex: 0, Dim: len(enc), Encoding: enc, DetScore: 0.99}
}

// newTestService builds a service with the given fakes and a fresh hub
func newTestService(store gallery.Store, encoder embedder.FaceEncoder) (*service.Service, *notify.Hub) {
	hub := notify.NewHub()
	return service.New(store, encoder, nil, hub, 1600), hub
}

// testImageBase64 returns a small valid PNG as a base64 payload
func testImageBase64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// jsonRequest creates a request with a JSON-encoded body
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
