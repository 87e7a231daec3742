package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegisterHandler_Success(t *testing.T) {
	store := &memStore{}
	svc, _ := newTestService(store, &stubEncoder{detection: testDetection(encodingAt(0))})
	handler := NewRegisterHandler(svc)

	req := jsonRequest(t, "POST", "/api/v1/register", RegistrationRequest{
		Name:  "Alice",
		Image: testImageBase64(t),
	})
	recorder := httptest.NewRecorder()

	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp RegistrationResponse
	parseJSONResponse(t, recorder, &resp)

	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Message != "Face registered successfully" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
	if !strings.HasPrefix(resp.UserID, "alice_") {
		t.Errorf("expected user_id with alice_ prefix, got %q", resp.UserID)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(store.records))
	}
}

func TestRegisterHandler_InvalidBody(t *testing.T) {
	svc, _ := newTestService(&memStore{}, &stubEncoder{})
	handler := NewRegisterHandler(svc)

	req := httptest.NewRequest("POST", "/api/v1/register", strings.NewReader("{not json"))
	recorder := httptest.NewRecorder()

	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequestBody)
}

func TestRegisterHandler_MissingImage(t *testing.T) {
	svc, _ := newTestService(&memStore{}, &stubEncoder{})
	handler := NewRegisterHandler(svc)

	req := jsonRequest(t, "POST", "/api/v1/register", RegistrationRequest{Name: "Alice"})
	recorder := httptest.NewRecorder()

	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "image is required")
}

func TestRegisterHandler_EmptyName(t *testing.T) {
	store := &memStore{}
	svc, _ := newTestService(store, &stubEncoder{detection: testDetection(encodingAt(0))})
	handler := NewRegisterHandler(svc)

	req := jsonRequest(t, "POST", "/api/v1/register", RegistrationRequest{
		Name:  "   ",
		Image: testImageBase64(t),
	})
	recorder := httptest.NewRecorder()

	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	if len(store.records) != 0 {
		t.Errorf("expected no stored records, got %d", len(store.records))
	}
}

func TestRegisterHandler_NoFaceDetected(t *testing.T) {
	svc, _ := newTestService(&memStore{}, &stubEncoder{detection: nil})
	handler := NewRegisterHandler(svc)

	req := jsonRequest(t, "POST", "/api/v1/register", RegistrationRequest{
		Name:  "Alice",
		Image: testImageBase64(t),
	})
	recorder := httptest.NewRecorder()

	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "no face detected in the image")
}

func TestRegisterHandler_StoreFailure(t *testing.T) {
	svc, _ := newTestService(&memStore{failPut: true}, &stubEncoder{detection: testDetection(encodingAt(0))})
	handler := NewRegisterHandler(svc)

	req := jsonRequest(t, "POST", "/api/v1/register", RegistrationRequest{
		Name:  "Alice",
		Image: testImageBase64(t),
	})
	recorder := httptest.NewRecorder()

	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "internal error")
}
