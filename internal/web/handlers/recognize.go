package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/facegate/facegate/internal/service"
)

// RecognitionRequest is the recognize endpoint's request body.
type RecognitionRequest struct {
	Image string `json:"image"`
}

// RecognizeHandler handles face recognition queries.
type RecognizeHandler struct {
	svc *service.Service
}

// NewRecognizeHandler creates a recognize handler.
func NewRecognizeHandler(svc *service.Service) *RecognizeHandler {
	return &RecognizeHandler{svc: svc}
}

// Recognize handles POST /recognize. The response is the match result
// directly; an image with no detectable face reads as not matched.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	var req RecognitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}

	result, err := h.svc.Recognize(r.Context(), req.Image)
	if err != nil {
		log.Warn("recognition failed", "error", err)
		respondWorkflowError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
