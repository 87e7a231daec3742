package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/facegate/facegate/internal/service"
)

// RegistrationRequest is the register endpoint's request body.
type RegistrationRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"` // base64, optionally with a data URL prefix
}

// RegistrationResponse reports the outcome of a registration.
type RegistrationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

// RegisterHandler handles face registrations.
type RegisterHandler struct {
	svc *service.Service
}

// NewRegisterHandler creates a register handler.
func NewRegisterHandler(svc *service.Service) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// Register handles POST /register.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}

	reg, err := h.svc.Register(r.Context(), req.Name, req.Image)
	if err != nil {
		log.Warn("registration failed", "error", err)
		respondWorkflowError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, RegistrationResponse{
		Success: true,
		Message: "Face registered successfully",
		UserID:  reg.ID,
	})
}
