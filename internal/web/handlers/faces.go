package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/service"
)

// FaceListResponse lists the distinct registered identity names.
type FaceListResponse struct {
	Faces []string `json:"faces"`
}

// FaceDeleteResponse reports a deletion.
type FaceDeleteResponse struct {
	Deleted bool   `json:"deleted"`
	Name    string `json:"name"`
	Removed int    `json:"removed"`
}

// FacesHandler handles gallery management endpoints.
type FacesHandler struct {
	svc *service.Service
}

// NewFacesHandler creates a faces handler.
func NewFacesHandler(svc *service.Service) *FacesHandler {
	return &FacesHandler{svc: svc}
}

// List handles GET /faces.
func (h *FacesHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.svc.Names(r.Context())
	if names == nil {
		names = []string{}
	}
	respondJSON(w, http.StatusOK, FaceListResponse{Faces: names})
}

// Delete handles DELETE /faces/{name}. Removes every record registered under
// the name; an unknown name is 404, never a silent no-op.
func (h *FacesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	removed, err := h.svc.DeleteIdentity(r.Context(), name)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, FaceDeleteResponse{Deleted: true, Name: name, Removed: removed})
}
