// Package handlers implements the HTTP handlers of the face service API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/facegate/facegate/internal/gallery"
	"github.com/facegate/facegate/internal/service"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondWorkflowError maps the workflow error taxonomy onto HTTP statuses:
// validation and no-face are client errors with distinguishable messages,
// unknown names are 404, everything else is an opaque internal failure.
func respondWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case service.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoFaceDetected):
		respondError(w, http.StatusBadRequest, "no face detected in the image")
	case errors.Is(err, gallery.ErrNameNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
