// Package service implements the registration and recognition workflows on
// top of the gallery store, the face encoding collaborator, and the outbound
// event publishers.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/gallery"
	"github.com/facegate/facegate/internal/imaging"
	"github.com/facegate/facegate/internal/notify"
)

const (
	minNameLen = 2
	maxNameLen = 100
)

// Registration is the successful outcome of registering a face.
type Registration struct {
	ID        string
	Name      string
	Timestamp string
}

// Service wires the workflows together. All collaborators are injected;
// notification failures never affect workflow outcomes.
type Service struct {
	store     gallery.Store
	encoder   embedder.FaceEncoder
	publisher notify.Publisher
	hub       *notify.Hub
	maxSize   int
}

// New creates a Service. hub may be nil when no in-process subscribers exist
// (CLI usage).
func New(store gallery.Store, encoder embedder.FaceEncoder, publisher notify.Publisher, hub *notify.Hub, maxImageSize int) *Service {
	return &Service{
		store:     store,
		encoder:   encoder,
		publisher: publisher,
		hub:       hub,
		maxSize:   maxImageSize,
	}
}

// validateName trims the name and enforces the 2-100 character bound.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationErrorf("name cannot be empty")
	}
	if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
		return "", validationErrorf(fmt.Sprintf("name must be between %d and %d characters", minNameLen, maxNameLen))
	}
	return name, nil
}

// prepareImage decodes the base64 payload and normalizes it for the encoder.
func (s *Service) prepareImage(payload string) ([]byte, error) {
	data, err := imaging.DecodeBase64(payload)
	if err != nil {
		return nil, validationErrorf("invalid image data")
	}
	normalized, err := imaging.Normalize(data, s.maxSize)
	if err != nil {
		return nil, validationErrorf("invalid image data")
	}
	return normalized, nil
}

// Register validates the name, encodes the face, persists the record, and
// emits a best-effort registration event. Success is defined purely by
// persistence: a failed event notification is logged and dropped.
func (s *Service) Register(ctx context.Context, name, imagePayload string) (*Registration, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	imageData, err := s.prepareImage(imagePayload)
	if err != nil {
		return nil, err
	}

	detection, err := s.encoder.EncodeFace(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("encoding face: %w", err)
	}
	if detection == nil {
		return nil, ErrNoFaceDetected
	}

	timestamp := time.Now().Format(time.RFC3339)
	rec := gallery.Record{
		ID:        identityID(name, timestamp),
		Name:      name,
		Encoding:  detection.Encoding,
		Timestamp: timestamp,
	}

	if err := s.store.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("persisting registration: %w", err)
	}
	log.Info("registered face", "name", name, "id", rec.ID)

	if s.publisher != nil {
		s.publisher.PublishRegistration(ctx, notify.RegistrationEvent{
			ID:        rec.ID,
			Name:      rec.Name,
			Timestamp: rec.Timestamp,
			Type:      "registration",
		})
	}

	return &Registration{ID: rec.ID, Name: rec.Name, Timestamp: rec.Timestamp}, nil
}

// Recognize encodes the query face and matches it against the gallery. An
// image without a face yields a not-matched result, indistinguishable from
// "no match found". On a match, the broadcast event goes out asynchronously
// and never delays the returned result.
func (s *Service) Recognize(ctx context.Context, imagePayload string) (gallery.MatchResult, error) {
	imageData, err := s.prepareImage(imagePayload)
	if err != nil {
		return gallery.MatchResult{}, err
	}

	detection, err := s.encoder.EncodeFace(ctx, imageData)
	if err != nil {
		return gallery.MatchResult{}, fmt.Errorf("encoding face: %w", err)
	}
	if detection == nil {
		log.Debug("no face detected in recognition request")
		return gallery.MatchResult{}, nil
	}

	result := gallery.Match(detection.Encoding, s.store.ListAll(ctx))
	if !result.Matched {
		log.Info("no match found for the face")
		return result, nil
	}
	log.Info("match found", "name", result.Name, "confidence", fmt.Sprintf("%.2f", result.Confidence))

	event := notify.MatchEvent{
		Event:      "match",
		Name:       result.Name,
		Timestamp:  result.MatchedAt,
		Confidence: result.Confidence,
	}
	if s.hub != nil {
		s.hub.Publish(event)
	}
	if s.publisher != nil {
		// Detached from the request context so a slow broadcast backend
		// cannot delay or fail the recognition response.
		go s.publisher.PublishMatch(context.Background(), event)
	}

	return result, nil
}

// Names lists the distinct registered identities.
func (s *Service) Names(ctx context.Context) []string {
	return s.store.Names(ctx)
}

// DeleteIdentity removes every record registered under name and returns the
// count. Unknown names surface gallery.ErrNameNotFound.
func (s *Service) DeleteIdentity(ctx context.Context, name string) (int, error) {
	removed, err := s.store.DeleteByName(ctx, name)
	if err != nil {
		return 0, err
	}
	log.Info("deleted identity", "name", name, "removed", removed)
	return removed, nil
}
