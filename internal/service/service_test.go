package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/gallery"
	"github.com/facegate/facegate/internal/notify"
)

// fakeStore is an in-memory gallery.Store.
type fakeStore struct {
	mu      sync.Mutex
	records []gallery.Record
	failPut bool
}

func (f *fakeStore) ListAll(ctx context.Context) []gallery.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gallery.Record(nil), f.records...)
}

func (f *fakeStore) Append(ctx context.Context, rec gallery.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return errors.New("disk full")
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) DeleteByName(ctx context.Context, name string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0:0]
	for _, rec := range f.records {
		if rec.Name != name {
			kept = append(kept, rec)
		}
	}
	removed := len(f.records) - len(kept)
	if removed == 0 {
		return 0, gallery.ErrNameNotFound
	}
	f.records = kept
	return removed, nil
}

func (f *fakeStore) Names(ctx context.Context) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]struct{}{}
	var names []string
	for _, rec := range f.records {
		if _, ok := seen[rec.Name]; !ok {
			seen[rec.Name] = struct{}{}
			names = append(names, rec.Name)
		}
	}
	return names
}

// fakeEncoder returns a fixed detection (or none).
type fakeEncoder struct {
	detection *embedder.Detection
	err       error
}

func (f *fakeEncoder) EncodeFace(ctx context.Context, imageData []byte) (*embedder.Detection, error) {
	return f.detection, f.err
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu            sync.Mutex
	registrations []notify.RegistrationEvent
	matches       []notify.MatchEvent
}

func (p *recordingPublisher) PublishRegistration(ctx context.Context, ev notify.RegistrationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registrations = append(p.registrations, ev)
}

func (p *recordingPublisher) PublishMatch(ctx context.Context, ev notify.MatchEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.matches = append(p.matches, ev)
}

func (p *recordingPublisher) matchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.matches)
}

func testImagePayload(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func detectionAt(first float64) *embedder.Detection {
	enc := make([]float64, gallery.EncodingDim)
	enc[0] = first
	return &embedder.Detection{Dim: gallery.EncodingDim, Encoding: enc, DetScore: 0.98}
}

func newTestService(store *fakeStore, enc *fakeEncoder, pub *recordingPublisher) *Service {
	return New(store, enc, pub, notify.NewHub(), 512)
}

func TestRegisterSuccess(t *testing.T) {
	store := &fakeStore{}
	pub := &recordingPublisher{}
	svc := newTestService(store, &fakeEncoder{detection: detectionAt(0.1)}, pub)

	reg, err := svc.Register(context.Background(), "  Jan Novák  ", testImagePayload(t))
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if reg.Name != "Jan Novák" {
		t.Errorf("registered name = %q, want trimmed original", reg.Name)
	}
	if !strings.HasPrefix(reg.ID, "jan_novak_") {
		t.Errorf("id = %q, want jan_novak_<timestamp> prefix", reg.ID)
	}
	if strings.ContainsAny(reg.ID, ": ") {
		t.Errorf("id %q contains unsafe characters", reg.ID)
	}

	records := store.ListAll(context.Background())
	if len(records) != 1 || records[0].Name != "Jan Novák" {
		t.Errorf("store contents after register: %+v", records)
	}

	if len(pub.registrations) != 1 || pub.registrations[0].Type != "registration" {
		t.Errorf("registration events: %+v", pub.registrations)
	}
}

func TestRegisterNameValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"trims below minimum", " B "},
		{"too long", strings.Repeat("a", 101)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			svc := newTestService(store, &fakeEncoder{detection: detectionAt(0.1)}, &recordingPublisher{})

			_, err := svc.Register(context.Background(), tt.input, testImagePayload(t))
			if !IsValidation(err) {
				t.Errorf("Register(%q) error = %v, want validation error", tt.input, err)
			}
			if len(store.ListAll(context.Background())) != 0 {
				t.Error("store mutated by a rejected registration")
			}
		})
	}
}

func TestRegisterNoFaceIsDistinctFromValidation(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeEncoder{detection: nil}, &recordingPublisher{})

	_, err := svc.Register(context.Background(), "alice", testImagePayload(t))
	if !errors.Is(err, ErrNoFaceDetected) {
		t.Errorf("error = %v, want ErrNoFaceDetected", err)
	}
	if IsValidation(err) {
		t.Error("no-face must not be classified as a validation error")
	}
	if len(store.ListAll(context.Background())) != 0 {
		t.Error("store mutated despite missing face")
	}
}

func TestRegisterInvalidImage(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeEncoder{detection: detectionAt(0.1)}, &recordingPublisher{})

	_, err := svc.Register(context.Background(), "alice", "!!!not base64!!!")
	if !IsValidation(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestRegisterStoreWriteFailureIsHard(t *testing.T) {
	svc := newTestService(&fakeStore{failPut: true}, &fakeEncoder{detection: detectionAt(0.1)}, &recordingPublisher{})

	_, err := svc.Register(context.Background(), "alice", testImagePayload(t))
	if err == nil || IsValidation(err) || errors.Is(err, ErrNoFaceDetected) {
		t.Errorf("write failure surfaced as %v, want a plain internal error", err)
	}
}

func TestRecognizeMatch(t *testing.T) {
	store := &fakeStore{records: []gallery.Record{
		{ID: "alice_1", Name: "alice", Encoding: detectionAt(0.5).Encoding, Timestamp: "2025-01-01T00:00:00"},
		{ID: "bob_1", Name: "bob", Encoding: detectionAt(0.3).Encoding, Timestamp: "2025-01-01T00:00:00"},
	}}
	pub := &recordingPublisher{}
	svc := newTestService(store, &fakeEncoder{detection: detectionAt(0)}, pub)

	result, err := svc.Recognize(context.Background(), testImagePayload(t))
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if !result.Matched || result.Name != "bob" {
		t.Fatalf("result = %+v, want match on bob", result)
	}

	// The broadcast goes out on a goroutine; wait briefly.
	deadline := time.Now().Add(2 * time.Second)
	for pub.matchCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if pub.matchCount() != 1 {
		t.Error("match event was not published")
	}
}

func TestRecognizeNoFaceIsNotMatched(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeEncoder{detection: nil}, &recordingPublisher{})

	result, err := svc.Recognize(context.Background(), testImagePayload(t))
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if result.Matched {
		t.Errorf("result = %+v, want not matched", result)
	}
}

func TestRecognizeEmptyGallery(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeEncoder{detection: detectionAt(0)}, &recordingPublisher{})

	result, err := svc.Recognize(context.Background(), testImagePayload(t))
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if result.Matched {
		t.Errorf("empty gallery produced a match: %+v", result)
	}
}

func TestDeleteIdentity(t *testing.T) {
	store := &fakeStore{records: []gallery.Record{
		{ID: "alice_1", Name: "alice"},
		{ID: "alice_2", Name: "alice"},
	}}
	svc := newTestService(store, &fakeEncoder{}, &recordingPublisher{})

	removed, err := svc.DeleteIdentity(context.Background(), "alice")
	if err != nil {
		t.Fatalf("DeleteIdentity() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	if _, err := svc.DeleteIdentity(context.Background(), "alice"); !errors.Is(err, gallery.ErrNameNotFound) {
		t.Errorf("second delete error = %v, want ErrNameNotFound", err)
	}
}

func TestIdentitySlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Jan Novák", "jan_novak"},
		{"ALICE", "alice"},
		{"Mary Jane Watson", "mary_jane_watson"},
	}
	for _, tt := range tests {
		if got := identitySlug(tt.input); got != tt.want {
			t.Errorf("identitySlug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIdentityIDReplacesColons(t *testing.T) {
	id := identityID("Jan Novák", "2025-01-02T03:04:05Z")
	if id != "jan_novak_2025-01-02T03-04-05Z" {
		t.Errorf("identityID = %q", id)
	}
}
