// Package notify delivers best-effort outbound events. Delivery failures are
// logged and dropped: no retries, and never a failure of the operation that
// produced the event.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// RegistrationEvent tells the document indexer about a new registration.
type RegistrationEvent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

// MatchEvent tells the realtime backend that a face was recognized.
type MatchEvent struct {
	Event      string  `json:"event"`
	Name       string  `json:"name"`
	Timestamp  string  `json:"timestamp"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Publisher posts events to collaborating services.
type Publisher interface {
	PublishRegistration(ctx context.Context, event RegistrationEvent)
	PublishMatch(ctx context.Context, event MatchEvent)
}

// HTTPPublisher posts JSON events over HTTP with short per-call timeouts.
// Either URL may be empty, which disables that event kind.
type HTTPPublisher struct {
	indexerURL       string
	broadcastURL     string
	indexerTimeout   time.Duration
	broadcastTimeout time.Duration
	client           *http.Client
}

// NewHTTPPublisher creates a publisher for the given collaborator URLs.
// indexerURL is the indexer's base URL; events go to its /event endpoint.
func NewHTTPPublisher(indexerURL, broadcastURL string, indexerTimeout, broadcastTimeout time.Duration) *HTTPPublisher {
	return &HTTPPublisher{
		indexerURL:       indexerEventURL(indexerURL),
		broadcastURL:     broadcastURL,
		indexerTimeout:   indexerTimeout,
		broadcastTimeout: broadcastTimeout,
		client:           &http.Client{},
	}
}

// indexerEventURL resolves the indexer's event endpoint from its base URL.
func indexerEventURL(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/") + "/event"
}

// PublishRegistration notifies the document indexer of a new registration.
func (p *HTTPPublisher) PublishRegistration(ctx context.Context, event RegistrationEvent) {
	if p.indexerURL == "" {
		return
	}
	p.post(ctx, p.indexerURL, event, p.indexerTimeout, "registration")
}

// PublishMatch pushes a match event to the realtime broadcast backend.
func (p *HTTPPublisher) PublishMatch(ctx context.Context, event MatchEvent) {
	if p.broadcastURL == "" {
		return
	}
	p.post(ctx, p.broadcastURL, event, p.broadcastTimeout, "match")
}

// post fires one request and drops any failure after logging it.
func (p *HTTPPublisher) post(ctx context.Context, url string, payload any, timeout time.Duration, kind string) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("marshaling event", "kind", kind, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Error("building event request", "kind", kind, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		log.Warn("event delivery failed", "kind", kind, "url", url, "error", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("event delivery rejected", "kind", kind, "url", url, "status", resp.StatusCode)
		return
	}
	log.Debug("event delivered", "kind", kind, "url", url)
}
