package gallery

import (
	"math"
	"time"

	"github.com/charmbracelet/log"
)

// Tolerance is the maximum Euclidean distance between two encodings for them
// to count as the same identity. Tuned operating point - changing it changes
// accept/reject outcomes, so it is deliberately not configurable per request.
const Tolerance = 0.45

// MatchResult is the outcome of matching a query encoding against the gallery.
type MatchResult struct {
	Matched    bool    `json:"match"`
	Name       string  `json:"name,omitempty"`
	IdentityID string  `json:"identity_id,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	MatchedAt  string  `json:"timestamp,omitempty"`
}

// EuclideanDistance computes the L2 distance between two encodings in full
// double precision. Inputs of different numeric origin (float32 columns,
// JSON doubles) must be widened to float64 before calling to avoid spurious
// mismatches near the tolerance boundary.
func EuclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// usable reports whether a stored encoding can participate in matching.
// Wrong dimensionality or non-finite entries mark a corrupt record; it is
// skipped so one bad record never aborts the scan of the rest.
func usable(enc []float64) bool {
	if len(enc) != EncodingDim {
		return false
	}
	for _, v := range enc {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Match finds the closest record to query within Tolerance. Ties on distance
// go to the record inserted first. Confidence is 1 - distance; MatchedAt is
// the time of this computation, not the registration time.
func Match(query []float64, records []Record) MatchResult {
	if !usable(query) {
		log.Warn("unusable query encoding", "dim", len(query))
		return MatchResult{}
	}
	if len(records) == 0 {
		log.Debug("no known faces available for comparison")
		return MatchResult{}
	}

	best := -1
	bestDist := math.Inf(1)
	for i := range records {
		if !usable(records[i].Encoding) {
			log.Warn("skipping corrupt encoding record", "id", records[i].ID, "dim", len(records[i].Encoding))
			continue
		}
		if d := EuclideanDistance(query, records[i].Encoding); d < bestDist {
			best = i
			bestDist = d
		}
	}

	if best < 0 || bestDist > Tolerance {
		return MatchResult{}
	}

	rec := records[best]
	return MatchResult{
		Matched:    true,
		Name:       rec.Name,
		IdentityID: rec.ID,
		Confidence: 1 - bestDist,
		MatchedAt:  time.Now().Format(time.RFC3339),
	}
}
