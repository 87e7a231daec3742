package gallery

import (
	"math"
	"testing"
)

// encodingAtDistance builds a 128-dim encoding at exactly dist from the zero
// vector by putting the full distance into the first component.
func encodingAtDistance(dist float64) []float64 {
	enc := make([]float64, EncodingDim)
	enc[0] = dist
	return enc
}

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", encodingAtDistance(0), encodingAtDistance(0), 0},
		{"single axis", encodingAtDistance(0), encodingAtDistance(0.3), 0.3},
		{"pythagorean", []float64{3, 0}, []float64{0, 4}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EuclideanDistance(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("EuclideanDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchUnusableQuery(t *testing.T) {
	records := []Record{
		{ID: "alice_1", Name: "alice", Encoding: encodingAtDistance(0.1)},
	}

	oversized := make([]float64, EncodingDim+1)
	undersized := make([]float64, EncodingDim-1)
	withNaN := encodingAtDistance(0)
	withNaN[5] = math.NaN()

	for _, query := range [][]float64{oversized, undersized, withNaN, nil} {
		result := Match(query, records)
		if result.Matched {
			t.Errorf("Match() with %d-dim query returned a match: %+v", len(query), result)
		}
	}
}

func TestMatchEmptyGallery(t *testing.T) {
	result := Match(encodingAtDistance(0), nil)
	if result.Matched {
		t.Errorf("Match() on empty gallery returned a match: %+v", result)
	}
}

func TestMatchPicksClosestWithinTolerance(t *testing.T) {
	query := encodingAtDistance(0)
	records := []Record{
		{ID: "alice_1", Name: "alice", Encoding: encodingAtDistance(0.5)},
		{ID: "bob_1", Name: "bob", Encoding: encodingAtDistance(0.3)},
	}

	result := Match(query, records)
	if !result.Matched {
		t.Fatal("expected a match")
	}
	if result.Name != "bob" {
		t.Errorf("matched name = %q, want %q", result.Name, "bob")
	}
	if result.IdentityID != "bob_1" {
		t.Errorf("identity id = %q, want %q", result.IdentityID, "bob_1")
	}
	if math.Abs(result.Confidence-0.70) > 1e-9 {
		t.Errorf("confidence = %v, want 0.70", result.Confidence)
	}
	if result.MatchedAt == "" {
		t.Error("MatchedAt not set")
	}
}

func TestMatchToleranceBoundary(t *testing.T) {
	query := encodingAtDistance(0)

	// Exactly at the tolerance is still a match.
	at := Match(query, []Record{{ID: "a", Name: "ann", Encoding: encodingAtDistance(Tolerance)}})
	if !at.Matched {
		t.Error("distance == tolerance should match")
	}
	if at.Confidence < 0.55-1e-9 {
		t.Errorf("confidence %v below 0.55 for an accepted match", at.Confidence)
	}

	// Just past the tolerance is not.
	past := Match(query, []Record{{ID: "a", Name: "ann", Encoding: encodingAtDistance(Tolerance + 1e-6)}})
	if past.Matched {
		t.Error("distance > tolerance should not match")
	}
}

func TestMatchNoCandidateWithinTolerance(t *testing.T) {
	records := []Record{
		{ID: "a", Name: "ann", Encoding: encodingAtDistance(0.8)},
		{ID: "b", Name: "ben", Encoding: encodingAtDistance(1.2)},
	}
	if result := Match(encodingAtDistance(0), records); result.Matched {
		t.Errorf("expected no match, got %+v", result)
	}
}

func TestMatchTieBreaksByInsertionOrder(t *testing.T) {
	query := encodingAtDistance(0)
	records := []Record{
		{ID: "first", Name: "ann", Encoding: encodingAtDistance(0.2)},
		{ID: "second", Name: "ben", Encoding: encodingAtDistance(0.2)},
	}

	for i := 0; i < 10; i++ {
		result := Match(query, records)
		if !result.Matched || result.IdentityID != "first" {
			t.Fatalf("run %d: tie broke to %q, want first-inserted record", i, result.IdentityID)
		}
	}
}

func TestMatchSkipsCorruptRecords(t *testing.T) {
	query := encodingAtDistance(0)
	records := []Record{
		{ID: "short", Name: "broken", Encoding: []float64{0.1, 0.2}},
		{ID: "nan", Name: "broken", Encoding: func() []float64 {
			enc := encodingAtDistance(0.1)
			enc[5] = math.NaN()
			return enc
		}()},
		{ID: "ok", Name: "carol", Encoding: encodingAtDistance(0.4)},
	}

	result := Match(query, records)
	if !result.Matched || result.Name != "carol" {
		t.Errorf("corrupt records aborted matching, got %+v", result)
	}
}
