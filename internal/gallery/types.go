// Package gallery holds the registered face encoding gallery: durable storage
// of identity encodings and distance-based matching against them.
package gallery

import (
	"context"
	"errors"
)

// EncodingDim is the length of a face encoding vector produced by the embedder.
const EncodingDim = 128

// Record is one registered face encoding. The JSON field names match the
// on-disk format of the encodings file, so existing stores keep working.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Encoding  []float64 `json:"encoding"`
	Timestamp string    `json:"timestamp"`
}

// ErrNameNotFound is returned by DeleteByName when no record carries the name.
var ErrNameNotFound = errors.New("name not found")

// Store is the durable gallery contract. Implementations must serialize
// mutations internally: two concurrent Appends may never lose a record.
type Store interface {
	// ListAll returns every record in insertion order. Read or parse failures
	// degrade to an empty gallery (logged, not surfaced) - an empty gallery
	// simply matches nothing.
	ListAll(ctx context.Context) []Record
	// Append persists a new record. Write failures are hard errors.
	Append(ctx context.Context, rec Record) error
	// DeleteByName removes all records whose name equals name exactly and
	// returns how many were removed. Zero matches is ErrNameNotFound.
	DeleteByName(ctx context.Context, name string) (int, error)
	// Names returns the distinct registered names in order of first appearance.
	Names(ctx context.Context) []string
}
