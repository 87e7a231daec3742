package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/pgvector/pgvector-go"

	"github.com/facegate/facegate/internal/gallery"
)

// Store implements gallery.Store over the face_encodings table. Insertion
// order is the seq column, so list order matches the file store's file order.
type Store struct {
	pool *Pool
}

// NewStore creates a gallery store on the given pool.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// pgvector carries float32 components on the wire; the matcher works in
// float64. Widening back on read is lossy only below the tolerance scale.
func toVector(encoding []float64) pgvector.Vector {
	vals := make([]float32, len(encoding))
	for i, v := range encoding {
		vals[i] = float32(v)
	}
	return pgvector.NewVector(vals)
}

func fromVector(vec pgvector.Vector) []float64 {
	vals := vec.Slice()
	encoding := make([]float64, len(vals))
	for i, v := range vals {
		encoding[i] = float64(v)
	}
	return encoding
}

// ListAll returns every record in insertion order. Query failures degrade to
// an empty gallery, same as the file store's read semantics.
func (s *Store) ListAll(ctx context.Context) []gallery.Record {
	rows, err := s.pool.db.QueryContext(ctx,
		`SELECT id, name, encoding, registered_at FROM face_encodings ORDER BY seq`)
	if err != nil {
		log.Error("querying face encodings", "error", err)
		return nil
	}
	defer rows.Close()

	var records []gallery.Record
	for rows.Next() {
		var rec gallery.Record
		var vec pgvector.Vector
		if err := rows.Scan(&rec.ID, &rec.Name, &vec, &rec.Timestamp); err != nil {
			log.Error("scanning face encoding row", "error", err)
			return nil
		}
		rec.Encoding = fromVector(vec)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		log.Error("iterating face encodings", "error", err)
		return nil
	}
	return records
}

// Append inserts one record. A single INSERT is atomic, so there is no
// read-modify-write window and no lost updates between concurrent writers.
func (s *Store) Append(ctx context.Context, rec gallery.Record) error {
	_, err := s.pool.db.ExecContext(ctx,
		`INSERT INTO face_encodings (id, name, encoding, registered_at) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.Name, toVector(rec.Encoding), rec.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting face encoding: %w", err)
	}
	return nil
}

// DeleteByName removes all records registered under name.
func (s *Store) DeleteByName(ctx context.Context, name string) (int, error) {
	result, err := s.pool.db.ExecContext(ctx,
		`DELETE FROM face_encodings WHERE name = $1`, name)
	if err != nil {
		return 0, fmt.Errorf("deleting face encodings: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted encodings: %w", err)
	}
	if affected == 0 {
		return 0, gallery.ErrNameNotFound
	}
	return int(affected), nil
}

// Names returns distinct names in order of first registration.
func (s *Store) Names(ctx context.Context) []string {
	rows, err := s.pool.db.QueryContext(ctx,
		`SELECT name FROM face_encodings GROUP BY name ORDER BY MIN(seq)`)
	if err != nil {
		log.Error("querying face names", "error", err)
		return nil
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			log.Error("scanning face name", "error", err)
			return nil
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		log.Error("iterating face names", "error", err)
		return nil
	}
	return names
}
