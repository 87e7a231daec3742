package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

// FileStore persists the gallery as a single JSON array on disk. Every
// mutation rewrites the whole file through a temp-file rename, so readers
// never observe a torn write. A mutex serializes mutations within the
// process: concurrent registrations both land, nothing is silently lost.
//
// The O(n) rewrite per append is an accepted tradeoff at gallery sizes of
// tens to low thousands of identities.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the JSON file at path. The file does
// not need to exist; a missing or empty file reads as an empty gallery.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// ListAll returns every record in file order. Any read or parse failure
// degrades to an empty gallery - availability of matching wins over strict
// consistency, since an empty gallery just yields "no match".
func (s *FileStore) ListAll(ctx context.Context) []Record {
	return s.load()
}

// Append adds a record and rewrites the file. Unlike reads, a failed write is
// a hard error: silently dropping a registration is unacceptable.
func (s *FileStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := append(s.load(), rec)
	if err := s.save(records); err != nil {
		return fmt.Errorf("appending encoding record: %w", err)
	}
	return nil
}

// DeleteByName removes all records whose name equals name exactly.
func (s *FileStore) DeleteByName(ctx context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load()
	kept := records[:0:0]
	for _, rec := range records {
		if rec.Name != name {
			kept = append(kept, rec)
		}
	}

	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, ErrNameNotFound
	}
	if err := s.save(kept); err != nil {
		return 0, fmt.Errorf("rewriting encodings after delete: %w", err)
	}
	return removed, nil
}

// Names returns distinct registered names in order of first appearance.
func (s *FileStore) Names(ctx context.Context) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, rec := range s.load() {
		if _, ok := seen[rec.Name]; ok {
			continue
		}
		seen[rec.Name] = struct{}{}
		names = append(names, rec.Name)
	}
	return names
}

func (s *FileStore) load() []Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error("reading encodings file", "path", s.path, "error", err)
		}
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Error("parsing encodings file", "path", s.path, "error", err)
		return nil
	}
	return records
}

// save writes the full record list atomically: marshal, write to a temp file
// in the same directory, then rename over the target.
func (s *FileStore) save(records []Record) error {
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".encodings-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing encodings file: %w", err)
	}
	return nil
}
