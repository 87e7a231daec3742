// Package rag implements the retrieval-augmented chat engine: a vector store
// over document chunks and registration events, and streaming answer
// generation against it.
package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/hnsw"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200

	hnswMaxNeighbors = 16
)

// Embedder turns text into vectors. The production implementation talks to
// the OpenAI embeddings API; tests substitute a deterministic fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Chunk is a retrievable unit of text with its origin.
type Chunk struct {
	Text   string
	Source string
}

// VectorStore indexes chunks in an HNSW graph keyed by insertion order.
// Explicitly constructed and owned by its caller; it holds no global state.
type VectorStore struct {
	embedder Embedder

	mu     sync.RWMutex
	graph  *hnsw.Graph[int]
	chunks map[int]Chunk
	nextID int
}

// NewVectorStore creates an empty store backed by the given embedder.
func NewVectorStore(embedder Embedder) *VectorStore {
	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.CosineDistance

	return &VectorStore{
		embedder: embedder,
		graph:    g,
		chunks:   make(map[int]Chunk),
	}
}

// Len returns the number of indexed chunks.
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Add splits the text into chunks, embeds them, and indexes the result.
func (s *VectorStore) Add(ctx context.Context, text, source string) error {
	chunks := chunkText(text)
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embedding %s: %w", source, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding %s: got %d vectors for %d chunks", source, len(vectors), len(chunks))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, chunk := range chunks {
		id := s.nextID
		s.nextID++
		s.graph.Add(hnsw.MakeNode(id, vectors[i]))
		s.chunks[id] = Chunk{Text: chunk, Source: source}
	}
	return nil
}

// Search returns the k chunks nearest to the query, best first.
func (s *VectorStore) Search(ctx context.Context, query string, k int) ([]Chunk, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.chunks) == 0 {
		return nil, nil
	}

	neighbors := s.graph.Search(vector, k)
	results := make([]Chunk, 0, len(neighbors))
	for _, n := range neighbors {
		if chunk, ok := s.chunks[n.Key]; ok {
			results = append(results, chunk)
		}
	}
	return results, nil
}

// LoadDocuments indexes every .txt and .md file under dir. A missing
// directory is not an error; the store just starts empty.
func (s *VectorStore) LoadDocuments(ctx context.Context, dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Warn("documents directory not found", "dir", dir)
		return nil
	}

	loaded := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("could not read document", "path", path, "error", err)
			return nil
		}
		if err := s.Add(ctx, string(data), filepath.Base(path)); err != nil {
			return err
		}
		loaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading documents from %s: %w", dir, err)
	}

	log.Info("documents indexed", "dir", dir, "files", loaded, "chunks", s.Len())
	return nil
}

// chunkText splits text into overlapping rune windows.
func chunkText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - chunkOverlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
