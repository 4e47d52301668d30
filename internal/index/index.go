// ABOUTME: Per-owner persisted vector index with cosine distance search
// ABOUTME: One directory per owner, atomic JSON persistence, keyed write locks
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/harper/recall/internal/models"
)

var (
	// ErrCorruptIndex marks a persisted index that exists but cannot be
	// decoded. Search propagates it; Append recovers with a fresh index
	// (logged, since it implies previously indexed documents are discarded).
	ErrCorruptIndex = errors.New("persisted index is corrupt")

	// errNoIndex is the internal "no documents yet" branch. Never returned
	// to callers: Search maps it to an empty result set.
	errNoIndex = errors.New("no index for owner")
)

const indexFileName = "index.json"

// Store manages one persisted vector index per owner. Writers for the same
// owner are serialized through a per-owner mutex; distinct owners share no
// mutable state beyond the lock table itself.
type Store struct {
	basePath string

	mu         sync.Mutex
	ownerLocks map[string]*sync.Mutex
}

// NewStore creates a Store rooted at basePath, creating it if needed
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index root %s: %w", basePath, err)
	}
	return &Store{
		basePath:   basePath,
		ownerLocks: make(map[string]*sync.Mutex),
	}, nil
}

// ownerLock returns the write lock for an owner, creating it on first use
func (s *Store) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.ownerLocks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.ownerLocks[ownerID] = lock
	}
	return lock
}

// OwnerDir is the deterministic per-owner namespace under the index root
func (s *Store) OwnerDir(ownerID string) string {
	return filepath.Join(s.basePath, "user_"+ownerID)
}

func (s *Store) indexPath(ownerID string) string {
	return filepath.Join(s.OwnerDir(ownerID), indexFileName)
}

// Append adds embedded chunks to an owner's index, creating the index on
// first ingestion. Every chunk is stamped with ownerID before insertion so
// isolation holds even if a caller forgot to tag metadata. The updated index
// is written to a temp file and renamed into place, so a crash mid-write
// never leaves a file the loader cannot open.
func (s *Store) Append(ownerID string, chunks []models.EmbeddedChunk) error {
	if ownerID == "" {
		return fmt.Errorf("owner ID is required")
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to append")
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.load(ownerID)
	switch {
	case errors.Is(err, errNoIndex):
		existing = nil
	case errors.Is(err, ErrCorruptIndex):
		// Recover by starting fresh. Previously indexed documents are lost,
		// which callers need to hear about.
		log.Printf("Warning: corrupt index for owner %s, starting fresh: %v", ownerID, err)
		existing = nil
	case err != nil:
		return err
	}

	dimension := 0
	if len(existing) > 0 {
		dimension = len(existing[0].Vector)
	}

	for i := range chunks {
		if dimension == 0 {
			dimension = len(chunks[i].Vector)
		}
		if len(chunks[i].Vector) != dimension {
			return fmt.Errorf("invalid embedding dimension: expected %d, got %d", dimension, len(chunks[i].Vector))
		}
		chunks[i].Metadata.OwnerID = ownerID
	}

	return s.save(ownerID, append(existing, chunks...))
}

// Search returns up to k chunks from the owner's index ranked by ascending
// cosine distance to the query vector. A missing index is not an error: it
// means no documents yet, and yields an empty result set. Candidates whose
// owner metadata does not match ownerID are dropped and logged, never
// returned.
func (s *Store) Search(ownerID string, queryVector []float64, k int) ([]models.RetrievalResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}

	records, err := s.load(ownerID)
	if errors.Is(err, errNoIndex) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	results := make([]models.RetrievalResult, 0, len(records))
	for _, rec := range records {
		if rec.Metadata.OwnerID != ownerID {
			log.Printf("Warning: isolation violation in index for owner %s: dropping chunk owned by %s (document %s)",
				ownerID, rec.Metadata.OwnerID, rec.Metadata.DocumentID)
			continue
		}
		results = append(results, models.RetrievalResult{
			Text:           rec.Text,
			Metadata:       rec.Metadata,
			RelevanceScore: cosineDistance(queryVector, rec.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore < results[j].RelevanceScore
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Rebuild rewrites an owner's index keeping only chunks accepted by keep.
// Returns the number of chunks removed. This is the optional recovery path
// for document deletion: there is no in-place vector removal, but the side
// table retains every chunk's text and vector, so a rebuild needs no
// re-embedding.
func (s *Store) Rebuild(ownerID string, keep func(models.ChunkMetadata) bool) (int, error) {
	if ownerID == "" {
		return 0, fmt.Errorf("owner ID is required")
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.load(ownerID)
	if errors.Is(err, errNoIndex) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	kept := make([]models.EmbeddedChunk, 0, len(records))
	for _, rec := range records {
		if keep(rec.Metadata) {
			kept = append(kept, rec)
		}
	}

	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(ownerID, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// load reads an owner's persisted index. Returns errNoIndex when nothing has
// been ingested yet and ErrCorruptIndex when the file exists but cannot be
// decoded.
func (s *Store) load(ownerID string) ([]models.EmbeddedChunk, error) {
	data, err := os.ReadFile(s.indexPath(ownerID))
	if os.IsNotExist(err) {
		return nil, errNoIndex
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index for owner %s: %w", ownerID, err)
	}

	var records []models.EmbeddedChunk
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w (owner %s): %w", ErrCorruptIndex, ownerID, err)
	}
	return records, nil
}

// save persists an owner's records atomically via temp file + rename
func (s *Store) save(ownerID string, records []models.EmbeddedChunk) error {
	dir := s.OwnerDir(ownerID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create owner directory: %w", err)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	tmp, err := os.CreateTemp(dir, indexFileName+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp index file: %w", err)
	}

	if err := os.Rename(tmpName, s.indexPath(ownerID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace index file: %w", err)
	}
	return nil
}

// cosineDistance is 1 - cosine similarity, so lower means more similar.
// Mismatched or zero vectors get the maximum distance instead of an error,
// keeping them rankable but last.
func cosineDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return 2.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 2.0
	}

	return 1.0 - dotProduct/(math.Sqrt(normA)*math.Sqrt(normB))
}
