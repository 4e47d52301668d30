// ABOUTME: Unit tests for the per-owner vector index
// ABOUTME: Covers ranking order, owner isolation, corruption recovery, and rebuild
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/harper/recall/internal/models"
)

func testChunk(owner, docID string, idx int, vector []float64) models.EmbeddedChunk {
	return models.EmbeddedChunk{
		Text:   fmt.Sprintf("chunk %d of %s", idx, docID),
		Vector: vector,
		Metadata: models.ChunkMetadata{
			DocumentID: docID,
			ChunkIndex: idx,
			OwnerID:    owner,
		},
	}
}

func TestStore_AppendAndSearch(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	chunks := []models.EmbeddedChunk{
		testChunk("u1", "doc1", 0, []float64{1.0, 0.0, 0.0}),
		testChunk("u1", "doc1", 1, []float64{0.0, 1.0, 0.0}),
		testChunk("u1", "doc1", 2, []float64{0.9, 0.1, 0.0}),
	}
	if err := store.Append("u1", chunks); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	results, err := store.Search("u1", []float64{0.95, 0.05, 0.0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	// chunk index 2 ([0.9, 0.1, 0]) is closest to the query
	if results[0].Metadata.ChunkIndex != 2 {
		t.Errorf("Expected chunk 2 first, got chunk %d", results[0].Metadata.ChunkIndex)
	}

	// Distances ascend (closer first)
	for i := 1; i < len(results); i++ {
		if results[i].RelevanceScore < results[i-1].RelevanceScore {
			t.Errorf("Results not in ascending distance order: score[%d]=%.4f < score[%d]=%.4f",
				i, results[i].RelevanceScore, i-1, results[i-1].RelevanceScore)
		}
	}
}

func TestStore_SearchLimitsToK(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	var chunks []models.EmbeddedChunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, testChunk("u1", "doc1", i, []float64{float64(i), 1.0, 0.0}))
	}
	if err := store.Append("u1", chunks); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	results, err := store.Search("u1", []float64{1.0, 1.0, 0.0}, 4)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 4 {
		t.Errorf("Expected 4 results, got %d", len(results))
	}
}

func TestStore_MissingIndexIsEmptyNotError(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	results, err := store.Search("nobody", []float64{1.0, 0.0}, 5)
	if err != nil {
		t.Fatalf("Expected no error for missing index, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty results, got %d", len(results))
	}
}

func TestStore_OwnerIsolation(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	// u2 has a near-exact match for the query; u1 has nothing at all
	u2Chunks := []models.EmbeddedChunk{
		testChunk("u2", "doc-u2", 0, []float64{1.0, 0.0, 0.0}),
	}
	if err := store.Append("u2", u2Chunks); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	results, err := store.Search("u1", []float64{1.0, 0.0, 0.0}, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("u1's query must not see u2's chunks, got %d results", len(results))
	}
}

func TestStore_IsolationViolationDropped(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	if err := store.Append("u1", []models.EmbeddedChunk{
		testChunk("u1", "doc1", 0, []float64{1.0, 0.0, 0.0}),
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Corrupt the invariant from underneath the store: splice a foreign
	// owner's record directly into u1's persisted index
	records, err := store.load("u1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	intruder := testChunk("u2", "doc-u2", 0, []float64{1.0, 0.0, 0.0})
	records = append(records, intruder)
	if err := store.save("u1", records); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	results, err := store.Search("u1", []float64{1.0, 0.0, 0.0}, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result after dropping intruder, got %d", len(results))
	}
	if results[0].Metadata.OwnerID != "u1" {
		t.Errorf("Result owned by %s leaked into u1's results", results[0].Metadata.OwnerID)
	}
}

func TestStore_AppendStampsOwner(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	// Caller forgot to tag metadata
	chunk := testChunk("", "doc1", 0, []float64{0.5, 0.5})
	if err := store.Append("u1", []models.EmbeddedChunk{chunk}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	results, err := store.Search("u1", []float64{0.5, 0.5}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Metadata.OwnerID != "u1" {
		t.Errorf("Expected owner stamped as u1, got %q", results[0].Metadata.OwnerID)
	}
}

func TestStore_CorruptIndexSearchFails(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	dir := store.OwnerDir("u1")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.json"), []byte("not json {{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := store.Search("u1", []float64{1.0}, 3)
	if !errors.Is(err, ErrCorruptIndex) {
		t.Errorf("Expected ErrCorruptIndex, got %v", err)
	}
}

func TestStore_CorruptIndexAppendRecovers(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	dir := store.OwnerDir("u1")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.json"), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := store.Append("u1", []models.EmbeddedChunk{
		testChunk("u1", "doc1", 0, []float64{1.0, 0.0}),
	}); err != nil {
		t.Fatalf("Append should recover from corrupt index, got %v", err)
	}

	results, err := store.Search("u1", []float64{1.0, 0.0}, 5)
	if err != nil {
		t.Fatalf("Search after recovery failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 result in fresh index, got %d", len(results))
	}
}

func TestStore_DimensionMismatchRejected(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	if err := store.Append("u1", []models.EmbeddedChunk{
		testChunk("u1", "doc1", 0, []float64{1.0, 0.0, 0.0}),
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	err := store.Append("u1", []models.EmbeddedChunk{
		testChunk("u1", "doc2", 0, []float64{1.0, 0.0}),
	})
	if err == nil {
		t.Error("Expected dimension mismatch error, got nil")
	}
}

func TestStore_NoTempFilesLeftBehind(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	if err := store.Append("u1", []models.EmbeddedChunk{
		testChunk("u1", "doc1", 0, []float64{1.0, 0.0}),
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entries, err := os.ReadDir(store.OwnerDir("u1"))
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp") {
			t.Errorf("Temp file left behind: %s", entry.Name())
		}
	}
}

func TestStore_PersistedFormatIsLoadable(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	if err := store.Append("u1", []models.EmbeddedChunk{
		testChunk("u1", "doc1", 0, []float64{0.1, 0.2}),
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.OwnerDir("u1"), "index.json"))
	if err != nil {
		t.Fatalf("Reading persisted index: %v", err)
	}
	var records []models.EmbeddedChunk
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("Persisted index is not valid JSON: %v", err)
	}
	if len(records) != 1 || records[0].Metadata.DocumentID != "doc1" {
		t.Errorf("Persisted records do not round-trip: %+v", records)
	}
}

func TestStore_Rebuild(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	if err := store.Append("u1", []models.EmbeddedChunk{
		testChunk("u1", "doc1", 0, []float64{1.0, 0.0}),
		testChunk("u1", "doc2", 0, []float64{0.0, 1.0}),
		testChunk("u1", "doc2", 1, []float64{0.5, 0.5}),
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	removed, err := store.Rebuild("u1", func(meta models.ChunkMetadata) bool {
		return meta.DocumentID != "doc2"
	})
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 chunks removed, got %d", removed)
	}

	results, err := store.Search("u1", []float64{0.0, 1.0}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 remaining chunk, got %d", len(results))
	}
	if results[0].Metadata.DocumentID != "doc1" {
		t.Errorf("Expected doc1 to survive rebuild, got %s", results[0].Metadata.DocumentID)
	}
}

func TestStore_RebuildMissingIndexIsNoop(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	removed, err := store.Rebuild("nobody", func(models.ChunkMetadata) bool { return true })
	if err != nil {
		t.Fatalf("Rebuild on missing index should be a no-op, got %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected 0 removed, got %d", removed)
	}
}

func TestStore_ConcurrentAppendsSameOwner(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	const writers = 8
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			chunk := testChunk("u1", fmt.Sprintf("doc%d", w), 0, []float64{float64(w), 1.0})
			if err := store.Append("u1", []models.EmbeddedChunk{chunk}); err != nil {
				t.Errorf("Concurrent append failed: %v", err)
			}
		}(w)
	}
	wg.Wait()

	// No load-modify-save race may lose an append
	results, err := store.Search("u1", []float64{1.0, 1.0}, writers)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != writers {
		t.Errorf("Expected %d chunks after concurrent appends, got %d", writers, len(results))
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
		delta    float64
	}{
		{"identical vectors", []float64{1.0, 0.0}, []float64{1.0, 0.0}, 0.0, 0.001},
		{"orthogonal vectors", []float64{1.0, 0.0}, []float64{0.0, 1.0}, 1.0, 0.001},
		{"opposite vectors", []float64{1.0, 0.0}, []float64{-1.0, 0.0}, 2.0, 0.001},
		{"mismatched lengths", []float64{1.0}, []float64{1.0, 0.0}, 2.0, 0.001},
		{"zero vector", []float64{0.0, 0.0}, []float64{1.0, 0.0}, 2.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineDistance(tt.a, tt.b)
			if got < tt.expected-tt.delta || got > tt.expected+tt.delta {
				t.Errorf("cosineDistance = %.4f, want %.4f ± %.3f", got, tt.expected, tt.delta)
			}
		})
	}
}
