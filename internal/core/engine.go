// ABOUTME: Retrieval engine orchestrating chunking, embedding, indexing, and ranked search
// ABOUTME: Owns the caller-error taxonomy for ingestion and query operations
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/recall/internal/chunker"
	"github.com/harper/recall/internal/config"
	"github.com/harper/recall/internal/index"
	"github.com/harper/recall/internal/models"
)

// Caller errors: bad input, reported synchronously and never retried
var (
	ErrEmptyDocument = errors.New("document text is empty")
	ErrEmptyQuery    = errors.New("query text is empty")
	ErrInvalidTopK   = fmt.Errorf("top_k must be in [1,%d]", config.MaxTopK)
)

// Embedder maps text to fixed-dimensional vectors via the external provider.
// EmbedBatch results match input order 1:1.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Engine is the retrieval core: it chunks and indexes documents and answers
// similarity queries, strictly isolated per owner. Construct once at process
// start and pass explicitly to request handlers.
type Engine struct {
	embedder     Embedder
	index        *index.Store
	maxChunkSize int
	chunkOverlap int
}

// NewEngine creates an Engine with the configured chunking policy
func NewEngine(embedder Embedder, store *index.Store, cfg *config.Config) *Engine {
	maxChunkSize := cfg.MaxChunkSize
	if maxChunkSize <= 0 {
		maxChunkSize = chunker.DefaultMaxSize
	}
	chunkOverlap := cfg.ChunkOverlap
	if chunkOverlap < 0 || chunkOverlap >= maxChunkSize {
		chunkOverlap = chunker.DefaultOverlap
	}
	return &Engine{
		embedder:     embedder,
		index:        store,
		maxChunkSize: maxChunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Index exposes the underlying per-owner index store
func (e *Engine) Index() *index.Store {
	return e.index
}

// ProcessDocument chunks, embeds, and indexes a document's extracted text for
// an owner. All chunks are embedded before the index is touched, so a
// cancelled or failed embedding batch commits nothing. Not idempotent:
// re-processing the same text appends duplicate chunks.
func (e *Engine) ProcessDocument(ctx context.Context, ownerID, documentID, text string) (*models.ProcessResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}
	if documentID == "" {
		return nil, fmt.Errorf("document ID is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	texts := chunker.Split(text, e.maxChunkSize, e.chunkOverlap)
	if len(texts) == 0 {
		return nil, ErrEmptyDocument
	}

	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding document %s: %w", documentID, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
	}

	embedded := make([]models.EmbeddedChunk, len(texts))
	for i, chunkText := range texts {
		embedded[i] = models.EmbeddedChunk{
			Text:   chunkText,
			Vector: vectors[i],
			Metadata: models.ChunkMetadata{
				DocumentID:  documentID,
				ChunkIndex:  i,
				OwnerID:     ownerID,
				TextPreview: preview(chunkText, 100),
			},
		}
	}

	if err := e.index.Append(ownerID, embedded); err != nil {
		return nil, fmt.Errorf("indexing document %s: %w", documentID, err)
	}

	return &models.ProcessResult{
		DocumentID: documentID,
		ChunkCount: len(embedded),
		Status:     "processed",
	}, nil
}

// QueryDocuments embeds the query and returns up to topK chunks from the
// owner's index ranked by ascending distance. An owner with no ingested
// documents gets an empty result set, not an error. Provider failures and
// corrupt indexes propagate so callers can distinguish "no relevant
// documents" from "service degraded".
func (e *Engine) QueryDocuments(ctx context.Context, ownerID, queryText string, topK int) ([]models.RetrievalResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}
	if strings.TrimSpace(queryText) == "" {
		return nil, ErrEmptyQuery
	}
	if topK < 1 || topK > config.MaxTopK {
		return nil, ErrInvalidTopK
	}

	queryVector, err := e.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := e.index.Search(ownerID, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index for owner %s: %w", ownerID, err)
	}
	return results, nil
}

// preview truncates chunk text for the metadata record
func preview(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
