// ABOUTME: Retrieval result structures returned by document queries
// ABOUTME: RelevanceScore is a distance, so callers sort ascending
package models

// RetrievalResult is one ranked chunk returned by a query.
//
// RelevanceScore is a cosine distance (lower = more similar), not a
// similarity percentage. Results sorted "by relevance" sort ascending.
type RetrievalResult struct {
	Text           string        `json:"text"`
	Metadata       ChunkMetadata `json:"metadata"`
	RelevanceScore float64       `json:"relevance_score"`
}

// ProcessResult reports the outcome of ingesting one document.
type ProcessResult struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
	Status     string `json:"status"`
}
