// ABOUTME: Chunk types for document splitting and embedding
// ABOUTME: ChunkMetadata is the closed provenance record carried by every indexed chunk
package models

// ChunkMetadata is the provenance record attached to every indexed chunk.
// OwnerID is safety-critical: it is re-validated on every search candidate
// before a result is returned to a caller.
type ChunkMetadata struct {
	DocumentID  string `json:"document_id"`
	ChunkIndex  int    `json:"chunk_index"`
	OwnerID     string `json:"owner_id"`
	TextPreview string `json:"text_preview"`
}

// Chunk is a bounded contiguous span of a document's extracted text,
// the unit of embedding and retrieval.
type Chunk struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// EmbeddedChunk is a chunk plus its embedding vector. It belongs to exactly
// one owner's index and is never shared across owners.
type EmbeddedChunk struct {
	Text     string        `json:"text"`
	Vector   []float64     `json:"vector"`
	Metadata ChunkMetadata `json:"metadata"`
}
