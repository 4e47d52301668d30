// ABOUTME: Document metadata record persisted by the document store
// ABOUTME: Mirrors what the SQLite documents table holds per upload
package models

import "time"

// Document is the metadata record for one ingested document.
type Document struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Filename   string    `json:"filename"`
	StoredPath string    `json:"stored_path,omitempty"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
