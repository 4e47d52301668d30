// ABOUTME: SQLite-backed document metadata store keyed by (document_id, owner_id)
// ABOUTME: The vector index holds chunks; this holds per-upload bookkeeping
package docstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harper/recall/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no document matches (document_id, owner_id)
var ErrNotFound = errors.New("document not found")

// Store persists document metadata records in SQLite
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the document database at dbPath
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		stored_path TEXT,
		file_type TEXT,
		file_size INTEGER DEFAULT 0,
		chunk_count INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Create inserts a document record
func (s *Store) Create(doc *models.Document) error {
	if doc.ID == "" || doc.OwnerID == "" {
		return fmt.Errorf("document ID and owner ID are required")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO documents (id, owner_id, filename, stored_path, file_type, file_size, chunk_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.OwnerID, doc.Filename, doc.StoredPath, doc.FileType, doc.FileSize, doc.ChunkCount, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// Get fetches one document scoped to its owner
func (s *Store) Get(documentID, ownerID string) (*models.Document, error) {
	row := s.db.QueryRow(
		`SELECT id, owner_id, filename, stored_path, file_type, file_size, chunk_count, created_at
		 FROM documents WHERE id = ? AND owner_id = ?`,
		documentID, ownerID,
	)

	var doc models.Document
	err := row.Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &doc.StoredPath,
		&doc.FileType, &doc.FileSize, &doc.ChunkCount, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return &doc, nil
}

// List returns an owner's documents, newest first
func (s *Store) List(ownerID string, limit int) ([]models.Document, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(
		`SELECT id, owner_id, filename, stored_path, file_type, file_size, chunk_count, created_at
		 FROM documents WHERE owner_id = ? ORDER BY created_at DESC LIMIT ?`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &doc.StoredPath,
			&doc.FileType, &doc.FileSize, &doc.ChunkCount, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes a document record scoped to its owner. Returns false when
// nothing matched.
func (s *Store) Delete(documentID, ownerID string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM documents WHERE id = ? AND owner_id = ?`, documentID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
