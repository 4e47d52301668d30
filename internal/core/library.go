// ABOUTME: Library orchestrates uploads, extraction, metadata records, and indexing
// ABOUTME: High-level ingestion/deletion operations shared by the CLI and MCP server
package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/harper/recall/internal/docstore"
	"github.com/harper/recall/internal/extract"
	"github.com/harper/recall/internal/models"
)

// Library ties the retrieval engine to the document metadata store and the
// uploads directory
type Library struct {
	engine     *Engine
	docs       *docstore.Store
	uploadsDir string
}

// NewLibrary creates a Library. uploadsDir is created lazily on first ingest.
func NewLibrary(engine *Engine, docs *docstore.Store, uploadsDir string) *Library {
	return &Library{engine: engine, docs: docs, uploadsDir: uploadsDir}
}

// IngestFile copies the file into the uploads directory, extracts its text,
// and runs the full chunk/embed/index pipeline. Any failure after the upload
// was saved removes the saved copy so no orphaned uploads remain.
func (l *Library) IngestFile(ctx context.Context, ownerID, path string) (*models.Document, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, fmt.Errorf("file must have an extension")
	}
	if !extract.Supported(ext) {
		return nil, fmt.Errorf("%w: %s", extract.ErrUnsupportedType, ext)
	}

	documentID := uuid.New().String()
	storedPath, size, err := l.saveUpload(path, documentID+ext)
	if err != nil {
		return nil, err
	}

	doc, err := l.ingestStored(ctx, ownerID, documentID, filepath.Base(path), storedPath, ext, size)
	if err != nil {
		// No orphaned uploads
		if rmErr := os.Remove(storedPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("Warning: failed to remove upload %s: %v", storedPath, rmErr)
		}
		return nil, err
	}
	return doc, nil
}

// IngestText runs the pipeline on already-extracted text, for callers that do
// their own extraction. filename is recorded for provenance only.
func (l *Library) IngestText(ctx context.Context, ownerID, filename, text string) (*models.Document, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}
	if filename == "" {
		filename = "untitled.txt"
	}

	documentID := uuid.New().String()

	result, err := l.engine.ProcessDocument(ctx, ownerID, documentID, text)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:         documentID,
		OwnerID:    ownerID,
		Filename:   filename,
		FileType:   strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		FileSize:   int64(len(text)),
		ChunkCount: result.ChunkCount,
	}
	if err := l.docs.Create(doc); err != nil {
		return nil, fmt.Errorf("saving document record: %w", err)
	}
	return doc, nil
}

func (l *Library) ingestStored(ctx context.Context, ownerID, documentID, filename, storedPath, ext string, size int64) (*models.Document, error) {
	text, err := extract.Text(storedPath)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	result, err := l.engine.ProcessDocument(ctx, ownerID, documentID, text)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:         documentID,
		OwnerID:    ownerID,
		Filename:   filename,
		StoredPath: storedPath,
		FileType:   strings.TrimPrefix(ext, "."),
		FileSize:   size,
		ChunkCount: result.ChunkCount,
	}
	if err := l.docs.Create(doc); err != nil {
		return nil, fmt.Errorf("saving document record: %w", err)
	}
	return doc, nil
}

// List returns the owner's document records, newest first
func (l *Library) List(ownerID string, limit int) ([]models.Document, error) {
	return l.docs.List(ownerID, limit)
}

// Get returns one document record scoped to its owner
func (l *Library) Get(documentID, ownerID string) (*models.Document, error) {
	return l.docs.Get(documentID, ownerID)
}

// Delete removes a document's metadata record and stored upload. The
// document's vectors stay in the owner's index unless rebuild is set: the
// index structure is append-only, so removal means rewriting the index from
// the retained chunks of the owner's remaining documents.
func (l *Library) Delete(ownerID, documentID string, rebuild bool) error {
	doc, err := l.docs.Get(documentID, ownerID)
	if err != nil {
		return err
	}

	deleted, err := l.docs.Delete(documentID, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return docstore.ErrNotFound
	}

	if doc.StoredPath != "" {
		if err := os.Remove(doc.StoredPath); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: failed to delete upload %s: %v", doc.StoredPath, err)
		}
	}

	if rebuild {
		removed, err := l.engine.Index().Rebuild(ownerID, func(meta models.ChunkMetadata) bool {
			return meta.DocumentID != documentID
		})
		if err != nil {
			return fmt.Errorf("rebuilding index: %w", err)
		}
		log.Printf("Rebuilt index for owner %s: removed %d chunks of document %s", ownerID, removed, documentID)
	} else {
		log.Printf("Document %s deleted for owner %s; %d indexed chunks remain orphaned until a rebuild", documentID, ownerID, doc.ChunkCount)
	}
	return nil
}

// saveUpload copies the source file into the uploads directory under a
// unique name
func (l *Library) saveUpload(srcPath, storedName string) (string, int64, error) {
	if err := os.MkdirAll(l.uploadsDir, 0755); err != nil {
		return "", 0, fmt.Errorf("creating uploads directory: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", 0, fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer src.Close()

	storedPath := filepath.Join(l.uploadsDir, storedName)
	dst, err := os.Create(storedPath)
	if err != nil {
		return "", 0, fmt.Errorf("saving upload: %w", err)
	}

	size, err := io.Copy(dst, src)
	if err != nil {
		dst.Close()
		os.Remove(storedPath)
		return "", 0, fmt.Errorf("saving upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(storedPath)
		return "", 0, fmt.Errorf("saving upload: %w", err)
	}
	return storedPath, size, nil
}
