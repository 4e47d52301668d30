// ABOUTME: MCP tool handler implementations for the recall server
// ABOUTME: Maps the error taxonomy onto tool results (caller errors vs degraded service)
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/recall/internal/config"
	"github.com/harper/recall/internal/core"
	"github.com/harper/recall/internal/docstore"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	library *core.Library
	engine  *core.Engine
	chat    *core.ChatEngine
}

// ProcessDocument handles the process_document tool
func (h *Handlers) ProcessDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerID, err := request.RequireString("owner_id")
	if err != nil {
		return mcp.NewToolResultError("owner_id argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	filename := request.GetString("filename", "")

	doc, err := h.library.IngestText(ctx, ownerID, filename, text)
	if err != nil {
		if errors.Is(err, core.ErrEmptyDocument) {
			return mcp.NewToolResultError("document text is empty, nothing to index"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("processing failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"document_id": doc.ID,
		"filename":    doc.Filename,
		"chunk_count": doc.ChunkCount,
		"status":      "processed",
	})
}

// QueryDocuments handles the query_documents tool
func (h *Handlers) QueryDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerID, err := request.RequireString("owner_id")
	if err != nil {
		return mcp.NewToolResultError("owner_id argument is required and must be a string"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	topK := request.GetInt("top_k", 3)

	results, err := h.engine.QueryDocuments(ctx, ownerID, query, topK)
	if err != nil {
		if errors.Is(err, core.ErrEmptyQuery) || errors.Is(err, core.ErrInvalidTopK) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		// Service degraded (provider outage, corrupt index), distinct from
		// "no relevant documents", which is an empty result below
		return mcp.NewToolResultError(fmt.Sprintf("retrieval degraded: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// ListDocuments handles the list_documents tool
func (h *Handlers) ListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerID, err := request.RequireString("owner_id")
	if err != nil {
		return mcp.NewToolResultError("owner_id argument is required and must be a string"), nil
	}

	docs, err := h.library.List(ownerID, 0)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing documents failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

// DeleteDocument handles the delete_document tool
func (h *Handlers) DeleteDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerID, err := request.RequireString("owner_id")
	if err != nil {
		return mcp.NewToolResultError("owner_id argument is required and must be a string"), nil
	}
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("document_id argument is required and must be a string"), nil
	}
	rebuild := request.GetBool("rebuild", false)

	if err := h.library.Delete(ownerID, documentID, rebuild); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("document %s not found", documentID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"document_id": documentID,
		"rebuilt":     rebuild,
		"status":      "deleted",
	})
}

// Chat handles the chat tool. MCP tool results are not streamable, so the
// fragments are collected into a single response.
func (h *Handlers) Chat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerID, err := request.RequireString("owner_id")
	if err != nil {
		return mcp.NewToolResultError("owner_id argument is required and must be a string"), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}
	topK := request.GetInt("top_k", 3)
	if topK < 1 || topK > config.MaxTopK {
		return mcp.NewToolResultError(core.ErrInvalidTopK.Error()), nil
	}

	var response strings.Builder
	err = h.chat.GenerateGroundedResponse(ctx, ownerID, message, nil, topK, func(fragment string) error {
		response.WriteString(fragment)
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrEmptyQuery) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if response.Len() > 0 {
			// Partial consumption followed by an error is "response
			// incomplete", not "response empty"
			return mcp.NewToolResultError(fmt.Sprintf("response incomplete after %d chars: %v", response.Len(), err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	return mcp.NewToolResultText(response.String()), nil
}

func jsonResult(payload map[string]interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
