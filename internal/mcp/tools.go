// ABOUTME: MCP tool definitions and registration for the recall server
// ABOUTME: Defines JSON schemas for the 5 document retrieval tools
package mcp

import (
	"github.com/harper/recall/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, library *core.Library, engine *core.Engine, chat *core.ChatEngine) *Handlers {
	handlers := &Handlers{
		library: library,
		engine:  engine,
		chat:    chat,
	}

	// 1. process_document - chunk, embed, and index extracted text
	server.AddTool(mcp.Tool{
		Name:        "process_document",
		Description: "Chunk, embed, and index a document's extracted text for an owner. Re-processing the same text appends duplicate chunks; de-duplicate upstream if needed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"owner_id": map[string]interface{}{
					"type":        "string",
					"description": "Authenticated owner identity scoping the index",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Extracted plain text of the document",
				},
				"filename": map[string]interface{}{
					"type":        "string",
					"description": "Optional original filename for provenance",
				},
			},
			Required: []string{"owner_id", "text"},
		},
	}, handlers.ProcessDocument)

	// 2. query_documents - similarity search over the owner's index
	server.AddTool(mcp.Tool{
		Name:        "query_documents",
		Description: "Retrieve the owner's most relevant document chunks for a query. Results are ranked by ascending distance (lower relevance_score = more similar).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"owner_id": map[string]interface{}{
					"type":        "string",
					"description": "Authenticated owner identity scoping the search",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Query text to search for",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Number of results to return, 1-20 (default: 3)",
					"default":     3,
				},
			},
			Required: []string{"owner_id", "query"},
		},
	}, handlers.QueryDocuments)

	// 3. list_documents - the owner's document records
	server.AddTool(mcp.Tool{
		Name:        "list_documents",
		Description: "List the owner's ingested documents with chunk counts.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"owner_id": map[string]interface{}{
					"type":        "string",
					"description": "Authenticated owner identity",
				},
			},
			Required: []string{"owner_id"},
		},
	}, handlers.ListDocuments)

	// 4. delete_document - remove a document record, optionally rebuilding the index
	server.AddTool(mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document's metadata record and stored upload. Without rebuild the document's vectors stay in the index as orphans.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"owner_id": map[string]interface{}{
					"type":        "string",
					"description": "Authenticated owner identity",
				},
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Document to delete",
				},
				"rebuild": map[string]interface{}{
					"type":        "boolean",
					"description": "Rebuild the owner's index without the deleted document's chunks (default: false)",
					"default":     false,
				},
			},
			Required: []string{"owner_id", "document_id"},
		},
	}, handlers.DeleteDocument)

	// 5. chat - grounded generation over retrieved context
	server.AddTool(mcp.Tool{
		Name:        "chat",
		Description: "Generate a response grounded in the owner's documents. Retrieved chunks are injected ahead of the conversation before generation.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"owner_id": map[string]interface{}{
					"type":        "string",
					"description": "Authenticated owner identity",
				},
				"message": map[string]interface{}{
					"type":        "string",
					"description": "User message to answer",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Number of chunks to ground on, 1-20 (default: 3)",
					"default":     3,
				},
			},
			Required: []string{"owner_id", "message"},
		},
	}, handlers.Chat)

	return handlers
}
