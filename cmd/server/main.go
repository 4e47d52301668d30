// ABOUTME: Main entry point for the recall MCP server with stdio transport
// ABOUTME: Initializes config, index store, document store, and the retrieval engine
package main

import (
	"log"
	"os"

	"github.com/harper/recall/internal/config"
	"github.com/harper/recall/internal/core"
	"github.com/harper/recall/internal/docstore"
	"github.com/harper/recall/internal/index"
	"github.com/harper/recall/internal/llm"
	"github.com/harper/recall/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - ingestion and retrieval will not work")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize OpenAI client: %v", err)
	}

	store, err := index.NewStore(cfg.IndexDir())
	if err != nil {
		log.Fatalf("Failed to initialize index store: %v", err)
	}

	docs, err := docstore.Open(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer docs.Close()

	engine := core.NewEngine(client, store, cfg)
	library := core.NewLibrary(engine, docs, cfg.UploadsDir())
	chat := core.NewChatEngine(engine, client)

	server := mcpserver.NewMCPServer(
		"recall document retrieval",
		"0.1.0",
	)
	mcp.RegisterTools(server, library, engine, chat)

	log.Println("recall MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
