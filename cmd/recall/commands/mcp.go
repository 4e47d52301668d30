// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to ingest and query documents via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/recall/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs recall as an MCP (Model Context Protocol) server over stdio,
exposing document ingestion, retrieval, and grounded chat tools.
Every tool takes an owner_id argument supplied by the caller.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically launched by an agent host)
  recall mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "recall": {
  #       "command": "recall",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - ingestion and retrieval will not work")
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}

	if verbose {
		log.Printf("Data directory: %s", rt.cfg.DataDir)
		log.Printf("Index root: %s", rt.cfg.IndexDir())
		log.Printf("Chat model: %s, embedding model: %s", rt.cfg.ChatModel, rt.cfg.EmbeddingModel)
	}

	server := mcpserver.NewMCPServer(
		"recall document retrieval",
		"0.1.0",
	)
	mcp.RegisterTools(server, rt.library, rt.engine, rt.chat)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("recall MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, shutting down...")
		}
		rt.Close()
		if !quiet {
			log.Println("Shutdown complete")
		}
	case err := <-serverErr:
		rt.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
