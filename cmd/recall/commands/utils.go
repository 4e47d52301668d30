// ABOUTME: Shared runtime bootstrap and helpers for CLI commands
// ABOUTME: Consolidates config/engine/library setup used by every subcommand
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/harper/recall/internal/config"
	"github.com/harper/recall/internal/core"
	"github.com/harper/recall/internal/docstore"
	"github.com/harper/recall/internal/index"
	"github.com/harper/recall/internal/llm"
)

// runtime bundles the services a command needs, constructed once per
// invocation and passed explicitly
type runtime struct {
	cfg     *config.Config
	engine  *core.Engine
	library *core.Library
	chat    *core.ChatEngine
	docs    *docstore.Store
}

func (r *runtime) Close() {
	if r.docs != nil {
		r.docs.Close()
	}
}

// newRuntime loads configuration and wires up the retrieval stack. Commands
// that embed or generate need OPENAI_API_KEY set.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}

	store, err := index.NewStore(cfg.IndexDir())
	if err != nil {
		return nil, fmt.Errorf("initializing index store: %w", err)
	}

	docs, err := docstore.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening document store: %w", err)
	}

	engine := core.NewEngine(client, store, cfg)
	return &runtime{
		cfg:     cfg,
		engine:  engine,
		library: core.NewLibrary(engine, docs, cfg.UploadsDir()),
		chat:    core.NewChatEngine(engine, client),
		docs:    docs,
	}, nil
}

// newRuntimeWithoutProvider wires up the stack with no OpenAI client, for
// commands that never embed or generate (list, delete)
func newRuntimeWithoutProvider() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	store, err := index.NewStore(cfg.IndexDir())
	if err != nil {
		return nil, fmt.Errorf("initializing index store: %w", err)
	}

	docs, err := docstore.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening document store: %w", err)
	}

	engine := core.NewEngine(nil, store, cfg)
	return &runtime{
		cfg:     cfg,
		engine:  engine,
		library: core.NewLibrary(engine, docs, cfg.UploadsDir()),
		docs:    docs,
	}, nil
}

// resolveOwner returns the owner identity for this invocation
func resolveOwner() string {
	if ownerID != "" {
		return ownerID
	}
	if env := os.Getenv("RECALL_OWNER"); env != "" {
		return env
	}
	return "local"
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// validateTopK returns an error if k is outside the accepted query range
func validateTopK(k int) error {
	if k < 1 || k > config.MaxTopK {
		return fmt.Errorf("top-k must be 1-%d, got %d", config.MaxTopK, k)
	}
	return nil
}
