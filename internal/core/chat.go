// ABOUTME: ChatEngine streams grounded responses backed by document retrieval
// ABOUTME: Merges assembled context with prior turns before generation
package core

import (
	"context"
	"fmt"

	"github.com/harper/recall/internal/models"
)

// Generator streams chat completions from the external provider, invoking fn
// once per content fragment
type Generator interface {
	StreamChat(ctx context.Context, system string, history []models.ChatMessage, fn func(fragment string) error) error
}

// ChatEngine combines the retrieval engine with a streaming generator
type ChatEngine struct {
	engine    *Engine
	generator Generator
}

// NewChatEngine creates a ChatEngine
func NewChatEngine(engine *Engine, generator Generator) *ChatEngine {
	return &ChatEngine{engine: engine, generator: generator}
}

// GenerateGroundedResponse retrieves the owner's most relevant chunks for
// query, assembles them into a grounding context, and streams the generated
// response fragment by fragment through fn. The stream is restartable only by
// a new call; an error after fragments were delivered means the response is
// incomplete, not empty.
func (c *ChatEngine) GenerateGroundedResponse(ctx context.Context, ownerID, query string, history []models.ChatMessage, topK int, fn func(fragment string) error) error {
	results, err := c.engine.QueryDocuments(ctx, ownerID, query, topK)
	if err != nil {
		return fmt.Errorf("retrieving context: %w", err)
	}

	system := BuildContext(results)

	messages := make([]models.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: "user", Content: query})

	return c.generator.StreamChat(ctx, system, messages, fn)
}
