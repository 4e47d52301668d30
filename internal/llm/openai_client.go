// ABOUTME: OpenAI client for embeddings and grounded chat generation
// ABOUTME: Uses text-embedding-3-small for embeddings, gpt-4o-mini for streaming chat (configurable)
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/harper/recall/internal/config"
	"github.com/harper/recall/internal/models"
	"github.com/harper/recall/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

// ErrProviderUnavailable marks embedding or generation failures caused by the
// upstream provider (auth, rate limit, network, timeout). Callers branch on it
// with errors.Is; the client itself only retries, it never substitutes empty
// results.
var ErrProviderUnavailable = errors.New("upstream provider unavailable")

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
)

// Client wraps the OpenAI API client with retry logic
type Client struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// NewClient creates a new OpenAI client from configuration
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	embeddingModel := openai.EmbeddingModel(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:         openai.NewClient(cfg.OpenAIKey),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
	}, nil
}

// Embed generates an embedding vector for a single text
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embedding vectors for a batch of texts. The returned
// slice matches the input order 1:1.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.CalculateBackoff(c.retryDelay, attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateEmbeddings(attemptCtx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: c.embeddingModel,
		})
		cancel()

		if err != nil {
			// A cancelled parent context is the caller's decision, not a
			// provider failure
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Data) != len(texts) {
			lastErr = fmt.Errorf("attempt %d: expected %d embeddings, got %d", attempt+1, len(texts), len(resp.Data))
			continue
		}

		// Place by response index so output order matches input order
		vectors := make([][]float64, len(texts))
		for _, data := range resp.Data {
			if data.Index < 0 || data.Index >= len(texts) {
				return nil, fmt.Errorf("embedding response index %d out of range", data.Index)
			}
			vector := make([]float64, len(data.Embedding))
			for i, v := range data.Embedding {
				vector[i] = float64(v)
			}
			vectors[data.Index] = vector
		}
		return vectors, nil
	}

	return nil, fmt.Errorf("%w: failed to embed %d texts after %d attempts: %w",
		ErrProviderUnavailable, len(texts), c.maxRetries+1, lastErr)
}

// StreamChat streams a chat completion, invoking fn for each content fragment
// as it arrives. An error after some fragments were delivered means the
// response is incomplete, not empty. No retries: a partially consumed stream
// cannot be resumed, only restarted by the caller.
func (c *Client) StreamChat(ctx context.Context, system string, history []models.ChatMessage, fn func(fragment string) error) error {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    messages,
		Stream:      true,
		Temperature: 0.7,
	})
	if err != nil {
		return fmt.Errorf("%w: creating chat stream: %w", ErrProviderUnavailable, err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: receiving chat stream: %w", ErrProviderUnavailable, err)
		}

		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			if err := fn(delta); err != nil {
				return err
			}
		}
	}
}
