// ABOUTME: OpenAI client for embeddings and LLM-assisted compression
// ABOUTME: Uses text-embedding-3-small for vectors and gpt-4o-mini for summaries (configurable)

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ctxforge/ctxbrain/internal/config"
	"github.com/ctxforge/ctxbrain/internal/util"
)

// Client wraps the OpenAI API with retry logic and timeout handling.
type Client struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	dimensions     int
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// NewClient creates an OpenAI-backed client from engine configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &Client{
		client:         openai.NewClient(cfg.OpenAIKey),
		chatModel:      cfg.ChatModel,
		embeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		dimensions:     cfg.VectorDimension,
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
	}, nil
}

// Embed generates an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var embedding []float64

	err := util.Do(ctx, c.maxRetries, c.retryDelay, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequestStrings{
			Input:      []string{text},
			Model:      c.embeddingModel,
			Dimensions: c.dimensions,
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("no embeddings returned")
		}

		// Convert []float32 to []float64
		raw := resp.Data[0].Embedding
		embedding = make([]float64, len(raw))
		for i, v := range raw {
			embedding[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	return embedding, nil
}

// Summarize compresses content to at most maxChars characters while keeping
// identifiers, decisions, and outcomes intact.
func (c *Client) Summarize(ctx context.Context, content string, maxChars int) (string, error) {
	systemPrompt := fmt.Sprintf(`You compress developer context for reuse in a coding assistant.
Rewrite the given context in at most %d characters. Preserve identifiers, file names,
version numbers, decisions, and outcomes. Drop pleasantries and repetition.
Return ONLY the compressed text.`, maxChars)

	var summary string

	err := util.Do(ctx, c.maxRetries, c.retryDelay, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: content,
				},
			},
			Temperature: 0.2,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no completion choices returned")
		}

		summary = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize content: %w", err)
	}

	// The model can overshoot the limit; enforce it.
	runes := []rune(summary)
	if len(runes) > maxChars {
		summary = string(runes[:maxChars])
	}

	return summary, nil
}
