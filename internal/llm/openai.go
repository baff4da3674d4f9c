package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig configures an OpenAI-compatible provider. BaseURL lets the
// same client target any OpenAI-protocol-compatible endpoint, mirroring how
// the reference test fixtures point the OpenAI SDK at a third-party
// inference endpoint rather than api.openai.com.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Temperature    float64
	MaxTokens      int
	Timeout        time.Duration
	// EmbeddingBatchSize bounds how many texts are sent per embedding
	// request; defaults to 32.
	EmbeddingBatchSize int
	// Dim is the fixed embedding dimension produced by EmbeddingModel.
	Dim int
}

func (c *OpenAIConfig) validate() error {
	if c.APIKey == "" {
		return errors.New("llm: api key is required")
	}
	if c.ChatModel == "" {
		return errors.New("llm: chat model is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("llm: embedding model is required")
	}
	if c.EmbeddingBatchSize <= 0 {
		c.EmbeddingBatchSize = 32
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	return nil
}

// openAIClient is shared between Chat and Embedding providers; both are
// thin, timeout-wrapped callers over the same underlying *openai.Client.
type openAIClient struct {
	client  *openai.Client
	cfg     OpenAIConfig
	timeout time.Duration
}

func newOpenAIClient(cfg OpenAIConfig) (*openAIClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &openAIClient{
		client:  &client,
		cfg:     cfg,
		timeout: cfg.Timeout,
	}, nil
}

// Chat is a ChatModel backed by the OpenAI chat-completions endpoint.
type Chat struct {
	inner *openAIClient
}

var _ ChatModel = (*Chat)(nil)

// NewChat builds a ChatModel from an OpenAIConfig.
func NewChat(cfg OpenAIConfig) (*Chat, error) {
	inner, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Chat{inner: inner}, nil
}

func (c *Chat) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.inner.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: c.inner.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.inner.cfg.Temperature > 0 {
		params.Temperature = openai.Float(c.inner.cfg.Temperature)
	}
	if c.inner.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.inner.cfg.MaxTokens))
	}

	resp, err := c.inner.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llm: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Embedding is an EmbeddingModel backed by the OpenAI embeddings endpoint,
// batching requests per cfg.EmbeddingBatchSize.
type Embedding struct {
	inner     *openAIClient
	dim       int
	batchSize int
}

var _ EmbeddingModel = (*Embedding)(nil)

// NewEmbedding builds an EmbeddingModel from an OpenAIConfig.
func NewEmbedding(cfg OpenAIConfig) (*Embedding, error) {
	inner, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Embedding{
		inner:     inner,
		dim:       cfg.Dim,
		batchSize: cfg.EmbeddingBatchSize,
	}, nil
}

func (e *Embedding) Dimensions() int {
	return e.dim
}

func (e *Embedding) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		batch := texts[start:end]

		vectors, err := e.embedBatch(ctx, batch)
		if err != nil {
			// A per-batch failure fails the whole call.
			return nil, fmt.Errorf("llm: embedding batch [%d:%d] failed: %w", start, end, err)
		}
		out = append(out, vectors...)
	}

	return out, nil
}

func (e *Embedding) embedBatch(ctx context.Context, batch []string) ([][]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.inner.timeout)
	defer cancel()

	params := openai.EmbeddingNewParams{
		Model: e.inner.cfg.EmbeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: batch,
		},
	}

	resp, err := e.inner.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float64, len(resp.Data))
	for _, d := range resp.Data {
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
