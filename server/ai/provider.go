// Package ai provides the embedding gateway. The gateway may be slow or
// network-bound; failures always propagate to the caller and are never
// substituted with a zero vector.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/hrygo/recall/internal/profile"
)

// Config holds the embedding provider configuration.
type Config struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	MaxRetries     int
	// RequestsPerSecond bounds outbound embedding calls. Zero disables
	// limiting.
	RequestsPerSecond int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://api.openai.com/v1",
		APIKey:         "",
		EmbeddingModel: "text-embedding-3-small",
		MaxRetries:     3,
	}
}

// ConfigFromProfile builds a provider config from the service profile.
func ConfigFromProfile(p *profile.Profile) *Config {
	cfg := DefaultConfig()
	if p.EmbeddingBaseURL != "" {
		cfg.BaseURL = p.EmbeddingBaseURL
	}
	cfg.APIKey = p.EmbeddingAPIKey
	if p.EmbeddingModel != "" {
		cfg.EmbeddingModel = p.EmbeddingModel
	}
	return cfg
}

// Provider generates embeddings through an OpenAI-compatible API.
type Provider struct {
	client  *openai.Client
	config  *Config
	limiter *rate.Limiter
}

// NewProvider creates a new embedding provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond*2)
	}

	return &Provider{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		limiter: limiter,
	}, nil
}

// Embed generates an embedding vector for the given text on behalf of a
// user. The user identity is forwarded to the upstream API for abuse
// attribution.
func (p *Provider) Embed(ctx context.Context, text string, userID int32) ([]float32, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var result []float32
	err := p.doWithRetry(ctx, func() error {
		req := openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(p.config.EmbeddingModel),
			User:  fmt.Sprintf("%d", userID),
		}

		resp, err := p.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("empty embedding response")
		}
		result = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	return result, nil
}

// Validate validates the provider configuration by testing API connectivity.
func (p *Provider) Validate(ctx context.Context) error {
	if p.config.APIKey == "" {
		return fmt.Errorf("API key is required, set RECALL_EMBEDDING_API_KEY environment variable")
	}

	if _, err := p.Embed(ctx, "test", 0); err != nil {
		return fmt.Errorf("embedding validation failed: %w", err)
	}

	slog.Info("embedding provider validated successfully",
		"embedding_model", p.config.EmbeddingModel)
	return nil
}

// doWithRetry executes a function with exponential backoff retry.
func (p *Provider) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < p.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("embedding request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
