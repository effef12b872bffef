package llm

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nikhilbhutani/astronautdiary/internal/config"
)

type gateway struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewGateway registers a provider for every backend that has credentials.
// The OpenAI provider shares the process-wide client with speech and transcription.
func NewGateway(cfg config.LLMConfig, defaultProvider string, client *openai.Client) Gateway {
	g := &gateway{
		providers:       make(map[string]Provider),
		defaultProvider: defaultProvider,
	}

	if client != nil {
		g.providers["openai"] = NewOpenAIProvider(client)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}
	if cfg.OllamaURL != "" {
		g.providers["ollama"] = NewOllamaProvider(cfg.OllamaURL)
	}

	return g
}

// NewGatewayWithProviders builds a gateway over an explicit provider set.
func NewGatewayWithProviders(defaultProvider string, providers ...Provider) Gateway {
	g := &gateway{
		providers:       make(map[string]Provider, len(providers)),
		defaultProvider: defaultProvider,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

func (g *gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

// Chat makes exactly one provider call; failures are returned to the caller as-is.
func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}

	p, err := g.Provider(providerName)
	if err != nil {
		return nil, err
	}

	resp, err := p.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	slog.Debug("llm call completed",
		"provider", resp.Provider,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)
	return resp, nil
}
