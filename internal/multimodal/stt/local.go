package stt

import (
	openai "github.com/sashabaranov/go-openai"
)

// LocalSTTConfig holds configuration for the local whisper.cpp STT backend.
type LocalSTTConfig struct {
	BaseURL     string // default: "http://localhost:8178"
	Model       string
	Granularity Granularity
}

// LocalSTT wraps OpenAISTT pointing at a local whisper.cpp server.
// Start the server with: ./server -m models/ggml-base.en.bin --port 8178
type LocalSTT struct {
	*OpenAISTT
}

func NewLocalSTT(cfg LocalSTTConfig) *LocalSTT {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8178"
	}
	// No API key needed for the local server.
	clientCfg := openai.DefaultConfig("")
	clientCfg.BaseURL = baseURL
	return &LocalSTT{
		OpenAISTT: NewOpenAISTT(openai.NewClientWithConfig(clientCfg), OpenAISTTConfig{
			Model:       cfg.Model,
			Granularity: cfg.Granularity,
		}),
	}
}

func (l *LocalSTT) Name() string { return "local-whisper" }
