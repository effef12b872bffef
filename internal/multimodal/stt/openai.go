package stt

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAISTTConfig holds configuration for the OpenAI STT backend.
type OpenAISTTConfig struct {
	Model       string      // default: "whisper-1"
	Granularity Granularity // default: word
}

// OpenAISTT transcribes audio using the Whisper API (or a compatible endpoint).
type OpenAISTT struct {
	cfg    OpenAISTTConfig
	client *openai.Client
}

func NewOpenAISTT(client *openai.Client, cfg OpenAISTTConfig) *OpenAISTT {
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	if cfg.Granularity == "" {
		cfg.Granularity = GranularityWord
	}
	return &OpenAISTT{cfg: cfg, client: client}
}

func (o *OpenAISTT) Name() string { return "openai-whisper" }

// Transcribe uploads the audio file and requests verbose_json with timestamps.
func (o *OpenAISTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	aReq := openai.AudioRequest{
		Model:    o.cfg.Model,
		FilePath: req.FilePath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularity(o.cfg.Granularity),
		},
	}

	resp, err := o.client.CreateTranscription(ctx, aReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}

	out := &TranscriptionResponse{
		Task:     resp.Task,
		Language: resp.Language,
		Duration: resp.Duration,
		Text:     resp.Text,
	}
	for _, w := range resp.Words {
		out.Words = append(out.Words, Word{Word: w.Word, Start: w.Start, End: w.End})
	}
	for _, s := range resp.Segments {
		out.Segments = append(out.Segments, Segment{
			ID:               s.ID,
			Seek:             s.Seek,
			Start:            s.Start,
			End:              s.End,
			Text:             s.Text,
			Tokens:           s.Tokens,
			Temperature:      s.Temperature,
			AvgLogprob:       s.AvgLogprob,
			CompressionRatio: s.CompressionRatio,
			NoSpeechProb:     s.NoSpeechProb,
			Transient:        s.Transient,
		})
	}
	return out, nil
}
