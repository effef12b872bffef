// Package speech synthesizes audio and optionally transcribes it back with timestamps.
package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/nikhilbhutani/astronautdiary/internal/apperr"
	"github.com/nikhilbhutani/astronautdiary/internal/artifact"
	"github.com/nikhilbhutani/astronautdiary/internal/multimodal/stt"
	"github.com/nikhilbhutani/astronautdiary/internal/multimodal/tts"
)

type Audio struct {
	Data        []byte
	ContentType string
}

// DataURI encodes the audio as a base64 data URI.
func (a *Audio) DataURI() string {
	return "data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

type Transcribed struct {
	Audio         *Audio
	Transcription *stt.TranscriptionResponse
}

type Service struct {
	tts   tts.Provider
	stt   stt.Provider
	store *artifact.Store
}

func NewService(ttsProvider tts.Provider, sttProvider stt.Provider, store *artifact.Store) *Service {
	return &Service{tts: ttsProvider, stt: sttProvider, store: store}
}

// Speak synthesizes text and overwrites the audio artifact with the result.
func (s *Service) Speak(ctx context.Context, text string) (*Audio, error) {
	if text == "" {
		return nil, apperr.ErrTextRequired
	}

	res, err := s.tts.Synthesize(ctx, tts.SynthesisRequest{Input: text})
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	if err := s.store.WriteAudio(res.Audio); err != nil {
		return nil, err
	}

	slog.Info("speech synthesized", "provider", s.tts.Name(), "bytes", len(res.Audio), "path", s.store.AudioPath())
	return &Audio{Data: res.Audio, ContentType: res.ContentType}, nil
}

// SpeakAndTranscribe runs Speak, then transcribes the written audio file and
// overwrites the transcript artifact. Transcription never starts if synthesis fails.
func (s *Service) SpeakAndTranscribe(ctx context.Context, text string) (*Transcribed, error) {
	audio, err := s.Speak(ctx, text)
	if err != nil {
		return nil, err
	}

	tr, err := s.stt.Transcribe(ctx, stt.TranscriptionRequest{FilePath: s.store.AudioPath()})
	if err != nil {
		return nil, apperr.Upstream(fmt.Errorf("transcribe: %w", err))
	}
	if err := s.store.WriteTranscript(tr); err != nil {
		return nil, err
	}

	slog.Info("speech transcribed",
		"provider", s.stt.Name(),
		"words", len(tr.Words),
		"segments", len(tr.Segments),
		"path", s.store.TranscriptPath(),
	)
	return &Transcribed{Audio: audio, Transcription: tr}, nil
}
