package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/nikhilbhutani/astronautdiary/internal/apperr"
	"github.com/nikhilbhutani/astronautdiary/internal/multimodal/stt"
	"github.com/nikhilbhutani/astronautdiary/internal/speech"
)

const (
	speechErrorLabel     = "Error generating speech"
	transcribeErrorLabel = "Error generating speech or transcription"
)

// Speaker synthesizes speech and optionally transcribes it back.
type Speaker interface {
	Speak(ctx context.Context, text string) (*speech.Audio, error)
	SpeakAndTranscribe(ctx context.Context, text string) (*speech.Transcribed, error)
}

type TranscribeRequest struct {
	Text string `json:"text"`
}

type TranscribeResponse struct {
	AudioBase64   string                     `json:"audioBase64"`
	Transcription *stt.TranscriptionResponse `json:"transcription"`
}

type SpeechHandler struct {
	speech Speaker
}

func NewSpeechHandler(s Speaker) *SpeechHandler {
	return &SpeechHandler{speech: s}
}

// Speak handles GET /api/speech?text=... and returns the raw audio.
func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeError(w, r, speechErrorLabel, apperr.ErrTextRequired)
		return
	}

	audio, err := h.speech.Speak(r.Context(), text)
	if err != nil {
		writeError(w, r, speechErrorLabel, err)
		return
	}

	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(audio.Data)
}

// SpeakAndTranscribe handles POST /api/speech-and-transcribe.
func (h *SpeechHandler) SpeakAndTranscribe(w http.ResponseWriter, r *http.Request) {
	var req TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Text == "" {
		writeError(w, r, transcribeErrorLabel, apperr.ErrTextRequired)
		return
	}

	out, err := h.speech.SpeakAndTranscribe(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, transcribeErrorLabel, err)
		return
	}

	writeJSON(w, http.StatusOK, TranscribeResponse{
		AudioBase64:   out.Audio.DataURI(),
		Transcription: out.Transcription,
	})
}
