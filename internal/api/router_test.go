package api_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/astronautdiary/internal/api"
	"github.com/nikhilbhutani/astronautdiary/internal/artifact"
	"github.com/nikhilbhutani/astronautdiary/internal/config"
	"github.com/nikhilbhutani/astronautdiary/internal/diary"
	"github.com/nikhilbhutani/astronautdiary/internal/llm"
	"github.com/nikhilbhutani/astronautdiary/internal/multimodal/stt"
	"github.com/nikhilbhutani/astronautdiary/internal/multimodal/tts"
	"github.com/nikhilbhutani/astronautdiary/internal/speech"
)

type chatStub struct {
	calls   int
	content string
	err     error
}

func (c *chatStub) Name() string { return "openai" }

func (c *chatStub) ChatCompletion(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &llm.ChatResponse{Provider: "openai", Model: req.Model, Content: c.content}, nil
}

type ttsStub struct {
	calls int
	audio []byte
	err   error
}

func (s *ttsStub) Name() string { return "tts-stub" }

func (s *ttsStub) Synthesize(_ context.Context, _ tts.SynthesisRequest) (*tts.SynthesisResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &tts.SynthesisResult{Audio: s.audio, ContentType: "audio/mpeg"}, nil
}

type sttStub struct {
	calls int
}

func (s *sttStub) Name() string { return "stt-stub" }

func (s *sttStub) Transcribe(_ context.Context, _ stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	s.calls++
	return &stt.TranscriptionResponse{
		Text:     "Day one.",
		Language: "english",
		Words:    []stt.Word{{Word: "Day", Start: 0, End: 0.3}, {Word: "one", Start: 0.3, End: 0.7}},
	}, nil
}

type fixture struct {
	server *httptest.Server
	chat   *chatStub
	tts    *ttsStub
	stt    *sttStub
	store  *artifact.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	f := &fixture{
		chat: &chatStub{content: "I woke to the hum of the reactor. Earth is a blue dot now. I wonder if"},
		tts:  &ttsStub{audio: []byte{0x49, 0x44, 0x33, 0x04, 0x00, 0xff, 0xfb}},
		stt:  &sttStub{},
		store: artifact.NewStore(config.ArtifactConfig{
			AudioPath:      filepath.Join(dir, "speech.mp3"),
			TranscriptPath: filepath.Join(dir, "transcription.json"),
		}),
	}

	diarySvc := diary.NewService(llm.NewGatewayWithProviders("openai", f.chat), config.DiaryConfig{
		Provider: "openai", Model: "gpt-4", MaxTokens: 200,
	})
	speechSvc := speech.NewService(f.tts, f.stt, f.store)

	f.server = httptest.NewServer(api.NewRouter(diarySvc, speechSvc).Setup())
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestDiaryRoute(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/diary", `{"date":"May 4, 2029"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "I woke to the hum of the reactor. Earth is a blue dot now.", body["diaryEntry"])
}

func TestDiaryRouteUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.chat.err = errors.New("openai chat: connection reset")

	resp := f.do(t, http.MethodPost, "/api/diary", `{"date":"May 4, 2029"}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Contains(t, body["error"], "Error generating diary entry")
	assert.Equal(t, 1, f.chat.calls)
}

func TestSpeechRouteMissingText(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/speech", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, f.tts.calls)
}

func TestSpeechRoute(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/speech?text=Hello%20Earth", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	onDisk, err := os.ReadFile(f.store.AudioPath())
	require.NoError(t, err)
	assert.Equal(t, f.tts.audio, onDisk)
}

func TestSpeechAndTranscribeRoute(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/speech-and-transcribe", `{"text":"Day one."}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		AudioBase64   string                    `json:"audioBase64"`
		Transcription stt.TranscriptionResponse `json:"transcription"`
	}
	decode(t, resp, &body)

	const prefix = "data:audio/mpeg;base64,"
	require.True(t, strings.HasPrefix(body.AudioBase64, prefix))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(body.AudioBase64, prefix))
	require.NoError(t, err)

	onDisk, err := os.ReadFile(f.store.AudioPath())
	require.NoError(t, err)
	assert.Equal(t, onDisk, decoded)

	assert.Equal(t, "Day one.", body.Transcription.Text)
	assert.Len(t, body.Transcription.Words, 2)

	var transcript stt.TranscriptionResponse
	raw, err := os.ReadFile(f.store.TranscriptPath())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &transcript))
	assert.Equal(t, body.Transcription, transcript)
}

func TestSpeechAndTranscribeSynthesisFailure(t *testing.T) {
	f := newFixture(t)
	f.tts.err = errors.New("tts request: 503")

	resp := f.do(t, http.MethodPost, "/api/speech-and-transcribe", `{"text":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Zero(t, f.stt.calls)
}

func TestSpeechAndTranscribeMissingText(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/speech-and-transcribe", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, f.tts.calls)
	assert.Zero(t, f.stt.calls)
}

func TestKeepAliveRoute(t *testing.T) {
	f := newFixture(t)
	f.chat.err = errors.New("provider down")
	f.tts.err = errors.New("provider down")

	resp := f.do(t, http.MethodGet, "/keep-alive", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPreflight(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodOptions, "/api/speech-and-transcribe", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
