package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"github.com/nikhilbhutani/astronautdiary/internal/api"
	"github.com/nikhilbhutani/astronautdiary/internal/artifact"
	"github.com/nikhilbhutani/astronautdiary/internal/config"
	"github.com/nikhilbhutani/astronautdiary/internal/diary"
	"github.com/nikhilbhutani/astronautdiary/internal/keepalive"
	"github.com/nikhilbhutani/astronautdiary/internal/llm"
	"github.com/nikhilbhutani/astronautdiary/internal/multimodal/stt"
	"github.com/nikhilbhutani/astronautdiary/internal/multimodal/tts"
	"github.com/nikhilbhutani/astronautdiary/internal/speech"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	if envErr != nil {
		slog.Debug("no .env file loaded, using process environment", "error", envErr)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// One provider client per process, shared by chat, speech and transcription.
	var client *openai.Client
	if cfg.LLM.OpenAIKey != "" {
		client = newOpenAIClient(cfg.LLM.OpenAIKey, "")
	}

	gw := llm.NewGateway(cfg.LLM, cfg.Diary.Provider, client)
	diarySvc := diary.NewService(gw, cfg.Diary)

	ttsProvider, err := newTTSProvider(cfg.TTS, client)
	if err != nil {
		slog.Error("failed to configure tts", "error", err)
		os.Exit(1)
	}
	sttProvider, err := newSTTProvider(cfg.STT, client)
	if err != nil {
		slog.Error("failed to configure stt", "error", err)
		os.Exit(1)
	}
	speechSvc := speech.NewService(ttsProvider, sttProvider, artifact.NewStore(cfg.Artifacts))

	router := api.NewRouter(diarySvc, speechSvc)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr(), "tts", ttsProvider.Name(), "stt", sttProvider.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	pingerDone := make(chan struct{})
	if cfg.KeepAlive.Enabled {
		if cfg.KeepAlive.IsLoopback() {
			slog.Warn("keep-alive URL is a loopback address; pings will not reach the host ingress, set KEEP_ALIVE_URL to the public URL",
				"url", cfg.KeepAlive.URL)
		}
		pinger := keepalive.New(cfg.KeepAlive.URL, cfg.KeepAlive.Interval)
		go func() {
			defer close(pingerDone)
			pinger.Run(ctx)
		}()
	} else {
		close(pingerDone)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	stop()
	<-pingerDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func newOpenAIClient(apiKey, baseURL string) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

func newTTSProvider(cfg config.TTSConfig, shared *openai.Client) (tts.Provider, error) {
	switch cfg.Backend {
	case "openai":
		client := shared
		if cfg.BaseURL != "" {
			client = newOpenAIClient(cfg.OpenAIKey, cfg.BaseURL)
		}
		return tts.NewOpenAITTS(client, tts.OpenAITTSConfig{Model: cfg.Model, Voice: cfg.Voice}), nil
	case "local":
		return tts.NewLocalTTS(tts.LocalTTSConfig{PiperBinPath: cfg.LocalBinPath, ModelPath: cfg.LocalModel}), nil
	default:
		return nil, fmt.Errorf("unknown TTS_BACKEND %q", cfg.Backend)
	}
}

func newSTTProvider(cfg config.STTConfig, shared *openai.Client) (stt.Provider, error) {
	granularity := stt.Granularity(cfg.Granularity)
	switch cfg.Backend {
	case "openai":
		client := shared
		if cfg.BaseURL != "" {
			client = newOpenAIClient(cfg.OpenAIKey, cfg.BaseURL)
		}
		return stt.NewOpenAISTT(client, stt.OpenAISTTConfig{Model: cfg.Model, Granularity: granularity}), nil
	case "local":
		return stt.NewLocalSTT(stt.LocalSTTConfig{BaseURL: cfg.LocalBaseURL, Model: cfg.Model, Granularity: granularity}), nil
	default:
		return nil, fmt.Errorf("unknown STT_BACKEND %q", cfg.Backend)
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
