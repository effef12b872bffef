package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Diary     DiaryConfig
	TTS       TTSConfig
	STT       STTConfig
	Artifacts ArtifactConfig
	KeepAlive KeepAliveConfig
}

type ServerConfig struct {
	Host     string
	Port     int
	LogLevel string
}

type LLMConfig struct {
	OpenAIKey    string
	AnthropicKey string
	OllamaURL    string
}

type DiaryConfig struct {
	Provider  string
	Model     string
	MaxTokens int
}

type TTSConfig struct {
	Backend      string // "openai" or "local"
	OpenAIKey    string
	BaseURL      string
	Model        string // default: "tts-1"
	Voice        string // default: "alloy"
	LocalBinPath string // default: "piper"
	LocalModel   string // required when backend=local
}

type STTConfig struct {
	Backend      string // "openai" or "local"
	OpenAIKey    string
	BaseURL      string
	Model        string // default: "whisper-1"
	Granularity  string // "word" or "segment"
	LocalBaseURL string // default: "http://localhost:8178"
}

// ArtifactConfig names the scratch files rewritten on every speech request.
type ArtifactConfig struct {
	AudioPath      string
	TranscriptPath string
}

type KeepAliveConfig struct {
	Enabled  bool
	URL      string
	Interval time.Duration
}

// IsLoopback reports whether URL points at this machine. Pings to a loopback
// address never pass through the host's ingress, so they do not count as traffic.
func (k KeepAliveConfig) IsLoopback() bool {
	u, err := url.Parse(k.URL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}

// defaultDiaryModels picks a model the selected provider actually serves
// when DIARY_MODEL is unset.
var defaultDiaryModels = map[string]string{
	"openai":    "gpt-4",
	"anthropic": "claude-3-haiku-20240307",
	"ollama":    "llama3",
}

func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 3000)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxTokens, err := getEnvInt("DIARY_MAX_TOKENS", 200)
	if err != nil {
		return nil, fmt.Errorf("invalid DIARY_MAX_TOKENS: %w", err)
	}

	interval, err := getEnvDuration("KEEP_ALIVE_INTERVAL", 14*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid KEEP_ALIVE_INTERVAL: %w", err)
	}

	keepAliveEnabled, err := getEnvBool("KEEP_ALIVE_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("invalid KEEP_ALIVE_ENABLED: %w", err)
	}

	// API_KEY is what the hosted deployment sets; OPENAI_API_KEY is the SDK convention.
	openAIKey := getEnv("API_KEY", getEnv("OPENAI_API_KEY", ""))

	diaryProvider := getEnv("DIARY_PROVIDER", "openai")

	cfg := &Config{
		Server: ServerConfig{
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			Port:     port,
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		LLM: LLMConfig{
			OpenAIKey:    openAIKey,
			AnthropicKey: getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:    getEnv("OLLAMA_URL", ""),
		},
		Diary: DiaryConfig{
			Provider:  diaryProvider,
			Model:     getEnv("DIARY_MODEL", defaultDiaryModels[diaryProvider]),
			MaxTokens: maxTokens,
		},
		TTS: TTSConfig{
			Backend:      getEnv("TTS_BACKEND", "openai"),
			OpenAIKey:    openAIKey,
			BaseURL:      getEnv("TTS_BASE_URL", ""),
			Model:        getEnv("TTS_MODEL", "tts-1"),
			Voice:        getEnv("TTS_VOICE", "alloy"),
			LocalBinPath: getEnv("TTS_LOCAL_PIPER_BIN", "piper"),
			LocalModel:   getEnv("TTS_LOCAL_PIPER_MODEL", ""),
		},
		STT: STTConfig{
			Backend:      getEnv("STT_BACKEND", "openai"),
			OpenAIKey:    openAIKey,
			BaseURL:      getEnv("STT_BASE_URL", ""),
			Model:        getEnv("STT_MODEL", "whisper-1"),
			Granularity:  getEnv("STT_TIMESTAMP_GRANULARITY", "word"),
			LocalBaseURL: getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
		},
		Artifacts: ArtifactConfig{
			AudioPath:      getEnv("AUDIO_FILE_PATH", "speech.mp3"),
			TranscriptPath: getEnv("TRANSCRIPT_FILE_PATH", "transcription.json"),
		},
		KeepAlive: KeepAliveConfig{
			Enabled:  keepAliveEnabled,
			URL:      getEnv("KEEP_ALIVE_URL", fmt.Sprintf("http://localhost:%d/keep-alive", port)),
			Interval: interval,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	var problems []string

	needsOpenAI := c.Diary.Provider == "openai" || c.TTS.Backend == "openai" || c.STT.Backend == "openai"
	if needsOpenAI && c.LLM.OpenAIKey == "" {
		problems = append(problems, "API_KEY (or OPENAI_API_KEY) is required")
	}
	if _, ok := defaultDiaryModels[c.Diary.Provider]; !ok {
		problems = append(problems, fmt.Sprintf("DIARY_PROVIDER must be openai, anthropic or ollama, got %q", c.Diary.Provider))
	}
	if c.Diary.Model == "" {
		problems = append(problems, "DIARY_MODEL is required")
	}
	if c.Diary.Provider == "anthropic" && c.LLM.AnthropicKey == "" {
		problems = append(problems, "ANTHROPIC_API_KEY is required when DIARY_PROVIDER=anthropic")
	}
	if c.Diary.Provider == "ollama" && c.LLM.OllamaURL == "" {
		problems = append(problems, "OLLAMA_URL is required when DIARY_PROVIDER=ollama")
	}
	if c.TTS.Backend == "local" && c.TTS.LocalModel == "" {
		problems = append(problems, "TTS_LOCAL_PIPER_MODEL is required when TTS_BACKEND=local")
	}
	switch c.STT.Granularity {
	case "word", "segment":
	default:
		problems = append(problems, fmt.Sprintf("STT_TIMESTAMP_GRANULARITY must be word or segment, got %q", c.STT.Granularity))
	}
	if c.KeepAlive.Enabled && c.KeepAlive.Interval <= 0 {
		problems = append(problems, "KEEP_ALIVE_INTERVAL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}
