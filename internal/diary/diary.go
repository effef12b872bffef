// Package diary writes the daily log of Captain Alex Reynolds, an astronaut
// stranded in deep space, using a chat-completion provider.
package diary

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/nikhilbhutani/astronautdiary/internal/apperr"
	"github.com/nikhilbhutani/astronautdiary/internal/config"
	"github.com/nikhilbhutani/astronautdiary/internal/llm"
	"github.com/nikhilbhutani/astronautdiary/internal/prompt"
)

// DateLayout formats the date used when a request does not supply one.
const DateLayout = "January 2, 2006"

const systemPrompt = "You are an astronaut lost in space, writing daily diary entries."

const promptTemplate = `You are Captain Alex Reynolds, an astronaut who has been lost in the vast expanse of space for several months. ` +
	`With no hope of returning to Earth, you find solace in your daily diary entries. ` +
	`Today is {{date}}, and as you float alone in your spacecraft, you reflect on the countless days you've spent away from your loved ones. ` +
	`Describe your day in detail, including any small triumphs or struggles you faced. ` +
	`Emphasize the sense of isolation and longing you feel, missing your family, friends, and the simple comforts of Earth. ` +
	`Your entry should convey the emotional weight of your situation, revealing how you cope with loneliness and the passage of time. ` +
	`Ensure that your writing is consistent with your previous entries, capturing the ongoing challenges and the hope that sustains you. ` +
	`Aim for about 200 words and end with a complete thought that leaves a lasting impression of your emotional state.`

var sentenceRe = regexp.MustCompile(`[^.!?]*[.!?]`)

// Prompt renders the user prompt for date.
func Prompt(date string) (string, error) {
	return prompt.Render(promptTemplate, map[string]string{"date": date})
}

// TrimToSentences drops any trailing fragment that is not closed by '.', '!' or '?'.
// Text with no complete sentence is returned trimmed but otherwise untouched.
func TrimToSentences(text string) string {
	text = strings.TrimSpace(text)
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return text
	}
	return strings.TrimSpace(strings.Join(sentences, ""))
}

type Service struct {
	gateway   llm.Gateway
	provider  string
	model     string
	maxTokens int
	now       func() time.Time
}

func NewService(gw llm.Gateway, cfg config.DiaryConfig) *Service {
	return &Service{
		gateway:   gw,
		provider:  cfg.Provider,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		now:       time.Now,
	}
}

// Today returns the current date in DateLayout.
func (s *Service) Today() string {
	return s.now().Format(DateLayout)
}

// Generate writes the entry for date, or for today when date is empty.
// A provider failure is returned immediately; there is no retry.
func (s *Service) Generate(ctx context.Context, date string) (string, error) {
	if strings.TrimSpace(date) == "" {
		date = s.Today()
	}

	userPrompt, err := Prompt(date)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	resp, err := s.gateway.Chat(ctx, llm.ChatRequest{
		Provider: s.provider,
		Model:    s.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", apperr.Upstream(err)
	}

	entry := TrimToSentences(resp.Content)
	slog.Info("diary entry generated",
		"date", date,
		"provider", resp.Provider,
		"model", resp.Model,
		"output_tokens", resp.OutputTokens,
		"cost_usd", resp.CostUSD,
		"chars", len(entry),
	)
	return entry, nil
}
