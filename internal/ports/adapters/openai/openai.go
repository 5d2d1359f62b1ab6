// Package openai backs the analyzer and transcriber ports with the OpenAI
// HTTP API: Whisper for transcription, chat completions for highlight
// selection. The client is hand-rolled on net/http; no SDK.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"touchdown/internal/types"
)

const (
	defaultBaseURL    = "https://api.openai.com"
	defaultChatModel  = "gpt-4-turbo-preview"
	defaultASRModel   = "whisper-1"
	requestTimeout    = 90 * time.Second
	transcribeTimeout = 10 * time.Minute
)

type Adapter struct {
	key       string
	chatModel string
	asrModel  string
	baseURL   string
	client    *http.Client
}

func New(apiKey, chatModel, asrModel, baseURL string) *Adapter {
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	if asrModel == "" {
		asrModel = defaultASRModel
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{
		key:       apiKey,
		chatModel: chatModel,
		asrModel:  asrModel,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 15 * time.Minute},
	}
}

// Analyze asks the chat model for the most important moments of the game
// and returns them as highlight intervals sorted by importance.
func (a *Adapter) Analyze(ctx context.Context, tr types.Transcript, maxHighlights int) ([]types.Highlight, error) {
	if maxHighlights <= 0 {
		maxHighlights = 20
	}
	if len(tr.Segments) == 0 {
		return nil, errors.New("empty transcript")
	}

	payload := map[string]any{
		"model": a.chatModel,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildAnalysisPrompt(FormatForAnalysis(tr), maxHighlights)},
		},
		"temperature": 0.3,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.key)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completion: status %d: %s", resp.StatusCode, truncate(string(rb), 400))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(rb, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("chat completion: no choices")
	}

	return ParseHighlights(out.Choices[0].Message.Content)
}

var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// ParseHighlights extracts the highlight array from a model reply,
// tolerating prose or code fences around the JSON.
func ParseHighlights(content string) ([]types.Highlight, error) {
	raw := strings.TrimSpace(content)
	if m := jsonArrayRe.FindString(raw); m != "" {
		raw = m
	}

	var items []struct {
		StartTime       float64 `json:"start_time"`
		EndTime         float64 `json:"end_time"`
		Description     string  `json:"description"`
		ImportanceScore float64 `json:"importance_score"`
		Category        string  `json:"category"`
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("parse highlights: %w", err)
	}

	out := make([]types.Highlight, 0, len(items))
	for _, it := range items {
		if it.EndTime <= it.StartTime || it.StartTime < 0 {
			continue
		}
		out = append(out, types.Highlight{
			StartTime:       it.StartTime,
			EndTime:         it.EndTime,
			Description:     strings.TrimSpace(it.Description),
			ImportanceScore: it.ImportanceScore,
			Category:        strings.TrimSpace(it.Category),
		})
	}
	if len(out) == 0 {
		return nil, errors.New("no usable highlights in model reply")
	}
	return out, nil
}

// FormatForAnalysis renders the transcript with [MM:SS] timestamps the way
// the analysis prompt expects.
func FormatForAnalysis(tr types.Transcript) string {
	var b strings.Builder
	for _, seg := range tr.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "[%s] %s\n", types.FormatTime(seg.Start), text)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
