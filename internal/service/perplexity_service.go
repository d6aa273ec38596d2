package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/masykurm/talent-scout/internal/config"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// requestTimeout bounds a single completion call, including the time spent
// consuming the stream.
const requestTimeout = 120 * time.Second

// PerplexityService talks to the Perplexity chat completions endpoint, which
// is OpenAI-compatible. Responses are requested as a stream and the partial
// content chunks are concatenated into one string.
type PerplexityService struct {
	apiKey string
	client *resty.Client
	logger *zap.Logger
}

func NewPerplexityService(logger *zap.Logger) *PerplexityService {
	cfg := config.LoadPerplexityConfig()
	return newPerplexityService(cfg.APIKey, cfg.BaseURL, logger)
}

func newPerplexityService(apiKey, baseURL string, logger *zap.Logger) *PerplexityService {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout)
	return &PerplexityService{
		apiKey: apiKey,
		client: client,
		logger: logger,
	}
}

func (s *PerplexityService) Research(ctx context.Context, profileURL, prompt, extraContext, model string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("PERPLEXITY_API_KEY not set: %w", ErrUpstreamUnavailable)
	}

	payload := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": researchSystemPrompt},
			{"role": "user", "content": buildResearchUserPrompt(profileURL, prompt, extraContext)},
		},
		"stream": true,
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetDoNotParseResponse(true).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("call perplexity: %v: %w", err, ErrUpstreamUnavailable)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != 200 {
		raw, _ := io.ReadAll(io.LimitReader(body, 4096))
		s.logger.Warn("perplexity returned non-success status",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", string(raw)),
		)
		return "", fmt.Errorf("perplexity responded with status %d: %w", resp.StatusCode(), ErrUpstreamError)
	}

	text, err := assembleStream(body)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("perplexity returned an empty completion: %w", ErrUpstreamError)
	}
	s.logger.Debug("perplexity completion assembled",
		zap.String("model", model),
		zap.Int("length", len(text)),
	)
	return text, nil
}

// assembleStream concatenates the content of server-sent completion chunks.
// A plain (non-streamed) completion body is accepted as well since the API
// falls back to it for some models.
func assembleStream(body io.Reader) (string, error) {
	var (
		b        strings.Builder
		streamed bool
		full     strings.Builder
	)
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		full.WriteString(line)
		full.WriteString("\n")
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		streamed = true
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}
		if errMsg := gjson.Get(data, "error.message"); errMsg.Exists() {
			return "", fmt.Errorf("perplexity stream error: %s: %w", errMsg.String(), ErrUpstreamError)
		}
		b.WriteString(gjson.Get(data, "choices.0.delta.content").String())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read perplexity stream: %v: %w", err, ErrUpstreamError)
	}
	if !streamed {
		return gjson.Get(full.String(), "choices.0.message.content").String(), nil
	}
	return b.String(), nil
}
