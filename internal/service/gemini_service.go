package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/masykurm/talent-scout/internal/config"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiService is the alternative research backend, selected when a user's
// preferred model has a "gemini" prefix. It also produces the summary
// embeddings used for similar-candidate search.
type GeminiService struct {
	client         *genai.Client
	embeddingModel string
	requestTimeout time.Duration
	logger         *zap.Logger
}

func NewGeminiService(ctx context.Context, logger *zap.Logger) (*GeminiService, error) {
	geminiConfig := config.LoadGeminiConfig()
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiService{
		client:         client,
		embeddingModel: geminiConfig.EmbeddingModel,
		requestTimeout: requestTimeout,
		logger:         logger,
	}, nil
}

func (s *GeminiService) Research(ctx context.Context, profileURL, prompt, extraContext, model string) (string, error) {
	if model == "" {
		return "", fmt.Errorf("model name cannot be empty")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	fullPrompt := researchSystemPrompt + "\n\n" + buildResearchUserPrompt(profileURL, prompt, extraContext)

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}

	result, err := s.client.Models.GenerateContent(
		timeoutCtx,
		model,
		genai.Text(fullPrompt),
		genConfig,
	)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if err := validateGenerateResponse(result); err != nil {
		return "", fmt.Errorf("invalid response: %v: %w", err, ErrUpstreamError)
	}
	return result.Text(), nil
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if len(trimmedText) > 10000 {
		s.logger.Warn("embedding text exceeds recommended limit, truncating",
			zap.Int("length", len(trimmedText)),
		)
		trimmedText = trimmedText[:10000]
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	content := []*genai.Content{genai.NewContentFromText(trimmedText, genai.RoleUser)}
	result, err := s.client.Models.EmbedContent(
		timeoutCtx,
		s.embeddingModel,
		content,
		nil,
	)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	return validateEmbeddingResponse(result)
}

// classifyGeminiError maps the SDK error to the client error taxonomy: an
// API error means the endpoint answered, anything else means it was never
// reached.
func classifyGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini api error %d: %v: %w", apiErr.Code, err, ErrUpstreamError)
	}
	return fmt.Errorf("call gemini: %v: %w", err, ErrUpstreamUnavailable)
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	embeddings := resp.Embeddings[0].Values
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, val := range embeddings {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return embeddings, nil
}
