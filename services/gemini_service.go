package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiService generates text with the Gemini API.
type GeminiService struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiService{client: client, model: model, temperature: 0.7, logger: logger}, nil
}

func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(s.temperature),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	out := extractTextFromGenAIResponse(resp)
	if out == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	if resp.UsageMetadata != nil {
		s.logger.Info("gemini call",
			zap.String("model", s.model),
			zap.Int32("input_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("output_tokens", resp.UsageMetadata.CandidatesTokenCount))
	}
	return out, nil
}

func extractTextFromGenAIResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

var _ TextModel = (*GeminiService)(nil)
