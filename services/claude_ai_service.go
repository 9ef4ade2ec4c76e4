package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// CLAUDE AI SERVICE - itinerary generation over the Messages API
// ============================================================================

const (
	claudeMessagesEndpoint = "https://api.anthropic.com/v1/messages"
	claudeAPIVersion       = "2023-06-01"
	defaultClaudeModel     = "claude-3-5-sonnet-latest"
)

type ClaudeAIService struct {
	apiKey     string
	model      string
	maxTokens  int
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

type ClaudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []ClaudeMessage `json:"messages"`
}

type ClaudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ClaudeResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewClaudeAIService builds a client; the key comes from configuration.
func NewClaudeAIService(apiKey, model string, timeout time.Duration, logger *zap.Logger) *ClaudeAIService {
	if model == "" {
		model = defaultClaudeModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaudeAIService{
		apiKey:     apiKey,
		model:      model,
		maxTokens:  4000,
		endpoint:   claudeMessagesEndpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithEndpoint points the client at another base URL (tests, proxies).
func (s *ClaudeAIService) WithEndpoint(url string) *ClaudeAIService {
	s.endpoint = url
	return s
}

// Generate sends one user message and returns the first text block.
func (s *ClaudeAIService) Generate(ctx context.Context, prompt string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	requestBody := ClaudeRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    "You are a travel planner that answers with a single JSON object only.",
		Messages: []ClaudeMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	return s.executeRequest(ctx, requestBody)
}

func (s *ClaudeAIService) executeRequest(ctx context.Context, requestBody ClaudeRequest) (string, error) {
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var claudeResp ClaudeResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(claudeResp.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	s.logger.Info("claude call",
		zap.String("model", claudeResp.Model),
		zap.Int("input_tokens", claudeResp.Usage.InputTokens),
		zap.Int("output_tokens", claudeResp.Usage.OutputTokens),
		zap.Float64("estimated_cost_usd", EstimateClaudeCost(claudeResp.Usage.InputTokens, claudeResp.Usage.OutputTokens)),
	)

	return claudeResp.Content[0].Text, nil
}

// Pricing (approximate for Claude 3.5 Sonnet)
const (
	InputTokenPrice  = 0.000003 // $3 per million
	OutputTokenPrice = 0.000015 // $15 per million
)

func EstimateClaudeCost(inputTokens int, outputTokens int) float64 {
	return float64(inputTokens)*InputTokenPrice + float64(outputTokens)*OutputTokenPrice
}

var _ TextModel = (*ClaudeAIService)(nil)
