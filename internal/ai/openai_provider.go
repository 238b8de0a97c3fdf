package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/family-hub/internal/config"
)

const (
	openAIChatCompletionsURL = "https://api.openai.com/v1/chat/completions"
	maxOpenAIResponseBytes   = 1 << 20
)

// OpenAIProvider calls the Chat Completions API in JSON mode.

type OpenAIProvider struct {
	apiKey      string
	model       string
	endpoint    string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 20
	}

	return &OpenAIProvider{
		apiKey:      cfg.OpenAIAPIKey,
		model:       cfg.OpenAIModel,
		endpoint:    openAIChatCompletionsURL,
		maxTokens:   cfg.AIMaxOutputTokens,
		temperature: cfg.AITemperature,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	requestPayload := chatCompletionsRequest{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   maxTokens,
		Messages: []chatMessageRequest{
			{Role: "system", Content: req.Instructions},
			{Role: "user", Content: string(req.Payload)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(requestPayload)
	if err != nil {
		return CompletionResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxOpenAIResponseBytes))
	if err != nil {
		return CompletionResponse{}, err
	}

	var parsed chatCompletionsResponse
	decodeErr := json.Unmarshal(responseBody, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			return CompletionResponse{}, fmt.Errorf("openai: status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return CompletionResponse{}, fmt.Errorf("openai: status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return CompletionResponse{}, fmt.Errorf("openai: decode response: %w", decodeErr)
	}
	if len(parsed.Choices) == 0 {
		return CompletionResponse{}, ErrEmptyResponse
	}

	choice := parsed.Choices[0]
	// A truncated JSON document is useless to the caller.
	if choice.FinishReason == "length" {
		return CompletionResponse{}, fmt.Errorf("openai: completion truncated at %d tokens", maxTokens)
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return CompletionResponse{}, ErrEmptyResponse
	}
	return CompletionResponse{Content: content, Model: parsed.Model}, nil
}

func (p *OpenAIProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

type chatCompletionsRequest struct {
	Model          string               `json:"model"`
	Messages       []chatMessageRequest `json:"messages"`
	Temperature    float64              `json:"temperature"`
	MaxTokens      int                  `json:"max_tokens"`
	ResponseFormat *responseFormat      `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}
