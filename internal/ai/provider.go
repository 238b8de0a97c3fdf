package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model answered with no content.
var ErrEmptyResponse = errors.New("ai response is empty")

// Provider is a text generation backend. Complete must honor ctx cancellation.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	Close() error
}

// CompletionRequest asks for a single JSON document.
type CompletionRequest struct {
	// Instructions describe the expected answer shape.
	Instructions string
	// Payload is the canonical JSON request document.
	Payload []byte
	// MaxTokens overrides the provider default when positive.
	MaxTokens int
}

type CompletionResponse struct {
	Content string
	Model   string
}
