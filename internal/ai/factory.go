package ai

import (
	"context"
	"strings"

	"github.com/fdg312/family-hub/internal/config"
)

func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.AIMode))
	if mode == "" {
		mode = config.AIModeMock
	}

	switch mode {
	case config.AIModeOpenAI:
		return NewOpenAIProvider(cfg), nil
	case config.AIModeGemini:
		return NewGeminiProvider(ctx, cfg)
	default:
		return NewMockProvider(), nil
	}
}
