package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	defaultTimeout     = 45 * time.Second
	maxAttempts        = 2
)

// GeminiProvider calls the Gemini API through the genai SDK.
// Timeout: per call (default 45s); Retry: once on deadline, 429 or 5xx.
type GeminiProvider struct {
	model       string
	temperature float32
	timeout     time.Duration
	log         *zap.Logger
	generate    func(ctx context.Context, prompt string) (string, error)
}

func NewGeminiProvider(ctx context.Context, s Settings, log *zap.Logger) (*GeminiProvider, error) {
	apiKey := strings.TrimSpace(s.APIKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	g := newGemini(s, log)
	g.generate = func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature: genai.Ptr(g.temperature),
		})
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return g, nil
}

func newGemini(s Settings, log *zap.Logger) *GeminiProvider {
	if log == nil {
		log = zap.NewNop()
	}
	g := &GeminiProvider{
		model:       strings.TrimSpace(s.Model),
		temperature: s.Temperature,
		timeout:     s.Timeout,
		log:         log,
	}
	if g.model == "" {
		g.model = defaultGeminiModel
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}
	return g
}

func (g *GeminiProvider) Model() string { return g.model }

func (g *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	role, _ := DetectRole(prompt)
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		start := time.Now()
		text, err := g.call(ctx, prompt)
		if err == nil {
			g.log.Debug("gemini call",
				zap.String("role", string(role)),
				zap.Int("attempt", attempt),
				zap.Duration("took", time.Since(start)),
				zap.Int("chars", len(text)))
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			break
		}
		g.log.Warn("gemini call failed, retrying",
			zap.String("role", string(role)),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return "", lastErr
}

func (g *GeminiProvider) call(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return false
}
