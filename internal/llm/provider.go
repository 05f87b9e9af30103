package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNoAPIKey      = errors.New("llm: api key not configured")
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Provider is a single text-completion call.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Role identifies which prompt template produced a prompt. The first line of
// every prompt is its Header so providers and logs can tell them apart.
type Role string

const (
	RoleHealth       Role = "health"
	RoleFinance      Role = "finance"
	RoleStudy        Role = "study"
	RoleCoordination Role = "coordination"
	RoleReflection   Role = "reflection"
	RoleClassify     Role = "classify"
)

const headerPrefix = "ROLE: "

// Header returns the first prompt line for role.
func Header(r Role) string { return headerPrefix + string(r) + "\n" }

// DetectRole reads the role header of a prompt.
func DetectRole(prompt string) (Role, bool) {
	line := prompt
	if i := strings.IndexByte(prompt, '\n'); i >= 0 {
		line = prompt[:i]
	}
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, headerPrefix) {
		return "", false
	}
	r := Role(strings.TrimSpace(strings.TrimPrefix(line, headerPrefix)))
	switch r {
	case RoleHealth, RoleFinance, RoleStudy, RoleCoordination, RoleReflection, RoleClassify:
		return r, true
	}
	return "", false
}

// Settings selects and tunes a provider.
type Settings struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// New builds the configured provider. "offline" never touches the network.
func New(ctx context.Context, s Settings, log *zap.Logger) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "offline":
		return NewOfflineProvider(), nil
	case "", "gemini":
		return NewGeminiProvider(ctx, s, log)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", s.Provider)
	}
}
