package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestDetectRole(t *testing.T) {
	r, ok := DetectRole(Header(RoleStudy) + "You are the study agent.")
	require.True(t, ok)
	require.Equal(t, RoleStudy, r)

	_, ok = DetectRole("ROLE: astrology\nhello")
	require.False(t, ok)
	_, ok = DetectRole("no header")
	require.False(t, ok)
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Domain string `json:"domain"`
	}
	require.NoError(t, DecodeJSON("Sure!\n```json\n{\"domain\":\"study\"}\n```", &out))
	require.Equal(t, "study", out.Domain)

	out.Domain = ""
	require.NoError(t, DecodeJSON(`answer: {"domain":"health"} done`, &out))
	require.Equal(t, "health", out.Domain)

	var list []int
	require.NoError(t, DecodeJSON("values [1, 2, 3]", &list))
	require.Equal(t, []int{1, 2, 3}, list)

	require.Error(t, DecodeJSON("plain text", &out))
}

func TestNewSelectsProvider(t *testing.T) {
	p, err := New(context.Background(), Settings{Provider: "offline"}, nil)
	require.NoError(t, err)
	require.IsType(t, &OfflineProvider{}, p)

	_, err = New(context.Background(), Settings{Provider: "gemini"}, nil)
	require.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New(context.Background(), Settings{Provider: "carrier-pigeon"}, nil)
	require.Error(t, err)
}

func TestGeminiRetriesOnceOnDeadline(t *testing.T) {
	g := newGemini(Settings{Timeout: time.Second}, nil)
	calls := 0
	g.generate = func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls == 1 {
			return "", context.DeadlineExceeded
		}
		return "  1. Walk at 7:00  ", nil
	}
	text, err := g.Complete(context.Background(), Header(RoleHealth))
	require.NoError(t, err)
	require.Equal(t, "1. Walk at 7:00", text)
	require.Equal(t, 2, calls)
	require.Equal(t, defaultGeminiModel, g.Model())
}

func TestGeminiDoesNotRetryClientErrors(t *testing.T) {
	g := newGemini(Settings{}, nil)
	calls := 0
	g.generate = func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", genai.APIError{Code: 400, Message: "bad request"}
	}
	_, err := g.Complete(context.Background(), "hi")
	require.Error(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, defaultTimeout, g.timeout)
}

func TestGeminiRetriesRateLimitThenGivesUp(t *testing.T) {
	g := newGemini(Settings{}, nil)
	calls := 0
	g.generate = func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", genai.APIError{Code: 429, Message: "slow down"}
	}
	_, err := g.Complete(context.Background(), "hi")
	var apiErr genai.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 2, calls)
}

func TestGeminiEmptyResponse(t *testing.T) {
	g := newGemini(Settings{}, nil)
	g.generate = func(ctx context.Context, prompt string) (string, error) { return "   ", nil }
	_, err := g.Complete(context.Background(), "hi")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOfflineHealthUsesContext(t *testing.T) {
	prompt := Header(RoleHealth) + "User context:\n- Stress level: 8/10\n- Sleep hours: 5\n- Medicines: Vitamin D\n"
	text, err := NewOfflineProvider().Complete(context.Background(), prompt)
	require.NoError(t, err)
	require.Contains(t, text, "Important: screen-free wind down routine at 21:00 (15 min)")
	require.Contains(t, text, "lights-out reminder")
	require.Contains(t, text, "Take Vitamin D with breakfast at 8:00 (5 min)")

	calm := Header(RoleHealth) + "- Stress level: 3/10\n- Medicines: none\n"
	text, err = NewOfflineProvider().Complete(context.Background(), calm)
	require.NoError(t, err)
	require.NotContains(t, text, "wind down")
	require.NotContains(t, text, "breakfast")
}

func TestOfflineStudyAddsSubjectBlocks(t *testing.T) {
	prompt := Header(RoleStudy) + "- Subjects: Maths, Physics\n- Days until exam: 4\n"
	text, err := NewOfflineProvider().Complete(context.Background(), prompt)
	require.NoError(t, err)
	require.Contains(t, text, "Deep focus block on Maths (50 min) at 9:00")
	require.Contains(t, text, "Deep focus block on Physics (50 min) at 14:00")
	require.Contains(t, text, "mock exam")
}

func TestOfflineFinanceFlagsOverspend(t *testing.T) {
	prompt := Header(RoleFinance) + "- Monthly budget: $1000\n- Current expenses: $1200.50\n- Bills: Rent, Internet\n"
	text, err := NewOfflineProvider().Complete(context.Background(), prompt)
	require.NoError(t, err)
	require.Contains(t, text, "Urgent: cut discretionary spending")
	require.Contains(t, text, "Schedule payment for Rent, Internet")
}

func TestOfflineReflectionAndClassify(t *testing.T) {
	p := NewOfflineProvider()
	text, err := p.Complete(context.Background(), Header(RoleReflection)+"```json\n{\"completed\":3,\"total\":10,\"consistency_streak\":2}\n```")
	require.NoError(t, err)
	require.True(t, strings.Contains(text, "You completed 3 of 10 planned actions and kept a 2-day streak."))

	text, err = p.Complete(context.Background(), Header(RoleClassify)+"- Text: pay the phone bill\n")
	require.NoError(t, err)
	require.Equal(t, "finance", text)

	_, err = p.Complete(context.Background(), "no role")
	require.ErrorIs(t, err, ErrEmptyResponse)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Complete(ctx, Header(RoleHealth))
	require.ErrorIs(t, err, context.Canceled)
}
