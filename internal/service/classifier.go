package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jask/lifeops/internal/agents"
	"github.com/jask/lifeops/internal/llm"
	"github.com/jask/lifeops/internal/planner"
)

// Classifier assigns a domain to user-entered tasks.
type Classifier struct {
	Provider llm.Provider
	Log      *zap.Logger
}

// Classify applies keyword rules first and asks the model only when they
// are inconclusive. Model failures degrade to General.
func (c *Classifier) Classify(ctx context.Context, text string) planner.Domain {
	// 1) keyword rules
	if d := planner.Classify(text); d != planner.General || c.Provider == nil {
		return d
	}

	// 2) LLM
	prompt, err := agents.ClassifyPrompt(text)
	if err != nil {
		return planner.General
	}
	answer, err := c.Provider.Complete(ctx, prompt)
	if err != nil {
		if c.Log != nil {
			c.Log.Debug("classify fell back to general", zap.Error(err))
		}
		return planner.General
	}
	fields := strings.FieldsFunc(strings.ToLower(answer), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	for _, f := range fields {
		if d, ok := planner.ParseDomain(f); ok {
			return d
		}
	}
	return planner.General
}
