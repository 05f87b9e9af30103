package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/lifeops/internal/agents"
	"github.com/jask/lifeops/internal/config"
	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/llm"
	"github.com/jask/lifeops/internal/planner"
)

// ErrAllDomainsFailed is returned when no domain agent produced output.
var ErrAllDomainsFailed = errors.New("commander: all domain agents failed")

// coordinationDomain labels the commander's own stored recommendation.
const coordinationDomain = "coordination"

// Commander runs the domain agents in sequence, reconciles their output into
// one plan and persists it.
type Commander struct {
	Provider        llm.Provider
	Plans           *repository.PlanRepo
	Recommendations *repository.RecommendationRepo
	Planner         config.PlannerConfig
	Log             *zap.Logger

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// RunResult is the outcome of one commander run.
type RunResult struct {
	RunID    string
	PlanID   string
	Plan     planner.Plan
	Insights string
	// Outputs holds the raw agent text keyed by domain.
	Outputs  map[planner.Domain]string
	Failures map[planner.Domain]error
	// CoordinationErr is set when the coordination call failed; the run still succeeds.
	CoordinationErr error
}

// Run plans the current day.
func (c *Commander) Run(ctx context.Context, uc agents.UserContext) (RunResult, error) {
	return c.RunFor(ctx, uc, c.now())
}

// RunFor plans the given day.
func (c *Commander) RunFor(ctx context.Context, uc agents.UserContext, day time.Time) (RunResult, error) {
	if c.Provider == nil {
		return RunResult{}, fmt.Errorf("commander: provider not configured")
	}
	opts, err := PlannerOptions(c.Planner, day, uc.Focus())
	if err != nil {
		return RunResult{}, err
	}
	opts.Now = c.now
	if c.NewID != nil {
		opts.NewID = c.NewID
	}

	res := RunResult{
		RunID:    c.newID(),
		Outputs:  map[planner.Domain]string{},
		Failures: map[planner.Domain]error{},
	}
	log := c.log().With(zap.String("run_id", res.RunID))

	prompts := map[planner.Domain]func() (string, error){
		planner.Health:  func() (string, error) { return agents.HealthPrompt(uc) },
		planner.Finance: func() (string, error) { return agents.FinancePrompt(uc) },
		planner.Study:   func() (string, error) { return agents.StudyPrompt(uc, day) },
	}
	recs := map[planner.Domain]planner.Recommendation{}
	var causes []error
	for _, d := range planner.Domains {
		text, err := c.ask(ctx, prompts[d])
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Warn("domain agent failed", zap.String("domain", string(d)), zap.Error(err))
			res.Failures[d] = err
			causes = append(causes, fmt.Errorf("%s: %w", d, err))
			continue
		}
		res.Outputs[d] = text
		recs[d] = planner.Recommendation{Content: text, CreatedAt: c.now()}
		if err := c.store(ctx, res.RunID, string(d), text); err != nil {
			return res, err
		}
		log.Debug("domain agent done", zap.String("domain", string(d)), zap.Int("chars", len(text)))
	}
	if len(recs) == 0 {
		return res, errors.Join(append([]error{ErrAllDomainsFailed}, causes...)...)
	}

	res.Insights = planner.DefaultInsight
	coordination, err := c.ask(ctx, func() (string, error) {
		return agents.CoordinationPrompt(uc, res.Outputs[planner.Health], res.Outputs[planner.Finance], res.Outputs[planner.Study])
	})
	switch {
	case err != nil && ctx.Err() != nil:
		return res, ctx.Err()
	case err != nil:
		log.Warn("coordination failed", zap.Error(err))
		res.CoordinationErr = err
	default:
		res.Insights = planner.ExtractInsights(coordination)
		res.Outputs[planner.Personal] = coordination
		recs[planner.Personal] = planner.Recommendation{Content: coordination, CreatedAt: c.now()}
		if err := c.store(ctx, res.RunID, coordinationDomain, coordination); err != nil {
			return res, err
		}
	}

	plan, err := planner.Synthesize(recs, opts)
	res.Plan = plan
	if err != nil {
		return res, fmt.Errorf("synthesize: %w", err)
	}
	res.PlanID = c.newID()
	if c.Plans != nil {
		row, err := planRow(res.PlanID, res.Insights, plan)
		if err != nil {
			return res, err
		}
		if err := c.Plans.Save(ctx, row); err != nil {
			return res, fmt.Errorf("save plan: %w", err)
		}
	}
	log.Info("plan synthesized",
		zap.String("plan_id", res.PlanID),
		zap.Int("tasks", len(plan.Tasks)),
		zap.Int("deferred", len(plan.Deferred)),
		zap.Int("conflicts", len(plan.Conflicts)),
		zap.Int("failed_domains", len(res.Failures)),
	)
	return res, nil
}

// Latest returns the newest stored plan with its tasks.
func (c *Commander) Latest(ctx context.Context) (repository.Plan, error) {
	if c.Plans == nil {
		return repository.Plan{}, fmt.Errorf("commander: plan store not configured")
	}
	return c.Plans.Latest(ctx)
}

func (c *Commander) ask(ctx context.Context, prompt func() (string, error)) (string, error) {
	p, err := prompt()
	if err != nil {
		return "", err
	}
	text, err := c.Provider.Complete(ctx, p)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func (c *Commander) store(ctx context.Context, runID, domain, content string) error {
	if c.Recommendations == nil {
		return nil
	}
	err := c.Recommendations.Insert(ctx, repository.Recommendation{
		ID:        c.newID(),
		RunID:     runID,
		Domain:    domain,
		Content:   content,
		CreatedAt: c.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("store %s recommendation: %w", domain, err)
	}
	return nil
}

func (c *Commander) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Commander) newID() string {
	if c.NewID != nil {
		return c.NewID()
	}
	return uuid.NewString()
}

func (c *Commander) log() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// PlannerOptions turns the planner config section into synthesis options.
func PlannerOptions(pc config.PlannerConfig, day time.Time, focus planner.Domain) (planner.Options, error) {
	loc := pc.Location()
	opts := planner.DefaultOptions(day.In(loc))
	opts.Location = loc
	opts.Focus = focus
	if pc.DayStart != "" {
		v, err := config.ClockOffset(pc.DayStart)
		if err != nil {
			return planner.Options{}, fmt.Errorf("day_start: %w", err)
		}
		opts.DayStart = v
	}
	if pc.DayEnd != "" {
		v, err := config.ClockOffset(pc.DayEnd)
		if err != nil {
			return planner.Options{}, fmt.Errorf("day_end: %w", err)
		}
		opts.DayEnd = v
	}
	if opts.DayEnd <= opts.DayStart {
		return planner.Options{}, fmt.Errorf("%s-%s: %w", pc.DayStart, pc.DayEnd, planner.ErrInvalidWindow)
	}
	if pc.Buffer > 0 {
		opts.Buffer = pc.Buffer
	}
	opts.HorizonDays = pc.HorizonDays
	opts.MaxPerDomain = pc.MaxPerDomain
	opts.DedupeThreshold = pc.DedupeThreshold
	if len(pc.Weights) > 0 {
		opts.Weights = make(map[planner.Domain]int, len(pc.Weights))
		for name, w := range pc.Weights {
			d, ok := planner.ParseDomain(name)
			if !ok {
				return planner.Options{}, fmt.Errorf("weight %q: %w", name, planner.ErrInvalidDomain)
			}
			opts.Weights[d] = w
		}
	}
	return opts, nil
}

// PlanLog is the decoded decision log of a stored plan.
type PlanLog struct {
	Conflicts  []planner.Conflict
	Deferred   []planner.Candidate
	Validation planner.Validation
}

// DecodePlanLog unpacks the JSON columns of a stored plan.
func DecodePlanLog(p repository.Plan) (PlanLog, error) {
	var out PlanLog
	if err := json.Unmarshal([]byte(p.ConflictsJSON), &out.Conflicts); err != nil {
		return PlanLog{}, fmt.Errorf("decode conflicts: %w", err)
	}
	if err := json.Unmarshal([]byte(p.DeferredJSON), &out.Deferred); err != nil {
		return PlanLog{}, fmt.Errorf("decode deferred: %w", err)
	}
	if err := json.Unmarshal([]byte(p.ValidationJSON), &out.Validation); err != nil {
		return PlanLog{}, fmt.Errorf("decode validation: %w", err)
	}
	return out, nil
}

func planRow(id, insights string, p planner.Plan) (repository.Plan, error) {
	conflicts := p.Conflicts
	if conflicts == nil {
		conflicts = []planner.Conflict{}
	}
	deferred := p.Deferred
	if deferred == nil {
		deferred = []planner.Candidate{}
	}
	cj, err := json.Marshal(conflicts)
	if err != nil {
		return repository.Plan{}, fmt.Errorf("encode conflicts: %w", err)
	}
	dj, err := json.Marshal(deferred)
	if err != nil {
		return repository.Plan{}, fmt.Errorf("encode deferred: %w", err)
	}
	vj, err := json.Marshal(p.Validation)
	if err != nil {
		return repository.Plan{}, fmt.Errorf("encode validation: %w", err)
	}
	created := p.GeneratedAt.UTC().Truncate(time.Second)
	row := repository.Plan{
		ID:             id,
		Day:            p.Day.Format("2006-01-02"),
		GeneratedAt:    p.GeneratedAt.UTC(),
		Insights:       insights,
		ConflictsJSON:  string(cj),
		DeferredJSON:   string(dj),
		ValidationJSON: string(vj),
	}
	for _, t := range p.Tasks {
		start, end := t.Start.UTC(), t.End.UTC()
		row.Tasks = append(row.Tasks, repository.Task{
			ID:        t.ID,
			Domain:    string(t.Domain),
			Title:     t.Title,
			Priority:  int(t.Priority),
			StartAt:   &start,
			EndAt:     &end,
			Source:    repository.SourceCommander,
			CreatedAt: created,
		})
	}
	return row, nil
}
