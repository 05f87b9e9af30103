package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/lifeops/internal/agents"
	"github.com/jask/lifeops/internal/config"
	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/llm"
	"github.com/jask/lifeops/internal/planner"
)

var runDay = time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

func newCommander(t *testing.T, p llm.Provider) (*Commander, *repository.RecommendationRepo, context.Context) {
	t.Helper()
	db, ctx := setupDB(t)
	recs := repository.NewRecommendationRepo(db)
	n := 0
	return &Commander{
		Provider:        p,
		Plans:           repository.NewPlanRepo(db),
		Recommendations: recs,
		Planner:         config.PlannerConfig{DayStart: "07:00", DayEnd: "22:00", Buffer: 10 * time.Minute, Timezone: "UTC"},
		Now:             fixedClock(runDay),
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		},
	}, recs, ctx
}

func testContext() agents.UserContext {
	uc := agents.DefaultUserContext(runDay)
	uc.StressLevel = 8
	uc.Subjects = "Maths, Physics"
	return uc
}

func TestCommanderRunPersistsPlan(t *testing.T) {
	p := &scriptedProvider{}
	c, recs, ctx := newCommander(t, p)

	res, err := c.Run(ctx, testContext())
	require.NoError(t, err)
	require.Equal(t, []llm.Role{llm.RoleHealth, llm.RoleFinance, llm.RoleStudy, llm.RoleCoordination}, p.calls)
	require.Empty(t, res.Failures)
	require.NoError(t, res.CoordinationErr)
	require.True(t, res.Plan.Validation.OK)
	require.NotEmpty(t, res.Plan.Tasks)
	require.Contains(t, res.Insights, "Because stress, money and study time compete")

	stored, err := recs.ListByRun(ctx, res.RunID)
	require.NoError(t, err)
	require.Len(t, stored, 4)

	latest, err := c.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, res.PlanID, latest.ID)
	require.Equal(t, "2026-03-02", latest.Day)
	require.Equal(t, res.Insights, latest.Insights)
	require.Len(t, latest.Tasks, len(res.Plan.Tasks))
	for i, task := range latest.Tasks {
		require.Equal(t, repository.SourceCommander, task.Source)
		require.Equal(t, res.Plan.Tasks[i].Title, task.Title)
		require.True(t, task.StartAt.Equal(res.Plan.Tasks[i].Start))
	}

	log, err := DecodePlanLog(latest)
	require.NoError(t, err)
	require.True(t, log.Validation.OK)
	require.Len(t, log.Conflicts, len(res.Plan.Conflicts))
	require.Len(t, log.Deferred, len(res.Plan.Deferred))
}

func TestCommanderSurvivesOneFailingDomain(t *testing.T) {
	p := &scriptedProvider{fail: map[llm.Role]error{llm.RoleFinance: errors.New("quota exhausted")}}
	c, recs, ctx := newCommander(t, p)

	res, err := c.Run(ctx, testContext())
	require.NoError(t, err)
	require.Contains(t, res.Failures, planner.Finance)
	require.NotContains(t, res.Plan.Domains, planner.Finance)
	for _, task := range res.Plan.Tasks {
		require.NotEqual(t, planner.Finance, task.Domain)
	}

	stored, err := recs.ListByRun(ctx, res.RunID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
}

func TestCommanderAllDomainsFailed(t *testing.T) {
	quota := errors.New("quota exhausted")
	p := &scriptedProvider{fail: map[llm.Role]error{
		llm.RoleHealth:  quota,
		llm.RoleFinance: llm.ErrEmptyResponse,
		llm.RoleStudy:   quota,
	}}
	c, _, ctx := newCommander(t, p)

	res, err := c.Run(ctx, testContext())
	require.ErrorIs(t, err, ErrAllDomainsFailed)
	require.ErrorIs(t, err, quota)
	require.ErrorIs(t, err, llm.ErrEmptyResponse)
	require.Len(t, res.Failures, 3)
	require.NotContains(t, p.calls, llm.RoleCoordination)

	_, err = c.Latest(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCommanderCoordinationFailureIsNonFatal(t *testing.T) {
	p := &scriptedProvider{fail: map[llm.Role]error{llm.RoleCoordination: context.DeadlineExceeded}}
	c, _, ctx := newCommander(t, p)

	res, err := c.Run(ctx, testContext())
	require.NoError(t, err)
	require.ErrorIs(t, res.CoordinationErr, context.DeadlineExceeded)
	require.Equal(t, planner.DefaultInsight, res.Insights)
	for _, task := range res.Plan.Tasks {
		require.NotEqual(t, planner.Personal, task.Domain)
	}
}

func TestCommanderEmptyAnswerCountsAsFailure(t *testing.T) {
	p := &scriptedProvider{answers: map[llm.Role]string{llm.RoleStudy: "   "}}
	c, _, ctx := newCommander(t, p)

	res, err := c.Run(ctx, testContext())
	require.NoError(t, err)
	require.ErrorIs(t, res.Failures[planner.Study], llm.ErrEmptyResponse)
}

func TestCommanderStopsOnCancelledContext(t *testing.T) {
	c, _, _ := newCommander(t, llm.NewOfflineProvider())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Run(ctx, testContext())
	require.ErrorIs(t, err, context.Canceled)
}

func TestPlannerOptionsFromConfig(t *testing.T) {
	opts, err := PlannerOptions(config.PlannerConfig{
		DayStart: "06:30",
		DayEnd:   "23:00",
		Buffer:   5 * time.Minute,
		Timezone: "UTC",
		Weights:  map[string]int{"study": 9},
	}, runDay, planner.Health)
	require.NoError(t, err)
	require.Equal(t, 6*time.Hour+30*time.Minute, opts.DayStart)
	require.Equal(t, 23*time.Hour, opts.DayEnd)
	require.Equal(t, 5*time.Minute, opts.Buffer)
	require.Equal(t, 9, opts.Weights[planner.Study])
	require.Equal(t, planner.Health, opts.Focus)

	_, err = PlannerOptions(config.PlannerConfig{DayStart: "20:00", DayEnd: "08:00"}, runDay, "")
	require.ErrorIs(t, err, planner.ErrInvalidWindow)

	_, err = PlannerOptions(config.PlannerConfig{Weights: map[string]int{"astrology": 1}}, runDay, "")
	require.ErrorIs(t, err, planner.ErrInvalidDomain)

	_, err = PlannerOptions(config.PlannerConfig{DayStart: "7am"}, runDay, "")
	require.Error(t, err)
}
