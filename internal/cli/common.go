package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jask/lifeops/internal/config"
	"github.com/jask/lifeops/internal/database"
	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/llm"
	"github.com/jask/lifeops/internal/logging"
	"github.com/jask/lifeops/internal/secrets"
	"github.com/jask/lifeops/internal/service"
)

// app bundles everything a command needs: config, logger, database and repos.
type app struct {
	cfg config.Config
	log *zap.Logger
	db  *sql.DB
	loc *time.Location
	now func() time.Time

	tasks           *repository.TaskRepo
	plans           *repository.PlanRepo
	recommendations *repository.RecommendationRepo
	bills           *repository.BillRepo
	medicines       *repository.MedicineRepo
	notes           *repository.NoteRepo
	study           *repository.StudySessionRepo
	progress        *repository.ProgressRepo
	weekly          *repository.WeeklyProgressRepo
}

// newApp loads config, builds the logger and opens (migrating if needed) the database.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log, verbose)
	if err != nil {
		return nil, err
	}
	db, err := database.Setup(ctx, cfg.Database.Path)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	log.Debug("database ready", zap.String("path", cfg.Database.Path))

	loc := cfg.Planner.Location()
	return &app{
		cfg:             cfg,
		log:             log,
		db:              db,
		loc:             loc,
		now:             func() time.Time { return time.Now().In(loc) },
		tasks:           repository.NewTaskRepo(db),
		plans:           repository.NewPlanRepo(db),
		recommendations: repository.NewRecommendationRepo(db),
		bills:           repository.NewBillRepo(db),
		medicines:       repository.NewMedicineRepo(db),
		notes:           repository.NewNoteRepo(db),
		study:           repository.NewStudySessionRepo(db),
		progress:        repository.NewProgressRepo(db),
		weekly:          repository.NewWeeklyProgressRepo(db),
	}, nil
}

func (a *app) Close() error {
	_ = a.log.Sync()
	return a.db.Close()
}

// provider builds the configured LLM provider. offline forces the rule-based one.
func (a *app) provider(ctx context.Context, offline bool) (llm.Provider, error) {
	name := a.cfg.LLM.Provider
	if offline {
		name = "offline"
	}
	p, err := llm.New(ctx, llm.Settings{
		Provider:    name,
		APIKey:      resolveAPIKey(a.cfg),
		Model:       a.cfg.LLM.Model,
		Temperature: a.cfg.LLM.Temperature,
		Timeout:     a.cfg.LLM.Timeout,
	}, a.log)
	if errors.Is(err, llm.ErrNoAPIKey) {
		return nil, fmt.Errorf("%w: set %s, run `lifeops key set %s`, or pass --offline",
			err, a.cfg.LLM.APIKeyEnv, strings.ToLower(a.cfg.LLM.Provider))
	}
	return p, err
}

func (a *app) commander(p llm.Provider) *service.Commander {
	return &service.Commander{
		Provider:        p,
		Plans:           a.plans,
		Recommendations: a.recommendations,
		Planner:         a.cfg.Planner,
		Log:             a.log,
		Now:             a.now,
	}
}

func (a *app) reflection(p llm.Provider) *service.Reflection {
	return &service.Reflection{
		Provider:       p,
		Tasks:          a.tasks,
		Study:          a.study,
		Progress:       a.progress,
		WeeklyProgress: a.weekly,
		Log:            a.log,
		Now:            a.now,
	}
}

func (a *app) reminders() *service.Reminders {
	return &service.Reminders{Bills: a.bills, Medicines: a.medicines, Now: a.now}
}

// rolloverBills clears paid flags left over from previous months.
func (a *app) rolloverBills(ctx context.Context) error {
	now := a.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, a.loc)
	n, err := a.bills.ResetPaidBefore(ctx, monthStart)
	if err != nil {
		return fmt.Errorf("roll over bills: %w", err)
	}
	if n > 0 {
		a.log.Debug("bills rolled over", zap.Int64("count", n))
	}
	return nil
}

// resolveAPIKey checks the configured env var, then the encrypted key store,
// then the plain config value.
func resolveAPIKey(cfg config.Config) string {
	provider := strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if env := strings.TrimSpace(cfg.LLM.APIKeyEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if store, err := secrets.Default(); err == nil {
		if k, err := store.Get(provider); err == nil {
			return k
		}
	}
	return strings.TrimSpace(cfg.LLM.APIKey)
}

// parseDay parses YYYY-MM-DD in loc; empty means today.
func parseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// resolveID expands an id prefix against the known ids.
func resolveID(prefix string, ids []string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("empty id")
	}
	var match string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("id %q is ambiguous", prefix)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("id %q: %w", prefix, repository.ErrNotFound)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
