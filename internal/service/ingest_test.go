package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/planner"
)

func TestImportProgressCSV(t *testing.T) {
	db, ctx := setupDB(t)
	repo := repository.NewProgressRepo(db)
	svc := &IngestService{Progress: repo}

	loc, err := time.LoadLocation("Australia/Melbourne")
	require.NoError(t, err)

	data := strings.Join([]string{
		"date,domain,metric,value",
		"2026-03-02,Health,sleep_hours,7.5",
		"2026-03-02,study,minutes,120",
		"# comment lines are ignored",
		"2026-03-03,astrology,stars,5",
		"2026-03-03,finance,spent,lots",
		"03/04/2026,finance,spent,20",
		"2026-03-04,finance",
	}, "\n")

	res, err := svc.ImportProgressCSV(ctx, strings.NewReader(data), loc)
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)
	require.Equal(t, 0, res.Skipped)
	require.Len(t, res.Errors, 4)
	require.ErrorIs(t, res.Errors[0], planner.ErrInvalidDomain)
	require.Contains(t, res.Errors[1].Error(), "value")
	require.Contains(t, res.Errors[2].Error(), "date")
	require.Contains(t, res.Errors[3].Error(), "expected 4 columns")

	recs, err := repo.List(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		require.NotNil(t, r.SourceHash)
		require.Equal(t, "2026-03-02", r.RecordedAt.In(loc).Format("2006-01-02"))
	}
	require.Equal(t, "health", recs[0].Domain)
	require.InDelta(t, 7.5, recs[0].Value, 1e-9)

	// Re-import should skip duplicates via source hash.
	res2, err := svc.ImportProgressCSV(ctx, strings.NewReader(data), loc)
	require.NoError(t, err)
	require.Equal(t, 0, res2.Imported)
	require.Equal(t, 2, res2.Skipped)
	require.Len(t, res2.Errors, 4)
}

func TestHashSourceStable(t *testing.T) {
	a := hashSource("2026-03-02", "health", "sleep_hours", "7.5")
	b := hashSource("2026-03-02", "health", "sleep_hours", "7.5")
	c := hashSource("2026-03-02", "health", "sleep_hours", "7")
	require.Equal(t, *a, *b)
	require.NotEqual(t, *a, *c)
	require.Len(t, *a, 64)
}
