package service

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/planner"
)

// IngestService handles CSV imports of progress records.
type IngestService struct {
	Progress *repository.ProgressRepo
}

type IngestResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// ImportProgressCSV reads rows of date, domain, metric, value. An optional
// header row is skipped. Rows already imported are counted as skipped.
func (s *IngestService) ImportProgressCSV(ctx context.Context, r io.Reader, tz *time.Location) (IngestResult, error) {
	res := IngestResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	csvr.Comment = '#'
	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue
		}
		if len(rec) < 4 { // date, domain, metric, value
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected 4 columns (date, domain, metric, value)", line))
			continue
		}
		date, err := parseLocalDate(rec[0], tz)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d date: %w", line, err))
			continue
		}
		domain, ok := planner.ParseDomain(rec[1])
		if !ok {
			res.Errors = append(res.Errors, fmt.Errorf("line %d domain %q: %w", line, rec[1], planner.ErrInvalidDomain))
			continue
		}
		metric := strings.TrimSpace(rec[2])
		if metric == "" {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: metric required", line))
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d value: %w", line, err))
			continue
		}

		p := repository.ProgressRecord{
			ID:         uuid.NewString(),
			Domain:     string(domain),
			Metric:     metric,
			Value:      value,
			RecordedAt: date,
			SourceHash: hashSource(date.Format(time.DateOnly), string(domain), strings.ToLower(metric), strconv.FormatFloat(value, 'f', -1, 64)),
		}
		if err := s.Progress.Insert(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

func hashSource(parts ...string) *string {
	joined := strings.Join(parts, "|")
	sum := sha256.Sum256([]byte(joined))
	h := fmt.Sprintf("%x", sum[:])
	return &h
}

func parseLocalDate(s string, loc *time.Location) (time.Time, error) {
	layout := "2006-01-02"
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
