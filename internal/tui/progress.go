package tui

import (
	"sort"
	"strings"
	"time"

	"github.com/jask/lifeops/internal/database/repository"
)

// Metrics returns the distinct metric names in records, sorted.
func Metrics(records []repository.ProgressRecord) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		if !seen[r.Metric] {
			seen[r.Metric] = true
			out = append(out, r.Metric)
		}
	}
	sort.Strings(out)
	return out
}

// DailyAverage is the mean of one metric over a local day.
type DailyAverage struct {
	Day   time.Time
	Value float64
	Count int
}

// DailyAverages averages metric per local day between start and end
// (inclusive). Days without records are omitted.
func DailyAverages(records []repository.ProgressRecord, metric string, start, end time.Time, loc *time.Location) []DailyAverage {
	if loc == nil {
		loc = time.Local
	}
	startISO := start.In(loc).Format("2006-01-02")
	endISO := end.In(loc).Format("2006-01-02")
	if endISO < startISO {
		return nil
	}
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range records {
		if !strings.EqualFold(r.Metric, metric) {
			continue
		}
		iso := r.RecordedAt.In(loc).Format("2006-01-02")
		if iso < startISO || iso > endISO {
			continue
		}
		sums[iso] += r.Value
		counts[iso]++
	}
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]DailyAverage, 0, len(keys))
	for _, k := range keys {
		d, err := time.ParseInLocation("2006-01-02", k, loc)
		if err != nil {
			continue
		}
		out = append(out, DailyAverage{Day: d, Value: sums[k] / float64(counts[k]), Count: counts[k]})
	}
	return out
}
