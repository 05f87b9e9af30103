package planner

import (
	"time"

	"github.com/google/uuid"
)

const (
	defaultMaxPerDomain    = 10
	defaultDedupeThreshold = 0.25
	focusBonus             = 10
	minDuration            = 5 * time.Minute
	maxDuration            = 3 * time.Hour
)

// DefaultDurations apply when an item carries no duration hint.
var DefaultDurations = map[Domain]time.Duration{
	Health:   30 * time.Minute,
	Finance:  20 * time.Minute,
	Study:    50 * time.Minute,
	Personal: 15 * time.Minute,
}

// DefaultWeights rank domains when priorities tie.
var DefaultWeights = map[Domain]int{
	Health:   3,
	Finance:  2,
	Study:    2,
	Personal: 1,
}

// Options control a synthesis run. Zero values fall back to defaults.
type Options struct {
	Day      time.Time
	Location *time.Location
	// DayStart and DayEnd are offsets from local midnight.
	DayStart        time.Duration
	DayEnd          time.Duration
	Buffer          time.Duration
	HorizonDays     int
	Weights         map[Domain]int
	Focus           Domain
	Durations       map[Domain]time.Duration
	MaxPerDomain    int
	DedupeThreshold float64

	Now   func() time.Time
	NewID func() string
}

// DefaultOptions returns a 07:00-22:00 window for day with a ten minute buffer.
func DefaultOptions(day time.Time) Options {
	return Options{
		Day:      day,
		Location: day.Location(),
		DayStart: 7 * time.Hour,
		DayEnd:   22 * time.Hour,
		Buffer:   10 * time.Minute,
	}
}

func (o Options) withDefaults() (Options, error) {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Day.IsZero() {
		o.Day = o.Now()
	}
	if o.DayStart == 0 && o.DayEnd == 0 {
		o.DayStart, o.DayEnd = 7*time.Hour, 22*time.Hour
	}
	if o.DayStart < 0 || o.DayEnd > 24*time.Hour || o.DayEnd <= o.DayStart {
		return o, ErrInvalidWindow
	}
	if o.Buffer < 0 {
		o.Buffer = 0
	}
	if o.HorizonDays < 1 {
		o.HorizonDays = 1
	}
	if o.MaxPerDomain <= 0 {
		o.MaxPerDomain = defaultMaxPerDomain
	}
	if o.DedupeThreshold <= 0 {
		o.DedupeThreshold = defaultDedupeThreshold
	}
	return o, nil
}

func (o Options) weight(d Domain) int {
	w, ok := o.Weights[d]
	if !ok {
		w, ok = DefaultWeights[d]
	}
	if !ok {
		w = 1
	}
	if o.Focus != "" && d == o.Focus {
		w += focusBonus
	}
	return w
}

func (o Options) defaultDuration(d Domain) time.Duration {
	if v, ok := o.Durations[d]; ok && v > 0 {
		return v
	}
	if v, ok := DefaultDurations[d]; ok {
		return v
	}
	return 30 * time.Minute
}

// midnight returns local midnight of the plan day plus offset days.
func (o Options) midnight(offset int) time.Time {
	d := o.Day.In(o.Location)
	return time.Date(d.Year(), d.Month(), d.Day()+offset, 0, 0, 0, 0, o.Location)
}

func clampDuration(d time.Duration) time.Duration {
	if d < minDuration {
		return minDuration
	}
	if d > maxDuration {
		return maxDuration
	}
	return d
}
