// Package planner merges independent domain recommendations into one
// non-overlapping daily schedule.
package planner

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNoRecommendations = errors.New("planner: no recommendations to plan")
	ErrInvalidWindow     = errors.New("planner: invalid day window")
	ErrInvalidDomain     = errors.New("planner: invalid domain")
	ErrInvalidPlan       = errors.New("planner: plan failed validation")
)

// Domain is a life area.
type Domain string

const (
	Health   Domain = "health"
	Finance  Domain = "finance"
	Study    Domain = "study"
	Personal Domain = "personal"
	General  Domain = "general"
)

// Domains lists the agent domains in pipeline order.
var Domains = []Domain{Health, Finance, Study}

// ParseDomain normalizes a user supplied domain name.
func ParseDomain(s string) (Domain, bool) {
	switch d := Domain(strings.ToLower(strings.TrimSpace(s))); d {
	case Health, Finance, Study, Personal, General:
		return d, true
	}
	return "", false
}

// Priority orders tasks; higher wins contested slots.
type Priority int

const (
	Low Priority = iota + 1
	Medium
	High
	Urgent
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Urgent:
		return "urgent"
	}
	return "medium"
}

// ParsePriority accepts names ("high") and numbers ("3").
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "1":
		return Low, true
	case "medium", "normal", "2":
		return Medium, true
	case "high", "important", "3":
		return High, true
	case "urgent", "critical", "4":
		return Urgent, true
	}
	return Medium, false
}

// Recommendation is the raw output of one domain agent.
type Recommendation struct {
	Content   string
	CreatedAt time.Time
}

// Candidate is an action item parsed from a recommendation, before placement.
type Candidate struct {
	Domain   Domain        `json:"domain"`
	Title    string        `json:"title"`
	Priority Priority      `json:"priority"`
	Duration time.Duration `json:"duration"`
	// Start is the preferred wall-clock offset from midnight; valid when HasStart.
	Start    time.Duration `json:"start,omitempty"`
	HasStart bool          `json:"has_start,omitempty"`
	Index    int           `json:"index"`
}

// Task is a scheduled plan entry with a [Start, End) window.
type Task struct {
	ID       string
	Domain   Domain
	Title    string
	Priority Priority
	Start    time.Time
	End      time.Time
	Order    int
}

// Duration returns End - Start.
func (t Task) Duration() time.Duration { return t.End.Sub(t.Start) }

// ConflictKind labels a conflict log entry.
type ConflictKind string

const (
	ConflictMerged   ConflictKind = "merged"
	ConflictShifted  ConflictKind = "shifted"
	ConflictDeferred ConflictKind = "deferred"
)

// Conflict records one decision the synthesizer made while resolving competing items.
type Conflict struct {
	Kind   ConflictKind `json:"kind"`
	Domain Domain       `json:"domain"`
	Title  string       `json:"title"`
	With   string       `json:"with,omitempty"`
	Detail string       `json:"detail,omitempty"`
}

// Check is one structural validation result.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Validation is the report attached to every plan.
type Validation struct {
	OK     bool    `json:"ok"`
	Checks []Check `json:"checks"`
}

// Failed returns the checks that did not pass.
func (v Validation) Failed() []Check {
	var out []Check
	for _, c := range v.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// Plan is the reconciled schedule.
type Plan struct {
	Day         time.Time
	GeneratedAt time.Time
	Tasks       []Task
	Deferred    []Candidate
	Conflicts   []Conflict
	Validation  Validation
	// Domains are the input domains that contributed at least one candidate.
	Domains []Domain
}
