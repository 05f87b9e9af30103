package planner

import (
	"fmt"
	"sort"
	"strings"
)

// Synthesize parses every recommendation, drops near duplicates, ranks the
// survivors and places them on the day timeline. The result is validated
// before it is returned; a plan that fails validation comes back together
// with an error wrapping ErrInvalidPlan.
func Synthesize(recs map[Domain]Recommendation, opts Options) (Plan, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return Plan{}, err
	}
	if len(recs) == 0 {
		return Plan{}, ErrNoRecommendations
	}

	domains := make([]Domain, 0, len(recs))
	for d := range recs {
		if strings.TrimSpace(string(d)) == "" {
			return Plan{}, ErrInvalidDomain
		}
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })

	var (
		all         []Candidate
		contributed []Domain
	)
	for _, d := range domains {
		cs := parse(d, recs[d].Content, o)
		if len(cs) == 0 {
			continue
		}
		contributed = append(contributed, d)
		all = append(all, cs...)
	}
	if len(all) == 0 {
		return Plan{}, ErrNoRecommendations
	}

	rank(all, o)
	kept, merges := dedupe(all, o.DedupeThreshold)
	// merges can raise priorities
	rank(kept, o)

	tasks, deferred, shifts := place(kept, o)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Start.Before(tasks[j].Start) })
	for i := range tasks {
		tasks[i].ID = o.NewID()
		tasks[i].Order = i
	}

	p := Plan{
		Day:         o.midnight(0),
		GeneratedAt: o.Now(),
		Tasks:       tasks,
		Deferred:    deferred,
		Conflicts:   append(merges, shifts...),
		Domains:     contributed,
	}
	p.Validation = Validate(p, o)
	if !p.Validation.OK {
		var details []string
		for _, c := range p.Validation.Failed() {
			details = append(details, c.Name+": "+c.Detail)
		}
		return p, fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(details, "; "))
	}
	return p, nil
}
