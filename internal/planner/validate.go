package planner

import (
	"fmt"
	"strings"
)

// Validate runs the structural checks every plan must pass.
func Validate(p Plan, opts Options) Validation {
	o, err := opts.withDefaults()
	if err != nil {
		return Validation{Checks: []Check{{Name: "window", Detail: err.Error()}}}
	}
	checks := []Check{
		checkTitles(p),
		checkDurations(p),
		checkWindow(p, o),
		checkOrder(p),
		checkOverlap(p, o),
		checkCoverage(p),
	}
	v := Validation{OK: true, Checks: checks}
	for _, c := range checks {
		if !c.Passed {
			v.OK = false
		}
	}
	return v
}

func checkTitles(p Plan) Check {
	c := Check{Name: "titles", Passed: true}
	for _, t := range p.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			c.Passed = false
			c.Detail = fmt.Sprintf("task %d has an empty title", t.Order)
			break
		}
	}
	return c
}

func checkDurations(p Plan) Check {
	c := Check{Name: "durations", Passed: true}
	for _, t := range p.Tasks {
		if !t.End.After(t.Start) {
			c.Passed = false
			c.Detail = fmt.Sprintf("%q has a non-positive duration", t.Title)
			break
		}
	}
	return c
}

func checkWindow(p Plan, o Options) Check {
	c := Check{Name: "window", Passed: true}
	for _, t := range p.Tasks {
		inside := false
		for i := 0; i < o.HorizonDays; i++ {
			mid := o.midnight(i)
			if !t.Start.Before(wallClock(mid, o.DayStart)) && !t.End.After(wallClock(mid, o.DayEnd)) {
				inside = true
				break
			}
		}
		if !inside {
			c.Passed = false
			c.Detail = fmt.Sprintf("%q at %s is outside the day window", t.Title, t.Start.Format("2006-01-02 15:04"))
			break
		}
	}
	return c
}

func checkOrder(p Plan) Check {
	c := Check{Name: "order", Passed: true}
	for i := 1; i < len(p.Tasks); i++ {
		if !p.Tasks[i-1].Start.Before(p.Tasks[i].Start) {
			c.Passed = false
			c.Detail = fmt.Sprintf("%q is not after %q", p.Tasks[i].Title, p.Tasks[i-1].Title)
			break
		}
	}
	return c
}

// checkOverlap compares every pair, so it holds even for unordered input.
func checkOverlap(p Plan, o Options) Check {
	c := Check{Name: "overlap", Passed: true}
	for i := range p.Tasks {
		for j := i + 1; j < len(p.Tasks); j++ {
			a, b := p.Tasks[i], p.Tasks[j]
			if b.Start.Before(a.Start) {
				a, b = b, a
			}
			if b.Start.Before(a.End.Add(o.Buffer)) {
				c.Passed = false
				c.Detail = fmt.Sprintf("%q and %q are closer than %s", a.Title, b.Title, o.Buffer)
				return c
			}
		}
	}
	return c
}

func checkCoverage(p Plan) Check {
	c := Check{Name: "coverage", Passed: true}
	seen := map[Domain]bool{}
	for _, t := range p.Tasks {
		seen[t.Domain] = true
	}
	for _, d := range p.Deferred {
		seen[d.Domain] = true
	}
	for _, cf := range p.Conflicts {
		if cf.Kind == ConflictMerged {
			seen[cf.Domain] = true
		}
	}
	var missing []string
	for _, d := range p.Domains {
		if !seen[d] {
			missing = append(missing, string(d))
		}
	}
	if len(missing) > 0 {
		c.Passed = false
		c.Detail = "domains neither scheduled nor deferred: " + strings.Join(missing, ", ")
	}
	return c
}
