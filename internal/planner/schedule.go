package planner

import (
	"fmt"
	"sort"
	"time"
)

// before is the conflict policy: priority, then domain weight, then items
// with a preferred start (earliest first), then domain name, then position.
func (o Options) before(a, b Candidate) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if wa, wb := o.weight(a.Domain), o.weight(b.Domain); wa != wb {
		return wa > wb
	}
	if a.HasStart != b.HasStart {
		return a.HasStart
	}
	if a.HasStart && a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.Domain != b.Domain {
		return a.Domain < b.Domain
	}
	return a.Index < b.Index
}

func rank(cs []Candidate, o Options) {
	sort.SliceStable(cs, func(i, j int) bool { return o.before(cs[i], cs[j]) })
}

type interval struct {
	start, end time.Time
	title      string
}

// dayTimeline tracks reserved intervals of one day, sorted by start.
type dayTimeline struct {
	midnight    time.Time
	open, close time.Time
	busy        []interval
}

func newTimeline(midnight time.Time, o Options) *dayTimeline {
	return &dayTimeline{
		midnight: midnight,
		open:     wallClock(midnight, o.DayStart),
		close:    wallClock(midnight, o.DayEnd),
	}
}

// fit returns the earliest start at or after from where dur fits with buf
// clearance on both sides of every reserved interval.
func (d *dayTimeline) fit(from time.Time, dur, buf time.Duration) (time.Time, bool) {
	start := from
	if start.Before(d.open) {
		start = d.open
	}
	for _, iv := range d.busy {
		if !iv.end.Add(buf).After(start) {
			continue
		}
		if !start.Add(dur).Add(buf).After(iv.start) {
			break
		}
		start = iv.end.Add(buf)
	}
	if start.Add(dur).After(d.close) {
		return time.Time{}, false
	}
	return start, true
}

// blocker names the reserved interval that collides with [at, at+dur).
func (d *dayTimeline) blocker(at time.Time, dur, buf time.Duration) string {
	for _, iv := range d.busy {
		if iv.end.Add(buf).After(at) && at.Add(dur).Add(buf).After(iv.start) {
			return iv.title
		}
	}
	return ""
}

func (d *dayTimeline) reserve(iv interval) {
	i := sort.Search(len(d.busy), func(i int) bool { return d.busy[i].start.After(iv.start) })
	d.busy = append(d.busy, interval{})
	copy(d.busy[i+1:], d.busy[i:])
	d.busy[i] = iv
}

// place assigns windows greedily in rank order.
func place(ranked []Candidate, o Options) ([]Task, []Candidate, []Conflict) {
	days := make([]*dayTimeline, o.HorizonDays)
	for i := range days {
		days[i] = newTimeline(o.midnight(i), o)
	}

	var (
		tasks    []Task
		deferred []Candidate
		log      []Conflict
	)
	for _, c := range ranked {
		start, day, ok := findSlot(days, c, o.Buffer)
		if !ok {
			detail := fmt.Sprintf("no free %s slot within %d day(s)", c.Duration, o.HorizonDays)
			if c.HasStart {
				detail = fmt.Sprintf("no free %s slot at or after %s within %d day(s)", c.Duration, clockLabel(c.Start), o.HorizonDays)
			}
			deferred = append(deferred, c)
			log = append(log, Conflict{
				Kind:   ConflictDeferred,
				Domain: c.Domain,
				Title:  c.Title,
				Detail: detail,
			})
			continue
		}
		if entry, moved := shiftEntry(days[0], c, start, day, o.Buffer); moved {
			log = append(log, entry)
		}
		end := start.Add(c.Duration)
		days[day].reserve(interval{start: start, end: end, title: c.Title})
		tasks = append(tasks, Task{
			Domain:   c.Domain,
			Title:    c.Title,
			Priority: c.Priority,
			Start:    start,
			End:      end,
		})
	}
	return tasks, deferred, log
}

// findSlot never places a candidate before its preferred start; one that
// cannot start at or after it on any horizon day is deferred.
func findSlot(days []*dayTimeline, c Candidate, buf time.Duration) (time.Time, int, bool) {
	for i, d := range days {
		from := d.open
		if c.HasStart {
			from = wallClock(d.midnight, c.Start)
		}
		if s, ok := d.fit(from, c.Duration, buf); ok {
			return s, i, true
		}
	}
	return time.Time{}, 0, false
}

// shiftEntry logs a placement that moved away from the preferred start or
// off the first day. It must run before the task is reserved.
func shiftEntry(first *dayTimeline, c Candidate, start time.Time, day int, buf time.Duration) (Conflict, bool) {
	entry := Conflict{Kind: ConflictShifted, Domain: c.Domain, Title: c.Title}
	if !c.HasStart {
		if day == 0 {
			return Conflict{}, false
		}
		entry.Detail = "day full, moved to " + start.Format("2006-01-02 15:04")
		return entry, true
	}
	pref := wallClock(first.midnight, c.Start)
	if day == 0 && start.Equal(pref) {
		return Conflict{}, false
	}
	entry.With = first.blocker(pref, c.Duration, buf)
	switch {
	case entry.With != "":
		entry.Detail = fmt.Sprintf("preferred %s taken, moved to %s", pref.Format("15:04"), start.Format("2006-01-02 15:04"))
	case day == 0:
		entry.Detail = fmt.Sprintf("preferred %s before day window, moved to %s", pref.Format("15:04"), start.Format("2006-01-02 15:04"))
	default:
		entry.Detail = fmt.Sprintf("no room at or after %s, moved to %s", pref.Format("15:04"), start.Format("2006-01-02 15:04"))
	}
	return entry, true
}

// wallClock reads off as a time of day on midnight's date.
func wallClock(midnight time.Time, off time.Duration) time.Time {
	h := int(off / time.Hour)
	m := int(off % time.Hour / time.Minute)
	sec := int(off % time.Minute / time.Second)
	return time.Date(midnight.Year(), midnight.Month(), midnight.Day(), h, m, sec, 0, midnight.Location())
}

func clockLabel(off time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(off/time.Hour), int(off%time.Hour/time.Minute))
}
