package planner

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	minTitleRunes = 11
	maxTitleRunes = 200
)

var (
	fenceRe    = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	bulletRe   = regexp.MustCompile(`^\s*(?:[-*•+]|\d{1,2}[.)])\s+(.+)$`)
	prefixRe   = regexp.MustCompile(`(?i)^\s*(?:action|task|do)\s*:\s*(.+)$`)
	headingRe  = regexp.MustCompile(`^\s*#+\s*`)
	sentenceRe = regexp.MustCompile(`(?:[^.!?]|\.\d)+\.`)
	durationRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)[\s-]*(hours?|hrs?|h|minutes?|mins?|m)\b`)
	clockRe    = regexp.MustCompile(`(?i)\b([01]?\d|2[0-3]):([0-5]\d)\s*(am|pm)?\b`)
	meridiemRe = regexp.MustCompile(`(?i)\b(1[0-2]|0?[1-9])\s*(am|pm)\b`)
)

var (
	urgentWords = []string{"urgent", "immediately", "critical", "asap"}
	highWords   = []string{"important", "high priority", "must"}
	lowWords    = []string{"optional", "if time", "low priority"}
)

type jsonItem struct {
	Title           string          `json:"title"`
	Task            string          `json:"task"`
	Priority        json.RawMessage `json:"priority"`
	DurationMinutes float64         `json:"duration_minutes"`
	Start           string          `json:"start"`
}

// parse turns one recommendation into candidates. Structured JSON wins over
// line scanning when it yields at least one item.
func parse(domain Domain, text string, o Options) []Candidate {
	if items, ok := extractJSONItems(text); ok {
		if out := fromJSON(domain, items, o); len(out) > 0 {
			return out
		}
	}
	return fromLines(domain, text, o)
}

func extractJSONItems(text string) ([]jsonItem, bool) {
	var bodies []string
	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		bodies = append(bodies, m[1])
	}
	if i, j := strings.Index(text, "{"), strings.LastIndex(text, "}"); i >= 0 && j > i {
		bodies = append(bodies, text[i:j+1])
	}
	if i, j := strings.Index(text, "["), strings.LastIndex(text, "]"); i >= 0 && j > i {
		bodies = append(bodies, text[i:j+1])
	}
	for _, b := range bodies {
		if items, ok := decodeItems(b); ok {
			return items, true
		}
	}
	return nil, false
}

func decodeItems(raw string) ([]jsonItem, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var items []jsonItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, false
		}
		return items, len(items) > 0
	}
	var obj struct {
		Tasks   []jsonItem `json:"tasks"`
		Actions []jsonItem `json:"actions"`
		Items   []jsonItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, false
	}
	switch {
	case len(obj.Tasks) > 0:
		return obj.Tasks, true
	case len(obj.Actions) > 0:
		return obj.Actions, true
	case len(obj.Items) > 0:
		return obj.Items, true
	}
	return nil, false
}

func fromJSON(domain Domain, items []jsonItem, o Options) []Candidate {
	var out []Candidate
	for _, it := range items {
		if len(out) >= o.MaxPerDomain {
			break
		}
		title := it.Title
		if title == "" {
			title = it.Task
		}
		title = truncateRunes(cleanMarkdown(title), maxTitleRunes)
		if title == "" {
			continue
		}
		c := Candidate{
			Domain:   domain,
			Title:    title,
			Priority: jsonPriority(it.Priority, title),
			Duration: o.defaultDuration(domain),
			Index:    len(out),
		}
		if it.DurationMinutes > 0 {
			c.Duration = clampDuration(time.Duration(it.DurationMinutes * float64(time.Minute)))
		} else if d, ok := durationHint(title); ok {
			c.Duration = d
		}
		if off, ok := parseStart(it.Start, o.Location); ok {
			c.Start, c.HasStart = off, true
		} else if off, ok := startHint(title); ok {
			c.Start, c.HasStart = off, true
		}
		out = append(out, c)
	}
	return out
}

func jsonPriority(raw json.RawMessage, title string) Priority {
	if len(raw) == 0 || string(raw) == "null" {
		return priorityHint(title)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if p, ok := ParsePriority(s); ok {
			return p
		}
		return priorityHint(title)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		switch {
		case n <= 1:
			return Low
		case n >= 4:
			return Urgent
		}
		return Priority(int(n))
	}
	return priorityHint(title)
}

func fromLines(domain Domain, text string, o Options) []Candidate {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if len(items) >= o.MaxPerDomain {
			break
		}
		if item, ok := lineItem(line); ok {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		items = sentences(text, o.MaxPerDomain)
	}
	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		c := Candidate{
			Domain:   domain,
			Title:    item,
			Priority: priorityHint(item),
			Duration: o.defaultDuration(domain),
			Index:    len(out),
		}
		if d, ok := durationHint(item); ok {
			c.Duration = d
		}
		if off, ok := startHint(item); ok {
			c.Start, c.HasStart = off, true
		}
		out = append(out, c)
	}
	return out
}

// sentences extracts period-terminated sentences from prose with no list
// structure. Headings and URLs are skipped.
func sentences(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if headingRe.MatchString(line) {
			continue
		}
		for _, m := range sentenceRe.FindAllString(cleanMarkdown(line), -1) {
			if len(out) >= limit {
				return out
			}
			m = strings.TrimSpace(m)
			if strings.Contains(m, "http") || utf8.RuneCountInString(m) < minTitleRunes {
				continue
			}
			out = append(out, truncateRunes(m, maxTitleRunes))
		}
	}
	return out
}

// lineItem extracts an action item from a bullet, numbered or prefixed line.
func lineItem(line string) (string, bool) {
	if headingRe.MatchString(line) {
		return "", false
	}
	var body string
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		body = m[1]
	} else if m := prefixRe.FindStringSubmatch(line); m != nil {
		body = m[1]
	} else {
		return "", false
	}
	body = cleanMarkdown(body)
	if m := prefixRe.FindStringSubmatch(body); m != nil {
		body = strings.TrimSpace(m[1])
	}
	if strings.HasPrefix(body, "http") || strings.HasSuffix(body, ":") {
		return "", false
	}
	if utf8.RuneCountInString(body) < minTitleRunes {
		return "", false
	}
	return truncateRunes(body, maxTitleRunes), true
}

func cleanMarkdown(s string) string {
	s = headingRe.ReplaceAllString(s, "")
	s = strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
	s = strings.Trim(s, " \t*_")
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}

// durationHint reads "25 min", "1.5 hours" or "1h". Values above the
// maximum task length describe targets ("8 hours of sleep") and are ignored.
func durationHint(s string) (time.Duration, bool) {
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	unit := time.Minute
	if strings.HasPrefix(strings.ToLower(m[2]), "h") {
		unit = time.Hour
	}
	d := time.Duration(n * float64(unit))
	if d > maxDuration {
		return 0, false
	}
	return clampDuration(d), true
}

// startHint reads "at 7:30", "07:30", "6pm" or "7:15 am".
func startHint(s string) (time.Duration, bool) {
	if m := clockRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		h, ok := meridiem(h, m[3])
		if !ok {
			return 0, false
		}
		return time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute, true
	}
	if m := meridiemRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		h, ok := meridiem(h, m[2])
		if !ok {
			return 0, false
		}
		return time.Duration(h) * time.Hour, true
	}
	return 0, false
}

func meridiem(h int, suffix string) (int, bool) {
	switch strings.ToLower(suffix) {
	case "":
		return h, h < 24
	case "am":
		if h < 1 || h > 12 {
			return 0, false
		}
		return h % 12, true
	case "pm":
		if h < 1 || h > 12 {
			return 0, false
		}
		return h%12 + 12, true
	}
	return 0, false
}

// parseStart accepts "HH:MM" or RFC3339 (converted to the plan location).
func parseStart(s string, loc *time.Location) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.In(loc)
		return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, true
	}
	return startHint(s)
}

func priorityHint(s string) Priority {
	lower := strings.ToLower(s)
	switch {
	case containsAny(lower, urgentWords):
		return Urgent
	case containsAny(lower, highWords):
		return High
	case containsAny(lower, lowWords):
		return Low
	}
	return Medium
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
