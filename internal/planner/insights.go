package planner

import (
	"strings"
	"time"
)

// DefaultInsight is used when the coordination output carries nothing usable.
const DefaultInsight = "Cross-domain insights integrated into the plan."

const maxInsightLines = 5

var connectives = []string{"cross-domain", "because", "therefore", "since", "thus", "consequently"}

// ExtractInsights pulls the cross-domain reasoning out of a coordination
// response: up to five lines with a connective or a stress/budget link,
// else the first paragraph.
func ExtractInsights(coordination string) string {
	var lines []string
	for _, raw := range strings.Split(coordination, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !isInsight(strings.ToLower(line)) {
			continue
		}
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			line = m[1]
		}
		lines = append(lines, cleanMarkdown(line))
		if len(lines) == maxInsightLines {
			break
		}
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n")
	}
	for _, para := range strings.Split(coordination, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			return para
		}
	}
	return DefaultInsight
}

func isInsight(lower string) bool {
	if containsAny(lower, connectives) {
		return true
	}
	if strings.Contains(lower, "stress") && (strings.Contains(lower, "study") || strings.Contains(lower, "finance")) {
		return true
	}
	return strings.Contains(lower, "budget") && (strings.Contains(lower, "health") || strings.Contains(lower, "study"))
}

// StudyDay is one entry of a study schedule.
type StudyDay struct {
	Date  time.Time
	Hours float64
}

// StudyLoad spreads study hours over the days before an exam: the full load
// until the final three days, 70% in the final stretch and a two hour light
// review on the last day. A non-positive day count means one week.
func StudyLoad(daysUntilExam int, hoursPerDay float64, from time.Time) []StudyDay {
	if daysUntilExam <= 0 {
		daysUntilExam = 7
	}
	base := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	out := make([]StudyDay, 0, daysUntilExam)
	for i := 0; i < daysUntilExam; i++ {
		h := hoursPerDay
		switch {
		case i < daysUntilExam-3:
		case i == daysUntilExam-1:
			h = 2
		default:
			h = hoursPerDay * 0.7
		}
		out = append(out, StudyDay{Date: base.AddDate(0, 0, i), Hours: h})
	}
	return out
}
