package planner

import "strings"

var classifyRules = []struct {
	domain Domain
	words  []string
}{
	{Health, []string{"health", "exercise", "sleep", "medicine", "meditation", "nutrition", "water", "stretch", "walk", "workout"}},
	{Finance, []string{"finance", "budget", "money", "spend", "save", "saving", "expense", "bill", "investment"}},
	{Study, []string{"study", "learn", "exam", "assignment", "read", "review", "practice", "flashcard"}},
	{Personal, []string{"plan", "schedule", "organize", "coordinate"}},
}

// Classify guesses the domain of free text by keyword. Rules are checked in
// order; General means no rule matched.
func Classify(text string) Domain {
	lower := strings.ToLower(text)
	for _, r := range classifyRules {
		if containsAny(lower, r.words) {
			return r.domain
		}
	}
	return General
}
