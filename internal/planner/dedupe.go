package planner

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// normalizeTitle lower-cases, strips punctuation and collapses spaces.
func normalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// nearDuplicate reports whether the edit distance relative to the longer
// title is below threshold. Inputs must already be normalized.
func nearDuplicate(a, b string, threshold float64) bool {
	if a == b {
		return true
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return true
	}
	return float64(levenshtein.ComputeDistance(a, b))/float64(longest) < threshold
}

// dedupe walks candidates in rank order and folds each near duplicate into
// the earlier (higher-ranked) survivor, keeping the larger priority and duration.
func dedupe(ranked []Candidate, threshold float64) ([]Candidate, []Conflict) {
	var (
		kept []Candidate
		keys []string
		log  []Conflict
	)
	for _, c := range ranked {
		key := normalizeTitle(c.Title)
		merged := false
		for i := range kept {
			if !nearDuplicate(keys[i], key, threshold) {
				continue
			}
			if c.Priority > kept[i].Priority {
				kept[i].Priority = c.Priority
			}
			if c.Duration > kept[i].Duration {
				kept[i].Duration = c.Duration
			}
			log = append(log, Conflict{
				Kind:   ConflictMerged,
				Domain: c.Domain,
				Title:  c.Title,
				With:   kept[i].Title,
				Detail: fmt.Sprintf("near duplicate of %s item", kept[i].Domain),
			})
			merged = true
			break
		}
		if !merged {
			kept = append(kept, c)
			keys = append(keys, key)
		}
	}
	return kept, log
}
