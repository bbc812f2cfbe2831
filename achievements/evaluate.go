package achievements

import "habitxp/models"

// Facts is the slice of a user's statistics a requirement is judged on.
// Only the fields the requirement's kind reads need to be filled.
type Facts struct {
	XPTotal     int
	Completions int
	// RecentDays holds distinct completion dates, most recent first.
	RecentDays      []models.Day
	TypeCompletions map[string]int
}

// Evaluate reports whether req is satisfied by f. A threshold of zero or
// less is always satisfied.
func Evaluate(req Requirement, f Facts) bool {
	if req.N <= 0 {
		return req.Kind != 0
	}
	switch req.Kind {
	case KindTotalCompletions:
		return f.Completions >= req.N
	case KindConsecutiveDays:
		return IsStreak(f.RecentDays, req.N)
	case KindXPThreshold:
		return f.XPTotal >= req.N
	case KindCompletionsOfType:
		return f.TypeCompletions[req.Type] >= req.N
	default:
		return false
	}
}

// IsStreak reports whether the first n entries of days (descending,
// distinct) are consecutive calendar days. Older history is ignored, so
// a broken recent run is not rescued by an earlier longer one.
func IsStreak(days []models.Day, n int) bool {
	if n <= 0 {
		return true
	}
	if len(days) < n {
		return false
	}
	for i := 0; i < n-1; i++ {
		if days[i].DaysSince(days[i+1]) != 1 {
			return false
		}
	}
	return true
}
