package prompts

import (
	"sort"
	"strings"
	"time"

	"github.com/jasonoc/plato/internal/schedule"
)

// domainKeywords routes messages to domain prompt sections by plain keyword
// matching. Single user, known vocabulary; nothing smarter is needed.
var domainKeywords = map[string][]string{
	"fitness": {
		"workout", "gym", "weight", "training", "block", "lift", "squat",
		"bench", "nutrition", "mfp", "skincare", "cycling", "progress photos",
		"exercise", "bulk", "cut", "protein", "calories", "incline", "ohp",
		"barbell", "dumbbell", "session", "push day", "leg day", "upper",
		"shoulders", "arms", "deload", "reps", "sets", "kg", "body fat",
		"physique", "muscle", "abs",
	},
	"schedule": {
		"plan", "week", "schedule", "calendar", "approve", "audrey time",
		"event", "check in", "checked in", "block ended",
	},
	"projects": {
		"project", "log", "work", "coding", "nitrogen", "glowbook", "cfa",
		"plato", "leetcode", "goal", "milestone",
	},
	"finance": {
		"spend", "budget", "money", "finance", "revolut", "aib", "csv",
		"saving", "income", "transaction",
	},
	"admin": {
		"task", "todo", "reminder", "birthday", "recurring", "laundry",
		"overdue", "due", "important date",
	},
	"ideas": {
		"idea", "park", "parked",
	},
}

// DetectDomains returns the domains a message touches, sorted for stable
// prompt assembly.
func DetectDomains(message string) []string {
	lower := strings.ToLower(message)
	var detected []string
	for domain, keywords := range domainKeywords {
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				detected = append(detected, domain)
				break
			}
		}
	}
	sort.Strings(detected)
	return detected
}

var planTriggers = []string{
	"plan my week", "plan the week", "schedule my week",
	"what should my week look like", "weekly plan",
	"plan this week", "plan next week",
}

// DetectPlanWeek reports whether the message asks for a week plan and which
// Monday it targets. "next week" plans the upcoming week, anything else the
// current one.
func DetectPlanWeek(message string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(message)
	for _, trigger := range planTriggers {
		if !strings.Contains(lower, trigger) {
			continue
		}
		if strings.Contains(lower, "next week") {
			return schedule.NextWeekStart(now), true
		}
		return schedule.WeekStart(now), true
	}
	return time.Time{}, false
}
