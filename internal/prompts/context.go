package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jasonoc/plato/internal/database"
	"github.com/jasonoc/plato/internal/schedule"
)

var statusIcons = map[string]string{
	"planned":     "⬜",
	"completed":   "✅",
	"partial":     "🟡",
	"skipped":     "❌",
	"audrey_time": "💕",
	"rescheduled": "🔄",
}

// TodayScheduleBrief renders today's planned blocks, always included so the
// model knows what the day looks like. Empty when nothing is planned.
func TodayScheduleBrief(events []database.ScheduleEvent) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n## TODAY'S SCHEDULE\n")
	for _, e := range events {
		icon, ok := statusIcons[e.Status]
		if !ok {
			icon = "⬜"
		}
		fmt.Fprintf(&b, "  %s %s-%s: %s [%s]\n", icon, e.StartTime, e.EndTime, e.Title, e.Status)
	}
	return b.String()
}

// OverdueTasksBrief renders overdue one-off tasks for accountability.
func OverdueTasksBrief(tasks []database.AdminTask) string {
	if len(tasks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n## ⚠️ OVERDUE TASKS\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "  🔴 %s (due %s)\n", t.Title, t.DueDate)
	}
	return b.String()
}

// PendingPlanBrief tells the model a staged plan awaits approval, so change
// requests regenerate it rather than starting fresh.
func PendingPlanBrief(eventCount int) string {
	return fmt.Sprintf(`

## PENDING PLAN (awaiting approval)
There is a pending weekly plan with %d events. The user may be requesting changes to it. If they request changes, generate a new plan_week action with the modified events.
`, eventCount)
}

// SchedulePrompt embeds the week's template and the scheduling rules for the
// plan-week flow.
func SchedulePrompt(weekStart time.Time, template schedule.Template) string {
	templateJSON, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		templateJSON = []byte("{}")
	}

	return fmt.Sprintf(`
## WEEKLY SCHEDULE PLANNING

You are planning Jason's week starting %s.

### Weekly Template
%s

### Scheduling Rules
1. NEVER schedule over "work", "commute", "commute_prep", or "fixed" blocks
2. Only fill "free" blocks
3. CFA study gets priority — minimum 10 hours/week
4. Side projects (Nitrogen Tracker, Glowbook) — aim for 8-10 hours/week combined
5. LeetCode/interview prep — 3 sessions of 30-60 mins
6. Rest/downtime — at least 1 hour every evening, one long rest block on weekend
7. Exercise — Mon & Tue gym sessions are already fixed in template
8. Keep Sunday evening light — wind down for the work week
9. Batch similar work: don't alternate between CFA and coding in the same evening
10. Morning WFH blocks (07:30-09:00) are good for CFA study — fresh mind, no distractions
11. Audrey time may be declared spontaneously — leave some buffer, don't over-optimise

### Response Format
Return a plan_week action with an "events" array. Each event:
`+"```"+`
{
    "date": "YYYY-MM-DD",
    "start": "HH:MM",
    "end": "HH:MM",
    "title": "Short descriptive title",
    "description": "Optional detail or focus area",
    "category": "cfa|nitrogen|glowbook|plato|leetcode|rest|exercise|personal|citco|audrey"
}
`+"```"+`

Include ALL allocated blocks for the week — study, projects, rest, exercise.
Be specific with titles: "CFA - Ethics Chapter 3" not just "CFA Study".
`, weekStart.Format("Monday January 02, 2006"), templateJSON)
}
