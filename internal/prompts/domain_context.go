package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/jasonoc/plato/internal/database"
	"github.com/jasonoc/plato/internal/schedule"
	"github.com/jasonoc/plato/internal/services"
)

// Context renderers take already-fetched data so they stay pure; the bot's
// prompt builder does the fetching.

func ProjectsContext(projects []services.ProjectDetail, patterns []database.Pattern) string {
	var b strings.Builder

	if len(projects) > 0 {
		b.WriteString("\n## ACTIVE PROJECTS\n")
		for _, p := range projects {
			fmt.Fprintf(&b, "\n### %s (%s)\n", p.Name, p.Slug)
			fmt.Fprintf(&b, "Intent: %s\n", p.Intent)
			fmt.Fprintf(&b, "Target: %s\n", orDefault(p.TargetDate, "No deadline"))
			if p.EstimatedWeeklyHours > 0 {
				fmt.Fprintf(&b, "Weekly hours allocated: %.1f\n", p.EstimatedWeeklyHours)
			}
			fmt.Fprintf(&b, "Stick/Twist: %s\n", orDefault(p.StickTwistCriteria, "Not defined"))

			if len(p.CurrentGoals) > 0 {
				b.WriteString("Current goals:\n")
				for _, g := range p.CurrentGoals {
					fmt.Fprintf(&b, "  - [%s] %s\n", g.Timeframe, g.GoalText)
				}
			}
			if len(p.RecentLogs) > 0 {
				b.WriteString("Recent activity:\n")
				for i, log := range p.RecentLogs {
					if i >= 3 {
						break
					}
					fmt.Fprintf(&b, "  - %s: %s\n", log.CreatedAt.Format(schedule.DateLayout), log.Summary)
				}
			}
		}
	}

	if len(patterns) > 0 {
		b.WriteString("\n## UNRESOLVED PATTERNS\n")
		for _, pat := range patterns {
			fmt.Fprintf(&b, "- [%s] %s\n", pat.PatternType, pat.Description)
		}
	}
	return b.String()
}

func IdeasContext(ideas []database.Idea, now time.Time) string {
	if len(ideas) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n## IDEA PARKING LOT\n")
	for _, idea := range ideas {
		parked := idea.CreatedAt.Format(schedule.DateLayout)
		daysLeft := 0
		if eligible, err := time.Parse(schedule.DateLayout, idea.EligibleDate); err == nil {
			daysLeft = int(eligible.Sub(now).Hours() / 24)
		}
		if daysLeft > 0 {
			fmt.Fprintf(&b, "- 💡 %s (parked %s, %d days until eligible)\n", idea.Idea, parked, daysLeft)
		} else {
			fmt.Fprintf(&b, "- 🟢 %s (ELIGIBLE — parked %s, ready for review)\n", idea.Idea, parked)
		}
	}
	return b.String()
}

func FinanceContext(summary *services.MonthlySummary, alerts []services.BudgetAlert) string {
	if summary == nil || summary.TransactionCount == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n## FINANCE — %s\n", summary.Month)
	fmt.Fprintf(&b, "  Income: €%.2f | Spending: €%.2f\n", summary.TotalIncome, summary.TotalSpending)
	fmt.Fprintf(&b, "  Net: €%.2f | Savings rate: %.1f%%\n", summary.Net, summary.SavingsRatePct)

	if len(summary.ByCategory) > 0 {
		top := summary.ByCategory
		if len(top) > 3 {
			top = top[:3]
		}
		parts := make([]string, 0, len(top))
		for _, entry := range top {
			parts = append(parts, fmt.Sprintf("%s €%.2f", entry.Category, entry.Spent))
		}
		fmt.Fprintf(&b, "  Top spend: %s\n", strings.Join(parts, ", "))
	}

	for _, alert := range alerts {
		icon := "🟡"
		if alert.Status == "over" {
			icon = "🔴"
		}
		fmt.Fprintf(&b, "  %s %s: €%.2f/€%.2f\n", icon, alert.Category, alert.Spent, alert.Limit)
	}
	return b.String()
}

// AdminContextData bundles what the admin brief renders.
type AdminContextData struct {
	TodayTasks    []services.DatedTask
	UpcomingTasks []database.AdminTask
	UpcomingDates []services.UpcomingDate
	Recurring     []database.AdminTask
	Today         string
}

var weekdayShort = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func AdminContext(data AdminContextData) string {
	var b strings.Builder
	hasData := false

	if len(data.TodayTasks) > 0 {
		hasData = true
		b.WriteString("\n## TODAY'S TASKS\n")
		for _, t := range data.TodayTasks {
			icon := "📌"
			if t.Overdue {
				icon = "🔴"
			} else if t.RecurringDue {
				icon = "🔁"
			}
			line := "  " + icon + " " + t.Title
			if t.Priority != "" && t.Priority != "normal" {
				line += " [" + strings.ToUpper(t.Priority) + "]"
			}
			if t.Overdue {
				line += " ⚠️ OVERDUE"
			}
			b.WriteString(line + "\n")
		}
	}

	var upcoming []database.AdminTask
	for _, t := range data.UpcomingTasks {
		if t.DueDate != data.Today {
			upcoming = append(upcoming, t)
		}
	}
	if len(upcoming) > 0 {
		hasData = true
		b.WriteString("\n## UPCOMING TASKS (7 days)\n")
		for _, t := range upcoming {
			fmt.Fprintf(&b, "  📌 %s: %s\n", t.DueDate, t.Title)
		}
	}

	if len(data.UpcomingDates) > 0 {
		hasData = true
		b.WriteString("\n## UPCOMING DATES\n")
		for _, d := range data.UpcomingDates {
			ageStr := ""
			if d.Age != nil {
				ageStr = fmt.Sprintf(" (turning %d)", *d.Age)
			}
			switch {
			case d.DaysUntil == 0:
				fmt.Fprintf(&b, "  🎂 TODAY: %s%s\n", d.Title, ageStr)
			case d.DaysUntil <= d.ReminderDays:
				fmt.Fprintf(&b, "  🎂 %s: %s%s — %d days!\n", d.NextDate, d.Title, ageStr, d.DaysUntil)
			default:
				fmt.Fprintf(&b, "  📅 %s: %s%s — %d days\n", d.NextDate, d.Title, ageStr, d.DaysUntil)
			}
		}
	}

	if len(data.Recurring) > 0 {
		hasData = true
		b.WriteString("\n## RECURRING TASKS\n")
		for _, t := range data.Recurring {
			switch {
			case t.Recurring == "weekly" && t.RecurringDay != nil && *t.RecurringDay >= 0 && *t.RecurringDay < 7:
				fmt.Fprintf(&b, "  🔁 %s (every %s)\n", t.Title, weekdayShort[*t.RecurringDay])
			case t.Recurring == "monthly" && t.RecurringDay != nil:
				fmt.Fprintf(&b, "  🔁 %s (monthly, day %d)\n", t.Title, *t.RecurringDay)
			default:
				fmt.Fprintf(&b, "  🔁 %s (%s)\n", t.Title, t.Recurring)
			}
		}
	}

	if !hasData {
		return ""
	}
	return b.String()
}

// FitnessContextData bundles what the fitness brief renders.
type FitnessContextData struct {
	Goals         []database.FitnessGoal
	Block         *database.TrainingBlock
	ExpectedPhase string // when no block is active
	Weights       []database.DailyLog
	Lifts         map[string]database.MainLiftProgress
	WeekSessions  []services.SessionWithExercises
	Nutrition     []database.NutritionLog
}

func FitnessContext(data FitnessContextData) string {
	var b strings.Builder
	b.WriteString("\n## FITNESS STATUS\n")
	hasData := false

	if len(data.Goals) > 0 {
		hasData = true
		b.WriteString("\n### Fitness Goals:\n")
		byCat := make(map[string][]database.FitnessGoal)
		var order []string
		for _, g := range data.Goals {
			if _, seen := byCat[g.Category]; !seen {
				order = append(order, g.Category)
			}
			byCat[g.Category] = append(byCat[g.Category], g)
		}
		for _, cat := range order {
			fmt.Fprintf(&b, "  %s:\n", strings.ToUpper(cat))
			for _, g := range byCat[cat] {
				line := "    🎯 " + g.GoalText
				if g.TargetValue != "" {
					line += " → " + g.TargetValue
				}
				if g.TargetDate != "" {
					line += " (by " + g.TargetDate + ")"
				}
				b.WriteString(line + "\n")
			}
		}
	}

	if data.Block != nil {
		hasData = true
		fmt.Fprintf(&b, "\n### Current Block: %s (%s)\n", data.Block.Name, strings.ToUpper(data.Block.Phase))
		fmt.Fprintf(&b, "  %s → %s\n", data.Block.StartDate, data.Block.EndDate)
		if data.Block.CalorieTarget != nil && data.Block.ProteinTarget != nil {
			fmt.Fprintf(&b, "  Targets: %d cal / %dg protein\n", *data.Block.CalorieTarget, *data.Block.ProteinTarget)
		}
		if data.Block.WeightStart != nil {
			fmt.Fprintf(&b, "  Weight start: %.1fkg\n", *data.Block.WeightStart)
		}
	} else if data.ExpectedPhase != "" {
		hasData = true
		fmt.Fprintf(&b, "\n### ⚠️ No active block! Expected phase: %s\n", strings.ToUpper(data.ExpectedPhase))
		b.WriteString("  Suggest: 'Plan my [month] workouts' to create the block.\n")
	}

	var weights []database.DailyLog
	for _, w := range data.Weights {
		if w.WeightKg != nil {
			weights = append(weights, w)
		}
	}
	if len(weights) > 0 {
		hasData = true
		latest := weights[len(weights)-1]
		fmt.Fprintf(&b, "\n### Weight: %.1fkg (%s)\n", *latest.WeightKg, latest.Date)
		if len(weights) >= 2 {
			change := *weights[len(weights)-1].WeightKg - *weights[0].WeightKg
			fmt.Fprintf(&b, "  14-day trend: %+.1fkg\n", change)
		}
	}

	if len(data.Lifts) > 0 {
		hasData = true
		b.WriteString("\n### Main Lifts (latest):\n")
		for _, key := range []string{"incline_bench", "barbell_row", "squat", "ohp"} {
			entry, ok := data.Lifts[key]
			if !ok {
				continue
			}
			cfg := services.MainLifts[key]
			status := "⏳"
			if entry.HitTarget {
				status = "🔥 HIT"
			}
			line := fmt.Sprintf("  %s %s: %.1fkg × %d×%d", status, cfg.Name, entry.WeightKg, entry.Sets, entry.Reps)
			if entry.HitTarget && entry.NextWeightKg != nil {
				if entry.Confirmed {
					line += fmt.Sprintf(" → CONFIRMED: %.1fkg next", *entry.NextWeightKg)
				} else {
					line += fmt.Sprintf(" → PENDING: move to %.1fkg?", *entry.NextWeightKg)
				}
			}
			b.WriteString(line + "\n")
		}
	}

	if len(data.WeekSessions) > 0 {
		hasData = true
		completed := 0
		for _, s := range data.WeekSessions {
			if s.Completed {
				completed++
			}
		}
		fmt.Fprintf(&b, "\n### This Week: %d/4 sessions\n", completed)
		for _, s := range data.WeekSessions {
			icon := "❌"
			if s.Completed {
				icon = "✅"
			}
			line := fmt.Sprintf("  %s %s: %s", icon, s.Date, s.SessionType)
			if s.Feedback != "" {
				line += " — " + s.Feedback
			}
			b.WriteString(line + "\n")
		}
	}

	if len(data.Nutrition) > 0 {
		hasData = true
		totalCal, totalProt, lowCal, lowProt := 0, 0, 0, 0
		for _, n := range data.Nutrition {
			totalCal += n.Calories
			totalProt += n.ProteinG
			if n.Calories < 2800 {
				lowCal++
			}
			if n.ProteinG < 160 {
				lowProt++
			}
		}
		fmt.Fprintf(&b, "\n### Nutrition (7-day avg): %d cal / %dg protein (%d days logged)\n",
			totalCal/len(data.Nutrition), totalProt/len(data.Nutrition), len(data.Nutrition))
		if lowCal > 0 {
			fmt.Fprintf(&b, "  ⚠️ %d days under 2800 cal\n", lowCal)
		}
		if lowProt > 0 {
			fmt.Fprintf(&b, "  ⚠️ %d days under 160g protein\n", lowProt)
		}
	}

	if !hasData {
		return ""
	}
	return b.String()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
