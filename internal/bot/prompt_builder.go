package bot

import (
	"context"
	"strings"

	"github.com/jasonoc/plato/internal/logger"
	"github.com/jasonoc/plato/internal/prompts"
	"github.com/jasonoc/plato/internal/schedule"
	"github.com/jasonoc/plato/internal/services"
)

// buildSystemPrompt assembles the full system prompt for one turn: persona,
// today's situation, action schemas for the detected domains, the live data
// those domains need, and any staged-schedule context.
func (b *Bot) buildSystemPrompt(ctx context.Context, userMessage, scheduleContext string) string {
	now := b.now()
	today := now.Format(schedule.DateLayout)

	soulDoc, err := b.svc.Projects.SoulDoc(ctx)
	if err != nil {
		logger.Error("Failed to load soul doc", "error", err)
	}

	parts := []string{prompts.BasePrompt(now, soulDoc)}

	if events, err := b.svc.Schedule.PlannedEventsForDate(ctx, today); err == nil && len(events) > 0 {
		parts = append(parts, prompts.TodayScheduleBrief(events))
	}
	if overdue, err := b.svc.Tasks.OverdueTasks(ctx); err == nil && len(overdue) > 0 {
		parts = append(parts, prompts.OverdueTasksBrief(overdue))
	}

	domains := prompts.DetectDomains(userMessage)
	if scheduleContext != "" && !contains(domains, "schedule") {
		domains = append(domains, "schedule")
	}

	if header := prompts.ActionCapabilities(domains); header != "" {
		parts = append(parts, header)
	}
	for _, domain := range domains {
		if section := b.domainContext(ctx, domain); section != "" {
			parts = append(parts, section)
		}
	}

	parts = append(parts, prompts.Guidelines)
	if scheduleContext != "" {
		parts = append(parts, scheduleContext)
	}
	return strings.Join(parts, "\n")
}

// domainContext fetches and renders the live data for one domain. Failures
// are logged and return an empty section rather than aborting the turn.
func (b *Bot) domainContext(ctx context.Context, domain string) string {
	switch domain {
	case "projects":
		projects, err := b.svc.Projects.ActiveProjects(ctx)
		if err != nil {
			logger.Error("Failed to load projects context", "error", err)
			return ""
		}
		patterns, _ := b.svc.Projects.UnresolvedPatterns(ctx)
		return prompts.ProjectsContext(projects, patterns)

	case "ideas":
		ideas, err := b.svc.Projects.ParkedIdeas(ctx)
		if err != nil {
			logger.Error("Failed to load ideas context", "error", err)
			return ""
		}
		return prompts.IdeasContext(ideas, b.now())

	case "finance":
		now := b.now()
		summary, err := b.svc.Finance.MonthSummary(ctx, now.Year(), now.Month())
		if err != nil {
			logger.Error("Failed to load finance context", "error", err)
			return ""
		}
		alerts, _ := b.svc.Finance.CheckBudgetAlerts(ctx, now.Year(), now.Month())
		return prompts.FinanceContext(summary, alerts)

	case "admin":
		return b.adminContext(ctx)

	case "fitness":
		return b.fitnessContext(ctx)
	}
	return ""
}

func (b *Bot) adminContext(ctx context.Context) string {
	data := prompts.AdminContextData{Today: b.now().Format(schedule.DateLayout)}
	var err error
	if data.TodayTasks, err = b.svc.Tasks.TasksForDate(ctx, data.Today); err != nil {
		logger.Error("Failed to load today's tasks", "error", err)
	}
	if data.UpcomingTasks, err = b.svc.Tasks.UpcomingTasks(ctx, 7); err != nil {
		logger.Error("Failed to load upcoming tasks", "error", err)
	}
	if data.UpcomingDates, err = b.svc.Tasks.UpcomingDates(ctx, 30); err != nil {
		logger.Error("Failed to load upcoming dates", "error", err)
	}
	if data.Recurring, err = b.svc.Tasks.RecurringTasks(ctx); err != nil {
		logger.Error("Failed to load recurring tasks", "error", err)
	}
	return prompts.AdminContext(data)
}

func (b *Bot) fitnessContext(ctx context.Context) string {
	now := b.now()
	today := now.Format(schedule.DateLayout)

	data := prompts.FitnessContextData{}
	data.Goals, _ = b.svc.Training.ActiveFitnessGoals(ctx)

	block, err := b.svc.Training.CurrentBlock(ctx, today)
	if err == nil {
		data.Block = block
	} else {
		data.ExpectedPhase = services.PhaseForMonth(now.Year(), now.Month())
	}

	twoWeeksAgo := now.AddDate(0, 0, -14).Format(schedule.DateLayout)
	data.Weights, _ = b.svc.Training.DailyLogsRange(ctx, twoWeeksAgo, today)
	data.Lifts, _ = b.svc.Training.LatestLifts(ctx)

	weekStart := schedule.WeekStart(now).Format(schedule.DateLayout)
	weekEnd := schedule.WeekStart(now).AddDate(0, 0, 6).Format(schedule.DateLayout)
	data.WeekSessions, _ = b.svc.Training.SessionsRange(ctx, weekStart, weekEnd)

	weekAgo := now.AddDate(0, 0, -7).Format(schedule.DateLayout)
	data.Nutrition, _ = b.svc.Training.NutritionRange(ctx, weekAgo, today)

	return prompts.FitnessContext(data)
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
