package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jasonoc/plato/internal/logger"
	"github.com/jasonoc/plato/internal/schedule"
)

// nudgeWindow is how far back the event-ended poll looks. It matches the
// poll interval so each event fires exactly one check-in prompt.
const nudgeWindow = 5 * time.Minute

// StartNudges schedules the proactive messages: post-block check-ins every
// five minutes, a morning briefing, and an afternoon overdue reminder.
// The returned cron is already running; stop it on shutdown.
func (b *Bot) StartNudges(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc("*/5 * * * *", func() { b.checkEndedEvents(ctx) }); err != nil {
		return nil, fmt.Errorf("failed to schedule check-in nudges: %w", err)
	}
	if _, err := c.AddFunc("30 7 * * *", func() { b.sendMorningBriefing(ctx) }); err != nil {
		return nil, fmt.Errorf("failed to schedule morning briefing: %w", err)
	}
	if _, err := c.AddFunc("0 14 * * *", func() { b.checkOverdueTasks(ctx) }); err != nil {
		return nil, fmt.Errorf("failed to schedule overdue check: %w", err)
	}

	c.Start()
	logger.Info("Nudge scheduler started")
	return c, nil
}

// notify pushes a proactive message to the owner.
func (b *Bot) notify(text string) {
	if err := b.reply(b.allowedUserID, text); err != nil {
		logger.Error("Failed to send nudge", "error", err)
	}
}

// checkEndedEvents prompts a check-in for any planned block that just ended.
func (b *Bot) checkEndedEvents(ctx context.Context) {
	events, err := b.svc.Schedule.EventsJustEnded(ctx, nudgeWindow)
	if err != nil {
		logger.Error("Nudge poll failed", "error", err)
		return
	}
	for _, event := range events {
		b.notify(fmt.Sprintf("⏰ '%s' just ended. How did it go?\n\nTell me what you actually did and I'll log it.", event.Title))
	}
}

// sendMorningBriefing summarises today's tasks, upcoming dates and schedule.
func (b *Bot) sendMorningBriefing(ctx context.Context) {
	now := b.now()
	today := now.Format(schedule.DateLayout)

	var msg strings.Builder
	fmt.Fprintf(&msg, "☀️ Morning, Jason. Here's your %s:\n", now.Format("Monday"))

	if tasks, err := b.svc.Tasks.TasksForDate(ctx, today); err == nil && len(tasks) > 0 {
		msg.WriteString("\nTasks:\n")
		for _, t := range tasks {
			icon := "📌"
			if t.Overdue {
				icon = "🔴"
			} else if t.RecurringDue {
				icon = "🔁"
			}
			line := fmt.Sprintf("  %s %s", icon, t.Title)
			if t.DueTime != "" {
				line += " at " + t.DueTime
			}
			msg.WriteString(line + "\n")
		}
	}

	if dates, err := b.svc.Tasks.UpcomingDates(ctx, 7); err == nil && len(dates) > 0 {
		msg.WriteString("\nComing up:\n")
		for _, d := range dates {
			fmt.Fprintf(&msg, "  🗓️ %s — %s (%d days)\n", d.Title, d.NextDate, d.DaysUntil)
		}
	}

	if events, err := b.svc.Schedule.PlannedEventsForDate(ctx, today); err == nil && len(events) > 0 {
		msg.WriteString("\nSchedule:\n")
		for _, e := range events {
			fmt.Fprintf(&msg, "  %s-%s: %s\n", e.StartTime, e.EndTime, e.Title)
		}
	}

	b.notify(strings.TrimRight(msg.String(), "\n"))
}

// checkOverdueTasks sends the afternoon overdue reminder.
func (b *Bot) checkOverdueTasks(ctx context.Context) {
	overdue, err := b.svc.Tasks.OverdueTasks(ctx)
	if err != nil {
		logger.Error("Overdue check failed", "error", err)
		return
	}
	if len(overdue) == 0 {
		return
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "⚠️ You have %d overdue task(s):\n", len(overdue))
	for _, t := range overdue {
		fmt.Fprintf(&msg, "  🔴 %s (due %s)\n", t.Title, t.DueDate)
	}
	msg.WriteString("\nDo them, reschedule, or tell me to skip.")
	b.notify(msg.String())
}
