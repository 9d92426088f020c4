package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/jasonoc/plato/internal/calendar"
	"github.com/jasonoc/plato/internal/database"
	apperrors "github.com/jasonoc/plato/internal/errors"
	"github.com/jasonoc/plato/internal/logger"
	"github.com/jasonoc/plato/internal/schedule"
)

// CalendarClient is the slice of the Google Calendar wrapper the schedule
// service needs. A nil client means calendar sync is disabled; tracking rows
// are still written.
type CalendarClient interface {
	CreateEvent(ctx context.Context, ev calendar.Event) error
	ClearWeek(ctx context.Context, weekStart time.Time) int
	CancelFrom(ctx context.Context, date, fromTime string) []string
}

// ScheduleService owns plan staging, approval, adherence tracking, check-ins
// and evening cancellations.
type ScheduleService struct {
	db  *gorm.DB
	cal CalendarClient
	now func() time.Time
}

func NewScheduleService(db *gorm.DB, cal CalendarClient) *ScheduleService {
	return &ScheduleService{db: db, cal: cal, now: time.Now}
}

// ---------------- plan staging ----------------

// StagePlan replaces any pending plan with the given events. Last write wins:
// an unapproved proposal is silently discarded by the next one. That is the
// contract, not an accident.
func (s *ScheduleService) StagePlan(ctx context.Context, events []calendar.Event) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	tx := s.db.WithContext(ctx)
	if err := tx.Where("1 = 1").Delete(&database.PendingPlan{}).Error; err != nil {
		return fmt.Errorf("failed to clear previous pending plan: %w", err)
	}
	if err := tx.Create(&database.PendingPlan{Events: string(payload)}).Error; err != nil {
		return fmt.Errorf("failed to stage plan: %w", err)
	}
	return nil
}

// PendingPlan returns the staged events, or ErrNoPendingPlan.
func (s *ScheduleService) PendingPlan(ctx context.Context) ([]calendar.Event, error) {
	var row database.PendingPlan
	err := s.db.WithContext(ctx).Order("created_at DESC").First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNoPendingPlan
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending plan: %w", err)
	}

	var events []calendar.Event
	if err := json.Unmarshal([]byte(row.Events), &events); err != nil {
		return nil, fmt.Errorf("failed to decode pending plan: %w", err)
	}
	return events, nil
}

// ClearPendingPlan is idempotent.
func (s *ScheduleService) ClearPendingPlan(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&database.PendingPlan{}).Error; err != nil {
		return fmt.Errorf("failed to clear pending plan: %w", err)
	}
	return nil
}

// ---------------- plan approval ----------------

// ApprovalResult reports what the approval saga accomplished, for the
// user-facing confirmation message.
type ApprovalResult struct {
	Cleared int // old calendar events removed
	Created int // calendar events successfully created
	Tracked int // adherence rows inserted
}

// ApprovePlan pushes the pending plan to the external calendar and mirrors it
// into adherence-tracking rows. The steps form a best-effort saga: calendar
// failures are logged and skipped, never rolled back, and tracking inserts do
// not depend on calendar success. A crash mid-way can leave the calendar and
// the tracker inconsistent; for a single-user tool that is accepted and
// recoverable by re-planning the week.
func (s *ScheduleService) ApprovePlan(ctx context.Context) (*ApprovalResult, error) {
	events, err := s.PendingPlan(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, apperrors.ErrNoPendingPlan
	}

	// The week boundary is inferred from the first proposed event. A proposal
	// spanning multiple weeks only clears the first week's old events.
	firstDate, err := time.Parse(schedule.DateLayout, events[0].Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date on first proposed event: %w", err)
	}
	weekStart := schedule.WeekStart(firstDate)

	result := &ApprovalResult{}

	if s.cal != nil {
		result.Cleared = s.cal.ClearWeek(ctx, weekStart)
		for _, ev := range events {
			if err := s.cal.CreateEvent(ctx, ev); err != nil {
				logger.Error("Failed to create calendar event", "title", ev.Title, "error", err)
				continue
			}
			result.Created++
		}
	} else {
		logger.Warn("Calendar sync disabled — approving plan with tracking only")
	}

	for _, ev := range events {
		row := &database.ScheduleEvent{
			Date:        ev.Date,
			StartTime:   ev.Start,
			EndTime:     ev.End,
			Title:       ev.Title,
			Description: ev.Description,
			Category:    categoryOrDefault(ev.Category),
			Status:      "planned",
		}
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			logger.Error("Failed to insert schedule event", "title", ev.Title, "error", err)
			continue
		}
		result.Tracked++
	}

	if err := s.ClearPendingPlan(ctx); err != nil {
		return result, err
	}
	return result, nil
}

func categoryOrDefault(category string) string {
	if category == "" {
		return "personal"
	}
	return category
}

// ---------------- queries and check-in ----------------

func (s *ScheduleService) PlannedEventsForDate(ctx context.Context, date string) ([]database.ScheduleEvent, error) {
	var events []database.ScheduleEvent
	if err := s.db.WithContext(ctx).
		Where("date = ?", date).
		Order("start_time").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get events for %s: %w", date, err)
	}
	return events, nil
}

// UpdateEvent sets the status and optional outcome text on one tracked block.
// Transitions are not validated: re-checking-in on a completed block simply
// overwrites, by design of a permissive single-user tool.
func (s *ScheduleService) UpdateEvent(ctx context.Context, eventID uint, status, actualSummary, gapReason string) error {
	updates := map[string]interface{}{"status": status}
	if actualSummary != "" {
		updates["actual_summary"] = actualSummary
	}
	if gapReason != "" {
		updates["gap_reason"] = gapReason
	}
	if err := s.db.WithContext(ctx).
		Model(&database.ScheduleEvent{}).
		Where("id = ?", eventID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update schedule event %d: %w", eventID, err)
	}
	return nil
}

// CheckIn attaches an actual outcome to a block. With eventID == 0 it
// resolves the most recent planned block for today whose end time has passed;
// when none exists it returns ErrNoMatch so the caller can phrase a friendly
// "nothing to check in against".
func (s *ScheduleService) CheckIn(ctx context.Context, eventID uint, status, actualSummary, gapReason string) (*database.ScheduleEvent, error) {
	if eventID != 0 {
		if err := s.UpdateEvent(ctx, eventID, status, actualSummary, gapReason); err != nil {
			return nil, err
		}
		var ev database.ScheduleEvent
		if err := s.db.WithContext(ctx).First(&ev, eventID).Error; err != nil {
			return nil, fmt.Errorf("failed to reload event %d: %w", eventID, err)
		}
		return &ev, nil
	}

	now := s.now()
	today := now.Format(schedule.DateLayout)
	nowStr := now.Format(schedule.TimeLayout)

	events, err := s.PlannedEventsForDate(ctx, today)
	if err != nil {
		return nil, err
	}

	var target *database.ScheduleEvent
	for i := range events {
		e := &events[i]
		if e.Status == "planned" && e.EndTime <= nowStr {
			target = e
		}
	}
	if target == nil {
		return nil, apperrors.ErrNoMatch
	}

	if err := s.UpdateEvent(ctx, target.ID, status, actualSummary, gapReason); err != nil {
		return nil, err
	}
	target.Status = status
	return target, nil
}

// ---------------- audrey time ----------------

// AudreyTimeResult reports what an evening cancellation bumped.
type AudreyTimeResult struct {
	CancelledTitles []string // removed from the external calendar
	MarkedCount     int      // tracked blocks flipped to audrey_time
}

// CancelEvening removes the evening's calendar events from fromTime on and
// marks the corresponding planned blocks with the audrey_time status so the
// adherence numbers still account for the evening, distinct from skipped.
// Nothing matching is an empty result, not an error.
func (s *ScheduleService) CancelEvening(ctx context.Context, date, fromTime string) (*AudreyTimeResult, error) {
	result := &AudreyTimeResult{}

	if s.cal != nil {
		result.CancelledTitles = s.cal.CancelFrom(ctx, date, fromTime)
	}

	var affected []database.ScheduleEvent
	if err := s.db.WithContext(ctx).
		Where("date = ? AND status = ? AND start_time >= ?", date, "planned", fromTime).
		Find(&affected).Error; err != nil {
		return nil, fmt.Errorf("failed to find evening blocks: %w", err)
	}

	for _, ev := range affected {
		if err := s.db.WithContext(ctx).
			Model(&database.ScheduleEvent{}).
			Where("id = ?", ev.ID).
			Update("status", "audrey_time").Error; err != nil {
			logger.Error("Failed to mark audrey time", "title", ev.Title, "error", err)
			continue
		}
		result.MarkedCount++
		if s.cal == nil {
			result.CancelledTitles = append(result.CancelledTitles, ev.Title)
		}
	}
	return result, nil
}

// AddEvent creates a single one-off calendar event outside the weekly plan.
func (s *ScheduleService) AddEvent(ctx context.Context, ev calendar.Event) error {
	if s.cal == nil {
		return apperrors.New(apperrors.ErrorTypeExternal, "CALENDAR_DISABLED", "calendar sync is not configured")
	}
	return s.cal.CreateEvent(ctx, ev)
}

// ---------------- adherence ----------------

type CategoryAdherence struct {
	Completed int
	Total     int
}

type AdherenceStats struct {
	Total        int
	ByStatus     map[string]int
	ByCategory   map[string]CategoryAdherence
	AdherencePct float64 // (completed + 0.5*partial) / total * 100, 1 decimal
}

// WeeklyAdherence aggregates tracked blocks for [weekStart, weekStart+7d).
// Zero events yields a 0 percentage, never a division error.
func (s *ScheduleService) WeeklyAdherence(ctx context.Context, weekStart string) (*AdherenceStats, error) {
	start, err := time.Parse(schedule.DateLayout, weekStart)
	if err != nil {
		return nil, fmt.Errorf("invalid week start %q: %w", weekStart, err)
	}
	weekEnd := start.AddDate(0, 0, 7).Format(schedule.DateLayout)

	var events []database.ScheduleEvent
	if err := s.db.WithContext(ctx).
		Where("date >= ? AND date < ?", weekStart, weekEnd).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to load week events: %w", err)
	}

	stats := &AdherenceStats{
		Total:      len(events),
		ByStatus:   make(map[string]int),
		ByCategory: make(map[string]CategoryAdherence),
	}
	for _, ev := range events {
		stats.ByStatus[ev.Status]++
		cat := stats.ByCategory[ev.Category]
		cat.Total++
		if ev.Status == "completed" {
			cat.Completed++
		}
		stats.ByCategory[ev.Category] = cat
	}

	if stats.Total > 0 {
		weighted := float64(stats.ByStatus["completed"]) + 0.5*float64(stats.ByStatus["partial"])
		stats.AdherencePct = math.Round(weighted/float64(stats.Total)*1000) / 10
	}
	return stats, nil
}

// EventsJustEnded returns today's planned blocks whose end time falls inside
// (now-window, now]. The nudge poll uses it to prompt for a check-in.
func (s *ScheduleService) EventsJustEnded(ctx context.Context, window time.Duration) ([]database.ScheduleEvent, error) {
	now := s.now()
	today := now.Format(schedule.DateLayout)
	windowStart := now.Add(-window).Format(schedule.TimeLayout)
	nowStr := now.Format(schedule.TimeLayout)

	var events []database.ScheduleEvent
	if err := s.db.WithContext(ctx).
		Where("date = ? AND status = ? AND end_time >= ? AND end_time <= ?", today, "planned", windowStart, nowStr).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to poll ended blocks: %w", err)
	}
	return events, nil
}
