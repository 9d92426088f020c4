package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jasonoc/plato/internal/calendar"
	"github.com/jasonoc/plato/internal/database"
	apperrors "github.com/jasonoc/plato/internal/errors"
)

// testDB creates an in-memory SQLite database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// fakeCalendar records calls and can be told to fail specific titles.
type fakeCalendar struct {
	created    []calendar.Event
	failTitles map[string]bool
	cleared    int
	cancelled  []string
}

func (f *fakeCalendar) CreateEvent(_ context.Context, ev calendar.Event) error {
	if f.failTitles[ev.Title] {
		return errors.New("calendar api unavailable")
	}
	f.created = append(f.created, ev)
	return nil
}

func (f *fakeCalendar) ClearWeek(_ context.Context, _ time.Time) int {
	return f.cleared
}

func (f *fakeCalendar) CancelFrom(_ context.Context, _, _ string) []string {
	return f.cancelled
}

func testEvents() []calendar.Event {
	return []calendar.Event{
		{Date: "2026-02-02", Start: "19:30", End: "21:00", Title: "CFA study", Category: "cfa"},
		{Date: "2026-02-03", Start: "19:40", End: "21:00", Title: "Nitrogen backend", Category: "nitrogen"},
		{Date: "2026-02-04", Start: "20:00", End: "21:30", Title: "Leetcode", Category: "leetcode"},
	}
}

func TestStagePlan_LastWriteWins(t *testing.T) {
	svc := NewScheduleService(testDB(t), nil)
	ctx := context.Background()

	if err := svc.StagePlan(ctx, testEvents()); err != nil {
		t.Fatalf("first stage: %v", err)
	}
	second := []calendar.Event{
		{Date: "2026-02-09", Start: "19:30", End: "21:00", Title: "Glowbook polish", Category: "glowbook"},
	}
	if err := svc.StagePlan(ctx, second); err != nil {
		t.Fatalf("second stage: %v", err)
	}

	pending, err := svc.PendingPlan(ctx)
	if err != nil {
		t.Fatalf("pending plan: %v", err)
	}
	if len(pending) != 1 || pending[0].Title != "Glowbook polish" {
		t.Errorf("pending = %+v, want only the second proposal", pending)
	}
}

func TestApprovePlan_NoPending(t *testing.T) {
	svc := NewScheduleService(testDB(t), nil)
	_, err := svc.ApprovePlan(context.Background())
	if !apperrors.IsNotFound(err) {
		t.Errorf("err = %v, want not-found ErrNoPendingPlan", err)
	}
}

func TestApprovePlan_CalendarFailuresStillTrack(t *testing.T) {
	cal := &fakeCalendar{failTitles: map[string]bool{"Nitrogen backend": true}, cleared: 4}
	svc := NewScheduleService(testDB(t), cal)
	ctx := context.Background()

	if err := svc.StagePlan(ctx, testEvents()); err != nil {
		t.Fatalf("stage: %v", err)
	}
	result, err := svc.ApprovePlan(ctx)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if result.Cleared != 4 {
		t.Errorf("Cleared = %d, want 4", result.Cleared)
	}
	if result.Created != 2 {
		t.Errorf("Created = %d, want 2 (one calendar failure skipped)", result.Created)
	}
	if result.Tracked != 3 {
		t.Errorf("Tracked = %d, want 3 (tracking must not depend on calendar success)", result.Tracked)
	}

	if _, err := svc.PendingPlan(ctx); !apperrors.IsNotFound(err) {
		t.Errorf("pending plan should be cleared after approval, got err=%v", err)
	}
}

func TestApprovePlan_NoCalendarTracksOnly(t *testing.T) {
	svc := NewScheduleService(testDB(t), nil)
	ctx := context.Background()

	if err := svc.StagePlan(ctx, testEvents()); err != nil {
		t.Fatalf("stage: %v", err)
	}
	result, err := svc.ApprovePlan(ctx)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if result.Created != 0 || result.Tracked != 3 {
		t.Errorf("got Created=%d Tracked=%d, want 0/3 with calendar disabled", result.Created, result.Tracked)
	}

	events, err := svc.PlannedEventsForDate(ctx, "2026-02-02")
	if err != nil {
		t.Fatalf("events for date: %v", err)
	}
	if len(events) != 1 || events[0].Status != "planned" {
		t.Errorf("tracked row = %+v, want one planned event", events)
	}
}

func TestCheckIn_ResolvesMostRecentEndedBlock(t *testing.T) {
	svc := NewScheduleService(testDB(t), nil)
	svc.now = func() time.Time { return time.Date(2026, 2, 2, 21, 10, 0, 0, time.UTC) }
	ctx := context.Background()

	rows := []database.ScheduleEvent{
		{Date: "2026-02-02", StartTime: "18:15", EndTime: "19:20", Title: "Gym", Status: "planned"},
		{Date: "2026-02-02", StartTime: "19:30", EndTime: "21:00", Title: "CFA study", Status: "planned"},
		{Date: "2026-02-02", StartTime: "21:15", EndTime: "22:30", Title: "Reading", Status: "planned"},
	}
	for i := range rows {
		if err := svc.db.Create(&rows[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	event, err := svc.CheckIn(ctx, 0, "partial", "Did mocks only", "tired")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if event.Title != "CFA study" {
		t.Errorf("resolved %q, want the most recently ended block 'CFA study'", event.Title)
	}

	var reloaded database.ScheduleEvent
	if err := svc.db.First(&reloaded, event.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != "partial" || reloaded.ActualSummary != "Did mocks only" || reloaded.GapReason != "tired" {
		t.Errorf("persisted = %+v, want partial with summary and gap reason", reloaded)
	}
}

func TestCheckIn_NothingEnded(t *testing.T) {
	svc := NewScheduleService(testDB(t), nil)
	svc.now = func() time.Time { return time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC) }

	_, err := svc.CheckIn(context.Background(), 0, "completed", "", "")
	if !apperrors.IsNotFound(err) {
		t.Errorf("err = %v, want ErrNoMatch", err)
	}
}

func TestCancelEvening(t *testing.T) {
	svc := NewScheduleService(testDB(t), nil)
	ctx := context.Background()

	rows := []database.ScheduleEvent{
		{Date: "2026-02-06", StartTime: "12:00", EndTime: "13:00", Title: "Lunch errand", Status: "planned"},
		{Date: "2026-02-06", StartTime: "19:00", EndTime: "20:30", Title: "Plato hacking", Status: "planned"},
		{Date: "2026-02-06", StartTime: "21:00", EndTime: "22:00", Title: "CFA study", Status: "planned"},
		{Date: "2026-02-06", StartTime: "20:00", EndTime: "21:00", Title: "Done already", Status: "completed"},
	}
	for i := range rows {
		if err := svc.db.Create(&rows[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	result, err := svc.CancelEvening(ctx, "2026-02-06", "18:00")
	if err != nil {
		t.Fatalf("cancel evening: %v", err)
	}
	if result.MarkedCount != 2 {
		t.Errorf("MarkedCount = %d, want 2 (afternoon and completed blocks untouched)", result.MarkedCount)
	}
	if len(result.CancelledTitles) != 2 {
		t.Errorf("CancelledTitles = %v, want two titles", result.CancelledTitles)
	}

	var lunch database.ScheduleEvent
	if err := svc.db.Where("title = ?", "Lunch errand").First(&lunch).Error; err != nil {
		t.Fatal(err)
	}
	if lunch.Status != "planned" {
		t.Errorf("lunch block status = %s, want planned", lunch.Status)
	}
}

func TestWeeklyAdherence(t *testing.T) {
	svc := NewScheduleService(testDB(t), nil)
	ctx := context.Background()

	statuses := []string{"completed", "completed", "completed", "completed", "partial", "skipped", "skipped", "audrey_time"}
	for i, status := range statuses {
		row := database.ScheduleEvent{
			Date:      time.Date(2026, 2, 2+i%7, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			StartTime: "19:00", EndTime: "20:00",
			Title: "Block", Category: "cfa", Status: status,
		}
		if err := svc.db.Create(&row).Error; err != nil {
			t.Fatal(err)
		}
	}

	stats, err := svc.WeeklyAdherence(ctx, "2026-02-02")
	if err != nil {
		t.Fatalf("adherence: %v", err)
	}
	if stats.Total != 8 {
		t.Fatalf("Total = %d, want 8", stats.Total)
	}
	// (4 completed + 0.5*1 partial) / 8 = 56.3 after rounding.
	if stats.AdherencePct != 56.3 {
		t.Errorf("AdherencePct = %.1f, want 56.3", stats.AdherencePct)
	}
	if stats.ByStatus["audrey_time"] != 1 {
		t.Errorf("audrey_time count = %d, want 1", stats.ByStatus["audrey_time"])
	}
}

func TestWeeklyAdherence_EmptyWeek(t *testing.T) {
	svc := NewScheduleService(testDB(t), nil)
	stats, err := svc.WeeklyAdherence(context.Background(), "2026-02-02")
	if err != nil {
		t.Fatalf("adherence: %v", err)
	}
	if stats.Total != 0 || stats.AdherencePct != 0 {
		t.Errorf("empty week stats = %+v, want zeros", stats)
	}
}

func TestEventsJustEnded(t *testing.T) {
	svc := NewScheduleService(testDB(t), nil)
	svc.now = func() time.Time { return time.Date(2026, 2, 2, 20, 2, 0, 0, time.UTC) }
	ctx := context.Background()

	rows := []database.ScheduleEvent{
		{Date: "2026-02-02", StartTime: "19:00", EndTime: "20:00", Title: "Just ended", Status: "planned"},
		{Date: "2026-02-02", StartTime: "17:00", EndTime: "18:00", Title: "Long over", Status: "planned"},
		{Date: "2026-02-02", StartTime: "20:00", EndTime: "21:00", Title: "Still running", Status: "planned"},
		{Date: "2026-02-02", StartTime: "19:00", EndTime: "20:00", Title: "Checked in", Status: "completed"},
	}
	for i := range rows {
		if err := svc.db.Create(&rows[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	events, err := svc.EventsJustEnded(ctx, 5*time.Minute)
	if err != nil {
		t.Fatalf("events just ended: %v", err)
	}
	if len(events) != 1 || events[0].Title != "Just ended" {
		t.Errorf("got %+v, want exactly the block that ended inside the window", events)
	}
}
