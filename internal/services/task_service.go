package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jasonoc/plato/internal/database"
	apperrors "github.com/jasonoc/plato/internal/errors"
	"github.com/jasonoc/plato/internal/schedule"
)

// TaskService manages one-off admin tasks, recurring tasks and important
// dates (birthdays, renewals).
type TaskService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db, now: time.Now}
}

func (s *TaskService) today() string {
	return s.now().Format(schedule.DateLayout)
}

// ---------------- one-off tasks ----------------

func (s *TaskService) AddTask(ctx context.Context, title, dueDate, dueTime, category, priority, notes string) (*database.AdminTask, error) {
	if title == "" {
		return nil, apperrors.NewValidationError("task title is required")
	}
	if category == "" {
		category = "personal"
	}
	if priority == "" {
		priority = "normal"
	}
	task := &database.AdminTask{
		Title:    title,
		DueDate:  dueDate,
		DueTime:  dueTime,
		Category: category,
		Priority: priority,
		Notes:    notes,
		Status:   "pending",
	}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, fmt.Errorf("failed to add task: %w", err)
	}
	return task, nil
}

// findTask matches a one-off task by case-insensitive fragment among rows the
// given query scoped.
func (s *TaskService) findTask(ctx context.Context, fragment string, scope func(*gorm.DB) *gorm.DB) (*database.AdminTask, error) {
	var task database.AdminTask
	err := scope(s.db.WithContext(ctx)).
		Where("LOWER(title) LIKE ?", "%"+strings.ToLower(fragment)+"%").
		First(&task).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

func oneOffPending(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? AND recurring = ?", "pending", "")
}

func (s *TaskService) CompleteTask(ctx context.Context, fragment string) (*database.AdminTask, error) {
	task, err := s.findTask(ctx, fragment, oneOffPending)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.db.WithContext(ctx).
		Model(task).
		Updates(map[string]interface{}{"status": "done", "completed_at": &now}).Error; err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}
	return task, nil
}

func (s *TaskService) SkipTask(ctx context.Context, fragment, reason string) (*database.AdminTask, error) {
	task, err := s.findTask(ctx, fragment, oneOffPending)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"status": "skipped"}
	if reason != "" {
		updates["notes"] = reason
	}
	if err := s.db.WithContext(ctx).Model(task).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to skip task: %w", err)
	}
	return task, nil
}

// DeleteTask removes a not-yet-done task entirely.
func (s *TaskService) DeleteTask(ctx context.Context, fragment string) (*database.AdminTask, error) {
	task, err := s.findTask(ctx, fragment, func(db *gorm.DB) *gorm.DB {
		return db.Where("status <> ? AND recurring = ?", "done", "")
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(task).Error; err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return task, nil
}

// ---------------- recurring tasks ----------------

func (s *TaskService) AddRecurringTask(ctx context.Context, title, recurring string, recurringDay, recurringMonth *int, category, priority, notes string) (*database.AdminTask, error) {
	if title == "" {
		return nil, apperrors.NewValidationError("task title is required")
	}
	switch recurring {
	case "weekly", "monthly", "yearly":
	default:
		return nil, apperrors.NewValidationError("recurring must be weekly, monthly or yearly")
	}
	if category == "" {
		category = "personal"
	}
	if priority == "" {
		priority = "normal"
	}
	task := &database.AdminTask{
		Title:          title,
		Recurring:      recurring,
		RecurringDay:   recurringDay,
		RecurringMonth: recurringMonth,
		Category:       category,
		Priority:       priority,
		Notes:          notes,
		Status:         "pending",
	}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, fmt.Errorf("failed to add recurring task: %w", err)
	}
	return task, nil
}

func recurringOnly(db *gorm.DB) *gorm.DB {
	return db.Where("recurring <> ?", "")
}

// CompleteRecurring stamps this occurrence done. The task itself stays
// pending so it reappears next cycle.
func (s *TaskService) CompleteRecurring(ctx context.Context, fragment string) (*database.AdminTask, error) {
	task, err := s.findTask(ctx, fragment, recurringOnly)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.db.WithContext(ctx).
		Model(task).
		Update("completed_at", &now).Error; err != nil {
		return nil, fmt.Errorf("failed to complete recurring task: %w", err)
	}
	return task, nil
}

func (s *TaskService) DeleteRecurring(ctx context.Context, fragment string) (*database.AdminTask, error) {
	task, err := s.findTask(ctx, fragment, recurringOnly)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(task).Error; err != nil {
		return nil, fmt.Errorf("failed to delete recurring task: %w", err)
	}
	return task, nil
}

// ---------------- queries ----------------

func (s *TaskService) PendingTasks(ctx context.Context) ([]database.AdminTask, error) {
	var tasks []database.AdminTask
	if err := oneOffPending(s.db.WithContext(ctx)).
		Order("due_date").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load pending tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) RecurringTasks(ctx context.Context) ([]database.AdminTask, error) {
	var tasks []database.AdminTask
	if err := recurringOnly(s.db.WithContext(ctx)).
		Order("id").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load recurring tasks: %w", err)
	}
	return tasks, nil
}

// DatedTask is a task annotated with why it shows up on a given date.
type DatedTask struct {
	database.AdminTask
	Overdue      bool
	RecurringDue bool
}

// TasksForDate collects everything relevant to one day: one-off tasks due
// that day, overdue ones, and weekly/monthly recurring tasks matching the
// weekday or day of month. A recurring task already completed that day is
// suppressed.
func (s *TaskService) TasksForDate(ctx context.Context, date string) ([]DatedTask, error) {
	if date == "" {
		date = s.today()
	}
	day, err := time.Parse(schedule.DateLayout, date)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid date %q", date))
	}
	weekday := (int(day.Weekday()) + 6) % 7 // Monday=0
	dayOfMonth := day.Day()

	var tasks []DatedTask

	var due []database.AdminTask
	if err := oneOffPending(s.db.WithContext(ctx)).
		Where("due_date = ?", date).
		Find(&due).Error; err != nil {
		return nil, fmt.Errorf("failed to load due tasks: %w", err)
	}
	for _, t := range due {
		tasks = append(tasks, DatedTask{AdminTask: t})
	}

	var overdue []database.AdminTask
	if err := oneOffPending(s.db.WithContext(ctx)).
		Where("due_date <> ? AND due_date < ?", "", date).
		Find(&overdue).Error; err != nil {
		return nil, fmt.Errorf("failed to load overdue tasks: %w", err)
	}
	for _, t := range overdue {
		tasks = append(tasks, DatedTask{AdminTask: t, Overdue: true})
	}

	appendRecurring := func(recurring string, dayValue int) error {
		var rows []database.AdminTask
		if err := s.db.WithContext(ctx).
			Where("recurring = ? AND recurring_day = ?", recurring, dayValue).
			Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to load %s tasks: %w", recurring, err)
		}
		for _, t := range rows {
			if t.CompletedAt != nil && t.CompletedAt.Format(schedule.DateLayout) == date {
				continue
			}
			tasks = append(tasks, DatedTask{AdminTask: t, RecurringDue: true})
		}
		return nil
	}
	if err := appendRecurring("weekly", weekday); err != nil {
		return nil, err
	}
	if err := appendRecurring("monthly", dayOfMonth); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (s *TaskService) OverdueTasks(ctx context.Context) ([]database.AdminTask, error) {
	var tasks []database.AdminTask
	if err := oneOffPending(s.db.WithContext(ctx)).
		Where("due_date <> ? AND due_date < ?", "", s.today()).
		Order("due_date").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load overdue tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) UpcomingTasks(ctx context.Context, days int) ([]database.AdminTask, error) {
	end := s.now().AddDate(0, 0, days).Format(schedule.DateLayout)
	var tasks []database.AdminTask
	if err := oneOffPending(s.db.WithContext(ctx)).
		Where("due_date >= ? AND due_date <= ?", s.today(), end).
		Order("due_date").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load upcoming tasks: %w", err)
	}
	return tasks, nil
}

// MarkOverdueTasks flips past-due pending tasks to overdue status. Returns
// the number updated.
func (s *TaskService) MarkOverdueTasks(ctx context.Context) (int, error) {
	result := oneOffPending(s.db.WithContext(ctx)).
		Model(&database.AdminTask{}).
		Where("due_date <> ? AND due_date < ?", "", s.today()).
		Update("status", "overdue")
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark overdue tasks: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

// ---------------- important dates ----------------

func (s *TaskService) AddImportantDate(ctx context.Context, title string, month, day int, year *int, category string, reminderDays int, notes string) (*database.ImportantDate, error) {
	if title == "" {
		return nil, apperrors.NewValidationError("title is required")
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, apperrors.NewValidationError("invalid month/day")
	}
	if category == "" {
		category = "birthday"
	}
	if reminderDays <= 0 {
		reminderDays = 7
	}
	entry := &database.ImportantDate{
		Title:        title,
		DateMonth:    month,
		DateDay:      day,
		Year:         year,
		Category:     category,
		ReminderDays: reminderDays,
		Notes:        notes,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to add important date: %w", err)
	}
	return entry, nil
}

func (s *TaskService) DeleteImportantDate(ctx context.Context, fragment string) (*database.ImportantDate, error) {
	var entry database.ImportantDate
	err := s.db.WithContext(ctx).
		Where("LOWER(title) LIKE ?", "%"+strings.ToLower(fragment)+"%").
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find important date: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to delete important date: %w", err)
	}
	return &entry, nil
}

func (s *TaskService) AllImportantDates(ctx context.Context) ([]database.ImportantDate, error) {
	var dates []database.ImportantDate
	if err := s.db.WithContext(ctx).
		Order("date_month, date_day").
		Find(&dates).Error; err != nil {
		return nil, fmt.Errorf("failed to load important dates: %w", err)
	}
	return dates, nil
}

// UpcomingDate is an important date resolved to its next occurrence.
type UpcomingDate struct {
	database.ImportantDate
	NextDate  string
	DaysUntil int
	Age       *int // years since Year, when known (e.g. age at a birthday)
}

// UpcomingDates resolves each important date to its next occurrence and
// returns those within the window, soonest first. Feb 29 entries are skipped
// in non-leap years.
func (s *TaskService) UpcomingDates(ctx context.Context, days int) ([]UpcomingDate, error) {
	all, err := s.AllImportantDates(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now()
	todayMidnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	var upcoming []UpcomingDate
	for _, d := range all {
		next, ok := nextOccurrence(todayMidnight, d.DateMonth, d.DateDay)
		if !ok {
			continue
		}
		daysUntil := int(next.Sub(todayMidnight).Hours() / 24)
		if daysUntil > days {
			continue
		}
		entry := UpcomingDate{
			ImportantDate: d,
			NextDate:      next.Format(schedule.DateLayout),
			DaysUntil:     daysUntil,
		}
		if d.Year != nil {
			age := next.Year() - *d.Year
			entry.Age = &age
		}
		upcoming = append(upcoming, entry)
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].DaysUntil < upcoming[j].DaysUntil
	})
	return upcoming, nil
}

// nextOccurrence finds the next calendar date with the given month/day on or
// after today. Returns false when the date doesn't exist this year or next
// (Feb 29 outside leap years).
func nextOccurrence(today time.Time, month, day int) (time.Time, bool) {
	for _, year := range []int{today.Year(), today.Year() + 1} {
		candidate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if candidate.Month() != time.Month(month) || candidate.Day() != day {
			continue // normalized away, date doesn't exist that year
		}
		if !candidate.Before(today) {
			return candidate, true
		}
	}
	return time.Time{}, false
}
