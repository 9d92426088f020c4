package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jasonoc/plato/internal/database"
	apperrors "github.com/jasonoc/plato/internal/errors"
	"github.com/jasonoc/plato/internal/schedule"
)

// ---------------- daily logs ----------------

// DailyLogInput carries the optional fields of a daily check-in. Nil fields
// leave the stored value untouched on an existing day.
type DailyLogInput struct {
	Date             string   `json:"date"`
	WeightKg         *float64 `json:"weight_kg"`
	Steps            *int     `json:"steps"`
	SleepHours       *float64 `json:"sleep_hours"`
	CyclingScheduled *bool    `json:"cycling_scheduled"`
	CyclingCompleted *bool    `json:"cycling_completed"`
	CyclingNotes     string   `json:"cycling_notes"`
	SkincareAM       *bool    `json:"skincare_am"`
	SkincarePM       *bool    `json:"skincare_pm"`
	SkincareNotes    string   `json:"skincare_notes"`
	HealthNotes      string   `json:"health_notes"`
}

// UpsertDailyLog creates or updates the single log row for a date.
func (s *TrainingService) UpsertDailyLog(ctx context.Context, input DailyLogInput) (*database.DailyLog, error) {
	if input.Date == "" {
		input.Date = s.today()
	}

	var entry database.DailyLog
	err := s.db.WithContext(ctx).Where("date = ?", input.Date).First(&entry).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to load daily log: %w", err)
	}
	if err == gorm.ErrRecordNotFound {
		entry = database.DailyLog{Date: input.Date, BlockID: s.currentBlockID(ctx, input.Date)}
	}

	if input.WeightKg != nil {
		entry.WeightKg = input.WeightKg
	}
	if input.Steps != nil {
		entry.Steps = input.Steps
	}
	if input.SleepHours != nil {
		entry.SleepHours = input.SleepHours
	}
	if input.CyclingScheduled != nil {
		entry.CyclingScheduled = input.CyclingScheduled
	}
	if input.CyclingCompleted != nil {
		entry.CyclingCompleted = input.CyclingCompleted
	}
	if input.CyclingNotes != "" {
		entry.CyclingNotes = input.CyclingNotes
	}
	if input.SkincareAM != nil {
		entry.SkincareAM = input.SkincareAM
	}
	if input.SkincarePM != nil {
		entry.SkincarePM = input.SkincarePM
	}
	if input.SkincareNotes != "" {
		entry.SkincareNotes = input.SkincareNotes
	}
	if input.HealthNotes != "" {
		entry.HealthNotes = input.HealthNotes
	}

	if err := s.db.WithContext(ctx).Save(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to save daily log: %w", err)
	}
	return &entry, nil
}

func (s *TrainingService) DailyLogsRange(ctx context.Context, startDate, endDate string) ([]database.DailyLog, error) {
	var logs []database.DailyLog
	if err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to load daily logs: %w", err)
	}
	return logs, nil
}

// ---------------- nutrition (MyFitnessPal diary export) ----------------

// NutritionDay is one parsed day of a MyFitnessPal printable diary.
type NutritionDay struct {
	Date        string
	Calories    int
	CarbsG      int
	FatG        int
	ProteinG    int
	MealsLogged int
}

var (
	mfpDateRe   = regexp.MustCompile(`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},\s+\d{4}`)
	mfpTotalsRe = regexp.MustCompile(`TOTALS?:?\s*(\d{3,4})(?:\s|,)*(\d+)g(?:\s|,)*(\d+)g(?:\s|,)*(\d+)g`)
	mfpMealRe   = regexp.MustCompile(`(?m)^(Breakfast|Lunch|Dinner|Snacks)\b`)
)

// ParseMFPDiary extracts per-day totals from the text of a MyFitnessPal
// printable diary export. The export concatenates days, each headed by a
// "Mon D, YYYY" date and closed by a TOTALS row of calories then carbs, fat
// and protein grams. Days without a totals row are dropped.
func ParseMFPDiary(text string) []NutritionDay {
	dates := mfpDateRe.FindAllString(text, -1)
	if len(dates) == 0 {
		return nil
	}
	chunks := mfpDateRe.Split(text, -1)[1:] // text before the first date is header noise

	var days []NutritionDay
	for i, chunk := range chunks {
		parsed, err := time.Parse("Jan 2, 2006", dates[i])
		if err != nil {
			continue
		}
		totals := mfpTotalsRe.FindStringSubmatch(chunk)
		if totals == nil {
			continue
		}
		calories, _ := strconv.Atoi(totals[1])
		carbs, _ := strconv.Atoi(totals[2])
		fat, _ := strconv.Atoi(totals[3])
		protein, _ := strconv.Atoi(totals[4])

		days = append(days, NutritionDay{
			Date:        parsed.Format(schedule.DateLayout),
			Calories:    calories,
			CarbsG:      carbs,
			FatG:        fat,
			ProteinG:    protein,
			MealsLogged: len(mfpMealRe.FindAllString(chunk, -1)),
		})
	}
	return days
}

// ImportResult reports a bulk import.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportNutrition stores parsed diary days, skipping dates already logged.
func (s *TrainingService) ImportNutrition(ctx context.Context, days []NutritionDay) (*ImportResult, error) {
	result := &ImportResult{}
	for _, day := range days {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&database.NutritionLog{}).
			Where("date = ?", day.Date).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check nutrition log: %w", err)
		}
		if count > 0 {
			result.Skipped++
			continue
		}
		entry := &database.NutritionLog{
			Date:        day.Date,
			Calories:    day.Calories,
			CarbsG:      day.CarbsG,
			FatG:        day.FatG,
			ProteinG:    day.ProteinG,
			MealsLogged: day.MealsLogged,
		}
		if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
			return nil, fmt.Errorf("failed to create nutrition log: %w", err)
		}
		result.Imported++
	}
	return result, nil
}

func (s *TrainingService) NutritionRange(ctx context.Context, startDate, endDate string) ([]database.NutritionLog, error) {
	var logs []database.NutritionLog
	if err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to load nutrition logs: %w", err)
	}
	return logs, nil
}

// ---------------- summaries ----------------

// WeeklyFitnessSummary aggregates one Monday-to-Sunday week.
type WeeklyFitnessSummary struct {
	WeekStart         string
	WeekEnd           string
	SessionsCompleted int
	SessionsMissed    int
	SessionTypes      []string
	AvgCalories       int
	AvgProtein        int
	DaysLogged        int
	WeightFirst       *float64
	WeightLast        *float64
	Lifts             map[string]database.MainLiftProgress
}

func (s *TrainingService) WeekSummary(ctx context.Context, weekStart string) (*WeeklyFitnessSummary, error) {
	if weekStart == "" {
		weekStart = schedule.WeekStart(s.now()).Format(schedule.DateLayout)
	}
	start, err := time.Parse(schedule.DateLayout, weekStart)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid week start %q", weekStart))
	}
	weekEnd := start.AddDate(0, 0, 6).Format(schedule.DateLayout)

	summary := &WeeklyFitnessSummary{WeekStart: weekStart, WeekEnd: weekEnd}

	sessions, err := s.SessionsRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	for _, session := range sessions {
		if session.Completed {
			summary.SessionsCompleted++
			summary.SessionTypes = append(summary.SessionTypes, session.SessionType)
		} else if !session.Scheduled {
			// explicitly logged as missed
			summary.SessionsMissed++
		}
	}

	nutrition, err := s.NutritionRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	if len(nutrition) > 0 {
		totalCal, totalProt := 0, 0
		for _, day := range nutrition {
			totalCal += day.Calories
			totalProt += day.ProteinG
		}
		summary.DaysLogged = len(nutrition)
		summary.AvgCalories = totalCal / len(nutrition)
		summary.AvgProtein = totalProt / len(nutrition)
	}

	dailies, err := s.DailyLogsRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	for _, day := range dailies {
		if day.WeightKg == nil {
			continue
		}
		if summary.WeightFirst == nil {
			summary.WeightFirst = day.WeightKg
		}
		summary.WeightLast = day.WeightKg
	}

	summary.Lifts, err = s.LatestLifts(ctx)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// BlockSummary aggregates a whole training block. Adherence is completed
// sessions over the 16 the fixed four-day split schedules across four weeks.
type BlockSummary struct {
	Block             *database.TrainingBlock
	SessionsCompleted int
	SessionsPlanned   int
	AdherencePct      float64
	WeightFirst       *float64
	WeightLast        *float64
	AvgCalories       int
	Lifts             map[string]database.MainLiftProgress
}

const blockPlannedSessions = 16

func (s *TrainingService) SummariseBlock(ctx context.Context, date string) (*BlockSummary, error) {
	block, err := s.CurrentBlock(ctx, date)
	if err != nil {
		return nil, err
	}

	summary := &BlockSummary{Block: block, SessionsPlanned: blockPlannedSessions}

	var completed int64
	if err := s.db.WithContext(ctx).
		Model(&database.TrainingSession{}).
		Where("date >= ? AND date <= ? AND completed = ?", block.StartDate, block.EndDate, true).
		Count(&completed).Error; err != nil {
		return nil, fmt.Errorf("failed to count block sessions: %w", err)
	}
	summary.SessionsCompleted = int(completed)
	summary.AdherencePct = float64(completed) / float64(blockPlannedSessions) * 100

	dailies, err := s.DailyLogsRange(ctx, block.StartDate, block.EndDate)
	if err != nil {
		return nil, err
	}
	for _, day := range dailies {
		if day.WeightKg == nil {
			continue
		}
		if summary.WeightFirst == nil {
			summary.WeightFirst = day.WeightKg
		}
		summary.WeightLast = day.WeightKg
	}

	nutrition, err := s.NutritionRange(ctx, block.StartDate, block.EndDate)
	if err != nil {
		return nil, err
	}
	if len(nutrition) > 0 {
		total := 0
		for _, day := range nutrition {
			total += day.Calories
		}
		summary.AvgCalories = total / len(nutrition)
	}

	summary.Lifts, err = s.LatestLifts(ctx)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ---------------- progress photos ----------------

func (s *TrainingService) AddProgressPhoto(ctx context.Context, date, notes string) (*database.ProgressPhoto, error) {
	if date == "" {
		date = s.today()
	}
	photo := &database.ProgressPhoto{
		Date:    date,
		BlockID: s.currentBlockID(ctx, date),
		Notes:   notes,
	}
	if err := s.db.WithContext(ctx).Create(photo).Error; err != nil {
		return nil, fmt.Errorf("failed to record progress photo: %w", err)
	}
	return photo, nil
}

// ---------------- fitness goals ----------------

func (s *TrainingService) AddFitnessGoal(ctx context.Context, category, goalText, targetValue, targetDate, notes string) (*database.FitnessGoal, error) {
	if goalText == "" {
		return nil, apperrors.NewValidationError("goal text is required")
	}
	goal := &database.FitnessGoal{
		Category:    category,
		GoalText:    goalText,
		TargetValue: targetValue,
		TargetDate:  targetDate,
		Notes:       notes,
	}
	if err := s.db.WithContext(ctx).Create(goal).Error; err != nil {
		return nil, fmt.Errorf("failed to create fitness goal: %w", err)
	}
	return goal, nil
}

func (s *TrainingService) ActiveFitnessGoals(ctx context.Context) ([]database.FitnessGoal, error) {
	var goals []database.FitnessGoal
	if err := s.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("id").
		Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("failed to load fitness goals: %w", err)
	}
	return goals, nil
}

// findFitnessGoal matches an active goal by case-insensitive fragment of its
// text.
func (s *TrainingService) findFitnessGoal(ctx context.Context, fragment string) (*database.FitnessGoal, error) {
	var goal database.FitnessGoal
	err := s.db.WithContext(ctx).
		Where("status = ? AND LOWER(goal_text) LIKE ?", "active", "%"+strings.ToLower(fragment)+"%").
		First(&goal).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fitness goal: %w", err)
	}
	return &goal, nil
}

func (s *TrainingService) AchieveFitnessGoal(ctx context.Context, fragment string) (*database.FitnessGoal, error) {
	goal, err := s.findFitnessGoal(ctx, fragment)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.db.WithContext(ctx).
		Model(goal).
		Updates(map[string]interface{}{"status": "achieved", "achieved_at": &now}).Error; err != nil {
		return nil, fmt.Errorf("failed to achieve fitness goal: %w", err)
	}
	return goal, nil
}

func (s *TrainingService) ReviseFitnessGoal(ctx context.Context, fragment, newText, newTargetDate string) (*database.FitnessGoal, error) {
	goal, err := s.findFitnessGoal(ctx, fragment)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if newText != "" {
		updates["goal_text"] = newText
	}
	if newTargetDate != "" {
		updates["target_date"] = newTargetDate
	}
	if len(updates) == 0 {
		return goal, nil
	}
	if err := s.db.WithContext(ctx).Model(goal).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to revise fitness goal: %w", err)
	}
	return goal, nil
}
