package services

import (
	"context"
	"testing"
	"time"

	"github.com/jasonoc/plato/internal/database"
	apperrors "github.com/jasonoc/plato/internal/errors"
)

const sampleDiary = `Jason's food diary

Jan 2, 2026
Breakfast
Oats with whey, 520 cal
Lunch
Chicken and rice, 780 cal
Dinner
Beef stir fry, 910 cal
Snacks
Greek yogurt, 240 cal
TOTALS: 2980 310g 95g 172g

Jan 3, 2026
Breakfast
Eggs on toast, 450 cal
Dinner
Salmon and potatoes, 860 cal
TOTALS: 2450, 240g, 80g, 185g
`

func TestParseMFPDiary(t *testing.T) {
	days := ParseMFPDiary(sampleDiary)
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}

	first := days[0]
	if first.Date != "2026-01-02" {
		t.Errorf("date = %s, want 2026-01-02", first.Date)
	}
	if first.Calories != 2980 || first.CarbsG != 310 || first.FatG != 95 || first.ProteinG != 172 {
		t.Errorf("totals = %+v, want 2980/310/95/172", first)
	}
	if first.MealsLogged != 4 {
		t.Errorf("meals = %d, want 4", first.MealsLogged)
	}

	second := days[1]
	if second.Date != "2026-01-03" || second.Calories != 2450 || second.ProteinG != 185 {
		t.Errorf("second day = %+v", second)
	}
	if second.MealsLogged != 2 {
		t.Errorf("second day meals = %d, want 2", second.MealsLogged)
	}
}

func TestParseMFPDiary_NoDates(t *testing.T) {
	if days := ParseMFPDiary("just some chat about food"); days != nil {
		t.Errorf("got %v, want nil for text without diary dates", days)
	}
}

func TestParseMFPDiary_DayWithoutTotalsDropped(t *testing.T) {
	text := "Jan 5, 2026\nBreakfast\nOats, 500 cal\n(no totals row)"
	if days := ParseMFPDiary(text); len(days) != 0 {
		t.Errorf("got %v, want day without TOTALS dropped", days)
	}
}

func TestImportNutrition_SkipsExistingDates(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	ctx := context.Background()

	days := ParseMFPDiary(sampleDiary)
	first, err := svc.ImportNutrition(ctx, days)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if first.Imported != 2 || first.Skipped != 0 {
		t.Errorf("first import = %+v, want 2 imported", first)
	}

	second, err := svc.ImportNutrition(ctx, days)
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if second.Imported != 0 || second.Skipped != 2 {
		t.Errorf("reimport = %+v, want everything skipped", second)
	}
}

func TestUpsertDailyLog_PartialUpdatesMerge(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	ctx := context.Background()

	entry, err := svc.UpsertDailyLog(ctx, DailyLogInput{Date: "2026-02-03", WeightKg: floatPtr(81.4)})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if entry.WeightKg == nil || *entry.WeightKg != 81.4 {
		t.Errorf("weight = %v, want 81.4", entry.WeightKg)
	}

	entry, err = svc.UpsertDailyLog(ctx, DailyLogInput{Date: "2026-02-03", Steps: intPtr(11200)})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if entry.WeightKg == nil || *entry.WeightKg != 81.4 {
		t.Error("nil weight on the second upsert should leave the stored value")
	}
	if entry.Steps == nil || *entry.Steps != 11200 {
		t.Errorf("steps = %v, want 11200", entry.Steps)
	}

	var count int64
	svc.db.Model(&database.DailyLog{}).Where("date = ?", "2026-02-03").Count(&count)
	if count != 1 {
		t.Errorf("got %d rows for the date, want 1", count)
	}
}

func TestWeekSummary(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	svc.now = fixedNow(time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := svc.LogSession(ctx, "push", []ExerciseInput{
		{Exercise: "Incline Barbell Press", Sets: 4, Reps: intPtr(8), WeightKg: floatPtr(60)},
	}, "2026-02-02", "", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LogMissedSession(ctx, "legs", "2026-02-03", "work ran late"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ImportNutrition(ctx, []NutritionDay{
		{Date: "2026-02-02", Calories: 3000, ProteinG: 170},
		{Date: "2026-02-03", Calories: 2800, ProteinG: 160},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpsertDailyLog(ctx, DailyLogInput{Date: "2026-02-02", WeightKg: floatPtr(81.0)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpsertDailyLog(ctx, DailyLogInput{Date: "2026-02-05", WeightKg: floatPtr(81.6)}); err != nil {
		t.Fatal(err)
	}

	summary, err := svc.WeekSummary(ctx, "")
	if err != nil {
		t.Fatalf("week summary: %v", err)
	}
	if summary.WeekStart != "2026-02-02" || summary.WeekEnd != "2026-02-08" {
		t.Errorf("week = %s..%s, want 2026-02-02..2026-02-08", summary.WeekStart, summary.WeekEnd)
	}
	if summary.SessionsCompleted != 1 || summary.SessionsMissed != 1 {
		t.Errorf("sessions = %d completed / %d missed, want 1/1", summary.SessionsCompleted, summary.SessionsMissed)
	}
	if summary.AvgCalories != 2900 || summary.AvgProtein != 165 {
		t.Errorf("nutrition avg = %d/%d, want 2900/165", summary.AvgCalories, summary.AvgProtein)
	}
	if summary.WeightFirst == nil || *summary.WeightFirst != 81.0 {
		t.Errorf("WeightFirst = %v, want 81.0", summary.WeightFirst)
	}
	if summary.WeightLast == nil || *summary.WeightLast != 81.6 {
		t.Errorf("WeightLast = %v, want 81.6", summary.WeightLast)
	}
	if _, ok := summary.Lifts["incline_bench"]; !ok {
		t.Error("summary should carry the latest incline bench entry")
	}
}

func TestSummariseBlock(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	svc.now = fixedNow(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := svc.CreateBlock(ctx, svc.PlanNextBlock(2026, time.February, floatPtr(80.5)), ""); err != nil {
		t.Fatal(err)
	}
	for _, date := range []string{"2026-02-02", "2026-02-03", "2026-02-05", "2026-02-07"} {
		if _, err := svc.LogSession(ctx, "push", nil, date, "", nil); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := svc.SummariseBlock(ctx, "")
	if err != nil {
		t.Fatalf("block summary: %v", err)
	}
	if summary.SessionsCompleted != 4 || summary.SessionsPlanned != 16 {
		t.Errorf("sessions = %d/%d, want 4/16", summary.SessionsCompleted, summary.SessionsPlanned)
	}
	if summary.AdherencePct != 25 {
		t.Errorf("adherence = %.1f, want 25", summary.AdherencePct)
	}
}

func TestSummariseBlock_NoBlock(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	if _, err := svc.SummariseBlock(context.Background(), "2026-02-10"); !apperrors.IsNotFound(err) {
		t.Errorf("err = %v, want ErrNoCurrentBlock", err)
	}
}

func TestFitnessGoals_Lifecycle(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	ctx := context.Background()

	if _, err := svc.AddFitnessGoal(ctx, "strength", "Incline bench 80kg for reps", "80kg", "2026-12-31", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddFitnessGoal(ctx, "body_composition", "Visible abs by summer", "", "2026-06-01", ""); err != nil {
		t.Fatal(err)
	}

	goals, err := svc.ActiveFitnessGoals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 2 {
		t.Fatalf("got %d active goals, want 2", len(goals))
	}

	achieved, err := svc.AchieveFitnessGoal(ctx, "incline bench")
	if err != nil {
		t.Fatalf("achieve: %v", err)
	}
	if achieved.GoalText != "Incline bench 80kg for reps" {
		t.Errorf("achieved %q, wrong goal matched", achieved.GoalText)
	}

	goals, err = svc.ActiveFitnessGoals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 1 {
		t.Errorf("got %d active goals after achieving one, want 1", len(goals))
	}

	if _, err := svc.AchieveFitnessGoal(ctx, "run a marathon"); !apperrors.IsNotFound(err) {
		t.Errorf("err = %v, want ErrNoMatch for unknown fragment", err)
	}
}
