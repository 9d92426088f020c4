package services

import (
	"context"
	"testing"
	"time"

	"github.com/jasonoc/plato/internal/database"
	apperrors "github.com/jasonoc/plato/internal/errors"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMatchLift(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Incline Barbell Press", "incline_bench"},
		{"incline bench", "incline_bench"},
		{"Barbell Row", "barbell_row"},
		{"bent over row", "barbell_row"},
		{"Back Squat", "squat"},
		{"squats", "squat"},
		{"OHP", "ohp"},
		{"military press", "ohp"},
		{"overhead barbell press", "ohp"},
		{"Lateral Raise", ""},
		{"leg press", ""},
	}
	for _, tt := range tests {
		if got := MatchLift(tt.in); got != tt.want {
			t.Errorf("MatchLift(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSessionType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"push", "Push"},
		{"LEGS", "Legs"},
		{"upper", "Upper Hypertrophy"},
		{"shoulders", "Shoulders + Arms"},
		{"Mobility", "Mobility"}, // unknown passes through
	}
	for _, tt := range tests {
		if got := NormalizeSessionType(tt.in); got != tt.want {
			t.Errorf("NormalizeSessionType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhaseForMonth(t *testing.T) {
	if got := PhaseForMonth(2026, time.June); got != "mini_cut" {
		t.Errorf("June 2026 = %s, want mini_cut", got)
	}
	if got := PhaseForMonth(2028, time.March); got != "final_cut" {
		t.Errorf("March 2028 = %s, want final_cut", got)
	}
	if got := PhaseForMonth(2030, time.January); got != "bulk" {
		t.Errorf("outside timeline = %s, want bulk default", got)
	}
}

func TestLogSession_TracksMainLiftHitTarget(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	svc.now = fixedNow(time.Date(2026, 2, 2, 20, 0, 0, 0, time.UTC))
	ctx := context.Background()

	exercises := []ExerciseInput{
		{Exercise: "Incline Barbell Press", Sets: 4, Reps: intPtr(8), WeightKg: floatPtr(60)},
		{Exercise: "Lateral Raise", Sets: 3, Reps: intPtr(15), WeightKg: floatPtr(10)},
	}
	result, err := svc.LogSession(ctx, "push", exercises, "", "felt strong", intPtr(65))
	if err != nil {
		t.Fatalf("log session: %v", err)
	}

	if result.Session.SessionType != "Push" {
		t.Errorf("session type = %s, want Push", result.Session.SessionType)
	}
	if len(result.Progressions) != 1 {
		t.Fatalf("got %d progressions, want 1 (only the main lift)", len(result.Progressions))
	}
	prog := result.Progressions[0]
	if !prog.HitTarget {
		t.Error("4x8 at the top of the range should hit target")
	}
	if prog.NextWeight == nil || *prog.NextWeight != 62.5 {
		t.Errorf("NextWeight = %v, want 62.5", prog.NextWeight)
	}
}

func TestLogSession_BelowTarget(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	ctx := context.Background()

	exercises := []ExerciseInput{
		{Exercise: "Back Squat", Sets: 4, Reps: intPtr(8), WeightKg: floatPtr(100)},
	}
	result, err := svc.LogSession(ctx, "legs", exercises, "2026-02-03", "", nil)
	if err != nil {
		t.Fatalf("log session: %v", err)
	}
	if len(result.Progressions) != 1 {
		t.Fatalf("got %d progressions, want 1", len(result.Progressions))
	}
	// Squat runs 8-10; 8 reps is the bottom of the range.
	if result.Progressions[0].HitTarget {
		t.Error("4x8 squat should not hit the 10-rep target")
	}
	if result.Progressions[0].NextWeight != nil {
		t.Error("no next weight should be proposed below target")
	}
}

func TestConfirmProgression_CascadeAndIdempotence(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	svc.now = fixedNow(time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if err := svc.db.Create(&database.WorkoutTemplate{
		SessionType: "Push", ExerciseOrder: 1, ExerciseName: "Incline Barbell Press",
		Sets: 4, RepRange: "6-8", CurrentWeightKg: floatPtr(60), IsMainLift: true,
	}).Error; err != nil {
		t.Fatal(err)
	}

	// A future scheduled session carrying the old weight.
	session := database.TrainingSession{Date: "2026-02-09", SessionType: "Push", Scheduled: true}
	if err := svc.db.Create(&session).Error; err != nil {
		t.Fatal(err)
	}
	if err := svc.db.Create(&database.TrainingExercise{
		SessionID: session.ID, ExerciseName: "Incline Barbell Press",
		Sets: 4, WeightKg: floatPtr(60), IsMainLift: true, Notes: "Target: 6-8 reps",
	}).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := svc.LogSession(ctx, "push", []ExerciseInput{
		{Exercise: "Incline Barbell Press", Sets: 4, Reps: intPtr(8), WeightKg: floatPtr(60)},
	}, "2026-02-02", "", nil); err != nil {
		t.Fatal(err)
	}

	confirmation, err := svc.ConfirmProgression(ctx, "incline_bench")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmation.NewWeight != 62.5 {
		t.Errorf("NewWeight = %.1f, want 62.5", confirmation.NewWeight)
	}
	if confirmation.SessionsUpdated != 1 {
		t.Errorf("SessionsUpdated = %d, want 1", confirmation.SessionsUpdated)
	}

	var tmpl database.WorkoutTemplate
	if err := svc.db.First(&tmpl).Error; err != nil {
		t.Fatal(err)
	}
	if tmpl.CurrentWeightKg == nil || *tmpl.CurrentWeightKg != 62.5 {
		t.Errorf("template weight = %v, want 62.5", tmpl.CurrentWeightKg)
	}

	var futureEx database.TrainingExercise
	if err := svc.db.Where("session_id = ?", session.ID).First(&futureEx).Error; err != nil {
		t.Fatal(err)
	}
	if futureEx.WeightKg == nil || *futureEx.WeightKg != 62.5 {
		t.Errorf("future session weight = %v, want 62.5", futureEx.WeightKg)
	}

	// A second confirm must find nothing pending and leave the weight alone.
	if _, err := svc.ConfirmProgression(ctx, "incline_bench"); !apperrors.IsNotFound(err) {
		t.Errorf("second confirm err = %v, want ErrNoMatch", err)
	}
	if err := svc.db.First(&tmpl).Error; err != nil {
		t.Fatal(err)
	}
	if *tmpl.CurrentWeightKg != 62.5 {
		t.Errorf("double confirm changed weight to %v", *tmpl.CurrentWeightKg)
	}
}

func TestConfirmProgression_UnknownLift(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	if _, err := svc.ConfirmProgression(context.Background(), "deadlift"); err == nil {
		t.Error("expected validation error for untracked lift")
	}
}

func seedTemplates(t *testing.T, svc *TrainingService) {
	t.Helper()
	rows := []database.WorkoutTemplate{
		{SessionType: "Push", ExerciseOrder: 1, ExerciseName: "Incline Barbell Press", Sets: 4, RepRange: "6-8", CurrentWeightKg: floatPtr(60), IsMainLift: true},
		{SessionType: "Push", ExerciseOrder: 2, ExerciseName: "Lateral Raise", Sets: 3, RepRange: "12-15", CurrentWeightKg: floatPtr(10)},
		{SessionType: "Legs", ExerciseOrder: 1, ExerciseName: "Back Squat", Sets: 4, RepRange: "8-10", CurrentWeightKg: floatPtr(100), IsMainLift: true},
		{SessionType: "Upper Hypertrophy", ExerciseOrder: 1, ExerciseName: "Barbell Row", Sets: 4, RepRange: "6-8", CurrentWeightKg: floatPtr(70), IsMainLift: true},
		{SessionType: "Shoulders + Arms", ExerciseOrder: 1, ExerciseName: "Overhead Barbell Press", Sets: 4, RepRange: "6-8", CurrentWeightKg: floatPtr(40), IsMainLift: true},
	}
	for i := range rows {
		if err := svc.db.Create(&rows[i]).Error; err != nil {
			t.Fatal(err)
		}
	}
}

func TestGenerateBlockWorkouts_Idempotent(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	ctx := context.Background()
	seedTemplates(t, svc)

	block, err := svc.CreateBlock(ctx, svc.PlanNextBlock(2026, time.February, nil), "")
	if err != nil {
		t.Fatal(err)
	}

	// Feb 2026 block: Mon Feb 2 .. Sun Mar 1, four weeks, four sessions each.
	first, err := svc.GenerateBlockWorkouts(ctx, block.ID, block.StartDate, block.EndDate)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first.SessionsCreated != 16 {
		t.Errorf("SessionsCreated = %d, want 16", first.SessionsCreated)
	}
	if first.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0 on first run", first.Skipped)
	}

	second, err := svc.GenerateBlockWorkouts(ctx, block.ID, block.StartDate, block.EndDate)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if second.SessionsCreated != 0 || second.Skipped != 16 {
		t.Errorf("rerun created %d skipped %d, want 0/16", second.SessionsCreated, second.Skipped)
	}

	// Generated exercises snapshot the template weight and carry a rep target.
	var ex database.TrainingExercise
	if err := svc.db.Where("exercise_name = ?", "Incline Barbell Press").First(&ex).Error; err != nil {
		t.Fatal(err)
	}
	if ex.WeightKg == nil || *ex.WeightKg != 60 {
		t.Errorf("snapshot weight = %v, want 60", ex.WeightKg)
	}
	if ex.Notes != "Target: 6-8 reps" {
		t.Errorf("notes = %q, want rep target", ex.Notes)
	}
}

func TestPlanNextBlock_Targets(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	plan := svc.PlanNextBlock(2026, time.June, floatPtr(82))

	if plan.Phase != "mini_cut" {
		t.Errorf("phase = %s, want mini_cut", plan.Phase)
	}
	if plan.CalorieTarget != 2450 || plan.ProteinTarget != 180 {
		t.Errorf("targets = %d/%d, want 2450/180", plan.CalorieTarget, plan.ProteinTarget)
	}
	if plan.StartDate != "2026-06-01" || plan.EndDate != "2026-07-05" {
		t.Errorf("dates = %s..%s, want 2026-06-01..2026-07-05", plan.StartDate, plan.EndDate)
	}
	if plan.Name != "June 2026" {
		t.Errorf("name = %s, want June 2026", plan.Name)
	}
}

func TestParseTargetTop(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Target: 6-8 reps", 8},
		{"Target: 8-10 reps", 10},
		{"Target: 15 reps", 15},
		{"free text", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseTargetTop(tt.in); got != tt.want {
			t.Errorf("parseTargetTop(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCompleteWorkout(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	svc.now = fixedNow(time.Date(2026, 2, 2, 20, 0, 0, 0, time.UTC))
	ctx := context.Background()
	seedTemplates(t, svc)

	block, err := svc.CreateBlock(ctx, svc.PlanNextBlock(2026, time.February, nil), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GenerateBlockWorkouts(ctx, block.ID, block.StartDate, block.EndDate); err != nil {
		t.Fatal(err)
	}

	result, err := svc.CompleteWorkout(ctx, "2026-02-02", "solid session", []WorkoutException{
		{Exercise: "incline", ActualReps: intPtr(6), Notes: "shoulder tight"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.SessionType != "Push" {
		t.Errorf("session type = %s, want Push", result.SessionType)
	}
	if result.Exceptions != 1 {
		t.Errorf("Exceptions = %d, want 1", result.Exceptions)
	}

	// 6 reps is below the 8-rep top, so the lift must not propose a move.
	for _, prog := range result.Progressions {
		if prog.LiftKey == "incline_bench" && prog.HitTarget {
			t.Error("exception reps of 6 should not hit the 8-rep target")
		}
	}

	// Completing again: the session is done, so the service reports it.
	_, err = svc.CompleteWorkout(ctx, "2026-02-02", "", nil)
	var appErr *apperrors.AppError
	if !apperrors.AsAppError(err, &appErr) || appErr.Code != "ALREADY_DONE" {
		t.Errorf("second complete err = %v, want ALREADY_DONE", err)
	}
}

func TestCompleteWorkout_NoWorkout(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	svc.now = fixedNow(time.Date(2026, 2, 2, 20, 0, 0, 0, time.UTC))

	_, err := svc.CompleteWorkout(context.Background(), "", "", nil)
	var appErr *apperrors.AppError
	if !apperrors.AsAppError(err, &appErr) || appErr.Code != "NO_WORKOUT" {
		t.Errorf("err = %v, want NO_WORKOUT", err)
	}
}

func TestTodaysWorkout_RestDay(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	_, err := svc.TodaysWorkout(context.Background(), "2026-02-04")
	if !apperrors.IsNotFound(err) {
		t.Errorf("err = %v, want ErrNoMatch on a rest day", err)
	}
}

func TestCurrentBlock(t *testing.T) {
	svc := NewTrainingService(testDB(t))
	ctx := context.Background()

	if _, err := svc.CurrentBlock(ctx, "2026-02-10"); !apperrors.IsNotFound(err) {
		t.Errorf("err = %v, want ErrNoCurrentBlock with no blocks", err)
	}

	if _, err := svc.CreateBlock(ctx, svc.PlanNextBlock(2026, time.February, nil), ""); err != nil {
		t.Fatal(err)
	}
	block, err := svc.CurrentBlock(ctx, "2026-02-10")
	if err != nil {
		t.Fatalf("current block: %v", err)
	}
	if block.Name != "February 2026" {
		t.Errorf("block = %s, want February 2026", block.Name)
	}
	if _, err := svc.CurrentBlock(ctx, "2026-03-15"); !apperrors.IsNotFound(err) {
		t.Errorf("date past block end should be not-found, got %v", err)
	}
}
