package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jasonoc/plato/internal/database"
	apperrors "github.com/jasonoc/plato/internal/errors"
	"github.com/jasonoc/plato/internal/logger"
	"github.com/jasonoc/plato/internal/schedule"
)

// TrainingService owns training blocks, sessions, workout templates and the
// main-lift progression cascade. Daily logs, nutrition and summaries live in
// fitness_logs.go on the same service.
type TrainingService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTrainingService(db *gorm.DB) *TrainingService {
	return &TrainingService{db: db, now: time.Now}
}

func (s *TrainingService) today() string {
	return s.now().Format(schedule.DateLayout)
}

// ---------------- sessions ----------------

// ExerciseInput is one exercise as reported by the user (via the LLM).
type ExerciseInput struct {
	Exercise string   `json:"exercise"`
	Sets     int      `json:"sets"`
	Reps     *int     `json:"reps"`
	WeightKg *float64 `json:"weight_kg"`
	Notes    string   `json:"notes"`
}

// LiftProgression reports one main-lift performance against its target.
type LiftProgression struct {
	Lift       string
	LiftKey    string
	Weight     float64
	Sets       int
	Reps       int
	HitTarget  bool
	NextWeight *float64
}

type SessionResult struct {
	Session      *database.TrainingSession
	Exercises    int
	Progressions []LiftProgression
}

// LogSession records a completed training session with its exercises and
// tracks any main lifts against their rep targets.
func (s *TrainingService) LogSession(ctx context.Context, sessionType string, exercises []ExerciseInput, date, feedback string, durationMin *int) (*SessionResult, error) {
	if date == "" {
		date = s.today()
	}
	normalized := NormalizeSessionType(sessionType)
	blockID := s.currentBlockID(ctx, date)

	session := &database.TrainingSession{
		Date:        date,
		SessionType: normalized,
		Completed:   true,
		Feedback:    feedback,
		DurationMin: durationMin,
		BlockID:     blockID,
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create training session: %w", err)
	}

	result := &SessionResult{Session: session, Exercises: len(exercises)}

	for _, ex := range exercises {
		liftKey := MatchLift(ex.Exercise)
		row := &database.TrainingExercise{
			SessionID:    session.ID,
			ExerciseName: ex.Exercise,
			Sets:         ex.Sets,
			Reps:         ex.Reps,
			WeightKg:     ex.WeightKg,
			IsMainLift:   liftKey != "",
			Notes:        ex.Notes,
		}
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			return nil, fmt.Errorf("failed to create exercise row: %w", err)
		}

		if liftKey != "" && ex.WeightKg != nil && ex.Sets > 0 && ex.Reps != nil {
			if prog := s.trackMainLift(ctx, date, liftKey, *ex.WeightKg, ex.Sets, *ex.Reps); prog != nil {
				result.Progressions = append(result.Progressions, *prog)
			}
		}
	}
	return result, nil
}

// LogMissedSession records a skipped session with the reason.
func (s *TrainingService) LogMissedSession(ctx context.Context, sessionType, date, reason string) (*database.TrainingSession, error) {
	if date == "" {
		date = s.today()
	}
	session := &database.TrainingSession{
		Date:        date,
		SessionType: NormalizeSessionType(sessionType),
		Completed:   false,
		Feedback:    reason,
		BlockID:     s.currentBlockID(ctx, date),
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to log missed session: %w", err)
	}
	return session, nil
}

// SessionWithExercises joins a session to its exercise rows.
type SessionWithExercises struct {
	database.TrainingSession
	Exercises []database.TrainingExercise
}

func (s *TrainingService) SessionsRange(ctx context.Context, startDate, endDate string) ([]SessionWithExercises, error) {
	var sessions []database.TrainingSession
	if err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	result := make([]SessionWithExercises, 0, len(sessions))
	for _, session := range sessions {
		var exercises []database.TrainingExercise
		if err := s.db.WithContext(ctx).
			Where("session_id = ?", session.ID).
			Order("id").
			Find(&exercises).Error; err != nil {
			return nil, fmt.Errorf("failed to load exercises: %w", err)
		}
		result = append(result, SessionWithExercises{TrainingSession: session, Exercises: exercises})
	}
	return result, nil
}

// ---------------- main lift progression ----------------

func (s *TrainingService) trackMainLift(ctx context.Context, date, liftKey string, weight float64, sets, reps int) *LiftProgression {
	cfg := MainLifts[liftKey]
	hitTarget := reps >= cfg.RepRangeHi && sets >= 4

	var nextWeight *float64
	if hitTarget {
		next := weight + cfg.Increment
		nextWeight = &next
	}

	entry := &database.MainLiftProgress{
		Date:         date,
		LiftName:     liftKey,
		WeightKg:     weight,
		Sets:         sets,
		Reps:         reps,
		TargetReps:   cfg.RepRangeHi,
		HitTarget:    hitTarget,
		NextWeightKg: nextWeight,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Error("Failed to track main lift", "lift", liftKey, "error", err)
		return nil
	}

	return &LiftProgression{
		Lift:       cfg.Name,
		LiftKey:    liftKey,
		Weight:     weight,
		Sets:       sets,
		Reps:       reps,
		HitTarget:  hitTarget,
		NextWeight: nextWeight,
	}
}

func (s *TrainingService) LiftHistory(ctx context.Context, liftKey string, limit int) ([]database.MainLiftProgress, error) {
	var entries []database.MainLiftProgress
	if err := s.db.WithContext(ctx).
		Where("lift_name = ?", liftKey).
		Order("date DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load lift history: %w", err)
	}
	return entries, nil
}

// LatestLifts returns the most recent progress entry per main lift.
func (s *TrainingService) LatestLifts(ctx context.Context) (map[string]database.MainLiftProgress, error) {
	latest := make(map[string]database.MainLiftProgress)
	for key := range MainLifts {
		var entry database.MainLiftProgress
		err := s.db.WithContext(ctx).
			Where("lift_name = ?", key).
			Order("date DESC").
			First(&entry).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load latest lift %s: %w", key, err)
		}
		latest[key] = entry
	}
	return latest, nil
}

// ProgressionConfirmation reports a confirmed weight increase.
type ProgressionConfirmation struct {
	Lift            string
	NewWeight       float64
	SessionsUpdated int
}

// ConfirmProgression applies the most recent unconfirmed hit-target entry for
// a lift: marks it confirmed, rewrites the template's working weight, then
// updates matching exercises on uncompleted today-or-future sessions.
// Confirming twice is a no-op; re-confirming finds confirmed=true and bails.
func (s *TrainingService) ConfirmProgression(ctx context.Context, liftKey string) (*ProgressionConfirmation, error) {
	cfg, ok := MainLifts[liftKey]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown lift %q", liftKey))
	}

	var entry database.MainLiftProgress
	err := s.db.WithContext(ctx).
		Where("lift_name = ? AND hit_target = ? AND confirmed = ?", liftKey, true, false).
		Order("date DESC").
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending progression: %w", err)
	}
	if entry.NextWeightKg == nil {
		return nil, apperrors.ErrNoMatch
	}
	newWeight := *entry.NextWeightKg

	if err := s.db.WithContext(ctx).
		Model(&database.MainLiftProgress{}).
		Where("id = ?", entry.ID).
		Update("confirmed", true).Error; err != nil {
		return nil, fmt.Errorf("failed to confirm progression: %w", err)
	}

	if err := s.UpdateTemplateWeight(ctx, cfg.Name, newWeight); err != nil {
		logger.Error("Failed to update template weight", "lift", cfg.Name, "error", err)
	}

	updated := s.updateFutureSessions(ctx, cfg.Name, newWeight)

	return &ProgressionConfirmation{Lift: cfg.Name, NewWeight: newWeight, SessionsUpdated: updated}, nil
}

// updateFutureSessions rewrites the weight on exercises matching name in
// every uncompleted session dated today or later. Returns the number of
// sessions touched.
func (s *TrainingService) updateFutureSessions(ctx context.Context, exerciseName string, newWeight float64) int {
	var sessions []database.TrainingSession
	if err := s.db.WithContext(ctx).
		Where("completed = ? AND date >= ?", false, s.today()).
		Find(&sessions).Error; err != nil {
		logger.Error("Failed to load future sessions", "error", err)
		return 0
	}

	updated := 0
	pattern := "%" + strings.ToLower(exerciseName) + "%"
	for _, session := range sessions {
		result := s.db.WithContext(ctx).
			Model(&database.TrainingExercise{}).
			Where("session_id = ? AND LOWER(exercise_name) LIKE ?", session.ID, pattern).
			Update("weight_kg", newWeight)
		if result.Error != nil {
			logger.Error("Failed to update future session", "session", session.ID, "error", result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			updated++
		}
	}
	return updated
}

// ---------------- workout templates ----------------

func (s *TrainingService) TemplatesForType(ctx context.Context, sessionType string) ([]database.WorkoutTemplate, error) {
	var templates []database.WorkoutTemplate
	if err := s.db.WithContext(ctx).
		Where("session_type = ?", sessionType).
		Order("exercise_order").
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return templates, nil
}

func (s *TrainingService) AllTemplates(ctx context.Context) (map[string][]database.WorkoutTemplate, error) {
	var rows []database.WorkoutTemplate
	if err := s.db.WithContext(ctx).
		Order("session_type, exercise_order").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	grouped := make(map[string][]database.WorkoutTemplate)
	for _, row := range rows {
		grouped[row.SessionType] = append(grouped[row.SessionType], row)
	}
	return grouped, nil
}

// UpdateTemplateWeight sets the working weight on every template row whose
// exercise name contains the given name (case-insensitive). The loose match
// can touch multiple rows sharing a substring; accepted for this data set.
func (s *TrainingService) UpdateTemplateWeight(ctx context.Context, exerciseName string, newWeight float64) error {
	pattern := "%" + strings.ToLower(exerciseName) + "%"
	if err := s.db.WithContext(ctx).
		Model(&database.WorkoutTemplate{}).
		Where("LOWER(exercise_name) LIKE ?", pattern).
		Update("current_weight_kg", newWeight).Error; err != nil {
		return fmt.Errorf("failed to update template weight: %w", err)
	}
	return nil
}

// AdjustResult reports an explicit weight change cascade.
type AdjustResult struct {
	Exercise        string
	NewWeight       float64
	SessionsUpdated int
}

// AdjustExerciseWeight changes any exercise's working weight, cascading to
// the template and all future uncompleted sessions.
func (s *TrainingService) AdjustExerciseWeight(ctx context.Context, exerciseName string, newWeight float64) (*AdjustResult, error) {
	if err := s.UpdateTemplateWeight(ctx, exerciseName, newWeight); err != nil {
		return nil, err
	}
	updated := s.updateFutureSessions(ctx, exerciseName, newWeight)
	return &AdjustResult{Exercise: exerciseName, NewWeight: newWeight, SessionsUpdated: updated}, nil
}

// ---------------- training blocks ----------------

// BlockPlan is a block proposal derived from the phase timeline, ready to be
// created.
type BlockPlan struct {
	Name          string
	StartDate     string
	EndDate       string
	Phase         string
	CalorieTarget int
	ProteinTarget int
	WeightStart   *float64
}

// PlanNextBlock computes a block's boundaries (first Monday of the month to
// the Sunday on/after month end), phase and nutrition targets.
func (s *TrainingService) PlanNextBlock(year int, month time.Month, weightStart *float64) BlockPlan {
	start, end := schedule.BlockDates(year, month)
	phase := PhaseForMonth(year, month)
	nutrition := NutritionForPhase(phase)

	return BlockPlan{
		Name:          fmt.Sprintf("%s %d", month.String(), year),
		StartDate:     start.Format(schedule.DateLayout),
		EndDate:       end.Format(schedule.DateLayout),
		Phase:         phase,
		CalorieTarget: nutrition.Calories,
		ProteinTarget: nutrition.Protein,
		WeightStart:   weightStart,
	}
}

func (s *TrainingService) CreateBlock(ctx context.Context, plan BlockPlan, notes string) (*database.TrainingBlock, error) {
	block := &database.TrainingBlock{
		Name:          plan.Name,
		StartDate:     plan.StartDate,
		EndDate:       plan.EndDate,
		Phase:         plan.Phase,
		CalorieTarget: &plan.CalorieTarget,
		ProteinTarget: &plan.ProteinTarget,
		WeightStart:   plan.WeightStart,
		Notes:         notes,
	}
	if err := s.db.WithContext(ctx).Create(block).Error; err != nil {
		return nil, fmt.Errorf("failed to create training block: %w", err)
	}
	return block, nil
}

// CurrentBlock resolves the block containing the given date (today when
// empty). Blocks may overlap at the stored level; containment of the first
// match wins.
func (s *TrainingService) CurrentBlock(ctx context.Context, date string) (*database.TrainingBlock, error) {
	if date == "" {
		date = s.today()
	}
	var block database.TrainingBlock
	err := s.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", date, date).
		First(&block).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNoCurrentBlock
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current block: %w", err)
	}
	return &block, nil
}

func (s *TrainingService) currentBlockID(ctx context.Context, date string) *uint {
	block, err := s.CurrentBlock(ctx, date)
	if err != nil {
		return nil
	}
	return &block.ID
}

// GenerateResult reports block workout generation.
type GenerateResult struct {
	SessionsCreated int
	Skipped         int // dates where a session of that type already existed
}

// GenerateBlockWorkouts creates the scheduled sessions for a block from the
// fixed weekly split schedule, snapshotting each template's current working
// weight. Generation is idempotent: a (date, session type) pair that already
// has a session is skipped, so re-running over an overlapping range does not
// duplicate.
func (s *TrainingService) GenerateBlockWorkouts(ctx context.Context, blockID uint, startDate, endDate string) (*GenerateResult, error) {
	start, err := time.Parse(schedule.DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid block start %q: %w", startDate, err)
	}
	end, err := time.Parse(schedule.DateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid block end %q: %w", endDate, err)
	}

	templates, err := s.AllTemplates(ctx)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{}
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		weekday := (int(current.Weekday()) + 6) % 7 // Monday=0

		for _, slot := range weeklySchedule {
			if slot.Weekday != weekday {
				continue
			}
			tmpls, ok := templates[slot.SessionType]
			if !ok {
				continue
			}
			dateStr := current.Format(schedule.DateLayout)

			var count int64
			if err := s.db.WithContext(ctx).
				Model(&database.TrainingSession{}).
				Where("date = ? AND session_type = ?", dateStr, slot.SessionType).
				Count(&count).Error; err != nil {
				return nil, fmt.Errorf("failed to check existing session: %w", err)
			}
			if count > 0 {
				result.Skipped++
				continue
			}

			session := &database.TrainingSession{
				Date:        dateStr,
				SessionType: slot.SessionType,
				Scheduled:   true,
				Completed:   false,
				BlockID:     &blockID,
			}
			if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
				return nil, fmt.Errorf("failed to create scheduled session: %w", err)
			}

			for _, tmpl := range tmpls {
				ex := &database.TrainingExercise{
					SessionID:    session.ID,
					ExerciseName: tmpl.ExerciseName,
					Sets:         tmpl.Sets,
					WeightKg:     tmpl.CurrentWeightKg,
					IsMainLift:   tmpl.IsMainLift,
					Notes:        fmt.Sprintf("Target: %s reps", tmpl.RepRange),
				}
				if err := s.db.WithContext(ctx).Create(ex).Error; err != nil {
					return nil, fmt.Errorf("failed to create scheduled exercise: %w", err)
				}
			}
			result.SessionsCreated++
		}
	}
	return result, nil
}

// ---------------- today's workout and completion ----------------

// TodaysWorkout returns the scheduled, not yet completed session for a date.
func (s *TrainingService) TodaysWorkout(ctx context.Context, date string) (*SessionWithExercises, error) {
	if date == "" {
		date = s.today()
	}
	var session database.TrainingSession
	err := s.db.WithContext(ctx).
		Where("date = ? AND completed = ? AND scheduled = ?", date, false, true).
		First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load today's workout: %w", err)
	}

	var exercises []database.TrainingExercise
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", session.ID).
		Order("id").
		Find(&exercises).Error; err != nil {
		return nil, fmt.Errorf("failed to load workout exercises: %w", err)
	}
	return &SessionWithExercises{TrainingSession: session, Exercises: exercises}, nil
}

// WorkoutException is a deviation from the planned workout.
type WorkoutException struct {
	Exercise     string   `json:"exercise"`
	ActualReps   *int     `json:"actual_reps"`
	ActualWeight *float64 `json:"actual_weight"`
	Notes        string   `json:"notes"`
}

type CompleteResult struct {
	SessionType  string
	Exercises    int
	Exceptions   int
	Progressions []LiftProgression
}

// CompleteWorkout marks today's scheduled workout done. Exercises without an
// exception are assumed completed as planned at their target reps; main lifts
// are then tracked against their rep targets.
func (s *TrainingService) CompleteWorkout(ctx context.Context, date, feedback string, exceptions []WorkoutException) (*CompleteResult, error) {
	if date == "" {
		date = s.today()
	}

	workout, err := s.TodaysWorkout(ctx, date)
	if err != nil {
		if apperrors.IsNotFound(err) {
			var done int64
			s.db.WithContext(ctx).
				Model(&database.TrainingSession{}).
				Where("date = ? AND completed = ?", date, true).
				Count(&done)
			if done > 0 {
				return nil, apperrors.New(apperrors.ErrorTypeValidation, "ALREADY_DONE", "already completed today's workout")
			}
			return nil, apperrors.New(apperrors.ErrorTypeNotFound, "NO_WORKOUT", "no scheduled workout found for today")
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(&database.TrainingSession{}).
		Where("id = ?", workout.ID).
		Updates(map[string]interface{}{"completed": true, "feedback": feedback}).Error; err != nil {
		return nil, fmt.Errorf("failed to mark workout complete: %w", err)
	}

	result := &CompleteResult{SessionType: workout.SessionType, Exercises: len(workout.Exercises)}

	exceptionFor := func(name string) *WorkoutException {
		lower := strings.ToLower(name)
		for i := range exceptions {
			if strings.Contains(lower, strings.ToLower(exceptions[i].Exercise)) {
				return &exceptions[i]
			}
		}
		return nil
	}

	for i := range workout.Exercises {
		ex := &workout.Exercises[i]
		if exc := exceptionFor(ex.ExerciseName); exc != nil {
			updates := map[string]interface{}{}
			if exc.ActualReps != nil {
				updates["reps"] = *exc.ActualReps
			}
			if exc.ActualWeight != nil {
				updates["weight_kg"] = *exc.ActualWeight
			}
			if exc.Notes != "" {
				updates["notes"] = exc.Notes
			}
			if len(updates) > 0 {
				if err := s.db.WithContext(ctx).
					Model(&database.TrainingExercise{}).
					Where("id = ?", ex.ID).
					Updates(updates).Error; err != nil {
					logger.Error("Failed to apply workout exception", "exercise", ex.ExerciseName, "error", err)
					continue
				}
				result.Exceptions++
			}
		}
	}

	for _, ex := range workout.Exercises {
		if !ex.IsMainLift || ex.WeightKg == nil {
			continue
		}
		liftKey := MatchLift(ex.ExerciseName)
		if liftKey == "" {
			continue
		}

		reps := 0
		weight := *ex.WeightKg
		if exc := exceptionFor(ex.ExerciseName); exc != nil {
			if exc.ActualReps != nil {
				reps = *exc.ActualReps
			}
			if exc.ActualWeight != nil {
				weight = *exc.ActualWeight
			}
		} else {
			reps = parseTargetTop(ex.Notes)
		}
		if reps <= 0 {
			continue
		}

		if prog := s.trackMainLift(ctx, date, liftKey, weight, ex.Sets, reps); prog != nil {
			result.Progressions = append(result.Progressions, *prog)
		}
	}
	return result, nil
}

// parseTargetTop extracts the top of a "Target: 6-8 reps" note. Returns 0
// when the note doesn't carry a rep target.
func parseTargetTop(notes string) int {
	text := strings.TrimPrefix(notes, "Target: ")
	text = strings.TrimSuffix(text, " reps")
	parts := strings.Split(text, "-")
	last := strings.TrimSpace(parts[len(parts)-1])
	if idx := strings.IndexByte(last, ' '); idx >= 0 {
		last = last[:idx]
	}
	top, err := strconv.Atoi(last)
	if err != nil {
		return 0
	}
	return top
}
