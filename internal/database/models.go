package database

import (
	"time"

	"gorm.io/gorm"
)

// Dates are stored as "YYYY-MM-DD" and times of day as "HH:MM". Both orders
// lexicographically, which keeps range predicates portable across Postgres
// and the SQLite test databases.

// Conversation is one turn of chat history fed back to the LLM.
type Conversation struct {
	gorm.Model
	Role    string // "user" or "assistant"
	Content string
}

// Project is a long-running commitment (side project, study track).
type Project struct {
	gorm.Model
	Name                 string
	Slug                 string `gorm:"uniqueIndex"`
	Intent               string
	Status               string `gorm:"default:active"`
	TargetDate           string
	EstimatedWeeklyHours float64
	StickTwistCriteria   string
	AlignmentRationale   string
}

type ProjectLog struct {
	gorm.Model
	ProjectID    uint `gorm:"index"`
	Summary      string
	DurationMins *int
	Blockers     string
	Tags         string // comma-joined
	Mood         string
	RawMessage   string
}

type ProjectGoal struct {
	gorm.Model
	ProjectID  uint   `gorm:"index"`
	Timeframe  string // weekly|monthly|quarterly|milestone
	GoalText   string
	TargetDate string
	Achieved   bool `gorm:"default:false"`
	AchievedAt *time.Time
}

// Pattern is a recurring behaviour the mentor has called out.
type Pattern struct {
	gorm.Model
	PatternType string // blocker|overestimation|external_constraint|bad_habit|avoidance
	Description string
	ProjectID   *uint
	Resolved    bool `gorm:"default:false"`
}

// SoulDocEntry is one line of the user's written constitution.
type SoulDocEntry struct {
	gorm.Model
	Content      string
	Category     string // goal_lifetime|goal_5yr|goal_2yr|goal_1yr|philosophy|rule|anti_pattern
	Trigger      string
	SupersededAt *time.Time
}

// Idea sits in the parking lot for a two-week cooling period.
type Idea struct {
	gorm.Model
	Idea            string
	Context         string
	EligibleDate    string
	Status          string `gorm:"default:parked"` // parked|approved|rejected
	ResolutionNotes string
	ResolvedAt      *time.Time
}

// AdminTask covers both one-off tasks (Recurring empty) and recurring ones.
type AdminTask struct {
	gorm.Model
	Title          string
	DueDate        string `gorm:"index"`
	DueTime        string
	Category       string `gorm:"default:personal"`
	Priority       string `gorm:"default:normal"`
	Notes          string
	Status         string `gorm:"default:pending"` // pending|done|skipped|overdue
	Recurring      string // ""|weekly|monthly|yearly
	RecurringDay   *int   // weekday 0-6 for weekly, day-of-month for monthly
	RecurringMonth *int
	CompletedAt    *time.Time
}

type ImportantDate struct {
	gorm.Model
	Title        string
	DateMonth    int
	DateDay      int
	Year         *int
	Category     string `gorm:"default:birthday"`
	ReminderDays int    `gorm:"default:7"`
	Notes        string
}

// Transaction is one bank statement row. The composite unique index is what
// makes repeated CSV imports count duplicates as skipped.
type Transaction struct {
	gorm.Model
	Date                string  `gorm:"index;uniqueIndex:idx_txn_dedupe"`
	Description         string  `gorm:"uniqueIndex:idx_txn_dedupe"`
	Amount              float64 `gorm:"uniqueIndex:idx_txn_dedupe"`
	Category            string
	Source              string `gorm:"uniqueIndex:idx_txn_dedupe"` // revolut|aib
	OriginalDescription string
	BalanceAfter        *float64
	IsTransfer          bool
}

type BudgetLimit struct {
	gorm.Model
	Category     string `gorm:"uniqueIndex"`
	MonthlyLimit float64
}

// NutritionLog is one day of MyFitnessPal totals, upserted by date.
type NutritionLog struct {
	gorm.Model
	Date        string `gorm:"uniqueIndex"`
	Calories    int
	CarbsG      int
	FatG        int
	ProteinG    int
	MealsLogged int
}

// DailyLog is the daily habit/health entry, upserted by date.
type DailyLog struct {
	gorm.Model
	Date             string `gorm:"uniqueIndex"`
	WeightKg         *float64
	Steps            *int
	SleepHours       *float64
	CyclingScheduled *bool
	CyclingCompleted *bool
	CyclingNotes     string
	SkincareAM       *bool
	SkincarePM       *bool
	SkincareNotes    string
	HealthNotes      string
	BlockID          *uint
}

// TrainingBlock is a roughly month-long phase (bulk, mini cut, final cut)
// spanning full weeks: first Monday of the month to the Sunday on or after
// month end.
type TrainingBlock struct {
	gorm.Model
	Name          string
	StartDate     string `gorm:"index"`
	EndDate       string `gorm:"index"`
	Phase         string // bulk|mini_cut|final_cut
	CalorieTarget *int
	ProteinTarget *int
	WeightStart   *float64
	WeightTarget  *float64
	Notes         string
}

type TrainingSession struct {
	gorm.Model
	Date        string `gorm:"index"`
	SessionType string
	Scheduled   bool `gorm:"default:false"`
	Completed   bool `gorm:"default:false"`
	Feedback    string
	DurationMin *int
	BlockID     *uint `gorm:"index"`
}

type TrainingExercise struct {
	gorm.Model
	SessionID    uint `gorm:"index"`
	ExerciseName string
	Sets         int
	Reps         *int
	WeightKg     *float64
	IsMainLift   bool
	Notes        string
}

// MainLiftProgress records one main-lift performance. Confirmed stays false
// until the user explicitly accepts the suggested next weight.
type MainLiftProgress struct {
	gorm.Model
	Date         string `gorm:"index"`
	LiftName     string `gorm:"index"`
	WeightKg     float64
	Sets         int
	Reps         int
	TargetReps   int
	HitTarget    bool
	NextWeightKg *float64
	Confirmed    bool `gorm:"default:false"`
}

// WorkoutTemplate is one exercise slot of a session-type template, holding
// the current working weight that generated sessions snapshot.
type WorkoutTemplate struct {
	gorm.Model
	SessionType     string `gorm:"index"`
	ExerciseOrder   int
	ExerciseName    string
	Sets            int
	RepRange        string // e.g. "6-8"
	CurrentWeightKg *float64
	IsMainLift      bool
}

// ScheduleEvent is one committed calendar block tracked for adherence.
// Correlation with the external calendar is purely by the reserved title
// prefix; no foreign key is stored.
type ScheduleEvent struct {
	gorm.Model
	Date          string `gorm:"index"`
	StartTime     string
	EndTime       string
	Title         string
	Description   string
	Category      string `gorm:"default:personal"`
	Status        string `gorm:"default:planned"` // planned|completed|partial|skipped|audrey_time|rescheduled
	ActualSummary string
	GapReason     string
}

// PendingPlan is the single staged week proposal. Staging a new plan deletes
// any existing rows first; last write wins.
type PendingPlan struct {
	gorm.Model
	Events string // JSON-encoded []plan event
}

type ProgressPhoto struct {
	gorm.Model
	Date    string
	BlockID *uint
	Notes   string
}

type FitnessGoal struct {
	gorm.Model
	Category    string // body_composition|strength|aesthetic|habit|timeline
	GoalText    string
	TargetValue string
	TargetDate  string
	Notes       string
	Status      string `gorm:"default:active"` // active|achieved|revised
	AchievedAt  *time.Time
}

// AllModels is the migration set, shared by the Postgres connector and the
// SQLite test databases.
func AllModels() []interface{} {
	return []interface{}{
		&Conversation{},
		&Project{}, &ProjectLog{}, &ProjectGoal{}, &Pattern{}, &SoulDocEntry{}, &Idea{},
		&AdminTask{}, &ImportantDate{},
		&Transaction{}, &BudgetLimit{},
		&NutritionLog{}, &DailyLog{},
		&TrainingBlock{}, &TrainingSession{}, &TrainingExercise{},
		&MainLiftProgress{}, &WorkoutTemplate{},
		&ScheduleEvent{}, &PendingPlan{},
		&ProgressPhoto{}, &FitnessGoal{},
	}
}
