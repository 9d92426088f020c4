package services

import (
	"sort"
	"strings"
	"time"
)

// LiftConfig describes one of the four tracked main lifts.
type LiftConfig struct {
	Name       string
	RepRangeLo int
	RepRangeHi int
	Increment  float64 // kg added on a confirmed progression
}

// MainLifts is the closed set of tracked lifts. The squat runs a higher rep
// range than the pressing and pulling movements; the increment is the same
// across all four.
var MainLifts = map[string]LiftConfig{
	"incline_bench": {Name: "Incline Barbell Press", RepRangeLo: 6, RepRangeHi: 8, Increment: 2.5},
	"barbell_row":   {Name: "Barbell Row", RepRangeLo: 6, RepRangeHi: 8, Increment: 2.5},
	"squat":         {Name: "Back Squat", RepRangeLo: 8, RepRangeHi: 10, Increment: 2.5},
	"ohp":           {Name: "Overhead Barbell Press", RepRangeLo: 6, RepRangeHi: 8, Increment: 2.5},
}

// liftAliases maps spoken names to lift keys.
var liftAliases = map[string]string{
	"incline bench": "incline_bench", "incline barbell": "incline_bench",
	"incline press": "incline_bench", "incline": "incline_bench",
	"incline barbell press": "incline_bench",
	"barbell row":           "barbell_row", "row": "barbell_row", "bent over row": "barbell_row",
	"squat": "squat", "back squat": "squat", "squats": "squat",
	"ohp": "ohp", "overhead press": "ohp", "shoulder press": "ohp",
	"military press": "ohp", "overhead barbell press": "ohp",
}

// sortedAliases caches the alias keys longest-first so substring matching is
// deterministic: the longest alias wins, ties broken lexicographically.
var sortedAliases = func() []string {
	keys := make([]string, 0, len(liftAliases))
	for alias := range liftAliases {
		keys = append(keys, alias)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// MatchLift resolves an exercise name to a main-lift key. Exact alias match
// wins; otherwise the longest alias that contains or is contained by the name
// does. Returns "" when the exercise is not a main lift.
func MatchLift(exerciseName string) string {
	name := strings.ToLower(strings.TrimSpace(exerciseName))
	if key, ok := liftAliases[name]; ok {
		return key
	}
	for _, alias := range sortedAliases {
		if strings.Contains(name, alias) || strings.Contains(alias, name) {
			return liftAliases[alias]
		}
	}
	return ""
}

// sessionTypeAliases normalizes shorthand to the four canonical splits.
var sessionTypeAliases = map[string]string{
	"push": "Push", "chest": "Push",
	"legs": "Legs", "leg": "Legs",
	"upper": "Upper Hypertrophy", "upper hypertrophy": "Upper Hypertrophy",
	"shoulders": "Shoulders + Arms", "arms": "Shoulders + Arms",
	"shoulders + arms": "Shoulders + Arms", "shoulder": "Shoulders + Arms",
}

// NormalizeSessionType maps user shorthand to a canonical split name,
// returning the input unchanged when unrecognized.
func NormalizeSessionType(sessionType string) string {
	if normalized, ok := sessionTypeAliases[strings.ToLower(strings.TrimSpace(sessionType))]; ok {
		return normalized
	}
	return sessionType
}

// weeklySchedule fixes which split runs on which weekday (Monday=0).
var weeklySchedule = []struct {
	Weekday     int
	SessionType string
}{
	{0, "Push"},
	{1, "Legs"},
	{3, "Upper Hypertrophy"},
	{5, "Shoulders + Arms"},
}

type yearMonth struct {
	Year  int
	Month time.Month
}

// phaseTimeline is the planned bulk/cut calendar through mid-2028.
var phaseTimeline = map[yearMonth]string{
	{2026, 2}: "bulk", {2026, 3}: "bulk", {2026, 4}: "bulk", {2026, 5}: "bulk",
	{2026, 6}: "mini_cut",
	{2026, 7}: "bulk", {2026, 8}: "bulk", {2026, 9}: "bulk", {2026, 10}: "bulk",
	{2026, 11}: "mini_cut", {2026, 12}: "bulk",
	{2027, 1}: "bulk", {2027, 2}: "bulk", {2027, 3}: "bulk", {2027, 4}: "bulk", {2027, 5}: "bulk",
	{2027, 6}: "mini_cut",
	{2027, 7}: "bulk", {2027, 8}: "bulk", {2027, 9}: "bulk", {2027, 10}: "bulk",
	{2027, 11}: "bulk", {2027, 12}: "bulk",
	{2028, 1}: "final_cut", {2028, 2}: "final_cut", {2028, 3}: "final_cut",
	{2028, 4}: "final_cut", {2028, 5}: "final_cut", {2028, 6}: "final_cut",
}

// NutritionTargets are the per-phase calorie/protein defaults an explicit
// block can override.
type NutritionTargets struct {
	Calories int
	Protein  int
}

var phaseNutrition = map[string]NutritionTargets{
	"bulk":      {Calories: 3000, Protein: 170},
	"mini_cut":  {Calories: 2450, Protein: 180},
	"final_cut": {Calories: 2300, Protein: 185},
}

// PhaseForMonth returns the planned phase, defaulting to bulk outside the
// timeline.
func PhaseForMonth(year int, month time.Month) string {
	if phase, ok := phaseTimeline[yearMonth{year, month}]; ok {
		return phase
	}
	return "bulk"
}

// NutritionForPhase returns the targets for a phase, falling back to bulk.
func NutritionForPhase(phase string) NutritionTargets {
	if targets, ok := phaseNutrition[phase]; ok {
		return targets
	}
	return phaseNutrition["bulk"]
}
