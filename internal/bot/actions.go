package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jasonoc/plato/internal/calendar"
	apperrors "github.com/jasonoc/plato/internal/errors"
	"github.com/jasonoc/plato/internal/logger"
	"github.com/jasonoc/plato/internal/schedule"
	"github.com/jasonoc/plato/internal/services"
)

// extractActionJSON pulls the first fenced ```json block out of an LLM reply
// and returns it alongside the reply with the block removed. A malformed or
// absent fence returns the reply untouched.
func extractActionJSON(reply string) (actionJSON, stripped string) {
	start := strings.Index(reply, "```json")
	if start < 0 {
		return "", strings.TrimSpace(reply)
	}
	rest := reply[start+len("```json"):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", strings.TrimSpace(reply)
	}
	actionJSON = strings.TrimSpace(rest[:end])
	stripped = strings.TrimSpace(reply[:start] + rest[end+3:])
	return actionJSON, stripped
}

// processAction decodes and executes one action block, returning a status
// line to prepend to the reply ("" when the action speaks for itself).
// Failures degrade to a warning line rather than swallowing the reply.
func (b *Bot) processAction(ctx context.Context, actionJSON, rawMessage string) string {
	var head struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal([]byte(actionJSON), &head); err != nil {
		logger.Error("Failed to parse action JSON", "error", err)
		return ""
	}

	status, err := b.dispatch(ctx, head.Action, []byte(actionJSON), rawMessage)
	if err != nil {
		logger.Error("Action processing error", "action", head.Action, "error", err)
		if apperrors.IsNotFound(err) {
			return "⚠️ " + err.Error()
		}
		return fmt.Sprintf("⚠️ Error processing action: %v", err)
	}
	return status
}

func (b *Bot) dispatch(ctx context.Context, action string, payload []byte, rawMessage string) (string, error) {
	switch action {
	// projects
	case "log":
		return b.actLogWork(ctx, payload, rawMessage)
	case "create_project":
		return b.actCreateProject(ctx, payload)
	case "add_soul":
		return b.actAddSoul(ctx, payload)
	case "add_goal":
		return b.actAddGoal(ctx, payload)
	case "achieve_goal":
		return b.actAchieveGoal(ctx, payload)
	case "update_project":
		return b.actUpdateProject(ctx, payload)
	case "add_pattern":
		return b.actAddPattern(ctx, payload)

	// ideas
	case "park_idea":
		return b.actParkIdea(ctx, payload)
	case "resolve_idea":
		return b.actResolveIdea(ctx, payload)

	// schedule
	case "plan_week":
		return b.actPlanWeek(ctx, payload)
	case "audrey_time":
		return b.actAudreyTime(ctx, payload)
	case "add_event":
		return b.actAddEvent(ctx, payload)
	case "check_in":
		return b.actCheckIn(ctx, payload)

	// finance
	case "finance_review":
		return b.actFinanceReview(ctx, payload)
	case "set_budget":
		return b.actSetBudget(ctx, payload)

	// fitness
	case "log_workout":
		return b.actLogWorkout(ctx, payload)
	case "daily_log":
		return b.actDailyLog(ctx, payload)
	case "missed_workout":
		return b.actMissedWorkout(ctx, payload)
	case "confirm_lift":
		return b.actConfirmLift(ctx, payload)
	case "weekly_fitness_summary":
		return b.actWeeklySummary(ctx, payload)
	case "block_summary":
		return b.actBlockSummary(ctx)
	case "create_block":
		return b.actCreateBlock(ctx, payload)
	case "plan_next_block":
		return b.actPlanNextBlock(ctx, payload)
	case "todays_workout":
		return b.actTodaysWorkout(ctx, payload)
	case "complete_workout":
		return b.actCompleteWorkout(ctx, payload)
	case "adjust_exercise":
		return b.actAdjustExercise(ctx, payload)
	case "progress_photos":
		return b.actProgressPhotos(ctx, payload)
	case "add_fitness_goal":
		return b.actAddFitnessGoal(ctx, payload)
	case "achieve_fitness_goal":
		return b.actAchieveFitnessGoal(ctx, payload)
	case "revise_fitness_goal":
		return b.actReviseFitnessGoal(ctx, payload)

	// admin
	case "add_task":
		return b.actAddTask(ctx, payload)
	case "complete_task":
		return b.actCompleteTask(ctx, payload)
	case "skip_task":
		return b.actSkipTask(ctx, payload)
	case "delete_task":
		return b.actDeleteTask(ctx, payload)
	case "add_recurring":
		return b.actAddRecurring(ctx, payload)
	case "complete_recurring":
		return b.actCompleteRecurring(ctx, payload)
	case "delete_recurring":
		return b.actDeleteRecurring(ctx, payload)
	case "add_date":
		return b.actAddDate(ctx, payload)
	case "delete_date":
		return b.actDeleteDate(ctx, payload)
	case "show_tasks":
		return b.actShowTasks(ctx, payload)
	}

	logger.Warn("Unknown action ignored", "action", action)
	return "", nil
}

// ---------------- project actions ----------------

func (b *Bot) actLogWork(ctx context.Context, payload []byte, rawMessage string) (string, error) {
	var p struct {
		ProjectSlug  string   `json:"project_slug"`
		Summary      string   `json:"summary"`
		DurationMins *int     `json:"duration_mins"`
		Blockers     string   `json:"blockers"`
		Tags         []string `json:"tags"`
		Mood         string   `json:"mood"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	_, err := b.svc.Projects.LogWork(ctx, p.ProjectSlug, p.Summary, p.DurationMins, p.Blockers, p.Tags, p.Mood, rawMessage)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return fmt.Sprintf("⚠️ Project '%s' not found.", p.ProjectSlug), nil
		}
		return "", err
	}
	return "", nil
}

func (b *Bot) actCreateProject(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Name   string `json:"name"`
		Slug   string `json:"slug"`
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	_, err := b.svc.Projects.CreateProject(ctx, p.Name, p.Slug, p.Intent)
	return "", err
}

func (b *Bot) actAddSoul(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Content  string `json:"content"`
		Category string `json:"category"`
		Trigger  string `json:"trigger"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	if p.Trigger == "" {
		p.Trigger = "Conversation"
	}
	_, err := b.svc.Projects.AddSoulDocEntry(ctx, p.Content, p.Category, p.Trigger)
	return "", err
}

func (b *Bot) actAddGoal(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		ProjectSlug string `json:"project_slug"`
		Timeframe   string `json:"timeframe"`
		GoalText    string `json:"goal_text"`
		TargetDate  string `json:"target_date"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	_, err := b.svc.Projects.AddGoal(ctx, p.ProjectSlug, p.Timeframe, p.GoalText, p.TargetDate)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ Project '%s' not found.", p.ProjectSlug), nil
	}
	return "", err
}

func (b *Bot) actAchieveGoal(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		ProjectSlug  string `json:"project_slug"`
		GoalFragment string `json:"goal_fragment"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	_, err := b.svc.Projects.AchieveGoal(ctx, p.ProjectSlug, p.GoalFragment)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ Couldn't find matching goal for '%s'.", p.GoalFragment), nil
	}
	return "", err
}

func (b *Bot) actUpdateProject(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Slug    string                  `json:"slug"`
		Updates services.ProjectUpdates `json:"updates"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	_, err := b.svc.Projects.UpdateProject(ctx, p.Slug, p.Updates)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ Project '%s' not found.", p.Slug), nil
	}
	return "", err
}

func (b *Bot) actAddPattern(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		PatternType string `json:"pattern_type"`
		Description string `json:"description"`
		ProjectSlug string `json:"project_slug"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	_, err := b.svc.Projects.AddPattern(ctx, p.PatternType, p.Description, p.ProjectSlug)
	return "", err
}

// ---------------- idea actions ----------------

func (b *Bot) actParkIdea(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Idea    string `json:"idea"`
		Context string `json:"context"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	idea, err := b.svc.Projects.ParkIdea(ctx, p.Idea, p.Context)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("💡 Parked: %q\nEligible for review: %s", p.Idea, idea.EligibleDate), nil
}

func (b *Bot) actResolveIdea(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		IdeaFragment string `json:"idea_fragment"`
		Status       string `json:"status"`
		Notes        string `json:"notes"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	_, err := b.svc.Projects.ResolveIdea(ctx, p.IdeaFragment, p.Status, p.Notes)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ Couldn't find parked idea matching '%s'", p.IdeaFragment), nil
	}
	if err != nil {
		return "", err
	}
	icon := "❌"
	if p.Status == "approved" {
		icon = "✅"
	}
	return fmt.Sprintf("%s Idea resolved: %s", icon, p.Status), nil
}

// ---------------- schedule actions ----------------

func (b *Bot) actPlanWeek(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Events []calendar.Event `json:"events"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	if len(p.Events) == 0 {
		return "⚠️ No events in schedule.", nil
	}
	if err := b.svc.Schedule.StagePlan(ctx, p.Events); err != nil {
		return "", err
	}
	return formatProposedPlan(p.Events), nil
}

// formatProposedPlan renders the staged plan grouped by day for review.
func formatProposedPlan(events []calendar.Event) string {
	byDate := make(map[string][]calendar.Event)
	var dates []string
	for _, e := range events {
		if _, seen := byDate[e.Date]; !seen {
			dates = append(dates, e.Date)
		}
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	sort.Strings(dates)

	var msg strings.Builder
	msg.WriteString("📋 PROPOSED SCHEDULE:\n\n")
	for _, date := range dates {
		dayName := date
		if parsed, err := time.Parse(schedule.DateLayout, date); err == nil {
			dayName = parsed.Format("Monday Jan 02")
		}
		msg.WriteString(dayName + ":\n")
		for _, e := range byDate[date] {
			fmt.Fprintf(&msg, "  %s-%s: %s\n", e.Start, e.End, e.Title)
		}
		msg.WriteString("\n")
	}
	fmt.Fprintf(&msg, "Total: %d blocks.\n", len(events))
	msg.WriteString("Say 'approve' to push to calendar, or tell me what to change.")
	return msg.String()
}

func (b *Bot) processApprovePlan(ctx context.Context) string {
	result, err := b.svc.Schedule.ApprovePlan(ctx)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "⚠️ No pending plan to approve. Say 'plan my week' first."
		}
		logger.Error("Approve plan error", "error", err)
		return fmt.Sprintf("⚠️ Error pushing plan: %v", err)
	}
	return fmt.Sprintf("📅 Approved! Scheduled %d events (cleared %d old ones). Tracking %d blocks.",
		result.Created, result.Cleared, result.Tracked)
}

func (b *Bot) actAudreyTime(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Date     string `json:"date"`
		FromTime string `json:"from_time"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	if p.Date == "" {
		p.Date = b.now().Format(schedule.DateLayout)
	}
	if p.FromTime == "" {
		p.FromTime = "18:00"
	}
	result, err := b.svc.Schedule.CancelEvening(ctx, p.Date, p.FromTime)
	if err != nil {
		return "", err
	}
	if len(result.CancelledTitles) == 0 && result.MarkedCount == 0 {
		return "No planned blocks to cancel for tonight.", nil
	}
	return fmt.Sprintf("💕 Audrey time activated. Cancelled %d blocks: %s",
		len(result.CancelledTitles), strings.Join(result.CancelledTitles, ", ")), nil
}

func (b *Bot) actAddEvent(ctx context.Context, payload []byte) (string, error) {
	var ev calendar.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return "", err
	}
	if ev.Category == "" {
		ev.Category = "personal"
	}
	if err := b.svc.Schedule.AddEvent(ctx, ev); err != nil {
		return "", err
	}
	return fmt.Sprintf("📌 Added: %s on %s %s-%s", ev.Title, ev.Date, ev.Start, ev.End), nil
}

func (b *Bot) actCheckIn(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		EventID       uint   `json:"event_id"`
		Status        string `json:"status"`
		ActualSummary string `json:"actual_summary"`
		GapReason     string `json:"gap_reason"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	if p.Status == "" {
		p.Status = "completed"
	}
	event, err := b.svc.Schedule.CheckIn(ctx, p.EventID, p.Status, p.ActualSummary, p.GapReason)
	if apperrors.IsNotFound(err) {
		return "No recent planned block found to check in against.", nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Checked in for '%s': %s", event.Title, p.Status), nil
}

// ---------------- finance actions ----------------

func (b *Bot) actFinanceReview(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	now := b.now()
	if p.Year == 0 {
		p.Year = now.Year()
	}
	if p.Month == 0 {
		p.Month = int(now.Month())
	}
	summary, err := b.svc.Finance.MonthSummary(ctx, p.Year, time.Month(p.Month))
	if err != nil {
		return "", err
	}
	if summary.TransactionCount == 0 {
		return fmt.Sprintf("No transactions recorded for %s. Upload a statement first.", summary.Month), nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "💶 FINANCE — %s\n\n", summary.Month)
	fmt.Fprintf(&msg, "Income: €%.2f\nSpending: €%.2f\nNet: €%.2f\nSavings rate: %.1f%%\n",
		summary.TotalIncome, summary.TotalSpending, summary.Net, summary.SavingsRatePct)
	if len(summary.ByCategory) > 0 {
		msg.WriteString("\nBy category:\n")
		for _, entry := range summary.ByCategory {
			fmt.Fprintf(&msg, "  %s: €%.2f\n", entry.Category, entry.Spent)
		}
	}
	alerts, err := b.svc.Finance.CheckBudgetAlerts(ctx, p.Year, time.Month(p.Month))
	if err == nil {
		for _, alert := range alerts {
			icon := "🟡"
			if alert.Status == "over" {
				icon = "🔴"
			}
			fmt.Fprintf(&msg, "%s %s: €%.2f of €%.2f (%.1f%%)\n", icon, alert.Category, alert.Spent, alert.Limit, alert.Pct)
		}
	}
	return strings.TrimRight(msg.String(), "\n"), nil
}

func (b *Bot) actSetBudget(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Category     string  `json:"category"`
		MonthlyLimit float64 `json:"monthly_limit"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	if err := b.svc.Finance.SetBudgetLimit(ctx, p.Category, p.MonthlyLimit); err != nil {
		return "", err
	}
	return fmt.Sprintf("💰 Budget set: %s at €%.2f/month", p.Category, p.MonthlyLimit), nil
}

func (b *Bot) processCSVImport(ctx context.Context, content, source string) string {
	var (
		parsed []services.ParsedTransaction
		err    error
	)
	switch source {
	case "revolut":
		parsed, err = services.ParseRevolutCSV(content)
	case "aib":
		parsed, err = services.ParseAIBCSV(content)
	default:
		return "⚠️ Unknown statement source."
	}
	if err != nil {
		return fmt.Sprintf("⚠️ Couldn't parse the CSV: %v", err)
	}
	if len(parsed) == 0 {
		return "⚠️ No usable transactions found in that file."
	}

	result, err := b.svc.Finance.ImportTransactions(ctx, parsed)
	if err != nil {
		return fmt.Sprintf("⚠️ Import failed: %v", err)
	}
	return fmt.Sprintf("💳 %s import done: %d new transactions, %d duplicates skipped.",
		strings.ToUpper(source), result.Imported, result.Skipped)
}

func (b *Bot) processMFPImport(ctx context.Context, text string) string {
	days := services.ParseMFPDiary(text)
	if len(days) == 0 {
		return "⚠️ Couldn't find any diary days in that text. Paste the MFP printable diary export."
	}
	result, err := b.svc.Training.ImportNutrition(ctx, days)
	if err != nil {
		logger.Error("Nutrition import failed", "error", err)
		return fmt.Sprintf("⚠️ Nutrition import failed: %v", err)
	}
	return fmt.Sprintf("🍽️ Nutrition logged: %d days imported, %d already recorded.", result.Imported, result.Skipped)
}

// ---------------- fitness actions ----------------

func (b *Bot) actLogWorkout(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		SessionType  string                   `json:"session_type"`
		Exercises    []services.ExerciseInput `json:"exercises"`
		Feedback     string                   `json:"feedback"`
		DurationMins *int                     `json:"duration_mins"`
		Date         string                   `json:"date"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	result, err := b.svc.Training.LogSession(ctx, p.SessionType, p.Exercises, p.Date, p.Feedback, p.DurationMins)
	if err != nil {
		return "", err
	}

	msg := fmt.Sprintf("💪 %s logged: %d exercises.", result.Session.SessionType, result.Exercises)
	for _, prog := range result.Progressions {
		if prog.HitTarget && prog.NextWeight != nil {
			msg += fmt.Sprintf("\n🔥 %s hit target (%d×%d @ %.1fkg) — confirm the move to %.1fkg?",
				prog.Lift, prog.Sets, prog.Reps, prog.Weight, *prog.NextWeight)
		}
	}
	return msg, nil
}

func (b *Bot) actDailyLog(ctx context.Context, payload []byte) (string, error) {
	var input services.DailyLogInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return "", err
	}
	entry, err := b.svc.Training.UpsertDailyLog(ctx, input)
	if err != nil {
		return "", err
	}
	msg := fmt.Sprintf("📝 Daily log saved for %s.", entry.Date)
	if entry.WeightKg != nil {
		msg = fmt.Sprintf("📝 Daily log saved for %s — %.1fkg.", entry.Date, *entry.WeightKg)
	}
	return msg, nil
}

func (b *Bot) actMissedWorkout(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		SessionType string `json:"session_type"`
		Reason      string `json:"reason"`
		Date        string `json:"date"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	session, err := b.svc.Training.LogMissedSession(ctx, p.SessionType, p.Date, p.Reason)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📋 Noted: %s on %s missed.", session.SessionType, session.Date), nil
}

func (b *Bot) actConfirmLift(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		LiftKey string `json:"lift_key"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	result, err := b.svc.Training.ConfirmProgression(ctx, p.LiftKey)
	if apperrors.IsNotFound(err) {
		return "⚠️ No pending progression to confirm for that lift.", nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🔥 %s moving to %.1fkg. Template updated, %d upcoming sessions adjusted.",
		result.Lift, result.NewWeight, result.SessionsUpdated), nil
}

func (b *Bot) actWeeklySummary(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		WeekStart string `json:"week_start"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	summary, err := b.svc.Training.WeekSummary(ctx, p.WeekStart)
	if err != nil {
		return "", err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "📊 WEEK %s → %s\n\n", summary.WeekStart, summary.WeekEnd)
	fmt.Fprintf(&msg, "Sessions: %d completed", summary.SessionsCompleted)
	if summary.SessionsMissed > 0 {
		fmt.Fprintf(&msg, ", %d missed", summary.SessionsMissed)
	}
	if len(summary.SessionTypes) > 0 {
		fmt.Fprintf(&msg, " (%s)", strings.Join(summary.SessionTypes, ", "))
	}
	msg.WriteString("\n")
	if summary.DaysLogged > 0 {
		fmt.Fprintf(&msg, "Nutrition: %d cal / %dg protein avg over %d days\n",
			summary.AvgCalories, summary.AvgProtein, summary.DaysLogged)
	}
	if summary.WeightFirst != nil && summary.WeightLast != nil {
		fmt.Fprintf(&msg, "Weight: %.1fkg → %.1fkg (%+.1fkg)\n",
			*summary.WeightFirst, *summary.WeightLast, *summary.WeightLast-*summary.WeightFirst)
	}
	if len(summary.Lifts) > 0 {
		msg.WriteString("\nMain lifts:\n")
		for _, key := range []string{"incline_bench", "barbell_row", "squat", "ohp"} {
			entry, ok := summary.Lifts[key]
			if !ok {
				continue
			}
			fmt.Fprintf(&msg, "  %s: %.1fkg × %d×%d\n", services.MainLifts[key].Name, entry.WeightKg, entry.Sets, entry.Reps)
		}
	}
	return strings.TrimRight(msg.String(), "\n"), nil
}

func (b *Bot) actBlockSummary(ctx context.Context) (string, error) {
	summary, err := b.svc.Training.SummariseBlock(ctx, "")
	if apperrors.IsNotFound(err) {
		return "⚠️ No active training block to summarise.", nil
	}
	if err != nil {
		return "", err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "🏋️ BLOCK SUMMARY — %s (%s)\n\n", summary.Block.Name, strings.ToUpper(summary.Block.Phase))
	fmt.Fprintf(&msg, "%s → %s\n", summary.Block.StartDate, summary.Block.EndDate)
	fmt.Fprintf(&msg, "Sessions: %d/%d (%.0f%% adherence)\n",
		summary.SessionsCompleted, summary.SessionsPlanned, summary.AdherencePct)
	if summary.WeightFirst != nil && summary.WeightLast != nil {
		fmt.Fprintf(&msg, "Weight: %.1fkg → %.1fkg (%+.1fkg)\n",
			*summary.WeightFirst, *summary.WeightLast, *summary.WeightLast-*summary.WeightFirst)
	}
	if summary.AvgCalories > 0 {
		fmt.Fprintf(&msg, "Avg calories: %d\n", summary.AvgCalories)
	}
	msg.WriteString("\nTime for progress photos — and plan the next block.")
	return msg.String(), nil
}

func (b *Bot) actCreateBlock(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Name          string   `json:"name"`
		StartDate     string   `json:"start_date"`
		EndDate       string   `json:"end_date"`
		Phase         string   `json:"phase"`
		CalorieTarget int      `json:"calorie_target"`
		ProteinTarget int      `json:"protein_target"`
		WeightStart   *float64 `json:"weight_start"`
		Notes         string   `json:"notes"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	plan := services.BlockPlan{
		Name:          p.Name,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		Phase:         p.Phase,
		CalorieTarget: p.CalorieTarget,
		ProteinTarget: p.ProteinTarget,
		WeightStart:   p.WeightStart,
	}
	block, err := b.svc.Training.CreateBlock(ctx, plan, p.Notes)
	if err != nil {
		return "", err
	}
	generated, err := b.svc.Training.GenerateBlockWorkouts(ctx, block.ID, block.StartDate, block.EndDate)
	if err != nil {
		logger.Error("Workout generation failed", "block", block.Name, "error", err)
		return fmt.Sprintf("🏋️ Block '%s' created, but workout generation failed: %v", block.Name, err), nil
	}
	return fmt.Sprintf("🏋️ Block '%s' created (%s, %s → %s). Generated %d workouts.",
		block.Name, block.Phase, block.StartDate, block.EndDate, generated.SessionsCreated), nil
}

func (b *Bot) actPlanNextBlock(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Year        int      `json:"year"`
		Month       int      `json:"month"`
		WeightStart *float64 `json:"weight_start"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	now := b.now()
	if p.Year == 0 || p.Month == 0 {
		next := now.AddDate(0, 1, 0)
		p.Year = next.Year()
		p.Month = int(next.Month())
	}
	plan := b.svc.Training.PlanNextBlock(p.Year, time.Month(p.Month), p.WeightStart)
	block, err := b.svc.Training.CreateBlock(ctx, plan, "")
	if err != nil {
		return "", err
	}
	generated, err := b.svc.Training.GenerateBlockWorkouts(ctx, block.ID, block.StartDate, block.EndDate)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🏋️ %s planned: %s phase, %s → %s, %d cal / %dg protein. Generated %d workouts (%d already existed).",
		plan.Name, strings.ToUpper(plan.Phase), plan.StartDate, plan.EndDate,
		plan.CalorieTarget, plan.ProteinTarget, generated.SessionsCreated, generated.Skipped), nil
}

func (b *Bot) actTodaysWorkout(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	workout, err := b.svc.Training.TodaysWorkout(ctx, p.Date)
	if apperrors.IsNotFound(err) {
		return "🛋️ No workout scheduled today. Rest day — or tell me to generate the block.", nil
	}
	if err != nil {
		return "", err
	}
	return formatWorkout(workout), nil
}

func formatWorkout(workout *services.SessionWithExercises) string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "🏋️ TODAY: %s (%s)\n\n", workout.SessionType, workout.Date)
	for _, ex := range workout.Exercises {
		line := "  • " + ex.ExerciseName
		if ex.Sets > 0 {
			line += fmt.Sprintf(" — %d sets", ex.Sets)
		}
		if ex.WeightKg != nil {
			line += fmt.Sprintf(" @ %.1fkg", *ex.WeightKg)
		}
		if ex.Notes != "" {
			line += " (" + ex.Notes + ")"
		}
		if ex.IsMainLift {
			line += " ⭐"
		}
		msg.WriteString(line + "\n")
	}
	msg.WriteString("\nSay 'done' when finished, with any exceptions.")
	return msg.String()
}

func (b *Bot) actCompleteWorkout(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Date       string                      `json:"date"`
		Feedback   string                      `json:"feedback"`
		Exceptions []services.WorkoutException `json:"exceptions"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	result, err := b.svc.Training.CompleteWorkout(ctx, p.Date, p.Feedback, p.Exceptions)
	if err != nil {
		var appErr *apperrors.AppError
		if apperrors.AsAppError(err, &appErr) {
			switch appErr.Code {
			case "ALREADY_DONE":
				return "✅ Today's workout is already marked complete.", nil
			case "NO_WORKOUT":
				return "⚠️ No scheduled workout found for today.", nil
			}
		}
		return "", err
	}

	msg := fmt.Sprintf("✅ %s complete: %d exercises", result.SessionType, result.Exercises)
	if result.Exceptions > 0 {
		msg += fmt.Sprintf(" (%d exceptions noted)", result.Exceptions)
	}
	msg += "."
	for _, prog := range result.Progressions {
		if prog.HitTarget && prog.NextWeight != nil {
			msg += fmt.Sprintf("\n🔥 %s hit target — confirm the move to %.1fkg?", prog.Lift, *prog.NextWeight)
		}
	}
	return msg, nil
}

func (b *Bot) actAdjustExercise(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Exercise  string  `json:"exercise"`
		NewWeight float64 `json:"new_weight"`
		Reason    string  `json:"reason"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	result, err := b.svc.Training.AdjustExerciseWeight(ctx, p.Exercise, p.NewWeight)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🔧 %s adjusted to %.1fkg (%d upcoming sessions updated).",
		result.Exercise, result.NewWeight, result.SessionsUpdated), nil
}

func (b *Bot) actProgressPhotos(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Date  string `json:"date"`
		Notes string `json:"notes"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	photo, err := b.svc.Training.AddProgressPhoto(ctx, p.Date, p.Notes)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📸 Progress photos logged for %s.", photo.Date), nil
}

func (b *Bot) actAddFitnessGoal(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Category    string `json:"category"`
		GoalText    string `json:"goal_text"`
		TargetValue string `json:"target_value"`
		TargetDate  string `json:"target_date"`
		Notes       string `json:"notes"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	_, err := b.svc.Training.AddFitnessGoal(ctx, p.Category, p.GoalText, p.TargetValue, p.TargetDate, p.Notes)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🎯 Fitness goal set: %s", p.GoalText), nil
}

func (b *Bot) actAchieveFitnessGoal(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		GoalFragment string `json:"goal_fragment"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	goal, err := b.svc.Training.AchieveFitnessGoal(ctx, p.GoalFragment)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ No active fitness goal matching '%s'.", p.GoalFragment), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🏆 Goal achieved: %s", goal.GoalText), nil
}

func (b *Bot) actReviseFitnessGoal(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		GoalFragment string `json:"goal_fragment"`
		NewText      string `json:"new_text"`
		NewTarget    string `json:"new_target"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	_, err := b.svc.Training.ReviseFitnessGoal(ctx, p.GoalFragment, p.NewText, p.NewTarget)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ No active fitness goal matching '%s'.", p.GoalFragment), nil
	}
	if err != nil {
		return "", err
	}
	return "🎯 Goal revised.", nil
}

// ---------------- admin actions ----------------

func (b *Bot) actAddTask(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Title    string `json:"title"`
		DueDate  string `json:"due_date"`
		DueTime  string `json:"due_time"`
		Category string `json:"category"`
		Priority string `json:"priority"`
		Notes    string `json:"notes"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	task, err := b.svc.Tasks.AddTask(ctx, p.Title, p.DueDate, p.DueTime, p.Category, p.Priority, p.Notes)
	if err != nil {
		return "", err
	}
	if task.DueDate != "" {
		return fmt.Sprintf("📌 Task added: %s (due %s)", task.Title, task.DueDate), nil
	}
	return fmt.Sprintf("📌 Task added: %s", task.Title), nil
}

func (b *Bot) actCompleteTask(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		TaskFragment string `json:"task_fragment"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	task, err := b.svc.Tasks.CompleteTask(ctx, p.TaskFragment)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ No pending task matching '%s'.", p.TaskFragment), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Done: %s", task.Title), nil
}

func (b *Bot) actSkipTask(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		TaskFragment string `json:"task_fragment"`
		Reason       string `json:"reason"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	task, err := b.svc.Tasks.SkipTask(ctx, p.TaskFragment, p.Reason)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ No pending task matching '%s'.", p.TaskFragment), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("⏭️ Skipped: %s", task.Title), nil
}

func (b *Bot) actDeleteTask(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		TaskFragment string `json:"task_fragment"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	task, err := b.svc.Tasks.DeleteTask(ctx, p.TaskFragment)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ No task matching '%s'.", p.TaskFragment), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑️ Deleted: %s", task.Title), nil
}

var weekdayLookup = map[string]int{
	"mon": 0, "monday": 0, "tue": 1, "tuesday": 1, "wed": 2, "wednesday": 2,
	"thu": 3, "thursday": 3, "fri": 4, "friday": 4, "sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

// parseRecurringDay accepts either a weekday name ("thursday") or a bare
// number, since the model produces both.
func parseRecurringDay(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var asNumber int
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return &asNumber
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if day, ok := weekdayLookup[strings.ToLower(strings.TrimSpace(asString))]; ok {
			return &day
		}
		if day, err := strconv.Atoi(strings.TrimSpace(asString)); err == nil {
			return &day
		}
	}
	return nil
}

func (b *Bot) actAddRecurring(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Title          string          `json:"title"`
		Recurring      string          `json:"recurring"`
		RecurringDay   json.RawMessage `json:"recurring_day"`
		RecurringMonth *int            `json:"recurring_month"`
		Category       string          `json:"category"`
		Priority       string          `json:"priority"`
		Notes          string          `json:"notes"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	day := parseRecurringDay(p.RecurringDay)
	task, err := b.svc.Tasks.AddRecurringTask(ctx, p.Title, p.Recurring, day, p.RecurringMonth, p.Category, p.Priority, p.Notes)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🔁 Recurring task added: %s (%s)", task.Title, task.Recurring), nil
}

func (b *Bot) actCompleteRecurring(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		TaskFragment string `json:"task_fragment"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	task, err := b.svc.Tasks.CompleteRecurring(ctx, p.TaskFragment)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ No recurring task matching '%s'.", p.TaskFragment), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ %s done for this cycle.", task.Title), nil
}

func (b *Bot) actDeleteRecurring(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		TaskFragment string `json:"task_fragment"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	task, err := b.svc.Tasks.DeleteRecurring(ctx, p.TaskFragment)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ No recurring task matching '%s'.", p.TaskFragment), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑️ Recurring task removed: %s", task.Title), nil
}

func (b *Bot) actAddDate(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Title        string `json:"title"`
		Month        int    `json:"month"`
		Day          int    `json:"day"`
		Year         *int   `json:"year"`
		Category     string `json:"category"`
		ReminderDays int    `json:"reminder_days"`
		Notes        string `json:"notes"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	entry, err := b.svc.Tasks.AddImportantDate(ctx, p.Title, p.Month, p.Day, p.Year, p.Category, p.ReminderDays, p.Notes)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🗓️ Important date added: %s (%02d-%02d)", entry.Title, entry.DateMonth, entry.DateDay), nil
}

func (b *Bot) actDeleteDate(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		TitleFragment string `json:"title_fragment"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	entry, err := b.svc.Tasks.DeleteImportantDate(ctx, p.TitleFragment)
	if apperrors.IsNotFound(err) {
		return fmt.Sprintf("⚠️ No important date matching '%s'.", p.TitleFragment), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑️ Removed: %s", entry.Title), nil
}

func (b *Bot) actShowTasks(ctx context.Context, payload []byte) (string, error) {
	var p struct {
		Scope string `json:"scope"`
		Days  int    `json:"days"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	if p.Days <= 0 {
		p.Days = 7
	}

	var msg strings.Builder
	switch p.Scope {
	case "today":
		tasks, err := b.svc.Tasks.TasksForDate(ctx, "")
		if err != nil {
			return "", err
		}
		if len(tasks) == 0 {
			return "Nothing on for today. Clean slate.", nil
		}
		msg.WriteString("📋 TODAY:\n")
		for _, t := range tasks {
			icon := "📌"
			if t.Overdue {
				icon = "🔴"
			} else if t.RecurringDue {
				icon = "🔁"
			}
			fmt.Fprintf(&msg, "  %s %s\n", icon, t.Title)
		}
	case "upcoming":
		tasks, err := b.svc.Tasks.UpcomingTasks(ctx, p.Days)
		if err != nil {
			return "", err
		}
		if len(tasks) == 0 {
			return fmt.Sprintf("Nothing due in the next %d days.", p.Days), nil
		}
		fmt.Fprintf(&msg, "📋 NEXT %d DAYS:\n", p.Days)
		for _, t := range tasks {
			fmt.Fprintf(&msg, "  📌 %s: %s\n", t.DueDate, t.Title)
		}
	default:
		pending, err := b.svc.Tasks.PendingTasks(ctx)
		if err != nil {
			return "", err
		}
		recurring, err := b.svc.Tasks.RecurringTasks(ctx)
		if err != nil {
			return "", err
		}
		if len(pending) == 0 && len(recurring) == 0 {
			return "No tasks at all. Suspiciously free.", nil
		}
		if len(pending) > 0 {
			msg.WriteString("📋 PENDING:\n")
			for _, t := range pending {
				line := "  📌 " + t.Title
				if t.DueDate != "" {
					line += " (due " + t.DueDate + ")"
				}
				msg.WriteString(line + "\n")
			}
		}
		if len(recurring) > 0 {
			msg.WriteString("🔁 RECURRING:\n")
			for _, t := range recurring {
				fmt.Fprintf(&msg, "  🔁 %s (%s)\n", t.Title, t.Recurring)
			}
		}
	}
	return strings.TrimRight(msg.String(), "\n"), nil
}
