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

// ProjectService covers long-running projects, their logs and goals, behaviour
// patterns, the soul doc and the idea parking lot.
type ProjectService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db, now: time.Now}
}

// ---------------- projects ----------------

// ProjectDetail is a project with its open goals and most recent work logs.
type ProjectDetail struct {
	database.Project
	CurrentGoals []database.ProjectGoal
	RecentLogs   []database.ProjectLog
}

func (s *ProjectService) ActiveProjects(ctx context.Context) ([]ProjectDetail, error) {
	var projects []database.Project
	if err := s.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("id").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	result := make([]ProjectDetail, 0, len(projects))
	for _, project := range projects {
		detail := ProjectDetail{Project: project}

		if err := s.db.WithContext(ctx).
			Where("project_id = ? AND achieved = ?", project.ID, false).
			Find(&detail.CurrentGoals).Error; err != nil {
			return nil, fmt.Errorf("failed to load project goals: %w", err)
		}
		sortGoalsByTimeframe(detail.CurrentGoals)
		if err := s.db.WithContext(ctx).
			Where("project_id = ?", project.ID).
			Order("created_at DESC").
			Limit(5).
			Find(&detail.RecentLogs).Error; err != nil {
			return nil, fmt.Errorf("failed to load project logs: %w", err)
		}
		result = append(result, detail)
	}
	return result, nil
}

func (s *ProjectService) ProjectBySlug(ctx context.Context, slug string) (*database.Project, error) {
	var project database.Project
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&project).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return &project, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, name, slug, intent string) (*database.Project, error) {
	if name == "" || slug == "" {
		return nil, apperrors.NewValidationError("project name and slug are required")
	}
	project := &database.Project{
		Name:   name,
		Slug:   slug,
		Intent: intent,
		Status: "active",
	}
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// ProjectUpdates carries the optional fields update_project may change.
type ProjectUpdates struct {
	Status               string   `json:"status"`
	TargetDate           string   `json:"target_date"`
	EstimatedWeeklyHours *float64 `json:"estimated_weekly_hours"`
	StickTwistCriteria   string   `json:"stick_twist_criteria"`
	AlignmentRationale   string   `json:"alignment_rationale"`
	Intent               string   `json:"intent"`
}

func (s *ProjectService) UpdateProject(ctx context.Context, slug string, updates ProjectUpdates) (*database.Project, error) {
	project, err := s.ProjectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if updates.Status != "" {
		fields["status"] = updates.Status
	}
	if updates.TargetDate != "" {
		fields["target_date"] = updates.TargetDate
	}
	if updates.EstimatedWeeklyHours != nil {
		fields["estimated_weekly_hours"] = *updates.EstimatedWeeklyHours
	}
	if updates.StickTwistCriteria != "" {
		fields["stick_twist_criteria"] = updates.StickTwistCriteria
	}
	if updates.AlignmentRationale != "" {
		fields["alignment_rationale"] = updates.AlignmentRationale
	}
	if updates.Intent != "" {
		fields["intent"] = updates.Intent
	}
	if len(fields) == 0 {
		return project, nil
	}
	if err := s.db.WithContext(ctx).Model(project).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// ---------------- work logs ----------------

func (s *ProjectService) LogWork(ctx context.Context, slug, summary string, durationMins *int, blockers string, tags []string, mood, rawMessage string) (*database.ProjectLog, error) {
	project, err := s.ProjectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	entry := &database.ProjectLog{
		ProjectID:    project.ID,
		Summary:      summary,
		DurationMins: durationMins,
		Blockers:     blockers,
		Tags:         strings.Join(tags, ","),
		Mood:         mood,
		RawMessage:   rawMessage,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to log work: %w", err)
	}
	return entry, nil
}

// ---------------- goals ----------------

func (s *ProjectService) AddGoal(ctx context.Context, slug, timeframe, goalText, targetDate string) (*database.ProjectGoal, error) {
	project, err := s.ProjectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	goal := &database.ProjectGoal{
		ProjectID:  project.ID,
		Timeframe:  timeframe,
		GoalText:   goalText,
		TargetDate: targetDate,
	}
	if err := s.db.WithContext(ctx).Create(goal).Error; err != nil {
		return nil, fmt.Errorf("failed to add goal: %w", err)
	}
	return goal, nil
}

// AchieveGoal marks a project's open goal done by case-insensitive fragment of
// its text.
func (s *ProjectService) AchieveGoal(ctx context.Context, slug, fragment string) (*database.ProjectGoal, error) {
	project, err := s.ProjectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	var goal database.ProjectGoal
	err = s.db.WithContext(ctx).
		Where("project_id = ? AND achieved = ? AND LOWER(goal_text) LIKE ?",
			project.ID, false, "%"+strings.ToLower(fragment)+"%").
		First(&goal).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find goal: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).
		Model(&goal).
		Updates(map[string]interface{}{"achieved": true, "achieved_at": &now}).Error; err != nil {
		return nil, fmt.Errorf("failed to achieve goal: %w", err)
	}
	return &goal, nil
}

// ---------------- patterns ----------------

func (s *ProjectService) AddPattern(ctx context.Context, patternType, description, projectSlug string) (*database.Pattern, error) {
	pattern := &database.Pattern{
		PatternType: patternType,
		Description: description,
	}
	if projectSlug != "" {
		if project, err := s.ProjectBySlug(ctx, projectSlug); err == nil {
			pattern.ProjectID = &project.ID
		}
	}
	if err := s.db.WithContext(ctx).Create(pattern).Error; err != nil {
		return nil, fmt.Errorf("failed to add pattern: %w", err)
	}
	return pattern, nil
}

func (s *ProjectService) UnresolvedPatterns(ctx context.Context) ([]database.Pattern, error) {
	var patterns []database.Pattern
	if err := s.db.WithContext(ctx).
		Where("resolved = ?", false).
		Find(&patterns).Error; err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	return patterns, nil
}

// ---------------- soul doc ----------------

func (s *ProjectService) AddSoulDocEntry(ctx context.Context, content, category, trigger string) (*database.SoulDocEntry, error) {
	if content == "" {
		return nil, apperrors.NewValidationError("soul doc content is required")
	}
	entry := &database.SoulDocEntry{
		Content:  content,
		Category: category,
		Trigger:  trigger,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to add soul doc entry: %w", err)
	}
	return entry, nil
}

// SoulDoc renders the active (non-superseded) entries grouped by category as
// the markdown block embedded into the system prompt.
func (s *ProjectService) SoulDoc(ctx context.Context) (string, error) {
	var entries []database.SoulDocEntry
	if err := s.db.WithContext(ctx).
		Where("superseded_at IS NULL").
		Order("id").
		Find(&entries).Error; err != nil {
		return "", fmt.Errorf("failed to load soul doc: %w", err)
	}
	if len(entries) == 0 {
		return "No soul doc entries yet.", nil
	}

	grouped := make(map[string][]string)
	var order []string
	for _, entry := range entries {
		if _, seen := grouped[entry.Category]; !seen {
			order = append(order, entry.Category)
		}
		grouped[entry.Category] = append(grouped[entry.Category], entry.Content)
	}

	var b strings.Builder
	for i, category := range order {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n", strings.ToUpper(category))
		for _, content := range grouped[category] {
			fmt.Fprintf(&b, "- %s\n", content)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// ---------------- idea parking lot ----------------

// ideaCoolingDays is the mandatory waiting period before a parked idea may be
// acted on.
const ideaCoolingDays = 14

func (s *ProjectService) ParkIdea(ctx context.Context, idea, ideaContext string) (*database.Idea, error) {
	if idea == "" {
		return nil, apperrors.NewValidationError("idea text is required")
	}
	entry := &database.Idea{
		Idea:         idea,
		Context:      ideaContext,
		EligibleDate: s.now().AddDate(0, 0, ideaCoolingDays).Format(schedule.DateLayout),
		Status:       "parked",
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to park idea: %w", err)
	}
	return entry, nil
}

func (s *ProjectService) ParkedIdeas(ctx context.Context) ([]database.Idea, error) {
	var ideas []database.Idea
	if err := s.db.WithContext(ctx).
		Where("status = ?", "parked").
		Order("created_at DESC").
		Find(&ideas).Error; err != nil {
		return nil, fmt.Errorf("failed to load parked ideas: %w", err)
	}
	return ideas, nil
}

// ResolveIdea approves or rejects a parked idea matched by fragment.
func (s *ProjectService) ResolveIdea(ctx context.Context, fragment, status, notes string) (*database.Idea, error) {
	if status != "approved" && status != "rejected" {
		return nil, apperrors.NewValidationError("idea status must be approved or rejected")
	}

	var idea database.Idea
	err := s.db.WithContext(ctx).
		Where("status = ? AND LOWER(idea) LIKE ?", "parked", "%"+strings.ToLower(fragment)+"%").
		First(&idea).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find parked idea: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).
		Model(&idea).
		Updates(map[string]interface{}{
			"status":           status,
			"resolution_notes": notes,
			"resolved_at":      &now,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve idea: %w", err)
	}
	return &idea, nil
}

// sortGoalsByTimeframe orders goals weekly, monthly, quarterly, milestone.
func sortGoalsByTimeframe(goals []database.ProjectGoal) {
	rank := map[string]int{"weekly": 0, "monthly": 1, "quarterly": 2, "milestone": 3}
	sort.SliceStable(goals, func(i, j int) bool {
		return rank[goals[i].Timeframe] < rank[goals[j].Timeframe]
	})
}
