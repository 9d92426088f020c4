package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jasonoc/plato/internal/bot/state"
	"github.com/jasonoc/plato/internal/logger"
	"github.com/jasonoc/plato/internal/prompts"
	"github.com/jasonoc/plato/internal/schedule"
	"github.com/jasonoc/plato/internal/services"
)

// historyLimit is how many prior turns are replayed to the LLM.
const historyLimit = 10

// StateStore abstracts the conversational state backend (in-memory or Redis).
type StateStore interface {
	SetState(userID int64, state string)
	State(userID int64) string
	ClearState(userID int64)
	StashCSV(userID int64, content string)
	TakeCSV(userID int64) string
}

// Services bundles everything the bot dispatches into.
type Services struct {
	AI            *services.AIService
	Conversations *services.ConversationService
	Schedule      *services.ScheduleService
	Training      *services.TrainingService
	Finance       *services.FinanceService
	Projects      *services.ProjectService
	Tasks         *services.TaskService
}

type Bot struct {
	api           *tgbotapi.BotAPI
	allowedUserID int64
	svc           Services
	states        StateStore
	now           func() time.Time
}

func NewBot(token string, allowedUserID int64, svc Services, states StateStore) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	if states == nil {
		states = state.NewManager()
	}

	logger.Info("Bot authorized", "account", api.Self.UserName)
	return &Bot{
		api:           api,
		allowedUserID: allowedUserID,
		svc:           svc,
		states:        states,
		now:           time.Now,
	}, nil
}

// Start runs the long-polling loop until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates...")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot is shutting down...")
			return ctx.Err()
		case update := <-updates:
			if err := b.handleUpdate(ctx, update); err != nil {
				logger.Error("Error handling update", "error", err)
			}
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil {
		return nil
	}
	message := update.Message

	if message.From.ID != b.allowedUserID {
		return b.reply(message.Chat.ID, "Plato serves only one master.")
	}

	if message.IsCommand() {
		return b.handleCommand(ctx, message)
	}
	if message.Document != nil {
		return b.handleDocument(ctx, message)
	}
	if message.Text != "" {
		return b.handleText(ctx, message)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}

// ---------------- commands ----------------

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	logger.Info("Handling command", "command", message.Command())
	switch message.Command() {
	case "start":
		b.states.ClearState(message.From.ID)
		return b.reply(message.Chat.ID, "Plato is ready. What have you been working on?")
	case "status":
		return b.handleStatus(ctx, message.Chat.ID)
	case "clear":
		if err := b.svc.Conversations.Clear(ctx); err != nil {
			return err
		}
		return b.reply(message.Chat.ID, "Conversation history cleared. Fresh start.")
	default:
		return b.reply(message.Chat.ID, "Unknown command. I know /start, /status and /clear — everything else is just conversation.")
	}
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) error {
	var msg strings.Builder
	msg.WriteString("📊 Current Status\n\n")

	projects, err := b.svc.Projects.ActiveProjects(ctx)
	if err != nil {
		return err
	}
	for _, p := range projects {
		fmt.Fprintf(&msg, "• %s: %d recent logs\n", p.Name, len(p.RecentLogs))
		if len(p.CurrentGoals) > 0 {
			fmt.Fprintf(&msg, "  Goals: %d active\n", len(p.CurrentGoals))
		}
	}

	patterns, err := b.svc.Projects.UnresolvedPatterns(ctx)
	if err == nil && len(patterns) > 0 {
		fmt.Fprintf(&msg, "\n⚠️ %d unresolved patterns\n", len(patterns))
	}

	today := b.now().Format(schedule.DateLayout)
	if events, err := b.svc.Schedule.PlannedEventsForDate(ctx, today); err == nil && len(events) > 0 {
		msg.WriteString(prompts.TodayScheduleBrief(events))
	}

	weekStart := schedule.WeekStart(b.now()).Format(schedule.DateLayout)
	if stats, err := b.svc.Schedule.WeeklyAdherence(ctx, weekStart); err == nil && stats.Total > 0 {
		fmt.Fprintf(&msg, "\n📈 This week: %.1f%% adherence (%d/%d blocks)",
			stats.AdherencePct, stats.ByStatus["completed"], stats.Total)
		if stats.ByStatus["audrey_time"] > 0 {
			fmt.Fprintf(&msg, "\n💕 Audrey time: %d blocks", stats.ByStatus["audrey_time"])
		}
	}

	return b.reply(chatID, msg.String())
}

// ---------------- text messages ----------------

var approvePhrases = map[string]bool{
	"approve": true, "approved": true, "looks good": true, "push it": true,
	"send it": true, "go ahead": true, "lgtm": true,
}

func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) error {
	userMessage := message.Text
	logger.Info("Received message", "length", len(userMessage))

	// A pending CSV upload waiting for the user to name the bank short-circuits
	// the LLM entirely.
	if b.states.State(message.From.ID) == state.WaitingForCSVSource {
		return b.resolveCSVSource(ctx, message)
	}

	if err := b.svc.Conversations.Save(ctx, "user", userMessage); err != nil {
		logger.Error("Failed to save conversation", "error", err)
	}

	if approvePhrases[strings.ToLower(strings.TrimSpace(userMessage))] {
		result := b.processApprovePlan(ctx)
		if err := b.svc.Conversations.Save(ctx, "assistant", result); err != nil {
			logger.Error("Failed to save conversation", "error", err)
		}
		return b.reply(message.Chat.ID, result)
	}

	// MFP diary text pasted directly into the chat.
	if looksLikeMFPDiary(userMessage) {
		result := b.processMFPImport(ctx, userMessage)
		if err := b.svc.Conversations.Save(ctx, "assistant", result); err != nil {
			logger.Error("Failed to save conversation", "error", err)
		}
		return b.reply(message.Chat.ID, result)
	}

	reply, err := b.converse(ctx, userMessage)
	if err != nil {
		logger.Error("Conversation turn failed", "error", err)
		return b.reply(message.Chat.ID, "⚠️ Something went wrong talking to the model. Try again.")
	}

	if err := b.svc.Conversations.Save(ctx, "assistant", reply); err != nil {
		logger.Error("Failed to save conversation", "error", err)
	}
	return b.reply(message.Chat.ID, reply)
}

// converse runs one full LLM turn: prompt assembly, generation, action
// extraction and dispatch.
func (b *Bot) converse(ctx context.Context, userMessage string) (string, error) {
	scheduleContext := ""
	planning := false
	if weekStart, ok := prompts.DetectPlanWeek(userMessage, b.now()); ok {
		template := schedule.BuildWeeklyTemplate(weekStart)
		scheduleContext = prompts.SchedulePrompt(weekStart, template)
		planning = true
	}

	// A staged plan means change requests should regenerate it.
	if !planning {
		if pending, err := b.svc.Schedule.PendingPlan(ctx); err == nil && len(pending) > 0 {
			scheduleContext = prompts.PendingPlanBrief(len(pending))
			planning = true
		}
	}

	systemPrompt := b.buildSystemPrompt(ctx, userMessage, scheduleContext)

	history, err := b.svc.Conversations.Recent(ctx, historyLimit)
	if err != nil {
		logger.Error("Failed to load history", "error", err)
	}

	reply, err := b.svc.AI.Chat(ctx, systemPrompt, history, userMessage, planning)
	if err != nil {
		return "", err
	}

	actionJSON, stripped := extractActionJSON(reply)
	if actionJSON == "" {
		return stripped, nil
	}

	status := b.processAction(ctx, actionJSON, userMessage)
	if status != "" {
		return status + "\n\n" + stripped, nil
	}
	return stripped, nil
}

// ---------------- document uploads ----------------

func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) error {
	document := message.Document
	filename := strings.ToLower(document.FileName)

	if !strings.HasSuffix(filename, ".csv") {
		return b.reply(message.Chat.ID, "I only accept CSV files for now. Export your statement as CSV from Revolut or AIB.")
	}

	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: document.FileID})
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}
	content, err := download(file.Link(b.api.Token))
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}

	source := detectCSVSource(filename, content)
	if source == "" {
		b.states.StashCSV(message.From.ID, content)
		b.states.SetState(message.From.ID, state.WaitingForCSVSource)
		return b.reply(message.Chat.ID, "Couldn't tell if this is Revolut or AIB. Which bank is it from?")
	}

	if err := b.reply(message.Chat.ID, fmt.Sprintf("📄 Processing %s CSV...", strings.ToUpper(source))); err != nil {
		return err
	}

	result := b.processCSVImport(ctx, content, source)

	if err := b.svc.Conversations.Save(ctx, "user", fmt.Sprintf("[Uploaded %s CSV: %s]", source, document.FileName)); err != nil {
		logger.Error("Failed to save conversation", "error", err)
	}
	if err := b.svc.Conversations.Save(ctx, "assistant", result); err != nil {
		logger.Error("Failed to save conversation", "error", err)
	}
	return b.reply(message.Chat.ID, result)
}

func (b *Bot) resolveCSVSource(ctx context.Context, message *tgbotapi.Message) error {
	answer := strings.ToLower(strings.TrimSpace(message.Text))
	var source string
	switch {
	case strings.Contains(answer, "revolut"):
		source = "revolut"
	case strings.Contains(answer, "aib"):
		source = "aib"
	default:
		return b.reply(message.Chat.ID, "Just tell me 'revolut' or 'aib' — or re-upload with the bank name in the filename.")
	}

	content := b.states.TakeCSV(message.From.ID)
	b.states.ClearState(message.From.ID)
	if content == "" {
		return b.reply(message.Chat.ID, "The upload expired. Send the CSV again.")
	}

	result := b.processCSVImport(ctx, content, source)
	return b.reply(message.Chat.ID, result)
}

// detectCSVSource sniffs the bank from the filename or the header row.
func detectCSVSource(filename, content string) string {
	head := content
	if len(head) > 200 {
		head = head[:200]
	}
	switch {
	case strings.Contains(filename, "account-statement"), strings.Contains(filename, "revolut"):
		return "revolut"
	case strings.Contains(filename, "transaction_export"), strings.Contains(filename, "aib"):
		return "aib"
	case strings.Contains(head, "Posted Account"):
		return "aib"
	case strings.Contains(head, "Started Date"):
		return "revolut"
	}
	return ""
}

func download(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// looksLikeMFPDiary sniffs pasted MyFitnessPal printable-diary text.
func looksLikeMFPDiary(text string) bool {
	return strings.Contains(text, "TOTALS") &&
		(strings.Contains(text, "Breakfast") || strings.Contains(text, "Lunch") ||
			strings.Contains(text, "Dinner") || strings.Contains(text, "Snacks"))
}
