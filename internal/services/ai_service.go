package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jasonoc/plato/internal/database"
)

const (
	geminiModel = "gemini-1.5-flash"

	// replyTokens bounds a normal chat turn; planTokens leaves room for a
	// full week proposal with its JSON action block.
	replyTokens int32 = 1024
	planTokens  int32 = 4096
)

// AIService wraps the Gemini client behind a single chat entry point.
type AIService struct {
	geminiClient *genai.Client
}

func NewAIService(ctx context.Context, geminiAPIKey string) (*AIService, error) {
	geminiClient, err := genai.NewClient(ctx, option.WithAPIKey(geminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &AIService{geminiClient: geminiClient}, nil
}

func (s *AIService) Close() error {
	return s.geminiClient.Close()
}

// Chat sends one user turn with the assembled system prompt and prior
// conversation history, returning the assistant's reply text. Planning turns
// get a larger output budget.
func (s *AIService) Chat(ctx context.Context, systemPrompt string, history []database.Conversation, userMessage string, planning bool) (string, error) {
	model := s.geminiClient.GenerativeModel(geminiModel)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	maxTokens := replyTokens
	if planning {
		maxTokens = planTokens
	}
	model.SetMaxOutputTokens(maxTokens)

	chat := model.StartChat()
	chat.History = make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := "user"
		if turn.Role == "assistant" {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(userMessage))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty model response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	reply := strings.TrimSpace(b.String())
	if reply == "" {
		return "", fmt.Errorf("empty model response")
	}
	return reply, nil
}
