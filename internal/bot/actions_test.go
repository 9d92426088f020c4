package bot

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jasonoc/plato/internal/calendar"
)

func TestExtractActionJSON(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantAction string
		wantText   string
	}{
		{
			name:       "fenced block",
			reply:      "Logged it.\n```json\n{\"action\": \"log\"}\n```\nAnything else?",
			wantAction: `{"action": "log"}`,
			wantText:   "Logged it.\n\nAnything else?",
		},
		{
			name:       "no fence",
			reply:      "Just a normal reply.",
			wantAction: "",
			wantText:   "Just a normal reply.",
		},
		{
			name:       "unterminated fence",
			reply:      "Oops ```json\n{\"action\": \"log\"}",
			wantAction: "",
			wantText:   "Oops ```json\n{\"action\": \"log\"}",
		},
		{
			name:       "block only",
			reply:      "```json\n{\"action\": \"plan_week\"}\n```",
			wantAction: `{"action": "plan_week"}`,
			wantText:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, text := extractActionJSON(tt.reply)
			if action != tt.wantAction {
				t.Errorf("action = %q, want %q", action, tt.wantAction)
			}
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestDetectCSVSource(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{"revolut filename", "account-statement_2026.csv", "", "revolut"},
		{"aib filename", "transaction_export01.csv", "", "aib"},
		{"aib header", "statement.csv", " Posted Account, Posted Transactions Date\n", "aib"},
		{"revolut header", "statement.csv", "Type,Product,Started Date,Completed Date\n", "revolut"},
		{"unknown", "statement.csv", "Date,Amount\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectCSVSource(tt.filename, tt.content); got != tt.want {
				t.Errorf("detectCSVSource(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestLooksLikeMFPDiary(t *testing.T) {
	diary := "Monday Feb 2\nBreakfast\nOats 350\nTOTALS: 2980 310g 95g 172g"
	if !looksLikeMFPDiary(diary) {
		t.Error("diary text with meals and a TOTALS line should match")
	}
	if looksLikeMFPDiary("had Breakfast late today") {
		t.Error("meal word without TOTALS should not match")
	}
	if looksLikeMFPDiary("TOTALS are looking grim this month") {
		t.Error("TOTALS without a meal section should not match")
	}
}

func TestParseRecurringDay(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *int
	}{
		{"number", "3", intPtr(3)},
		{"weekday name", `"thursday"`, intPtr(3)},
		{"short name", `"Sun"`, intPtr(6)},
		{"numeric string", `"15"`, intPtr(15)},
		{"null", "null", nil},
		{"empty", "", nil},
		{"garbage", `"someday"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseRecurringDay(json.RawMessage(tt.raw))
			switch {
			case got == nil && tt.want != nil:
				t.Errorf("got nil, want %d", *tt.want)
			case got != nil && tt.want == nil:
				t.Errorf("got %d, want nil", *got)
			case got != nil && *got != *tt.want:
				t.Errorf("got %d, want %d", *got, *tt.want)
			}
		})
	}
}

func intPtr(v int) *int { return &v }

func TestFormatProposedPlan(t *testing.T) {
	events := []calendar.Event{
		{Date: "2026-02-03", Start: "09:00", End: "12:00", Title: "Deep work: Nitrogen"},
		{Date: "2026-02-02", Start: "07:00", End: "08:00", Title: "Gym session"},
		{Date: "2026-02-02", Start: "09:00", End: "12:00", Title: "Deep work: Nitrogen"},
	}

	msg := formatProposedPlan(events)

	if !strings.HasPrefix(msg, "📋 PROPOSED SCHEDULE:") {
		t.Errorf("missing header:\n%s", msg)
	}
	monday := strings.Index(msg, "Monday Feb 02:")
	tuesday := strings.Index(msg, "Tuesday Feb 03:")
	if monday < 0 || tuesday < 0 || monday > tuesday {
		t.Errorf("days missing or out of order:\n%s", msg)
	}
	if !strings.Contains(msg, "  07:00-08:00: Gym session") {
		t.Errorf("event line malformed:\n%s", msg)
	}
	if !strings.Contains(msg, "Total: 3 blocks.") {
		t.Errorf("missing total:\n%s", msg)
	}
	if !strings.Contains(msg, "Say 'approve'") {
		t.Errorf("missing approval hint:\n%s", msg)
	}
}

func TestApprovePhrases(t *testing.T) {
	for _, phrase := range []string{"approve", "Approved", "  looks good  ", "LGTM"} {
		normalized := strings.ToLower(strings.TrimSpace(phrase))
		if !approvePhrases[normalized] {
			t.Errorf("%q should count as approval", phrase)
		}
	}
	if approvePhrases["approve the budget"] {
		t.Error("longer sentences are for the model, not the shortcut")
	}
}
