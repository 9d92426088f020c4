package prompts

import (
	"reflect"
	"testing"
	"time"
)

func TestDetectDomains(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{"fitness", "just finished my gym session, squat felt heavy", []string{"fitness"}},
		{"schedule", "plan my week please", []string{"schedule"}},
		{"finance", "imported the revolut csv", []string{"finance"}},
		{"admin", "remind me about mam's birthday", []string{"admin"}},
		{"ideas", "park this idea for later", []string{"ideas"}},
		{"multi sorted", "log 90 mins on nitrogen, budget check after", []string{"finance", "projects"}},
		{"case insensitive", "PLAN MY WEEK", []string{"schedule"}},
		{"none", "hello there", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectDomains(tt.message)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectDomains(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestDetectPlanWeek(t *testing.T) {
	// Wednesday 2026-02-04; this week starts Monday 2026-02-02.
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)

	start, ok := DetectPlanWeek("can you plan my week?", now)
	if !ok {
		t.Fatal("should trigger planning")
	}
	if start.Format("2006-01-02") != "2026-02-02" {
		t.Errorf("week start = %s, want current Monday", start.Format("2006-01-02"))
	}

	start, ok = DetectPlanWeek("plan next week for me", now)
	if !ok {
		t.Fatal("should trigger planning")
	}
	if start.Format("2006-01-02") != "2026-02-09" {
		t.Errorf("week start = %s, want next Monday", start.Format("2006-01-02"))
	}

	if _, ok := DetectPlanWeek("how was your week?", now); ok {
		t.Error("plain mention of week should not trigger planning")
	}
}
