package schedule

import (
	"testing"
	"time"
)

func TestBuildWeeklyTemplate_SevenContiguousDays(t *testing.T) {
	weekStart := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	tmpl := BuildWeeklyTemplate(weekStart)

	if tmpl.WeekStart != "2026-02-02" {
		t.Errorf("WeekStart = %s, want 2026-02-02", tmpl.WeekStart)
	}
	if len(tmpl.Days) != 7 {
		t.Fatalf("got %d days, want 7", len(tmpl.Days))
	}
	for i, day := range tmpl.Days {
		wantDate := weekStart.AddDate(0, 0, i).Format(DateLayout)
		if day.Date != wantDate {
			t.Errorf("day %d date = %s, want %s", i, day.Date, wantDate)
		}
		if len(day.Blocks) == 0 {
			t.Errorf("day %d has no blocks", i)
		}
	}
	if tmpl.Days[0].Day != "Monday" || tmpl.Days[6].Day != "Sunday" {
		t.Errorf("week runs %s..%s, want Monday..Sunday", tmpl.Days[0].Day, tmpl.Days[6].Day)
	}
}

func TestBuildWeeklyTemplate_BlocksCoverDayWithoutGaps(t *testing.T) {
	tmpl := BuildWeeklyTemplate(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	for _, day := range tmpl.Days {
		for i := 1; i < len(day.Blocks); i++ {
			prev, cur := day.Blocks[i-1], day.Blocks[i]
			if prev.End != cur.Start {
				t.Errorf("%s: gap between %q (ends %s) and %q (starts %s)",
					day.Date, prev.Label, prev.End, cur.Label, cur.Start)
			}
		}
		last := day.Blocks[len(day.Blocks)-1]
		if last.End != "23:00" {
			t.Errorf("%s: last block ends %s, want 23:00", day.Date, last.End)
		}
	}
}

func TestBuildWeeklyTemplate_OfficeCutover(t *testing.T) {
	countOffice := func(tmpl Template) int {
		n := 0
		for _, day := range tmpl.Days {
			if day.Location == "office" {
				n++
			}
		}
		return n
	}

	before := BuildWeeklyTemplate(time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC))
	if got := countOffice(before); got != 2 {
		t.Errorf("week before cutover has %d office days, want 2", got)
	}
	if before.Days[2].Location != "office" || before.Days[3].Location != "office" {
		t.Error("pre-cutover office days should be Wednesday and Thursday")
	}

	after := BuildWeeklyTemplate(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	if got := countOffice(after); got != 3 {
		t.Errorf("week after cutover has %d office days, want 3", got)
	}
	if after.Days[1].Location != "office" {
		t.Error("post-cutover office days should include Tuesday")
	}
}

func TestBuildWeeklyTemplate_GymOnMondayAndTuesdayWFH(t *testing.T) {
	tmpl := BuildWeeklyTemplate(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))

	hasGym := func(day Day) bool {
		for _, block := range day.Blocks {
			if block.Type == BlockFixed && block.Label == "Gym session" {
				return true
			}
		}
		return false
	}

	if !hasGym(tmpl.Days[0]) {
		t.Error("Monday should carry a fixed gym session")
	}
	if !hasGym(tmpl.Days[1]) {
		t.Error("Tuesday should carry a fixed gym session")
	}
	for i := 2; i < 7; i++ {
		if hasGym(tmpl.Days[i]) {
			t.Errorf("day %d should not have a gym block", i)
		}
	}
}

func TestBuildWeeklyTemplate_WeekendFixedCommitments(t *testing.T) {
	tmpl := BuildWeeklyTemplate(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))

	for _, offset := range []int{5, 6} {
		day := tmpl.Days[offset]
		if day.Location != "home" {
			t.Errorf("%s location = %s, want home", day.Day, day.Location)
		}
		fixed := 0
		for _, block := range day.Blocks {
			if block.Type == BlockFixed {
				fixed++
			}
		}
		if fixed < 2 {
			t.Errorf("%s has %d fixed blocks, want at least 2 (guzheng runs)", day.Day, fixed)
		}
	}
}
