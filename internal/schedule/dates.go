package schedule

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// WeekStart returns the Monday of the week containing t, at midnight in t's
// location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// NextWeekStart returns the Monday strictly after t's current week.
func NextWeekStart(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 7)
}

// BlockDates computes the training-block span for a month: the first Monday
// of the month through the Sunday on or after the last day of the month.
// Every block therefore covers whole weeks and no generated session day can
// fall in two consecutive blocks.
func BlockDates(year int, month time.Month) (start, end time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysUntilMonday := (8 - int(first.Weekday())) % 7
	start = first.AddDate(0, 0, daysUntilMonday)

	last := first.AddDate(0, 1, -1)
	daysUntilSunday := (7 - int(last.Weekday())) % 7
	end = last.AddDate(0, 0, daysUntilSunday)
	return start, end
}
