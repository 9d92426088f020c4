// Package schedule holds the pure weekly availability model: a static rule
// set mapping a week to its fixed and free time blocks. It has no side
// effects and no dependencies on storage or the calendar.
package schedule

import "time"

// Block kinds. Only free blocks may be filled by proposed events; everything
// else is an immutable scheduling constraint.
const (
	BlockWork        = "work"
	BlockCommute     = "commute"
	BlockCommutePrep = "commute_prep"
	BlockFixed       = "fixed"
	BlockFree        = "free"
)

type Block struct {
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

type Day struct {
	Date     string  `json:"date"` // "YYYY-MM-DD"
	Day      string  `json:"day"`
	Location string  `json:"location"` // office|wfh|home
	Blocks   []Block `json:"blocks"`
}

type Template struct {
	WeekStart string `json:"week_start"`
	Days      []Day  `json:"days"`
}

// officeCutover is when the hybrid arrangement changes from two to three
// office days per week.
var officeCutover = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

// gymDays are weekday offsets (Mon=0) with a fixed evening gym session.
var gymDays = map[int]bool{0: true, 1: true}

func officeDayBlocks() []Block {
	return []Block{
		{Start: "07:30", End: "08:00", Type: BlockCommutePrep, Label: "Get ready, lift to Luas"},
		{Start: "08:00", End: "09:00", Type: BlockCommute, Label: "Luas to Citco"},
		{Start: "09:00", End: "18:00", Type: BlockWork, Label: "Citco (Office)"},
		{Start: "18:00", End: "19:30", Type: BlockCommute, Label: "Walk → Luas → Walk home"},
		{Start: "19:30", End: "23:00", Type: BlockFree, Label: "Evening block (3.5 hrs)"},
	}
}

func wfhGymDayBlocks() []Block {
	return []Block{
		{Start: "07:30", End: "09:00", Type: BlockFree, Label: "Morning block (1.5 hrs)"},
		{Start: "09:00", End: "18:00", Type: BlockWork, Label: "Citco (WFH)"},
		{Start: "18:00", End: "18:15", Type: BlockCommute, Label: "Travel to gym"},
		{Start: "18:15", End: "19:20", Type: BlockFixed, Label: "Gym session"},
		{Start: "19:20", End: "19:40", Type: BlockCommute, Label: "Travel home from gym"},
		{Start: "19:40", End: "23:00", Type: BlockFree, Label: "Evening block (3.3 hrs)"},
	}
}

func wfhDayBlocks() []Block {
	return []Block{
		{Start: "07:30", End: "09:00", Type: BlockFree, Label: "Morning block (1.5 hrs)"},
		{Start: "09:00", End: "18:00", Type: BlockWork, Label: "Citco (WFH)"},
		{Start: "18:00", End: "23:00", Type: BlockFree, Label: "Evening block (5 hrs)"},
	}
}

func saturdayBlocks() []Block {
	return []Block{
		{Start: "07:30", End: "09:15", Type: BlockFree, Label: "Early morning (1.75 hrs)"},
		{Start: "09:15", End: "10:45", Type: BlockFixed, Label: "Drive mam to guzheng school"},
		{Start: "10:45", End: "11:15", Type: BlockFixed, Label: "Click & collect groceries (on way home)"},
		{Start: "11:15", End: "19:00", Type: BlockFree, Label: "Main block (7.75 hrs)"},
		{Start: "19:00", End: "20:30", Type: BlockFixed, Label: "Pick up mam from guzheng"},
		{Start: "20:30", End: "23:00", Type: BlockFree, Label: "Evening block (2.5 hrs)"},
	}
}

func sundayBlocks() []Block {
	return []Block{
		{Start: "07:30", End: "09:15", Type: BlockFree, Label: "Early morning (1.75 hrs)"},
		{Start: "09:15", End: "10:45", Type: BlockFixed, Label: "Drive mam to guzheng school"},
		{Start: "10:45", End: "19:00", Type: BlockFree, Label: "Main block (8.25 hrs)"},
		{Start: "19:00", End: "20:30", Type: BlockFixed, Label: "Pick up mam from guzheng"},
		{Start: "20:30", End: "23:00", Type: BlockFree, Label: "Evening block (2.5 hrs — keep light, wind down)"},
	}
}

// BuildWeeklyTemplate returns the availability template for the week starting
// at weekStart, which callers normalize to a Monday via WeekStart. It is
// deterministic and always succeeds.
func BuildWeeklyTemplate(weekStart time.Time) Template {
	var officeDays map[int]bool
	if weekStart.Before(officeCutover) {
		officeDays = map[int]bool{2: true, 3: true} // Wed, Thu
	} else {
		officeDays = map[int]bool{1: true, 2: true, 3: true} // Tue, Wed, Thu
	}

	tmpl := Template{WeekStart: weekStart.Format("2006-01-02")}

	for offset := 0; offset < 7; offset++ {
		date := weekStart.AddDate(0, 0, offset)
		day := Day{
			Date: date.Format("2006-01-02"),
			Day:  date.Weekday().String(),
		}

		switch {
		case offset < 5:
			if officeDays[offset] {
				day.Location = "office"
				day.Blocks = officeDayBlocks()
			} else {
				day.Location = "wfh"
				if gymDays[offset] {
					day.Blocks = wfhGymDayBlocks()
				} else {
					day.Blocks = wfhDayBlocks()
				}
			}
		case offset == 5:
			day.Location = "home"
			day.Blocks = saturdayBlocks()
		default:
			day.Location = "home"
			day.Blocks = sundayBlocks()
		}

		tmpl.Days = append(tmpl.Days, day)
	}

	return tmpl
}
