package monitor

import "time"

// Window names the analysis period of one pass. Cutoffs are computed against
// UTC midnight so that a pass started late in the day still covers the whole
// current day.
type Window string

const (
	WindowToday       Window = "today"
	WindowYesterday   Window = "yesterday"
	WindowLastWeek    Window = "last_week"
	WindowLastMonth   Window = "last_month"
	WindowLastQuarter Window = "last_quarter"
)

var windowDays = map[Window]int{
	WindowToday:       0,
	WindowYesterday:   1,
	WindowLastWeek:    7,
	WindowLastMonth:   30,
	WindowLastQuarter: 90,
}

// Valid reports whether the window is one of the named periods.
func (w Window) Valid() bool {
	_, ok := windowDays[w]
	return ok
}

// CutoffUTC returns the window's lower time bound: the UTC midnight floor of
// now, minus the window's span. Unknown windows fall back to last week.
func (w Window) CutoffUTC(now time.Time) time.Time {
	days, ok := windowDays[w]
	if !ok {
		days = windowDays[WindowLastWeek]
	}
	floor := now.UTC().Truncate(24 * time.Hour)
	return floor.AddDate(0, 0, -days)
}
