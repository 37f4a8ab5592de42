package calendar

import (
	"fmt"
	"strings"
	"time"
)

type View string

const (
	ViewMonth View = "MONTH"
	ViewWeek  View = "WEEK"
	ViewDay   View = "DAY"
)

type Action string

const (
	ActionBack  Action = "BACK"
	ActionNext  Action = "NEXT"
	ActionToday Action = "TODAY"
)

// DefaultDraftLength is the end offset proposed for a new class.
const DefaultDraftLength = 2 * time.Hour

func ParseView(value string) (View, error) {
	switch View(strings.ToUpper(strings.TrimSpace(value))) {
	case "", ViewWeek:
		return ViewWeek, nil
	case ViewMonth:
		return ViewMonth, nil
	case ViewDay:
		return ViewDay, nil
	default:
		return "", fmt.Errorf("invalid view %q", value)
	}
}

// ParseAction accepts an empty value, meaning no navigation.
func ParseAction(value string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(value))) {
	case "":
		return "", nil
	case ActionBack:
		return ActionBack, nil
	case ActionNext:
		return ActionNext, nil
	case ActionToday:
		return ActionToday, nil
	default:
		return "", fmt.Errorf("invalid action %q", value)
	}
}

// Navigate moves the anchor date by one unit of the view.
func Navigate(view View, anchor time.Time, action Action, now time.Time) time.Time {
	step := 1
	switch action {
	case ActionToday:
		return now.In(anchor.Location())
	case ActionBack:
		step = -1
	case ActionNext:
	default:
		return anchor
	}
	switch view {
	case ViewMonth:
		// Pin to the first so Jan 31 + 1 month lands in February.
		first := time.Date(anchor.Year(), anchor.Month(), 1, anchor.Hour(), anchor.Minute(), 0, 0, anchor.Location())
		moved := first.AddDate(0, step, 0)
		day := anchor.Day()
		if last := daysIn(moved); day > last {
			day = last
		}
		return moved.AddDate(0, 0, day-1)
	case ViewWeek:
		return anchor.AddDate(0, 0, 7*step)
	default:
		return anchor.AddDate(0, 0, step)
	}
}

// Range is the visible span [start, end) of the view around anchor. Month
// grids are widened to whole Sunday-start weeks.
func Range(view View, anchor time.Time) (time.Time, time.Time) {
	day := StartOfDay(anchor)
	switch view {
	case ViewMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		last := first.AddDate(0, 1, -1)
		start := first.AddDate(0, 0, -int(first.Weekday()))
		end := last.AddDate(0, 0, 7-int(last.Weekday()))
		return start, end
	case ViewWeek:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return start, start.AddDate(0, 0, 7)
	default:
		return day, day.AddDate(0, 0, 1)
	}
}

// HoursRange is the span the hours toolbar sums over. Unlike Range the
// month is not widened.
func HoursRange(view View, anchor time.Time) (time.Time, time.Time) {
	if view == ViewMonth {
		day := StartOfDay(anchor)
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return first, first.AddDate(0, 1, 0)
	}
	return Range(view, anchor)
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

type DraftMode string

const (
	DraftAdd  DraftMode = "ADD"
	DraftEdit DraftMode = "EDIT"
)

// Draft pre-fills the add or edit class form.
type Draft struct {
	Mode    DraftMode
	ClassID string
	Start   time.Time
	End     time.Time
}

type Transition struct {
	View  View
	Date  time.Time
	Draft *Draft
}

// SelectSlot drills down one level. Selecting a slot in the day view
// proposes a new class starting there.
func SelectSlot(view View, slot time.Time) Transition {
	switch view {
	case ViewMonth:
		return Transition{View: ViewWeek, Date: slot}
	case ViewWeek:
		return Transition{View: ViewDay, Date: slot}
	default:
		return Transition{
			View:  ViewDay,
			Date:  slot,
			Draft: &Draft{Mode: DraftAdd, Start: slot, End: slot.Add(DefaultDraftLength)},
		}
	}
}

// SelectEvent opens an existing class for editing without changing view.
func SelectEvent(view View, anchor time.Time, classID string, start, end time.Time) Transition {
	return Transition{
		View:  view,
		Date:  anchor,
		Draft: &Draft{Mode: DraftEdit, ClassID: classID, Start: start, End: end},
	}
}
