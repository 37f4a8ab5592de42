package calendar

import (
	"math"
	"testing"
	"time"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestParseViewAndAction(t *testing.T) {
	if v, err := ParseView(""); err != nil || v != ViewWeek {
		t.Fatalf("expected WEEK default, got %s %v", v, err)
	}
	if v, err := ParseView("month"); err != nil || v != ViewMonth {
		t.Fatalf("expected MONTH, got %s %v", v, err)
	}
	if _, err := ParseView("YEAR"); err == nil {
		t.Fatalf("expected invalid view")
	}
	if a, err := ParseAction("next"); err != nil || a != ActionNext {
		t.Fatalf("expected NEXT, got %s %v", a, err)
	}
	if a, err := ParseAction(""); err != nil || a != "" {
		t.Fatalf("expected empty action")
	}
	if _, err := ParseAction("SKIP"); err == nil {
		t.Fatalf("expected invalid action")
	}
}

func TestNavigate(t *testing.T) {
	anchor := date(2024, time.January, 31, 10, 0)
	now := date(2024, time.June, 1, 9, 0)

	if got := Navigate(ViewMonth, anchor, ActionNext, now); !got.Equal(date(2024, time.February, 29, 10, 0)) {
		t.Fatalf("expected Feb 29, got %s", got)
	}
	if got := Navigate(ViewMonth, anchor, ActionBack, now); !got.Equal(date(2023, time.December, 31, 10, 0)) {
		t.Fatalf("expected Dec 31, got %s", got)
	}
	if got := Navigate(ViewWeek, anchor, ActionNext, now); !got.Equal(date(2024, time.February, 7, 10, 0)) {
		t.Fatalf("expected +7 days, got %s", got)
	}
	if got := Navigate(ViewDay, anchor, ActionBack, now); !got.Equal(date(2024, time.January, 30, 10, 0)) {
		t.Fatalf("expected -1 day, got %s", got)
	}
	if got := Navigate(ViewDay, anchor, ActionToday, now); !got.Equal(now) {
		t.Fatalf("expected today, got %s", got)
	}
	if got := Navigate(ViewDay, anchor, "", now); !got.Equal(anchor) {
		t.Fatalf("expected unchanged anchor, got %s", got)
	}
}

func TestRange(t *testing.T) {
	// 2024-06-05 is a Wednesday.
	anchor := date(2024, time.June, 5, 15, 0)

	start, end := Range(ViewWeek, anchor)
	if !start.Equal(date(2024, time.June, 2, 0, 0)) || !end.Equal(date(2024, time.June, 9, 0, 0)) {
		t.Fatalf("unexpected week range %s - %s", start, end)
	}

	start, end = Range(ViewDay, anchor)
	if !start.Equal(date(2024, time.June, 5, 0, 0)) || !end.Equal(date(2024, time.June, 6, 0, 0)) {
		t.Fatalf("unexpected day range %s - %s", start, end)
	}

	// June 2024 runs Saturday the 1st to Sunday the 30th.
	start, end = Range(ViewMonth, anchor)
	if !start.Equal(date(2024, time.May, 26, 0, 0)) || !end.Equal(date(2024, time.July, 7, 0, 0)) {
		t.Fatalf("unexpected month range %s - %s", start, end)
	}
	if start.Weekday() != time.Sunday || end.Weekday() != time.Sunday {
		t.Fatalf("expected month grid on Sunday boundaries")
	}

	start, end = HoursRange(ViewMonth, anchor)
	if !start.Equal(date(2024, time.June, 1, 0, 0)) || !end.Equal(date(2024, time.July, 1, 0, 0)) {
		t.Fatalf("unexpected month hours range %s - %s", start, end)
	}
}

func TestSelectSlot(t *testing.T) {
	slot := date(2024, time.June, 1, 16, 30)

	tr := SelectSlot(ViewMonth, slot)
	if tr.View != ViewWeek || tr.Draft != nil {
		t.Fatalf("expected MONTH -> WEEK, got %s", tr.View)
	}
	tr = SelectSlot(ViewWeek, slot)
	if tr.View != ViewDay || !tr.Date.Equal(slot) || tr.Draft != nil {
		t.Fatalf("expected WEEK -> DAY at slot, got %s", tr.View)
	}
	tr = SelectSlot(ViewDay, slot)
	if tr.Draft == nil || tr.Draft.Mode != DraftAdd {
		t.Fatalf("expected add draft from DAY")
	}
	if !tr.Draft.Start.Equal(slot) || !tr.Draft.End.Equal(date(2024, time.June, 1, 18, 30)) {
		t.Fatalf("unexpected draft span %s - %s", tr.Draft.Start, tr.Draft.End)
	}
}

func TestSelectEvent(t *testing.T) {
	anchor := date(2024, time.June, 5, 0, 0)
	tr := SelectEvent(ViewWeek, anchor, "class-1", date(2024, time.June, 5, 16, 30), date(2024, time.June, 5, 18, 30))
	if tr.View != ViewWeek || tr.Draft == nil || tr.Draft.Mode != DraftEdit || tr.Draft.ClassID != "class-1" {
		t.Fatalf("expected edit draft in same view")
	}
}

func TestComputeHoursWeek(t *testing.T) {
	schedule := NewSchedule(DefaultOpenHours)
	start, end := Range(ViewWeek, date(2024, time.June, 5, 12, 0))

	events := []Event{
		// Monday 16:30-18:30, inside the window.
		{Start: date(2024, time.June, 3, 16, 30), End: date(2024, time.June, 3, 18, 30)},
		// Wednesday 15:30-17:30, clipped to 16:30.
		{Start: date(2024, time.June, 5, 15, 30), End: date(2024, time.June, 5, 17, 30)},
		// Tuesday is closed.
		{Start: date(2024, time.June, 4, 17, 0), End: date(2024, time.June, 4, 18, 0)},
		// Booked off classes do not count.
		{Start: date(2024, time.June, 7, 16, 30), End: date(2024, time.June, 7, 20, 30), BookedOff: true},
		// Saturday 12:30-13:30.
		{Start: date(2024, time.June, 8, 12, 30), End: date(2024, time.June, 8, 13, 30)},
	}
	h := ComputeHours(schedule, start, end, events)
	if h.Available != 16 {
		t.Fatalf("expected 16 available hours, got %v", h.Available)
	}
	if math.Abs(h.Booked-4) > 1e-9 {
		t.Fatalf("expected 4 booked hours, got %v", h.Booked)
	}
	if math.Abs(h.Remaining-12) > 1e-9 {
		t.Fatalf("expected 12 remaining hours, got %v", h.Remaining)
	}
}

func TestComputeHoursMonth(t *testing.T) {
	schedule := NewSchedule(DefaultOpenHours)
	start, end := HoursRange(ViewMonth, date(2024, time.June, 15, 0, 0))
	h := ComputeHours(schedule, start, end, nil)
	// June 2024: 4 Mondays, 4 Wednesdays, 4 Fridays, 5 Saturdays.
	if h.Available != 17*4 {
		t.Fatalf("expected 68 available hours, got %v", h.Available)
	}
	if h.Booked != 0 || h.Remaining != h.Available {
		t.Fatalf("expected nothing booked")
	}
}
