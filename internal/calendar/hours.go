package calendar

import "time"

// Window is one weekday's opening, in minutes after midnight.
type Window struct {
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
}

func (w Window) Hours() float64 {
	return float64(w.EndMinute-w.StartMinute) / 60
}

// DefaultOpenHours: Mon/Wed/Fri 16:30-20:30, Sat 12:30-16:30.
var DefaultOpenHours = []Window{
	{Weekday: time.Monday, StartMinute: 16*60 + 30, EndMinute: 20*60 + 30},
	{Weekday: time.Wednesday, StartMinute: 16*60 + 30, EndMinute: 20*60 + 30},
	{Weekday: time.Friday, StartMinute: 16*60 + 30, EndMinute: 20*60 + 30},
	{Weekday: time.Saturday, StartMinute: 12*60 + 30, EndMinute: 16*60 + 30},
}

type Schedule struct {
	windows map[time.Weekday]Window
}

func NewSchedule(windows []Window) Schedule {
	s := Schedule{windows: make(map[time.Weekday]Window, len(windows))}
	for _, w := range windows {
		s.windows[w.Weekday] = w
	}
	return s
}

// WindowOn returns the open interval on day's date, in day's location.
func (s Schedule) WindowOn(day time.Time) (time.Time, time.Time, bool) {
	w, ok := s.windows[day.Weekday()]
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	midnight := StartOfDay(day)
	start := time.Date(midnight.Year(), midnight.Month(), midnight.Day(), w.StartMinute/60, w.StartMinute%60, 0, 0, midnight.Location())
	end := time.Date(midnight.Year(), midnight.Month(), midnight.Day(), w.EndMinute/60, w.EndMinute%60, 0, 0, midnight.Location())
	return start, end, true
}

type Event struct {
	Start     time.Time
	End       time.Time
	BookedOff bool
}

type Hours struct {
	Available float64
	Booked    float64
	Remaining float64
}

// ComputeHours sums open hours over [from, to) and the part of each active
// event that overlaps an open window. Remaining goes negative when windows
// are double booked.
func ComputeHours(s Schedule, from, to time.Time, events []Event) Hours {
	var h Hours
	loc := from.Location()
	for day := StartOfDay(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		openAt, closeAt, ok := s.WindowOn(day)
		if !ok {
			continue
		}
		h.Available += closeAt.Sub(openAt).Hours()
		for _, ev := range events {
			if ev.BookedOff {
				continue
			}
			start, end := ev.Start.In(loc), ev.End.In(loc)
			if start.Before(openAt) {
				start = openAt
			}
			if end.After(closeAt) {
				end = closeAt
			}
			if end.After(start) {
				h.Booked += end.Sub(start).Hours()
			}
		}
	}
	h.Remaining = h.Available - h.Booked
	return h
}
