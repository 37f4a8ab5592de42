package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/Johnson150/cls-sub000/internal/booking"
	"github.com/Johnson150/cls-sub000/internal/calendar"
	"github.com/Johnson150/cls-sub000/internal/db"
)

type calendarResponse struct {
	View       string          `json:"view"`
	Date       string          `json:"date"`
	RangeStart string          `json:"rangeStart"`
	RangeEnd   string          `json:"rangeEnd"`
	Events     []classResponse `json:"events"`
}

type selectRequest struct {
	View    string `json:"view"`
	Date    string `json:"date"`
	Slot    string `json:"slot"`
	EventID string `json:"eventId" validate:"omitempty,uuid"`
}

type draftResponse struct {
	Mode    string `json:"mode"`
	ClassID string `json:"classId,omitempty"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type transitionResponse struct {
	View  string         `json:"view"`
	Date  string         `json:"date"`
	Draft *draftResponse `json:"draft"`
}

type hoursResponse struct {
	View           string  `json:"view"`
	RangeStart     string  `json:"rangeStart"`
	RangeEnd       string  `json:"rangeEnd"`
	AvailableHours float64 `json:"availableHours"`
	BookedHours    float64 `json:"bookedHours"`
	RemainingHours float64 `json:"remainingHours"`
}

func (s *Server) formatLocal(t time.Time) string {
	return t.In(s.loc).Format(time.RFC3339)
}

// anchorDate resolves the date parameter in the configured zone. Empty
// means today.
func (s *Server) anchorDate(value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return s.now().In(s.loc), true
	}
	t, err := booking.ParseTime(value, s.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(s.loc), true
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view, err := calendar.ParseView(query.Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_view")
		return
	}
	action, err := calendar.ParseAction(query.Get("action"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_action")
		return
	}
	anchor, ok := s.anchorDate(query.Get("date"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}

	anchor = calendar.Navigate(view, anchor, action, s.now().In(s.loc))
	start, end := calendar.Range(view, anchor)
	items, err := s.booking.ListClassesBetween(r.Context(), start, end, parseLimit(r, booking.DefaultListLimit))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	events := make([]classResponse, 0, len(items))
	for _, item := range items {
		events = append(events, s.toClassResponse(item))
	}
	writeJSON(w, http.StatusOK, calendarResponse{
		View:       string(view),
		Date:       s.formatLocal(anchor),
		RangeStart: s.formatLocal(start),
		RangeEnd:   s.formatLocal(end),
		Events:     events,
	})
}

func (s *Server) handleCalendarSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	view, err := calendar.ParseView(req.View)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_view")
		return
	}

	var tr calendar.Transition
	switch {
	case req.EventID != "":
		anchor, ok := s.anchorDate(req.Date)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		class, err := s.booking.GetClass(r.Context(), req.EventID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		tr = calendar.SelectEvent(view, anchor, req.EventID, class.StartAt.Time.In(s.loc), class.EndAt.Time.In(s.loc))
	case req.Slot != "":
		slot, err := booking.ParseTime(req.Slot, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot")
			return
		}
		tr = calendar.SelectSlot(view, slot.In(s.loc))
	default:
		writeError(w, http.StatusBadRequest, "missing_selection")
		return
	}

	writeJSON(w, http.StatusOK, s.toTransitionResponse(tr))
}

func (s *Server) toTransitionResponse(tr calendar.Transition) transitionResponse {
	resp := transitionResponse{View: string(tr.View), Date: s.formatLocal(tr.Date)}
	if tr.Draft != nil {
		resp.Draft = &draftResponse{
			Mode:    string(tr.Draft.Mode),
			ClassID: tr.Draft.ClassID,
			Start:   s.formatLocal(tr.Draft.Start),
			End:     s.formatLocal(tr.Draft.End),
		}
	}
	return resp
}

func (s *Server) handleCalendarHours(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view, err := calendar.ParseView(query.Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_view")
		return
	}
	anchor, ok := s.anchorDate(query.Get("date"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}

	start, end := calendar.HoursRange(view, anchor)
	items, err := s.booking.ListClassesBetween(r.Context(), start, end, 0)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	hours := calendar.ComputeHours(s.schedule, start, end, calendarEvents(items))
	writeJSON(w, http.StatusOK, hoursResponse{
		View:           string(view),
		RangeStart:     s.formatLocal(start),
		RangeEnd:       s.formatLocal(end),
		AvailableHours: hours.Available,
		BookedHours:    hours.Booked,
		RemainingHours: hours.Remaining,
	})
}

func calendarEvents(items []db.ScheduledClassView) []calendar.Event {
	events := make([]calendar.Event, 0, len(items))
	for _, item := range items {
		events = append(events, calendar.Event{
			Start:     item.StartAt.Time,
			End:       item.EndAt.Time,
			BookedOff: item.Status == db.ClassStatusBookedOff,
		})
	}
	return events
}
