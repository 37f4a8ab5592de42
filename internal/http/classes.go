package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Johnson150/cls-sub000/internal/booking"
	"github.com/Johnson150/cls-sub000/internal/db"
	"github.com/Johnson150/cls-sub000/internal/metrics"
)

// Capacity is accepted for compatibility with older clients and ignored;
// every class is stored with booking.MaxCapacity.
type createClassRequest struct {
	Start           string   `json:"start" validate:"required"`
	End             string   `json:"end" validate:"required"`
	Status          string   `json:"status"`
	Capacity        *int     `json:"capacity"`
	BookedOffBy     string   `json:"bookedOffBy"`
	BookedOffByName string   `json:"bookedOffByName"`
	CourseID        string   `json:"courseId" validate:"omitempty,uuid"`
	TutorIDs        []string `json:"tutorIds" validate:"omitempty,dive,uuid"`
	StudentIDs      []string `json:"studentIds" validate:"omitempty,dive,uuid"`
}

type updateClassRequest struct {
	Start           *string   `json:"start"`
	End             *string   `json:"end"`
	Status          *string   `json:"status"`
	Capacity        *int      `json:"capacity"`
	BookedOffBy     *string   `json:"bookedOffBy"`
	BookedOffByName *string   `json:"bookedOffByName"`
	CourseID        *string   `json:"courseId"`
	TutorIDs        *[]string `json:"tutorIds" validate:"omitempty,dive,uuid"`
	StudentIDs      *[]string `json:"studentIds" validate:"omitempty,dive,uuid"`
}

type classResponse struct {
	ID                string   `json:"id"`
	Start             string   `json:"start"`
	End               string   `json:"end"`
	Status            string   `json:"status"`
	Capacity          int32    `json:"capacity"`
	CurrentEnrollment int32    `json:"currentEnrollment"`
	OverCapacity      bool     `json:"overCapacity"`
	BookedOffBy       string   `json:"bookedOffBy"`
	BookedOffByName   string   `json:"bookedOffByName"`
	CourseID          *string  `json:"courseId"`
	CourseName        string   `json:"courseName"`
	TutorIDs          []string `json:"tutorIds"`
	TutorNames        []string `json:"tutorNames"`
	StudentIDs        []string `json:"studentIds"`
	StudentNames      []string `json:"studentNames"`
	CreatedAt         string   `json:"createdAt"`
	UpdatedAt         string   `json:"updatedAt"`
}

func (s *Server) toClassResponse(view db.ScheduledClassView) classResponse {
	resp := classResponse{
		ID:                uuidString(view.ID),
		Start:             s.formatTime(view.StartAt),
		End:               s.formatTime(view.EndAt),
		Status:            string(view.Status),
		Capacity:          view.Capacity,
		CurrentEnrollment: view.CurrentEnrollment,
		OverCapacity:      view.CurrentEnrollment > view.Capacity,
		BookedOffBy:       string(view.BookedOffBy),
		BookedOffByName:   view.BookedOffByName,
		CourseName:        view.CourseName.String,
		TutorIDs:          uuidStrings(view.TutorIDs),
		TutorNames:        nonNil(view.TutorNames),
		StudentIDs:        uuidStrings(view.StudentIDs),
		StudentNames:      nonNil(view.StudentNames),
		CreatedAt:         s.formatTime(view.CreatedAt),
		UpdatedAt:         s.formatTime(view.UpdatedAt),
	}
	if view.CourseID.Valid {
		id := uuidString(view.CourseID)
		resp.CourseID = &id
	}
	return resp
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, err := s.booking.ListClasses(r.Context(), query.Get("from"), query.Get("to"), parseLimit(r, booking.DefaultListLimit))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := make([]classResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toClassResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetClass(w http.ResponseWriter, r *http.Request) {
	view, err := s.booking.GetClass(r.Context(), chi.URLParam(r, "classId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toClassResponse(view))
}

func (s *Server) handleCreateClass(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	view, err := s.booking.CreateClass(r.Context(), booking.CreateClassInput{
		Start:           req.Start,
		End:             req.End,
		Status:          req.Status,
		BookedOffBy:     req.BookedOffBy,
		BookedOffByName: req.BookedOffByName,
		CourseID:        req.CourseID,
		TutorIDs:        req.TutorIDs,
		StudentIDs:      req.StudentIDs,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	metrics.RecordClassEvent(metrics.ClassCreated)
	writeJSON(w, http.StatusCreated, s.toClassResponse(view))
}

func (s *Server) handlePatchClass(w http.ResponseWriter, r *http.Request) {
	var req updateClassRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	view, err := s.booking.UpdateClass(r.Context(), chi.URLParam(r, "classId"), booking.UpdateClassInput{
		Start:           req.Start,
		End:             req.End,
		Status:          req.Status,
		BookedOffBy:     req.BookedOffBy,
		BookedOffByName: req.BookedOffByName,
		CourseID:        req.CourseID,
		TutorIDs:        req.TutorIDs,
		StudentIDs:      req.StudentIDs,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	metrics.RecordClassEvent(metrics.ClassUpdated)
	if req.Status != nil && strings.EqualFold(*req.Status, string(db.ClassStatusBookedOff)) && view.Status == db.ClassStatusBookedOff {
		metrics.RecordClassEvent(metrics.ClassBookedOff)
	}
	writeJSON(w, http.StatusOK, s.toClassResponse(view))
}

func (s *Server) handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	if err := s.booking.DeleteClass(r.Context(), chi.URLParam(r, "classId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	metrics.RecordClassEvent(metrics.ClassDeleted)
	w.WriteHeader(http.StatusNoContent)
}
