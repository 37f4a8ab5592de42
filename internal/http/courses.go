package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Johnson150/cls-sub000/internal/booking"
	"github.com/Johnson150/cls-sub000/internal/db"
)

// flexString accepts a JSON string or number. Grades arrive as both.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("expected string or number")
	}
	*f = flexString(n.String())
	return nil
}

type courseRequest struct {
	CourseName *string     `json:"courseName" validate:"omitempty,min=1"`
	Grade      *flexString `json:"grade"`
}

func (req courseRequest) input() booking.CourseInput {
	in := booking.CourseInput{CourseName: req.CourseName}
	if req.Grade != nil {
		grade := strings.TrimSpace(string(*req.Grade))
		in.Grade = &grade
	}
	return in
}

type courseResponse struct {
	ID         string `json:"id"`
	CourseName string `json:"courseName"`
	Grade      string `json:"grade"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func (s *Server) toCourseResponse(course db.Course) courseResponse {
	return courseResponse{
		ID:         uuidString(course.ID),
		CourseName: course.CourseName,
		Grade:      course.Grade.String,
		CreatedAt:  s.formatTime(course.CreatedAt),
		UpdatedAt:  s.formatTime(course.UpdatedAt),
	}
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	items, err := s.booking.ListCourses(r.Context(), parseLimit(r, booking.DefaultListLimit))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := make([]courseResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toCourseResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.booking.GetCourse(r.Context(), chi.URLParam(r, "courseId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toCourseResponse(course))
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	course, err := s.booking.CreateCourse(r.Context(), req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toCourseResponse(course))
}

func (s *Server) handlePatchCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	course, err := s.booking.UpdateCourse(r.Context(), chi.URLParam(r, "courseId"), req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toCourseResponse(course))
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := s.booking.DeleteCourse(r.Context(), chi.URLParam(r, "courseId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
