package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Johnson150/cls-sub000/internal/booking"
	"github.com/Johnson150/cls-sub000/internal/db"
)

type studentRequest struct {
	Name           *string   `json:"name" validate:"omitempty,min=1"`
	Contact        *string   `json:"contact"`
	HoursIn        *float64  `json:"hoursIn"`
	HoursScheduled *float64  `json:"hoursScheduled"`
	TimesBookedOff *int32    `json:"timesBookedOff" validate:"omitempty,gte=0"`
	CourseIDs      *[]string `json:"courseIds" validate:"omitempty,dive,uuid"`
	TutorIDs       *[]string `json:"tutorIds" validate:"omitempty,dive,uuid"`
}

func (req studentRequest) input() booking.StudentInput {
	return booking.StudentInput{
		Name:           req.Name,
		Contact:        req.Contact,
		HoursIn:        req.HoursIn,
		HoursScheduled: req.HoursScheduled,
		TimesBookedOff: req.TimesBookedOff,
		CourseIDs:      req.CourseIDs,
		TutorIDs:       req.TutorIDs,
	}
}

type tutorRequest struct {
	Name           *string   `json:"name" validate:"omitempty,min=1"`
	Subject        *string   `json:"subject"`
	HoursWorked    *float64  `json:"hoursWorked"`
	HoursScheduled *float64  `json:"hoursScheduled"`
	TimesBookedOff *int32    `json:"timesBookedOff" validate:"omitempty,gte=0"`
	CourseIDs      *[]string `json:"courseIds" validate:"omitempty,dive,uuid"`
	StudentIDs     *[]string `json:"studentIds" validate:"omitempty,dive,uuid"`
}

func (req tutorRequest) input() booking.TutorInput {
	return booking.TutorInput{
		Name:           req.Name,
		Subject:        req.Subject,
		HoursWorked:    req.HoursWorked,
		HoursScheduled: req.HoursScheduled,
		TimesBookedOff: req.TimesBookedOff,
		CourseIDs:      req.CourseIDs,
		StudentIDs:     req.StudentIDs,
	}
}

type studentResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Contact        string  `json:"contact"`
	HoursIn        float64 `json:"hoursIn"`
	HoursScheduled float64 `json:"hoursScheduled"`
	TimesBookedOff int32   `json:"timesBookedOff"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

type studentDetailResponse struct {
	studentResponse
	CourseIDs []string `json:"courseIds"`
	TutorIDs  []string `json:"tutorIds"`
}

type tutorResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Subject        string  `json:"subject"`
	HoursWorked    float64 `json:"hoursWorked"`
	HoursScheduled float64 `json:"hoursScheduled"`
	TimesBookedOff int32   `json:"timesBookedOff"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

type tutorDetailResponse struct {
	tutorResponse
	CourseIDs  []string `json:"courseIds"`
	StudentIDs []string `json:"studentIds"`
}

func (s *Server) toStudentResponse(student db.Student) studentResponse {
	return studentResponse{
		ID:             uuidString(student.ID),
		Name:           student.Name,
		Contact:        student.Contact,
		HoursIn:        student.HoursIn,
		HoursScheduled: student.HoursScheduled,
		TimesBookedOff: student.TimesBookedOff,
		CreatedAt:      s.formatTime(student.CreatedAt),
		UpdatedAt:      s.formatTime(student.UpdatedAt),
	}
}

func (s *Server) toStudentDetail(rec booking.StudentRecord) studentDetailResponse {
	return studentDetailResponse{
		studentResponse: s.toStudentResponse(rec.Student),
		CourseIDs:       uuidStrings(rec.CourseIDs),
		TutorIDs:        uuidStrings(rec.TutorIDs),
	}
}

func (s *Server) toTutorResponse(tutor db.Tutor) tutorResponse {
	return tutorResponse{
		ID:             uuidString(tutor.ID),
		Name:           tutor.Name,
		Subject:        tutor.Subject,
		HoursWorked:    tutor.HoursWorked,
		HoursScheduled: tutor.HoursScheduled,
		TimesBookedOff: tutor.TimesBookedOff,
		CreatedAt:      s.formatTime(tutor.CreatedAt),
		UpdatedAt:      s.formatTime(tutor.UpdatedAt),
	}
}

func (s *Server) toTutorDetail(rec booking.TutorRecord) tutorDetailResponse {
	return tutorDetailResponse{
		tutorResponse: s.toTutorResponse(rec.Tutor),
		CourseIDs:     uuidStrings(rec.CourseIDs),
		StudentIDs:    uuidStrings(rec.StudentIDs),
	}
}

// Students

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	items, err := s.booking.ListStudents(r.Context(), parseLimit(r, booking.DefaultListLimit))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := make([]studentResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toStudentResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	rec, err := s.booking.GetStudent(r.Context(), chi.URLParam(r, "studentId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toStudentDetail(rec))
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	rec, err := s.booking.CreateStudent(r.Context(), req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toStudentDetail(rec))
}

func (s *Server) handlePatchStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	rec, err := s.booking.UpdateStudent(r.Context(), chi.URLParam(r, "studentId"), req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toStudentDetail(rec))
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := s.booking.DeleteStudent(r.Context(), chi.URLParam(r, "studentId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tutors

func (s *Server) handleListTutors(w http.ResponseWriter, r *http.Request) {
	items, err := s.booking.ListTutors(r.Context(), parseLimit(r, booking.DefaultListLimit))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := make([]tutorResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toTutorResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTutor(w http.ResponseWriter, r *http.Request) {
	rec, err := s.booking.GetTutor(r.Context(), chi.URLParam(r, "tutorId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toTutorDetail(rec))
}

func (s *Server) handleCreateTutor(w http.ResponseWriter, r *http.Request) {
	var req tutorRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	rec, err := s.booking.CreateTutor(r.Context(), req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toTutorDetail(rec))
}

func (s *Server) handlePatchTutor(w http.ResponseWriter, r *http.Request) {
	var req tutorRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	rec, err := s.booking.UpdateTutor(r.Context(), chi.URLParam(r, "tutorId"), req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toTutorDetail(rec))
}

func (s *Server) handleDeleteTutor(w http.ResponseWriter, r *http.Request) {
	if err := s.booking.DeleteTutor(r.Context(), chi.URLParam(r, "tutorId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
