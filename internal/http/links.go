package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Johnson150/cls-sub000/internal/booking"
	"github.com/Johnson150/cls-sub000/internal/db"
)

type studentLinkRequest struct {
	ScheduledClassID string `json:"scheduledClassId" validate:"required,uuid"`
	StudentID        string `json:"studentId" validate:"required,uuid"`
}

type studentLinkPatch struct {
	ScheduledClassID *string `json:"scheduledClassId" validate:"omitempty,uuid"`
	StudentID        *string `json:"studentId" validate:"omitempty,uuid"`
}

type tutorLinkRequest struct {
	ScheduledClassID string `json:"scheduledClassId" validate:"required,uuid"`
	TutorID          string `json:"tutorId" validate:"required,uuid"`
}

type tutorLinkPatch struct {
	ScheduledClassID *string `json:"scheduledClassId" validate:"omitempty,uuid"`
	TutorID          *string `json:"tutorId" validate:"omitempty,uuid"`
}

type studentLinkResponse struct {
	ID               string `json:"id"`
	ScheduledClassID string `json:"scheduledClassId"`
	StudentID        string `json:"studentId"`
	CreatedAt        string `json:"createdAt"`
}

type tutorLinkResponse struct {
	ID               string `json:"id"`
	ScheduledClassID string `json:"scheduledClassId"`
	TutorID          string `json:"tutorId"`
	CreatedAt        string `json:"createdAt"`
}

func (s *Server) toStudentLinkResponse(link db.StudentScheduledClass) studentLinkResponse {
	return studentLinkResponse{
		ID:               uuidString(link.ID),
		ScheduledClassID: uuidString(link.ScheduledClassID),
		StudentID:        uuidString(link.StudentID),
		CreatedAt:        s.formatTime(link.CreatedAt),
	}
}

func (s *Server) toTutorLinkResponse(link db.TutorScheduledClass) tutorLinkResponse {
	return tutorLinkResponse{
		ID:               uuidString(link.ID),
		ScheduledClassID: uuidString(link.ScheduledClassID),
		TutorID:          uuidString(link.TutorID),
		CreatedAt:        s.formatTime(link.CreatedAt),
	}
}

// Student links

func (s *Server) handleListStudentLinks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, err := s.booking.ListStudentLinks(r.Context(), booking.LinkFilter{
		ScheduledClassID: query.Get("scheduledClassId"),
		PersonID:         query.Get("studentId"),
		Limit:            parseLimit(r, booking.DefaultListLimit),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := make([]studentLinkResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toStudentLinkResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetStudentLink(w http.ResponseWriter, r *http.Request) {
	link, err := s.booking.GetStudentLink(r.Context(), chi.URLParam(r, "linkId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toStudentLinkResponse(link))
}

func (s *Server) handleCreateStudentLink(w http.ResponseWriter, r *http.Request) {
	var req studentLinkRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	link, err := s.booking.CreateStudentLink(r.Context(), req.ScheduledClassID, req.StudentID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toStudentLinkResponse(link))
}

func (s *Server) handlePatchStudentLink(w http.ResponseWriter, r *http.Request) {
	var req studentLinkPatch
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	link, err := s.booking.UpdateStudentLink(r.Context(), chi.URLParam(r, "linkId"), booking.LinkPatch{
		ScheduledClassID: req.ScheduledClassID,
		PersonID:         req.StudentID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toStudentLinkResponse(link))
}

func (s *Server) handleDeleteStudentLink(w http.ResponseWriter, r *http.Request) {
	if err := s.booking.DeleteStudentLink(r.Context(), chi.URLParam(r, "linkId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tutor links

func (s *Server) handleListTutorLinks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, err := s.booking.ListTutorLinks(r.Context(), booking.LinkFilter{
		ScheduledClassID: query.Get("scheduledClassId"),
		PersonID:         query.Get("tutorId"),
		Limit:            parseLimit(r, booking.DefaultListLimit),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := make([]tutorLinkResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toTutorLinkResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTutorLink(w http.ResponseWriter, r *http.Request) {
	link, err := s.booking.GetTutorLink(r.Context(), chi.URLParam(r, "linkId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toTutorLinkResponse(link))
}

func (s *Server) handleCreateTutorLink(w http.ResponseWriter, r *http.Request) {
	var req tutorLinkRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	link, err := s.booking.CreateTutorLink(r.Context(), req.ScheduledClassID, req.TutorID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toTutorLinkResponse(link))
}

func (s *Server) handlePatchTutorLink(w http.ResponseWriter, r *http.Request) {
	var req tutorLinkPatch
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	link, err := s.booking.UpdateTutorLink(r.Context(), chi.URLParam(r, "linkId"), booking.LinkPatch{
		ScheduledClassID: req.ScheduledClassID,
		PersonID:         req.TutorID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toTutorLinkResponse(link))
}

func (s *Server) handleDeleteTutorLink(w http.ResponseWriter, r *http.Request) {
	if err := s.booking.DeleteTutorLink(r.Context(), chi.URLParam(r, "linkId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
