package http

import (
	"bytes"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Johnson150/cls-sub000/internal/booking"
	"github.com/Johnson150/cls-sub000/internal/roster"
)

const maxImportBytes = 10 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type importFailure struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importResponse struct {
	Created      []studentDetailResponse `json:"created"`
	SkippedLines []int                   `json:"skippedLines"`
	Failed       []importFailure         `json:"failed"`
}

// handleImportStudents creates one student per roster row. Rows are
// independent, so one bad row does not undo the others.
func (s *Server) handleImportStudents(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file")
		return
	}
	defer file.Close()

	rows, skipped, err := roster.ParseStudents(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_workbook", Message: err.Error()})
		return
	}

	resp := importResponse{
		Created:      make([]studentDetailResponse, 0, len(rows)),
		SkippedLines: skipped,
		Failed:       []importFailure{},
	}
	if resp.SkippedLines == nil {
		resp.SkippedLines = []int{}
	}
	for _, row := range rows {
		name, contact := row.Name, row.Contact
		rec, err := s.booking.CreateStudent(r.Context(), booking.StudentInput{Name: &name, Contact: &contact})
		if err != nil {
			resp.Failed = append(resp.Failed, importFailure{Line: row.Line, Error: booking.AsError(err).Code})
			continue
		}
		resp.Created = append(resp.Created, s.toStudentDetail(rec))
	}
	s.log.Info("roster imported",
		zap.Int("created", len(resp.Created)),
		zap.Int("skipped", len(resp.SkippedLines)),
		zap.Int("failed", len(resp.Failed)),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportSchedule(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, err := s.booking.ListClasses(r.Context(), query.Get("from"), query.Get("to"), parseLimit(r, booking.DefaultListLimit))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := roster.WriteSchedule(&buf, items, s.loc); err != nil {
		s.log.Error("export schedule", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export_failed")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "schedule.xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
