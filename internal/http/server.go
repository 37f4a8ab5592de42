package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Johnson150/cls-sub000/internal/auth"
	"github.com/Johnson150/cls-sub000/internal/booking"
	"github.com/Johnson150/cls-sub000/internal/calendar"
	"github.com/Johnson150/cls-sub000/internal/config"
	"github.com/Johnson150/cls-sub000/internal/db"
	"github.com/Johnson150/cls-sub000/internal/metrics"
)

type Server struct {
	cfg      config.Config
	store    *db.Store
	booking  *booking.Service
	redis    *redis.Client
	log      *zap.Logger
	validate *validator.Validate
	schedule calendar.Schedule
	loc      *time.Location
	now      func() time.Time
}

func NewServer(cfg config.Config, store *db.Store, redisClient *redis.Client, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	loc := cfg.Location()
	return &Server{
		cfg:      cfg,
		store:    store,
		booking:  booking.NewService(store, loc, log.Named("booking")),
		redis:    redisClient,
		log:      log,
		validate: newValidator(),
		schedule: calendar.NewSchedule(calendar.DefaultOpenHours),
		loc:      loc,
		now:      time.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/refresh", s.handleRefresh)
	r.With(s.authMiddleware).Post("/auth/logout", s.handleLogout)
	r.With(s.authMiddleware).Get("/auth/me", s.handleGetMe)

	r.Group(func(r chi.Router) {
		if s.cfg.RequireAuth {
			r.Use(s.authMiddleware)
		}

		r.Route("/student", func(r chi.Router) {
			r.Get("/", s.handleListStudents)
			r.Post("/", s.handleCreateStudent)
			r.Post("/import", s.handleImportStudents)
			r.Get("/{studentId}", s.handleGetStudent)
			r.Patch("/{studentId}", s.handlePatchStudent)
			r.Delete("/{studentId}", s.handleDeleteStudent)
		})

		r.Route("/tutor", func(r chi.Router) {
			r.Get("/", s.handleListTutors)
			r.Post("/", s.handleCreateTutor)
			r.Get("/{tutorId}", s.handleGetTutor)
			r.Patch("/{tutorId}", s.handlePatchTutor)
			r.Delete("/{tutorId}", s.handleDeleteTutor)
		})

		r.Route("/course", func(r chi.Router) {
			r.Get("/", s.handleListCourses)
			r.Post("/", s.handleCreateCourse)
			r.Get("/{courseId}", s.handleGetCourse)
			r.Patch("/{courseId}", s.handlePatchCourse)
			r.Delete("/{courseId}", s.handleDeleteCourse)
		})

		r.Route("/scheduledclass", func(r chi.Router) {
			r.Get("/", s.handleListClasses)
			r.Post("/", s.handleCreateClass)
			r.Get("/export", s.handleExportSchedule)
			r.Get("/{classId}", s.handleGetClass)
			r.Patch("/{classId}", s.handlePatchClass)
			r.Delete("/{classId}", s.handleDeleteClass)
		})

		r.Route("/studentscheduledclass", func(r chi.Router) {
			r.Get("/", s.handleListStudentLinks)
			r.Post("/", s.handleCreateStudentLink)
			r.Get("/{linkId}", s.handleGetStudentLink)
			r.Patch("/{linkId}", s.handlePatchStudentLink)
			r.Delete("/{linkId}", s.handleDeleteStudentLink)
		})

		r.Route("/tutorscheduledclass", func(r chi.Router) {
			r.Get("/", s.handleListTutorLinks)
			r.Post("/", s.handleCreateTutorLink)
			r.Get("/{linkId}", s.handleGetTutorLink)
			r.Patch("/{linkId}", s.handlePatchTutorLink)
			r.Delete("/{linkId}", s.handleDeleteTutorLink)
		})

		r.Get("/calendar", s.handleCalendar)
		r.Post("/calendar/select", s.handleCalendarSelect)
		r.Get("/calendar/hours", s.handleCalendarHours)
	})

	return r
}

// Middleware

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Request and response helpers

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate writes the 400 itself and reports whether the handler
// should continue.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := decodeJSON(r, out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: err.Error()})
		return false
	}
	if err := s.validate.Struct(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: validationMessage(err)})
		return false
	}
	return true
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code, Message: http.StatusText(status)})
}

func statusForKind(kind booking.Kind) int {
	switch kind {
	case booking.KindInvalidInput:
		return http.StatusBadRequest
	case booking.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	bErr := booking.AsError(err)
	status := statusForKind(bErr.Kind)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Error: bErr.Code, Message: bErr.Message})
}

func parseLimit(r *http.Request, fallback int32) int32 {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return int32(parsed)
		}
	}
	return fallback
}

func parseUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func uuidStrings(ids []pgtype.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, uuidString(id))
	}
	return out
}

func pgTime(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

func nowPgTime() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
}

func pgText(value string) pgtype.Text {
	return pgtype.Text{String: value, Valid: value != ""}
}

func (s *Server) formatTime(ts pgtype.Timestamptz) string {
	if !ts.Valid {
		return ""
	}
	return ts.Time.In(s.loc).Format(time.RFC3339)
}
