package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Johnson150/cls-sub000/internal/auth"
	"github.com/Johnson150/cls-sub000/internal/crypto"
	"github.com/Johnson150/cls-sub000/internal/db"
	"github.com/Johnson150/cls-sub000/internal/metrics"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type authResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         userSummary `json:"user"`
}

func toUserSummary(user db.User) userSummary {
	return userSummary{
		ID:    uuidString(user.ID),
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	if s.loginLocked(r.Context(), req.Email) {
		metrics.RecordLogin("locked")
		writeError(w, http.StatusTooManyRequests, "too_many_attempts")
		return
	}

	user, err := s.store.Queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if db.IsNotFound(err) {
			s.recordLoginFailure(r.Context(), req.Email)
			metrics.RecordLogin("invalid")
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		s.log.Error("load user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.recordLoginFailure(r.Context(), req.Email)
		metrics.RecordLogin("invalid")
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	accessToken, refreshToken, err := s.issueTokens(r.Context(), user, r.UserAgent(), clientIP(r))
	if err != nil {
		s.log.Error("issue tokens", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}
	s.clearLoginFailures(r.Context(), req.Email)
	metrics.RecordLogin("ok")

	writeJSON(w, http.StatusOK, authResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserSummary(user),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "missing_refresh_token")
		return
	}

	session, err := s.store.Queries.GetRefreshSession(r.Context(), crypto.HashToken(req.RefreshToken))
	if err != nil {
		if db.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "invalid_refresh_token")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if session.RevokedAt.Valid || session.ExpiresAt.Time.Before(time.Now().UTC()) {
		writeError(w, http.StatusUnauthorized, "refresh_token_expired")
		return
	}

	user, err := s.store.Queries.GetUserByID(r.Context(), session.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "user_not_found")
		return
	}

	if err := s.store.Queries.RevokeRefreshSession(r.Context(), session.ID, nowPgTime()); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	accessToken, refreshToken, err := s.issueTokens(r.Context(), user, r.UserAgent(), clientIP(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserSummary(user),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	userID, err := parseUUID(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}
	if err := s.store.Queries.RevokeRefreshSessionsByUser(r.Context(), userID, nowPgTime()); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	userID, err := parseUUID(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}
	user, err := s.store.Queries.GetUserByID(r.Context(), userID)
	if err != nil {
		if db.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, toUserSummary(user))
}

func (s *Server) issueTokens(ctx context.Context, user db.User, userAgent, ip string) (string, string, error) {
	accessToken, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: uuidString(user.ID),
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return "", "", err
	}

	refreshToken, err := crypto.NewRefreshToken()
	if err != nil {
		return "", "", err
	}

	now := time.Now().UTC()
	if err := s.store.Queries.CreateRefreshSession(ctx, db.CreateRefreshSessionParams{
		ID:        pgtype.UUID{Bytes: uuid.New(), Valid: true},
		UserID:    user.ID,
		TokenHash: crypto.HashToken(refreshToken),
		CreatedAt: pgTime(now),
		ExpiresAt: pgTime(now.Add(s.cfg.RefreshTokenTTL)),
		UserAgent: pgText(userAgent),
		IPAddress: pgText(ip),
	}); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// Login throttling keeps a failure counter per email in redis. Without
// redis there is no throttling.

func loginAttemptsKey(email string) string {
	return fmt.Sprintf("login_attempts:%s", email)
}

func (s *Server) loginLocked(ctx context.Context, email string) bool {
	if s.redis == nil || s.cfg.LoginMaxAttempts <= 0 {
		return false
	}
	count, err := s.redis.Get(ctx, loginAttemptsKey(email)).Int()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("login throttle lookup failed", zap.Error(err))
		}
		return false
	}
	return count >= s.cfg.LoginMaxAttempts
}

func (s *Server) recordLoginFailure(ctx context.Context, email string) {
	if s.redis == nil {
		return
	}
	key := loginAttemptsKey(email)
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		s.log.Warn("login throttle update failed", zap.Error(err))
		return
	}
	if count == 1 {
		_ = s.redis.Expire(ctx, key, s.cfg.LoginLockoutWindow).Err()
	}
}

func (s *Server) clearLoginFailures(ctx context.Context, email string) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, loginAttemptsKey(email)).Err()
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return ""
}
