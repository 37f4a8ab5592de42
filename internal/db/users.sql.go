package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, name, password_hash, role, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (q *Queries) GetUserByID(ctx context.Context, id pgtype.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

type CreateUserParams struct {
	ID           pgtype.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `
		INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		arg.ID, arg.Email, arg.Name, arg.PasswordHash, arg.Role, arg.CreatedAt, arg.UpdatedAt))
}

type CreateRefreshSessionParams struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	TokenHash string
	CreatedAt pgtype.Timestamptz
	ExpiresAt pgtype.Timestamptz
	UserAgent pgtype.Text
	IPAddress pgtype.Text
}

func (q *Queries) CreateRefreshSession(ctx context.Context, arg CreateRefreshSessionParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO refresh_sessions (id, user_id, token_hash, created_at, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, arg.ID, arg.UserID, arg.TokenHash, arg.CreatedAt, arg.ExpiresAt, arg.UserAgent, arg.IPAddress)
	return err
}

func (q *Queries) GetRefreshSession(ctx context.Context, tokenHash string) (RefreshSession, error) {
	var s RefreshSession
	err := q.db.QueryRow(ctx, `
		SELECT id, user_id, token_hash, created_at, expires_at, revoked_at, user_agent, ip_address
		FROM refresh_sessions
		WHERE token_hash = $1
	`, tokenHash).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.CreatedAt, &s.ExpiresAt, &s.RevokedAt, &s.UserAgent, &s.IPAddress)
	return s, err
}

func (q *Queries) RevokeRefreshSession(ctx context.Context, id pgtype.UUID, revokedAt pgtype.Timestamptz) error {
	_, err := q.db.Exec(ctx, `UPDATE refresh_sessions SET revoked_at = $2 WHERE id = $1`, id, revokedAt)
	return err
}

func (q *Queries) RevokeRefreshSessionsByUser(ctx context.Context, userID pgtype.UUID, revokedAt pgtype.Timestamptz) error {
	_, err := q.db.Exec(ctx, `UPDATE refresh_sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`, userID, revokedAt)
	return err
}
