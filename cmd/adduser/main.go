// Command adduser creates a staff login for the scheduler.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/Johnson150/cls-sub000/internal/config"
	"github.com/Johnson150/cls-sub000/internal/crypto"
	"github.com/Johnson150/cls-sub000/internal/db"
	"github.com/Johnson150/cls-sub000/internal/logging"
)

func main() {
	email := flag.String("email", "", "login email")
	name := flag.String("name", "", "display name")
	role := flag.String("role", "admin", "role stored in the access token")
	flag.Parse()

	// The password is read from the environment so it stays out of shell history.
	password := os.Getenv("ADDUSER_PASSWORD")
	if strings.TrimSpace(*email) == "" || password == "" {
		flag.Usage()
		log.Fatal("email flag and ADDUSER_PASSWORD are required")
	}

	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, 1)
	if err != nil {
		logger.Fatal("db connection failed", zap.Error(err))
	}
	defer pool.Close()

	hash, err := crypto.HashPassword(password)
	if err != nil {
		logger.Fatal("hash password failed", zap.Error(err))
	}
	now := pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
	user, err := db.New(pool).CreateUser(ctx, db.CreateUserParams{
		ID:           pgtype.UUID{Bytes: uuid.New(), Valid: true},
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		Name:         strings.TrimSpace(*name),
		PasswordHash: hash,
		Role:         *role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			logger.Fatal("email already registered", zap.String("email", *email))
		}
		logger.Fatal("create user failed", zap.Error(err))
	}
	logger.Info("user created", zap.String("id", uuid.UUID(user.ID.Bytes).String()), zap.String("email", user.Email))
}
