package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Johnson150/cls-sub000/internal/config"
	"github.com/Johnson150/cls-sub000/internal/db"
	"github.com/Johnson150/cls-sub000/internal/metrics"
)

// HoursRoller recomputes the cached hour totals on tutors and students.
type HoursRoller interface {
	RollupTutorHours(ctx context.Context, now pgtype.Timestamptz) (int64, error)
	RollupStudentHours(ctx context.Context, now pgtype.Timestamptz) (int64, error)
}

type RollupResult struct {
	Tutors   int64
	Students int64
}

func RunHoursRollup(ctx context.Context, roller HoursRoller, now time.Time) (RollupResult, error) {
	at := pgtype.Timestamptz{Time: now.UTC(), Valid: true}
	var res RollupResult
	var err error
	if res.Tutors, err = roller.RollupTutorHours(ctx, at); err != nil {
		return res, fmt.Errorf("rollup tutor hours: %w", err)
	}
	if res.Students, err = roller.RollupStudentHours(ctx, at); err != nil {
		return res, fmt.Errorf("rollup student hours: %w", err)
	}
	return res, nil
}

// StartHoursRollupJob schedules the rollup on cfg.HoursRollupSchedule. An
// empty schedule disables it and returns a nil scheduler. Overlapping runs
// are skipped. The scheduler stops when ctx is done.
func StartHoursRollupJob(ctx context.Context, cfg config.Config, store *db.Store, log *zap.Logger) (*cron.Cron, error) {
	if cfg.HoursRollupSchedule == "" {
		log.Info("hours rollup job disabled")
		return nil, nil
	}
	timeout := cfg.HoursRollupTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(cfg.HoursRollupSchedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		var res RollupResult
		err := store.WithTx(runCtx, func(q *db.Queries) error {
			var err error
			res, err = RunHoursRollup(runCtx, q, time.Now())
			return err
		})
		metrics.RecordRollup(err)
		if err != nil {
			log.Error("hours rollup failed", zap.Error(err))
			return
		}
		if res.Tutors > 0 || res.Students > 0 {
			log.Info("hours rollup updated totals", zap.Int64("tutors", res.Tutors), zap.Int64("students", res.Students))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule hours rollup %q: %w", cfg.HoursRollupSchedule, err)
	}
	c.Start()
	log.Info("hours rollup job started", zap.String("schedule", cfg.HoursRollupSchedule))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
