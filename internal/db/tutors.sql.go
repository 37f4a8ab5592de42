package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const tutorColumns = `id, name, subject, hours_worked, hours_scheduled, times_booked_off, created_at, updated_at`

func scanTutor(row interface{ Scan(...interface{}) error }) (Tutor, error) {
	var t Tutor
	err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.HoursWorked, &t.HoursScheduled, &t.TimesBookedOff, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (q *Queries) ListTutors(ctx context.Context, limit int32) ([]Tutor, error) {
	rows, err := q.db.Query(ctx, `SELECT `+tutorColumns+` FROM tutors ORDER BY name, id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Tutor{}
	for rows.Next() {
		t, err := scanTutor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (q *Queries) GetTutor(ctx context.Context, id pgtype.UUID) (Tutor, error) {
	return scanTutor(q.db.QueryRow(ctx, `SELECT `+tutorColumns+` FROM tutors WHERE id = $1`, id))
}

type CreateTutorParams struct {
	ID             pgtype.UUID
	Name           string
	Subject        string
	HoursWorked    float64
	HoursScheduled float64
	TimesBookedOff int32
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

func (q *Queries) CreateTutor(ctx context.Context, arg CreateTutorParams) (Tutor, error) {
	return scanTutor(q.db.QueryRow(ctx, `
		INSERT INTO tutors (id, name, subject, hours_worked, hours_scheduled, times_booked_off, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+tutorColumns,
		arg.ID, arg.Name, arg.Subject, arg.HoursWorked, arg.HoursScheduled, arg.TimesBookedOff, arg.CreatedAt, arg.UpdatedAt))
}

type UpdateTutorParams struct {
	ID             pgtype.UUID
	Name           string
	Subject        string
	HoursWorked    float64
	HoursScheduled float64
	TimesBookedOff int32
	UpdatedAt      pgtype.Timestamptz
}

func (q *Queries) UpdateTutor(ctx context.Context, arg UpdateTutorParams) (Tutor, error) {
	return scanTutor(q.db.QueryRow(ctx, `
		UPDATE tutors
		SET name = $2, subject = $3, hours_worked = $4, hours_scheduled = $5, times_booked_off = $6, updated_at = $7
		WHERE id = $1
		RETURNING `+tutorColumns,
		arg.ID, arg.Name, arg.Subject, arg.HoursWorked, arg.HoursScheduled, arg.TimesBookedOff, arg.UpdatedAt))
}

func (q *Queries) DeleteTutor(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM tutors WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) ListExistingTutorIDs(ctx context.Context, ids []pgtype.UUID) ([]pgtype.UUID, error) {
	return q.existingIDs(ctx, `SELECT id FROM tutors WHERE id = ANY($1::uuid[])`, ids)
}

func (q *Queries) ListTutorCourseIDs(ctx context.Context, tutorID pgtype.UUID) ([]pgtype.UUID, error) {
	return q.listIDs(ctx, `SELECT course_id FROM tutor_courses WHERE tutor_id = $1 ORDER BY course_id`, tutorID)
}

func (q *Queries) ListTutorStudentIDs(ctx context.Context, tutorID pgtype.UUID) ([]pgtype.UUID, error) {
	return q.listIDs(ctx, `SELECT student_id FROM student_tutors WHERE tutor_id = $1 ORDER BY student_id`, tutorID)
}

func (q *Queries) AddTutorCourse(ctx context.Context, tutorID, courseID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO tutor_courses (tutor_id, course_id) VALUES ($1, $2)
		ON CONFLICT (tutor_id, course_id) DO NOTHING
	`, tutorID, courseID)
	return err
}

func (q *Queries) DeleteTutorCoursesByTutor(ctx context.Context, tutorID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM tutor_courses WHERE tutor_id = $1`, tutorID)
	return err
}

func (q *Queries) DeleteStudentTutorsByTutor(ctx context.Context, tutorID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM student_tutors WHERE tutor_id = $1`, tutorID)
	return err
}

func (q *Queries) IncrementTutorsTimesBookedOff(ctx context.Context, ids []pgtype.UUID, updatedAt pgtype.Timestamptz) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.db.Exec(ctx, `
		UPDATE tutors SET times_booked_off = times_booked_off + 1, updated_at = $2
		WHERE id = ANY($1::uuid[])
	`, ids, updatedAt)
	return err
}

// RollupTutorHours mirrors RollupStudentHours for tutors: hours_worked for
// ended classes, hours_scheduled for the rest.
func (q *Queries) RollupTutorHours(ctx context.Context, now pgtype.Timestamptz) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE tutors t
		SET hours_worked = agg.hours_worked, hours_scheduled = agg.hours_scheduled
		FROM (
			SELECT tu.id,
				COALESCE(SUM(EXTRACT(EPOCH FROM (sc.end_at - sc.start_at)) / 3600.0) FILTER (WHERE sc.end_at <= $1), 0) AS hours_worked,
				COALESCE(SUM(EXTRACT(EPOCH FROM (sc.end_at - sc.start_at)) / 3600.0) FILTER (WHERE sc.end_at > $1), 0) AS hours_scheduled
			FROM tutors tu
			LEFT JOIN tutor_scheduled_classes tsc ON tsc.tutor_id = tu.id
			LEFT JOIN scheduled_classes sc ON sc.id = tsc.scheduled_class_id AND sc.status = 'NOT_BOOKED_OFF'
			GROUP BY tu.id
		) agg
		WHERE t.id = agg.id AND (t.hours_worked <> agg.hours_worked OR t.hours_scheduled <> agg.hours_scheduled)
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
