package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const studentColumns = `id, name, contact, hours_in, hours_scheduled, times_booked_off, created_at, updated_at`

func scanStudent(row interface{ Scan(...interface{}) error }) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.Name, &s.Contact, &s.HoursIn, &s.HoursScheduled, &s.TimesBookedOff, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) ListStudents(ctx context.Context, limit int32) ([]Student, error) {
	rows, err := q.db.Query(ctx, `SELECT `+studentColumns+` FROM students ORDER BY name, id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (q *Queries) GetStudent(ctx context.Context, id pgtype.UUID) (Student, error) {
	return scanStudent(q.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
}

type CreateStudentParams struct {
	ID             pgtype.UUID
	Name           string
	Contact        string
	HoursIn        float64
	HoursScheduled float64
	TimesBookedOff int32
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

func (q *Queries) CreateStudent(ctx context.Context, arg CreateStudentParams) (Student, error) {
	return scanStudent(q.db.QueryRow(ctx, `
		INSERT INTO students (id, name, contact, hours_in, hours_scheduled, times_booked_off, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+studentColumns,
		arg.ID, arg.Name, arg.Contact, arg.HoursIn, arg.HoursScheduled, arg.TimesBookedOff, arg.CreatedAt, arg.UpdatedAt))
}

type UpdateStudentParams struct {
	ID             pgtype.UUID
	Name           string
	Contact        string
	HoursIn        float64
	HoursScheduled float64
	TimesBookedOff int32
	UpdatedAt      pgtype.Timestamptz
}

func (q *Queries) UpdateStudent(ctx context.Context, arg UpdateStudentParams) (Student, error) {
	return scanStudent(q.db.QueryRow(ctx, `
		UPDATE students
		SET name = $2, contact = $3, hours_in = $4, hours_scheduled = $5, times_booked_off = $6, updated_at = $7
		WHERE id = $1
		RETURNING `+studentColumns,
		arg.ID, arg.Name, arg.Contact, arg.HoursIn, arg.HoursScheduled, arg.TimesBookedOff, arg.UpdatedAt))
}

func (q *Queries) DeleteStudent(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) ListExistingStudentIDs(ctx context.Context, ids []pgtype.UUID) ([]pgtype.UUID, error) {
	return q.existingIDs(ctx, `SELECT id FROM students WHERE id = ANY($1::uuid[])`, ids)
}

func (q *Queries) ListStudentCourseIDs(ctx context.Context, studentID pgtype.UUID) ([]pgtype.UUID, error) {
	return q.listIDs(ctx, `SELECT course_id FROM student_courses WHERE student_id = $1 ORDER BY course_id`, studentID)
}

func (q *Queries) ListStudentTutorIDs(ctx context.Context, studentID pgtype.UUID) ([]pgtype.UUID, error) {
	return q.listIDs(ctx, `SELECT tutor_id FROM student_tutors WHERE student_id = $1 ORDER BY tutor_id`, studentID)
}

func (q *Queries) AddStudentCourse(ctx context.Context, studentID, courseID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO student_courses (student_id, course_id) VALUES ($1, $2)
		ON CONFLICT (student_id, course_id) DO NOTHING
	`, studentID, courseID)
	return err
}

func (q *Queries) DeleteStudentCoursesByStudent(ctx context.Context, studentID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM student_courses WHERE student_id = $1`, studentID)
	return err
}

func (q *Queries) AddStudentTutor(ctx context.Context, studentID, tutorID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO student_tutors (student_id, tutor_id) VALUES ($1, $2)
		ON CONFLICT (student_id, tutor_id) DO NOTHING
	`, studentID, tutorID)
	return err
}

func (q *Queries) DeleteStudentTutorsByStudent(ctx context.Context, studentID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM student_tutors WHERE student_id = $1`, studentID)
	return err
}

func (q *Queries) IncrementStudentsTimesBookedOff(ctx context.Context, ids []pgtype.UUID, updatedAt pgtype.Timestamptz) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.db.Exec(ctx, `
		UPDATE students SET times_booked_off = times_booked_off + 1, updated_at = $2
		WHERE id = ANY($1::uuid[])
	`, ids, updatedAt)
	return err
}

// RollupStudentHours recomputes hours_in (classes already ended) and
// hours_scheduled (classes not yet ended) from non booked-off links.
func (q *Queries) RollupStudentHours(ctx context.Context, now pgtype.Timestamptz) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE students s
		SET hours_in = agg.hours_in, hours_scheduled = agg.hours_scheduled
		FROM (
			SELECT st.id,
				COALESCE(SUM(EXTRACT(EPOCH FROM (sc.end_at - sc.start_at)) / 3600.0) FILTER (WHERE sc.end_at <= $1), 0) AS hours_in,
				COALESCE(SUM(EXTRACT(EPOCH FROM (sc.end_at - sc.start_at)) / 3600.0) FILTER (WHERE sc.end_at > $1), 0) AS hours_scheduled
			FROM students st
			LEFT JOIN student_scheduled_classes ssc ON ssc.student_id = st.id
			LEFT JOIN scheduled_classes sc ON sc.id = ssc.scheduled_class_id AND sc.status = 'NOT_BOOKED_OFF'
			GROUP BY st.id
		) agg
		WHERE s.id = agg.id AND (s.hours_in <> agg.hours_in OR s.hours_scheduled <> agg.hours_scheduled)
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
