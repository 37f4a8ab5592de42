package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const scheduledClassColumns = `id, start_at, end_at, status, capacity, booked_off_by, booked_off_by_name, course_id, created_at, updated_at`

// scheduledClassViewSelect projects enrollment and roster names from the link
// tables. Names and ids are ordered the same way so they pair up by index.
const scheduledClassViewSelect = `
	SELECT sc.id, sc.start_at, sc.end_at, sc.status, sc.capacity, sc.booked_off_by, sc.booked_off_by_name,
		sc.course_id, sc.created_at, sc.updated_at,
		c.course_name,
		(SELECT count(*)::int FROM student_scheduled_classes ssc WHERE ssc.scheduled_class_id = sc.id) AS current_enrollment,
		COALESCE((
			SELECT array_agg(t.id ORDER BY t.name, t.id)
			FROM tutor_scheduled_classes tsc JOIN tutors t ON t.id = tsc.tutor_id
			WHERE tsc.scheduled_class_id = sc.id
		), '{}'::uuid[]) AS tutor_ids,
		COALESCE((
			SELECT array_agg(t.name ORDER BY t.name, t.id)
			FROM tutor_scheduled_classes tsc JOIN tutors t ON t.id = tsc.tutor_id
			WHERE tsc.scheduled_class_id = sc.id
		), '{}'::text[]) AS tutor_names,
		COALESCE((
			SELECT array_agg(st.id ORDER BY st.name, st.id)
			FROM student_scheduled_classes ssc JOIN students st ON st.id = ssc.student_id
			WHERE ssc.scheduled_class_id = sc.id
		), '{}'::uuid[]) AS student_ids,
		COALESCE((
			SELECT array_agg(st.name ORDER BY st.name, st.id)
			FROM student_scheduled_classes ssc JOIN students st ON st.id = ssc.student_id
			WHERE ssc.scheduled_class_id = sc.id
		), '{}'::text[]) AS student_names
	FROM scheduled_classes sc
	LEFT JOIN courses c ON c.id = sc.course_id
`

func scanScheduledClass(row interface{ Scan(...interface{}) error }) (ScheduledClass, error) {
	var c ScheduledClass
	err := row.Scan(&c.ID, &c.StartAt, &c.EndAt, &c.Status, &c.Capacity, &c.BookedOffBy, &c.BookedOffByName, &c.CourseID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanScheduledClassView(row interface{ Scan(...interface{}) error }) (ScheduledClassView, error) {
	var v ScheduledClassView
	err := row.Scan(
		&v.ID,
		&v.StartAt,
		&v.EndAt,
		&v.Status,
		&v.Capacity,
		&v.BookedOffBy,
		&v.BookedOffByName,
		&v.CourseID,
		&v.CreatedAt,
		&v.UpdatedAt,
		&v.CourseName,
		&v.CurrentEnrollment,
		&v.TutorIDs,
		&v.TutorNames,
		&v.StudentIDs,
		&v.StudentNames,
	)
	return v, err
}

type ListScheduledClassesParams struct {
	From  pgtype.Timestamptz
	To    pgtype.Timestamptz
	Limit int32
}

// ListScheduledClasses returns classes whose start falls in [From, To).
// Either bound may be null.
func (q *Queries) ListScheduledClasses(ctx context.Context, arg ListScheduledClassesParams) ([]ScheduledClassView, error) {
	rows, err := q.db.Query(ctx, scheduledClassViewSelect+`
		WHERE ($1::timestamptz IS NULL OR sc.start_at >= $1)
			AND ($2::timestamptz IS NULL OR sc.start_at < $2)
		ORDER BY sc.start_at, sc.id
		LIMIT $3
	`, arg.From, arg.To, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ScheduledClassView{}
	for rows.Next() {
		v, err := scanScheduledClassView(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (q *Queries) GetScheduledClassView(ctx context.Context, id pgtype.UUID) (ScheduledClassView, error) {
	return scanScheduledClassView(q.db.QueryRow(ctx, scheduledClassViewSelect+` WHERE sc.id = $1`, id))
}

// GetScheduledClassForUpdate locks the class row for the rest of the
// transaction.
func (q *Queries) GetScheduledClassForUpdate(ctx context.Context, id pgtype.UUID) (ScheduledClass, error) {
	return scanScheduledClass(q.db.QueryRow(ctx, `SELECT `+scheduledClassColumns+` FROM scheduled_classes WHERE id = $1 FOR UPDATE`, id))
}

type CreateScheduledClassParams struct {
	ID              pgtype.UUID
	StartAt         pgtype.Timestamptz
	EndAt           pgtype.Timestamptz
	Status          ClassStatus
	Capacity        int32
	BookedOffBy     BookedOffBy
	BookedOffByName string
	CourseID        pgtype.UUID
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

func (q *Queries) CreateScheduledClass(ctx context.Context, arg CreateScheduledClassParams) (ScheduledClass, error) {
	return scanScheduledClass(q.db.QueryRow(ctx, `
		INSERT INTO scheduled_classes (id, start_at, end_at, status, capacity, booked_off_by, booked_off_by_name, course_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+scheduledClassColumns,
		arg.ID, arg.StartAt, arg.EndAt, string(arg.Status), arg.Capacity, string(arg.BookedOffBy), arg.BookedOffByName, arg.CourseID, arg.CreatedAt, arg.UpdatedAt))
}

type UpdateScheduledClassParams struct {
	ID              pgtype.UUID
	StartAt         pgtype.Timestamptz
	EndAt           pgtype.Timestamptz
	Status          ClassStatus
	Capacity        int32
	BookedOffBy     BookedOffBy
	BookedOffByName string
	CourseID        pgtype.UUID
	UpdatedAt       pgtype.Timestamptz
}

func (q *Queries) UpdateScheduledClass(ctx context.Context, arg UpdateScheduledClassParams) (ScheduledClass, error) {
	return scanScheduledClass(q.db.QueryRow(ctx, `
		UPDATE scheduled_classes
		SET start_at = $2, end_at = $3, status = $4, capacity = $5, booked_off_by = $6,
			booked_off_by_name = $7, course_id = $8, updated_at = $9
		WHERE id = $1
		RETURNING `+scheduledClassColumns,
		arg.ID, arg.StartAt, arg.EndAt, string(arg.Status), arg.Capacity, string(arg.BookedOffBy), arg.BookedOffByName, arg.CourseID, arg.UpdatedAt))
}

func (q *Queries) DeleteScheduledClass(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM scheduled_classes WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) ScheduledClassExists(ctx context.Context, id pgtype.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM scheduled_classes WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
