package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type AddStudentToClassParams struct {
	ID               pgtype.UUID
	ScheduledClassID pgtype.UUID
	StudentID        pgtype.UUID
	CreatedAt        pgtype.Timestamptz
}

// AddStudentToClass links a student to a class. Linking an existing pair
// returns the existing row unchanged.
func (q *Queries) AddStudentToClass(ctx context.Context, arg AddStudentToClassParams) (StudentScheduledClass, error) {
	var l StudentScheduledClass
	err := q.db.QueryRow(ctx, `
		INSERT INTO student_scheduled_classes (id, scheduled_class_id, student_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scheduled_class_id, student_id)
		DO UPDATE SET scheduled_class_id = EXCLUDED.scheduled_class_id
		RETURNING id, scheduled_class_id, student_id, created_at
	`, arg.ID, arg.ScheduledClassID, arg.StudentID, arg.CreatedAt).Scan(&l.ID, &l.ScheduledClassID, &l.StudentID, &l.CreatedAt)
	return l, err
}

type ListStudentScheduledClassesParams struct {
	ScheduledClassID pgtype.UUID
	StudentID        pgtype.UUID
	Limit            int32
}

func (q *Queries) ListStudentScheduledClasses(ctx context.Context, arg ListStudentScheduledClassesParams) ([]StudentScheduledClass, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, scheduled_class_id, student_id, created_at
		FROM student_scheduled_classes
		WHERE ($1::uuid IS NULL OR scheduled_class_id = $1)
			AND ($2::uuid IS NULL OR student_id = $2)
		ORDER BY created_at, id
		LIMIT $3
	`, arg.ScheduledClassID, arg.StudentID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StudentScheduledClass{}
	for rows.Next() {
		var l StudentScheduledClass
		if err := rows.Scan(&l.ID, &l.ScheduledClassID, &l.StudentID, &l.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func (q *Queries) GetStudentScheduledClass(ctx context.Context, id pgtype.UUID) (StudentScheduledClass, error) {
	var l StudentScheduledClass
	err := q.db.QueryRow(ctx, `
		SELECT id, scheduled_class_id, student_id, created_at
		FROM student_scheduled_classes
		WHERE id = $1
	`, id).Scan(&l.ID, &l.ScheduledClassID, &l.StudentID, &l.CreatedAt)
	return l, err
}

type UpdateStudentScheduledClassParams struct {
	ID               pgtype.UUID
	ScheduledClassID pgtype.UUID
	StudentID        pgtype.UUID
}

func (q *Queries) UpdateStudentScheduledClass(ctx context.Context, arg UpdateStudentScheduledClassParams) (StudentScheduledClass, error) {
	var l StudentScheduledClass
	err := q.db.QueryRow(ctx, `
		UPDATE student_scheduled_classes
		SET scheduled_class_id = $2, student_id = $3
		WHERE id = $1
		RETURNING id, scheduled_class_id, student_id, created_at
	`, arg.ID, arg.ScheduledClassID, arg.StudentID).Scan(&l.ID, &l.ScheduledClassID, &l.StudentID, &l.CreatedAt)
	return l, err
}

func (q *Queries) DeleteStudentScheduledClass(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM student_scheduled_classes WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) DeleteStudentScheduledClassesByClass(ctx context.Context, scheduledClassID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM student_scheduled_classes WHERE scheduled_class_id = $1`, scheduledClassID)
	return err
}

func (q *Queries) DeleteStudentScheduledClassesByStudent(ctx context.Context, studentID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM student_scheduled_classes WHERE student_id = $1`, studentID)
	return err
}

type AddTutorToClassParams struct {
	ID               pgtype.UUID
	ScheduledClassID pgtype.UUID
	TutorID          pgtype.UUID
	CreatedAt        pgtype.Timestamptz
}

func (q *Queries) AddTutorToClass(ctx context.Context, arg AddTutorToClassParams) (TutorScheduledClass, error) {
	var l TutorScheduledClass
	err := q.db.QueryRow(ctx, `
		INSERT INTO tutor_scheduled_classes (id, scheduled_class_id, tutor_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scheduled_class_id, tutor_id)
		DO UPDATE SET scheduled_class_id = EXCLUDED.scheduled_class_id
		RETURNING id, scheduled_class_id, tutor_id, created_at
	`, arg.ID, arg.ScheduledClassID, arg.TutorID, arg.CreatedAt).Scan(&l.ID, &l.ScheduledClassID, &l.TutorID, &l.CreatedAt)
	return l, err
}

type ListTutorScheduledClassesParams struct {
	ScheduledClassID pgtype.UUID
	TutorID          pgtype.UUID
	Limit            int32
}

func (q *Queries) ListTutorScheduledClasses(ctx context.Context, arg ListTutorScheduledClassesParams) ([]TutorScheduledClass, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, scheduled_class_id, tutor_id, created_at
		FROM tutor_scheduled_classes
		WHERE ($1::uuid IS NULL OR scheduled_class_id = $1)
			AND ($2::uuid IS NULL OR tutor_id = $2)
		ORDER BY created_at, id
		LIMIT $3
	`, arg.ScheduledClassID, arg.TutorID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TutorScheduledClass{}
	for rows.Next() {
		var l TutorScheduledClass
		if err := rows.Scan(&l.ID, &l.ScheduledClassID, &l.TutorID, &l.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func (q *Queries) GetTutorScheduledClass(ctx context.Context, id pgtype.UUID) (TutorScheduledClass, error) {
	var l TutorScheduledClass
	err := q.db.QueryRow(ctx, `
		SELECT id, scheduled_class_id, tutor_id, created_at
		FROM tutor_scheduled_classes
		WHERE id = $1
	`, id).Scan(&l.ID, &l.ScheduledClassID, &l.TutorID, &l.CreatedAt)
	return l, err
}

type UpdateTutorScheduledClassParams struct {
	ID               pgtype.UUID
	ScheduledClassID pgtype.UUID
	TutorID          pgtype.UUID
}

func (q *Queries) UpdateTutorScheduledClass(ctx context.Context, arg UpdateTutorScheduledClassParams) (TutorScheduledClass, error) {
	var l TutorScheduledClass
	err := q.db.QueryRow(ctx, `
		UPDATE tutor_scheduled_classes
		SET scheduled_class_id = $2, tutor_id = $3
		WHERE id = $1
		RETURNING id, scheduled_class_id, tutor_id, created_at
	`, arg.ID, arg.ScheduledClassID, arg.TutorID).Scan(&l.ID, &l.ScheduledClassID, &l.TutorID, &l.CreatedAt)
	return l, err
}

func (q *Queries) DeleteTutorScheduledClass(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM tutor_scheduled_classes WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) DeleteTutorScheduledClassesByClass(ctx context.Context, scheduledClassID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM tutor_scheduled_classes WHERE scheduled_class_id = $1`, scheduledClassID)
	return err
}

func (q *Queries) DeleteTutorScheduledClassesByTutor(ctx context.Context, tutorID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM tutor_scheduled_classes WHERE tutor_id = $1`, tutorID)
	return err
}
