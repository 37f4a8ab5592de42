package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const courseColumns = `id, course_name, grade, created_at, updated_at`

func scanCourse(row interface{ Scan(...interface{}) error }) (Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.CourseName, &c.Grade, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) ListCourses(ctx context.Context, limit int32) ([]Course, error) {
	rows, err := q.db.Query(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY course_name, id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (q *Queries) GetCourse(ctx context.Context, id pgtype.UUID) (Course, error) {
	return scanCourse(q.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
}

type CreateCourseParams struct {
	ID         pgtype.UUID
	CourseName string
	Grade      pgtype.Text
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
}

func (q *Queries) CreateCourse(ctx context.Context, arg CreateCourseParams) (Course, error) {
	return scanCourse(q.db.QueryRow(ctx, `
		INSERT INTO courses (id, course_name, grade, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+courseColumns,
		arg.ID, arg.CourseName, arg.Grade, arg.CreatedAt, arg.UpdatedAt))
}

type UpdateCourseParams struct {
	ID         pgtype.UUID
	CourseName string
	Grade      pgtype.Text
	UpdatedAt  pgtype.Timestamptz
}

func (q *Queries) UpdateCourse(ctx context.Context, arg UpdateCourseParams) (Course, error) {
	return scanCourse(q.db.QueryRow(ctx, `
		UPDATE courses SET course_name = $2, grade = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+courseColumns,
		arg.ID, arg.CourseName, arg.Grade, arg.UpdatedAt))
}

func (q *Queries) DeleteCourse(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListExistingCourseIDs returns the subset of ids that exist.
func (q *Queries) ListExistingCourseIDs(ctx context.Context, ids []pgtype.UUID) ([]pgtype.UUID, error) {
	return q.existingIDs(ctx, `SELECT id FROM courses WHERE id = ANY($1::uuid[])`, ids)
}

func (q *Queries) DetachCourseFromClasses(ctx context.Context, courseID pgtype.UUID, updatedAt pgtype.Timestamptz) error {
	_, err := q.db.Exec(ctx, `UPDATE scheduled_classes SET course_id = NULL, updated_at = $2 WHERE course_id = $1`, courseID, updatedAt)
	return err
}

func (q *Queries) DeleteStudentCoursesByCourse(ctx context.Context, courseID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM student_courses WHERE course_id = $1`, courseID)
	return err
}

func (q *Queries) DeleteTutorCoursesByCourse(ctx context.Context, courseID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM tutor_courses WHERE course_id = $1`, courseID)
	return err
}

func (q *Queries) existingIDs(ctx context.Context, query string, ids []pgtype.UUID) ([]pgtype.UUID, error) {
	if len(ids) == 0 {
		return []pgtype.UUID{}, nil
	}
	rows, err := q.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := []pgtype.UUID{}
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

func (q *Queries) listIDs(ctx context.Context, query string, arg pgtype.UUID) ([]pgtype.UUID, error) {
	rows, err := q.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []pgtype.UUID{}
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
