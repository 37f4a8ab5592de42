package booking

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/Johnson150/cls-sub000/internal/db"
)

// CourseInput is shared by create and patch. An empty Grade stores null.
type CourseInput struct {
	CourseName *string
	Grade      *string
}

func (s *Service) ListCourses(ctx context.Context, limit int32) ([]db.Course, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	items, err := s.store.Queries.ListCourses(ctx, limit)
	if err != nil {
		return nil, AsError(err)
	}
	return items, nil
}

func (s *Service) GetCourse(ctx context.Context, id string) (db.Course, error) {
	courseID, err := parseID(id)
	if err != nil {
		return db.Course{}, invalid("invalid_course_id", "course id must be a uuid")
	}
	course, err := s.store.Queries.GetCourse(ctx, courseID)
	if err != nil {
		if db.IsNotFound(err) {
			return db.Course{}, notFound("course_not_found", "course not found")
		}
		return db.Course{}, AsError(err)
	}
	return course, nil
}

func (s *Service) CreateCourse(ctx context.Context, in CourseInput) (db.Course, error) {
	if in.CourseName == nil || strings.TrimSpace(*in.CourseName) == "" {
		return db.Course{}, invalid("missing_course_name", "courseName is required")
	}
	now := pgTime(s.now())
	course, err := s.store.Queries.CreateCourse(ctx, db.CreateCourseParams{
		ID:         newID(),
		CourseName: strings.TrimSpace(*in.CourseName),
		Grade:      gradeText(in.Grade),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return db.Course{}, AsError(err)
	}
	s.log.Info("course created", zap.String("course_id", idString(course.ID)))
	return course, nil
}

func (s *Service) UpdateCourse(ctx context.Context, id string, in CourseInput) (db.Course, error) {
	courseID, err := parseID(id)
	if err != nil {
		return db.Course{}, invalid("invalid_course_id", "course id must be a uuid")
	}
	if in.CourseName != nil && strings.TrimSpace(*in.CourseName) == "" {
		return db.Course{}, invalid("missing_course_name", "courseName cannot be empty")
	}
	var course db.Course
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		current, err := q.GetCourse(ctx, courseID)
		if err != nil {
			if db.IsNotFound(err) {
				return notFound("course_not_found", "course not found")
			}
			return err
		}
		params := db.UpdateCourseParams{
			ID:         courseID,
			CourseName: current.CourseName,
			Grade:      current.Grade,
			UpdatedAt:  pgTime(s.now()),
		}
		if in.CourseName != nil {
			params.CourseName = strings.TrimSpace(*in.CourseName)
		}
		if in.Grade != nil {
			params.Grade = gradeText(in.Grade)
		}
		course, err = q.UpdateCourse(ctx, params)
		return err
	})
	if err != nil {
		return db.Course{}, AsError(err)
	}
	s.log.Info("course updated", zap.String("course_id", id))
	return course, nil
}

// DeleteCourse detaches the course from scheduled classes and drops the
// student and tutor course relations before deleting the row.
func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	courseID, err := parseID(id)
	if err != nil {
		return invalid("invalid_course_id", "course id must be a uuid")
	}
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		if err := q.DetachCourseFromClasses(ctx, courseID, pgTime(s.now())); err != nil {
			return err
		}
		if err := q.DeleteStudentCoursesByCourse(ctx, courseID); err != nil {
			return err
		}
		if err := q.DeleteTutorCoursesByCourse(ctx, courseID); err != nil {
			return err
		}
		deleted, err := q.DeleteCourse(ctx, courseID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return notFound("course_not_found", "course not found")
		}
		return nil
	})
	if err != nil {
		return AsError(err)
	}
	s.log.Info("course deleted", zap.String("course_id", id))
	return nil
}

func gradeText(grade *string) pgtype.Text {
	if grade == nil {
		return pgtype.Text{}
	}
	value := strings.TrimSpace(*grade)
	return pgtype.Text{String: value, Valid: value != ""}
}
