package booking

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/Johnson150/cls-sub000/internal/db"
)

const DefaultListLimit = 500

type StudentRecord struct {
	db.Student
	CourseIDs []pgtype.UUID
	TutorIDs  []pgtype.UUID
}

type TutorRecord struct {
	db.Tutor
	CourseIDs  []pgtype.UUID
	StudentIDs []pgtype.UUID
}

// StudentInput is shared by create and patch. Nil fields keep their
// current value (or the zero value on create). Non-nil id lists replace
// the relation.
type StudentInput struct {
	Name           *string
	Contact        *string
	HoursIn        *float64
	HoursScheduled *float64
	TimesBookedOff *int32
	CourseIDs      *[]string
	TutorIDs       *[]string
}

type TutorInput struct {
	Name           *string
	Subject        *string
	HoursWorked    *float64
	HoursScheduled *float64
	TimesBookedOff *int32
	CourseIDs      *[]string
	StudentIDs     *[]string
}

func (s *Service) ListStudents(ctx context.Context, limit int32) ([]db.Student, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	items, err := s.store.Queries.ListStudents(ctx, limit)
	if err != nil {
		return nil, AsError(err)
	}
	return items, nil
}

func (s *Service) GetStudent(ctx context.Context, id string) (StudentRecord, error) {
	studentID, err := parseID(id)
	if err != nil {
		return StudentRecord{}, invalid("invalid_student_id", "student id must be a uuid")
	}
	rec, err := loadStudent(ctx, s.store.Queries, studentID)
	if err != nil {
		return StudentRecord{}, AsError(err)
	}
	return rec, nil
}

func loadStudent(ctx context.Context, q *db.Queries, id pgtype.UUID) (StudentRecord, error) {
	student, err := q.GetStudent(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return StudentRecord{}, notFound("student_not_found", "student not found")
		}
		return StudentRecord{}, err
	}
	rec := StudentRecord{Student: student}
	if rec.CourseIDs, err = q.ListStudentCourseIDs(ctx, id); err != nil {
		return StudentRecord{}, err
	}
	if rec.TutorIDs, err = q.ListStudentTutorIDs(ctx, id); err != nil {
		return StudentRecord{}, err
	}
	return rec, nil
}

func (s *Service) CreateStudent(ctx context.Context, in StudentInput) (StudentRecord, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return StudentRecord{}, invalid("missing_name", "name is required")
	}
	courseIDs, tutorIDs, bErr := parseRelations(in.CourseIDs, in.TutorIDs, "invalid_tutor_id", "tutor")
	if bErr != nil {
		return StudentRecord{}, bErr
	}

	var rec StudentRecord
	err := s.store.WithTx(ctx, func(q *db.Queries) error {
		if err := checkCourses(ctx, q, courseIDs); err != nil {
			return err
		}
		if err := checkReferences(ctx, q, pgtype.UUID{}, tutorIDs, nil); err != nil {
			return err
		}
		now := pgTime(s.now())
		student, err := q.CreateStudent(ctx, db.CreateStudentParams{
			ID:             newID(),
			Name:           strings.TrimSpace(*in.Name),
			Contact:        strValue(in.Contact, ""),
			HoursIn:        floatValue(in.HoursIn, 0),
			HoursScheduled: floatValue(in.HoursScheduled, 0),
			TimesBookedOff: int32Value(in.TimesBookedOff, 0),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return err
		}
		if err := replaceStudentRelations(ctx, q, student.ID, in.CourseIDs != nil, courseIDs, in.TutorIDs != nil, tutorIDs); err != nil {
			return err
		}
		rec, err = loadStudent(ctx, q, student.ID)
		return err
	})
	if err != nil {
		return StudentRecord{}, AsError(err)
	}
	s.log.Info("student created", zap.String("student_id", idString(rec.ID)))
	return rec, nil
}

func (s *Service) UpdateStudent(ctx context.Context, id string, in StudentInput) (StudentRecord, error) {
	studentID, err := parseID(id)
	if err != nil {
		return StudentRecord{}, invalid("invalid_student_id", "student id must be a uuid")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return StudentRecord{}, invalid("missing_name", "name cannot be empty")
	}
	courseIDs, tutorIDs, bErr := parseRelations(in.CourseIDs, in.TutorIDs, "invalid_tutor_id", "tutor")
	if bErr != nil {
		return StudentRecord{}, bErr
	}

	var rec StudentRecord
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		current, err := q.GetStudent(ctx, studentID)
		if err != nil {
			if db.IsNotFound(err) {
				return notFound("student_not_found", "student not found")
			}
			return err
		}
		if err := checkCourses(ctx, q, courseIDs); err != nil {
			return err
		}
		if err := checkReferences(ctx, q, pgtype.UUID{}, tutorIDs, nil); err != nil {
			return err
		}
		if _, err := q.UpdateStudent(ctx, db.UpdateStudentParams{
			ID:             studentID,
			Name:           strings.TrimSpace(strValue(in.Name, current.Name)),
			Contact:        strValue(in.Contact, current.Contact),
			HoursIn:        floatValue(in.HoursIn, current.HoursIn),
			HoursScheduled: floatValue(in.HoursScheduled, current.HoursScheduled),
			TimesBookedOff: int32Value(in.TimesBookedOff, current.TimesBookedOff),
			UpdatedAt:      pgTime(s.now()),
		}); err != nil {
			return err
		}
		if err := replaceStudentRelations(ctx, q, studentID, in.CourseIDs != nil, courseIDs, in.TutorIDs != nil, tutorIDs); err != nil {
			return err
		}
		rec, err = loadStudent(ctx, q, studentID)
		return err
	})
	if err != nil {
		return StudentRecord{}, AsError(err)
	}
	s.log.Info("student updated", zap.String("student_id", id))
	return rec, nil
}

// DeleteStudent removes the student's class links and relations first.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	studentID, err := parseID(id)
	if err != nil {
		return invalid("invalid_student_id", "student id must be a uuid")
	}
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		if err := q.DeleteStudentScheduledClassesByStudent(ctx, studentID); err != nil {
			return err
		}
		if err := q.DeleteStudentCoursesByStudent(ctx, studentID); err != nil {
			return err
		}
		if err := q.DeleteStudentTutorsByStudent(ctx, studentID); err != nil {
			return err
		}
		deleted, err := q.DeleteStudent(ctx, studentID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return notFound("student_not_found", "student not found")
		}
		return nil
	})
	if err != nil {
		return AsError(err)
	}
	s.log.Info("student deleted", zap.String("student_id", id))
	return nil
}

func replaceStudentRelations(ctx context.Context, q *db.Queries, studentID pgtype.UUID, setCourses bool, courseIDs []pgtype.UUID, setTutors bool, tutorIDs []pgtype.UUID) error {
	if setCourses {
		if err := q.DeleteStudentCoursesByStudent(ctx, studentID); err != nil {
			return err
		}
		for _, courseID := range courseIDs {
			if err := q.AddStudentCourse(ctx, studentID, courseID); err != nil {
				return err
			}
		}
	}
	if setTutors {
		if err := q.DeleteStudentTutorsByStudent(ctx, studentID); err != nil {
			return err
		}
		for _, tutorID := range tutorIDs {
			if err := q.AddStudentTutor(ctx, studentID, tutorID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) ListTutors(ctx context.Context, limit int32) ([]db.Tutor, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	items, err := s.store.Queries.ListTutors(ctx, limit)
	if err != nil {
		return nil, AsError(err)
	}
	return items, nil
}

func (s *Service) GetTutor(ctx context.Context, id string) (TutorRecord, error) {
	tutorID, err := parseID(id)
	if err != nil {
		return TutorRecord{}, invalid("invalid_tutor_id", "tutor id must be a uuid")
	}
	rec, err := loadTutor(ctx, s.store.Queries, tutorID)
	if err != nil {
		return TutorRecord{}, AsError(err)
	}
	return rec, nil
}

func loadTutor(ctx context.Context, q *db.Queries, id pgtype.UUID) (TutorRecord, error) {
	tutor, err := q.GetTutor(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return TutorRecord{}, notFound("tutor_not_found", "tutor not found")
		}
		return TutorRecord{}, err
	}
	rec := TutorRecord{Tutor: tutor}
	if rec.CourseIDs, err = q.ListTutorCourseIDs(ctx, id); err != nil {
		return TutorRecord{}, err
	}
	if rec.StudentIDs, err = q.ListTutorStudentIDs(ctx, id); err != nil {
		return TutorRecord{}, err
	}
	return rec, nil
}

func (s *Service) CreateTutor(ctx context.Context, in TutorInput) (TutorRecord, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return TutorRecord{}, invalid("missing_name", "name is required")
	}
	courseIDs, studentIDs, bErr := parseRelations(in.CourseIDs, in.StudentIDs, "invalid_student_id", "student")
	if bErr != nil {
		return TutorRecord{}, bErr
	}

	var rec TutorRecord
	err := s.store.WithTx(ctx, func(q *db.Queries) error {
		if err := checkCourses(ctx, q, courseIDs); err != nil {
			return err
		}
		if err := checkReferences(ctx, q, pgtype.UUID{}, nil, studentIDs); err != nil {
			return err
		}
		now := pgTime(s.now())
		tutor, err := q.CreateTutor(ctx, db.CreateTutorParams{
			ID:             newID(),
			Name:           strings.TrimSpace(*in.Name),
			Subject:        strValue(in.Subject, ""),
			HoursWorked:    floatValue(in.HoursWorked, 0),
			HoursScheduled: floatValue(in.HoursScheduled, 0),
			TimesBookedOff: int32Value(in.TimesBookedOff, 0),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return err
		}
		if err := replaceTutorRelations(ctx, q, tutor.ID, in.CourseIDs != nil, courseIDs, in.StudentIDs != nil, studentIDs); err != nil {
			return err
		}
		rec, err = loadTutor(ctx, q, tutor.ID)
		return err
	})
	if err != nil {
		return TutorRecord{}, AsError(err)
	}
	s.log.Info("tutor created", zap.String("tutor_id", idString(rec.ID)))
	return rec, nil
}

func (s *Service) UpdateTutor(ctx context.Context, id string, in TutorInput) (TutorRecord, error) {
	tutorID, err := parseID(id)
	if err != nil {
		return TutorRecord{}, invalid("invalid_tutor_id", "tutor id must be a uuid")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return TutorRecord{}, invalid("missing_name", "name cannot be empty")
	}
	courseIDs, studentIDs, bErr := parseRelations(in.CourseIDs, in.StudentIDs, "invalid_student_id", "student")
	if bErr != nil {
		return TutorRecord{}, bErr
	}

	var rec TutorRecord
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		current, err := q.GetTutor(ctx, tutorID)
		if err != nil {
			if db.IsNotFound(err) {
				return notFound("tutor_not_found", "tutor not found")
			}
			return err
		}
		if err := checkCourses(ctx, q, courseIDs); err != nil {
			return err
		}
		if err := checkReferences(ctx, q, pgtype.UUID{}, nil, studentIDs); err != nil {
			return err
		}
		if _, err := q.UpdateTutor(ctx, db.UpdateTutorParams{
			ID:             tutorID,
			Name:           strings.TrimSpace(strValue(in.Name, current.Name)),
			Subject:        strValue(in.Subject, current.Subject),
			HoursWorked:    floatValue(in.HoursWorked, current.HoursWorked),
			HoursScheduled: floatValue(in.HoursScheduled, current.HoursScheduled),
			TimesBookedOff: int32Value(in.TimesBookedOff, current.TimesBookedOff),
			UpdatedAt:      pgTime(s.now()),
		}); err != nil {
			return err
		}
		if err := replaceTutorRelations(ctx, q, tutorID, in.CourseIDs != nil, courseIDs, in.StudentIDs != nil, studentIDs); err != nil {
			return err
		}
		rec, err = loadTutor(ctx, q, tutorID)
		return err
	})
	if err != nil {
		return TutorRecord{}, AsError(err)
	}
	s.log.Info("tutor updated", zap.String("tutor_id", id))
	return rec, nil
}

func (s *Service) DeleteTutor(ctx context.Context, id string) error {
	tutorID, err := parseID(id)
	if err != nil {
		return invalid("invalid_tutor_id", "tutor id must be a uuid")
	}
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		if err := q.DeleteTutorScheduledClassesByTutor(ctx, tutorID); err != nil {
			return err
		}
		if err := q.DeleteTutorCoursesByTutor(ctx, tutorID); err != nil {
			return err
		}
		if err := q.DeleteStudentTutorsByTutor(ctx, tutorID); err != nil {
			return err
		}
		deleted, err := q.DeleteTutor(ctx, tutorID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return notFound("tutor_not_found", "tutor not found")
		}
		return nil
	})
	if err != nil {
		return AsError(err)
	}
	s.log.Info("tutor deleted", zap.String("tutor_id", id))
	return nil
}

func replaceTutorRelations(ctx context.Context, q *db.Queries, tutorID pgtype.UUID, setCourses bool, courseIDs []pgtype.UUID, setStudents bool, studentIDs []pgtype.UUID) error {
	if setCourses {
		if err := q.DeleteTutorCoursesByTutor(ctx, tutorID); err != nil {
			return err
		}
		for _, courseID := range courseIDs {
			if err := q.AddTutorCourse(ctx, tutorID, courseID); err != nil {
				return err
			}
		}
	}
	if setStudents {
		if err := q.DeleteStudentTutorsByTutor(ctx, tutorID); err != nil {
			return err
		}
		for _, studentID := range studentIDs {
			if err := q.AddStudentTutor(ctx, studentID, tutorID); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseRelations(courses, others *[]string, otherCode, otherLabel string) ([]pgtype.UUID, []pgtype.UUID, *Error) {
	var courseIDs, otherIDs []pgtype.UUID
	var bErr *Error
	if courses != nil {
		if courseIDs, bErr = parseIDs(*courses, "invalid_course_id", "course"); bErr != nil {
			return nil, nil, bErr
		}
	}
	if others != nil {
		if otherIDs, bErr = parseIDs(*others, otherCode, otherLabel); bErr != nil {
			return nil, nil, bErr
		}
	}
	return courseIDs, otherIDs, nil
}

func checkCourses(ctx context.Context, q *db.Queries, courseIDs []pgtype.UUID) error {
	if len(courseIDs) == 0 {
		return nil
	}
	found, err := q.ListExistingCourseIDs(ctx, courseIDs)
	if err != nil {
		return err
	}
	if bErr := requireFound(courseIDs, found, "unknown_course", "course"); bErr != nil {
		return bErr
	}
	return nil
}

func idString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func strValue(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func floatValue(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func int32Value(v *int32, fallback int32) int32 {
	if v == nil {
		return fallback
	}
	return *v
}
