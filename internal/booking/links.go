package booking

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/Johnson150/cls-sub000/internal/db"
)

// LinkFilter narrows link listings. Empty fields match everything.
type LinkFilter struct {
	ScheduledClassID string
	PersonID         string
	Limit            int32
}

// LinkPatch moves a link to another class or person.
type LinkPatch struct {
	ScheduledClassID *string
	PersonID         *string
}

func (f LinkFilter) parse() (pgtype.UUID, pgtype.UUID, int32, *Error) {
	var classID, personID pgtype.UUID
	var err error
	if f.ScheduledClassID != "" {
		if classID, err = parseID(f.ScheduledClassID); err != nil {
			return classID, personID, 0, invalid("invalid_class_id", "scheduledClassId must be a uuid")
		}
	}
	if f.PersonID != "" {
		if personID, err = parseID(f.PersonID); err != nil {
			return classID, personID, 0, invalid("invalid_person_id", "person id must be a uuid")
		}
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return classID, personID, limit, nil
}

func requireClass(ctx context.Context, q *db.Queries, classID pgtype.UUID) error {
	exists, err := q.ScheduledClassExists(ctx, classID)
	if err != nil {
		return err
	}
	if !exists {
		return invalid("unknown_class", "unknown scheduled class id "+idString(classID))
	}
	return nil
}

func (s *Service) ListStudentLinks(ctx context.Context, f LinkFilter) ([]db.StudentScheduledClass, error) {
	classID, studentID, limit, bErr := f.parse()
	if bErr != nil {
		return nil, bErr
	}
	items, err := s.store.Queries.ListStudentScheduledClasses(ctx, db.ListStudentScheduledClassesParams{
		ScheduledClassID: classID,
		StudentID:        studentID,
		Limit:            limit,
	})
	if err != nil {
		return nil, AsError(err)
	}
	return items, nil
}

func (s *Service) GetStudentLink(ctx context.Context, id string) (db.StudentScheduledClass, error) {
	linkID, err := parseID(id)
	if err != nil {
		return db.StudentScheduledClass{}, invalid("invalid_link_id", "link id must be a uuid")
	}
	link, err := s.store.Queries.GetStudentScheduledClass(ctx, linkID)
	if err != nil {
		if db.IsNotFound(err) {
			return db.StudentScheduledClass{}, notFound("link_not_found", "student scheduled class not found")
		}
		return db.StudentScheduledClass{}, AsError(err)
	}
	return link, nil
}

// CreateStudentLink is idempotent per (class, student).
func (s *Service) CreateStudentLink(ctx context.Context, scheduledClassID, studentID string) (db.StudentScheduledClass, error) {
	classID, err := parseID(scheduledClassID)
	if err != nil {
		return db.StudentScheduledClass{}, invalid("invalid_class_id", "scheduledClassId must be a uuid")
	}
	personID, err := parseID(studentID)
	if err != nil {
		return db.StudentScheduledClass{}, invalid("invalid_student_id", "studentId must be a uuid")
	}
	var link db.StudentScheduledClass
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		if err := requireClass(ctx, q, classID); err != nil {
			return err
		}
		if err := checkReferences(ctx, q, pgtype.UUID{}, nil, []pgtype.UUID{personID}); err != nil {
			return err
		}
		link, err = q.AddStudentToClass(ctx, db.AddStudentToClassParams{
			ID:               newID(),
			ScheduledClassID: classID,
			StudentID:        personID,
			CreatedAt:        pgTime(s.now()),
		})
		return err
	})
	if err != nil {
		return db.StudentScheduledClass{}, AsError(err)
	}
	s.log.Info("student linked to class", zap.String("class_id", scheduledClassID), zap.String("student_id", studentID))
	return link, nil
}

func (s *Service) UpdateStudentLink(ctx context.Context, id string, patch LinkPatch) (db.StudentScheduledClass, error) {
	linkID, err := parseID(id)
	if err != nil {
		return db.StudentScheduledClass{}, invalid("invalid_link_id", "link id must be a uuid")
	}
	var link db.StudentScheduledClass
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		current, err := q.GetStudentScheduledClass(ctx, linkID)
		if err != nil {
			if db.IsNotFound(err) {
				return notFound("link_not_found", "student scheduled class not found")
			}
			return err
		}
		params := db.UpdateStudentScheduledClassParams{
			ID:               linkID,
			ScheduledClassID: current.ScheduledClassID,
			StudentID:        current.StudentID,
		}
		if patch.ScheduledClassID != nil {
			if params.ScheduledClassID, err = parseID(*patch.ScheduledClassID); err != nil {
				return invalid("invalid_class_id", "scheduledClassId must be a uuid")
			}
			if err := requireClass(ctx, q, params.ScheduledClassID); err != nil {
				return err
			}
		}
		if patch.PersonID != nil {
			if params.StudentID, err = parseID(*patch.PersonID); err != nil {
				return invalid("invalid_student_id", "studentId must be a uuid")
			}
			if err := checkReferences(ctx, q, pgtype.UUID{}, nil, []pgtype.UUID{params.StudentID}); err != nil {
				return err
			}
		}
		link, err = q.UpdateStudentScheduledClass(ctx, params)
		return err
	})
	if err != nil {
		return db.StudentScheduledClass{}, AsError(err)
	}
	return link, nil
}

func (s *Service) DeleteStudentLink(ctx context.Context, id string) error {
	linkID, err := parseID(id)
	if err != nil {
		return invalid("invalid_link_id", "link id must be a uuid")
	}
	deleted, err := s.store.Queries.DeleteStudentScheduledClass(ctx, linkID)
	if err != nil {
		return AsError(err)
	}
	if deleted == 0 {
		return notFound("link_not_found", "student scheduled class not found")
	}
	s.log.Info("student link deleted", zap.String("link_id", id))
	return nil
}

func (s *Service) ListTutorLinks(ctx context.Context, f LinkFilter) ([]db.TutorScheduledClass, error) {
	classID, tutorID, limit, bErr := f.parse()
	if bErr != nil {
		return nil, bErr
	}
	items, err := s.store.Queries.ListTutorScheduledClasses(ctx, db.ListTutorScheduledClassesParams{
		ScheduledClassID: classID,
		TutorID:          tutorID,
		Limit:            limit,
	})
	if err != nil {
		return nil, AsError(err)
	}
	return items, nil
}

func (s *Service) GetTutorLink(ctx context.Context, id string) (db.TutorScheduledClass, error) {
	linkID, err := parseID(id)
	if err != nil {
		return db.TutorScheduledClass{}, invalid("invalid_link_id", "link id must be a uuid")
	}
	link, err := s.store.Queries.GetTutorScheduledClass(ctx, linkID)
	if err != nil {
		if db.IsNotFound(err) {
			return db.TutorScheduledClass{}, notFound("link_not_found", "tutor scheduled class not found")
		}
		return db.TutorScheduledClass{}, AsError(err)
	}
	return link, nil
}

func (s *Service) CreateTutorLink(ctx context.Context, scheduledClassID, tutorID string) (db.TutorScheduledClass, error) {
	classID, err := parseID(scheduledClassID)
	if err != nil {
		return db.TutorScheduledClass{}, invalid("invalid_class_id", "scheduledClassId must be a uuid")
	}
	personID, err := parseID(tutorID)
	if err != nil {
		return db.TutorScheduledClass{}, invalid("invalid_tutor_id", "tutorId must be a uuid")
	}
	var link db.TutorScheduledClass
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		if err := requireClass(ctx, q, classID); err != nil {
			return err
		}
		if err := checkReferences(ctx, q, pgtype.UUID{}, []pgtype.UUID{personID}, nil); err != nil {
			return err
		}
		link, err = q.AddTutorToClass(ctx, db.AddTutorToClassParams{
			ID:               newID(),
			ScheduledClassID: classID,
			TutorID:          personID,
			CreatedAt:        pgTime(s.now()),
		})
		return err
	})
	if err != nil {
		return db.TutorScheduledClass{}, AsError(err)
	}
	s.log.Info("tutor linked to class", zap.String("class_id", scheduledClassID), zap.String("tutor_id", tutorID))
	return link, nil
}

func (s *Service) UpdateTutorLink(ctx context.Context, id string, patch LinkPatch) (db.TutorScheduledClass, error) {
	linkID, err := parseID(id)
	if err != nil {
		return db.TutorScheduledClass{}, invalid("invalid_link_id", "link id must be a uuid")
	}
	var link db.TutorScheduledClass
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		current, err := q.GetTutorScheduledClass(ctx, linkID)
		if err != nil {
			if db.IsNotFound(err) {
				return notFound("link_not_found", "tutor scheduled class not found")
			}
			return err
		}
		params := db.UpdateTutorScheduledClassParams{
			ID:               linkID,
			ScheduledClassID: current.ScheduledClassID,
			TutorID:          current.TutorID,
		}
		if patch.ScheduledClassID != nil {
			if params.ScheduledClassID, err = parseID(*patch.ScheduledClassID); err != nil {
				return invalid("invalid_class_id", "scheduledClassId must be a uuid")
			}
			if err := requireClass(ctx, q, params.ScheduledClassID); err != nil {
				return err
			}
		}
		if patch.PersonID != nil {
			if params.TutorID, err = parseID(*patch.PersonID); err != nil {
				return invalid("invalid_tutor_id", "tutorId must be a uuid")
			}
			if err := checkReferences(ctx, q, pgtype.UUID{}, []pgtype.UUID{params.TutorID}, nil); err != nil {
				return err
			}
		}
		link, err = q.UpdateTutorScheduledClass(ctx, params)
		return err
	})
	if err != nil {
		return db.TutorScheduledClass{}, AsError(err)
	}
	return link, nil
}

func (s *Service) DeleteTutorLink(ctx context.Context, id string) error {
	linkID, err := parseID(id)
	if err != nil {
		return invalid("invalid_link_id", "link id must be a uuid")
	}
	deleted, err := s.store.Queries.DeleteTutorScheduledClass(ctx, linkID)
	if err != nil {
		return AsError(err)
	}
	if deleted == 0 {
		return notFound("link_not_found", "tutor scheduled class not found")
	}
	s.log.Info("tutor link deleted", zap.String("link_id", id))
	return nil
}
