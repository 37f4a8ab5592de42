package booking

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/Johnson150/cls-sub000/internal/db"
)

type Service struct {
	store *db.Store
	loc   *time.Location
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store *db.Store, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, loc: loc, log: log, now: time.Now}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

type CreateClassInput struct {
	Start           string
	End             string
	Status          string
	BookedOffBy     string
	BookedOffByName string
	CourseID        string
	TutorIDs        []string
	StudentIDs      []string
}

// UpdateClassInput carries a partial update. Nil fields keep their value.
// A non-nil TutorIDs or StudentIDs replaces the whole link set, and an
// empty CourseID detaches the course.
type UpdateClassInput struct {
	Start           *string
	End             *string
	Status          *string
	BookedOffBy     *string
	BookedOffByName *string
	CourseID        *string
	TutorIDs        *[]string
	StudentIDs      *[]string
}

type classPlan struct {
	start, end  time.Time
	status      db.ClassStatus
	bookedOffBy db.BookedOffBy
	name        string
	courseID    pgtype.UUID
	tutorIDs    []pgtype.UUID
	studentIDs  []pgtype.UUID
}

func (s *Service) planCreate(in CreateClassInput) (classPlan, *Error) {
	var p classPlan
	var err error
	if p.start, err = ParseTime(in.Start, s.loc); err != nil {
		return p, invalid("invalid_start", "start must be a valid date")
	}
	if p.end, err = ParseTime(in.End, s.loc); err != nil {
		return p, invalid("invalid_end", "end must be a valid date")
	}
	if !p.end.After(p.start) {
		return p, invalid("invalid_time_range", "end must be after start")
	}
	if p.status, err = normalizeStatus(in.Status); err != nil {
		return p, invalid("invalid_status", err.Error())
	}
	by, err := normalizeBookedOffBy(in.BookedOffBy)
	if err != nil {
		return p, invalid("invalid_booked_off_by", err.Error())
	}
	var bErr *Error
	if p.bookedOffBy, p.name, bErr = resolveBookedOff(p.status, by, in.BookedOffByName); bErr != nil {
		return p, bErr
	}
	if in.CourseID != "" {
		if p.courseID, err = parseID(in.CourseID); err != nil {
			return p, invalid("invalid_course_id", "courseId must be a uuid")
		}
	}
	if p.tutorIDs, bErr = parseIDs(in.TutorIDs, "invalid_tutor_id", "tutor"); bErr != nil {
		return p, bErr
	}
	if p.studentIDs, bErr = parseIDs(in.StudentIDs, "invalid_student_id", "student"); bErr != nil {
		return p, bErr
	}
	return p, nil
}

func (s *Service) CreateClass(ctx context.Context, in CreateClassInput) (db.ScheduledClassView, error) {
	plan, bErr := s.planCreate(in)
	if bErr != nil {
		return db.ScheduledClassView{}, bErr
	}

	var view db.ScheduledClassView
	err := s.store.WithTx(ctx, func(q *db.Queries) error {
		if err := checkReferences(ctx, q, plan.courseID, plan.tutorIDs, plan.studentIDs); err != nil {
			return err
		}
		now := pgTime(s.now())
		class, err := q.CreateScheduledClass(ctx, db.CreateScheduledClassParams{
			ID:              newID(),
			StartAt:         pgTime(plan.start),
			EndAt:           pgTime(plan.end),
			Status:          plan.status,
			Capacity:        MaxCapacity,
			BookedOffBy:     plan.bookedOffBy,
			BookedOffByName: plan.name,
			CourseID:        plan.courseID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return err
		}
		if err := linkTutors(ctx, q, class.ID, plan.tutorIDs, now); err != nil {
			return err
		}
		if err := linkStudents(ctx, q, class.ID, plan.studentIDs, now); err != nil {
			return err
		}
		view, err = q.GetScheduledClassView(ctx, class.ID)
		return err
	})
	if err != nil {
		return db.ScheduledClassView{}, AsError(err)
	}
	s.log.Info("scheduled class created",
		zap.String("class_id", idString(view.ID)),
		zap.Int32("enrollment", view.CurrentEnrollment),
		zap.Int("tutors", len(view.TutorIDs)),
	)
	return view, nil
}

func (s *Service) UpdateClass(ctx context.Context, id string, in UpdateClassInput) (db.ScheduledClassView, error) {
	classID, err := parseID(id)
	if err != nil {
		return db.ScheduledClassView{}, invalid("invalid_class_id", "class id must be a uuid")
	}

	// Field-level validation happens before any row is touched.
	var start, end *time.Time
	if in.Start != nil {
		t, err := ParseTime(*in.Start, s.loc)
		if err != nil {
			return db.ScheduledClassView{}, invalid("invalid_start", "start must be a valid date")
		}
		start = &t
	}
	if in.End != nil {
		t, err := ParseTime(*in.End, s.loc)
		if err != nil {
			return db.ScheduledClassView{}, invalid("invalid_end", "end must be a valid date")
		}
		end = &t
	}
	var status *db.ClassStatus
	if in.Status != nil {
		st, err := normalizeStatus(*in.Status)
		if err != nil {
			return db.ScheduledClassView{}, invalid("invalid_status", err.Error())
		}
		status = &st
	}
	var by *db.BookedOffBy
	if in.BookedOffBy != nil {
		b, err := normalizeBookedOffBy(*in.BookedOffBy)
		if err != nil {
			return db.ScheduledClassView{}, invalid("invalid_booked_off_by", err.Error())
		}
		by = &b
	}
	var courseID *pgtype.UUID
	if in.CourseID != nil {
		var c pgtype.UUID
		if *in.CourseID != "" {
			if c, err = parseID(*in.CourseID); err != nil {
				return db.ScheduledClassView{}, invalid("invalid_course_id", "courseId must be a uuid")
			}
		}
		courseID = &c
	}
	var tutorIDs, studentIDs []pgtype.UUID
	if in.TutorIDs != nil {
		var bErr *Error
		if tutorIDs, bErr = parseIDs(*in.TutorIDs, "invalid_tutor_id", "tutor"); bErr != nil {
			return db.ScheduledClassView{}, bErr
		}
	}
	if in.StudentIDs != nil {
		var bErr *Error
		if studentIDs, bErr = parseIDs(*in.StudentIDs, "invalid_student_id", "student"); bErr != nil {
			return db.ScheduledClassView{}, bErr
		}
	}

	var view db.ScheduledClassView
	var bookedOff bool
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		current, err := q.GetScheduledClassForUpdate(ctx, classID)
		if err != nil {
			if db.IsNotFound(err) {
				return notFound("class_not_found", "scheduled class not found")
			}
			return err
		}

		params := db.UpdateScheduledClassParams{
			ID:              classID,
			StartAt:         current.StartAt,
			EndAt:           current.EndAt,
			Status:          current.Status,
			Capacity:        MaxCapacity,
			BookedOffBy:     current.BookedOffBy,
			BookedOffByName: current.BookedOffByName,
			CourseID:        current.CourseID,
			UpdatedAt:       pgTime(s.now()),
		}
		if start != nil {
			params.StartAt = pgTime(*start)
		}
		if end != nil {
			params.EndAt = pgTime(*end)
		}
		if !params.EndAt.Time.After(params.StartAt.Time) {
			return invalid("invalid_time_range", "end must be after start")
		}
		if status != nil {
			params.Status = *status
		}
		if by != nil {
			params.BookedOffBy = *by
		}
		if in.BookedOffByName != nil {
			params.BookedOffByName = *in.BookedOffByName
		}
		resolvedBy, name, bErr := resolveBookedOff(params.Status, params.BookedOffBy, params.BookedOffByName)
		if bErr != nil {
			return bErr
		}
		params.BookedOffBy, params.BookedOffByName = resolvedBy, name
		if courseID != nil {
			params.CourseID = *courseID
		}

		if err := checkReferences(ctx, q, optionalCourse(courseID), tutorIDs, studentIDs); err != nil {
			return err
		}
		if _, err := q.UpdateScheduledClass(ctx, params); err != nil {
			return err
		}
		if in.TutorIDs != nil {
			if err := q.DeleteTutorScheduledClassesByClass(ctx, classID); err != nil {
				return err
			}
			if err := linkTutors(ctx, q, classID, tutorIDs, params.UpdatedAt); err != nil {
				return err
			}
		}
		if in.StudentIDs != nil {
			if err := q.DeleteStudentScheduledClassesByClass(ctx, classID); err != nil {
				return err
			}
			if err := linkStudents(ctx, q, classID, studentIDs, params.UpdatedAt); err != nil {
				return err
			}
		}

		view, err = q.GetScheduledClassView(ctx, classID)
		if err != nil {
			return err
		}
		if current.Status != db.ClassStatusBookedOff && params.Status == db.ClassStatusBookedOff {
			bookedOff = true
			return chargeBookedOff(ctx, q, view, params.UpdatedAt)
		}
		return nil
	})
	if err != nil {
		return db.ScheduledClassView{}, AsError(err)
	}
	s.log.Info("scheduled class updated",
		zap.String("class_id", idString(view.ID)),
		zap.String("status", string(view.Status)),
		zap.Int32("enrollment", view.CurrentEnrollment),
		zap.Bool("booked_off", bookedOff),
	)
	return view, nil
}

// chargeBookedOff increments timesBookedOff for the people of the
// booking-off role.
func chargeBookedOff(ctx context.Context, q *db.Queries, view db.ScheduledClassView, at pgtype.Timestamptz) error {
	switch view.BookedOffBy {
	case db.BookedOffByTutor:
		return q.IncrementTutorsTimesBookedOff(ctx, bookedOffTargets(view.BookedOffByName, view.TutorIDs, view.TutorNames), at)
	case db.BookedOffByStudent:
		return q.IncrementStudentsTimesBookedOff(ctx, bookedOffTargets(view.BookedOffByName, view.StudentIDs, view.StudentNames), at)
	}
	return nil
}

// DeleteClass removes the class and both of its link sets in one
// transaction.
func (s *Service) DeleteClass(ctx context.Context, id string) error {
	classID, err := parseID(id)
	if err != nil {
		return invalid("invalid_class_id", "class id must be a uuid")
	}
	err = s.store.WithTx(ctx, func(q *db.Queries) error {
		if err := q.DeleteStudentScheduledClassesByClass(ctx, classID); err != nil {
			return err
		}
		if err := q.DeleteTutorScheduledClassesByClass(ctx, classID); err != nil {
			return err
		}
		deleted, err := q.DeleteScheduledClass(ctx, classID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return notFound("class_not_found", "scheduled class not found")
		}
		return nil
	})
	if err != nil {
		return AsError(err)
	}
	s.log.Info("scheduled class deleted", zap.String("class_id", id))
	return nil
}

func (s *Service) GetClass(ctx context.Context, id string) (db.ScheduledClassView, error) {
	classID, err := parseID(id)
	if err != nil {
		return db.ScheduledClassView{}, invalid("invalid_class_id", "class id must be a uuid")
	}
	view, err := s.store.Queries.GetScheduledClassView(ctx, classID)
	if err != nil {
		if db.IsNotFound(err) {
			return db.ScheduledClassView{}, notFound("class_not_found", "scheduled class not found")
		}
		return db.ScheduledClassView{}, AsError(err)
	}
	return view, nil
}

// ListClasses returns classes starting in [from, to). Empty bounds are open.
func (s *Service) ListClasses(ctx context.Context, from, to string, limit int32) ([]db.ScheduledClassView, error) {
	params := db.ListScheduledClassesParams{Limit: limit}
	if from != "" {
		t, err := ParseTime(from, s.loc)
		if err != nil {
			return nil, invalid("invalid_from", "from must be a valid date")
		}
		params.From = pgTime(t)
	}
	if to != "" {
		t, err := ParseTime(to, s.loc)
		if err != nil {
			return nil, invalid("invalid_to", "to must be a valid date")
		}
		params.To = pgTime(t)
	}
	return s.listClasses(ctx, params)
}

// ListClassesBetween is ListClasses for already resolved bounds.
func (s *Service) ListClassesBetween(ctx context.Context, from, to time.Time, limit int32) ([]db.ScheduledClassView, error) {
	return s.listClasses(ctx, db.ListScheduledClassesParams{From: pgTime(from), To: pgTime(to), Limit: limit})
}

func (s *Service) listClasses(ctx context.Context, params db.ListScheduledClassesParams) ([]db.ScheduledClassView, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultListLimit
	}
	items, err := s.store.Queries.ListScheduledClasses(ctx, params)
	if err != nil {
		return nil, AsError(err)
	}
	return items, nil
}

func checkReferences(ctx context.Context, q *db.Queries, courseID pgtype.UUID, tutorIDs, studentIDs []pgtype.UUID) error {
	if courseID.Valid {
		found, err := q.ListExistingCourseIDs(ctx, []pgtype.UUID{courseID})
		if err != nil {
			return err
		}
		if bErr := requireFound([]pgtype.UUID{courseID}, found, "unknown_course", "course"); bErr != nil {
			return bErr
		}
	}
	if len(tutorIDs) > 0 {
		found, err := q.ListExistingTutorIDs(ctx, tutorIDs)
		if err != nil {
			return err
		}
		if bErr := requireFound(tutorIDs, found, "unknown_tutor", "tutor"); bErr != nil {
			return bErr
		}
	}
	if len(studentIDs) > 0 {
		found, err := q.ListExistingStudentIDs(ctx, studentIDs)
		if err != nil {
			return err
		}
		if bErr := requireFound(studentIDs, found, "unknown_student", "student"); bErr != nil {
			return bErr
		}
	}
	return nil
}

func optionalCourse(id *pgtype.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return *id
}

func linkTutors(ctx context.Context, q *db.Queries, classID pgtype.UUID, tutorIDs []pgtype.UUID, at pgtype.Timestamptz) error {
	for _, tutorID := range tutorIDs {
		if _, err := q.AddTutorToClass(ctx, db.AddTutorToClassParams{
			ID:               newID(),
			ScheduledClassID: classID,
			TutorID:          tutorID,
			CreatedAt:        at,
		}); err != nil {
			return err
		}
	}
	return nil
}

func linkStudents(ctx context.Context, q *db.Queries, classID pgtype.UUID, studentIDs []pgtype.UUID, at pgtype.Timestamptz) error {
	for _, studentID := range studentIDs {
		if _, err := q.AddStudentToClass(ctx, db.AddStudentToClassParams{
			ID:               newID(),
			ScheduledClassID: classID,
			StudentID:        studentID,
			CreatedAt:        at,
		}); err != nil {
			return err
		}
	}
	return nil
}
