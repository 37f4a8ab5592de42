package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type ClassStatus string

const (
	ClassStatusBookedOff    ClassStatus = "BOOKED_OFF"
	ClassStatusNotBookedOff ClassStatus = "NOT_BOOKED_OFF"
)

type BookedOffBy string

const (
	BookedOffByTutor   BookedOffBy = "TUTOR"
	BookedOffByStudent BookedOffBy = "STUDENT"
	BookedOffByNone    BookedOffBy = "NONE"
)

type Course struct {
	ID         pgtype.UUID
	CourseName string
	Grade      pgtype.Text
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
}

type Student struct {
	ID             pgtype.UUID
	Name           string
	Contact        string
	HoursIn        float64
	HoursScheduled float64
	TimesBookedOff int32
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

type Tutor struct {
	ID             pgtype.UUID
	Name           string
	Subject        string
	HoursWorked    float64
	HoursScheduled float64
	TimesBookedOff int32
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

type ScheduledClass struct {
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

// ScheduledClassView is a scheduled class joined with its roster. Names,
// ids and enrollment come from the link tables at read time.
type ScheduledClassView struct {
	ScheduledClass
	CourseName        pgtype.Text
	CurrentEnrollment int32
	TutorIDs          []pgtype.UUID
	TutorNames        []string
	StudentIDs        []pgtype.UUID
	StudentNames      []string
}

type StudentScheduledClass struct {
	ID               pgtype.UUID
	ScheduledClassID pgtype.UUID
	StudentID        pgtype.UUID
	CreatedAt        pgtype.Timestamptz
}

type TutorScheduledClass struct {
	ID               pgtype.UUID
	ScheduledClassID pgtype.UUID
	TutorID          pgtype.UUID
	CreatedAt        pgtype.Timestamptz
}

type User struct {
	ID           pgtype.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type RefreshSession struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	TokenHash string
	CreatedAt pgtype.Timestamptz
	ExpiresAt pgtype.Timestamptz
	RevokedAt pgtype.Timestamptz
	UserAgent pgtype.Text
	IPAddress pgtype.Text
}
