package booking

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Johnson150/cls-sub000/internal/db"
)

func openTestStore(t *testing.T) *db.Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
		return nil
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, url, 4)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	t.Cleanup(pool.Close)
	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return db.NewStore(pool)
}

func strPtr(v string) *string { return &v }

func mustStudent(t *testing.T, svc *Service, name string) string {
	t.Helper()
	rec, err := svc.CreateStudent(context.Background(), StudentInput{Name: strPtr(name)})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	return idString(rec.ID)
}

func mustTutor(t *testing.T, svc *Service, name string) string {
	t.Helper()
	rec, err := svc.CreateTutor(context.Background(), TutorInput{Name: strPtr(name), Subject: strPtr("Math")})
	if err != nil {
		t.Fatalf("create tutor: %v", err)
	}
	return idString(rec.ID)
}

func TestClassEnrollmentLifecycle(t *testing.T) {
	store := openTestStore(t)
	if store == nil {
		return
	}
	svc := NewService(store, time.UTC, nil)
	ctx := context.Background()
	suffix := time.Now().Format("150405.000")

	s1 := mustStudent(t, svc, "Student A "+suffix)
	s2 := mustStudent(t, svc, "Student B "+suffix)
	tutor := mustTutor(t, svc, "Tutor "+suffix)

	view, err := svc.CreateClass(ctx, CreateClassInput{
		Start:      "2024-06-01T16:30",
		End:        "2024-06-01T18:30",
		Status:     "NOT_BOOKED_OFF",
		TutorIDs:   []string{tutor},
		StudentIDs: []string{s1, s2, s1},
	})
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	if view.CurrentEnrollment != 2 || view.Capacity != MaxCapacity {
		t.Fatalf("expected enrollment 2 capacity 4, got %d %d", view.CurrentEnrollment, view.Capacity)
	}
	if len(view.TutorNames) != 1 || view.TutorNames[0] != "Tutor "+suffix {
		t.Fatalf("expected tutor name projection, got %v", view.TutorNames)
	}
	classID := idString(view.ID)

	more := []string{s1, s2}
	for i := 0; i < 4; i++ {
		more = append(more, mustStudent(t, svc, "Extra "+suffix+" "+string(rune('a'+i))))
	}
	view, err = svc.UpdateClass(ctx, classID, UpdateClassInput{StudentIDs: &more})
	if err != nil {
		t.Fatalf("update class: %v", err)
	}
	if view.CurrentEnrollment != 6 || view.Capacity != MaxCapacity {
		t.Fatalf("expected enrollment 6 capacity 4, got %d %d", view.CurrentEnrollment, view.Capacity)
	}

	bad := "PARENT"
	if _, err := svc.UpdateClass(ctx, classID, UpdateClassInput{Status: strPtr("BOOKED_OFF"), BookedOffBy: &bad}); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	unchanged, err := svc.GetClass(ctx, classID)
	if err != nil || unchanged.Status != db.ClassStatusNotBookedOff {
		t.Fatalf("expected class untouched, got %v %v", unchanged.Status, err)
	}

	view, err = svc.UpdateClass(ctx, classID, UpdateClassInput{
		Status:          strPtr("BOOKED_OFF"),
		BookedOffBy:     strPtr("STUDENT"),
		BookedOffByName: strPtr("Student A " + suffix),
	})
	if err != nil {
		t.Fatalf("book off: %v", err)
	}
	if view.Status != db.ClassStatusBookedOff || view.BookedOffBy != db.BookedOffByStudent {
		t.Fatalf("unexpected booked off state %s %s", view.Status, view.BookedOffBy)
	}
	student, err := svc.GetStudent(ctx, s1)
	if err != nil || student.TimesBookedOff != 1 {
		t.Fatalf("expected timesBookedOff 1, got %d %v", student.TimesBookedOff, err)
	}
	other, err := svc.GetStudent(ctx, s2)
	if err != nil || other.TimesBookedOff != 0 {
		t.Fatalf("expected other student untouched, got %d %v", other.TimesBookedOff, err)
	}

	if err := svc.DeleteClass(ctx, classID); err != nil {
		t.Fatalf("delete class: %v", err)
	}
	if _, err := svc.GetClass(ctx, classID); !IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	links, err := svc.ListStudentLinks(ctx, LinkFilter{ScheduledClassID: classID})
	if err != nil || len(links) != 0 {
		t.Fatalf("expected no links after delete, got %d %v", len(links), err)
	}
	if err := svc.DeleteClass(ctx, classID); !IsNotFound(err) {
		t.Fatalf("expected second delete to be not found, got %v", err)
	}
}

func TestCreateClassUnknownStudent(t *testing.T) {
	store := openTestStore(t)
	if store == nil {
		return
	}
	svc := NewService(store, time.UTC, nil)
	_, err := svc.CreateClass(context.Background(), CreateClassInput{
		Start:      "2024-06-03T16:30",
		End:        "2024-06-03T18:30",
		StudentIDs: []string{"99999999-9999-9999-9999-999999999999"},
	})
	if !IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCreatePersonUnknownCourse(t *testing.T) {
	store := openTestStore(t)
	if store == nil {
		return
	}
	svc := NewService(store, time.UTC, nil)
	ctx := context.Background()
	name := "Ghost " + time.Now().Format("150405.000")
	courses := []string{"99999999-9999-9999-9999-999999999999"}

	if _, err := svc.CreateStudent(ctx, StudentInput{Name: &name, CourseIDs: &courses}); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input for student, got %v", err)
	}
	if _, err := svc.CreateTutor(ctx, TutorInput{Name: &name, CourseIDs: &courses}); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input for tutor, got %v", err)
	}
	students, err := svc.ListStudents(ctx, 0)
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	for _, s := range students {
		if s.Name == name {
			t.Fatalf("student row should not exist")
		}
	}
}

func TestStudentLinkIdempotent(t *testing.T) {
	store := openTestStore(t)
	if store == nil {
		return
	}
	svc := NewService(store, time.UTC, nil)
	ctx := context.Background()
	studentID := mustStudent(t, svc, "Linker "+time.Now().Format("150405.000"))
	view, err := svc.CreateClass(ctx, CreateClassInput{Start: "2024-06-05T16:30", End: "2024-06-05T17:30"})
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	classID := idString(view.ID)

	first, err := svc.CreateStudentLink(ctx, classID, studentID)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	second, err := svc.CreateStudentLink(ctx, classID, studentID)
	if err != nil {
		t.Fatalf("relink: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same link row on relink")
	}
	got, err := svc.GetClass(ctx, classID)
	if err != nil || got.CurrentEnrollment != 1 {
		t.Fatalf("expected enrollment 1, got %d %v", got.CurrentEnrollment, err)
	}
	_ = svc.DeleteClass(ctx, classID)
}
