package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Johnson150/cls-sub000/internal/db"
)

func TestParseTime(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	local, err := ParseTime("2024-06-01T16:30", loc)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if !local.Equal(time.Date(2024, 6, 1, 16, 30, 0, 0, loc)) {
		t.Fatalf("expected local time in zone, got %s", local)
	}

	withZone, err := ParseTime("2024-06-01T16:30:00Z", loc)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if !withZone.Equal(time.Date(2024, 6, 1, 16, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected explicit zone to win, got %s", withZone)
	}

	for _, value := range []string{"2024-06-01 16:30", "2024-06-01T16:30:15", "2024-06-01"} {
		if _, err := ParseTime(value, loc); err != nil {
			t.Fatalf("expected %q to parse: %v", value, err)
		}
	}
	for _, value := range []string{"", "tomorrow", "2024-13-01T10:00"} {
		if _, err := ParseTime(value, loc); err == nil {
			t.Fatalf("expected %q to fail", value)
		}
	}
}

func TestNormalizeEnums(t *testing.T) {
	if status, err := normalizeStatus(""); err != nil || status != db.ClassStatusNotBookedOff {
		t.Fatalf("expected default NOT_BOOKED_OFF, got %s %v", status, err)
	}
	if status, err := normalizeStatus("booked_off"); err != nil || status != db.ClassStatusBookedOff {
		t.Fatalf("expected BOOKED_OFF, got %s %v", status, err)
	}
	if _, err := normalizeStatus("CANCELLED"); err == nil {
		t.Fatalf("expected invalid status to error")
	}

	valid := map[string]db.BookedOffBy{
		"":        db.BookedOffByNone,
		"NONE":    db.BookedOffByNone,
		"tutor":   db.BookedOffByTutor,
		"STUDENT": db.BookedOffByStudent,
	}
	for input, expect := range valid {
		by, err := normalizeBookedOffBy(input)
		if err != nil || by != expect {
			t.Fatalf("expected %q to map to %s, got %s %v", input, expect, by, err)
		}
	}
	if _, err := normalizeBookedOffBy("PARENT"); err == nil {
		t.Fatalf("expected invalid bookedOffBy to error")
	}
}

func TestResolveBookedOff(t *testing.T) {
	by, name, bErr := resolveBookedOff(db.ClassStatusNotBookedOff, db.BookedOffByTutor, "Ann")
	if bErr != nil || by != db.BookedOffByNone || name != "" {
		t.Fatalf("expected reset for NOT_BOOKED_OFF, got %s %q %v", by, name, bErr)
	}
	if _, _, bErr := resolveBookedOff(db.ClassStatusBookedOff, db.BookedOffByNone, ""); bErr == nil || bErr.Kind != KindInvalidInput {
		t.Fatalf("expected invalid input when booked off without role")
	}
	by, name, bErr = resolveBookedOff(db.ClassStatusBookedOff, db.BookedOffByStudent, "  Bo ")
	if bErr != nil || by != db.BookedOffByStudent || name != "Bo" {
		t.Fatalf("unexpected booked off fields %s %q %v", by, name, bErr)
	}
}

func TestParseIDsDeduplicates(t *testing.T) {
	a := "11111111-1111-1111-1111-111111111111"
	b := "22222222-2222-2222-2222-222222222222"
	ids, bErr := parseIDs([]string{a, b, a}, "invalid_student_id", "student")
	if bErr != nil {
		t.Fatalf("unexpected error: %v", bErr)
	}
	if len(ids) != 2 || idString(ids[0]) != a || idString(ids[1]) != b {
		t.Fatalf("expected two ids in order, got %v", ids)
	}
	if _, bErr := parseIDs([]string{"nope"}, "invalid_student_id", "student"); bErr == nil || bErr.Code != "invalid_student_id" {
		t.Fatalf("expected invalid_student_id")
	}
}

func TestRequireFound(t *testing.T) {
	a, _ := parseID("11111111-1111-1111-1111-111111111111")
	b, _ := parseID("22222222-2222-2222-2222-222222222222")
	if bErr := requireFound([]pgtype.UUID{a, b}, []pgtype.UUID{b, a}, "unknown_course", "course"); bErr != nil {
		t.Fatalf("expected all found")
	}
	bErr := requireFound([]pgtype.UUID{a, b}, []pgtype.UUID{a}, "unknown_course", "course")
	if bErr == nil || bErr.Code != "unknown_course" || bErr.Kind != KindInvalidInput {
		t.Fatalf("expected unknown_course, got %v", bErr)
	}
}

func TestBookedOffTargets(t *testing.T) {
	a, _ := parseID("11111111-1111-1111-1111-111111111111")
	b, _ := parseID("22222222-2222-2222-2222-222222222222")
	ids := []pgtype.UUID{a, b}
	names := []string{"Ann", "Bo"}

	if got := bookedOffTargets("bo", ids, names); len(got) != 1 || got[0] != b {
		t.Fatalf("expected name match, got %v", got)
	}
	if got := bookedOffTargets("Cy", ids, names); len(got) != 2 {
		t.Fatalf("expected everyone when no name matches, got %v", got)
	}
	if got := bookedOffTargets("", ids, names); len(got) != 2 {
		t.Fatalf("expected everyone for empty name, got %v", got)
	}
}

func TestAsError(t *testing.T) {
	if AsError(nil) != nil {
		t.Fatalf("expected nil")
	}
	nf := notFound("class_not_found", "missing")
	if got := AsError(nf); got != nf {
		t.Fatalf("expected booking error to pass through")
	}
	wrapped := AsError(&pgconn.PgError{Code: "23505"})
	if wrapped.Kind != KindInvalidInput || wrapped.Code != "duplicate" {
		t.Fatalf("expected duplicate, got %s %s", wrapped.Kind, wrapped.Code)
	}
	fk := AsError(&pgconn.PgError{Code: "23503"})
	if fk.Kind != KindInvalidInput {
		t.Fatalf("expected fk violation to be invalid input")
	}
	other := AsError(errors.New("connection reset"))
	if other.Kind != KindInternal || other.Message != "connection reset" {
		t.Fatalf("expected internal with raw message, got %s %q", other.Kind, other.Message)
	}
	if !errors.Is(AsError(pgx.ErrTxClosed), pgx.ErrTxClosed) {
		t.Fatalf("expected wrapped error to unwrap")
	}
}

// Validation failures return before the store is touched, so a nil store is
// enough to prove nothing is written.
func TestCreateClassRejectsBeforeWriting(t *testing.T) {
	svc := NewService(nil, time.UTC, nil)
	cases := []struct {
		name string
		in   CreateClassInput
		code string
	}{
		{"bad booked off by", CreateClassInput{Start: "2024-06-01T16:30", End: "2024-06-01T18:30", BookedOffBy: "PARENT"}, "invalid_booked_off_by"},
		{"bad start", CreateClassInput{Start: "soon", End: "2024-06-01T18:30"}, "invalid_start"},
		{"end before start", CreateClassInput{Start: "2024-06-01T18:30", End: "2024-06-01T16:30"}, "invalid_time_range"},
		{"bad status", CreateClassInput{Start: "2024-06-01T16:30", End: "2024-06-01T18:30", Status: "MAYBE"}, "invalid_status"},
		{"booked off without role", CreateClassInput{Start: "2024-06-01T16:30", End: "2024-06-01T18:30", Status: "BOOKED_OFF"}, "booked_off_by_required"},
		{"bad student id", CreateClassInput{Start: "2024-06-01T16:30", End: "2024-06-01T18:30", StudentIDs: []string{"x"}}, "invalid_student_id"},
	}
	for _, tc := range cases {
		_, err := svc.CreateClass(context.Background(), tc.in)
		var bErr *Error
		if !errors.As(err, &bErr) {
			t.Fatalf("%s: expected booking error, got %v", tc.name, err)
		}
		if bErr.Kind != KindInvalidInput || bErr.Code != tc.code {
			t.Fatalf("%s: expected %s, got %s/%s", tc.name, tc.code, bErr.Kind, bErr.Code)
		}
	}
}

func TestUpdateClassRejectsInvalidBookedOffBy(t *testing.T) {
	svc := NewService(nil, time.UTC, nil)
	value := "SOMEONE"
	_, err := svc.UpdateClass(context.Background(), "11111111-1111-1111-1111-111111111111", UpdateClassInput{BookedOffBy: &value})
	if !IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestGradeText(t *testing.T) {
	if gradeText(nil).Valid {
		t.Fatalf("expected nil grade to be null")
	}
	empty := " "
	if gradeText(&empty).Valid {
		t.Fatalf("expected blank grade to be null")
	}
	g := "10"
	if got := gradeText(&g); !got.Valid || got.String != "10" {
		t.Fatalf("expected grade 10, got %v", got)
	}
}
