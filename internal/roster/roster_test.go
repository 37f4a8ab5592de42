package roster

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"

	"github.com/Johnson150/cls-sub000/internal/db"
)

func TestParseStudents(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Name", "Contact"},
		{"Ann Lee", "ann@example.com"},
		{"", "orphan@example.com"},
		{"  Bo Chen  "},
		{},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	students, skipped, err := ParseStudents(&buf)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(students))
	}
	if students[0].Name != "Ann Lee" || students[0].Contact != "ann@example.com" || students[0].Line != 2 {
		t.Fatalf("unexpected first row %+v", students[0])
	}
	if students[1].Name != "Bo Chen" || students[1].Contact != "" {
		t.Fatalf("unexpected second row %+v", students[1])
	}
	if len(skipped) != 1 || skipped[0] != 3 {
		t.Fatalf("expected line 3 skipped, got %v", skipped)
	}
}

func TestParseStudentsRejectsGarbage(t *testing.T) {
	if _, _, err := ParseStudents(bytes.NewBufferString("not a workbook")); err == nil {
		t.Fatalf("expected error for non-xlsx input")
	}
}

func TestWriteSchedule(t *testing.T) {
	id := uuid.New()
	start := time.Date(2024, 6, 1, 20, 30, 0, 0, time.UTC)
	class := db.ScheduledClassView{
		ScheduledClass: db.ScheduledClass{
			ID:          pgtype.UUID{Bytes: id, Valid: true},
			StartAt:     pgtype.Timestamptz{Time: start, Valid: true},
			EndAt:       pgtype.Timestamptz{Time: start.Add(2 * time.Hour), Valid: true},
			Status:      db.ClassStatusNotBookedOff,
			Capacity:    4,
			BookedOffBy: db.BookedOffByNone,
		},
		CourseName:        pgtype.Text{String: "Algebra", Valid: true},
		CurrentEnrollment: 2,
		TutorNames:        []string{"Tess"},
		StudentNames:      []string{"Ann", "Bo"},
	}
	loc := time.FixedZone("EDT", -4*3600)

	var buf bytes.Buffer
	if err := WriteSchedule(&buf, []db.ScheduledClassView{class}, loc); err != nil {
		t.Fatalf("write error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(scheduleSheet)
	if err != nil {
		t.Fatalf("rows error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d", len(rows))
	}
	row := rows[1]
	if row[0] != id.String() || row[1] != "2024-06-01 16:30" || row[2] != "2024-06-01 18:30" {
		t.Fatalf("unexpected identity/time cells %v", row[:3])
	}
	if row[4] != "Algebra" || row[5] != "Tess" || row[6] != "Ann, Bo" || row[7] != "2" || row[8] != "4" {
		t.Fatalf("unexpected roster cells %v", row[4:9])
	}
}
