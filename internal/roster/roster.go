package roster

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/Johnson150/cls-sub000/internal/db"
)

const scheduleSheet = "Schedule"

type StudentRow struct {
	Line    int
	Name    string
	Contact string
}

// ParseStudents reads the first sheet of an xlsx workbook. Row 1 is a
// header, column A is the name and column B the contact. Rows without a
// name are reported by line number and skipped.
func ParseStudents(r io.Reader) ([]StudentRow, []int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	var students []StudentRow
	var skipped []int
	for i, row := range rows {
		if i == 0 {
			continue
		}
		var name, contact string
		if len(row) > 0 {
			name = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			contact = strings.TrimSpace(row[1])
		}
		if name == "" {
			if contact != "" {
				skipped = append(skipped, i+1)
			}
			continue
		}
		students = append(students, StudentRow{Line: i + 1, Name: name, Contact: contact})
	}
	return students, skipped, nil
}

var scheduleHeader = []interface{}{
	"Class ID", "Start", "End", "Status", "Course", "Tutors", "Students",
	"Enrollment", "Capacity", "Booked Off By", "Booked Off By Name",
}

// WriteSchedule writes classes as one sheet, times formatted in loc.
func WriteSchedule(w io.Writer, classes []db.ScheduledClassView, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), scheduleSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(scheduleSheet, "A1", &scheduleHeader); err != nil {
		return err
	}
	for i, c := range classes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			uuid.UUID(c.ID.Bytes).String(),
			c.StartAt.Time.In(loc).Format("2006-01-02 15:04"),
			c.EndAt.Time.In(loc).Format("2006-01-02 15:04"),
			string(c.Status),
			c.CourseName.String,
			strings.Join(c.TutorNames, ", "),
			strings.Join(c.StudentNames, ", "),
			c.CurrentEnrollment,
			c.Capacity,
			string(c.BookedOffBy),
			c.BookedOffByName,
		}
		if err := f.SetSheetRow(scheduleSheet, cell, &row); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
