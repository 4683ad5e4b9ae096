// Package export renders administrative reports as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/lmasson/course-management/internal/domain/entity"
)

const (
	coursesSheet  = "Courses"
	absencesSheet = "Absence Requests"
)

// WriteCoursesReport writes a course catalogue workbook to w.
func WriteCoursesReport(w io.Writer, courses []entity.CourseView) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), coursesSheet)

	headers := []string{"ID", "Course Name", "Description", "Timetable", "Type", "Status", "Teacher"}
	if err := writeHeaderRow(f, coursesSheet, headers); err != nil {
		return err
	}

	for i, course := range courses {
		row := i + 2
		cells := []interface{}{
			course.ID,
			course.CourseName,
			course.Description,
			course.Timetable,
			course.Type,
			course.Status,
			course.TeacherName,
		}
		if err := writeRow(f, coursesSheet, row, cells); err != nil {
			return err
		}
	}

	autoFitColumns(f, coursesSheet, len(headers))

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write courses workbook: %w", err)
	}
	return nil
}

// WriteAbsenceReport writes an absence register workbook to w.
func WriteAbsenceReport(w io.Writer, requests []entity.AbsenceRequestView) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), absencesSheet)

	headers := []string{"ID", "Teacher", "Course", "Justification", "Status", "Submitted At"}
	if err := writeHeaderRow(f, absencesSheet, headers); err != nil {
		return err
	}

	for i, request := range requests {
		row := i + 2
		cells := []interface{}{
			request.ID,
			request.TeacherName,
			request.CourseName,
			request.Justification,
			request.Status,
			request.SubmittedAt.Format("2006-01-02 15:04"),
		}
		if err := writeRow(f, absencesSheet, row, cells); err != nil {
			return err
		}
	}

	autoFitColumns(f, absencesSheet, len(headers))

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write absence workbook: %w", err)
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	styleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDDDDD"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for i, value := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

// autoFitColumns applies a readable fixed width; excelize has no true
// auto-fit.
func autoFitColumns(f *excelize.File, sheet string, columns int) {
	for i := 1; i <= columns; i++ {
		name, err := excelize.ColumnNumberToName(i)
		if err != nil {
			continue
		}
		_ = f.SetColWidth(sheet, name, name, 22)
	}
}
