package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lmasson/course-management/internal/domain/entity"
)

func TestWriteCoursesReport(t *testing.T) {
	courses := []entity.CourseView{
		{
			ID: 5, CourseName: "Chemistry Makeup", Timetable: "Monday 10:00",
			Type: "MAKEUP", Status: "APPROVED", TeacherName: "Marie Dupont",
		},
		{
			ID: 6, CourseName: "History", Type: "NORMAL", Status: "NORMAL", TeacherName: "N/A",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCoursesReport(&buf, courses))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Courses", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Course Name", header)

	name, err := f.GetCellValue("Courses", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Chemistry Makeup", name)

	teacher, err := f.GetCellValue("Courses", "G3")
	require.NoError(t, err)
	assert.Equal(t, "N/A", teacher)
}

func TestWriteAbsenceReport(t *testing.T) {
	requests := []entity.AbsenceRequestView{
		{
			ID: 9, TeacherName: "Marie Dupont", CourseName: "History",
			Justification: "medical appointment", Status: "APPROVED",
			SubmittedAt: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAbsenceReport(&buf, requests))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	teacher, err := f.GetCellValue("Absence Requests", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Marie Dupont", teacher)

	submitted, err := f.GetCellValue("Absence Requests", "F2")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10 09:30", submitted)
}

func TestWriteCoursesReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCoursesReport(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Courses")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header row only")
}
