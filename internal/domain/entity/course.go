package entity

import "time"

// CourseType distinguishes regular courses from supplementary makeup
// sessions. Only MAKEUP courses are governed by the approval workflow.
type CourseType string

const (
	CourseTypeNormal CourseType = "NORMAL"
	CourseTypeMakeup CourseType = "MAKEUP"
)

// Course workflow statuses. These are only enforced for MAKEUP courses;
// a NORMAL course carries whatever status an admin assigns.
const (
	CourseStatusPending                = "PENDING"
	CourseStatusPendingTeacherApproval = "PENDING_TEACHER_APPROVAL"
	CourseStatusApproved               = "APPROVED"
	CourseStatusRejectedByTeacher      = "REJECTED_BY_TEACHER"
)

// Course is a taught unit. TeacherID is required; a course with no
// teacher is rejected at creation.
type Course struct {
	ID          int64      `json:"id"`
	CourseName  string     `json:"course_name"`
	Description string     `json:"description"`
	Timetable   string     `json:"timetable"`
	Type        CourseType `json:"type"`
	Status      string     `json:"status"`
	TeacherID   int64      `json:"teacher_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsMakeup reports whether the course is subject to the makeup approval
// workflow.
func (c *Course) IsMakeup() bool {
	return c.Type == CourseTypeMakeup
}

// CourseView is the display projection of a course with the assigned
// teacher resolved.
type CourseView struct {
	ID           int64  `json:"id"`
	CourseName   string `json:"course_name"`
	Description  string `json:"description"`
	Timetable    string `json:"timetable"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	TeacherID    int64  `json:"teacher_id,omitempty"`
	TeacherName  string `json:"teacher_name"`
	TeacherEmail string `json:"teacher_email,omitempty"`
}

// ViewOf builds the display projection of c. A missing teacher is
// rendered as "N/A", matching what clients expect.
func (c *Course) ViewOf(teacher *User) CourseView {
	view := CourseView{
		ID:          c.ID,
		CourseName:  c.CourseName,
		Description: c.Description,
		Timetable:   c.Timetable,
		Type:        string(c.Type),
		Status:      c.Status,
		TeacherName: "N/A",
	}
	if teacher != nil {
		view.TeacherID = teacher.ID
		view.TeacherName = teacher.FullName
		view.TeacherEmail = teacher.Email
	}
	return view
}
