package entity

import "time"

// Absence request statuses. PENDING is the only system-assigned value;
// admins may write other values through the status update path.
const (
	AbsenceStatusPending  = "PENDING"
	AbsenceStatusApproved = "APPROVED"
	AbsenceStatusRejected = "REJECTED"
)

// AbsenceRequest records a teacher's request to be absent, optionally
// tied to one of their courses.
type AbsenceRequest struct {
	ID            int64     `json:"id"`
	TeacherID     int64     `json:"teacher_id"`
	CourseID      int64     `json:"course_id,omitempty"`
	Justification string    `json:"justification"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submitted_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AbsenceRequestView is the display projection with teacher and course
// resolved.
type AbsenceRequestView struct {
	ID            int64     `json:"id"`
	TeacherID     int64     `json:"teacher_id,omitempty"`
	TeacherName   string    `json:"teacher_name,omitempty"`
	CourseID      int64     `json:"course_id,omitempty"`
	CourseName    string    `json:"course_name,omitempty"`
	Justification string    `json:"justification"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ViewOf builds the display projection of r.
func (r *AbsenceRequest) ViewOf(teacher *User, course *Course) AbsenceRequestView {
	view := AbsenceRequestView{
		ID:            r.ID,
		Justification: r.Justification,
		Status:        r.Status,
		SubmittedAt:   r.SubmittedAt,
	}
	if teacher != nil {
		view.TeacherID = teacher.ID
		view.TeacherName = teacher.FullName
	}
	if course != nil {
		view.CourseID = course.ID
		view.CourseName = course.CourseName
	}
	return view
}
