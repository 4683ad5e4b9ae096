package entity

import "testing"

func TestCourse_IsMakeup(t *testing.T) {
	tests := []struct {
		name string
		typ  CourseType
		want bool
	}{
		{name: "makeup course", typ: CourseTypeMakeup, want: true},
		{name: "normal course", typ: CourseTypeNormal, want: false},
		{name: "zero value", typ: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Course{Type: tt.typ}
			if got := c.IsMakeup(); got != tt.want {
				t.Errorf("IsMakeup() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCourse_ViewOf(t *testing.T) {
	course := &Course{
		ID:         5,
		CourseName: "Chemistry Makeup",
		Timetable:  "Monday 10:00",
		Type:       CourseTypeMakeup,
		Status:     CourseStatusApproved,
		TeacherID:  7,
	}

	t.Run("with teacher", func(t *testing.T) {
		teacher := &User{ID: 7, FullName: "Marie Dupont", Email: "mdupont@example.edu"}
		view := course.ViewOf(teacher)
		if view.TeacherName != "Marie Dupont" {
			t.Errorf("TeacherName = %q, want %q", view.TeacherName, "Marie Dupont")
		}
		if view.TeacherEmail != "mdupont@example.edu" {
			t.Errorf("TeacherEmail = %q", view.TeacherEmail)
		}
	})

	t.Run("without teacher", func(t *testing.T) {
		view := course.ViewOf(nil)
		if view.TeacherName != "N/A" {
			t.Errorf("TeacherName = %q, want N/A", view.TeacherName)
		}
		if view.TeacherID != 0 {
			t.Errorf("TeacherID = %d, want 0", view.TeacherID)
		}
	})
}

func TestUser_DisplayName(t *testing.T) {
	var missing *User
	if got := missing.DisplayName(); got != "Unknown Teacher" {
		t.Errorf("DisplayName() on nil = %q, want Unknown Teacher", got)
	}

	named := &User{FullName: "Marie Dupont"}
	if got := named.DisplayName(); got != "Marie Dupont" {
		t.Errorf("DisplayName() = %q", got)
	}
}

func TestAbsenceRequest_ViewOf(t *testing.T) {
	request := &AbsenceRequest{
		ID:            9,
		TeacherID:     7,
		CourseID:      3,
		Justification: "medical appointment",
		Status:        AbsenceStatusPending,
	}

	view := request.ViewOf(
		&User{ID: 7, FullName: "Marie Dupont"},
		&Course{ID: 3, CourseName: "History"},
	)
	if view.TeacherName != "Marie Dupont" || view.CourseName != "History" {
		t.Errorf("ViewOf() = %+v, related names not resolved", view)
	}

	bare := request.ViewOf(nil, nil)
	if bare.TeacherName != "" || bare.CourseName != "" {
		t.Errorf("ViewOf(nil, nil) = %+v, want empty related names", bare)
	}
	if bare.Justification != "medical appointment" {
		t.Errorf("Justification = %q", bare.Justification)
	}
}
