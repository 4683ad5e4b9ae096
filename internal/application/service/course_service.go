package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lmasson/course-management/internal/application/port"
	"github.com/lmasson/course-management/internal/domain/entity"
)

// Logger is the minimal logging dependency for application services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ProposeCourseInput carries the fields a proposer supplies for a new
// makeup course.
type ProposeCourseInput struct {
	CourseName  string `json:"course_name"`
	Description string `json:"description"`
	Timetable   string `json:"timetable"`
	TeacherID   int64  `json:"teacher_id"`
}

// SaveCourseInput carries the fields for direct course creation, the
// administrative path that bypasses the proposal workflow.
type SaveCourseInput struct {
	CourseName  string `json:"course_name"`
	Description string `json:"description"`
	Timetable   string `json:"timetable"`
	TeacherID   int64  `json:"teacher_id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
}

// CourseService drives the makeup-course approval workflow.
//
// Two proposal paths exist: a teacher proposes for themselves (PENDING,
// awaiting admin approval) or an admin proposes on a teacher's behalf
// (PENDING_TEACHER_APPROVAL, awaiting that teacher). The two approval
// paths deliberately differ in strictness: the teacher path validates
// the full state machine, the admin path is an override that only guards
// notifications on the old status.
type CourseService interface {
	ProposeByTeacher(ctx context.Context, actor *entity.User, in ProposeCourseInput) (entity.CourseView, error)
	ProposeByAdmin(ctx context.Context, in ProposeCourseInput) (entity.CourseView, port.Delivery, error)
	ApproveByAdmin(ctx context.Context, id int64) (entity.CourseView, port.Delivery, error)
	ApproveByTeacher(ctx context.Context, courseID, teacherID int64) (entity.CourseView, port.Delivery, error)
	RejectByTeacher(ctx context.Context, courseID, teacherID int64) (entity.CourseView, error)

	Save(ctx context.Context, in SaveCourseInput) (entity.CourseView, port.Delivery, error)
	UpdateStatus(ctx context.Context, id int64, status string) (entity.CourseView, port.Delivery, error)
	Delete(ctx context.Context, id int64) error

	Get(ctx context.Context, id int64) (entity.CourseView, error)
	List(ctx context.Context) ([]entity.CourseView, error)
	ListApproved(ctx context.Context) ([]entity.CourseView, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]entity.CourseView, error)
	ListPendingTeacherApproval(ctx context.Context, teacherID int64) ([]entity.CourseView, error)
}

type courseServiceImpl struct {
	courseRepo port.CourseRepository
	userRepo   port.UserRepository
	txManager  port.TransactionManager
	notifier   port.Notifier
	logger     Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(
	courseRepo port.CourseRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	notifier port.Notifier,
	logger Logger,
) CourseService {
	return &courseServiceImpl{
		courseRepo: courseRepo,
		userRepo:   userRepo,
		txManager:  txManager,
		notifier:   notifier,
		logger:     logger,
	}
}

// ProposeByTeacher records a makeup course proposed by the acting
// teacher. The course waits for admin approval; no notification is sent.
func (s *courseServiceImpl) ProposeByTeacher(ctx context.Context, actor *entity.User, in ProposeCourseInput) (entity.CourseView, error) {
	if actor == nil {
		return entity.CourseView{}, fmt.Errorf("propose makeup: missing actor: %w", entity.ErrInvalidArgument)
	}
	if actor.Role != entity.RoleTeacher {
		return entity.CourseView{}, fmt.Errorf("propose makeup: user %d has role %s, not TEACHER: %w",
			actor.ID, actor.Role, entity.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	course := &entity.Course{
		CourseName:  in.CourseName,
		Description: in.Description,
		Timetable:   in.Timetable,
		Type:        entity.CourseTypeMakeup,
		Status:      entity.CourseStatusPending,
		TeacherID:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		s.logger.Error("Failed to create teacher-proposed makeup course", "error", err, "teacher_id", actor.ID)
		return entity.CourseView{}, fmt.Errorf("create course: %w", err)
	}

	s.logger.Info("Makeup course proposed by teacher",
		"course_id", course.ID, "teacher_id", actor.ID, "course_name", course.CourseName)
	return course.ViewOf(actor), nil
}

// ProposeByAdmin records a makeup course proposed by an admin on a
// teacher's behalf and notifies the teacher that it awaits their review.
func (s *courseServiceImpl) ProposeByAdmin(ctx context.Context, in ProposeCourseInput) (entity.CourseView, port.Delivery, error) {
	var delivery port.Delivery

	teacher, err := s.userRepo.GetByID(ctx, in.TeacherID)
	if err != nil {
		return entity.CourseView{}, delivery, fmt.Errorf("get teacher %d: %w", in.TeacherID, err)
	}
	if teacher == nil {
		return entity.CourseView{}, delivery, fmt.Errorf("teacher %d: %w", in.TeacherID, entity.ErrNotFound)
	}
	if teacher.Role != entity.RoleTeacher {
		return entity.CourseView{}, delivery, fmt.Errorf("user %d has role %s, not TEACHER: %w",
			teacher.ID, teacher.Role, entity.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	course := &entity.Course{
		CourseName:  in.CourseName,
		Description: in.Description,
		Timetable:   in.Timetable,
		Type:        entity.CourseTypeMakeup,
		Status:      entity.CourseStatusPendingTeacherApproval,
		TeacherID:   teacher.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		s.logger.Error("Failed to create admin-proposed makeup course", "error", err, "teacher_id", teacher.ID)
		return entity.CourseView{}, delivery, fmt.Errorf("create course: %w", err)
	}

	delivery.Add(s.notify(teacher.Email,
		"Makeup Course Proposal from Admin",
		fmt.Sprintf("Admin has proposed a makeup course '%s' for your approval. Please log in to review.", course.CourseName)))

	s.logger.Info("Makeup course proposed by admin",
		"course_id", course.ID, "teacher_id", teacher.ID, "notification_failed", delivery.Failed > 0)
	return course.ViewOf(teacher), delivery, nil
}

// ApproveByAdmin force-approves a course. This is the admin override
// path: no state-machine validation, any current status is overwritten.
// The old status only gates the notification, so re-approving an
// already-APPROVED course stays silent.
func (s *courseServiceImpl) ApproveByAdmin(ctx context.Context, id int64) (entity.CourseView, port.Delivery, error) {
	var (
		course    *entity.Course
		oldStatus string
		delivery  port.Delivery
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		course, err = s.courseRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("get course: %w", err)
		}
		if course == nil {
			return fmt.Errorf("course %d: %w", id, entity.ErrNotFound)
		}

		oldStatus = course.Status
		course.Status = entity.CourseStatusApproved
		course.UpdatedAt = time.Now().UTC()
		if err := s.courseRepo.Update(txCtx, course); err != nil {
			return fmt.Errorf("update course: %w", err)
		}
		return nil
	})
	if err != nil {
		return entity.CourseView{}, delivery, err
	}

	teacher := s.resolveTeacher(ctx, course.TeacherID)

	if course.IsMakeup() && oldStatus != entity.CourseStatusApproved {
		if teacher != nil && teacher.Email != "" {
			delivery.Add(s.notify(teacher.Email,
				"Makeup Course Approved",
				fmt.Sprintf("Your makeup course proposal '%s' has been approved by the admin.", course.CourseName)))
		}
		delivery.Add(s.notifier.SendToDirection(
			"New Approved Makeup Course (Teacher-Proposed)",
			fmt.Sprintf("Makeup course '%s' proposed by %s has been approved by the admin.",
				course.CourseName, teacher.DisplayName())))
	}

	s.logger.Info("Course approved by admin",
		"course_id", course.ID, "old_status", oldStatus, "notifications_failed", delivery.Failed)
	return course.ViewOf(teacher), delivery, nil
}

// ApproveByTeacher lets the assigned teacher accept an admin-proposed
// makeup course. Unlike the admin path, every precondition is checked;
// on success all students and Direction are notified.
func (s *courseServiceImpl) ApproveByTeacher(ctx context.Context, courseID, teacherID int64) (entity.CourseView, port.Delivery, error) {
	var (
		course   *entity.Course
		delivery port.Delivery
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		course, err = s.guardTeacherDecision(txCtx, courseID, teacherID)
		if err != nil {
			return err
		}

		course.Status = entity.CourseStatusApproved
		course.UpdatedAt = time.Now().UTC()
		if err := s.courseRepo.Update(txCtx, course); err != nil {
			return fmt.Errorf("update course: %w", err)
		}
		return nil
	})
	if err != nil {
		return entity.CourseView{}, delivery, err
	}

	teacher := s.resolveTeacher(ctx, course.TeacherID)
	delivery.Merge(s.notifyStudentsOfApprovedMakeup(ctx, course, teacher))
	delivery.Add(s.notifier.SendToDirection(
		"Admin-Proposed Makeup Course Approved by Teacher",
		fmt.Sprintf("Makeup course '%s' proposed by Admin has been approved by Teacher %s. Timetable: %s",
			course.CourseName, teacher.DisplayName(), course.Timetable)))

	s.logger.Info("Makeup course approved by teacher",
		"course_id", course.ID, "teacher_id", teacherID,
		"notifications_attempted", delivery.Attempted, "notifications_failed", delivery.Failed)
	return course.ViewOf(teacher), delivery, nil
}

// RejectByTeacher lets the assigned teacher decline an admin-proposed
// makeup course. Same guards as approval; no notification.
func (s *courseServiceImpl) RejectByTeacher(ctx context.Context, courseID, teacherID int64) (entity.CourseView, error) {
	var course *entity.Course

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		course, err = s.guardTeacherDecision(txCtx, courseID, teacherID)
		if err != nil {
			return err
		}

		course.Status = entity.CourseStatusRejectedByTeacher
		course.UpdatedAt = time.Now().UTC()
		if err := s.courseRepo.Update(txCtx, course); err != nil {
			return fmt.Errorf("update course: %w", err)
		}
		return nil
	})
	if err != nil {
		return entity.CourseView{}, err
	}

	s.logger.Info("Makeup course rejected by teacher", "course_id", course.ID, "teacher_id", teacherID)
	return course.ViewOf(s.resolveTeacher(ctx, course.TeacherID)), nil
}

// guardTeacherDecision loads the course and validates the preconditions
// shared by the teacher approve/reject paths.
func (s *courseServiceImpl) guardTeacherDecision(ctx context.Context, courseID, teacherID int64) (*entity.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, fmt.Errorf("makeup course %d: %w", courseID, entity.ErrNotFound)
	}
	if course.TeacherID != teacherID {
		return nil, fmt.Errorf("course %d is assigned to teacher %d: %w",
			courseID, course.TeacherID, entity.ErrPermissionMismatch)
	}
	if course.Status != entity.CourseStatusPendingTeacherApproval {
		return nil, fmt.Errorf("course %d has status %s, not %s: %w",
			courseID, course.Status, entity.CourseStatusPendingTeacherApproval, entity.ErrInvalidState)
	}
	if !course.IsMakeup() {
		return nil, fmt.Errorf("course %d is not a makeup course: %w", courseID, entity.ErrInvalidArgument)
	}
	return course, nil
}

// Save creates a course directly, outside the proposal workflow. A
// MAKEUP course saved straight into APPROVED still triggers the student
// fan-out so the audiences never miss an approval.
func (s *courseServiceImpl) Save(ctx context.Context, in SaveCourseInput) (entity.CourseView, port.Delivery, error) {
	var delivery port.Delivery

	if in.TeacherID == 0 {
		return entity.CourseView{}, delivery, fmt.Errorf("teacher must be assigned to the course: %w", entity.ErrInvalidArgument)
	}
	teacher, err := s.userRepo.GetByID(ctx, in.TeacherID)
	if err != nil {
		return entity.CourseView{}, delivery, fmt.Errorf("get teacher %d: %w", in.TeacherID, err)
	}
	if teacher == nil {
		return entity.CourseView{}, delivery, fmt.Errorf("teacher %d: %w", in.TeacherID, entity.ErrNotFound)
	}

	courseType := entity.CourseType(in.Type)
	if courseType == "" {
		courseType = entity.CourseTypeNormal
	}
	if courseType != entity.CourseTypeNormal && courseType != entity.CourseTypeMakeup {
		return entity.CourseView{}, delivery, fmt.Errorf("unknown course type %q: %w", in.Type, entity.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	course := &entity.Course{
		CourseName:  in.CourseName,
		Description: in.Description,
		Timetable:   in.Timetable,
		Type:        courseType,
		Status:      in.Status,
		TeacherID:   teacher.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		s.logger.Error("Failed to save course", "error", err, "teacher_id", teacher.ID)
		return entity.CourseView{}, delivery, fmt.Errorf("create course: %w", err)
	}

	if course.IsMakeup() && course.Status == entity.CourseStatusApproved {
		delivery.Merge(s.notifyStudentsOfApprovedMakeup(ctx, course, teacher))
	}

	s.logger.Info("Course saved", "course_id", course.ID, "type", course.Type, "status", course.Status)
	return course.ViewOf(teacher), delivery, nil
}

// UpdateStatus writes an arbitrary status. For NORMAL courses the value
// is opaque; for MAKEUP courses a transition into APPROVED from any
// other value triggers the student fan-out exactly once.
func (s *courseServiceImpl) UpdateStatus(ctx context.Context, id int64, status string) (entity.CourseView, port.Delivery, error) {
	var (
		course    *entity.Course
		oldStatus string
		delivery  port.Delivery
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		course, err = s.courseRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("get course: %w", err)
		}
		if course == nil {
			return fmt.Errorf("course %d: %w", id, entity.ErrNotFound)
		}

		oldStatus = course.Status
		course.Status = status
		course.UpdatedAt = time.Now().UTC()
		if err := s.courseRepo.Update(txCtx, course); err != nil {
			return fmt.Errorf("update course: %w", err)
		}
		return nil
	})
	if err != nil {
		return entity.CourseView{}, delivery, err
	}

	teacher := s.resolveTeacher(ctx, course.TeacherID)

	if course.IsMakeup() && course.Status == entity.CourseStatusApproved && oldStatus != entity.CourseStatusApproved {
		delivery.Merge(s.notifyStudentsOfApprovedMakeup(ctx, course, teacher))
	}

	s.logger.Info("Course status updated",
		"course_id", course.ID, "old_status", oldStatus, "new_status", status)
	return course.ViewOf(teacher), delivery, nil
}

// Delete removes a course. This is an administrative bypass with no
// workflow guarantees.
func (s *courseServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete course", "error", err, "course_id", id)
		return fmt.Errorf("delete course: %w", err)
	}
	s.logger.Info("Course deleted", "course_id", id)
	return nil
}

// Get retrieves one course as its display projection.
func (s *courseServiceImpl) Get(ctx context.Context, id int64) (entity.CourseView, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return entity.CourseView{}, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return entity.CourseView{}, fmt.Errorf("course %d: %w", id, entity.ErrNotFound)
	}
	return course.ViewOf(s.resolveTeacher(ctx, course.TeacherID)), nil
}

// List retrieves all courses.
func (s *courseServiceImpl) List(ctx context.Context) ([]entity.CourseView, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return s.toViews(ctx, courses), nil
}

// ListApproved retrieves all courses with status APPROVED.
func (s *courseServiceImpl) ListApproved(ctx context.Context) ([]entity.CourseView, error) {
	courses, err := s.courseRepo.FindByStatus(ctx, entity.CourseStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list approved courses: %w", err)
	}
	return s.toViews(ctx, courses), nil
}

// ListByTeacher retrieves all courses assigned to a teacher.
func (s *courseServiceImpl) ListByTeacher(ctx context.Context, teacherID int64) ([]entity.CourseView, error) {
	courses, err := s.courseRepo.FindByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list courses by teacher: %w", err)
	}
	return s.toViews(ctx, courses), nil
}

// ListPendingTeacherApproval retrieves the admin-proposed makeup courses
// still waiting on the given teacher.
func (s *courseServiceImpl) ListPendingTeacherApproval(ctx context.Context, teacherID int64) ([]entity.CourseView, error) {
	courses, err := s.courseRepo.FindByTeacherAndStatus(ctx, teacherID, entity.CourseStatusPendingTeacherApproval)
	if err != nil {
		return nil, fmt.Errorf("list pending proposals: %w", err)
	}
	return s.toViews(ctx, courses), nil
}

// notifyStudentsOfApprovedMakeup fans out the approval announcement to
// every STUDENT user. Per-recipient failures are isolated; partial
// delivery is acceptable and not retried.
func (s *courseServiceImpl) notifyStudentsOfApprovedMakeup(ctx context.Context, course *entity.Course, teacher *entity.User) port.Delivery {
	timetable := course.Timetable
	if timetable == "" {
		timetable = "Details to follow"
	}
	body := fmt.Sprintf(
		"Dear Student,\n\nA makeup course has been approved:\n\n"+
			"Course Name: %s\nTeacher: %s\nSchedule: %s\n\n"+
			"Please check the platform for more details.\n\n"+
			"Sincerely,\nThe Course Management Team",
		course.CourseName, teacher.DisplayName(), timetable)

	return fanOutToStudents(ctx, s.userRepo, s.notifier, s.logger, "Approved Makeup Course Notification", body)
}

// notify wraps a single send, logging failures without propagating them
// as workflow errors.
func (s *courseServiceImpl) notify(recipient, subject, body string) error {
	err := s.notifier.Send(recipient, subject, body)
	if err != nil {
		s.logger.Error("Failed to send notification", "error", err, "recipient", recipient, "subject", subject)
	}
	return err
}

// resolveTeacher loads a teacher for display projections. Lookup
// failures degrade to the "N/A" projection rather than failing the
// operation.
func (s *courseServiceImpl) resolveTeacher(ctx context.Context, teacherID int64) *entity.User {
	if teacherID == 0 {
		return nil
	}
	teacher, err := s.userRepo.GetByID(ctx, teacherID)
	if err != nil {
		s.logger.Error("Failed to resolve teacher for projection", "error", err, "teacher_id", teacherID)
		return nil
	}
	return teacher
}

func (s *courseServiceImpl) toViews(ctx context.Context, courses []*entity.Course) []entity.CourseView {
	views := make([]entity.CourseView, 0, len(courses))
	for _, course := range courses {
		views = append(views, course.ViewOf(s.resolveTeacher(ctx, course.TeacherID)))
	}
	return views
}
