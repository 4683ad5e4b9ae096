package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lmasson/course-management/internal/application/port"
	"github.com/lmasson/course-management/internal/domain/entity"
)

// SubmitAbsenceInput carries the fields a teacher supplies when
// requesting an absence. SubmittedAt is optional and defaults to the
// server's current time.
type SubmitAbsenceInput struct {
	TeacherID     int64      `json:"teacher_id"`
	CourseID      int64      `json:"course_id"`
	Justification string     `json:"justification"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
}

// AbsenceService drives the absence-request workflow: a teacher submits
// (always PENDING), an admin or Direction decides. The only
// notification-worthy transition is old != APPROVED becoming APPROVED,
// which fans out to all students exactly once.
type AbsenceService interface {
	Submit(ctx context.Context, in SubmitAbsenceInput) (entity.AbsenceRequestView, error)
	UpdateStatus(ctx context.Context, id int64, status string) (entity.AbsenceRequestView, port.Delivery, error)
	Approve(ctx context.Context, id int64) (entity.AbsenceRequestView, port.Delivery, error)

	Get(ctx context.Context, id int64) (entity.AbsenceRequestView, error)
	List(ctx context.Context) ([]entity.AbsenceRequestView, error)
	ListApproved(ctx context.Context) ([]entity.AbsenceRequestView, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]entity.AbsenceRequestView, error)
	ListByTeacherAndStatus(ctx context.Context, teacherID int64, status string) ([]entity.AbsenceRequestView, error)
}

type absenceServiceImpl struct {
	absenceRepo port.AbsenceRepository
	courseRepo  port.CourseRepository
	userRepo    port.UserRepository
	txManager   port.TransactionManager
	notifier    port.Notifier
	logger      Logger
}

// NewAbsenceService creates a new AbsenceService.
func NewAbsenceService(
	absenceRepo port.AbsenceRepository,
	courseRepo port.CourseRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	notifier port.Notifier,
	logger Logger,
) AbsenceService {
	return &absenceServiceImpl{
		absenceRepo: absenceRepo,
		courseRepo:  courseRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger,
	}
}

// Submit records a new absence request. The status is forced to PENDING
// regardless of caller input; no notification is sent until a decision
// is made.
func (s *absenceServiceImpl) Submit(ctx context.Context, in SubmitAbsenceInput) (entity.AbsenceRequestView, error) {
	teacher, err := s.userRepo.GetByID(ctx, in.TeacherID)
	if err != nil {
		return entity.AbsenceRequestView{}, fmt.Errorf("get teacher %d: %w", in.TeacherID, err)
	}
	if teacher == nil {
		return entity.AbsenceRequestView{}, fmt.Errorf("teacher %d: %w", in.TeacherID, entity.ErrNotFound)
	}

	course, err := s.courseRepo.GetByID(ctx, in.CourseID)
	if err != nil {
		return entity.AbsenceRequestView{}, fmt.Errorf("get course %d: %w", in.CourseID, err)
	}
	if course == nil {
		return entity.AbsenceRequestView{}, fmt.Errorf("course %d: %w", in.CourseID, entity.ErrNotFound)
	}

	now := time.Now().UTC()
	submittedAt := now
	if in.SubmittedAt != nil {
		submittedAt = in.SubmittedAt.UTC()
	}

	request := &entity.AbsenceRequest{
		TeacherID:     teacher.ID,
		CourseID:      course.ID,
		Justification: in.Justification,
		Status:        entity.AbsenceStatusPending,
		SubmittedAt:   submittedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.absenceRepo.Create(ctx, request); err != nil {
		s.logger.Error("Failed to create absence request", "error", err, "teacher_id", teacher.ID)
		return entity.AbsenceRequestView{}, fmt.Errorf("create absence request: %w", err)
	}

	s.logger.Info("Absence request submitted",
		"request_id", request.ID, "teacher_id", teacher.ID, "course_id", course.ID)
	return request.ViewOf(teacher, course), nil
}

// UpdateStatus writes the requested status. An unknown id fails with
// ErrNotFound, matching the course engine's convention. Only the
// transition into APPROVED from another value triggers the student
// fan-out; re-approving an APPROVED request stays silent.
func (s *absenceServiceImpl) UpdateStatus(ctx context.Context, id int64, status string) (entity.AbsenceRequestView, port.Delivery, error) {
	var (
		request   *entity.AbsenceRequest
		oldStatus string
		delivery  port.Delivery
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		request, err = s.absenceRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("get absence request: %w", err)
		}
		if request == nil {
			return fmt.Errorf("absence request %d: %w", id, entity.ErrNotFound)
		}

		oldStatus = request.Status
		request.Status = status
		request.UpdatedAt = time.Now().UTC()
		if err := s.absenceRepo.UpdateStatus(txCtx, id, status); err != nil {
			return fmt.Errorf("update absence status: %w", err)
		}
		return nil
	})
	if err != nil {
		return entity.AbsenceRequestView{}, delivery, err
	}

	teacher, course := s.resolveRelated(ctx, request)

	if request.Status == entity.AbsenceStatusApproved && oldStatus != entity.AbsenceStatusApproved {
		delivery.Merge(s.notifyStudentsOfApprovedAbsence(ctx, request, teacher, course))
	}

	s.logger.Info("Absence request status updated",
		"request_id", request.ID, "old_status", oldStatus, "new_status", status,
		"notifications_attempted", delivery.Attempted, "notifications_failed", delivery.Failed)
	return request.ViewOf(teacher, course), delivery, nil
}

// Approve is the admin decision path: it performs the APPROVED status
// update and additionally notifies the requesting teacher and Direction.
func (s *absenceServiceImpl) Approve(ctx context.Context, id int64) (entity.AbsenceRequestView, port.Delivery, error) {
	view, delivery, err := s.UpdateStatus(ctx, id, entity.AbsenceStatusApproved)
	if err != nil {
		return entity.AbsenceRequestView{}, delivery, err
	}

	courseName := view.CourseName
	if courseName == "" {
		courseName = "Unknown Course"
	}

	if view.TeacherName != "" {
		teacher, err := s.userRepo.GetByID(ctx, view.TeacherID)
		if err == nil && teacher != nil && teacher.Email != "" {
			sendErr := s.notifier.Send(teacher.Email,
				"Absence Request Approved",
				fmt.Sprintf("Your absence request for course %s has been approved.", courseName))
			if sendErr != nil {
				s.logger.Error("Failed to notify teacher of absence approval", "error", sendErr, "request_id", id)
			}
			delivery.Add(sendErr)
		}
	}

	teacherName := view.TeacherName
	if teacherName == "" {
		teacherName = "Unknown Teacher"
	}
	dirErr := s.notifier.SendToDirection(
		"New Approved Absence",
		fmt.Sprintf("Teacher %s's absence for course %s has been approved.", teacherName, courseName))
	if dirErr != nil {
		s.logger.Error("Failed to notify Direction of absence approval", "error", dirErr, "request_id", id)
	}
	delivery.Add(dirErr)

	return view, delivery, nil
}

// Get retrieves one absence request as its display projection.
func (s *absenceServiceImpl) Get(ctx context.Context, id int64) (entity.AbsenceRequestView, error) {
	request, err := s.absenceRepo.GetByID(ctx, id)
	if err != nil {
		return entity.AbsenceRequestView{}, fmt.Errorf("get absence request: %w", err)
	}
	if request == nil {
		return entity.AbsenceRequestView{}, fmt.Errorf("absence request %d: %w", id, entity.ErrNotFound)
	}
	teacher, course := s.resolveRelated(ctx, request)
	return request.ViewOf(teacher, course), nil
}

// List retrieves all absence requests.
func (s *absenceServiceImpl) List(ctx context.Context) ([]entity.AbsenceRequestView, error) {
	requests, err := s.absenceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list absence requests: %w", err)
	}
	return s.toViews(ctx, requests), nil
}

// ListApproved retrieves all APPROVED absence requests.
func (s *absenceServiceImpl) ListApproved(ctx context.Context) ([]entity.AbsenceRequestView, error) {
	requests, err := s.absenceRepo.FindByStatus(ctx, entity.AbsenceStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list approved absences: %w", err)
	}
	return s.toViews(ctx, requests), nil
}

// ListByTeacher retrieves all absence requests of one teacher.
func (s *absenceServiceImpl) ListByTeacher(ctx context.Context, teacherID int64) ([]entity.AbsenceRequestView, error) {
	requests, err := s.absenceRepo.FindByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list absences by teacher: %w", err)
	}
	return s.toViews(ctx, requests), nil
}

// ListByTeacherAndStatus retrieves one teacher's absence requests in a
// given status.
func (s *absenceServiceImpl) ListByTeacherAndStatus(ctx context.Context, teacherID int64, status string) ([]entity.AbsenceRequestView, error) {
	requests, err := s.absenceRepo.FindByTeacherAndStatus(ctx, teacherID, status)
	if err != nil {
		return nil, fmt.Errorf("list absences by teacher and status: %w", err)
	}
	return s.toViews(ctx, requests), nil
}

// notifyStudentsOfApprovedAbsence fans out the approval announcement to
// every STUDENT user, placeholder-defaulting any missing related data.
func (s *absenceServiceImpl) notifyStudentsOfApprovedAbsence(ctx context.Context, request *entity.AbsenceRequest, teacher *entity.User, course *entity.Course) port.Delivery {
	courseName := "Unknown Course"
	if course != nil {
		courseName = course.CourseName
	}
	justification := request.Justification
	if justification == "" {
		justification = "No justification provided."
	}

	body := fmt.Sprintf(
		"Dear Student,\n\nAn absence request has been approved:\n\n"+
			"Teacher: %s\nCourse: %s\nJustification: %s\n\n"+
			"Please check the course schedule for potential impacts or makeup information.\n\n"+
			"Sincerely,\nThe Course Management Team",
		teacher.DisplayName(), courseName, justification)

	return fanOutToStudents(ctx, s.userRepo, s.notifier, s.logger, "Absence Request Approved", body)
}

// resolveRelated loads the teacher and course for display projections;
// lookup failures degrade to placeholders rather than failing the
// operation.
func (s *absenceServiceImpl) resolveRelated(ctx context.Context, request *entity.AbsenceRequest) (*entity.User, *entity.Course) {
	var (
		teacher *entity.User
		course  *entity.Course
		err     error
	)
	if request.TeacherID != 0 {
		teacher, err = s.userRepo.GetByID(ctx, request.TeacherID)
		if err != nil {
			s.logger.Error("Failed to resolve teacher for projection", "error", err, "teacher_id", request.TeacherID)
		}
	}
	if request.CourseID != 0 {
		course, err = s.courseRepo.GetByID(ctx, request.CourseID)
		if err != nil {
			s.logger.Error("Failed to resolve course for projection", "error", err, "course_id", request.CourseID)
		}
	}
	return teacher, course
}

func (s *absenceServiceImpl) toViews(ctx context.Context, requests []*entity.AbsenceRequest) []entity.AbsenceRequestView {
	views := make([]entity.AbsenceRequestView, 0, len(requests))
	for _, request := range requests {
		teacher, course := s.resolveRelated(ctx, request)
		views = append(views, request.ViewOf(teacher, course))
	}
	return views
}
