package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmasson/course-management/internal/domain/entity"
)

func newTestAbsenceService(absenceRepo *mockAbsenceRepo, courseRepo *mockCourseRepo, userRepo *mockUserRepo, notifier *mockNotifier) AbsenceService {
	return NewAbsenceService(absenceRepo, courseRepo, userRepo, &mockTxManager{}, notifier, &mockLogger{})
}

func TestAbsenceService_Submit(t *testing.T) {
	tests := []struct {
		name    string
		teacher *entity.User
		course  *entity.Course
		wantErr error
	}{
		{
			name:    "valid submission",
			teacher: teacherUser(7),
			course:  &entity.Course{ID: 3, CourseName: "History", TeacherID: 7},
		},
		{
			name:    "unknown teacher",
			teacher: nil,
			course:  &entity.Course{ID: 3},
			wantErr: entity.ErrNotFound,
		},
		{
			name:    "unknown course",
			teacher: teacherUser(7),
			course:  nil,
			wantErr: entity.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mockUserRepo{
				getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
					return tt.teacher, nil
				},
			}
			courseRepo := &mockCourseRepo{
				getByIDFunc: func(ctx context.Context, id int64) (*entity.Course, error) {
					return tt.course, nil
				},
			}
			var created *entity.AbsenceRequest
			absenceRepo := &mockAbsenceRepo{
				createFunc: func(ctx context.Context, request *entity.AbsenceRequest) error {
					request.ID = 9
					created = request
					return nil
				},
			}
			notifier := &mockNotifier{}
			svc := newTestAbsenceService(absenceRepo, courseRepo, userRepo, notifier)

			view, err := svc.Submit(context.Background(), SubmitAbsenceInput{
				TeacherID:     7,
				CourseID:      3,
				Justification: "medical appointment",
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, created)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, created)
			assert.Equal(t, entity.AbsenceStatusPending, created.Status, "submission always starts PENDING")
			assert.False(t, created.SubmittedAt.IsZero())
			assert.Equal(t, "Marie Dupont", view.TeacherName)
			assert.Equal(t, "History", view.CourseName)
			assert.Empty(t, notifier.messages(), "no notification before a decision")
		})
	}
}

func TestAbsenceService_Submit_KeepsProvidedTimestamp(t *testing.T) {
	submittedAt := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	userRepo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			return teacherUser(7), nil
		},
	}
	courseRepo := &mockCourseRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Course, error) {
			return &entity.Course{ID: 3, TeacherID: 7}, nil
		},
	}
	var created *entity.AbsenceRequest
	absenceRepo := &mockAbsenceRepo{
		createFunc: func(ctx context.Context, request *entity.AbsenceRequest) error {
			created = request
			return nil
		},
	}
	svc := newTestAbsenceService(absenceRepo, courseRepo, userRepo, &mockNotifier{})

	_, err := svc.Submit(context.Background(), SubmitAbsenceInput{
		TeacherID:   7,
		CourseID:    3,
		SubmittedAt: &submittedAt,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, submittedAt, created.SubmittedAt)
}

func TestAbsenceService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		request    *entity.AbsenceRequest
		newStatus  string
		wantErr    error
		wantFanOut bool
	}{
		{
			name:    "missing request",
			request: nil,
			wantErr: entity.ErrNotFound,
		},
		{
			name: "approval fans out to students",
			request: &entity.AbsenceRequest{
				ID: 9, TeacherID: 7, CourseID: 3,
				Justification: "medical appointment",
				Status:        entity.AbsenceStatusPending,
			},
			newStatus:  entity.AbsenceStatusApproved,
			wantFanOut: true,
		},
		{
			name: "re-approving stays silent",
			request: &entity.AbsenceRequest{
				ID: 9, TeacherID: 7, CourseID: 3,
				Status: entity.AbsenceStatusApproved,
			},
			newStatus: entity.AbsenceStatusApproved,
		},
		{
			name: "rejection is silent",
			request: &entity.AbsenceRequest{
				ID: 9, TeacherID: 7, CourseID: 3,
				Status: entity.AbsenceStatusPending,
			},
			newStatus: entity.AbsenceStatusRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			absenceRepo := &mockAbsenceRepo{
				getByIDFunc: func(ctx context.Context, id int64) (*entity.AbsenceRequest, error) {
					return tt.request, nil
				},
			}
			courseRepo := &mockCourseRepo{
				getByIDFunc: func(ctx context.Context, id int64) (*entity.Course, error) {
					return &entity.Course{ID: 3, CourseName: "History", TeacherID: 7}, nil
				},
			}
			userRepo := &mockUserRepo{
				getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
					return teacherUser(7), nil
				},
				findByRoleFunc: func(ctx context.Context, role entity.Role) ([]*entity.User, error) {
					return []*entity.User{{ID: 10, Email: "alice@example.edu", Role: entity.RoleStudent}}, nil
				},
			}
			notifier := &mockNotifier{}
			svc := newTestAbsenceService(absenceRepo, courseRepo, userRepo, notifier)

			view, _, err := svc.UpdateStatus(context.Background(), 9, tt.newStatus)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.newStatus, view.Status)
			if tt.wantFanOut {
				messages := notifier.messages()
				require.Len(t, messages, 1)
				assert.Equal(t, "Absence Request Approved", messages[0].Subject)
				assert.Contains(t, messages[0].Body, "Marie Dupont")
				assert.Contains(t, messages[0].Body, "History")
				assert.Contains(t, messages[0].Body, "medical appointment")
			} else {
				assert.Empty(t, notifier.messages())
			}
		})
	}
}

func TestAbsenceService_UpdateStatus_PlaceholdersForMissingRelations(t *testing.T) {
	request := &entity.AbsenceRequest{
		ID: 9, TeacherID: 7, CourseID: 3,
		Status: entity.AbsenceStatusPending,
	}
	absenceRepo := &mockAbsenceRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.AbsenceRequest, error) {
			return request, nil
		},
	}
	// Teacher and course rows have been deleted since submission.
	courseRepo := &mockCourseRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Course, error) {
			return nil, nil
		},
	}
	userRepo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			return nil, nil
		},
		findByRoleFunc: func(ctx context.Context, role entity.Role) ([]*entity.User, error) {
			return []*entity.User{{ID: 10, Email: "alice@example.edu", Role: entity.RoleStudent}}, nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestAbsenceService(absenceRepo, courseRepo, userRepo, notifier)

	_, _, err := svc.UpdateStatus(context.Background(), 9, entity.AbsenceStatusApproved)
	require.NoError(t, err, "missing related rows degrade to placeholders, not errors")

	messages := notifier.messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Body, "Unknown Teacher")
	assert.Contains(t, messages[0].Body, "Unknown Course")
	assert.Contains(t, messages[0].Body, "No justification provided.")
}

func TestAbsenceService_Approve_NotifiesTeacherAndDirection(t *testing.T) {
	request := &entity.AbsenceRequest{
		ID: 9, TeacherID: 7, CourseID: 3,
		Status: entity.AbsenceStatusPending,
	}
	absenceRepo := &mockAbsenceRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.AbsenceRequest, error) {
			return request, nil
		},
	}
	courseRepo := &mockCourseRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Course, error) {
			return &entity.Course{ID: 3, CourseName: "History", TeacherID: 7}, nil
		},
	}
	userRepo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			return teacherUser(7), nil
		},
		findByRoleFunc: func(ctx context.Context, role entity.Role) ([]*entity.User, error) {
			return []*entity.User{{ID: 10, Email: "alice@example.edu", Role: entity.RoleStudent}}, nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestAbsenceService(absenceRepo, courseRepo, userRepo, notifier)

	view, delivery, err := svc.Approve(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, entity.AbsenceStatusApproved, view.Status)

	messages := notifier.messages()
	require.Len(t, messages, 3, "student fan-out plus teacher plus Direction")

	var teacherNotified bool
	for _, msg := range messages {
		if msg.Recipient == "mdupont@example.edu" {
			teacherNotified = true
			assert.Equal(t, "Absence Request Approved", msg.Subject)
			assert.Contains(t, msg.Body, "History")
		}
	}
	assert.True(t, teacherNotified)

	direction := notifier.directionMessages()
	require.Len(t, direction, 1)
	assert.Equal(t, "New Approved Absence", direction[0].Subject)
	assert.Contains(t, direction[0].Body, "Marie Dupont")

	assert.Equal(t, 3, delivery.Attempted)
	assert.False(t, delivery.Degraded())
}

func TestAbsenceService_Approve_MissingRequest(t *testing.T) {
	svc := newTestAbsenceService(&mockAbsenceRepo{}, &mockCourseRepo{}, &mockUserRepo{}, &mockNotifier{})

	_, _, err := svc.Approve(context.Background(), 404)
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestAbsenceService_ListByTeacherAndStatus(t *testing.T) {
	absenceRepo := &mockAbsenceRepo{
		findByTeacherAndStatusFunc: func(ctx context.Context, teacherID int64, status string) ([]*entity.AbsenceRequest, error) {
			require.Equal(t, int64(7), teacherID)
			require.Equal(t, entity.AbsenceStatusPending, status)
			return []*entity.AbsenceRequest{{ID: 9, TeacherID: 7, Status: status}}, nil
		},
	}
	svc := newTestAbsenceService(absenceRepo, &mockCourseRepo{}, &mockUserRepo{}, &mockNotifier{})

	views, err := svc.ListByTeacherAndStatus(context.Background(), 7, entity.AbsenceStatusPending)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, entity.AbsenceStatusPending, views[0].Status)
}
