package service

import (
	"context"
	"sync"

	"github.com/lmasson/course-management/internal/domain/entity"
)

// Mock repositories

type mockUserRepo struct {
	createFunc                 func(ctx context.Context, user *entity.User) error
	getByIDFunc                func(ctx context.Context, id int64) (*entity.User, error)
	getByEmailFunc             func(ctx context.Context, email string) (*entity.User, error)
	getByUsernameOrEmailFunc   func(ctx context.Context, identifier string) (*entity.User, error)
	getByRegistrationTokenFunc func(ctx context.Context, token string) (*entity.User, error)
	findByRoleFunc             func(ctx context.Context, role entity.Role) ([]*entity.User, error)
	listFunc                   func(ctx context.Context) ([]*entity.User, error)
	updateFunc                 func(ctx context.Context, user *entity.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error) {
	if m.getByUsernameOrEmailFunc != nil {
		return m.getByUsernameOrEmailFunc(ctx, identifier)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByRegistrationToken(ctx context.Context, token string) (*entity.User, error) {
	if m.getByRegistrationTokenFunc != nil {
		return m.getByRegistrationTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	if m.findByRoleFunc != nil {
		return m.findByRoleFunc(ctx, role)
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil
}

type mockCourseRepo struct {
	createFunc                 func(ctx context.Context, course *entity.Course) error
	getByIDFunc                func(ctx context.Context, id int64) (*entity.Course, error)
	listFunc                   func(ctx context.Context) ([]*entity.Course, error)
	findByStatusFunc           func(ctx context.Context, status string) ([]*entity.Course, error)
	findByTeacherFunc          func(ctx context.Context, teacherID int64) ([]*entity.Course, error)
	findByTeacherAndStatusFunc func(ctx context.Context, teacherID int64, status string) ([]*entity.Course, error)
	updateFunc                 func(ctx context.Context, course *entity.Course) error
	updateStatusFunc           func(ctx context.Context, id int64, status string) error
	deleteFunc                 func(ctx context.Context, id int64) error
}

func (m *mockCourseRepo) Create(ctx context.Context, course *entity.Course) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, course)
	}
	course.ID = 1
	return nil
}

func (m *mockCourseRepo) GetByID(ctx context.Context, id int64) (*entity.Course, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCourseRepo) List(ctx context.Context) ([]*entity.Course, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockCourseRepo) FindByStatus(ctx context.Context, status string) ([]*entity.Course, error) {
	if m.findByStatusFunc != nil {
		return m.findByStatusFunc(ctx, status)
	}
	return nil, nil
}

func (m *mockCourseRepo) FindByTeacher(ctx context.Context, teacherID int64) ([]*entity.Course, error) {
	if m.findByTeacherFunc != nil {
		return m.findByTeacherFunc(ctx, teacherID)
	}
	return nil, nil
}

func (m *mockCourseRepo) FindByTeacherAndStatus(ctx context.Context, teacherID int64, status string) ([]*entity.Course, error) {
	if m.findByTeacherAndStatusFunc != nil {
		return m.findByTeacherAndStatusFunc(ctx, teacherID, status)
	}
	return nil, nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *entity.Course) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, course)
	}
	return nil
}

func (m *mockCourseRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockAbsenceRepo struct {
	createFunc                 func(ctx context.Context, request *entity.AbsenceRequest) error
	getByIDFunc                func(ctx context.Context, id int64) (*entity.AbsenceRequest, error)
	listFunc                   func(ctx context.Context) ([]*entity.AbsenceRequest, error)
	findByStatusFunc           func(ctx context.Context, status string) ([]*entity.AbsenceRequest, error)
	findByTeacherFunc          func(ctx context.Context, teacherID int64) ([]*entity.AbsenceRequest, error)
	findByTeacherAndStatusFunc func(ctx context.Context, teacherID int64, status string) ([]*entity.AbsenceRequest, error)
	updateStatusFunc           func(ctx context.Context, id int64, status string) error
}

func (m *mockAbsenceRepo) Create(ctx context.Context, request *entity.AbsenceRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, request)
	}
	request.ID = 1
	return nil
}

func (m *mockAbsenceRepo) GetByID(ctx context.Context, id int64) (*entity.AbsenceRequest, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAbsenceRepo) List(ctx context.Context) ([]*entity.AbsenceRequest, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockAbsenceRepo) FindByStatus(ctx context.Context, status string) ([]*entity.AbsenceRequest, error) {
	if m.findByStatusFunc != nil {
		return m.findByStatusFunc(ctx, status)
	}
	return nil, nil
}

func (m *mockAbsenceRepo) FindByTeacher(ctx context.Context, teacherID int64) ([]*entity.AbsenceRequest, error) {
	if m.findByTeacherFunc != nil {
		return m.findByTeacherFunc(ctx, teacherID)
	}
	return nil, nil
}

func (m *mockAbsenceRepo) FindByTeacherAndStatus(ctx context.Context, teacherID int64, status string) ([]*entity.AbsenceRequest, error) {
	if m.findByTeacherAndStatusFunc != nil {
		return m.findByTeacherAndStatusFunc(ctx, teacherID, status)
	}
	return nil, nil
}

func (m *mockAbsenceRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// sentMessage records one delivery attempt made through the mock
// notifier.
type sentMessage struct {
	Recipient string
	Subject   string
	Body      string
	Direction bool
}

// mockNotifier records every send. sendErr/directionErr simulate
// transport failures.
type mockNotifier struct {
	mu           sync.Mutex
	sent         []sentMessage
	sendErr      error
	directionErr error
}

func (m *mockNotifier) Send(recipient, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{Recipient: recipient, Subject: subject, Body: body})
	return m.sendErr
}

func (m *mockNotifier) SendToDirection(subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{Subject: subject, Body: body, Direction: true})
	return m.directionErr
}

func (m *mockNotifier) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *mockNotifier) directionMessages() []sentMessage {
	var out []sentMessage
	for _, msg := range m.messages() {
		if msg.Direction {
			out = append(out, msg)
		}
	}
	return out
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
