package port

import (
	"context"

	"github.com/lmasson/course-management/internal/domain/entity"
)

// UserRepository defines persistence operations for User.
// Get* methods return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error)
	GetByRegistrationToken(ctx context.Context, token string) (*entity.User, error)
	FindByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

// CourseRepository defines persistence operations for Course.
type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	GetByID(ctx context.Context, id int64) (*entity.Course, error)
	List(ctx context.Context) ([]*entity.Course, error)
	FindByStatus(ctx context.Context, status string) ([]*entity.Course, error)
	FindByTeacher(ctx context.Context, teacherID int64) ([]*entity.Course, error)
	FindByTeacherAndStatus(ctx context.Context, teacherID int64, status string) ([]*entity.Course, error)
	Update(ctx context.Context, course *entity.Course) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// AbsenceRepository defines persistence operations for AbsenceRequest.
type AbsenceRepository interface {
	Create(ctx context.Context, request *entity.AbsenceRequest) error
	GetByID(ctx context.Context, id int64) (*entity.AbsenceRequest, error)
	List(ctx context.Context) ([]*entity.AbsenceRequest, error)
	FindByStatus(ctx context.Context, status string) ([]*entity.AbsenceRequest, error)
	FindByTeacher(ctx context.Context, teacherID int64) ([]*entity.AbsenceRequest, error)
	FindByTeacherAndStatus(ctx context.Context, teacherID int64, status string) ([]*entity.AbsenceRequest, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// TransactionManager serializes a read-modify-write sequence against
// concurrent mutation of the same entity. Repository calls made with the
// ctx passed to fn join the same transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
