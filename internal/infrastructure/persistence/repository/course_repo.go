package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/lmasson/course-management/internal/application/port"
	"github.com/lmasson/course-management/internal/domain/entity"
	"github.com/lmasson/course-management/internal/infrastructure/persistence/sqlite"
)

const courseColumns = `id, course_name, description, timetable, type, status,
	teacher_id, created_at, updated_at`

// CourseRepository implements port.CourseRepository over sqlite.
type CourseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sql.DB, logger *zap.Logger) port.CourseRepository {
	return &CourseRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new course and assigns its id.
func (r *CourseRepository) Create(ctx context.Context, course *entity.Course) error {
	query := `
		INSERT INTO courses (
			course_name, description, timetable, type, status,
			teacher_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		course.CourseName,
		course.Description,
		course.Timetable,
		string(course.Type),
		course.Status,
		course.TeacherID,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create course", zap.Error(err))
		return fmt.Errorf("failed to create course: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	course.ID = id
	return nil
}

// GetByID retrieves a course by id, or (nil, nil) when absent.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*entity.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = ?`, courseColumns)

	var course entity.Course
	var courseType string

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.CourseName,
		&course.Description,
		&course.Timetable,
		&courseType,
		&course.Status,
		&course.TeacherID,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get course", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	course.Type = entity.CourseType(courseType)
	return &course, nil
}

// List retrieves all courses.
func (r *CourseRepository) List(ctx context.Context) ([]*entity.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses ORDER BY id`, courseColumns)
	return r.scanMany(ctx, query)
}

// FindByStatus retrieves all courses in a given status.
func (r *CourseRepository) FindByStatus(ctx context.Context, status string) ([]*entity.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE status = ? ORDER BY id`, courseColumns)
	return r.scanMany(ctx, query, status)
}

// FindByTeacher retrieves all courses assigned to a teacher.
func (r *CourseRepository) FindByTeacher(ctx context.Context, teacherID int64) ([]*entity.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE teacher_id = ? ORDER BY id`, courseColumns)
	return r.scanMany(ctx, query, teacherID)
}

// FindByTeacherAndStatus retrieves a teacher's courses in a given
// status.
func (r *CourseRepository) FindByTeacherAndStatus(ctx context.Context, teacherID int64, status string) ([]*entity.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE teacher_id = ? AND status = ? ORDER BY id`, courseColumns)
	return r.scanMany(ctx, query, teacherID, status)
}

// Update writes all mutable fields of an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *entity.Course) error {
	query := `
		UPDATE courses
		SET course_name = ?, description = ?, timetable = ?, type = ?,
			status = ?, teacher_id = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		course.CourseName,
		course.Description,
		course.Timetable,
		string(course.Type),
		course.Status,
		course.TeacherID,
		course.UpdatedAt,
		course.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update course", zap.Int64("id", course.ID), zap.Error(err))
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

// UpdateStatus writes only the status of a course.
func (r *CourseRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE courses SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update course status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update course status: %w", err)
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM courses WHERE id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete course", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

func (r *CourseRepository) scanMany(ctx context.Context, query string, args ...interface{}) ([]*entity.Course, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query courses", zap.Error(err))
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []*entity.Course
	for rows.Next() {
		var course entity.Course
		var courseType string
		if err := rows.Scan(
			&course.ID,
			&course.CourseName,
			&course.Description,
			&course.Timetable,
			&courseType,
			&course.Status,
			&course.TeacherID,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		course.Type = entity.CourseType(courseType)
		courses = append(courses, &course)
	}

	return courses, rows.Err()
}

// Verify interface compliance
var _ port.CourseRepository = (*CourseRepository)(nil)
