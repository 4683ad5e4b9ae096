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

const absenceColumns = `id, teacher_id, course_id, justification, status,
	submitted_at, created_at, updated_at`

// AbsenceRepository implements port.AbsenceRepository over sqlite.
type AbsenceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAbsenceRepository creates a new absence request repository.
func NewAbsenceRepository(db *sql.DB, logger *zap.Logger) port.AbsenceRepository {
	return &AbsenceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new absence request and assigns its id.
func (r *AbsenceRepository) Create(ctx context.Context, request *entity.AbsenceRequest) error {
	query := `
		INSERT INTO absence_requests (
			teacher_id, course_id, justification, status,
			submitted_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		request.TeacherID,
		nullableID(request.CourseID),
		request.Justification,
		request.Status,
		request.SubmittedAt,
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create absence request", zap.Error(err))
		return fmt.Errorf("failed to create absence request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	request.ID = id
	return nil
}

// GetByID retrieves an absence request by id, or (nil, nil) when
// absent.
func (r *AbsenceRepository) GetByID(ctx context.Context, id int64) (*entity.AbsenceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM absence_requests WHERE id = ?`, absenceColumns)

	request, err := r.scanOne(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		r.logger.Error("Failed to get absence request", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get absence request: %w", err)
	}
	return request, nil
}

// List retrieves all absence requests.
func (r *AbsenceRepository) List(ctx context.Context) ([]*entity.AbsenceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM absence_requests ORDER BY submitted_at DESC`, absenceColumns)
	return r.scanMany(ctx, query)
}

// FindByStatus retrieves all absence requests in a given status.
func (r *AbsenceRepository) FindByStatus(ctx context.Context, status string) ([]*entity.AbsenceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM absence_requests WHERE status = ? ORDER BY submitted_at DESC`, absenceColumns)
	return r.scanMany(ctx, query, status)
}

// FindByTeacher retrieves all absence requests submitted by a teacher.
func (r *AbsenceRepository) FindByTeacher(ctx context.Context, teacherID int64) ([]*entity.AbsenceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM absence_requests WHERE teacher_id = ? ORDER BY submitted_at DESC`, absenceColumns)
	return r.scanMany(ctx, query, teacherID)
}

// FindByTeacherAndStatus retrieves a teacher's absence requests in a
// given status.
func (r *AbsenceRepository) FindByTeacherAndStatus(ctx context.Context, teacherID int64, status string) ([]*entity.AbsenceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM absence_requests WHERE teacher_id = ? AND status = ? ORDER BY submitted_at DESC`, absenceColumns)
	return r.scanMany(ctx, query, teacherID, status)
}

// UpdateStatus writes only the status of an absence request.
func (r *AbsenceRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE absence_requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update absence request status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update absence request status: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *AbsenceRepository) scanOne(row rowScanner) (*entity.AbsenceRequest, error) {
	var request entity.AbsenceRequest
	var courseID sql.NullInt64

	err := row.Scan(
		&request.ID,
		&request.TeacherID,
		&courseID,
		&request.Justification,
		&request.Status,
		&request.SubmittedAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if courseID.Valid {
		request.CourseID = courseID.Int64
	}
	return &request, nil
}

func (r *AbsenceRepository) scanMany(ctx context.Context, query string, args ...interface{}) ([]*entity.AbsenceRequest, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query absence requests", zap.Error(err))
		return nil, fmt.Errorf("failed to query absence requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.AbsenceRequest
	for rows.Next() {
		request, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan absence request: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

// nullableID maps a zero id to NULL so optional references stay NULL
// in the database.
func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// Verify interface compliance
var _ port.AbsenceRepository = (*AbsenceRepository)(nil)
