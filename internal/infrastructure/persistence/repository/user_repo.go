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

const userColumns = `id, username, email, full_name, password_hash, role,
	is_activated, registration_token, created_at, updated_at`

// UserRepository implements port.UserRepository over sqlite.
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user and assigns its id.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (
			username, email, full_name, password_hash, role,
			is_activated, registration_token, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		string(user.Role),
		user.IsActivated,
		user.RegistrationToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = id
	return nil
}

// GetByID retrieves a user by id, or (nil, nil) when absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = ?`, userColumns)
	return r.scanOne(ctx, query, id)
}

// GetByEmail retrieves a user by email, or (nil, nil) when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = ?`, userColumns)
	return r.scanOne(ctx, query, email)
}

// GetByUsernameOrEmail retrieves a user whose username or email matches
// the identifier, or (nil, nil) when absent.
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = ? OR email = ?`, userColumns)
	return r.scanOne(ctx, query, identifier, identifier)
}

// GetByRegistrationToken retrieves a user by their pending invite
// token, or (nil, nil) when absent.
func (r *UserRepository) GetByRegistrationToken(ctx context.Context, token string) (*entity.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE registration_token = ?`, userColumns)
	return r.scanOne(ctx, query, token)
}

// FindByRole retrieves all users holding a role.
func (r *UserRepository) FindByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = ? ORDER BY id`, userColumns)
	return r.scanMany(ctx, query, string(role))
}

// List retrieves all users.
func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY id`, userColumns)
	return r.scanMany(ctx, query)
}

// Update writes all mutable fields of an existing user.
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET username = ?, email = ?, full_name = ?, password_hash = ?,
			role = ?, is_activated = ?, registration_token = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		string(user.Role),
		user.IsActivated,
		user.RegistrationToken,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update user", zap.Int64("id", user.ID), zap.Error(err))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *UserRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	var user entity.User
	var role string

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&role,
		&user.IsActivated,
		&user.RegistrationToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = entity.Role(role)
	return &user, nil
}

func (r *UserRepository) scanMany(ctx context.Context, query string, args ...interface{}) ([]*entity.User, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		var user entity.User
		var role string
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.FullName,
			&user.PasswordHash,
			&role,
			&user.IsActivated,
			&user.RegistrationToken,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Role = entity.Role(role)
		users = append(users, &user)
	}

	return users, rows.Err()
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
