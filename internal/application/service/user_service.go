package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lmasson/course-management/internal/application/port"
	"github.com/lmasson/course-management/internal/auth"
	"github.com/lmasson/course-management/internal/domain/entity"
	"github.com/lmasson/course-management/pkg/utils"
)

var (
	// ErrInvalidCredentials is returned when the identifier/password
	// pair does not match a user.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotActivated is returned when a user authenticates correctly
	// but has not completed registration.
	ErrNotActivated = errors.New("account not activated")

	// ErrInvalidToken is returned when a registration token does not
	// resolve to a pending invite.
	ErrInvalidToken = errors.New("invalid or expired registration token")
)

// RegisterInput carries the fields for direct account creation.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// UserService is the directory: it resolves principals for the workflow
// engines and owns account lifecycle (registration, teacher invites,
// activation).
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*entity.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*entity.User, error)
	InviteTeacher(ctx context.Context, email, fullName string) (*entity.User, port.Delivery, error)
	CompleteRegistration(ctx context.Context, token, password string) (*entity.User, error)

	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
}

type userServiceImpl struct {
	userRepo        port.UserRepository
	notifier        port.Notifier
	frontendBaseURL string
	logger          Logger
}

// NewUserService creates a new UserService. frontendBaseURL is used to
// build invite completion links.
func NewUserService(userRepo port.UserRepository, notifier port.Notifier, frontendBaseURL string, logger Logger) UserService {
	return &userServiceImpl{
		userRepo:        userRepo,
		notifier:        notifier,
		frontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
		logger:          logger,
	}
}

// Register creates an activated account. Intended for initial setup of
// admin/direction/student accounts; teachers normally join via invite.
func (s *userServiceImpl) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	role, err := entity.ParseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("role %q: %w", in.Role, entity.ErrInvalidArgument)
	}
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", entity.ErrInvalidArgument)
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		return nil, fmt.Errorf("%v: %w", err, entity.ErrInvalidArgument)
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%v: %w", err, entity.ErrInvalidArgument)
	}

	existing, err := s.userRepo.GetByUsernameOrEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email uniqueness: %w", err)
	}
	if existing == nil {
		existing, err = s.userRepo.GetByUsernameOrEmail(ctx, in.Username)
		if err != nil {
			return nil, fmt.Errorf("check username uniqueness: %w", err)
		}
	}
	if existing != nil {
		return nil, fmt.Errorf("username or email already exists: %w", entity.ErrConflict)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		Role:         role,
		IsActivated:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", "error", err, "email", in.Email)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Authenticate verifies an identifier/password pair and returns the
// matching activated user.
func (s *userServiceImpl) Authenticate(ctx context.Context, identifier, password string) (*entity.User, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActivated {
		return nil, ErrNotActivated
	}
	return user, nil
}

// InviteTeacher creates an inactive TEACHER account with a one-time
// registration token and emails the completion link. The invite email
// is best effort; a transport failure leaves the account in place and
// is reported as a degraded delivery.
func (s *userServiceImpl) InviteTeacher(ctx context.Context, email, fullName string) (*entity.User, port.Delivery, error) {
	var delivery port.Delivery

	if email == "" || fullName == "" {
		return nil, delivery, fmt.Errorf("email and full name are required: %w", entity.ErrInvalidArgument)
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, delivery, fmt.Errorf("%v: %w", err, entity.ErrInvalidArgument)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, delivery, fmt.Errorf("check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, delivery, fmt.Errorf("a user with email %s already exists: %w", email, entity.ErrConflict)
	}

	now := time.Now().UTC()
	user := &entity.User{
		Username:          email,
		Email:             email,
		FullName:          fullName,
		Role:              entity.RoleTeacher,
		IsActivated:       false,
		RegistrationToken: uuid.NewString(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create invited teacher", "error", err, "email", email)
		return nil, delivery, fmt.Errorf("create user: %w", err)
	}

	link := fmt.Sprintf("%s/complete-registration?token=%s", s.frontendBaseURL, user.RegistrationToken)
	sendErr := s.notifier.Send(email,
		"You're invited to Course Management Platform",
		fmt.Sprintf("Hi %s,\n\nYou've been invited to join as a teacher.\nClick the link to set your password: %s", fullName, link))
	if sendErr != nil {
		s.logger.Error("Failed to send invite email", "error", sendErr, "email", email)
	}
	delivery.Add(sendErr)

	s.logger.Info("Teacher invited", "user_id", user.ID, "email", email, "invite_sent", sendErr == nil)
	return user, delivery, nil
}

// CompleteRegistration redeems an invite token: sets the password,
// activates the account and burns the token.
func (s *userServiceImpl) CompleteRegistration(ctx context.Context, token, password string) (*entity.User, error) {
	if token == "" || password == "" {
		return nil, fmt.Errorf("token and password are required: %w", entity.ErrInvalidArgument)
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%v: %w", err, entity.ErrInvalidArgument)
	}

	user, err := s.userRepo.GetByRegistrationToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get user by token: %w", err)
	}
	if user == nil || user.IsActivated {
		return nil, ErrInvalidToken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hash
	user.IsActivated = true
	user.RegistrationToken = ""
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to activate user", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("Registration completed", "user_id", user.ID)
	return user, nil
}

// GetByID resolves a user by id.
func (s *userServiceImpl) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, entity.ErrNotFound)
	}
	return user, nil
}

// GetByEmail resolves a user by email.
func (s *userServiceImpl) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", email, entity.ErrNotFound)
	}
	return user, nil
}

// ListByRole lists all users holding a role.
func (s *userServiceImpl) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	users, err := s.userRepo.FindByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}
