package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmasson/course-management/internal/auth"
	"github.com/lmasson/course-management/internal/domain/entity"
)

func newTestUserService(userRepo *mockUserRepo, notifier *mockNotifier) UserService {
	return NewUserService(userRepo, notifier, "https://app.example.edu/", &mockLogger{})
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name     string
		in       RegisterInput
		existing *entity.User
		wantErr  error
	}{
		{
			name: "valid registration",
			in: RegisterInput{
				Username: "jmartin", Email: "jmartin@example.edu",
				Password: "s3cret-pass", FullName: "Jean Martin", Role: "student",
			},
		},
		{
			name: "spring-style role prefix is accepted",
			in: RegisterInput{
				Username: "jmartin", Email: "jmartin@example.edu",
				Password: "s3cret-pass", Role: "ROLE_ADMIN",
			},
		},
		{
			name: "unknown role",
			in: RegisterInput{
				Username: "jmartin", Email: "jmartin@example.edu",
				Password: "s3cret-pass", Role: "PRINCIPAL",
			},
			wantErr: entity.ErrInvalidArgument,
		},
		{
			name: "missing fields",
			in:   RegisterInput{Role: "STUDENT"},
			wantErr: entity.ErrInvalidArgument,
		},
		{
			name: "malformed email",
			in: RegisterInput{
				Username: "jmartin", Email: "not-an-email",
				Password: "s3cret-pass", Role: "STUDENT",
			},
			wantErr: entity.ErrInvalidArgument,
		},
		{
			name: "short password",
			in: RegisterInput{
				Username: "jmartin", Email: "jmartin@example.edu",
				Password: "short", Role: "STUDENT",
			},
			wantErr: entity.ErrInvalidArgument,
		},
		{
			name: "duplicate email",
			in: RegisterInput{
				Username: "jmartin", Email: "jmartin@example.edu",
				Password: "s3cret-pass", Role: "STUDENT",
			},
			existing: &entity.User{ID: 2, Email: "jmartin@example.edu"},
			wantErr:  entity.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mockUserRepo{
				getByUsernameOrEmailFunc: func(ctx context.Context, identifier string) (*entity.User, error) {
					return tt.existing, nil
				},
			}
			svc := newTestUserService(userRepo, &mockNotifier{})

			user, err := svc.Register(context.Background(), tt.in)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, user.IsActivated, "direct registration activates immediately")
			assert.NotEqual(t, tt.in.Password, user.PasswordHash)
			assert.True(t, auth.CheckPassword(user.PasswordHash, tt.in.Password))
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)

	activated := &entity.User{
		ID: 7, Username: "mdupont", Email: "mdupont@example.edu",
		PasswordHash: hash, Role: entity.RoleTeacher, IsActivated: true,
	}
	pending := &entity.User{
		ID: 8, Username: "invited", Email: "invited@example.edu",
		PasswordHash: hash, Role: entity.RoleTeacher, IsActivated: false,
	}

	tests := []struct {
		name     string
		user     *entity.User
		password string
		wantErr  error
	}{
		{
			name:     "valid credentials",
			user:     activated,
			password: "s3cret-pass",
		},
		{
			name:     "unknown identifier",
			user:     nil,
			password: "s3cret-pass",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			user:     activated,
			password: "wrong",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "account not activated",
			user:     pending,
			password: "s3cret-pass",
			wantErr:  ErrNotActivated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mockUserRepo{
				getByUsernameOrEmailFunc: func(ctx context.Context, identifier string) (*entity.User, error) {
					return tt.user, nil
				},
			}
			svc := newTestUserService(userRepo, &mockNotifier{})

			user, err := svc.Authenticate(context.Background(), "mdupont", tt.password)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(7), user.ID)
		})
	}
}

func TestUserService_InviteTeacher(t *testing.T) {
	var created *entity.User
	userRepo := &mockUserRepo{
		createFunc: func(ctx context.Context, user *entity.User) error {
			user.ID = 20
			created = user
			return nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestUserService(userRepo, notifier)

	user, delivery, err := svc.InviteTeacher(context.Background(), "newteacher@example.edu", "Nora Lemaire")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, entity.RoleTeacher, user.Role)
	assert.False(t, user.IsActivated, "invited teachers stay inactive until they set a password")
	assert.NotEmpty(t, user.RegistrationToken)

	messages := notifier.messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "newteacher@example.edu", messages[0].Recipient)
	assert.Contains(t, messages[0].Body, "complete-registration?token="+user.RegistrationToken)
	assert.False(t, delivery.Degraded())
}

func TestUserService_InviteTeacher_DuplicateEmail(t *testing.T) {
	userRepo := &mockUserRepo{
		getByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
			return &entity.User{ID: 2, Email: email}, nil
		},
	}
	svc := newTestUserService(userRepo, &mockNotifier{})

	_, _, err := svc.InviteTeacher(context.Background(), "taken@example.edu", "Nora Lemaire")
	require.ErrorIs(t, err, entity.ErrConflict)
}

func TestUserService_InviteTeacher_EmailFailureKeepsAccount(t *testing.T) {
	var created *entity.User
	userRepo := &mockUserRepo{
		createFunc: func(ctx context.Context, user *entity.User) error {
			user.ID = 20
			created = user
			return nil
		},
	}
	notifier := &mockNotifier{sendErr: assert.AnError}
	svc := newTestUserService(userRepo, notifier)

	user, delivery, err := svc.InviteTeacher(context.Background(), "newteacher@example.edu", "Nora Lemaire")
	require.NoError(t, err, "a failed invite email does not undo account creation")
	require.NotNil(t, created)
	assert.NotEmpty(t, user.RegistrationToken)
	assert.True(t, delivery.Degraded())
}

func TestUserService_CompleteRegistration(t *testing.T) {
	invited := &entity.User{
		ID: 20, Email: "newteacher@example.edu",
		Role: entity.RoleTeacher, IsActivated: false,
		RegistrationToken: "token-abc",
	}

	tests := []struct {
		name    string
		user    *entity.User
		token   string
		wantErr error
	}{
		{
			name:  "valid token",
			user:  invited,
			token: "token-abc",
		},
		{
			name:    "unknown token",
			user:    nil,
			token:   "bogus",
			wantErr: ErrInvalidToken,
		},
		{
			name: "already activated account",
			user: &entity.User{
				ID: 21, IsActivated: true, RegistrationToken: "token-xyz",
			},
			token:   "token-xyz",
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var updated *entity.User
			userRepo := &mockUserRepo{
				getByRegistrationTokenFunc: func(ctx context.Context, token string) (*entity.User, error) {
					return tt.user, nil
				},
				updateFunc: func(ctx context.Context, user *entity.User) error {
					updated = user
					return nil
				},
			}
			svc := newTestUserService(userRepo, &mockNotifier{})

			user, err := svc.CompleteRegistration(context.Background(), tt.token, "fresh-password")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.True(t, user.IsActivated)
			assert.Empty(t, user.RegistrationToken, "the token is single use")
			assert.True(t, auth.CheckPassword(user.PasswordHash, "fresh-password"))
		})
	}
}
