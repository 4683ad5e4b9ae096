package entity

import "time"

// User is a directory principal. Courses and absence requests hold
// non-owning references to users by id; user lifecycle is independent.
type User struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	PasswordHash      string    `json:"-"`
	Role              Role      `json:"role"`
	IsActivated       bool      `json:"is_activated"`
	RegistrationToken string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DisplayName returns the user's full name, or a placeholder when the
// profile was never completed.
func (u *User) DisplayName() string {
	if u == nil || u.FullName == "" {
		return "Unknown Teacher"
	}
	return u.FullName
}
