package user

import (
	"errors"
	"strings"
	"time"
)

// Role is a user role as stored in the `users` table.
type Role string

const (
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
)

// User is the minimal account record rides reference.
type User struct {
	ID        string
	Email     string
	Role      Role
	CreatedAt time.Time
}

var ErrIDRequired = errors.New("user id is required")

// NewRider builds a rider account record.
func NewRider(id, email string) (*User, error) {
	if id = strings.TrimSpace(id); id == "" {
		return nil, ErrIDRequired
	}
	return &User{
		ID:        id,
		Email:     strings.TrimSpace(email),
		Role:      RoleRider,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// String returns the string representation of the Role.
func (role Role) String() string {
	return string(role)
}
