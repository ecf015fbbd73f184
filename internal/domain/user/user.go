package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	"github.com/google/uuid"
)

// Role distinguishes administrators from rental customers.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// ParseRole converts a string to a Role, returning an error if invalid.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}

// User is the aggregate root for the account domain.
type User struct {
	id           uuid.UUID
	name         string
	email        string
	passwordHash string
	phone        string
	role         Role
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates a new User aggregate.
func NewUser(name, email, passwordHash, phone string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("a valid email is required")
	}
	if passwordHash == "" {
		return nil, domain.NewValidationError("password is required")
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid role: %s", role))
	}

	now := time.Now().UTC()
	return &User{
		id:           uuid.New(),
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		phone:        strings.TrimSpace(phone),
		role:         role,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(id uuid.UUID, name, email, passwordHash, phone string, role Role, createdAt, updatedAt time.Time) *User {
	return &User{
		id:           id,
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		phone:        phone,
		role:         role,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the user's unique identifier.
func (u *User) ID() uuid.UUID { return u.id }

// Name returns the user's display name.
func (u *User) Name() string { return u.name }

// Email returns the user's email address, lowercased.
func (u *User) Email() string { return u.email }

// PasswordHash returns the bcrypt hash of the user's password.
func (u *User) PasswordHash() string { return u.passwordHash }

// Phone returns the user's phone number.
func (u *User) Phone() string { return u.phone }

// Role returns the user's role.
func (u *User) Role() Role { return u.role }

// CreatedAt returns the creation timestamp.
func (u *User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// UpdateName changes the user's display name.
func (u *User) UpdateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewValidationError("name is required")
	}
	u.name = name
	u.updatedAt = time.Now().UTC()
	return nil
}

// UpdateEmail changes the user's email address.
func (u *User) UpdateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.NewValidationError("a valid email is required")
	}
	u.email = email
	u.updatedAt = time.Now().UTC()
	return nil
}

// UpdatePhone changes the user's phone number.
func (u *User) UpdatePhone(phone string) {
	u.phone = strings.TrimSpace(phone)
	u.updatedAt = time.Now().UTC()
}

// ChangeRole changes the user's role.
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid role: %s", role))
	}
	u.role = role
	u.updatedAt = time.Now().UTC()
	return nil
}
