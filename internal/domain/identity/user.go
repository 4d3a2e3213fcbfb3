package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is a member's permission level inside an organization
type Role string

const (
	// RoleAdmin manages projects, reviews reports and members
	RoleAdmin Role = "admin"
	// RoleOfficer submits progress reports
	RoleOfficer Role = "officer"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleOfficer
}

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
	bcryptCost        = bcrypt.DefaultCost
)

var nameCaser = cases.Title(language.Und)

// User is a member of one organization
type User struct {
	shared.OrgAggregateRoot
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	Active       bool
	LastLoginAt  *time.Time
}

// NewUser creates an active member with a hashed password
func NewUser(orgID uuid.UUID, email, firstName, lastName, password string, role Role) (*User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be admin or officer")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	return &User{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Email:            normalized,
		FirstName:        nameCaser.String(firstName),
		LastName:         nameCaser.String(strings.TrimSpace(lastName)),
		PasswordHash:     hash,
		Role:             role,
		Active:           true,
	}, nil
}

// FullName returns "First Last", or just the first name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user administers the organization
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasEmail reports whether the user can receive email
func (u *User) HasEmail() bool {
	return strings.TrimSpace(u.Email) != ""
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password after verifying the current one
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Touch()
	u.IncrementVersion()
	return nil
}

// ChangeRole moves the user between admin and officer
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be admin or officer")
	}
	u.Role = role
	u.Touch()
	u.IncrementVersion()
	return nil
}

// Deactivate blocks the user from logging in. Deactivated users keep
// receiving organization notifications while they have an email.
func (u *User) Deactivate() {
	u.Active = false
	u.Touch()
	u.IncrementVersion()
}

// Activate re-enables login
func (u *User) Activate() {
	u.Active = true
	u.Touch()
	u.IncrementVersion()
}

// RecordLogin stores the time of a successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewDomainErrorWithCause("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}
	return string(hash), nil
}
