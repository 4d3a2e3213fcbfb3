package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/identity"
)

// RegisterOrganizationRequest creates an organization and its first admin
type RegisterOrganizationRequest struct {
	Name         string         `json:"name" binding:"required,min=1,max=200"`
	ContactEmail string         `json:"contact_email" binding:"required,email"`
	Country      string         `json:"country" binding:"omitempty,len=2"`
	Admin        NewUserRequest `json:"admin" binding:"required"`
}

// NewUserRequest describes a user to create
type NewUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
}

// AddMemberRequest adds a user to an organization
type AddMemberRequest struct {
	NewUserRequest
	Role string `json:"role" binding:"required,oneof=admin officer"`
}

// ChangeRoleRequest changes a member's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin officer"`
}

// ChangePasswordRequest changes the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// LoginRequest authenticates a user
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// OrganizationResponse represents an organization in API responses
type OrganizationResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ContactEmail string    `json:"contact_email"`
	Country      string    `json:"country,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	FullName       string     `json:"full_name"`
	Role           string     `json:"role"`
	Active         bool       `json:"active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RegistrationResponse is returned after registering an organization
type RegistrationResponse struct {
	Organization OrganizationResponse `json:"organization"`
	Admin        UserResponse         `json:"admin"`
}

// LoginResponse carries the issued tokens
type LoginResponse struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  UserResponse `json:"user"`
}

// ToOrganizationResponse converts a domain Organization
func ToOrganizationResponse(o *identity.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:           o.ID,
		Name:         o.Name,
		Slug:         o.Slug,
		ContactEmail: o.ContactEmail,
		Country:      o.Country,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
	}
}

// ToUserResponse converts a domain User
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.FullName(),
		Role:           string(u.Role),
		Active:         u.Active,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}
