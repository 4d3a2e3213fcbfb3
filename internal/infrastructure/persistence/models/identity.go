package models

import (
	"time"

	"github.com/ngo-pm/backend/internal/domain/identity"
)

// OrganizationModel is the persistence model for the Organization aggregate.
type OrganizationModel struct {
	AggregateModel
	Name         string                      `gorm:"type:varchar(200);not null"`
	Slug         string                      `gorm:"type:varchar(200);not null;uniqueIndex"`
	ContactEmail string                      `gorm:"type:varchar(255);not null"`
	Country      string                      `gorm:"type:varchar(10)"`
	Status       identity.OrganizationStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (OrganizationModel) TableName() string {
	return "organizations"
}

// ToDomain converts the persistence model to a domain Organization.
func (m *OrganizationModel) ToDomain() *identity.Organization {
	return &identity.Organization{
		BaseAggregateRoot: m.root(),
		Name:              m.Name,
		Slug:              m.Slug,
		ContactEmail:      m.ContactEmail,
		Country:           m.Country,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Organization.
func (m *OrganizationModel) FromDomain(o *identity.Organization) {
	m.setRoot(o.BaseAggregateRoot)
	m.Name = o.Name
	m.Slug = o.Slug
	m.ContactEmail = o.ContactEmail
	m.Country = o.Country
	m.Status = o.Status
}

// OrganizationModelFromDomain creates a new persistence model from a domain Organization.
func OrganizationModelFromDomain(o *identity.Organization) *OrganizationModel {
	m := &OrganizationModel{}
	m.FromDomain(o)
	return m
}

// UserModel is the persistence model for the User aggregate.
type UserModel struct {
	OrgAggregateModel
	Email        string        `gorm:"type:varchar(255);not null;uniqueIndex"`
	FirstName    string        `gorm:"type:varchar(100);not null"`
	LastName     string        `gorm:"type:varchar(100)"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	Role         identity.Role `gorm:"type:varchar(20);not null;default:'officer'"`
	Active       bool          `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		OrgAggregateRoot: m.orgRoot(),
		Email:            m.Email,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		PasswordHash:     m.PasswordHash,
		Role:             m.Role,
		Active:           m.Active,
		LastLoginAt:      m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User.
func (m *UserModel) FromDomain(u *identity.User) {
	m.setOrgRoot(u.OrgAggregateRoot)
	m.Email = u.Email
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.Active = u.Active
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
