package identity

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/ngo-pm/backend/internal/domain/shared"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// OrganizationStatus represents the status of an organization
type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "active"
	OrganizationStatusSuspended OrganizationStatus = "suspended"
)

// Organization is the tenant boundary: projects, reports and users belong to
// exactly one organization, and overdue alerts go to all of its members.
type Organization struct {
	shared.BaseAggregateRoot
	Name         string
	Slug         string
	ContactEmail string
	Country      string
	Status       OrganizationStatus
}

// NewOrganization creates an active organization
func NewOrganization(name, contactEmail, country string) (*Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Organization name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Organization name cannot exceed 200 characters")
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Organization name must contain letters or digits")
	}
	email, err := normalizeEmail(contactEmail)
	if err != nil {
		return nil, err
	}

	return &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		ContactEmail:      email,
		Country:           strings.ToUpper(strings.TrimSpace(country)),
		Status:            OrganizationStatusActive,
	}, nil
}

// IsActive reports whether members can use the organization
func (o *Organization) IsActive() bool {
	return o.Status == OrganizationStatusActive
}

// Suspend blocks logins for the organization
func (o *Organization) Suspend() error {
	if o.Status == OrganizationStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Organization is already suspended")
	}
	o.Status = OrganizationStatusSuspended
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Activate lifts a suspension
func (o *Organization) Activate() error {
	if o.Status == OrganizationStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Organization is already active")
	}
	o.Status = OrganizationStatusActive
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Slugify turns a display name into a URL-safe identifier: accents are
// stripped, letters lower-cased and every other run of characters becomes
// a single dash.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return email, nil
}
