package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/identity"
	"github.com/ngo-pm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrganizationService handles organization registration and lookup
type OrganizationService struct {
	orgRepo  identity.OrganizationRepository
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(orgRepo identity.OrganizationRepository, userRepo identity.UserRepository, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{orgRepo: orgRepo, userRepo: userRepo, logger: logger}
}

// Register creates an organization together with its first administrator
func (s *OrganizationService) Register(ctx context.Context, req RegisterOrganizationRequest) (*RegistrationResponse, error) {
	org, err := identity.NewOrganization(req.Name, req.ContactEmail, req.Country)
	if err != nil {
		return nil, err
	}

	exists, err := s.orgRepo.ExistsBySlug(ctx, org.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An organization with this name already exists")
	}

	admin, err := identity.NewUser(org.ID, req.Admin.Email, req.Admin.FirstName, req.Admin.LastName, req.Admin.Password, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, admin.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	if err := s.orgRepo.CreateWithAdmin(ctx, org, admin); err != nil {
		return nil, err
	}

	s.logger.Info("Organization registered",
		zap.String("organization_id", org.ID.String()),
		zap.String("slug", org.Slug),
		zap.String("admin_id", admin.ID.String()),
	)
	return &RegistrationResponse{
		Organization: ToOrganizationResponse(org),
		Admin:        ToUserResponse(admin),
	}, nil
}

// GetByID returns an organization
func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrganizationResponse(org)
	return &resp, nil
}
