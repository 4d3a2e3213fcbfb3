package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/identity"
	"github.com/ngo-pm/backend/internal/domain/shared"
	"github.com/ngo-pm/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// MemberService manages the users of an organization
type MemberService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewMemberService creates a new MemberService. tokenTTL bounds how long a
// deactivated member's revocation must be remembered.
func NewMemberService(userRepo identity.UserRepository, blacklist auth.TokenBlacklist, tokenTTL time.Duration, logger *zap.Logger) *MemberService {
	return &MemberService{userRepo: userRepo, blacklist: blacklist, tokenTTL: tokenTTL, logger: logger}
}

// AddMember creates a user in the organization
func (s *MemberService) AddMember(ctx context.Context, orgID uuid.UUID, req AddMemberRequest) (*UserResponse, error) {
	user, err := identity.NewUser(orgID, req.Email, req.FirstName, req.LastName, req.Password, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Member added",
		zap.String("organization_id", orgID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	resp := ToUserResponse(user)
	return &resp, nil
}

// ListMembers returns every user of the organization, inactive ones included
func (s *MemberService) ListMembers(ctx context.Context, orgID uuid.UUID) ([]UserResponse, error) {
	users, err := s.userRepo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out, nil
}

// GetMember returns one user of the organization
func (s *MemberService) GetMember(ctx context.Context, orgID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.findMember(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangeRole moves a member between admin and officer
func (s *MemberService) ChangeRole(ctx context.Context, orgID, actorID, userID uuid.UUID, req ChangeRoleRequest) (*UserResponse, error) {
	if actorID == userID {
		return nil, shared.NewDomainError("INVALID_OPERATION", "Administrators cannot change their own role")
	}
	user, err := s.findMember(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.ChangeRole(identity.Role(req.Role)); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Deactivate blocks a member from logging in and revokes their sessions.
// The member stays in the directory and keeps receiving overdue alerts.
func (s *MemberService) Deactivate(ctx context.Context, orgID, actorID, userID uuid.UUID) (*UserResponse, error) {
	if actorID == userID {
		return nil, shared.NewDomainError("INVALID_OPERATION", "Administrators cannot deactivate themselves")
	}
	user, err := s.findMember(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	user.Deactivate()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	if s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.tokenTTL); err != nil {
			s.logger.Warn("Failed to revoke sessions of deactivated member",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		}
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// Activate re-enables a member
func (s *MemberService) Activate(ctx context.Context, orgID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.findMember(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	user.Activate()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword changes the caller's own password
func (s *MemberService) ChangePassword(ctx context.Context, orgID, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.findMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

func (s *MemberService) findMember(ctx context.Context, orgID, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.BelongsTo(orgID) {
		return nil, shared.ErrNotFound
	}
	return user, nil
}
