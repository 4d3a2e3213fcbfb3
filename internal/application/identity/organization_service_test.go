package identity

import (
	"context"
	"testing"

	"github.com/ngo-pm/backend/internal/domain/identity"
	"github.com/ngo-pm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validRegistration() RegisterOrganizationRequest {
	return RegisterOrganizationRequest{
		Name:         "Hope Foundation",
		ContactEmail: "info@hope.org",
		Country:      "ke",
		Admin: NewUserRequest{
			Email:     "Grace@Hope.org",
			FirstName: "grace",
			LastName:  "wanjiru",
			Password:  "correct-horse",
		},
	}
}

func TestOrganizationService_Register(t *testing.T) {
	t.Run("creates organization with admin", func(t *testing.T) {
		orgs := new(mockOrganizationRepository)
		users := new(mockUserRepository)
		orgs.On("ExistsBySlug", mock.Anything, "hope-foundation").Return(false, nil)
		users.On("ExistsByEmail", mock.Anything, "grace@hope.org").Return(false, nil)
		orgs.On("CreateWithAdmin", mock.Anything, mock.AnythingOfType("*identity.Organization"), mock.MatchedBy(func(u *identity.User) bool {
			return u.Role == identity.RoleAdmin && u.Active
		})).Return(nil)

		resp, err := NewOrganizationService(orgs, users, zap.NewNop()).Register(context.Background(), validRegistration())

		require.NoError(t, err)
		assert.Equal(t, "hope-foundation", resp.Organization.Slug)
		assert.Equal(t, "KE", resp.Organization.Country)
		assert.Equal(t, "admin", resp.Admin.Role)
		assert.Equal(t, "Grace Wanjiru", resp.Admin.FullName)
		assert.Equal(t, resp.Organization.ID, resp.Admin.OrganizationID)
		orgs.AssertExpectations(t)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		orgs := new(mockOrganizationRepository)
		users := new(mockUserRepository)
		orgs.On("ExistsBySlug", mock.Anything, "hope-foundation").Return(true, nil)

		_, err := NewOrganizationService(orgs, users, zap.NewNop()).Register(context.Background(), validRegistration())

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		orgs.AssertNotCalled(t, "CreateWithAdmin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin email already used", func(t *testing.T) {
		orgs := new(mockOrganizationRepository)
		users := new(mockUserRepository)
		orgs.On("ExistsBySlug", mock.Anything, "hope-foundation").Return(false, nil)
		users.On("ExistsByEmail", mock.Anything, "grace@hope.org").Return(true, nil)

		_, err := NewOrganizationService(orgs, users, zap.NewNop()).Register(context.Background(), validRegistration())

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("weak admin password", func(t *testing.T) {
		orgs := new(mockOrganizationRepository)
		orgs.On("ExistsBySlug", mock.Anything, mock.Anything).Return(false, nil)
		req := validRegistration()
		req.Admin.Password = "short"

		_, err := NewOrganizationService(orgs, new(mockUserRepository), zap.NewNop()).Register(context.Background(), req)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
	})
}
