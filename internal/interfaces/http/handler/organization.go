package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ngo-pm/backend/internal/application/identity"
)

// OrganizationHandler handles organization registration and lookup
type OrganizationHandler struct {
	BaseHandler
	orgService *identity.OrganizationService
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(orgService *identity.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// Register godoc
// @Summary      Register an organization with its first admin
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterOrganizationRequest true "Organization and admin"
// @Success      201 {object} dto.Response{data=identity.RegistrationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /organizations [post]
func (h *OrganizationHandler) Register(c *gin.Context) {
	var req identity.RegisterOrganizationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.orgService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Current returns the caller's organization
func (h *OrganizationHandler) Current(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	org, err := h.orgService.GetByID(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, org)
}
