package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ngo-pm/backend/internal/application/identity"
)

// MemberHandler manages the users of the caller's organization
type MemberHandler struct {
	BaseHandler
	memberService *identity.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *identity.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// List godoc
// @Summary      List organization members
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} dto.Response{data=[]identity.UserResponse}
// @Router       /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	members, err := h.memberService.ListMembers(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}

// Get returns one member
func (h *MemberHandler) Get(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	userID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	member, err := h.memberService.GetMember(c.Request.Context(), orgID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// Add godoc
// @Summary      Add a member
// @Tags         members
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body identity.AddMemberRequest true "New member"
// @Success      201 {object} dto.Response{data=identity.UserResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /members [post]
func (h *MemberHandler) Add(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	var req identity.AddMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}
	member, err := h.memberService.AddMember(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, member)
}

// ChangeRole moves a member between admin and officer
func (h *MemberHandler) ChangeRole(c *gin.Context) {
	orgID, actorID, ok := h.caller(c)
	if !ok {
		return
	}
	userID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req identity.ChangeRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	member, err := h.memberService.ChangeRole(c.Request.Context(), orgID, actorID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// Deactivate disables a member and revokes their tokens
func (h *MemberHandler) Deactivate(c *gin.Context) {
	orgID, actorID, ok := h.caller(c)
	if !ok {
		return
	}
	userID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	member, err := h.memberService.Deactivate(c.Request.Context(), orgID, actorID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// Activate re-enables a member
func (h *MemberHandler) Activate(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	userID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	member, err := h.memberService.Activate(c.Request.Context(), orgID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// ChangePassword changes the caller's own password
func (h *MemberHandler) ChangePassword(c *gin.Context) {
	orgID, userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req identity.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.memberService.ChangePassword(c.Request.Context(), orgID, userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
