package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ngo-pm/backend/internal/application/project"
)

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	BaseHandler
	projectService *project.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *project.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Create godoc
// @Summary      Create a project
// @Tags         projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body project.CreateProjectRequest true "Project"
// @Success      201 {object} dto.Response{data=project.ProjectResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	orgID, userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req project.CreateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = userID

	result, err := h.projectService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @Summary      List projects
// @Tags         projects
// @Security     BearerAuth
// @Produce      json
// @Param        status    query string false "Status filter"
// @Param        search    query string false "Name search"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]project.ProjectResponse}
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	var filter project.ProjectListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	projects, total, err := h.projectService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, projects, total, page, pageSize)
}

// Get returns one project
func (h *ProjectHandler) Get(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.projectService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Update applies a partial update
func (h *ProjectHandler) Update(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req project.UpdateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.projectService.Update(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangeStatus godoc
// @Summary      Set a project status explicitly
// @Description  The only way to move an overdue project back to active
// @Tags         projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Project ID" format(uuid)
// @Param        request body project.ChangeStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=project.ProjectResponse}
// @Router       /projects/{id}/status [put]
func (h *ProjectHandler) ChangeStatus(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req project.ChangeStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.projectService.ChangeStatus(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete removes a project
func (h *ProjectHandler) Delete(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), orgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeadlineStatus godoc
// @Summary      Deadline label of a project
// @Tags         projects
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response{data=project.DeadlineStatusResponse}
// @Router       /projects/{id}/deadline-status [get]
func (h *ProjectHandler) DeadlineStatus(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.projectService.GetDeadlineStatus(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
