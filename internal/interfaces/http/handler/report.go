package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/application/report"
)

// ReportHandler handles progress report HTTP requests
type ReportHandler struct {
	BaseHandler
	reportService *report.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *report.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Submit godoc
// @Summary      Submit a progress report
// @Tags         reports
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Project ID" format(uuid)
// @Param        request body report.SubmitReportRequest true "Report"
// @Success      201 {object} dto.Response{data=report.ReportResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /projects/{id}/reports [post]
func (h *ReportHandler) Submit(c *gin.Context) {
	orgID, userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req report.SubmitReportRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.SubmittedBy = userID

	result, err := h.reportService.Submit(c.Request.Context(), orgID, projectID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListByProject lists the reports of one project, newest first
func (h *ReportHandler) ListByProject(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	reports, err := h.reportService.ListByProject(c.Request.Context(), orgID, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reports)
}

// ListPending lists the reports awaiting review
func (h *ReportHandler) ListPending(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	reports, err := h.reportService.ListPending(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reports)
}

// Get returns one report
func (h *ReportHandler) Get(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.reportService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Approve godoc
// @Summary      Approve a report
// @Description  The project's progress becomes the report's progress
// @Tags         reports
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Report ID" format(uuid)
// @Param        request body report.ReviewReportRequest false "Review note"
// @Success      200 {object} dto.Response{data=report.ReportResponse}
// @Router       /reports/{id}/approve [post]
func (h *ReportHandler) Approve(c *gin.Context) {
	h.review(c, h.reportService.Approve)
}

// Reject rejects a report; the note is mandatory
func (h *ReportHandler) Reject(c *gin.Context) {
	h.review(c, h.reportService.Reject)
}

type reviewFunc func(ctx context.Context, orgID, reportID uuid.UUID, req report.ReviewReportRequest) (*report.ReportResponse, error)

func (h *ReportHandler) review(c *gin.Context, fn reviewFunc) {
	orgID, userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req report.ReviewReportRequest
	// Approvals may come without a body
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	req.ReviewedBy = userID

	result, err := fn(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
