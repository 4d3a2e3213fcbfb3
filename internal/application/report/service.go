// Package report implements the progress report workflow: officers submit,
// administrators approve or reject, and approval moves project progress.
package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/project"
	"github.com/ngo-pm/backend/internal/domain/report"
	"github.com/ngo-pm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReportService handles progress report operations
type ReportService struct {
	reportRepo  report.Repository
	projectRepo project.Repository
	txScope     TransactionScope
	logger      *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	reportRepo report.Repository,
	projectRepo project.Repository,
	txScope TransactionScope,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reportRepo:  reportRepo,
		projectRepo: projectRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// Submit records a new report against an open project
func (s *ReportService) Submit(ctx context.Context, orgID, projectID uuid.UUID, req SubmitReportRequest) (*ReportResponse, error) {
	p, err := s.projectRepo.FindByIDForOrg(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot report on a "+p.Status.String()+" project")
	}

	progress := 0
	if req.Progress != nil {
		progress = *req.Progress
	}
	r, err := report.NewProgressReport(orgID, projectID, req.SubmittedBy, req.Title, req.Summary, progress)
	if err != nil {
		return nil, err
	}
	if err := s.reportRepo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("Progress report submitted",
		zap.String("report_id", r.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.Int("progress", progress),
	)
	resp := ToReportResponse(r)
	return &resp, nil
}

// Approve accepts a pending report and copies its progress onto the project
func (s *ReportService) Approve(ctx context.Context, orgID, reportID uuid.UUID, req ReviewReportRequest) (*ReportResponse, error) {
	var approved *report.ProgressReport

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := repos.ReportRepo().FindByIDForOrg(ctx, orgID, reportID)
		if err != nil {
			return err
		}
		p, err := repos.ProjectRepo().FindByIDForOrg(ctx, orgID, r.ProjectID)
		if err != nil {
			return err
		}

		if err := r.Approve(req.ReviewedBy, req.Note); err != nil {
			return err
		}
		if err := p.UpdateProgress(r.Progress); err != nil {
			return err
		}

		if err := repos.ReportRepo().Save(ctx, r); err != nil {
			return err
		}
		if err := repos.ProjectRepo().Save(ctx, p); err != nil {
			return err
		}
		approved = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Progress report approved",
		zap.String("report_id", approved.ID.String()),
		zap.String("project_id", approved.ProjectID.String()),
		zap.Int("progress", approved.Progress),
	)
	resp := ToReportResponse(approved)
	return &resp, nil
}

// Reject sends a pending report back with a note
func (s *ReportService) Reject(ctx context.Context, orgID, reportID uuid.UUID, req ReviewReportRequest) (*ReportResponse, error) {
	r, err := s.reportRepo.FindByIDForOrg(ctx, orgID, reportID)
	if err != nil {
		return nil, err
	}
	if err := r.Reject(req.ReviewedBy, req.Note); err != nil {
		return nil, err
	}
	if err := s.reportRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	resp := ToReportResponse(r)
	return &resp, nil
}

// GetByID returns one report
func (s *ReportService) GetByID(ctx context.Context, orgID, reportID uuid.UUID) (*ReportResponse, error) {
	r, err := s.reportRepo.FindByIDForOrg(ctx, orgID, reportID)
	if err != nil {
		return nil, err
	}
	resp := ToReportResponse(r)
	return &resp, nil
}

// ListByProject returns every report of a project, newest first
func (s *ReportService) ListByProject(ctx context.Context, orgID, projectID uuid.UUID) ([]ReportResponse, error) {
	if _, err := s.projectRepo.FindByIDForOrg(ctx, orgID, projectID); err != nil {
		return nil, err
	}
	reports, err := s.reportRepo.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	return ToReportResponses(reports), nil
}

// ListPending returns the organization's reports awaiting review
func (s *ReportService) ListPending(ctx context.Context, orgID uuid.UUID) ([]ReportResponse, error) {
	reports, err := s.reportRepo.ListPending(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return ToReportResponses(reports), nil
}
