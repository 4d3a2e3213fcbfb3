// Package project holds the project use cases: CRUD, explicit status
// changes and deadline label lookups.
package project

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/project"
	"github.com/ngo-pm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProjectService handles project-related business operations
type ProjectService struct {
	repo   project.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(repo project.Repository, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the service clock
func (s *ProjectService) WithClock(now func() time.Time) *ProjectService {
	s.now = now
	return s
}

// Create creates a new active project
func (s *ProjectService) Create(ctx context.Context, orgID uuid.UUID, req CreateProjectRequest) (*ProjectResponse, error) {
	deadline, err := s.parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}

	budget := decimal.Zero
	if req.Budget != nil {
		budget = *req.Budget
	}

	p, err := project.NewProject(orgID, req.CreatedBy, req.Name, req.Description, budget, deadline)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Project created",
		zap.String("project_id", p.ID.String()),
		zap.String("organization_id", orgID.String()),
	)
	resp := ToProjectResponse(p, s.now())
	return &resp, nil
}

// GetByID returns one project of the organization
func (s *ProjectService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*ProjectResponse, error) {
	p, err := s.repo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToProjectResponse(p, s.now())
	return &resp, nil
}

// List returns a page of projects
func (s *ProjectService) List(ctx context.Context, orgID uuid.UUID, filter ProjectListFilter) ([]ProjectResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := project.ListFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
	}
	if filter.Status != "" {
		status, err := project.ParseStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Status = &status
	}

	projects, total, err := s.repo.List(ctx, orgID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	items := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		items[i] = ToProjectResponse(p, now)
	}
	return items, total, nil
}

// Update applies a partial update to the administrator-editable fields
func (s *ProjectService) Update(ctx context.Context, orgID, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	p, err := s.repo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name := p.Name
		description := p.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := p.Update(name, description); err != nil {
			return nil, err
		}
	}

	if req.Budget != nil {
		if err := p.SetBudget(*req.Budget); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearDeadline:
		p.SetDeadline(nil)
	case req.Deadline != nil:
		deadline, err := s.parseDeadline(req.Deadline)
		if err != nil {
			return nil, err
		}
		p.SetDeadline(deadline)
	}

	if req.Progress != nil {
		if err := p.UpdateProgress(*req.Progress); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	resp := ToProjectResponse(p, s.now())
	return &resp, nil
}

// ChangeStatus sets the project status explicitly. Moving a project out of
// overdue is only possible through here.
func (s *ProjectService) ChangeStatus(ctx context.Context, orgID, id uuid.UUID, req ChangeStatusRequest) (*ProjectResponse, error) {
	status, err := project.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	previous := p.Status
	if err := p.ChangeStatus(status); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Project status changed",
		zap.String("project_id", p.ID.String()),
		zap.String("from", previous.String()),
		zap.String("to", status.String()),
	)
	resp := ToProjectResponse(p, s.now())
	return &resp, nil
}

// Delete removes a project
func (s *ProjectService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.Delete(ctx, orgID, id)
}

// GetDeadlineStatus returns the display label for the project's deadline
func (s *ProjectService) GetDeadlineStatus(ctx context.Context, orgID, id uuid.UUID) (*DeadlineStatusResponse, error) {
	p, err := s.repo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return &DeadlineStatusResponse{
		ProjectID:      p.ID,
		Deadline:       formatDeadline(p.Deadline),
		DeadlineStatus: p.DeadlineStatus(s.now()),
	}, nil
}

// parseDeadline accepts a calendar date or an RFC 3339 timestamp
func (s *ProjectService) parseDeadline(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	raw := strings.TrimSpace(*value)

	if t, err := time.ParseInLocation(DeadlineLayout, raw, s.now().Location()); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	return nil, shared.NewDomainError("INVALID_DEADLINE", "Deadline must be a date in YYYY-MM-DD format")
}
