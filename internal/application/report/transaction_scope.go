package report

import (
	"context"

	"github.com/ngo-pm/backend/internal/domain/project"
	"github.com/ngo-pm/backend/internal/domain/report"
)

// TransactionScope runs a review inside one database transaction so the
// report decision and the project progress change commit together.
type TransactionScope interface {
	// Execute runs fn within a transaction. If fn returns an error, the
	// transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current
// transaction
type TransactionalRepositories interface {
	ReportRepo() report.Repository
	ProjectRepo() project.Repository
}

// NoOpTransactionScope runs the function against plain repositories. Used in
// tests.
type NoOpTransactionScope struct {
	reportRepo  report.Repository
	projectRepo project.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(reportRepo report.Repository, projectRepo project.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{reportRepo: reportRepo, projectRepo: projectRepo}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ReportRepo returns the report repository
func (s *NoOpTransactionScope) ReportRepo() report.Repository {
	return s.reportRepo
}

// ProjectRepo returns the project repository
func (s *NoOpTransactionScope) ProjectRepo() project.Repository {
	return s.projectRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
