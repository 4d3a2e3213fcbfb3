package persistence

import (
	"context"

	appreport "github.com/ngo-pm/backend/internal/application/report"
	"github.com/ngo-pm/backend/internal/domain/project"
	"github.com/ngo-pm/backend/internal/domain/report"
	"gorm.io/gorm"
)

// GormTransactionScope implements the report TransactionScope using GORM
// transactions. If fn returns an error the transaction is rolled back.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appreport.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ReportRepo returns the report repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ReportRepo() report.Repository {
	return NewGormProgressReportRepository(r.tx)
}

// ProjectRepo returns the project repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProjectRepo() project.Repository {
	return NewGormProjectRepository(r.tx)
}

var (
	_ appreport.TransactionScope          = (*GormTransactionScope)(nil)
	_ appreport.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
