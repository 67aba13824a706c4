package unitofwork

import (
	"context"

	"deepsight-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	FacilityRepository() contract.FacilityRepository
	SearchLogRepository() contract.SearchLogRepository
}
