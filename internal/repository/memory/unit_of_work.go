package memory

import (
	"context"

	"deepsight-be/internal/repository/contract"
	"deepsight-be/internal/repository/unitofwork"
)

// RepositoryFactory serves in-process repositories. Transactions are no-ops:
// each repository method is already atomic on its own.
type RepositoryFactory struct {
	facilities *FacilityRepository
	searchLogs *SearchLogRepository
}

var _ unitofwork.RepositoryFactory = (*RepositoryFactory)(nil)

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{
		facilities: NewFacilityRepository(),
		searchLogs: NewSearchLogRepository(),
	}
}

func (f *RepositoryFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{factory: f}
}

type unitOfWork struct {
	factory *RepositoryFactory
}

func (u *unitOfWork) Begin(context.Context) error { return nil }
func (u *unitOfWork) Commit() error               { return nil }
func (u *unitOfWork) Rollback() error             { return nil }

func (u *unitOfWork) FacilityRepository() contract.FacilityRepository {
	return u.factory.facilities
}

func (u *unitOfWork) SearchLogRepository() contract.SearchLogRepository {
	return u.factory.searchLogs
}
