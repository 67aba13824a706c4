package contract

import (
	"context"

	"deepsight-be/internal/entity"
	"deepsight-be/internal/repository/specification"
)

type SearchLogRepository interface {
	// GetByDevice returns nil, nil when the device has no log yet.
	GetByDevice(ctx context.Context, deviceId string) (*entity.SearchLog, error)
	// UpsertAppend creates the device's log with entry as its history, or
	// appends entry to the existing history. It is atomic per device. The
	// returned flag reports whether the log was created.
	UpsertAppend(ctx context.Context, deviceId, entry string) (*entity.SearchLog, bool, error)
	// FindRecent returns the most recently updated logs first.
	FindRecent(ctx context.Context, limit int) ([]*entity.SearchLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
