package repository

import (
	"context"

	"greenpoints/internal/domain/entity"

	"github.com/google/uuid"
)

// PointLogRepository is append-only: there is no update or delete.
type PointLogRepository interface {
	// Append inserts log and sets its sequence ID.
	Append(ctx context.Context, log *entity.PointLog) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*entity.PointLog, error)
	List(ctx context.Context) ([]*entity.PointLog, error)
}
