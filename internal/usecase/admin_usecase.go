package usecase

import (
	"context"

	"greenpoints/internal/domain/entity"
)

// AdminUsecase is the audit surface. Every call re-checks the administrator allowlist.
type AdminUsecase interface {
	Export(ctx context.Context, actor entity.Actor) (*Snapshot, error)
	Promote(ctx context.Context, actor entity.Actor, email string) (*entity.Account, error)
}
