package sqlstore

import (
	"context"

	"greenpoints/internal/domain/entity"
	domainerrors "greenpoints/internal/domain/errors"
	"greenpoints/internal/domain/repository"
	"greenpoints/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type pointLogRepository struct {
	db *gorm.DB
}

// NewPointLogRepository returns a PointLogRepository bound to db, which may be a transaction.
func NewPointLogRepository(db *gorm.DB) repository.PointLogRepository {
	return &pointLogRepository{db: db}
}

func (repo *pointLogRepository) Append(ctx context.Context, log *entity.PointLog) error {
	m := model.FromPointLog(log)
	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to append point log")
	}

	log.ID = m.ID
	log.CreatedAt = m.CreatedAt

	return nil
}

func (repo *pointLogRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*entity.PointLog, error) {
	return repo.list(ctx, repo.db.Where("account_id = ?", accountID))
}

func (repo *pointLogRepository) List(ctx context.Context) ([]*entity.PointLog, error) {
	return repo.list(ctx, repo.db)
}

// Newest first; the sequence id breaks ties within one timestamp.
func (repo *pointLogRepository) list(ctx context.Context, q *gorm.DB) ([]*entity.PointLog, error) {
	var rows []model.PointLogModel
	if err := q.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list point logs")
	}

	logs := make([]*entity.PointLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].ToEntity())
	}

	return logs, nil
}
