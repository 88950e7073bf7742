package sqlstore

import (
	"context"
	"time"

	"greenpoints/internal/domain/entity"
	domainerrors "greenpoints/internal/domain/errors"
	"greenpoints/internal/domain/repository"
	"greenpoints/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type codeRepository struct {
	db *gorm.DB
}

// NewCodeRepository returns a CodeRepository bound to db, which may be a transaction.
func NewCodeRepository(db *gorm.DB) repository.CodeRepository {
	return &codeRepository{db: db}
}

func (repo *codeRepository) Create(ctx context.Context, code *entity.TransactionCode) error {
	m := model.FromTransactionCode(code)
	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrCodeExists
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create transaction code")
	}

	code.CreatedAt = m.CreatedAt

	return nil
}

func (repo *codeRepository) FindByCode(ctx context.Context, code string) (*entity.TransactionCode, error) {
	var m model.TransactionCodeModel
	if err := repo.db.WithContext(ctx).Where("code = ?", code).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCodeNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find transaction code")
	}

	return m.ToEntity(), nil
}

// MarkUsed is the compare-and-swap at the heart of redemption: only the caller whose
// UPDATE matches "used = false" wins, every other caller sees zero rows.
func (repo *codeRepository) MarkUsed(ctx context.Context, code string, accountID uuid.UUID, at time.Time) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&model.TransactionCodeModel{}).
		Where("code = ? AND used = ?", code, false).
		Updates(map[string]any{
			"used":    true,
			"used_at": at,
			"used_by": accountID,
		})
	if res.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(res.Error, "failed to mark transaction code used")
	}

	return res.RowsAffected == 1, nil
}

func (repo *codeRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entity.TransactionCode, error) {
	return repo.list(ctx, repo.db.Where("merchant_id = ?", merchantID))
}

func (repo *codeRepository) List(ctx context.Context) ([]*entity.TransactionCode, error) {
	return repo.list(ctx, repo.db)
}

func (repo *codeRepository) list(ctx context.Context, q *gorm.DB) ([]*entity.TransactionCode, error) {
	var rows []model.TransactionCodeModel
	if err := q.WithContext(ctx).Order("created_at DESC").Order("code ASC").Find(&rows).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list transaction codes")
	}

	codes := make([]*entity.TransactionCode, 0, len(rows))
	for i := range rows {
		codes = append(codes, rows[i].ToEntity())
	}

	return codes, nil
}
