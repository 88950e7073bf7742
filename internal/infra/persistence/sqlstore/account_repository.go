package sqlstore

import (
	"context"

	"greenpoints/internal/domain/entity"
	domainerrors "greenpoints/internal/domain/errors"
	"greenpoints/internal/domain/repository"
	"greenpoints/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns an AccountRepository bound to db, which may be a transaction.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	var m model.AccountModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find account by id")
	}

	return m.ToEntity(), nil
}

func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var m model.AccountModel
	if err := repo.db.WithContext(ctx).Where("email = ?", email).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find account by email")
	}

	return m.ToEntity(), nil
}

func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	if account.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate account id")
		}
		account.ID = id
	}

	m := model.FromAccount(account)
	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrAccountEmailTaken
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	account.CreatedAt = m.CreatedAt
	account.UpdatedAt = m.UpdatedAt

	return nil
}

func (repo *accountRepository) UpdateRole(ctx context.Context, id uuid.UUID, role entity.Role) error {
	res := repo.db.WithContext(ctx).Model(&model.AccountModel{}).
		Where("id = ?", id).
		Update("role", role.String())
	if res.Error != nil {
		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to update account role")
	}
	if res.RowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	return nil
}

func (repo *accountRepository) IncrementBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	res := repo.db.WithContext(ctx).Model(&model.AccountModel{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		if isCheckConstraintViolation(res.Error) {
			return domainerrors.ErrInvalidPoints.WrapMessage("balance would become negative")
		}

		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to increment balance")
	}
	if res.RowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	return nil
}

func (repo *accountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	var rows []model.AccountModel
	if err := repo.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list accounts")
	}

	accounts := make([]*entity.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, rows[i].ToEntity())
	}

	return accounts, nil
}
