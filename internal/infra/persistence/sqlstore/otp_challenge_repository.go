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

type otpChallengeRepository struct {
	db *gorm.DB
}

// NewOTPChallengeRepository returns an OTPChallengeRepository bound to db, which may be a transaction.
func NewOTPChallengeRepository(db *gorm.DB) repository.OTPChallengeRepository {
	return &otpChallengeRepository{db: db}
}

func (repo *otpChallengeRepository) Create(ctx context.Context, challenge *entity.OTPChallenge) error {
	if challenge.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate challenge id")
		}
		challenge.ID = id
	}

	m := model.FromOTPChallenge(challenge)
	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create otp challenge")
	}

	challenge.CreatedAt = m.CreatedAt

	return nil
}

// FindLatestUnused orders by creation time, then by the time-ordered UUIDv7 id.
func (repo *otpChallengeRepository) FindLatestUnused(ctx context.Context, email string) (*entity.OTPChallenge, error) {
	var m model.OTPChallengeModel
	err := repo.db.WithContext(ctx).
		Where("email = ? AND used = ?", email, false).
		Order("created_at DESC").
		Order("id DESC").
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrChallengeNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find otp challenge")
	}

	return m.ToEntity(), nil
}

// ReserveAttempt increments attempts only while the challenge is unused and under the cap,
// so concurrent verifiers cannot be granted more comparisons than maxAttempts.
func (repo *otpChallengeRepository) ReserveAttempt(ctx context.Context, id uuid.UUID, maxAttempts int) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&model.OTPChallengeModel{}).
		Where("id = ? AND used = ? AND attempts < ?", id, false, maxAttempts).
		Update("attempts", gorm.Expr("attempts + 1"))
	if res.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(res.Error, "failed to reserve otp attempt")
	}

	return res.RowsAffected == 1, nil
}

func (repo *otpChallengeRepository) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&model.OTPChallengeModel{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if res.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(res.Error, "failed to consume otp challenge")
	}

	return res.RowsAffected == 1, nil
}
