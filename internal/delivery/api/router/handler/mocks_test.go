package handler

import (
	"context"

	"greenpoints/internal/domain/entity"
	"greenpoints/internal/usecase"

	"github.com/stretchr/testify/mock"
)

type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) RequestLogin(ctx context.Context, input usecase.RequestLoginInput) (*usecase.RequestLoginOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.RequestLoginOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) VerifyLogin(ctx context.Context, input usecase.VerifyLoginInput) (*usecase.VerifyLoginOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.VerifyLoginOutput)

	return out, args.Error(1)
}

type mockRedemptionUsecase struct {
	mock.Mock
}

func (m *mockRedemptionUsecase) IssueCode(ctx context.Context, actor entity.Actor, points int64) (*entity.TransactionCode, error) {
	args := m.Called(ctx, actor, points)
	code, _ := args.Get(0).(*entity.TransactionCode)

	return code, args.Error(1)
}

func (m *mockRedemptionUsecase) RedeemCode(ctx context.Context, actor entity.Actor, rawCode string) (*usecase.Redemption, error) {
	args := m.Called(ctx, actor, rawCode)
	redemption, _ := args.Get(0).(*usecase.Redemption)

	return redemption, args.Error(1)
}

func (m *mockRedemptionUsecase) MerchantCodes(ctx context.Context, actor entity.Actor) ([]*entity.TransactionCode, error) {
	args := m.Called(ctx, actor)
	codes, _ := args.Get(0).([]*entity.TransactionCode)

	return codes, args.Error(1)
}

func (m *mockRedemptionUsecase) AccountHistory(ctx context.Context, actor entity.Actor) (*usecase.AccountOverview, error) {
	args := m.Called(ctx, actor)
	overview, _ := args.Get(0).(*usecase.AccountOverview)

	return overview, args.Error(1)
}

func (m *mockRedemptionUsecase) CodeQR(ctx context.Context, actor entity.Actor, code string) ([]byte, error) {
	args := m.Called(ctx, actor, code)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}

type mockAdminUsecase struct {
	mock.Mock
}

func (m *mockAdminUsecase) Export(ctx context.Context, actor entity.Actor) (*usecase.Snapshot, error) {
	args := m.Called(ctx, actor)
	snapshot, _ := args.Get(0).(*usecase.Snapshot)

	return snapshot, args.Error(1)
}

func (m *mockAdminUsecase) Promote(ctx context.Context, actor entity.Actor, email string) (*entity.Account, error) {
	args := m.Called(ctx, actor, email)
	account, _ := args.Get(0).(*entity.Account)

	return account, args.Error(1)
}
