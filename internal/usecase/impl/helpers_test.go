package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"greenpoints/config"
	"greenpoints/internal/domain/entity"
	"greenpoints/internal/domain/service"
	"greenpoints/internal/infra/auth"
	"greenpoints/internal/infra/codegen"
	"greenpoints/internal/infra/persistence/sqlstore"
	"greenpoints/internal/infra/qrcode"
	"greenpoints/internal/usecase"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.DSN = ":memory:"
	cfg.SecretKey.Session = "test-session-secret"
	cfg.SecretKey.OTP = "test-otp-secret"
	cfg.Session.TTL = time.Hour
	cfg.Session.Issuer = "greenpoints-test"
	cfg.Admin.Emails = "root@example.com"
	cfg.Points.Min = 1
	cfg.Points.Max = 999
	cfg.Code.Style = config.CodeStyleOpaque
	cfg.Code.Length = 8
	cfg.Code.MaxAttempts = 5
	cfg.OTP.TTL = 10 * time.Minute
	cfg.OTP.MaxAttempts = 3

	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()

	db, err := sqlstore.Open(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, sqlstore.Migrate(context.Background(), db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

type testEnv struct {
	cfg    *config.Config
	store  *ledgerStore
	hasher service.OTPHasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := newTestConfig()
	db := newTestDB(t, cfg)

	hasher, err := auth.NewOTPHasher(cfg)
	require.NoError(t, err)

	store := NewLedgerStore(LedgerStoreParams{
		TxManager: sqlstore.NewTransactionManager(db),
		Repos:     sqlstore.NewRepositoryFactory(db),
		Hasher:    hasher,
		Config:    cfg,
		Logger:    discardLogger(),
	}).(*ledgerStore)

	return &testEnv{cfg: cfg, store: store, hasher: hasher}
}

func (e *testEnv) redemptionService() usecase.RedemptionUsecase {
	return NewRedemptionService(RedemptionServiceParams{
		Store:     e.store,
		Generator: codegen.NewGenerator(e.cfg),
		QRService: qrcode.NewQRCodeService(128, "M"),
		Config:    e.cfg,
		Logger:    discardLogger(),
	})
}

func (e *testEnv) account(t *testing.T, email string, role entity.Role) *entity.Account {
	t.Helper()

	account, err := e.store.CreateAccount(context.Background(), email, role)
	require.NoError(t, err)

	return account
}

// fixedGenerator always yields the same code, forcing collisions.
type fixedGenerator struct {
	code string
}

func (g fixedGenerator) Generate(service.CodeStyle, int64) (string, error) {
	return g.code, nil
}

func (g fixedGenerator) Matches(service.CodeStyle, string) bool {
	return true
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, msg service.OTPMessage) error {
	args := m.Called(ctx, msg)

	return args.Error(0)
}
