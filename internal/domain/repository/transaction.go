package repository

import "context"

// TransactionManager runs a unit of work inside one database transaction.
// The use case layer depends on it instead of on a specific driver.
type TransactionManager interface {
	// Execute runs fn within a transaction. A non-nil error from fn rolls back; nil commits.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory hands out repositories bound to the current transaction.
type RepositoryFactory interface {
	AccountRepo() AccountRepository
	CodeRepo() CodeRepository
	PointLogRepo() PointLogRepository
	OTPChallengeRepo() OTPChallengeRepository
}
