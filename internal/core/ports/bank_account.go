package ports

import (
	"AccountActivation/internal/core/domain"
	"context"

	"github.com/google/uuid"
)

// BankAccountRepository defines persistence for bank accounts.
type BankAccountRepository interface {
	// GetByID returns a snapshot of the account, or a NotFound error.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error)

	// WithinTx runs fn in a transaction. It commits when fn returns nil
	// and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx AccountTx) error) error
}

// AccountTx is the transactional view of the repository.
type AccountTx interface {
	// GetForUpdate loads the account and locks it until the
	// transaction ends. Concurrent callers block on the lock.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error)

	// SaveFields writes only the named columns of acct.
	SaveFields(ctx context.Context, acct *domain.BankAccount, fields ...domain.Field) error
}
