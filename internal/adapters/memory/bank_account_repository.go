// Package memory provides an in-process BankAccountRepository. It is used
// when no database is configured and by tests that need real locking.
package memory

import (
	"AccountActivation/internal/core/domain"
	"AccountActivation/internal/core/ports"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var _ ports.BankAccountRepository = (*BankAccountRepository)(nil) // Ensure compliance

// BankAccountRepository keeps accounts in a map. Each account has its own
// lock that a transaction holds from GetForUpdate until it ends, the same
// contract as SELECT ... FOR UPDATE.
type BankAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.BankAccount
	rowLocks map[uuid.UUID]*sync.Mutex
	log      zerolog.Logger
}

// NewBankAccountRepository creates an empty repository.
func NewBankAccountRepository(baseLogger *zerolog.Logger) *BankAccountRepository {
	return &BankAccountRepository{
		accounts: make(map[uuid.UUID]*domain.BankAccount),
		rowLocks: make(map[uuid.UUID]*sync.Mutex),
		log:      baseLogger.With().Str("component", "memory_bank_acct_repo").Logger(),
	}
}

// Create stores a new account. It stands in for the provisioning process.
func (r *BankAccountRepository) Create(ctx context.Context, acct *domain.BankAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[acct.ID]; exists {
		return fmt.Errorf("account %s already exists", acct.ID)
	}
	cp := acct.Clone()
	now := time.Now().UTC()
	cp.CreatedAt, cp.UpdatedAt = now, now
	r.accounts[acct.ID] = cp
	r.rowLocks[acct.ID] = &sync.Mutex{}
	r.log.Info().Str("acct_id", acct.ID.String()).Msg("Bank account created")
	return nil
}

// GetByID returns a copy of the stored account.
func (r *BankAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound("bank account")
	}
	return acct.Clone(), nil
}

// WithinTx stages writes and applies them only when fn succeeds.
func (r *BankAccountRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.AccountTx) error) error {
	tx := &memTx{repo: r, staged: make(map[uuid.UUID]*domain.BankAccount)}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}

func (r *BankAccountRepository) rowLock(id uuid.UUID) (*sync.Mutex, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.rowLocks[id]
	return l, ok
}

// memTx implements ports.AccountTx.
type memTx struct {
	repo   *BankAccountRepository
	locked []*sync.Mutex
	staged map[uuid.UUID]*domain.BankAccount
}

func (t *memTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	if acct, ok := t.staged[id]; ok {
		return acct.Clone(), nil
	}

	l, ok := t.repo.rowLock(id)
	if !ok {
		return nil, domain.ErrNotFound("bank account")
	}
	l.Lock()
	t.locked = append(t.locked, l)

	acct, err := t.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.staged[id] = acct
	return acct.Clone(), nil
}

func (t *memTx) SaveFields(ctx context.Context, acct *domain.BankAccount, fields ...domain.Field) error {
	staged, ok := t.staged[acct.ID]
	if !ok {
		return fmt.Errorf("account %s was not loaded for update", acct.ID)
	}

	for _, f := range fields {
		switch f {
		case domain.FieldKYCSubmitted:
			staged.KYCSubmitted = acct.KYCSubmitted
		case domain.FieldKYCVerified:
			staged.KYCVerified = acct.KYCVerified
		case domain.FieldVerificationDate:
			staged.VerificationDate = acct.Clone().VerificationDate
		case domain.FieldVerificationNotes:
			staged.VerificationNotes = acct.VerificationNotes
		case domain.FieldVerifiedBy:
			staged.VerifiedBy = acct.Clone().VerifiedBy
		case domain.FieldFullyActivated:
			staged.FullyActivated = acct.FullyActivated
		case domain.FieldAccountStatus:
			staged.AccountStatus = acct.AccountStatus
		default:
			return fmt.Errorf("unknown field %q", f)
		}
	}
	staged.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *memTx) commit() error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	for id, acct := range t.staged {
		if err := acct.CheckInvariants(); err != nil {
			return fmt.Errorf("account %s: %w", id, err)
		}
	}
	for id, acct := range t.staged {
		t.repo.accounts[id] = acct
	}
	return nil
}

func (t *memTx) release() {
	for _, l := range t.locked {
		l.Unlock()
	}
	t.locked = nil
}
