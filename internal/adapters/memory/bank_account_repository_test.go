package memory

import (
	"AccountActivation/internal/core/domain"
	"AccountActivation/internal/core/ports"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*BankAccountRepository, *domain.BankAccount) {
	t.Helper()
	nopLogger := zerolog.Nop()
	repo := NewBankAccountRepository(&nopLogger)
	acct := &domain.BankAccount{
		ID:            uuid.New(),
		AccountNumber: "ACC-7",
		Owner:         domain.AccountOwner{ID: uuid.New(), FirstName: "Alan"},
		Currency:      "GBP",
		Balance:       decimal.NewFromInt(10),
		AccountStatus: domain.AccountStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), acct))
	return repo, acct
}

func TestCreate_Duplicate(t *testing.T) {
	repo, acct := setupRepo(t)
	assert.Error(t, repo.Create(context.Background(), acct))
}

func TestGetByID(t *testing.T) {
	repo, acct := setupRepo(t)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACC-7", got.AccountNumber)
	assert.False(t, got.CreatedAt.IsZero())

	// Returned values are copies.
	got.KYCSubmitted = true
	again, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.False(t, again.KYCSubmitted)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestWithinTx_CommitsNamedFieldsOnly(t *testing.T) {
	repo, acct := setupRepo(t)
	ctx := context.Background()

	err := repo.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		current, err := tx.GetForUpdate(ctx, acct.ID)
		if err != nil {
			return err
		}
		current.KYCSubmitted = true
		current.AccountStatus = domain.AccountStatusClosed // not saved
		return tx.SaveFields(ctx, current, domain.SubmissionFields...)
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, got.KYCSubmitted)
	assert.Equal(t, domain.AccountStatusPending, got.AccountStatus)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	repo, acct := setupRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		current, err := tx.GetForUpdate(ctx, acct.ID)
		if err != nil {
			return err
		}
		current.KYCSubmitted = true
		if err := tx.SaveFields(ctx, current, domain.FieldKYCSubmitted); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.False(t, got.KYCSubmitted)
}

func TestWithinTx_RejectsInvariantViolation(t *testing.T) {
	repo, acct := setupRepo(t)
	ctx := context.Background()

	err := repo.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		current, err := tx.GetForUpdate(ctx, acct.ID)
		if err != nil {
			return err
		}
		current.FullyActivated = true
		return tx.SaveFields(ctx, current, domain.FieldFullyActivated)
	})
	assert.Error(t, err)

	got, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.False(t, got.FullyActivated)
}

func TestWithinTx_CancelledContextDoesNotCommit(t *testing.T) {
	repo, acct := setupRepo(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := repo.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		current, err := tx.GetForUpdate(ctx, acct.ID)
		if err != nil {
			return err
		}
		current.KYCSubmitted = true
		cancel()
		return tx.SaveFields(ctx, current, domain.FieldKYCSubmitted)
	})
	assert.ErrorIs(t, err, context.Canceled)

	got, err := repo.GetByID(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.False(t, got.KYCSubmitted)
}

func TestSaveFields_Errors(t *testing.T) {
	repo, acct := setupRepo(t)
	ctx := context.Background()

	err := repo.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		return tx.SaveFields(ctx, acct, domain.FieldKYCSubmitted)
	})
	assert.ErrorContains(t, err, "not loaded for update")

	err = repo.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		current, err := tx.GetForUpdate(ctx, acct.ID)
		if err != nil {
			return err
		}
		return tx.SaveFields(ctx, current, domain.Field("balance"))
	})
	assert.ErrorContains(t, err, "unknown field")
}

func TestGetForUpdate_SerializesTransactions(t *testing.T) {
	repo, acct := setupRepo(t)
	ctx := context.Background()

	locked := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		firstDone <- repo.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
			current, err := tx.GetForUpdate(ctx, acct.ID)
			if err != nil {
				return err
			}
			close(locked)
			<-release
			current.KYCSubmitted = true
			return tx.SaveFields(ctx, current, domain.FieldKYCSubmitted)
		})
	}()
	<-locked

	secondSaw := make(chan bool, 1)
	go func() {
		_ = repo.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
			current, err := tx.GetForUpdate(ctx, acct.ID)
			if err != nil {
				return err
			}
			secondSaw <- current.KYCSubmitted
			return nil
		})
	}()

	select {
	case <-secondSaw:
		t.Fatal("second transaction acquired the row lock while the first held it")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-firstDone)
	assert.True(t, <-secondSaw, "second transaction must see the committed write")
}

func TestGetForUpdate_NotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	err := repo.WithinTx(context.Background(), func(ctx context.Context, tx ports.AccountTx) error {
		_, err := tx.GetForUpdate(ctx, uuid.New())
		return err
	})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
