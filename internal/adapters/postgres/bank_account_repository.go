package postgres

import (
	"AccountActivation/internal/core/domain"
	"AccountActivation/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var _ ports.BankAccountRepository = (*bankAccountRepository)(nil) // Ensure compliance

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type bankAccountRepository struct {
	db     *DB
	secSvc ports.SecurityPort // verification_notes are encrypted at rest
	log    zerolog.Logger
}

// NewBankAccountRepository creates a new repo for bank account verification.
func NewBankAccountRepository(db *DB, secSvc ports.SecurityPort, baseLogger *zerolog.Logger) ports.BankAccountRepository {
	return &bankAccountRepository{
		db:     db,
		secSvc: secSvc,
		log:    baseLogger.With().Str("component", "bank_acct_repo").Logger(),
	}
}

// bankAccountQuery selects an account together with its owner's contact details.
const bankAccountQuery = `
	SELECT a.id, a.account_number, a.currency, a.balance::text, a.account_status,
		   a.kyc_submitted, a.kyc_verified, a.verification_date, a.verification_notes,
		   a.verified_by, a.fully_activated, a.created_at, a.updated_at,
		   u.id, u.first_name, u.last_name, u.email, u.telegram_id
	FROM bank_accounts a
	JOIN users u ON u.id = a.user_id
	WHERE a.id = $1
`

// GetByID finds an account without locking it.
func (r *bankAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	return r.get(ctx, r.db.pool, bankAccountQuery, id)
}

// WithinTx runs fn in a database transaction.
func (r *bankAccountRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.AccountTx) error) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, &pgAccountTx{repo: r, tx: tx})
	})
}

func (r *bankAccountRepository) get(ctx context.Context, q querier, query string, id uuid.UUID) (*domain.BankAccount, error) {
	acct, err := r.scanAcct(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.Info().Str("acct_id", id.String()).Msg("Bank account not found")
			return nil, domain.ErrNotFound("bank account")
		}
		return nil, err
	}
	return acct, nil
}

// scanAcct scans a row and decrypts the verification notes.
func (r *bankAccountRepository) scanAcct(row pgx.Row) (*domain.BankAccount, error) {
	var acct domain.BankAccount
	var balance string
	var encNotes *string
	var firstName, lastName, email *string

	err := row.Scan(
		&acct.ID,
		&acct.AccountNumber,
		&acct.Currency,
		&balance,
		&acct.AccountStatus,
		&acct.KYCSubmitted,
		&acct.KYCVerified,
		&acct.VerificationDate,
		&encNotes,
		&acct.VerifiedBy,
		&acct.FullyActivated,
		&acct.CreatedAt,
		&acct.UpdatedAt,
		&acct.Owner.ID,
		&firstName,
		&lastName,
		&email,
		&acct.Owner.TelegramID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		r.log.Error().Err(err).Msg("Failed to scan bank account row")
		return nil, err
	}

	acct.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		r.log.Error().Err(err).Str("acct_id", acct.ID.String()).Msg("Failed to parse balance")
		return nil, err
	}
	acct.Owner.FirstName = deref(firstName)
	acct.Owner.LastName = deref(lastName)
	acct.Owner.Email = deref(email)

	if encNotes != nil && *encNotes != "" {
		notes, err := r.secSvc.DecryptString(*encNotes)
		if err != nil {
			r.log.Error().Err(err).Str("acct_id", acct.ID.String()).Msg("Failed to decrypt verification notes")
			return nil, err
		}
		acct.VerificationNotes = notes
	}

	return &acct, nil
}

// columnValue returns the value bound for a single column write.
func (r *bankAccountRepository) columnValue(acct *domain.BankAccount, f domain.Field) (any, error) {
	switch f {
	case domain.FieldKYCSubmitted:
		return acct.KYCSubmitted, nil
	case domain.FieldKYCVerified:
		return acct.KYCVerified, nil
	case domain.FieldVerificationDate:
		return acct.VerificationDate, nil
	case domain.FieldVerificationNotes:
		if acct.VerificationNotes == "" {
			return "", nil
		}
		enc, err := r.secSvc.EncryptString(acct.VerificationNotes)
		if err != nil {
			r.log.Error().Err(err).Msg("Failed to encrypt verification notes")
			return nil, err
		}
		return enc, nil
	case domain.FieldVerifiedBy:
		return acct.VerifiedBy, nil
	case domain.FieldFullyActivated:
		return acct.FullyActivated, nil
	case domain.FieldAccountStatus:
		return string(acct.AccountStatus), nil
	}
	return nil, fmt.Errorf("unknown bank account field %q", f)
}

// pgAccountTx implements ports.AccountTx on top of a pgx transaction.
type pgAccountTx struct {
	repo *bankAccountRepository
	tx   pgx.Tx
}

// GetForUpdate locks the account row (not the owner) until the transaction ends.
func (t *pgAccountTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	return t.repo.get(ctx, t.tx, bankAccountQuery+` FOR UPDATE OF a`, id)
}

// SaveFields issues a single UPDATE for the named columns.
func (t *pgAccountTx) SaveFields(ctx context.Context, acct *domain.BankAccount, fields ...domain.Field) error {
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		val, err := t.repo.columnValue(acct, f)
		if err != nil {
			return err
		}
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", f, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, acct.ID)

	query := fmt.Sprintf(`UPDATE bank_accounts SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		t.repo.log.Error().Err(err).Str("acct_id", acct.ID.String()).Strs("fields", fieldNames(fields)).Msg("Failed to update bank account")
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("bank account")
	}
	return nil
}

func fieldNames(fields []domain.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
