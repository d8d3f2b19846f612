// Package activation implements the KYC verification and full-activation
// workflow for bank accounts.
//
// A call writes the submission flag in its own transaction first. When the
// effective submission and verification flags are both true, a second
// transaction writes the activation fieldset and the owner is notified after
// that commit. Both transactions lock the account row, so concurrent
// reviewers serialize and at most one of them activates the account.
package activation

import (
	"AccountActivation/internal/core/domain"
	"AccountActivation/internal/core/ports"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultNotifyTimeout bounds the post-commit notification dispatch.
const DefaultNotifyTimeout = 5 * time.Second

// Option customizes a Workflow.
type Option func(*Workflow)

// WithClock injects the clock used for the default verification date.
func WithClock(clock func() time.Time) Option {
	return func(w *Workflow) {
		if clock != nil {
			w.now = clock
		}
	}
}

// WithNotifyTimeout overrides DefaultNotifyTimeout.
func WithNotifyTimeout(d time.Duration) Option {
	return func(w *Workflow) {
		if d > 0 {
			w.notifyTimeout = d
		}
	}
}

// Workflow applies verification updates to bank accounts.
type Workflow struct {
	repo          ports.BankAccountRepository
	notifier      ports.ActivationNotifier
	log           zerolog.Logger
	now           func() time.Time
	notifyTimeout time.Duration
}

// NewWorkflow creates the activation workflow. notifier may be nil, in
// which case activations are not announced.
func NewWorkflow(
	repo ports.BankAccountRepository,
	notifier ports.ActivationNotifier,
	baseLogger *zerolog.Logger,
	opts ...Option,
) *Workflow {
	w := &Workflow{
		repo:          repo,
		notifier:      notifier,
		log:           baseLogger.With().Str("component", "activation_workflow").Logger(),
		now:           time.Now,
		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Lookup returns the current view of an account.
func (w *Workflow) Lookup(ctx context.Context, accountID uuid.UUID) (*AccountView, error) {
	acct, err := w.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, asStorageError(err, "failed to load account")
	}
	view := NewAccountView(acct)
	return &view, nil
}

// Activate validates the raw candidate values and runs the workflow.
func (w *Workflow) Activate(
	ctx context.Context,
	accountID uuid.UUID,
	raw map[string]interface{},
	reviewer uuid.UUID,
) (*Result, error) {
	return w.run(ctx, accountID, reviewer, func() (domain.VerificationChanges, error) {
		return ParsePayload(raw)
	})
}

// ActivateChanges runs the workflow with already-validated changes.
func (w *Workflow) ActivateChanges(
	ctx context.Context,
	accountID uuid.UUID,
	changes domain.VerificationChanges,
	reviewer uuid.UUID,
) (*Result, error) {
	return w.run(ctx, accountID, reviewer, func() (domain.VerificationChanges, error) {
		return changes, nil
	})
}

func (w *Workflow) run(
	ctx context.Context,
	accountID uuid.UUID,
	reviewer uuid.UUID,
	parse func() (domain.VerificationChanges, error),
) (*Result, error) {
	log := w.log.With().
		Str("account_id", accountID.String()).
		Str("reviewer_id", reviewer.String()).
		Logger()

	var (
		acct     *domain.BankAccount
		changes  domain.VerificationChanges
		activate bool
	)

	// 1-4. Guard, validate, check, and persist the submission flag.
	err := w.repo.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		current, err := tx.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if current.IsTerminal() {
			return domain.ErrAlreadyVerified()
		}

		changes, err = parse()
		if err != nil {
			return err
		}

		submitted := changes.EffectiveSubmitted(current)
		verified := changes.EffectiveVerified(current)
		if verified && !submitted {
			return domain.ErrKYCNotSubmitted()
		}

		current.KYCSubmitted = submitted
		if err := tx.SaveFields(ctx, current, domain.SubmissionFields...); err != nil {
			return err
		}

		acct = current
		activate = submitted && verified
		return nil
	})
	if err != nil {
		w.logFailure(log, err, "Verification update rejected")
		return nil, asStorageError(err, "failed to save kyc submission")
	}
	log.Info().Bool("kyc_submitted", acct.KYCSubmitted).Msg("KYC submission saved")

	if !activate {
		return newResult(acct, nil), nil
	}

	// 5. Activation fieldset, all or nothing.
	err = w.repo.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		current, err := tx.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		// Another reviewer may have committed between the two transactions.
		if current.IsTerminal() {
			return domain.ErrAlreadyVerified()
		}
		if !current.KYCSubmitted {
			return domain.ErrKYCNotSubmitted()
		}

		verifiedAt := w.now().UTC()
		if changes.VerificationDate != nil {
			verifiedAt = changes.VerificationDate.UTC()
		}
		notes := ""
		if changes.VerificationNotes != nil {
			notes = *changes.VerificationNotes
		}
		reviewerID := reviewer

		current.KYCVerified = true
		current.VerificationDate = &verifiedAt
		current.VerificationNotes = notes
		current.VerifiedBy = &reviewerID
		current.FullyActivated = true
		current.AccountStatus = domain.AccountStatusActive

		if err := tx.SaveFields(ctx, current, domain.ActivationFields...); err != nil {
			return err
		}
		acct = current
		return nil
	})
	if err != nil {
		w.logFailure(log, err, "Account activation failed")
		return nil, asStorageError(err, "failed to save account activation")
	}
	log.Info().Time("verification_date", *acct.VerificationDate).Msg("Account fully activated")

	// 6. Notify after commit; failures never undo the activation.
	notifyErr := w.dispatch(ctx, acct, log)
	return newResult(acct, notifyErr), nil
}

// dispatch sends the activation notice with a bounded timeout. The
// caller's cancellation is ignored: the state change is already durable.
func (w *Workflow) dispatch(ctx context.Context, acct *domain.BankAccount, log zerolog.Logger) error {
	if w.notifier == nil {
		log.Warn().Msg("No activation notifier configured, skipping notification")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.notifyTimeout)
	defer cancel()

	if err := w.notifier.SendFullActivation(ctx, ports.NewActivationNotice(acct)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Error().Err(err).Dur("timeout", w.notifyTimeout).Msg("Activation notification timed out")
		} else {
			log.Error().Err(err).Msg("Failed to send activation notification")
		}
		if domain.KindOf(err) == "" {
			return domain.WrapError(domain.KindDispatch, "activation notification failed", err)
		}
		return err
	}

	log.Info().Msg("Activation notification sent")
	return nil
}

// logFailure logs business rejections at info and everything else at error.
func (w *Workflow) logFailure(log zerolog.Logger, err error, msg string) {
	switch domain.KindOf(err) {
	case domain.KindAlreadyVerified, domain.KindInvalidInput, domain.KindPreconditionFailed, domain.KindNotFound:
		log.Info().Err(err).Msg(msg)
	default:
		log.Error().Err(err).Msg(msg)
	}
}

// asStorageError keeps domain errors as they are and classifies
// anything else as a storage failure.
func asStorageError(err error, msg string) error {
	if domain.KindOf(err) != "" {
		return err
	}
	return domain.WrapError(domain.KindStorage, msg, err)
}
