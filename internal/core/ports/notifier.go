package ports

import (
	"AccountActivation/internal/core/domain"
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivationNotice is the payload sent to the account owner once the
// account becomes fully active.
type ActivationNotice struct {
	AccountID     uuid.UUID
	AccountNumber string
	Owner         domain.AccountOwner
	ActivatedAt   time.Time
	VerifiedBy    uuid.UUID
}

// NewActivationNotice builds the notice from a freshly activated account.
func NewActivationNotice(acct *domain.BankAccount) ActivationNotice {
	n := ActivationNotice{
		AccountID:     acct.ID,
		AccountNumber: acct.AccountNumber,
		Owner:         acct.Owner,
	}
	if acct.VerificationDate != nil {
		n.ActivatedAt = *acct.VerificationDate
	}
	if acct.VerifiedBy != nil {
		n.VerifiedBy = *acct.VerifiedBy
	}
	return n
}

// ActivationNotifier is the outbound port for the full-activation message.
// The transport (Telegram, Kafka, log) is an adapter concern.
type ActivationNotifier interface {
	SendFullActivation(ctx context.Context, notice ActivationNotice) error
}
