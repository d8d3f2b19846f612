package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus is a custom type for our account status ENUM
type AccountStatus string

const (
	AccountStatusPending  AccountStatus = "pending"
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "in_active"
	AccountStatusFrozen   AccountStatus = "frozen"
	AccountStatusClosed   AccountStatus = "closed"
)

// BankAccount is owned by the provisioning process. The activation
// workflow only ever touches the verification fields.
type BankAccount struct {
	ID            uuid.UUID
	AccountNumber string
	Owner         AccountOwner
	Currency      string
	Balance       decimal.Decimal
	AccountStatus AccountStatus

	KYCSubmitted      bool
	KYCVerified       bool
	VerificationDate  *time.Time // Nullable
	VerificationNotes string     // Encrypted at rest
	VerifiedBy        *uuid.UUID // Nullable until verified
	FullyActivated    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal reports whether the account is already verified and fully activated.
func (a *BankAccount) IsTerminal() bool {
	return a.KYCVerified && a.FullyActivated
}

var (
	errActivatedWithoutVerification = errors.New("fully_activated requires kyc_verified")
	errVerifiedWithoutSubmission    = errors.New("kyc_verified requires kyc_submitted")
	errVerifiedWithoutReviewer      = errors.New("kyc_verified requires verified_by")
)

// CheckInvariants returns an error if the verification fields are in a
// combination that the workflow can never produce.
func (a *BankAccount) CheckInvariants() error {
	if a.FullyActivated && !a.KYCVerified {
		return errActivatedWithoutVerification
	}
	if a.KYCVerified && !a.KYCSubmitted {
		return errVerifiedWithoutSubmission
	}
	if a.KYCVerified && a.VerifiedBy == nil {
		return errVerifiedWithoutReviewer
	}
	return nil
}

// Clone returns a deep copy so callers can stage changes without
// touching the original.
func (a *BankAccount) Clone() *BankAccount {
	cp := *a
	if a.VerificationDate != nil {
		d := *a.VerificationDate
		cp.VerificationDate = &d
	}
	if a.VerifiedBy != nil {
		id := *a.VerifiedBy
		cp.VerifiedBy = &id
	}
	if a.Owner.TelegramID != nil {
		tg := *a.Owner.TelegramID
		cp.Owner.TelegramID = &tg
	}
	return &cp
}
