package domain

import "time"

// VerificationChanges holds validated candidate values for a
// verification update. A nil field was omitted by the caller and
// falls back to the account's current value.
type VerificationChanges struct {
	KYCSubmitted      *bool
	KYCVerified       *bool
	VerificationDate  *time.Time
	VerificationNotes *string
}

// EffectiveSubmitted resolves kyc_submitted against the current state.
func (c VerificationChanges) EffectiveSubmitted(acct *BankAccount) bool {
	if c.KYCSubmitted != nil {
		return *c.KYCSubmitted
	}
	return acct.KYCSubmitted
}

// EffectiveVerified resolves kyc_verified against the current state.
func (c VerificationChanges) EffectiveVerified(acct *BankAccount) bool {
	if c.KYCVerified != nil {
		return *c.KYCVerified
	}
	return acct.KYCVerified
}
