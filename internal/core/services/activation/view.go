package activation

import (
	"AccountActivation/internal/core/domain"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const msgUpdated = "Account Verification status updated successfully"

// AccountView is the read model returned to callers.
type AccountView struct {
	ID                uuid.UUID            `json:"id"`
	AccountNumber     string               `json:"account_number"`
	OwnerID           uuid.UUID            `json:"owner_id"`
	Currency          string               `json:"currency"`
	Balance           string               `json:"balance"`
	AccountStatus     domain.AccountStatus `json:"account_status"`
	KYCSubmitted      bool                 `json:"kyc_submitted"`
	KYCVerified       bool                 `json:"kyc_verified"`
	VerificationDate  *time.Time           `json:"verification_date"`
	VerificationNotes string               `json:"verification_notes"`
	VerifiedBy        *uuid.UUID           `json:"verified_by"`
	FullyActivated    bool                 `json:"fully_activated"`
}

// NewAccountView copies the externally visible fields of acct.
func NewAccountView(acct *domain.BankAccount) AccountView {
	cp := acct.Clone()
	return AccountView{
		ID:                cp.ID,
		AccountNumber:     cp.AccountNumber,
		OwnerID:           cp.Owner.ID,
		Currency:          cp.Currency,
		Balance:           cp.Balance.StringFixed(2),
		AccountStatus:     cp.AccountStatus,
		KYCSubmitted:      cp.KYCSubmitted,
		KYCVerified:       cp.KYCVerified,
		VerificationDate:  cp.VerificationDate,
		VerificationNotes: cp.VerificationNotes,
		VerifiedBy:        cp.VerifiedBy,
		FullyActivated:    cp.FullyActivated,
	}
}

// Result is the success payload of a verification update.
type Result struct {
	Message string      `json:"message"`
	Account AccountView `json:"data"`

	// NotificationErr is set when the activation committed but the owner
	// could not be notified.
	NotificationErr error `json:"-"`
}

func newResult(acct *domain.BankAccount, notifyErr error) *Result {
	return &Result{
		Message:         msgUpdated,
		Account:         NewAccountView(acct),
		NotificationErr: notifyErr,
	}
}

// ErrorResponse renders err as a status code and a machine-checkable body.
func ErrorResponse(err error) (int, map[string]interface{}) {
	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, map[string]interface{}{
			"kind":    domain.KindStorage,
			"message": "internal error",
		}
	}

	body := map[string]interface{}{
		"kind":    de.Kind,
		"message": de.Message,
	}
	if len(de.Fields) > 0 {
		body["fields"] = de.Fields
	}
	return de.HTTPStatus(), body
}
