package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankAccount_CheckInvariants(t *testing.T) {
	reviewer := uuid.New()

	testCases := []struct {
		name    string
		acct    BankAccount
		wantErr error
	}{
		{"fresh account", BankAccount{}, nil},
		{"submitted only", BankAccount{KYCSubmitted: true}, nil},
		{"fully activated", BankAccount{KYCSubmitted: true, KYCVerified: true, VerifiedBy: &reviewer, FullyActivated: true}, nil},
		{"activated without verification", BankAccount{KYCSubmitted: true, FullyActivated: true}, errActivatedWithoutVerification},
		{"verified without submission", BankAccount{KYCVerified: true, VerifiedBy: &reviewer}, errVerifiedWithoutSubmission},
		{"verified without reviewer", BankAccount{KYCSubmitted: true, KYCVerified: true}, errVerifiedWithoutReviewer},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantErr, tc.acct.CheckInvariants())
		})
	}
}

func TestBankAccount_IsTerminal(t *testing.T) {
	assert.False(t, (&BankAccount{KYCVerified: true}).IsTerminal())
	assert.False(t, (&BankAccount{FullyActivated: true}).IsTerminal())
	assert.True(t, (&BankAccount{KYCVerified: true, FullyActivated: true}).IsTerminal())
}

func TestBankAccount_Clone(t *testing.T) {
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	reviewer := uuid.New()
	chat := int64(99)
	acct := &BankAccount{
		VerificationDate: &date,
		VerifiedBy:       &reviewer,
		Owner:            AccountOwner{TelegramID: &chat},
	}

	cp := acct.Clone()
	require.Equal(t, acct, cp)

	*cp.VerificationDate = date.Add(time.Hour)
	*cp.VerifiedBy = uuid.New()
	*cp.Owner.TelegramID = 1

	assert.Equal(t, date, *acct.VerificationDate)
	assert.Equal(t, reviewer, *acct.VerifiedBy)
	assert.Equal(t, int64(99), *acct.Owner.TelegramID)
}

func TestAccountOwner_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", AccountOwner{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", AccountOwner{FirstName: "Ada"}.FullName())
	assert.Equal(t, "Lovelace", AccountOwner{LastName: "Lovelace"}.FullName())
}

func TestVerificationChanges_Effective(t *testing.T) {
	acct := &BankAccount{KYCSubmitted: true}
	no := false
	yes := true

	assert.True(t, VerificationChanges{}.EffectiveSubmitted(acct))
	assert.False(t, VerificationChanges{}.EffectiveVerified(acct))
	assert.False(t, VerificationChanges{KYCSubmitted: &no}.EffectiveSubmitted(acct))
	assert.True(t, VerificationChanges{KYCVerified: &yes}.EffectiveVerified(acct))
}

func TestError_KindAndStatus(t *testing.T) {
	cause := errors.New("connection refused")

	testCases := []struct {
		err    *Error
		kind   Kind
		status int
	}{
		{ErrNotFound("bank account"), KindNotFound, http.StatusNotFound},
		{ErrInvalidInput(map[string]string{"kyc_verified": "must be a valid boolean"}), KindInvalidInput, http.StatusBadRequest},
		{ErrKYCNotSubmitted(), KindPreconditionFailed, http.StatusBadRequest},
		{ErrAlreadyVerified(), KindAlreadyVerified, http.StatusBadRequest},
		{WrapError(KindStorage, "failed to save", cause), KindStorage, http.StatusInternalServerError},
		{WrapError(KindDispatch, "notification failed", cause), KindDispatch, http.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tc.err)

			assert.Equal(t, tc.kind, KindOf(wrapped))
			assert.True(t, IsKind(wrapped, tc.kind))
			assert.Equal(t, tc.status, tc.err.HTTPStatus())
		})
	}
}

func TestError_Wrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(KindStorage, "failed to save", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage_error: failed to save: connection refused", err.Error())
	assert.Equal(t, "not_found: bank account not found", ErrNotFound("bank account").Error())
	assert.Equal(t, Kind(""), KindOf(cause))
	assert.False(t, IsKind(nil, KindStorage))
}
