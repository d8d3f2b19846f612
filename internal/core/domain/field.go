package domain

// Field names a persisted column of BankAccount that may be written
// on its own.
type Field string

const (
	FieldKYCSubmitted      Field = "kyc_submitted"
	FieldKYCVerified       Field = "kyc_verified"
	FieldVerificationDate  Field = "verification_date"
	FieldVerificationNotes Field = "verification_notes"
	FieldVerifiedBy        Field = "verified_by"
	FieldFullyActivated    Field = "fully_activated"
	FieldAccountStatus     Field = "account_status"
)

// SubmissionFields is the fieldset of the first, unconditional write.
var SubmissionFields = []Field{FieldKYCSubmitted}

// ActivationFields must always be written together.
var ActivationFields = []Field{
	FieldKYCVerified,
	FieldVerificationDate,
	FieldVerificationNotes,
	FieldVerifiedBy,
	FieldFullyActivated,
	FieldAccountStatus,
}
