package activation

import (
	"AccountActivation/internal/core/domain"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

const maxNotesLength = 2000

// nonFieldErrors is the key used for payload-level problems.
const nonFieldErrors = "non_field_errors"

var (
	errNotBoolean   = errors.New("must be a valid boolean")
	errNotTimestamp = errors.New("datetime has wrong format, use ISO 8601")
	errNotString    = errors.New("not a valid string")
)

// accepted date layouts, tried in order. Zone-less values are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// verificationPayload mirrors the raw request before any coercion.
type verificationPayload struct {
	KYCSubmitted      interface{} `json:"kyc_submitted"`
	KYCVerified       interface{} `json:"kyc_verified"`
	VerificationDate  interface{} `json:"verification_date"`
	VerificationNotes interface{} `json:"verification_notes"`
}

// Validate checks every field and reports all failures at once.
func (p verificationPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.KYCSubmitted, validation.By(isBoolean)),
		validation.Field(&p.KYCVerified, validation.By(isBoolean)),
		validation.Field(&p.VerificationDate, validation.By(isTimestamp)),
		validation.Field(&p.VerificationNotes, validation.By(isString), validation.RuneLength(0, maxNotesLength)),
	)
}

// DecodePayload decodes a JSON object into the raw map accepted by ParsePayload.
func DecodePayload(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, domain.ErrInvalidInput(map[string]string{
			nonFieldErrors: fmt.Sprintf("invalid JSON object: %v", err),
		})
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.ErrInvalidInput(map[string]string{
			nonFieldErrors: "invalid JSON object: unexpected data after the top-level value",
		})
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}

// ParsePayload validates raw candidate values and converts them into
// typed changes. Unknown keys are ignored and null equals omission.
func ParsePayload(raw map[string]interface{}) (domain.VerificationChanges, error) {
	p := verificationPayload{
		KYCSubmitted:      raw[string(domain.FieldKYCSubmitted)],
		KYCVerified:       raw[string(domain.FieldKYCVerified)],
		VerificationDate:  raw[string(domain.FieldVerificationDate)],
		VerificationNotes: raw[string(domain.FieldVerificationNotes)],
	}

	if err := p.Validate(); err != nil {
		return domain.VerificationChanges{}, toInvalidInput(err)
	}

	var changes domain.VerificationChanges
	if p.KYCSubmitted != nil {
		v, _ := coerceBool(p.KYCSubmitted)
		changes.KYCSubmitted = &v
	}
	if p.KYCVerified != nil {
		v, _ := coerceBool(p.KYCVerified)
		changes.KYCVerified = &v
	}
	if p.VerificationDate != nil {
		v, _ := coerceTime(p.VerificationDate)
		changes.VerificationDate = &v
	}
	if p.VerificationNotes != nil {
		v := p.VerificationNotes.(string)
		changes.VerificationNotes = &v
	}
	return changes, nil
}

func toInvalidInput(err error) error {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return domain.ErrInvalidInput(map[string]string{nonFieldErrors: err.Error()})
	}
	fields := make(map[string]string, len(verrs))
	for name, fieldErr := range verrs {
		if fieldErr != nil {
			fields[name] = fieldErr.Error()
		}
	}
	return domain.ErrInvalidInput(fields)
}

func isBoolean(value interface{}) error {
	if value == nil {
		return nil
	}
	if _, ok := coerceBool(value); !ok {
		return errNotBoolean
	}
	return nil
}

func isTimestamp(value interface{}) error {
	if value == nil {
		return nil
	}
	if _, ok := coerceTime(value); !ok {
		return errNotTimestamp
	}
	return nil
}

func isString(value interface{}) error {
	if value == nil {
		return nil
	}
	if _, ok := value.(string); !ok {
		return errNotString
	}
	return nil
}

func coerceBool(value interface{}) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "1", "yes", "y", "on":
			return true, true
		case "false", "f", "0", "no", "n", "off":
			return false, true
		}
	case json.Number:
		return coerceBool(v.String())
	case int:
		return coerceBool(fmt.Sprint(v))
	case int64:
		return coerceBool(fmt.Sprint(v))
	case float64:
		switch v {
		case 0:
			return false, true
		case 1:
			return true, true
		}
	}
	return false, false
}

func coerceTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return v.UTC(), true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
