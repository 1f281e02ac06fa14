package payload

import (
	"errors"
	"net/url"
	"strings"

	"github.com/prasetyowira/qrlink/constant"
)

// FieldError is a single failed constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects the field errors of one request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a failed constraint
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Merge appends the fields of err if it is a *ValidationError. It reports
// false for any other non-nil error.
func (e *ValidationError) Merge(err error) bool {
	if err == nil {
		return true
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	e.Fields = append(e.Fields, ve.Fields...)
	return true
}

// Message returns the first message recorded for field
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// OrNil returns e when it holds at least one field error, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateURL checks that raw is a non-empty absolute URL, reporting
// problems against field.
func ValidateURL(field, raw string) error {
	ve := &ValidationError{}
	if raw == "" {
		ve.Add(field, constant.MsgURLEmpty)
		return ve
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Host == "" && u.Opaque == "") {
		ve.Add(field, constant.MsgURLInvalid)
	}
	return ve.OrNil()
}

// Validate implements Payload
func (p URL) Validate() error {
	return ValidateURL("url", p.URL)
}

// Validate implements Payload
func (p WiFi) Validate() error {
	ve := &ValidationError{}
	if p.SSID == "" {
		ve.Add("ssid", constant.MsgSSIDEmpty)
	}
	switch p.Encryption {
	case EncryptionWPA, EncryptionWEP, EncryptionNone:
	default:
		ve.Add("encryption", constant.MsgEncryptionInvalid)
	}
	return ve.OrNil()
}

// Validate implements Payload
func (p VCard) Validate() error {
	ve := &ValidationError{}
	if p.Name == "" {
		ve.Add("name", constant.MsgNameEmpty)
	}
	return ve.OrNil()
}

// Validate implements Payload
func (p SMS) Validate() error {
	ve := &ValidationError{}
	if p.Phone == "" {
		ve.Add("phone", constant.MsgPhoneEmpty)
	}
	return ve.OrNil()
}
