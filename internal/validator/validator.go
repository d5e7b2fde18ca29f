// Package validator provides a Validator type for accumulating field-level
// validation errors, plus the patterns reservation fields must match.
package validator

import "regexp"

var (
	// DNIRX matches a national ID of 7 or 8 digits.
	DNIRX = regexp.MustCompile(`^\d{7,8}$`)
	// DateRX matches a YYYY-MM-DD date.  Calendar validity is not checked.
	DateRX = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	// TimeRX matches a HH:MM time.
	TimeRX = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Validator holds a map of field names to their validation error messages.
// A Validator with an empty Errors map is considered valid.  Order keeps the
// fields in the order their first error was recorded.
type Validator struct {
	Errors map[string]string
	Order  []string
}

// New creates and returns a fresh, empty Validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the Errors map contains no entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records key as failing with the given message.
// If key already has an error it is not overwritten, so the first
// failure for a field is always the one that is reported.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
		v.Order = append(v.Order, key)
	}
}

// Check adds an error for key with message only when ok is false.
// Use this as a single-line guard:
//
//	v.Check(n >= 10, "duration", "must be at least 10")
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// In returns true if value is present in the list slice.
func In(value string, list ...string) bool {
	for _, item := range list {
		if value == item {
			return true
		}
	}
	return false
}

// Matches returns true if value matches the provided compiled regexp.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// Between reports whether lo <= n <= hi.
func Between(n, lo, hi int) bool {
	return n >= lo && n <= hi
}
