// Package validation provides request input validation helpers.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var mobileRegex = regexp.MustCompile(`^\d{10}$`)

// Validator collects field errors for a single request.
type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid checks if there are any validation errors.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// FirstError returns one of the collected messages, or "".
func (v *Validator) FirstError() string {
	for _, msg := range v.Errors {
		return msg
	}
	return ""
}

// Check adds an error if the condition is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		if _, exists := v.Errors[field]; !exists {
			v.Errors[field] = message
		}
	}
}

// Required checks that a string is not blank.
func (v *Validator) Required(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, fmt.Sprintf("%s is required", field))
}

// Mobile checks for a 10-digit mobile number.
func (v *Validator) Mobile(field, mobile string) {
	v.Check(mobileRegex.MatchString(mobile), field, "must be a 10-digit mobile number")
}

// PositiveAmount checks that an amount is a positive number.
func (v *Validator) PositiveAmount(field string, amount float64) {
	v.Check(amount > 0, field, "amount must be a positive number")
}

// Registration validates a registration request.
func (v *Validator) Registration(username, secret, mobile string) {
	v.Required("username", username)
	v.Required("password", secret)
	v.Mobile("mobile", mobile)
}
