// Package validation holds the pure field validation rules for the
// registration form. Errors are accumulated per call, every violated rule is
// reported, and nothing here has side effects.
package validation

import (
	"fmt"

	umUtils "github.com/accounts-portal/accounts-portal/pkg/user-management/utils"
)

// form field names as they appear in the rendered templates
const (
	FieldFirstName            = "first_name"
	FieldLastName             = "last_name"
	FieldUsername             = "username"
	FieldEmail                = "email"
	FieldPassword             = "password1"
	FieldPasswordConfirmation = "password2"
)

const (
	maxNameLength     = 10
	maxUsernameLength = 20
)

// canonical error message literals, enforced by tests
const (
	MsgFieldRequired      = "This field is required."
	MsgUsernameTooLong    = "Username should be at most 20 characters long."
	MsgInvalidEmailFormat = "Invalid email format."
	MsgInvalidEmailDomain = `Invalid email domain. Email must end with ".com" or ".net".`
	MsgEmailInUse         = "Email address is already in use."
	MsgPasswordsMismatch  = "Passwords do not match."
	MsgPasswordTooWeak    = "Password does not meet the strength requirements."
	MsgPasswordBlocked    = "This password is too common."
)

type RegistrationInput struct {
	FirstName            string
	LastName             string
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
}

// FieldErrors maps a form field name to the ordered list of messages for it.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field string, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) IsEmpty() bool {
	return len(fe) == 0
}

// EmailInUseCheck reports whether an account already uses the given address.
// Username uniqueness is intentionally not pre-checked here; the repository's
// unique index is the authority for that.
type EmailInUseCheck func(email string) bool

// ValidateRegistration applies all rules independently and returns the
// normalized input together with every violation found.
func ValidateRegistration(input RegistrationInput, emailInUse EmailInUseCheck) (RegistrationInput, FieldErrors) {
	errs := FieldErrors{}

	input.FirstName = umUtils.SanitizeUsername(input.FirstName)
	input.LastName = umUtils.SanitizeUsername(input.LastName)
	input.Username = umUtils.SanitizeUsername(input.Username)
	input.Email = umUtils.SanitizeEmail(input.Email)

	validateName(FieldFirstName, input.FirstName, errs)
	validateName(FieldLastName, input.LastName, errs)

	if input.Username == "" {
		errs.Add(FieldUsername, MsgFieldRequired)
	} else if len([]rune(input.Username)) > maxUsernameLength {
		errs.Add(FieldUsername, MsgUsernameTooLong)
	}

	validateEmail(input.Email, emailInUse, errs)
	validatePasswords(input.Password, input.PasswordConfirmation, errs)

	if !errs.IsEmpty() {
		return input, errs
	}
	return input, nil
}

func validateName(field string, value string, errs FieldErrors) {
	if value == "" {
		errs.Add(field, MsgFieldRequired)
		return
	}
	if n := len([]rune(value)); n > maxNameLength {
		errs.Add(field, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", maxNameLength, n))
	}
}

// validateEmail applies the canonical rule order: required, format, domain
// policy, uniqueness.
func validateEmail(email string, emailInUse EmailInUseCheck, errs FieldErrors) {
	if email == "" {
		errs.Add(FieldEmail, MsgFieldRequired)
		return
	}
	if !umUtils.CheckEmailFormat(email) {
		errs.Add(FieldEmail, MsgInvalidEmailFormat)
		return
	}
	if !umUtils.CheckEmailDomainAllowed(email) {
		errs.Add(FieldEmail, MsgInvalidEmailDomain)
		return
	}
	if emailInUse != nil && emailInUse(email) {
		errs.Add(FieldEmail, MsgEmailInUse)
	}
}

func validatePasswords(password string, confirmation string, errs FieldErrors) {
	if password == "" {
		errs.Add(FieldPassword, MsgFieldRequired)
	} else {
		if !umUtils.CheckPasswordFormat(password) {
			errs.Add(FieldPassword, MsgPasswordTooWeak)
		}
		if umUtils.IsPasswordOnBlocklist(password) {
			errs.Add(FieldPassword, MsgPasswordBlocked)
		}
	}

	if confirmation == "" {
		errs.Add(FieldPasswordConfirmation, MsgFieldRequired)
		return
	}

	if password != "" && password != confirmation {
		errs.Add(FieldPasswordConfirmation, MsgPasswordsMismatch)
	}
}

// ValidateNewPassword covers the password-reset confirmation form, where only
// the two password fields are submitted.
func ValidateNewPassword(password string, confirmation string) FieldErrors {
	errs := FieldErrors{}
	validatePasswords(password, confirmation, errs)
	if errs.IsEmpty() {
		return nil
	}
	return errs
}
