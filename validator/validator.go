// Package validator implements the pure, synchronous field validation
// that gates every form submission. Validation is deterministic and
// performs no I/O; a submission that fails here never reaches the
// network layer.
package validator

import (
	"regexp"
	"strings"

	"qlink-client/model"
)

// emailPattern accepts the basic local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// urlPattern accepts absolute or relative URLs: optional http/https
// scheme, a dotted hostname, IPv4 literal, or localhost, then an
// optional port and path.
var urlPattern = regexp.MustCompile(`^(https?://)?(([a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}|localhost|\d{1,3}(\.\d{1,3}){3})(:\d{1,5})?(/[^\s]*)?$`)

// Validate checks the fields of one form kind and returns a mapping of
// field name to error message. An empty map means every check passed.
func Validate(kind model.FormKind, fields map[string]string) map[string]string {
	errs := make(map[string]string)

	switch kind {
	case model.FormLogin:
		validateEmail(fields[model.FieldEmail], errs)
		validatePassword(fields[model.FieldPassword], errs)

	case model.FormRegister:
		if strings.TrimSpace(fields[model.FieldUsername]) == "" {
			errs[model.FieldUsername] = MsgUsernameRequired
		}
		validateEmail(fields[model.FieldEmail], errs)
		validatePassword(fields[model.FieldPassword], errs)
		confirm := fields[model.FieldConfirmPassword]
		if strings.TrimSpace(confirm) == "" {
			errs[model.FieldConfirmPassword] = MsgConfirmRequired
		} else if confirm != fields[model.FieldPassword] {
			errs[model.FieldConfirmPassword] = MsgPasswordMismatch
		}

	case model.FormShorten:
		raw := strings.TrimSpace(fields[model.FieldURL])
		if raw == "" {
			errs[model.FieldURL] = MsgURLRequired
		} else if !urlPattern.MatchString(raw) {
			errs[model.FieldURL] = MsgURLInvalid
		}
	}

	return errs
}

// FieldOrder returns the display order of a form's fields, used when
// reporting one notification per field error.
func FieldOrder(kind model.FormKind) []string {
	switch kind {
	case model.FormLogin:
		return []string{model.FieldEmail, model.FieldPassword}
	case model.FormRegister:
		return []string{model.FieldUsername, model.FieldEmail, model.FieldPassword, model.FieldConfirmPassword}
	case model.FormShorten:
		return []string{model.FieldURL}
	default:
		return nil
	}
}

func validateEmail(email string, errs map[string]string) {
	if strings.TrimSpace(email) == "" {
		errs[model.FieldEmail] = MsgEmailRequired
	} else if !emailPattern.MatchString(email) {
		errs[model.FieldEmail] = MsgEmailInvalid
	}
}

func validatePassword(password string, errs map[string]string) {
	if strings.TrimSpace(password) == "" {
		errs[model.FieldPassword] = MsgPasswordRequired
	} else if len(password) < 6 {
		errs[model.FieldPassword] = MsgPasswordTooShort
	}
}
