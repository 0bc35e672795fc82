package model

// FormKind identifies one of the three submittable forms.
type FormKind int

const (
	FormLogin FormKind = iota
	FormRegister
	FormShorten
)

func (k FormKind) String() string {
	switch k {
	case FormLogin:
		return "login"
	case FormRegister:
		return "register"
	case FormShorten:
		return "shorten"
	default:
		return "unknown"
	}
}

// Field names used as keys in FormState.Fields and FieldErrors.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldURL             = "url"
)

// FormStatus is the submission lifecycle state of a form instance.
type FormStatus int

const (
	StatusIdle FormStatus = iota
	StatusValidating
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s FormStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusValidating:
		return "validating"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Settled reports whether a submission has reached a terminal outcome
// and is no longer in flight.
func (s FormStatus) Settled() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// FormState is a snapshot of one form instance. Status = Submitting
// implies the immediately preceding validation pass produced no field
// errors.
type FormState struct {
	Fields      map[string]string
	FieldErrors map[string]string
	Status      FormStatus
	GlobalError string
}
