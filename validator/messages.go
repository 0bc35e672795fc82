package validator

// Field-level messages shown to the user. Texts match the deployed
// product exactly; do not reword without coordinating with the web
// front-end.
const (
	MsgUsernameRequired = "Username is required."
	MsgEmailRequired    = "Email is required."
	MsgEmailInvalid     = "Invalid email format."
	MsgPasswordRequired = "Password is required."
	MsgPasswordTooShort = "Password must be at least 6 characters."
	MsgConfirmRequired  = "Confirm password is required."
	MsgPasswordMismatch = "Passwords don't match."
	MsgURLRequired      = "URL is required."
	MsgURLInvalid       = "Please enter a valid URL."
)
