package model

// SessionToken is the access-token/user-id pair that denotes an
// authenticated visitor. The pair is a single value object: readers
// never see one half without the other (session.Store enforces the
// single set/clear entry points).
type SessionToken struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
}

// Authenticated reports whether both halves of the pair are present.
// A partial pair reads as unauthenticated; there is no intermediate
// state.
func (t SessionToken) Authenticated() bool {
	return t.AccessToken != "" && t.UserID != ""
}
