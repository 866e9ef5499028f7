package types

// AuthenticatedUser is the session identity the auth middleware stores in the
// request context under ContextUserKey.
type AuthenticatedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}
