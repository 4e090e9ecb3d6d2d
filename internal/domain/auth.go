package domain

// Identity is the authenticated caller as carried by a session token.
type Identity struct {
	ID   string
	Role Role
}
