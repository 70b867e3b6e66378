package domain

// SessionState is either Unauthenticated or Authenticated. A token without
// a user cannot be represented.
type SessionState interface {
	isSessionState()
}

// Unauthenticated is the state with no token.
type Unauthenticated struct{}

// Authenticated carries a non-empty token and the user it was issued to.
type Authenticated struct {
	Token string
	User  User
}

func (Unauthenticated) isSessionState() {}
func (Authenticated) isSessionState()   {}

// IsAuthenticated reports whether s is an Authenticated state.
func IsAuthenticated(s SessionState) bool {
	_, ok := s.(Authenticated)
	return ok
}
