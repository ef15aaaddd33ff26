package session

// AuthState describes where the session is in its lifecycle. Transitions are
// driven exclusively by the Manager; no other component assigns this state.
type AuthState int

const (
	// StateLoading is the initial state before stored credentials have been
	// examined.
	StateLoading AuthState = iota

	// StateNotAuthenticated means no token and no stored credentials.
	StateNotAuthenticated

	// StateNeedsLogin means stored email/password exist but no valid token
	// has been established yet; an auto-login attempt is required.
	StateNeedsLogin

	// StateAuthenticated means a token is held and authorized operations
	// may proceed.
	StateAuthenticated
)

// String returns the state name.
func (s AuthState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateNotAuthenticated:
		return "not-authenticated"
	case StateNeedsLogin:
		return "needs-login"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
