package koast

import (
	"encoding/json"
)

// Header names reserved for authentication state. The server matches on
// these exact names.
const (
	// HeaderAuthToken carries the session's auth token
	HeaderAuthToken = "koast-auth-token"

	// HeaderAuthTokenTimestamp carries the token's issuance timestamp
	HeaderAuthTokenTimestamp = "koast-auth-token-timestamp"

	// HeaderUser carries a JSON snapshot of the current user profile
	HeaderUser = "koast-user"

	// HeaderRequestID correlates a request with client-side logs
	HeaderRequestID = "X-Request-Id"
)

// authHeaders derives the credential headers from the current session
// state: empty when anonymous, exactly three headers when authenticated.
// It is a pure read of session state with no side effects, and it is called
// fresh immediately before every network call rather than cached, because
// the token and its timestamp can change between calls.
func (u *User) authHeaders() (map[string]string, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if !u.authenticated {
		return map[string]string{}, nil
	}

	snapshot, err := json.Marshal(u.data)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderAuthToken:          u.meta.AuthToken,
		HeaderAuthTokenTimestamp: u.meta.Timestamp,
		HeaderUser:               string(snapshot),
	}, nil
}
