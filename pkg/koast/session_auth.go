package koast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// LoginLocal authenticates with username and password against the local
// credential strategy. Credentials travel as query parameters of the login
// POST, matching what the server expects. On success the session state
// updates atomically and the configured sign-in callback fires; a transport
// failure leaves the session state untouched and propagates the error.
func (u *User) LoginLocal(ctx context.Context, creds Credentials) (bool, error) {
	query := url.Values{
		"username": {creds.Username},
		"password": {creds.Password},
	}

	u.client.log.Debug("login", "username", creds.Username)

	payload, err := u.client.doJSON(ctx, http.MethodPost, u.client.authURL("/auth/login"), query, struct{}{})
	if err != nil {
		return false, err
	}

	authenticated, err := u.applyLocal(payload)
	if err != nil {
		return false, err
	}

	if authenticated && u.client.onSignIn != nil {
		u.client.onSignIn(u.Data())
	}
	return authenticated, nil
}

// Logout posts a logout request and expects the server to acknowledge with
// an "Ok" marker; anything else fails with *LogoutError and leaves the
// session as it was. On success the session resets to anonymous, the
// configured sign-out callback fires, and the navigator is sent to nextURL
// (or "/" when empty).
func (u *User) Logout(ctx context.Context, nextURL string) error {
	payload, err := u.client.doJSON(ctx, http.MethodPost, u.client.authURL("/auth/logout"), nil, nil)
	if err != nil {
		return err
	}

	if ack := decodeStringBody(payload); ack != "Ok" {
		return &LogoutError{Body: ack}
	}

	u.reset()

	if u.client.onSignOut != nil {
		u.client.onSignOut()
	}

	if nextURL == "" {
		nextURL = "/"
	}
	return u.client.navigate(nextURL)
}

// RegisterLocal creates a new user account under the local credential
// strategy. The raw response payload is returned; registering does not log
// the new user in.
func (u *User) RegisterLocal(ctx context.Context, userData any) (json.RawMessage, error) {
	return u.client.doJSON(ctx, http.MethodPost, u.client.authURL("/auth/user"), nil, userData)
}

// RegisterSocial completes registration for a federated user by updating the
// user record, then refreshes the session state from the server.
func (u *User) RegisterSocial(ctx context.Context, data any) (bool, error) {
	if _, err := u.client.doJSON(ctx, http.MethodPut, u.client.authURL("/auth/user"), nil, data); err != nil {
		return false, err
	}
	return u.refreshStatus(ctx)
}

// refreshStatus re-runs the status fetch outside the memoized path. The
// memoized RequestStatus result is deliberately left alone; it answers "what
// did the initial check say" for the process lifetime.
func (u *User) refreshStatus(ctx context.Context) (bool, error) {
	payload, err := u.client.doJSON(ctx, http.MethodGet, u.client.authURL("/auth/user"), nil, nil)
	if err != nil {
		return false, err
	}

	authenticated, err := u.applyStatus(payload)
	if err != nil {
		return false, err
	}

	if err := u.completeRegistration(ctx, authenticated); err != nil {
		return authenticated, err
	}
	return authenticated, nil
}

// CheckUsernameAvailability asks the server whether a username is free. The
// server answers with a boolean-as-string body.
func (u *User) CheckUsernameAvailability(ctx context.Context, username string) (bool, error) {
	query := url.Values{"username": {username}}

	payload, err := u.client.doJSON(ctx, http.MethodGet, u.client.authURL("/auth/usernameAvailable"), query, nil)
	if err != nil {
		return false, err
	}
	return decodeStringBody(payload) == "true", nil
}

// decodeStringBody extracts a bare string acknowledgement, accepting either
// a JSON-encoded string or a raw text body.
func decodeStringBody(payload json.RawMessage) string {
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(payload))
}
