package koast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/yorch/koast/pkg/jwtx"
)

// User tracks the authentication state of the current session: whether the
// session is authenticated, the user profile supplied by the server, and the
// session metadata (registration status, auth token, token timestamp).
//
// A User is constructed by NewClient and owned by it; there is no package
// level singleton. State is written only by the User's own transition
// methods (status fetch, login, logout, registration completion) and read by
// the auth header injector. All methods are safe for concurrent use.
type User struct {
	client *Client

	mu            sync.RWMutex
	authenticated bool
	data          map[string]any
	meta          Meta
	ready         bool

	registrationHandler func(context.Context) error

	statusMu sync.Mutex
	status   *statusCall
}

// statusCall is the memoized result of the one-per-lifetime status query.
// Callers wait on done; the fields are immutable once done is closed.
type statusCall struct {
	done          chan struct{}
	authenticated bool
	err           error
}

func newUser(client *Client) *User {
	return &User{
		client: client,
		data:   map[string]any{},
	}
}

// IsAuthenticated reports whether the session is currently authenticated.
func (u *User) IsAuthenticated() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.authenticated
}

// Data returns a copy of the user profile. The profile is meaningful only
// while the session is authenticated; otherwise it is empty.
func (u *User) Data() map[string]any {
	u.mu.RLock()
	defer u.mu.RUnlock()

	data := make(map[string]any, len(u.data))
	for k, v := range u.data {
		data[k] = v
	}
	return data
}

// Meta returns the session metadata. Like the profile, it is meaningful only
// while the session is authenticated.
func (u *User) Meta() Meta {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.meta
}

// IsReady reports whether the session finished its initial status check and
// any required registration flow.
func (u *User) IsReady() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.ready
}

// SetRegistrationHandler attaches a callback invoked when a status check
// finds an authenticated but not-yet-registered user. The handler runs
// strictly after the authentication transition is observable and before the
// status result is delivered to callers.
func (u *User) SetRegistrationHandler(handler func(context.Context) error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.registrationHandler = handler
}

// TokenClaims decodes the session's auth token as an unverified JWT. This is
// a best-effort peek for diagnostics; servers that issue non-JWT tokens make
// it return jwtx.ErrNotJWT.
func (u *User) TokenClaims() (*jwtx.Claims, error) {
	u.mu.RLock()
	token := u.meta.AuthToken
	u.mu.RUnlock()

	return jwtx.PeekClaims(token)
}

// applyFederated interprets a status payload under the federated strategy
// and applies it atomically. The profile and metadata update only when the
// payload says the user is authenticated.
func (u *User) applyFederated(payload []byte) (bool, error) {
	var status federatedStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return false, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if status.IsAuthenticated {
		u.data = status.Data
		u.meta = status.Meta
	}
	u.authenticated = status.IsAuthenticated
	return status.IsAuthenticated, nil
}

// applyLocal interprets a status payload under the local-credential
// strategy: authenticated iff the payload carries a non-empty username, in
// which case the whole payload becomes the profile and its meta field the
// metadata. Otherwise both reset to empty.
func (u *User) applyLocal(payload []byte) (bool, error) {
	var status localStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return false, err
	}

	var data map[string]any
	if status.Username != "" {
		if err := json.Unmarshal(payload, &data); err != nil {
			return false, err
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if status.Username != "" {
		u.data = data
		u.meta = status.Meta
		u.authenticated = true
	} else {
		u.data = map[string]any{}
		u.meta = Meta{}
		u.authenticated = false
	}
	return u.authenticated, nil
}

// applyStatus dispatches to the interpretation policy selected by the
// configured strategy.
func (u *User) applyStatus(payload []byte) (bool, error) {
	if u.client.strategy == StrategyLocal {
		return u.applyLocal(payload)
	}
	return u.applyFederated(payload)
}

// Restore loads previously persisted session state, e.g. a snapshot saved
// by a session store. It is a state transition like any other: the update is
// atomic and an unauthenticated restore clears the profile and metadata.
// Restoring does not touch the memoized status query.
func (u *User) Restore(authenticated bool, data map[string]any, meta Meta) {
	if data == nil {
		data = map[string]any{}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if authenticated {
		u.data = data
		u.meta = meta
	} else {
		u.data = map[string]any{}
		u.meta = Meta{}
	}
	u.authenticated = authenticated
}

// reset clears the session back to the anonymous state.
func (u *User) reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.authenticated = false
	u.data = map[string]any{}
	u.meta = Meta{}
}
