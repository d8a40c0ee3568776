package koast

import (
	"context"
	"net/http"
)

// RequestStatus answers whether the session is authenticated, asking the
// server's "who am I" endpoint at most once per process lifetime. The first
// call issues the underlying request; every later or concurrent call waits
// on the same in-flight result and observes the same resolved value.
//
// The provided context only bounds this caller's wait. The underlying
// request is shared by all callers, so it is not cancelled when one caller
// gives up; it runs to completion and its result stays memoized.
func (u *User) RequestStatus(ctx context.Context) (bool, error) {
	u.statusMu.Lock()
	call := u.status
	if call == nil {
		call = &statusCall{done: make(chan struct{})}
		u.status = call
		go u.runStatusQuery(call)
	}
	u.statusMu.Unlock()

	select {
	case <-call.done:
		return call.authenticated, call.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// runStatusQuery performs the single status fetch: retrieve the user data,
// apply the state transition, then run the registration flow. The state
// mutation is visible before the registration handler starts, and the
// handler settles before the memoized result resolves to any caller.
func (u *User) runStatusQuery(call *statusCall) {
	defer close(call.done)

	payload, err := u.client.doJSON(context.Background(), http.MethodGet, u.client.authURL("/auth/user"), nil, nil)
	if err != nil {
		call.err = err
		return
	}

	authenticated, err := u.applyStatus(payload)
	if err != nil {
		call.err = err
		return
	}

	call.authenticated = authenticated
	call.err = u.completeRegistration(context.Background(), authenticated)
}

// completeRegistration runs the attached registration handler when the user
// is authenticated but not yet registered. With no handler attached, or a
// user that is already registered, the session is marked ready immediately.
// The handler's own failure propagates; it does not change the
// authentication flag.
func (u *User) completeRegistration(ctx context.Context, authenticated bool) error {
	u.mu.RLock()
	handler := u.registrationHandler
	registered := u.meta.IsRegistered
	u.mu.RUnlock()

	if authenticated && !registered && handler != nil {
		if err := handler(ctx); err != nil {
			return err
		}
		return nil
	}

	u.mu.Lock()
	u.ready = true
	u.mu.Unlock()
	return nil
}
