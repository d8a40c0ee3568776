package koast

import (
	"net/url"
	"strings"
)

// InitiateAuthentication hands the user off to an external identity
// provider's login page. The provider URL is built from the base URL, the
// provider name and a "return to here" URL; no local state changes. The
// state change happens when the provider sends the user back and
// RequestStatus observes the new session.
//
// The hand-off is a deliberate sink: once the navigator fires, completion
// timing is up to the provider and the user, and the state machine cannot
// observe or time out that interaction.
func (u *User) InitiateAuthentication(provider string) error {
	return u.client.navigate(u.client.providerAuthURL(provider, u.client.returnURL))
}

// providerAuthURL builds the identity provider login URL:
// baseURL + "/auth/" + provider + "?next=" + urlencoded return URL.
func (c *Client) providerAuthURL(provider, nextURL string) string {
	return c.authURL("/auth/"+provider) + "?next=" + url.QueryEscape(nextURL)
}

// authURL builds a request URL for the auth service from the configured
// base URL. The path is expected to begin with a forward slash.
func (c *Client) authURL(path string) string {
	c.mu.RLock()
	base := c.baseURL
	c.mu.RUnlock()
	return strings.TrimSuffix(base, "/") + path
}

// SetBaseURL rewrites the root used for all subsequent auth URLs. Needed
// when the application is served from a different host than the API.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
}
