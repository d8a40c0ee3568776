package koast

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/pkg/browser"
	"golang.org/x/time/rate"
)

// Navigator performs the client-side navigation side effects: the logout
// redirect and the identity provider hand-off. The default opens the system
// browser; tests inject their own.
type Navigator func(url string) error

// Config is the configuration surface consumed when a Client is built.
type Config struct {
	// BaseURL is the root used for all auth URLs. Required when the
	// application is not served by the API server itself.
	BaseURL string

	// APIPrefix is the initial endpoint registry prefix, e.g. "/api/".
	APIPrefix string

	// Strategy selects how authentication status responses are interpreted.
	Strategy AuthStrategy

	// SiteTitle is display text passed along to the external identity
	// provider's login page.
	SiteTitle string

	// ReturnURL is where the identity provider sends the user back after a
	// federated login.
	ReturnURL string

	// OnSignIn is invoked exactly when a user-initiated sign-in completes,
	// with the profile the server returned.
	OnSignIn func(profile map[string]any)

	// OnSignOut is invoked exactly when a user-initiated sign-out completes.
	OnSignOut func()

	// Logger receives SDK diagnostics; defaults to slog.Default().
	Logger *slog.Logger

	// Navigator overrides the navigation side effect; defaults to opening
	// the system browser.
	Navigator Navigator

	// HTTPClient overrides the transport; defaults to a plain http.Client.
	// The SDK sets no timeout of its own, so deadlines and cancellation are
	// entirely the caller's, via context or a configured client.
	HTTPClient *http.Client

	// Limiter, when set, paces outgoing requests client-side. See
	// RateLimitConfig.
	Limiter *rate.Limiter
}

// Client is the resource access facade. It owns the endpoint registry and
// the session state, resolves URLs, attaches auth headers and materializes
// server rows into Resources. A single Client is safe for concurrent use.
type Client struct {
	HTTPClient *http.Client

	// Limiter, when non-nil, is waited on before every outgoing request.
	Limiter *rate.Limiter

	mu      sync.RWMutex
	baseURL string

	strategy  AuthStrategy
	siteTitle string
	returnURL string
	onSignIn  func(profile map[string]any)
	onSignOut func()

	log      *slog.Logger
	navigate Navigator
	registry *Registry
	user     *User
}

// NewClient builds a Client from the given configuration.
func NewClient(cfg Config) *Client {
	client := &Client{
		HTTPClient: cfg.HTTPClient,
		Limiter:    cfg.Limiter,
		baseURL:    cfg.BaseURL,
		strategy:   cfg.Strategy,
		siteTitle:  cfg.SiteTitle,
		returnURL:  cfg.ReturnURL,
		onSignIn:   cfg.OnSignIn,
		onSignOut:  cfg.OnSignOut,
		log:        cfg.Logger,
		navigate:   cfg.Navigator,
		registry:   NewRegistry(),
	}

	if client.HTTPClient == nil {
		client.HTTPClient = &http.Client{}
	}
	if client.log == nil {
		client.log = slog.Default()
	}
	if client.navigate == nil {
		client.navigate = browser.OpenURL
	}
	if cfg.APIPrefix != "" {
		client.registry.SetPrefix(cfg.APIPrefix)
	}

	client.user = newUser(client)
	return client
}

// User returns the session state for this client.
func (c *Client) User() *User {
	return c.user
}

// Registry returns the endpoint registry for this client.
func (c *Client) Registry() *Registry {
	return c.registry
}

// SiteTitle returns the display text configured for the identity provider
// hand-off.
func (c *Client) SiteTitle() string {
	return c.siteTitle
}
