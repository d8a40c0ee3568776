package koast

// ============================================================================
// Auth Strategy
// ============================================================================

// AuthStrategy selects how authentication status responses are interpreted.
// The two server flavors answer the "who am I" question with different
// payload shapes; the strategy is configured up front rather than sniffed
// from the response at runtime.
type AuthStrategy int

const (
	// StrategyFederated expects {isAuthenticated, data, meta} status
	// responses, as produced after an external identity provider hand-off.
	StrategyFederated AuthStrategy = iota

	// StrategyLocal expects the user payload directly; the response counts
	// as authenticated iff it carries a non-empty username field.
	StrategyLocal
)

// String returns the configuration name of the strategy.
func (s AuthStrategy) String() string {
	switch s {
	case StrategyLocal:
		return "local"
	default:
		return "federated"
	}
}

// ParseStrategy maps a configuration string to an AuthStrategy.
// Unknown values fall back to the federated strategy.
func ParseStrategy(s string) AuthStrategy {
	if s == "local" {
		return StrategyLocal
	}
	return StrategyFederated
}

// ============================================================================
// Session Types
// ============================================================================

// Meta is the session metadata supplied by the server alongside the user
// profile: registration status, the auth token and its issuance timestamp.
// It is meaningful only while the user is authenticated.
type Meta struct {
	// IsRegistered reports whether the user completed registration
	IsRegistered bool `json:"isRegistered"`

	// AuthToken is the opaque token echoed back on every request
	AuthToken string `json:"authToken"`

	// Timestamp is the token's issuance timestamp as sent by the server
	Timestamp string `json:"timestamp"`
}

// Credentials are the username and password for a local-strategy login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// federatedStatus is the response shape of the "who am I" endpoint under the
// federated strategy.
type federatedStatus struct {
	IsAuthenticated bool           `json:"isAuthenticated"`
	Data            map[string]any `json:"data"`
	Meta            Meta           `json:"meta"`
}

// localStatus is the response shape under the local-credential strategy: the
// user payload itself, carrying an optional meta sub-object.
type localStatus struct {
	Username string `json:"username"`
	Meta     Meta   `json:"meta"`
}

// ============================================================================
// Resource Types
// ============================================================================

// Capabilities are the server-declared actions the current user may perform
// on a resource, e.g. {"edit": true}.
type Capabilities map[string]bool

// Record is one row of a list response: the resource's field data plus its
// per-record metadata.
type Record struct {
	Data map[string]any `json:"data"`
	Meta RecordMeta     `json:"meta"`
}

// RecordMeta carries the capabilities the server grants on a record.
type RecordMeta struct {
	Can Capabilities `json:"can"`
}
