package koast

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// placeholderPattern matches ":name" placeholders in URL templates.
var placeholderPattern = regexp.MustCompile(`:([-_a-zA-Z]*)`)

// Params supplies values for the named placeholders of a URL template.
// A Resource's own fields satisfy this for rebuilding its identifying URL.
type Params map[string]any

// Endpoint is a named URL template plus the API prefix that was current when
// it was registered. Endpoints are created through Registry.Register, live
// for the process lifetime and are never mutated afterwards.
type Endpoint struct {
	// Prefix is the base URL segment captured at registration time
	Prefix string

	// Handle is the unique string key identifying this endpoint
	Handle string

	// Template is the URL path pattern with ":name" placeholders
	Template string
}

// CollectionURL returns the URL that addresses the endpoint's collection as
// a whole. No placeholder substitution happens here; creation requests use
// this because they do not target a specific instance.
func (e *Endpoint) CollectionURL() string {
	return e.Prefix + e.Handle
}

// ItemURL returns the URL that identifies one particular resource, built by
// substituting every ":name" placeholder in the template from params. If
// params is nil the resource identifier segment is empty, which only makes
// sense for collection-level templates.
func (e *Endpoint) ItemURL(params Params) (string, error) {
	identifier, err := resourceIdentifier(e.Template, params)
	if err != nil {
		return "", err
	}
	// Tolerate templates written with a leading slash; the join supplies it.
	return e.CollectionURL() + "/" + strings.TrimPrefix(identifier, "/"), nil
}

// resourceIdentifier substitutes template placeholders from params. A value
// of numeric zero is accepted as defined; nil and the empty string are not.
func resourceIdentifier(template string, params Params) (string, error) {
	if params == nil {
		return "", nil
	}

	var missing *MissingParameterError
	identifier := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1:]
		value, ok := params[name]
		if !ok || !paramDefined(value) {
			if missing == nil {
				missing = &MissingParameterError{Name: name}
			}
			return match
		}
		return formatParam(value)
	})
	if missing != nil {
		return "", missing
	}
	return identifier, nil
}

// paramDefined reports whether a placeholder value counts as supplied.
func paramDefined(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok {
		return s != ""
	}
	return true
}

// formatParam renders a placeholder value into its URL segment. Float values
// without a fractional part print as integers, so fields decoded from JSON
// numbers produce "7" rather than "7e+00".
func formatParam(value any) string {
	switch v := value.(type) {
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case float32:
		return formatParam(float64(v))
	default:
		return fmt.Sprint(v)
	}
}

// Registry maps logical resource names to URL templates. It is the single
// source of truth for URL construction and is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	prefix    string
	endpoints map[string]*Endpoint
}

// NewRegistry creates an empty endpoint registry.
func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]*Endpoint)}
}

// SetPrefix sets the API URL prefix used by subsequent registrations. There
// is only one prefix; calling this again overwrites it silently. This is a
// known single-tenancy limitation.
func (r *Registry) SetPrefix(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefix = prefix
}

// Register adds an endpoint under the given handle. A handle, once
// registered, is immutable; registering it again fails with
// *DuplicateEndpointError and leaves the registry unchanged.
func (r *Registry) Register(handle, template string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.endpoints[handle]; exists {
		return &DuplicateEndpointError{Handle: handle}
	}

	r.endpoints[handle] = &Endpoint{
		Prefix:   r.prefix,
		Handle:   handle,
		Template: template,
	}
	return nil
}

// Lookup returns the endpoint registered under handle, or
// *UnknownEndpointError if the handle was never registered.
func (r *Registry) Lookup(handle string) (*Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	endpoint, ok := r.endpoints[handle]
	if !ok {
		return nil, &UnknownEndpointError{Handle: handle}
	}
	return endpoint, nil
}

// CollectionURL resolves the collection URL for a registered handle.
func (r *Registry) CollectionURL(handle string) (string, error) {
	endpoint, err := r.Lookup(handle)
	if err != nil {
		return "", err
	}
	return endpoint.CollectionURL(), nil
}

// ItemURL resolves the item URL for a registered handle with the given
// placeholder values.
func (r *Registry) ItemURL(handle string, params Params) (string, error) {
	endpoint, err := r.Lookup(handle)
	if err != nil {
		return "", err
	}
	return endpoint.ItemURL(params)
}

// Handles returns the registered handles in no particular order.
func (r *Registry) Handles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := make([]string, 0, len(r.endpoints))
	for handle := range r.endpoints {
		handles = append(handles, handle)
	}
	return handles
}
