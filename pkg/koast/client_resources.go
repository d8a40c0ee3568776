package koast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// SetAPIURIPrefix sets the prefix used when registering endpoints. There is
// only one prefix per client; later calls silently overwrite it.
func (c *Client) SetAPIURIPrefix(prefix string) {
	c.registry.SetPrefix(prefix)
}

// AddEndpoint registers a resource endpoint under the given handle with a
// ":name"-placeholder URL template. Registering a handle twice fails with
// *DuplicateEndpointError.
func (c *Client) AddEndpoint(handle, template string) error {
	return c.registry.Register(handle, template)
}

// fetch retrieves and materializes a list of resources. Both the singular
// get and the query path go through here; they differ only in how the URL
// parameters are supplied and how the list is reduced.
func (c *Client) fetch(ctx context.Context, handle string, params Params, query url.Values) ([]*Resource, error) {
	fetchURL, err := c.registry.ItemURL(handle, params)
	if err != nil {
		return nil, err
	}

	payload, err := c.doJSON(ctx, http.MethodGet, fetchURL, query, nil)
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("koast: failed to decode resource list: %w", err)
	}

	resources := make([]*Resource, 0, len(records))
	for _, record := range records {
		resources = append(resources, materialize(c, handle, record))
	}
	return resources, nil
}

// GetResource retrieves the single resource identified by params. No match
// returns nil without error. More than one match is downgraded to a logged
// warning and the first resource wins.
func (c *Client) GetResource(ctx context.Context, handle string, params Params) (*Resource, error) {
	resources, err := c.fetch(ctx, handle, params, nil)
	if err != nil {
		return nil, err
	}

	if len(resources) == 0 {
		return nil, nil
	}
	if len(resources) > 1 {
		c.log.Warn("expected a singular resource",
			"handle", handle,
			"got", len(resources),
		)
	}
	return resources[0], nil
}

// QueryResources retrieves the list of resources satisfying the query. An
// empty list is a valid, non-error result.
func (c *Client) QueryResources(ctx context.Context, handle string, query url.Values) ([]*Resource, error) {
	return c.fetch(ctx, handle, nil, query)
}

// CreateResource posts a new record to the endpoint's collection URL and
// returns the raw decoded response. Unlike the fetch operations the result
// is not materialized into a Resource; see the package documentation.
func (c *Client) CreateResource(ctx context.Context, handle string, body any) (json.RawMessage, error) {
	createURL, err := c.registry.CollectionURL(handle)
	if err != nil {
		return nil, err
	}
	return c.doJSON(ctx, http.MethodPost, createURL, nil, body)
}
