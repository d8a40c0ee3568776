package koast

import (
	"context"
	"encoding/json"
	"net/http"
)

// Resource is a client-side materialized copy of one server record. Every
// key of the record's data section is copied into Fields, which the caller
// may mutate freely; nothing syncs back automatically. Save and Delete act
// on the server record identified by the resource's own fields.
//
// A Resource is created fresh on every fetch. Two fetches of the same server
// record produce two independent Resources.
type Resource struct {
	// Fields holds the record's data, keyed by field name. The parameters
	// needed to rebuild the resource's URL must be present here.
	Fields map[string]any

	can    Capabilities
	handle string
	client *Client
}

// materialize wraps one raw server record into a live Resource bound to the
// endpoint it came from. Side-effect-free aside from allocation.
func materialize(client *Client, handle string, record Record) *Resource {
	fields := make(map[string]any, len(record.Data))
	for key, value := range record.Data {
		fields[key] = value
	}

	return &Resource{
		Fields: fields,
		can:    record.Meta.Can,
		handle: handle,
		client: client,
	}
}

// Can returns the actions the server declared the current user may perform
// on this resource.
func (r *Resource) Can() Capabilities {
	return r.can
}

// EndpointHandle returns the handle of the endpoint this resource came
// from. It is a lookup key into the registry, not ownership of the
// endpoint.
func (r *Resource) EndpointHandle() string {
	return r.handle
}

// itemURL rebuilds the URL identifying this resource, substituting the
// endpoint template's placeholders from the resource's own fields.
func (r *Resource) itemURL() (string, error) {
	return r.client.registry.ItemURL(r.handle, Params(r.Fields))
}

// Save writes the resource's current fields back to the server with an
// update request, auth headers attached. The raw transport response is
// returned; reconciling it with local state is the caller's decision.
func (r *Resource) Save(ctx context.Context) (json.RawMessage, error) {
	url, err := r.itemURL()
	if err != nil {
		return nil, err
	}
	return r.client.doJSON(ctx, http.MethodPut, url, nil, r.Fields)
}

// Delete removes the server record identified by this resource, auth
// headers attached. The local Resource is left untouched.
func (r *Resource) Delete(ctx context.Context) error {
	url, err := r.itemURL()
	if err != nil {
		return err
	}
	_, err = r.client.doJSON(ctx, http.MethodDelete, url, nil, nil)
	return err
}
