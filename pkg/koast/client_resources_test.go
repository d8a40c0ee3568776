package koast

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

const taskList = `[
	{"data": {"id": 7, "title": "x", "owner": "alice"}, "meta": {"can": {"edit": true}}}
]`

func TestGetResource(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/tasks/7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(taskList))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, StrategyLocal)
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))

	resource, err := client.GetResource(context.Background(), "tasks", Params{"id": 7})
	require.NoError(t, err)
	require.NotNil(t, resource)
	require.Equal(t, "x", resource.Fields["title"])
	require.Equal(t, "tasks", resource.EndpointHandle())
	require.True(t, resource.Can()["edit"])
	require.False(t, resource.Can()["delete"])
}

func TestGetResourceNoMatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, StrategyLocal)
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))

	resource, err := client.GetResource(context.Background(), "tasks", Params{"id": 404})
	require.NoError(t, err)
	require.Nil(t, resource)
}

func TestGetResourceMultipleMatchesWarns(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"data": {"id": 1, "title": "first"}, "meta": {"can": {}}},
			{"data": {"id": 1, "title": "second"}, "meta": {"can": {}}}
		]`))
	}))
	defer server.Close()

	var logs bytes.Buffer
	client := NewClient(Config{
		BaseURL:   server.URL,
		APIPrefix: server.URL + "/api/",
		Logger:    slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))

	resource, err := client.GetResource(context.Background(), "tasks", Params{"id": 1})
	require.NoError(t, err)
	require.NotNil(t, resource)
	require.Equal(t, "first", resource.Fields["title"])
	require.Contains(t, logs.String(), "expected a singular resource")
	require.Contains(t, logs.String(), "got=2")
}

func TestGetResourceMissingParameter(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient("https://app.example.com", StrategyLocal)
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))

	_, err := client.GetResource(context.Background(), "tasks", Params{"id": nil})
	var missing *MissingParameterError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "id", missing.Name)
}

func TestQueryResources(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tasks/", r.URL.Path)
		require.Equal(t, "alice", r.URL.Query().Get("owner"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(taskList))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, StrategyLocal)
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))

	resources, err := client.QueryResources(context.Background(), "tasks", url.Values{"owner": {"alice"}})
	require.NoError(t, err)
	require.Len(t, resources, 1)
	require.Equal(t, "x", resources[0].Fields["title"])
}

func TestQueryResourcesEmptyList(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, StrategyLocal)
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))

	resources, err := client.QueryResources(context.Background(), "tasks", nil)
	require.NoError(t, err)
	require.Empty(t, resources)
}

func TestCreateResource(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/tasks", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "title": "new"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, StrategyLocal)
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))

	// Creation hands back the raw payload, not a materialized Resource.
	raw, err := client.CreateResource(context.Background(), "tasks", map[string]any{"title": "new"})
	require.NoError(t, err)
	require.JSONEq(t, `{"id": 42, "title": "new"}`, string(raw))
}

func TestUnknownHandle(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient("https://app.example.com", StrategyLocal)

	var unknown *UnknownEndpointError

	_, err := client.GetResource(context.Background(), "ghosts", Params{"id": 1})
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "ghosts", unknown.Handle)

	_, err = client.CreateResource(context.Background(), "ghosts", nil)
	require.ErrorAs(t, err, &unknown)
}

func TestRequestsCarryAuthHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "tok-9", r.Header.Get(HeaderAuthToken))
		require.Equal(t, "ts-9", r.Header.Get(HeaderAuthTokenTimestamp))
		require.Contains(t, r.Header.Get(HeaderUser), `"username":"alice"`)
		require.NotEmpty(t, r.Header.Get(HeaderRequestID))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, StrategyLocal)
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))
	client.User().Restore(true,
		map[string]any{"username": "alice"},
		Meta{IsRegistered: true, AuthToken: "tok-9", Timestamp: "ts-9"},
	)

	_, err := client.QueryResources(context.Background(), "tasks", nil)
	require.NoError(t, err)
}

func TestTransportErrorCarriesPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "not yours"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, StrategyLocal)
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))

	_, err := client.QueryResources(context.Background(), "tasks", nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, http.StatusForbidden, transportErr.StatusCode)
	require.JSONEq(t, `{"error": "not yours"}`, string(transportErr.Payload))
}
