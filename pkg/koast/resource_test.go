package koast

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResourceSave(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/tasks/7", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var fields map[string]any
		require.NoError(t, json.Unmarshal(body, &fields))
		require.Equal(t, "renamed", fields["title"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"updated": true}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, StrategyLocal)
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))

	resource := materialize(client, "tasks", Record{
		Data: map[string]any{"id": float64(7), "title": "x"},
		Meta: RecordMeta{Can: Capabilities{"edit": true}},
	})

	// Local edits do nothing until saved.
	resource.Fields["title"] = "renamed"

	raw, err := resource.Save(context.Background())
	require.NoError(t, err)
	require.JSONEq(t, `{"updated": true}`, string(raw))
}

func TestResourceDelete(t *testing.T) {
	t.Parallel()

	var deleted bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/tasks/7", r.URL.Path)
		deleted = true
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"Ok"`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, StrategyLocal)
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))

	resource := materialize(client, "tasks", Record{
		Data: map[string]any{"id": float64(7), "title": "x"},
	})

	require.NoError(t, resource.Delete(context.Background()))
	require.True(t, deleted)

	// Deleting leaves the local copy intact.
	require.Equal(t, "x", resource.Fields["title"])
}

func TestResourcesAreIndependentCopies(t *testing.T) {
	t.Parallel()

	record := Record{Data: map[string]any{"id": float64(1), "title": "shared"}}

	client, _ := newTestClient("https://app.example.com", StrategyLocal)
	first := materialize(client, "tasks", record)
	second := materialize(client, "tasks", record)

	first.Fields["title"] = "mine"
	require.Equal(t, "shared", second.Fields["title"])
	require.Equal(t, "shared", record.Data["title"])
}

func TestResourceSaveMissingIdentifier(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient("https://app.example.com", StrategyLocal)
	require.NoError(t, client.AddEndpoint("tasks", "/:id"))

	resource := materialize(client, "tasks", Record{
		Data: map[string]any{"title": "orphan"},
	})

	_, err := resource.Save(context.Background())
	var missing *MissingParameterError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "id", missing.Name)
}
