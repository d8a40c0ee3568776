package koast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.SetPrefix("/api/")

	require.NoError(t, registry.Register("tasks", "/:id"))

	err := registry.Register("tasks", "/:other")
	var dup *DuplicateEndpointError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "tasks", dup.Handle)

	// The registry is unchanged after the failed attempt.
	url, err := registry.ItemURL("tasks", Params{"id": 1})
	require.NoError(t, err)
	require.Equal(t, "/api/tasks/1", url)
}

func TestLookupUnknown(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	_, err := registry.CollectionURL("ghosts")
	var unknown *UnknownEndpointError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "ghosts", unknown.Handle)

	_, err = registry.ItemURL("ghosts", nil)
	require.ErrorAs(t, err, &unknown)
}

func TestItemURL(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.SetPrefix("/api/")
	require.NoError(t, registry.Register("tasks", "/:id"))
	require.NoError(t, registry.Register("notes", "owners/:owner/notes/:note"))

	t.Run("zero is a defined value", func(t *testing.T) {
		url, err := registry.ItemURL("tasks", Params{"id": 0})
		require.NoError(t, err)
		require.Equal(t, "/api/tasks/0", url)
	})

	t.Run("json numbers substitute cleanly", func(t *testing.T) {
		url, err := registry.ItemURL("tasks", Params{"id": float64(7)})
		require.NoError(t, err)
		require.Equal(t, "/api/tasks/7", url)
	})

	t.Run("every placeholder is substituted", func(t *testing.T) {
		url, err := registry.ItemURL("notes", Params{"owner": "alice", "note": 3})
		require.NoError(t, err)
		require.Equal(t, "/api/notes/owners/alice/notes/3", url)
		require.NotContains(t, url, ":")
	})

	t.Run("nil value is missing", func(t *testing.T) {
		_, err := registry.ItemURL("tasks", Params{"id": nil})
		var missing *MissingParameterError
		require.ErrorAs(t, err, &missing)
		require.Equal(t, "id", missing.Name)
	})

	t.Run("empty string is missing", func(t *testing.T) {
		_, err := registry.ItemURL("tasks", Params{"id": ""})
		var missing *MissingParameterError
		require.ErrorAs(t, err, &missing)
	})

	t.Run("absent key is missing", func(t *testing.T) {
		_, err := registry.ItemURL("notes", Params{"owner": "alice"})
		var missing *MissingParameterError
		require.ErrorAs(t, err, &missing)
		require.Equal(t, "note", missing.Name)
	})

	t.Run("nil params yield the bare collection segment", func(t *testing.T) {
		url, err := registry.ItemURL("tasks", nil)
		require.NoError(t, err)
		require.Equal(t, "/api/tasks/", url)
	})
}

func TestPrefixCapturedAtRegistration(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.SetPrefix("/v1/")
	require.NoError(t, registry.Register("tasks", "/:id"))

	// Overwriting the prefix affects later registrations only.
	registry.SetPrefix("/v2/")
	require.NoError(t, registry.Register("users", "/:id"))

	tasksURL, err := registry.CollectionURL("tasks")
	require.NoError(t, err)
	require.Equal(t, "/v1/tasks", tasksURL)

	usersURL, err := registry.CollectionURL("users")
	require.NoError(t, err)
	require.Equal(t, "/v2/users", usersURL)
}
