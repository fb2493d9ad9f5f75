package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/rolldice/internal/env"
)

func TestStoreAppendLoad(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), LogFile)

	store, err := NewStore(logPath)
	require.NoError(t, err)
	defer store.Close()

	set := &env.VariableSetEvent{Meta: env.NewMeta(), User: "alice", Name: "a", Value: "1d20"}
	require.NoError(t, store.Append(set))
	require.NoError(t, store.Append(&env.RollEvent{Meta: env.NewMeta(), User: "alice", Source: "a", Trace: "a", Value: 9}))
	require.NoError(t, store.Append(&env.SnapshotEvent{Meta: env.NewMeta(), Tables: env.Snapshot{"bob": {"b": "2"}}}))
	assert.Equal(t, 3, store.Count())

	events, err := store.Load()
	require.NoError(t, err)
	require.Len(t, events, 3)

	got, ok := events[0].(*env.VariableSetEvent)
	require.True(t, ok)
	assert.Equal(t, set.ID, got.ID)
	assert.Equal(t, "1d20", got.Value)
	assert.True(t, set.At.Equal(got.At))

	roll, ok := events[1].(*env.RollEvent)
	require.True(t, ok)
	assert.Equal(t, 9, roll.Value)

	snap, ok := events[2].(*env.SnapshotEvent)
	require.True(t, ok)
	assert.Equal(t, "2", snap.Tables["bob"]["b"])
}

func TestStoreRejectsUnknownEvents(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), LogFile)
	require.NoError(t, os.WriteFile(logPath, []byte(`{"type":"Nope","data":{}}`+"\n"), 0644))

	store, err := NewStore(logPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load()
	assert.ErrorContains(t, err, "unknown event type")
}

func TestStoreCompact(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), LogFile)
	store, err := NewStore(logPath)
	require.NoError(t, err)
	defer store.Close()

	for _, v := range []string{"1", "2", "3"} {
		require.NoError(t, store.Append(&env.VariableSetEvent{Meta: env.NewMeta(), User: "u", Name: "x", Value: v}))
	}

	snap := &env.SnapshotEvent{Meta: env.NewMeta(), Tables: env.Snapshot{"u": {"x": "3"}}}
	require.NoError(t, store.Compact([]env.Event{snap}))
	assert.Equal(t, 1, store.Count())

	require.NoError(t, store.Append(&env.VariableSetEvent{Meta: env.NewMeta(), User: "u", Name: "y", Value: "4"}))

	events, err := store.Load()
	require.NoError(t, err)
	require.Len(t, events, 2)

	e, err := env.NewProjector().Build(events)
	require.NoError(t, err)
	assert.Equal(t, env.Snapshot{env.Globals: {}, "u": {"x": "3", "y": "4"}}, e.Snapshot())

	_, err = os.Stat(logPath + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestStoreCompactRenameFailure(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), LogFile)
	store, err := NewStore(logPath)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append(&env.VariableSetEvent{Meta: env.NewMeta(), User: "u", Name: "x", Value: "1"}))

	rename = func(string, string) error { return errors.New("disk full") }
	defer func() { rename = os.Rename }()

	snap := &env.SnapshotEvent{Meta: env.NewMeta(), Tables: env.Snapshot{"u": {"x": "1"}}}
	assert.ErrorContains(t, store.Compact([]env.Event{snap}), "disk full")

	require.NoError(t, store.Append(&env.VariableSetEvent{Meta: env.NewMeta(), User: "u", Name: "y", Value: "2"}))

	events, err := store.Load()
	require.NoError(t, err)
	require.Len(t, events, 2)

	_, err = os.Stat(logPath + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestCampaignManager(t *testing.T) {
	mgr := NewCampaignManager(filepath.Join(t.TempDir(), "campaigns"))

	names, err := mgr.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = mgr.Load("ghost")
	assert.Error(t, err)

	_, err = mgr.Create("../escape")
	assert.ErrorIs(t, err, ErrInvalidName)

	store, err := mgr.Create("tuesday")
	require.NoError(t, err)
	require.NoError(t, store.Close())
	_, err = os.Stat(mgr.GetLogPath("tuesday"))
	require.NoError(t, err)

	store, err = mgr.Load("tuesday")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = mgr.Create("friday")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	names, err = mgr.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"friday", "tuesday"}, names)
	assert.Equal(t, filepath.Join(mgr.CampaignsDir, "friday", TelegramFile), mgr.GetTelegramPath("friday"))
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.Append(&env.VariableSetEvent{User: "a", Name: "x", Value: "1"}))
	require.NoError(t, m.Append(&env.VariableUnsetEvent{User: "a", Name: "x"}))
	assert.Equal(t, 2, m.Count())

	events, err := m.Load()
	require.NoError(t, err)
	require.Len(t, events, 2)

	snap := &env.SnapshotEvent{Tables: env.Snapshot{"a": {"y": "2"}}}
	require.NoError(t, m.Compact([]env.Event{snap}))
	assert.Equal(t, 1, m.Count())
	assert.Len(t, events, 2, "loaded slices are copies")
	require.NoError(t, m.Close())
}
