package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/rolldice/internal/dice"
)

var _ dice.Env = (*View)(nil)

func TestViewFallsBackToGlobals(t *testing.T) {
	e := New()
	e.SetGlobal("prof", "3")
	alice := e.ForUser("alice")
	bob := e.ForUser("bob")

	v, err := alice.Get("prof")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	alice.Set("prof", "5")
	v, _ = alice.Get("prof")
	assert.Equal(t, "5", v)
	v, _ = bob.Get("prof")
	assert.Equal(t, "3", v)

	_, err = bob.Get("missing")
	assert.ErrorIs(t, err, ErrNotDefined)
	assert.EqualError(t, err, "name 'missing' is not defined")
}

func TestDirtyTracking(t *testing.T) {
	e := New()
	assert.False(t, e.Dirty())

	e.ForUser("alice").Set("a", "1d20")
	assert.True(t, e.Dirty())

	e.MarkClean()
	assert.False(t, e.ForUser("alice").Unset("nope"))
	assert.False(t, e.Dirty())
	assert.True(t, e.ForUser("alice").Unset("a"))
	assert.True(t, e.Dirty())
	assert.Empty(t, e.Users())
}

func TestBindingsAndNames(t *testing.T) {
	e := New()
	e.SetGlobal("z", "1")
	v := e.ForUser("alice")
	v.Set("b", "2")
	v.Set("a", "3")

	assert.Equal(t, []string{"a", "b", "z"}, v.Names())
	assert.Equal(t, map[string]string{"a": "3", "b": "2", "z": "1"}, v.Bindings())
	assert.Equal(t, []string{"alice"}, e.Users())
}

func TestMergeGlobalsKeepsExisting(t *testing.T) {
	e := New()
	e.SetGlobal("a", "journal")
	e.MergeGlobals(map[string]string{"a": "file", "b": "file"})

	s := e.Snapshot()
	assert.Equal(t, map[string]string{"a": "journal", "b": "file"}, s[Globals])
}

func TestYAMLRoundTrip(t *testing.T) {
	e := New()
	e.SetGlobal("prof", "2")
	e.ForUser("alice").Set("atk", "d20 + prof")

	data, err := e.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "atk: d20 + prof")

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, e.Snapshot(), back.Snapshot())

	_, err = Unmarshal([]byte("globals: [1, 2"))
	assert.Error(t, err)

	empty, err := Unmarshal([]byte(""))
	require.NoError(t, err)
	assert.NotNil(t, empty.Snapshot()[Globals])
}

func TestSnapshotIsACopy(t *testing.T) {
	e := New()
	e.SetGlobal("a", "1")
	s := e.Snapshot()
	s[Globals]["a"] = "mutated"

	v, _ := e.ForUser("x").Get("a")
	assert.Equal(t, "1", v)
}

func TestProjector(t *testing.T) {
	events := []Event{
		&VariableSetEvent{Meta: NewMeta(), User: "alice", Name: "a", Value: "1d20"},
		&VariableSetEvent{Meta: NewMeta(), User: Globals, Name: "g", Value: "4"},
		&RollEvent{Meta: NewMeta(), User: "alice", Source: "a", Trace: "a", Value: 12},
		&VariableSetEvent{Meta: NewMeta(), User: "bob", Name: "b", Value: "2"},
		&VariableUnsetEvent{Meta: NewMeta(), User: "bob", Name: "b"},
	}

	e, err := NewProjector().Build(events)
	require.NoError(t, err)
	assert.False(t, e.Dirty())
	assert.Equal(t, Snapshot{
		Globals: {"g": "4"},
		"alice": {"a": "1d20"},
	}, e.Snapshot())

	replaced, err := NewProjector().Build(append(events,
		&SnapshotEvent{Meta: NewMeta(), Tables: Snapshot{"carol": {"c": "3"}}}))
	require.NoError(t, err)
	assert.Equal(t, Snapshot{Globals: {}, "carol": {"c": "3"}}, replaced.Snapshot())

	_, err = NewProjector().Build([]Event{&VariableSetEvent{Meta: NewMeta(), User: "x"}})
	assert.Error(t, err)
}

func TestViewEvaluates(t *testing.T) {
	e := New()
	e.SetGlobal("prof", "2")
	v := e.ForUser("alice")

	res, err := dice.NewEngine().Execute("atk = 5 + prof", v)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Value)

	got, err := v.Get("atk")
	require.NoError(t, err)
	assert.Equal(t, "(5 + prof)", got)
}
