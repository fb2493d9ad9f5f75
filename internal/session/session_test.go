package session

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/rolldice/internal/command"
	"github.com/suderio/rolldice/internal/dice"
	"github.com/suderio/rolldice/internal/env"
	"github.com/suderio/rolldice/internal/persistence"
)

func newSession(t *testing.T, rolls ...int) (*Session, *persistence.Store) {
	t.Helper()
	store, err := persistence.NewStore(filepath.Join(t.TempDir(), persistence.LogFile))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine := dice.NewEngine(dice.WithRoller(dice.NewQueueRoller(rolls...)))
	s, err := NewSession(engine, store, map[string]string{"prof": "2"})
	require.NoError(t, err)
	return s, store
}

func TestRollAndJournal(t *testing.T) {
	s, store := newSession(t, 14, 3)

	reply, err := s.Execute("alice", "/roll atk = d20 + prof")
	require.NoError(t, err)
	assert.Equal(t, 16, reply.Result.Value)
	assert.Equal(t, "atk = (d20 + prof) = 16", reply.Lines[len(reply.Lines)-1])

	reply, err = s.Execute("alice", "!atk")
	require.NoError(t, err)
	assert.Equal(t, 5, reply.Result.Value)
	assert.Equal(t, []string{"atk → (d20 + prof)", "d20 → [3]", "prof → 2", "atk = 5"}, reply.Lines)

	events, err := store.Load()
	require.NoError(t, err)
	require.Len(t, events, 3)
	set, ok := events[0].(*env.VariableSetEvent)
	require.True(t, ok)
	assert.Equal(t, "alice", set.User)
	assert.Equal(t, "(d20 + prof)", set.Value)
	assert.IsType(t, &env.RollEvent{}, events[1])

	// Another user does not see alice's variable.
	_, err = s.Execute("bob", "atk")
	var nameErr *dice.NameError
	assert.ErrorAs(t, err, &nameErr)
}

func TestRebuildFromJournal(t *testing.T) {
	s, store := newSession(t, 6)
	_, err := s.Execute("alice", "hp = 10")
	require.NoError(t, err)
	_, err = s.Execute("alice", "hp -= 3")
	require.NoError(t, err)

	again, err := NewSession(dice.NewEngine(), store, nil)
	require.NoError(t, err)
	v, err := again.Environment().ForUser("alice").Get("hp")
	require.NoError(t, err)
	assert.Equal(t, "(10 - 3)", v)

	// Globals come from the session that was handed them, not the journal.
	_, err = again.Environment().ForUser("alice").Get("prof")
	assert.ErrorIs(t, err, env.ErrNotDefined)
}

func TestVarsAndUnset(t *testing.T) {
	s, _ := newSession(t)

	reply, err := s.Execute("alice", "vars")
	require.NoError(t, err)
	assert.Equal(t, []string{"prof = 2"}, reply.Lines)

	_, err = s.Execute("alice", "b = 3")
	require.NoError(t, err)
	_, err = s.Execute("alice", "a = 1d4")
	require.NoError(t, err)

	reply, err = s.Execute("alice", "/vars")
	require.NoError(t, err)
	assert.Equal(t, []string{"a = 1d4", "b = 3", "prof = 2"}, reply.Lines)

	reply, err = s.Execute("alice", "unset a")
	require.NoError(t, err)
	assert.Equal(t, "Unset a.", reply.Text())

	reply, err = s.Execute("alice", "unset a")
	require.NoError(t, err)
	assert.Equal(t, "a was not set.", reply.Text())

	reply, err = s.Execute("alice", "unset prof")
	require.NoError(t, err)
	assert.Equal(t, "prof is shared and can't be unset.", reply.Text())

	_, err = s.Execute("alice", "unset")
	assert.ErrorContains(t, err, "usage: unset <name>")

	reply, err = s.Execute("bob", "vars")
	require.NoError(t, err)
	assert.Equal(t, []string{"prof = 2"}, reply.Lines)
}

func TestOtherCommands(t *testing.T) {
	s, _ := newSession(t)

	reply, err := s.Execute("alice", "/calc 3 / 4")
	require.NoError(t, err)
	assert.Equal(t, "3 / 4 = 0.75", reply.Text())

	reply, err = s.Execute("alice", "/help")
	require.NoError(t, err)
	assert.Equal(t, "Available commands:", reply.Lines[0])

	_, err = s.Execute("alice", "/dance")
	assert.ErrorIs(t, err, command.ErrUnknownCommand)

	_, err = s.Execute("alice", "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = s.Execute("alice", "/roll")
	assert.ErrorContains(t, err, "usage")
}

func TestSnapshotAndCompact(t *testing.T) {
	s, store := newSession(t)
	for _, line := range []string{"a = 1", "a += 1", "a += 1"} {
		_, err := s.Execute("alice", line)
		require.NoError(t, err)
	}
	assert.True(t, s.Environment().Dirty())

	did, err := s.CompactIfLarger(100)
	require.NoError(t, err)
	assert.False(t, did)

	did, err = s.CompactIfLarger(1)
	require.NoError(t, err)
	assert.True(t, did)
	assert.Equal(t, 1, store.Count())
	assert.False(t, s.Environment().Dirty())

	require.NoError(t, s.Rebuild())
	v, err := s.Environment().ForUser("alice").Get("a")
	require.NoError(t, err)
	assert.Equal(t, "(2 + 1)", v)

	require.NoError(t, s.ReplaceSnapshot(env.Snapshot{"carol": {"c": "d6"}}))
	snap := s.Snapshot()
	assert.Equal(t, map[string]string{"c": "d6"}, snap["carol"])
	assert.Equal(t, map[string]string{"prof": "2"}, snap[env.Globals])
	assert.NotContains(t, snap, "alice")

	require.NoError(t, s.Rebuild())
	assert.Equal(t, snap, s.Snapshot())
}

type failingStore struct{}

func (failingStore) Append(env.Event) error     { return errors.New("disk full") }
func (failingStore) Load() ([]env.Event, error) { return nil, nil }
func (failingStore) Compact([]env.Event) error  { return errors.New("disk full") }
func (failingStore) Count() int                 { return 0 }
func (failingStore) Close() error               { return nil }

func TestJournalFailures(t *testing.T) {
	s, err := NewSession(dice.NewEngine(), failingStore{}, nil)
	require.NoError(t, err)

	_, err = s.Execute("alice", "a = 3")
	assert.ErrorContains(t, err, "disk full")
	_, err = s.Environment().ForUser("alice").Get("a")
	assert.Error(t, err)

	// Plain rolls still work when only the audit entry fails.
	reply, err := s.Execute("alice", "2 + 2")
	require.NoError(t, err)
	assert.Equal(t, 4, reply.Result.Value)

	assert.Error(t, s.Compact())
}

func TestConcurrentUsers(t *testing.T) {
	s, store := newSession(t)

	var wg sync.WaitGroup
	for _, user := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_, err := s.Execute(user, "n += 1")
				if err != nil {
					_, err = s.Execute(user, "n = 0")
				}
				assert.NoError(t, err)
			}
		}(user)
	}
	wg.Wait()

	for _, user := range []string{"a", "b", "c", "d"} {
		reply, err := s.Execute(user, "n")
		require.NoError(t, err)
		assert.Equal(t, 19, reply.Result.Value)
	}

	events, err := store.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}
