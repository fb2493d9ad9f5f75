// Package env stores named dice expressions per user, with a shared
// globals table consulted when a user has no binding of their own.
package env

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Globals is the table every user falls back to.
const Globals = "globals"

// ErrNotDefined is wrapped by lookups of names bound nowhere.
var ErrNotDefined = errors.New("not defined")

// Snapshot is a plain copy of an environment: table name to bindings.
// The Globals entry holds the shared table.
type Snapshot map[string]map[string]string

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for table, vars := range s {
		cp := make(map[string]string, len(vars))
		for k, v := range vars {
			cp[k] = v
		}
		out[table] = cp
	}
	return out
}

// Environment holds every user's bindings. Its methods are safe for
// concurrent use; ordering of evaluations per user is up to the caller.
type Environment struct {
	mu     sync.RWMutex
	tables Snapshot
	dirty  bool
}

// New returns an empty environment.
func New() *Environment {
	return &Environment{tables: Snapshot{Globals: {}}}
}

// FromSnapshot builds an environment holding a copy of s.
func FromSnapshot(s Snapshot) *Environment {
	tables := s.Clone()
	if tables[Globals] == nil {
		tables[Globals] = map[string]string{}
	}
	return &Environment{tables: tables}
}

// Unmarshal decodes a YAML document of the form produced by Marshal.
func Unmarshal(data []byte) (*Environment, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	return FromSnapshot(s), nil
}

// Marshal encodes the environment as YAML.
func (e *Environment) Marshal() ([]byte, error) {
	return yaml.Marshal(e.Snapshot())
}

// Snapshot returns a deep copy of every table.
func (e *Environment) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tables.Clone()
}

// Replace swaps the whole content for s.
func (e *Environment) Replace(s Snapshot) {
	tables := s.Clone()
	if tables[Globals] == nil {
		tables[Globals] = map[string]string{}
	}
	e.mu.Lock()
	e.tables = tables
	e.dirty = true
	e.mu.Unlock()
}

// Get looks name up for user, then in globals.
func (e *Environment) Get(user, name string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if v, ok := e.tables[user][name]; ok {
		return v, nil
	}
	if v, ok := e.tables[Globals][name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("name '%s' is %w", name, ErrNotDefined)
}

// Has reports whether user's own table binds name.
func (e *Environment) Has(user, name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.tables[user][name]
	return ok
}

// Set binds name for user. Using Globals as user writes the shared table.
func (e *Environment) Set(user, name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tables[user] == nil {
		e.tables[user] = map[string]string{}
	}
	e.tables[user][name] = value
	e.dirty = true
}

// Unset removes a binding and reports whether there was one.
func (e *Environment) Unset(user, name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.tables[user][name]; !ok {
		return false
	}
	delete(e.tables[user], name)
	if len(e.tables[user]) == 0 && user != Globals {
		delete(e.tables, user)
	}
	e.dirty = true
	return true
}

// SetGlobal binds name in the shared table.
func (e *Environment) SetGlobal(name, value string) {
	e.Set(Globals, name, value)
}

// MergeGlobals adds bindings that are not already global. Existing globals
// win, so values restored from the journal shadow file defaults.
func (e *Environment) MergeGlobals(defaults map[string]string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, v := range defaults {
		if _, ok := e.tables[Globals][k]; !ok {
			e.tables[Globals][k] = v
		}
	}
}

// Bindings returns a copy of the bindings user sees, globals included.
func (e *Environment) Bindings(user string) map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]string, len(e.tables[Globals])+len(e.tables[user]))
	for k, v := range e.tables[Globals] {
		out[k] = v
	}
	for k, v := range e.tables[user] {
		out[k] = v
	}
	return out
}

// Users lists the tables other than globals, sorted.
func (e *Environment) Users() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []string
	for user := range e.tables {
		if user != Globals {
			out = append(out, user)
		}
	}
	sort.Strings(out)
	return out
}

// Dirty reports whether anything changed since the last MarkClean.
func (e *Environment) Dirty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dirty
}

// MarkClean resets the dirty flag once changes are persisted.
func (e *Environment) MarkClean() {
	e.mu.Lock()
	e.dirty = false
	e.mu.Unlock()
}

// ForUser returns the view of one user.
func (e *Environment) ForUser(user string) *View {
	return &View{env: e, user: user}
}
