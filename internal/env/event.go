package env

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

type EventType string

const (
	EventVariableSet   EventType = "VariableSet"
	EventVariableUnset EventType = "VariableUnset"
	EventSnapshot      EventType = "Snapshot"
	EventRolled        EventType = "Rolled"
)

// Event is one journaled change to an Environment.
type Event interface {
	Type() EventType
	Apply(e *Environment) error
	Message() string
}

// Meta identifies an event in the journal.
type Meta struct {
	ID uuid.UUID `json:"id"`
	At time.Time `json:"at"`
}

// NewMeta stamps a fresh event.
func NewMeta() Meta {
	return Meta{ID: uuid.Must(uuid.NewV4()), At: time.Now().UTC()}
}

// VariableSetEvent binds a name for a user (or for Globals).
type VariableSetEvent struct {
	Meta
	User  string `json:"user"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (e *VariableSetEvent) Type() EventType { return EventVariableSet }
func (e *VariableSetEvent) Apply(env *Environment) error {
	if e.Name == "" {
		return fmt.Errorf("variable set event %s has no name", e.ID)
	}
	env.Set(e.User, e.Name, e.Value)
	return nil
}
func (e *VariableSetEvent) Message() string {
	return fmt.Sprintf("%s set %s = %s", e.User, e.Name, e.Value)
}

// VariableUnsetEvent removes a binding.
type VariableUnsetEvent struct {
	Meta
	User string `json:"user"`
	Name string `json:"name"`
}

func (e *VariableUnsetEvent) Type() EventType { return EventVariableUnset }
func (e *VariableUnsetEvent) Apply(env *Environment) error {
	env.Unset(e.User, e.Name)
	return nil
}
func (e *VariableUnsetEvent) Message() string {
	return fmt.Sprintf("%s unset %s", e.User, e.Name)
}

// SnapshotEvent replaces the whole environment. Compaction and admin edits
// write one.
type SnapshotEvent struct {
	Meta
	Tables Snapshot `json:"tables"`
}

func (e *SnapshotEvent) Type() EventType { return EventSnapshot }
func (e *SnapshotEvent) Apply(env *Environment) error {
	env.Replace(e.Tables)
	return nil
}
func (e *SnapshotEvent) Message() string {
	return fmt.Sprintf("environment replaced (%d tables)", len(e.Tables))
}

// RollEvent records an evaluation for auditing. It does not change state.
type RollEvent struct {
	Meta
	User   string `json:"user"`
	Source string `json:"source"`
	Trace  string `json:"trace"`
	Value  int    `json:"value"`
}

func (e *RollEvent) Type() EventType            { return EventRolled }
func (e *RollEvent) Apply(_ *Environment) error { return nil }
func (e *RollEvent) Message() string {
	return fmt.Sprintf("%s rolled %s = %d", e.User, e.Trace, e.Value)
}
