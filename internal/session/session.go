// Package session ties the dice engine, the variable environment and the
// event journal together behind a single Execute call.
package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/suderio/rolldice/internal/calc"
	"github.com/suderio/rolldice/internal/command"
	"github.com/suderio/rolldice/internal/dice"
	"github.com/suderio/rolldice/internal/env"
	"github.com/suderio/rolldice/internal/logger"
)

// ErrEmptyInput is returned for blank lines.
var ErrEmptyInput = errors.New("empty input")

// Store defines the dependency required by Session to persist events
type Store interface {
	Append(evt env.Event) error
	Load() ([]env.Event, error)
	Compact(events []env.Event) error
	Count() int
	Close() error
}

// Session executes user commands against a shared environment. Calls for
// the same user are serialised; different users run concurrently.
type Session struct {
	engine  *dice.Engine
	store   Store
	globals map[string]string

	// mu guards env against wholesale replacement.
	mu  sync.RWMutex
	env *env.Environment

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewSession replays the journal in store and layers globals under it.
func NewSession(engine *dice.Engine, store Store, globals map[string]string) (*Session, error) {
	s := &Session{
		engine:  engine,
		store:   store,
		globals: globals,
		locks:   make(map[string]*sync.Mutex),
	}
	if err := s.Rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// Rebuild reads the entire event log from the store and projects the
// environment again.
func (s *Session) Rebuild() error {
	events, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load event log: %w", err)
	}
	e, err := env.NewProjector().Build(events)
	if err != nil {
		return fmt.Errorf("failed to project environment: %w", err)
	}
	e.MergeGlobals(s.globals)

	s.mu.Lock()
	s.env = e
	s.mu.Unlock()
	logger.Debug("environment rebuilt", zap.Int("events", len(events)))
	return nil
}

// Environment returns the current projected environment.
func (s *Session) Environment() *env.Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env
}

func (s *Session) userLock(user string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[user]
	if !ok {
		l = &sync.Mutex{}
		s.locks[user] = l
	}
	return l
}

// Execute runs one line of input on behalf of user.
func (s *Session) Execute(user, input string) (*Reply, error) {
	in := command.Parse(input)
	if in.Name == "" {
		return nil, ErrEmptyInput
	}

	switch in.Name {
	case "roll":
		return s.roll(user, in)
	case "calc":
		return s.calc(in)
	case "vars":
		return s.vars(user, in)
	case "unset":
		return s.unset(user, in)
	case "help":
		text, err := command.HelpText(in.Args)
		if err != nil {
			return nil, err
		}
		return &Reply{Command: in.Name, Lines: strings.Split(text, "\n")}, nil
	}
	return nil, fmt.Errorf("%w: %s", command.ErrUnknownCommand, in.Name)
}

func usage(name string) error {
	h, _ := command.Lookup(name)
	return fmt.Errorf("usage: %s", h.Usage)
}

func (s *Session) roll(user string, in command.Input) (*Reply, error) {
	if in.Args == "" {
		return nil, usage(in.Name)
	}

	lock := s.userLock(user)
	lock.Lock()
	defer lock.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := &journalingView{View: s.env.ForUser(user), store: s.store}
	res, err := s.engine.Execute(in.Args, view)
	if view.err != nil {
		return nil, fmt.Errorf("failed to persist event log: %w", view.err)
	}
	if err != nil {
		return nil, err
	}

	audit := &env.RollEvent{Meta: env.NewMeta(), User: user, Source: in.Args, Trace: res.Trace, Value: res.Value}
	if err := s.store.Append(audit); err != nil {
		logger.Warn("failed to journal roll", zap.String("user", user), zap.Error(err))
	}

	lines := res.Texts()
	lines = append(lines, fmt.Sprintf("%s = %d", res.Trace, res.Value))
	return &Reply{Command: in.Name, Source: in.Args, Result: &res, Lines: lines}, nil
}

func (s *Session) calc(in command.Input) (*Reply, error) {
	if in.Args == "" {
		return nil, usage(in.Name)
	}
	v, err := calc.Calculate(in.Args)
	if err != nil {
		return nil, err
	}
	return &Reply{
		Command: in.Name,
		Source:  in.Args,
		Lines:   []string{fmt.Sprintf("%s = %g", in.Args, v)},
	}, nil
}

func (s *Session) vars(user string, in command.Input) (*Reply, error) {
	s.mu.RLock()
	bindings := s.env.ForUser(user).Bindings()
	s.mu.RUnlock()

	if len(bindings) == 0 {
		return &Reply{Command: in.Name, Lines: []string{"No variables set."}}, nil
	}
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%s = %s", name, bindings[name])
	}
	return &Reply{Command: in.Name, Lines: lines}, nil
}

func (s *Session) unset(user string, in command.Input) (*Reply, error) {
	name := strings.TrimSpace(in.Args)
	if name == "" || strings.ContainsAny(name, " \t") {
		return nil, usage(in.Name)
	}

	lock := s.userLock(user)
	lock.Lock()
	defer lock.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := s.env.ForUser(user)
	if !view.Owns(name) {
		if _, err := view.Get(name); err == nil {
			return &Reply{Command: in.Name, Lines: []string{fmt.Sprintf("%s is shared and can't be unset.", name)}}, nil
		}
		return &Reply{Command: in.Name, Lines: []string{fmt.Sprintf("%s was not set.", name)}}, nil
	}
	evt := &env.VariableUnsetEvent{Meta: env.NewMeta(), User: user, Name: name}
	if err := s.store.Append(evt); err != nil {
		return nil, fmt.Errorf("failed to persist event log: %w", err)
	}
	view.Unset(name)
	return &Reply{Command: in.Name, Lines: []string{fmt.Sprintf("Unset %s.", name)}}, nil
}

// Snapshot copies the whole environment.
func (s *Session) Snapshot() env.Snapshot {
	return s.Environment().Snapshot()
}

// ReplaceSnapshot swaps the environment for snap and journals the change.
func (s *Session) ReplaceSnapshot(snap env.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	evt := &env.SnapshotEvent{Meta: env.NewMeta(), Tables: snap.Clone()}
	if err := s.store.Append(evt); err != nil {
		return fmt.Errorf("failed to persist event log: %w", err)
	}
	if err := evt.Apply(s.env); err != nil {
		return err
	}
	s.env.MergeGlobals(s.globals)
	logger.Info("environment replaced", zap.Int("tables", len(snap)))
	return nil
}

// Compact rewrites the journal as a single snapshot of the current state.
func (s *Session) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.Count()
	evt := &env.SnapshotEvent{Meta: env.NewMeta(), Tables: s.env.Snapshot()}
	if err := s.store.Compact([]env.Event{evt}); err != nil {
		return fmt.Errorf("failed to compact event log: %w", err)
	}
	s.env.MarkClean()
	logger.Info("journal compacted", zap.Int("before", before))
	return nil
}

// CompactIfLarger compacts once the journal holds more than threshold
// events. It reports whether it did.
func (s *Session) CompactIfLarger(threshold int) (bool, error) {
	if s.store.Count() <= threshold {
		return false, nil
	}
	return true, s.Compact()
}

// Close handles safe shutdown.
func (s *Session) Close() error {
	return s.store.Close()
}
