package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/suderio/rolldice/internal/env"
)

// EventWrapper facilitates serialization of polymorphic events.
type EventWrapper struct {
	Type  env.EventType   `json:"type"`
	Event json.RawMessage `json:"data"`
}

// Store handles append-only storing of the environment event log.
type Store struct {
	mu    sync.Mutex
	path  string
	file  *os.File
	count int
}

// NewStore opens or creates the file at path for appending lines.
func NewStore(path string) (*Store, error) {
	file, err := openLog(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, file: file}, nil
}

func openLog(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}
	return file, nil
}

// Path is the location of the journal.
func (s *Store) Path() string { return s.path }

// Count is the number of events in the journal as of the last Load, plus
// everything appended since.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func encode(evt env.Event) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", evt.Type(), err)
	}
	line, err := json.Marshal(EventWrapper{Type: evt.Type(), Event: data})
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

// Append marshals an event to the jsonl log and syncs it to disk.
func (s *Store) Append(evt env.Event) error {
	line, err := encode(evt)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(line); err != nil {
		return err
	}
	s.count++
	return s.file.Sync()
}

// Load replays all jsonl lines and unpacks them to an Event slice.
func (s *Store) Load() ([]env.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, 0); err != nil {
		return nil, err
	}

	var events []env.Event
	scanner := bufio.NewScanner(s.file)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var wrapper EventWrapper
		if err := json.Unmarshal(scanner.Bytes(), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode wrapper: %w", err)
		}
		evt, err := decode(wrapper)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	s.count = len(events)
	return events, nil
}

func decode(wrapper EventWrapper) (env.Event, error) {
	var evt env.Event
	switch wrapper.Type {
	case env.EventVariableSet:
		evt = &env.VariableSetEvent{}
	case env.EventVariableUnset:
		evt = &env.VariableUnsetEvent{}
	case env.EventSnapshot:
		evt = &env.SnapshotEvent{}
	case env.EventRolled:
		evt = &env.RollEvent{}
	default:
		return nil, fmt.Errorf("unknown event type in log: %s", wrapper.Type)
	}

	if err := json.Unmarshal(wrapper.Event, evt); err != nil {
		return nil, fmt.Errorf("failed to parse event data into specific type: %w", err)
	}
	return evt, nil
}

var rename = os.Rename

// Compact replaces the journal with events. The new log is written next to
// the old one and renamed over it, so a crash leaves one of the two intact.
func (s *Store) Compact(events []env.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmpPath := s.path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create compacted log: %w", err)
	}
	for _, evt := range events {
		line, err := encode(evt)
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
		if _, err := tmp.Write(line); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := s.file.Close(); err != nil {
		return err
	}
	if err := rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		if file, openErr := openLog(s.path); openErr == nil {
			s.file = file
		}
		return fmt.Errorf("failed to replace log: %w", err)
	}
	file, err := openLog(s.path)
	if err != nil {
		return err
	}
	s.file = file
	s.count = len(events)
	return nil
}

// Close handles safe shutdown.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
