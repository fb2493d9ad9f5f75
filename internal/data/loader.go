package data

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no data directory holds a reference.
var ErrNotFound = errors.New("reference not found")

const (
	globalsRef  = "globals.yaml"
	telegramRef = "telegram.yaml"
)

// Loader handles reading records from the read-only data layer
type Loader struct {
	dataDirs []string
}

// NewLoader initializes a new Data Loader with the given data directory fallback hierarchy
func NewLoader(dataDirs []string) *Loader {
	return &Loader{
		dataDirs: dataDirs,
	}
}

// LoadGlobals reads the shared variables of the first globals.yaml found.
// A missing file is not an error.
func (l *Loader) LoadGlobals() (map[string]string, error) {
	globals := map[string]string{}
	err := l.load(globalsRef, &globals)
	if errors.Is(err, ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return globals, nil
}

// LoadTelegram reads chat settings. A missing file yields empty settings.
func (l *Loader) LoadTelegram() (*TelegramConfig, error) {
	cfg := &TelegramConfig{}
	err := l.load(telegramRef, cfg)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if cfg.Users == nil {
		cfg.Users = map[string]string{}
	}
	return cfg, nil
}

func (l *Loader) load(ref string, target interface{}) error {
	for _, dir := range l.dataDirs {
		path := filepath.Join(dir, ref)
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			decoder := yaml.NewDecoder(f)
			if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("failed to decode yaml reference %s: %w", ref, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s in any available data directory", ErrNotFound, ref)
}

// SaveTelegram writes chat settings as YAML to path.
func SaveTelegram(path string, cfg *TelegramConfig) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}
