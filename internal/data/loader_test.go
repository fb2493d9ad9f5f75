package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGlobalsFallback(t *testing.T) {
	campaign := t.TempDir()
	shared := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(shared, "globals.yaml"), []byte("prof: \"2\"\natk: d20 + prof\n"), 0644))

	l := NewLoader([]string{campaign, shared})
	globals, err := l.LoadGlobals()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"prof": "2", "atk": "d20 + prof"}, globals)

	// The first directory wins once it has its own file.
	require.NoError(t, os.WriteFile(filepath.Join(campaign, "globals.yaml"), []byte("prof: \"3\"\n"), 0644))
	globals, err = l.LoadGlobals()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"prof": "3"}, globals)
}

func TestLoadGlobalsMissingAndBroken(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader([]string{dir})

	globals, err := l.LoadGlobals()
	require.NoError(t, err)
	assert.Empty(t, globals)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "globals.yaml"), []byte("- not\n- a map\n"), 0644))
	_, err = l.LoadGlobals()
	assert.Error(t, err)
}

func TestTelegramConfig(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader([]string{dir})

	cfg, err := l.LoadTelegram()
	require.NoError(t, err)
	assert.Empty(t, cfg.ChatIDs)

	cfg.ChatIDs = []string{"-1001", "42"}
	cfg.Users["7"] = "alice"
	cfg.Users["bogus"] = "bob"
	require.NoError(t, SaveTelegram(filepath.Join(dir, "telegram.yaml"), cfg))

	back, err := l.LoadTelegram()
	require.NoError(t, err)
	chats, err := back.Chats()
	require.NoError(t, err)
	assert.Equal(t, []int64{-1001, 42}, chats)
	assert.Equal(t, map[int64]string{7: "alice"}, back.UserNames())

	back.ChatIDs = []string{"x"}
	_, err = back.Chats()
	assert.Error(t, err)
}
