package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bctl/internal/errors"
	"git.home.luguber.info/inful/bctl/internal/state"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWithoutOverrideYieldsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_DIR", t.TempDir())

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, Defaults().LogLevel, cfg.LogLevel)
	assert.Equal(t, Defaults().BrightnessStep, cfg.BrightnessStep)
	assert.Equal(t, Defaults().Notify, cfg.Notify)
	assert.Equal(t, state.Empty(), cfg.State)
}

func TestLoadOverridePrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.json", `{
		"log_lvl": "DEBUG",
		"brightness_step": 10,
		"notify": {"enabled": false}
	}`)

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)

	// Leaf keys present in the override win.
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 10, cfg.BrightnessStep)
	assert.False(t, cfg.Notify.Enabled)
	// Sibling keys in the same sub-mapping keep their defaults.
	assert.True(t, cfg.Notify.OnFatalErr)
	assert.Equal(t, "gtk-dialog-error", cfg.Notify.ErrIcon)
	// Keys absent from the override keep their defaults.
	assert.Equal(t, CtlDDCUtil, cfg.MainDisplayCtl)
}

func TestLoadSequenceMergeByIndex(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.json", `{"ddcutil_svcp_flags": ["--noverify"]}`)

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)

	// Single-element default list: override index 0 replaces it.
	assert.Equal(t, []string{"--noverify"}, cfg.DDCUtilSetVCPFlags)
}

func TestLoadSequenceMergeKeepsDefaultTail(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.json", `{"ignored_displays": ["DP-1"]}`)

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"DP-1"}, cfg.IgnoredDisplays)
}

func TestLoadMalformedOverrideFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.json", `{broken`)

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, Defaults().LogLevel, cfg.LogLevel)
}

func TestLoadWrongTypedOverrideFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.json", `{"brightness_step": "five"}`)

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, Defaults().BrightnessStep, cfg.BrightnessStep)
}

func TestLoadYAMLSibling(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "log_lvl: ERROR\nbrightness_step: 2\n")

	cfg, err := Load(LoadOptions{Path: filepath.Join(dir, "config.json")})
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.LogLevel)
	assert.Equal(t, 2, cfg.BrightnessStep)
}

func TestLoadPreservesUnknownKeysInRaw(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.json", `{"future_knob": 42}`)

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, float64(42), cfg.Raw()["future_knob"])
}

func TestLoadIncludeStateAttachesRecord(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "bctld.state")
	require.NoError(t, state.NewStore(statePath, nil).Write(42))

	cfgPath := writeConfig(t, dir, "config.json", `{"state_f_path": `+mustJSON(statePath)+`}`)

	cfg, err := Load(LoadOptions{Path: cfgPath, IncludeState: true})
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.State.LastSetBrightness)
}

func TestLoadNormalizesUnknownController(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.json", `{"main_display_ctl": "XRANDR"}`)

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, CtlDDCUtil, cfg.MainDisplayCtl)
}

func TestDefaultPathPrefersXDGConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_DIR", "/etc/xdg")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/xdg/bctl/config.json", path)
}

func TestDefaultPathFallsBackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_DIR", "")
	t.Setenv("HOME", "/home/u")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.config/bctl/config.json", path)
}

func TestDefaultPathFatalWithoutHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_DIR", "")
	t.Setenv("HOME", "")

	_, err := DefaultPath()
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestWriteStateFlushesInMemoryRecord(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "config.json",
		`{"state_f_path": `+mustJSON(filepath.Join(dir, "bctld.state"))+`}`)

	cfg, err := Load(LoadOptions{Path: cfgPath, IncludeState: true})
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.State.LastSetBrightness)

	cfg.State.LastSetBrightness = 66
	require.NoError(t, cfg.WriteState(nil))

	assert.Equal(t, 66, state.Load(cfg.StateFilePath).LastSetBrightness)
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
