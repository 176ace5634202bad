package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/bctl/internal/deepmerge"
	"git.home.luguber.info/inful/bctl/internal/errors"
	"git.home.luguber.info/inful/bctl/internal/logfields"
	"git.home.luguber.info/inful/bctl/internal/metrics"
	"git.home.luguber.info/inful/bctl/internal/state"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// Path points at an explicit override file. Empty resolves the default
	// location under the user's config directory.
	Path string
	// IncludeState attaches the persisted state record from the configured
	// state file path.
	IncludeState bool
}

// DefaultPath resolves the canonical override file location:
// ${XDG_CONFIG_DIR:-$HOME/.config}/bctl/config.json. A missing HOME with
// XDG_CONFIG_DIR unset is a structural failure the caller must treat as
// fatal; there is no sane fallback base directory.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_DIR")
	if dir == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return "", errors.Fatal(errors.CategoryConfig, "neither XDG_CONFIG_DIR nor HOME is set, cannot locate config directory")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "bctl", "config.json"), nil
}

// Load builds the effective configuration: compiled-in defaults, deep-merged
// with the optional override file. A missing, unreadable or malformed
// override is logged and treated as empty; only a failure to resolve the
// config directory itself propagates.
func Load(opts LoadOptions) (*Config, error) {
	loadEnvFiles()

	path := opts.Path
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	base, err := toDocument(Defaults())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityError, "failed to encode default configuration")
	}

	override := readOverride(path)
	merged := deepmerge.Merge(base, override)

	cfg, err := fromDocument(merged)
	if err != nil {
		// A well-formed override with wrong-typed values must not abort the
		// load; fall back to the defaults alone.
		slog.Error("Override has incompatible value types, ignoring it",
			logfields.Path(path), logfields.Error(err))
		merged = base
		cfg, err = fromDocument(base)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityError, "failed to decode default configuration")
		}
	}
	cfg.raw = merged
	cfg.normalize()

	cfg.State = state.Empty()
	if opts.IncludeState {
		cfg.State = state.Load(cfg.StateFilePath)
	}

	return cfg, nil
}

// WriteState flushes the in-memory state record (a fresh timestamp and
// schema version, plus the current State.LastSetBrightness) to the
// configured state file path.
func (c *Config) WriteState(recorder metrics.Recorder) error {
	return state.NewStore(c.StateFilePath, recorder).Write(c.State.LastSetBrightness)
}

// loadEnvFiles loads environment variables from the first available
// .env/.env.local file. Existing process environment is not overridden.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load env file", logfields.Path(envPath), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(envPath))
		return
	}
}

// readOverride reads the override document at path. When the canonical .json
// file is absent, .yaml/.yml siblings are accepted. Any failure yields an
// empty override.
func readOverride(path string) map[string]any {
	candidates := []string{path}
	if ext := filepath.Ext(path); ext == ".json" {
		stem := strings.TrimSuffix(path, ext)
		candidates = append(candidates, stem+".yaml", stem+".yml")
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		return parseOverride(candidate)
	}
	return map[string]any{}
}

// parseOverride parses a single override file; failures degrade to empty.
func parseOverride(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Error trying to read config file", logfields.Path(path), logfields.Error(err))
		return map[string]any{}
	}

	doc := map[string]any{}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		slog.Error("Error trying to parse config file", logfields.Path(path), logfields.Error(err))
		return map[string]any{}
	}
	return doc
}

// toDocument converts the typed configuration into a generic merge document.
func toDocument(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// fromDocument decodes a merge document back into the typed configuration.
// Unknown keys are dropped here but remain visible through Raw.
func fromDocument(doc map[string]any) (*Config, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode merged configuration: %w", err)
	}
	return &cfg, nil
}

// normalize resets values outside the documented schema to their defaults,
// logging each correction. Silent pass-through of an unknown controller name
// would otherwise surface much later as a confusing exec failure.
func (c *Config) normalize() {
	defaults := Defaults()

	validCtl := map[string]bool{CtlRaw: true, CtlDDCUtil: true, CtlBrightnessCtl: true, CtlBrillo: true}
	if !validCtl[c.MainDisplayCtl] {
		slog.Warn("Unknown main_display_ctl, using default",
			slog.String("value", c.MainDisplayCtl), slog.String("default", defaults.MainDisplayCtl))
		c.MainDisplayCtl = defaults.MainDisplayCtl
	}
	if !validCtl[c.InternalDisplayCtl] {
		slog.Warn("Unknown internal_display_ctl, using default",
			slog.String("value", c.InternalDisplayCtl), slog.String("default", defaults.InternalDisplayCtl))
		c.InternalDisplayCtl = defaults.InternalDisplayCtl
	}

	switch c.LogLevel {
	case "DEBUG", "INFO", "WARNING", "WARN", "ERROR":
	default:
		slog.Warn("Unknown log_lvl, using default",
			slog.String("value", c.LogLevel), slog.String("default", defaults.LogLevel))
		c.LogLevel = defaults.LogLevel
	}
}
