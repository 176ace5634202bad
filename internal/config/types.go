// Package config builds the daemon's effective configuration by deep-merging
// a user override file onto the compiled-in defaults, and optionally attaches
// the persisted state record so domain logic can read the last known
// brightness without doing its own file I/O.
//
// The effective Config is immutable after load by convention; the only field
// documented callers mutate in place is State.LastSetBrightness, which is
// flushed via WriteState.
package config

import (
	"log/slog"

	"git.home.luguber.info/inful/bctl/internal/state"
)

// Display controller backends selectable via main_display_ctl and
// internal_display_ctl.
const (
	CtlRaw           = "RAW"
	CtlDDCUtil       = "DDCUTIL"
	CtlBrightnessCtl = "BRIGHTNESSCTL"
	CtlBrillo        = "BRILLO"
)

// NotifyConfig controls desktop notifications.
type NotifyConfig struct {
	Enabled        bool   `json:"enabled"`
	OnFatalErr     bool   `json:"on_fatal_err"`
	ErrIcon        string `json:"err_icon"`
	IconRoot       string `json:"icon_root"`
	BrightnessFull string `json:"brightness_full"`
	BrightnessHigh string `json:"brightness_high"`
	BrightnessMed  string `json:"brightness_medium"`
	BrightnessLow  string `json:"brightness_low"`
	BrightnessOff  string `json:"brightness_off"`
	TimeoutMS      int    `json:"timeout_ms"`
}

// SimConfig configures the display simulator used by the sim client.
type SimConfig struct {
	NDisplays         int            `json:"ndisplays"`
	WaitSec           float64        `json:"wait_sec"`
	InitialBrightness map[string]int `json:"initial_brightness"`
	Failmode          string         `json:"failmode,omitempty"`
	ExitCode          int            `json:"exit_code"`
}

// Config is the effective daemon configuration. JSON tags are the wire
// names of the override file; see Defaults for the per-key documentation.
type Config struct {
	LogLevel                 string       `json:"log_lvl"`
	DDCUtilBusPathPrefix     string       `json:"ddcutil_bus_path_prefix"`
	DDCUtilBrightnessFeature string       `json:"ddcutil_brightness_feature"`
	DDCUtilSetVCPFlags       []string     `json:"ddcutil_svcp_flags"`
	DDCUtilGetVCPFlags       []string     `json:"ddcutil_gvcp_flags"`
	MonitorUdev              bool         `json:"monitor_udev"`
	PeriodicInitSec          int          `json:"periodic_init_sec"`
	SyncBrightness           bool         `json:"sync_brightness"`
	Notify                   NotifyConfig `json:"notify"`
	UdevEventDebounceSec     float64      `json:"udev_event_debounce_sec"`
	MsgConsumptionWindowSec  float64      `json:"msg_consumption_window_sec"`
	BrightnessStep           int          `json:"brightness_step"`
	IgnoredDisplays          []string     `json:"ignored_displays"`
	IgnoreInternalDisplay    bool         `json:"ignore_internal_display"`
	IgnoreExternalDisplay    bool         `json:"ignore_external_display"`
	MainDisplayCtl           string       `json:"main_display_ctl"`
	InternalDisplayCtl       string       `json:"internal_display_ctl"`
	RawDeviceDir             string       `json:"raw_device_dir"`
	FatalExitCode            int          `json:"fatal_exit_code"`
	SocketPath               string       `json:"socket_path"`
	Sim                      *SimConfig   `json:"sim"`
	StateFilePath            string       `json:"state_f_path"`

	// State is attached by Load when requested; it is not part of the merge
	// and is the one field domain logic mutates in place.
	State state.Record `json:"-"`

	// raw is the merged document including keys the typed schema does not
	// know about. Unknown keys survive the merge but are ignored by domain
	// logic.
	raw map[string]any
}

// Raw returns the effective merged document, including unknown keys.
func (c *Config) Raw() map[string]any {
	return c.raw
}

// SlogLevel maps the configured log level name onto a slog level.
// Unrecognized names fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ControllerBinary returns the external binary a controller backend shells
// out to, and whether one is needed at all (RAW writes sysfs directly).
func ControllerBinary(ctl string) (string, bool) {
	switch ctl {
	case CtlDDCUtil:
		return "ddcutil", true
	case CtlBrightnessCtl:
		return "brightnessctl", true
	case CtlBrillo:
		return "brillo", true
	default:
		return "", false
	}
}

// RequiredBinaries lists the external tools the effective configuration
// depends on. The daemon asserts their presence once at startup.
func (c *Config) RequiredBinaries() []string {
	seen := map[string]bool{}
	var bins []string
	add := func(ctl string) {
		if bin, ok := ControllerBinary(ctl); ok && !seen[bin] {
			seen[bin] = true
			bins = append(bins, bin)
		}
	}
	add(c.MainDisplayCtl)
	add(c.InternalDisplayCtl)
	if c.Notify.Enabled {
		if !seen["notify-send"] {
			bins = append(bins, "notify-send")
		}
	}
	return bins
}
