package config

// Defaults returns the complete compiled-in configuration. Every key the
// daemon reads has a value here; the override file can only replace or
// extend, never remove.
func Defaults() *Config {
	return &Config{
		LogLevel:                 "INFO",
		DDCUtilBusPathPrefix:     "/dev/i2c-", // prefix to the bus number
		DDCUtilBrightnessFeature: "10",        // VCP feature code, passed through as a string
		DDCUtilSetVCPFlags:       []string{"--skip-ddc-checks"}, // flags passed to [ddcutil setvcp] commands
		DDCUtilGetVCPFlags:       []string{},                    // flags passed to [ddcutil getvcp] commands
		MonitorUdev:              true, // watch udev drm events to detect ext. display (dis)connections
		PeriodicInitSec:          0,    // periodically re-init/re-detect monitors; 0 to disable
		SyncBrightness:           false, // try to keep all displays' brightnesses synchronized
		Notify: NotifyConfig{
			Enabled:        true,
			OnFatalErr:     true, // whether desktop notifications should be shown on fatal errors
			ErrIcon:        "gtk-dialog-error",
			IconRoot:       "",
			BrightnessFull: "notification-display-brightness-full.svg",
			BrightnessHigh: "notification-display-brightness-high.svg",
			BrightnessMed:  "notification-display-brightness-medium.svg",
			BrightnessLow:  "notification-display-brightness-low.svg",
			BrightnessOff:  "notification-display-brightness-off.svg",
			TimeoutMS:      4000,
		},
		// both for debouncing & delay; missed ext. display detection has been
		// seen with 1.0
		UdevEventDebounceSec:    3.0,
		MsgConsumptionWindowSec: 0.1, // can be set to 0 if no delay/window is required
		BrightnessStep:          5,   // %
		// either ddcutil's "Monitor:" value, or <device> in /sys/class/backlight/<device>
		IgnoredDisplays:       []string{},
		IgnoreInternalDisplay: false, // do not control internal display if available
		IgnoreExternalDisplay: false, // do not control external display(s) if available
		MainDisplayCtl:        CtlDDCUtil, // RAW | DDCUTIL | BRIGHTNESSCTL | BRILLO
		// RAW | BRIGHTNESSCTL | BRILLO; only used if main_display_ctl=DDCUTIL
		// and we're a laptop
		InternalDisplayCtl: CtlRaw,
		// used if (main_display_ctl=DDCUTIL and internal_display_ctl=RAW and
		// we're a laptop) OR main_display_ctl=RAW
		RawDeviceDir: "/sys/class/backlight",
		// exit code signifying a fatal condition that should not be retried;
		// useful with systemd's RestartPreventExitStatus
		FatalExitCode: 100,
		SocketPath:    "/tmp/.bctld-ipc.sock",
		Sim:           nil, // simulation config, will be set by sim client
		StateFilePath: "/tmp/.bctld.state",
	}
}
