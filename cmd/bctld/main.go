package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/bctl/internal/config"
	"git.home.luguber.info/inful/bctl/internal/daemon"
	"git.home.luguber.info/inful/bctl/internal/errors"
	"git.home.luguber.info/inful/bctl/internal/logfields"
	"git.home.luguber.info/inful/bctl/internal/metrics"
	"git.home.luguber.info/inful/bctl/internal/runner"
	"git.home.luguber.info/inful/bctl/internal/state"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path (defaults to the XDG location)"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Run struct {
	} `cmd:"" help:"Start the brightness control daemon"`

	Init struct {
		Force bool `help:"Overwrite an existing configuration file"`
	} `cmd:"" help:"Write the default configuration file"`

	Check struct {
	} `cmd:"" help:"Verify the configured external control binaries exist"`

	ShowConfig struct {
	} `cmd:"show-config" help:"Print the effective merged configuration"`

	ShowState struct {
	} `cmd:"show-state" help:"Print the persisted state record"`
}

func main() {
	kctx := kong.Parse(&CLI)

	// Set up logging before config loading; the effective config may refine
	// the level afterwards.
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	var err error
	switch kctx.Command() {
	case "run":
		err = runDaemon()
	case "init":
		err = runInit()
	case "check":
		err = runCheck()
	case "show-config":
		err = runShowConfig()
	case "show-state":
		err = runShowState()
	}
	if err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps fatal errors onto the configured do-not-restart exit code
// so a systemd unit can exclude it via RestartPreventExitStatus.
func exitCodeFor(err error) int {
	if !errors.IsFatal(err) {
		return 1
	}
	cfg, loadErr := config.Load(config.LoadOptions{Path: CLI.Config})
	if loadErr != nil {
		return config.Defaults().FatalExitCode
	}
	return cfg.FatalExitCode
}

func runDaemon() error {
	cfg, err := config.Load(config.LoadOptions{Path: CLI.Config, IncludeState: true})
	if err != nil {
		return err
	}

	level := cfg.SlogLevel()
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if addr := os.Getenv("BCTLD_METRICS_ADDR"); addr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		go serveMetrics(addr, reg)
	}

	configPath := CLI.Config
	if configPath == "" {
		if configPath, err = config.DefaultPath(); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d := daemon.New(cfg, configPath, recorder)
	slog.Info("Starting bctld",
		slog.String("main_display_ctl", cfg.MainDisplayCtl),
		slog.Int("last_set_brightness", cfg.State.LastSetBrightness))
	return d.Run(ctx)
}

func serveMetrics(addr string, reg *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	slog.Info("Serving metrics", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Metrics endpoint failed", logfields.Error(err))
	}
}

func runInit() error {
	path := CLI.Config
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil && !CLI.Init.Force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(config.Defaults(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	slog.Info("Configuration written", logfields.Path(path))
	return nil
}

func runCheck() error {
	cfg, err := config.Load(config.LoadOptions{Path: CLI.Config})
	if err != nil {
		return err
	}

	bins := cfg.RequiredBinaries()
	if len(bins) == 0 {
		fmt.Println("no external binaries required by this configuration")
		return nil
	}
	for _, bin := range bins {
		if err := runner.AssertExists(bin); err != nil {
			return err
		}
		fmt.Printf("%s: ok\n", bin)
	}
	return nil
}

func runShowConfig() error {
	cfg, err := config.Load(config.LoadOptions{Path: CLI.Config})
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg.Raw(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runShowState() error {
	cfg, err := config.Load(config.LoadOptions{Path: CLI.Config})
	if err != nil {
		return err
	}
	rec := state.Load(cfg.StateFilePath)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
