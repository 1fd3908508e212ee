// Command tbunread prints how many unread emails you have in Thunderbird,
// updating the count whenever Thunderbird's folder summaries change.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tbunread/tbunread/internal/config"
	"github.com/tbunread/tbunread/internal/monitor"
	"github.com/tbunread/tbunread/internal/output"
	"github.com/tbunread/tbunread/internal/profile"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

type options struct {
	configPath string
	quiet      bool
	output     string
	interval   int
	root       string
	process    string
}

func parseFlags(args []string, stderr io.Writer) (*options, map[string]bool, error) {
	fs := flag.NewFlagSet("tbunread", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "Path to yaml config file")
	fs.BoolVar(&opts.quiet, "quiet", false, "Do not print results to standard output")
	fs.BoolVar(&opts.quiet, "q", false, "Shorthand for -quiet")
	fs.StringVar(&opts.output, "output", "", "File to write the results to")
	fs.IntVar(&opts.interval, "interval", config.DefaultInterval, "Interval in seconds to scan for the Thunderbird process")
	fs.StringVar(&opts.root, "root", "", "Watch this directory instead of the default profile's mail directory")
	fs.StringVar(&opts.process, "process", config.DefaultProcess, "Executable name of the mail client")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return opts, set, nil
}

// loadConfig reads the config file named by -config, if any, and applies
// explicitly set flags on top of it. A named file that is missing is an error.
func loadConfig(opts *options, set map[string]bool) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if set["quiet"] || set["q"] {
		cfg.Quiet = opts.quiet
	}
	if set["output"] {
		cfg.Output = opts.output
	}
	if set["interval"] {
		cfg.Interval = opts.interval
	}
	if set["root"] {
		cfg.Profile.Root = opts.root
	}
	if set["process"] {
		cfg.Monitor.Process = opts.process
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	cfg.FillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug", "trace":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, set, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts, set)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, stderr)
	slog.SetDefault(logger)

	root, err := profile.WatchRoot(cfg.Profile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mon := monitor.NewMonitor(cfg, root, output.New(cfg, stdout), logger)
	return mon.Run(ctx)
}
