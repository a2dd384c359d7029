// Package main is the entry point for keychord, a terminal host for
// scripted input bindings.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/input/host"
	"github.com/dshills/keychord/internal/input/watch"
	"github.com/dshills/keychord/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	actionsDir string
	logLevel   string
	logFile    string
	noWatch    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.actionsDir != "" {
		cfg.ActionsDir = opts.actionsDir
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.noWatch {
		cfg.Watch = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// The screen owns stdout and stderr, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	log := logging.New(logging.Config{Level: cfg.Level(), Output: logOut, Prefix: "keychord"})
	logging.SetDefault(log)

	quit, err := cfg.Quit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	fini := sync.OnceFunc(screen.Fini)
	defer fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.EnableFocus()
	screen.Clear()

	registry := host.NewRegistry(log)
	term := host.NewTerminal(screen, registry, host.WithQuitInput(quit), host.WithTerminalLogger(log))

	application, err := app.New(app.Options{
		Config: cfg,
		Host:   registry,
		Logger: log,
		Notify: term.Status,
	})
	if err != nil {
		fini()
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	var reloads <-chan struct{}
	if cfg.Watch {
		w, err := watch.New(watch.WithLogger(log))
		if err != nil {
			log.Warn("file watching disabled: %v", err)
		} else {
			defer w.Close()
			dirs := []string{cfg.ActionsDir}
			for _, ch := range cfg.Chords {
				dirs = append(dirs, ch.ActionsDir)
			}
			for _, dir := range dirs {
				if err := w.Add(dir); err != nil {
					log.Warn("not watching %s: %v", dir, err)
				}
			}
			reloads = w.Reloads()
		}
	}

	term.Status(fmt.Sprintf("keychord %s: %d bindings, %s to quit", version, registry.Len(), quit))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = term.Run(ctx, reloads, func() {
		if err := application.Reload(); err != nil {
			term.Status("reload failed: " + err.Error())
			return
		}
		term.Status(fmt.Sprintf("reloaded: %d bindings", registry.Len()))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fini()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "keychord.toml", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "keychord.toml", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.actionsDir, "actions", "", "Directory of action modules (overrides actions_dir)")
	flag.StringVar(&opts.actionsDir, "a", "", "Directory of action modules (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	flag.BoolVar(&opts.noWatch, "no-watch", false, "Do not reload when action modules change")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "keychord - scripted input bindings for the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: keychord [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  keychord                        Use ./keychord.toml and ./actions\n")
		fmt.Fprintf(os.Stderr, "  keychord -a ~/.keychord/actions Load modules from another directory\n")
		fmt.Fprintf(os.Stderr, "  keychord -log-file kc.log -log-level debug\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("keychord %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts
}
