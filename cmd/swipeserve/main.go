/*
Package main implements the swipe decoding server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

SwipeServe turns the path of a finger dragged across an on-screen keyboard into
ranked dictionary words. It can operate as a MessagePack IPC server for
integration with input methods and editors, or as a CLI application that
swipes typed words on a simulated layout for testing and debugging.

# Usage

Start the server with default settings:

	swipeserve

Use a custom data directory, the qwerty grid and enable debug mode:

	swipeserve -data /path/to/data -layout grid -d

Run in CLI mode for interactive testing:

	swipeserve -c -limit 10

The data directory holds either a frequency-ordered words.txt or chunked
binary files named dict_0001.bin, dict_0002.bin, etc. written by
swipectl build-dict.

# Configuration

Every tracker and decoder weight lives in a TOML file, created with defaults
when missing:

	[tracker]
	dwell_speed = 120.0
	proximity_radius = 30.0

	[decoder]
	near_path_miss = 2.0
	absent_miss = 4.0

	[server]
	max_limit = 64
	default_limit = 5

The server watches the file and applies edits to the next gesture without a
restart.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout, one response per
request, with microsecond timing included:

	{"id": "g1", "a": "swipe", "pts": [{"x": 12, "y": 40, "t": 0.0}, ...], "l": 5}
	{"id": "g1", "s": [{"w": "hello", "r": 1, "sc": 1.7}], "c": 1, "t": 145}

See package server for the streaming begin/sample/end actions.

# Tracing and metrics

-record stores every decoded gesture in a SQLite file for replay with
swipectl traces. -metrics serves Prometheus metrics on the given address.

# Command Line Flags

	-data string
	    Directory containing words.txt or binary chunk files (default "data/")
	-config string
	    Config file (default [UserConfigDir]/swipeserve/config.toml)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of candidates to print in CLI mode
	-layout string
	    ring or grid (default from config)
	-words int
	    Maximum words to load (0 for all)
	-record string
	    SQLite file to trace gestures to
	-metrics string
	    Listen address for Prometheus metrics, e.g. :9090
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/swipeserve/internal/cli"
	"github.com/bastiangx/swipeserve/internal/logger"
	"github.com/bastiangx/swipeserve/internal/metrics"
	"github.com/bastiangx/swipeserve/internal/store"
	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/config"
	"github.com/bastiangx/swipeserve/pkg/decoder"
	"github.com/bastiangx/swipeserve/pkg/dictionary"
	"github.com/bastiangx/swipeserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	gh      = "https://github.com/bastiangx/swipeserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dataDir := flag.String("data", "data/", "Directory containing words.txt or the binary chunk files")
	configPath := flag.String("config", "", "Path to config.toml (default: user config dir)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", 0, "Number of candidates to print in CLI mode (default from config)")
	layoutKind := flag.String("layout", "", "Keyboard layout: ring or grid (default from config)")
	wordLimit := flag.Int("words", defaultConfig.Dict.MaxWords, "Maximum number of words to load (use 0 for all words)")
	recordPath := flag.String("record", "", "SQLite file to record gesture traces to")
	metricsAddr := flag.String("metrics", "", "Address to serve Prometheus metrics on")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	appConfig, activeConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *layoutKind != "" {
		appConfig.Layout.Kind = *layoutKind
	}
	if *recordPath != "" {
		appConfig.Server.Record = *recordPath
	}
	if flagSet("words") {
		appConfig.Dict.MaxWords = *wordLimit
	}

	dictPath := appConfig.Dict.Path
	if dictPath == "" {
		dictPath, err = pathResolver.GetDataDir(*dataDir)
		if err != nil {
			log.Fatalf("Failed to resolve data dir:(%v)", err)
		}
	}
	log.Debugf("Using dictionary at: %s", dictPath)

	index, err := dictionary.Open(dictPath, appConfig.Dict.MaxWords)
	if err != nil {
		log.Warnf("Failed to load dictionary (%v), running with empty dict...", err)
		for _, c := range pathResolver.DiagnosePathIssues(*dataDir) {
			log.Debug("Data dir candidate", "path", c.Path, "exists", c.Exists, "valid", c.Valid, "chunks", c.Chunks)
		}
	}
	dec := decoder.New(index, decoder.DefaultContractions(), appConfig.Decoder)

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		cliLimit := *limit
		if cliLimit <= 0 {
			cliLimit = appConfig.CLI.DefaultLimit
		}
		inputHandler, err := cli.NewInputHandler(dec, appConfig, appConfig.Layout.Kind, cliLimit, os.Stdin, os.Stderr)
		if err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv, err := server.NewServer(os.Stdin, os.Stdout, index, appConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if appConfig.Server.Record != "" {
		traces, err := store.Open(appConfig.Server.Record)
		if err != nil {
			log.Fatalf("Failed to open trace store: %v", err)
		}
		defer traces.Close()
		srv.SetRecorder(traces)
	}

	if *metricsAddr != "" {
		m := metrics.New()
		srv.SetMetrics(m)
		go func() {
			if err := m.ListenAndServe(context.Background(), *metricsAddr); err != nil {
				log.Errorf("Metrics server: %v", err)
			}
		}()
	}

	if activeConfig != "" {
		watcher, err := config.Watch(activeConfig, config.DefaultDebounce, func(cfg *config.Config) {
			cfg.Layout.Kind = appConfig.Layout.Kind
			if err := srv.UpdateConfig(cfg); err != nil {
				log.Warnf("Ignoring config reload: %v", err)
			}
		})
		if err != nil {
			log.Warnf("Config hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	showStartupInfo(dictPath, config.GetActiveConfigPath(activeConfig), index.Len())

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ SwipeServe ] Turns swipes into words!")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dictPath, configPath string, words int) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "============")
	fmt.Fprintln(os.Stderr, " SwipeServe ")
	fmt.Fprintln(os.Stderr, "============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("dictionary: ( %s ) %d words", dictPath, words)
	log.Infof("config: ( %s )", configPath)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "============")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
