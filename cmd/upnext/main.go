// Package main provides the upnext player entry point.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/upnext/upnext/internal/app/guard"
	"github.com/upnext/upnext/internal/app/queue"
	"github.com/upnext/upnext/internal/app/session"
	"github.com/upnext/upnext/internal/infra/config"
	"github.com/upnext/upnext/internal/infra/library"
	"github.com/upnext/upnext/internal/infra/logger"
	"github.com/upnext/upnext/internal/infra/state"
)

var (
	app        = kingpin.New("upnext", "upnext playback queue player")
	configPath = app.Flag("config", "Path to config file").Default("config/upnext.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// show command
	showCmd = app.Command("show", "Print the saved queue and exit")

	// validate command
	validateCmd = app.Command("validate", "Validate config and manifest, then exit")

	// list-guards command
	listGuardsCmd = app.Command("list-guards", "List available admission guards and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the player (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-guards command
	if command == listGuardsCmd.FullCommand() {
		printGuards()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// The log section of the config applies unless flags took precedence
	if !*verbose && *logfile == "" {
		if err := logger.Init(logger.Config{Output: cfg.Log.Output, Level: cfg.Log.Level}); err != nil {
			zlog.Fatal().Msgf("Failed to initialize logger: %v", err)
		}
	}

	switch command {
	case showCmd.FullCommand():
		if err := show(cfg); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	case validateCmd.FullCommand():
		if err := validate(cfg); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	default:
		if err := run(cfg); err != nil {
			zlog.Error().Msgf("Player error: %v", err)
			os.Exit(1)
		}
	}
}

// run executes the main player logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	// Build the admission guard chain
	guards, err := buildGuardChain(cfg)
	if err != nil {
		return fmt.Errorf("invalid guard config: %w", err)
	}

	// Create the queue
	repeatMode, err := queue.ParseRepeatMode(cfg.Player.RepeatMode)
	if err != nil {
		return fmt.Errorf("invalid repeat mode: %w", err)
	}
	q := queue.New(queue.Config{
		RepeatMode:       repeatMode,
		AutoAdvance:      cfg.Player.AutoAdvance,
		AutoAdvanceDelay: cfg.AutoAdvanceDelay(),
	})

	// Open the state store when persistence is enabled
	var stateMgr *state.Manager
	if cfg.State.Enabled {
		stateMgr, err = state.Open(cfg.State.Path)
		if err != nil {
			return fmt.Errorf("failed to open state store: %w", err)
		}
		defer func() {
			if err := stateMgr.Close(); err != nil {
				zlog.Error().Msgf("Failed to close state store: %v", err)
			}
		}()
	}

	// Create session manager
	mgr := session.NewManager(session.Config{
		Queue:   q,
		Guards:  guards,
		Surface: session.LogSurface{},
		State:   stateMgr,
	})
	defer mgr.Close()

	// Restore the saved queue
	if err := mgr.Start(); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	// Seed from the manifest when nothing was restored
	if q.Len() == 0 && cfg.Library.ManifestPath != "" {
		if err := seed(cfg, mgr); err != nil {
			return err
		}
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zlog.Info().Msg("Received shutdown signal...")

	// Close the session first so pending state reaches the store
	mgr.Close()

	zlog.Info().Msg("Player stopped")
	return nil
}

// seed fills an empty queue from the configured media manifest and starts
// playback at the top.
func seed(cfg *config.Config, mgr *session.Manager) error {
	ms, err := library.Load(cfg.Library.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to load media manifest: %w", err)
	}

	accepted, rejected := mgr.EnqueueAll(ms...)
	zlog.Info().Msgf("Seeded queue from manifest: accepted=%d rejected=%d", accepted, rejected)
	if accepted == 0 {
		return nil
	}

	q := mgr.Queue()
	if cfg.Player.ShuffleOnStart {
		q.Shuffle()
	}
	q.PlayIndex(0)

	return nil
}

// show prints the saved queue as a table.
func show(cfg *config.Config) error {
	if !cfg.State.Enabled {
		fmt.Println("Queue persistence is disabled, nothing to show")
		return nil
	}

	st, err := state.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer func() { _ = st.Close() }()

	saved, err := st.LoadQueue()
	if err != nil {
		return fmt.Errorf("failed to load saved queue: %w", err)
	}
	if saved == nil || len(saved.Items) == 0 {
		fmt.Println("No saved queue")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "#", "Name", "Kind", "Duration", "Added"})
	for i, item := range saved.Items {
		marker := ""
		if i == saved.CurrentIndex {
			marker = "▶"
		}
		t.AppendRow(table.Row{
			marker,
			i + 1,
			item.DisplayName,
			item.Kind,
			formatDuration(item.Duration),
			humanize.Time(item.AddedAt),
		})
	}
	t.Render()

	status := "stopped"
	if saved.IsPlaying {
		status = "playing"
	}
	fmt.Printf("\n%d entries, %s, repeat %s, saved %s\n",
		len(saved.Items), status, saved.RepeatMode, humanize.Time(saved.SavedAt))

	return nil
}

// validate checks the configuration and manifest without starting playback.
func validate(cfg *config.Config) error {
	guards, err := buildGuardChain(cfg)
	if err != nil {
		return fmt.Errorf("invalid guard config: %w", err)
	}

	fmt.Printf("Config OK: %s\n", *configPath)

	names := make([]string, 0, len(guards.Guards()))
	for _, g := range guards.Guards() {
		names = append(names, g.Name())
	}
	if len(names) > 0 {
		fmt.Printf("Enabled guards: %s\n", strings.Join(names, ", "))
	} else {
		fmt.Println("Enabled guards: none")
	}

	if cfg.Library.ManifestPath != "" {
		ms, err := library.Load(cfg.Library.ManifestPath)
		if err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}
		fmt.Printf("Manifest OK: %d media entries (%s)\n", len(ms), cfg.Library.ManifestPath)
	}

	return nil
}

// printGuards prints available admission guards.
func printGuards() {
	fmt.Println("Available Guards:")
	for _, factory := range guard.GetRegistered() {
		g := factory()
		codes := strings.Join(g.ReturnCodes(), ", ")
		fmt.Printf("  %-25s - %s [codes: %s]\n", g.Name(), g.Description(), codes)
	}
}

// buildGuardChain builds the admission chain from the enabled guard configs.
// Guards run in name order so rejection codes stay stable across restarts.
func buildGuardChain(cfg *config.Config) (*guard.Chain, error) {
	registry := guard.GetRegistered()
	chain := guard.NewChain()

	names := make([]string, 0, len(cfg.Guards))
	for name := range cfg.Guards {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !cfg.IsGuardEnabled(name) {
			continue
		}

		factory, exists := registry[name]
		if !exists {
			return nil, fmt.Errorf("unknown guard: %s", name)
		}

		g := factory()
		if err := g.ValidateConfig(cfg.GuardSettings(name)); err != nil {
			return nil, fmt.Errorf("guard %s: %w", name, err)
		}
		chain.Add(g)
	}

	return chain, nil
}

// formatDuration renders a playback duration, "-" when unknown.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Truncate(time.Second).String()
}
