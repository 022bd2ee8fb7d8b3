package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alienxp03/triad/internal/config"
	"github.com/alienxp03/triad/internal/core"
	"github.com/alienxp03/triad/internal/engine"
	"github.com/alienxp03/triad/internal/export"
	"github.com/alienxp03/triad/internal/provider"
	"github.com/alienxp03/triad/internal/render"
	"github.com/alienxp03/triad/internal/storage"
	"github.com/alienxp03/triad/web/handlers"
)

var (
	dbPath    string
	cfgPath   string
	debug     bool
	appConfig *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "triad",
	Short: "Three-way rotating debate simulator",
	Long: `triad runs debates between Claude, Grok and GPT.

Each round every participant takes one of three roles: Opposition, Defense
or Arbiter. Roles rotate every round so each participant plays each role
once every three rounds.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(os.Stderr, false)

		// Load config
		var err error
		if cfgPath != "" {
			appConfig, err = config.LoadFrom(cfgPath)
		} else {
			appConfig, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ~/.triad/triad.db)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path (default: ~/.triad/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(debateCmd)
	rootCmd.AddCommand(rotationCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(participantsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

// setupLogging installs the default slog logger. The CLI logs text to stderr;
// the server logs JSON to stdout.
func setupLogging(w io.Writer, asJSON bool) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if asJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func getStorage() (storage.Storage, error) {
	path := dbPath
	if path == "" {
		path = appConfig.DBPath(storage.DefaultDBPath())
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

func getRegistry() (*provider.Registry, error) {
	return appConfig.CreateRegistry()
}

// ============================================================================
// DEBATE COMMAND
// ============================================================================

var debateCmd = &cobra.Command{
	Use:   "debate [topic]",
	Short: "Run a debate",
	Long: `Run a debate on the given topic until the round limit is reached.

The topic is fixed by the first round. With --interactive each line read
from stdin starts the next round; the first line is the topic when none is
given as an argument.

Examples:
  triad debate "Is Universal Basic Income sustainable?"
  triad debate "Is UBI sustainable?" --rounds 3
  triad debate --interactive
  triad debate "Should cities ban cars?" --script ~/.triad/cars.yaml
  triad debate "Is UBI sustainable?" --script ubi.yaml --sources grok:mock`,
	RunE: runDebate,
}

var (
	roundsFlag      int
	scriptFlag      string
	interactiveFlag bool
	sourcesFlag     string
	widthFlag       int
)

func init() {
	debateCmd.Flags().IntVarP(&roundsFlag, "rounds", "r", 0, "Round limit (default from config)")
	debateCmd.Flags().StringVarP(&scriptFlag, "script", "s", "", "YAML script of debate lines; binds every participant to it")
	debateCmd.Flags().StringVar(&sourcesFlag, "sources", "", "Source per participant (participant:source,...)")
	debateCmd.Flags().BoolVarP(&interactiveFlag, "interactive", "i", false, "Start each round from a line of stdin")
	debateCmd.Flags().IntVarP(&widthFlag, "width", "w", render.DefaultWidth, "Wrap width for messages")
}

func runDebate(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	if topic == "" && !interactiveFlag {
		return errors.New("a topic is required unless --interactive is set")
	}

	if scriptFlag != "" {
		appConfig.Script.Path = scriptFlag
		for _, p := range core.Participants() {
			appConfig.Sources[p.String()] = provider.ScriptSourceName
		}
	}

	bindings, err := core.ParseSourceBindings(sourcesFlag)
	if err != nil {
		return err
	}
	for _, b := range bindings {
		appConfig.Sources[b.Participant.String()] = b.Source
	}

	store, err := getStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	registry, err := getRegistry()
	if err != nil {
		return err
	}

	eng := engine.New(store, registry, appConfig.Defaults.MaxRounds)
	state := eng.CreateSession(roundsFlag)

	fmt.Println()
	fmt.Print(render.Header(topic, state.ID, state.MaxRounds))

	// Setup signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\n\nInterrupted. Saving transcript...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if interactiveFlag {
		err = runInteractive(ctx, eng, state.ID, topic, os.Stdin)
	} else {
		err = eng.RunDebate(ctx, state.ID, topic, func(round core.Round, s engine.SessionState) {
			fmt.Println()
			fmt.Print(render.Round(round, widthFlag))
		})
	}

	if err != nil {
		if ctx.Err() != nil {
			fmt.Printf("\nDebate stopped. Use 'triad show %s' to view progress.\n", state.ID[:8])
			return nil
		}
		return fmt.Errorf("debate failed: %w", err)
	}

	fmt.Println()
	fmt.Println(render.Divider(widthFlag))
	fmt.Println(render.Title.Render("Debate complete"))
	fmt.Println(render.Muted.Render("Transcript saved as " + state.ID))
	return nil
}

// runInteractive starts one round per line read from in. An interrupt
// stops the loop at once and archives the rounds completed so far.
func runInteractive(ctx context.Context, eng *engine.Engine, id, topic string, in io.Reader) error {
	interrupted := func() error {
		if err := eng.ArchiveSession(id); err != nil {
			return errors.Join(ctx.Err(), err)
		}
		return ctx.Err()
	}

	prompt := func(s engine.SessionState) {
		fmt.Printf("\n%s %s\n> ", render.Muted.Render(fmt.Sprintf("Round %d:", s.Counter)), s.Rotation)
	}

	if topic != "" {
		round, _, err := eng.StartRound(ctx, id, topic)
		if err != nil {
			if ctx.Err() != nil {
				return interrupted()
			}
			return err
		}
		fmt.Println()
		fmt.Print(render.Round(round, widthFlag))
	}

	// The scanner blocks on stdin, so it runs on its own goroutine and the
	// loop below can still observe ctx.
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		state, err := eng.GetSession(id)
		if err != nil {
			return err
		}
		if state.Terminal {
			return nil
		}

		prompt(state)
		var line string
		select {
		case <-ctx.Done():
			return interrupted()
		case l, ok := <-lines:
			if !ok {
				if ctx.Err() != nil {
					return interrupted()
				}
				if err := <-readErr; err != nil {
					return err
				}
				// Stdin closed; keep what we have.
				return eng.ArchiveSession(id)
			}
			line = l
		}
		if ctx.Err() != nil {
			return interrupted()
		}

		round, started, err := eng.StartRound(ctx, id, strings.TrimSpace(line))
		if err != nil {
			if ctx.Err() != nil {
				return interrupted()
			}
			return err
		}
		if !started {
			return nil
		}
		fmt.Println()
		fmt.Print(render.Round(round, widthFlag))
	}
}

// ============================================================================
// ROTATION COMMAND
// ============================================================================

var rotationCmd = &cobra.Command{
	Use:   "rotation",
	Short: "Print the role rotation table",
	Run: func(cmd *cobra.Command, args []string) {
		rounds, _ := cmd.Flags().GetInt("rounds")
		fmt.Println()
		fmt.Print(render.RotationTable(rounds))
	},
}

func init() {
	rotationCmd.Flags().IntP("rounds", "r", core.RoleCount, "Number of rounds to show")
}

// ============================================================================
// ARCHIVE COMMANDS
// ============================================================================

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived debates",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		transcripts, err := store.ListTranscripts(50, 0)
		if err != nil {
			return err
		}

		if len(transcripts) == 0 {
			fmt.Println("No debates found. Start one with: triad debate \"Your topic\"")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOPIC\tSTATUS\tROUNDS\tCREATED")
		fmt.Fprintln(w, "──\t─────\t──────\t──────\t───────")

		for _, t := range transcripts {
			shortTopic := truncate(t.Topic, 40)
			fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
				shortID(t.ID),
				shortTopic,
				t.Status,
				t.RoundCount,
				t.MaxRounds,
				t.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		w.Flush()

		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show an archived debate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		transcript, err := findTranscriptByPrefix(store, args[0])
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Print(render.Transcript(transcript, render.DefaultWidth))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an archived debate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		transcript, err := findTranscriptByPrefix(store, args[0])
		if err != nil {
			return err
		}

		if err := store.DeleteTranscript(transcript.ID); err != nil {
			return err
		}

		fmt.Printf("Deleted debate: %s\n", transcript.ID)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [id] [format]",
	Short: "Export an archived debate to a file",
	Long: `Export an archived debate to markdown, PDF, or JSON.

Examples:
  triad export abc123 markdown
  triad export abc123 pdf
  triad export abc123 json -o debate.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		transcript, err := findTranscriptByPrefix(store, args[0])
		if err != nil {
			return err
		}

		format := export.FormatMarkdown
		if len(args) > 1 {
			format = export.Format(strings.ToLower(args[1]))
		}
		exporter, err := export.GetExporter(format)
		if err != nil {
			return err
		}

		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			outputPath = export.GenerateFilename(transcript, exporter.FileExtension())
		}

		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer file.Close()

		if err := exporter.Export(transcript, file); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}

		fmt.Printf("Exported to: %s\n", outputPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file path")
}

// ============================================================================
// PARTICIPANTS COMMAND
// ============================================================================

var participantsCmd = &cobra.Command{
	Use:   "participants",
	Short: "List participants and their content sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := getRegistry()
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Print(render.ParticipantTable(registry.Bindings()))
		fmt.Printf("\nSources: %s\n", strings.Join(registry.List(), ", "))
		return nil
	},
}

// ============================================================================
// CONFIG COMMAND
// ============================================================================

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		fmt.Printf("Config file: %s\n\n", path)

		fmt.Println("Current settings:")
		fmt.Printf("  Max rounds: %d\n", appConfig.Defaults.MaxRounds)
		fmt.Printf("  Server port: %d\n", appConfig.Server.Port)
		fmt.Printf("  Database: %s\n", appConfig.DBPath(storage.DefaultDBPath()))
		if appConfig.Script.Path != "" {
			fmt.Printf("  Script: %s\n", appConfig.Script.Path)
		}
		fmt.Println("\nSources:")
		for _, p := range core.Participants() {
			fmt.Printf("  %s: %s\n", p, appConfig.Sources[p.String()])
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create example config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(config.GenerateExample()), 0644); err != nil {
			return err
		}

		fmt.Printf("Created config at: %s\n", path)
		return nil
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save [path]",
	Short: "Write the effective configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			path = config.DefaultConfigPath()
		}

		if err := appConfig.SaveTo(path); err != nil {
			return err
		}

		fmt.Printf("Saved config to: %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSaveCmd)
}

// ============================================================================
// SERVE COMMAND
// ============================================================================

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(os.Stdout, true)

		if !cmd.Flags().Changed("port") && appConfig.Server.Port != 0 {
			servePort = appConfig.Server.Port
		}

		store, err := getStorage()
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		registry, err := getRegistry()
		if err != nil {
			return err
		}

		eng := engine.New(store, registry, appConfig.Defaults.MaxRounds)
		return startWebServer(eng, registry, servePort)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8182, "Server port")
}

func startWebServer(eng *engine.Engine, registry *provider.Registry, port int) error {
	h := handlers.New(eng, registry)

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		slog.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	slog.Info("Starting triad API server", "url", fmt.Sprintf("http://localhost%s", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func findTranscriptByPrefix(store storage.Storage, prefix string) (*core.Transcript, error) {
	transcripts, err := store.ListTranscripts(100, 0)
	if err != nil {
		return nil, err
	}
	for _, t := range transcripts {
		if strings.HasPrefix(t.ID, prefix) {
			return store.GetTranscript(t.ID)
		}
	}
	return nil, fmt.Errorf("debate not found: %s", prefix)
}
