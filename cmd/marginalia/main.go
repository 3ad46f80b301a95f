package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/ebranwell/marginalia/internal/adapter"
	"github.com/ebranwell/marginalia/internal/collections"
	"github.com/ebranwell/marginalia/internal/shelf"
	"github.com/ebranwell/marginalia/internal/store"
	"github.com/ebranwell/marginalia/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("marginalia %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting marginalia", "version", Version)

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("marginalia needs an interactive terminal")
	}

	// First run: ask for the server URL and reader names
	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg); err != nil {
			return err
		}
	}

	// Snapshot store backs the offline fallback; a failed open degrades to
	// memory-only caching rather than refusing to start.
	snaps, err := store.Open(adapter.GetCachePath())
	if err != nil {
		logger.Warn("cache store unavailable, falling back to memory", "error", err)
		snaps, _ = store.Open("")
	}
	defer snaps.Close()

	client := shelf.NewClient(cfg.Server.URL, logger)
	state := collections.NewState(snaps, logger)
	coord := collections.NewCoordinator(client, state, logger)

	model := tui.NewModel(coord, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	coord.Teardown()
	logger.Info("shutting down")
	return nil
}

// runSetupFlow handles the initial setup when not configured
func runSetupFlow(cfg *adapter.Config) error {
	fmt.Println()
	fmt.Println("Welcome to Marginalia!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Shelf server URL (e.g., http://localhost:8000): ")
	input, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	url := strings.TrimSpace(input)
	if url == "" {
		return fmt.Errorf("a server URL is required")
	}
	cfg.Server.URL = strings.TrimRight(url, "/")

	cfg.Readers.One = promptName(reader, "Reader 1 name", cfg.Readers.One)
	cfg.Readers.Two = promptName(reader, "Reader 2 name", cfg.Readers.Two)

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved.")
	fmt.Println()
	return nil
}

func promptName(reader *bufio.Reader, label, fallback string) string {
	fmt.Printf("%s [%s]: ", label, fallback)
	input, err := reader.ReadString('\n')
	if err != nil {
		return fallback
	}
	if name := strings.TrimSpace(input); name != "" {
		return name
	}
	return fallback
}
