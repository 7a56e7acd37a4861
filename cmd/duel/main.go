package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/duel/internal/config"
	duelerrors "github.com/vango-dev/duel/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌┬┐┬ ┬┌─┐┬
   │││ │├┤ │
  ─┴┘└─┘└─┘┴─┘
`

// app carries what PersistentPreRunE resolved for the subcommands.
type app struct {
	configDir string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "duel",
		Short: "Two-player gun versus chicken over WebSocket",
		Long: `duel runs an authoritative two-player game server and headless clients.

The first player to connect controls the gun, the second the chicken.
Clients send button edges every frame; the server simulates at a fixed
tick rate and broadcasts entity state.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configDir, "config-dir", "C", ".", "Directory containing duel.json and .env")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from duel.json)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text or json (default from duel.json)")

	rootCmd.AddCommand(
		serveCmd(a),
		botCmd(a),
		replayCmd(a),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// load resolves configuration: defaults, duel.json, .env and DUEL_*
// variables, then the global log flags.
func (a *app) load() error {
	if err := config.LoadEnv(a.configDir); err != nil {
		return err
	}
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(a.logger)
	return nil
}

// printError prints err, formatted when it is a DuelError.
func printError(err error) {
	var de *duelerrors.DuelError
	if errors.As(err, &de) {
		fmt.Fprintln(os.Stderr, de.Format())
		return
	}
	fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
