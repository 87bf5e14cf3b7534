package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cyrup-ai/kargo/internal/application/composer"
	"github.com/cyrup-ai/kargo/internal/infrastructure/container"
)

// Global flags, grounded on reglet's cmd/reglet/root.go (cfgFile,
// logLevel, quiet as package-level vars bound via PersistentFlags, a
// PersistentPreRun installing the slog default logger).
var (
	cfgFile  string
	logLevel string
	quiet    bool
)

// run wires the container and executes the composed command tree. Root's
// own RunE (added below) is cobra's designated catch-all for a first
// token that matched no registered subcommand — it is the live
// implementation of spec.md §4.8 step 2's "unknown subcommand: treat as
// passthrough" branch, reached naturally through cobra's own command
// resolution rather than a hand-rolled pre-parse. A token that does match
// a registered extension or the passthrough name never reaches this
// RunE at all — composer.Composer's DisableFlagParsing commands hand the
// raw residual argv straight to Dispatcher.Dispatch instead (see
// internal/application/composer and internal/application/dispatcher).
func run(argv []string) int {
	// --config must be known before the container (and with it, the
	// composed command tree) is built, which happens before cobra ever
	// parses argv itself — so it is pulled out of argv here rather than
	// through cobra's own flag binding.
	cfgFile = extractConfigFlag(argv)
	setupLogging()

	ctx := context.Background()
	c, err := container.New(ctx, container.Options{
		Logger:     slog.Default(),
		ConfigPath: cfgFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "kargo: %v\n", err)
		return 1
	}
	defer func() {
		if err := c.Close(ctx); err != nil {
			slog.Warn("kargo: shutdown", "error", err)
		}
	}()

	root := c.Root
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.PersistentFlags().StringVar(&cfgFile, "config", cfgFile, "config file (default is $HOME/.kargo/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all log output")
	// Re-applies once cobra has actually parsed --log-level/--quiet,
	// since the call above only covers discovery-time logging.
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging()
	}

	root.Args = cobra.ArbitraryArgs
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		if code := c.Dispatcher.Dispatch(args); code != 0 {
			return &composer.ExitCodeError{Code: code}
		}
		return nil
	}

	addInfraCommands(root, c)

	root.SetArgs(argv)
	if err := root.Execute(); err != nil {
		var exitErr *composer.ExitCodeError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		fmt.Fprintf(os.Stderr, "kargo: %v\n", err)
		return 1
	}
	return 0
}

// extractConfigFlag scans argv for --config PATH or --config=PATH
// ahead of cobra's own parsing pass, needed only because the container
// (and the command surface it composes) must exist before root.Execute()
// runs.
func extractConfigFlag(argv []string) string {
	for i, a := range argv {
		switch {
		case a == "--config" && i+1 < len(argv):
			return argv[i+1]
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

func setupLogging() {
	level := parseLogLevel(logLevel)
	if quiet {
		level = slog.LevelError + 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
