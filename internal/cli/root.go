// Package cli implements the seamnest command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SeamNest/internal/model"
	"github.com/piwi3910/SeamNest/internal/project"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	logLevel      string
	appConfigPath string
	inventoryPath string
	profilesPath  string

	config model.AppConfig
	logger *slog.Logger
}

// NewRootCmd builds the seamnest command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "seamnest",
		Short: "Automatic nesting of clothing pattern pieces",
		Long: `seamnest - pattern piece nesting for fabric cutting

Lays out irregular pattern pieces on a fixed-width fabric roll so that
the consumed length is as short as possible, then exports markers,
reports, labels and knife cutter G-code.

Input pieces can come from DXF outlines, CSV/XLSX piece lists or JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from app config)")
	root.PersistentFlags().StringVar(&a.appConfigPath, "app-config", project.DefaultConfigPath(), "Application config file")
	root.PersistentFlags().StringVar(&a.inventoryPath, "inventory", project.DefaultInventoryPath(), "Fabric and cutter preset inventory")
	root.PersistentFlags().StringVar(&a.profilesPath, "profiles", project.DefaultProfilesPath(), "Custom cutter profiles file")

	root.AddCommand(
		newNestCmd(a),
		newEstimateCmd(a),
		newHistoryCmd(a),
		newPresetsCmd(a),
		newBackupCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line with a context cancelled on Ctrl-C.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := project.LoadAppConfig(a.appConfigPath)
	if err != nil {
		return err
	}
	a.config = cfg

	levelName := a.logLevel
	if levelName == "" {
		levelName = cfg.LogLevel
	}
	level, err := parseLevel(levelName)
	if err != nil {
		return err
	}
	a.logger = newLogger(cmd.ErrOrStderr(), level)
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
