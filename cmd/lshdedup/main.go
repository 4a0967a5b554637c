// Command lshdedup finds near-duplicate texts with MinHash LSH.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/hupe1980/lshdedup"
	"github.com/spf13/cobra"
)

// app carries the state shared by all commands.
type app struct {
	cfg     Config
	cfgFile string
	logger  *lshdedup.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "lshdedup",
		Short: "Find near-duplicate texts with MinHash LSH",
		Long: `lshdedup groups near-duplicate records of a text corpus.

Records are read from CSV, plain text, JSON Lines or SQLite, locally or from
S3 and MinIO. Every record is written to the report with the id of its
duplicate group.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	fs := rootCmd.PersistentFlags()
	fs.StringVar(&a.cfgFile, "config", "", "YAML configuration file")
	fs.String("log-format", a.cfg.Log.Format, "Log format (text, json)")
	fs.String("log-level", a.cfg.Log.Level, "Log level (debug, info, warn, error)")
	fs.Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(newRunCmd(a), newIndexCmd(a))
	return rootCmd
}

// setup loads the configuration file, applies flag overrides and creates the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		cfg, err := LoadConfig(a.cfgFile)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	fs := cmd.Flags()
	if fs.Changed("log-format") {
		a.cfg.Log.Format, _ = fs.GetString("log-format")
	}
	if fs.Changed("log-level") {
		a.cfg.Log.Level, _ = fs.GetString("log-level")
	}
	if noColor, _ := fs.GetBool("no-color"); noColor {
		color.NoColor = true
	}

	logger, err := newLogger(cmd.ErrOrStderr(), a.cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func newLogger(w io.Writer, cfg LogConfig) (*lshdedup.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return lshdedup.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return lshdedup.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		stop()
		os.Exit(1)
	}
}
