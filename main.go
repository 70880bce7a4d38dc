// pymove moves top-level Python functions and classes between files,
// carrying the imports they need.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/phobologic/pymove/internal/config"
	"github.com/phobologic/pymove/internal/model"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand.
type app struct {
	stdout, stderr io.Writer

	verbose    bool
	configPath string

	logger *slog.Logger
	cfg    *config.Config

	noticeStyle lipgloss.Style
	warnStyle   lipgloss.Style
	okStyle     lipgloss.Style
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	r := lipgloss.NewRenderer(stderr)
	out := lipgloss.NewRenderer(stdout)
	a := &app{
		stdout:      stdout,
		stderr:      stderr,
		noticeStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		warnStyle:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("197")),
		okStyle:     out.NewStyle().Foreground(lipgloss.Color("78")),
	}

	root := &cobra.Command{
		Use:   "pymove",
		Short: "Move top-level Python functions and classes between files",
		Long: `pymove relocates named top-level functions and classes from one Python
file to another. Imports the moved code relies on are added to the
destination, name clashes are resolved by policy, and both files are
re-parsed before anything is written.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("pymove {{.Version}}\n")

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./"+config.FileName+")")

	root.AddCommand(
		a.moveCmd(),
		a.describeCmd(),
		a.generateCmd(),
		a.initCmd(),
		a.versionCmd(),
	)
	return root
}

// setup installs the logger and loads the config file.
func (a *app) setup() error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(".")
	}
	if err != nil {
		return err
	}
	a.logger.Debug("loaded config", "remove_from_source", a.cfg.RemoveFromSource,
		"position", a.cfg.Position, "handle_conflicts", a.cfg.HandleConflicts)
	return nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pymove version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(a.stdout, "pymove %s\n", version)
		},
	}
}

// placement holds the flags shared by move and generate.
type placement struct {
	position  string
	conflicts string
	dryRun    bool
}

func (p *placement) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.position, "position", "p", "", "where to insert: top, bottom, or after:<name> (default from config)")
	cmd.Flags().StringVarP(&p.conflicts, "conflicts", "c", "", "existing-name policy: overwrite, rename, or skip (default from config)")
	cmd.Flags().BoolVarP(&p.dryRun, "dry-run", "n", false, "print unified diffs instead of writing files")
}

// resolve merges the flags over the config defaults.
func (p *placement) resolve(cmd *cobra.Command, cfg *config.Config) (model.Position, model.ConflictPolicy, error) {
	pos := cfg.Position
	if cmd.Flags().Changed("position") {
		pos = p.position
	}
	conflicts := cfg.HandleConflicts
	if cmd.Flags().Changed("conflicts") {
		conflicts = p.conflicts
	}
	policy, err := model.ParsePolicy(conflicts)
	if err != nil {
		return model.Position{}, "", err
	}
	return model.ParsePosition(pos), policy, nil
}

func (a *app) notice(msg string) {
	_, _ = fmt.Fprintf(a.stderr, "%s %s\n", a.noticeStyle.Render("Notice:"), msg)
}

func (a *app) warn(msg string) {
	_, _ = fmt.Fprintf(a.stderr, "%s %s\n", a.warnStyle.Render("Warning:"), msg)
}
