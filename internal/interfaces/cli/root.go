package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/CohortMap/internal/app"
	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/internal/config"
	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputCSV   = "csv"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	InternsPath  string
	LeadsPath    string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

// NewRootCommand creates the root command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cohortmap",
		Short: "CohortMap builds the AI Intern / Tech Lead program hierarchy",
		Long: "CohortMap merges the AI Intern and Tech Lead registration tables into a\n" +
			"five-tier program hierarchy and prints filtered views, rankings and\n" +
			"statistics, or serves them over HTTP.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", app.Version, app.GitCommit, app.BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./cohortmap.yaml if present)")
	pf.StringVar(&opts.InternsPath, "interns", "", "AI Intern CSV (overrides sources.interns_path)")
	pf.StringVar(&opts.LeadsPath, "leads", "", "Tech Lead CSV (overrides sources.leads_path)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputTable, "output format (table, json, csv)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "global operation timeout")

	cmd.AddCommand(
		NewBuildCmd(),
		NewViewCmd(),
		NewRegionsCmd(),
		NewTopCmd(),
		NewStatsCmd(),
		NewSortCmd(),
		NewServeCmd(),
	)
	return cmd
}

// persistentPreRun loads config and logger, then stores a CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	format := strings.ToLower(opts.OutputFormat)
	switch format {
	case OutputTable, OutputJSON, OutputCSV:
	default:
		return errors.InvalidParam("unsupported output format").WithDetail(opts.OutputFormat)
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: format,
		Verbose:      opts.Verbose,
		Timeout:      opts.Timeout,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		searchPaths := []string{"./cohortmap.yaml"}
		if home, err := os.UserHomeDir(); err == nil {
			searchPaths = append(searchPaths, filepath.Join(home, ".cohortmap", "config.yaml"))
		}
		for _, p := range searchPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.InternsPath != "" {
		cfg.Sources.InternsPath = opts.InternsPath
	}
	if opts.LeadsPath != "" {
		cfg.Sources.LeadsPath = opts.LeadsPath
	}
	return cfg, nil
}

// initLogger writes console logs to stderr so stdout stays parseable.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := logging.LevelWarn
	if opts.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.CodeValidation, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.CodeValidation, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// localRun is an in-process service with the configured files loaded into
// the default session.
type localRun struct {
	svc    orgchart.Service
	loaded *orgchart.IngestResult
	cli    *CLIContext
	ctx    context.Context
	close  func()
}

// openLocal builds the service over the configured files.  Sessions and memo
// stay in memory regardless of the configured backends.
func openLocal(cmd *cobra.Command) (*localRun, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	cfg := *cliCtx.Config
	if !cfg.Sources.Configured() {
		return nil, errors.InvalidParam("--interns and --leads are required")
	}
	cfg.Cache.Backend = config.BackendMemory
	cfg.Session.Backend = config.BackendMemory
	cfg.MinIO.Enabled = false
	cfg.Metrics.Enabled = false

	a, err := app.New(&cfg, cliCtx.Logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	res, err := a.Service.Reload(ctx)
	if err != nil {
		cancel()
		_ = a.Close()
		return nil, err
	}
	return &localRun{
		svc:    a.Service,
		loaded: res,
		cli:    cliCtx,
		ctx:    ctx,
		close:  func() { cancel(); _ = a.Close() },
	}, nil
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

//Personal.AI order the ending
