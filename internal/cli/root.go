package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mvp-joe/memgrep/internal/api"
	"github.com/mvp-joe/memgrep/internal/apierror"
	"github.com/mvp-joe/memgrep/internal/config"
	"github.com/mvp-joe/memgrep/internal/logger"
)

// app holds what every subcommand shares once the root command has run its
// pre-run hook.
type app struct {
	flags  *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
	svc    *api.Service
	stdin  io.Reader
}

// NewRootCmd builds the memgrep command tree.
func NewRootCmd() *cobra.Command {
	a := &app{flags: viper.New(), stdin: os.Stdin}

	rootCmd := &cobra.Command{
		Use:   "memgrep",
		Short: "Regex search over in-memory files and directory trees",
		Long: `memgrep searches file contents that are already in memory, line by line,
and filters candidate paths the way ripgrep does: gitignore rules,
include/exclude overrides, file-type globs, depth and hidden-file rules.

The boundary commands (search, search-dir, filter, grep, grep-cmd) take and
return JSON. scan reads a directory from disk and searches it directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stdin = cmd.InOrStdin()
			return a.setup(".")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().String("config", "", "settings file (default is ./.memgrep.yaml, then $HOME/.memgrep.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging on stderr")

	// MEMGREP_VERBOSE works as well as --verbose.
	a.flags.SetEnvPrefix("MEMGREP")
	_ = a.flags.BindEnv("verbose")
	_ = a.flags.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = a.flags.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(
		newSearchCmd(a),
		newSearchDirCmd(a),
		newFilterCmd(a),
		newGrepCmd(a),
		newGrepCmdCmd(a),
		newScanCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command. Boundary errors are printed as their JSON
// payload on stderr.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		fmt.Fprintln(w, apierror.JSON(apiErr))
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

// setup loads settings for rootDir and builds the logger and service from
// them. It can run again when a command targets another directory.
func (a *app) setup(rootDir string) error {
	var opts []config.LoaderOption
	if path := a.flags.GetString("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}

	cfg, err := config.NewLoader(rootDir, opts...).Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Logging.Level
	if a.flags.GetBool("verbose") {
		level = "debug"
	}
	log, err := logger.NewLogger(cfg.Logging.Env, level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg = cfg
	a.logger = log
	a.svc = api.NewService(
		api.WithLogger(log),
		api.WithMaxLineBytes(cfg.Limits.MaxLineBytes),
	)
	return nil
}
