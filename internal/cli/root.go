// Package cli implements the studio command-line interface. The commands are
// the view layer over the form engine, the inventory store and the settings
// manager: they bind flags and arguments to forms, print field errors, and
// report outcomes.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/studiobook/internal/logging"
	"github.com/mesh-intelligence/studiobook/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	logLevel  string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
	log       *logrus.Logger
}

// cmdError carries the exit code for an error returned by a command.
type cmdError struct {
	code int
	err  error
}

func (e *cmdError) Error() string { return e.err.Error() }
func (e *cmdError) Unwrap() error { return e.err }

// userError marks err as caused by the user's input.
func userError(err error) error {
	return &cmdError{code: exitUserError, err: err}
}

// userErrorf formats a user error.
func userErrorf(format string, args ...any) error {
	return userError(fmt.Errorf(format, args...))
}

// exitCode maps an error returned by a command to the process exit code.
// Errors not marked as user errors are system errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *cmdError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitSysError
}

// NewRootCmd creates the top-level "studio" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "studio",
		Short: "Client forms and inventory for a studio",
		Long: "studio keeps a studio's client forms, inventory, and preferences.\n" +
			"Data lives in the data directory (SQLite over kv.jsonl by default).",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: sqlite, memory or redis")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (default: warn)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newInventoryCmd(a))
	root.AddCommand(newFormCmd(a))
	root.AddCommand(newSettingsCmd(a))
	root.AddCommand(newKVCmd(a))

	return root
}

// setup resolves the config directory, loads config.yaml and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}

	level := a.flags.logLevel
	if level == "" {
		level = cfg.GetString(cfgKeyLogLevel)
	}
	logger, err := logging.New(level, cmd.ErrOrStderr(), a.flags.jsonMode)
	if err != nil {
		return userError(err)
	}

	a.configDir = dir
	a.cfg = cfg
	a.log = logger
	return nil
}

// Execute runs the root command with the process arguments and returns the
// exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(root *cobra.Command, args []string, stdout, stderr io.Writer) int {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}
