package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/AntonStoeckl/library-lending-engine/shell/config"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	viper      *viper.Viper
	configPath string
	noColor    bool

	cfg       config.Config
	logger    *slog.Logger
	obs       ObservabilityConfig
	providers *config.ObservabilityProviders
	closers   []func() error
}

// run executes one invocation and returns the process exit code.
func run(args []string, out, errOut io.Writer) int {
	a := &app{out: out, errOut: errOut, viper: config.NewViper()}

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(context.Background())
	err = errors.Join(err, a.close(context.Background()))

	if err != nil {
		_, _ = fmt.Fprintln(errOut, color.RedString("error:"), err)
		return 1
	}

	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "lendingctl",
		Short: "Drive the library lending engine from the command line",
		Long: `lendingctl seeds a library catalog, runs concurrent lending simulations and
reports on the result. Operations are journaled to memory, SQLite or PostgreSQL.

Settings come from defaults, an optional YAML config file, LENDING_* environment
variables and flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", os.Getenv(config.EnvPrefix+"_CONFIG"), "config file (YAML)")
	flags.String("journal", "", "journal backend: memory, sqlite or postgres")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("seed-file", "", "seed file (YAML); empty uses the built-in catalog")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	a.bind(config.KeyJournalBackend, flags.Lookup("journal"))
	a.bind(config.KeyLogLevel, flags.Lookup("log-level"))
	a.bind(config.KeySeedFile, flags.Lookup("seed-file"))

	root.AddCommand(
		newSimulateCmd(a),
		newReportCmd(a),
		newHistoryCmd(a),
		newBooksCmd(a),
		newUsersCmd(a),
		newSeedCmd(a),
	)

	return root
}

// bind ties a flag to a config key. Unchanged flags leave the key to file and environment.
func (a *app) bind(key string, flag *pflag.Flag) {
	_ = a.viper.BindPFlag(key, flag)
}

func (a *app) setup(ctx context.Context) error {
	if a.noColor || !isTerminal(a.out) {
		color.NoColor = true
	}

	cfg, err := config.Load(a.viper, a.configPath)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(a.errOut, cfg.Log)
	if err != nil {
		return err
	}

	a.cfg, a.logger = cfg, logger

	return a.setupObservability(ctx)
}

func (a *app) close(ctx context.Context) error {
	var errs []error

	for _, closer := range a.closers {
		errs = append(errs, closer())
	}

	if a.providers != nil {
		errs = append(errs, a.providers.Shutdown(ctx))
	}

	return errors.Join(errs...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	fi, err := f.Stat()
	if err != nil {
		return false
	}

	return fi.Mode()&os.ModeCharDevice != 0
}

// ok prints a green success line.
func (a *app) ok(format string, args ...any) {
	_, _ = fmt.Fprintln(a.out, color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// warn prints a yellow warning line.
func (a *app) warn(format string, args ...any) {
	_, _ = fmt.Fprintln(a.errOut, color.YellowString("!"), fmt.Sprintf(format, args...))
}
