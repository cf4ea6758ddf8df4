// Package commands implements the uritemplate command line.
package commands

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/uritemplates/am"
	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/logger"
	"github.com/teranos/uritemplates/uritemplate"
)

// options are the persistent flags shared by every command.
type options struct {
	verbosity int
	jsonLog   bool
	format    string
}

// NewRootCmd builds the command tree. Each call returns a fresh tree so
// batch files can run commands without sharing flag state.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "uritemplate",
		Short: "Convert between time ranges and file names with URI templates",
		Long: `uritemplate - time-range URI templates

A template such as ace_mag_$Y_$j_to_$(Y;end)_$j.cdf describes how the
names of time-bucketed files are built. uritemplate parses names into the
ranges they cover, formats ranges into names, and lists every name needed
to cover a query range. Templates configured under [templates] in am.toml
can be referenced as @name.

Examples:
  uritemplate parse 'data_$Y_$j.cdf' data_2012_017.cdf
  uritemplate range '$Y/$m/data_$Y$m$d.dat' 2012-01-30/2012-02-02
  uritemplate format @ace_mag 2005-001 2005-003
  uritemplate scan @ace_mag s3://archive/ace/mag
  uritemplate query @ace_mag 2005-002/P1D`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging(opts)
		},
	}

	root.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	root.PersistentFlags().BoolVar(&opts.jsonLog, "json", false, "Write logs as JSON")
	root.PersistentFlags().StringVar(&opts.format, "format", "text", "Output format: text, json, yaml")

	root.AddCommand(
		newParseCmd(opts),
		newFormatCmd(opts),
		newRangeCmd(opts),
		newCanonicalCmd(opts),
		newNormalizeCmd(opts),
		newDurationCmd(opts),
		newTimeRangeCmd(opts),
		newLatestCmd(opts),
		newScanCmd(opts),
		newQueryCmd(opts),
		newConformanceCmd(opts),
		newBatchCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

func initLogging(opts *options) error {
	cfg, err := am.Load()
	if err != nil {
		// a broken am.toml should not stop template work; report it once logging is up
		cfg = am.DefaultConfig()
		defer logger.Warnw("Failed to load configuration, using defaults", logger.FieldError, err.Error())
	}
	logger.SetTheme(cfg.GetLogTheme())
	if err := logger.Initialize(opts.jsonLog || cfg.Log.JSON, opts.verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	logger.Debugw("Logging initialized", "verbosity", logger.LevelName(opts.verbosity))
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	logger.Cleanup()
	if err == nil {
		return 0
	}
	printError(root.ErrOrStderr(), err)
	return 1
}

func printError(w io.Writer, err error) {
	var te *uritemplate.TemplateError
	if errors.As(err, &te) {
		fmt.Fprintln(w, te.FormatError(uritemplate.ErrorContextTerminal))
		return
	}
	pterm.Error.WithWriter(w).Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		pterm.Info.WithWriter(w).Println(hint)
	}
}

// resolveTemplate compiles a template argument, looking up @name in the
// configured templates.
func resolveTemplate(arg string) (*uritemplate.Template, error) {
	spec := arg
	if len(arg) > 0 && arg[0] == '@' {
		cfg, err := am.Load()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
		if spec, err = cfg.Resolve(arg); err != nil {
			return nil, err
		}
	}
	return uritemplate.Compile(spec)
}
