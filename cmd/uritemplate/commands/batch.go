package commands

import (
	"bufio"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/logger"
)

func newBatchCmd(opts *options) *cobra.Command {
	var keepGoing bool
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run uritemplate commands from a file, one per line",
		Long: `Run each line of FILE ("-" for stdin) as a uritemplate command line.
Lines are split with shell quoting rules, so quote templates containing $.
Blank lines and lines starting with # are ignored.`,
		Example: `  cat > jobs.txt <<'END'
  # daily names for January
  range 'data_$Y$m$d.dat' 2012-01-01/2012-02-01
  parse @ace_mag ace_mag_2005_001_to_2005_003.cdf
  END
  uritemplate batch jobs.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrapf(err, "open batch file %s", args[0])
				}
				defer f.Close()
				in = f
			}

			log := logger.ComponentLogger("batch")
			var failed int
			sc := bufio.NewScanner(in)
			for lineNo := 1; sc.Scan(); lineNo++ {
				line := strings.TrimSpace(sc.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				words, err := shellquote.Split(line)
				if err != nil {
					return errors.Wrapf(err, "line %d", lineNo)
				}
				if len(words) > 0 && words[0] == "uritemplate" {
					words = words[1:]
				}
				if len(words) > 0 && words[0] == "batch" {
					return errors.NewInvalidRequestError("line %d: batch files cannot run batch", lineNo)
				}

				sub := NewRootCmd()
				sub.SetArgs(append(inheritedFlags(opts), words...))
				sub.SetIn(cmd.InOrStdin())
				sub.SetOut(cmd.OutOrStdout())
				sub.SetErr(cmd.ErrOrStderr())
				if err := sub.ExecuteContext(cmd.Context()); err != nil {
					if !keepGoing {
						return errors.Wrapf(err, "line %d", lineNo)
					}
					failed++
					log.Warnw("Batch line failed", "line", lineNo, logger.FieldError, err.Error())
					printError(cmd.ErrOrStderr(), err)
				}
			}
			if err := sc.Err(); err != nil {
				return errors.Wrap(err, "read batch file")
			}
			if failed > 0 {
				return errors.Newf("%d batch lines failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "Continue after a failing line")
	return cmd
}

// inheritedFlags passes the batch command's own persistent flags on to each
// line; flags on the line itself come later and win.
func inheritedFlags(opts *options) []string {
	flags := []string{"--format=" + opts.format}
	if opts.jsonLog {
		flags = append(flags, "--json")
	}
	for i := 0; i < opts.verbosity; i++ {
		flags = append(flags, "-v")
	}
	return flags
}
