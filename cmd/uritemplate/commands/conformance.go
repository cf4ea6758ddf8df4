package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/uritemplates/am"
	"github.com/teranos/uritemplates/conformance"
	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/logger"
)

func newConformanceCmd(opts *options) *cobra.Command {
	var (
		offline   bool
		skipFirst int
		skip      []string
	)
	cmd := &cobra.Command{
		Use:   "conformance [SOURCE]",
		Short: "Run the shared formatting fixture",
		Long: `Fetch the formatting fixture (any go-getter source; default from
[conformance] fixture_url) and check that every template formats every
range into the expected names. The leading cases test other tools and are
skipped by default.`,
		Example: `  uritemplate conformance
  uritemplate conformance ./formatting.json --skip-first 0
  uritemplate conformance --offline`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := am.Load()
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}
			src := cfg.Conformance.FixtureURL
			if len(args) == 1 {
				src = args[0]
			}

			path := conformance.CachedPath(src, cfg.Conformance.CacheDir)
			fetched := false
			if !offline {
				fetched = true
				if path, err = conformance.Fetch(cmd.Context(), src, cfg.Conformance.CacheDir, conformance.FetchOptions{
					AllowPrivateHosts: cfg.Conformance.AllowPrivateHosts,
				}); err != nil {
					return err
				}
			}
			cases, err := conformance.Load(path)
			if err != nil {
				return err
			}

			runOpts := conformance.Options{SkipFirst: cfg.Conformance.SkipFirst, Skip: cfg.Conformance.Skip}
			if cmd.Flags().Changed("skip-first") {
				runOpts.SkipFirst = skipFirst
			}
			runOpts.Skip = append(runOpts.Skip, skip...)

			report := conformance.Run(cases, runOpts)
			if err := emit(cmd, opts, report, func(w io.Writer) error {
				if fetched && logger.ShouldOutput(opts.verbosity, logger.OutputRemoteCalls) {
					pterm.Info.WithWriter(w).Printf("%s: fetched %s to %s\n",
						logger.CategoryName(logger.OutputRemoteCalls), src, path)
				}
				return printReport(w, report)
			}); err != nil {
				return err
			}
			if report.Failed > 0 {
				return errors.Newf("%d of %d checks failed", report.Failed, report.Failed+report.Passed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the cached fixture without fetching")
	cmd.Flags().IntVar(&skipFirst, "skip-first", 0, "Number of leading cases to skip (default from config)")
	cmd.Flags().StringSliceVar(&skip, "skip", nil, "Skip cases whose whatTests contains this text")
	return cmd
}

func printReport(w io.Writer, report *conformance.Report) error {
	if failures := report.Failures(); len(failures) > 0 {
		data := pterm.TableData{{"#", "Template", "Range", "Expected", "Got"}}
		for _, f := range failures {
			got := strings.Join(f.Got, " ")
			if f.Error != "" {
				got = f.Error
			}
			data = append(data, []string{
				fmt.Sprint(f.Index), f.Template, f.TimeRange, strings.Join(f.Want, " "), got,
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render(); err != nil {
			return err
		}
	}
	summary := fmt.Sprintf("%d passed, %d failed, %d cases skipped\n", report.Passed, report.Failed, report.Skipped)
	if report.Failed > 0 {
		pterm.Error.WithWriter(w).Print(summary)
	} else {
		pterm.Success.WithWriter(w).Print(summary)
	}
	return nil
}
