package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
)

func newNormalizeCmd(opts *options) *cobra.Command {
	var like string
	cmd := &cobra.Command{
		Use:   "normalize TIME...",
		Short: "Normalize ISO-8601 times",
		Long: `Print each time in full YYYY-MM-DDThh:mm:ss.nnnnnnnnnZ form, or in the
shape of --like. Relative times such as now-P1D and lastday are resolved
against the current time.`,
		Example: `  uritemplate normalize 2020-112 2020-04-31T24:00
  uritemplate normalize --like 2020-001T00:00Z 2020-04-21T12:30`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := make([]string, 0, len(args))
			for _, a := range args {
				var (
					s   string
					err error
				)
				if like != "" {
					s, err = isotime.ReformatIsoTime(like, a)
				} else {
					s, err = isotime.NormalizeTimeString(a)
				}
				if err != nil {
					return err
				}
				out = append(out, s)
			}
			return emit(cmd, opts, out, func(w io.Writer) error {
				for _, s := range out {
					fmt.Fprintln(w, s)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&like, "like", "", "Example time whose shape the output copies")
	return cmd
}

// durationView lists the seven components of a duration.
type durationView struct {
	ISO     string `json:"iso" yaml:"iso"`
	Years   int    `json:"years" yaml:"years"`
	Months  int    `json:"months" yaml:"months"`
	Days    int    `json:"days" yaml:"days"`
	Hours   int    `json:"hours" yaml:"hours"`
	Minutes int    `json:"minutes" yaml:"minutes"`
	Seconds int    `json:"seconds" yaml:"seconds"`
	Nanos   int    `json:"nanos" yaml:"nanos"`
}

func newDurationView(d isotime.Duration) durationView {
	return durationView{
		ISO: isotime.FormatDuration(d), Years: d.Years, Months: d.Months, Days: d.Days,
		Hours: d.Hours, Minutes: d.Minutes, Seconds: d.Seconds, Nanos: d.Nanos,
	}
}

func (v durationView) text() string {
	return fmt.Sprintf("%d %d %d %d %d %d %d", v.Years, v.Months, v.Days, v.Hours, v.Minutes, v.Seconds, v.Nanos)
}

func newDurationCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duration",
		Short: "Parse and format ISO-8601 durations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "parse DURATION",
		Short:   "Print the components of a duration: Y M D h m s ns",
		Example: `  uritemplate duration parse P1DT2H30.5S`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := isotime.ParseDuration(args[0])
			if err != nil {
				return err
			}
			v := newDurationView(d)
			return emit(cmd, opts, v, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, v.text())
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "format YEARS MONTHS DAYS HOURS MINUTES SECONDS NANOS",
		Short:   "Format seven components as a duration",
		Example: `  uritemplate duration format 0 0 1 2 0 30 500000000`,
		Args:    cobra.ExactArgs(7),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c [7]int
			for i, a := range args {
				n, err := strconv.Atoi(a)
				if err != nil || n < 0 {
					return errors.NewInvalidRequestError("component %d: %q is not a non-negative integer", i+1, a)
				}
				c[i] = n
			}
			v := newDurationView(isotime.DurationFromComponents(c))
			return emit(cmd, opts, v, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, v.ISO)
				return err
			})
		},
	})
	return cmd
}

func newTimeRangeCmd(opts *options) *cobra.Command {
	var days bool
	cmd := &cobra.Command{
		Use:   "timerange RANGE",
		Short: "Resolve start/stop, start/duration or duration/stop",
		Example: `  uritemplate timerange 2012-01-17/P3D
  uritemplate timerange --days 2012-01-30T12:00/P3D`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := isotime.ParseTimeRange(args[0])
			if err != nil {
				return err
			}
			if !days {
				v := viewOf(r)
				return emit(cmd, opts, v, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, v.Start+"/"+v.Stop)
					return err
				})
			}
			list, err := isotime.CountOffDays(r.Start, r.Stop)
			if err != nil {
				return err
			}
			return emit(cmd, opts, list, func(w io.Writer) error {
				for _, d := range list {
					fmt.Fprintln(w, d)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&days, "days", false, "List the days the range touches")
	return cmd
}
