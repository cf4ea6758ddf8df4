package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/uritemplate"
)

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse TEMPLATE [NAME...]",
		Short: "Parse names into the time ranges they cover",
		Long: `Parse each name with the template and print the range it covers
along with any non-time fields. Names are read from stdin when none are
given or NAME is "-".`,
		Example: `  uritemplate parse 'ace_mag_$Y_$j_to_$(Y;end)_$j.cdf' ace_mag_2005_001_to_2005_003.cdf
  ls /data | uritemplate parse '$Y$m$d_v$v.dat'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := resolveTemplate(args[0])
			if err != nil {
				return err
			}
			names, err := namesFrom(cmd, args[1:])
			if err != nil {
				return err
			}

			views := make([]nameView, 0, len(names))
			for _, name := range names {
				r, extras, err := tmpl.Parse(name)
				if err != nil {
					return err
				}
				views = append(views, newNameView(name, r, extras))
			}
			return emit(cmd, opts, views, func(w io.Writer) error {
				for _, v := range views {
					fmt.Fprintln(w, v.text())
				}
				return nil
			})
		},
	}
}

func newFormatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "format TEMPLATE (START/STOP | START STOP) [KEY=VALUE...]",
		Short: "Format a time range into a name",
		Long: `Format the range with the template. KEY=VALUE arguments fill the
non-time fields by id: $(v) is "v", $(enum;id=sc) is "sc".`,
		Example: `  uritemplate format '$Y_$m_v$v.dat' 2003-10/2003-11 v=20.3
  uritemplate format '$Y$m$d-$(Y;end)$m$d' 2013-02-02 2014-03-03`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := resolveTemplate(args[0])
			if err != nil {
				return err
			}
			r, rest, err := parseRangeArgs(args[1:])
			if err != nil {
				return err
			}
			extras, err := parseExtras(rest)
			if err != nil {
				return err
			}
			name, err := tmpl.FormatTimeRange(r, extras)
			if err != nil {
				return err
			}
			return emit(cmd, opts, newNameView(name, r, extras), func(w io.Writer) error {
				_, err := fmt.Fprintln(w, name)
				return err
			})
		},
	}
}

func newRangeCmd(opts *options) *cobra.Command {
	var withRanges bool
	cmd := &cobra.Command{
		Use:   "range TEMPLATE (START/STOP | START STOP)",
		Short: "List every name covering a time range",
		Long: `List, in time order, the names whose buckets intersect the range.
The first name may start before the range and the last may end after it.`,
		Example: `  uritemplate range 'data_$Y_$j.cdf' 2012-01-30/P3D
  uritemplate range '$(periodic;offset=0;start=2000-001;period=P1D)' 2000-001 2000-004 --ranges`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := resolveTemplate(args[0])
			if err != nil {
				return err
			}
			r, rest, err := parseRangeArgs(args[1:])
			if err != nil {
				return err
			}
			if len(rest) > 0 {
				return errors.NewInvalidRequestError("unexpected arguments %q", rest)
			}

			var views []nameView
			it := tmpl.Iterate(r.Start, r.Stop)
			for it.Next() {
				views = append(views, newNameView(it.Value(), it.Range(), nil))
			}
			if err := it.Err(); err != nil {
				return err
			}
			return emit(cmd, opts, views, func(w io.Writer) error {
				for _, v := range views {
					if withRanges {
						fmt.Fprintln(w, v.text())
					} else {
						fmt.Fprintln(w, v.Name)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withRanges, "ranges", false, "Print the range each name covers")
	return cmd
}

func newCanonicalCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "canonical SPEC",
		Short: "Rewrite a template in canonical $(field;qualifier) form",
		Long: `Rewrite legacy %{field,opt=val} syntax and $(field,a=b) comma
qualifiers into the canonical form, then compile it to check it.`,
		Example: `  uritemplate canonical '%{Y,m=02}*.dat'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canonical, err := uritemplate.MakeCanonical(args[0])
			if err != nil {
				return err
			}
			if _, err := uritemplate.Compile(canonical); err != nil {
				return err
			}
			return emit(cmd, opts, map[string]string{"template": args[0], "canonical": canonical}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, canonical)
				return err
			})
		},
	}
}

func newLatestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "latest TEMPLATE [NAME...]",
		Short: "Keep only the highest version of each name",
		Long: `Group names by the range they cover and their non-version fields and
keep the one with the highest $v. Names come from stdin when none are given.`,
		Example: `  ls | uritemplate latest '$Y$m$d_v$v.cdf'`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := resolveTemplate(args[0])
			if err != nil {
				return err
			}
			names, err := namesFrom(cmd, args[1:])
			if err != nil {
				return err
			}
			latest, err := tmpl.Latest(names)
			if err != nil {
				return err
			}
			return emit(cmd, opts, latest, func(w io.Writer) error {
				for _, n := range latest {
					fmt.Fprintln(w, n)
				}
				return nil
			})
		},
	}
}
