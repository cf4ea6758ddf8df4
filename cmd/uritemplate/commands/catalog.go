package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/uritemplates/am"
	"github.com/teranos/uritemplates/catalog"
	"github.com/teranos/uritemplates/db"
	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/logger"
	"github.com/teranos/uritemplates/storage"
)

// openCatalog opens the catalog at path, or at the configured path when
// path is empty. The caller closes the returned function.
func openCatalog(path string) (*catalog.Store, func(), error) {
	if path == "" {
		cfg, err := am.Load()
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to load config")
		}
		path = cfg.GetCatalogPath()
	}
	conn, err := db.OpenWithMigrations(path, logger.ComponentLogger("db"))
	if err != nil {
		return nil, nil, err
	}
	return catalog.NewStore(conn, logger.ComponentLogger("catalog")), func() { conn.Close() }, nil
}

func newScanCmd(opts *options) *cobra.Command {
	var (
		dbPath string
		watch  bool
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "scan TEMPLATE SOURCE",
		Short: "Record the names a template recognises in a directory or bucket",
		Long: `List SOURCE, parse every name with the template and record the matches
in the catalog. SOURCE is a directory or s3://bucket/prefix; names are taken
relative to it. With --watch a local directory keeps being watched and new
files are recorded as they appear.`,
		Example: `  uritemplate scan '$Y/data_$Y$j.cdf' /srv/archive
  uritemplate scan @ace_mag s3://archive/ace/mag
  uritemplate scan @ace_mag /srv/incoming --watch`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := resolveTemplate(args[0])
			if err != nil {
				return err
			}
			cfg, err := am.Load()
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			src, err := storage.ParseSource(ctx, args[1], cfg.GetS3Config())
			if err != nil {
				return err
			}
			local, isLocal := src.(storage.LocalSource)
			if watch && !isLocal {
				return errors.NewInvalidRequestError("--watch needs a local directory, not %s", src)
			}

			scanner := storage.NewScanner(tmpl, nil)
			var store *catalog.Store
			if !dryRun {
				var closeFn func()
				store, closeFn, err = openCatalog(dbPath)
				if err != nil {
					return err
				}
				defer closeFn()
				scanner.Sink = store
			}

			started := time.Now()
			res, err := scanner.Scan(ctx, src)
			if err != nil {
				return err
			}
			elapsed := time.Since(started)
			if err := emit(cmd, opts, res, func(w io.Writer) error {
				if logger.ShouldOutput(opts.verbosity, logger.OutputProgress) {
					pterm.Info.WithWriter(w).Printf("%s: listed %d names under %s with %s\n",
						logger.CategoryName(logger.OutputProgress), res.Matched+res.Skipped, res.Source, tmpl)
				}
				if dryRun {
					for _, e := range res.Entries {
						fmt.Fprintln(w, newNameView(e.Name, e.Range, e.Extras).text())
					}
				}
				if logger.ShouldOutput(opts.verbosity, logger.OutputSkippedNames) {
					for _, name := range res.SkippedNames {
						pterm.Warning.WithWriter(w).Printf("%s: %s\n", logger.CategoryName(logger.OutputSkippedNames), name)
					}
				}
				pterm.Success.WithWriter(w).Printf("%s: %d matched, %d skipped\n", res.Source, res.Matched, res.Skipped)
				if logger.ShouldOutput(opts.verbosity, logger.OutputTiming) {
					pterm.Info.WithWriter(w).Printf("%s: scan took %s\n",
						logger.CategoryName(logger.OutputTiming), elapsed.Round(time.Millisecond))
				}
				return nil
			}); err != nil {
				return err
			}

			if !watch {
				return nil
			}
			return watchSource(ctx, cmd, opts, local, tmpl.String(), scanner, store, cfg)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Catalog database (default from config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep watching the directory for new files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print matches without recording them")
	return cmd
}

func watchSource(ctx context.Context, cmd *cobra.Command, opts *options, src storage.LocalSource, template string,
	scanner *storage.Scanner, store *catalog.Store, cfg *am.Config) error {
	debounce := time.Duration(cfg.Storage.Watch.DebounceMS) * time.Millisecond
	w, err := storage.NewWatcher(src.Root, scanner.Template, debounce)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx = logger.WithComponent(ctx, "watch")
	log := logger.LoggerFromContext(ctx)

	out := cmd.OutOrStdout()
	pterm.Info.WithWriter(out).Printf("Watching %s (Ctrl-C to stop)\n", src.Root)
	return w.Run(ctx, func(m storage.Match) error {
		fmt.Fprintln(out, newNameView(m.Name, m.Range, m.Extras).text())
		if store == nil {
			return nil
		}
		if err := store.Put(ctx, catalog.Entry{Name: m.Name, Template: template, Range: m.Range, Extras: m.Extras}); err != nil {
			return err
		}
		log.Infow("Recorded new file", logger.FieldName, m.Name, logger.FieldRange, m.Range.String())
		if logger.ShouldOutput(opts.verbosity, logger.OutputWatch) {
			pterm.Info.WithWriter(out).Printf("%s: recorded %s\n", logger.CategoryName(logger.OutputWatch), m.Name)
		}
		return nil
	})
}

func newQueryCmd(opts *options) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "query TEMPLATE (START/STOP | START STOP)",
		Short: "List catalogued names whose ranges intersect a time range",
		Example: `  uritemplate query @ace_mag 2005-002/2005-004
  uritemplate query '$Y/data_$Y$j.cdf' 2012-01-01 2012-02-01 --format json`,
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

			store, closeFn, err := openCatalog(dbPath)
			if err != nil {
				return err
			}
			defer closeFn()

			entries, err := store.Query(cmd.Context(), tmpl.String(), r)
			if err != nil {
				return err
			}
			views := make([]nameView, len(entries))
			for i, e := range entries {
				views[i] = newNameView(e.Name, e.Range, e.Extras)
			}
			return emit(cmd, opts, views, func(w io.Writer) error {
				for _, v := range views {
					fmt.Fprintln(w, v.text())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Catalog database (default from config)")
	return cmd
}
