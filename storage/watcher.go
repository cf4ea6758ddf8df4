package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/uritemplates/db"
	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
	"github.com/teranos/uritemplates/logger"
	"github.com/teranos/uritemplates/uritemplate"
)

// Match is a newly seen name that the template recognises.
type Match struct {
	Name   string
	Range  isotime.TimeRange
	Extras map[string]string
}

// Watcher reports files created under a directory tree whose relative
// paths match a template. Events are collected until the tree has been
// quiet for the debounce period, then reported in name order.
type Watcher struct {
	root     string
	tmpl     *uritemplate.Template
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *zap.SugaredLogger
}

// NewWatcher watches root and every directory below it.
func NewWatcher(root string, tmpl *uritemplate.Template, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	w := &Watcher{
		root:     root,
		tmpl:     tmpl,
		debounce: debounce,
		fsw:      fsw,
		logger:   logger.ComponentLogger("storage.watcher"),
	}
	if _, err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and its subdirectories and returns the files
// already present, which a watch added late would otherwise miss.
func (w *Watcher) addTree(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to watch %s", dir)
	}
	return files, nil
}

// Run delivers matches to handle until ctx is cancelled or the watcher is
// closed. Handler errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, handle func(Match) error) error {
	pending := map[string]struct{}{}
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
		} else {
			timer.Reset(w.debounce)
		}
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				files, err := w.addTree(event.Name)
				if err != nil {
					w.logger.Warnw("Watcher could not follow directory", logger.FieldPath, event.Name, logger.FieldError, err)
					continue
				}
				for _, f := range files {
					pending[f] = struct{}{}
				}
			} else {
				pending[event.Name] = struct{}{}
			}
			schedule()

		case <-fire:
			fire = nil
			w.flush(pending, handle)
			pending = map[string]struct{}{}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) flush(pending map[string]struct{}, handle func(Match) error) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			continue
		}
		name := filepath.ToSlash(rel)
		r, extra, err := w.tmpl.Parse(name)
		if err != nil {
			w.logger.Debugw("Ignoring new file", logger.FieldName, name, logger.FieldError, err.Error())
			continue
		}
		if err := handle(Match{Name: name, Range: r, Extras: extra}); err != nil {
			if db.IsDatabaseClosed(err) {
				return
			}
			w.logger.Errorw("Watch handler failed", logger.FieldName, name, logger.FieldError, err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
