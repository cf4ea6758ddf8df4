// Package storage lists resource names from directories and S3 buckets and
// feeds the ones a template recognises into the catalog.
package storage

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/teranos/uritemplates/am"
	"github.com/teranos/uritemplates/errors"
)

// Source lists candidate names. Names are slash-separated and relative to
// the source root, which is what templates are written against.
type Source interface {
	List(ctx context.Context) ([]string, error)
	String() string
}

// LocalSource lists regular files below a directory.
type LocalSource struct {
	Root string
}

// List walks Root in lexical order.
func (s LocalSource) List(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", s.Root)
	}
	return names, nil
}

func (s LocalSource) String() string { return s.Root }

// ParseSource turns a command-line location into a Source: s3://bucket/prefix
// for S3, anything else is a local directory.
func ParseSource(ctx context.Context, location string, cfg am.S3Config) (Source, error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return LocalSource{Root: location}, nil
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, errors.NewInvalidRequestError("%q has no bucket", location)
	}
	return NewS3Source(ctx, bucket, prefix, cfg)
}
