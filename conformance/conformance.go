// Package conformance runs the shared formatting fixture published with the
// URI template specification (formatting.json) against this implementation.
// Each fixture case lists templates, one or more query ranges and the names
// every template must produce for every range.
package conformance

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-getter"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/teranos/uritemplates/am"
	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/internal/httpclient"
	"github.com/teranos/uritemplates/logger"
)

// Case is one fixture entry.
type Case struct {
	WhatTests  string     `yaml:"whatTests" json:"whatTests"`
	Templates  StringList `yaml:"template" json:"template"`
	TimeRanges StringList `yaml:"timeRange" json:"timeRange"`
	Outputs    []string   `yaml:"output" json:"output"`
}

// StringList decodes from a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	return errors.Newf("line %d: expected a string or a list of strings", node.Line)
}

// Decode parses fixture bytes. JSON is accepted since it is valid YAML.
func Decode(data []byte) ([]Case, error) {
	var cases []Case
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, errors.Wrap(err, "decode fixture")
	}
	return cases, nil
}

// Load reads and decodes a fixture file.
func Load(file string) ([]Case, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read fixture %s", file)
	}
	cases, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "fixture %s", file)
	}
	return cases, nil
}

// FetchOptions tunes how remote fixtures are downloaded.
type FetchOptions struct {
	AllowPrivateHosts bool
	Timeout           time.Duration
}

// Fetch downloads src (any go-getter source: URL, local path, s3::, git::)
// into dir and returns the local file path. The file keeps the base name
// of src. HTTP sources go through httpclient, which refuses private
// destinations unless opts.AllowPrivateHosts is set.
func Fetch(ctx context.Context, src, dir string, opts FetchOptions) (string, error) {
	log := newLogger()

	pwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get working directory")
	}

	hc := httpclient.New(httpclient.Options{Timeout: opts.Timeout, AllowPrivate: opts.AllowPrivateHosts})
	detected, err := getter.Detect(src, pwd, getter.Detectors)
	if err != nil {
		return "", errors.Wrapf(err, "unrecognized fixture source %s", src)
	}
	if u := httpSource(detected); u != "" {
		if _, err := hc.Check(u); err != nil {
			return "", errors.WithHint(err, "set conformance.allow_private_hosts for a local mirror")
		}
	}
	getters := make(map[string]getter.Getter, len(getter.Getters))
	for k, g := range getter.Getters {
		getters[k] = g
	}
	httpGetter := &getter.HttpGetter{Client: hc.Client}
	getters["http"] = httpGetter
	getters["https"] = httpGetter

	if err := os.MkdirAll(dir, am.DefaultDirPermissions); err != nil {
		return "", errors.Wrapf(err, "create fixture cache %s", dir)
	}
	dst := filepath.Join(dir, fixtureName(src))

	client := &getter.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     dst,
		Pwd:     pwd,
		Mode:    getter.ClientModeFile,
		Getters: getters,
	}
	log.Infow("Fetching fixture", logger.FieldURL, src, logger.FieldPath, dst)
	if err := client.Get(); err != nil {
		return "", errors.WithHint(
			errors.Wrapf(err, "fetch fixture %s", src),
			"pass --offline to use the cached copy")
	}
	return dst, nil
}

// httpSource returns the URL of a detected http(s) source, or "".
func httpSource(detected string) string {
	if forced, rest, ok := strings.Cut(detected, "::"); ok && !strings.ContainsAny(forced, ":/") {
		if forced != "http" && forced != "https" {
			return ""
		}
		detected = rest
	}
	if strings.HasPrefix(detected, "http://") || strings.HasPrefix(detected, "https://") {
		return detected
	}
	return ""
}

// CachedPath is where Fetch stores src inside dir.
func CachedPath(src, dir string) string {
	return filepath.Join(dir, fixtureName(src))
}

func fixtureName(src string) string {
	src, _, _ = strings.Cut(src, "?")
	if i := strings.Index(src, "::"); i >= 0 {
		src = src[i+2:]
	}
	name := path.Base(filepath.ToSlash(src))
	if name == "" || name == "." || name == "/" {
		return "fixture.json"
	}
	return name
}

func newLogger() *zap.SugaredLogger {
	return logger.ComponentLogger("conformance")
}
