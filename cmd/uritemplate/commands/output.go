package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
)

// emit writes v as JSON or YAML when asked to, otherwise calls text.
func emit(cmd *cobra.Command, opts *options, v any, text func(w io.Writer) error) error {
	w := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal JSON")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "failed to marshal YAML")
		}
		_, err = w.Write(data)
		return err
	case "text", "":
		return text(w)
	}
	return errors.NewInvalidRequestError("unsupported format: %s (supported: text, json, yaml)", opts.format)
}

// rangeView is how a time range appears in JSON and YAML output.
type rangeView struct {
	Start string `json:"start" yaml:"start"`
	Stop  string `json:"stop" yaml:"stop"`
}

func viewOf(r isotime.TimeRange) rangeView {
	return rangeView{Start: isotime.Recompose(r.Start), Stop: isotime.Recompose(r.Stop)}
}

// nameView is a name with the range it covers.
type nameView struct {
	Name   string            `json:"name" yaml:"name"`
	Start  string            `json:"start" yaml:"start"`
	Stop   string            `json:"stop" yaml:"stop"`
	Extras map[string]string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

func newNameView(name string, r isotime.TimeRange, extras map[string]string) nameView {
	v := viewOf(r)
	if len(extras) == 0 {
		extras = nil
	}
	return nameView{Name: name, Start: v.Start, Stop: v.Stop, Extras: extras}
}

func (v nameView) text() string {
	line := v.Name + "\t" + v.Start + "/" + v.Stop
	if len(v.Extras) > 0 {
		line += "\t" + formatExtras(v.Extras)
	}
	return line
}

func formatExtras(extras map[string]string) string {
	keys := make([]string, 0, len(extras))
	for k := range extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + extras[k]
	}
	return strings.Join(parts, " ")
}

// parseExtras reads key=value arguments.
func parseExtras(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	extras := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, errors.NewInvalidRequestError("%q is not key=value", a)
		}
		extras[k] = v
	}
	return extras, nil
}

// parseRangeArgs accepts either one start/stop argument or separate start
// and stop arguments, and returns the remaining arguments.
func parseRangeArgs(args []string) (isotime.TimeRange, []string, error) {
	if len(args) == 0 {
		return isotime.TimeRange{}, nil, errors.NewInvalidRequestError("missing time range")
	}
	if strings.Contains(args[0], "/") {
		r, err := isotime.ParseTimeRange(args[0])
		return r, args[1:], err
	}
	if len(args) < 2 {
		return isotime.TimeRange{}, nil, errors.WithHint(
			errors.NewInvalidRequestError("%q is not a range", args[0]),
			"give START/STOP or START STOP")
	}
	start, err := decomposeNormalized(args[0])
	if err != nil {
		return isotime.TimeRange{}, nil, err
	}
	stop, err := decomposeNormalized(args[1])
	if err != nil {
		return isotime.TimeRange{}, nil, err
	}
	return isotime.TimeRange{Start: start, Stop: stop}, args[2:], nil
}

func decomposeNormalized(text string) (isotime.Time, error) {
	t, err := isotime.Decompose(text)
	if err != nil {
		return isotime.Time{}, err
	}
	return isotime.Normalize(t)
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, errors.Wrap(sc.Err(), "read input")
}

// namesFrom returns args, or the lines of stdin when args is empty or "-".
func namesFrom(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		return readLines(cmd.InOrStdin())
	}
	return args, nil
}
