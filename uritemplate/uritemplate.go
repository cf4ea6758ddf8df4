// Package uritemplate converts between time ranges and resource names
// built from URI templates such as ace_mag_$Y_$j_to_$(Y;end)_$j.cdf.
//
// A template is compiled once and then parses names into time ranges,
// formats time ranges into names, and enumerates every name covering a
// query range:
//
//	t, err := uritemplate.Compile("data_$Y_$j.cdf")
//	r, extra, err := t.Parse("data_2005_001.cdf")
//	name, err := t.Format(r.Start, r.Stop, extra)
//	names, err := t.FormatRange(start, stop)
//
// Compile accepts the legacy %{field,opt=val} syntax as well. Compile
// errors are *TemplateError values marked errors.ErrTemplateCompile;
// names that do not match produce errors marked errors.ErrNoMatch.
//
// A field that matches a variable number of characters (wildcards,
// versions, unpadded digits) followed directly by another field, with no
// literal between them, is resolved by the leftmost-shortest match and may
// not split the name the way the author intended.
package uritemplate

import (
	"github.com/teranos/uritemplates/isotime"
)

// Parse compiles spec and parses text.
func Parse(spec, text string) (isotime.TimeRange, map[string]string, error) {
	t, err := Compile(spec)
	if err != nil {
		return isotime.TimeRange{}, nil, err
	}
	return t.Parse(text)
}

// Format compiles spec and formats the range given as ISO-8601 start and stop times.
func Format(spec, startText, stopText string) (string, error) {
	t, err := Compile(spec)
	if err != nil {
		return "", err
	}
	start, stop, err := decomposePair(startText, stopText)
	if err != nil {
		return "", err
	}
	return t.Format(start, stop, nil)
}

// FormatRange compiles spec and lists every name covering [startText, stopText).
func FormatRange(spec, startText, stopText string) ([]string, error) {
	t, err := Compile(spec)
	if err != nil {
		return nil, err
	}
	start, stop, err := decomposePair(startText, stopText)
	if err != nil {
		return nil, err
	}
	return t.FormatRange(start, stop)
}

func decomposePair(startText, stopText string) (isotime.Time, isotime.Time, error) {
	start, err := isotime.Decompose(startText)
	if err != nil {
		return isotime.Time{}, isotime.Time{}, err
	}
	stop, err := isotime.Decompose(stopText)
	if err != nil {
		return isotime.Time{}, isotime.Time{}, err
	}
	return start, stop, nil
}
