package uritemplate

import (
	"strings"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
)

// Format renders the name for [start, stop). Fields qualified with end read
// stop; the rest read start. extra supplies enum, version and wildcard
// values by id; enums default to their first value, versions to "0" and
// wildcards to the empty string.
func (t *Template) Format(start, stop isotime.Time, extra map[string]string) (string, error) {
	var err error
	if start, err = isotime.Normalize(start); err != nil {
		return "", err
	}
	if stop, err = isotime.Normalize(stop); err != nil {
		return "", err
	}
	if extra == nil {
		extra = map[string]string{}
	}
	if f := t.dayEnum; f != nil {
		if k := indexOf(f.values, extra[f.ID()]); k > 0 {
			start.Day -= k
			start = isotime.MustNormalize(start)
		}
	}
	if start, err = t.unshift(start, false); err != nil {
		return "", err
	}
	if stop, err = t.unshift(stop, true); err != nil {
		return "", err
	}

	st := &formatState{start: start, stop: stop, extra: extra}
	var sb strings.Builder
	for _, tok := range t.tokens {
		if tok.Field == nil {
			sb.WriteString(tok.Literal)
			continue
		}
		s, err := resolverFor(tok.Field.Kind).format(tok.Field, st)
		if err != nil {
			return "", errors.Wrapf(err, "format field $%s of %q", tok.Field.Name, t.spec)
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// FormatTimeRange renders the name for r.
func (t *Template) FormatTimeRange(r isotime.TimeRange, extra map[string]string) (string, error) {
	return t.Format(r.Start, r.Stop, extra)
}

// unshift moves one side of the range back by the shift of the fields that
// read it, so every field of that side renders the same shifted instant.
func (t *Template) unshift(at isotime.Time, end bool) (isotime.Time, error) {
	var shift [7]int
	shifted := false
	for _, f := range t.fields() {
		if f.shift == 0 || f.end != end || f.phase != nil {
			continue
		}
		switch f.Kind {
		case KindMillis:
			shift[6] += f.shift * 1_000_000
		case KindMicros:
			shift[6] += f.shift * 1_000
		default:
			shift[f.Kind.component()] = f.shift
		}
		shifted = true
	}
	if !shifted {
		return at, nil
	}
	c := at.Components()
	for i := range c {
		c[i] -= shift[i]
	}
	return isotime.Normalize(isotime.FromComponents(c))
}
