package isotime

import (
	"strings"

	"github.com/teranos/uritemplates/errors"
)

// TimeRange is a half-open interval [Start, Stop).
type TimeRange struct {
	Start Time
	Stop  Time
}

// Components returns the start components followed by the stop components.
func (r TimeRange) Components() [14]int {
	var c [14]int
	s, e := r.Start.Components(), r.Stop.Components()
	copy(c[:7], s[:])
	copy(c[7:], e[:])
	return c
}

// String renders the range as start/stop.
func (r TimeRange) String() string {
	return Recompose(r.Start) + "/" + Recompose(r.Stop)
}

// Contains reports whether t falls in [Start, Stop).
func (r TimeRange) Contains(t Time) bool {
	return !t.Before(r.Start) && t.Before(r.Stop)
}

// Intersects reports whether r and o overlap.
func (r TimeRange) Intersects(o TimeRange) bool {
	return r.Start.Before(o.Stop) && o.Start.Before(r.Stop)
}

// ParseTimeRange parses start/stop, start/duration or duration/stop using
// SystemClock for relative times.
func ParseTimeRange(text string) (TimeRange, error) {
	return ParseTimeRangeAt(text, SystemClock)
}

// ParseTimeRangeAt parses start/stop, start/duration or duration/stop. Both
// ends of the result are normalized.
func ParseTimeRangeAt(text string, clock Clock) (TimeRange, error) {
	parts := strings.Split(text, "/")
	if len(parts) != 2 {
		return TimeRange{}, errors.WithHint(
			errors.Wrapf(errors.ErrMalformedRange, "%q", text),
			"a range is start/stop, start/duration or duration/stop")
	}
	for _, p := range parts {
		if !rangeSide(p) {
			return TimeRange{}, errors.Wrapf(errors.ErrMalformedRange, "%q: bad side %q", text, p)
		}
	}

	fail := func(err error) (TimeRange, error) {
		return TimeRange{}, errors.Mark(errors.Wrapf(err, "range %q", text), errors.ErrMalformedRange)
	}

	var r TimeRange
	switch {
	case parts[0][0] == 'P' && parts[1][0] == 'P':
		return TimeRange{}, errors.Wrapf(errors.ErrMalformedRange, "%q: both sides are durations", text)
	case parts[0][0] == 'P':
		d, err := ParseDuration(parts[0])
		if err != nil {
			return fail(err)
		}
		if r.Stop, err = DecomposeAt(parts[1], clock); err != nil {
			return fail(err)
		}
		if r.Start, err = Subtract(r.Stop, d); err != nil {
			return fail(err)
		}
	case parts[1][0] == 'P':
		d, err := ParseDuration(parts[1])
		if err != nil {
			return fail(err)
		}
		if r.Start, err = DecomposeAt(parts[0], clock); err != nil {
			return fail(err)
		}
		if r.Stop, err = Add(r.Start, d); err != nil {
			return fail(err)
		}
	default:
		var err error
		if r.Start, err = DecomposeAt(parts[0], clock); err != nil {
			return fail(err)
		}
		if r.Stop, err = DecomposeAt(parts[1], clock); err != nil {
			return fail(err)
		}
	}

	var err error
	if r.Start, err = Normalize(r.Start); err != nil {
		return fail(err)
	}
	if r.Stop, err = Normalize(r.Stop); err != nil {
		return fail(err)
	}
	return r, nil
}

func rangeSide(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || c == 'P' || strings.HasPrefix(s, "now") || strings.HasPrefix(s, "last")
}
