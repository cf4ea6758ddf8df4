package isotime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/uritemplates/errors"
)

// Duration is an ISO-8601 duration kept as separate calendar and clock
// components; months and years are not converted to days.
type Duration struct {
	Years   int
	Months  int
	Days    int
	Hours   int
	Minutes int
	Seconds int
	Nanos   int

	// HasTime records that the duration carries a time part, which makes
	// the zero duration render as PT0S instead of P0D.
	HasTime bool
}

// DurationFromComponents builds a Duration from the seven components; the
// result has a time part.
func DurationFromComponents(c [7]int) Duration {
	return Duration{c[0], c[1], c[2], c[3], c[4], c[5], c[6], true}
}

// Components returns [years, months, days, hours, minutes, seconds, nanos].
func (d Duration) Components() [7]int {
	return [7]int{d.Years, d.Months, d.Days, d.Hours, d.Minutes, d.Seconds, d.Nanos}
}

// IsZero reports whether every component is zero.
func (d Duration) IsZero() bool {
	return d.Components() == [7]int{}
}

// Scale multiplies every component by n.
func (d Duration) Scale(n int) Duration {
	c := d.Components()
	for i := range c {
		c[i] *= n
	}
	s := DurationFromComponents(c)
	s.HasTime = d.HasTime
	return s
}

// String renders d with FormatDuration.
func (d Duration) String() string {
	return FormatDuration(d)
}

var durationPattern = regexp.MustCompile(
	`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?(T(?:(\d+)H)?(?:(\d+)M)?(?:(\d*\.?\d+)S)?)?$`)

// ParseDuration parses P[nY][nM][nD][T[nH][nM][n[.f]S]]. Fractional seconds
// are kept exactly to the nanosecond.
func ParseDuration(text string) (Duration, error) {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil || text == "P" || m[4] == "T" {
		err := errors.Wrapf(errors.ErrMalformedDuration, "%q", text)
		if strings.HasPrefix(text, "P") && strings.HasSuffix(text, "S") && !strings.Contains(text, "T") {
			err = errors.WithHint(errors.Wrapf(errors.ErrMalformedDuration, "%q: T missing before S", text),
				"was the T missing before S?")
		}
		return Duration{}, err
	}

	var d Duration
	fields := []struct {
		group string
		dst   *int
	}{
		{m[1], &d.Years},
		{m[2], &d.Months},
		{m[3], &d.Days},
		{m[5], &d.Hours},
		{m[6], &d.Minutes},
	}
	for _, f := range fields {
		if f.group == "" {
			continue
		}
		n, err := strconv.Atoi(f.group)
		if err != nil {
			return Duration{}, errors.Wrapf(errors.ErrMalformedDuration, "%q: %v", text, err)
		}
		*f.dst = n
	}

	if sec := m[7]; sec != "" {
		whole, frac, _ := strings.Cut(sec, ".")
		if whole != "" {
			n, err := strconv.Atoi(whole)
			if err != nil {
				return Duration{}, errors.Wrapf(errors.ErrMalformedDuration, "%q: %v", text, err)
			}
			d.Seconds = n
		}
		if frac != "" {
			n, err := fraction(frac)
			if err != nil {
				return Duration{}, errors.Wrapf(errors.ErrMalformedDuration, "%q: %v", text, err)
			}
			d.Nanos = n
		}
	}
	d.HasTime = m[4] != ""
	return d, nil
}

// FormatDuration renders d as an ISO-8601 duration. Only positive
// components are written. Seconds carry 3, 6 or 9 decimals depending on
// how finely the nanoseconds divide. The zero duration is PT0S when d has a
// time part and P0D otherwise.
func FormatDuration(d Duration) string {
	var sb strings.Builder
	sb.WriteByte('P')
	for _, c := range []struct {
		n    int
		unit byte
	}{{d.Years, 'Y'}, {d.Months, 'M'}, {d.Days, 'D'}} {
		if c.n > 0 {
			fmt.Fprintf(&sb, "%d%c", c.n, c.unit)
		}
	}

	needT := true
	timePart := func() {
		if needT {
			sb.WriteByte('T')
			needT = false
		}
	}
	if d.Hours > 0 {
		timePart()
		fmt.Fprintf(&sb, "%dH", d.Hours)
	}
	if d.Minutes > 0 {
		timePart()
		fmt.Fprintf(&sb, "%dM", d.Minutes)
	}
	if d.Seconds > 0 || d.Nanos > 0 {
		timePart()
		switch {
		case d.Nanos == 0:
			fmt.Fprintf(&sb, "%dS", d.Seconds)
		case d.Nanos%1_000_000 == 0:
			fmt.Fprintf(&sb, "%d.%03dS", d.Seconds, d.Nanos/1_000_000)
		case d.Nanos%1_000 == 0:
			fmt.Fprintf(&sb, "%d.%06dS", d.Seconds, d.Nanos/1_000)
		default:
			fmt.Fprintf(&sb, "%d.%09dS", d.Seconds, d.Nanos)
		}
	}

	if sb.Len() == 1 {
		if d.HasTime {
			return "PT0S"
		}
		return "P0D"
	}
	return sb.String()
}
