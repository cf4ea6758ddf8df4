// Package isotime implements the decomposed UTC time used by URI templates:
// seven integer components, ISO-8601 time and duration text, calendar
// arithmetic and time ranges. Leap seconds are not modelled.
package isotime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teranos/uritemplates/errors"
)

// Time is a decomposed UTC time. A day-of-year is carried as Month 1 with
// Day up to 366 until the value is normalized.
type Time struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	Nano   int
}

// Clock supplies the current time for "now" and "last<unit>" expressions.
type Clock func() time.Time

// SystemClock reads the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// FromComponents builds a Time from [year, month, day, hour, minute, second, nanos].
func FromComponents(c [7]int) Time {
	return Time{c[0], c[1], c[2], c[3], c[4], c[5], c[6]}
}

// FromGoTime decomposes t after converting it to UTC.
func FromGoTime(t time.Time) Time {
	t = t.UTC()
	return Time{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond()}
}

// Components returns [year, month, day, hour, minute, second, nanos].
func (t Time) Components() [7]int {
	return [7]int{t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, t.Nano}
}

// GoTime converts t to a time.Time in UTC. Out-of-range components are
// normalized by time.Date.
func (t Time) GoTime() time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, t.Nano, time.UTC)
}

// EpochMillis returns milliseconds since 1970-01-01T00:00Z.
func (t Time) EpochMillis() int64 {
	days := int64(JulianDay(t.Year, t.Month, t.Day) - julianDayEpoch)
	return days*86_400_000 +
		int64(t.Hour)*3_600_000 +
		int64(t.Minute)*60_000 +
		int64(t.Second)*1_000 +
		int64(t.Nano)/1_000_000
}

// String renders t with Recompose.
func (t Time) String() string {
	return Recompose(t)
}

// Compare orders a and b component by component, returning -1, 0 or +1.
// Both values should be normalized.
func Compare(a, b Time) int {
	ac, bc := a.Components(), b.Components()
	for i := range ac {
		switch {
		case ac[i] < bc[i]:
			return -1
		case ac[i] > bc[i]:
			return 1
		}
	}
	return 0
}

// Before reports whether t is earlier than o.
func (t Time) Before(o Time) bool { return Compare(t, o) < 0 }

// After reports whether t is later than o.
func (t Time) After(o Time) bool { return Compare(t, o) > 0 }

// Equal reports whether t and o carry the same components.
func (t Time) Equal(o Time) bool { return Compare(t, o) == 0 }

// Recompose renders t as YYYY-MM-DDThh:mm:ss.nnnnnnnnnZ. A day-of-year
// (Month 1, Day > 31) is resolved to month and day first.
func Recompose(t Time) string {
	if t.Month == 1 && t.Day > 31 && t.Day <= DaysInYear(t.Year) {
		m := MonthForDayOfYear(t.Year, t.Day)
		t.Day -= dayOffset[leap(t.Year)][m]
		t.Month = m
	}
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%09dZ",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, t.Nano)
}

var lastPattern = regexp.MustCompile(`^last([a-z]+)([+-]P.*)?$`)

var lastUnits = map[string]int{
	"year":   1,
	"month":  2,
	"day":    3,
	"hour":   4,
	"minute": 5,
	"second": 6,
}

// Decompose parses an ISO-8601 time using SystemClock for relative forms.
func Decompose(text string) (Time, error) {
	return DecomposeAt(text, SystemClock)
}

// DecomposeAt parses an ISO-8601 time. Accepted forms are YYYY, YYYY-MM,
// YYYY-DDD and YYYY-MM-DD, the last two optionally followed by Z or by
// Thh[:mm[:ss[.fraction]]][Z]; also "now", "now±duration" and
// "last<unit>[±duration]". The result is not normalized.
func DecomposeAt(text string, clock Clock) (Time, error) {
	if clock == nil {
		clock = SystemClock
	}
	if strings.HasPrefix(text, "now") {
		return relative(FromGoTime(clock()), text, text[len("now"):])
	}
	if strings.HasPrefix(text, "last") {
		m := lastPattern.FindStringSubmatch(text)
		if m == nil {
			return Time{}, errors.Wrapf(errors.ErrMalformedTime, "%q", text)
		}
		unit, ok := lastUnits[m[1]]
		if !ok {
			return Time{}, errors.WithHint(
				errors.Wrapf(errors.ErrMalformedTime, "%q: unknown unit %q", text, m[1]),
				"use one of lastyear, lastmonth, lastday, lasthour, lastminute, lastsecond")
		}
		return relative(truncate(FromGoTime(clock()), unit), text, m[2])
	}
	return decomposeAbsolute(text)
}

// truncate keeps components coarser than unit (1=year ... 6=second).
func truncate(t Time, unit int) Time {
	c := t.Components()
	for i := unit; i < 7; i++ {
		if i < 3 {
			c[i] = 1
		} else {
			c[i] = 0
		}
	}
	return FromComponents(c)
}

func relative(base Time, text, offset string) (Time, error) {
	if offset == "" {
		return base, nil
	}
	var apply func(Time, Duration) (Time, error)
	switch offset[0] {
	case '+':
		apply = Add
	case '-':
		apply = Subtract
	default:
		return Time{}, errors.Wrapf(errors.ErrMalformedTime, "%q", text)
	}
	d, err := ParseDuration(offset[1:])
	if err != nil {
		return Time{}, errors.Wrapf(err, "%q", text)
	}
	return apply(base, d)
}

func decomposeAbsolute(text string) (Time, error) {
	bad := func(reason string) (Time, error) {
		return Time{}, errors.Wrapf(errors.ErrMalformedTime, "%q: %s", text, reason)
	}
	if len(text) < 4 {
		return bad("too short")
	}
	var t Time
	var err error
	if t.Year, err = digits(text, 0, 4); err != nil {
		return bad("year must be four digits")
	}
	t.Month, t.Day = 1, 1
	if len(text) == 4 {
		return t, nil
	}
	if text[4] != '-' || len(text) < 7 {
		return bad("expected YYYY-MM, YYYY-DDD or YYYY-MM-DD")
	}

	var clock string
	switch {
	case len(text) == 7:
		if t.Month, err = digits(text, 5, 7); err != nil {
			return bad("month must be two digits")
		}
	case len(text) == 8 || text[8] == 'T' || text[8] == 'Z':
		if t.Day, err = digits(text, 5, 8); err != nil {
			return bad("day of year must be three digits")
		}
		if len(text) > 8 {
			clock = text[9:]
		}
	default:
		if len(text) < 10 || text[7] != '-' {
			return bad("expected YYYY-MM-DD")
		}
		if t.Month, err = digits(text, 5, 7); err != nil {
			return bad("month must be two digits")
		}
		if t.Day, err = digits(text, 8, 10); err != nil {
			return bad("day must be two digits")
		}
		if len(text) > 10 {
			if text[10] != 'T' && text[10] != 'Z' {
				return bad("expected T or Z after the date")
			}
			clock = text[11:]
		}
	}

	if err := decomposeClock(&t, strings.TrimSuffix(clock, "Z")); err != nil {
		return bad(err.Error())
	}
	if reason := checkBounds(t); reason != "" {
		return bad(reason)
	}
	return t, nil
}

// decomposeClock fills hour, minute, second and nanos from hh[:mm[:ss[.f]]].
func decomposeClock(t *Time, clock string) error {
	if clock == "" {
		return nil
	}
	var err error
	if len(clock) < 2 {
		return errors.New("hour must be two digits")
	}
	if t.Hour, err = digits(clock, 0, 2); err != nil {
		return errors.New("hour must be two digits")
	}
	if len(clock) == 2 {
		return nil
	}
	if clock[2] != ':' || len(clock) < 5 {
		return errors.New("expected hh:mm")
	}
	if t.Minute, err = digits(clock, 3, 5); err != nil {
		return errors.New("minute must be two digits")
	}
	if len(clock) == 5 {
		return nil
	}
	if clock[5] != ':' || len(clock) < 8 {
		return errors.New("expected hh:mm:ss")
	}
	if t.Second, err = digits(clock, 6, 8); err != nil {
		return errors.New("second must be two digits")
	}
	if len(clock) == 8 {
		return nil
	}
	if clock[8] != '.' || len(clock) == 9 {
		return errors.New("expected a fraction after the seconds")
	}
	t.Nano, err = fraction(clock[9:])
	return err
}

func checkBounds(t Time) string {
	switch {
	case t.Month < 1 || t.Month > 12:
		return fmt.Sprintf("month %d out of range", t.Month)
	case t.Day < 1:
		return fmt.Sprintf("day %d out of range", t.Day)
	case t.Month == 1 && t.Day > 31:
		if t.Day > DaysInYear(t.Year) {
			return fmt.Sprintf("day of year %d out of range", t.Day)
		}
	case t.Day > DaysInMonth(t.Year, t.Month):
		return fmt.Sprintf("day %d out of range for month %d", t.Day, t.Month)
	}
	switch {
	case t.Hour > 24:
		return fmt.Sprintf("hour %d out of range", t.Hour)
	case t.Minute > 59:
		return fmt.Sprintf("minute %d out of range", t.Minute)
	case t.Second > 60:
		return fmt.Sprintf("second %d out of range", t.Second)
	}
	return ""
}

// digits parses text[from:to] as an unsigned decimal.
func digits(text string, from, to int) (int, error) {
	if to > len(text) {
		return 0, errors.New("truncated")
	}
	s := text[from:to]
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errors.Newf("%q is not a number", s)
		}
	}
	return strconv.Atoi(s)
}

// fraction converts decimal fraction digits to nanoseconds, truncating
// anything finer than a nanosecond.
func fraction(s string) (int, error) {
	if len(s) > 9 {
		s = s[:9]
	}
	n, err := digits(s, 0, len(s))
	if err != nil {
		return 0, err
	}
	for i := len(s); i < 9; i++ {
		n *= 10
	}
	return n, nil
}

// ToEpochMillis parses text and returns milliseconds since 1970-01-01T00:00Z.
func ToEpochMillis(text string) (int64, error) {
	t, err := Decompose(text)
	if err != nil {
		return 0, err
	}
	t, err = Normalize(t)
	if err != nil {
		return 0, err
	}
	return t.EpochMillis(), nil
}
