package uritemplate

import (
	"regexp"
	"strings"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
)

// Parse matches text against the template and returns the time range it
// names plus the extra fields it captured (enum, version and wildcard ids).
// When no end field sets the stop time it is the start advanced by one
// natural unit; stop components no end field mentions are inherited from
// the start.
func (t *Template) Parse(text string) (isotime.TimeRange, map[string]string, error) {
	loc := t.pattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return isotime.TimeRange{}, nil, t.mismatch(text)
	}

	st := newParseState()
	g := 1
	for _, tok := range t.tokens {
		f := tok.Field
		if f == nil {
			continue
		}
		from, to := loc[2*g], loc[2*g+1]
		g++
		if err := resolverFor(f.Kind).parse(f, text[from:to], st); err != nil {
			return isotime.TimeRange{}, nil, newTemplateError(ErrorKindMatch, t.spec,
				errors.Mark(errors.Wrapf(err, "field $%s", f.Name), errors.ErrNoMatch)).
				WithInput(text).
				WithPosition(from).
				WithToken(text[from:to])
		}
	}

	r, err := t.resolve(st)
	if err != nil {
		return isotime.TimeRange{}, nil, newTemplateError(ErrorKindMatch, t.spec,
			errors.Mark(errors.Wrapf(err, "%q", text), errors.ErrNoMatch)).
			WithInput(text)
	}
	return r, st.extra, nil
}

// resolve turns the accumulated field values into a normalized range.
func (t *Template) resolve(st *parseState) (isotime.TimeRange, error) {
	start := isotime.FromComponents(st.start)
	if t.dayEnum != nil {
		start.Day += st.dayOffset
	}
	if st.hours != nil {
		minutes := st.hoursIndex * hourIntervalMinutes(st.hours)
		start.Hour, start.Minute = minutes/60, minutes%60
	}
	if f := st.phased; f != nil {
		day, err := step{nanos: int64(f.delta) * nanosPerDay}.advance(*f.phase, st.phasedIndex)
		if err != nil {
			return isotime.TimeRange{}, err
		}
		start.Year, start.Month, start.Day = day.Year, day.Month, day.Day
	}

	stopC := st.stop
	hasStop := false
	startC := start.Components()
	for i, set := range st.stopSet {
		if set {
			hasStop = true
		} else {
			stopC[i] = startC[i]
		}
	}

	for i, year := range [2]int{startC[0], stopC[0]} {
		if doy := st.dayOfYear[i]; doy > isotime.DaysInYear(year) {
			return isotime.TimeRange{}, errors.Wrapf(errors.ErrMalformedTime, "day of year %d out of range for %d", doy, year)
		}
	}

	var err error
	if start, err = isotime.Normalize(start); err != nil {
		return isotime.TimeRange{}, err
	}

	var stop isotime.Time
	switch {
	case st.periodic != nil:
		f := st.periodic
		s := stepOf(f.period)
		if start, err = s.advance(f.periodStart, st.periodicIndex-f.periodOffset); err != nil {
			return isotime.TimeRange{}, err
		}
		stop, err = s.advance(start, 1)
	case hasStop:
		stop, err = isotime.Normalize(isotime.FromComponents(stopC))
	case st.hours != nil:
		stop, err = step{nanos: int64(hourIntervalMinutes(st.hours)) * nanosPerMinute}.advance(start, 1)
	case st.phased != nil:
		stop, err = step{nanos: int64(st.phased.delta) * nanosPerDay}.advance(start, 1)
	case t.natural != nil:
		stop, err = t.step.advance(start, 1)
		if f := t.natural; err == nil && f.delta > 1 && f.phase == nil {
			if limit, ok := nextCoarser(f.Kind, start); ok && stop.After(limit) {
				stop = limit
			}
		}
	default:
		stop = start
	}
	if err != nil {
		return isotime.TimeRange{}, err
	}
	return isotime.TimeRange{Start: start, Stop: stop}, nil
}

// nextCoarser is the start of the unit above kind that follows at. Delta
// buckets restart at that boundary, so the last one in a month or year is short.
func nextCoarser(kind FieldKind, at isotime.Time) (isotime.Time, bool) {
	var next isotime.Time
	switch kind {
	case KindDay:
		next = isotime.Time{Year: at.Year, Month: at.Month + 1, Day: 1}
	case KindMonth, KindMonthName, KindDayOfYear:
		next = isotime.Time{Year: at.Year + 1, Month: 1, Day: 1}
	case KindHour:
		next = isotime.Time{Year: at.Year, Month: at.Month, Day: at.Day + 1}
	case KindMinute:
		next = isotime.Time{Year: at.Year, Month: at.Month, Day: at.Day, Hour: at.Hour + 1}
	case KindSecond:
		next = isotime.Time{Year: at.Year, Month: at.Month, Day: at.Day, Hour: at.Hour, Minute: at.Minute + 1}
	default:
		return isotime.Time{}, false
	}
	return isotime.MustNormalize(next), true
}

// mismatch finds the first token the text stops matching at and reports it.
func (t *Template) mismatch(text string) error {
	matched := 0
	for i := range t.tokens {
		prefix := regexp.MustCompile("^" + strings.Join(t.fragments[:i+1], ""))
		loc := prefix.FindStringIndex(text)
		if loc == nil {
			tok := t.tokens[i]
			what := "literal " + quote(tok.Literal)
			if tok.Field != nil {
				what = "field $" + tok.Field.Name
			}
			return newTemplateError(ErrorKindMatch, t.spec,
				errors.Wrapf(errors.ErrNoMatch, "%q: expected %s", text, what)).
				WithInput(text).
				WithPosition(matched).
				WithToken(rest(text, matched))
		}
		matched = loc[1]
	}
	return newTemplateError(ErrorKindMatch, t.spec,
		errors.Wrapf(errors.ErrNoMatch, "%q: unexpected trailing text", text)).
		WithInput(text).
		WithPosition(matched).
		WithToken(rest(text, matched))
}

func quote(s string) string {
	return `"` + s + `"`
}

func rest(text string, from int) string {
	const max = 16
	if from >= len(text) {
		return ""
	}
	r := text[from:]
	if len(r) > max {
		r = r[:max] + "..."
	}
	return r
}
