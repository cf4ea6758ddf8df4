package uritemplate

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
)

// resolver matches, extracts and renders one field kind. Resolvers are
// stateless and shared by every template.
type resolver interface {
	// pattern is the regexp fragment the field matches, without a capturing group.
	pattern(f *Field) string
	// parse applies the matched text to the parse state.
	parse(f *Field, text string, st *parseState) error
	// format renders the field.
	format(f *Field, st *formatState) (string, error)
}

var resolvers = map[FieldKind]resolver{
	KindYear:         numericResolver{},
	KindTwoDigitYear: twoDigitYearResolver{},
	KindMonth:        numericResolver{},
	KindMonthName:    monthNameResolver{},
	KindDay:          numericResolver{},
	KindDayOfYear:    numericResolver{},
	KindHour:         numericResolver{},
	KindMinute:       numericResolver{},
	KindSecond:       numericResolver{},
	KindMillis:       numericResolver{},
	KindMicros:       numericResolver{},
	KindSubsec:       numericResolver{},
	KindVersion:      versionResolver{},
	KindWildcard:     wildcardResolver{},
	KindEnum:         enumResolver{},
	KindPeriodic:     periodicResolver{},
	KindHourInterval: hourIntervalResolver{},
}

func resolverFor(k FieldKind) resolver {
	r, ok := resolvers[k]
	if !ok {
		panic(errors.AssertionFailedf("no resolver for field kind %v", k))
	}
	return r
}

// parseState accumulates the contributions of matched fields.
type parseState struct {
	start   [7]int
	stop    [7]int
	stopSet [7]bool
	extra   map[string]string

	periodic      *Field
	periodicIndex int
	hours         *Field
	hoursIndex    int
	phased        *Field
	phasedIndex   int
	dayOffset     int
	dayOfYear     [2]int // matched $j for start and stop, 0 when absent
}

func newParseState() *parseState {
	return &parseState{
		start: [7]int{0, 1, 1, 0, 0, 0, 0},
		extra: map[string]string{},
	}
}

func (st *parseState) set(f *Field, comp, v int) {
	if f.end {
		st.stop[comp] = v
		st.stopSet[comp] = true
		return
	}
	st.start[comp] = v
}

func (st *parseState) add(f *Field, comp, v int) {
	if f.end {
		st.stop[comp] += v
		st.stopSet[comp] = true
		return
	}
	st.start[comp] += v
}

func (st *parseState) setKind(f *Field, kind FieldKind, v int) {
	if kind == KindDayOfYear {
		st.set(f, 1, 1)
	}
	st.set(f, kind.component(), v)
}

func (st *parseState) applyFixed(f *Field) {
	for _, fv := range f.fixed {
		st.setKind(f, fv.kind, fv.value)
	}
}

// formatState carries the normalized times and extras being rendered.
type formatState struct {
	start isotime.Time
	stop  isotime.Time
	extra map[string]string
}

func (st *formatState) target(f *Field) isotime.Time {
	if f.end {
		return st.stop
	}
	return st.start
}

// numericResolver handles the digit fields Y m d j H M S milli micro subsec.
type numericResolver struct{}

// bounds are the accepted matched values before shift is applied.
var bounds = map[FieldKind][2]int{
	KindMonth:     {1, 12},
	KindDay:       {1, 31},
	KindDayOfYear: {1, 366},
	KindHour:      {0, 24},
	KindMinute:    {0, 59},
	KindSecond:    {0, 60},
}

func (numericResolver) pattern(f *Field) string {
	if f.phase != nil {
		if f.pad == padNone {
			return `-?\d+`
		}
		return fmt.Sprintf(`-?\d{%d,}`, f.Kind.width())
	}
	w := f.width()
	switch {
	case w == 0:
		return `\d+`
	case f.pad == padSpace:
		return fmt.Sprintf(`[ \d]{%d}`, w)
	case f.pad == padUnderscore:
		return fmt.Sprintf(`[_\d]{%d}`, w)
	}
	return fmt.Sprintf(`\d{%d}`, w)
}

func (numericResolver) parse(f *Field, text string, st *parseState) error {
	v, err := strconv.Atoi(strings.TrimLeft(text, " _"))
	if err != nil {
		return errors.Wrapf(errors.ErrMalformedTime, "%q is not a number", text)
	}
	if f.phase != nil {
		st.phased, st.phasedIndex = f, v+f.shift
		st.applyFixed(f)
		return nil
	}
	if b, ok := bounds[f.Kind]; ok && (v < b[0] || v > b[1]) {
		return errors.Wrapf(errors.ErrMalformedTime, "%s value %d out of range %d..%d", f.Kind, v, b[0], b[1])
	}
	if f.Kind == KindDayOfYear {
		st.dayOfYear[side(f)] = v
	}
	v += f.shift

	switch f.Kind {
	case KindMillis:
		st.add(f, 6, v*1_000_000)
	case KindMicros:
		st.add(f, 6, v*1_000)
	case KindSubsec:
		st.set(f, 6, v*int(pow10(9-f.places)))
	default:
		st.setKind(f, f.Kind, v)
	}
	st.applyFixed(f)
	return nil
}

func (numericResolver) format(f *Field, st *formatState) (string, error) {
	t := st.target(f)
	if f.phase != nil {
		k, err := step{nanos: int64(f.delta) * nanosPerDay}.index(*f.phase, t)
		if err != nil {
			return "", err
		}
		if f.pad == padNone {
			return strconv.Itoa(k - f.shift), nil
		}
		return padWith(k-f.shift, f.Kind.width(), "0"), nil
	}

	var v int
	switch f.Kind {
	case KindYear:
		v = t.Year
	case KindMonth:
		v = t.Month
	case KindDay:
		v = t.Day
	case KindDayOfYear:
		v = isotime.DayOfYear(t.Year, t.Month, t.Day)
	case KindHour:
		v = t.Hour
	case KindMinute:
		v = t.Minute
	case KindSecond:
		v = t.Second
	case KindMillis:
		v = t.Nano / 1_000_000
	case KindMicros:
		v = t.Nano / 1_000 % 1_000
	case KindSubsec:
		v = t.Nano / int(pow10(9-f.places))
	}
	if f.delta > 1 {
		v = snap(f.Kind, v, f.delta)
	}
	return pad(f, v, f.width()), nil
}

// snap floors v to a multiple of delta, counting from 1 for one-based fields.
func snap(kind FieldKind, v, delta int) int {
	base := 0
	switch kind {
	case KindMonth, KindMonthName, KindDay, KindDayOfYear:
		base = 1
	}
	n := v - base
	q := n / delta
	if n%delta != 0 && n < 0 {
		q--
	}
	return base + q*delta
}

func side(f *Field) int {
	if f.end {
		return 1
	}
	return 0
}

func pad(f *Field, v, width int) string {
	if f.pad == padNone {
		return strconv.Itoa(v)
	}
	fill := "0"
	switch f.pad {
	case padSpace:
		fill = " "
	case padUnderscore:
		fill = "_"
	}
	return padWith(v, width, fill)
}

// padWith fills the digits of v to width; a minus sign goes in front of the fill.
func padWith(v, width int, fill string) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	s := strconv.Itoa(v)
	if len(s) < width {
		s = strings.Repeat(fill, width-len(s)) + s
	}
	return sign + s
}

// twoDigitYearResolver reads $y; 58 and above are 19xx.
type twoDigitYearResolver struct{}

const twoDigitYearPivot = 58

func (twoDigitYearResolver) pattern(f *Field) string {
	return numericResolver{}.pattern(f)
}

func (twoDigitYearResolver) parse(f *Field, text string, st *parseState) error {
	v, err := strconv.Atoi(strings.TrimLeft(text, " _"))
	if err != nil {
		return errors.Wrapf(errors.ErrMalformedTime, "%q is not a number", text)
	}
	if v >= twoDigitYearPivot {
		v += 1900
	} else {
		v += 2000
	}
	st.set(f, 0, v+f.shift)
	st.applyFixed(f)
	return nil
}

func (twoDigitYearResolver) format(f *Field, st *formatState) (string, error) {
	t := st.target(f)
	v := t.Year
	if f.delta > 1 {
		v = snap(f.Kind, v, f.delta)
	}
	return pad(f, v%100, 2), nil
}

// monthNameResolver reads $b as an English three-letter abbreviation.
type monthNameResolver struct{}

func (monthNameResolver) pattern(*Field) string { return `[A-Za-z]{3}` }

func (monthNameResolver) parse(f *Field, text string, st *parseState) error {
	m, err := isotime.MonthNumber(text)
	if err != nil {
		return err
	}
	st.set(f, 1, m+f.shift)
	st.applyFixed(f)
	return nil
}

func (monthNameResolver) format(f *Field, st *formatState) (string, error) {
	t := st.target(f)
	m := t.Month
	if f.delta > 1 {
		m = snap(f.Kind, m, f.delta)
	}
	name := isotime.MonthNameAbbrev(m)
	switch f.letterCase {
	case "lc":
		name = strings.ToLower(name)
	case "uc":
		name = strings.ToUpper(name)
	}
	return name, nil
}

// versionResolver reads $v into extras.
type versionResolver struct{}

func (versionResolver) pattern(f *Field) string {
	if f.alpha {
		return `[0-9A-Za-z][0-9A-Za-z._-]*`
	}
	return `[0-9][0-9.]*`
}

func (versionResolver) parse(f *Field, text string, st *parseState) error {
	st.extra[f.ID()] = text
	return nil
}

func (versionResolver) format(f *Field, st *formatState) (string, error) {
	if v, ok := st.extra[f.ID()]; ok {
		return v, nil
	}
	return "0", nil
}

// wildcardResolver consumes $x, $X, $(ignore) and *; a capture is kept only under an id.
type wildcardResolver struct{}

func (wildcardResolver) pattern(*Field) string { return `.*?` }

func (wildcardResolver) parse(f *Field, text string, st *parseState) error {
	if f.id != "" {
		st.extra[f.id] = text
	}
	return nil
}

func (wildcardResolver) format(f *Field, st *formatState) (string, error) {
	if f.id != "" {
		return st.extra[f.id], nil
	}
	return "", nil
}

// enumResolver matches one of a fixed list of values.
type enumResolver struct{}

func (enumResolver) pattern(f *Field) string {
	return alternation(f.values)
}

func (enumResolver) parse(f *Field, text string, st *parseState) error {
	st.extra[f.ID()] = text
	if f.id == "" {
		st.dayOffset = indexOf(f.values, text)
	}
	return nil
}

func (enumResolver) format(f *Field, st *formatState) (string, error) {
	v, ok := st.extra[f.ID()]
	if !ok {
		return f.values[0], nil
	}
	if indexOf(f.values, v) < 0 {
		return "", errors.NewInvalidRequestError("%s %q is not one of %s", f.ID(), v, strings.Join(f.values, ","))
	}
	return v, nil
}

// periodicResolver maps an integer index to start + (index-offset)*period.
type periodicResolver struct{}

func (periodicResolver) pattern(*Field) string { return `-?\d+` }

func (periodicResolver) parse(f *Field, text string, st *parseState) error {
	v, err := strconv.Atoi(text)
	if err != nil {
		return errors.Wrapf(errors.ErrMalformedTime, "%q is not an index", text)
	}
	st.periodic, st.periodicIndex = f, v
	return nil
}

func (periodicResolver) format(f *Field, st *formatState) (string, error) {
	k, err := stepOf(f.period).index(f.periodStart, st.start)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(k + f.periodOffset), nil
}

// hourIntervalResolver maps a label to an equal share of the day.
type hourIntervalResolver struct{}

func (hourIntervalResolver) pattern(f *Field) string {
	return alternation(f.values)
}

func (hourIntervalResolver) parse(f *Field, text string, st *parseState) error {
	st.hours, st.hoursIndex = f, indexOf(f.values, text)
	return nil
}

func (hourIntervalResolver) format(f *Field, st *formatState) (string, error) {
	t := st.start
	i := (t.Hour*60 + t.Minute) / hourIntervalMinutes(f)
	return f.values[i], nil
}

// alternation matches any of values, longest first so prefixes do not shadow.
func alternation(values []string) string {
	sorted := append([]string(nil), values...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, v := range sorted {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return strings.Join(quoted, "|")
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}
