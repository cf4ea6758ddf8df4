package uritemplate

import (
	"maps"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
)

type padMode int

const (
	padZero padMode = iota
	padNone
	padSpace
	padUnderscore
)

var padModes = map[string]padMode{
	"zero":       padZero,
	"none":       padNone,
	"space":      padSpace,
	"underscore": padUnderscore,
}

type fixedValue struct {
	kind  FieldKind
	value int
}

// Field is one $-field of a compiled template.
type Field struct {
	Kind       FieldKind
	Name       string            // name as written: "Y", "X", "ignore", ...
	Qualifiers map[string]string // raw qualifiers; flags map to ""
	Offset     int               // byte offset in the canonical spec

	end          bool
	shift        int
	delta        int
	phase        *isotime.Time
	pad          padMode
	fixed        []fixedValue
	id           string
	values       []string
	places       int
	periodStart  isotime.Time
	period       isotime.Duration
	periodOffset int
	letterCase   string
	alpha        bool
}

// End reports whether the field reads and writes the stop time.
func (f *Field) End() bool { return f.end }

// ID is the extra-field key the field records its capture under, if any.
func (f *Field) ID() string {
	switch {
	case f.id != "":
		return f.id
	case f.Kind == KindEnum:
		return "enum"
	case f.Kind == KindVersion:
		return "v"
	}
	return ""
}

// width is the fixed digit count of a numeric field, or 0 when it is variable.
func (f *Field) width() int {
	if f.pad == padNone || f.phase != nil {
		return 0
	}
	if f.Kind == KindSubsec {
		return f.places
	}
	return f.Kind.width()
}

// Token is either a literal run (Field == nil) or a field.
type Token struct {
	Literal string
	Field   *Field
}

// Template is a compiled URI template. It is immutable and safe for
// concurrent use.
type Template struct {
	spec      string
	tokens    []Token
	fragments []string // one regexp fragment per token
	pattern   *regexp.Regexp
	natural   *Field
	step      step
	dayEnum   *Field // enum without id whose ordinal offsets the day
}

// Compile parses spec, in canonical or legacy syntax, into a Template.
func Compile(spec string) (*Template, error) {
	canonical, err := MakeCanonical(spec)
	if err != nil {
		return nil, err
	}
	c := &compiler{spec: canonical}
	if err := c.scan(); err != nil {
		return nil, err
	}

	t := &Template{spec: canonical, tokens: c.tokens}
	t.buildPattern()
	t.pickNatural()
	return t, nil
}

// MustCompile is Compile for templates known to be valid; it panics on error.
func MustCompile(spec string) *Template {
	t, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the canonical spec.
func (t *Template) String() string { return t.spec }

// Tokens returns a copy of the compiled token sequence.
func (t *Template) Tokens() []Token {
	out := make([]Token, len(t.tokens))
	for i, tok := range t.tokens {
		out[i] = tok
		if tok.Field != nil {
			f := *tok.Field
			f.Qualifiers = maps.Clone(tok.Field.Qualifiers)
			out[i].Field = &f
		}
	}
	return out
}

// NaturalField returns the finest-grained field, the one whose unit sizes
// the steps of FormatRange.
func (t *Template) NaturalField() (Field, bool) {
	if t.natural == nil {
		return Field{}, false
	}
	return *t.natural, true
}

func (t *Template) fields() []*Field {
	var fs []*Field
	for _, tok := range t.tokens {
		if tok.Field != nil {
			fs = append(fs, tok.Field)
		}
	}
	return fs
}

func (t *Template) buildPattern() {
	t.fragments = make([]string, len(t.tokens))
	for i, tok := range t.tokens {
		if tok.Field == nil {
			t.fragments[i] = regexp.QuoteMeta(tok.Literal)
			continue
		}
		t.fragments[i] = "(" + resolverFor(tok.Field.Kind).pattern(tok.Field) + ")"
	}
	t.pattern = regexp.MustCompile("^" + strings.Join(t.fragments, "") + "$")
}

// fieldStep is the span one value of f covers.
func fieldStep(f *Field) (step, bool) {
	var s step
	switch f.Kind {
	case KindYear, KindTwoDigitYear:
		s = step{months: 12}
	case KindMonth, KindMonthName:
		s = step{months: 1}
	case KindDay, KindDayOfYear:
		s = step{nanos: nanosPerDay}
	case KindHour:
		s = step{nanos: nanosPerHour}
	case KindMinute:
		s = step{nanos: nanosPerMinute}
	case KindSecond:
		s = step{nanos: nanosPerSecond}
	case KindMillis:
		s = step{nanos: 1_000_000}
	case KindMicros:
		s = step{nanos: 1_000}
	case KindSubsec:
		s = step{nanos: pow10(9 - f.places)}
	case KindPeriodic:
		return stepOf(f.period), true
	case KindHourInterval:
		return step{nanos: int64(hourIntervalMinutes(f)) * nanosPerMinute}, true
	default:
		return step{}, false
	}
	if f.delta > 1 {
		s = s.scale(f.delta)
	}
	return s, true
}

func (t *Template) pickNatural() {
	for _, f := range t.fields() {
		s, ok := fieldStep(f)
		if !ok || s.isZero() {
			continue
		}
		if t.natural == nil || s.size() < t.step.size() {
			t.natural, t.step = f, s
		}
	}
	if t.natural == nil || t.step != (step{nanos: nanosPerDay}) {
		return
	}
	for _, f := range t.fields() {
		if f.Kind == KindEnum && f.id == "" {
			t.dayEnum = f
			return
		}
	}
}

func pow10(n int) int64 {
	p := int64(1)
	for ; n > 0; n-- {
		p *= 10
	}
	return p
}

func hourIntervalMinutes(f *Field) int {
	return 24 * 60 / len(f.values)
}

type compiler struct {
	spec   string
	tokens []Token
	end    bool
}

func (c *compiler) scan() error {
	s := c.spec
	for i := 0; i < len(s); {
		if s[i] != '$' {
			j := strings.IndexByte(s[i:], '$')
			if j < 0 {
				j = len(s) - i
			}
			c.literal(s[i : i+j])
			i += j
			continue
		}

		switch {
		case i+1 >= len(s):
			return c.compileError(errors.ErrUnknownField, i, "$", "dangling $").
				WithSuggestion("escape literal text or name a field, e.g. $Y")

		case s[i+1] == '(':
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				return c.compileError(errors.ErrUnknownField, i, s[i:], "unterminated $(").
					WithSuggestion("close the field with )")
			}
			parts := splitQualifiers(s[i+2 : i+end])
			if err := c.field(strings.TrimSpace(parts[0]), parts[1:], i, s[i:i+end+1]); err != nil {
				return err
			}
			i += end + 1

		case strings.HasPrefix(s[i:], "$-1") && i+3 < len(s):
			if err := c.field(s[i+3:i+4], []string{"pad=none"}, i, s[i:i+4]); err != nil {
				return err
			}
			i += 4

		default:
			if err := c.field(s[i+1:i+2], nil, i, s[i:i+2]); err != nil {
				return err
			}
			i += 2
		}
	}
	return nil
}

func (c *compiler) literal(text string) {
	if n := len(c.tokens); n > 0 && c.tokens[n-1].Field == nil {
		c.tokens[n-1].Literal += text
		return
	}
	c.tokens = append(c.tokens, Token{Literal: text})
}

func (c *compiler) compileError(kind error, pos int, token, format string, args ...interface{}) *TemplateError {
	return newTemplateError(ErrorKindCompile, c.spec, errors.NewCompileError(kind, format, args...)).
		WithPosition(pos).
		WithToken(token)
}

func (c *compiler) field(name string, quals []string, pos int, token string) error {
	kind, ok := kindByName[name]
	if !ok {
		e := c.compileError(errors.ErrUnknownField, pos, token, "field %q", name)
		for _, s := range similarNames(name) {
			e.WithSuggestion("did you mean $" + s + "?")
		}
		return e
	}

	f := &Field{Kind: kind, Name: name, Offset: pos, Qualifiers: map[string]string{}}
	if c.end && kind.IsCalendar() {
		f.end = true
	}
	for _, q := range quals {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key, val, _ := strings.Cut(q, "=")
		if !acceptedQualifiers[kind][key] {
			return c.compileError(errors.ErrUnknownQualifier, pos, token, "qualifier %q on field %q", key, name).
				WithSuggestion("accepted: " + strings.Join(qualifierNames(kind), ", "))
		}
		f.Qualifiers[key] = val
		if err := f.apply(key, val); err != nil {
			return c.compileError(errors.ErrInvalidQualifier, pos, token, "%s=%s on field %q: %v", key, val, name, err)
		}
	}
	for _, q := range requiredQualifiers[kind] {
		if _, ok := f.Qualifiers[q]; !ok {
			return c.compileError(errors.ErrMissingQualifier, pos, token, "field %q needs %q", name, q).
				WithSuggestion("add ;" + q + "=...")
		}
	}
	if f.phase != nil && f.delta == 0 {
		return c.compileError(errors.ErrMissingQualifier, pos, token, "phasestart on field %q needs %q", name, "delta").
			WithSuggestion("add ;delta=N")
	}
	if kind == KindHourInterval && (24*60)%len(f.values) != 0 {
		return c.compileError(errors.ErrInvalidQualifier, pos, token, "%d hour intervals do not divide a day", len(f.values))
	}
	if f.end {
		c.end = true
	}
	c.tokens = append(c.tokens, Token{Field: f})
	return nil
}

func (f *Field) apply(key, val string) error {
	var err error
	switch key {
	case "end":
		f.end = true
	case "shift":
		f.shift, err = strconv.Atoi(val)
	case "delta":
		if f.delta, err = strconv.Atoi(val); err == nil && f.delta < 1 {
			err = errors.New("must be at least 1")
		}
	case "pad":
		mode, ok := padModes[val]
		if !ok {
			return errors.New("want zero, none, space or underscore")
		}
		f.pad = mode
	case "phasestart":
		var t isotime.Time
		if t, err = parseTime(val); err == nil {
			f.phase = &t
		}
	case "Y", "m", "d", "j", "H", "M", "S":
		var v int
		if v, err = strconv.Atoi(val); err == nil {
			f.fixed = append(f.fixed, fixedValue{kind: fixedQualifiers[key], value: v})
		}
	case "id":
		if val == "" {
			return errors.New("empty id")
		}
		f.id = val
	case "values", "names":
		f.values = strings.Split(val, ",")
		for _, v := range f.values {
			if v == "" {
				return errors.New("empty list entry")
			}
		}
	case "places":
		if f.places, err = strconv.Atoi(val); err == nil && (f.places < 1 || f.places > 9) {
			err = errors.New("must be 1 to 9")
		}
	case "offset":
		f.periodOffset, err = strconv.Atoi(val)
	case "start":
		f.periodStart, err = parseTime(val)
	case "period":
		if f.period, err = isotime.ParseDuration(val); err == nil && f.period.IsZero() {
			err = errors.New("zero period")
		}
	case "fmt", "case":
		switch val {
		case "lc", "uc", "cap":
			f.letterCase = val
		default:
			return errors.New("want lc, uc or cap")
		}
	case "alpha":
		f.alpha = true
	}
	return err
}

func parseTime(text string) (isotime.Time, error) {
	t, err := isotime.Decompose(text)
	if err != nil {
		return isotime.Time{}, err
	}
	return isotime.Normalize(t)
}

// similarNames offers known field names sharing a first letter or a prefix with name.
func similarNames(name string) []string {
	var out []string
	lower := strings.ToLower(name)
	for known := range kindByName {
		k := strings.ToLower(known)
		if len(lower) > 0 && len(k) > 0 && (strings.HasPrefix(k, lower) || strings.HasPrefix(lower, k) || k[0] == lower[0]) {
			out = append(out, known)
		}
	}
	sort.Strings(out)
	return out
}
