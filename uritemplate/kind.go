package uritemplate

import (
	"sort"
)

// FieldKind identifies what a template field resolves to.
type FieldKind int

const (
	KindYear         FieldKind = iota // $Y, four digits
	KindTwoDigitYear                  // $y, pivots at 58
	KindMonth                         // $m
	KindMonthName                     // $b, English abbreviation
	KindDay                           // $d
	KindDayOfYear                     // $j
	KindHour                          // $H
	KindMinute                        // $M
	KindSecond                        // $S
	KindMillis                        // $(milli), three digits
	KindMicros                        // $(micro), three digits
	KindSubsec                        // $(subsec;places=N)
	KindVersion                       // $v
	KindWildcard                      // $x, $X, $(ignore), *
	KindEnum                          // $(enum;values=...)
	KindPeriodic                      // $(periodic;start=...;period=...)
	KindHourInterval                  // $(hrinterval;names=...)
)

var kindNames = [...]string{
	KindYear:         "Y",
	KindTwoDigitYear: "y",
	KindMonth:        "m",
	KindMonthName:    "b",
	KindDay:          "d",
	KindDayOfYear:    "j",
	KindHour:         "H",
	KindMinute:       "M",
	KindSecond:       "S",
	KindMillis:       "milli",
	KindMicros:       "micro",
	KindSubsec:       "subsec",
	KindVersion:      "v",
	KindWildcard:     "x",
	KindEnum:         "enum",
	KindPeriodic:     "periodic",
	KindHourInterval: "hrinterval",
}

func (k FieldKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// kindByName maps every accepted field name to its kind.
var kindByName = map[string]FieldKind{
	"Y":          KindYear,
	"y":          KindTwoDigitYear,
	"m":          KindMonth,
	"b":          KindMonthName,
	"d":          KindDay,
	"j":          KindDayOfYear,
	"H":          KindHour,
	"M":          KindMinute,
	"S":          KindSecond,
	"milli":      KindMillis,
	"micro":      KindMicros,
	"subsec":     KindSubsec,
	"v":          KindVersion,
	"x":          KindWildcard,
	"X":          KindWildcard,
	"ignore":     KindWildcard,
	"enum":       KindEnum,
	"periodic":   KindPeriodic,
	"hrinterval": KindHourInterval,
}

// component is the index into the seven time components a calendar kind
// writes, or -1.
func (k FieldKind) component() int {
	switch k {
	case KindYear, KindTwoDigitYear:
		return 0
	case KindMonth, KindMonthName:
		return 1
	case KindDay, KindDayOfYear:
		return 2
	case KindHour:
		return 3
	case KindMinute:
		return 4
	case KindSecond:
		return 5
	case KindMillis, KindMicros, KindSubsec:
		return 6
	}
	return -1
}

// IsCalendar reports whether the kind reads or writes a time component directly.
func (k FieldKind) IsCalendar() bool {
	return k.component() >= 0
}

// width is the zero-padded digit count of a numeric calendar kind.
func (k FieldKind) width() int {
	switch k {
	case KindYear:
		return 4
	case KindDayOfYear, KindMillis, KindMicros, KindMonthName:
		return 3
	case KindSubsec:
		return 0
	}
	return 2
}

// fixedQualifiers pin a time component from inside another field, e.g. $(j;Y=2012).
var fixedQualifiers = map[string]FieldKind{
	"Y": KindYear,
	"m": KindMonth,
	"d": KindDay,
	"j": KindDayOfYear,
	"H": KindHour,
	"M": KindMinute,
	"S": KindSecond,
}

var (
	calendarQualifiers = []string{"end", "shift", "pad", "delta", "Y", "m", "d", "j", "H", "M", "S"}

	acceptedQualifiers = map[FieldKind]map[string]bool{
		KindYear:         set(calendarQualifiers),
		KindTwoDigitYear: set(calendarQualifiers),
		KindMonth:        set(calendarQualifiers),
		KindMonthName:    set(calendarQualifiers, "fmt", "case"),
		KindDay:          set(calendarQualifiers, "phasestart"),
		KindDayOfYear:    set(calendarQualifiers, "phasestart"),
		KindHour:         set(calendarQualifiers),
		KindMinute:       set(calendarQualifiers),
		KindSecond:       set(calendarQualifiers),
		KindMillis:       set([]string{"end", "shift", "pad"}),
		KindMicros:       set([]string{"end", "shift", "pad"}),
		KindSubsec:       set([]string{"end", "places"}),
		KindVersion:      set([]string{"id", "sep", "alpha"}),
		KindWildcard:     set([]string{"id"}),
		KindEnum:         set([]string{"id", "values"}),
		KindPeriodic:     set([]string{"offset", "start", "period"}),
		KindHourInterval: set([]string{"names"}),
	}

	requiredQualifiers = map[FieldKind][]string{
		KindSubsec:       {"places"},
		KindEnum:         {"values"},
		KindPeriodic:     {"start", "period"},
		KindHourInterval: {"names"},
	}
)

func set(base []string, extra ...string) map[string]bool {
	m := make(map[string]bool, len(base)+len(extra))
	for _, s := range base {
		m[s] = true
	}
	for _, s := range extra {
		m[s] = true
	}
	return m
}

// qualifierNames lists the qualifiers a kind accepts, sorted.
func qualifierNames(k FieldKind) []string {
	names := make([]string, 0, len(acceptedQualifiers[k]))
	for q := range acceptedQualifiers[k] {
		names = append(names, q)
	}
	sort.Strings(names)
	return names
}
