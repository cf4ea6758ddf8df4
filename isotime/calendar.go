package isotime

import (
	"strings"

	"github.com/teranos/uritemplates/errors"
)

// daysInMonth is indexed by [leap][month]; index 0 and 13 are sentinels.
var daysInMonth = [2][14]int{
	{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31, 0},
	{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31, 0},
}

// dayOffset[leap][month] is the number of days in the year before the first of month.
var dayOffset = [2][14]int{
	{0, 0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365},
	{0, 0, 31, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335, 366},
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// julianDayEpoch is the Julian day number of 1970-01-01.
const julianDayEpoch = 2440588

func leap(year int) int {
	if IsLeapYear(year) {
		return 1
	}
	return 0
}

// IsLeapYear reports whether year is a leap year in the proleptic Gregorian calendar.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%400 == 0 || year%100 != 0)
}

// DaysInMonth returns the length of month (1-12) in year.
func DaysInMonth(year, month int) int {
	mustMonth(month)
	return daysInMonth[leap(year)][month]
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	return 365 + leap(year)
}

// DayOfYear returns the 1-based ordinal of the given date within its year.
func DayOfYear(year, month, day int) int {
	if month == 1 {
		return day
	}
	mustMonth(month)
	return dayOffset[leap(year)][month] + day
}

// MonthForDayOfYear returns the month containing day-of-year doy.
func MonthForDayOfYear(year, doy int) int {
	if doy < 1 || doy > DaysInYear(year) {
		panic(errors.AssertionFailedf("day of year %d out of range for %d", doy, year))
	}
	offsets := dayOffset[leap(year)]
	for m := 12; m > 1; m-- {
		if offsets[m] < doy {
			return m
		}
	}
	return 1
}

func mustMonth(month int) {
	if month < 1 || month > 12 {
		panic(errors.AssertionFailedf("month %d out of range", month))
	}
}

// JulianDay returns the Julian day number for a Gregorian date. The day may
// exceed the month length (day-of-year with month 1 is accepted). Only
// valid for years after 1582.
func JulianDay(year, month, day int) int {
	return 367*year -
		7*(year+(month+9)/12)/4 -
		3*((year+(month-9)/7)/100+1)/4 +
		275*month/9 + day + 1721029
}

// FromJulianDay is the inverse of JulianDay; the time of day is zero.
func FromJulianDay(jd int) Time {
	j := jd + 32044
	g := j / 146097
	dg := j % 146097
	c := (dg/36524 + 1) * 3 / 4
	dc := dg - c*36524
	b := dc / 1461
	db := dc % 1461
	a := (db/365 + 1) * 3 / 4
	da := db - a*365
	y := g*400 + c*100 + b*4 + a
	m := (da*5+308)/153 - 2
	d := da - (m+4)*153/5 + 122
	return Time{
		Year:  y - 4800 + (m+2)/12,
		Month: (m+2)%12 + 1,
		Day:   d + 1,
	}
}

// MonthNameAbbrev returns the three-letter English abbreviation of month, e.g. "Mar".
func MonthNameAbbrev(month int) string {
	mustMonth(month)
	return monthNames[month-1][:3]
}

// MonthNumber resolves an English month name or its three-letter prefix, ignoring case.
func MonthNumber(name string) (int, error) {
	if len(name) < 3 {
		return 0, errors.Wrapf(errors.ErrMalformedTime, "month name %q is too short", name)
	}
	prefix := strings.ToLower(name[:3])
	for i, full := range monthNames {
		if strings.ToLower(full[:3]) == prefix {
			return i + 1, nil
		}
	}
	return 0, errors.Wrapf(errors.ErrMalformedTime, "unknown month name %q", name)
}
