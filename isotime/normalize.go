package isotime

import (
	"github.com/teranos/uritemplates/errors"
)

// maxMonthCarries bounds the day carry/borrow loop in Normalize.
const maxMonthCarries = 12

// floorDiv returns hi+q and r where lo = q*base + r with 0 <= r < base.
func floorDiv(hi, lo, base int) (int, int) {
	q, r := lo/base, lo%base
	if r < 0 {
		r += base
		q--
	}
	return hi + q, r
}

// Normalize brings every component into its calendar range: nanoseconds,
// seconds, minutes and hours carry or borrow into the next coarser field,
// the month is brought into 1..12 against the year, and finally the day is
// carried or borrowed across month lengths. Normalized values are returned
// unchanged.
func Normalize(t Time) (Time, error) {
	orig := t
	t.Second, t.Nano = floorDiv(t.Second, t.Nano, 1_000_000_000)
	t.Minute, t.Second = floorDiv(t.Minute, t.Second, 60)
	t.Hour, t.Minute = floorDiv(t.Hour, t.Minute, 60)
	t.Day, t.Hour = floorDiv(t.Day, t.Hour, 24)

	var m int
	t.Year, m = floorDiv(t.Year, t.Month-1, 12)
	t.Month = m + 1

	for n := 0; t.Day < 1 || t.Day > DaysInMonth(t.Year, t.Month); n++ {
		if n == maxMonthCarries {
			return Time{}, errors.Wrapf(errors.ErrInvalidTimeComponent,
				"day %d of %04d-%02d needs more than %d month carries", orig.Day, orig.Year, orig.Month, maxMonthCarries)
		}
		if t.Day < 1 {
			t.Month--
			if t.Month == 0 {
				t.Month = 12
				t.Year--
			}
			t.Day += DaysInMonth(t.Year, t.Month)
			continue
		}
		t.Day -= DaysInMonth(t.Year, t.Month)
		t.Month++
		if t.Month == 13 {
			t.Month = 1
			t.Year++
		}
	}
	return t, nil
}

// MustNormalize is Normalize for values known to be in range; a failure is an
// internal invariant violation and panics.
func MustNormalize(t Time) Time {
	n, err := Normalize(t)
	if err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "normalize %v", t.Components()))
	}
	return n
}

// NormalizeTimeString decomposes, normalizes and recomposes text.
func NormalizeTimeString(text string) (string, error) {
	t, err := Decompose(text)
	if err != nil {
		return "", err
	}
	t, err = Normalize(t)
	if err != nil {
		return "", err
	}
	return Recompose(t), nil
}

// Add offsets base component-wise by d and normalizes the result.
func Add(base Time, d Duration) (Time, error) {
	return Normalize(Time{
		Year:   base.Year + d.Years,
		Month:  base.Month + d.Months,
		Day:    base.Day + d.Days,
		Hour:   base.Hour + d.Hours,
		Minute: base.Minute + d.Minutes,
		Second: base.Second + d.Seconds,
		Nano:   base.Nano + d.Nanos,
	})
}

// Subtract offsets base component-wise by -d and normalizes the result.
func Subtract(base Time, d Duration) (Time, error) {
	return Add(base, d.Scale(-1))
}

// Floor truncates t to the start of its day.
func Floor(t Time) (Time, error) {
	n, err := Normalize(t)
	if err != nil {
		return Time{}, err
	}
	return Time{Year: n.Year, Month: n.Month, Day: n.Day}, nil
}

// Ceil returns the start of the next day unless t already falls on midnight.
func Ceil(t Time) (Time, error) {
	f, err := Floor(t)
	if err != nil {
		return Time{}, err
	}
	n := MustNormalize(t)
	if n.Equal(f) {
		return f, nil
	}
	return NextDay(f)
}

// NextDay returns midnight of the day after t.
func NextDay(t Time) (Time, error) {
	f, err := Floor(t)
	if err != nil {
		return Time{}, err
	}
	f.Day++
	return Normalize(f)
}

// PreviousDay returns midnight of the day before t.
func PreviousDay(t Time) (Time, error) {
	f, err := Floor(t)
	if err != nil {
		return Time{}, err
	}
	f.Day--
	return Normalize(f)
}

// CountOffDays lists the days from start's day up to, but not including,
// the ceiling of stop, each formatted as YYYY-MM-DDZ.
func CountOffDays(start, stop Time) ([]string, error) {
	day, err := Floor(start)
	if err != nil {
		return nil, err
	}
	end, err := Ceil(stop)
	if err != nil {
		return nil, err
	}
	var days []string
	for day.Before(end) {
		days = append(days, FormatDate(day))
		if day, err = NextDay(day); err != nil {
			return nil, err
		}
	}
	return days, nil
}
