package uritemplate

import (
	"math/big"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
)

const (
	nanosPerSecond = int64(1_000_000_000)
	nanosPerMinute = 60 * nanosPerSecond
	nanosPerHour   = 60 * nanosPerMinute
	nanosPerDay    = 24 * nanosPerHour
)

var bigDay = big.NewInt(nanosPerDay)

// step is a span of time split into a calendar part, counted in months,
// and an exact part, counted in nanoseconds.
type step struct {
	months int
	nanos  int64
}

func stepOf(d isotime.Duration) step {
	return step{
		months: d.Years*12 + d.Months,
		nanos: int64(d.Days)*nanosPerDay +
			int64(d.Hours)*nanosPerHour +
			int64(d.Minutes)*nanosPerMinute +
			int64(d.Seconds)*nanosPerSecond +
			int64(d.Nanos),
	}
}

func (s step) isZero() bool { return s.months == 0 && s.nanos == 0 }

func (s step) scale(n int) step { return step{s.months * n, s.nanos * int64(n)} }

// size approximates the span in nanoseconds, for ordering steps only.
func (s step) size() int64 {
	return int64(s.months)*28*nanosPerDay + s.nanos
}

// advance moves t forward by k steps; k may be negative. The calendar part
// is applied first.
func (s step) advance(t isotime.Time, k int) (isotime.Time, error) {
	var err error
	if s.months != 0 {
		t.Month += k * s.months
	}
	if t, err = isotime.Normalize(t); err != nil {
		return isotime.Time{}, err
	}
	if s.nanos == 0 {
		return t, nil
	}
	delta := new(big.Int).Mul(big.NewInt(int64(k)), big.NewInt(s.nanos))
	return addNanos(t, delta), nil
}

// index returns the largest k with advance(origin, k) <= t.
func (s step) index(origin, t isotime.Time) (int, error) {
	switch {
	case s.isZero():
		return 0, errors.Wrap(errors.ErrNonIntegralPeriod, "zero period")
	case s.months != 0 && s.nanos != 0:
		return 0, errors.Wrapf(errors.ErrNonIntegralPeriod,
			"period mixes %d months with %dns", s.months, s.nanos)
	case s.months != 0:
		return s.monthIndex(origin, t)
	}
	diff := nanosBetween(origin, t)
	k := new(big.Int).Div(diff, big.NewInt(s.nanos)) // Euclidean, so floor for a positive period
	if !k.IsInt64() {
		return 0, errors.Wrapf(errors.ErrNonIntegralPeriod, "index of %s overflows", isotime.Recompose(t))
	}
	return int(k.Int64()), nil
}

func (s step) monthIndex(origin, t isotime.Time) (int, error) {
	diff := (t.Year*12 + t.Month) - (origin.Year*12 + origin.Month)
	k := diff / s.months
	if diff%s.months != 0 && (diff < 0) != (s.months < 0) {
		k--
	}
	// day-of-month and clock can put the candidate one step either side
	for i := 0; i < 2; i++ {
		at, err := s.advance(origin, k)
		if err != nil {
			return 0, err
		}
		if at.After(t) {
			k--
			continue
		}
		next, err := s.advance(origin, k+1)
		if err != nil {
			return 0, err
		}
		if !next.After(t) {
			k++
			continue
		}
		return k, nil
	}
	return k, nil
}

func nanosOfDay(t isotime.Time) int64 {
	return int64(t.Hour)*nanosPerHour + int64(t.Minute)*nanosPerMinute + int64(t.Second)*nanosPerSecond + int64(t.Nano)
}

// nanosBetween returns t - origin in nanoseconds; both must be normalized.
func nanosBetween(origin, t isotime.Time) *big.Int {
	days := int64(isotime.JulianDay(t.Year, t.Month, t.Day) - isotime.JulianDay(origin.Year, origin.Month, origin.Day))
	diff := new(big.Int).Mul(big.NewInt(days), bigDay)
	return diff.Add(diff, big.NewInt(nanosOfDay(t)-nanosOfDay(origin)))
}

// addNanos adds delta nanoseconds to a normalized t using Julian days, so
// spans of any length avoid the month carry bound of Normalize.
func addNanos(t isotime.Time, delta *big.Int) isotime.Time {
	total := new(big.Int).Add(big.NewInt(nanosOfDay(t)), delta)
	days, rem := new(big.Int).DivMod(total, bigDay, new(big.Int))

	out := isotime.FromJulianDay(isotime.JulianDay(t.Year, t.Month, t.Day) + int(days.Int64()))
	nod := rem.Int64()
	out.Hour = int(nod / nanosPerHour)
	out.Minute = int(nod % nanosPerHour / nanosPerMinute)
	out.Second = int(nod % nanosPerMinute / nanosPerSecond)
	out.Nano = int(nod % nanosPerSecond)
	return out
}
