package uritemplate

import (
	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
)

// MaxRangeSteps caps the number of names one range enumeration may produce.
const MaxRangeSteps = 1_000_000

// RangeIterator lazily enumerates the names whose buckets intersect a
// query range. Each bucket is derived from the previous one alone, so an
// iterator can be Reset and replayed.
//
//	it := tmpl.Iterate(start, stop)
//	for it.Next() {
//	    fmt.Println(it.Value(), it.Range())
//	}
//	if err := it.Err(); err != nil { ... }
type RangeIterator struct {
	tmpl       *Template
	queryStart isotime.Time
	queryStop  isotime.Time

	started bool
	done    bool
	cur     isotime.Time
	steps   int
	value   string
	rng     isotime.TimeRange
	err     error
}

// Iterate returns an iterator over the names covering [queryStart, queryStop).
func (t *Template) Iterate(queryStart, queryStop isotime.Time) *RangeIterator {
	return &RangeIterator{tmpl: t, queryStart: queryStart, queryStop: queryStop}
}

// FormatRange collects every name covering [queryStart, queryStop).
func (t *Template) FormatRange(queryStart, queryStop isotime.Time) ([]string, error) {
	var names []string
	it := t.Iterate(queryStart, queryStop)
	for it.Next() {
		names = append(names, it.Value())
	}
	return names, it.Err()
}

// Next advances to the next bucket and reports whether there is one.
func (it *RangeIterator) Next() bool {
	if it.done {
		return false
	}
	if !it.started {
		it.started = true
		if err := it.first(); err != nil {
			return it.fail(err)
		}
	}
	if !it.cur.Before(it.queryStop) {
		it.done = true
		return false
	}
	if it.steps >= MaxRangeSteps {
		return it.fail(errors.Wrapf(errors.ErrUnboundedRange,
			"%q produced more than %d names", it.tmpl.spec, MaxRangeSteps))
	}

	name, r, err := it.tmpl.bucket(it.cur)
	if err != nil {
		return it.fail(err)
	}
	if !r.Stop.After(it.cur) {
		return it.fail(errors.Wrapf(errors.ErrUnboundedRange,
			"%q does not advance past %s", it.tmpl.spec, isotime.Recompose(it.cur)))
	}
	it.value, it.rng = name, r
	it.cur = r.Stop
	it.steps++
	return true
}

func (it *RangeIterator) first() error {
	if it.tmpl.natural == nil {
		return errors.WithHint(
			errors.Wrapf(errors.ErrUnboundedRange, "%q has no time field to step by", it.tmpl.spec),
			"add a calendar, periodic or hrinterval field")
	}
	var err error
	if it.queryStart, err = isotime.Normalize(it.queryStart); err != nil {
		return err
	}
	if it.queryStop, err = isotime.Normalize(it.queryStop); err != nil {
		return err
	}
	if it.queryStop.Before(it.queryStart) {
		return errors.Wrapf(errors.ErrMalformedRange, "start %s is after stop %s",
			isotime.Recompose(it.queryStart), isotime.Recompose(it.queryStop))
	}
	_, r, err := it.tmpl.bucket(it.queryStart)
	if err != nil {
		return err
	}
	it.cur = r.Start
	return nil
}

func (it *RangeIterator) fail(err error) bool {
	it.err = err
	it.done = true
	it.value = ""
	return false
}

// Value is the current name.
func (it *RangeIterator) Value() string { return it.value }

// Range is the time range the current name covers.
func (it *RangeIterator) Range() isotime.TimeRange { return it.rng }

// Err returns the error that stopped the iteration, if any.
func (it *RangeIterator) Err() error { return it.err }

// Reset rewinds the iterator to the first bucket.
func (it *RangeIterator) Reset() {
	*it = RangeIterator{tmpl: it.tmpl, queryStart: it.queryStart, queryStop: it.queryStop}
}

// bucket formats the bucket containing at and parses the name back, which
// floors at to the bucket start.
func (t *Template) bucket(at isotime.Time) (string, isotime.TimeRange, error) {
	stop, err := t.step.advance(at, 1)
	if err != nil {
		return "", isotime.TimeRange{}, err
	}
	name, err := t.Format(at, stop, nil)
	if err != nil {
		return "", isotime.TimeRange{}, err
	}
	r, _, err := t.Parse(name)
	if err != nil {
		return "", isotime.TimeRange{}, errors.Wrapf(err, "%q does not parse back", name)
	}
	if r.Start.After(at) {
		return "", isotime.TimeRange{}, errors.Wrapf(errors.ErrUnboundedRange,
			"%q starts after %s", name, isotime.Recompose(at))
	}
	return name, r, nil
}
