package uritemplate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
)

// CompareVersions orders two version captures. Semantic versions compare by
// semver precedence; otherwise dot-separated parts compare numerically where
// both are numbers and lexically where not.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}

	pa, pb := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if c := comparePart(pa[i], pb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	}
	return 0
}

func comparePart(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// Latest keeps, among names that describe the same time range and the same
// non-version extras, only the one with the highest version. Names that do
// not match the template are dropped. The result is ordered by start time,
// then name.
func (t *Template) Latest(names []string) ([]string, error) {
	var versions []string
	for _, f := range t.fields() {
		if f.Kind == KindVersion {
			versions = append(versions, f.ID())
		}
	}
	if len(versions) == 0 {
		return nil, errors.NewInvalidRequestError("template %q has no version field", t.spec)
	}

	type candidate struct {
		name    string
		start   isotime.Time
		version string
	}
	best := map[string]candidate{}
	for _, name := range names {
		r, extra, err := t.Parse(name)
		if err != nil {
			continue
		}
		var version []string
		for _, id := range versions {
			version = append(version, extra[id])
			delete(extra, id)
		}
		key := groupKey(r, extra)
		c := candidate{name: name, start: r.Start, version: strings.Join(version, "/")}
		if prev, ok := best[key]; !ok || CompareVersions(c.version, prev.version) > 0 {
			best[key] = c
		}
	}

	kept := make([]candidate, 0, len(best))
	for _, c := range best {
		kept = append(kept, c)
	}
	sort.Slice(kept, func(i, j int) bool {
		if c := isotime.Compare(kept[i].start, kept[j].start); c != 0 {
			return c < 0
		}
		return kept[i].name < kept[j].name
	})
	out := make([]string, len(kept))
	for i, c := range kept {
		out[i] = c.name
	}
	return out, nil
}

func groupKey(r isotime.TimeRange, extra map[string]string) string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(r.String())
	for _, k := range keys {
		sb.WriteString("|" + k + "=" + extra[k])
	}
	return sb.String()
}
