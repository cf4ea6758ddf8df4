package isotime

import (
	"fmt"
	"strings"

	"github.com/teranos/uritemplates/errors"
)

// FormatDate renders the date of t as YYYY-MM-DDZ.
func FormatDate(t Time) string {
	return Recompose(t)[:10] + "Z"
}

// ReformatIsoTime renders text in the same shape as exampleForm, e.g. with
// exampleForm "2020-01-01T00:00Z" the time "2020-112Z" becomes
// "2020-04-21T00:00Z". Day-of-year examples keep day-of-year output.
func ReformatIsoTime(exampleForm, text string) (string, error) {
	t, err := Decompose(text)
	if err != nil {
		return "", err
	}
	if t, err = Normalize(t); err != nil {
		return "", err
	}
	if len(exampleForm) < 8 {
		return "", errors.Wrapf(errors.ErrMalformedTime, "example form %q is too short", exampleForm)
	}

	var full string
	doy := DayOfYear(t.Year, t.Month, t.Day)
	switch {
	case len(exampleForm) == 8 || exampleForm[8] == 'Z':
		full = fmt.Sprintf("%04d-%03dZ", t.Year, doy)
	case exampleForm[8] == 'T':
		full = fmt.Sprintf("%04d-%03dT%02d:%02d:%02d.%09dZ", t.Year, doy, t.Hour, t.Minute, t.Second, t.Nano)
	case len(exampleForm) == 10 || exampleForm[10] == 'Z':
		full = FormatDate(t)
	default:
		full = Recompose(t)
	}

	n := len(exampleForm)
	if strings.HasSuffix(exampleForm, "Z") {
		n--
	}
	if n > len(full)-1 {
		return "", errors.Wrapf(errors.ErrMalformedTime, "example form %q is longer than %q", exampleForm, full)
	}
	out := full[:n]
	if strings.HasSuffix(exampleForm, "Z") {
		out += "Z"
	}
	return out, nil
}
