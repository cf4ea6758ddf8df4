package isotime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/uritemplates/errors"
)

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"1998-01-02/1998-01-17", "1998-01-02T00:00:00.000000000Z/1998-01-17T00:00:00.000000000Z"},
		{"2000-01-01/P1D", "2000-01-01T00:00:00.000000000Z/2000-01-02T00:00:00.000000000Z"},
		{"PT1H/2000-01-01", "1999-12-31T23:00:00.000000000Z/2000-01-01T00:00:00.000000000Z"},
		{"2000-045/2000-046", "2000-02-14T00:00:00.000000000Z/2000-02-15T00:00:00.000000000Z"},
		{"lastday/P1D", "2024-06-15T00:00:00.000000000Z/2024-06-16T00:00:00.000000000Z"},
		{"now-P1D/now", "2024-06-14T14:30:45.500000000Z/2024-06-15T14:30:45.500000000Z"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			r, err := ParseTimeRangeAt(tt.text, fixedClock)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.String())
		})
	}
}

func TestParseTimeRangeComponents(t *testing.T) {
	r, err := ParseTimeRange("1998-01-02/1998-01-17")
	require.NoError(t, err)
	assert.Equal(t, [14]int{1998, 1, 2, 0, 0, 0, 0, 1998, 1, 17, 0, 0, 0, 0}, r.Components())
}

func TestParseTimeRangeErrors(t *testing.T) {
	for _, text := range []string{
		"2000-01-01",
		"2000-01-01/2000-01-02/2000-01-03",
		"/2000-01-02",
		"x2000/2001",
		"P1D/P2D",
		"2000-13-01/2001",
		"2000/P1X",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseTimeRangeAt(text, fixedClock)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrMalformedRange), "%v", err)
		})
	}
}

func TestTimeRangeContainsIntersects(t *testing.T) {
	r := TimeRange{Time{2000, 1, 1, 0, 0, 0, 0}, Time{2000, 1, 2, 0, 0, 0, 0}}

	assert.True(t, r.Contains(r.Start))
	assert.False(t, r.Contains(r.Stop))
	assert.True(t, r.Intersects(TimeRange{Time{1999, 12, 31, 12, 0, 0, 0}, Time{2000, 1, 1, 0, 0, 0, 1}}))
	assert.False(t, r.Intersects(TimeRange{r.Stop, Time{2000, 1, 3, 0, 0, 0, 0}}))
}
