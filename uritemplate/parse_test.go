package uritemplate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
)

// expectRange resolves "start/stop" or "start/duration" into a normalized range.
func expectRange(t *testing.T, norm string) isotime.TimeRange {
	t.Helper()
	r, err := isotime.ParseTimeRange(norm)
	require.NoError(t, err, norm)
	return r
}

// formatCases hold a template, a name and the range that name denotes.
var formatCases = []struct {
	spec string
	name string
	norm string
}{
	{"$Y$m$d-$(Y;end)$m$d", "20130202-20140303", "2013-02-02/2014-03-03"},
	{"$Y$m$d-$(Y;end)$m$(d;shift=1)", "20130202-20140303", "2013-02-02/2014-03-04"},
	{"$Y$m$d-$(Y;end)$m$(d;shift=1)", "20131129-20131130", "2013-11-29/2013-12-01"},
	{"$Y$m$(d;shift=-1)", "20000101", "1999-12-31/P1D"},
	{"$Y$(b;shift=1)", "2012Feb", "2012-03-01/P1M"},
	{"$Y$(b;shift=1)", "2011Dec", "2012-01-01/P1M"},
	{"$Y_$(j;delta=10;phasestart=2000-001)", "1999_-001", "1999-12-22/P10D"},
	{"$Y_$(j;delta=10;phasestart=2000-001)", "1999_-010", "1999-09-23/P10D"},
	{"$Y$m$d-$(d;end)", "20130202-13", "2013-02-02/2013-02-13"},
	{"$(periodic;offset=0;start=2000-001;period=P1D)", "0", "2000-001/P1D"},
	{"$(periodic;offset=0;start=2000-001;period=P1D)", "20", "2000-021/P1D"},
	{"$(periodic;offset=2285;start=2000-346;period=P27D)", "1", "1832-02-08/P27D"},
	{"$(periodic;offset=2285;start=2000-346;period=P27D)", "2286", "2001-007/P27D"},
	{"$(j;Y=2012).$H$M$S.$(subsec;places=3)", "017.020000.245", "2012-01-17T02:00:00.245/2012-01-17T02:00:00.246"},
	{"$-1Y $-1m $-1d $H$M", "2012 3 30 1620", "2012-03-30T16:20/2012-03-30T16:21"},
	{"$Y", "2012", "2012-01-01T00:00/2013-01-01T00:00"},
	{"$Y-$j", "2012-017", "2012-01-17T00:00/2012-01-18T00:00"},
	{"$(j,Y=2012)", "017", "2012-01-17T00:00/2012-01-18T00:00"},
	{"ace_mag_$Y_$j_to_$(Y;end)_$j.cdf", "ace_mag_2005_001_to_2005_003.cdf", "2005-001T00:00/2005-003T00:00"},
}

func TestParse(t *testing.T) {
	cases := append([]struct {
		spec string
		name string
		norm string
	}{
		{"$Y $m $d $H $M", "2012 03 30 16 20", "2012-03-30T16:20/2012-03-30T16:21"},
		{"$Y$m$d-$(enum;values=a,b,c,d)", "20130202-a", "2013-02-02/2013-02-03"},
		{"$(j;Y=2012)$(hrinterval;names=01,02,03,04)", "01702", "2012-01-17T06:00/PT6H"},
		{"$(j;Y=2012).$x.$X.$(ignore).$H", "017.x.y.z.02", "2012-01-17T02:00:00/2012-01-17T03:00:00"},
		{"$(j;Y=2012).*.*.*.$H", "017.x.y.z.02", "2012-01-17T02:00:00/2012-01-17T03:00:00"},
		{"%{Y,m=02}*.dat", "2012xyz.dat", "2012-02-01/P1Y"},
		{"$y$m", "9912", "1999-12-01/P1M"},
		{"$y$m", "5701", "2057-01-01/P1M"},
		{"$Y$b$d", "2012Mar05", "2012-03-05/P1D"},
		{"$Y$b$d", "2012mar05", "2012-03-05/P1D"},
		{"$Y$m$d_$H$M$S.$(milli)$(micro)", "20120305_010203.004005", "2012-03-05T01:02:03.004005/2012-03-05T01:02:03.004006"},
		{"$Y_$(m;delta=3)", "2012_04", "2012-04-01/P3M"},
		{"$(d;delta=10;phasestart=1979-01-01)", "02", "1979-01-21/P10D"},
		{"$(d;delta=10;phasestart=1979-01-01)", "123", "1982-05-15/P10D"},
		{"$(d;delta=10;phasestart=1979-01-01;pad=none)", "2", "1979-01-21/P10D"},
		{"$Y_$m_$(d;delta=7)", "2005_01_29", "2005-01-29/2005-02-01"},
		{"$Y_$m_$(d;delta=7)", "2005_02_01", "2005-02-01/P7D"},
		{"$Y_$(j;delta=10)", "2012_361", "2012-12-26/2013-01-01"},
		{"$Y-$j", "2012-366", "2012-12-31/P1D"},
		{"$Y$m$(d;pad=space)", "201203 5", "2012-03-05/P1D"},
	}, formatCases...)

	for _, tt := range cases {
		t.Run(tt.spec+" "+tt.name, func(t *testing.T) {
			tmpl, err := Compile(tt.spec)
			require.NoError(t, err)

			got, _, err := tmpl.Parse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, expectRange(t, tt.norm), got)
		})
	}
}

func TestParseExtras(t *testing.T) {
	tmpl := MustCompile("$Y_sc$(enum;values=a,b,c,d;id=sc)")
	r, extra, err := tmpl.Parse("2003_scd")
	require.NoError(t, err)
	assert.Equal(t, 2003, r.Start.Year)
	assert.Equal(t, "d", extra["sc"])

	tmpl = MustCompile("$Y_$m_v$v.dat")
	r, extra, err = tmpl.Parse("2003_10_v20.3.dat")
	require.NoError(t, err)
	assert.Equal(t, 2003, r.Start.Year)
	assert.Equal(t, 10, r.Start.Month)
	assert.Equal(t, 11, r.Stop.Month)
	assert.Equal(t, "20.3", extra["v"])

	tmpl = MustCompile("$(x;id=mission)/$Y/$(x;id=mission)_$Y$m$d.cdf")
	_, extra, err = tmpl.Parse("ace/2012/ace_20120101.cdf")
	require.NoError(t, err)
	assert.Equal(t, "ace", extra["mission"])
}

func TestParseEnumDayOffset(t *testing.T) {
	tmpl := MustCompile("$Y$m$d-$(enum;values=a,b,c,d)")

	r, extra, err := tmpl.Parse("20130202-c")
	require.NoError(t, err)
	assert.Equal(t, expectRange(t, "2013-02-04/P1D"), r)
	assert.Equal(t, "c", extra["enum"])

	name, err := tmpl.Format(r.Start, r.Stop, extra)
	require.NoError(t, err)
	assert.Equal(t, "20130202-c", name)

	// with an id the enum only labels the name
	tmpl = MustCompile("$Y$m$d-$(enum;values=a,b,c,d;id=sc)")
	r, _, err = tmpl.Parse("20130202-c")
	require.NoError(t, err)
	assert.Equal(t, expectRange(t, "2013-02-02/P1D"), r)
}

func TestParseNoMatch(t *testing.T) {
	tests := []struct {
		spec     string
		name     string
		position int
		contains string
	}{
		{"$Y-$j", "2012_017", 4, `literal "-"`},
		{"$Y-$j", "20x2-017", 0, "field $Y"},
		{"data_$Y.dat", "data_2012.cdf", 9, `literal ".dat"`},
		{"$Y", "20123", 4, "trailing"},
		{"$Y$m", "201213", 4, "$m"},
		{"$Y$b", "2012Smr", 4, "$b"},
		{"$Y$(enum;values=a,b)", "2012c", 4, "field $enum"},
	}
	for _, tt := range tests {
		t.Run(tt.spec+" "+tt.name, func(t *testing.T) {
			_, _, err := MustCompile(tt.spec).Parse(tt.name)
			require.Error(t, err)
			assert.True(t, errors.IsNoMatchError(err), "%v", err)
			assert.Contains(t, err.Error(), tt.contains)

			var te *TemplateError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, ErrorKindMatch, te.Kind)
			assert.Equal(t, tt.position, te.Position)
			assert.Equal(t, tt.name, te.Input)
		})
	}
}

func TestParseDayOfYearOutOfRange(t *testing.T) {
	tests := []struct {
		spec string
		name string
	}{
		{"$Y$j", "2005366"},
		{"$Y$j", "1900366"},
		{"$Y$j-$(Y;end)$j", "2012366-2013366"},
		{"$(j;Y=2013)", "366"},
	}
	for _, tt := range tests {
		t.Run(tt.spec+" "+tt.name, func(t *testing.T) {
			_, _, err := MustCompile(tt.spec).Parse(tt.name)
			require.Error(t, err)
			assert.True(t, errors.IsNoMatchError(err), "%v", err)
			assert.True(t, errors.Is(err, errors.ErrMalformedTime), "%v", err)
			assert.Contains(t, err.Error(), "day of year 366")
		})
	}
}

func TestParseShortPhaseIndex(t *testing.T) {
	// a zero-padded phase index keeps its width in both directions
	_, _, err := MustCompile("$Y_$(d;delta=10;phasestart=1979-01-01)").Parse("1979_3")
	require.Error(t, err)
	assert.True(t, errors.IsNoMatchError(err))
}

func TestParseStopInheritsStart(t *testing.T) {
	r, _, err := Parse("$Y$m$d$H-$(d;end)", "2013020205-13")
	require.NoError(t, err)
	assert.Equal(t, expectRange(t, "2013-02-02T05:00/2013-02-13T05:00"), r)
}

func TestParseVariableWidthAmbiguity(t *testing.T) {
	// a wildcard directly before a field takes the shortest text that lets the rest match
	r, _, err := Parse("$x$Y", "ab2012")
	require.NoError(t, err)
	assert.Equal(t, 2012, r.Start.Year)

	r, _, err = Parse("$x$Y", "201220")
	require.NoError(t, err)
	assert.Equal(t, 1220, r.Start.Year)
}

func TestPackageParse(t *testing.T) {
	_, _, err := Parse("$(Q)", "x")
	require.Error(t, err)
	assert.True(t, errors.IsTemplateCompileError(err))

	r, _, err := Parse("$Y", "2012")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(r.String(), "2012-01-01T00:00:00"))
}
