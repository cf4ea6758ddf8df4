package uritemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/uritemplates/errors"
)

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		kind     error
		position int
	}{
		{"unknown field", "data_$Q.dat", errors.ErrUnknownField, 5},
		{"unknown named field", "$(year)", errors.ErrUnknownField, 0},
		{"dangling dollar", "data_$", errors.ErrUnknownField, 5},
		{"unterminated", "$Y$(j;Y=2012", errors.ErrUnknownField, 2},
		{"unknown qualifier", "$(Y;bogus=1)", errors.ErrUnknownQualifier, 0},
		{"qualifier of another kind", "$(enum;values=a;places=3)", errors.ErrUnknownQualifier, 0},
		{"missing period", "$(periodic;offset=0;start=2000-001)", errors.ErrMissingQualifier, 0},
		{"missing values", "$Y$(enum)", errors.ErrMissingQualifier, 2},
		{"missing places", "$(subsec)", errors.ErrMissingQualifier, 0},
		{"phasestart without delta", "$(d;phasestart=2000-001)", errors.ErrMissingQualifier, 0},
		{"zero delta", "$(m;delta=0)", errors.ErrInvalidQualifier, 0},
		{"bad pad", "$(Y;pad=dots)", errors.ErrInvalidQualifier, 0},
		{"bad shift", "$(d;shift=one)", errors.ErrInvalidQualifier, 0},
		{"bad period", "$(periodic;offset=0;start=2000-001;period=1D)", errors.ErrInvalidQualifier, 0},
		{"bad start", "$(periodic;offset=0;start=yesterday;period=P1D)", errors.ErrInvalidQualifier, 0},
		{"places out of range", "$(subsec;places=12)", errors.ErrInvalidQualifier, 0},
		{"bad case", "$(b;case=title)", errors.ErrInvalidQualifier, 0},
		{"uneven hour intervals", "$(hrinterval;names=a,b,c,d,e,f,g)", errors.ErrInvalidQualifier, 0},
		{"legacy", "%Q", errors.ErrUnsupportedLegacySyntax, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.spec)
			require.Error(t, err)
			assert.True(t, errors.IsTemplateCompileError(err), "%v", err)
			assert.True(t, errors.Is(err, tt.kind), "%v", err)
			assert.False(t, errors.IsNoMatchError(err))

			var te *TemplateError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, ErrorKindCompile, te.Kind)
			assert.Equal(t, tt.position, te.Position)
		})
	}
}

func TestCompileSuggestions(t *testing.T) {
	_, err := Compile("$(Y;bogus=1)")
	var te *TemplateError
	require.True(t, errors.As(err, &te))
	require.Len(t, te.Suggestions, 1)
	assert.Contains(t, te.Suggestions[0], "shift")
	assert.Contains(t, te.Suggestions[0], "end")

	_, err = Compile("$(enum2;values=a)")
	require.True(t, errors.As(err, &te))
	assert.Contains(t, te.Suggestions, "did you mean $enum?")
}

func TestCompileCanonicalString(t *testing.T) {
	tmpl, err := Compile("%{Y,m=02}*.dat")
	require.NoError(t, err)
	assert.Equal(t, "$(Y;m=02)$x.dat", tmpl.String())
}

func TestCompileEndIsSticky(t *testing.T) {
	tmpl := MustCompile("$Y$j-$(Y;end)$j_$(enum;values=a)")

	var ends []bool
	for _, tok := range tmpl.Tokens() {
		if tok.Field != nil {
			ends = append(ends, tok.Field.End())
		}
	}
	assert.Equal(t, []bool{false, false, true, true, false}, ends)
}

func TestNaturalField(t *testing.T) {
	tests := []struct {
		spec string
		want string
		ok   bool
	}{
		{"$Y", "Y", true},
		{"$Y$m$d", "d", true},
		{"$Y$j$H", "H", true},
		{"$Y_$(m;delta=3)$d", "d", true},
		{"$(j;Y=2012)$(hrinterval;names=a,b)", "hrinterval", true},
		{"$(periodic;offset=0;start=2000-001;period=P27D)", "periodic", true},
		{"$Y$m$d$H$M$S.$(milli)", "milli", true},
		{"$x_$v", "", false},
		{"static.dat", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			f, ok := MustCompile(tt.spec).NaturalField()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, f.Name)
		})
	}
}

func TestTokensAreCopies(t *testing.T) {
	tmpl := MustCompile("data_$(Y;pad=none).dat")
	toks := tmpl.Tokens()
	require.Len(t, toks, 3)
	assert.Equal(t, "data_", toks[0].Literal)
	assert.Equal(t, KindYear, toks[1].Field.Kind)
	assert.Equal(t, "none", toks[1].Field.Qualifiers["pad"])
	assert.Equal(t, 5, toks[1].Field.Offset)
	assert.Equal(t, ".dat", toks[2].Literal)

	toks[1].Field.Qualifiers["pad"] = "zero"
	toks[1].Field.Name = "changed"
	again := tmpl.Tokens()
	assert.Equal(t, "none", again[1].Field.Qualifiers["pad"])
	assert.Equal(t, "Y", again[1].Field.Name)
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("$(nope)") })
	assert.NotPanics(t, func() { MustCompile("$Y") })
}

func TestFieldID(t *testing.T) {
	tmpl := MustCompile("$v_$(v;id=rev)_$(enum;values=a)_$(enum;values=b;id=sc)_$(x;id=site)_$x")
	var ids []string
	for _, tok := range tmpl.Tokens() {
		if tok.Field != nil {
			ids = append(ids, tok.Field.ID())
		}
	}
	assert.Equal(t, []string{"v", "rev", "enum", "sc", "site", ""}, ids)
}
