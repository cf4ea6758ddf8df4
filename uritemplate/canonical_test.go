package uritemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/uritemplates/errors"
)

func TestMakeCanonical(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"%{Y,m=02}*.dat", "$(Y;m=02)$x.dat"},
		{"%Y%m%d.cdf", "$Y$m$d.cdf"},
		{"%{enum,values=a,b,c,id=sc}", "$(enum;values=a,b,c;id=sc)"},
		{"%{hrinterval;names=a,b}", "$(hrinterval;names=a,b)"},
		{"$(j,Y=2012)*", "$(j,Y=2012)$x"},
		{"$(x;id=a*b)", "$(x;id=a*b)"},
		{"data_$Y_$j.cdf", "data_$Y_$j.cdf"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := MakeCanonical(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := MakeCanonical(got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "canonical form must be a fixed point")
		})
	}
}

func TestMakeCanonicalErrors(t *testing.T) {
	tests := []struct {
		spec     string
		position int
	}{
		{"data_%", 5},
		{"%{Y", 0},
		{"x%{}", 1},
		{"%Q.dat", 0},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := MakeCanonical(tt.spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrUnsupportedLegacySyntax))
			assert.True(t, errors.IsTemplateCompileError(err))

			var te *TemplateError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, ErrorKindCompile, te.Kind)
			assert.Equal(t, tt.position, te.Position)
			assert.NotEmpty(t, te.Suggestions)
		})
	}
}

func TestSplitQualifiers(t *testing.T) {
	tests := []struct {
		content string
		want    []string
	}{
		{"Y", []string{"Y"}},
		{"Y;end", []string{"Y", "end"}},
		{"Y,end", []string{"Y", "end"}},
		{"enum,values=a,b,c", []string{"enum", "values=a,b,c"}},
		{"enum,values=a,b,id=x", []string{"enum", "values=a,b", "id=x"}},
		{"enum;values=a,b;id=x", []string{"enum", "values=a,b", "id=x"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitQualifiers(tt.content), tt.content)
	}
}
