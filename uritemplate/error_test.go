package uritemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/uritemplates/errors"
)

func TestTemplateErrorPlain(t *testing.T) {
	err := newTemplateError(ErrorKindCompile, "$Q", errors.NewCompileError(errors.ErrUnknownField, "field %q", "Q")).
		WithPosition(0).
		WithToken("$Q").
		WithSuggestion("did you mean $Y?")

	msg := err.Error()
	assert.Contains(t, msg, `field "Q"`)
	assert.Contains(t, msg, `near "$Q"`)
	assert.Contains(t, msg, "(at offset 0)")
	assert.Contains(t, msg, "Suggestions: did you mean $Y?")

	assert.True(t, errors.Is(err, errors.ErrUnknownField))
	assert.True(t, errors.Is(err, errors.ErrTemplateCompile))
}

func TestTemplateErrorTerminal(t *testing.T) {
	_, _, err := MustCompile("$Y-$j").Parse("2012_017")
	var te *TemplateError
	require.True(t, errors.As(err, &te))

	out := te.FormatError(ErrorContextTerminal)
	assert.Contains(t, out, "Context:")
	assert.Contains(t, out, "2012_017")
	assert.Contains(t, out, "$Y-$j")
	assert.Contains(t, out, "^")
	assert.Contains(t, out, te.Message)
}

func TestTemplateErrorUnknownPosition(t *testing.T) {
	err := newTemplateError(ErrorKindMatch, "$Y", errors.ErrNoMatch)
	assert.Equal(t, -1, err.Position)
	assert.NotContains(t, err.Error(), "offset")
	assert.NotContains(t, err.FormatError(ErrorContextTerminal), "^")
}
