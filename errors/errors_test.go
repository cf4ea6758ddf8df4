package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	wrapped := Wrapf(ErrMalformedTime, "%q", "2020-13-01")

	assert.Contains(t, wrapped.Error(), `"2020-13-01"`)
	assert.Contains(t, wrapped.Error(), "malformed time")
	assert.True(t, Is(wrapped, ErrMalformedTime))
	assert.False(t, Is(wrapped, ErrMalformedDuration))
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}

func TestAs(t *testing.T) {
	original := &customError{msg: "custom"}
	wrapped := Wrap(original, "wrapped")

	var target *customError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "custom", target.msg)
}

func TestWithHint(t *testing.T) {
	err := WithHint(Wrap(ErrMalformedDuration, "PT5S"), "was the T missing before S?")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "was the T missing before S?", hints[0])
}

func TestStackTrace(t *testing.T) {
	err := Wrap(ErrNoMatch, "with stack")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
	assert.NotNil(t, GetReportableStackTrace(err))
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.False(t, IsTemplateCompileError(nil))
	assert.False(t, IsNoMatchError(nil))
	assert.False(t, IsTimeError(nil))
}

func TestNewCompileError(t *testing.T) {
	kinds := []error{
		ErrUnsupportedLegacySyntax,
		ErrUnknownField,
		ErrUnknownQualifier,
		ErrMissingQualifier,
		ErrInvalidQualifier,
	}

	for _, kind := range kinds {
		t.Run(kind.Error(), func(t *testing.T) {
			err := NewCompileError(kind, "field %q", "Q")

			assert.True(t, Is(err, kind))
			assert.True(t, Is(err, ErrTemplateCompile))
			assert.True(t, IsTemplateCompileError(err))
			assert.Contains(t, err.Error(), `field "Q"`)

			for _, other := range kinds {
				if other != kind {
					assert.False(t, Is(err, other), "%v should not match %v", err, other)
				}
			}
		})
	}
}

func TestTimeErrorClassification(t *testing.T) {
	assert.True(t, IsTimeError(Wrap(ErrMalformedTime, "x")))
	assert.True(t, IsTimeError(Wrap(ErrInvalidTimeComponent, "x")))
	assert.True(t, IsTimeError(Wrap(ErrMalformedDuration, "x")))
	assert.True(t, IsTimeError(Wrap(ErrMalformedRange, "x")))
	assert.False(t, IsTimeError(Wrap(ErrNoMatch, "x")))
}

func TestNotFoundHelpers(t *testing.T) {
	err := NewNotFoundError("template %q", "daily")
	assert.True(t, IsNotFoundError(err))
	assert.Contains(t, err.Error(), `template "daily"`)

	err = NewInvalidRequestError("bad range %d", 3)
	assert.True(t, IsInvalidRequestError(err))
	assert.False(t, IsNotFoundError(err))
}

func ExampleNewCompileError() {
	err := NewCompileError(ErrUnknownField, "%q", "Q")
	fmt.Println(Is(err, ErrTemplateCompile))
	// Output: true
}
