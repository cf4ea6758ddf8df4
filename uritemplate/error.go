package uritemplate

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// ErrorKind categorizes template errors for programmatic handling
type ErrorKind string

const (
	ErrorKindCompile ErrorKind = "compile" // Template could not be compiled
	ErrorKindMatch   ErrorKind = "match"   // Name does not match the template
)

// ErrorContext selects how a TemplateError renders itself
type ErrorContext int

const (
	ErrorContextPlain    ErrorContext = iota // Logs, JSON output
	ErrorContextTerminal                     // Coloured terminal output
)

// TemplateError is a structured compile or match failure. Err carries the
// sentinel chain, so errors.Is(err, errors.ErrUnknownField) and friends
// work through it.
type TemplateError struct {
	Err         error     // Underlying error
	Kind        ErrorKind // Error category
	Message     string    // Human-readable message
	Template    string    // Template spec being compiled or matched
	Input       string    // Name being parsed, for match errors
	Token       string    // Offending token text (optional)
	Position    int       // Byte offset into Template (compile) or Input (match), -1 if unknown
	Suggestions []string  // Possible fixes
}

// Error implements error interface
func (e *TemplateError) Error() string {
	return e.FormatError(ErrorContextPlain)
}

// FormatError generates a context-appropriate error message
func (e *TemplateError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextPlain {
		return e.formatPlainError()
	}
	return e.formatTerminalError()
}

func (e *TemplateError) formatPlainError() string {
	msg := e.Message
	if e.Token != "" {
		msg += fmt.Sprintf(" near %q", e.Token)
	}
	if e.Position >= 0 {
		msg += fmt.Sprintf(" (at offset %d)", e.Position)
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(". Suggestions: %s", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *TemplateError) formatTerminalError() string {
	var sb strings.Builder
	sb.WriteString(pterm.Red(e.Message))

	sb.WriteString("\n\n" + pterm.LightCyan("Context:"))
	sb.WriteString(fmt.Sprintf("\n  %s %s", pterm.Yellow("Template:"), e.Template))
	subject := e.Template
	if e.Kind == ErrorKindMatch {
		sb.WriteString(fmt.Sprintf("\n  %s %s", pterm.Yellow("Input:"), e.Input))
		subject = e.Input
	}
	if e.Position >= 0 && e.Position <= len(subject) {
		label := "Template:"
		if e.Kind == ErrorKindMatch {
			label = "Input:"
		}
		// caret under the offending offset
		sb.WriteString(fmt.Sprintf("\n  %s %s%s", strings.Repeat(" ", len(label)), strings.Repeat(" ", e.Position), pterm.Red("^")))
	}
	if e.Token != "" {
		sb.WriteString(fmt.Sprintf("\n  %s '%s'", pterm.Yellow("Token:"), e.Token))
	}

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n\n" + pterm.Green("Suggestions:"))
		for _, s := range e.Suggestions {
			sb.WriteString("\n  • " + s)
		}
	}
	return sb.String()
}

// Unwrap for errors.Is/As compatibility
func (e *TemplateError) Unwrap() error {
	return e.Err
}

// newTemplateError creates a TemplateError around err
func newTemplateError(kind ErrorKind, template string, err error) *TemplateError {
	return &TemplateError{
		Err:      err,
		Kind:     kind,
		Message:  err.Error(),
		Template: template,
		Position: -1,
	}
}

// WithPosition sets the byte offset where the error occurred
func (e *TemplateError) WithPosition(pos int) *TemplateError {
	e.Position = pos
	return e
}

// WithToken sets the token that caused the error
func (e *TemplateError) WithToken(token string) *TemplateError {
	e.Token = token
	return e
}

// WithInput sets the name that failed to match
func (e *TemplateError) WithInput(input string) *TemplateError {
	e.Input = input
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *TemplateError) WithSuggestion(suggestion string) *TemplateError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}
