package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
const (
	// Identity and context
	FieldScanID    = "scan_id"
	FieldComponent = "component"

	// Templates and names
	FieldTemplate = "template"
	FieldName     = "name"
	FieldRange    = "range"
	FieldStart    = "start"
	FieldStop     = "stop"

	// Sources
	FieldSource = "source"
	FieldPath   = "path"
	FieldBucket = "bucket"
	FieldPrefix = "prefix"
	FieldURL    = "url"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount   = "count"
	FieldMatched = "matched"
	FieldSkipped = "skipped"
	FieldPassed  = "passed"
	FieldFailed  = "failed"
)

type contextKey string

const (
	scanIDKey    contextKey = "logger_scan_id"
	componentKey contextKey = "logger_component"
)

// WithScanID adds a scan run ID to the context for logging
func WithScanID(ctx context.Context, scanID string) context.Context {
	return context.WithValue(ctx, scanIDKey, scanID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if scanID, ok := ctx.Value(scanIDKey).(string); ok && scanID != "" {
		fields = append(fields, FieldScanID, scanID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns a logger with fields extracted from context.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
//	s := &Scanner{logger: logger.ComponentLogger("storage.scanner")}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
