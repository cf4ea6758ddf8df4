package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
		debug      bool
	}{
		{"JSON output mode", true, VerbosityUser, false},
		{"Console output mode", false, VerbosityInfo, false},
		{"Console debug", false, VerbosityDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() { Logger = zap.NewNop().Sugar() })

			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)
			assert.Equal(t, tt.verbosity, Verbosity)
			assert.Equal(t, tt.debug, Logger.Desugar().Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityAll + 3, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
	assert.Equal(t, "Debug (-vv)", LevelName(VerbosityDebug))
	assert.Equal(t, "All (-vvvv+)", LevelName(9))
	assert.Equal(t, "Unknown", LevelName(-2))
}

func TestShouldOutput(t *testing.T) {
	assert.False(t, ShouldOutput(VerbosityUser, OutputProgress))
	assert.False(t, ShouldOutput(VerbosityInfo, OutputTiming))
	assert.True(t, ShouldOutput(VerbosityDebug, OutputRemoteCalls))
	assert.True(t, ShouldOutput(VerbosityInfo, OutputProgress))
	assert.False(t, ShouldOutput(VerbosityDebug, OutputSkippedNames))
	assert.True(t, ShouldOutput(VerbosityTrace, OutputSkippedNames))
	assert.False(t, ShouldOutput(VerbosityTrace, OutputCategory(99)))
	assert.Equal(t, "skipped", CategoryName(OutputSkippedNames))
	assert.Equal(t, "unknown", CategoryName(OutputCategory(99)))
}

func TestLoggerFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Logger = zap.New(core).Sugar()
	t.Cleanup(func() { Logger = zap.NewNop().Sugar() })

	ctx := WithComponent(WithScanID(context.Background(), "scan-1"), "storage")
	assert.Equal(t, []interface{}{FieldScanID, "scan-1", FieldComponent, "storage"}, FieldsFromContext(ctx))

	LoggerFromContext(ctx).Infow("Scan started", FieldSource, "./data")
	LoggerFromContext(context.Background()).Debugw("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "scan-1", fields[FieldScanID])
	assert.Equal(t, "storage", fields[FieldComponent])
	assert.Equal(t, "./data", fields[FieldSource])
	assert.Empty(t, entries[1].ContextMap())
}

func TestPackageHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Logger = zap.New(core).Sugar()
	t.Cleanup(func() { Logger = zap.NewNop().Sugar() })

	Infow("info", FieldCount, 1)
	Infof("info %d", 2)
	Warnw("warn")
	Errorw("error", FieldError, "boom")
	Debugw("debug")
	Debugf("debug %s", "f")
	ComponentLogger("catalog").Infow("named")

	require.Equal(t, 7, logs.Len())
	assert.Equal(t, "info 2", logs.All()[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[3].Level)
	assert.Equal(t, "catalog", logs.All()[6].LoggerName)
}
