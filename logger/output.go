package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
//	0 (default) - names, ranges, errors with hints
//	1 (-v)      - + scan progress, watcher events
//	2 (-vv)     - + timing, fixture fetches
//	3 (-vvv)    - + every skipped name

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 1 (-v) - Informational
	OutputProgress OutputCategory = iota // Scan progress
	OutputWatch                          // Files recorded by the watcher

	// Level 2 (-vv) - Detailed
	OutputTiming      // Operation timing
	OutputRemoteCalls // go-getter fixture fetches

	// Level 3 (-vvv) - Debug
	OutputSkippedNames // Every name that failed to match during a scan
)

var categoryLevels = map[OutputCategory]int{
	OutputProgress:     VerbosityInfo,
	OutputWatch:        VerbosityInfo,
	OutputTiming:       VerbosityDebug,
	OutputRemoteCalls:  VerbosityDebug,
	OutputSkippedNames: VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputProgress:     "progress",
	OutputWatch:        "watch",
	OutputTiming:       "timing",
	OutputRemoteCalls:  "remote",
	OutputSkippedNames: "skipped",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
