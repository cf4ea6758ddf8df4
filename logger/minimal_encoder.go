package logger

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette is one console colour theme.
type palette struct {
	fg        string
	time      string
	id        string
	number    string
	bracket   string
	component []string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

var palettes = map[string]palette{
	// Gruvbox Dark (warm, muted)
	"gruvbox": {
		fg:        "\x1b[38;5;223m",
		time:      "\x1b[38;5;108m",
		id:        "\x1b[38;5;109m",
		number:    "\x1b[38;5;175m",
		bracket:   "\x1b[38;5;208m",
		component: []string{"\x1b[38;5;208m", "\x1b[38;5;214m"},
		warn:      "\x1b[38;5;214m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;88m",
	},
	// Everforest Dark (forest greens)
	"everforest": {
		fg:        "\x1b[38;5;223m",
		time:      "\x1b[38;5;107m",
		id:        "\x1b[38;5;109m",
		number:    "\x1b[38;5;108m",
		bracket:   "\x1b[38;5;208m",
		component: []string{"\x1b[38;5;108m", "\x1b[38;5;65m", "\x1b[38;5;208m"},
		warn:      "\x1b[38;5;179m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;52m",
	},
}

var currentTheme = "everforest"

// SetTheme configures the colour scheme for console output. Unknown themes are ignored.
func SetTheme(theme string) {
	if _, ok := palettes[theme]; ok {
		currentTheme = theme
	}
}

func colors() palette { return palettes[currentTheme] }

func colorComponent(name string) string {
	// Hash for consistent color per component
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	p := colors()
	return p.component[hash%len(p.component)]
}

var bracketPattern = regexp.MustCompile(`\[([^\]]+)\]`)

// colorizeMessage highlights bracketed context such as [scan:1f3a] in the message.
func colorizeMessage(msg string) string {
	p := colors()
	var sb strings.Builder
	last := 0
	for _, m := range bracketPattern.FindAllStringIndex(msg, -1) {
		if m[0] > last {
			sb.WriteString(p.fg + msg[last:m[0]] + colorReset)
		}
		color := p.bracket
		if strings.HasPrefix(msg[m[0]+1:], "scan:") {
			color = p.id
		}
		sb.WriteString(color + msg[m[0]:m[1]] + colorReset)
		last = m[1]
	}
	if last < len(msg) {
		sb.WriteString(p.fg + msg[last:] + colorReset)
	}
	return sb.String()
}

// minimalEncoder is a calm, compact console encoder.
// Format: "13:04:35  s.scanner  Scan finished  3f2a91c0  12ms  (40 matched, 2 skipped)  source=./data"
type minimalEncoder struct {
	*zapcore.MapObjectEncoder // fields added through With
	pool                      buffer.Pool
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		pool:             buffer.NewPool(),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return &minimalEncoder{MapObjectEncoder: clone, pool: enc.pool}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	p := colors()
	final := enc.pool.Get()

	final.AppendString(p.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only shown for WARN and above
	if ent.Level >= zapcore.WarnLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	} else if ent.Level == zapcore.DebugLevel {
		final.AppendString("  debug")
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(colorizeMessage(ent.Message))

	all := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		all.Fields[k] = v
	}
	for _, f := range fields {
		f.AddTo(all)
	}
	if s := formatFields(all.Fields); s != "" {
		final.AppendString("  ")
		final.AppendString(s)
	}

	final.AppendString("\n")
	return final, nil
}

func levelColorString(level zapcore.Level) string {
	p := colors()
	switch level {
	case zapcore.WarnLevel:
		return colorBold + p.warnBg + p.warn + "WARN" + colorReset
	default:
		return colorBold + p.errBg + p.err + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: storage.scanner -> s.scanner
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// formatFields renders every field. A few well-known keys get a compact
// form up front; the rest follow as key=value in key order.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	p := colors()

	var out []string
	if v, ok := fields[FieldScanID]; ok {
		out = append(out, p.id+shortID(fmt.Sprint(v))+colorReset)
		delete(fields, FieldScanID)
	}
	if v, ok := fields[FieldDurationMS]; ok {
		out = append(out, p.number+fmt.Sprint(v)+colorReset+"ms")
		delete(fields, FieldDurationMS)
	}
	matched, hasMatched := fields[FieldMatched]
	skipped, hasSkipped := fields[FieldSkipped]
	if hasMatched && hasSkipped {
		out = append(out, fmt.Sprintf("(%s%v%s matched, %s%v%s skipped)",
			p.number, matched, colorReset, p.number, skipped, colorReset))
		delete(fields, FieldMatched)
		delete(fields, FieldSkipped)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(out, "  ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
