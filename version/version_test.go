package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	tests := []struct {
		name    string
		info    Info
		want    string
		release bool
	}{
		{"untagged", Info{Version: "dev", CommitHash: "0123456789abcdef", BuildTime: "now"},
			"uritemplate dev (commit 0123456, built now)", false},
		{"tagged", Info{Version: "v1.2.0", CommitHash: "abc", BuildTime: "2024-05-01"},
			"uritemplate v1.2.0 (commit abc, built 2024-05-01)", true},
		{"prerelease", Info{Version: "1.3.0-rc.1", CommitHash: "abc", BuildTime: "b"},
			"uritemplate v1.3.0-rc.1 (commit abc, built b)", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
			v, ok := tt.info.Semver()
			assert.Equal(t, tt.release, ok && v.Prerelease() == "")
		})
	}
}

func TestGet(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v2.0.0"
	info := Get()
	assert.True(t, info.Release)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")

	Version = "dev"
	assert.False(t, Get().Release)
}
