package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/uritemplates/uritemplate"
)

func startWatcher(t *testing.T, root, spec string) <-chan Match {
	t.Helper()
	w, err := NewWatcher(root, uritemplate.MustCompile(spec), 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	matches := make(chan Match, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(m Match) error {
			matches <- m
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return matches
}

// waitFor drains matches until want arrives or the deadline passes.
func waitFor(t *testing.T, matches <-chan Match, want string) Match {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case m := <-matches:
			if m.Name == want {
				return m
			}
			assert.Failf(t, "unexpected match", "%s", m.Name)
		case <-deadline:
			require.FailNow(t, "no match for "+want)
		}
	}
}

func TestWatcherReportsNewFiles(t *testing.T) {
	root := t.TempDir()
	matches := startWatcher(t, root, "data_$Y$m$d.dat")

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data_20120305.dat"), []byte("x"), 0o644))

	m := waitFor(t, matches, "data_20120305.dat")
	assert.Equal(t, 2012, m.Range.Start.Year)
	assert.Equal(t, 3, m.Range.Start.Month)
	assert.Equal(t, 5, m.Range.Start.Day)
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	matches := startWatcher(t, root, "$Y/data_$Y$m.dat")

	dir := filepath.Join(root, "2013")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data_201302.dat"), []byte("x"), 0o644))

	m := waitFor(t, matches, "2013/data_201302.dat")
	assert.Equal(t, 2, m.Range.Start.Month)
	assert.Equal(t, 3, m.Range.Stop.Month)
}

func TestNewWatcherMissingRoot(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), uritemplate.MustCompile("$Y"), time.Millisecond)
	require.Error(t, err)
}
