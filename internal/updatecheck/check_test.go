package updatecheck

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"1.0.0", "1.0.1", true},
		{"v1.2.0", "v1.10.0", true},
		{"1.2.0", "1.2.0", false},
		{"2.0.0", "1.9.9", false},
		{"1.0.0", "garbage", false},
		{"dev", "1.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.current+"->"+tt.latest, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNewer(tt.current, tt.latest))
		})
	}
}

func TestIsRelease(t *testing.T) {
	assert.True(t, IsRelease("1.4.2"))
	assert.True(t, IsRelease("v0.1.0"))
	assert.False(t, IsRelease("dev"))
	assert.False(t, IsRelease(""))
}

type fakeLookup struct {
	version string
	err     error
	calls   atomic.Int32
}

func (f *fakeLookup) latest(context.Context) (string, error) {
	f.calls.Add(1)
	return f.version, f.err
}

func TestCheckStoresStateAndReusesIt(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".update-check")
	lookup := &fakeLookup{version: "1.3.0"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	c := New(path, "1.2.0", WithLatest(lookup.latest), WithClock(clock))

	n := c.Check(context.Background())
	require.NotNil(t, n)
	assert.Equal(t, "1.2.0", n.Current)
	assert.Equal(t, "1.3.0", n.Latest)
	assert.Contains(t, n.String(), "embed self-update")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var st State
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, "1.3.0", st.LastVersion)
	assert.True(t, st.Available)
	assert.True(t, st.LastCheck.Equal(now))

	now = now.Add(time.Hour)
	assert.NotNil(t, c.Check(context.Background()))
	assert.Equal(t, int32(1), lookup.calls.Load(), "state younger than Interval is reused")

	now = now.Add(Interval)
	lookup.version = "1.2.0"
	assert.Nil(t, c.Check(context.Background()))
	assert.Equal(t, int32(2), lookup.calls.Load())
}

func TestCheckNeverCreatesConfigDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	c := New(filepath.Join(dir, ".update-check"), "1.0.0", WithLatest((&fakeLookup{version: "2.0.0"}).latest))

	assert.NotNil(t, c.Check(context.Background()))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestCheckSkipsDevBuilds(t *testing.T) {
	lookup := &fakeLookup{version: "9.9.9"}
	c := New(filepath.Join(t.TempDir(), ".update-check"), "dev", WithLatest(lookup.latest))

	assert.Nil(t, c.Check(context.Background()))
	assert.Zero(t, lookup.calls.Load())
}

func TestCheckFailureIsQuiet(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".update-check")
	c := New(path, "1.0.0", WithLatest((&fakeLookup{err: errors.New("rate limited")}).latest))

	assert.Nil(t, c.Check(context.Background()))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "failed lookups are not recorded")
}

func TestCheckIgnoresMalformedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".update-check")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	lookup := &fakeLookup{version: "1.1.0"}

	n := New(path, "1.0.0", WithLatest(lookup.latest)).Check(context.Background())
	require.NotNil(t, n)
	assert.Equal(t, int32(1), lookup.calls.Load())
}

func TestCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".update-check")
	c := New(path, "1.0.0")
	assert.Nil(t, c.Cached())

	data, err := json.Marshal(State{LastCheck: time.Now(), LastVersion: "1.5.0", Available: true})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	n := c.Cached()
	require.NotNil(t, n)
	assert.Equal(t, "1.5.0", n.Latest)
}

func TestPendingReady(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".update-check")
	release := make(chan struct{})
	slow := func(ctx context.Context) (string, error) {
		select {
		case <-release:
			return "3.0.0", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	p := New(path, "1.0.0", WithLatest(slow)).Start(context.Background())
	assert.Nil(t, p.Ready(), "nothing cached and lookup still running")

	close(release)
	require.Eventually(t, func() bool {
		select {
		case n := <-p.result:
			p.result <- n
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	n := p.Ready()
	require.NotNil(t, n)
	assert.Equal(t, "3.0.0", n.Latest)

	var nilPending *Pending
	assert.Nil(t, nilPending.Ready())
}
