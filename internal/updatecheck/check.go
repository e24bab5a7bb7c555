package updatecheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"embedctl/pkg/logging"
)

// Interval is the minimum time between two release lookups.
const Interval = 24 * time.Hour

// lookupTimeout bounds the release lookup of a background check.
const lookupTimeout = 5 * time.Second

// State is the persisted result of the last lookup.
type State struct {
	LastCheck   time.Time `json:"lastCheck"`
	LastVersion string    `json:"lastVersion,omitempty"`
	Available   bool      `json:"available,omitempty"`
}

// Notice tells the user about a newer release.
type Notice struct {
	Current string
	Latest  string
}

func (n Notice) String() string {
	return fmt.Sprintf("Update available: %s → %s\nRun \"embed self-update\" to upgrade.", n.Current, n.Latest)
}

// Checker compares the running version with the latest release.
type Checker struct {
	statePath string
	current   string
	now       func() time.Time
	latest    func(ctx context.Context) (string, error)
}

// Option configures a Checker.
type Option func(*Checker)

// WithLatest replaces the release lookup.
func WithLatest(fn func(ctx context.Context) (string, error)) Option {
	return func(c *Checker) { c.latest = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

// New creates a Checker for the running version current that keeps its
// state at statePath.
func New(statePath, current string, opts ...Option) *Checker {
	c := &Checker{
		statePath: statePath,
		current:   current,
		now:       time.Now,
		latest:    LatestVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsNewer reports whether latest is a higher semantic version than
// current. Unparseable versions are never newer.
func IsNewer(current, latest string) bool {
	cur, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return false
	}
	lat, err := semver.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return false
	}
	return lat.GreaterThan(cur)
}

// Cached returns a notice from the stored state without any lookup.
func (c *Checker) Cached() *Notice {
	st, ok := c.load()
	if !ok || st.LastVersion == "" {
		return nil
	}
	return c.notice(st.LastVersion)
}

// Check returns a notice when a newer release exists. The stored result
// is reused while it is younger than Interval. Errors are logged and
// yield nil.
func (c *Checker) Check(ctx context.Context) *Notice {
	if !IsRelease(c.current) {
		return nil
	}

	if st, ok := c.load(); ok && c.now().Sub(st.LastCheck) < Interval {
		logging.Debug("update", "Using cached update check from %s", st.LastCheck.Format(time.RFC3339))
		return c.notice(st.LastVersion)
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	latest, err := c.latest(ctx)
	if err != nil {
		logging.Debug("update", "Update check failed: %v", err)
		return nil
	}

	n := c.notice(latest)
	c.save(State{LastCheck: c.now().UTC(), LastVersion: latest, Available: n != nil})
	return n
}

func (c *Checker) notice(latest string) *Notice {
	if latest == "" || !IsNewer(c.current, latest) {
		return nil
	}
	return &Notice{Current: strings.TrimPrefix(c.current, "v"), Latest: strings.TrimPrefix(latest, "v")}
}

// IsRelease reports whether version is a released build rather than a
// development one.
func IsRelease(version string) bool {
	if version == "" || version == "dev" {
		return false
	}
	_, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	return err == nil
}

func (c *Checker) load() (State, bool) {
	data, err := os.ReadFile(c.statePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Debug("update", "Failed to read update state: %v", err)
		}
		return State{}, false
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		logging.Debug("update", "Ignoring malformed update state: %v", err)
		return State{}, false
	}
	return st, true
}

// save writes the state only when its directory already exists.
func (c *Checker) save(st State) {
	if _, err := os.Stat(filepath.Dir(c.statePath)); err != nil {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.statePath, data, 0o600); err != nil {
		logging.Debug("update", "Failed to write update state: %v", err)
	}
}
