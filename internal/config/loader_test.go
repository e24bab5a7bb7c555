package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test. t.Setenv registers the
// restore; the variable is then removed so cleanenv sees it as absent.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	home := t.TempDir()
	originalHomeDir := osUserHomeDir
	defer func() { osUserHomeDir = originalHomeDir }()
	osUserHomeDir = func() (string, error) { return home, nil }

	unsetEnv(t, "EMBED_CONFIG_DIR", "EMBED_DEBUG", "EMBED_NO_UPDATE_CHECK", "EMBED_API_TIMEOUT", "EMBED_API_URL")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".embeddable"), s.ConfigDir)
	assert.Equal(t, filepath.Join(home, ".embeddable", "config.json"), s.StorePath())
	assert.Equal(t, filepath.Join(home, ".embeddable", ".update-check"), s.UpdateStatePath())
	assert.Equal(t, 30*time.Second, s.APITimeout)
	assert.False(t, s.Debug)
}

func TestLoadSettings_FromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EMBED_CONFIG_DIR", dir)
	t.Setenv("EMBED_DEBUG", "true")
	t.Setenv("EMBED_NO_UPDATE_CHECK", "true")
	t.Setenv("EMBED_API_TIMEOUT", "5s")
	t.Setenv("EMBED_API_URL", "http://127.0.0.1:9999")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, dir, s.ConfigDir)
	assert.True(t, s.Debug)
	assert.True(t, s.NoUpdateCheck)
	assert.Equal(t, 5*time.Second, s.APITimeout)
	assert.Equal(t, "http://127.0.0.1:9999", s.APIURL)
}

func TestDefaultDir_HomeError(t *testing.T) {
	originalHomeDir := osUserHomeDir
	defer func() { osUserHomeDir = originalHomeDir }()
	osUserHomeDir = func() (string, error) { return "", errors.New("no home") }

	_, err := DefaultDir()
	assert.Error(t, err)
}

func TestRegion(t *testing.T) {
	tests := []struct {
		in      string
		want    Region
		baseURL string
		wantErr bool
	}{
		{in: "US", want: RegionUS, baseURL: "https://api.us.embeddable.com/api/v1"},
		{in: "eu", want: RegionEU, baseURL: "https://api.eu.embeddable.com/api/v1"},
		{in: " dev ", want: RegionDev, baseURL: "https://api.dev.embeddable.com/api/v1"},
		{in: "APAC", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRegion(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.baseURL, got.BaseURL())
			assert.True(t, got.Valid())
		})
	}

	assert.False(t, Region("Mars").Valid())
	assert.Equal(t, "", Region("Mars").BaseURL())
}
