package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir

const (
	userConfigDir   = ".embeddable"
	updateStateFile = ".update-check"
)

// Settings are process-level knobs read from the environment. They never
// live in the config file.
type Settings struct {
	// ConfigDir overrides the directory holding config.json.
	ConfigDir string `env:"EMBED_CONFIG_DIR"`

	// Debug turns on debug logging, same as --debug.
	Debug bool `env:"EMBED_DEBUG" env-default:"false"`

	// NoUpdateCheck disables the background release check.
	NoUpdateCheck bool `env:"EMBED_NO_UPDATE_CHECK" env-default:"false"`

	// APITimeout bounds every remote API round-trip.
	APITimeout time.Duration `env:"EMBED_API_TIMEOUT" env-default:"30s"`

	// APIURL replaces the region base URL, e.g. for a local mock server.
	APIURL string `env:"EMBED_API_URL"`
}

// LoadSettings reads Settings from the environment and fills in the
// default config directory.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := cleanenv.ReadEnv(&s); err != nil {
		return Settings{}, fmt.Errorf("error reading environment settings: %w", err)
	}

	if s.ConfigDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return Settings{}, err
		}
		s.ConfigDir = dir
	}
	return s, nil
}

// DefaultDir returns ~/.embeddable.
func DefaultDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// StorePath returns the config file location for these settings.
func (s Settings) StorePath() string {
	return filepath.Join(s.ConfigDir, configFileName)
}

// UpdateStatePath returns the location of the update-check state file.
func (s Settings) UpdateStatePath() string {
	return filepath.Join(s.ConfigDir, updateStateFile)
}
