package config

import (
	"fmt"
	"strings"
)

// Region is a deployment partition of the remote API.
type Region string

const (
	RegionUS  Region = "US"
	RegionEU  Region = "EU"
	RegionDev Region = "Dev"
)

// Regions lists every supported region in display order.
var Regions = []Region{RegionUS, RegionEU, RegionDev}

var regionBaseURLs = map[Region]string{
	RegionUS:  "https://api.us.embeddable.com/api/v1",
	RegionEU:  "https://api.eu.embeddable.com/api/v1",
	RegionDev: "https://api.dev.embeddable.com/api/v1",
}

// BaseURL returns the fixed API base URL of the region, or "" for an unknown region.
func (r Region) BaseURL() string {
	return regionBaseURLs[r]
}

// Valid reports whether r is one of the supported regions.
func (r Region) Valid() bool {
	_, ok := regionBaseURLs[r]
	return ok
}

// Label is the long human name shown in region pickers.
func (r Region) Label() string {
	switch r {
	case RegionUS:
		return "United States"
	case RegionEU:
		return "Europe"
	case RegionDev:
		return "Development"
	default:
		return string(r)
	}
}

// Display returns the short decorated form used in status lines.
func (r Region) Display() string {
	switch r {
	case RegionUS:
		return "🇺🇸 US"
	case RegionEU:
		return "🇪🇺 EU"
	case RegionDev:
		return "🛠️  Dev"
	default:
		return string(r)
	}
}

// ParseRegion matches s against the supported regions case-insensitively.
func ParseRegion(s string) (Region, error) {
	for _, r := range Regions {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region %q (expected one of US, EU, Dev)", s)
}

// Config is the single locally stored credential record.
type Config struct {
	APIKey             string `json:"apiKey"`
	Region             Region `json:"region"`
	DefaultEnvironment string `json:"defaultEnvironment,omitempty"`
}

// MaskedAPIKey hides everything but the last four characters of the key.
func (c Config) MaskedAPIKey() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}

// Patch is a shallow update of a Config. Nil fields are left untouched;
// a non-nil field fully replaces the stored value (an empty
// DefaultEnvironment clears it).
type Patch struct {
	APIKey             *string
	Region             *Region
	DefaultEnvironment *string
}

func (p Patch) apply(c Config) Config {
	if p.APIKey != nil {
		c.APIKey = *p.APIKey
	}
	if p.Region != nil {
		c.Region = *p.Region
	}
	if p.DefaultEnvironment != nil {
		c.DefaultEnvironment = *p.DefaultEnvironment
	}
	return c
}

// SetDefaultEnvironment builds a Patch that only changes the default environment.
func SetDefaultEnvironment(id string) Patch {
	return Patch{DefaultEnvironment: &id}
}

// ClearDefaultEnvironment builds a Patch that removes the default environment.
func ClearDefaultEnvironment() Patch {
	empty := ""
	return Patch{DefaultEnvironment: &empty}
}
