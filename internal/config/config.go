// ABOUTME: Bridge configuration management with environment overrides.
// ABOUTME: JSON config under XDG paths; API key and port can come from env.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/hcbridge/internal/storage"
)

// Defaults applied when the config file omits a field.
const (
	DefaultPort           = 8765
	DefaultDiscoveryPort  = 8766
	DefaultDiscoveryMagic = "HC_SYNC_DISCOVER"
	DefaultBMRKcalPerDay  = 1680.0
	DefaultServerName     = "hcbridge"
)

// Config stores bridge configuration.
type Config struct {
	// DataDir is the root directory for the SQLite database.
	// Supports ~ expansion. Defaults to ~/.local/share/hcbridge.
	DataDir string `json:"data_dir,omitempty"`

	// APIKey protects the HTTP API. The HCBRIDGE_API_KEY environment
	// variable overrides it. With neither set the API refuses requests.
	APIKey string `json:"api_key,omitempty"`

	// Port is the HTTP listen port. HCBRIDGE_PORT overrides it.
	Port int `json:"port,omitempty"`

	// ServerName is the name announced over LAN discovery.
	ServerName string `json:"server_name,omitempty"`

	// DiscoveryEnabled turns the UDP discovery responder on.
	DiscoveryEnabled bool   `json:"discovery_enabled,omitempty"`
	DiscoveryPort    int    `json:"discovery_port,omitempty"`
	DiscoveryMagic   string `json:"discovery_magic,omitempty"`

	// Timezone is the IANA zone used for local-day bucketing.
	// Defaults to the host zone.
	Timezone string `json:"timezone,omitempty"`

	// BMRKcalPerDay is the fixed basal rate used for calorie balance.
	BMRKcalPerDay float64 `json:"bmr_kcal_per_day,omitempty"`

	// GoalWeightKg feeds the public summary export when set.
	GoalWeightKg *float64 `json:"goal_weight_kg,omitempty"`

	// CatalogPath points at a JSON file of extra nutrition catalog items
	// merged over the built-ins.
	CatalogPath string `json:"catalog_path,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDBPath returns the SQLite database path under the data directory.
func (c *Config) GetDBPath() string {
	return filepath.Join(c.GetDataDir(), "hcbridge.db")
}

// GetAPIKey returns the API key, preferring the environment.
func (c *Config) GetAPIKey() string {
	if v := os.Getenv("HCBRIDGE_API_KEY"); v != "" {
		return v
	}
	return c.APIKey
}

// GetPort returns the HTTP port, preferring the environment.
func (c *Config) GetPort() int {
	if v := os.Getenv("HCBRIDGE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			return p
		}
	}
	if c.Port > 0 {
		return c.Port
	}
	return DefaultPort
}

// GetServerName returns the announced server name.
func (c *Config) GetServerName() string {
	if c.ServerName != "" {
		return c.ServerName
	}
	return DefaultServerName
}

// GetDiscoveryPort returns the UDP discovery port.
func (c *Config) GetDiscoveryPort() int {
	if c.DiscoveryPort > 0 {
		return c.DiscoveryPort
	}
	return DefaultDiscoveryPort
}

// GetDiscoveryMagic returns the discovery probe string.
func (c *Config) GetDiscoveryMagic() string {
	if c.DiscoveryMagic != "" {
		return c.DiscoveryMagic
	}
	return DefaultDiscoveryMagic
}

// GetBMRKcalPerDay returns the fixed basal rate for calorie balance.
func (c *Config) GetBMRKcalPerDay() float64 {
	if c.BMRKcalPerDay > 0 {
		return c.BMRKcalPerDay
	}
	return DefaultBMRKcalPerDay
}

// GetLocation resolves the configured timezone, falling back to the host
// zone when unset or unknown.
func (c *Config) GetLocation() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "hcbridge", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
