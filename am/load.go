package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/docwatcher/errors"
)

// ConfigFileName is the project/system config file name
const ConfigFileName = "docwatcher.toml"

// SystemConfigPath is the lowest-precedence config file
const SystemConfigPath = "/etc/docwatcher/" + ConfigFileName

var globalConfig *Config
var viperInstance *viper.Viper

// explicitConfigPath is set by the --config flag
var explicitConfigPath string

// SetConfigFile makes Load read path in addition to the discovered files.
// It has the highest file precedence (still below environment variables).
func SetConfigFile(path string) {
	explicitConfigPath = path
	Reset()
}

// Load reads the docwatcher configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v, err := initViper()
	if err != nil {
		return nil, err
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// LoadWithViper loads and validates configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() (*viper.Viper, error) {
	return initViper()
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// NewViper returns a Viper instance with defaults and environment binding but
// no config files. Tests use it to stay isolated from the host.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("DOCWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	BindLegacyEnvVars(v)
	SetDefaults(v)
	return v
}

// initViper initializes Viper with configuration sources and defaults
func initViper() (*viper.Viper, error) {
	if viperInstance != nil {
		return viperInstance, nil
	}

	v := NewViper()

	// Precedence (lowest to highest): system < project < --config < env vars
	for _, path := range ConfigFiles() {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	viperInstance = v
	return v, nil
}

// ConfigFiles returns the existing config files in merge order
func ConfigFiles() []string {
	candidates := []string{SystemConfigPath}
	if project := findProjectConfig(); project != "" {
		candidates = append(candidates, project)
	}
	if explicitConfigPath != "" {
		candidates = append(candidates, explicitConfigPath)
	}

	var existing []string
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	return existing
}

// findProjectConfig searches for docwatcher.toml by walking up the directory tree
// Returns the path to the first config file found, or empty string if none found
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
