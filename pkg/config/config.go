/*
Package config manages TOML config for SwipeServe services.

Every tuning knob of the tracker and decoder lives in the file next to the
dictionary, layout and server options, so a running server can be re-tuned by
editing config.toml:

	[tracker]
	dwell_speed = 120.0

	[decoder]
	near_path_miss = 2.0
	absent_miss = 4.0
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/decoder"
	"github.com/bastiangx/swipeserve/pkg/gesture"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Tracker gesture.Params `toml:"tracker"`
	Decoder decoder.Params `toml:"decoder"`
	Layout  LayoutConfig   `toml:"layout"`
	Dict    DictConfig     `toml:"dict"`
	Server  ServerConfig   `toml:"server"`
	CLI     CliConfig      `toml:"cli"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	// Path is a word list file or a directory of dict_*.bin chunks.
	// Empty means the data directory found at startup.
	Path      string `toml:"path"`
	MaxWords  int    `toml:"max_words"`
	ChunkSize int    `toml:"chunk_size"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int `toml:"max_limit"`
	DefaultLimit int `toml:"default_limit"`
	// Record is a SQLite file gestures are traced to. Empty disables tracing.
	Record string `toml:"record"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	ShowScores   bool `toml:"show_scores"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. the platform config dir ($XDG_CONFIG_HOME, ~/.config, %APPDATA%)
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.ExecutableDir()
	}
	if primaryPath := utils.ConfigDirFor(homeDir); utils.WritableDir(primaryPath) {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", utils.AppName)
	if utils.WritableDir(macOSPath) {
		return macOSPath, nil
	}
	execDir, err := utils.ExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/swipeserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Tracker: gesture.DefaultParams(),
		Decoder: decoder.DefaultParams(),
		Layout:  DefaultLayoutConfig(),
		Dict: DictConfig{
			MaxWords:  50000,
			ChunkSize: 10000,
		},
		Server: ServerConfig{
			MaxLimit:     64,
			DefaultLimit: 5,
		},
		CLI: CliConfig{
			DefaultLimit: 8,
			ShowScores:   false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	if err := utils.EnsureParentDir(configPath); err != nil {
		log.Warnf("Failed to create config directory for %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Sections that fail validation fall back
// to their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config, err = tryPartialParse(configPath)
		if err != nil {
			return nil, err
		}
	}
	config.repair()
	return config, nil
}

// tryPartialParse keeps every section that decodes on its own
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	sections := []struct {
		name   string
		target any
		reset  func()
	}{
		{"tracker", &config.Tracker, func() { config.Tracker = gesture.DefaultParams() }},
		{"decoder", &config.Decoder, func() { config.Decoder = decoder.DefaultParams() }},
		{"layout", &config.Layout, func() { config.Layout = DefaultLayoutConfig() }},
		{"dict", &config.Dict, func() { config.Dict = DefaultConfig().Dict }},
		{"server", &config.Server, func() { config.Server = DefaultConfig().Server }},
		{"cli", &config.CLI, func() { config.CLI = DefaultConfig().CLI }},
	}
	for _, s := range sections {
		section, ok := utils.ExtractSection(tempConfig, s.name)
		if !ok {
			continue
		}
		if err := utils.DecodeSection(section, s.target); err != nil {
			log.Warnf("Ignoring [%s] in %s: %v", s.name, configPath, err)
			s.reset()
		}
	}
	return config, nil
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.AbsPath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// ClampLimit bounds a requested result count by the server limits. Zero or
// negative requests get the default.
func (s ServerConfig) ClampLimit(limit int) int {
	if limit <= 0 {
		limit = s.DefaultLimit
	}
	if s.MaxLimit > 0 && limit > s.MaxLimit {
		limit = s.MaxLimit
	}
	return max(limit, 1)
}
