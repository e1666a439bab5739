package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matsen/artool/internal/logging"
)

// GlobalConfig represents configuration stored in ~/.config/art/config.yml.
type GlobalConfig struct {
	RepoPath    string `yaml:"repo_path,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
	LogFormat   string `yaml:"log_format,omitempty"`
	LexiconPath string `yaml:"lexicon_path,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "art"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment variables that override the global config.
const (
	EnvLogLevel  = "ART_LOG_LEVEL"
	EnvLogFormat = "ART_LOG_FORMAT"
	EnvRepo      = "ART_REPO"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/art/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides. Returns an empty config (not an error) if the file
// doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg, err := readGlobalConfig(GlobalConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if cfg.RepoPath != "" {
		cfg.RepoPath = ExpandPath(cfg.RepoPath)
	}
	if cfg.LexiconPath != "" {
		cfg.LexiconPath = ExpandPath(cfg.LexiconPath)
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log_format: %s (valid: json, console)", cfg.LogFormat)
	}

	globalConfigCache = cfg
	return cfg, nil
}

func readGlobalConfig(path string) (*GlobalConfig, error) {
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	return &cfg, nil
}

func (c *GlobalConfig) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv(EnvRepo); v != "" {
		c.RepoPath = v
	}
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// LoggingConfig returns the logger settings from the global config.
func (c *GlobalConfig) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if c.LogLevel != "" {
		cfg.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Format = c.LogFormat
	}
	return cfg
}

// ErrRepoNotFound is returned when no repository is found from the working
// directory and repo_path is not configured.
var ErrRepoNotFound = errors.New("no artool repository found")

// ResolveRepository finds the repository to operate on: the one containing
// start, else the configured repo_path.
func ResolveRepository(start string) (string, error) {
	if root, err := FindRepository(start); err == nil {
		return root, nil
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if cfg.RepoPath == "" {
		return "", ErrRepoNotFound
	}
	if err := ValidateRepoPath(cfg.RepoPath); err != nil {
		return "", err
	}
	return cfg.RepoPath, nil
}

// HelpfulConfigMessage returns a helpful message when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No artool repository found.

Run 'art init' in your project directory, or create %s to set a default:
  mkdir -p %s
  echo 'repo_path: /path/to/your/review' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
