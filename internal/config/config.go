// Package config handles repository configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
)

// Config represents repository configuration stored in .artool/config.json.
type Config struct {
	LexiconPath   string `json:"lexicon_path,omitempty"`   // YAML word lists overriding the built-in lexicon
	DefaultSource string `json:"default_source,omitempty"` // Source format assumed by import
}

const (
	ArtoolDir  = ".artool"
	ConfigFile = "config.json"
	CacheDir   = "cache"
	DBFile     = "art.db"
)

// ArtoolPath returns the path to the .artool directory from a root path.
func ArtoolPath(root string) string {
	return filepath.Join(root, ArtoolDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ArtoolDir, ConfigFile)
}

// StorePath returns the path to the JSONL file holding records of kind.
func StorePath(root string, kind identity.Kind) string {
	return filepath.Join(root, ArtoolDir, kind.Plural()+".jsonl")
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, ArtoolDir, CacheDir)
}

// DBPath returns the path to art.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, ArtoolDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains an artool repository.
func IsRepository(root string) bool {
	info, err := os.Stat(ArtoolPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find an artool repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in an artool repository (no %s directory found)", ArtoolDir)
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Get returns the value of a configuration key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "lexicon_path":
		return c.LexiconPath, nil
	case "default_source":
		return c.DefaultSource, nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// Set validates and stores the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "lexicon_path":
		if err := ValidateLexiconPath(value); err != nil {
			return err
		}
		c.LexiconPath = value
	case "default_source":
		if value != "" {
			if _, err := entity.ParseSourceFormat(value); err != nil {
				return err
			}
		}
		c.DefaultSource = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Keys lists the repository configuration keys.
var Keys = []string{"lexicon_path", "default_source"}

// ValidateLexiconPath checks that the lexicon file exists and is not a
// directory.
func ValidateLexiconPath(path string) error {
	if path == "" {
		return nil // Empty means the built-in lexicon
	}

	expandedPath := ExpandPath(path)

	info, err := os.Stat(expandedPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expandedPath)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", expandedPath)
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

// ValidateRepoPath checks that the path exists and is an artool repository.
func ValidateRepoPath(path string) error {
	if path == "" {
		return nil // Empty is allowed (not yet configured)
	}

	expandedPath := ExpandPath(path)

	if !IsRepository(expandedPath) {
		return fmt.Errorf("not an artool repository: %s (no %s directory)", expandedPath, ArtoolDir)
	}

	return nil
}
