package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeGlobalConfig points XDG_CONFIG_HOME at a temp dir holding content.
func writeGlobalConfig(t *testing.T, content string) {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")
	t.Setenv(EnvRepo, "")
	if content == "" {
		return
	}
	configDir := filepath.Join(tmpDir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/art/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := GlobalConfigPath(), filepath.Join(home, ".config", "art", "config.yml"); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	writeGlobalConfig(t, "")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if *cfg != (GlobalConfig{}) {
		t.Errorf("LoadGlobalConfig() = %+v, want empty", cfg)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	writeGlobalConfig(t, `repo_path: ~/reviews/ai
log_level: debug
log_format: json
lexicon_path: /etc/art/lexicon.yml
`)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "reviews/ai"); cfg.RepoPath != want {
		t.Errorf("RepoPath = %q, want %q", cfg.RepoPath, want)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("logging = %q/%q, want debug/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.LexiconPath != "/etc/art/lexicon.yml" {
		t.Errorf("LexiconPath = %q", cfg.LexiconPath)
	}

	lc := cfg.LoggingConfig()
	if lc.Level != "debug" || lc.Format != "json" {
		t.Errorf("LoggingConfig() = %+v", lc)
	}
}

func TestLoadGlobalConfig_EnvOverrides(t *testing.T) {
	writeGlobalConfig(t, "log_level: debug\nrepo_path: /from/file\n")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvRepo, "/from/env")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", cfg.LogLevel)
	}
	if cfg.RepoPath != "/from/env" {
		t.Errorf("RepoPath = %q, want /from/env", cfg.RepoPath)
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "repo_path: [unclosed"},
		{"bad log format", "log_format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeGlobalConfig(t, tt.content)
			if _, err := LoadGlobalConfig(); err == nil {
				t.Error("LoadGlobalConfig() should return error")
			}
		})
	}
}

func TestGlobalConfigCache(t *testing.T) {
	writeGlobalConfig(t, "log_level: info\n")

	first, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvLogLevel, "trace")
	second, _ := LoadGlobalConfig()
	if first != second {
		t.Error("LoadGlobalConfig() should return the cached config")
	}

	ResetGlobalConfigCache()
	third, _ := LoadGlobalConfig()
	if third.LogLevel != "trace" {
		t.Errorf("after reset LogLevel = %q, want trace", third.LogLevel)
	}
}

func TestResolveRepository(t *testing.T) {
	repo := newRepo(t)

	t.Run("found from working directory", func(t *testing.T) {
		writeGlobalConfig(t, "")
		got, err := ResolveRepository(repo)
		if err != nil || got != repo {
			t.Errorf("ResolveRepository() = %q, %v; want %q", got, err, repo)
		}
	})

	t.Run("falls back to repo_path", func(t *testing.T) {
		writeGlobalConfig(t, "repo_path: "+repo+"\n")
		got, err := ResolveRepository(t.TempDir())
		if err != nil || got != repo {
			t.Errorf("ResolveRepository() = %q, %v; want %q", got, err, repo)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		writeGlobalConfig(t, "")
		_, err := ResolveRepository(t.TempDir())
		if !errors.Is(err, ErrRepoNotFound) {
			t.Errorf("ResolveRepository() error = %v, want ErrRepoNotFound", err)
		}
	})

	t.Run("repo_path not a repository", func(t *testing.T) {
		writeGlobalConfig(t, "repo_path: "+t.TempDir()+"\n")
		if _, err := ResolveRepository(t.TempDir()); err == nil {
			t.Error("ResolveRepository() should fail for a plain directory")
		}
	})
}

func TestHelpfulConfigMessage(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	msg := HelpfulConfigMessage()
	for _, want := range []string{"art init", "/cfg/art/config.yml", "repo_path"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
