// Package main provides the art CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/config"
	"github.com/matsen/artool/internal/logging"
	"github.com/matsen/artool/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// logger is configured from the global config before any command runs.
var logger = zerolog.Nop()

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "art",
	Short: "Academic review tool",
	Long: `art collects bibliographic records (works, authors, funders and
affiliations) from heterogeneous exports, gives every entity a deterministic
identifier, merges duplicates and builds citation and co-occurrence networks.

Records are stored in git-versionable JSONL under .artool/ with an ephemeral
SQLite cache for queries. All commands output JSON by default.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

func setupLogging(cmd *cobra.Command, args []string) error {
	gcfg, err := config.LoadGlobalConfig()
	if err != nil {
		return err
	}
	logger = logging.NewLogger(gcfg.LoggingConfig())
	return nil
}

// getStartingDirectory returns the directory to start searching for a repository.
func getStartingDirectory() (string, int) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.ResolveRepository(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLoadWorkspace reads every store of the repository, exits on error.
func mustLoadWorkspace(repoRoot string) *workspace {
	ws, err := loadWorkspace(repoRoot, mustLoadConfig(repoRoot), logger)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return ws
}
