package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/config"
	"github.com/matsen/artool/internal/identity"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a new review repository",
	Long: `Create a new review repository in dir (default: current directory).

Creates .artool/ holding config.json, one JSONL store per entity kind and a
.gitignore that keeps the SQLite cache out of version control.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		exitWithError(ExitError, "resolving %s: %v", dir, err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "repository already exists at %s", root)
	}
	if err := initRepository(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Initialized review repository in %s\n", config.ArtoolPath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}

// initRepository lays out an empty repository under root.
func initRepository(root string) error {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", config.ArtoolDir, err)
	}
	if err := (&config.Config{}).Save(root); err != nil {
		return err
	}
	for _, kind := range identity.Kinds {
		path := config.StorePath(root, kind)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
		}
		f.Close()
	}
	gitignore := filepath.Join(config.ArtoolPath(root), ".gitignore")
	if err := os.WriteFile(gitignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
