package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set repository configuration values.

Usage:
  art config                               # Show all config
  art config lexicon-path                  # Get specific value
  art config lexicon-path ~/review/lex.yml # Set value
  art config default-source crossref       # Format assumed by import

Keys:
  lexicon-path    YAML file of stopwords, name suffixes and given names
  default-source  Source format used when import has no --format`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			for _, k := range config.Keys {
				v, _ := cfg.Get(k)
				outputHuman("%-15s %s\n", displayKey(k)+":", v)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := args[0]
	normalizedKey := normalizeKey(key)

	// One arg: get specific value
	if len(args) == 1 {
		v, err := cfg.Get(normalizedKey)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			outputHuman("%s\n", v)
		} else {
			outputJSON(map[string]string{normalizedKey: v})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if normalizedKey == "lexicon_path" {
		value = config.ExpandPath(value)
	}
	if err := cfg.Set(normalizedKey, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		outputHuman("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    normalizedKey,
			Value:  value,
		})
	}
	return nil
}

// normalizeKey converts key formats (lexicon-path, lexicon_path, Lexicon-Path) to the stored form
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "-", "_")
}

func displayKey(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
