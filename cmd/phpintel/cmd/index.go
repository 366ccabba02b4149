package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// indexCmd represents the index command.
var indexCmd = &cobra.Command{
	Use:   "index <directory>",
	Short: "Recursively index PHP files in a directory",
	Long: `Walks the given directory, parses every PHP file found (skipping
paths that match the configured skip patterns), and reports how many
files and symbols were indexed.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		info, err := os.Stat(args[0])
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("directory '%s' not found", args[0])
			}
			return fmt.Errorf("error checking directory '%s': %w", args[0], err)
		}
		if !info.IsDir() {
			return fmt.Errorf("path '%s' is not a directory", args[0])
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		filesIndexed, symbolsIndexed, err := indexDirectory(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d file(s), %d symbol(s) total.\n", filesIndexed, symbolsIndexed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

// indexDirectory walks root, discovering every PHP file not excluded
// by cfg.SkipPaths into the shared service instance. It is reused by
// any subcommand that needs a populated workspace before it can answer
// a query (e.g. symbols).
func indexDirectory(root string) (filesIndexed, symbolsIndexed int, err error) {
	walkErr := filepath.WalkDir(root, func(entryPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path %q: %w", entryPath, err)
		}

		relPath, relErr := filepath.Rel(root, entryPath)
		if relErr != nil {
			relPath = entryPath
		}
		if relPath != "." && matchesAnySkipPattern(relPath, cfg.SkipPaths) {
			if !cfg.Silent {
				fmt.Printf("Skipping: %s\n", entryPath)
			}
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !isPhpFile(entryPath) {
			return nil
		}

		content, readErr := os.ReadFile(entryPath)
		if readErr != nil {
			return fmt.Errorf("error reading %q: %w", entryPath, readErr)
		}

		uri := "file://" + entryPath
		n := svc.Discover(uri, string(content))
		filesIndexed++
		symbolsIndexed += n
		if !cfg.Silent {
			fmt.Printf("Indexed: %s (%d symbols)\n", entryPath, n)
		}
		return nil
	})
	if walkErr != nil {
		return filesIndexed, symbolsIndexed, fmt.Errorf("error walking %s: %w", root, walkErr)
	}
	return filesIndexed, symbolsIndexed, nil
}

// matchesAnySkipPattern reports whether relPath matches any glob
// pattern in patterns, comparing with forward-slash-normalized paths.
func matchesAnySkipPattern(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// isPhpFile reports whether name has a recognized PHP source extension.
func isPhpFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".php", ".phtml", ".php5", ".php7", ".phps":
		return true
	default:
		return false
	}
}
