package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/go-phpintel/internal/diagnostics"
)

// diagnoseCmd represents the diagnose command.
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <directory>",
	Short: "Reports parse diagnostics across a directory of PHP files",
	Long: `Opens every PHP file under <directory> as a live document and prints
the aggregated, capped diagnostics payload computed across all of them:
every opened document's parse errors, concatenated and truncated to the
configured maximum.`,
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
		root := args[0]

		var latest []diagnostics.Diagnostic
		svc.OnDiagnostics(nil, func(_ string, diags []diagnostics.Diagnostic) {
			latest = diags
		})

		walkErr := filepath.WalkDir(root, func(entryPath string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("error accessing path %q: %w", entryPath, err)
			}
			relPath, relErr := filepath.Rel(root, entryPath)
			if relErr != nil {
				relPath = entryPath
			}
			if relPath != "." && matchesAnySkipPattern(relPath, cfg.SkipPaths) {
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
			svc.OpenDocument("file://"+entryPath, "php", 1, string(content))
			return nil
		})
		if walkErr != nil {
			return fmt.Errorf("error walking %s: %w", root, walkErr)
		}

		if len(latest) == 0 {
			fmt.Println("No diagnostics.")
			return nil
		}
		for _, d := range latest {
			fmt.Printf("[%s] %s (%d,%d): %s\n", d.Severity, d.Source, d.Range.Start, d.Range.End, d.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
}
