package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// symbolsCmd represents the symbols command.
var symbolsCmd = &cobra.Command{
	Use:   "symbols <directory> <query>",
	Short: "Searches indexed symbols by name prefix",
	Long: `Indexes every PHP file under <directory>, then searches the
resulting workspace symbol index for names starting with <query>
(case-insensitively), ranked by name length then fully qualified name.`,
	Args: cobra.ExactArgs(2),
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
		dir, query := args[0], args[1]

		if _, _, err := indexDirectory(dir); err != nil {
			return err
		}

		results := svc.WorkspaceSymbols(query)
		if len(results) == 0 {
			fmt.Fprintf(os.Stderr, "No symbols found matching '%s'.\n", query)
			return fmt.Errorf("no matches")
		}

		for _, sym := range results {
			fmt.Printf("%s\t%s\t%s:%d\n", sym.FQN, kindName(sym.Kind), sym.URI, sym.Range.Start)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
}
