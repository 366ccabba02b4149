package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/go-phpintel/internal/symbol"
)

// docSymbolsCmd represents the doc-symbols command.
var docSymbolsCmd = &cobra.Command{
	Use:   "doc-symbols <php_file_path>",
	Short: "Lists the symbols declared in a single PHP file",
	Long: `Parses and indexes a single PHP file and prints every symbol
declared in it, depth-first, one per line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		filePath := args[0]

		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("error reading file %s: %w", filePath, err)
		}

		uri := "file://" + filePath
		n := svc.Discover(uri, string(content))
		if !cfg.Silent {
			fmt.Printf("Indexed %s (%d symbols)\n", filePath, n)
		}

		for _, sym := range svc.DocumentSymbols(uri) {
			fmt.Printf("%s\t%s\t%s\t[%d,%d)\n", sym.Name, kindName(sym.Kind), sym.Detail, sym.Range.Start, sym.Range.End)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docSymbolsCmd)
}

// kindName returns a short lowercase label for a symbol.Kind, for
// human-readable CLI output.
func kindName(k symbol.Kind) string {
	switch k {
	case symbol.KindNamespace:
		return "namespace"
	case symbol.KindClass:
		return "class"
	case symbol.KindInterface:
		return "interface"
	case symbol.KindTrait:
		return "trait"
	case symbol.KindConstant:
		return "constant"
	case symbol.KindFunction:
		return "function"
	case symbol.KindMethod:
		return "method"
	case symbol.KindProperty:
		return "property"
	case symbol.KindClassConstant:
		return "class_const"
	case symbol.KindParameter:
		return "parameter"
	case symbol.KindVariable:
		return "variable"
	default:
		return "unknown"
	}
}
