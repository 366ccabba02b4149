// Package cmd implements the command line interface for phpintel.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/go-phpintel/internal/config"
	"github.com/whit3rabbit/go-phpintel/pkg/api"
)

var (
	cfgFile string         // config file path from the --config flag
	cfg     *config.Config // loaded configuration, set by PersistentPreRunE
	svc     *api.Service   // service built from cfg, set by PersistentPreRunE

	silentMode bool // -> cfg.Silent
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "phpintel",
	Short: "A CLI for the PHP language intelligence service.",
	Long: `phpintel indexes PHP source trees and answers symbol and
diagnostics queries over them from the command line. It has no
completions command.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg != nil {
			return nil
		}
		loadedCfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}
		if cmd.Flags().Changed("silent") {
			loadedCfg.Silent = silentMode
		}
		cfg = loadedCfg

		s, err := api.NewService(api.Options{ConfigPath: cfgFile, Silent: cfg.Silent})
		if err != nil {
			return fmt.Errorf("error initializing service: %w", err)
		}
		svc = s
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./phpintel.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&silentMode, "silent", "s", false, "suppress informational output (overrides config)")
}
