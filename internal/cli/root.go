package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TwigBush/roleguard/internal/config"
)

var (
	output   string
	showCurl bool
	baseURL  string
	cfgPath  string
)

var rootCmd = &cobra.Command{
	Use:   "roleguard",
	Short: "Role-based authorization guard for protected operations",
}

func Execute() error { return rootCmd.Execute() }

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "output format: json|yaml|table")
	rootCmd.PersistentFlags().BoolVar(&showCurl, "show-curl", false, "print equivalent curl for networked commands")
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8090", "roleguard server base URL")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")

	// Wire top level commands
	rootCmd.AddCommand(cmdInit(), cmdServe(), cmdCheck(), cmdOps(), cmdProbe(), cmdVersion())

	// Friendly hint on no args
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:   "help",
		Short: "Show help",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().Help()
		},
	})
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		fmt.Println("Use -h for help, for example: roleguard check --op reports.read --role viewer")
	}
}
