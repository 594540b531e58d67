package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	socketPath string
	verbose    bool
	noColor    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "craftplan",
		Short: "craftplan - Plan multi-step crafting against a storage network",
		Long: `craftplan resolves a request for some amount of a resource into the
pattern invocations, storage extractions and missing inputs needed to make it.

Planning runs locally against the configured catalog and storage, or remotely
against a running craftplan-daemon over its Unix socket (--remote).

Examples:
  craftplan plan item:stick --amount 16
  craftplan plan item:iron_gear --amount 4 --mode modulate
  craftplan plan item:stick --remote --format json
  craftplan catalog validate recipes.yaml
  craftplan catalog import recipes.yaml
  craftplan storage list
  craftplan plans list --limit 10
  craftplan plans export history.zst`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: search ., ./configs, /etc/craftplan)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", getDefaultSocketPath(),
		"Path to daemon Unix socket")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")

	// Add command groups
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewPlansCommand())
	rootCmd.AddCommand(NewCatalogCommand())
	rootCmd.AddCommand(NewStorageCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// getDefaultSocketPath returns the default socket path
func getDefaultSocketPath() string {
	if path := os.Getenv("CRAFTPLAN_SOCKET"); path != "" {
		return path
	}
	return "/tmp/craftplan-daemon.sock"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
