package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/cmd/docwatcher/commands"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "docwatcher",
	Short: "docwatcher - feed documents from a shared folder into Paperless NGX",
	Long: `docwatcher - feed documents from a shared folder into Paperless NGX.

Watches a shared folder (typically a Nextcloud share) for new PDF and Word
documents, waits for each to settle, and copies it into the Paperless
consume folder with a metadata sidecar. A small HTTP surface reports
health and status and can import a file on demand.

Running docwatcher without a subcommand starts the service.

Available commands:
  serve    - Watch the shared folder and serve the HTTP endpoints
  process  - Import a single file now
  am       - Show and validate configuration
  version  - Show build information

Examples:
  docwatcher                          # Start the service
  docwatcher -vv                      # Start with debug logging
  docwatcher process /shared/a.pdf    # Import one file
  docwatcher am show --format yaml    # Show effective configuration`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			am.SetConfigFile(configPath)
		}
		return nil
	},
	RunE: commands.RunServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (overrides "+am.ConfigFileName+" discovery)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Override LOG_LEVEL (-v info, -vv debug)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.ProcessCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
