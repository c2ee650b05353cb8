package cmd

import (
	"os"

	"podctl/internal/app"

	"github.com/spf13/cobra"
)

var (
	configPath string // --config
	debugMode  bool   // --debug
)

const versionTemplate = `{{printf "podctl version %s\n" .Version}}`

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "podctl",
	Short: "Manage pods and talk to them in real time",
	Long: `podctl manages short-lived compute pods on a pod-management backend.

It lists, creates and deletes pods over the REST API, streams pod status
and logs over the real-time hub, and attaches an interactive terminal to a
pod. Run without arguments for the dashboard.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. unknown pods, failed connections)
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd, args)
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(versionTemplate)

	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

// newApplication loads configuration and wires the core for one command.
// Log output goes to the command's stderr.
func newApplication(cmd *cobra.Command) (*app.Application, error) {
	return app.NewApplication(app.NewConfig(configPath, debugMode), cmd.ErrOrStderr())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./.podctl/config.yaml, then ~/.config/podctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newPodsCmd())
	rootCmd.AddCommand(newLogsCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newExecCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
