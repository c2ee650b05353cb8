package cmd

import (
	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs <pod>",
		Short: "Print a pod's logs",
		Long: `Print the log history of a pod. With -f, keep streaming new lines
over the real-time hub until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}
			return a.Logs(cmd.Context(), cmd.OutOrStdout(), args[0], follow)
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "stream new log lines")
	return cmd
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [pod...]",
		Short: "Stream pod status changes",
		Long: `Print the current pods, then one line per status change, until
interrupted. With pod names, only those pods are watched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}
			return a.Watch(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive pod dashboard",
		Args:  cobra.NoArgs,
		RunE:  runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := newApplication(cmd)
	if err != nil {
		return err
	}
	return a.RunDashboard(cmd.Context())
}
