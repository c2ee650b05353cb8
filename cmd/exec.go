package cmd

import (
	"fmt"
	"os"

	"podctl/pkg/logging"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <pod>",
		Short: "Open an interactive terminal to a pod",
		Long: `Attach an interactive terminal session to a pod. Lines are edited
locally and sent on Enter. Press Ctrl+D or Ctrl+] to leave.

While the session owns the terminal, logs go to the file named by
logging.file in the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}

			fd := int(os.Stdin.Fd())
			if term.IsTerminal(fd) {
				cfg := a.Config()
				if file := cfg.PodctlConfig.Logging.File; file != "" {
					if err := logging.InitForFile(cfg.LogLevel(), file); err != nil {
						return err
					}
				}
				state, err := term.MakeRaw(fd)
				if err != nil {
					return fmt.Errorf("failed to enable raw mode: %w", err)
				}
				defer func() {
					if err := term.Restore(fd, state); err != nil {
						logging.Error("Exec", err, "Failed to restore terminal")
					}
				}()
			}

			return a.Exec(cmd.Context(), args[0], os.Stdin, cmd.OutOrStdout())
		},
	}
}
