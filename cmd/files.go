package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"podctl/internal/cli"
	"podctl/internal/podapi"

	"github.com/spf13/cobra"
)

func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List, upload and download files in a pod",
	}
	cmd.AddCommand(newFilesListCmd(), newFilesUploadCmd(), newFilesDownloadCmd())
	return cmd
}

func newFilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls <pod> [path]",
		Aliases: []string{"list"},
		Short:   "List a directory inside a pod",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "/"
			if len(args) == 2 {
				dir = args[1]
			}
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}
			files, err := a.Services().API.ListFiles(cmd.Context(), args[0], dir)
			if err != nil {
				return err
			}
			printFiles(cmd.OutOrStdout(), files)
			return nil
		},
	}
}

func printFiles(out io.Writer, files []podapi.FileInfo) {
	tbl := cli.NewTable(out, "NAME", "SIZE", "MODIFIED")
	for _, f := range files {
		name, size := f.Name, podapi.FormatSize(f.Size)
		if f.IsDirectory {
			name += "/"
			size = ""
		}
		var modified string
		if t := f.Modified(); !t.IsZero() {
			modified = t.Local().Format("2006-01-02 15:04")
		}
		tbl.Append(name, size, modified)
	}
	tbl.Render("Empty directory")
}

func newFilesUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <pod> <local-file> [remote-dir]",
		Short: "Upload a local file into a pod",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "/"
			if len(args) == 3 {
				dir = args[2]
			}
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}
			progress := progressPrinter(cmd.ErrOrStderr(), filepath.Base(args[1]))
			resp, err := a.Services().API.UploadFile(cmd.Context(), args[0], args[1], dir, progress)
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s\n", resp.FilePath)
			return nil
		},
	}
}

// progressPrinter redraws a single percentage line, only when the value
// changes.
func progressPrinter(out io.Writer, name string) podapi.Progress {
	last := -1
	return func(sent, total int64) {
		pct := podapi.Percent(sent, total)
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(out, "\ruploading %s: %3d%%", name, pct)
	}
}

func newFilesDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <pod> <remote-path> [local-path]",
		Short: "Download a file from a pod",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			local := podapi.BaseName(args[1])
			if len(args) == 3 {
				local = args[2]
			}
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}
			f, err := os.Create(local)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", local, err)
			}
			n, err := a.Services().API.DownloadFile(cmd.Context(), args[0], args[1], f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				_ = os.Remove(local)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s (%s)\n", local, podapi.FormatSize(n))
			return nil
		},
	}
}
