package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"podctl/internal/cli"
	"podctl/internal/podapi"
	"podctl/internal/podview"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newPodsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pods",
		Aliases: []string{"pod"},
		Short:   "List and manage pods",
	}
	cmd.AddCommand(
		newPodsListCmd(),
		newPodsGetCmd(),
		newPodsCreateCmd(),
		newPodsUpdateCmd(),
		newPodsDeleteCmd(),
		newPodsURLCmd(),
		newPodsTemplatesCmd(),
	)
	return cmd
}

func newPodsListCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pods",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}
			pods, err := a.Services().API.ListPods(cmd.Context())
			if err != nil {
				return err
			}
			return printPodList(cmd.OutOrStdout(), pods, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, yaml or json")
	return cmd
}

func newPodsGetCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <pod>",
		Short: "Show one pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}
			pod, err := a.Services().API.GetPod(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printPodList(cmd.OutOrStdout(), []*podview.Pod{pod}, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: table, yaml or json")
	return cmd
}

func newPodsCreateCmd() *cobra.Command {
	var (
		template string
		image    string
		port     int
	)
	cmd := &cobra.Command{
		Use:   "create <pod>",
		Short: "Create a pod from a template or image",
		Long: `Create a pod. --template picks one of the built-in templates
(see 'podctl pods templates'); --image and --port override it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildCreateRequest(args[0], template, image, port)
			if err != nil {
				return err
			}
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}
			pod, err := a.Services().API.CreatePod(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pod/%s created (%s)\n", pod.Name, pod.Status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", podapi.DefaultTemplate, "pod template")
	cmd.Flags().StringVar(&image, "image", "", "container image (overrides the template)")
	cmd.Flags().IntVar(&port, "port", 0, "Jupyter port (overrides the template)")
	return cmd
}

func buildCreateRequest(name, template, image string, port int) (podapi.CreatePodRequest, error) {
	tpl, err := podapi.LookupTemplate(template)
	if err != nil {
		return podapi.CreatePodRequest{}, err
	}
	req := tpl.Request(name)
	if image != "" {
		req.Image = image
	}
	if port != 0 {
		req.JupyterPort = port
	}
	return req, nil
}

func newPodsUpdateCmd() *cobra.Command {
	var (
		image string
		port  int
	)
	cmd := &cobra.Command{
		Use:   "update <pod>",
		Short: "Change a pod's image or port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if image == "" && port == 0 {
				return fmt.Errorf("nothing to update: set --image or --port")
			}
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}
			pod, err := a.Services().API.UpdatePod(cmd.Context(), args[0], podapi.UpdatePodRequest{Image: image, JupyterPort: port})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pod/%s updated (%s)\n", pod.Name, pod.Image)
			return nil
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "new container image")
	cmd.Flags().IntVar(&port, "port", 0, "new Jupyter port")
	return cmd
}

func newPodsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <pod>...",
		Aliases: []string{"rm"},
		Short:   "Delete pods",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}
			for _, name := range args {
				if err := a.Services().API.DeletePod(cmd.Context(), name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pod/%s deleted\n", name)
			}
			return nil
		},
	}
}

func newPodsURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <pod>",
		Short: "Print the local URL of a pod's exposed port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd)
			if err != nil {
				return err
			}
			pod, err := a.Services().API.GetPod(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			url := pod.URL()
			if url == "" {
				return fmt.Errorf("pod %s has no node port yet", pod.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}

func newPodsTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the built-in pod templates",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			tbl := cli.NewTable(cmd.OutOrStdout(), "ID", "IMAGE", "PORT", "DESCRIPTION")
			for _, t := range podapi.Templates() {
				tbl.Append(t.ID, t.Image, t.DefaultPort, t.Description)
			}
			tbl.Render("")
		},
	}
}

func printPodList(out io.Writer, pods []*podview.Pod, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(pods)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(pods)
	case "table", "":
		tbl := cli.NewTable(out, "NAME", "STATUS", "IMAGE", "URL", "CREATED")
		for _, p := range pods {
			tbl.Append(p.Name, tbl.Status(p.Status), p.Image, p.URL(), p.CreatedAt)
		}
		tbl.Render("No pods found")
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
