package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"taskboard/internal/client"
	"taskboard/internal/tui"

	"github.com/spf13/cobra"
)

const defaultAPI = "http://localhost:5000"

type options struct {
	api    string
	output string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Command line client for the task tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validFormat(opts.output)
		},
	}

	api := os.Getenv("TASKCTL_API")
	if api == "" {
		api = defaultAPI
	}
	rootCmd.PersistentFlags().StringVar(&opts.api, "api", api, "API base URL (env TASKCTL_API)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table, json, yaml")

	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(getCmd(opts))
	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(editCmd(opts))
	rootCmd.AddCommand(deleteCmd(opts))
	rootCmd.AddCommand(tuiCmd(opts))

	return rootCmd
}

func (o *options) client() *client.Client {
	return client.New(o.api, nil)
}

func listCmd(opts *options) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := opts.client().List(cmd.Context(), status)
			if err != nil {
				return err
			}
			return printTasks(cmd.OutOrStdout(), opts.output, tasks)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "All", "filter: All, Pending, In Progress, Completed")
	return cmd
}

func getCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.client().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printTask(cmd.OutOrStdout(), opts.output, *t)
		},
	}
}

func addCmd(opts *options) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := client.TaskFields{Title: client.String(title)}
			if cmd.Flags().Changed("description") {
				fields.Description = client.String(description)
			}
			if cmd.Flags().Changed("status") {
				fields.Status = client.String(status)
			}

			t, err := opts.client().Create(cmd.Context(), fields)
			if err != nil {
				return err
			}
			return printTask(cmd.OutOrStdout(), opts.output, *t)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Pending, In Progress or Completed")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func editCmd(opts *options) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a task, only the flags given are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields client.TaskFields
			if cmd.Flags().Changed("title") {
				fields.Title = client.String(title)
			}
			if cmd.Flags().Changed("description") {
				fields.Description = client.String(description)
			}
			if cmd.Flags().Changed("status") {
				fields.Status = client.String(status)
			}
			if fields.Title == nil && fields.Description == nil && fields.Status == nil {
				return fmt.Errorf("nothing to update: pass --title, --description or --status")
			}

			t, err := opts.client().Update(cmd.Context(), args[0], fields)
			if err != nil {
				return err
			}
			return printTask(cmd.OutOrStdout(), opts.output, *t)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "new status")
	return cmd
}

func deleteCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd, "Are you sure you want to delete this task? [y/N] ") {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}

			id, err := opts.client().Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func tuiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(opts.client())
		},
	}
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
