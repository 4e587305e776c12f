package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"biblioaccess/internal/api"
	"biblioaccess/internal/client"
	"biblioaccess/internal/session"
	"biblioaccess/internal/tasks"
)

func newTaskCommand(ctx *commandContext) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect and manage library tasks",
	}

	taskCmd.AddCommand(newTaskListCommand(ctx))
	taskCmd.AddCommand(newTaskShowCommand(ctx))
	taskCmd.AddCommand(newTaskAddCommand(ctx))
	taskCmd.AddCommand(newTaskUpdateCommand(ctx))
	taskCmd.AddCommand(newTaskDeleteCommand(ctx))
	taskCmd.AddCommand(newTaskDownloadCommand(ctx))
	taskCmd.AddCommand(newTaskAssignedCommand(ctx))
	taskCmd.AddCommand(newTransitionCommand(ctx, "start", "Take a pending task and begin working on it", tasks.StatusEnProceso))
	taskCmd.AddCommand(newTransitionCommand(ctx, "submit", "Send a task in progress to review", tasks.StatusEnRevision))
	taskCmd.AddCommand(newTransitionCommand(ctx, "approve", "Approve a task under review", tasks.StatusCompletada))
	taskCmd.AddCommand(newTransitionCommand(ctx, "deny", "Deny a task under review", tasks.StatusDenegada))

	return taskCmd
}

func newTaskListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks visible to your role",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(apiClient *client.Client, _ *session.Store) error {
				items, err := apiClient.Tasks(cmd.Context(), statusFilter)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks to show")
					return nil
				}
				out := cmd.OutOrStdout()
				table := renderTable(
					[]string{"ID", "Name", "Status", "Due", "File"},
					buildTaskRows(items, shouldColorize(out)),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Filter by workflow status")
	return cmd
}

func newTaskShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <taskID>",
		Short: "Show one task in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(apiClient *client.Client, _ *session.Store) error {
				task, err := apiClient.Task(cmd.Context(), id)
				if err != nil {
					return err
				}
				printTaskDetail(cmd, task)
				return nil
			})
		},
	}
}

func newTaskAddCommand(ctx *commandContext) *cobra.Command {
	var description string
	var due string
	var filePath string
	var start bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a task, optionally attaching a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := client.CreateTaskInput{
				Name:             strings.TrimSpace(args[0]),
				Description:      description,
				FilePath:         filePath,
				StartImmediately: start,
			}
			if due == "" {
				return errors.New("--due is required")
			}
			parsed, err := time.Parse("2006-01-02", due)
			if err != nil {
				return fmt.Errorf("invalid due date %q, expected YYYY-MM-DD", due)
			}
			input.DueDate = parsed
			out := cmd.OutOrStdout()
			if input.FilePath != "" && shouldColorize(out) {
				input.Progress = func(done, total int64) {
					if total > 0 {
						fmt.Fprintf(out, "\rUploading %s: %d%%", filepath.Base(input.FilePath), done*100/total)
					}
				}
			}
			return ctx.withClient(func(apiClient *client.Client, _ *session.Store) error {
				task, err := apiClient.CreateTask(cmd.Context(), input)
				if input.Progress != nil {
					fmt.Fprintln(out)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Created task %d (%s)\n", task.ID, task.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD, required)")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Document to attach (pdf, doc, docx)")
	cmd.Flags().BoolVar(&start, "start", false, "Start working on the task immediately")
	return cmd
}

func newTaskUpdateCommand(ctx *commandContext) *cobra.Command {
	var name string
	var description string
	var due string

	cmd := &cobra.Command{
		Use:   "update <taskID>",
		Short: "Edit a task's name, description, or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			if name == "" && description == "" && due == "" {
				return errors.New("nothing to update; pass --name, --description, or --due")
			}
			return ctx.withClient(func(apiClient *client.Client, _ *session.Store) error {
				current, err := apiClient.Task(cmd.Context(), id)
				if err != nil {
					return err
				}
				update := api.TaskUpdateRequest{
					Name:        current.Name,
					Description: current.Description,
					DueDate:     current.DueDate,
				}
				if name != "" {
					update.Name = name
				}
				if description != "" {
					update.Description = description
				}
				if due != "" {
					parsed, err := time.Parse("2006-01-02", due)
					if err != nil {
						return fmt.Errorf("invalid due date %q, expected YYYY-MM-DD", due)
					}
					update.DueDate = parsed
				}
				updated, err := apiClient.UpdateTask(cmd.Context(), id, update)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d\n", updated.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New task name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	return cmd
}

func newTaskDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <taskID>",
		Short: "Remove a task (librarian only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(apiClient *client.Client, _ *session.Store) error {
				if err := apiClient.DeleteTask(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
				return nil
			})
		},
	}
}

func newTaskDownloadCommand(ctx *commandContext) *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "download <taskID>",
		Short: "Download a task's attached document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(apiClient *client.Client, _ *session.Store) error {
				target, err := apiClient.Download(cmd.Context(), id, destDir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&destDir, "dir", "o", ".", "Directory to save the document in")
	return cmd
}

func newTaskAssignedCommand(ctx *commandContext) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "assigned",
		Short: "List tasks assigned to a volunteer (defaults to you)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(apiClient *client.Client, _ *session.Store) error {
				items, err := apiClient.AssignedTasks(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No assigned tasks")
					return nil
				}
				out := cmd.OutOrStdout()
				table := renderTable(
					[]string{"ID", "Name", "Status", "Due", "File"},
					buildTaskRows(items, shouldColorize(out)),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "Volunteer id (librarian only)")
	return cmd
}

func newTransitionCommand(ctx *commandContext, use, short string, target tasks.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <taskID>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(apiClient *client.Client, _ *session.Store) error {
				task, err := apiClient.ChangeStatus(cmd.Context(), id, string(target))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Task %d is now %s\n", task.ID, statusBadge(task.Status, shouldColorize(out)))
				return nil
			})
		},
	}
}

func parseTaskID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", value)
	}
	return id, nil
}

func printTaskDetail(cmd *cobra.Command, task *api.Task) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintf(out, "ID:          %d\n", task.ID)
	fmt.Fprintf(out, "Name:        %s\n", task.Name)
	if task.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", task.Description)
	}
	fmt.Fprintf(out, "Status:      %s\n", statusBadge(task.Status, colorize))
	fmt.Fprintf(out, "Due:         %s\n", formatDue(task.DueDate))
	if task.FileName != "" {
		fmt.Fprintf(out, "Document:    %s\n", task.FileName)
	}
	if task.AssignedVolunteer != 0 {
		fmt.Fprintf(out, "Assigned to: %d\n", task.AssignedVolunteer)
	}
	fmt.Fprintf(out, "Created:     %s\n", task.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "Updated:     %s\n", task.UpdatedAt.Local().Format("2006-01-02 15:04"))
}
