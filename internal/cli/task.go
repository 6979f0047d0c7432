package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/NeoKiring/project-management-system/internal/model"
)

var (
	taskDescription string
	taskProcessID   string
	taskPriority    int
	taskComment     string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create or manage tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a task under a process",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskCreate,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally for one process",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show task details and status history",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskStatusCmd = &cobra.Command{
	Use:   "status [id] [status]",
	Short: "Update a task's status and roll progress up",
	Long: "Transitions a task to not_started, in_progress, completed or\n" +
		"cannot_handle. Progress is recomputed up the whole hierarchy.",
	Args: cobra.ExactArgs(2),
	RunE: runTaskStatus,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

func init() {
	taskCreateCmd.Flags().StringVarP(&taskDescription, "desc", "d", "", "Task description")
	taskCreateCmd.Flags().StringVar(&taskProcessID, "process", "", "Parent process ID (required)")
	taskCreateCmd.Flags().IntVarP(&taskPriority, "priority", "p", 3, "Priority 1 (high) to 5 (low)")
	taskCreateCmd.MarkFlagRequired("process")

	taskListCmd.Flags().StringVar(&taskProcessID, "process", "", "Parent process ID")

	taskStatusCmd.Flags().StringVarP(&taskComment, "comment", "c", "", "Comment recorded in the status history")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskStatusCmd)
	taskCmd.AddCommand(taskDeleteCmd)
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := strings.Join(args, " ")
	t, err := a.manager.CreateTask(name, taskProcessID, taskDescription)
	if err != nil {
		return err
	}
	if taskPriority != 3 {
		if !t.SetPriority(taskPriority) {
			return fmt.Errorf("priority must be 1-5")
		}
		if err := a.manager.UpdateTask(t); err != nil {
			return err
		}
	}
	fmt.Printf("Created task %s: %s\n", shortID(t.ID), t.Name)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tasks := a.manager.ListTasks(taskProcessID)
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Name", "Status", "Priority", "Process"})
	for _, t := range tasks {
		tw.AppendRow(table.Row{
			shortID(t.ID), t.Name, t.Status, t.Priority, shortID(t.ParentProcessID),
		})
	}
	tw.Render()
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	t := a.manager.GetTask(args[0])
	if t == nil {
		return fmt.Errorf("task %s not found", args[0])
	}
	fmt.Printf("Task %s\n", t.ID)
	fmt.Printf("  Name:     %s\n", t.Name)
	fmt.Printf("  Status:   %s\n", t.Status)
	fmt.Printf("  Priority: %d\n", t.Priority)
	if t.Description != "" {
		fmt.Printf("  Desc:     %s\n", t.Description)
	}
	if t.EstimatedHours != nil {
		fmt.Printf("  Estimate: %.1fh\n", *t.EstimatedHours)
	}
	if t.ActualHours != nil {
		fmt.Printf("  Actual:   %.1fh\n", *t.ActualHours)
	}
	if len(t.Tags) > 0 {
		fmt.Printf("  Tags:     %s\n", strings.Join(t.Tags, ", "))
	}
	fmt.Printf("  Created:  %s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("  Updated:  %s\n", t.UpdatedAt.Format("2006-01-02 15:04"))

	if len(t.StatusHistory) > 0 {
		fmt.Println("\n  History:")
		for _, h := range t.StatusHistory {
			from := string(h.OldStatus)
			if from == "" {
				from = "(new)"
			}
			comment := ""
			if h.Comment != "" {
				comment = fmt.Sprintf(" %q", h.Comment)
			}
			fmt.Printf("    %s  %s -> %s by %s%s\n",
				h.ChangedAt.Format("2006-01-02 15:04"), from, h.NewStatus, h.ChangedBy, comment)
		}
	}
	return nil
}

func runTaskStatus(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	status := model.TaskStatus(args[1])
	if !status.Valid() {
		return fmt.Errorf("invalid status %q (not_started, in_progress, completed, cannot_handle)", args[1])
	}
	ok, err := a.manager.UpdateTaskStatus(args[0], status, taskComment)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("task %s not found", args[0])
	}
	fmt.Printf("Task %s is now %s\n", args[0], status)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := a.manager.DeleteTask(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("task %s not found", args[0])
	}
	fmt.Printf("Deleted task %s\n", args[0])
	return nil
}
