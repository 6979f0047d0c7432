package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/NeoKiring/project-management-system/internal/model"
)

var (
	processDescription string
	processPhaseID     string
	processAssignee    string
	processStartDate   string
	processEndDate     string
	processHours       float64
	processManual      bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Create or manage processes",
}

var processCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a process under a phase",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProcessCreate,
}

var processListCmd = &cobra.Command{
	Use:   "list",
	Short: "List processes, optionally for one phase",
	RunE:  runProcessList,
}

var processShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show process details",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcessShow,
}

var processProgressCmd = &cobra.Command{
	Use:   "progress [id] [value]",
	Short: "Set process progress directly",
	Long: "Sets the progress value of a process. With --manual the value is\n" +
		"pinned and task completion no longer changes it; without, the\n" +
		"process returns to automatic mode and recomputes from its tasks.",
	Args: cobra.ExactArgs(2),
	RunE: runProcessProgress,
}

var processDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a process and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcessDelete,
}

func init() {
	processCreateCmd.Flags().StringVarP(&processDescription, "desc", "d", "", "Process description")
	processCreateCmd.Flags().StringVar(&processPhaseID, "phase", "", "Parent phase ID (required)")
	processCreateCmd.Flags().StringVarP(&processAssignee, "assignee", "a", "", "Assignee (required)")
	processCreateCmd.Flags().StringVar(&processStartDate, "start", "", "Start date (2006-01-02)")
	processCreateCmd.Flags().StringVar(&processEndDate, "end", "", "End date (2006-01-02)")
	processCreateCmd.Flags().Float64Var(&processHours, "hours", 0, "Estimated hours")
	processCreateCmd.MarkFlagRequired("phase")
	processCreateCmd.MarkFlagRequired("assignee")

	processListCmd.Flags().StringVar(&processPhaseID, "phase", "", "Parent phase ID")

	processProgressCmd.Flags().BoolVar(&processManual, "manual", false, "Pin the value against automatic recomputation")

	processCmd.AddCommand(processCreateCmd)
	processCmd.AddCommand(processListCmd)
	processCmd.AddCommand(processShowCmd)
	processCmd.AddCommand(processProgressCmd)
	processCmd.AddCommand(processDeleteCmd)
}

func runProcessCreate(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := strings.Join(args, " ")
	p, err := a.manager.CreateProcess(name, processAssignee, processPhaseID, processDescription)
	if err != nil {
		return err
	}
	changed := false
	if processStartDate != "" || processEndDate != "" {
		var start, end *model.Date
		if processStartDate != "" {
			d, err := model.ParseDate(processStartDate)
			if err != nil {
				return err
			}
			start = &d
		}
		if processEndDate != "" {
			d, err := model.ParseDate(processEndDate)
			if err != nil {
				return err
			}
			end = &d
		}
		if !p.SetDates(start, end) {
			return fmt.Errorf("start date must not be after end date")
		}
		changed = true
	}
	if processHours > 0 {
		p.SetEstimatedHours(processHours)
		changed = true
	}
	if changed {
		if err := a.manager.UpdateProcess(p); err != nil {
			return err
		}
	}
	fmt.Printf("Created process %s: %s (%s)\n", shortID(p.ID), p.Name, p.Assignee)
	return nil
}

func runProcessList(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	processes := a.manager.ListProcesses(processPhaseID)
	if len(processes) == 0 {
		fmt.Println("No processes found.")
		return nil
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Name", "Assignee", "Progress", "Mode", "Start", "End"})
	for _, p := range processes {
		mode := "auto"
		if p.ProgressManual {
			mode = "manual"
		}
		tw.AppendRow(table.Row{
			shortID(p.ID), p.Name, p.Assignee, progressCell(p.Progress),
			mode, dateOrDash(p.StartDate), dateOrDash(p.EndDate),
		})
	}
	tw.Render()
	return nil
}

func runProcessShow(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.manager.GetProcess(args[0])
	if p == nil {
		return fmt.Errorf("process %s not found", args[0])
	}
	mode := "automatic"
	if p.ProgressManual {
		mode = "manual"
	}
	fmt.Printf("Process %s\n", p.ID)
	fmt.Printf("  Name:      %s\n", p.Name)
	fmt.Printf("  Assignee:  %s\n", p.Assignee)
	fmt.Printf("  Progress:  %s (%s, %s mode)\n", progressCell(p.Progress), p.Status(), mode)
	fmt.Printf("  Period:    %s to %s\n", dateOrDash(p.StartDate), dateOrDash(p.EndDate))
	if p.EstimatedHours != nil {
		fmt.Printf("  Estimate:  %.1fh\n", *p.EstimatedHours)
	}
	if p.Description != "" {
		fmt.Printf("  Desc:      %s\n", p.Description)
	}

	tasks := a.manager.ListTasks(p.ID)
	if len(tasks) > 0 {
		fmt.Println("\n  Tasks:")
		for _, t := range tasks {
			fmt.Printf("    %s  %-14s %s\n", shortID(t.ID), t.Status, t.Name)
		}
	}
	return nil
}

func runProcessProgress(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var value float64
	if _, err := fmt.Sscanf(args[1], "%f", &value); err != nil {
		return fmt.Errorf("invalid progress value: %s", args[1])
	}
	ok, err := a.manager.SetProcessProgress(args[0], value, processManual)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("process %s not found or value out of range", args[0])
	}
	fmt.Printf("Process %s progress set to %.1f%%\n", args[0], value)
	return nil
}

func runProcessDelete(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := a.manager.DeleteProcess(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("process %s not found", args[0])
	}
	fmt.Printf("Deleted process %s\n", args[0])
	return nil
}
