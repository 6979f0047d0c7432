package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/NeoKiring/project-management-system/internal/model"
)

var (
	phaseDescription string
	phaseProjectID   string
	phaseEndDate     string
	phaseMilestone   string
)

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Create or manage phases",
}

var phaseCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a phase under a project",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPhaseCreate,
}

var phaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List phases, optionally for one project",
	RunE:  runPhaseList,
}

var phaseShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show phase details",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhaseShow,
}

var phaseDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a phase and everything under it",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhaseDelete,
}

func init() {
	phaseCreateCmd.Flags().StringVarP(&phaseDescription, "desc", "d", "", "Phase description")
	phaseCreateCmd.Flags().StringVarP(&phaseProjectID, "project", "p", "", "Parent project ID (required)")
	phaseCreateCmd.Flags().StringVar(&phaseEndDate, "end", "", "End date (2006-01-02)")
	phaseCreateCmd.Flags().StringVar(&phaseMilestone, "milestone", "", "Milestone label")
	phaseCreateCmd.MarkFlagRequired("project")

	phaseListCmd.Flags().StringVarP(&phaseProjectID, "project", "p", "", "Parent project ID")

	phaseCmd.AddCommand(phaseCreateCmd)
	phaseCmd.AddCommand(phaseListCmd)
	phaseCmd.AddCommand(phaseShowCmd)
	phaseCmd.AddCommand(phaseDeleteCmd)
}

func runPhaseCreate(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := strings.Join(args, " ")
	p, err := a.manager.CreatePhase(name, phaseProjectID, phaseDescription)
	if err != nil {
		return err
	}
	changed := false
	if phaseEndDate != "" {
		end, err := model.ParseDate(phaseEndDate)
		if err != nil {
			return err
		}
		p.SetEndDate(&end)
		changed = true
	}
	if phaseMilestone != "" {
		p.Milestone = phaseMilestone
		changed = true
	}
	if changed {
		if err := a.manager.UpdatePhase(p); err != nil {
			return err
		}
	}
	fmt.Printf("Created phase %s: %s\n", shortID(p.ID), p.Name)
	return nil
}

func runPhaseList(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	phases := a.manager.ListPhases(phaseProjectID)
	if len(phases) == 0 {
		fmt.Println("No phases found.")
		return nil
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Name", "Progress", "End", "Milestone", "Project"})
	for _, p := range phases {
		tw.AppendRow(table.Row{
			shortID(p.ID), p.Name, progressCell(p.Progress),
			dateOrDash(p.EndDate), p.Milestone, shortID(p.ParentProjectID),
		})
	}
	tw.Render()
	return nil
}

func runPhaseShow(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.manager.GetPhase(args[0])
	if p == nil {
		return fmt.Errorf("phase %s not found", args[0])
	}
	fmt.Printf("Phase %s\n", p.ID)
	fmt.Printf("  Name:      %s\n", p.Name)
	fmt.Printf("  Progress:  %s (%s)\n", progressCell(p.Progress), p.Status())
	fmt.Printf("  End:       %s\n", dateOrDash(p.EndDate))
	if p.Milestone != "" {
		fmt.Printf("  Milestone: %s\n", p.Milestone)
	}
	if p.Description != "" {
		fmt.Printf("  Desc:      %s\n", p.Description)
	}
	if len(p.Deliverables) > 0 {
		fmt.Printf("  Deliverables: %s\n", strings.Join(p.Deliverables, ", "))
	}

	processes := a.manager.ListProcesses(p.ID)
	if len(processes) > 0 {
		fmt.Println("\n  Processes:")
		for _, proc := range processes {
			fmt.Printf("    %s  %-30s %-12s %s\n",
				shortID(proc.ID), proc.Name, proc.Assignee, progressCell(proc.Progress))
		}
	}
	return nil
}

func runPhaseDelete(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := a.manager.DeletePhase(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("phase %s not found", args[0])
	}
	fmt.Printf("Deleted phase %s\n", args[0])
	return nil
}
