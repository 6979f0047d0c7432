package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/NeoKiring/project-management-system/internal/model"
)

var (
	projectDescription string
	projectManager     string
	projectSearchName  string
	projectStatus      string
	projectCloneName   string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create or manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new project",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show project details",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a project and everything under it",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

var projectCloneCmd = &cobra.Command{
	Use:   "clone [id]",
	Short: "Deep-copy a project with its whole hierarchy",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectClone,
}

func init() {
	projectCreateCmd.Flags().StringVarP(&projectDescription, "desc", "d", "", "Project description")
	projectCreateCmd.Flags().StringVarP(&projectManager, "manager", "m", "", "Project manager")

	projectListCmd.Flags().StringVar(&projectSearchName, "name", "", "Filter by name substring")
	projectListCmd.Flags().StringVar(&projectStatus, "status", "", "Filter by status")

	projectCloneCmd.Flags().StringVar(&projectCloneName, "name", "", "Name for the copy (default: source name + \" (copy)\")")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectCloneCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := strings.Join(args, " ")
	p, err := a.manager.CreateProject(name, projectDescription, projectManager)
	if err != nil {
		return err
	}
	fmt.Printf("Created project %s: %s\n", shortID(p.ID), p.Name)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	projects := a.manager.SearchProjects(projectSearchName, "", model.ProjectStatus(projectStatus))
	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}
	renderProjects(projects)
	return nil
}

func renderProjects(projects []*model.Project) {
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Name", "Status", "Progress", "Start", "End", "Manager"})
	for _, p := range projects {
		tw.AppendRow(table.Row{
			shortID(p.ID), p.Name, p.Status, progressCell(p.Progress),
			dateOrDash(p.StartDate), dateOrDash(p.EndDate), p.Manager,
		})
	}
	tw.Render()
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.manager.GetProject(args[0])
	if p == nil {
		return fmt.Errorf("project %s not found", args[0])
	}
	fmt.Printf("Project %s\n", p.ID)
	fmt.Printf("  Name:      %s\n", p.Name)
	fmt.Printf("  Status:    %s", p.Status)
	if p.StatusManual {
		fmt.Printf(" (manual)")
	}
	fmt.Println()
	fmt.Printf("  Progress:  %s\n", progressCell(p.Progress))
	fmt.Printf("  Period:    %s to %s\n", dateOrDash(p.StartDate), dateOrDash(p.EndDate))
	if p.Manager != "" {
		fmt.Printf("  Manager:   %s\n", p.Manager)
	}
	if p.Description != "" {
		fmt.Printf("  Desc:      %s\n", p.Description)
	}
	fmt.Printf("  Priority:  %d  Risk: %d\n", p.Priority, p.RiskLevel)
	if len(p.Tags) > 0 {
		fmt.Printf("  Tags:      %s\n", strings.Join(p.Tags, ", "))
	}

	phases := a.manager.ListPhases(p.ID)
	if len(phases) > 0 {
		fmt.Println("\n  Phases:")
		for _, phase := range phases {
			fmt.Printf("    %s  %-30s %s\n", shortID(phase.ID), phase.Name, progressCell(phase.Progress))
		}
	}
	return nil
}

func runProjectClone(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	clone, err := a.manager.CloneProject(args[0], projectCloneName)
	if err != nil {
		return err
	}
	fmt.Printf("Cloned project %s: %s\n", shortID(clone.ID), clone.Name)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := a.manager.DeleteProject(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("project %s not found", args[0])
	}
	fmt.Printf("Deleted project %s\n", args[0])
	return nil
}
