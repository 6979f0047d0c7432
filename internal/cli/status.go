package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a system overview",
	RunE:  runStatus,
}

var statusCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned entities and dangling references",
	RunE:  runStatusCleanup,
}

func init() {
	statusCmd.AddCommand(statusCleanupCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats := a.manager.Stats()
	fmt.Printf("Projects:  %d\n", stats.Projects)
	for status, count := range stats.ProjectStatus {
		fmt.Printf("  %-14s %d\n", status, count)
	}
	fmt.Printf("Phases:    %d\n", stats.Phases)
	fmt.Printf("Processes: %d\n", stats.Processes)
	fmt.Printf("Tasks:     %d\n", stats.Tasks)
	for status, count := range stats.TaskStatus {
		fmt.Printf("  %-14s %d\n", status, count)
	}
	fmt.Printf("Notifications: %d (%d unread, %d active)\n",
		stats.Notifications, stats.UnreadCount, stats.ActiveCount)
	fmt.Printf("Data dir:  %s (%d backups written)\n",
		a.manager.Store().Dir(), stats.StorageBackups)
	return nil
}

func runStatusCleanup(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	removed, err := a.manager.CleanupOrphans()
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d phases, %d processes, %d tasks, %d dangling references\n",
		removed["phases"], removed["processes"], removed["tasks"], removed["references"])
	return nil
}
