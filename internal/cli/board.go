package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/NeoKiring/project-management-system/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive dashboard",
	Long: "Opens a dashboard showing project cards with progress bars,\n" +
		"a phase/process/task drill-down and the notification inbox.",
	RunE: runBoard,
}

func runBoard(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(tui.New(a.manager), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
