package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NeoKiring/project-management-system/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export [file.xlsx]",
	Short: "Export all entities to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file.xlsx]",
	Short: "Import entities from an Excel workbook",
	Long: "Reads a workbook in the export layout and creates all entities\n" +
		"with fresh ids, preserving the hierarchy.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := export.WriteWorkbook(a.manager, args[0]); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := export.ReadWorkbook(a.manager, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d projects, %d phases, %d processes, %d tasks\n",
		result.Projects, result.Phases, result.Processes, result.Tasks)
	return nil
}
