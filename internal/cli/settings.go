package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NeoKiring/project-management-system/internal/model"
)

var (
	settingWarningDays     int
	settingDelayThreshold  float64
	settingInsuffDays      int
	settingInsuffThreshold float64
	settingCheckInterval   int
	settingRetentionDays   int
	settingEnableType      string
	settingDisableType     string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change notification settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change notification settings",
	RunE:  runSettingsSet,
}

func init() {
	settingsSetCmd.Flags().IntVar(&settingWarningDays, "warning-days", -1, "Deadline warning window in days")
	settingsSetCmd.Flags().Float64Var(&settingDelayThreshold, "delay-threshold", -1, "Progress delay threshold percent")
	settingsSetCmd.Flags().IntVar(&settingInsuffDays, "insufficient-days", -1, "Insufficient progress window in days")
	settingsSetCmd.Flags().Float64Var(&settingInsuffThreshold, "insufficient-threshold", -1, "Insufficient progress threshold percent")
	settingsSetCmd.Flags().IntVar(&settingCheckInterval, "check-interval", -1, "Background check interval in hours")
	settingsSetCmd.Flags().IntVar(&settingRetentionDays, "retention", -1, "Notification retention in days")
	settingsSetCmd.Flags().StringVar(&settingEnableType, "enable", "", "Enable a notification type")
	settingsSetCmd.Flags().StringVar(&settingDisableType, "disable", "", "Disable a notification type")

	settingsCmd.AddCommand(settingsSetCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.manager.Settings()
	fmt.Printf("Deadline warning:       %d days\n", s.DeadlineWarningDays)
	fmt.Printf("Progress delay:         below %.1f%%\n", s.ProgressDelayThreshold)
	fmt.Printf("Insufficient progress:  below %.1f%% within %d days\n",
		s.InsufficientProgressThreshold, s.InsufficientProgressDays)
	fmt.Printf("Check interval:         %d hours\n", s.CheckIntervalHours)
	fmt.Printf("Retention:              %d days\n", s.RetentionDays)
	fmt.Println("Rule types:")
	for _, typ := range model.NotificationTypes {
		state := "enabled"
		if !s.Enabled(typ) {
			state = "disabled"
		}
		fmt.Printf("  %-22s %s\n", typ, state)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.manager.Settings()
	if settingWarningDays >= 0 {
		s.DeadlineWarningDays = settingWarningDays
	}
	if settingDelayThreshold >= 0 {
		s.ProgressDelayThreshold = settingDelayThreshold
	}
	if settingInsuffDays >= 0 {
		s.InsufficientProgressDays = settingInsuffDays
	}
	if settingInsuffThreshold >= 0 {
		s.InsufficientProgressThreshold = settingInsuffThreshold
	}
	if settingCheckInterval > 0 {
		s.CheckIntervalHours = settingCheckInterval
	}
	if settingRetentionDays > 0 {
		s.RetentionDays = settingRetentionDays
	}
	if settingEnableType != "" {
		s.EnabledTypes[model.NotificationType(settingEnableType)] = true
	}
	if settingDisableType != "" {
		s.EnabledTypes[model.NotificationType(settingDisableType)] = false
	}
	if err := a.manager.UpdateSettings(s); err != nil {
		return err
	}
	fmt.Println("Settings updated.")
	return nil
}
