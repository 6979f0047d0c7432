package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/NeoKiring/project-management-system/internal/core"
)

var (
	notifyUnread bool
	notifyActive bool
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notify"},
	Short:   "List and manage notifications",
	RunE:    runNotificationsList,
}

var notificationsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the notification rules against every entity",
	RunE:  runNotificationsCheck,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotificationsRead,
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	RunE:  runNotificationsReadAll,
}

var notificationsAckCmd = &cobra.Command{
	Use:   "ack [id]",
	Short: "Acknowledge a notification",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotificationsAck,
}

var notificationsDismissCmd = &cobra.Command{
	Use:   "dismiss [id]",
	Short: "Dismiss a notification",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotificationsDismiss,
}

var notificationsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete notifications older than the retention period",
	RunE:  runNotificationsCleanup,
}

var notificationsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show notification counts by state, type and priority",
	RunE:  runNotificationsStats,
}

func init() {
	notificationsCmd.Flags().BoolVar(&notifyUnread, "unread", false, "Unread only")
	notificationsCmd.Flags().BoolVar(&notifyActive, "active", false, "Active only (not acknowledged or dismissed)")

	notificationsCmd.AddCommand(notificationsCheckCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
	notificationsCmd.AddCommand(notificationsAckCmd)
	notificationsCmd.AddCommand(notificationsDismissCmd)
	notificationsCmd.AddCommand(notificationsCleanupCmd)
	notificationsCmd.AddCommand(notificationsStatsCmd)
}

func runNotificationsList(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	list := a.manager.ListNotifications(core.NotificationFilter{
		UnreadOnly: notifyUnread,
		ActiveOnly: notifyActive,
	})
	if len(list) == 0 {
		fmt.Println("No notifications.")
		return nil
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Type", "Priority", "Entity", "Message", "State"})
	for _, n := range list {
		state := "active"
		switch {
		case n.IsDismissed():
			state = "dismissed"
		case n.IsAcknowledged():
			state = "acknowledged"
		case !n.IsRead():
			state = "unread"
		}
		tw.AppendRow(table.Row{
			shortID(n.ID), n.Type, n.Priority,
			fmt.Sprintf("%s %s", n.EntityType, n.EntityName),
			n.Message, state,
		})
	}
	tw.Render()
	return nil
}

func runNotificationsCheck(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	generated := a.manager.CheckAllNotifications()
	fmt.Printf("Generated %d notifications\n", generated)
	return nil
}

func runNotificationsRead(cmd *cobra.Command, args []string) error {
	return mutateNotification(args[0], "marked read", (*core.Manager).MarkNotificationRead)
}

func runNotificationsAck(cmd *cobra.Command, args []string) error {
	return mutateNotification(args[0], "acknowledged", (*core.Manager).AcknowledgeNotification)
}

func runNotificationsDismiss(cmd *cobra.Command, args []string) error {
	return mutateNotification(args[0], "dismissed", (*core.Manager).DismissNotification)
}

func mutateNotification(id, verb string, op func(*core.Manager, string) (bool, error)) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := op(a.manager, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notification %s not found", id)
	}
	fmt.Printf("Notification %s %s\n", id, verb)
	return nil
}

func runNotificationsReadAll(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.manager.MarkAllNotificationsRead()
	if err != nil {
		return err
	}
	fmt.Printf("Marked %d notifications read\n", count)
	return nil
}

func runNotificationsStats(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats := a.manager.NotificationStatistics()
	fmt.Printf("Notifications: %d total, %d unread, %d active\n", stats.Total, stats.Unread, stats.Active)
	if stats.Total == 0 {
		return nil
	}
	fmt.Println("By type:")
	for typ, count := range stats.ByType {
		fmt.Printf("  %-22s %d\n", typ, count)
	}
	fmt.Println("By priority:")
	for priority, count := range stats.ByPriority {
		fmt.Printf("  %-22s %d\n", priority, count)
	}
	return nil
}

func runNotificationsCleanup(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	removed, err := a.manager.CleanupNotifications()
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d expired notifications\n", removed)
	return nil
}
