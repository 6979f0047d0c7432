package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NeoKiring/project-management-system/internal/core"
	"github.com/NeoKiring/project-management-system/internal/model"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive menu shell",
	Long: "Starts an interactive shell with a persistent selection of\n" +
		"project, phase and process. Type 'help' inside for commands.",
	RunE: runShell,
}

// shell holds the interactive session state: the input stream and the
// current selection at each hierarchy level.
type shell struct {
	manager *core.Manager
	service *core.NotificationService
	in      *bufio.Reader

	projectID string
	phaseID   string
	processID string
	running   bool
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s := &shell{
		manager: a.manager,
		in:      bufio.NewReader(os.Stdin),
		running: true,
	}
	s.service = core.NewNotificationService(a.manager, a.log)
	s.service.Start()
	defer s.service.Stop()

	s.welcome()
	s.help()
	for s.running {
		line, err := s.readLine(s.prompt())
		if err == io.EOF {
			fmt.Println()
			break
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if err := s.execute(line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
	fmt.Println("Bye.")
	return nil
}

func (s *shell) welcome() {
	stats := s.manager.Stats()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Project Management Shell")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Projects: %d | Phases: %d | Processes: %d | Tasks: %d\n",
		stats.Projects, stats.Phases, stats.Processes, stats.Tasks)
	if stats.ActiveCount > 0 {
		fmt.Printf("Active notifications: %d\n", stats.ActiveCount)
	}
	fmt.Println()
}

func (s *shell) help() {
	fmt.Println("Commands:")
	fmt.Println("  help, h               - show this help")
	fmt.Println("  projects, p           - list projects")
	fmt.Println("  create-project        - create a project")
	fmt.Println("  select <id|index>     - select a project")
	fmt.Println("  phases                - list phases of the selected project")
	fmt.Println("  create-phase          - create a phase")
	fmt.Println("  select-phase <n>      - select a phase")
	fmt.Println("  processes             - list processes of the selected phase")
	fmt.Println("  create-process        - create a process")
	fmt.Println("  select-process <n>    - select a process")
	fmt.Println("  tasks                 - list tasks of the selected process")
	fmt.Println("  create-task           - create a task")
	fmt.Println("  update-task <n> [st]  - update a task's status")
	fmt.Println("  status                - system overview")
	fmt.Println("  notifications, n      - list active notifications")
	fmt.Println("  settings              - show notification settings")
	fmt.Println("  sample-data           - create demo data")
	fmt.Println("  clear                 - clear the screen")
	fmt.Println("  back                  - drop the deepest selection")
	fmt.Println("  exit, quit, q         - leave the shell")
	fmt.Println()
}

func (s *shell) prompt() string {
	parts := []string{"PM"}
	if p := s.manager.GetProject(s.projectID); p != nil {
		parts = append(parts, "P:"+truncate(p.Name, 10))
	}
	if p := s.manager.GetPhase(s.phaseID); p != nil {
		parts = append(parts, "Ph:"+truncate(p.Name, 8))
	}
	if p := s.manager.GetProcess(s.processID); p != nil {
		parts = append(parts, "Pr:"+truncate(p.Name, 8))
	}
	return "[" + strings.Join(parts, "|") + "]> "
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func (s *shell) readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := s.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ask reads one interactive field, returning "" on stream end.
func (s *shell) ask(label string) string {
	line, err := s.readLine(label + ": ")
	if err != nil {
		return ""
	}
	return line
}

func (s *shell) execute(line string) error {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "help", "h":
		s.help()
	case "exit", "quit", "q":
		s.running = false
	case "projects", "p":
		s.listProjects()
	case "create-project":
		return s.createProject()
	case "select":
		return s.selectProject(args)
	case "phases":
		s.listPhases()
	case "create-phase":
		return s.createPhase()
	case "select-phase":
		return s.selectPhase(args)
	case "processes":
		s.listProcesses()
	case "create-process":
		return s.createProcess()
	case "select-process":
		return s.selectProcess(args)
	case "tasks":
		s.listTasks()
	case "create-task":
		return s.createTask()
	case "update-task":
		return s.updateTask(args)
	case "status":
		s.showStatus()
	case "notifications", "n":
		s.listNotifications()
	case "settings":
		s.showSettings()
	case "sample-data":
		return s.createSampleData()
	case "clear":
		fmt.Print("\033[2J\033[H")
	case "back":
		s.back()
	default:
		fmt.Printf("Unknown command: %s (try 'help')\n", cmd)
	}
	return nil
}

func (s *shell) back() {
	switch {
	case s.processID != "":
		s.processID = ""
	case s.phaseID != "":
		s.phaseID = ""
	case s.projectID != "":
		s.projectID = ""
	}
}

// pick resolves an id-or-index argument against an ordered id list.
func pick(arg string, ids []string) (string, bool) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(ids) {
			return ids[n-1], true
		}
		return "", false
	}
	for _, id := range ids {
		if id == arg || strings.HasPrefix(id, arg) {
			return id, true
		}
	}
	return "", false
}

func (s *shell) listProjects() {
	projects := s.manager.ListProjects()
	if len(projects) == 0 {
		fmt.Println("No projects. Try 'create-project' or 'sample-data'.")
		return
	}
	for i, p := range projects {
		fmt.Printf("%3d. %s  %-30s %-12s %s\n",
			i+1, shortID(p.ID), p.Name, p.Status, progressCell(p.Progress))
	}
}

func (s *shell) createProject() error {
	name := s.ask("Name")
	if name == "" {
		fmt.Println("Cancelled.")
		return nil
	}
	description := s.ask("Description")
	manager := s.ask("Manager")
	p, err := s.manager.CreateProject(name, description, manager)
	if err != nil {
		return err
	}
	fmt.Printf("Created project %s: %s\n", shortID(p.ID), p.Name)
	return nil
}

func (s *shell) selectProject(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: select <id|index>")
	}
	projects := s.manager.ListProjects()
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	id, ok := pick(args[0], ids)
	if !ok {
		return fmt.Errorf("no project matches %q", args[0])
	}
	s.projectID = id
	s.phaseID = ""
	s.processID = ""
	fmt.Printf("Selected project %s\n", s.manager.GetProject(id).Name)
	return nil
}

func (s *shell) listPhases() {
	if s.projectID == "" {
		fmt.Println("Select a project first.")
		return
	}
	phases := s.manager.ListPhases(s.projectID)
	if len(phases) == 0 {
		fmt.Println("No phases.")
		return
	}
	for i, p := range phases {
		fmt.Printf("%3d. %s  %-30s %s\n", i+1, shortID(p.ID), p.Name, progressCell(p.Progress))
	}
}

func (s *shell) createPhase() error {
	if s.projectID == "" {
		fmt.Println("Select a project first.")
		return nil
	}
	name := s.ask("Name")
	if name == "" {
		fmt.Println("Cancelled.")
		return nil
	}
	description := s.ask("Description")
	p, err := s.manager.CreatePhase(name, s.projectID, description)
	if err != nil {
		return err
	}
	fmt.Printf("Created phase %s: %s\n", shortID(p.ID), p.Name)
	return nil
}

func (s *shell) selectPhase(args []string) error {
	if s.projectID == "" {
		return fmt.Errorf("select a project first")
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: select-phase <id|index>")
	}
	phases := s.manager.ListPhases(s.projectID)
	ids := make([]string, len(phases))
	for i, p := range phases {
		ids[i] = p.ID
	}
	id, ok := pick(args[0], ids)
	if !ok {
		return fmt.Errorf("no phase matches %q", args[0])
	}
	s.phaseID = id
	s.processID = ""
	fmt.Printf("Selected phase %s\n", s.manager.GetPhase(id).Name)
	return nil
}

func (s *shell) listProcesses() {
	if s.phaseID == "" {
		fmt.Println("Select a phase first.")
		return
	}
	processes := s.manager.ListProcesses(s.phaseID)
	if len(processes) == 0 {
		fmt.Println("No processes.")
		return
	}
	for i, p := range processes {
		fmt.Printf("%3d. %s  %-30s %-12s %s\n",
			i+1, shortID(p.ID), p.Name, p.Assignee, progressCell(p.Progress))
	}
}

func (s *shell) createProcess() error {
	if s.phaseID == "" {
		fmt.Println("Select a phase first.")
		return nil
	}
	name := s.ask("Name")
	if name == "" {
		fmt.Println("Cancelled.")
		return nil
	}
	assignee := s.ask("Assignee")
	description := s.ask("Description")
	p, err := s.manager.CreateProcess(name, assignee, s.phaseID, description)
	if err != nil {
		return err
	}
	fmt.Printf("Created process %s: %s\n", shortID(p.ID), p.Name)
	return nil
}

func (s *shell) selectProcess(args []string) error {
	if s.phaseID == "" {
		return fmt.Errorf("select a phase first")
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: select-process <id|index>")
	}
	processes := s.manager.ListProcesses(s.phaseID)
	ids := make([]string, len(processes))
	for i, p := range processes {
		ids[i] = p.ID
	}
	id, ok := pick(args[0], ids)
	if !ok {
		return fmt.Errorf("no process matches %q", args[0])
	}
	s.processID = id
	fmt.Printf("Selected process %s\n", s.manager.GetProcess(id).Name)
	return nil
}

func (s *shell) listTasks() {
	if s.processID == "" {
		fmt.Println("Select a process first.")
		return
	}
	tasks := s.manager.ListTasks(s.processID)
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return
	}
	for i, t := range tasks {
		fmt.Printf("%3d. %s  [%s] %-14s %s\n",
			i+1, shortID(t.ID), statusMark(t.Status), t.Status, t.Name)
	}
}

func statusMark(status model.TaskStatus) string {
	switch status {
	case model.TaskCompleted:
		return "x"
	case model.TaskInProgress:
		return ">"
	case model.TaskCannotHandle:
		return "!"
	default:
		return " "
	}
}

func (s *shell) createTask() error {
	if s.processID == "" {
		fmt.Println("Select a process first.")
		return nil
	}
	name := s.ask("Name")
	if name == "" {
		fmt.Println("Cancelled.")
		return nil
	}
	description := s.ask("Description")
	t, err := s.manager.CreateTask(name, s.processID, description)
	if err != nil {
		return err
	}
	fmt.Printf("Created task %s: %s\n", shortID(t.ID), t.Name)
	return nil
}

func (s *shell) updateTask(args []string) error {
	if s.processID == "" {
		return fmt.Errorf("select a process first")
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: update-task <index> [status]")
	}
	tasks := s.manager.ListTasks(s.processID)
	index, err := strconv.Atoi(args[0])
	if err != nil || index < 1 || index > len(tasks) {
		return fmt.Errorf("invalid task index %q", args[0])
	}
	task := tasks[index-1]

	var status model.TaskStatus
	if len(args) > 1 {
		status = model.TaskStatus(args[1])
	} else {
		fmt.Printf("Current status: %s\n", task.Status)
		fmt.Println("New status: 1) not_started 2) in_progress 3) completed 4) cannot_handle")
		choice := s.ask("Choice (1-4)")
		switch choice {
		case "1":
			status = model.TaskNotStarted
		case "2":
			status = model.TaskInProgress
		case "3":
			status = model.TaskCompleted
		case "4":
			status = model.TaskCannotHandle
		default:
			return fmt.Errorf("invalid choice %q", choice)
		}
	}
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	comment := s.ask("Comment (optional)")
	ok, err := s.manager.UpdateTaskStatus(task.ID, status, comment)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("status update failed")
	}
	fmt.Printf("Task %q is now %s\n", task.Name, status)
	return nil
}

func (s *shell) showStatus() {
	stats := s.manager.Stats()
	fmt.Println("\n=== System status ===")
	fmt.Printf("Projects: %d | Phases: %d | Processes: %d | Tasks: %d\n",
		stats.Projects, stats.Phases, stats.Processes, stats.Tasks)
	for status, count := range stats.TaskStatus {
		fmt.Printf("  tasks %-14s %d\n", status, count)
	}
	fmt.Printf("Notifications: %d (%d unread, %d active)\n",
		stats.Notifications, stats.UnreadCount, stats.ActiveCount)
	fmt.Println()
}

func (s *shell) listNotifications() {
	list := s.manager.ListNotifications(core.NotificationFilter{ActiveOnly: true})
	if len(list) == 0 {
		fmt.Println("No active notifications.")
		return
	}
	for i, n := range list {
		fmt.Printf("%3d. [%s] %-22s %s\n", i+1, n.Priority, n.Type, n.Message)
	}
}

func (s *shell) showSettings() {
	settings := s.manager.Settings()
	fmt.Printf("Deadline warning: %d days | delay: <%.1f%% | insufficient: <%.1f%% within %d days\n",
		settings.DeadlineWarningDays, settings.ProgressDelayThreshold,
		settings.InsufficientProgressThreshold, settings.InsufficientProgressDays)
	fmt.Printf("Check interval: %dh | retention: %d days\n",
		settings.CheckIntervalHours, settings.RetentionDays)
}

// createSampleData seeds a small demo hierarchy so the shell has
// something to show on first run.
func (s *shell) createSampleData() error {
	project, err := s.manager.CreateProject(
		"Web Shop Relaunch", "Rebuild of the storefront and checkout", "Jordan Lee")
	if err != nil {
		return err
	}
	today := model.Today()
	end := today.AddDays(90)
	project.SetDates(&today, &end)
	if err := s.manager.UpdateProject(project); err != nil {
		return err
	}

	design, err := s.manager.CreatePhase("Requirements & Design", project.ID, "Scope and architecture")
	if err != nil {
		return err
	}
	build, err := s.manager.CreatePhase("Build & Test", project.ID, "Implementation and QA")
	if err != nil {
		return err
	}
	if _, err := s.manager.CreatePhase("Release", project.ID, "Rollout and operations"); err != nil {
		return err
	}

	gather, err := s.manager.CreateProcess("Requirements gathering", "Sam Carter", design.ID, "Stakeholder interviews")
	if err != nil {
		return err
	}
	screens, err := s.manager.CreateProcess("Screen design", "Ava Brooks", design.ID, "Wireframes and flows")
	if err != nil {
		return err
	}
	backend, err := s.manager.CreateProcess("Backend build", "Max Fischer", build.ID, "API and persistence")
	if err != nil {
		return err
	}
	if _, err := s.manager.CreateProcess("Frontend build", "Nina Patel", build.ID, "UI implementation"); err != nil {
		return err
	}

	seed := []struct {
		name, processID string
		hours           float64
		priority        int
		status          model.TaskStatus
	}{
		{"Stakeholder interviews", gather.ID, 8, 2, model.TaskCompleted},
		{"Functional requirements", gather.ID, 16, 1, model.TaskInProgress},
		{"Wireframes", screens.ID, 12, 2, model.TaskInProgress},
		{"API design", backend.ID, 20, 3, model.TaskNotStarted},
		{"Database schema", backend.ID, 24, 1, model.TaskNotStarted},
	}
	for _, item := range seed {
		t, err := s.manager.CreateTask(item.name, item.processID, "")
		if err != nil {
			return err
		}
		t.SetEstimatedHours(item.hours)
		t.SetPriority(item.priority)
		if err := s.manager.UpdateTask(t); err != nil {
			return err
		}
		if item.status != model.TaskNotStarted {
			if _, err := s.manager.UpdateTaskStatus(t.ID, item.status, "sample data"); err != nil {
				return err
			}
		}
	}

	fmt.Printf("Created sample project %q with 3 phases, 4 processes, 5 tasks\n", project.Name)
	s.projectID = project.ID
	s.phaseID = ""
	s.processID = ""
	return nil
}
