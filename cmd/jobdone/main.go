// jobdone is a personal task tracker that stores tasks as Markdown
// files in status-named directories under .jobdone/.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bborn/jobdone/internal/config"
	"github.com/bborn/jobdone/internal/hooks"
	"github.com/bborn/jobdone/internal/project"
	"github.com/bborn/jobdone/internal/task"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	// Styles for CLI output
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

func fail(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+fmt.Sprintf(format, args...)))
	os.Exit(1)
}

// requireProject exits with an error unless .jobdone/ exists.
func requireProject(root string) {
	if !project.Exists(root) {
		fail(".jobdone/ not found. Run `jobdone init` first.")
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "jobdone",
		Short:   "File-backed Kanban task tracker",
		Long:    "Track tasks as Markdown files in status folders, with a CLI and a local Kanban board.",
		Version: version,
	}
	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	rootCmd.AddCommand(
		initCmd(),
		createCmd(),
		listCmd(),
		getCmd(),
		moveCmd(),
		updateCmd(),
		migrateCmd(),
		webCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a .jobdone/ folder in the current directory",
		Run: func(cmd *cobra.Command, args []string) {
			root, _ := os.Getwd()

			if project.Exists(root) {
				fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf("⚠ .jobdone/ already exists in %s. Skipping.", root)))
				os.Exit(1)
			}

			cfg := config.Default()
			for _, status := range cfg.Statuses {
				if err := os.MkdirAll(project.StatusDir(root, status), 0o755); err != nil {
					fail("%v", err)
				}
			}
			if err := config.Save(root, cfg); err != nil {
				fail("%v", err)
			}

			fmt.Println(successStyle.Render(fmt.Sprintf("✓ Initialized .jobdone/ in %s", root)))
		},
	}
}

func createCmd() *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			root, _ := os.Getwd()
			requireProject(root)

			cfg := config.Load(root)

			if priority != "" && !cfg.ValidPriority(priority) {
				fail("Invalid priority %q. Must be one of: %s", priority, strings.Join(cfg.Priorities, ", "))
			}

			result, err := task.NewRepo(root).Create(args[0], priority, cfg)
			if err != nil {
				fail("%v", err)
			}

			hooks.NewSilent(root).Run(hooks.EventTaskCreated, result.Filename, cfg.Statuses[0])

			fmt.Println(successStyle.Render("✓ Created " + result.RelativePath))
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority level")
	return cmd
}

// jsonListOutput is the shape of `list --json`, consumed by the desktop app.
type jsonListOutput struct {
	Statuses []string                `json:"statuses"`
	Tasks    map[string][]*task.Task `json:"tasks"`
}

func listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Run: func(cmd *cobra.Command, args []string) {
			root, _ := os.Getwd()
			requireProject(root)

			cfg := config.Load(root)
			grouped, err := task.NewRepo(root).ReadAll(cfg.Statuses)
			if err != nil {
				fail("%v", err)
			}

			if asJSON {
				out, err := json.MarshalIndent(jsonListOutput{Statuses: cfg.Statuses, Tasks: grouped}, "", "  ")
				if err != nil {
					fail("%v", err)
				}
				fmt.Println(string(out))
				return
			}

			for _, status := range cfg.Statuses {
				tasks := grouped[status]
				fmt.Println(boldStyle.Render(fmt.Sprintf("\n%s (%d)", strings.ToUpper(status), len(tasks))))
				if len(tasks) == 0 {
					fmt.Println(dimStyle.Render("  No tasks"))
				}
				for _, t := range tasks {
					fmt.Printf("  %s  %s  [%s]\n", t.Filename, t.Title, renderPriority(t.Priority))
				}
			}
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderPriority(priority string) string {
	switch priority {
	case "high":
		return errorStyle.Render(priority)
	case "low":
		return dimStyle.Render(priority)
	default:
		return warnStyle.Render(priority)
	}
}

// jsonTaskDetail is the shape of `get`, matching the single-task API response.
type jsonTaskDetail struct {
	*task.Task
	ID          int               `json:"id"`
	FrontMatter map[string]string `json:"frontMatter"`
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get full details of a task by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseTaskID(args[0])

			root, _ := os.Getwd()
			requireProject(root)

			cfg := config.Load(root)
			t, err := task.NewRepo(root).FindByID(cfg.Statuses, id)
			if err != nil {
				if errors.Is(err, task.ErrNotFound) {
					fail("Task %d not found.", id)
				}
				fail("%v", err)
			}

			out, err := json.MarshalIndent(jsonTaskDetail{
				Task:        t,
				ID:          t.ID,
				FrontMatter: t.FrontMatter.StringMap(),
			}, "", "  ")
			if err != nil {
				fail("%v", err)
			}
			fmt.Println(string(out))
		},
	}
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <filename> <target-status>",
		Short: "Move a task to a different status",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			filename, target := args[0], args[1]

			root, _ := os.Getwd()
			requireProject(root)

			cfg := config.Load(root)
			if !cfg.ValidStatus(target) {
				fail("Invalid status %q. Valid statuses: %s", target, strings.Join(cfg.Statuses, ", "))
			}

			repo := task.NewRepo(root)
			grouped, err := repo.ReadAll(cfg.Statuses)
			if err != nil {
				fail("%v", err)
			}

			current := ""
			for _, status := range cfg.Statuses {
				for _, t := range grouped[status] {
					if t.Filename == filename {
						current = status
						break
					}
				}
				if current != "" {
					break
				}
			}
			if current == "" {
				fail("Task %q not found.", filename)
			}
			if current == target {
				fmt.Println(warnStyle.Render(fmt.Sprintf("Task is already in %q.", target)))
				return
			}

			if err := repo.Move(filename, current, target); err != nil {
				fail("%v", err)
			}

			hooks.NewSilent(root).Run(hooks.EventTaskMoved, filename, target)

			fmt.Println(successStyle.Render(fmt.Sprintf("Moved %s: %s → %s", filename, current, target)))
		},
	}
}

func updateCmd() *cobra.Command {
	var sets []string
	var body string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task's fields or body",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseTaskID(args[0])

			bodySet := cmd.Flags().Changed("body")
			if len(sets) == 0 && !bodySet {
				fail("Provide at least one update (--set or --body).")
			}

			root, _ := os.Getwd()
			requireProject(root)

			cfg := config.Load(root)

			frontMatter := map[string]any{}
			for _, kv := range sets {
				eq := strings.Index(kv, "=")
				if eq < 0 {
					fail("Invalid format %q. Use key=value.", kv)
				}
				frontMatter[kv[:eq]] = kv[eq+1:]
			}

			if p, ok := frontMatter["priority"].(string); ok && !cfg.ValidPriority(p) {
				fail("Invalid priority %q. Must be one of: %s", p, strings.Join(cfg.Priorities, ", "))
			}
			if t, ok := frontMatter["title"].(string); ok && strings.TrimSpace(t) == "" {
				fail("Title cannot be empty.")
			}

			upd := task.Update{}
			if len(frontMatter) > 0 {
				upd.FrontMatter = frontMatter
			}
			if bodySet {
				upd.Body = &body
			}

			result, err := task.NewRepo(root).ApplyUpdate(cfg.Statuses, id, upd)
			if err != nil {
				if errors.Is(err, task.ErrNotFound) {
					fail("Task %d not found.", id)
				}
				fail("%v", err)
			}

			hooks.NewSilent(root).Run(hooks.EventTaskUpdated, result.Filename, result.Status)

			fmt.Println(successStyle.Render(fmt.Sprintf("Updated task %d (%s)", id, result.Filename)))
		},
	}
	cmd.Flags().StringSliceVarP(&sets, "set", "s", nil, "Set front matter fields (key=value)")
	cmd.Flags().StringVar(&body, "body", "", "Replace markdown body")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate config and folder structure to the latest version",
		Run: func(cmd *cobra.Command, args []string) {
			root, _ := os.Getwd()
			requireProject(root)

			raw, err := config.LoadRaw(root)
			if err != nil {
				fail("Could not read .jobdone/config.yaml")
			}

			migrated, changes := config.Migrate(raw)
			if len(changes) == 0 {
				fmt.Println(successStyle.Render("Nothing to migrate — config is up to date."))
				return
			}

			if err := config.SaveRaw(root, migrated); err != nil {
				fail("%v", err)
			}

			var created []string
			if statuses, ok := migrated["statuses"].([]any); ok {
				for _, s := range statuses {
					status, ok := s.(string)
					if !ok {
						continue
					}
					dir := project.StatusDir(root, status)
					if _, err := os.Stat(dir); os.IsNotExist(err) {
						if err := os.MkdirAll(dir, 0o755); err != nil {
							fail("%v", err)
						}
						created = append(created, status)
					}
				}
			}

			fmt.Println(successStyle.Render("Migration complete:"))
			for _, change := range changes {
				fmt.Println(successStyle.Render("  - " + change))
			}
			for _, status := range created {
				fmt.Println(successStyle.Render("  - Created folder: " + filepath.Join(project.DirName, "tasks", status) + "/"))
			}
		},
	}
}

func parseTaskID(arg string) int {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		fail("ID must be a positive number.")
	}
	return id
}
