// Package hooks executes user scripts on task lifecycle events.
// A hook is an executable at .jobdone/hooks/<event> (e.g. task.created);
// missing hooks are a no-op.
package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/bborn/jobdone/internal/project"
	"github.com/charmbracelet/log"
)

// Event names, matching the hook script filenames.
const (
	EventTaskCreated = "task.created"
	EventTaskMoved   = "task.moved"
	EventTaskUpdated = "task.updated"
)

const hookTimeout = 30 * time.Second

// Runner executes hooks for task events.
type Runner struct {
	hooksDir string
	logger   *log.Logger
}

// New creates a hook runner for a project root.
func New(root string) *Runner {
	return &Runner{
		hooksDir: filepath.Join(project.Dir(root), "hooks"),
		logger:   log.NewWithOptions(os.Stderr, log.Options{Prefix: "hooks"}),
	}
}

// NewSilent creates a hook runner that logs only fatal errors. Used by
// the CLI so hook chatter does not pollute command output.
func NewSilent(root string) *Runner {
	r := New(root)
	r.logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
	return r
}

// Run executes the hook script for an event, if one exists. The script
// receives the task's identity in TASK_* environment variables and runs
// in the background; failures are logged, never propagated.
func (r *Runner) Run(event, filename, status string) {
	hookPath := filepath.Join(r.hooksDir, event)
	if _, err := os.Stat(hookPath); os.IsNotExist(err) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)

	cmd := exec.CommandContext(ctx, hookPath)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("TASK_EVENT=%s", event),
		fmt.Sprintf("TASK_FILENAME=%s", filename),
		fmt.Sprintf("TASK_STATUS=%s", status),
	)

	go func() {
		defer cancel()
		output, err := cmd.CombinedOutput()
		if err != nil {
			r.logger.Error("Hook failed", "event", event, "error", err, "output", strings.TrimSpace(string(output)))
		} else {
			r.logger.Debug("Hook executed", "event", event)
		}
	}()
}
