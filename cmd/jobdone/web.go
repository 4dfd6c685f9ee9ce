package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/bborn/jobdone/internal/config"
	"github.com/bborn/jobdone/internal/project"
	"github.com/bborn/jobdone/internal/web"
	"github.com/spf13/cobra"
)

func webCmd() *cobra.Command {
	var port int
	var detach bool
	var stop bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Start a Kanban board web UI",
		Run: func(cmd *cobra.Command, args []string) {
			root, _ := os.Getwd()

			if stop {
				stopWebServer(root)
				return
			}

			requireProject(root)

			if detach {
				startDetached(root, port)
				return
			}

			runWebServer(root, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 4040, "port to listen on")
	cmd.Flags().BoolVarP(&detach, "detach", "d", false, "run in the background")
	cmd.Flags().BoolVar(&stop, "stop", false, "stop a running background server")
	return cmd
}

func runWebServer(root string, port int) {
	server := web.New(web.Config{
		Root:   root,
		Addr:   fmt.Sprintf(":%d", port),
		Config: config.Load(root),
	})

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Kanban board running at http://localhost:%d", port)))
	fmt.Println(dimStyle.Render("  Press Ctrl+C to stop"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.Start(ctx); err != nil {
		fail("%v", err)
	}
}

// startDetached re-execs the binary in the background and records its
// PID so `jobdone web --stop` can find it later.
func startDetached(root string, port int) {
	exe, err := os.Executable()
	if err != nil {
		fail("%v", err)
	}

	child := exec.Command(exe, "web", "--port", strconv.Itoa(port))
	child.Dir = root
	child.Stdin = nil
	child.Stdout = nil
	child.Stderr = nil
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := child.Start(); err != nil {
		fail("%v", err)
	}

	pidPath := project.PidPath(root)
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(child.Process.Pid)), 0o644); err != nil {
		fail("%v", err)
	}
	child.Process.Release()

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Kanban board running in background at http://localhost:%d", port)))
	fmt.Println(dimStyle.Render(fmt.Sprintf("  PID %d saved to %s", child.Process.Pid, pidPath)))
	fmt.Println(dimStyle.Render("  Run `jobdone web --stop` to stop"))
}

func stopWebServer(root string) {
	pidPath := project.PidPath(root)

	data, err := os.ReadFile(pidPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("No running server found (no PID file)."))
		os.Exit(1)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		os.Remove(pidPath)
		fail("Corrupt PID file removed.")
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("Process %d not found (already stopped?).", pid)))
	} else {
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Stopped server (PID %d)", pid)))
	}

	os.Remove(pidPath)
}
