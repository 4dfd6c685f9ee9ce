// Package project locates the per-project .jobdone directory layout.
// All other packages derive paths from here so the layout is defined
// in exactly one place.
package project

import (
	"os"
	"path/filepath"
)

// DirName is the hidden folder that holds all jobdone state for a project.
const DirName = ".jobdone"

// Dir returns the .jobdone directory for a project root.
func Dir(root string) string {
	return filepath.Join(root, DirName)
}

// TasksDir returns the directory holding the status subdirectories.
func TasksDir(root string) string {
	return filepath.Join(root, DirName, "tasks")
}

// StatusDir returns the directory for a single status.
func StatusDir(root, status string) string {
	return filepath.Join(root, DirName, "tasks", status)
}

// ConfigPath returns the path of the persisted config file.
func ConfigPath(root string) string {
	return filepath.Join(root, DirName, "config.yaml")
}

// PidPath returns the path of the background web server's PID file.
func PidPath(root string) string {
	return filepath.Join(root, DirName, "web.pid")
}

// Exists reports whether the project has been initialized.
func Exists(root string) bool {
	info, err := os.Stat(Dir(root))
	return err == nil && info.IsDir()
}
