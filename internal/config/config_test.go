package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bborn/jobdone/internal/project"
)

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	if err := os.MkdirAll(project.Dir(root), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(project.ConfigPath(root), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg := Load(t.TempDir())
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadCorruptFileReturnsDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "statuses: [unclosed\n")

	cfg := Load(root)
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "version: 1\nstatuses:\n  - backlog\n  - shipped\n")

	cfg := Load(root)
	if !reflect.DeepEqual(cfg.Statuses, []string{"backlog", "shipped"}) {
		t.Errorf("statuses = %v", cfg.Statuses)
	}
	def := Default()
	if !reflect.DeepEqual(cfg.Priorities, def.Priorities) {
		t.Errorf("priorities = %v, want defaults", cfg.Priorities)
	}
	if cfg.Defaults.Priority != def.Defaults.Priority {
		t.Errorf("default priority = %q", cfg.Defaults.Priority)
	}
	if cfg.Defaults.Template != def.Defaults.Template {
		t.Error("default template not filled in")
	}
}

func TestLoadRawMissingFileErrors(t *testing.T) {
	if _, err := LoadRaw(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(project.Dir(root), 0o755); err != nil {
		t.Fatal(err)
	}

	want := Default()
	want.Statuses = []string{"todo", "review", "done"}
	want.Defaults.Priority = "high"

	if err := Save(root, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := Load(root)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip:\ngot:  %+v\nwant: %+v", got, want)
	}
}

func TestSaveRawPreservesUnknownFields(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "version: 1\ncustom_field: kept\n")

	raw, err := LoadRaw(root)
	if err != nil {
		t.Fatalf("load raw: %v", err)
	}
	if err := SaveRaw(root, raw); err != nil {
		t.Fatalf("save raw: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(project.Dir(root), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "custom_field: kept") {
		t.Errorf("custom field lost:\n%s", data)
	}
}

func TestValidStatusAndPriority(t *testing.T) {
	cfg := Default()

	if !cfg.ValidStatus("doing") {
		t.Error("doing should be valid")
	}
	if cfg.ValidStatus("archived") {
		t.Error("archived should be invalid")
	}
	if !cfg.ValidPriority("high") {
		t.Error("high should be valid")
	}
	if cfg.ValidPriority("urgent") {
		t.Error("urgent should be invalid")
	}
}
