package task

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bborn/jobdone/internal/config"
	"github.com/bborn/jobdone/internal/project"
)

func testRepo(t *testing.T) (*Repo, config.Config, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	for _, status := range cfg.Statuses {
		if err := os.MkdirAll(project.StatusDir(root, status), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return NewRepo(root), cfg, root
}

func writeTask(t *testing.T, root, status, filename, content string) {
	t.Helper()
	path := filepath.Join(project.StatusDir(root, status), filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateAssignsSequentialIndexes(t *testing.T) {
	repo, cfg, _ := testRepo(t)

	first, err := repo.Create("First task", "", cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Filename != "1-first-task.md" {
		t.Errorf("filename = %q, want 1-first-task.md", first.Filename)
	}

	second, err := repo.Create("Second task", "high", cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if second.Filename != "2-second-task.md" {
		t.Errorf("filename = %q, want 2-second-task.md", second.Filename)
	}
}

func TestNextIndexSkipsGaps(t *testing.T) {
	repo, cfg, root := testRepo(t)

	writeTask(t, root, "todo", "2-old.md", "content\n")
	writeTask(t, root, "done", "7-finished.md", "content\n")
	writeTask(t, root, "doing", "notes.md", "no prefix\n")

	if got := repo.NextIndex(cfg.Statuses); got != 8 {
		t.Errorf("NextIndex = %d, want 8", got)
	}
}

func TestNextIndexEmptyProject(t *testing.T) {
	repo, cfg, _ := testRepo(t)
	if got := repo.NextIndex(cfg.Statuses); got != 1 {
		t.Errorf("NextIndex = %d, want 1", got)
	}
}

func TestCreateThenFindByID(t *testing.T) {
	repo, cfg, _ := testRepo(t)

	if _, err := repo.Create("Review the release notes", "low", cfg); err != nil {
		t.Fatalf("create: %v", err)
	}

	tk, err := repo.FindByID(cfg.Statuses, 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if tk.Title != "Review the release notes" {
		t.Errorf("title = %q", tk.Title)
	}
	if tk.Priority != "low" {
		t.Errorf("priority = %q", tk.Priority)
	}
	if tk.Status != "todo" {
		t.Errorf("status = %q", tk.Status)
	}
}

func TestCreateRejectsEmptySlug(t *testing.T) {
	repo, cfg, root := testRepo(t)

	_, err := repo.Create("🎉🎉", "", cfg)
	if !errors.Is(err, ErrEmptySlug) {
		t.Fatalf("err = %v, want ErrEmptySlug", err)
	}

	entries, err := os.ReadDir(project.StatusDir(root, "todo"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files written, found %d", len(entries))
	}
}

func TestReadAllMissingStatusDir(t *testing.T) {
	repo := NewRepo(t.TempDir())

	grouped, err := repo.ReadAll([]string{"todo", "doing", "done"})
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	for status, tasks := range grouped {
		if len(tasks) != 0 {
			t.Errorf("%s: expected empty list, got %d tasks", status, len(tasks))
		}
	}
}

func TestReadAllSkipsNonMarkdown(t *testing.T) {
	repo, cfg, root := testRepo(t)

	writeTask(t, root, "todo", "1-real.md", "content\n")
	writeTask(t, root, "todo", "scratch.txt", "not a task\n")
	if err := os.MkdirAll(filepath.Join(project.StatusDir(root, "todo"), "subdir.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	grouped, err := repo.ReadAll(cfg.Statuses)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(grouped["todo"]) != 1 {
		t.Errorf("todo tasks = %d, want 1", len(grouped["todo"]))
	}
}

func TestMoveKeepsContent(t *testing.T) {
	repo, _, root := testRepo(t)

	content := "---\ntitle: Move me\n---\n\nBody.\n"
	writeTask(t, root, "todo", "1-move-me.md", content)

	if err := repo.Move("1-move-me.md", "todo", "doing"); err != nil {
		t.Fatalf("move: %v", err)
	}

	if _, err := os.Stat(filepath.Join(project.StatusDir(root, "todo"), "1-move-me.md")); !os.IsNotExist(err) {
		t.Error("source file still present")
	}
	data, err := os.ReadFile(filepath.Join(project.StatusDir(root, "doing"), "1-move-me.md"))
	if err != nil {
		t.Fatalf("read moved file: %v", err)
	}
	if string(data) != content {
		t.Errorf("content changed across move:\n%s", data)
	}

	// Moving back restores the original location with identical content.
	if err := repo.Move("1-move-me.md", "doing", "todo"); err != nil {
		t.Fatalf("move back: %v", err)
	}
	data, err = os.ReadFile(filepath.Join(project.StatusDir(root, "todo"), "1-move-me.md"))
	if err != nil {
		t.Fatalf("read restored file: %v", err)
	}
	if string(data) != content {
		t.Errorf("content changed across round trip:\n%s", data)
	}
}

func TestMoveMissingSourceFails(t *testing.T) {
	repo, _, _ := testRepo(t)

	if err := repo.Move("9-ghost.md", "todo", "doing"); err == nil {
		t.Fatal("expected error for missing source file")
	}
}

func TestMoveCreatesDestinationDir(t *testing.T) {
	repo, _, root := testRepo(t)

	writeTask(t, root, "todo", "1-task.md", "content\n")
	if err := os.RemoveAll(project.StatusDir(root, "done")); err != nil {
		t.Fatal(err)
	}

	if err := repo.Move("1-task.md", "todo", "done"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := os.Stat(filepath.Join(project.StatusDir(root, "done"), "1-task.md")); err != nil {
		t.Errorf("moved file missing: %v", err)
	}
}

func TestApplyUpdatePatchesFrontMatter(t *testing.T) {
	repo, cfg, root := testRepo(t)

	writeTask(t, root, "todo", "1-fix-bug.md",
		"---\ntitle: Fix bug\nassignee: sam\npriority: low\n---\n\nBody.\n")

	res, err := repo.ApplyUpdate(cfg.Statuses, 1, Update{
		FrontMatter: map[string]any{"priority": "high"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Filename != "1-fix-bug.md" {
		t.Errorf("filename = %q, want unchanged", res.Filename)
	}

	data, err := os.ReadFile(filepath.Join(project.StatusDir(root, "todo"), "1-fix-bug.md"))
	if err != nil {
		t.Fatal(err)
	}
	want := "---\ntitle: Fix bug\nassignee: sam\npriority: high\n---\n\nBody.\n"
	if string(data) != want {
		t.Errorf("file after update:\ngot:  %q\nwant: %q", data, want)
	}
}

func TestApplyUpdateRenamesOnTitleChange(t *testing.T) {
	repo, cfg, root := testRepo(t)

	writeTask(t, root, "doing", "4-old-title.md",
		"---\ntitle: Old title\n---\n\nBody.\n")

	res, err := repo.ApplyUpdate(cfg.Statuses, 4, Update{
		FrontMatter: map[string]any{"title": "Brand new title"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Filename != "4-brand-new-title.md" {
		t.Errorf("filename = %q, want 4-brand-new-title.md", res.Filename)
	}
	if res.Status != "doing" {
		t.Errorf("status = %q, want doing", res.Status)
	}

	dir := project.StatusDir(root, "doing")
	if _, err := os.Stat(filepath.Join(dir, "4-old-title.md")); !os.IsNotExist(err) {
		t.Error("old file still present after rename")
	}
	if _, err := os.Stat(filepath.Join(dir, "4-brand-new-title.md")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
}

func TestApplyUpdateRenameCollision(t *testing.T) {
	repo, cfg, root := testRepo(t)

	writeTask(t, root, "todo", "1-first.md", "---\ntitle: First\n---\n")
	writeTask(t, root, "todo", "1-taken.md", "---\ntitle: Taken\n---\n")

	_, err := repo.ApplyUpdate(cfg.Statuses, 1, Update{
		FrontMatter: map[string]any{"title": "Taken"},
	})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("err = %v, want ErrExists", err)
	}

	// The losing file must be untouched.
	data, readErr := os.ReadFile(filepath.Join(project.StatusDir(root, "todo"), "1-first.md"))
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(data) != "---\ntitle: First\n---\n" {
		t.Errorf("source file modified despite collision:\n%s", data)
	}
}

func TestApplyUpdateReplacesBody(t *testing.T) {
	repo, cfg, root := testRepo(t)

	writeTask(t, root, "todo", "1-task.md",
		"---\ntitle: Task\n---\n\nOld body.\n")

	body := "New body.\n\nWith two paragraphs."
	if _, err := repo.ApplyUpdate(cfg.Statuses, 1, Update{Body: &body}); err != nil {
		t.Fatalf("update: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(project.StatusDir(root, "todo"), "1-task.md"))
	if err != nil {
		t.Fatal(err)
	}
	want := "---\ntitle: Task\n---\n\nNew body.\n\nWith two paragraphs.\n"
	if string(data) != want {
		t.Errorf("file after body update:\ngot:  %q\nwant: %q", data, want)
	}
}

func TestApplyUpdateKeepsFilenameWithoutTitleKey(t *testing.T) {
	repo, cfg, root := testRepo(t)

	// No front matter: the display title comes from the filename.
	writeTask(t, root, "todo", "2-fallback-task.md", "Just a body.\n")

	res, err := repo.ApplyUpdate(cfg.Statuses, 2, Update{
		FrontMatter: map[string]any{"priority": "high"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Filename != "2-fallback-task.md" {
		t.Errorf("filename = %q, want unchanged", res.Filename)
	}
	if _, err := os.Stat(filepath.Join(project.StatusDir(root, "todo"), "2-fallback-task.md")); err != nil {
		t.Errorf("file missing: %v", err)
	}
}

func TestApplyUpdateNotFound(t *testing.T) {
	repo, cfg, _ := testRepo(t)

	_, err := repo.ApplyUpdate(cfg.Statuses, 99, Update{
		FrontMatter: map[string]any{"priority": "high"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateSubstitutesTemplate(t *testing.T) {
	repo, cfg, root := testRepo(t)

	res, err := repo.Create("Template check", "high", cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(project.StatusDir(root, "todo"), res.Filename))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if strings.Contains(content, "{{") {
		t.Errorf("unsubstituted placeholder in:\n%s", content)
	}
	if !strings.Contains(content, "title: Template check\n") {
		t.Errorf("missing title line in:\n%s", content)
	}
	if !strings.Contains(content, "priority: high\n") {
		t.Errorf("missing priority line in:\n%s", content)
	}
}
