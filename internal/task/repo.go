package task

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bborn/jobdone/internal/config"
	"github.com/bborn/jobdone/internal/project"
	"github.com/natefinch/atomic"
)

var (
	// ErrNotFound is returned when no task matches the requested ID.
	ErrNotFound = errors.New("task not found")

	// ErrEmptySlug is returned when a title contains no characters
	// usable in a filename. Checked before any filesystem write.
	ErrEmptySlug = errors.New("title produces an empty slug")

	// ErrExists is returned when a rename would overwrite another task.
	ErrExists = errors.New("task file already exists")
)

// Repo reads and writes task files for one project. It is the only
// component that touches the status directories.
type Repo struct {
	root string
}

// NewRepo creates a repository rooted at the project directory.
func NewRepo(root string) *Repo {
	return &Repo{root: root}
}

// ReadAll lists every task grouped by status, statuses in configured
// order. A status directory that does not exist yields an empty list.
func (r *Repo) ReadAll(statuses []string) (map[string][]*Task, error) {
	result := make(map[string][]*Task, len(statuses))

	for _, status := range statuses {
		result[status] = []*Task{}

		entries, err := os.ReadDir(project.StatusDir(r.root, status))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("list %s: %w", status, err)
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".md") {
				continue
			}
			t, err := r.read(status, name)
			if err != nil {
				return nil, err
			}
			result[status] = append(result[status], t)
		}
	}
	return result, nil
}

// FindByID scans the status directories in configured order and returns
// the first task whose filename prefix matches id.
func (r *Repo) FindByID(statuses []string, id int) (*Task, error) {
	grouped, err := r.ReadAll(statuses)
	if err != nil {
		return nil, err
	}
	for _, status := range statuses {
		for _, t := range grouped[status] {
			if t.ID == id {
				return t, nil
			}
		}
	}
	return nil, ErrNotFound
}

// NextIndex returns one more than the highest numeric filename prefix
// found across all status directories, or 1 on an empty project.
// Concurrent callers can compute the same index; that race is accepted
// for a single-user local tool.
func (r *Repo) NextIndex(statuses []string) int {
	maxIndex := 0
	for _, status := range statuses {
		entries, err := os.ReadDir(project.StatusDir(r.root, status))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasSuffix(name, ".md") {
				continue
			}
			if id, ok := ParseID(name); ok && id > maxIndex {
				maxIndex = id
			}
		}
	}
	return maxIndex + 1
}

// CreateResult reports where a created task landed.
type CreateResult struct {
	Filename     string
	RelativePath string
}

// Create writes a new task file into the first configured status from
// the configured template. Priority defaults to the configured default
// when empty.
func (r *Repo) Create(title, priority string, cfg config.Config) (CreateResult, error) {
	slug := Slugify(title)
	if slug == "" {
		return CreateResult{}, ErrEmptySlug
	}

	if priority == "" {
		priority = cfg.Defaults.Priority
	}

	index := r.NextIndex(cfg.Statuses)
	filename := fmt.Sprintf("%d-%s.md", index, slug)

	content := cfg.Defaults.Template
	content = strings.Replace(content, "{{ title }}", title, 1)
	content = strings.Replace(content, "{{ priority }}", priority, 1)
	content = strings.Replace(content, "{{ date }}", time.Now().Format("02.01.2006"), 1)

	status := cfg.Statuses[0]
	dir := project.StatusDir(r.root, status)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CreateResult{}, fmt.Errorf("create %s: %w", status, err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644); err != nil {
		return CreateResult{}, fmt.Errorf("write task: %w", err)
	}

	return CreateResult{
		Filename:     filename,
		RelativePath: filepath.Join(project.DirName, "tasks", status, filename),
	}, nil
}

// Move renames a task file from one status directory to another,
// creating the destination directory if needed. The caller is trusted
// to have confirmed the file's current status.
func (r *Repo) Move(filename, from, to string) error {
	src := filepath.Join(project.StatusDir(r.root, from), filename)
	dst := filepath.Join(project.StatusDir(r.root, to), filename)

	if err := os.MkdirAll(project.StatusDir(r.root, to), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", to, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move %s: %w", filename, err)
	}
	return nil
}

// Update describes a task mutation: front-matter fields to merge in and
// an optional full body replacement.
type Update struct {
	FrontMatter map[string]any
	Body        *string
}

// UpdateResult reports the task's filename and status after an update.
type UpdateResult struct {
	Filename string
	Status   string
}

// ApplyUpdate merges upd into the task with the given ID and rewrites
// its file. If the title changed, the file is renamed within its status
// directory, keeping the numeric prefix; a rename that would collide
// with an existing file is rejected before anything is written.
func (r *Repo) ApplyUpdate(statuses []string, id int, upd Update) (UpdateResult, error) {
	t, err := r.FindByID(statuses, id)
	if err != nil {
		return UpdateResult{}, err
	}

	fm := t.FrontMatter
	keys := make([]string, 0, len(upd.FrontMatter))
	for k := range upd.FrontMatter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fm.Set(k, upd.FrontMatter[k]); err != nil {
			return UpdateResult{}, fmt.Errorf("set %s: %w", k, err)
		}
	}

	body := t.Body
	if upd.Body != nil {
		body = "\n" + strings.TrimRight(*upd.Body, "\n") + "\n"
	}

	newFilename := t.Filename
	if fm.Has("title") {
		slug := Slugify(fm.Get("title"))
		if slug == "" {
			return UpdateResult{}, ErrEmptySlug
		}
		prefix := idPrefixRe.FindStringSubmatch(t.Filename)
		if prefix != nil {
			newFilename = prefix[1] + "-" + slug + ".md"
		}
	}

	dir := project.StatusDir(r.root, t.Status)
	newPath := filepath.Join(dir, newFilename)

	renamed := newFilename != t.Filename
	if renamed {
		if _, err := os.Stat(newPath); err == nil {
			return UpdateResult{}, fmt.Errorf("%w: %s", ErrExists, newFilename)
		}
	}

	content, err := RenderDocument(fm, body)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("serialize task: %w", err)
	}
	if err := atomic.WriteFile(newPath, strings.NewReader(content)); err != nil {
		return UpdateResult{}, fmt.Errorf("write task: %w", err)
	}
	if renamed {
		if err := os.Remove(filepath.Join(dir, t.Filename)); err != nil {
			return UpdateResult{}, fmt.Errorf("remove old task file: %w", err)
		}
	}

	return UpdateResult{Filename: newFilename, Status: t.Status}, nil
}

// read loads a single task file.
func (r *Repo) read(status, filename string) (*Task, error) {
	data, err := os.ReadFile(filepath.Join(project.StatusDir(r.root, status), filename))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return parse(filename, status, string(data)), nil
}
