// Package task owns the on-disk task representation: Markdown files
// with YAML front matter, grouped into status-named directories under
// .jobdone/tasks/. All filesystem access to those directories goes
// through Repo; nothing else touches them.
package task

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// DefaultPriority is assumed when a task file declares none.
const DefaultPriority = "medium"

// descriptionMaxRunes caps the derived description length.
const descriptionMaxRunes = 120

// Task is one Markdown task file. Status is not stored in the file; it
// is the name of the directory the file currently lives in.
type Task struct {
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	Title       string `json:"title"`
	Priority    string `json:"priority"`
	Created     string `json:"created"`
	Description string `json:"description"`
	Body        string `json:"body"`

	// ID is the numeric filename prefix, 0 when the filename has none.
	// Such tasks still appear in listings but cannot be looked up by ID.
	ID int `json:"-"`

	FrontMatter FrontMatter `json:"-"`
}

var (
	idPrefixRe    = regexp.MustCompile(`^(\d+)-`)
	slugInvalidRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	hyphenRunRe   = regexp.MustCompile(`-+`)
	wordSepRe     = regexp.MustCompile(`[-_]+`)
)

// parse builds a Task from raw file content.
func parse(filename, status, content string) *Task {
	fm, body := ParseDocument(content)

	t := &Task{
		Filename:    filename,
		Status:      status,
		Title:       fm.Get("title"),
		Priority:    fm.Get("priority"),
		Created:     fm.Get("created"),
		Description: ExtractDescription(body),
		Body:        body,
		FrontMatter: fm,
	}
	if t.Title == "" {
		t.Title = TitleFromFilename(filename)
	}
	if t.Priority == "" {
		t.Priority = DefaultPriority
	}
	if id, ok := ParseID(filename); ok {
		t.ID = id
	}
	return t
}

// ParseID extracts the numeric prefix from a filename like 12-fix-bug.md.
func ParseID(filename string) (int, bool) {
	m := idPrefixRe.FindStringSubmatch(filename)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// Slugify derives a lowercase kebab-case filename stem from a title.
// Returns "" when the title contains no usable characters.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugInvalidRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// TitleFromFilename derives a display title from a filename when the
// front matter has none: strip .md, turn separator runs into spaces,
// and upper-case the first letter of every word.
func TitleFromFilename(filename string) string {
	name := filename
	if len(name) >= 3 && strings.EqualFold(name[len(name)-3:], ".md") {
		name = name[:len(name)-3]
	}
	name = wordSepRe.ReplaceAllString(name, " ")

	words := strings.Split(name, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// ExtractDescription returns the first two meaningful body lines joined
// with a space, capped at 120 characters. Blank lines, headings, HTML
// comments, and checkbox items do not count as meaningful.
func ExtractDescription(body string) string {
	var picked []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "<!--") {
			continue
		}
		if strings.HasPrefix(trimmed, "- [ ]") || strings.HasPrefix(trimmed, "- [x]") {
			continue
		}
		picked = append(picked, trimmed)
		if len(picked) >= 2 {
			break
		}
	}

	out := strings.Join(picked, " ")
	if runes := []rune(out); len(runes) > descriptionMaxRunes {
		out = string(runes[:descriptionMaxRunes])
	}
	return out
}
