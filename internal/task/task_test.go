package task

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Fix the login bug", "fix-the-login-bug"},
		{"  Spaces   everywhere  ", "spaces-everywhere"},
		{"Emoji 🎉 and symbols!?", "emoji-and-symbols"},
		{"already-a-slug", "already-a-slug"},
		{"MiXeD CaSe", "mixed-case"},
		{"---", ""},
		{"🎉🎉🎉", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	titles := []string{"Fix the login bug", "Emoji 🎉 and symbols!?", "MiXeD CaSe"}
	for _, title := range titles {
		once := Slugify(title)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q != %q", title, once, twice)
		}
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		filename string
		want     int
		ok       bool
	}{
		{"1-fix-bug.md", 1, true},
		{"42-long-task-name.md", 42, true},
		{"notes.md", 0, false},
		{"-no-number.md", 0, false},
		{"12fix.md", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseID(tt.filename)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseID(%q) = (%d, %v), want (%d, %v)", tt.filename, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"1-fix-bug.md", "1 Fix Bug"},
		{"fix_login_flow.md", "Fix Login Flow"},
		{"notes.md", "Notes"},
		{"UPPER.MD", "UPPER"},
	}
	for _, tt := range tests {
		if got := TitleFromFilename(tt.filename); got != tt.want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"plain lines",
			"\nFirst line.\nSecond line.\nThird line.\n",
			"First line. Second line.",
		},
		{
			"skips headings comments and checkboxes",
			"## Description\n<!-- What needs to be done? -->\nActual text.\n- [ ] step one\n- [x] step two\nMore text.\n",
			"Actual text. More text.",
		},
		{
			"only headings and comments",
			"## Description\n<!-- placeholder -->\n## Acceptance Criteria\n- [ ] ...\n",
			"",
		},
		{
			"empty body",
			"",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDescription(tt.body); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractDescriptionCapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "0123456789"
	}
	got := ExtractDescription(long + "\n")
	if len([]rune(got)) != 120 {
		t.Errorf("description length = %d, want 120", len([]rune(got)))
	}
}

func TestParseFallbacks(t *testing.T) {
	tk := parse("3-do-thing.md", "todo", "no front matter here\n")
	if tk.Title != "3 Do Thing" {
		t.Errorf("title = %q, want fallback from filename", tk.Title)
	}
	if tk.Priority != DefaultPriority {
		t.Errorf("priority = %q, want %q", tk.Priority, DefaultPriority)
	}
	if tk.ID != 3 {
		t.Errorf("id = %d, want 3", tk.ID)
	}
	if tk.Body != "no front matter here\n" {
		t.Errorf("body = %q", tk.Body)
	}
}
