package expand

import (
	"strings"
	"testing"

	"github.com/mfsousa/ai-cli/internal/safecmd"
)

// spyOps records every invocation so tests can assert which operations
// ran, and in what order.
type spyOps struct {
	calls   []string
	results map[string]safecmd.CommandResult
}

func newSpyOps() *spyOps {
	return &spyOps{results: make(map[string]safecmd.CommandResult)}
}

func (s *spyOps) record(call string) safecmd.CommandResult {
	s.calls = append(s.calls, call)
	if r, ok := s.results[call]; ok {
		return r
	}
	return safecmd.CommandResult{Success: true, Output: "ok:" + call}
}

func (s *spyOps) ListDirectory(path string) safecmd.CommandResult {
	return s.record("list " + path)
}

func (s *spyOps) ReadFile(path string, maxLines int) safecmd.CommandResult {
	return s.record("read " + path)
}

func (s *spyOps) CurrentDirectory() safecmd.CommandResult {
	return s.record("pwd")
}

func (s *spyOps) GitStatus() safecmd.CommandResult {
	return s.record("git status")
}

func (s *spyOps) GitLog(n int) safecmd.CommandResult {
	s.calls = append(s.calls, "git log")
	return safecmd.CommandResult{Success: true, Output: "commits"}
}

func (s *spyOps) Tree(path string) safecmd.CommandResult {
	return s.record("tree " + path)
}

func (s *spyOps) Search(pattern string) safecmd.CommandResult {
	return s.record("search " + pattern)
}

func TestExpand_NoDirectives(t *testing.T) {
	spy := newSpyOps()
	e := New(spy, 0)

	tests := []string{
		"",
		"plain response text",
		"brackets [but no] directive",
		"almost [CMD but not quite]",
	}

	for _, text := range tests {
		got, warnings := e.Expand(text)
		if got != text {
			t.Errorf("Expand(%q) = %q, want unchanged", text, got)
		}
		if len(warnings) != 0 {
			t.Errorf("Expand(%q) warnings = %v, want none", text, warnings)
		}
	}
	if len(spy.calls) != 0 {
		t.Errorf("no operations should run, got %v", spy.calls)
	}
}

func TestExpand_KnownCommands(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCall string
	}{
		{"ls", "[CMD: ls src]", "list src"},
		{"dir alias", "[CMD: dir src]", "list src"},
		{"list alias", "[CMD: list .]", "list ."},
		{"cat", "[CMD: cat main.go]", "read main.go"},
		{"read alias", "[CMD: read go.mod]", "read go.mod"},
		{"uppercase name", "[CMD: CAT main.go]", "read main.go"},
		{"pwd", "[CMD: pwd]", "pwd"},
		{"git status", "[CMD: git status]", "git status"},
		{"git log", "[CMD: git log 5]", "git log"},
		{"tree", "[CMD: tree cmd]", "tree cmd"},
		{"grep", "[CMD: grep TODO]", "search TODO"},
		{"arg kept verbatim", "[CMD: read path with  spaces.txt]", "read path with  spaces.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := newSpyOps()
			e := New(spy, 0)

			got, warnings := e.Expand(tt.text)
			if len(spy.calls) != 1 || spy.calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want [%q]", spy.calls, tt.wantCall)
			}
			if strings.Contains(got, DirectiveMarker) {
				t.Errorf("directive not replaced: %q", got)
			}
			if len(warnings) != 0 {
				t.Errorf("warnings = %v, want none", warnings)
			}
		})
	}
}

func TestExpand_UnknownCommandNeverExecutes(t *testing.T) {
	spy := newSpyOps()
	e := New(spy, 0)

	got, _ := e.Expand("before [CMD: rm -rf /] after")

	if len(spy.calls) != 0 {
		t.Fatalf("unknown command must not reach any operation, got calls %v", spy.calls)
	}
	if !strings.Contains(got, "unknown command") || !strings.Contains(got, `"rm"`) {
		t.Errorf("output missing rejection marker: %q", got)
	}
	if !strings.Contains(got, "allowed:") {
		t.Errorf("rejection should list the allowed set: %q", got)
	}
	if !strings.HasPrefix(got, "before ") || !strings.HasSuffix(got, " after") {
		t.Errorf("surrounding text must be preserved: %q", got)
	}
}

func TestExpand_UnknownGitSubcommand(t *testing.T) {
	spy := newSpyOps()
	e := New(spy, 0)

	got, _ := e.Expand("[CMD: git push origin]")
	if len(spy.calls) != 0 {
		t.Fatalf("git push must not execute, got calls %v", spy.calls)
	}
	if !strings.Contains(got, "unknown command") {
		t.Errorf("output missing rejection marker: %q", got)
	}
}

func TestExpand_MissingRequiredArgument(t *testing.T) {
	for _, text := range []string{"[CMD: read]", "[CMD: grep]"} {
		spy := newSpyOps()
		e := New(spy, 0)

		got, _ := e.Expand(text)
		if len(spy.calls) != 0 {
			t.Errorf("Expand(%q) must not execute, got calls %v", text, spy.calls)
		}
		if !strings.Contains(got, "requires an argument") {
			t.Errorf("Expand(%q) = %q, want missing-argument marker", text, got)
		}
	}
}

func TestExpand_CapLeavesRemainderUntouched(t *testing.T) {
	spy := newSpyOps()
	e := New(spy, 5)

	var parts []string
	for i := 0; i < 8; i++ {
		parts = append(parts, "[CMD: pwd]")
	}
	text := strings.Join(parts, " ")

	got, warnings := e.Expand(text)

	if len(spy.calls) != 5 {
		t.Errorf("executed %d directives, want 5", len(spy.calls))
	}
	if n := strings.Count(got, "[CMD: pwd]"); n != 3 {
		t.Errorf("%d directives left untouched, want 3", n)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if !strings.Contains(warnings[0], "5") {
		t.Errorf("warning should mention the cap: %q", warnings[0])
	}
}

func TestExpand_ExecutionOrder(t *testing.T) {
	spy := newSpyOps()
	e := New(spy, 2)

	_, _ = e.Expand("[CMD: ls a] [CMD: ls b] [CMD: ls c]")

	want := []string{"list a", "list b"}
	if len(spy.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", spy.calls, want)
	}
	for i := range want {
		if spy.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, spy.calls[i], want[i])
		}
	}
}

func TestExpand_FailedOperationBecomesInlineError(t *testing.T) {
	spy := newSpyOps()
	spy.results["read secret.txt"] = safecmd.CommandResult{Error: "access to secret.txt is blocked"}
	e := New(spy, 0)

	got, _ := e.Expand("first [CMD: read secret.txt] then [CMD: pwd] done")

	if !strings.Contains(got, "**Error:** access to secret.txt is blocked") {
		t.Errorf("output missing inline error: %q", got)
	}
	// A failing directive must not stop expansion of the rest
	if !strings.Contains(got, "ok:pwd") {
		t.Errorf("later directive not expanded: %q", got)
	}
}

func TestExpand_RendersListing(t *testing.T) {
	spy := newSpyOps()
	spy.results["list ."] = safecmd.CommandResult{
		Success: true,
		Metadata: map[string]any{
			"path": "/work",
			"items": []safecmd.Entry{
				{Name: "cmd", IsDir: true},
				{Name: "go.mod", Size: 1536},
			},
		},
	}
	e := New(spy, 0)

	got, _ := e.Expand("[CMD: ls .]")

	if !strings.Contains(got, "📁 cmd/") {
		t.Errorf("output missing directory line: %q", got)
	}
	if !strings.Contains(got, "📄 go.mod") {
		t.Errorf("output missing file line: %q", got)
	}
	if !strings.Contains(got, "kB") {
		t.Errorf("file line missing humanized size: %q", got)
	}
}

func TestExpand_RendersEmptyListing(t *testing.T) {
	spy := newSpyOps()
	spy.results["list empty"] = safecmd.CommandResult{
		Success: true,
		Metadata: map[string]any{
			"path":  "/work/empty",
			"items": []safecmd.Entry{},
		},
	}
	e := New(spy, 0)

	got, _ := e.Expand("[CMD: ls empty]")
	if !strings.Contains(got, "empty directory") {
		t.Errorf("output = %q, want empty-directory note", got)
	}
	if strings.Contains(got, "**Error:**") {
		t.Errorf("empty listing is a success, got %q", got)
	}
}

func TestExpand_RendersFencedOutput(t *testing.T) {
	spy := newSpyOps()
	spy.results["read main.go"] = safecmd.CommandResult{
		Success:   true,
		Output:    "package main",
		Truncated: true,
	}
	e := New(spy, 0)

	got, _ := e.Expand("[CMD: cat main.go]")
	if !strings.Contains(got, "```\npackage main") {
		t.Errorf("output missing fenced block: %q", got)
	}
	if !strings.Contains(got, "truncated") {
		t.Errorf("truncated result should carry a note: %q", got)
	}
}

func TestSplitDirective(t *testing.T) {
	tests := []struct {
		body     string
		wantName string
		wantArg  string
	}{
		{"pwd", "pwd", ""},
		{"ls src", "ls", "src"},
		{"LS src", "ls", "src"},
		{"cat path with spaces.txt", "cat", "path with spaces.txt"},
		{"git status", "git status", ""},
		{"git log 10", "git log", "10"},
		{"git", "git", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		name, arg := splitDirective(tt.body)
		if name != tt.wantName || arg != tt.wantArg {
			t.Errorf("splitDirective(%q) = (%q, %q), want (%q, %q)",
				tt.body, name, arg, tt.wantName, tt.wantArg)
		}
	}
}

func TestParseLogCount(t *testing.T) {
	tests := []struct {
		arg  string
		want int
	}{
		{"", 0},
		{"5", 5},
		{"20 extra", 20},
		{"abc", 0},
	}

	for _, tt := range tests {
		if got := parseLogCount(tt.arg); got != tt.want {
			t.Errorf("parseLogCount(%q) = %d, want %d", tt.arg, got, tt.want)
		}
	}
}
