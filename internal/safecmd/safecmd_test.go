package safecmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mfsousa/ai-cli/internal/constants"
	"github.com/mfsousa/ai-cli/internal/settings"
)

func newTestOps(t *testing.T, level settings.SecurityLevel) (*Ops, string) {
	t.Helper()

	dir := t.TempDir()
	policy := settings.DefaultPolicy()
	policy.Level = level
	return New(policy, dir), dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// checkResult enforces the result-shape invariants every operation
// must uphold.
func checkResult(t *testing.T, r CommandResult) {
	t.Helper()

	if !r.Success && r.Error == "" {
		t.Error("failed result must carry an error message")
	}
	if r.Success && r.Error != "" {
		t.Errorf("successful result must not carry an error, got %q", r.Error)
	}
}

func TestCheckPath_BlockedPatterns(t *testing.T) {
	ops, dir := newTestOps(t, settings.LevelNormal)

	tests := []struct {
		name string
		path string
	}{
		{"env file", filepath.Join(dir, ".env")},
		{"env variant", filepath.Join(dir, ".env.local")},
		{"ssh dir", filepath.Join(dir, ".ssh", "id_rsa")},
		{"aws credentials", filepath.Join(dir, ".aws", "credentials")},
		{"pem file", filepath.Join(dir, "server.pem")},
		{"shell history", filepath.Join(dir, ".bash_history")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeFile(t, tt.path, "secret")

			result := ops.ReadFile(tt.path, 0)
			checkResult(t, result)
			if result.Success {
				t.Errorf("ReadFile(%q) succeeded, want blocked", tt.path)
			}
			if !strings.Contains(result.Error, "blocked") {
				t.Errorf("error = %q, want mention of blocked path", result.Error)
			}
		})
	}
}

func TestCheckPath_PolicyBlockedPaths(t *testing.T) {
	dir := t.TempDir()
	policy := settings.DefaultPolicy()
	policy.BlockedPaths = []string{"*.sqlite"}
	ops := New(policy, dir)

	path := filepath.Join(dir, "state.sqlite")
	writeFile(t, path, "data")

	result := ops.ReadFile(path, 0)
	if result.Success {
		t.Error("policy-blocked path should be refused")
	}
	if !strings.Contains(result.Error, "policy") {
		t.Errorf("error = %q, want mention of policy", result.Error)
	}
}

func TestCheckPath_StrictLevelOutsideWorkDir(t *testing.T) {
	ops, _ := newTestOps(t, settings.LevelStrict)

	outside := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, outside, "hello")

	result := ops.ReadFile(outside, 0)
	checkResult(t, result)
	if result.Success {
		t.Error("strict level must refuse paths outside the working directory")
	}
	if !strings.Contains(result.Error, "outside the working directory") {
		t.Errorf("error = %q, want mention of working directory", result.Error)
	}
}

func TestCheckPath_StrictLevelSystemFile(t *testing.T) {
	if _, err := os.Stat("/etc/passwd"); err != nil {
		t.Skip("/etc/passwd not present")
	}

	ops, _ := newTestOps(t, settings.LevelStrict)

	result := ops.ReadFile("/etc/passwd", 0)
	if result.Success {
		t.Fatal("reading /etc/passwd under strict level must fail")
	}
	if !strings.Contains(result.Error, "blocked") && !strings.Contains(result.Error, "outside the working directory") {
		t.Errorf("error = %q, want blocked or outside-workdir mention", result.Error)
	}
}

func TestCheckPath_NormalLevelAllowsOutside(t *testing.T) {
	ops, _ := newTestOps(t, settings.LevelNormal)

	outside := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, outside, "hello")

	result := ops.ReadFile(outside, 0)
	if !result.Success {
		t.Errorf("normal level should allow outside paths, got error %q", result.Error)
	}
}

func TestCheckPath_NormalLevelBlocksSystemTrees(t *testing.T) {
	ops, _ := newTestOps(t, settings.LevelNormal)

	for _, path := range []string{"/etc/hosts", "/proc/self/environ"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		result := ops.ReadFile(path, 0)
		if result.Success {
			t.Errorf("ReadFile(%q) succeeded under normal level, want blocked", path)
		}
	}
}

func TestCheckPath_SessionGrantOverridesBlock(t *testing.T) {
	dir := t.TempDir()
	mgr := settings.NewManager()
	ops := New(settings.DefaultPolicy(), dir, WithSessionGrants(mgr))

	path := filepath.Join(dir, ".env")
	writeFile(t, path, "KEY=value")

	if r := ops.ReadFile(path, 0); r.Success {
		t.Fatal("blocked path should be refused before grant")
	}

	mgr.AllowPathForSession(path)
	if r := ops.ReadFile(path, 0); !r.Success {
		t.Errorf("session-granted path should be readable, got error %q", r.Error)
	}
}

func TestListDirectory(t *testing.T) {
	ops, dir := newTestOps(t, settings.LevelStrict)

	writeFile(t, filepath.Join(dir, "b.txt"), "content")
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	result := ops.ListDirectory(dir)
	checkResult(t, result)
	if !result.Success {
		t.Fatalf("ListDirectory() error = %q", result.Error)
	}

	items, ok := result.Metadata["items"].([]Entry)
	if !ok {
		t.Fatalf("Metadata[items] has type %T, want []Entry", result.Metadata["items"])
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	// Directories sort first, then files by name
	if !items[0].IsDir || items[0].Name != "sub" {
		t.Errorf("items[0] = %+v, want directory sub", items[0])
	}
	if items[1].Name != "a.txt" || items[2].Name != "b.txt" {
		t.Errorf("file order = %q, %q, want a.txt, b.txt", items[1].Name, items[2].Name)
	}
	if items[2].Size != int64(len("content")) {
		t.Errorf("items[2].Size = %d, want %d", items[2].Size, len("content"))
	}
}

func TestListDirectory_Empty(t *testing.T) {
	ops, dir := newTestOps(t, settings.LevelStrict)

	result := ops.ListDirectory(dir)
	checkResult(t, result)
	if !result.Success {
		t.Fatalf("listing an empty directory must succeed, got error %q", result.Error)
	}
	items, ok := result.Metadata["items"].([]Entry)
	if !ok {
		t.Fatalf("Metadata[items] has type %T, want []Entry", result.Metadata["items"])
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}

func TestListDirectory_Failures(t *testing.T) {
	ops, dir := newTestOps(t, settings.LevelStrict)
	writeFile(t, filepath.Join(dir, "plain.txt"), "x")

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "nope")},
		{"not a directory", filepath.Join(dir, "plain.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ops.ListDirectory(tt.path)
			checkResult(t, result)
			if result.Success {
				t.Errorf("ListDirectory(%q) succeeded, want failure", tt.path)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	ops, dir := newTestOps(t, settings.LevelStrict)

	path := filepath.Join(dir, "main.go")
	writeFile(t, path, "package main\n\nfunc main() {}\n")

	result := ops.ReadFile(path, 0)
	checkResult(t, result)
	if !result.Success {
		t.Fatalf("ReadFile() error = %q", result.Error)
	}
	if !strings.Contains(result.Output, "package main") {
		t.Errorf("Output = %q, want file content", result.Output)
	}
	if result.Truncated {
		t.Error("small file should not be truncated")
	}
}

func TestReadFile_LineCap(t *testing.T) {
	ops, dir := newTestOps(t, settings.LevelStrict)

	path := filepath.Join(dir, "long.txt")
	writeFile(t, path, strings.Repeat("line\n", constants.MaxReadLines+20))

	result := ops.ReadFile(path, 0)
	if !result.Success {
		t.Fatalf("ReadFile() error = %q", result.Error)
	}
	if !result.Truncated {
		t.Error("file over the line cap should report Truncated")
	}
	if got := len(strings.Split(result.Output, "\n")); got != constants.MaxReadLines {
		t.Errorf("got %d lines, want %d", got, constants.MaxReadLines)
	}
}

func TestReadFile_Binary(t *testing.T) {
	ops, dir := newTestOps(t, settings.LevelStrict)

	path := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(path, []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01}, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	result := ops.ReadFile(path, 0)
	checkResult(t, result)
	if result.Success {
		t.Error("binary file should be refused")
	}
	if !strings.Contains(result.Error, "binary") {
		t.Errorf("error = %q, want mention of binary", result.Error)
	}
}

func TestReadFile_Failures(t *testing.T) {
	ops, dir := newTestOps(t, settings.LevelStrict)

	t.Run("missing file", func(t *testing.T) {
		result := ops.ReadFile(filepath.Join(dir, "nope.txt"), 0)
		checkResult(t, result)
		if result.Success {
			t.Error("missing file should fail")
		}
	})

	t.Run("directory", func(t *testing.T) {
		result := ops.ReadFile(dir, 0)
		checkResult(t, result)
		if result.Success {
			t.Error("reading a directory should fail")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		result := ops.ReadFile("", 0)
		checkResult(t, result)
		if result.Success {
			t.Error("empty path should fail")
		}
	})
}

func TestCurrentDirectory(t *testing.T) {
	ops, dir := newTestOps(t, settings.LevelStrict)

	result := ops.CurrentDirectory()
	if !result.Success {
		t.Fatalf("CurrentDirectory() error = %q", result.Error)
	}
	if result.Output != dir {
		t.Errorf("Output = %q, want %q", result.Output, dir)
	}
}

func TestGitOps_OutsideRepository(t *testing.T) {
	ops, _ := newTestOps(t, settings.LevelStrict)

	// Outside a repository (or without git installed) both operations
	// must fail with a populated error, never panic or claim success.
	for name, result := range map[string]CommandResult{
		"status": ops.GitStatus(),
		"log":    ops.GitLog(5),
	} {
		checkResult(t, result)
		if result.Success {
			t.Errorf("git %s in empty temp dir succeeded unexpectedly", name)
		}
	}
}

func TestTree(t *testing.T) {
	ops, dir := newTestOps(t, settings.LevelStrict)

	writeFile(t, filepath.Join(dir, "cmd", "root.go"), "x")
	writeFile(t, filepath.Join(dir, "internal", "deep", "deeper", "deepest", "far.go"), "x")
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "ref")
	writeFile(t, filepath.Join(dir, "README.md"), "x")

	result := ops.Tree(dir)
	checkResult(t, result)
	if !result.Success {
		t.Fatalf("Tree() error = %q", result.Error)
	}
	for _, want := range []string{"cmd/", "root.go", "README.md"} {
		if !strings.Contains(result.Output, want) {
			t.Errorf("Output missing %q:\n%s", want, result.Output)
		}
	}
	if strings.Contains(result.Output, ".git") {
		t.Error("hidden directories should not appear in tree output")
	}
	if strings.Contains(result.Output, "far.go") {
		t.Error("entries beyond the depth bound should not appear")
	}
	if !result.Truncated {
		t.Error("depth-bounded tree should report Truncated")
	}
}

func TestSearch_EmptyPattern(t *testing.T) {
	ops, _ := newTestOps(t, settings.LevelStrict)

	result := ops.Search("  ")
	checkResult(t, result)
	if result.Success {
		t.Error("empty pattern should fail")
	}
}

func TestLimitMatches(t *testing.T) {
	ops, _ := newTestOps(t, settings.LevelStrict)

	many := strings.TrimSpace(strings.Repeat("file.go:1:match\n", constants.MaxSearchResults+5))
	result := ops.limitMatches(many)
	if !result.Truncated {
		t.Error("over-limit matches should report Truncated")
	}
	if got := len(strings.Split(result.Output, "\n")); got != constants.MaxSearchResults {
		t.Errorf("got %d lines, want %d", got, constants.MaxSearchResults)
	}

	few := "file.go:1:match"
	result = ops.limitMatches(few)
	if result.Truncated || result.Output != few {
		t.Errorf("under-limit matches altered: %+v", result)
	}
}
