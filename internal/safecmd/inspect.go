package safecmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mfsousa/ai-cli/internal/constants"
)

const maxTreeDepth = 3

// Tree renders the directory structure under path, bounded to a few
// levels so the expansion stays readable.
func (o *Ops) Tree(path string) CommandResult {
	if path == "" {
		path = "."
	}

	absPath, err := o.checkPath(path)
	if err != nil {
		return failure("%v", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return failure("directory not found: %s", path)
	}
	if !info.IsDir() {
		return failure("%s is not a directory", path)
	}

	var sb strings.Builder
	sb.WriteString(filepath.Base(absPath))
	sb.WriteString("/\n")

	truncated := false
	walkErr := filepath.WalkDir(absPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if p == absPath {
			return nil
		}

		rel, relErr := filepath.Rel(absPath, p)
		if relErr != nil {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if depth > maxTreeDepth {
			truncated = true
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		// Hidden directories stay out of the rendering
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(d.Name())
		if d.IsDir() {
			sb.WriteString("/")
		}
		sb.WriteString("\n")
		return nil
	})
	if walkErr != nil {
		return failure("%v", walkErr)
	}

	return CommandResult{
		Success:   true,
		Output:    strings.TrimRight(sb.String(), "\n"),
		Truncated: truncated,
	}
}

// Search looks for a pattern in files under the working directory,
// preferring ripgrep and falling back to grep.
func (o *Ops) Search(pattern string) CommandResult {
	if strings.TrimSpace(pattern) == "" {
		return failure("empty search pattern")
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	if _, err := exec.LookPath("rg"); err == nil {
		return o.searchWithRipgrep(ctx, pattern)
	}
	return o.searchWithGrep(ctx, pattern)
}

func (o *Ops) searchWithRipgrep(ctx context.Context, pattern string) CommandResult {
	args := []string{
		"-n",
		"--color=never",
		"-m", fmt.Sprintf("%d", constants.MaxSearchResults),
		"--", pattern, ".",
	}

	cmd := exec.CommandContext(ctx, "rg", args...)
	cmd.Dir = o.workDir
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return failure("search timed out")
	}

	result := strings.TrimSpace(string(output))
	// ripgrep exits 1 on no matches, which is not a failure
	if result == "" {
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); !ok || exitErr.ExitCode() != 1 {
				return failure("search failed: %v", err)
			}
		}
		return success("no matches found")
	}

	return o.limitMatches(result)
}

func (o *Ops) searchWithGrep(ctx context.Context, pattern string) CommandResult {
	cmd := exec.CommandContext(ctx, "grep", "-rn", "--", pattern, ".")
	cmd.Dir = o.workDir
	output, _ := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return failure("search timed out")
	}

	result := strings.TrimSpace(string(output))
	if result == "" {
		return success("no matches found")
	}

	return o.limitMatches(result)
}

func (o *Ops) limitMatches(result string) CommandResult {
	lines := strings.Split(result, "\n")
	truncated := false
	if len(lines) > constants.MaxSearchResults {
		lines = lines[:constants.MaxSearchResults]
		truncated = true
	}

	return CommandResult{
		Success:   true,
		Output:    strings.Join(lines, "\n"),
		Truncated: truncated,
	}
}
