package runner

import (
	"context"
	"fmt"
	"os/exec"
	"os/user"
	"runtime"
	"strings"
	"sync"

	"github.com/mfsousa/ai-cli/internal/constants"
	"github.com/mfsousa/ai-cli/internal/logging"
)

// SystemContext generates the default system prompt embedding the OS,
// a sanitized username and working directory, and a best-effort git
// branch lookup cached per directory.
type SystemContext struct {
	mu          sync.Mutex
	branchCache map[string]string
}

// NewSystemContext creates an empty per-process context cache.
func NewSystemContext() *SystemContext {
	return &SystemContext{
		branchCache: make(map[string]string),
	}
}

// SystemPrompt builds the context string sent as the runner's system
// prompt: the base instructions followed by an environment line. An
// empty base falls back to the default instructions.
func (s *SystemContext) SystemPrompt(base, workDir string) string {
	if base == "" {
		base = constants.DefaultSystemPrompt
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\nEnvironment: ")
	sb.WriteString(runtime.GOOS)

	if u, err := user.Current(); err == nil && u.Username != "" {
		sb.WriteString(", user ")
		sb.WriteString(sanitize(u.Username, constants.MaxPromptUsernameLen))
	}

	sb.WriteString(", directory ")
	sb.WriteString(sanitize(workDir, constants.MaxPromptCwdLen))

	if branch := s.GitBranch(workDir); branch != "" {
		sb.WriteString(", git branch ")
		sb.WriteString(branch)
	}

	return sb.String()
}

// GitBranch returns the current branch for workDir, or empty when the
// lookup fails. Results are cached per directory until invalidated.
func (s *SystemContext) GitBranch(workDir string) string {
	s.mu.Lock()
	if branch, ok := s.branchCache[workDir]; ok {
		s.mu.Unlock()
		return branch
	}
	s.mu.Unlock()

	branch := lookupGitBranch(workDir)

	s.mu.Lock()
	s.branchCache[workDir] = branch
	s.mu.Unlock()

	return branch
}

// InvalidateBranch drops the cached branch for workDir. Call on
// directory change.
func (s *SystemContext) InvalidateBranch(workDir string) {
	s.mu.Lock()
	delete(s.branchCache, workDir)
	s.mu.Unlock()
}

// lookupGitBranch runs a time-bounded branch query. Failures of any
// kind degrade to an empty branch, never an error.
func lookupGitBranch(workDir string) string {
	ctx, cancel := context.WithTimeout(context.Background(), constants.GitBranchTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = workDir
	output, err := cmd.Output()
	if err != nil {
		logging.Debug("git branch lookup failed", logging.Fields{"dir": workDir, "error": fmt.Sprint(err)})
		return ""
	}

	return strings.TrimSpace(string(output))
}

// sanitize strips control characters and truncates to maxLen runes.
func sanitize(s string, maxLen int) string {
	var sb strings.Builder
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		sb.WriteRune(r)
	}

	runes := []rune(sb.String())
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	return string(runes)
}
