package safecmd

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mfsousa/ai-cli/internal/logging"
)

const maxGitLogEntries = 50

// hasGit reports whether the git tool is on PATH. The lookup runs once
// and is cached for the life of the Ops instance.
func (o *Ops) hasGit() bool {
	o.gitOnce.Do(func() {
		_, err := exec.LookPath("git")
		o.gitAvailable = err == nil
		if err != nil {
			logging.Debug("git not found on PATH", nil)
		}
	})
	return o.gitAvailable
}

// runGit runs a git subcommand in the working directory with the
// configured time bound.
func (o *Ops) runGit(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = o.workDir
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			msg = err.Error()
		}
		return "", &gitError{msg: msg}
	}

	return strings.TrimSpace(string(output)), nil
}

type gitError struct {
	msg string
}

func (e *gitError) Error() string { return e.msg }

// GitStatus reports the short-form working tree status.
func (o *Ops) GitStatus() CommandResult {
	if !o.hasGit() {
		return failure("git is not installed")
	}

	output, err := o.runGit("status", "--short", "--branch")
	if err != nil {
		return failure("git status failed: %v", err)
	}
	if output == "" {
		output = "working tree clean"
	}

	return success(output)
}

// GitLog reports the last n commits, one line each. n is clamped to
// [1, 50]; n <= 0 means the default of 10.
func (o *Ops) GitLog(n int) CommandResult {
	if !o.hasGit() {
		return failure("git is not installed")
	}

	if n <= 0 {
		n = 10
	}
	if n > maxGitLogEntries {
		n = maxGitLogEntries
	}

	output, err := o.runGit("log", "--oneline", "-n", strconv.Itoa(n))
	if err != nil {
		return failure("git log failed: %v", err)
	}
	if output == "" {
		return failure("no commits found")
	}

	return success(output)
}
