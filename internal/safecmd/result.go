// Package safecmd implements the whitelisted read-only inspection
// operations that inline directives in model output can invoke.
package safecmd

import "fmt"

// Entry describes one child of a listed directory.
type Entry struct {
	Name  string
	IsDir bool
	Size  int64
}

// CommandResult is the uniform result shape returned by every
// inspection operation.
type CommandResult struct {
	Success   bool
	Output    string
	Error     string
	Truncated bool
	Metadata  map[string]any
}

func success(output string) CommandResult {
	return CommandResult{Success: true, Output: output}
}

func failure(format string, args ...any) CommandResult {
	return CommandResult{Error: fmt.Sprintf(format, args...)}
}
