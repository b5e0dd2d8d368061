// Package runner implements the subprocess response pipeline: building
// the argv for the external LLM runner, streaming its output, tracking
// conversation continuation, and assembling the final response.
package runner

import (
	"errors"
	"time"

	"github.com/mfsousa/ai-cli/internal/constants"
)

// ErrEmptyPrompt is returned when a query carries no prompt text.
var ErrEmptyPrompt = errors.New("prompt cannot be empty")

// Query describes one request to the runner. Immutable once built.
type Query struct {
	Prompt       string
	Model        string // resolved model identifier, empty means runner default
	SystemPrompt string // explicit system prompt, empty means generated context
	Continue     bool
	Stream       bool
	Timeout      time.Duration
}

// BuiltCommand is the ordered argv for the child process.
type BuiltCommand struct {
	Binary string
	Args   []string
}

// Argv returns the full argument vector including the binary.
func (c BuiltCommand) Argv() []string {
	return append([]string{c.Binary}, c.Args...)
}

// buildCommand derives the child argv from a query. Continuation and
// an explicit system prompt are mutually exclusive per the runner's
// semantics: when continuing, prior context supplies the system prompt.
func buildCommand(binary string, q Query, systemPrompt string) BuiltCommand {
	if binary == "" {
		binary = constants.RunnerBinary
	}

	args := make([]string, 0, 6)
	if q.Continue {
		args = append(args, "-c")
	} else {
		args = append(args, "--system", systemPrompt)
	}
	if q.Model != "" {
		args = append(args, "-m", q.Model)
	}
	args = append(args, q.Prompt)

	return BuiltCommand{Binary: binary, Args: args}
}
