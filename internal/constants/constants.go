// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// Timeout constants used across the application
const (
	// DefaultQueryTimeout is the timeout for one runner invocation
	// (large models can take minutes to answer)
	DefaultQueryTimeout = 5 * time.Minute
	// DefaultInspectTimeout is the timeout for whitelisted inspection
	// commands (git status, tree, ripgrep)
	DefaultInspectTimeout = 5 * time.Second
	// GitBranchTimeout bounds the branch lookup used for the system prompt
	GitBranchTimeout = 2 * time.Second
)

// Application defaults
const (
	// RunnerBinary is the external LLM runner invoked as a child process
	RunnerBinary = "llm"
	// DefaultSystemPrompt is appended to the generated context prompt
	DefaultSystemPrompt = "Be concise and direct."
	// MaxInlineCommands caps how many [CMD: ...] directives are expanded
	// per response
	MaxInlineCommands = 5
)

// File handling limits
const (
	// MaxReadFileSize is the ceiling for files read by the cat directive (1MB)
	MaxReadFileSize = 1_000_000
	// MaxReadLines is the default line cap for the cat directive
	MaxReadLines = 100
	// MaxPromptFileSize is the ceiling for files embedded into a prompt (~100KB)
	MaxPromptFileSize = 100_000
	// MaxSearchResults limits pattern-search output to prevent flooding
	MaxSearchResults = 10
)

// Prompt sanitization limits
const (
	// MaxPromptUsernameLen truncates the username embedded in the system prompt
	MaxPromptUsernameLen = 50
	// MaxPromptCwdLen truncates the working directory embedded in the system prompt
	MaxPromptCwdLen = 200
)
