// Package cmd implements the CLI commands for the ai application.
//
// # Architecture
//
// This package is organized into the following logical groups:
//
// ## Core CLI
//
//   - root.go: Main entry point, App struct, cobra command setup, and flags
//   - ask.go: Query execution (spinner, streaming, history recording)
//   - models.go: Model listing and default/custom model management
//   - filecmd.go: The file and explain convenience commands
//   - history_cmd.go: The history command
//
// ## Interactive Mode
//
//   - interactive.go: Interactive REPL session management
//   - slash_commands.go: Slash command handlers (/model, /clear, ...)
//
// # Key Components
//
// ## App
//
// The App struct holds application state and configuration. It's created
// in Execute() and passed through command handlers. setup() wires the
// full pipeline: safety policy, inspection operations, inline command
// expander, runner client, and history store.
//
// ## InteractiveSession
//
// Manages interactive chat sessions including:
//   - Conversation continuation across exchanges
//   - Multiline input handling
//   - Graceful Ctrl+C cancellation
//
// # Usage
//
//	// Main entry point
//	func main() {
//	    cmd.Execute()
//	}
package cmd
