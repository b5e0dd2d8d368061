package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfsousa/ai-cli/internal/constants"
	"github.com/mfsousa/ai-cli/internal/display"
)

// NewFileCmd sends a file's content to the model, with an optional
// question about it.
func NewFileCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "file <path> [question...]",
		Short: "Ask about a file's content",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := app.setup(); err != nil {
				display.ShowError(err.Error())
				os.Exit(1)
			}
			defer app.store.Close()

			content, err := readPromptFile(args[0])
			if err != nil {
				display.ShowError(err.Error())
				os.Exit(1)
			}

			question := "Explain this file."
			if len(args) > 1 {
				question = strings.Join(args[1:], " ")
			}

			app.ask(filePrompt(question, args[0], content))
		},
	}
}

// NewExplainCmd explains text piped through stdin, passed as
// arguments, or read from a file, tuned for error messages and
// stack traces.
func NewExplainCmd(app *App) *cobra.Command {
	var detailed bool

	explainCmd := &cobra.Command{
		Use:   "explain [file-or-text...]",
		Short: "Explain an error message, command output, or file",
		Run: func(cmd *cobra.Command, args []string) {
			if err := app.setup(); err != nil {
				display.ShowError(err.Error())
				os.Exit(1)
			}
			defer app.store.Close()

			lead := "Explain this error or output and suggest a fix:"
			if detailed {
				lead = "Explain this error or output in detail: what it means, " +
					"likely causes, and step-by-step how to fix it:"
			}

			// A single argument naming an existing file explains that file
			if len(args) == 1 {
				if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
					content, err := readPromptFile(args[0])
					if err != nil {
						display.ShowError(err.Error())
						os.Exit(1)
					}
					app.ask(filePrompt(lead, args[0], content))
					return
				}
			}

			text := strings.TrimSpace(strings.Join(args, " "))
			if piped := readPipedInput(); piped != "" {
				if text == "" {
					text = piped
				} else {
					text = text + "\n\n" + piped
				}
			}
			if text == "" {
				display.ShowError("nothing to explain; pass text, a file, or pipe it in")
				os.Exit(1)
			}

			app.ask(lead + "\n\n" + text)
		},
	}
	explainCmd.Flags().BoolVarP(&detailed, "detailed", "d", false, "Ask for a step-by-step explanation")

	return explainCmd
}

// filePrompt embeds file content into a fenced block tagged with the
// language inferred from the extension.
func filePrompt(question, path, content string) string {
	return fmt.Sprintf("%s\n\nFile %s:\n```%s\n%s\n```", question, path, languageTag(path), content)
}

// languageTag maps a file extension to a markdown fence language tag,
// or empty when unknown.
func languageTag(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js", ".mjs":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".sh", ".bash":
		return "bash"
	case ".rb":
		return "ruby"
	case ".rs":
		return "rust"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".hpp":
		return "cpp"
	case ".java":
		return "java"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".sql":
		return "sql"
	case ".html":
		return "html"
	case ".css":
		return "css"
	case ".md":
		return "markdown"
	default:
		return ""
	}
}

// readPromptFile reads a file destined for the prompt, bounded so a
// stray binary or log file does not blow up the request.
func readPromptFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > constants.MaxPromptFileSize {
		return "", fmt.Errorf("%s is too large for a prompt (%d bytes, limit %d)",
			path, info.Size(), constants.MaxPromptFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
