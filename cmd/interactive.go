package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"
	"github.com/google/uuid"

	"github.com/mfsousa/ai-cli/internal/display"
)

// InteractiveSession holds the state for an interactive chat session.
type InteractiveSession struct {
	app         *App
	session     string
	started     bool
	exitFlag    bool
	inputBuffer []string
}

// completer provides auto-completion suggestions for slash commands.
func (s *InteractiveSession) completer(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := d.TextBeforeCursor()
	endIndex := d.CurrentRuneIndex()
	w := d.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)

	// Only show suggestions when input starts with "/"
	if !strings.HasPrefix(text, "/") {
		return []prompt.Suggest{}, startIndex, endIndex
	}

	// /model <alias> - suggest available models
	if strings.HasPrefix(strings.ToLower(text), "/model ") {
		var suggestions []prompt.Suggest
		for _, m := range s.app.cfg.Models() {
			desc := m.Description
			if m.Alias == s.app.cfg.DefaultModel() {
				desc = "(current) " + desc
			}
			suggestions = append(suggestions, prompt.Suggest{Text: m.Alias, Description: desc})
		}
		return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
	}

	suggestions := []prompt.Suggest{
		{Text: "/model", Description: "Show/switch model (current: " + s.currentModel() + ")"},
		{Text: "/clear", Description: "Start a fresh conversation"},
		{Text: "/history", Description: "Show recent queries"},
		{Text: "/help", Description: "Show all available commands"},
		{Text: "/exit", Description: "Exit interactive mode"},

		// Aliases
		{Text: "/q", Description: "Exit (alias)"},
		{Text: "/c", Description: "Clear (alias)"},
		{Text: "/h", Description: "Help (alias)"},
	}

	return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
}

func (s *InteractiveSession) currentModel() string {
	if m := s.app.cfg.DefaultModel(); m != "" {
		return m
	}
	return "runner default"
}

// runInteractive starts the interactive chat mode with a REPL
// interface. Handles user input until the session is terminated, with
// backslash continuation for multiline input.
func (app *App) runInteractive() {
	fmt.Println("ai - Interactive Mode")
	fmt.Printf("Model: %s\n", displayModel(app))
	fmt.Println("Type /help for commands, Ctrl+C or Ctrl+D to quit")
	fmt.Println("End a line with \\ for multiline input")
	fmt.Println()

	session := &InteractiveSession{
		app:     app,
		session: uuid.New().String(),
		started: app.client.Tracker().HasHistory(),
	}

	p := prompt.New(
		session.executor,
		prompt.WithCompleter(session.completer),
		prompt.WithPrefix("> "),
		prompt.WithTitle("ai"),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithSuggestionBGColor(prompt.DarkBlue),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithDescriptionBGColor(prompt.DarkBlue),
		prompt.WithDescriptionTextColor(prompt.LightGray),
		prompt.WithSelectedDescriptionBGColor(prompt.Cyan),
		prompt.WithSelectedDescriptionTextColor(prompt.Black),
		prompt.WithMaxSuggestion(10),
		prompt.WithCompletionOnDown(),
		prompt.WithExitChecker(func(in string, breakline bool) bool {
			return session.exitFlag
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				fmt.Println("\nGoodbye!")
				session.exitFlag = true
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn: func(p *prompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					fmt.Println("Goodbye!")
					session.exitFlag = true
				}
				return false
			},
		}),
	)

	p.Run()
}

func displayModel(app *App) string {
	if m := app.cfg.DefaultModel(); m != "" {
		return m
	}
	return "runner default"
}

// executor handles one input line in the REPL: multiline buffering,
// slash commands, and regular queries.
func (s *InteractiveSession) executor(input string) {
	if s.exitFlag {
		return
	}

	// Multiline input with backslash continuation
	if strings.HasSuffix(input, "\\") {
		s.inputBuffer = append(s.inputBuffer, strings.TrimSuffix(input, "\\"))
		fmt.Print("... ")
		return
	}
	if len(s.inputBuffer) > 0 {
		s.inputBuffer = append(s.inputBuffer, input)
		input = strings.Join(s.inputBuffer, "\n")
		s.inputBuffer = nil
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	if strings.HasPrefix(input, "/") {
		if s.handleCommand(input) {
			s.exitFlag = true
		}
		return
	}

	// Continue the conversation once an exchange has happened
	s.app.cfg.Continue = s.started

	resp := s.app.query(context.Background(), input, s.session)
	if resp.Success {
		s.started = true
	} else {
		display.ShowError(resp.Error)
	}
	fmt.Println()
}
