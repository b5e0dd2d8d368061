package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mfsousa/ai-cli/internal/display"
)

// handleCommand processes slash commands in interactive mode.
// Returns true if the session should exit.
func (s *InteractiveSession) handleCommand(input string) bool {
	parts := strings.SplitN(input, " ", 2)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "/exit", "/quit", "/q":
		fmt.Println("Goodbye!")
		return true

	case "/clear", "/c":
		s.app.client.Tracker().Reset()
		s.started = false
		s.session = uuid.New().String()
		fmt.Println("Conversation cleared.")

	case "/help", "/h":
		s.showHelp()

	case "/history":
		s.showHistory()

	case "/model":
		s.handleModelCommand(parts)

	default:
		display.ShowError("unknown command: " + cmd + " (try /help)")
	}

	return false
}

// handleModelCommand shows or switches the session's model.
func (s *InteractiveSession) handleModelCommand(parts []string) {
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		display.ShowModels(s.app.cfg.Models(), s.app.cfg.DefaultModel())
		return
	}

	alias := strings.TrimSpace(parts[1])
	if _, err := s.app.cfg.Resolve(alias); err != nil {
		display.ShowError(err.Error())
		return
	}

	s.app.cfg.Model = alias
	display.ShowSuccess("Model switched to " + alias)
}

// showHistory prints the most recent queries of this session first.
func (s *InteractiveSession) showHistory() {
	if s.app.store == nil || !s.app.store.Available() {
		display.ShowWarning("history database unavailable")
		return
	}

	records, err := s.app.store.Records(10, "")
	if err != nil {
		display.ShowError(err.Error())
		return
	}
	if len(records) == 0 {
		fmt.Println("No history yet.")
		return
	}

	for _, rec := range records {
		marker := " "
		if rec.Session == s.session {
			marker = "*"
		}
		fmt.Printf("%s %s  %s\n", marker,
			rec.Timestamp.Format("15:04"),
			truncatePrompt(rec.Prompt, 70))
	}
}

func (s *InteractiveSession) showHelp() {
	fmt.Println(`Commands:
  /model          Show available models
  /model <alias>  Switch model for this session
  /clear          Reset the conversation (also /c)
  /history        Show recent queries
  /help           This help (also /h)
  /exit           Leave interactive mode (also /q, /quit)

Anything else is sent to the model. End a line with \ to continue
on the next line. Responses may include [CMD: ...] directives, which
expand through the read-only inspection whitelist.`)
}
