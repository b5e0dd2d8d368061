package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfsousa/ai-cli/internal/display"
	"github.com/mfsousa/ai-cli/internal/history"
	"github.com/mfsousa/ai-cli/internal/runner"
)

// ask runs one query end to end and exits the process on failure.
func (app *App) ask(prompt string) {
	resp := app.query(context.Background(), prompt, "")
	if !resp.Success {
		display.ShowError(resp.Error)
		os.Exit(1)
	}
}

// query sends one prompt through the pipeline, handling the spinner,
// live streaming, and history recording. It always returns a response;
// an interrupt exits the process with the conventional code.
func (app *App) query(parent context.Context, prompt, session string) *runner.Response {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	q := runner.Query{
		Prompt:       prompt,
		Model:        app.cfg.Model,
		SystemPrompt: app.cfg.SystemPrompt,
		Continue:     app.cfg.Continue,
		Stream:       app.cfg.Stream,
		Timeout:      app.cfg.Timeout,
	}

	// With rendering on, chunks are held back and the full markdown is
	// rendered at the end; without it, chunks go to the terminal live.
	live := q.Stream && !app.cfg.Render

	sp := display.NewSpinner("Thinking...")
	var raw strings.Builder

	handlers := runner.StreamHandlers{
		OnFirstChunk: func(elapsed time.Duration) {
			if live {
				sp.Stop()
				display.ShowStreamHeader(elapsed)
			} else {
				sp.UpdateMessage("Receiving...")
			}
		},
		OnChunk: func(text string) {
			raw.WriteString(text)
			if live {
				fmt.Print(text)
			}
		},
	}

	resp, err := app.client.Ask(ctx, q, handlers)
	sp.Stop()

	if err != nil {
		fmt.Println()
		app.store.Close()
		os.Exit(exitCodeInterrupt)
	}

	app.record(resp, prompt, session)

	if !resp.Success {
		return resp
	}

	printWarnings(resp.Warnings)

	switch {
	case live:
		fmt.Println()
		// Inline directives were replaced after the raw text streamed;
		// show the expanded result when it differs.
		if resp.Content != raw.String() {
			fmt.Println()
			app.show(resp.Content)
		}
	default:
		app.show(resp.Content)
	}

	return resp
}

// show prints final content, rendered or plain per configuration.
func (app *App) show(content string) {
	if app.cfg.Render {
		display.ShowContentRendered(content)
	} else {
		display.ShowContent(content)
	}
}

// record appends the query outcome to the history store.
func (app *App) record(resp *runner.Response, prompt, session string) {
	if app.store == nil {
		return
	}
	if session == "" {
		session = uuid.New().String()
	}

	err := app.store.Save(history.Record{
		Timestamp:  time.Now(),
		Session:    session,
		Prompt:     prompt,
		Model:      resp.Model,
		Success:    resp.Success,
		DurationMS: resp.Duration.Milliseconds(),
		Error:      resp.Error,
	})
	if err != nil {
		display.ShowWarning("could not record history: " + err.Error())
	}
}
