// Package display renders terminal output: the busy spinner shown
// while the runner is thinking, markdown rendering of responses, and
// status messages.
package display

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner wraps the terminal busy indicator shown before the first
// output chunk arrives.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates and starts a spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()
	return &Spinner{s: s}
}

// UpdateMessage changes the spinner text in place.
func (sp *Spinner) UpdateMessage(message string) {
	sp.s.Suffix = " " + message
}

// Stop clears the spinner from the terminal. Safe to call twice.
func (sp *Spinner) Stop() {
	if sp.s.Active() {
		sp.s.Stop()
	}
}

// ShowStreamHeader prints the one-time header emitted when streaming
// begins, with the elapsed thinking time.
func ShowStreamHeader(elapsed time.Duration) {
	fmt.Printf("%s── response after %.1fs ──%s\n", colorDim, elapsed.Seconds(), colorReset)
}
