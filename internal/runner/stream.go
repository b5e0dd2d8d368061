package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Streaming errors the assembler needs to tell apart.
var (
	// ErrRunnerNotFound means the external runner binary is not installed.
	ErrRunnerNotFound = errors.New("runner not found")

	// ErrTimeout means the child process exceeded the query deadline.
	ErrTimeout = errors.New("query timed out")

	// ErrEmptyResponse means the runner exited cleanly with no output.
	ErrEmptyResponse = errors.New("runner produced an empty response")
)

// RunnerError carries the stderr text of a failed runner invocation.
type RunnerError struct {
	ExitCode int
	Stderr   string
}

func (e *RunnerError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("runner exited with code %d", e.ExitCode)
}

// eventKind tags a StreamEvent.
type eventKind int

const (
	eventStdout eventKind = iota
	eventStderr
	eventDone
)

// StreamEvent is one item produced by the reader goroutines.
type StreamEvent struct {
	Kind eventKind
	Text string
}

// StreamHandlers receives live output during a streamed invocation.
// Either callback may be nil.
type StreamHandlers struct {
	// OnFirstChunk fires exactly once, on the first non-empty stdout
	// chunk, with the elapsed time since launch.
	OnFirstChunk func(elapsed time.Duration)

	// OnChunk fires for every stdout chunk, in production order.
	OnChunk func(text string)
}

// Streamer launches the built command and pumps its output.
type Streamer struct {
	timeout time.Duration
}

// NewStreamer creates a streamer with the given per-query timeout.
func NewStreamer(timeout time.Duration) *Streamer {
	return &Streamer{timeout: timeout}
}

// Run executes the command and returns the accumulated stdout. The
// two reader goroutines feed a single channel; the consumer loop
// checks the deadline between receives. On timeout the child is
// killed. Non-zero exit with stderr surfaces the stderr text as the
// error and discards stdout.
func (s *Streamer) Run(ctx context.Context, built BuiltCommand, handlers StreamHandlers) (string, error) {
	cmd := exec.Command(built.Binary, built.Args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", err
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: install the %s command to use this tool", ErrRunnerNotFound, built.Binary)
		}
		return "", err
	}

	events := make(chan StreamEvent, 64)
	go readInto(stdout, eventStdout, events)
	go readInto(stderr, eventStderr, events)

	deadline := time.NewTimer(s.timeout)
	defer deadline.Stop()

	var outBuf, errBuf strings.Builder
	firstChunkSeen := false
	doneCount := 0

	for doneCount < 2 {
		select {
		case <-ctx.Done():
			cmd.Process.Kill()
			return "", ctx.Err()

		case <-deadline.C:
			cmd.Process.Kill()
			return "", fmt.Errorf("%w after %s", ErrTimeout, s.timeout)

		case ev := <-events:
			switch ev.Kind {
			case eventDone:
				doneCount++
			case eventStdout:
				if !firstChunkSeen && strings.TrimSpace(ev.Text) != "" {
					firstChunkSeen = true
					if handlers.OnFirstChunk != nil {
						handlers.OnFirstChunk(time.Since(start))
					}
				}
				outBuf.WriteString(ev.Text)
				if handlers.OnChunk != nil {
					handlers.OnChunk(ev.Text)
				}
			case eventStderr:
				errBuf.WriteString(ev.Text)
			}
		}
	}

	waitErr := cmd.Wait()
	stderrText := strings.TrimSpace(errBuf.String())

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if stderrText == "" {
			stderrText = waitErr.Error()
		}
		return "", &RunnerError{ExitCode: exitCode, Stderr: stderrText}
	}

	output := outBuf.String()
	if strings.TrimSpace(output) == "" {
		if stderrText != "" {
			return "", &RunnerError{ExitCode: 0, Stderr: stderrText}
		}
		return "", ErrEmptyResponse
	}

	return output, nil
}

// readInto pumps a stream into the event channel in fixed-size chunks
// and pushes a done sentinel when the stream closes.
func readInto(r io.Reader, kind eventKind, events chan<- StreamEvent) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			events <- StreamEvent{Kind: kind, Text: string(buf[:n])}
		}
		if err != nil {
			events <- StreamEvent{Kind: eventDone}
			return
		}
	}
}
