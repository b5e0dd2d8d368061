package runner

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/mfsousa/ai-cli/internal/config"
	"github.com/mfsousa/ai-cli/internal/constants"
	"github.com/mfsousa/ai-cli/internal/expand"
	"github.com/mfsousa/ai-cli/internal/logging"
)

// ModelRegistry resolves model aliases. *config.Config satisfies it.
type ModelRegistry interface {
	Resolve(alias string) (config.Model, error)
	DefaultModel() string
}

// streamRunner abstracts the process streamer so tests can substitute
// a fake runner invocation.
type streamRunner interface {
	Run(ctx context.Context, built BuiltCommand, handlers StreamHandlers) (string, error)
}

// Response is the terminal artifact of one request.
type Response struct {
	Content  string
	Model    string
	Duration time.Duration
	Success  bool
	Error    string
	Warnings []string
}

// Client orchestrates one full request: resolve the model, decide
// continuation, build the command, stream the child process, and
// expand inline directives in the result.
type Client struct {
	registry ModelRegistry
	tracker  *Tracker
	sysCtx   *SystemContext
	expander *expand.Expander
	execLog  *logging.ExecLogger

	runnerBin string
	workDir   string

	newStreamer func(timeout time.Duration) streamRunner
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRunnerBinary overrides the runner executable name.
func WithRunnerBinary(bin string) ClientOption {
	return func(c *Client) { c.runnerBin = bin }
}

// WithWorkDir overrides the working directory used for the generated
// system prompt.
func WithWorkDir(dir string) ClientOption {
	return func(c *Client) { c.workDir = dir }
}

// WithExpander wires the inline command expander into responses.
func WithExpander(e *expand.Expander) ClientOption {
	return func(c *Client) { c.expander = e }
}

// WithTracker overrides the conversation tracker.
func WithTracker(t *Tracker) ClientOption {
	return func(c *Client) { c.tracker = t }
}

// withStreamRunner substitutes the process streamer. Test seam.
func withStreamRunner(f func(timeout time.Duration) streamRunner) ClientOption {
	return func(c *Client) { c.newStreamer = f }
}

// NewClient creates a request client over the given model registry.
func NewClient(registry ModelRegistry, opts ...ClientOption) *Client {
	c := &Client{
		registry:  registry,
		tracker:   NewTracker(),
		sysCtx:    NewSystemContext(),
		execLog:   logging.NewExecLogger(logging.DefaultLogger),
		runnerBin: constants.RunnerBinary,
		newStreamer: func(timeout time.Duration) streamRunner {
			return NewStreamer(timeout)
		},
	}
	if c.workDir == "" {
		c.workDir, _ = os.Getwd()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tracker exposes the conversation tracker for session commands.
func (c *Client) Tracker() *Tracker {
	return c.tracker
}

// InvalidateBranch drops the cached git branch for dir.
func (c *Client) InvalidateBranch(dir string) {
	c.sysCtx.InvalidateBranch(dir)
}

// Ask runs one full request and returns the assembled response. The
// returned error is non-nil only when the context was cancelled; every
// other failure lands in Response with Success == false.
func (c *Client) Ask(ctx context.Context, q Query, handlers StreamHandlers) (*Response, error) {
	start := time.Now()

	fail := func(msg string) *Response {
		return &Response{Duration: time.Since(start), Error: msg}
	}

	q.Prompt = strings.TrimSpace(q.Prompt)
	if q.Prompt == "" {
		return fail(ErrEmptyPrompt.Error()), nil
	}

	modelID, errResp := c.resolveModel(q.Model, fail)
	if errResp != nil {
		return errResp, nil
	}
	q.Model = modelID

	// A continuation request without a prior conversation is known to
	// fail; rewrite it to a fresh exchange before launching anything.
	if q.Continue && !c.tracker.HasHistory() {
		logging.Debug("no conversation marker, starting fresh", nil)
		q.Continue = false
	}

	if q.Timeout <= 0 {
		q.Timeout = constants.DefaultQueryTimeout
	}

	output, err := c.launch(ctx, q, handlers)

	// The runner reports a missing conversation only as free text in
	// stderr. Retry once with a fresh exchange when that happens.
	if err != nil && q.Continue && isNoConversationError(err) {
		logging.Debug("continuation rejected by runner, retrying fresh", nil)
		q.Continue = false
		output, err = c.launch(ctx, q, handlers)
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return fail(err.Error()), nil
	}

	c.tracker.MarkStarted()

	content := output
	var warnings []string
	if c.expander != nil && expand.HasDirectives(content) {
		content, warnings = c.expander.Expand(content)
	}

	return &Response{
		Content:  content,
		Model:    modelID,
		Duration: time.Since(start),
		Success:  true,
		Warnings: warnings,
	}, nil
}

// resolveModel maps an alias to a model identifier. An explicit alias
// that fails to resolve is an error; a missing or unresolvable default
// means the runner picks its own model.
func (c *Client) resolveModel(alias string, fail func(string) *Response) (string, *Response) {
	if alias != "" {
		m, err := c.registry.Resolve(alias)
		if err != nil {
			return "", fail(err.Error())
		}
		return m.ModelID, nil
	}

	if def := c.registry.DefaultModel(); def != "" {
		if m, err := c.registry.Resolve(def); err == nil {
			return m.ModelID, nil
		}
	}
	return "", nil
}

// launch builds the argv and runs the streamer once.
func (c *Client) launch(ctx context.Context, q Query, handlers StreamHandlers) (string, error) {
	var systemPrompt string
	if !q.Continue {
		systemPrompt = c.sysCtx.SystemPrompt(q.SystemPrompt, c.workDir)
	}

	built := buildCommand(c.runnerBin, q, systemPrompt)
	c.execLog.LogInvocation(built.Argv())

	start := time.Now()
	output, err := c.newStreamer(q.Timeout).Run(ctx, built, handlers)
	if err != nil {
		c.execLog.LogError(err, built.Argv())
		return "", err
	}

	c.execLog.LogExit(0, len(output), 0, time.Since(start))
	return output, nil
}

// isNoConversationError reports whether a runner failure signals that
// there is no conversation to continue. The runner exposes this only
// as free text, so the match lives in one place until it grows a
// structured signal.
func isNoConversationError(err error) bool {
	var rerr *RunnerError
	if !errors.As(err, &rerr) {
		return false
	}
	return strings.Contains(strings.ToLower(rerr.Stderr), "no conversation")
}
