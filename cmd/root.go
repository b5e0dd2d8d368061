package cmd

import (
	"bufio"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfsousa/ai-cli/internal/config"
	"github.com/mfsousa/ai-cli/internal/display"
	"github.com/mfsousa/ai-cli/internal/expand"
	"github.com/mfsousa/ai-cli/internal/history"
	"github.com/mfsousa/ai-cli/internal/logging"
	"github.com/mfsousa/ai-cli/internal/runner"
	"github.com/mfsousa/ai-cli/internal/safecmd"
	"github.com/mfsousa/ai-cli/internal/settings"
)

// exitCodeInterrupt is the conventional exit code for SIGINT.
const exitCodeInterrupt = 130

// App holds the application state
type App struct {
	cfg      *config.Config
	client   *runner.Client
	policy   *settings.Manager
	store    *history.Store
	verbose  bool
	noStream bool
	timeout  time.Duration
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{
		cfg:    config.NewConfig(),
		policy: settings.NewManager(),
	}
}

// Execute runs the root command
func Execute() {
	app := NewApp()

	rootCmd := &cobra.Command{
		Use:   "ai [prompt...]",
		Short: "Ask an AI model from your terminal",
		Long: `ai sends a prompt to a language model through the llm runner and
streams the answer back, with optional markdown rendering.

Responses may contain inline [CMD: ...] directives; a small whitelist
of read-only inspection commands (ls, cat, pwd, git status, git log,
tree, grep) is expanded in place, bounded by the safety policy.

Examples:
  ai "what does SIGHUP mean?"
  ai -m fast "summarize this repo"
  ai -c "and in more detail?"
  git diff | ai explain
  ai -i`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.run(cmd, args)
		},
	}

	rootCmd.Flags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&app.cfg.Continue, "continue", "c", false, "Continue the previous conversation")
	rootCmd.Flags().BoolVarP(&app.cfg.Interactive, "interactive", "i", false, "Interactive chat mode")
	rootCmd.Flags().BoolVarP(&app.cfg.Render, "render", "r", false, "Render markdown with colors and formatting")
	rootCmd.Flags().BoolVar(&app.noStream, "no-stream", false, "Wait for the full response instead of streaming")
	rootCmd.Flags().StringVarP(&app.cfg.Model, "model", "m", "", "Model alias (see 'ai models')")
	rootCmd.Flags().StringVarP(&app.cfg.SystemPrompt, "system", "s", "", "Explicit system prompt")
	rootCmd.Flags().DurationVarP(&app.timeout, "timeout", "t", 0, "Per-query timeout (default 5m)")

	rootCmd.AddCommand(NewModelsCmd(app))
	rootCmd.AddCommand(NewModelCmd(app))
	rootCmd.AddCommand(NewHistoryCmd(app))
	rootCmd.AddCommand(NewFileCmd(app))
	rootCmd.AddCommand(NewExplainCmd(app))
	rootCmd.AddCommand(NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup validates configuration and wires the pipeline. Called by
// every command that talks to the runner.
func (app *App) setup() error {
	if app.verbose {
		logging.SetLevel(logging.LevelDebug)
	} else if lvl := os.Getenv(config.EnvLogLevel); lvl != "" {
		logging.SetLevel(logging.ParseLevel(lvl))
	}

	if err := app.cfg.Validate(); err != nil {
		return err
	}
	if app.timeout > 0 {
		app.cfg.Timeout = app.timeout
	}
	if app.noStream {
		app.cfg.Stream = false
	}

	if err := app.policy.Load(); err != nil {
		logging.Warn("could not load safety policy, using defaults", logging.Fields{"error": err.Error()})
	}

	workDir, _ := os.Getwd()
	merged := app.policy.GetMerged()
	ops := safecmd.New(merged, workDir, safecmd.WithSessionGrants(app.policy))
	expander := expand.New(ops, merged.MaxDirectives)

	app.client = runner.NewClient(app.cfg,
		runner.WithRunnerBinary(app.cfg.Runner),
		runner.WithWorkDir(workDir),
		runner.WithExpander(expander),
	)

	app.store = history.Open("")
	return nil
}

func (app *App) run(cmd *cobra.Command, args []string) {
	if err := app.setup(); err != nil {
		display.ShowError(err.Error())
		os.Exit(1)
	}
	defer app.store.Close()

	if app.cfg.Interactive {
		app.runInteractive()
		return
	}

	prompt := strings.TrimSpace(strings.Join(args, " "))

	// A piped stdin becomes part of the prompt
	if piped := readPipedInput(); piped != "" {
		if prompt == "" {
			prompt = "Analyze the following:\n\n" + piped
		} else {
			prompt = prompt + "\n\n" + piped
		}
	}

	if prompt == "" {
		_ = cmd.Help()
		os.Exit(1)
	}

	app.ask(prompt)
}

// readPipedInput returns stdin content when it is a pipe, "" otherwise.
func readPipedInput() string {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return ""
	}

	var sb strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		display.ShowWarning(w)
	}
}
