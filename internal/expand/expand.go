// Package expand scans model output for bracketed inline directives
// and replaces each with the rendered result of a whitelisted
// inspection operation.
package expand

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mfsousa/ai-cli/internal/constants"
	"github.com/mfsousa/ai-cli/internal/logging"
	"github.com/mfsousa/ai-cli/internal/safecmd"
)

// DirectiveMarker is the substring that signals a directive may be
// present. Callers can skip expansion entirely when it is absent.
const DirectiveMarker = "[CMD:"

var directivePattern = regexp.MustCompile(`\[CMD:\s*([^\]]+)\]`)

// Ops is the set of inspection operations the expander delegates to.
// *safecmd.Ops satisfies it.
type Ops interface {
	ListDirectory(path string) safecmd.CommandResult
	ReadFile(path string, maxLines int) safecmd.CommandResult
	CurrentDirectory() safecmd.CommandResult
	GitStatus() safecmd.CommandResult
	GitLog(n int) safecmd.CommandResult
	Tree(path string) safecmd.CommandResult
	Search(pattern string) safecmd.CommandResult
}

// command identifies one operation in the closed directive set.
type command int

const (
	cmdList command = iota
	cmdRead
	cmdPwd
	cmdGitStatus
	cmdGitLog
	cmdTree
	cmdSearch
)

// commandNames maps every accepted directive name (and alias) to its
// operation. Anything outside this map is rejected at parse time.
var commandNames = map[string]command{
	"ls":         cmdList,
	"dir":        cmdList,
	"list":       cmdList,
	"cat":        cmdRead,
	"type":       cmdRead,
	"read":       cmdRead,
	"pwd":        cmdPwd,
	"git status": cmdGitStatus,
	"git log":    cmdGitLog,
	"tree":       cmdTree,
	"find":       cmdSearch,
	"grep":       cmdSearch,
	"search":     cmdSearch,
}

// requiresArg marks operations that are meaningless without an argument.
var requiresArg = map[command]bool{
	cmdRead:   true,
	cmdSearch: true,
}

// Expander replaces inline directives with operation results.
type Expander struct {
	ops Ops
	max int
}

// New creates an expander over the given operations. max <= 0 means
// the default per-response directive cap.
func New(ops Ops, max int) *Expander {
	if max <= 0 {
		max = constants.MaxInlineCommands
	}
	return &Expander{ops: ops, max: max}
}

// HasDirectives reports whether text contains the directive marker.
func HasDirectives(text string) bool {
	return strings.Contains(text, DirectiveMarker)
}

// Expand replaces up to the configured cap of directives in text,
// left to right, and returns the rewritten text plus any warnings.
// Directives beyond the cap are left untouched and produce exactly
// one warning. Text without directives is returned unchanged.
func (e *Expander) Expand(text string) (string, []string) {
	if !HasDirectives(text) {
		return text, nil
	}

	var warnings []string
	executed := 0

	expanded := directivePattern.ReplaceAllStringFunc(text, func(match string) string {
		if executed >= e.max {
			if len(warnings) == 0 {
				warnings = append(warnings, "too many inline commands, executing only the first "+strconv.Itoa(e.max))
			}
			return match
		}
		executed++

		body := directivePattern.FindStringSubmatch(match)[1]
		return e.run(strings.TrimSpace(body))
	})

	return expanded, warnings
}

// run parses one directive body and executes it, converting every
// failure into an inline error marker.
func (e *Expander) run(body string) string {
	name, arg := splitDirective(body)

	cmd, ok := commandNames[name]
	if !ok {
		return renderRejection(name)
	}
	if requiresArg[cmd] && arg == "" {
		return renderError(name + " requires an argument")
	}

	logging.Debug("expanding inline command", logging.Fields{"name": name, "arg": arg})

	var result safecmd.CommandResult
	switch cmd {
	case cmdList:
		result = e.ops.ListDirectory(arg)
	case cmdRead:
		result = e.ops.ReadFile(arg, 0)
	case cmdPwd:
		result = e.ops.CurrentDirectory()
	case cmdGitStatus:
		result = e.ops.GitStatus()
	case cmdGitLog:
		result = e.ops.GitLog(parseLogCount(arg))
	case cmdTree:
		result = e.ops.Tree(arg)
	case cmdSearch:
		result = e.ops.Search(arg)
	}

	return renderResult(result)
}

// splitDirective separates the command name from its verbatim single
// argument at the first whitespace run. Git subcommands fold into a
// two-word name so "git status" and "git log" resolve as units.
func splitDirective(body string) (name, arg string) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return "", ""
	}

	name = strings.ToLower(fields[0])
	rest := strings.TrimSpace(body[len(fields[0]):])

	if name == "git" && len(fields) > 1 {
		name = "git " + strings.ToLower(fields[1])
		rest = strings.TrimSpace(rest[len(fields[1]):])
	}

	return name, rest
}

// parseLogCount reads an optional entry count for git log.
func parseLogCount(arg string) int {
	if arg == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.Fields(arg)[0])
	if err != nil {
		return 0
	}
	return n
}

// allowedNames returns the accepted directive names for error messages.
func allowedNames() string {
	names := make([]string, 0, len(commandNames))
	for name := range commandNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
