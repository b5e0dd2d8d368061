package safecmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mfsousa/ai-cli/internal/constants"
	"github.com/mfsousa/ai-cli/internal/logging"
	"github.com/mfsousa/ai-cli/internal/settings"
)

// builtinBlockedPaths are path patterns that are always refused,
// regardless of the configured policy. They cover credential stores,
// shell history, and environment files.
var builtinBlockedPaths = []string{
	".env", ".env*",
	".ssh", ".aws", ".gnupg",
	"id_rsa", "id_dsa", "id_ed25519",
	"*.pem", "*.key",
	"credentials", ".netrc", ".npmrc", ".pgpass",
	".bash_history", ".zsh_history", ".python_history",
	"shadow", "passwd",
}

// systemPrefixes are directory trees refused under the normal level.
// The strict level subsumes them through working-directory confinement,
// and the relaxed level leaves only the pattern denylist.
var systemPrefixes = []string{
	"/etc/", "/sys/", "/proc/", "/boot/", "/root/",
}

// Ops provides the inspection operations. All state it carries is
// explicit: the effective safety policy, the working directory the
// strict level confines access to, and a cached git-availability flag.
type Ops struct {
	policy  *settings.Policy
	matcher *settings.PathMatcher
	session sessionGrants
	workDir string
	timeout time.Duration

	gitOnce      sync.Once
	gitAvailable bool
}

// sessionGrants reports paths the user allowed for this session only.
type sessionGrants interface {
	IsSessionAllowed(path string) bool
}

// Option configures an Ops instance.
type Option func(*Ops)

// WithTimeout overrides the bound on external tool invocations.
func WithTimeout(d time.Duration) Option {
	return func(o *Ops) { o.timeout = d }
}

// WithSessionGrants wires session-only path grants into the safety check.
func WithSessionGrants(g sessionGrants) Option {
	return func(o *Ops) { o.session = g }
}

// New creates the inspection operations confined to workDir under the
// given policy. A nil policy means the defaults.
func New(policy *settings.Policy, workDir string, opts ...Option) *Ops {
	if policy == nil {
		policy = settings.DefaultPolicy()
	}
	if workDir == "" {
		workDir, _ = os.Getwd()
	}

	o := &Ops{
		policy:  policy,
		matcher: settings.NewPathMatcher(),
		workDir: workDir,
		timeout: constants.DefaultInspectTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// checkPath resolves and normalizes a path and rejects anything on the
// blocklist or, under the strict level, outside the working directory.
// Returns the resolved absolute path when the check passes.
func (o *Ops) checkPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("empty path")
	}

	absPath := path
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(o.workDir, absPath)
	}
	absPath = filepath.Clean(absPath)

	// Resolve symlinks so the check applies to the real target. If the
	// path does not exist yet, resolve the parent instead.
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	} else {
		dir := filepath.Dir(absPath)
		if resolvedDir, err := filepath.EvalSymlinks(dir); err == nil {
			absPath = filepath.Join(resolvedDir, filepath.Base(absPath))
		}
	}

	if o.session != nil && o.session.IsSessionAllowed(absPath) {
		return absPath, nil
	}

	if o.matcher.MatchAny(absPath, builtinBlockedPaths) {
		return "", fmt.Errorf("access to %s is blocked", path)
	}
	if o.matcher.MatchAny(absPath, o.policy.BlockedPaths) {
		return "", fmt.Errorf("access to %s is blocked by policy", path)
	}

	if o.policy.Level == settings.LevelNormal {
		for _, prefix := range systemPrefixes {
			if strings.HasPrefix(absPath+"/", prefix) {
				return "", fmt.Errorf("access to %s is blocked", path)
			}
		}
	}

	if o.policy.Level == settings.LevelStrict {
		root := o.workDir
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			root = resolved
		}
		rel, err := filepath.Rel(root, absPath)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%s is outside the working directory", path)
		}
	}

	return absPath, nil
}

// ListDirectory enumerates the immediate children of a directory.
// The entries land in Metadata["items"] as a []Entry, sorted by name
// with directories first.
func (o *Ops) ListDirectory(path string) CommandResult {
	if path == "" {
		path = "."
	}

	absPath, err := o.checkPath(path)
	if err != nil {
		return failure("%v", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return failure("directory not found: %s", path)
		}
		return failure("%v", err)
	}
	if !info.IsDir() {
		return failure("%s is not a directory", path)
	}

	dirEntries, err := os.ReadDir(absPath)
	if err != nil {
		return failure("%v", err)
	}

	items := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entry := Entry{Name: de.Name(), IsDir: de.IsDir()}
		if !entry.IsDir {
			if fi, err := de.Info(); err == nil {
				entry.Size = fi.Size()
			}
		}
		items = append(items, entry)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].IsDir != items[j].IsDir {
			return items[i].IsDir
		}
		return items[i].Name < items[j].Name
	})

	logging.Debug("listed directory", logging.Fields{"path": absPath, "entries": len(items)})

	return CommandResult{
		Success: true,
		Metadata: map[string]any{
			"path":  absPath,
			"items": items,
			"count": len(items),
		},
	}
}

// ReadFile reads up to maxLines of a text file. Files over the size
// ceiling and binary files are refused. maxLines <= 0 means the default.
func (o *Ops) ReadFile(path string, maxLines int) CommandResult {
	absPath, err := o.checkPath(path)
	if err != nil {
		return failure("%v", err)
	}
	if maxLines <= 0 {
		maxLines = constants.MaxReadLines
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return failure("file not found: %s", path)
		}
		return failure("%v", err)
	}
	if info.IsDir() {
		return failure("%s is a directory, not a file", path)
	}
	if info.Size() > constants.MaxReadFileSize {
		return failure("file too large: %d bytes (limit %d)", info.Size(), constants.MaxReadFileSize)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return failure("%v", err)
	}

	if isBinary(data) {
		return failure("%s appears to be a binary file", path)
	}

	lines := strings.Split(string(data), "\n")
	truncated := false
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		truncated = true
	}

	return CommandResult{
		Success:   true,
		Output:    strings.Join(lines, "\n"),
		Truncated: truncated,
		Metadata: map[string]any{
			"path":  absPath,
			"lines": len(lines),
		},
	}
}

// CurrentDirectory reports the working directory. It cannot fail.
func (o *Ops) CurrentDirectory() CommandResult {
	return success(o.workDir)
}

// isBinary sniffs for null bytes in the leading sample and checks the
// content decodes as UTF-8.
func isBinary(data []byte) bool {
	sample := data
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	for _, b := range sample {
		if b == 0 {
			return true
		}
	}
	return !utf8.Valid(data)
}
