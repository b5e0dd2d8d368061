package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mfsousa/ai-cli/internal/constants"
)

const (
	// AppName is the application name used for settings directories
	AppName = "ai-cli"

	// PolicyFile is the name of the safety policy file
	PolicyFile = "policy.json"

	// ProjectPolicyDir is the directory name for project-level policy
	ProjectPolicyDir = ".ai-cli"
)

// SecurityLevel controls how strictly filesystem access is confined.
type SecurityLevel string

const (
	// LevelStrict confines access to the working directory tree.
	LevelStrict SecurityLevel = "strict"
	// LevelNormal allows any path not on the blocklist.
	LevelNormal SecurityLevel = "normal"
	// LevelRelaxed behaves like normal; reserved for future widening.
	LevelRelaxed SecurityLevel = "relaxed"
)

// ParseSecurityLevel parses a security level string (case-insensitive).
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	switch SecurityLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelStrict:
		return LevelStrict, nil
	case LevelNormal:
		return LevelNormal, nil
	case LevelRelaxed:
		return LevelRelaxed, nil
	default:
		return "", fmt.Errorf("unknown security level %q (valid: strict, normal, relaxed)", s)
	}
}

// Policy represents the safety policy for inline command execution.
type Policy struct {
	// Security level: strict, normal, or relaxed
	Level SecurityLevel `json:"security_level"`

	// Extra path patterns to block, on top of the built-in blocklist
	BlockedPaths []string `json:"blocked_paths"`

	// Maximum inline directives expanded per response (0 means default)
	MaxDirectives int `json:"max_directives"`
}

// Manager handles loading, saving, and merging the policy from multiple sources
type Manager struct {
	mu          sync.RWMutex
	global      *Policy // ~/.local/share/ai-cli/policy.json
	project     *Policy // ./.ai-cli/policy.json
	merged      *Policy // Merged effective policy
	globalPath  string
	projectPath string

	// Session-only allowed paths (not persisted)
	sessionAllowed map[string]bool
}

// NewManager creates a new policy manager
func NewManager() *Manager {
	return &Manager{
		global:         DefaultPolicy(),
		project:        nil,
		merged:         DefaultPolicy(),
		sessionAllowed: make(map[string]bool),
	}
}

// DefaultPolicy returns a policy with safe defaults
func DefaultPolicy() *Policy {
	return &Policy{
		Level:         LevelStrict,
		BlockedPaths:  []string{},
		MaxDirectives: constants.MaxInlineCommands,
	}
}

// Load loads the policy from all sources and merges them
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	globalPath, err := m.getGlobalPolicyPath()
	if err != nil {
		return err
	}
	m.globalPath = globalPath

	global, err := m.loadFromFile(globalPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if global != nil {
		m.global = global
	} else {
		m.global = DefaultPolicy()
	}

	// Load project policy
	projectPath, err := m.getProjectPolicyPath()
	if err == nil {
		m.projectPath = projectPath
		project, err := m.loadFromFile(projectPath)
		if err != nil && !os.IsNotExist(err) {
			// A broken project file must not disable the policy
			m.project = nil
		} else {
			m.project = project
		}
	}

	// Merge policies (project overrides global)
	m.merged = m.mergePolicies()

	return nil
}

// getGlobalPolicyPath returns the path to the global policy file
func (m *Manager) getGlobalPolicyPath() (string, error) {
	// Use XDG_DATA_HOME or default to ~/.local/share
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, AppName, PolicyFile), nil
}

// getProjectPolicyPath returns the path to the project policy file
func (m *Manager) getProjectPolicyPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return filepath.Join(cwd, ProjectPolicyDir, PolicyFile), nil
}

// loadFromFile loads a policy from a JSON file
func (m *Manager) loadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var policy Policy
	if err := json.Unmarshal(data, &policy); err != nil {
		return nil, err
	}

	if policy.Level != "" {
		level, err := ParseSecurityLevel(string(policy.Level))
		if err != nil {
			return nil, err
		}
		policy.Level = level
	}

	return &policy, nil
}

// mergePolicies merges the global and project policies.
// Project values override global ones; blocked paths accumulate.
func (m *Manager) mergePolicies() *Policy {
	merged := DefaultPolicy()

	if m.global != nil {
		if m.global.Level != "" {
			merged.Level = m.global.Level
		}
		merged.BlockedPaths = append(merged.BlockedPaths, m.global.BlockedPaths...)
		if m.global.MaxDirectives > 0 {
			merged.MaxDirectives = m.global.MaxDirectives
		}
	}

	if m.project != nil {
		if m.project.Level != "" {
			merged.Level = m.project.Level
		}
		merged.BlockedPaths = append(merged.BlockedPaths, m.project.BlockedPaths...)
		if m.project.MaxDirectives > 0 {
			merged.MaxDirectives = m.project.MaxDirectives
		}
	}

	return merged
}

// Save saves the global policy file
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.globalPath == "" {
		path, err := m.getGlobalPolicyPath()
		if err != nil {
			return err
		}
		m.globalPath = path
	}

	return m.saveToFile(m.globalPath, m.global)
}

// SaveProject saves the project policy file
func (m *Manager) SaveProject() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.projectPath == "" {
		path, err := m.getProjectPolicyPath()
		if err != nil {
			return err
		}
		m.projectPath = path
	}

	return m.saveToFile(m.projectPath, m.project)
}

// saveToFile saves a policy to a JSON file
func (m *Manager) saveToFile(path string, policy *Policy) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(policy, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetMerged returns the merged effective policy (read-only)
func (m *Manager) GetMerged() *Policy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.merged
}

// GetGlobal returns the global policy
func (m *Manager) GetGlobal() *Policy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.global
}

// GetProject returns the project policy
func (m *Manager) GetProject() *Policy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.project
}

// SetLevel sets the security level on the global policy
func (m *Manager) SetLevel(level SecurityLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.global == nil {
		m.global = DefaultPolicy()
	}
	m.global.Level = level
	m.merged = m.mergePolicies()
}

// AddBlockedPath adds a blocked path pattern to the global policy
func (m *Manager) AddBlockedPath(pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.global == nil {
		m.global = DefaultPolicy()
	}
	m.global.BlockedPaths = append(m.global.BlockedPaths, pattern)
	m.merged = m.mergePolicies()
}

// SetMaxDirectives sets the per-response directive cap on the global policy
func (m *Manager) SetMaxDirectives(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.global == nil {
		m.global = DefaultPolicy()
	}
	m.global.MaxDirectives = n
	m.merged = m.mergePolicies()
}

// AllowPathForSession marks a path as allowed for this session only
func (m *Manager) AllowPathForSession(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessionAllowed == nil {
		m.sessionAllowed = make(map[string]bool)
	}
	m.sessionAllowed[filepath.Clean(path)] = true
}

// IsSessionAllowed checks if a path was allowed for this session
func (m *Manager) IsSessionAllowed(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sessionAllowed[filepath.Clean(path)]
}

// ClearSessionAllowed clears all session-only path grants
func (m *Manager) ClearSessionAllowed() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessionAllowed = make(map[string]bool)
}

// GetGlobalPath returns the path to the global policy file
func (m *Manager) GetGlobalPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.globalPath
}

// GetProjectPath returns the path to the project policy file
func (m *Manager) GetProjectPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.projectPath
}
