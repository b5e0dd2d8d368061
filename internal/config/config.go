// Package config holds runtime configuration and the model alias registry.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mfsousa/ai-cli/internal/constants"
)

// Environment variable names
const (
	// EnvDefaultModel overrides the default model alias
	EnvDefaultModel = "AI_CLI_MODEL"
	// EnvSystemPrompt overrides the configured base system prompt
	EnvSystemPrompt = "AI_CLI_SYSTEM_PROMPT"
	// EnvRunner overrides the runner binary (useful for testing)
	EnvRunner = "AI_CLI_RUNNER"
	// EnvLogLevel sets the log level (debug, info, warn, error, none)
	EnvLogLevel = "AI_CLI_LOG_LEVEL"
)

// Errors
var (
	ErrModelBuiltin  = errors.New("model alias is built-in and cannot be replaced or removed")
	ErrEmptyAlias    = errors.New("model alias must not be empty")
	ErrEmptyModelID  = errors.New("model id must not be empty")
	ErrConfigNotLoad = errors.New("config not loaded, call Validate first")
)

// Model is one selectable model: a short alias mapped onto the
// identifier the runner understands.
type Model struct {
	Alias        string
	ModelID      string
	Description  string
	TokensPerSec int
	Custom       bool
}

// BuiltinModels are always available, regardless of the config file.
var BuiltinModels = []Model{
	{Alias: "fast", ModelID: "llama-3.3-70b-versatile", Description: "Llama 3.3 70B - fast with good quality", TokensPerSec: 280},
	{Alias: "quick", ModelID: "llama-3.1-8b-instant", Description: "Llama 3.1 8B - ultra fast", TokensPerSec: 560},
	{Alias: "qwen", ModelID: "qwen2.5-coder-32b-instruct", Description: "Qwen2.5 32B - code oriented", TokensPerSec: 200},
	{Alias: "mixtral", ModelID: "mixtral-8x7b-32768", Description: "Mixtral 8x7B - long context (32k)", TokensPerSec: 250},
}

// Config holds the application configuration
type Config struct {
	// Model is the alias selected for this invocation ("" = default)
	Model string

	// SystemPrompt is the base prompt appended to the generated context
	SystemPrompt string

	// Runner is the external LLM runner binary
	Runner string

	// Timeout bounds one runner invocation
	Timeout time.Duration

	// Flags
	Stream      bool
	Render      bool
	Interactive bool
	Continue    bool

	file *FileConfig
}

// NewConfig creates a new Config with defaults
func NewConfig() *Config {
	return &Config{
		Runner:  constants.RunnerBinary,
		Timeout: constants.DefaultQueryTimeout,
		Stream:  true,
	}
}

// Validate loads the config file and environment, filling unset fields.
// Precedence: flags > environment > config file > built-in defaults.
func (c *Config) Validate() error {
	fc, err := LoadConfigFile()
	if err != nil {
		// A corrupt config file should not make the CLI unusable
		fc = &FileConfig{}
	}
	c.file = fc

	if c.Model == "" {
		c.Model = os.Getenv(EnvDefaultModel)
	}
	if c.Model == "" {
		c.Model = fc.DefaultModel
	}

	if c.SystemPrompt == "" {
		c.SystemPrompt = os.Getenv(EnvSystemPrompt)
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = fc.SystemPrompt
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = constants.DefaultSystemPrompt
	}

	if runner := os.Getenv(EnvRunner); runner != "" {
		c.Runner = runner
	}

	if fc.Defaults != nil {
		if fc.Defaults.Render && !c.Render {
			c.Render = true
		}
		if fc.Defaults.NoStream {
			c.Stream = false
		}
	}

	// A selected alias must exist; catching this here keeps the error
	// ahead of any child process launch
	if c.Model != "" {
		if _, err := c.Resolve(c.Model); err != nil {
			return err
		}
	}

	return nil
}

// Models returns all models, built-in plus custom, sorted by alias.
func (c *Config) Models() []Model {
	models := make([]Model, 0, len(BuiltinModels))
	models = append(models, BuiltinModels...)
	if c.file != nil {
		for _, cm := range c.file.Models {
			if cm.Alias == "" || cm.ModelID == "" {
				continue // ignore corrupt entries
			}
			models = append(models, Model{
				Alias:        cm.Alias,
				ModelID:      cm.ModelID,
				Description:  cm.Description,
				TokensPerSec: cm.TokensPerSec,
				Custom:       true,
			})
		}
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Alias < models[j].Alias })
	return models
}

// Resolve looks up a model by alias.
func (c *Config) Resolve(alias string) (Model, error) {
	for _, m := range c.Models() {
		if m.Alias == alias {
			return m, nil
		}
	}
	return Model{}, &ModelNotFoundError{Alias: alias, Available: c.aliases()}
}

// DefaultModel returns the configured default alias, "" if unset.
func (c *Config) DefaultModel() string {
	return c.Model
}

// SetDefaultModel persists a new default model alias.
func (c *Config) SetDefaultModel(alias string) error {
	if c.file == nil {
		return ErrConfigNotLoad
	}
	if _, err := c.Resolve(alias); err != nil {
		return err
	}
	c.file.DefaultModel = alias
	c.Model = alias
	return SaveConfigFile(c.file)
}

// AddCustomModel registers and persists a user-defined model.
func (c *Config) AddCustomModel(alias, modelID, description string, tokensPerSec int) (Model, error) {
	if c.file == nil {
		return Model{}, ErrConfigNotLoad
	}
	if alias == "" {
		return Model{}, ErrEmptyAlias
	}
	if modelID == "" {
		return Model{}, ErrEmptyModelID
	}
	if isBuiltin(alias) {
		return Model{}, fmt.Errorf("%q: %w", alias, ErrModelBuiltin)
	}

	if description == "" {
		description = "custom model: " + modelID
	}
	cm := CustomModel{Alias: alias, ModelID: modelID, Description: description, TokensPerSec: tokensPerSec}

	// Replace an existing custom entry with the same alias
	replaced := false
	for i, existing := range c.file.Models {
		if existing.Alias == alias {
			c.file.Models[i] = cm
			replaced = true
			break
		}
	}
	if !replaced {
		c.file.Models = append(c.file.Models, cm)
	}

	if err := SaveConfigFile(c.file); err != nil {
		return Model{}, err
	}
	return Model{Alias: alias, ModelID: modelID, Description: description, TokensPerSec: tokensPerSec, Custom: true}, nil
}

// RemoveCustomModel deletes a user-defined model. Returns false if the
// alias was not a custom model.
func (c *Config) RemoveCustomModel(alias string) (bool, error) {
	if c.file == nil {
		return false, ErrConfigNotLoad
	}
	if isBuiltin(alias) {
		return false, fmt.Errorf("%q: %w", alias, ErrModelBuiltin)
	}

	for i, existing := range c.file.Models {
		if existing.Alias == alias {
			c.file.Models = append(c.file.Models[:i], c.file.Models[i+1:]...)
			if c.file.DefaultModel == alias {
				c.file.DefaultModel = ""
			}
			if c.Model == alias {
				c.Model = ""
			}
			return true, SaveConfigFile(c.file)
		}
	}
	return false, nil
}

func (c *Config) aliases() []string {
	models := c.Models()
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = m.Alias
	}
	return out
}

func isBuiltin(alias string) bool {
	for _, m := range BuiltinModels {
		if m.Alias == alias {
			return true
		}
	}
	return false
}

// ModelNotFoundError reports an alias that resolved to nothing, with the
// available aliases for the user-facing message.
type ModelNotFoundError struct {
	Alias     string
	Available []string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %q not found. Available: %s", e.Alias, strings.Join(e.Available, ", "))
}
