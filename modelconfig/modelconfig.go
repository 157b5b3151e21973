// Package modelconfig holds the per-model capability allow-lists and
// reasoning defaults as configuration data.
//
// Which model names accept adaptive thinking, which accept named effort
// tiers, and which model generations use the structured responses
// endpoint are all vendor decisions that drift as models are released.
// They are therefore loaded from YAML rather than hard-coded; Default()
// returns the compiled-in table current at release time.
//
// Basic usage:
//
//	cfg := modelconfig.Default()
//	if cfg.SupportsAdaptiveThinking("claude-opus-4-6") {
//	    // ...
//	}
//
//	// Or load a replacement table:
//	cfg, err := modelconfig.Load("models.yaml")
package modelconfig

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/slate-ai/slate/types"
)

// ModelDefault maps a model-name prefix to its default reasoning
// configuration.
type ModelDefault struct {
	// Prefix matches model names by prefix (e.g. "gpt-5" matches
	// "gpt-5-mini").
	Prefix string `yaml:"prefix"`

	// Reasoning is the default reasoning mode for matching models.
	Reasoning types.ReasoningMode `yaml:"reasoning"`

	// Temperature is the default sampling temperature, for
	// temperature-driven models.
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// Config is the loaded allow-list and defaults table.
//
// All entries match model names by prefix. Config is read-only after
// construction and safe for concurrent use.
type Config struct {
	// AdaptiveThinking lists models that accept the adaptive thinking
	// sentinel instead of a fixed budget.
	AdaptiveThinking []string `yaml:"adaptive_thinking"`

	// EffortModels lists models that accept a named effort tier.
	EffortModels []string `yaml:"effort_models"`

	// MaxEffortModels lists the subset of effort models that accept
	// the "max" tier.
	MaxEffortModels []string `yaml:"max_effort_models"`

	// ResponsesAPI lists model generations served by the structured
	// responses endpoint rather than classic chat completions.
	ResponsesAPI []string `yaml:"responses_api"`

	// NoDisableThinking lists models whose thinking cannot be turned
	// off.
	NoDisableThinking []string `yaml:"no_disable_thinking"`

	// ThinkingLevels lists model generations that take a named
	// thinking level instead of a numeric thinking budget.
	ThinkingLevels []string `yaml:"thinking_levels"`

	// Defaults maps model-name prefixes to reasoning defaults.
	Defaults []ModelDefault `yaml:"defaults"`
}

// Default returns the compiled-in allow-lists and defaults.
func Default() *Config {
	return &Config{
		AdaptiveThinking:  []string{"claude-opus-4-6"},
		EffortModels:      []string{"claude-opus-4-5", "claude-opus-4-6"},
		MaxEffortModels:   []string{"claude-opus-4-6"},
		ResponsesAPI:      []string{"gpt-5"},
		NoDisableThinking: []string{"gemini-2.5-pro"},
		ThinkingLevels:    []string{"gemini-3"},
		Defaults: []ModelDefault{
			{Prefix: "o3", Reasoning: types.ReasoningHigh},
			{Prefix: "o4-mini", Reasoning: types.ReasoningHigh},
			{Prefix: "gpt-4.1", Reasoning: types.ReasoningTemperature, Temperature: float64Ptr(0.7)},
			{Prefix: "gpt-5", Reasoning: types.ReasoningMedium},
		},
	}
}

// Parse decodes a YAML allow-list table.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse model config: %w", err)
	}
	return &c, nil
}

// Load reads and decodes a YAML allow-list table from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model config: %w", err)
	}
	return Parse(data)
}

// SupportsAdaptiveThinking reports whether model accepts the adaptive
// thinking sentinel.
func (c *Config) SupportsAdaptiveThinking(model string) bool {
	return matchPrefix(c.AdaptiveThinking, model)
}

// SupportsEffort reports whether model accepts a named effort tier.
func (c *Config) SupportsEffort(model string) bool {
	return matchPrefix(c.EffortModels, model)
}

// SupportsMaxEffort reports whether model accepts the "max" effort tier.
func (c *Config) SupportsMaxEffort(model string) bool {
	return matchPrefix(c.MaxEffortModels, model)
}

// UsesResponsesAPI reports whether model is served by the structured
// responses endpoint.
func (c *Config) UsesResponsesAPI(model string) bool {
	return matchPrefix(c.ResponsesAPI, model)
}

// CanDisableThinking reports whether model accepts a zero thinking
// budget.
func (c *Config) CanDisableThinking(model string) bool {
	return !matchPrefix(c.NoDisableThinking, model)
}

// UsesThinkingLevels reports whether model takes a named thinking level
// instead of a numeric thinking budget.
func (c *Config) UsesThinkingLevels(model string) bool {
	return matchPrefix(c.ThinkingLevels, model)
}

// DefaultsFor returns the reasoning defaults for model, matching by
// prefix. The second return is false when no entry matches.
func (c *Config) DefaultsFor(model string) (ModelDefault, bool) {
	for _, d := range c.Defaults {
		if strings.HasPrefix(model, d.Prefix) {
			return d, true
		}
	}
	return ModelDefault{}, false
}

func matchPrefix(prefixes []string, model string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func float64Ptr(v float64) *float64 {
	return &v
}
