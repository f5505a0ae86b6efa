package scope

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ScopeLevel identifies one storage location in the property cascade.
type ScopeLevel int

const (
	LevelBlock ScopeLevel = iota
	LevelBranch
	LevelGroup
	LevelGlobal
)

func (l ScopeLevel) String() string {
	switch l {
	case LevelBlock:
		return "block"
	case LevelBranch:
		return "branch"
	case LevelGroup:
		return "group"
	case LevelGlobal:
		return "global"
	default:
		return fmt.Sprintf("ScopeLevel(%d)", int(l))
	}
}

// ParseScopeLevel maps a scope name to its level. The second return is false
// for unrecognized names.
func ParseScopeLevel(name string) (ScopeLevel, bool) {
	switch name {
	case "block":
		return LevelBlock, true
	case "branch":
		return LevelBranch, true
	case "group":
		return LevelGroup, true
	case "global":
		return LevelGlobal, true
	default:
		return 0, false
	}
}

// DefaultChain is the general inheritance ordering used when the settings
// file does not override it.
func DefaultChain() []ScopeLevel {
	return []ScopeLevel{LevelBlock, LevelBranch, LevelGroup, LevelGlobal}
}

// Rule is a per-property inheritance rule: either a plain chain or a chain
// with per-block-type overrides.
type Rule interface {
	// ChainFor returns the scope chain to use for the given block type.
	ChainFor(blockType string) []ScopeLevel
	// BaseChain returns the chain without block-type overrides applied.
	BaseChain() []ScopeLevel
}

// SimpleRule is a plain ordered chain.
type SimpleRule []ScopeLevel

func (r SimpleRule) ChainFor(string) []ScopeLevel { return r }
func (r SimpleRule) BaseChain() []ScopeLevel      { return r }

// ComplexRule carries a base chain plus per-block-type overrides. The
// override map is consulted before the base chain.
type ComplexRule struct {
	Inheritance []ScopeLevel
	Overrides   map[string][]ScopeLevel
}

func (r ComplexRule) ChainFor(blockType string) []ScopeLevel {
	if chain, ok := r.Overrides[blockType]; ok {
		return chain
	}
	return r.Inheritance
}

func (r ComplexRule) BaseChain() []ScopeLevel { return r.Inheritance }

// InheritanceConfig is the default chain plus per-property rules.
type InheritanceConfig struct {
	General []ScopeLevel
	Rules   map[string]Rule
}

// Config is the scope settings: global property defaults and the
// inheritance configuration.
type Config struct {
	Properties  map[string]any
	Inheritance InheritanceConfig
}

// Empty returns a config with no global properties and the default chain.
func Empty() Config {
	return Config{
		Properties: map[string]any{},
		Inheritance: InheritanceConfig{
			General: DefaultChain(),
			Rules:   map[string]Rule{},
		},
	}
}

// Raw TOML shape. Rules are decoded loosely because a rule is either an
// array of scope names or a table with inheritance/overrides keys.
type rawConfig struct {
	Properties  map[string]any `toml:"properties"`
	Inheritance rawInheritance `toml:"inheritance"`
}

type rawInheritance struct {
	General []string       `toml:"general"`
	Rules   map[string]any `toml:"rules"`
}

// LoadConfig reads a scope settings file (config.toml).
func LoadConfig(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return DecodeConfig(content)
}

// DecodeConfig parses scope settings from TOML content.
func DecodeConfig(content []byte) (Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(content, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := Empty()
	if raw.Properties != nil {
		cfg.Properties = raw.Properties
	}

	if len(raw.Inheritance.General) > 0 {
		general, err := parseChain(raw.Inheritance.General)
		if err != nil {
			return Config{}, fmt.Errorf("inheritance.general: %w", err)
		}
		cfg.Inheritance.General = general
	}

	for name, rawRule := range raw.Inheritance.Rules {
		rule, err := parseRule(rawRule)
		if err != nil {
			return Config{}, fmt.Errorf("inheritance.rules.%s: %w", name, err)
		}
		cfg.Inheritance.Rules[name] = rule
	}

	return cfg, nil
}

func parseChain(names []string) ([]ScopeLevel, error) {
	chain := make([]ScopeLevel, 0, len(names))
	for _, name := range names {
		level, ok := ParseScopeLevel(name)
		if !ok {
			return nil, fmt.Errorf("unknown scope level %q", name)
		}
		chain = append(chain, level)
	}
	return chain, nil
}

func parseRule(raw any) (Rule, error) {
	switch v := raw.(type) {
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("scope name must be a string, got %T", item)
			}
			names = append(names, s)
		}
		chain, err := parseChain(names)
		if err != nil {
			return nil, err
		}
		return SimpleRule(chain), nil

	case map[string]any:
		rule := ComplexRule{Overrides: map[string][]ScopeLevel{}}

		inheritance, ok := v["inheritance"].([]any)
		if !ok {
			return nil, fmt.Errorf("rule table requires an inheritance array")
		}
		names := make([]string, 0, len(inheritance))
		for _, item := range inheritance {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("scope name must be a string, got %T", item)
			}
			names = append(names, s)
		}
		chain, err := parseChain(names)
		if err != nil {
			return nil, err
		}
		rule.Inheritance = chain

		if overrides, ok := v["overrides"].(map[string]any); ok {
			for blockType, rawChain := range overrides {
				items, ok := rawChain.([]any)
				if !ok {
					return nil, fmt.Errorf("override for %q must be an array", blockType)
				}
				names := make([]string, 0, len(items))
				for _, item := range items {
					s, ok := item.(string)
					if !ok {
						return nil, fmt.Errorf("scope name must be a string, got %T", item)
					}
					names = append(names, s)
				}
				chain, err := parseChain(names)
				if err != nil {
					return nil, fmt.Errorf("overrides.%s: %w", blockType, err)
				}
				rule.Overrides[blockType] = chain
			}
		}

		return rule, nil

	default:
		return nil, fmt.Errorf("rule must be an array or a table, got %T", raw)
	}
}
