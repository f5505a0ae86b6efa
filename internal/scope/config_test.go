package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[properties]
pressure = 101325.0
medium = "water"

[inheritance]
general = ["block", "branch", "global"]

[inheritance.rules]
pressure = ["block", "global"]

[inheritance.rules.temperature]
inheritance = ["block", "branch", "group", "global"]

[inheritance.rules.temperature.overrides]
Pipe = ["block", "global"]
`

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 101325.0, cfg.Properties["pressure"])
	assert.Equal(t, "water", cfg.Properties["medium"])
	assert.Equal(t, []ScopeLevel{LevelBlock, LevelBranch, LevelGlobal}, cfg.Inheritance.General)

	simple, ok := cfg.Inheritance.Rules["pressure"].(SimpleRule)
	require.True(t, ok)
	assert.Equal(t, SimpleRule{LevelBlock, LevelGlobal}, simple)

	complexRule, ok := cfg.Inheritance.Rules["temperature"].(ComplexRule)
	require.True(t, ok)
	assert.Equal(t, DefaultChain(), complexRule.Inheritance)
	assert.Equal(t, []ScopeLevel{LevelBlock, LevelGlobal}, complexRule.ChainFor("Pipe"))
	assert.Equal(t, DefaultChain(), complexRule.ChainFor("Pump"))
}

func TestDecodeConfigDefaults(t *testing.T) {
	cfg, err := DecodeConfig([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, cfg.Properties)
	assert.Equal(t, DefaultChain(), cfg.Inheritance.General)
	assert.Empty(t, cfg.Inheritance.Rules)
}

func TestDecodeConfigUnknownScope(t *testing.T) {
	_, err := DecodeConfig([]byte(`
[inheritance]
general = ["block", "warehouse"]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warehouse")
}

func TestDecodeConfigRuleShapes(t *testing.T) {
	_, err := DecodeConfig([]byte(`
[inheritance.rules]
pressure = 5
`))
	require.Error(t, err)

	_, err = DecodeConfig([]byte(`
[inheritance.rules.pressure]
overrides = {}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inheritance array")
}

func TestParseScopeLevel(t *testing.T) {
	for _, name := range []string{"block", "branch", "group", "global"} {
		level, ok := ParseScopeLevel(name)
		require.True(t, ok, name)
		assert.Equal(t, name, level.String())
	}
	_, ok := ParseScopeLevel("warehouse")
	assert.False(t, ok)
}
