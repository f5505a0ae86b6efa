package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procflow-tools/procflow/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadNetwork(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "branch-4.toml", `
type = "branch"
label = "Main line"
parentId = "group-1"
position = { x = 100, y = 200 }
pressure = "7 bar"

[[outgoing]]
target = "branch-7"
weight = 3

[[block]]
type = "Source"
pressure = "5 bar"

[[block]]
type = "Pipe"
quantity = 2
length = "12 m"
material = "steel"
`)
	writeFile(t, dir, "branch-7.toml", `
type = "branch"
position = { x = 400, y = 200 }
`)
	writeFile(t, dir, "group-1.toml", `
type = "labeledGroup"
label = "Plant"
position = { x = 0, y = 0 }
width = 800
height = 600
`)
	writeFile(t, dir, "config.toml", `
[properties]
pressure = 101325.0
`)

	network, report, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, report.HasErrors())
	assert.Empty(t, report.Issues)

	// config.toml is not a node; files load in name order.
	require.Len(t, network.Nodes, 3)
	assert.Equal(t, "branch-4", network.Nodes[0].Base().ID)
	assert.Equal(t, "branch-7", network.Nodes[1].Base().ID)
	assert.Equal(t, "group-1", network.Nodes[2].Base().ID)

	branch := network.FindBranch("branch-4")
	require.NotNil(t, branch)
	assert.Equal(t, "Main line", branch.Label)
	assert.Equal(t, "group-1", branch.ParentID)
	assert.Equal(t, model.Position{X: 100, Y: 200}, branch.Position)
	require.Len(t, branch.Outgoing, 1)
	assert.Equal(t, model.Outgoing{Target: "branch-7", Weight: 3}, branch.Outgoing[0])

	require.Len(t, branch.Blocks, 2)
	source := branch.Blocks[0]
	assert.Equal(t, "Source", source.Type)
	assert.Nil(t, source.Quantity)
	assert.Equal(t, uint(1), source.EffectiveQuantity())
	assert.Equal(t, 500000.0, source.Extra["pressure"])
	assert.Equal(t, "5 bar", source.Extra["_pressure_original"])

	pipe := branch.Blocks[1]
	require.NotNil(t, pipe.Quantity)
	assert.Equal(t, uint(2), *pipe.Quantity)
	assert.Equal(t, 12.0, pipe.Extra["length"])
	assert.Equal(t, "steel", pipe.Extra["material"])

	// Branch-level extra properties normalize too.
	assert.Equal(t, 700000.0, branch.Extra["pressure"])

	group := network.FindGroup("group-1")
	require.NotNil(t, group)
	require.NotNil(t, group.Width)
	assert.Equal(t, uint(800), *group.Width)

	require.Len(t, network.Edges, 1)
	assert.Equal(t, model.Edge{
		ID:     "branch-4_branch-7",
		Source: "branch-4",
		Target: "branch-7",
		Data:   model.EdgeData{Weight: 3},
	}, network.Edges[0])
}

func TestLoadDanglingReferences(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "branch-1.toml", `
type = "branch"
parentId = "group-9"
position = { x = 0, y = 0 }

[[outgoing]]
target = "branch-9"
`)

	_, report, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, report.HasErrors())

	warnings := report.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0].Message, "group-9")
	assert.Contains(t, warnings[1].Message, "branch-9")
}

func TestLoadInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.toml", `type = `)
	writeFile(t, dir, "mystery.toml", `
type = "teleporter"
position = { x = 0, y = 0 }
`)
	writeFile(t, dir, "ok.toml", `
type = "branch"
position = { x = 0, y = 0 }
`)

	network, report, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, report.HasErrors())
	assert.Len(t, report.Errors(), 2)

	// Valid files still load.
	require.Len(t, network.Nodes, 1)
	assert.Equal(t, "ok", network.Nodes[0].Base().ID)
}

func TestLoadMissingNodeType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain.toml", `
position = { x = 1, y = 2 }

[[block]]
type = "Valve"
`)

	network, report, err := Load(dir)
	require.NoError(t, err)
	require.True(t, report.HasErrors())
	assert.Contains(t, report.Errors()[0].Message, "missing 'type' field")
	assert.Empty(t, network.Nodes)
}

func TestLoadNormalizesNonBranchExtras(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "anchor-1.toml", `
type = "geographicAnchor"
position = { x = 0, y = 0 }
elevation = "120 m"
`)

	network, report, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, report.HasErrors())

	require.Len(t, network.Nodes, 1)
	extra := network.Nodes[0].Base().Extra
	assert.Equal(t, 120.0, extra["elevation"])
	assert.Equal(t, "120 m", extra["_elevation_original"])
}

func TestLoadMissingDirectory(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadBlockWithoutType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.toml", `
type = "branch"
position = { x = 0, y = 0 }

[[block]]
length = "3 m"
`)

	_, report, err := Load(dir)
	require.NoError(t, err)
	require.True(t, report.HasErrors())
	assert.Contains(t, report.Errors()[0].Message, "missing a type")
}
