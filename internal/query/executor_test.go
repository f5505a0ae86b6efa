package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procflow-tools/procflow/internal/model"
	"github.com/procflow-tools/procflow/internal/schema"
	"github.com/procflow-tools/procflow/internal/scope"
	"github.com/procflow-tools/procflow/internal/units"
)

func testNetwork() *model.Network {
	two := uint(2)
	branch := &model.BranchNode{
		NodeBase: model.NodeBase{
			ID:       "branch-4",
			Type:     "branch",
			Label:    "Main line",
			Position: model.Position{X: 100, Y: 200},
			ParentID: "group-1",
			Extra:    map[string]any{"pressure": 700000.0},
		},
		Outgoing: []model.Outgoing{{Target: "branch-7", Weight: 3}},
		Blocks: []model.Block{
			{Type: "Source", Extra: map[string]any{
				"pressure":           500000.0,
				"_pressure_original": "5 bar",
			}},
			{Type: "Pipe", Quantity: &two, Extra: map[string]any{"length": 12.0}},
			{Type: "Pipe", Extra: map[string]any{"length": 3.5}},
			{Type: "Valve", Extra: map[string]any{}},
			{Type: "Sink", Extra: map[string]any{}},
		},
	}
	group := &model.GroupNode{
		NodeBase: model.NodeBase{
			ID:    "group-1",
			Type:  "labeledGroup",
			Label: "Plant",
			Extra: map[string]any{"medium": "water"},
		},
	}
	other := &model.BranchNode{
		NodeBase: model.NodeBase{ID: "branch-7", Type: "branch"},
	}
	return &model.Network{
		ID:    "demo",
		Label: "demo",
		Nodes: []model.Node{branch, group, other},
		Edges: []model.Edge{
			{ID: "branch-4_branch-7", Source: "branch-4", Target: "branch-7", Data: model.EdgeData{Weight: 3}},
		},
	}
}

func run(t *testing.T, exec *Executor, expr string) (any, error) {
	t.Helper()
	path, err := Parse(expr)
	require.NoError(t, err)
	return exec.Execute(path)
}

func mustRun(t *testing.T, exec *Executor, expr string) any {
	t.Helper()
	result, err := run(t, exec, expr)
	require.NoError(t, err)
	return result
}

func TestExecuteNode(t *testing.T) {
	exec := NewExecutor(testNetwork())
	result := mustRun(t, exec, "branch-4")

	obj, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "branch-4", obj["id"])
	assert.Equal(t, "branch", obj["type"])
	assert.Equal(t, "Main line", obj["label"])
	assert.Equal(t, "group-1", obj["parentId"])
	assert.Equal(t, map[string]any{"x": 100, "y": 200}, obj["position"])
	assert.Len(t, obj["blocks"], 5)
	assert.Len(t, obj["outgoing"], 1)
}

func TestExecuteNodeNotFound(t *testing.T) {
	exec := NewExecutor(testNetwork())
	_, err := run(t, exec, "branch-99")

	var notFound *NodeNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "branch-99", notFound.ID)
}

func TestExecuteBlockIndex(t *testing.T) {
	exec := NewExecutor(testNetwork())
	result := mustRun(t, exec, "branch-4/blocks/1")

	obj, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Pipe", obj["type"])
	assert.Equal(t, uint(2), obj["quantity"])
	assert.Equal(t, 12.0, obj["length"])
}

func TestExecuteIndexOutOfRange(t *testing.T) {
	exec := NewExecutor(testNetwork())
	_, err := run(t, exec, "branch-4/blocks/99")

	var oor *IndexOutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 99, oor.Index)
	assert.Equal(t, 5, oor.Len)
}

func TestExecuteRangeInclusive(t *testing.T) {
	exec := NewExecutor(testNetwork())

	result := mustRun(t, exec, "branch-4/blocks/1:3").([]any)
	assert.Len(t, result, 3)

	result = mustRun(t, exec, "branch-4/blocks/:2").([]any)
	assert.Len(t, result, 3)

	result = mustRun(t, exec, "branch-4/blocks/2:").([]any)
	assert.Len(t, result, 3)
}

func TestExecuteRangeBounds(t *testing.T) {
	exec := NewExecutor(testNetwork())

	_, err := run(t, exec, "branch-4/blocks/9:")
	var oor *IndexOutOfRangeError
	require.ErrorAs(t, err, &oor)

	_, err = run(t, exec, "branch-4/blocks/:9")
	require.ErrorAs(t, err, &oor)

	_, err = run(t, exec, "branch-4/blocks/3:1")
	var invalid *InvalidTypeError
	require.ErrorAs(t, err, &invalid)
}

func TestExecuteFilterEquality(t *testing.T) {
	exec := NewExecutor(testNetwork())

	result := mustRun(t, exec, "branch-4/blocks[type=Pipe]").([]any)
	require.Len(t, result, 2)
	for _, item := range result {
		assert.Equal(t, "Pipe", item.(map[string]any)["type"])
	}

	result = mustRun(t, exec, "branch-4/blocks[type!=Pipe]").([]any)
	assert.Len(t, result, 3)
}

func TestExecuteFilterNumeric(t *testing.T) {
	exec := NewExecutor(testNetwork())

	// Blocks without the field drop out instead of failing the query.
	result := mustRun(t, exec, "branch-4/blocks[length>3.6]").([]any)
	require.Len(t, result, 1)
	assert.Equal(t, 12.0, result[0].(map[string]any)["length"])

	result = mustRun(t, exec, "branch-4/blocks[length=3.5]").([]any)
	require.Len(t, result, 1)
	assert.Equal(t, 3.5, result[0].(map[string]any)["length"])

	// Equality is machine precision, not approximate: a near miss does not
	// match a stored value.
	result = mustRun(t, exec, "branch-4/blocks[length=3.5000001]").([]any)
	assert.Empty(t, result)
}

func TestExecuteFusedRangeAndFilter(t *testing.T) {
	exec := NewExecutor(testNetwork())
	result := mustRun(t, exec, "branch-4/blocks/0:2[type=Pipe]").([]any)
	assert.Len(t, result, 2)
}

func TestExecuteDataAlias(t *testing.T) {
	exec := NewExecutor(testNetwork())
	result := mustRun(t, exec, "branch-4/blocks/0/data")

	obj, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Source", obj["type"])
}

func TestExecuteScopeFallbackOnBlockProperty(t *testing.T) {
	resolver := scope.NewResolver(scope.Empty())
	exec := NewExecutorWithResolver(testNetwork(), resolver)

	// Block 1 has no pressure; the branch does.
	result := mustRun(t, exec, "branch-4/blocks/1/pressure")
	assert.Equal(t, 700000.0, result)
}

func TestExecuteNoFallbackWithoutResolver(t *testing.T) {
	exec := NewExecutor(testNetwork())
	_, err := run(t, exec, "branch-4/blocks/1/pressure")

	var notFound *PropertyNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestExecuteScopeResolveExplicit(t *testing.T) {
	config := scope.Empty()
	config.Properties["pressure"] = 101325.0
	exec := NewExecutorWithResolver(testNetwork(), scope.NewResolver(config))

	// The branch holds pressure too, but the explicit chain skips it.
	result := mustRun(t, exec, "branch-4/blocks/1/pressure?scope=global")
	assert.Equal(t, 101325.0, result)
}

func TestExecuteScopeResolveUnknownScopesDropped(t *testing.T) {
	exec := NewExecutorWithResolver(testNetwork(), scope.NewResolver(scope.Empty()))

	// "warehouse" is not a scope; the remaining chain still resolves.
	result := mustRun(t, exec, "branch-4/blocks/1/pressure?scope=warehouse,branch")
	assert.Equal(t, 700000.0, result)
}

func TestExecuteScopeResolveRequiresBlockContext(t *testing.T) {
	exec := NewExecutorWithResolver(testNetwork(), scope.NewResolver(scope.Empty()))

	_, err := run(t, exec, "branch-4/pressure?scope=global")
	var invalid *InvalidTypeError
	require.ErrorAs(t, err, &invalid)
}

func TestExecuteScopeResolveNotFound(t *testing.T) {
	exec := NewExecutorWithResolver(testNetwork(), scope.NewResolver(scope.Empty()))

	_, err := run(t, exec, "branch-4/blocks/1/density?scope=global")
	var notFound *PropertyNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestExecuteNetworkNodes(t *testing.T) {
	exec := NewExecutor(testNetwork())

	result := mustRun(t, exec, "nodes").([]any)
	assert.Len(t, result, 3)

	result = mustRun(t, exec, "nodes[type=branch]").([]any)
	assert.Len(t, result, 2)
}

func TestExecuteNetworkEdges(t *testing.T) {
	exec := NewExecutor(testNetwork())

	result := mustRun(t, exec, "edges").([]any)
	require.Len(t, result, 1)
	edge := result[0].(map[string]any)
	assert.Equal(t, "branch-4_branch-7", edge["id"])
	assert.Equal(t, map[string]any{"weight": uint(3)}, edge["data"])

	// Nested field access in filters.
	result = mustRun(t, exec, "edges[data.weight>=3]").([]any)
	assert.Len(t, result, 1)
}

func TestExecuteIdempotent(t *testing.T) {
	exec := NewExecutor(testNetwork())
	path, err := Parse("branch-4/blocks/1:3[type=Pipe]")
	require.NoError(t, err)

	first, err := exec.Execute(path)
	require.NoError(t, err)
	second, err := exec.Execute(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExecuteUnitFormatting(t *testing.T) {
	exec := NewExecutor(testNetwork())
	formatter := units.NewFormatter(units.Preferences{})
	exec.SetUnitFormatting(formatter, schema.DefaultRegistry(), "1.0.0")

	result := mustRun(t, exec, "branch-4/blocks/0")
	obj := result.(map[string]any)
	// Source.pressure has defaultUnit bar; the stored base value is 5e5 Pa.
	assert.Equal(t, "5 bar", obj["pressure"])
	_, hasOriginal := obj["_pressure_original"]
	assert.False(t, hasOriginal)
}

func TestExecuteUnitFormattingQueryOverride(t *testing.T) {
	exec := NewExecutor(testNetwork())
	formatter := units.NewFormatter(units.Preferences{
		Query: map[string]string{"pressure": "kPa"},
	})
	exec.SetUnitFormatting(formatter, schema.DefaultRegistry(), "1.0.0")

	result := mustRun(t, exec, "branch-4/blocks/0")
	obj := result.(map[string]any)
	assert.Equal(t, "500 kPa", obj["pressure"])
}
