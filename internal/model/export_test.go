package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkMarshalShape(t *testing.T) {
	two := uint(2)
	network := &Network{
		ID:    "demo",
		Label: "Demo plant",
		Nodes: []Node{
			&BranchNode{
				NodeBase: NodeBase{
					ID:       "branch-4",
					Type:     "branch",
					Label:    "Main line",
					Position: Position{X: 100, Y: 200},
					ParentID: "group-1",
				},
				Blocks: []Block{
					{Type: "Source"},
					{Type: "Pipe", Quantity: &two},
					{Type: "Sink"},
				},
			},
			&GroupNode{
				NodeBase: NodeBase{
					ID:       "group-1",
					Type:     "labeledGroup",
					Label:    "Plant",
					Position: Position{X: 0, Y: 0},
					Width:    &two,
				},
			},
		},
		Edges: []Edge{
			{ID: "branch-4_branch-7", Source: "branch-4", Target: "branch-7", Data: EdgeData{Weight: 3}},
		},
	}

	out, err := json.Marshal(network)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))

	assert.Equal(t, "demo", doc["id"])
	assert.Equal(t, "Demo plant", doc["label"])

	nodes := doc["nodes"].([]any)
	require.Len(t, nodes, 2)

	branch := nodes[0].(map[string]any)
	assert.Equal(t, "branch-4", branch["id"])
	assert.Equal(t, "branch", branch["type"])
	assert.Equal(t, "group-1", branch["parentId"])
	assert.Equal(t, "parent", branch["extent"])
	assert.Equal(t, map[string]any{"x": 100.0, "y": 200.0}, branch["position"])

	data := branch["data"].(map[string]any)
	assert.Equal(t, "branch-4", data["id"])
	assert.Equal(t, "Main line", data["label"])

	blocks := data["blocks"].([]any)
	require.Len(t, blocks, 3)
	assert.Equal(t, map[string]any{
		"quantity": 1.0, "type": "Source", "kind": "source", "label": "Source",
	}, blocks[0])
	assert.Equal(t, map[string]any{
		"quantity": 2.0, "type": "Pipe", "kind": "transform", "label": "Pipe",
	}, blocks[1])
	assert.Equal(t, "sink", blocks[2].(map[string]any)["kind"])

	group := nodes[1].(map[string]any)
	assert.Equal(t, "group-1", group["id"])
	assert.Equal(t, "Plant", group["label"])
	assert.Equal(t, 2.0, group["width"])
	_, hasData := group["data"]
	assert.False(t, hasData)

	edges := doc["edges"].([]any)
	require.Len(t, edges, 1)
	edge := edges[0].(map[string]any)
	assert.Equal(t, "branch-4_branch-7", edge["id"])
	assert.Equal(t, map[string]any{"weight": 3.0}, edge["data"])
}

func TestNetworkMarshalEmpty(t *testing.T) {
	out, err := json.Marshal(&Network{ID: "empty", Label: "empty"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"empty","label":"empty","nodes":[],"edges":[]}`, string(out))
}

func TestEffectiveQuantity(t *testing.T) {
	b := Block{Type: "Pipe"}
	assert.Equal(t, uint(1), b.EffectiveQuantity())

	five := uint(5)
	b.Quantity = &five
	assert.Equal(t, uint(5), b.EffectiveQuantity())
}

func TestFindHelpers(t *testing.T) {
	branch := &BranchNode{NodeBase: NodeBase{ID: "b1", Type: "branch"}}
	group := &GroupNode{NodeBase: NodeBase{ID: "g1", Type: "labeledGroup"}}
	n := &Network{Nodes: []Node{branch, group}}

	assert.Equal(t, Node(branch), n.FindNode("b1"))
	assert.Nil(t, n.FindNode("nope"))
	assert.Equal(t, branch, n.FindBranch("b1"))
	assert.Nil(t, n.FindBranch("g1"))
	assert.Equal(t, group, n.FindGroup("g1"))
	assert.Nil(t, n.FindGroup("b1"))
}

func TestLabelDisplayFallsBackToID(t *testing.T) {
	b := NodeBase{ID: "branch-4"}
	assert.Equal(t, "branch-4", b.LabelDisplay())
	b.Label = "Main line"
	assert.Equal(t, "Main line", b.LabelDisplay())
}
