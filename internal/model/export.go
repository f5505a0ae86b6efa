package model

import "encoding/json"

// Export marshaling reproduces the editor-facing document shape: branch nodes
// wrap their content in a "data" object and blocks carry a derived kind and
// label; all other node types emit their base record flat.

type exportBlock struct {
	Quantity uint   `json:"quantity"`
	Type     string `json:"type"`
	Kind     string `json:"kind"`
	Label    string `json:"label"`
}

type exportBranchData struct {
	ID     string        `json:"id"`
	Label  string        `json:"label"`
	Blocks []exportBlock `json:"blocks"`
}

func blockKind(blockType string) string {
	switch blockType {
	case "Source":
		return "source"
	case "Sink":
		return "sink"
	default:
		return "transform"
	}
}

func (n *BranchNode) MarshalJSON() ([]byte, error) {
	blocks := make([]exportBlock, 0, len(n.Blocks))
	for i := range n.Blocks {
		b := &n.Blocks[i]
		blocks = append(blocks, exportBlock{
			Quantity: b.EffectiveQuantity(),
			Type:     b.Type,
			Kind:     blockKind(b.Type),
			Label:    b.Type,
		})
	}

	obj := map[string]any{
		"id":       n.ID,
		"position": n.Position,
		"data": exportBranchData{
			ID:     n.ID,
			Label:  n.LabelDisplay(),
			Blocks: blocks,
		},
		"type": n.Type,
	}
	if n.ParentID != "" {
		obj["parentId"] = n.ParentID
		obj["extent"] = "parent"
	}
	return json.Marshal(obj)
}

func marshalBase(b *NodeBase) ([]byte, error) {
	obj := map[string]any{
		"id":       b.ID,
		"type":     b.Type,
		"position": b.Position,
	}
	if b.Label != "" {
		obj["label"] = b.Label
	}
	if b.ParentID != "" {
		obj["parentId"] = b.ParentID
	}
	if b.Width != nil {
		obj["width"] = *b.Width
	}
	if b.Height != nil {
		obj["height"] = *b.Height
	}
	for k, v := range b.Extra {
		obj[k] = v
	}
	return json.Marshal(obj)
}

func (n *GroupNode) MarshalJSON() ([]byte, error)            { return marshalBase(&n.NodeBase) }
func (n *GeographicAnchorNode) MarshalJSON() ([]byte, error) { return marshalBase(&n.NodeBase) }
func (n *GeographicWindowNode) MarshalJSON() ([]byte, error) { return marshalBase(&n.NodeBase) }
func (n *ImageNode) MarshalJSON() ([]byte, error)            { return marshalBase(&n.NodeBase) }

func (n *Network) MarshalJSON() ([]byte, error) {
	nodes := n.Nodes
	if nodes == nil {
		nodes = []Node{}
	}
	edges := n.Edges
	if edges == nil {
		edges = []Edge{}
	}
	return json.Marshal(map[string]any{
		"id":    n.ID,
		"label": n.Label,
		"nodes": nodes,
		"edges": edges,
	})
}
