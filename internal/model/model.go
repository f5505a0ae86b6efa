package model

// Position of a node on the canvas.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Outgoing is a weighted connection from a branch to another node.
type Outgoing struct {
	Target string `json:"target"`
	Weight uint   `json:"weight"`
}

// Block is one element of a branch's ordered block list. Known fields are
// explicit; everything else from the source file lands in Extra.
type Block struct {
	Type     string
	Quantity *uint
	Extra    map[string]any
}

// EffectiveQuantity returns the block quantity, defaulting to 1.
func (b *Block) EffectiveQuantity() uint {
	if b.Quantity == nil {
		return 1
	}
	return *b.Quantity
}

// NodeBase holds the fields shared by every node type. The id is derived
// from the source filename and is not settable from file content.
type NodeBase struct {
	ID       string
	Type     string
	Label    string
	Position Position
	ParentID string
	Width    *uint
	Height   *uint
	Extra    map[string]any
}

// LabelDisplay returns the label, falling back to the node id.
func (b *NodeBase) LabelDisplay() string {
	if b.Label == "" {
		return b.ID
	}
	return b.Label
}

// Node is the closed set of network node variants.
type Node interface {
	Base() *NodeBase
	isNode()
}

type BranchNode struct {
	NodeBase
	Outgoing []Outgoing
	Blocks   []Block
}

func (n *BranchNode) Base() *NodeBase { return &n.NodeBase }
func (n *BranchNode) isNode()         {}

type GroupNode struct {
	NodeBase
}

func (n *GroupNode) Base() *NodeBase { return &n.NodeBase }
func (n *GroupNode) isNode()         {}

type GeographicAnchorNode struct {
	NodeBase
}

func (n *GeographicAnchorNode) Base() *NodeBase { return &n.NodeBase }
func (n *GeographicAnchorNode) isNode()         {}

type GeographicWindowNode struct {
	NodeBase
}

func (n *GeographicWindowNode) Base() *NodeBase { return &n.NodeBase }
func (n *GeographicWindowNode) isNode()         {}

type ImageNode struct {
	NodeBase
}

func (n *ImageNode) Base() *NodeBase { return &n.NodeBase }
func (n *ImageNode) isNode()         {}

// Edge is a directed weighted connection materialized from branch outgoing
// lists when the network is built.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Data   EdgeData `json:"data"`
}

type EdgeData struct {
	Weight uint `json:"weight"`
}

// Network is the loaded graph. It is treated as read-only after loading;
// concurrent queries against the same Network are safe.
type Network struct {
	ID    string
	Label string
	Nodes []Node
	Edges []Edge
}

// FindNode scans nodes in insertion order and returns the first match.
// Duplicate ids shadow each other silently.
func (n *Network) FindNode(id string) Node {
	for _, node := range n.Nodes {
		if node.Base().ID == id {
			return node
		}
	}
	return nil
}

// FindBranch returns the branch node with the given id, or nil.
func (n *Network) FindBranch(id string) *BranchNode {
	for _, node := range n.Nodes {
		if b, ok := node.(*BranchNode); ok && b.ID == id {
			return b
		}
	}
	return nil
}

// FindGroup returns the group node with the given id, or nil.
func (n *Network) FindGroup(id string) *GroupNode {
	for _, node := range n.Nodes {
		if g, ok := node.(*GroupNode); ok && g.ID == id {
			return g
		}
	}
	return nil
}
