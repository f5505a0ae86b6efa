package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/procflow-tools/procflow/internal/model"
	"github.com/procflow-tools/procflow/internal/units"
)

// ConfigFileName is the per-network scope configuration file, skipped when
// collecting node files.
const ConfigFileName = "config.toml"

// Load reads a network directory: every *.toml file except config.toml is
// one node, its id taken from the file stem. The report carries per-file
// problems; Load only fails when the directory itself cannot be read.
func Load(dir string) (*model.Network, *Report, error) {
	report := &Report{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read network directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".toml") || name == ConfigFileName {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)

	network := &model.Network{
		ID:    filepath.Base(dir),
		Label: filepath.Base(dir),
	}

	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			report.Errorf(name, "failed to read file: %v", err)
			continue
		}

		var raw map[string]any
		if err := toml.Unmarshal(content, &raw); err != nil {
			report.Errorf(name, "failed to parse TOML: %v", err)
			continue
		}

		id := strings.TrimSuffix(name, ".toml")
		node, err := decodeNode(id, raw)
		if err != nil {
			report.Errorf(name, "%v", err)
			continue
		}
		network.Nodes = append(network.Nodes, node)
	}

	buildEdges(network)
	checkReferences(network, report)

	return network, report, nil
}

func decodeNode(id string, raw map[string]any) (model.Node, error) {
	nodeType, ok := popString(raw, "type")
	if !ok || nodeType == "" {
		return nil, fmt.Errorf("missing 'type' field")
	}

	base, err := decodeBase(id, nodeType, raw)
	if err != nil {
		return nil, err
	}

	switch nodeType {
	case "branch":
		return decodeBranch(base, raw)
	case "labeledGroup":
		units.NormalizeProperties(raw)
		base.Extra = raw
		return &model.GroupNode{NodeBase: base}, nil
	case "geographicAnchor":
		units.NormalizeProperties(raw)
		base.Extra = raw
		return &model.GeographicAnchorNode{NodeBase: base}, nil
	case "geographicWindow":
		units.NormalizeProperties(raw)
		base.Extra = raw
		return &model.GeographicWindowNode{NodeBase: base}, nil
	case "image":
		units.NormalizeProperties(raw)
		base.Extra = raw
		return &model.ImageNode{NodeBase: base}, nil
	default:
		return nil, fmt.Errorf("unknown node type '%s'", nodeType)
	}
}

func decodeBase(id, nodeType string, raw map[string]any) (model.NodeBase, error) {
	base := model.NodeBase{ID: id, Type: nodeType}
	base.Label, _ = popString(raw, "label")
	base.ParentID, _ = popString(raw, "parentId")

	if pos, ok := popTable(raw, "position"); ok {
		x, okX := asInt(pos["x"])
		y, okY := asInt(pos["y"])
		if !okX || !okY {
			return base, fmt.Errorf("position must hold integer x and y")
		}
		base.Position = model.Position{X: x, Y: y}
	}

	if w, ok := popUint(raw, "width"); ok {
		base.Width = &w
	}
	if h, ok := popUint(raw, "height"); ok {
		base.Height = &h
	}
	return base, nil
}

func decodeBranch(base model.NodeBase, raw map[string]any) (*model.BranchNode, error) {
	branch := &model.BranchNode{NodeBase: base}

	if items, ok := popArray(raw, "outgoing"); ok {
		for i, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("outgoing[%d] must be a table", i)
			}
			target, _ := asString(entry["target"])
			if target == "" {
				return nil, fmt.Errorf("outgoing[%d] is missing a target", i)
			}
			weight := uint(1)
			if w, ok := asUint(entry["weight"]); ok {
				weight = w
			}
			branch.Outgoing = append(branch.Outgoing, model.Outgoing{Target: target, Weight: weight})
		}
	}

	// Node files use [[block]] array-of-tables syntax.
	if items, ok := popArray(raw, "block"); ok {
		for i, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("block[%d] must be a table", i)
			}
			block, err := decodeBlock(i, entry)
			if err != nil {
				return nil, err
			}
			branch.Blocks = append(branch.Blocks, block)
		}
	}

	// Branch and group extras feed scope resolution; normalize them the same
	// way block properties are normalized.
	units.NormalizeProperties(raw)
	branch.Extra = raw
	return branch, nil
}

func decodeBlock(index int, entry map[string]any) (model.Block, error) {
	blockType, ok := popString(entry, "type")
	if !ok || blockType == "" {
		return model.Block{}, fmt.Errorf("block[%d] is missing a type", index)
	}

	block := model.Block{Type: blockType}
	if q, ok := popUint(entry, "quantity"); ok {
		block.Quantity = &q
	}

	units.NormalizeProperties(entry)
	block.Extra = entry
	return block, nil
}

// buildEdges derives the edge list from branch outgoing connections. Edge
// ids follow the "source_target" convention used by the editor.
func buildEdges(network *model.Network) {
	for _, node := range network.Nodes {
		branch, ok := node.(*model.BranchNode)
		if !ok {
			continue
		}
		for _, out := range branch.Outgoing {
			network.Edges = append(network.Edges, model.Edge{
				ID:     branch.ID + "_" + out.Target,
				Source: branch.ID,
				Target: out.Target,
				Data:   model.EdgeData{Weight: out.Weight},
			})
		}
	}
}

func checkReferences(network *model.Network, report *Report) {
	known := make(map[string]bool, len(network.Nodes))
	for _, node := range network.Nodes {
		known[node.Base().ID] = true
	}

	for _, node := range network.Nodes {
		base := node.Base()
		file := base.ID + ".toml"

		if base.ParentID != "" && !known[base.ParentID] {
			report.Warnf(file, "parent '%s' does not exist", base.ParentID)
		}
		if branch, ok := node.(*model.BranchNode); ok {
			for _, out := range branch.Outgoing {
				if !known[out.Target] {
					report.Warnf(file, "outgoing target '%s' does not exist", out.Target)
				}
			}
		}
	}
}

// TOML decode helpers. pop* remove consumed keys so the remainder lands in
// the node's extra properties untouched.

func popString(m map[string]any, key string) (string, bool) {
	s, ok := asString(m[key])
	if ok {
		delete(m, key)
	}
	return s, ok
}

func popUint(m map[string]any, key string) (uint, bool) {
	u, ok := asUint(m[key])
	if ok {
		delete(m, key)
	}
	return u, ok
}

func popTable(m map[string]any, key string) (map[string]any, bool) {
	t, ok := m[key].(map[string]any)
	if ok {
		delete(m, key)
	}
	return t, ok
}

func popArray(m map[string]any, key string) ([]any, bool) {
	a, ok := m[key].([]any)
	if ok {
		delete(m, key)
	}
	return a, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asUint(v any) (uint, bool) {
	n, ok := asInt(v)
	if !ok || n < 0 {
		return 0, false
	}
	return uint(n), true
}
