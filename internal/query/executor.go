package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/procflow-tools/procflow/internal/model"
	"github.com/procflow-tools/procflow/internal/schema"
	"github.com/procflow-tools/procflow/internal/scope"
)

// floatEps is the tolerance for numeric equality filters: stored values must
// match the filter literal to machine precision.
const floatEps = 2.220446049250313e-16

// UnitFormatter formats a block property for display. The original unit
// string (recorded at load time) and schema metadata may be empty/nil.
// Implementations return the value unchanged when no preference applies.
type UnitFormatter interface {
	FormatProperty(name string, value any, blockType, original string, meta *schema.PropertyMetadata) any
}

// Executor evaluates parsed query paths against a network. The network and
// all collaborators are read-only; a single Executor is safe for concurrent
// use.
type Executor struct {
	network       *model.Network
	resolver      *scope.Resolver
	units         UnitFormatter
	schemas       *schema.Registry
	schemaVersion string
}

func NewExecutor(network *model.Network) *Executor {
	return &Executor{network: network}
}

func NewExecutorWithResolver(network *model.Network, resolver *scope.Resolver) *Executor {
	return &Executor{network: network, resolver: resolver}
}

// SetUnitFormatting installs the display-formatting hook applied to block
// properties during node conversion. The registry and version locate
// per-property schema metadata and may be nil/empty.
func (e *Executor) SetUnitFormatting(units UnitFormatter, schemas *schema.Registry, version string) {
	e.units = units
	e.schemas = schemas
	e.schemaVersion = version
}

// Execute is a convenience wrapper for one-shot evaluation.
func Execute(path Path, network *model.Network, resolver *scope.Resolver) (any, error) {
	return NewExecutorWithResolver(network, resolver).Execute(path)
}

// evalContext carries the state threaded through one evaluation: the last
// node id and block index seen on the way down. It is created fresh per
// Execute call.
type evalContext struct {
	nodeID     string
	nodeSet    bool
	blockIndex int
	blockSet   bool
}

// Execute evaluates path and returns the resulting structured value
// (nil, bool, number, string, []any or map[string]any).
func (e *Executor) Execute(path Path) (any, error) {
	// Network-level queries bypass node lookup. The parser produces either
	// the bare collection or a single filter wrapped around it.
	if name, filter, ok := networkCollection(path); ok {
		value, err := e.executeNetworkQuery(name)
		if err != nil || filter == nil {
			return value, err
		}
		return e.applyFilter(value, filter.Field, filter.Op, filter.Value)
	}
	return e.eval(path, &evalContext{})
}

// networkCollection recognizes Property("nodes"|"edges", Node("network")),
// optionally wrapped in one Filter, and returns the collection name and the
// filter if present.
func networkCollection(path Path) (string, *FilterPath, bool) {
	filter, _ := path.(*FilterPath)
	if filter != nil {
		path = filter.Inner
	}
	prop, ok := path.(*PropertyPath)
	if !ok {
		return "", nil, false
	}
	node, ok := prop.Inner.(*NodePath)
	if !ok || node.ID != "network" {
		return "", nil, false
	}
	return prop.Name, filter, true
}

func (e *Executor) eval(path Path, ctx *evalContext) (any, error) {
	switch p := path.(type) {
	case *NodePath:
		ctx.nodeID = p.ID
		ctx.nodeSet = true
		return e.nodeValue(p.ID)

	case *PropertyPath:
		value, err := e.eval(p.Inner, ctx)
		if err != nil {
			return nil, err
		}
		// Block-shaped values (objects carrying a string "type" field) fall
		// back to scope resolution when direct lookup misses and the context
		// pins down a concrete block. The shape check is a heuristic kept
		// from the query language's definition: an unrelated object with a
		// "type" key triggers the same fallback.
		if isBlockShaped(value) && ctx.blockSet && ctx.nodeSet && e.resolver != nil {
			v, err := e.getProperty(value, p.Name)
			if err == nil {
				return v, nil
			}
			var notFound *PropertyNotFoundError
			if errors.As(err, &notFound) {
				return e.resolveScoped(p.Name, nil, ctx)
			}
			return nil, err
		}
		return e.getProperty(value, p.Name)

	case *IndexPath:
		ctx.blockIndex = p.Index
		ctx.blockSet = true
		value, err := e.eval(p.Inner, ctx)
		if err != nil {
			return nil, err
		}
		return e.getIndex(value, p.Index)

	case *RangePath:
		value, err := e.eval(p.Inner, ctx)
		if err != nil {
			return nil, err
		}
		return e.getRange(value, p.Start, p.End)

	case *FilterPath:
		value, err := e.eval(p.Inner, ctx)
		if err != nil {
			return nil, err
		}
		return e.applyFilter(value, p.Field, p.Op, p.Value)

	case *ScopeResolvePath:
		// The inner path is evaluated purely to establish context.
		if _, err := e.eval(p.Inner, ctx); err != nil {
			return nil, err
		}
		if e.resolver == nil {
			return nil, &InvalidTypeError{Detail: "scope resolution requires a scope resolver"}
		}
		return e.resolveScoped(p.Property, p.Scopes, ctx)

	default:
		return nil, &InvalidTypeError{Detail: fmt.Sprintf("unknown path variant %T", path)}
	}
}

func isBlockShaped(value any) bool {
	obj, ok := value.(map[string]any)
	if !ok {
		return false
	}
	_, ok = obj["type"].(string)
	return ok
}

func (e *Executor) executeNetworkQuery(collection string) (any, error) {
	switch collection {
	case "nodes":
		nodes := make([]any, 0, len(e.network.Nodes))
		for _, node := range e.network.Nodes {
			nodes = append(nodes, e.convertNode(node))
		}
		return nodes, nil
	case "edges":
		edges := make([]any, 0, len(e.network.Edges))
		for _, edge := range e.network.Edges {
			edges = append(edges, map[string]any{
				"id":     edge.ID,
				"source": edge.Source,
				"target": edge.Target,
				"data":   map[string]any{"weight": edge.Data.Weight},
			})
		}
		return edges, nil
	default:
		return nil, &InvalidTypeError{Detail: fmt.Sprintf("unknown network collection: %s", collection)}
	}
}

func (e *Executor) nodeValue(id string) (any, error) {
	node := e.network.FindNode(id)
	if node == nil {
		return nil, &NodeNotFoundError{ID: id}
	}
	return e.convertNode(node), nil
}

// convertNode builds the canonical query representation of a node. Branch
// content is exposed directly (branch-4/blocks), without the export
// document's data wrapper.
func (e *Executor) convertNode(node model.Node) map[string]any {
	base := node.Base()
	obj := map[string]any{
		"id":       base.ID,
		"type":     base.Type,
		"position": map[string]any{"x": base.Position.X, "y": base.Position.Y},
	}
	if base.Label != "" {
		obj["label"] = base.Label
	}

	branch, ok := node.(*model.BranchNode)
	if !ok {
		if _, isGroup := node.(*model.GroupNode); isGroup && base.ParentID != "" {
			obj["parentId"] = base.ParentID
		}
		return obj
	}

	blocks := make([]any, 0, len(branch.Blocks))
	for i := range branch.Blocks {
		blocks = append(blocks, e.convertBlock(&branch.Blocks[i]))
	}
	obj["blocks"] = blocks

	if len(branch.Outgoing) > 0 {
		outgoing := make([]any, 0, len(branch.Outgoing))
		for _, out := range branch.Outgoing {
			outgoing = append(outgoing, map[string]any{
				"target": out.Target,
				"weight": out.Weight,
			})
		}
		obj["outgoing"] = outgoing
	}
	if base.ParentID != "" {
		obj["parentId"] = base.ParentID
	}
	return obj
}

func (e *Executor) convertBlock(block *model.Block) map[string]any {
	obj := map[string]any{"type": block.Type}
	if block.Quantity != nil {
		obj["quantity"] = *block.Quantity
	}

	var meta *schema.PropertyMetadata
	for key, value := range block.Extra {
		// Keys recording the pre-normalization unit strings are load-time
		// bookkeeping, not block properties.
		if strings.HasPrefix(key, "_") && strings.HasSuffix(key, "_original") {
			continue
		}

		if e.units != nil {
			original, _ := block.Extra["_"+key+"_original"].(string)
			meta = nil
			if e.schemas != nil && e.schemaVersion != "" {
				if def := e.schemas.Definition(e.schemaVersion, block.Type); def != nil {
					meta = def.Property(key)
				}
			}
			obj[key] = e.units.FormatProperty(key, value, block.Type, original, meta)
		} else {
			obj[key] = value
		}
	}
	return obj
}

func (e *Executor) getProperty(value any, name string) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &InvalidTypeError{Detail: fmt.Sprintf("cannot access property '%s' on non-object", name)}
	}
	// Older documents nested node content under a "data" key; requesting it
	// returns the object itself.
	if name == "data" {
		return value, nil
	}
	v, ok := obj[name]
	if !ok {
		return nil, &PropertyNotFoundError{Name: name}
	}
	return v, nil
}

func (e *Executor) getNestedProperty(value any, path string) (any, error) {
	current := value
	for _, part := range strings.Split(path, ".") {
		v, err := e.getProperty(current, part)
		if err != nil {
			return nil, err
		}
		current = v
	}
	return current, nil
}

func (e *Executor) getIndex(value any, idx int) (any, error) {
	arr, ok := value.([]any)
	if !ok {
		return nil, &InvalidTypeError{Detail: fmt.Sprintf("cannot index into non-array (index: %d)", idx)}
	}
	if idx >= len(arr) {
		return nil, &IndexOutOfRangeError{Index: idx, Len: len(arr)}
	}
	return arr[idx], nil
}

func (e *Executor) getRange(value any, start, end *int) (any, error) {
	arr, ok := value.([]any)
	if !ok {
		return nil, &InvalidTypeError{Detail: "cannot apply range to non-array"}
	}

	startIdx := 0
	if start != nil {
		startIdx = *start
	}
	endIdx := len(arr) - 1
	if endIdx < 0 {
		endIdx = 0
	}
	if end != nil {
		endIdx = *end
	}

	if startIdx >= len(arr) {
		return nil, &IndexOutOfRangeError{Index: startIdx, Len: len(arr)}
	}
	if endIdx >= len(arr) {
		return nil, &IndexOutOfRangeError{Index: endIdx, Len: len(arr)}
	}
	if startIdx > endIdx {
		return nil, &InvalidTypeError{Detail: fmt.Sprintf("range start (%d) must be <= end (%d)", startIdx, endIdx)}
	}

	// Inclusive end.
	slice := make([]any, endIdx-startIdx+1)
	copy(slice, arr[startIdx:endIdx+1])
	return slice, nil
}

func (e *Executor) applyFilter(value any, field string, op FilterOp, filterValue string) (any, error) {
	arr, ok := value.([]any)
	if !ok {
		return nil, &InvalidTypeError{Detail: "filter can only be applied to arrays"}
	}

	filtered := []any{}
	for _, item := range arr {
		var fieldValue any
		var err error
		if strings.Contains(field, ".") {
			fieldValue, err = e.getNestedProperty(item, field)
		} else {
			fieldValue, err = e.getProperty(item, field)
		}
		// Elements without the field are excluded, not an error.
		if err != nil {
			continue
		}
		match, err := matchesFilterValue(fieldValue, op, filterValue)
		if err != nil || !match {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered, nil
}

func matchesFilterValue(fieldValue any, op FilterOp, filterValue string) (bool, error) {
	switch op {
	case OpEquals:
		return matchesValue(fieldValue, filterValue), nil
	case OpNotEquals:
		return !matchesValue(fieldValue, filterValue), nil
	case OpGreaterThan:
		return compareNumeric(fieldValue, filterValue, func(a, b float64) bool { return a > b })
	case OpLessThan:
		return compareNumeric(fieldValue, filterValue, func(a, b float64) bool { return a < b })
	case OpGreaterThanOrEqual:
		return compareNumeric(fieldValue, filterValue, func(a, b float64) bool { return a >= b })
	case OpLessThanOrEqual:
		return compareNumeric(fieldValue, filterValue, func(a, b float64) bool { return a <= b })
	default:
		return false, &InvalidTypeError{Detail: fmt.Sprintf("unknown filter operator %v", op)}
	}
}

func matchesValue(value any, filterValue string) bool {
	switch v := value.(type) {
	case string:
		return v == filterValue
	case bool:
		if filterValue != "true" && filterValue != "false" {
			return false
		}
		return v == (filterValue == "true")
	default:
		n, ok := asFloat(value)
		if !ok {
			return false
		}
		f, err := strconv.ParseFloat(filterValue, 64)
		if err != nil {
			return false
		}
		return math.Abs(n-f) < floatEps
	}
}

func compareNumeric(value any, filterValue string, cmp func(a, b float64) bool) (bool, error) {
	n, ok := asFloat(value)
	if !ok {
		return false, &InvalidTypeError{Detail: "comparison operators only work with numbers"}
	}
	f, err := strconv.ParseFloat(filterValue, 64)
	if err != nil {
		return false, &InvalidTypeError{Detail: fmt.Sprintf("cannot parse filter value as number: %s", filterValue)}
	}
	return cmp(n, f), nil
}

func (e *Executor) resolveScoped(property string, explicitScopes []string, ctx *evalContext) (any, error) {
	if !ctx.nodeSet {
		return nil, &InvalidTypeError{Detail: "scope resolution requires a node context"}
	}
	if !ctx.blockSet {
		return nil, &InvalidTypeError{Detail: "scope resolution requires a block context (use a path like branch-4/blocks/0)"}
	}

	branch := e.network.FindBranch(ctx.nodeID)
	if branch == nil {
		return nil, &NodeNotFoundError{ID: ctx.nodeID}
	}
	if ctx.blockIndex >= len(branch.Blocks) {
		return nil, &IndexOutOfRangeError{Index: ctx.blockIndex, Len: len(branch.Blocks)}
	}
	block := &branch.Blocks[ctx.blockIndex]

	var group *model.GroupNode
	if branch.ParentID != "" {
		group = e.network.FindGroup(branch.ParentID)
	}

	// Unrecognized scope names are dropped silently; an empty result falls
	// back to the configured chain.
	var levels []scope.ScopeLevel
	for _, name := range explicitScopes {
		if level, ok := scope.ParseScopeLevel(strings.ToLower(name)); ok {
			levels = append(levels, level)
		}
	}

	var value any
	var found bool
	if len(levels) > 0 {
		value, _, found = e.resolver.ResolveWithScopes(property, block, branch, group, levels)
	} else {
		value, found = e.resolver.Resolve(property, block, branch, group)
	}
	if !found {
		return nil, &PropertyNotFoundError{Name: property}
	}
	return value, nil
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
