package query

// Path is one link of a parsed query path. The parser only ever builds a
// strictly linear chain: every variant wraps exactly one inner Path except
// NodePath, which terminates the chain. A Path is built once per query and
// never mutated afterwards.
type Path interface {
	isPath()
}

// NodePath selects a network node by id. The sentinel id "network" selects
// the top-level nodes/edges collections through the enclosing PropertyPath.
type NodePath struct {
	ID string
}

func (*NodePath) isPath() {}

// PropertyPath accesses a field on the value produced by Inner.
type PropertyPath struct {
	Name  string
	Inner Path
}

func (*PropertyPath) isPath() {}

// IndexPath accesses an array element by zero-based index.
type IndexPath struct {
	Index int
	Inner Path
}

func (*IndexPath) isPath() {}

// RangePath slices an array. End is inclusive; nil bounds default to 0 and
// the last index.
type RangePath struct {
	Start *int
	End   *int
	Inner Path
}

func (*RangePath) isPath() {}

// FilterOp is a filter comparison operator.
type FilterOp int

const (
	OpEquals FilterOp = iota
	OpNotEquals
	OpGreaterThan
	OpLessThan
	OpGreaterThanOrEqual
	OpLessThanOrEqual
)

func (op FilterOp) String() string {
	switch op {
	case OpEquals:
		return "="
	case OpNotEquals:
		return "!="
	case OpGreaterThan:
		return ">"
	case OpLessThan:
		return "<"
	case OpGreaterThanOrEqual:
		return ">="
	case OpLessThanOrEqual:
		return "<="
	default:
		return "?"
	}
}

// FilterPath retains array elements whose Field compares true against Value.
// Field may be dotted for nested access.
type FilterPath struct {
	Field string
	Op    FilterOp
	Value string
	Inner Path
}

func (*FilterPath) isPath() {}

// ScopeResolvePath requests cascade resolution of Property after evaluating
// Inner to establish context. Scopes, when non-empty, override the
// configured chain.
type ScopeResolvePath struct {
	Property string
	Scopes   []string
	Inner    Path
}

func (*ScopeResolvePath) isPath() {}
