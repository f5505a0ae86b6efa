package validator

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/procflow-tools/procflow/internal/model"
	"github.com/procflow-tools/procflow/internal/schema"
	"github.com/procflow-tools/procflow/internal/units"
)

type DiagnosticLevel int

const (
	LevelError DiagnosticLevel = iota
	LevelWarning
)

func (l DiagnosticLevel) String() string {
	if l == LevelWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one validation finding, located by node id and block index.
type Diagnostic struct {
	Level      DiagnosticLevel
	Message    string
	Node       string
	BlockIndex int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s/blocks/%d: %s", d.Level, d.Node, d.BlockIndex, d.Message)
}

// Validator checks branch blocks against a versioned block library.
type Validator struct {
	Diagnostics []Diagnostic

	registry *schema.Registry
	version  string
	cueCtx   *cue.Context
}

func NewValidator(registry *schema.Registry, version string) *Validator {
	return &Validator{
		registry: registry,
		version:  version,
		cueCtx:   cuecontext.New(),
	}
}

func (v *Validator) HasErrors() bool {
	for _, d := range v.Diagnostics {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}

// ValidateNetwork checks every block of every branch node. A missing schema
// for a block type is a warning; a missing required property is an error.
func (v *Validator) ValidateNetwork(network *model.Network) {
	for _, node := range network.Nodes {
		branch, ok := node.(*model.BranchNode)
		if !ok {
			continue
		}
		for i := range branch.Blocks {
			v.validateBlock(branch.ID, i, &branch.Blocks[i])
		}
	}
}

func (v *Validator) validateBlock(nodeID string, blockIndex int, block *model.Block) {
	def := v.registry.Definition(v.version, block.Type)
	if def == nil {
		v.report(LevelWarning, nodeID, blockIndex,
			fmt.Sprintf("no schema for block type '%s' (version %s)", block.Type, v.version))
		return
	}

	for _, name := range def.Required {
		if name == "type" || name == "quantity" {
			continue
		}
		if _, ok := block.Extra[name]; !ok {
			v.report(LevelError, nodeID, blockIndex,
				fmt.Sprintf("missing required property '%s' for block type '%s'", name, block.Type))
		}
	}

	for key := range block.Extra {
		if key == "type" || key == "quantity" || units.IsOriginalKey(key) {
			continue
		}
		if !def.Known(key) {
			v.report(LevelWarning, nodeID, blockIndex,
				fmt.Sprintf("unknown property '%s' for block type '%s'", key, block.Type))
		}
	}

	v.validateWithCUE(nodeID, blockIndex, block, def)
}

// validateWithCUE enforces that dimensioned properties are numeric after
// normalization. A dimensioned property still holding a string means its
// unit was not recognized at load time.
func (v *Validator) validateWithCUE(nodeID string, blockIndex int, block *model.Block, def *schema.Definition) {
	constraint := buildConstraint(def)
	if constraint == "" {
		return
	}

	schemaVal := v.cueCtx.CompileString(constraint)
	if schemaVal.Err() != nil {
		v.report(LevelError, nodeID, blockIndex,
			fmt.Sprintf("invalid schema for block type '%s': %v", block.Type, schemaVal.Err()))
		return
	}

	data := make(map[string]any, len(block.Extra))
	for key, value := range block.Extra {
		if units.IsOriginalKey(key) {
			continue
		}
		data[key] = value
	}

	res := schemaVal.Unify(v.cueCtx.Encode(data))
	if err := res.Validate(cue.Concrete(true)); err != nil {
		for _, e := range errors.Errors(err) {
			v.report(LevelError, nodeID, blockIndex,
				fmt.Sprintf("schema validation error: %v", e))
		}
	}
}

// buildConstraint renders the definition as an open CUE struct constraining
// dimensioned properties to numbers. Returns "" when nothing is constrained.
func buildConstraint(def *schema.Definition) string {
	var b strings.Builder
	for name, meta := range def.Properties {
		if meta.Dimension == "" {
			continue
		}
		fmt.Fprintf(&b, "%q?: number\n", name)
	}
	if b.Len() == 0 {
		return ""
	}
	b.WriteString("...\n")
	return "{\n" + b.String() + "}"
}

func (v *Validator) report(level DiagnosticLevel, nodeID string, blockIndex int, msg string) {
	v.Diagnostics = append(v.Diagnostics, Diagnostic{
		Level:      level,
		Message:    msg,
		Node:       nodeID,
		BlockIndex: blockIndex,
	})
}
