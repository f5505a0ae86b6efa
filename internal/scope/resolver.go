package scope

import "github.com/procflow-tools/procflow/internal/model"

// Resolver walks the property cascade for a block: Block -> Branch -> Group
// -> Global, in the order determined by the inheritance configuration.
type Resolver struct {
	config Config
}

func NewResolver(config Config) *Resolver {
	return &Resolver{config: config}
}

// Resolve returns the first value found for property along the configured
// chain for the block's type. The second return is false when no scope holds
// the property; that is not an error at this layer.
func (r *Resolver) Resolve(property string, block *model.Block, branch *model.BranchNode, group *model.GroupNode) (any, bool) {
	chain := r.chain(property, block.Type)
	v, _, ok := r.walk(property, chain, block, branch, group)
	return v, ok
}

// ResolveWithScopes resolves property using an explicit chain instead of the
// configured one, reporting which scope supplied the value.
func (r *Resolver) ResolveWithScopes(property string, block *model.Block, branch *model.BranchNode, group *model.GroupNode, chain []ScopeLevel) (any, ScopeLevel, bool) {
	return r.walk(property, chain, block, branch, group)
}

func (r *Resolver) walk(property string, chain []ScopeLevel, block *model.Block, branch *model.BranchNode, group *model.GroupNode) (any, ScopeLevel, bool) {
	for _, level := range chain {
		switch level {
		case LevelBlock:
			if v, ok := block.Extra[property]; ok {
				return v, level, true
			}
		case LevelBranch:
			if v, ok := branch.Extra[property]; ok {
				return v, level, true
			}
		case LevelGroup:
			// No owning group means the scope is skipped, not an error.
			if group == nil {
				continue
			}
			if v, ok := group.Extra[property]; ok {
				return v, level, true
			}
		case LevelGlobal:
			if v, ok := r.config.Properties[property]; ok {
				return v, level, true
			}
		}
	}
	return nil, 0, false
}

func (r *Resolver) chain(property, blockType string) []ScopeLevel {
	if rule, ok := r.config.Inheritance.Rules[property]; ok {
		return rule.ChainFor(blockType)
	}
	return r.config.Inheritance.General
}

// ChainForProperty returns the scope chain that Resolve would walk for the
// given property. An empty blockType skips block-type overrides.
func (r *Resolver) ChainForProperty(property, blockType string) []ScopeLevel {
	if blockType != "" {
		return r.chain(property, blockType)
	}
	if rule, ok := r.config.Inheritance.Rules[property]; ok {
		return rule.BaseChain()
	}
	return r.config.Inheritance.General
}

// HasGlobalProperty reports whether the global store holds the property.
func (r *Resolver) HasGlobalProperty(property string) bool {
	_, ok := r.config.Properties[property]
	return ok
}
