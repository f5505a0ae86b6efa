package scope

import "sort"

// PropertyRegistry exposes read access to the configured global properties
// and inheritance rules.
type PropertyRegistry struct {
	config Config
}

func NewPropertyRegistry(config Config) *PropertyRegistry {
	return &PropertyRegistry{config: config}
}

func (r *PropertyRegistry) GlobalProperty(name string) (any, bool) {
	v, ok := r.config.Properties[name]
	return v, ok
}

func (r *PropertyRegistry) ListGlobalProperties() []string {
	names := make([]string, 0, len(r.config.Properties))
	for name := range r.config.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *PropertyRegistry) HasInheritanceRule(property string) bool {
	_, ok := r.config.Inheritance.Rules[property]
	return ok
}
