package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed blocks.json
var defaultLibraryJSON []byte

// PropertyMetadata describes one block property: the physical dimension it
// carries, the unit it should be displayed in and a human readable title.
type PropertyMetadata struct {
	Dimension   string `json:"dimension,omitempty"`
	DefaultUnit string `json:"defaultUnit,omitempty"`
	Title       string `json:"title,omitempty"`
}

// Definition is the schema for one block type at one library version.
type Definition struct {
	BlockType  string                      `json:"block_type"`
	Version    string                      `json:"version"`
	Required   []string                    `json:"required"`
	Optional   []string                    `json:"optional"`
	Properties map[string]PropertyMetadata `json:"properties"`
}

func (d *Definition) Property(name string) *PropertyMetadata {
	if d.Properties == nil {
		return nil
	}
	meta, ok := d.Properties[name]
	if !ok {
		return nil
	}
	return &meta
}

// Known reports whether name is declared by the definition, either as a
// required/optional property or through metadata.
func (d *Definition) Known(name string) bool {
	for _, p := range d.Required {
		if p == name {
			return true
		}
	}
	for _, p := range d.Optional {
		if p == name {
			return true
		}
	}
	_, ok := d.Properties[name]
	return ok
}

// Registry holds block definitions grouped by library version.
type Registry struct {
	versions map[string]map[string]*Definition
}

func NewRegistry() *Registry {
	return &Registry{versions: make(map[string]map[string]*Definition)}
}

// DefaultRegistry returns the built-in embedded block library.
func DefaultRegistry() *Registry {
	var defs []*Definition
	if err := json.Unmarshal(defaultLibraryJSON, &defs); err != nil {
		panic(fmt.Sprintf("failed to parse default embedded block library: %v", err))
	}
	r := NewRegistry()
	for _, def := range defs {
		r.Add(def)
	}
	return r
}

func (r *Registry) Add(def *Definition) {
	if def.Version == "" || def.BlockType == "" {
		return
	}
	if r.versions[def.Version] == nil {
		r.versions[def.Version] = make(map[string]*Definition)
	}
	r.versions[def.Version][def.BlockType] = def
}

func (r *Registry) Definition(version, blockType string) *Definition {
	return r.versions[version][blockType]
}

func (r *Registry) HasVersion(version string) bool {
	return len(r.versions[version]) > 0
}

func (r *Registry) Versions() []string {
	versions := make([]string, 0, len(r.versions))
	for v := range r.versions {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

func (r *Registry) BlockTypes(version string) []string {
	types := make([]string, 0, len(r.versions[version]))
	for t := range r.versions[version] {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// LoadRegistry reads a block library from dir. Each version lives in its own
// subdirectory holding one JSON file per block type:
//
//	<dir>/1.0.0/pump.json
//	<dir>/1.0.0/valve.json
//	<dir>/1.1.0/pump.json
//
// Definitions loaded from dir are merged over the embedded defaults.
func LoadRegistry(dir string) (*Registry, error) {
	r := DefaultRegistry()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		version := entry.Name()
		versionDir := filepath.Join(dir, version)

		files, err := os.ReadDir(versionDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema directory %s: %w", versionDir, err)
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
				continue
			}
			path := filepath.Join(versionDir, file.Name())
			def, err := loadDefinition(path)
			if err != nil {
				return nil, err
			}
			if def.Version == "" {
				def.Version = version
			}
			r.Add(def)
		}
	}

	return r, nil
}

func loadDefinition(path string) (*Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def Definition
	if err := json.Unmarshal(content, &def); err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}
	if def.BlockType == "" {
		return nil, fmt.Errorf("schema %s is missing block_type", path)
	}
	return &def, nil
}
