// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed fields.json
var defaultFields []byte

// Default returns the built-in field registry.
func Default() *FieldRegistry {
	reg, err := parse(defaultFields)
	if err != nil {
		panic(fmt.Sprintf("registry: embedded fields.json: %v", err))
	}
	return reg
}

// LoadRegistry reads a registry override from path.
func LoadRegistry(path string) (*FieldRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*FieldRegistry, error) {
	var reg FieldRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(reg.Fields))
	for _, f := range reg.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field with empty name")
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		switch f.Kind {
		case KindNumber, KindRange, KindSelect, KindCheckbox, KindText:
		default:
			return nil, fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
		}
	}
	return &reg, nil
}

// Lookup finds the descriptor for name.
func (r *FieldRegistry) Lookup(name string) (FieldDescriptor, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// KindOf returns the input kind for name, defaulting to text.
func (r *FieldRegistry) KindOf(name string) string {
	if f, ok := r.Lookup(name); ok {
		return f.Kind
	}
	return KindText
}

// Group returns the descriptors of one layout group in registry order.
func (r *FieldRegistry) Group(group string) []FieldDescriptor {
	var out []FieldDescriptor
	for _, f := range r.Fields {
		if f.Group == group {
			out = append(out, f)
		}
	}
	return out
}

// Missing returns the names not described by the registry, in input order.
func (r *FieldRegistry) Missing(names []string) []string {
	var out []string
	for _, name := range names {
		if _, ok := r.Lookup(name); !ok {
			out = append(out, name)
		}
	}
	return out
}
