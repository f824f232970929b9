// internal/render/models.go
//
// Business-model registry.
//
// Context
// -------
// Each microsite is built from one “business model” (artesanias, cocina,
// and so on): a template directory plus a default color palette and icon.
// The registry is loaded once from `conf/models.yaml` and passed into the
// Renderer explicitly, so tests can construct a fake registry without
// touching the filesystem.
package render

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// Palette is the four-color scheme a model ships with.  Explicit per-site
// primary/secondary overrides win over these defaults.
type Palette struct {
	Primary   string `koanf:"primary"`
	Secondary string `koanf:"secondary"`
	Accent    string `koanf:"accent"`
	Neutral   string `koanf:"neutral"`
}

// Model describes one business vertical.
type Model struct {
	ID      string  `koanf:"id"`
	Label   string  `koanf:"label"`
	Icon    string  `koanf:"icon"`
	Palette Palette `koanf:"palette"`
}

// Registry maps model IDs to their definitions.  Immutable after load.
type Registry struct {
	models map[string]Model
	order  []string
}

// NewRegistry builds a registry from explicit models (test seam).
func NewRegistry(models ...Model) *Registry {
	r := &Registry{models: make(map[string]Model, len(models))}
	for _, m := range models {
		if _, dup := r.models[m.ID]; dup {
			continue
		}
		r.models[m.ID] = m
		r.order = append(r.order, m.ID)
	}
	return r
}

// LoadRegistry reads conf/models.yaml.
func LoadRegistry(path string) (*Registry, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load models config %s: %w", path, err)
	}
	var raw struct {
		Models []Model `koanf:"models"`
	}
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, fmt.Errorf("parse models config %s: %w", path, err)
	}
	if len(raw.Models) == 0 {
		return nil, fmt.Errorf("models config %s defines no models", path)
	}
	return NewRegistry(raw.Models...), nil
}

// Get returns the model for id.
func (r *Registry) Get(id string) (Model, bool) {
	m, ok := r.models[id]
	return m, ok
}

// All returns every model in declaration order (panel model picker).
func (r *Registry) All() []Model {
	out := make([]Model, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.models[id])
	}
	return out
}
