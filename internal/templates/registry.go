package templates

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	forgeerrors "specforge/internal/errors"
)

// Registry provides thread-safe access to templates by name. Reads return
// clones so callers can never mutate registry state.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// DefaultRegistry returns a registry holding the builtin templates.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range builtinTemplates() {
		// Builtins are static and unique by construction.
		if err := r.Register(t); err != nil {
			panic(fmt.Sprintf("builtin template %q: %v", t.Name, err))
		}
	}
	return r
}

// Register adds a template. Nil templates, blank names and duplicates are
// rejected.
func (r *Registry) Register(t *Template) error {
	if t == nil {
		return fmt.Errorf("%w: nil template", forgeerrors.ErrTemplate)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: empty template name", forgeerrors.ErrTemplate)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[t.Name]; exists {
		return fmt.Errorf("%w: duplicate template %q", forgeerrors.ErrTemplate, t.Name)
	}
	r.templates[t.Name] = t.Clone()
	return nil
}

// RegisterOrReplace adds a template, replacing any existing one with the
// same name. Custom packs use this to override builtins.
func (r *Registry) RegisterOrReplace(t *Template) error {
	if t == nil {
		return fmt.Errorf("%w: nil template", forgeerrors.ErrTemplate)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: empty template name", forgeerrors.ErrTemplate)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name] = t.Clone()
	return nil
}

// Get retrieves a clone of the named template.
func (r *Registry) Get(name string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: template %q", forgeerrors.ErrNotFound, name)
	}
	return t.Clone(), nil
}

// List returns clones of all registered templates, sorted by name.
func (r *Registry) List() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		result = append(result, t.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
