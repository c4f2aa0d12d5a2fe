package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// NamedPrefix marks a reference to a configured filter, as in --filter @active
const NamedPrefix = "@"

// Manager holds named filters and compiles ad-hoc expressions
type Manager struct {
	compiler Compiler
	filters  map[string]CompiledFilter
	mu       sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler: NewExprCompiler(WithCache(100)),
		filters:  make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RegisterFilters compiles and registers filters. Nothing is registered
// unless every expression compiles.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for name, expr := range filters {
		filter, err := m.compiler.Compile(expr)
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

// GetFilter returns a compiled filter by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.filters[name]
	m.mu.RUnlock()
	return filter, exists
}

// ListFilters returns all registered filter names, sorted
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.filters))
}

// Resolve turns a --filter argument into a filter: @name looks up a
// registered filter, anything else is compiled as an expression.
func (m *Manager) Resolve(arg string) (CompiledFilter, error) {
	arg = strings.TrimSpace(arg)
	if name, ok := strings.CutPrefix(arg, NamedPrefix); ok {
		filter, exists := m.GetFilter(name)
		if !exists {
			return nil, &UnknownFilterError{Name: name}
		}
		return filter, nil
	}
	return m.compiler.Compile(arg)
}
