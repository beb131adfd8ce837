package region

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry holds one Manager per terrain domain (water, and any other
// vehicle class with its own routability rules).
type Registry struct {
	mu       sync.RWMutex
	managers map[string]*Manager
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{managers: make(map[string]*Manager)}
}

// Register adds m under its name.
func (r *Registry) Register(m *Manager) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.managers[m.name]; ok {
		return fmt.Errorf("domain %q already registered", m.name)
	}
	r.managers[m.name] = m
	return nil
}

// Get returns the manager for a domain.
func (r *Registry) Get(name string) (*Manager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.managers[name]
	return m, ok
}

// Names returns registered domain names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.managers))
	for name := range r.managers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// BuildAll rebuilds every domain from scratch, one goroutine per domain.
// Domains must not share terrain storage.
func (r *Registry) BuildAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range r.Names() {
		m, _ := r.Get(name)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := m.Build(); err != nil {
				return fmt.Errorf("building %s regions: %w", name, err)
			}
			slog.Info("regions built", "domain", name, "regions", m.Count())
			return nil
		})
	}
	return g.Wait()
}
