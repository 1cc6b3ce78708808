// Package entity is the identity collaborator: it owns the set of entities
// the engine may be queried about and the symbol <-> id mapping.
package entity

import (
	"fmt"
	"sort"
	"sync"
)

// Entity identifies one tracked issuer.
type Entity struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
}

// Registry holds the known entities.
// ⭐ SSOT: 엔티티 식별은 이 레지스트리에서만
type Registry struct {
	mu       sync.RWMutex
	byID     map[string]Entity
	bySymbol map[string]string // symbol -> id
}

// NewRegistry creates a registry seeded with the given entities.
func NewRegistry(entities ...Entity) (*Registry, error) {
	r := &Registry{
		byID:     make(map[string]Entity),
		bySymbol: make(map[string]string),
	}
	for _, e := range entities {
		if err := r.Add(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers an entity. Duplicate ids or symbols are rejected.
func (r *Registry) Add(e Entity) error {
	if e.ID == "" {
		return fmt.Errorf("entity id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[e.ID]; exists {
		return fmt.Errorf("entity %s already registered", e.ID)
	}
	if e.Symbol != "" {
		if _, exists := r.bySymbol[e.Symbol]; exists {
			return fmt.Errorf("symbol %s already registered", e.Symbol)
		}
		r.bySymbol[e.Symbol] = e.ID
	}
	r.byID[e.ID] = e
	return nil
}

// Get returns the entity with the given id.
func (r *Registry) Get(id string) (Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok
}

// BySymbol returns the entity registered under the given symbol.
func (r *Registry) BySymbol(symbol string) (Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySymbol[symbol]
	if !ok {
		return Entity{}, false
	}
	return r.byID[id], true
}

// IDs returns all registered entity ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve validates that every requested id is registered and returns them in
// input order. Unknown ids fail the whole request.
func (r *Registry) Resolve(ids []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := r.byID[id]; !ok {
			return nil, fmt.Errorf("unknown entity %s", id)
		}
		resolved = append(resolved, id)
	}
	return resolved, nil
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
