package plan

import "sync"

// Manager tracks grids that are currently open for editing, keyed by
// plan id. Grids themselves are unsynchronized; all mutation goes
// through Mutate, which holds the lock for the duration of the edit so
// each user action lands as a single observable transition.
type Manager struct {
	mu    sync.RWMutex
	grids map[int64]*Grid
}

func NewManager() *Manager {
	return &Manager{grids: make(map[int64]*Grid)}
}

// Put installs (or replaces) the open grid for its plan id.
func (m *Manager) Put(g *Grid) {
	m.mu.Lock()
	m.grids[g.ID()] = g
	m.mu.Unlock()
}

// Get returns the open grid for a plan id, if any.
func (m *Manager) Get(id int64) (*Grid, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.grids[id]
	return g, ok
}

// Mutate runs fn against the open grid for id under the write lock.
// It reports false if no grid is open for that id.
func (m *Manager) Mutate(id int64, fn func(*Grid) error) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grids[id]
	if !ok {
		return false, nil
	}
	return true, fn(g)
}

// Close discards the open grid for a plan id. Unsaved edits are dropped,
// matching the discard-on-navigate lifecycle of a plan.
func (m *Manager) Close(id int64) {
	m.mu.Lock()
	delete(m.grids, id)
	m.mu.Unlock()
}
