// internal/memory/manager.go
package memory

// Manager prunes agent memories between rounds so prompt context stays
// bounded as the debate grows.
type Manager struct {
	keep  int     // recent-entry window always retained
	floor float64 // relevance at or above this survives outside the window
}

// NewManager creates a pruning manager. keep must be at least 1; the most
// recent entry is never dropped.
func NewManager(keep int, floor float64) *Manager {
	if keep < 1 {
		keep = 1
	}
	return &Manager{keep: keep, floor: floor}
}

// PruneAll prunes every participant's memory in place
func (m *Manager) PruneAll(s *Store) {
	for _, p := range s.Participants() {
		s.Replace(p, m.Prune(s.Entries(p)))
	}
}

// Prune retains the newest entries within the window plus any older entry
// whose topic relevance clears the floor. Chronological order is preserved.
// Idempotent: survivors of one pass survive the next unchanged.
func (m *Manager) Prune(entries []Entry) []Entry {
	if len(entries) <= m.keep {
		return entries
	}
	cut := len(entries) - m.keep
	pruned := make([]Entry, 0, m.keep)
	for _, e := range entries[:cut] {
		if e.Relevance >= m.floor {
			pruned = append(pruned, e)
		}
	}
	return append(pruned, entries[cut:]...)
}
