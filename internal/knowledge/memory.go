package knowledge

import "sync"

// MemoryStore keeps the knowledge base in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data *Knowledge
}

// NewMemoryStore creates an empty in-memory store. Until the first Save,
// Load reports NotFound, mirroring a store file that does not exist yet.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored knowledge base.
func (m *MemoryStore) Load() (*Knowledge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, &LoadError{Kind: NotFound, Path: ":memory:"}
	}
	return m.data.Clone(), nil
}

// Save merges partial into the stored knowledge base.
func (m *MemoryStore) Save(partial *Knowledge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	merged := m.data.Clone()
	merged.Merge(partial)
	m.data = merged
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
