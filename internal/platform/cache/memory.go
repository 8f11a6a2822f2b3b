package cache

import (
	"context"
	"sync"
)

// Memory is a process-local Backend.
type Memory struct {
	mu     sync.Mutex
	spaces map[string]*memorySpace
	closed bool
}

type memorySpace struct {
	epoch   int64
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	payload    []byte
	present    bool
	version    int64
	generation int64
}

func NewMemory() *Memory {
	return &Memory{spaces: make(map[string]*memorySpace)}
}

func (m *Memory) Lookup(_ context.Context, space, key string) (Entry, Ticket, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Entry{}, Ticket{}, false, ErrClosed
	}

	s := m.space(space)
	ticket := Ticket{Epoch: s.epoch}
	entry, ok := s.entries[key]
	if !ok {
		return Entry{}, ticket, false, nil
	}
	ticket.Generation = entry.generation
	if !entry.present {
		return Entry{}, ticket, false, nil
	}
	return Entry{Payload: clone(entry.payload), Version: entry.version}, ticket, true, nil
}

func (m *Memory) Fill(_ context.Context, space, key string, ticket Ticket, payload []byte, version int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}

	s := m.space(space)
	if s.epoch != ticket.Epoch {
		return false, nil
	}
	entry := s.entry(key)
	if entry.generation != ticket.Generation || version < entry.version {
		return false, nil
	}
	entry.payload = clone(payload)
	entry.present = true
	entry.version = version
	return true, nil
}

func (m *Memory) Put(_ context.Context, space, key string, payload []byte, version int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}

	entry := m.space(space).entry(key)
	if version < entry.version {
		return false, nil
	}
	entry.payload = clone(payload)
	entry.present = true
	entry.version = version
	entry.generation++
	return true, nil
}

func (m *Memory) Evict(_ context.Context, space, key string, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	entry := m.space(space).entry(key)
	entry.payload = nil
	entry.present = false
	if version > entry.version {
		entry.version = version
	}
	entry.generation++
	return nil
}

func (m *Memory) Clear(_ context.Context, space string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	m.space(space).clear()
	return nil
}

func (m *Memory) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	for _, s := range m.spaces {
		s.clear()
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.spaces = make(map[string]*memorySpace)
	return nil
}

func (m *Memory) space(name string) *memorySpace {
	s, ok := m.spaces[name]
	if !ok {
		s = &memorySpace{entries: make(map[string]*memoryEntry)}
		m.spaces[name] = s
	}
	return s
}

// clear drops every payload but keeps version and generation, so a write older than
// what was cached before the clear is still rejected.
func (s *memorySpace) clear() {
	s.epoch++
	for _, entry := range s.entries {
		entry.payload = nil
		entry.present = false
	}
}

func (s *memorySpace) entry(key string) *memoryEntry {
	entry, ok := s.entries[key]
	if !ok {
		entry = &memoryEntry{}
		s.entries[key] = entry
	}
	return entry
}

func clone(payload []byte) []byte {
	if payload == nil {
		return nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out
}
