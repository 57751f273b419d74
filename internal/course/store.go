package course

import (
	"fmt"
	"sync"
)

// Store persists courses keyed by ID.
type Store interface {
	// Create persists a new course. It fails with ErrAlreadyExists when the ID is taken.
	Create(c Course) error
	// Update replaces the stored course wholesale. It fails with ErrNotFound when absent.
	Update(c Course) error
	FindByID(id string) (*Course, error)
	// FindAll returns every course in insertion order.
	FindAll() ([]Course, error)
	// Delete removes a course. Deleting an unknown ID is not an error.
	Delete(id string) error
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	courses map[string]Course
	order   []string
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory course store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		courses: make(map[string]Course),
	}
}

func (s *MemoryStore) Create(c Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[c.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, c.ID)
	}
	s.courses[c.ID] = c.Clone()
	s.order = append(s.order, c.ID)
	return nil
}

func (s *MemoryStore) Update(c Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[c.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, c.ID)
	}
	s.courses[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) FindByID(id string) (*Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := c.Clone()
	return &out, nil
}

func (s *MemoryStore) FindAll() ([]Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Course, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.courses[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return nil
	}
	delete(s.courses, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
