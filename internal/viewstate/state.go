// Package viewstate holds the per-screen view states and the active-view
// pointer. Presenters replace state values wholesale and publish them;
// listeners run synchronously, in subscription order, on the publishing goroutine.
package viewstate

import "sync"

// State is a single-value store with its own subscriber list.
type State[T any] struct {
	mu        sync.Mutex
	value     T
	nextID    int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// NewState creates a state holding initial.
func NewState[T any](initial T) *State[T] {
	return &State[T]{value: initial}
}

// Get returns the current value.
func (s *State[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value and notifies listeners.
func (s *State[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
	s.Publish()
}

// Publish notifies every listener of the current value. Listeners may
// subscribe or unsubscribe while being notified; changes apply from the next publish.
func (s *State[T]) Publish() {
	s.mu.Lock()
	v := s.value
	ls := append([]listener[T](nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range ls {
		l.fn(v)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *State[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// ViewName names a screen.
type ViewName string

const (
	ViewDashboard  ViewName = "dashboard"
	ViewWorkspace  ViewName = "workspace"
	ViewEdit       ViewName = "edit"
	ViewCreate     ViewName = "create"
	ViewTest       ViewName = "test"
	ViewEvaluation ViewName = "evaluation"
	ViewNotes      ViewName = "notes"
	ViewTimeline   ViewName = "timeline"
	ViewFlashcards ViewName = "flashcards"
)

// Views lists every screen in display order.
func Views() []ViewName {
	return []ViewName{
		ViewDashboard, ViewWorkspace, ViewEdit, ViewCreate, ViewTest,
		ViewEvaluation, ViewNotes, ViewTimeline, ViewFlashcards,
	}
}

// Manager owns the active-view pointer.
type Manager struct {
	active *State[ViewName]
}

// NewManager creates a manager pointing at the dashboard.
func NewManager() *Manager {
	return &Manager{active: NewState(ViewDashboard)}
}

// Activate points at name and notifies listeners, even if name is already active.
func (m *Manager) Activate(name ViewName) {
	m.active.Set(name)
}

// Active returns the current view.
func (m *Manager) Active() ViewName {
	return m.active.Get()
}

// Subscribe registers fn for view changes.
func (m *Manager) Subscribe(fn func(ViewName)) func() {
	return m.active.Subscribe(fn)
}
