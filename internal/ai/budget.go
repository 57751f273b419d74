package ai

import (
	"fmt"
	"sync"
)

// BudgetChecker checks and records token usage per course.
type BudgetChecker interface {
	// Check returns true if the course has budget remaining.
	Check(courseID string) (bool, error)
	// Record adds token usage for a course.
	Record(courseID string, tokens int) error
}

// TokenBudget is an in-memory per-course token budget. A zero limit means unlimited.
type TokenBudget struct {
	mu        sync.RWMutex
	limit     int64
	overrides map[string]int64
	usage     map[string]int64
}

// NewTokenBudget creates a budget applying limit to every course.
func NewTokenBudget(limit int64) *TokenBudget {
	return &TokenBudget{
		limit:     limit,
		overrides: make(map[string]int64),
		usage:     make(map[string]int64),
	}
}

// SetLimit overrides the limit for one course.
func (b *TokenBudget) SetLimit(courseID string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[courseID] = tokens
}

func (b *TokenBudget) Check(courseID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	limit := b.limitFor(courseID)
	if limit <= 0 {
		return true, nil
	}
	return b.usage[courseID] < limit, nil
}

func (b *TokenBudget) Record(courseID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[courseID] += int64(tokens)
	return nil
}

// Usage returns tokens used and the effective limit for a course.
func (b *TokenBudget) Usage(courseID string) (used int64, limit int64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.usage[courseID], b.limitFor(courseID)
}

func (b *TokenBudget) limitFor(courseID string) int64 {
	if v, ok := b.overrides[courseID]; ok {
		return v
	}
	return b.limit
}
