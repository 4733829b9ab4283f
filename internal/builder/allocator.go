package builder

import (
	"fmt"

	"railgen/internal/domain"
)

// Allocator hands out default labels of the form "<kind>.<n>", one counter per kind.
// Each Builder owns its allocator; counters are never shared between builders.
type Allocator struct {
	next map[domain.EntityKind]int
}

// NewAllocator creates an allocator with every counter at zero.
func NewAllocator() *Allocator {
	return &Allocator{next: make(map[domain.EntityKind]int)}
}

// Next returns the next label for kind and advances its counter.
func (a *Allocator) Next(kind domain.EntityKind) string {
	n := a.next[kind]
	a.next[kind] = n + 1
	return fmt.Sprintf("%s.%d", kind, n)
}

// Peek returns the label Next would produce without advancing.
func (a *Allocator) Peek(kind domain.EntityKind) string {
	return fmt.Sprintf("%s.%d", kind, a.next[kind])
}

// Reset restarts the counter of kind at zero.
func (a *Allocator) Reset(kind domain.EntityKind) {
	delete(a.next, kind)
}

// ResetAll restarts every counter.
func (a *Allocator) ResetAll() {
	clear(a.next)
}
