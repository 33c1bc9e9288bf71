package statecell

// ReadHandle grants shared, read-only access to a cell's value until
// released. A handle belongs to the goroutine that acquired it and must
// not be shared.
type ReadHandle[T any] struct {
	cell     *Cell[T]
	released bool
}

// Value returns the protected value. Callers must not retain references
// into the value past Release.
func (h *ReadHandle[T]) Value() T {
	return h.cell.value
}

// Release gives up shared access. Releasing twice is a no-op. A panic
// while a read handle is held does not poison the cell: readers cannot
// have left the value inconsistent.
func (h *ReadHandle[T]) Release() {
	if h.released {
		return
	}
	h.released = true
	h.cell.mu.RUnlock()
}

// WriteHandle grants exclusive, mutable access to a cell's value until
// released. A handle belongs to the goroutine that acquired it and must
// not be shared.
type WriteHandle[T any] struct {
	cell     *Cell[T]
	released bool
}

// Value returns the protected value.
func (h *WriteHandle[T]) Value() T {
	return h.cell.value
}

// Ptr returns a pointer to the protected value for in-place mutation.
// The pointer must not be used after Release.
func (h *WriteHandle[T]) Ptr() *T {
	return &h.cell.value
}

// Set replaces the protected value.
func (h *WriteHandle[T]) Set(value T) {
	h.cell.value = value
}

// Release gives up exclusive access, waking waiting readers and writers.
// Releasing twice is a no-op.
//
// Release must be deferred directly (defer handle.Release()): when the
// critical section panics, the deferred call observes the unwind, marks
// the cell poisoned, unlocks it, and re-panics. Wrapping Release in
// another function defeats the panic detection and the cell would stay
// unlocked but unpoisoned.
func (h *WriteHandle[T]) Release() {
	if h.released {
		return
	}
	h.released = true
	if r := recover(); r != nil {
		h.cell.poisoned = true
		h.cell.logger.Error("state cell poisoned: panic while holding exclusive access",
			"cell", h.cell.name, "panic", r)
		h.cell.mu.Unlock()
		panic(r)
	}
	h.cell.mu.Unlock()
}
