// Package statecell provides a process-wide, lazily-constructed container
// for a single shared value, guarded by a reader/writer lock. The value is
// built exactly once on first access from any goroutine; afterwards any
// number of concurrent readers or exactly one writer may hold it.
//
// A goroutine that panics while holding exclusive access leaves the value
// in an unknown state, so the cell becomes poisoned: every later
// acquisition fails with ErrPoisoned until the process restarts.
package statecell

import (
	"fmt"
	"sync"
)

// Cell holds one lazily-constructed value of type T behind a
// reader/writer lock. The zero Cell is not usable; create one with New.
type Cell[T any] struct {
	name   string
	logger Logger
	init   func() T

	initOnce sync.Once
	mu       sync.RWMutex
	poisoned bool
	value    T
}

// Option configures a Cell at creation time.
type Option[T any] func(*Cell[T])

// WithName sets the name the cell uses in errors and log output.
func WithName[T any](name string) Option[T] {
	return func(c *Cell[T]) {
		c.name = name
	}
}

// WithLogger sets the logger the cell reports lifecycle events to.
func WithLogger[T any](logger Logger) Option[T] {
	return func(c *Cell[T]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a cell whose value will be built by init on the first
// acquisition of either kind. A nil init yields the zero value of T.
// No construction happens here.
func New[T any](init func() T, opts ...Option[T]) *Cell[T] {
	c := &Cell[T]{
		name:   "cell",
		logger: noopLogger{},
		init:   init,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the cell's name.
func (c *Cell[T]) Name() string {
	return c.name
}

// ensureConstructed runs the one-time construction. Racing first-callers
// block here until the single constructing goroutine finishes. A panic
// inside init poisons the cell before propagating.
func (c *Cell[T]) ensureConstructed() {
	c.initOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				c.poisoned = true
				c.logger.Error("state cell construction panicked", "cell", c.name, "panic", r)
				panic(r)
			}
		}()
		if c.init != nil {
			c.value = c.init()
		}
		c.logger.Debug("state cell constructed", "cell", c.name)
	})
}

// AcquireRead constructs the value if needed and acquires shared access.
// Any number of readers may hold access at once; the call blocks while a
// writer holds the cell. The handle must be released, normally with
// defer handle.Release().
func (c *Cell[T]) AcquireRead() (*ReadHandle[T], error) {
	c.ensureConstructed()
	c.mu.RLock()
	if c.poisoned {
		c.mu.RUnlock()
		return nil, c.poisonedErr()
	}
	return &ReadHandle[T]{cell: c}, nil
}

// AcquireWrite constructs the value if needed and acquires exclusive
// access, blocking until no reader or writer holds the cell. The handle
// must be released with defer handle.Release() so that a panic in the
// critical section poisons the cell instead of leaving it locked.
func (c *Cell[T]) AcquireWrite() (*WriteHandle[T], error) {
	c.ensureConstructed()
	c.mu.Lock()
	if c.poisoned {
		c.mu.Unlock()
		return nil, c.poisonedErr()
	}
	return &WriteHandle[T]{cell: c}, nil
}

// View runs fn with shared access to the value, releasing on every exit
// path. It returns fn's error, or ErrPoisoned if the cell is poisoned.
func (c *Cell[T]) View(fn func(value T) error) error {
	handle, err := c.AcquireRead()
	if err != nil {
		return err
	}
	defer handle.Release()
	return fn(c.value)
}

// Update runs fn with exclusive access to the value, releasing on every
// exit path. A panic inside fn poisons the cell and then propagates.
func (c *Cell[T]) Update(fn func(value *T) error) error {
	handle, err := c.AcquireWrite()
	if err != nil {
		return err
	}
	defer handle.Release()
	return fn(&c.value)
}

// Get returns a snapshot of the current value under shared access.
func (c *Cell[T]) Get() (T, error) {
	handle, err := c.AcquireRead()
	if err != nil {
		var zero T
		return zero, err
	}
	defer handle.Release()
	return c.value, nil
}

// Set replaces the value under exclusive access.
func (c *Cell[T]) Set(value T) error {
	handle, err := c.AcquireWrite()
	if err != nil {
		return err
	}
	defer handle.Release()
	c.value = value
	return nil
}

func (c *Cell[T]) poisonedErr() error {
	return fmt.Errorf("state cell %q: %w", c.name, ErrPoisoned)
}
