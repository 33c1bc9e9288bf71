package statecell_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gocircum/statecell"
	"github.com/gocircum/statecell/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallAndLookup(t *testing.T) {
	registry := statecell.NewRegistry(statecell.WithRegistryLogger(testutils.NewTestLogger()))

	installed, err := statecell.Install(registry, "session", func() int { return 42 })
	require.NoError(t, err)
	assert.Equal(t, "session", installed.Name())

	found, ok := statecell.Lookup[int](registry, "session")
	require.True(t, ok)
	assert.Same(t, installed, found, "lookup must return the installed cell, not a copy")

	value, err := found.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestInstallRejectsDuplicateName(t *testing.T) {
	registry := statecell.NewRegistry()

	_, err := statecell.Install(registry, "session", func() int { return 1 })
	require.NoError(t, err)

	_, err = statecell.Install(registry, "session", func() int { return 2 })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already installed")
}

func TestLookupMissesOnTypeMismatch(t *testing.T) {
	registry := statecell.NewRegistry()

	_, err := statecell.Install(registry, "session", func() int { return 1 })
	require.NoError(t, err)

	_, ok := statecell.Lookup[string](registry, "session")
	assert.False(t, ok)

	_, ok = statecell.Lookup[int](registry, "missing")
	assert.False(t, ok)
}

func TestObtainCreatesOnceUnderRace(t *testing.T) {
	registry := statecell.NewRegistry()

	var constructions atomic.Int32
	init := func() int {
		constructions.Add(1)
		return 7
	}

	const goroutines = 10
	start := make(chan struct{})
	cells := make(chan *statecell.Cell[int], goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			cell, err := statecell.Obtain(registry, "shared", init)
			require.NoError(t, err)
			cells <- cell
		}()
	}
	close(start)
	wg.Wait()
	close(cells)

	var first *statecell.Cell[int]
	for cell := range cells {
		if first == nil {
			first = cell
			continue
		}
		assert.Same(t, first, cell, "racing Obtain calls must yield one cell")
	}

	value, err := first.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, value)
	assert.Equal(t, int32(1), constructions.Load())
}

func TestObtainRejectsTypeConflict(t *testing.T) {
	registry := statecell.NewRegistry()

	_, err := statecell.Obtain(registry, "session", func() int { return 1 })
	require.NoError(t, err)

	_, err = statecell.Obtain(registry, "session", func() string { return "x" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different type")
}

func TestRegistryNames(t *testing.T) {
	registry := statecell.NewRegistry()

	_, err := statecell.Install(registry, "a", func() int { return 1 })
	require.NoError(t, err)
	_, err = statecell.Install(registry, "b", func() string { return "x" })
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b"}, registry.Names())
}

func TestDefaultRegistryIsProcessWide(t *testing.T) {
	require.Same(t, statecell.Default(), statecell.Default())

	// Unique name so repeated test runs within one process don't collide.
	cell, err := statecell.Obtain(statecell.Default(), "registry_test.default", func() int { return 9 })
	require.NoError(t, err)

	found, ok := statecell.Lookup[int](statecell.Default(), "registry_test.default")
	require.True(t, ok)
	assert.Same(t, cell, found)
}
