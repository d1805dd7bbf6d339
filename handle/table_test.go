package handle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableLifecycle(t *testing.T) {
	table := NewTable[*int]()
	v := 7
	id := table.Insert(&v)
	assert.NotZero(t, id)
	assert.Equal(t, 1, table.Len())

	err := table.With(id, func(p *int) error {
		*p++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 8, v)

	require.NoError(t, table.Remove(id))
	assert.Equal(t, 0, table.Len())

	err = table.With(id, func(*int) error { return nil })
	assert.ErrorIs(t, err, ErrUseAfterDestroy)
	assert.ErrorIs(t, table.Remove(id), ErrUseAfterDestroy)
}

func TestTableUnknownHandles(t *testing.T) {
	table := NewTable[string]()
	table.Insert("a")

	for _, id := range []ID{0, 2, 1000} {
		err := table.With(id, func(string) error { return nil })
		assert.ErrorIs(t, err, ErrUninitializedHandle, "id %d", id)
		assert.ErrorIs(t, table.Remove(id), ErrUninitializedHandle, "id %d", id)
	}
}

func TestTableHandlesAreNotReused(t *testing.T) {
	table := NewTable[int]()
	first := table.Insert(1)
	require.NoError(t, table.Remove(first))
	second := table.Insert(2)
	assert.NotEqual(t, first, second)

	err := table.With(first, func(int) error { return nil })
	assert.ErrorIs(t, err, ErrUseAfterDestroy)
}

func TestTableSerialisesCallsOnOneHandle(t *testing.T) {
	table := NewTable[*int]()
	counter := 0
	id := table.Insert(&counter)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = table.With(id, func(p *int) error {
				*p++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
