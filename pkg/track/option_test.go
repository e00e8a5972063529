package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionSomeLifecycle(t *testing.T) {
	rec := &recorder{}
	store := NewStore[*int](nil, WithObserver(rec))
	opt := Open(store, OptionOf(NewLeaf[int]))
	some := opt.Some()
	assert.Same(t, some, opt.Some())
	assert.Equal(t, "$<Some>", some.Path().String())

	_, ok, err := some.Get()
	require.NoError(t, err)
	assert.False(t, ok)

	isSome, ok, err := opt.IsSome()
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, isSome)

	_, had, err := opt.Replace(5)
	require.NoError(t, err)
	assert.False(t, had)
	assert.Empty(t, rec.paths(Down))

	v, ok, _ := some.Get()
	require.True(t, ok)
	assert.Equal(t, 5, v)

	_, err = some.Set(6)
	require.NoError(t, err)

	prev, had, err := opt.Replace(7)
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, 6, prev)
	assert.Equal(t, []string{"$<Some>"}, rec.paths(Down))
	rec.reset()

	taken, ok, err := opt.Take()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, taken)
	assert.Equal(t, []string{"$"}, rec.paths(Up))
	assert.Equal(t, []string{"$<Some>"}, rec.paths(Down))

	_, ok, _ = some.Get()
	assert.False(t, ok)

	rec.reset()
	_, ok, err = opt.Take()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rec.events)
}
