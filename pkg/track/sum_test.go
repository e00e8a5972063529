package track

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shape interface {
	area() float64
}

type circle struct{ R float64 }

func (c circle) area() float64 { return math.Pi * c.R * c.R }

type square struct{ S float64 }

func (s square) area() float64 { return s.S * s.S }

func TestSumVariants(t *testing.T) {
	rec := &recorder{}
	store := NewStore[shape](circle{R: 1}, WithObserver(rec))
	sum := Open(store, NewSum[shape])

	c := VariantAt(sum, "circle", NewLeaf[circle])
	sq := VariantAt(sum, "square", NewLeaf[square])
	assert.Same(t, c, VariantAt(sum, "circle", NewLeaf[circle]))
	assert.Equal(t, "$<circle>", c.Path().String())

	v, ok, err := c.Get()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, circle{R: 1}, v)

	_, ok, _ = sq.Get()
	assert.False(t, ok)

	ok, err = c.Write(func(v *circle) { v.R = 2 })
	require.NoError(t, err)
	require.True(t, ok)
	snap, _ := store.Snapshot()
	assert.Equal(t, circle{R: 2}, snap)
	assert.Equal(t, []string{"$<circle>", "$"}, rec.paths(Up))
	rec.reset()

	prev, ok, err := sum.Switch(square{S: 3})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, circle{R: 2}, prev)
	assert.ElementsMatch(t, []string{"$<circle>", "$<square>"}, rec.paths(Down))

	_, ok, _ = c.Get()
	assert.False(t, ok)
	v2, ok, _ := sq.Get()
	require.True(t, ok)
	assert.Equal(t, 9.0, v2.area())
}

func TestSumVariantsSharingAName(t *testing.T) {
	rec := &recorder{}
	store := NewStore[shape](circle{R: 1}, WithObserver(rec))
	sum := Open(store, NewSum[shape])

	c := VariantAt(sum, "shape", NewLeaf[circle])
	sq := VariantAt(sum, "shape", NewLeaf[square])
	assert.Same(t, c, VariantAt(sum, "shape", NewLeaf[circle]))
	assert.Same(t, sq, VariantAt(sum, "shape", NewLeaf[square]))

	_, ok, _ := c.Get()
	assert.True(t, ok)
	_, ok, _ = sq.Get()
	assert.False(t, ok)

	_, ok, err := sum.Switch(square{S: 2})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{"$<shape>", "$<shape>"}, rec.paths(Down))
	assert.Equal(t, uint64(1), c.Version())
	assert.Equal(t, uint64(1), sq.Version())
}
