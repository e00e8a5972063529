package track

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRootNeverAbsent(t *testing.T) {
	store := NewStore(42)
	root := Open(store, NewLeaf[int])

	v, ok, err := root.Get()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42, v)

	ok, err = root.Set(7)
	require.NoError(t, err)
	require.True(t, ok)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 7, snap)
	assert.Equal(t, "$", root.Path().String())
}

func TestStoreWithName(t *testing.T) {
	store := NewStore(doc{}, WithName("app"))
	n := Open(store, newDocNode)
	assert.Equal(t, "app.title", n.Title.Path().String())
	assert.NotNil(t, store.Logger())
}

func TestNestedFieldPaths(t *testing.T) {
	_, n := newDocStore()

	assert.Equal(t, "$.tags[1]", n.Tags.HandleAt(1).Path().String())
	assert.Equal(t, `$.meta{"rev"}`, n.Meta.HandleAt("rev").Path().String())
	assert.Equal(t, 2, n.Tags.HandleAt(1).Path().Depth())
	assert.True(t, n.Tags.HandleAt(1).Path().HasPrefix(n.Tags.Path()))
	assert.False(t, n.Tags.Path().HasPrefix(n.Meta.Path()))
}

func TestMutationAtDepthNotifiesRootAfterReturn(t *testing.T) {
	rec := &recorder{}
	_, n := newDocStore(WithObserver(rec))
	tag := n.Tags.HandleAt(0)

	ok, err := tag.Write(func(s *string) {
		// Nothing may be observed while the write is in progress.
		require.Empty(t, rec.events)
		*s = "golang"
	})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{"$.tags[0]", "$.tags", "$"}, rec.paths(Up))
	for _, ev := range rec.events {
		assert.Equal(t, "$.tags[0]", ev.Origin.String())
	}
	assert.Equal(t, uint64(1), n.Version())
	assert.Equal(t, uint64(1), tag.Version())
	assert.Equal(t, uint64(0), n.Title.Version())
}

func TestObserverReadsNewValueInsideCallback(t *testing.T) {
	var n *docNode
	var seen []string
	obs := ObserverFunc(func(inv Invalidation) {
		if inv.Path.String() != "$" {
			return
		}
		v, ok, err := n.Title.Get()
		require.NoError(t, err)
		require.True(t, ok)
		seen = append(seen, v)
	})
	_, n = newDocStore(WithObserver(obs))

	_, err := n.Title.Set("final")
	require.NoError(t, err)
	assert.Equal(t, []string{"final"}, seen)
}

func TestBorrowConflictOnSameLevel(t *testing.T) {
	mon := &countingMonitor{}
	rec := &recorder{}
	_, n := newDocStore(WithMonitor(mon), WithObserver(rec))

	ok, err := n.Title.Read(func(*string) {
		ok, err := n.Title.Set("nope")
		require.False(t, ok)
		require.ErrorIs(t, err, ErrBorrowConflict)

		var ce *ConflictError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "$.title", ce.Path.String())
		assert.Equal(t, Exclusive, ce.Requested)
		assert.Equal(t, "shared-1", ce.State)
	})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Len(t, mon.conflicts, 1)
	assert.Empty(t, rec.events, "a refused write must not notify")
	assert.True(t, n.Title.Edge().Idle())

	v, _, err := n.Title.Get()
	require.NoError(t, err)
	assert.Equal(t, "draft", v)
}

func TestBorrowConflictAcrossSiblings(t *testing.T) {
	_, n := newDocStore()

	_, err := n.Title.Read(func(*string) {
		_, err := n.Tags.Push("x")
		var ce *ConflictError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "$", ce.Path.String())
	})
	require.NoError(t, err)
}

func TestSharedBorrowsNest(t *testing.T) {
	_, n := newDocStore()

	var tags, rev int
	_, err := n.Read(func(*doc) {
		_, err := n.Title.Read(func(*string) {
			tags, _, _ = n.Tags.Len()
			v, _, err := n.Meta.HandleAt("rev").Get()
			require.NoError(t, err)
			rev = v
		})
		require.NoError(t, err)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tags)
	assert.Equal(t, 1, rev)
}

func TestReadInsideWriteConflicts(t *testing.T) {
	_, n := newDocStore()

	_, err := n.Title.Write(func(s *string) {
		_, _, err := n.Title.Get()
		require.ErrorIs(t, err, ErrBorrowConflict)
		*s = "changed"
	})
	require.NoError(t, err)

	v, _, _ := n.Title.Get()
	assert.Equal(t, "changed", v)
}

func TestAccessReleasedAfterPanic(t *testing.T) {
	store, n := newDocStore()

	require.Panics(t, func() {
		_, _ = n.Tags.HandleAt(0).Write(func(*string) {
			panic("boom")
		})
	})
	assert.True(t, store.Root().Idle())
	assert.True(t, n.Tags.Edge().Idle())

	ok, err := n.Title.Set("after")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestModeAndDirectionStrings(t *testing.T) {
	assert.Equal(t, "shared", Shared.String())
	assert.Equal(t, "exclusive", Exclusive.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
	assert.Equal(t, "up", Up.String())
	assert.Equal(t, "down", Down.String())
	assert.Equal(t, "map", KindMap.String())
	assert.Equal(t, "slice", KindSlice.String())
	assert.Equal(t, "option", KindOption.String())
	assert.Equal(t, "sum", KindSum.String())
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestStructSetInvalidatesFields(t *testing.T) {
	rec := &recorder{}
	store, n := newDocStore(WithObserver(rec))
	tag := n.Tags.HandleAt(0)

	ok, err := n.Set(doc{Title: "final", Tags: []string{"x"}})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{"$"}, rec.paths(Up))
	assert.Equal(t, []string{"$.title", "$.tags", "$.tags[0]", "$.meta"}, rec.paths(Down))
	assert.Equal(t, uint64(1), tag.Version())

	v, ok, err := tag.Get()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", v)

	snap, _ := store.Snapshot()
	assert.Equal(t, "final", snap.Title)
	assert.Nil(t, snap.Meta)
}

func TestConflictErrorMessage(t *testing.T) {
	err := &ConflictError{
		Path:      Path{{Kind: SegmentRoot, Label: "$"}, {Kind: SegmentField, Label: "a"}},
		Requested: Exclusive,
		State:     "shared-2",
	}
	assert.Equal(t, "track: borrow conflict at $.a: exclusive access requested while shared-2", err.Error())
	assert.True(t, errors.Is(err, ErrBorrowConflict))
}
