package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePathRoundTrip(t *testing.T) {
	type key struct{ A, B int }

	paths := []Path{
		{{Kind: SegmentRoot, Label: "$"}},
		Path{{Kind: SegmentRoot, Label: "$"}}.
			child(Segment{Kind: SegmentField, Label: "todos"}).
			child(Segment{Kind: SegmentKey, Label: keyLabel(3)}).
			child(Segment{Kind: SegmentField, Label: "done"}),
		Path{{Kind: SegmentRoot, Label: "app"}}.
			child(Segment{Kind: SegmentKey, Label: keyLabel("a}b{c")}).
			child(Segment{Kind: SegmentIndex, Label: "12"}).
			child(Segment{Kind: SegmentVariant, Label: "Some"}),
		Path{{Kind: SegmentRoot, Label: "$"}}.
			child(Segment{Kind: SegmentKey, Label: keyLabel(key{A: 1, B: 2})}),
	}

	for _, want := range paths {
		t.Run(want.String(), func(t *testing.T) {
			got, err := ParsePath(want.String())
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParsePathFromNodes(t *testing.T) {
	_, n := newDocStore()

	for _, want := range []Path{n.Path(), n.Tags.HandleAt(1).Path(), n.Meta.HandleAt("rev").Path()} {
		got, err := ParsePath(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, in := range []string{
		"",
		".field",
		"$.",
		"$[x]",
		"$[1",
		"${}",
		`${"open}`,
		"${1",
		"$<Some",
		"$[1]x",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParsePath(in)
			assert.ErrorIs(t, err, ErrInvalidPath)
		})
	}
}
