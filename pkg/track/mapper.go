package track

import "strconv"

// Mapper projects a child value out of its parent. Map and MapMut return
// false when the projection no longer applies (index out of range, key or
// variant missing). A mapper holds nothing but its fixed index, key, variant
// or accessor.
//
// MapMut is used under exclusive access. Projections that cannot hand out
// an addressable child (map values) visit a copy and write it back.
type Mapper[In, Out any] interface {
	Map(in *In, visit func(*Out)) bool
	MapMut(in *In, visit func(*Out)) bool
	Segment() Segment
}

// Index projects element i of a slice.
func Index[E any](i int) Mapper[[]E, E] {
	return indexMapper[E]{index: i}
}

type indexMapper[E any] struct {
	index int
}

func (m indexMapper[E]) Map(in *[]E, visit func(*E)) bool {
	if m.index < 0 || m.index >= len(*in) {
		return false
	}
	visit(&(*in)[m.index])
	return true
}

func (m indexMapper[E]) MapMut(in *[]E, visit func(*E)) bool {
	return m.Map(in, visit)
}

func (m indexMapper[E]) Segment() Segment {
	return Segment{Kind: SegmentIndex, Label: strconv.Itoa(m.index)}
}

// Key projects the value stored under k.
func Key[K comparable, V any](k K) Mapper[map[K]V, V] {
	return keyMapper[K, V]{key: k}
}

type keyMapper[K comparable, V any] struct {
	key K
}

func (m keyMapper[K, V]) Map(in *map[K]V, visit func(*V)) bool {
	v, ok := (*in)[m.key]
	if !ok {
		return false
	}
	visit(&v)
	return true
}

func (m keyMapper[K, V]) MapMut(in *map[K]V, visit func(*V)) bool {
	v, ok := (*in)[m.key]
	if !ok {
		return false
	}
	visit(&v)
	(*in)[m.key] = v
	return true
}

func (m keyMapper[K, V]) Segment() Segment {
	return Segment{Kind: SegmentKey, Label: keyLabel(m.key)}
}

// Some projects the target of a non-nil pointer.
func Some[E any]() Mapper[*E, E] {
	return someMapper[E]{}
}

type someMapper[E any] struct{}

func (someMapper[E]) Map(in **E, visit func(*E)) bool {
	if *in == nil {
		return false
	}
	visit(*in)
	return true
}

func (m someMapper[E]) MapMut(in **E, visit func(*E)) bool {
	return m.Map(in, visit)
}

func (someMapper[E]) Segment() Segment {
	return Segment{Kind: SegmentVariant, Label: "Some"}
}

// Variant projects the payload of a sum type S when its dynamic type is
// exactly V. S is normally an interface type.
func Variant[S, V any](name string) Mapper[S, V] {
	return variantMapper[S, V]{name: name}
}

type variantMapper[S, V any] struct {
	name string
}

func (m variantMapper[S, V]) Map(in *S, visit func(*V)) bool {
	v, ok := any(*in).(V)
	if !ok {
		return false
	}
	visit(&v)
	return true
}

func (m variantMapper[S, V]) MapMut(in *S, visit func(*V)) bool {
	v, ok := any(*in).(V)
	if !ok {
		return false
	}
	visit(&v)
	*in = any(v).(S)
	return true
}

func (m variantMapper[S, V]) Segment() Segment {
	return Segment{Kind: SegmentVariant, Label: m.name}
}

// Field projects a struct field through an accessor. get must return a
// pointer into its argument and have no side effects.
func Field[In, Out any](name string, get func(*In) *Out) Mapper[In, Out] {
	return fieldMapper[In, Out]{name: name, get: get}
}

type fieldMapper[In, Out any] struct {
	name string
	get  func(*In) *Out
}

func (m fieldMapper[In, Out]) Map(in *In, visit func(*Out)) bool {
	visit(m.get(in))
	return true
}

func (m fieldMapper[In, Out]) MapMut(in *In, visit func(*Out)) bool {
	return m.Map(in, visit)
}

func (m fieldMapper[In, Out]) Segment() Segment {
	return Segment{Kind: SegmentField, Label: m.name}
}
