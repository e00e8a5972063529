package track

import (
	"reflect"
	"weak"
)

// SumNode tracks a value of interface type S whose variants are concrete
// types. Variant handles are created with VariantAt.
type SumNode[S any] struct {
	Tracked[S]
	variants map[variantKey]variantEntry
}

// variantKey identifies a variant handle. Two VariantAt calls sharing a
// name but asking for different value or node types get distinct handles.
type variantKey struct {
	name  string
	value reflect.Type
	node  reflect.Type
}

// variantEntry holds a weak reference to a variant node of any type.
type variantEntry struct {
	weak any
	node func() Node
}

// NewSum is the Factory for sum types.
func NewSum[S any](e *Edge[S]) *SumNode[S] {
	s := &SumNode[S]{
		Tracked:  Track(e),
		variants: make(map[variantKey]variantEntry),
	}
	s.replaced = s.invalidateVariants
	return s
}

// VariantAt returns the handle for variant V of sum, named name. The
// handle reports absence whenever the current value is not a V.
func VariantAt[S, V any, X any, N nodePtr[X]](sum *SumNode[S], name string, f Factory[V, N]) N {
	monitor := sum.edge.link.core.monitor
	key := variantKey{name: name, value: reflect.TypeFor[V](), node: reflect.TypeFor[X]()}
	if entry, ok := sum.variants[key]; ok {
		if wp, ok := entry.weak.(weak.Pointer[X]); ok {
			if x := wp.Value(); x != nil {
				monitor.HandleResolved(KindSum, true)
				return N(x)
			}
		}
	}
	n := f(Child(sum.edge, Variant[S, V](name)))
	wp := weak.Make((*X)(n))
	sum.variants[key] = variantEntry{
		weak: wp,
		node: func() Node {
			x := wp.Value()
			if x == nil {
				return nil
			}
			return N(x)
		},
	}
	monitor.HandleResolved(KindSum, false)
	return n
}

// Switch replaces the value, possibly with another variant, and returns
// the previous one. Every live variant handle is invalidated down.
func (s *SumNode[S]) Switch(v S) (S, bool, error) {
	var prev S
	ok, err := s.edge.BorrowMut(func(p *S) {
		prev = *p
		*p = v
	})
	if err != nil || !ok {
		return prev, false, err
	}
	s.edge.InvalidateInsideUp()
	s.invalidateVariants()
	return prev, true, nil
}

func (s *SumNode[S]) invalidateVariants() {
	dropped := 0
	for key, entry := range s.variants {
		n := entry.node()
		if n == nil {
			delete(s.variants, key)
			dropped++
			continue
		}
		n.InvalidateOutsideDown()
	}
	if dropped > 0 {
		s.edge.link.core.monitor.Compacted(KindSum, dropped)
	}
}

// InvalidateOutsideDown implements Node.
func (s *SumNode[S]) InvalidateOutsideDown() {
	s.InvalidateHere()
	s.invalidateVariants()
}
