// Package todo is a TodoMVC state model built on tracked nodes.
//
// The state keeps todos in a map keyed by ID and their display order in a
// separate slice, newest first. Every reducer is a method on Store and
// must run on the goroutine that owns the store.
package todo

import (
	"github.com/vango-dev/xbow/pkg/track"
)

// ID identifies a todo. IDs are allocated from State.CurrentID and are
// never reused.
type ID int

// Todo is a single entry.
type Todo struct {
	Value string `json:"value"`
	Done  bool   `json:"done"`
}

// State is the whole application state.
type State struct {
	Todos     map[ID]Todo `json:"todos"`
	Order     []ID        `json:"order"`
	CurrentID ID          `json:"current_id"`
}

// TodoNode tracks one Todo and its fields.
type TodoNode struct {
	track.Tracked[Todo]
	Value *track.Leaf[string]
	Done  *track.Leaf[bool]
}

// NewTodoNode is the Factory for Todo values.
func NewTodoNode(e *track.Edge[Todo]) *TodoNode {
	n := &TodoNode{
		Tracked: track.Track(e),
		Value:   track.NewLeaf(track.Child(e, track.Field("value", func(t *Todo) *string { return &t.Value }))),
		Done:    track.NewLeaf(track.Child(e, track.Field("done", func(t *Todo) *bool { return &t.Done }))),
	}
	n.OnReplace(n.invalidateFields)
	return n
}

// InvalidateOutsideDown implements track.Node.
func (n *TodoNode) InvalidateOutsideDown() {
	n.InvalidateHere()
	n.invalidateFields()
}

func (n *TodoNode) invalidateFields() {
	n.Value.InvalidateOutsideDown()
	n.Done.InvalidateOutsideDown()
}

// TodoMap is the node type of State.Todos.
type TodoMap = track.MapNode[ID, Todo, TodoNode, *TodoNode]

// OrderList is the node type of State.Order.
type OrderList = track.SliceNode[ID, track.Leaf[ID], *track.Leaf[ID]]

// StateNode tracks the root State.
type StateNode struct {
	track.Tracked[State]
	Todos     *TodoMap
	Order     *OrderList
	CurrentID *track.Leaf[ID]
}

// NewStateNode is the Factory for State values.
func NewStateNode(e *track.Edge[State]) *StateNode {
	n := &StateNode{
		Tracked:   track.Track(e),
		Todos:     track.NewMap(track.Child(e, track.Field("todos", func(s *State) *map[ID]Todo { return &s.Todos })), NewTodoNode),
		Order:     track.NewSlice(track.Child(e, track.Field("order", func(s *State) *[]ID { return &s.Order })), track.NewLeaf[ID]),
		CurrentID: track.NewLeaf(track.Child(e, track.Field("current_id", func(s *State) *ID { return &s.CurrentID }))),
	}
	n.OnReplace(n.invalidateFields)
	return n
}

// InvalidateOutsideDown implements track.Node.
func (n *StateNode) InvalidateOutsideDown() {
	n.InvalidateHere()
	n.invalidateFields()
}

func (n *StateNode) invalidateFields() {
	n.Todos.InvalidateOutsideDown()
	n.Order.InvalidateOutsideDown()
	n.CurrentID.InvalidateOutsideDown()
}
