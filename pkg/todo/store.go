package todo

import (
	"slices"

	"github.com/vango-dev/xbow/pkg/track"
)

// Item is a todo together with its ID, as returned by List.
type Item struct {
	ID ID `json:"id"`
	Todo
}

// Store wraps a tracked State with the TodoMVC reducers.
type Store struct {
	store *track.Store[State]
	root  *StateNode
}

// NewStore returns an empty todo list.
func NewStore(opts ...track.Option) *Store {
	return NewStoreFrom(State{Todos: make(map[ID]Todo)}, opts...)
}

// NewStoreFrom returns a store holding initial.
func NewStoreFrom(initial State, opts ...track.Option) *Store {
	s := track.NewStore(initial, opts...)
	return &Store{
		store: s,
		root:  track.Open(s, NewStateNode),
	}
}

// Root returns the root node.
func (s *Store) Root() *StateNode {
	return s.root
}

// Tracked returns the underlying store.
func (s *Store) Tracked() *track.Store[State] {
	return s.store
}

// NextID increments CurrentID and returns the new value.
func (s *Store) NextID() (ID, error) {
	var id ID
	_, err := s.root.CurrentID.Write(func(cur *ID) {
		*cur++
		id = *cur
	})
	return id, err
}

// Add creates a todo and puts it at the front of the list.
func (s *Store) Add(text string) (ID, error) {
	id, err := s.NextID()
	if err != nil {
		return 0, err
	}
	if _, _, err := s.root.Todos.Insert(id, Todo{Value: text}); err != nil {
		return 0, err
	}
	if _, err := s.root.Order.InsertAt(0, id); err != nil {
		return 0, err
	}
	return id, nil
}

// Remove deletes the todo and its position in the list. It returns false
// if id does not exist.
func (s *Store) Remove(id ID) (bool, error) {
	_, found, err := s.root.Todos.Remove(id)
	if err != nil || !found {
		return false, err
	}

	pos := -1
	if _, err := s.root.Order.Read(func(order *[]ID) {
		pos = slices.Index(*order, id)
	}); err != nil {
		return true, err
	}
	if pos >= 0 {
		if _, _, err := s.root.Order.RemoveAt(pos); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Toggle flips Done and returns the new value.
func (s *Store) Toggle(id ID) (bool, bool, error) {
	var done bool
	ok, err := s.root.Todos.HandleAt(id).Done.Write(func(d *bool) {
		*d = !*d
		done = *d
	})
	return done, ok, err
}

// Edit replaces the text of a todo.
func (s *Store) Edit(id ID, text string) (bool, error) {
	return s.root.Todos.HandleAt(id).Value.Set(text)
}

// Get returns one todo.
func (s *Store) Get(id ID) (Todo, bool, error) {
	return s.root.Todos.Lookup(id)
}

// ClearCompleted removes every done todo and returns their IDs in list
// order.
func (s *Store) ClearCompleted() ([]ID, error) {
	var done []ID
	_, err := s.root.Read(func(st *State) {
		for _, id := range st.Order {
			if st.Todos[id].Done {
				done = append(done, id)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	for _, id := range done {
		if _, err := s.Remove(id); err != nil {
			return nil, err
		}
	}
	return done, nil
}

// List returns the todos in display order.
func (s *Store) List() ([]Item, error) {
	var items []Item
	_, err := s.root.Read(func(st *State) {
		items = make([]Item, 0, len(st.Order))
		for _, id := range st.Order {
			if t, ok := st.Todos[id]; ok {
				items = append(items, Item{ID: id, Todo: t})
			}
		}
	})
	return items, err
}

// Remaining returns the number of todos not done.
func (s *Store) Remaining() (int, error) {
	n := 0
	_, err := s.root.Todos.Read(func(todos *map[ID]Todo) {
		for _, t := range *todos {
			if !t.Done {
				n++
			}
		}
	})
	return n, err
}
