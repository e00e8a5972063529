package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/xbow/internal/errors"
	"github.com/vango-dev/xbow/pkg/todo"
	"github.com/vango-dev/xbow/pkg/track"
)

// scenarios maps demo names to their runners.
var scenarios = map[string]func(w io.Writer) error{
	"map":   demoMap,
	"slice": demoSlice,
	"todo":  demoTodo,
}

func demoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo [scenario...]",
		Short: "Run the built-in scenarios",
		Long: `Run scenarios against an in-memory store and print every value read
and every notification delivered.

Scenarios:
  map    remove a key while a handle to it is held, then re-insert it
  slice  remove an element below a held positional handle
  todo   a short TodoMVC session

With no arguments all scenarios run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = scenarioNames()
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				run, ok := scenarios[name]
				if !ok {
					return errors.New(errors.CodeUnknownScenario).
						WithSuggestion("Use one of: " + strings.Join(scenarioNames(), ", "))
				}
				fmt.Fprintf(out, "== %s\n", name)
				if err := run(out); err != nil {
					return fmt.Errorf("scenario %s: %w", name, err)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	return cmd
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// printer is an observer that writes each notification.
func printer(w io.Writer) track.Observer {
	return track.ObserverFunc(func(inv track.Invalidation) {
		fmt.Fprintf(w, "  notify %-5s %-22s v%d (from %s)\n",
			inv.Direction, inv.Path, inv.Version, inv.Origin)
	})
}

func show[T any](w io.Writer, label string, v T, ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(w, "  %s = <absent>\n", label)
		return nil
	}
	fmt.Fprintf(w, "  %s = %v\n", label, v)
	return nil
}

func demoMap(w io.Writer) error {
	store := track.NewStore(map[int]string{1: "a", 2: "b"}, track.WithObserver(printer(w)))
	m := track.Open(store, track.MapOf[int](track.NewLeaf[string]))

	h1 := m.HandleAt(1)
	v, ok, err := h1.Get()
	if err := show(w, "h1", v, ok, err); err != nil {
		return err
	}

	fmt.Fprintln(w, "  remove(1)")
	if _, _, err := m.Remove(1); err != nil {
		return err
	}
	v, ok, err = h1.Get()
	if err := show(w, "h1", v, ok, err); err != nil {
		return err
	}
	v, ok, err = m.HandleAt(1).Get()
	if err := show(w, "handle_at(1)", v, ok, err); err != nil {
		return err
	}

	fmt.Fprintln(w, `  insert(1, "c")`)
	if _, _, err := m.Insert(1, "c"); err != nil {
		return err
	}
	v, ok, err = m.HandleAt(1).Get()
	return show(w, "handle_at(1)", v, ok, err)
}

func demoSlice(w io.Writer) error {
	store := track.NewStore([]int{10, 20, 30}, track.WithObserver(printer(w)))
	s := track.Open(store, track.SliceOf(track.NewLeaf[int]))

	h := s.HandleAt(1)
	v, ok, err := h.Get()
	if err := show(w, "h", v, ok, err); err != nil {
		return err
	}

	fmt.Fprintln(w, "  remove(0)")
	if _, _, err := s.RemoveAt(0); err != nil {
		return err
	}
	snap, err := store.Snapshot()
	if err := show(w, "sequence", snap, true, err); err != nil {
		return err
	}
	// Handles are positional: h now reads slot 1 of the new sequence.
	v, ok, err = h.Get()
	return show(w, "h", v, ok, err)
}

func demoTodo(w io.Writer) error {
	todos := todo.NewStore(track.WithObserver(printer(w)))

	fmt.Fprintln(w, `  add("buy milk")`)
	milk, err := todos.Add("buy milk")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, `  add("walk dog")`)
	if _, err := todos.Add("walk dog"); err != nil {
		return err
	}

	h := todos.Root().Todos.HandleAt(milk)
	fmt.Fprintln(w, "  toggle(1)")
	if _, _, err := todos.Toggle(milk); err != nil {
		return err
	}

	fmt.Fprintln(w, "  clear completed")
	if _, err := todos.ClearCompleted(); err != nil {
		return err
	}
	v, ok, err := h.Value.Get()
	if err := show(w, "todos{1}.value", v, ok, err); err != nil {
		return err
	}

	items, err := todos.List()
	if err != nil {
		return err
	}
	for _, it := range items {
		fmt.Fprintf(w, "  [%d] %q done=%t\n", it.ID, it.Value, it.Done)
	}
	return nil
}
