package todoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	xerrors "github.com/vango-dev/xbow/internal/errors"
	"github.com/vango-dev/xbow/pkg/dispatch"
	"github.com/vango-dev/xbow/pkg/todo"
)

// ListResponse is the body of GET /todos.
type ListResponse struct {
	Items     []todo.Item `json:"items"`
	Remaining int         `json:"remaining"`
	Version   uint64      `json:"version"`
}

// CreateRequest is the body of POST /todos.
type CreateRequest struct {
	Value string `json:"value"`
}

// UpdateRequest is the body of PATCH /todos/{id}. Absent fields are left
// unchanged.
type UpdateRequest struct {
	Value *string `json:"value,omitempty"`
	Done  *bool   `json:"done,omitempty"`
}

// ClearResponse is the body of POST /todos/clear-completed.
type ClearResponse struct {
	Cleared []todo.ID `json:"cleared"`
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	resp, err := dispatch.Query(r.Context(), a.loop, "todo.list", func(context.Context) (ListResponse, error) {
		items, err := a.todos.List()
		if err != nil {
			return ListResponse{}, err
		}
		remaining, err := a.todos.Remaining()
		if err != nil {
			return ListResponse{}, err
		}
		return ListResponse{
			Items:     items,
			Remaining: remaining,
			Version:   a.todos.Root().Version(),
		}, nil
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	text := strings.TrimSpace(req.Value)
	if text == "" {
		a.writeError(w, r, xerrors.New(xerrors.CodeEmptyText))
		return
	}

	item, err := dispatch.Query(r.Context(), a.loop, "todo.add", func(context.Context) (todo.Item, error) {
		id, err := a.todos.Add(text)
		if err != nil {
			return todo.Item{}, err
		}
		return todo.Item{ID: id, Todo: todo.Todo{Value: text}}, nil
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, item)
}

func (a *API) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req UpdateRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.Value != nil {
		text := strings.TrimSpace(*req.Value)
		if text == "" {
			a.writeError(w, r, xerrors.New(xerrors.CodeEmptyText))
			return
		}
		req.Value = &text
	}

	item, err := dispatch.Query(r.Context(), a.loop, "todo.update", func(context.Context) (todo.Item, error) {
		current, ok, err := a.todos.Get(id)
		if err != nil {
			return todo.Item{}, err
		}
		if !ok {
			return todo.Item{}, notFound(id)
		}
		if req.Value != nil && *req.Value != current.Value {
			if _, err := a.todos.Edit(id, *req.Value); err != nil {
				return todo.Item{}, err
			}
		}
		if req.Done != nil && *req.Done != current.Done {
			if _, _, err := a.todos.Toggle(id); err != nil {
				return todo.Item{}, err
			}
		}
		updated, _, err := a.todos.Get(id)
		return todo.Item{ID: id, Todo: updated}, err
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, item)
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	err = a.loop.Do(r.Context(), "todo.remove", func(context.Context) error {
		ok, err := a.todos.Remove(id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(id)
		}
		return nil
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	cleared, err := dispatch.Query(r.Context(), a.loop, "todo.clear_completed", func(context.Context) ([]todo.ID, error) {
		return a.todos.ClearCompleted()
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if cleared == nil {
		cleared = []todo.ID{}
	}
	a.writeJSON(w, http.StatusOK, ClearResponse{Cleared: cleared})
}

func parseID(r *http.Request) (todo.ID, error) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, xerrors.New(xerrors.CodeInvalidID).WithDetail("Got " + strconv.Quote(raw) + "; todo ids are positive integers.")
	}
	return todo.ID(n), nil
}

func notFound(id todo.ID) error {
	return xerrors.New(xerrors.CodeNotFound).WithDetail("No todo with id " + strconv.Itoa(int(id)) + ".")
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return xerrors.New(xerrors.CodeBadRequest).Wrap(err)
	}
	return nil
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("write response", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	if e.Status >= http.StatusInternalServerError {
		a.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", e.Code,
			"error", err)
	} else {
		a.logger.Debug("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"code", e.Code,
			"error", err)
	}
	a.writeJSON(w, e.Status, e.Payload())
}
