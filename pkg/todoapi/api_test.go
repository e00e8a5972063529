package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "github.com/vango-dev/xbow/internal/errors"
	"github.com/vango-dev/xbow/pkg/dispatch"
	"github.com/vango-dev/xbow/pkg/todo"
	"github.com/vango-dev/xbow/pkg/track"
	"github.com/vango-dev/xbow/pkg/watch"
)

type testServer struct {
	*httptest.Server
	todos *todo.Store
	loop  *dispatch.Loop
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := watch.New(watch.WithLogger(logger))
	todos := todo.NewStore(track.WithObserver(reg), track.WithLogger(logger))
	loop := dispatch.New(dispatch.WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()

	api := New(loop, todos, reg, append([]Option{WithLogger(logger)}, opts...)...)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return &testServer{Server: srv, todos: todos, loop: loop}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCreateAndList(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/todos", CreateRequest{Value: "  buy milk "})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[todo.Item](t, resp)
	assert.Equal(t, todo.Item{ID: 1, Todo: todo.Todo{Value: "buy milk"}}, created)

	s.do(t, http.MethodPost, "/todos", CreateRequest{Value: "walk dog"})

	resp = s.do(t, http.MethodGet, "/todos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[ListResponse](t, resp)
	assert.Equal(t, []todo.Item{
		{ID: 2, Todo: todo.Todo{Value: "walk dog"}},
		{ID: 1, Todo: todo.Todo{Value: "buy milk"}},
	}, list.Items)
	assert.Equal(t, 2, list.Remaining)
	assert.NotZero(t, list.Version)
}

func TestListEmpty(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/todos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[ListResponse](t, resp)
	assert.NotNil(t, list.Items)
	assert.Empty(t, list.Items)
}

func TestCreateValidation(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/todos", CreateRequest{Value: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, xerrors.CodeEmptyText, decodeBody[xerrors.Payload](t, resp).Code)

	resp = s.do(t, http.MethodPost, "/todos", map[string]any{"text": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, xerrors.CodeBadRequest, decodeBody[xerrors.Payload](t, resp).Code)
}

func TestUpdate(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/todos", CreateRequest{Value: "draft"})

	done := true
	value := "final"
	resp := s.do(t, http.MethodPatch, "/todos/1", UpdateRequest{Value: &value, Done: &done})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, todo.Item{ID: 1, Todo: todo.Todo{Value: "final", Done: true}}, decodeBody[todo.Item](t, resp))

	// Setting the same value again is a no-op, not a toggle.
	resp = s.do(t, http.MethodPatch, "/todos/1", UpdateRequest{Done: &done})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody[todo.Item](t, resp).Done)

	resp = s.do(t, http.MethodPatch, "/todos/9", UpdateRequest{Done: &done})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, xerrors.CodeNotFound, decodeBody[xerrors.Payload](t, resp).Code)

	resp = s.do(t, http.MethodPatch, "/todos/abc", UpdateRequest{Done: &done})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, xerrors.CodeInvalidID, decodeBody[xerrors.Payload](t, resp).Code)
}

func TestDelete(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/todos", CreateRequest{Value: "a"})

	resp := s.do(t, http.MethodDelete, "/todos/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/todos/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClearCompleted(t *testing.T) {
	s := newTestServer(t)
	for _, v := range []string{"a", "b", "c"} {
		s.do(t, http.MethodPost, "/todos", CreateRequest{Value: v})
	}
	done := true
	s.do(t, http.MethodPatch, "/todos/2", UpdateRequest{Done: &done})

	resp := s.do(t, http.MethodPost, "/todos/clear-completed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []todo.ID{2}, decodeBody[ClearResponse](t, resp).Cleared)

	resp = s.do(t, http.MethodPost, "/todos/clear-completed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []todo.ID{}, decodeBody[ClearResponse](t, resp).Cleared)
}

func TestHealthAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	s := newTestServer(t, WithMetrics(metrics))

	resp := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/metrics", nil)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "# metrics", string(body))
}

func dialWatch(t *testing.T, s *testServer, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/watch"
	if path != "" {
		u += "?" + url.Values{"path": {path}}.Encode()
	}
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWatchRoot(t *testing.T) {
	s := newTestServer(t)
	conn := dialWatch(t, s, "")

	s.do(t, http.MethodPost, "/todos", CreateRequest{Value: "a"})

	// Add writes current_id, todos and order; each bubbles to the root.
	var origins []string
	for i := 0; i < 3; i++ {
		f := readFrame(t, conn)
		assert.Equal(t, "$", f.Path)
		assert.Equal(t, "up", f.Direction)
		assert.Equal(t, uint64(i+1), f.Version)
		origins = append(origins, f.Origin)
	}
	assert.Equal(t, []string{"$.current_id", "$.todos", "$.order"}, origins)
}

func TestWatchRemovedTodo(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/todos", CreateRequest{Value: "a"})

	// The item handle must be live for a down invalidation to reach it.
	h, err := dispatch.Query(context.Background(), s.loop, "test.handle", func(context.Context) (*todo.TodoNode, error) {
		return s.todos.Root().Todos.HandleAt(1), nil
	})
	require.NoError(t, err)

	conn := dialWatch(t, s, "$.todos{1}.done")
	s.do(t, http.MethodPatch, "/todos/1", UpdateRequest{Done: ptr(true)})
	f := readFrame(t, conn)
	assert.Equal(t, Frame{Path: "$.todos{1}.done", Version: 1, Direction: "up", Origin: "$.todos{1}.done"}, f)

	s.do(t, http.MethodDelete, "/todos/1", nil)
	f = readFrame(t, conn)
	assert.Equal(t, "down", f.Direction)
	assert.Equal(t, "$.todos{1}.done", f.Path)
	runtime.KeepAlive(h)
}

func TestWatchInvalidPath(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/watch?"+url.Values{"path": {"$[x]"}}.Encode(), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, xerrors.CodeInvalidPath, decodeBody[xerrors.Payload](t, resp).Code)
}

func ptr[T any](v T) *T {
	return &v
}
