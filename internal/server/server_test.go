package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/suderio/rolldice/internal/env"
)

type fakeBackend struct {
	snap     env.Snapshot
	replaced int
	rebuilt  int
	compacts int
	err      error
}

func (f *fakeBackend) Snapshot() env.Snapshot { return f.snap.Clone() }

func (f *fakeBackend) ReplaceSnapshot(s env.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.replaced++
	f.snap = s
	return nil
}

func (f *fakeBackend) Rebuild() error {
	f.rebuilt++
	return f.err
}

func (f *fakeBackend) Compact() error {
	f.compacts++
	return f.err
}

func do(s *Server, method, uri, form string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if form != "" {
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBodyString(form)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	s.Handler()(ctx)
	return ctx
}

func TestRoutes(t *testing.T) {
	backend := &fakeBackend{snap: env.Snapshot{
		env.Globals: {"prof": "2"},
		"alice":     {"atk": "d20 + prof"},
	}}
	pinger := NewPinger("", 6)
	s := NewServer(":0", backend, pinger)

	t.Run("Health", func(t *testing.T) {
		ctx := do(s, "GET", "/healthz", "")
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Equal(t, "i'm up!", string(ctx.Response.Body()))
		assert.Equal(t, 6, pinger.Remaining())
	})

	t.Run("Show", func(t *testing.T) {
		ctx := do(s, "GET", "/", "")
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		body := string(ctx.Response.Body())
		assert.Contains(t, body, `<textarea name="env"`)
		assert.Contains(t, body, "atk: d20 &#43; prof")
	})

	t.Run("Save", func(t *testing.T) {
		doc := "globals:\n  prof: \"3\"\nbob:\n  hp: \"12\"\n"
		ctx := do(s, "POST", "/", "env="+url.QueryEscape(doc))
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Equal(t, 1, backend.replaced)
		assert.Equal(t, map[string]string{"hp": "12"}, backend.snap["bob"])
		assert.NotContains(t, backend.snap, "alice")
		assert.Contains(t, string(ctx.Response.Body()), "hp:")
	})

	t.Run("Save Invalid", func(t *testing.T) {
		ctx := do(s, "POST", "/", "env="+url.QueryEscape("- just\n- a list"))
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
		assert.Equal(t, 1, backend.replaced)
		assert.Contains(t, string(ctx.Response.Body()), "failed to decode environment")
	})

	t.Run("Pull And Push", func(t *testing.T) {
		assert.Equal(t, fasthttp.StatusOK, do(s, "GET", "/pull", "").Response.StatusCode())
		assert.Equal(t, fasthttp.StatusOK, do(s, "GET", "/push", "").Response.StatusCode())
		assert.Equal(t, 1, backend.rebuilt)
		assert.Equal(t, 1, backend.compacts)

		backend.err = errors.New("disk full")
		ctx := do(s, "GET", "/push", "")
		assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
		assert.Equal(t, "disk full", string(ctx.Response.Body()))
		backend.err = nil
	})

	t.Run("Not Found", func(t *testing.T) {
		ctx := do(s, "GET", "/nope", "")
		assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	})
}

func TestPinger(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("i'm up!"))
	}))
	defer srv.Close()

	p := NewPinger(srv.URL, 2)
	require.NoError(t, p.Beat())
	assert.Equal(t, int32(0), hits.Load(), "no beats before any activity")

	p.Touch()
	assert.Equal(t, 2, p.Remaining())
	require.NoError(t, p.Beat())
	require.NoError(t, p.Beat())
	require.NoError(t, p.Beat())
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 0, p.Remaining())

	p.Touch()
	require.NoError(t, p.Beat())
	assert.Equal(t, int32(3), hits.Load())

	disabled := NewPinger("", 2)
	disabled.Touch()
	require.NoError(t, disabled.Beat())
	assert.Equal(t, 2, disabled.Remaining())
}
