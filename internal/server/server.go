// Package server is the small admin web surface: a page to view and edit
// the environment, a health check and journal maintenance hooks.
package server

import (
	"html/template"
	"time"

	"github.com/buaazp/fasthttprouter"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/suderio/rolldice/internal/env"
	"github.com/suderio/rolldice/internal/logger"
)

// Backend is the session the server administers.
type Backend interface {
	Snapshot() env.Snapshot
	ReplaceSnapshot(env.Snapshot) error
	Rebuild() error
	Compact() error
}

var page = template.Must(template.New("env").Parse(`<!DOCTYPE html>
<html><body>
{{if .Error}}<p style="color: red">{{.Error}}</p>{{end}}
<form method="post" action="/">
    <textarea name="env" style="width: 100%; height: 90%; font-family: monospace">{{.Env}}</textarea>
    <button type="submit" style="width:100%">Save</button>
</form>
</body></html>
`))

type pageData struct {
	Env   string
	Error string
}

// Server serves the admin routes.
type Server struct {
	address string
	backend Backend
	pinger  *Pinger
	r       *fasthttprouter.Router
	srv     *fasthttp.Server
}

// NewServer wires the routes. pinger may be nil.
func NewServer(address string, backend Backend, pinger *Pinger) *Server {
	s := &Server{address: address, backend: backend, pinger: pinger, r: fasthttprouter.New()}
	s.r.GET("/", s.showEnv)
	s.r.POST("/", s.saveEnv)
	s.r.GET("/healthz", s.healthz)
	s.r.GET("/pull", s.pull)
	s.r.GET("/push", s.push)
	s.srv = &fasthttp.Server{
		Handler:      s.Handler(),
		Name:         "rolldice",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler is the router wrapped with activity tracking and request logging.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if s.pinger != nil {
			s.pinger.Touch()
		}
		s.r.Handler(ctx)
		logger.Debug("request",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()))
	}
}

// ListenAndServe blocks serving on the configured address.
func (s *Server) ListenAndServe() error {
	logger.Info("admin server listening", zap.String("address", s.address))
	return s.srv.ListenAndServe(s.address)
}

// Shutdown stops accepting connections and waits for open ones to finish.
func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

func (s *Server) render(ctx *fasthttp.RequestCtx, errMsg string) {
	data := pageData{Error: errMsg}
	out, err := env.FromSnapshot(s.backend.Snapshot()).Marshal()
	if err != nil {
		data.Error = err.Error()
	} else {
		data.Env = string(out)
	}
	ctx.SetContentType("text/html; charset=utf-8")
	if err := page.Execute(ctx, data); err != nil {
		logger.Error("failed to render page", zap.Error(err))
	}
}

func (s *Server) showEnv(ctx *fasthttp.RequestCtx) {
	s.render(ctx, "")
}

func (s *Server) saveEnv(ctx *fasthttp.RequestCtx) {
	e, err := env.Unmarshal(ctx.FormValue("env"))
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.render(ctx, err.Error())
		return
	}
	if err := s.backend.ReplaceSnapshot(e.Snapshot()); err != nil {
		logger.Error("failed to replace environment", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		s.render(ctx, err.Error())
		return
	}
	logger.Info("environment edited", zap.String("remote", ctx.RemoteAddr().String()))
	s.render(ctx, "")
}

func (s *Server) healthz(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.WriteString("i'm up!")
}

func (s *Server) pull(ctx *fasthttp.RequestCtx) {
	s.maintain(ctx, "rebuild", s.backend.Rebuild)
}

func (s *Server) push(ctx *fasthttp.RequestCtx) {
	s.maintain(ctx, "compact", s.backend.Compact)
}

func (s *Server) maintain(ctx *fasthttp.RequestCtx, what string, fn func() error) {
	ctx.SetContentType("text/plain; charset=utf-8")
	if err := fn(); err != nil {
		logger.Error("maintenance failed", zap.String("op", what), zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.WriteString(err.Error())
		return
	}
	ctx.WriteString("i'm up!")
}
