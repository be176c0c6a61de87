// Package server exposes the compiler over HTTP.
//
//	POST /v1/compile  {"source": "...", "run": true, "input": "..."}
//	GET  /v1/health
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"gotac/pkg/compiler"
	"gotac/pkg/config"
	"gotac/pkg/log"
	"gotac/pkg/vm"
)

const maxRequestSize = 1 << 20

// CompileRequest is the body of POST /v1/compile.
type CompileRequest struct {
	Source string `json:"source"`
	// Run executes the generated code when compilation succeeds.
	Run   bool   `json:"run,omitempty"`
	Input string `json:"input,omitempty"`
}

// CompileResponse reports every stage that ran.
type CompileResponse struct {
	ID          string   `json:"id"`
	OK          bool     `json:"ok"`
	FailedStage string   `json:"failedStage,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	TAC         []string `json:"tac,omitempty"`
	Symbols     string   `json:"symbols,omitempty"`

	Output       string `json:"output,omitempty"`
	RuntimeError string `json:"runtimeError,omitempty"`
}

type Server struct {
	cfg   config.ServerConfig
	opts  compiler.Options
	cache *compiler.Cache
	log   log.Logger
}

// New returns a server for cfg. A positive Compiler.CacheSize enables the
// result cache.
func New(cfg *config.Config) (*Server, error) {
	s := &Server{
		cfg:  cfg.Server,
		opts: cfg.CompileOptions(),
		log:  log.New("module", "server"),
	}
	if cfg.Compiler.CacheSize > 0 {
		cache, err := compiler.NewCache(cfg.Compiler.CacheSize, s.opts)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

// Handler returns the routed handler, wrapped for CORS when origins are
// configured.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/v1/health", s.health)
	router.POST("/v1/compile", s.compile)
	return newCorsHandler(router, s.cfg.AllowedOrigins)
}

func newCorsHandler(srv http.Handler, allowedOrigins []string) http.Handler {
	// disable CORS support if user has not specified a custom CORS configuration
	if len(allowedOrigins) == 0 {
		return srv
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(srv)
}

// ListenAndServe serves on the configured address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("HTTP server started", "endpoint", "http://"+s.cfg.Addr, "cors", strings.Join(s.cfg.AllowedOrigins, ","))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("HTTP server stopping")
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) compile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id := uuid.New().String()
	w.Header().Set("X-Request-Id", id)

	var req CompileRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.log.Debug("Rejected compile request", "id", id, "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"id": id, "error": err.Error()})
		return
	}

	start := time.Now()
	res := s.compileSource(req.Source)
	resp := CompileResponse{ID: id, OK: res.OK(), Warnings: res.Warnings}
	if !res.OK() {
		resp.FailedStage = res.Failed.String()
		var d *compiler.Diagnostics
		if errors.As(res.Err(), &d) {
			resp.Errors = d.Messages
		}
	}
	if res.Analysis != nil {
		resp.Symbols = res.Analysis.Symbols.String()
	}
	if res.TAC != nil {
		for i, q := range res.TAC.Quads {
			resp.TAC = append(resp.TAC, fmt.Sprintf("%d: %s", i, q))
		}
	}
	if req.Run && res.OK() {
		resp.Output, resp.RuntimeError = s.run(r.Context(), res, req.Input)
	}

	s.log.Debug("Compiled", "id", id, "ok", resp.OK, "stage", res.Failed, "elapsed", time.Since(start))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) compileSource(src string) *compiler.Result {
	if s.cache != nil {
		return s.cache.Compile(src)
	}
	return compiler.CompileWith(src, s.opts)
}

// run executes a compiled program against input on a fresh machine.
func (s *Server) run(ctx context.Context, res *compiler.Result, input string) (string, string) {
	var out bytes.Buffer
	m := vm.New(res.TAC)
	m.Output = &out
	m.Input = strings.NewReader(input)
	m.MaxSteps = s.cfg.RunSteps
	if err := m.RunContext(ctx); err != nil {
		return out.String(), err.Error()
	}
	return out.String(), ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
