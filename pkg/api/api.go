// Package api exposes the layout engine over HTTP.
//
// Routes:
//
//	POST   /v1/layout          lay out a graph sent in the body
//	POST   /v1/check/cycle     would adding source → target close a cycle?
//	POST   /v1/check/dag       is the graph acyclic?
//	POST   /v1/tiers           resolve a tier spec against a graph
//	GET    /v1/graphs          list stored graph ids
//	POST   /v1/graphs          store a graph under a fresh id
//	PUT    /v1/graphs/{id}     store a graph
//	GET    /v1/graphs/{id}     load a graph
//	DELETE /v1/graphs/{id}     delete a graph
//	POST   /v1/graphs/{id}/layout  lay out a stored graph
//	GET    /healthz            liveness and build info
//
// Errors are JSON objects {"code", "message"}. Validation codes map to 400,
// NOT_FOUND to 404, everything else to 500.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/graphlayout/pkg/buildinfo"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/observability"
	"github.com/matzehuels/graphlayout/pkg/pipeline"
	"github.com/matzehuels/graphlayout/pkg/storage"
)

// DefaultMaxBodyBytes limits request bodies when Options leaves it unset.
const DefaultMaxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	Runner *pipeline.Runner
	Store  storage.Store
	Logger *log.Logger
	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64
	// Timeout bounds each request. Zero means 60s.
	Timeout time.Duration
	// DefaultParams is used when a layout request carries no params.
	DefaultParams layout.Params
}

// Server holds the handlers' dependencies.
type Server struct {
	runner  *pipeline.Runner
	store   storage.Store
	log     *log.Logger
	maxBody int64
	timeout time.Duration
	params  layout.Params
}

// New returns a server. A nil runner gets an uncached one; a nil store
// gets an in-memory one.
func New(opts Options) *Server {
	s := &Server{
		runner:  opts.Runner,
		store:   opts.Store,
		log:     opts.Logger,
		maxBody: opts.MaxBodyBytes,
		timeout: opts.Timeout,
		params:  opts.DefaultParams,
	}
	if s.log == nil {
		s.log = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.log)
	}
	if s.store == nil {
		s.store = storage.NewMemoryStore()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.layout)
		r.Post("/check/cycle", s.checkCycle)
		r.Post("/check/dag", s.checkDAG)
		r.Post("/tiers", s.tiers)

		r.Route("/graphs", func(r chi.Router) {
			r.Get("/", s.listGraphs)
			r.Post("/", s.createGraph)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", s.putGraph)
				r.Get("/", s.getGraph)
				r.Delete("/", s.deleteGraph)
				r.Post("/layout", s.layoutStored)
			})
		})
	})
	return r
}

// observe logs each request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, dur)
		s.log.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", dur)
	})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}
