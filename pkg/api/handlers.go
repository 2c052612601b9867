package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/graphlayout/pkg/check"
	"github.com/matzehuels/graphlayout/pkg/convert"
	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/pipeline"
	"github.com/matzehuels/graphlayout/pkg/storage"
	"github.com/matzehuels/graphlayout/pkg/tiers"
)

// =============================================================================
// Layout
// =============================================================================

type layoutOptions struct {
	// Params is a layout parameter object with layoutName. Absent params
	// select the server's default layout.
	Params          json.RawMessage `json:"params,omitempty"`
	AvailableInputs []string        `json:"availableInputs,omitempty"`
	// Formats lists extra artifacts: "dot" and/or "svg".
	Formats []string `json:"formats,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`
}

type layoutRequest struct {
	Graph graph.Graph `json:"graph"`
	layoutOptions
}

type layoutResponse struct {
	layout.Update
	GraphHash string            `json:"graphHash"`
	Cached    bool              `json:"cached"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

var textFormats = map[string]bool{pipeline.FormatDOT: true, pipeline.FormatSVG: true}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.runLayout(w, r, req.Graph, req.layoutOptions)
}

func (s *Server) runLayout(w http.ResponseWriter, r *http.Request, g graph.Graph, opts layoutOptions) {
	params := s.params
	if len(opts.Params) > 0 {
		p, err := layout.Decode(opts.Params)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		params = p
	}
	for _, f := range opts.Formats {
		if !textFormats[f] {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "unsupported format %q (must be dot or svg)", f))
			return
		}
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Graph:           g,
		AvailableInputs: opts.AvailableInputs,
		Params:          params,
		Formats:         append([]string{pipeline.FormatJSON}, opts.Formats...),
		Refresh:         opts.Refresh,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := layoutResponse{Update: res.Update, GraphHash: res.GraphHash, Cached: res.CacheInfo.LayoutHit}
	for _, f := range opts.Formats {
		if resp.Artifacts == nil {
			resp.Artifacts = map[string]string{}
		}
		resp.Artifacts[f] = string(res.Artifacts[f])
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Checks
// =============================================================================

type cycleRequest struct {
	Graph  graph.Graph `json:"graph"`
	Source string      `json:"source"`
	Target string      `json:"target"`
}

func (s *Server) checkCycle(w http.ResponseWriter, r *http.Request) {
	var req cycleRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Source == "" || req.Target == "" {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "source and target are required"))
		return
	}
	g, err := convert.Parse(req.Graph)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"wouldCreateCycle": check.WouldCreateCycle(g, req.Source, req.Target),
	})
}

type dagRequest struct {
	Graph graph.Graph `json:"graph"`
}

type dagResponse struct {
	IsDAG  bool       `json:"isDAG"`
	Cycles [][]string `json:"cycles,omitempty"`
}

func (s *Server) checkDAG(w http.ResponseWriter, r *http.Request) {
	var req dagRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok, err := s.runner.IsDAG(r.Context(), pipeline.Options{Graph: req.Graph})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := dagResponse{IsDAG: ok}
	if !ok {
		g, err := convert.Parse(req.Graph)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Cycles = check.CyclicComponents(g)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Tiers
// =============================================================================

type tiersRequest struct {
	Graph           graph.Graph `json:"graph"`
	Tiers           tiers.Spec  `json:"tiers"`
	AvailableInputs []string    `json:"availableInputs,omitempty"`
}

func (s *Server) tiers(w http.ResponseWriter, r *http.Request) {
	var req tiersRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := convert.Parse(req.Graph, convert.WithAvailableInputs(req.AvailableInputs))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resolved, err := tiers.Resolve(req.Tiers, g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if resolved == nil {
		resolved = [][]string{}
	}
	writeJSON(w, http.StatusOK, map[string][][]string{"tiers": resolved})
}

// =============================================================================
// Stored graphs
// =============================================================================

func (s *Server) listGraphs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

func (s *Server) createGraph(w http.ResponseWriter, r *http.Request) {
	s.storeGraph(w, r, storage.NewID(), http.StatusCreated)
}

func (s *Server) putGraph(w http.ResponseWriter, r *http.Request) {
	s.storeGraph(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (s *Server) storeGraph(w http.ResponseWriter, r *http.Request, id string, status int) {
	var g graph.Graph
	if err := s.decode(w, r, &g); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.store.Put(r.Context(), id, g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, rec)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) deleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) layoutStored(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var opts layoutOptions
	if r.ContentLength != 0 {
		if err := s.decode(w, r, &opts); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.runLayout(w, r, rec.Graph, opts)
}
