package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	mdaoio "github.com/matzehuels/mdaograph/pkg/io"
	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/mdao/validate"
	"github.com/matzehuels/mdaograph/pkg/pipeline"
)

// stageResponse is returned by the roles, synthesize and schedule endpoints.
type stageResponse struct {
	RunID       string                `json:"run_id"`
	Stage       mdao.Stage            `json:"stage"`
	Document    json.RawMessage       `json:"document"`
	Diagnostics []validate.Diagnostic `json:"diagnostics"`
	Process     *mdaoio.ProcessReport `json:"process,omitempty"`
	CacheHit    bool                  `json:"cache_hit"`
	DurationMS  int64                 `json:"duration_ms"`
}

type validateResponse struct {
	RunID string `json:"run_id"`
	*pipeline.Validation
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthBody())
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	runID := uuid.NewString()
	doc, opts, err := s.decodeRequest(w, r)
	if err != nil {
		respondError(w, err, runID)
		return
	}
	fpg, diags, err := s.runner.Roles(r.Context(), doc, opts)
	if err != nil {
		respondError(w, err, runID)
		return
	}
	body, err := documentJSON(mdaoio.FromFPG(fpg))
	if err != nil {
		respondError(w, err, runID)
		return
	}
	respondJSON(w, http.StatusOK, stageResponse{
		RunID:       runID,
		Stage:       mdao.StageFPG,
		Document:    body,
		Diagnostics: nonNil(diags),
		DurationMS:  time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, mdao.StageMDG)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, mdao.StageMPG)
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, target mdao.Stage) {
	start := time.Now()
	doc, opts, err := s.decodeRequest(w, r)
	if err != nil {
		respondError(w, err, "")
		return
	}
	opts.Target = target
	if target != mdao.StageMPG {
		opts.Process = false
	}

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		runID := ""
		if res != nil {
			runID = res.RunID
		}
		respondError(w, err, runID)
		return
	}

	resp := stageResponse{
		RunID:       res.RunID,
		Stage:       target,
		Diagnostics: nonNil(res.Diagnostics),
		Process:     res.Process,
		DurationMS:  time.Since(start).Milliseconds(),
	}
	var out *mdaoio.Document
	if target == mdao.StageMDG {
		out = mdaoio.FromMDG(res.MDG)
		resp.CacheHit = res.CacheInfo.MDGHit
	} else {
		out = mdaoio.FromMPG(res.MPG)
		resp.CacheHit = res.CacheInfo.MPGHit
	}
	if resp.Document, err = documentJSON(out); err != nil {
		respondError(w, err, res.RunID)
		return
	}
	w.Header().Set("X-Run-ID", res.RunID)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	runID := uuid.NewString()
	doc, opts, err := s.decodeRequest(w, r)
	if err != nil {
		respondError(w, err, runID)
		return
	}
	v, err := s.runner.Validate(r.Context(), doc, opts)
	if err != nil {
		respondError(w, err, runID)
		return
	}
	v.Diagnostics = nonNil(v.Diagnostics)
	respondJSON(w, http.StatusOK, validateResponse{RunID: runID, Validation: v})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*mdaoio.Document, pipeline.Options, error) {
	opts, err := s.options(r)
	if err != nil {
		return nil, opts, err
	}
	doc, err := s.readDocument(w, r)
	if err != nil {
		return nil, opts, err
	}
	return doc, opts, nil
}

// options reads pipeline options from query parameters.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Architecture:    mdao.Architecture(q.Get("architecture")),
		ConvergenceType: mdao.ConvergenceType(q.Get("convergence_type")),
		CycleLimit:      s.cycles,
		Logger:          s.logger,
	}

	boolParam := func(name string, dst *bool) error {
		v := q.Get(name)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.New(errs.ErrCodeInvalidInput, "query parameter %s: %q is not a boolean", name, v)
		}
		*dst = b
		return nil
	}
	if err := boolParam("refresh", &opts.Refresh); err != nil {
		return opts, err
	}
	if err := boolParam("process", &opts.Process); err != nil {
		return opts, err
	}
	if q.Has("allow_unconverged_couplings") {
		var allow bool
		if err := boolParam("allow_unconverged_couplings", &allow); err != nil {
			return opts, err
		}
		opts.AllowUnconvergedCouplings = &allow
	}
	if v := q.Get("cycle_limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "query parameter cycle_limit: %q is not an integer", v)
		}
		opts.CycleLimit = n
	}
	return opts, nil
}

func nonNil(d []validate.Diagnostic) []validate.Diagnostic {
	if d == nil {
		return []validate.Diagnostic{}
	}
	return d
}
