package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mdaograph/pkg/cache"
	errs "github.com/matzehuels/mdaograph/pkg/errors"
	mdaoio "github.com/matzehuels/mdaograph/pkg/io"
	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/mdao/schedule"
	"github.com/matzehuels/mdaograph/pkg/mdao/synth"
	"github.com/matzehuels/mdaograph/pkg/mdao/validate"
	"github.com/matzehuels/mdaograph/pkg/observability"
)

// Stage names used in cache keys and hook events.
const (
	stageProcess = "process"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the cache lifetime of every entry when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs every stage from the document's stage up to opts.Target.
//
// A repository or FPG document starts at role assignment, an MDG document
// at scheduling and an MPG document only builds the process report.
// Formulation overrides in opts apply to repository and FPG documents only.
func (r *Runner) Execute(ctx context.Context, doc *mdaoio.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{RunID: uuid.NewString()}
	opts.Logger = opts.Logger.With("run", result.RunID)

	if stageRank(doc.Stage) < 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown document stage %q", doc.Stage)
	}
	if stageRank(doc.Stage) > stageRank(opts.Target) {
		return nil, errs.Precondition("document is already a %s graph, cannot produce %s", doc.Stage, opts.Target)
	}
	if stageRank(doc.Stage) >= stageRank(mdao.StageMDG) && opts.hasOverrides() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "formulation overrides do not apply to a %s document", doc.Stage)
	}

	if data, err := mdaoio.MarshalJSON(doc); err == nil {
		result.InputHash = cache.Hash(data)
	}

	var (
		mdg *mdao.MDG
		mpg *mdao.MPG
		err error
	)
	switch doc.Stage {
	case mdao.StageRepository, mdao.StageFPG:
		start := time.Now()
		fpg, diags, err := r.Roles(ctx, doc, opts)
		if err != nil {
			return nil, fmt.Errorf("roles: %w", err)
		}
		result.FPG = fpg
		result.Diagnostics = diags
		result.Stats.RolesTime = time.Since(start)
		result.setCounts(fpg.Graph.NodeCount(), fpg.Graph.EdgeCount())
		if opts.Target == mdao.StageFPG {
			return result, nil
		}
		if len(diags) > 0 {
			return result, errs.Wrap(errs.ErrCodeArchitectureMismatch,
				&validate.Failure{Stage: mdao.StageFPG, Diagnostics: diags}, "problem graph failed validation")
		}

		start = time.Now()
		var hit bool
		mdg, hit, err = r.SynthesizeWithCacheInfo(ctx, fpg, opts)
		if err != nil {
			return result, fmt.Errorf("synthesize: %w", err)
		}
		result.MDG = mdg
		result.CacheInfo.MDGHit = hit
		result.Stats.SynthesizeTime = time.Since(start)
		result.setCounts(mdg.Graph.NodeCount(), mdg.Graph.EdgeCount())
	case mdao.StageMDG:
		if mdg, err = doc.MDG(); err != nil {
			return nil, err
		}
		result.MDG = mdg
		result.setCounts(mdg.Graph.NodeCount(), mdg.Graph.EdgeCount())
	case mdao.StageMPG:
		if mpg, err = doc.MPG(); err != nil {
			return nil, err
		}
		result.MPG = mpg
		result.setCounts(mpg.Graph.NodeCount(), mpg.Graph.EdgeCount())
	}

	if opts.Target != mdao.StageMPG {
		return result, nil
	}
	if mpg == nil {
		start := time.Now()
		var hit bool
		mpg, hit, err = r.ScheduleWithCacheInfo(ctx, mdg, opts)
		if err != nil {
			return result, fmt.Errorf("schedule: %w", err)
		}
		result.MPG = mpg
		result.CacheInfo.MPGHit = hit
		result.Stats.ScheduleTime = time.Since(start)
		result.setCounts(mpg.Graph.NodeCount(), mpg.Graph.EdgeCount())
	}

	if opts.Process || doc.Stage == mdao.StageMPG {
		start := time.Now()
		report, hit, err := r.ProcessWithCacheInfo(ctx, mpg, opts)
		if err != nil {
			return result, fmt.Errorf("process: %w", err)
		}
		result.Process = report
		result.CacheInfo.ProcessHit = hit
		result.Stats.ProcessTime = time.Since(start)
	}
	return result, nil
}

// Roles turns a repository or FPG document into an FPG with problem roles
// assigned and runs every check on it. Failed checks are returned as
// diagnostics, not as an error. The document is not modified.
func (r *Runner) Roles(ctx context.Context, doc *mdaoio.Document, opts Options) (*mdao.FPG, []validate.Diagnostic, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnStageStart(ctx, string(mdao.StageFPG), doc.Graph.NodeCount())

	fpg, diags, err := roles(doc, &opts)
	nodes, edges := 0, 0
	if fpg != nil {
		nodes, edges = fpg.Graph.NodeCount(), fpg.Graph.EdgeCount()
	}
	hooks.OnStageComplete(ctx, string(mdao.StageFPG), nodes, edges, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	hooks.OnValidate(ctx, string(mdao.StageFPG), len(diags))

	opts.Logger.Info("assigned problem roles",
		"functions", len(fpg.Formulation.FunctionOrder),
		"coupled", len(fpg.Formulation.FunctionOrdering.Coupled),
		"findings", len(diags),
		"duration", time.Since(start))
	return fpg, diags, nil
}

func roles(doc *mdaoio.Document, opts *Options) (*mdao.FPG, []validate.Diagnostic, error) {
	src, err := doc.FPG()
	if err != nil {
		return nil, nil, err
	}
	fpg := src.Clone()
	opts.applyOverrides(&fpg.Formulation)
	if err := fpg.AddFunctionProblemRoles(); err != nil {
		return nil, nil, err
	}
	_, diags, err := validate.FPG(fpg)
	if err != nil {
		return nil, nil, err
	}
	return fpg, diags, nil
}

// SynthesizeWithCacheInfo builds the data graph with caching and returns
// cache hit info.
func (r *Runner) SynthesizeWithCacheInfo(ctx context.Context, fpg *mdao.FPG, opts Options) (*mdao.MDG, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	stage := string(mdao.StageMDG)
	key, err := r.stageKey(stage, mdaoio.FromFPG(fpg))
	if err != nil {
		return nil, false, err
	}

	if doc := r.lookupDocument(ctx, stage, key, opts); doc != nil {
		if mdg, err := doc.MDG(); err == nil {
			return mdg, true, nil
		}
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnStageStart(ctx, stage, fpg.Graph.NodeCount())
	mdg, err := synth.SynthesizeMDG(fpg)
	if err != nil {
		hooks.OnStageComplete(ctx, stage, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnStageComplete(ctx, stage, mdg.Graph.NodeCount(), mdg.Graph.EdgeCount(), time.Since(start), nil)
	opts.Logger.Info("synthesized data graph",
		"architecture", mdg.Formulation.Architecture,
		"nodes", mdg.Graph.NodeCount(),
		"edges", mdg.Graph.EdgeCount(),
		"duration", time.Since(start))

	r.storeDocument(ctx, stage, key, mdaoio.FromMDG(mdg), cache.TTLStage)
	return mdg, false, nil
}

// Synthesize is a convenience wrapper that calls SynthesizeWithCacheInfo and discards the cache hit info.
func (r *Runner) Synthesize(ctx context.Context, fpg *mdao.FPG, opts Options) (*mdao.MDG, error) {
	mdg, _, err := r.SynthesizeWithCacheInfo(ctx, fpg, opts)
	return mdg, err
}

// ScheduleWithCacheInfo builds the process graph with caching and returns
// cache hit info.
func (r *Runner) ScheduleWithCacheInfo(ctx context.Context, mdg *mdao.MDG, opts Options) (*mdao.MPG, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	stage := string(mdao.StageMPG)
	key, err := r.stageKey(stage, mdaoio.FromMDG(mdg))
	if err != nil {
		return nil, false, err
	}

	if doc := r.lookupDocument(ctx, stage, key, opts); doc != nil {
		if mpg, err := doc.MPG(); err == nil {
			return mpg, true, nil
		}
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnStageStart(ctx, stage, mdg.Graph.NodeCount())
	mpg, err := schedule.ScheduleMPG(mdg)
	if err != nil {
		hooks.OnStageComplete(ctx, stage, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnStageComplete(ctx, stage, mpg.Graph.NodeCount(), mpg.Graph.EdgeCount(), time.Since(start), nil)
	opts.Logger.Info("scheduled process graph",
		"blocks", mpg.Graph.NodeCount(),
		"edges", mpg.Graph.EdgeCount(),
		"duration", time.Since(start))

	r.storeDocument(ctx, stage, key, mdaoio.FromMPG(mpg), cache.TTLStage)
	return mpg, false, nil
}

// Schedule is a convenience wrapper that calls ScheduleWithCacheInfo and discards the cache hit info.
func (r *Runner) Schedule(ctx context.Context, mdg *mdao.MDG, opts Options) (*mdao.MPG, error) {
	mpg, _, err := r.ScheduleWithCacheInfo(ctx, mdg, opts)
	return mpg, err
}

// ProcessWithCacheInfo builds the process report with caching and returns
// cache hit info.
func (r *Runner) ProcessWithCacheInfo(ctx context.Context, mpg *mdao.MPG, opts Options) (*mdaoio.ProcessReport, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := mdaoio.MarshalJSON(mdaoio.FromMPG(mpg))
	if err != nil {
		return nil, false, fmt.Errorf("serialize process graph for cache key: %w", err)
	}
	key := r.Keyer.ProcessKey(cache.Hash(data), opts.ProcessKeyOpts())

	if raw := r.lookup(ctx, stageProcess, key, opts); raw != nil {
		var report mdaoio.ProcessReport
		if err := json.Unmarshal(raw, &report); err == nil {
			return &report, true, nil
		}
		// If deserialization fails, fall through to recompute
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnStageStart(ctx, stageProcess, mpg.Graph.NodeCount())
	report, err := mdaoio.NewProcessReport(mpg, opts.CycleLimit)
	if err != nil {
		hooks.OnStageComplete(ctx, stageProcess, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnStageComplete(ctx, stageProcess, mpg.Graph.NodeCount(), mpg.Graph.EdgeCount(), time.Since(start), nil)
	opts.Logger.Info("computed process list",
		"steps", len(report.Steps),
		"duration", time.Since(start))

	if raw, err := json.Marshal(report); err == nil {
		r.store(ctx, stageProcess, key, raw, cache.TTLProcess)
	}
	return report, false, nil
}

// Process is a convenience wrapper that calls ProcessWithCacheInfo and discards the cache hit info.
func (r *Runner) Process(ctx context.Context, mpg *mdao.MPG, opts Options) (*mdaoio.ProcessReport, error) {
	report, _, err := r.ProcessWithCacheInfo(ctx, mpg, opts)
	return report, err
}

// Validation is the outcome of checking a document.
type Validation struct {
	Stage       mdao.Stage            `json:"stage"`
	Valid       bool                  `json:"valid"`
	Diagnostics []validate.Diagnostic `json:"diagnostics"`
}

// Validate runs every check for the document's stage. Repository and FPG
// documents get their problem roles assigned first, as in [Runner.Roles].
func (r *Runner) Validate(ctx context.Context, doc *mdaoio.Document, opts Options) (*Validation, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := &Validation{Stage: doc.Stage}
	switch doc.Stage {
	case mdao.StageRepository, mdao.StageFPG:
		_, diags, err := r.Roles(ctx, doc, opts)
		if err != nil {
			return nil, err
		}
		v.Stage = mdao.StageFPG
		v.Diagnostics = diags
		v.Valid = len(diags) == 0
		return v, nil
	case mdao.StageMDG:
		mdg, err := doc.MDG()
		if err != nil {
			return nil, err
		}
		if v.Valid, v.Diagnostics, err = validate.MDG(mdg); err != nil {
			return nil, err
		}
	case mdao.StageMPG:
		mpg, err := doc.MPG()
		if err != nil {
			return nil, err
		}
		if v.Valid, v.Diagnostics, err = validate.MPG(mpg); err != nil {
			return nil, err
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown document stage %q", doc.Stage)
	}
	observability.Pipeline().OnValidate(ctx, string(v.Stage), len(v.Diagnostics))
	opts.Logger.Info("validated document", "stage", v.Stage, "valid", v.Valid, "findings", len(v.Diagnostics))
	return v, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) stageKey(stage string, input *mdaoio.Document) (string, error) {
	data, err := mdaoio.MarshalJSON(input)
	if err != nil {
		return "", fmt.Errorf("serialize %s input for cache key: %w", stage, err)
	}
	return r.Keyer.StageKey(stage, cache.Hash(data)), nil
}

func (r *Runner) lookupDocument(ctx context.Context, stage, key string, opts Options) *mdaoio.Document {
	raw := r.lookup(ctx, stage, key, opts)
	if raw == nil {
		return nil
	}
	doc, err := mdaoio.UnmarshalJSON(raw)
	if err != nil {
		opts.Logger.Warn("discarding unreadable cache entry", "stage", stage, "err", err)
		return nil
	}
	return doc
}

// lookup returns the cached bytes, or nil on a miss, a refresh or a cache
// error. Cache errors never fail a run.
func (r *Runner) lookup(ctx context.Context, stage, key string, opts Options) []byte {
	if opts.Refresh {
		return nil
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "stage", stage, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, stage)
		return nil
	}
	observability.Cache().OnCacheHit(ctx, stage)
	opts.Logger.Debug("cache hit", "stage", stage)
	return data
}

func (r *Runner) storeDocument(ctx context.Context, stage, key string, doc *mdaoio.Document, ttl time.Duration) {
	data, err := mdaoio.MarshalJSON(doc)
	if err != nil {
		return
	}
	r.store(ctx, stage, key, data, ttl)
}

func (r *Runner) store(ctx context.Context, stage, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "stage", stage, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, stage, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (o *Options) hasOverrides() bool {
	return o.Architecture != "" || o.ConvergenceType != "" || o.AllowUnconvergedCouplings != nil
}

func (res *Result) setCounts(nodes, edges int) {
	res.Stats.NodeCount = nodes
	res.Stats.EdgeCount = edges
}
