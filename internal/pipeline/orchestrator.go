// Package pipeline sequences trainer, evaluator, tracker and local
// persistence for each configured model. Tracking is best-effort: when it
// fails, the model is retrained from scratch and persisted locally so the
// run is never lost.
package pipeline

import (
	"log/slog"

	"github.com/haskel/mltrack/internal/dataset"
	"github.com/haskel/mltrack/internal/metrics"
	"github.com/haskel/mltrack/internal/model"
	"github.com/haskel/mltrack/internal/persist"
	"github.com/haskel/mltrack/internal/tracking"
)

// ModelSpec is one model to train: its configuration plus an optional
// registry name to register the tracked artifact under.
type ModelSpec struct {
	Config   model.Config
	Register string
}

// ModelResult is the per-model outcome of one pipeline invocation.
type ModelResult struct {
	Name         string
	State        State
	Metrics      metrics.Record
	ArtifactPath string
	RunID        string
	Tracked      bool
	FellBack     bool

	// Err is the fatal error for this model, nil on success.
	Err error

	// RegistrationErr records a failed best-effort registration. Never
	// affects success.
	RegistrationErr error
}

// OK reports whether the model reached DONE(success).
func (r ModelResult) OK() bool {
	return r.State == StateDoneSuccess
}

// Summary aggregates per-model outcomes. OK is true only if every
// configured model succeeded.
type Summary struct {
	Results []ModelResult
	OK      bool
}

// Orchestrator runs the training-and-tracking pipeline over a fixed list
// of model specs. Models are processed strictly sequentially, each fully
// completing (including fallback) before the next begins; failures are
// isolated per model.
type Orchestrator struct {
	data      *dataset.Dataset
	evalRatio float64
	seed      int64
	specs     []ModelSpec
	tracker   tracking.Tracker
	store     *persist.Store
	logger    *slog.Logger

	// automated suppresses optional model registration so unattended
	// runs never hit registry permission failures.
	automated bool
}

// Options configures an Orchestrator.
type Options struct {
	Data      *dataset.Dataset
	EvalRatio float64
	Seed      int64
	Specs     []ModelSpec
	Tracker   tracking.Tracker
	Store     *persist.Store
	Logger    *slog.Logger
	Automated bool
}

// New creates an Orchestrator. Construct once, run once, discard.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		data:      opts.Data,
		evalRatio: opts.EvalRatio,
		seed:      opts.Seed,
		specs:     opts.Specs,
		tracker:   opts.Tracker,
		store:     opts.Store,
		logger:    opts.Logger,
		automated: opts.Automated,
	}
}

// Run splits the dataset once, then drives every configured model through
// the state machine. A split failure aborts before any model is trained;
// model failures never abort the remaining models.
func (o *Orchestrator) Run() (Summary, error) {
	train, eval, err := dataset.Split(o.data, o.evalRatio, o.seed)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{OK: true}
	for _, spec := range o.specs {
		res := o.runModel(spec, train, eval)
		if !res.OK() {
			summary.OK = false
		}
		summary.Results = append(summary.Results, res)
	}
	return summary, nil
}

func (o *Orchestrator) runModel(spec ModelSpec, train, eval *dataset.Dataset) ModelResult {
	res := ModelResult{Name: spec.Config.Name, State: StatePending}

	o.logger.Info("training model", "model", spec.Config.Name, "algorithm", spec.Config.Kind.String())

	// Fit failures are fatal: there is nothing to fall back from.
	res.State = StateFitting
	fitted, err := model.Fit(spec.Config, train)
	if err != nil {
		return o.fail(res, err)
	}

	res.State = StateEvaluating
	rec, err := metrics.Evaluate(fitted, eval, o.data.Task)
	if err != nil {
		return o.fail(res, err)
	}
	res.Metrics = rec

	res.State = StateTrackingAttempted
	handle, trackErr := o.tracker.LogRun(tracking.RunRecord{
		Name:     spec.Config.Name,
		Params:   spec.Config.ParamMap(),
		Metrics:  rec,
		Features: o.data.Features,
	}, fitted, sampleInput(eval))

	// Local persistence is unconditional: the model file must exist at
	// its deterministic path whether or not tracking succeeded.
	path, persistErr := o.store.Save(fitted, spec.Config.Name)
	res.ArtifactPath = path

	if trackErr != nil {
		o.logger.Warn("tracking failed, falling back to local-only run",
			"model", spec.Config.Name,
			"error", trackErr,
		)
		return o.fallback(res, spec, train, eval)
	}

	res.Tracked = true
	res.RunID = handle.RunID
	if persistErr != nil {
		return o.fail(res, persistErr)
	}

	res.State = StateTracked
	o.register(&res, spec, handle)

	res.State = StateDoneSuccess
	o.logger.Info("model trained", "model", res.Name, "run_id", res.RunID, "metrics", map[string]float64(res.Metrics))
	return res
}

// fallback re-enters the untracked path: refit from scratch, re-evaluate
// and persist. The earlier fitted model is deliberately discarded.
func (o *Orchestrator) fallback(res ModelResult, spec ModelSpec, train, eval *dataset.Dataset) ModelResult {
	res.FellBack = true

	res.State = StateFallbackFitting
	fitted, err := model.Fit(spec.Config, train)
	if err != nil {
		return o.fail(res, err)
	}

	res.State = StateFallbackEvaluated
	rec, err := metrics.Evaluate(fitted, eval, o.data.Task)
	if err != nil {
		return o.fail(res, err)
	}
	res.Metrics = rec

	res.State = StateFallbackPersisted
	path, err := o.store.Save(fitted, spec.Config.Name)
	if err != nil {
		return o.fail(res, err)
	}
	res.ArtifactPath = path

	res.State = StateDoneSuccess
	o.logger.Info("model trained without tracking", "model", res.Name, "path", path, "metrics", map[string]float64(res.Metrics))
	return res
}

// register performs the optional best-effort registration. Failures are
// recorded and logged but never change the model outcome. Skipped
// entirely in automated execution contexts.
func (o *Orchestrator) register(res *ModelResult, spec ModelSpec, handle tracking.RunHandle) {
	if spec.Register == "" {
		return
	}
	if o.automated {
		o.logger.Info("skipping model registration in automated run", "model", res.Name, "registry_name", spec.Register)
		return
	}
	if err := o.tracker.RegisterModel(handle, spec.Register); err != nil {
		res.RegistrationErr = err
		o.logger.Warn("model registration failed", "model", res.Name, "registry_name", spec.Register, "error", err)
		return
	}
	o.logger.Info("model registered", "model", res.Name, "registry_name", spec.Register)
}

func (o *Orchestrator) fail(res ModelResult, err error) ModelResult {
	res.Err = err
	res.State = StateDoneFailure
	o.logger.Error("model failed", "model", res.Name, "error", err)
	return res
}

// sampleInput returns the rows used for signature inference and the
// stored input example.
func sampleInput(eval *dataset.Dataset) [][]float64 {
	if eval.Len() == 0 {
		return nil
	}
	return eval.Rows[:1]
}
