// Package pipeline drives MODE for one time step: it locates the input
// files, expands the threshold list of each variable, and hands one
// invocation per threshold pair to a command runner.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/couchcryptid/storm-mode-driver/internal/config"
	"github.com/couchcryptid/storm-mode-driver/internal/domain"
	"github.com/couchcryptid/storm-mode-driver/internal/observability"
)

// ErrMissingInput is returned when the forecast or observation file for a
// time step cannot be found.
var ErrMissingInput = errors.New("missing input file")

// FileLocator resolves input files for a time step and variable.
type FileLocator interface {
	FindForecast(ctx context.Context, ti domain.TimeInfo, v domain.VarInfo) (string, error)
	FindObservation(ctx context.Context, ti domain.TimeInfo, v domain.VarInfo) (string, error)
}

// CommandRunner executes or dispatches one invocation.
type CommandRunner interface {
	Run(ctx context.Context, inv domain.Invocation) error
}

// Report counts what happened during a run.
type Report struct {
	Fields    int `json:"fields"`
	Skipped   int `json:"skipped"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	NoCommand int `json:"no_command"`
}

func (r *Report) add(o Report) {
	r.Fields += o.Fields
	r.Skipped += o.Skipped
	r.Succeeded += o.Succeeded
	r.Failed += o.Failed
	r.NoCommand += o.NoCommand
}

// Driver runs MODE over the variables of a RunConfig.
type Driver struct {
	cfg     *config.RunConfig
	fs      afero.Fs
	locator FileLocator
	runner  CommandRunner
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool

	mu   sync.Mutex
	last Report
}

// New creates a Driver. Output directories are created on fs.
func New(cfg *config.RunConfig, fs afero.Fs, locator FileLocator, runner CommandRunner, logger *slog.Logger, metrics *observability.Metrics) *Driver {
	return &Driver{
		cfg:     cfg,
		fs:      fs,
		locator: locator,
		runner:  runner,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once a run has started.
func (d *Driver) CheckReadiness(_ context.Context) error {
	if !d.ready.Load() {
		return errors.New("driver has not started a run yet")
	}
	return nil
}

// RunAtTime processes every configured variable for ti. Variables with
// missing inputs or unusable thresholds are logged and skipped; only
// context cancellation stops the loop early.
func (d *Driver) RunAtTime(ctx context.Context, ti domain.TimeInfo) (Report, error) {
	d.ready.Store(true)
	d.metrics.RunRunning.Set(1)
	defer d.metrics.RunRunning.Set(0)

	d.logger.Info("running mode", "init", ti.InitFmt(), "lead_hours", ti.LeadHours(), "vars", len(d.cfg.Vars))

	var total Report
	for _, v := range d.cfg.Vars {
		r, err := d.RunAtTimeOneField(ctx, ti, v)
		total.add(r)
		if err != nil && ctx.Err() != nil {
			d.record(total)
			return total, ctx.Err()
		}
	}
	d.record(total)
	return total, nil
}

func (d *Driver) record(r Report) {
	d.mu.Lock()
	d.last = r
	d.mu.Unlock()
}

// LastReport returns the report of the most recently finished time step.
func (d *Driver) LastReport() Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// RunAtTimeOneField runs MODE for one variable at ti, once per threshold pair.
func (d *Driver) RunAtTimeOneField(ctx context.Context, ti domain.TimeInfo, v domain.VarInfo) (Report, error) {
	skipped := Report{Skipped: 1}

	fcstPath, err := d.locator.FindForecast(ctx, ti, v)
	if err != nil {
		if ctx.Err() != nil {
			return skipped, ctx.Err()
		}
		d.logger.Error("could not find forecast file",
			"dir", d.cfg.Fcst.InputDir, "init", ti.InitFmt(), "lead_hours", ti.LeadHours(),
			"var", v.FcstName, "error", err)
		d.metrics.MissingInputs.WithLabelValues(string(domain.Forecast)).Inc()
		return skipped, fmt.Errorf("%w: forecast: %w", ErrMissingInput, err)
	}

	obsPath, err := d.locator.FindObservation(ctx, ti, v)
	if err != nil {
		if ctx.Err() != nil {
			return skipped, ctx.Err()
		}
		d.logger.Error("could not find observation file",
			"dir", d.cfg.Obs.InputDir, "valid", ti.ValidFmt(),
			"var", v.ObsName, "error", err)
		d.metrics.MissingInputs.WithLabelValues(string(domain.Observation)).Inc()
		return skipped, fmt.Errorf("%w: observation: %w", ErrMissingInput, err)
	}

	return d.processThresholds(ctx, ti, v, fcstPath, obsPath)
}

func (d *Driver) processThresholds(ctx context.Context, ti domain.TimeInfo, v domain.VarInfo, fcstPath, obsPath string) (Report, error) {
	pairs, err := ExpandThresholds(v, d.cfg.Fcst.IsProb)
	if err != nil {
		d.logger.Error("skipping variable", "var", v.FcstName, "level", v.FcstLevel, "error", err)
		d.metrics.ThresholdErrors.Inc()
		return Report{Skipped: 1}, err
	}

	d.metrics.FieldsProcessed.Inc()
	r := Report{Fields: 1}
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		d.runIteration(ctx, ti, v, pair, fcstPath, obsPath, &r)
	}
	return r, nil
}

// runIteration renders and runs one threshold pair. Nothing it builds
// outlives the call.
func (d *Driver) runIteration(ctx context.Context, ti domain.TimeInfo, v domain.VarInfo, pair ThresholdPair, fcstPath, obsPath string, r *Report) {
	logger := d.logger.With("var", v.FcstName, "level", v.FcstLevel,
		"fcst_thresh", pair.fcstLabel(), "obs_thresh", pair.obsLabel())

	it, err := RenderIteration(d.cfg, ti, v, pair, fcstPath, obsPath)
	if err != nil {
		logger.Error("could not render iteration", "error", err)
		d.noCommand(r)
		return
	}
	inv := it.Invocation

	if inv.OutputDir != "" {
		if err := d.fs.MkdirAll(inv.OutputDir, 0o755); err != nil {
			logger.Error("could not create output directory", "dir", inv.OutputDir, "error", err)
			d.noCommand(r)
			return
		}
	}

	logger.Debug("environment for next command", envAttrs(inv.Env)...)
	logger.Debug("copyable environment for next command", "env", inv.Env.Copyable())

	line, err := inv.CommandLine()
	if err != nil {
		logger.Error("could not generate command", "error", err)
		d.noCommand(r)
		return
	}

	logger.Info("running command", "id", inv.ID, "cmd", line)
	start := time.Now()
	err = d.runner.Run(ctx, inv)
	d.metrics.InvocationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Error("command failed", "id", inv.ID, "error", err)
		d.metrics.Invocations.WithLabelValues(observability.OutcomeFailure).Inc()
		r.Failed++
		return
	}
	d.metrics.Invocations.WithLabelValues(observability.OutcomeSuccess).Inc()
	r.Succeeded++
}

func (d *Driver) noCommand(r *Report) {
	d.metrics.Invocations.WithLabelValues(observability.OutcomeNoCommand).Inc()
	r.NoCommand++
}

func envAttrs(env domain.EnvSet) []any {
	attrs := make([]any, 0, 2*len(env))
	for _, e := range env {
		attrs = append(attrs, e.Name, e.Value)
	}
	return attrs
}
