package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/couchcryptid/storm-mode-driver/internal/config"
	"github.com/couchcryptid/storm-mode-driver/internal/domain"
	"github.com/couchcryptid/storm-mode-driver/internal/locate"
	"github.com/couchcryptid/storm-mode-driver/internal/threshold"
)

// ErrProbNeedsThreshold is returned for a probabilistic forecast variable
// with no thresholds.
var ErrProbNeedsThreshold = errors.New("must specify field threshold value to process probabilistic forecast")

// ThresholdPair is one forecast/observation threshold combination. Empty
// thresholds mean the variable is not thresholded.
type ThresholdPair struct {
	Index int
	Fcst  string
	Obs   string
}

func (p ThresholdPair) fcstLabel() string { return orNone(p.Fcst) }
func (p ThresholdPair) obsLabel() string  { return orNone(p.Obs) }

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// ExpandThresholds pairs the forecast and observation thresholds of v by
// position. A variable without thresholds yields a single unthresholded
// pair, unless the forecast is probabilistic.
func ExpandThresholds(v domain.VarInfo, fcstIsProb bool) ([]ThresholdPair, error) {
	if len(v.FcstThresh) == 0 {
		if fcstIsProb {
			return nil, ErrProbNeedsThreshold
		}
		return []ThresholdPair{{}}, nil
	}
	n := min(len(v.FcstThresh), len(v.ObsThresh))
	pairs := make([]ThresholdPair, n)
	for i := range n {
		pairs[i] = ThresholdPair{Index: i, Fcst: v.FcstThresh[i], Obs: v.ObsThresh[i]}
	}
	return pairs, nil
}

// BuildField selects the field variant for one side.
func BuildField(side config.SideConfig, name, level, extra, thresh string) (domain.Field, error) {
	if !side.IsProb {
		return domain.DeterministicField{Name: name, Level: level, Extra: extra, PcpCombine: side.PcpCombineRun}, nil
	}
	f := domain.ProbabilisticField{Name: name, Level: level, Extra: extra, DataType: side.DataType}
	if thresh != "" {
		t, err := threshold.Parse(thresh)
		if err != nil {
			return nil, err
		}
		f.Thresh = &t
	}
	return f, nil
}

// Iteration is everything produced for one threshold pair.
type Iteration struct {
	Pair       ThresholdPair
	FcstField  string
	ObsField   string
	Invocation domain.Invocation
}

// RenderIteration builds the field strings, environment, and invocation
// for one threshold pair. It has no side effects; the output directory it
// names is created by the caller.
func RenderIteration(cfg *config.RunConfig, ti domain.TimeInfo, v domain.VarInfo, pair ThresholdPair, fcstPath, obsPath string) (Iteration, error) {
	outDir := cfg.OutputDir
	if cfg.OutputTemplate != "" {
		sub, err := locate.Fill(cfg.OutputTemplate, ti)
		if err != nil {
			return Iteration{}, fmt.Errorf("output template: %w", err)
		}
		outDir = filepath.Join(outDir, sub)
	}

	fcst, err := BuildField(cfg.Fcst, v.FcstName, v.FcstLevel, v.FcstExtra, pair.Fcst)
	if err != nil {
		return Iteration{}, fmt.Errorf("forecast field: %w", err)
	}
	obs, err := BuildField(cfg.Obs, v.ObsName, v.ObsLevel, v.ObsExtra, pair.Obs)
	if err != nil {
		return Iteration{}, fmt.Errorf("observation field: %w", err)
	}
	it := Iteration{
		Pair:      pair,
		FcstField: domain.RenderField(fcst),
		ObsField:  domain.RenderField(obs),
	}

	_, level := domain.SplitLevel(v.FcstLevel)
	env := append(domain.EnvSet(nil), cfg.UserEnv...)
	env.Set("MODEL", cfg.Model)
	env.Set("OBTYPE", cfg.ObType)
	env.Set("FCST_VAR", v.FcstName)
	env.Set("OBS_VAR", v.ObsName)
	env.Set("LEVEL", level)
	env.Set("FCST_FIELD", it.FcstField)
	env.Set("OBS_FIELD", it.ObsField)
	env.Set("CONFIG_DIR", cfg.ConfigDir)
	env.Set("MET_VALID_HHMM", ti.ValidHHMM())
	env.Set("QUILT", domain.BoolFlag(cfg.Quilt))
	env.Set("FCST_CONV_RADIUS", cfg.Fcst.ConvRadius)
	env.Set("OBS_CONV_RADIUS", cfg.Obs.ConvRadius)
	env.Set("FCST_CONV_THRESH", cfg.Fcst.ConvThresh)
	env.Set("OBS_CONV_THRESH", cfg.Obs.ConvThresh)
	env.Set("FCST_MERGE_THRESH", cfg.Fcst.MergeThresh)
	env.Set("OBS_MERGE_THRESH", cfg.Obs.MergeThresh)
	env.Set("FCST_MERGE_FLAG", cfg.Fcst.MergeFlag)
	env.Set("OBS_MERGE_FLAG", cfg.Obs.MergeFlag)

	inv := domain.NewInvocation(ti, v, pair.Index)
	inv.App = cfg.AppPath
	inv.Inputs = []string{fcstPath, obsPath}
	inv.ConfigFile = cfg.ConfigFile
	inv.OutputDir = outDir
	inv.MergeConfig = cfg.MergeConfigFile
	inv.Verbosity = cfg.Verbosity
	inv.Env = env
	inv.FcstThresh = pair.Fcst
	inv.ObsThresh = pair.Obs
	it.Invocation = inv

	return it, nil
}
