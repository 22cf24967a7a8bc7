package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"

	"github.com/couchcryptid/storm-mode-driver/internal/domain"
	"github.com/couchcryptid/storm-mode-driver/internal/threshold"
)

// Defaults applied when neither the generic nor the side-specific key is set.
const (
	DefaultConvRadius  = "5"
	DefaultConvThresh  = ">0.5"
	DefaultMergeThresh = ">0.45"
	DefaultMergeFlag   = "THRESH"
	DefaultVerbosity   = 2
)

// mergeFlags are the values MODE accepts for merge_flag.
var mergeFlags = map[string]bool{"NONE": true, "THRESH": true, "ENGINE": true, "BOTH": true}

// SideConfig holds the settings duplicated for forecast and observation.
type SideConfig struct {
	Side          domain.Side
	InputDir      string
	InputTemplate string
	DataType      domain.DataType
	IsProb        bool
	PcpCombineRun bool

	ConvRadius  string
	ConvThresh  string
	MergeThresh string
	MergeFlag   string

	// File search window around the target time, in seconds.
	WindowBegin int
	WindowEnd   int
}

// RunConfig is the validated configuration for one run. It is built once
// by Build and not modified afterwards.
type RunConfig struct {
	AppPath         string
	ConfigFile      string
	ConfigDir       string
	OutputDir       string
	OutputTemplate  string
	MergeConfigFile string
	Model           string
	ObType          string
	Quilt           bool
	Verbosity       int

	Fcst SideConfig
	Obs  SideConfig

	UserEnv domain.EnvSet
	Vars    []domain.VarInfo
}

// Side returns the settings for s.
func (c *RunConfig) Side(s domain.Side) SideConfig {
	if s == domain.Observation {
		return c.Obs
	}
	return c.Fcst
}

// Build reads and validates a RunConfig. Every problem found is reported
// as a *ConfigError; the errors are joined so callers can list them all.
func Build(store Store) (*RunConfig, error) {
	b := &builder{store: store}
	cfg := &RunConfig{}

	if dir := b.dir(SectionConfig, "MET_INSTALL_DIR", ""); dir != "" {
		cfg.AppPath = filepath.Join(dir, "bin", "mode")
	}
	cfg.ConfigFile = b.required(SectionConfig, "MODE_CONFIG")
	cfg.ConfigDir = store.String(SectionConfig, "CONFIG_DIR", "")
	cfg.OutputDir = b.dir(SectionConfig, "MODE_OUT_DIR", "")
	cfg.OutputTemplate = store.Raw(SectionTemplates, "MODE_OUTPUT_TEMPLATE", "")
	cfg.MergeConfigFile = store.String(SectionConfig, "MODE_MERGE_CONFIG_FILE", "")
	cfg.Model = store.String(SectionConfig, "MODEL", "FCST")
	cfg.ObType = store.String(SectionConfig, "OBTYPE", "OBS")
	cfg.Quilt = b.boolVal(SectionConfig, "MODE_QUILT", false)
	cfg.Verbosity = b.intVal(SectionConfig, "LOG_MET_VERBOSITY", DefaultVerbosity)

	cfg.Fcst = b.side(domain.Forecast)
	cfg.Obs = b.side(domain.Observation)

	for _, key := range store.Keys(SectionUserEnv) {
		cfg.UserEnv.Set(key, store.String(SectionUserEnv, key, ""))
	}

	vars, err := ParseVarList(store)
	if err != nil {
		b.errs = append(b.errs, err)
	}
	cfg.Vars = vars

	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return cfg, nil
}

type builder struct {
	store Store
	errs  []error
}

func (b *builder) fail(section, key string, err error) {
	var cerr *ConfigError
	if errors.As(err, &cerr) {
		b.errs = append(b.errs, err)
		return
	}
	b.errs = append(b.errs, &ConfigError{Section: section, Key: key, Err: err})
}

func (b *builder) required(section, key string) string {
	v := b.store.String(section, key, "")
	if v == "" {
		b.fail(section, key, ErrMissingKey)
	}
	return v
}

func (b *builder) dir(section, key, def string) string {
	d, err := b.store.Dir(section, key, def)
	if err != nil {
		b.fail(section, key, err)
	}
	return d
}

func (b *builder) boolVal(section, key string, def bool) bool {
	v, err := b.store.Bool(section, key, def)
	if err != nil {
		b.fail(section, key, err)
	}
	return v
}

func (b *builder) intVal(section, key string, def int) int {
	v, err := b.store.Int(section, key, def)
	if err != nil {
		b.fail(section, key, err)
	}
	return v
}

// pair resolves a setting that has a generic key and per-side overrides.
// It returns the key the value came from for error reporting.
func (b *builder) pair(generic, specific, def string) (string, string) {
	if b.store.Has(SectionConfig, specific) {
		return b.store.String(SectionConfig, specific, def), specific
	}
	if b.store.Has(SectionConfig, generic) {
		return b.store.String(SectionConfig, generic, def), generic
	}
	return def, specific
}

// window resolves a search window bound, preferring the MODE-specific key.
func (b *builder) window(side domain.Side, bound string) int {
	specific := fmt.Sprintf("%s_MODE_WINDOW_%s", side, bound)
	if b.store.Has(SectionConfig, specific) {
		return b.intVal(SectionConfig, specific, 0)
	}
	return b.intVal(SectionConfig, fmt.Sprintf("%s_WINDOW_%s", side, bound), 0)
}

func (b *builder) side(side domain.Side) SideConfig {
	s := string(side)
	sc := SideConfig{
		Side:          side,
		InputDir:      b.dir(SectionConfig, s+"_MODE_INPUT_DIR", ""),
		InputTemplate: b.store.Raw(SectionTemplates, s+"_MODE_INPUT_TEMPLATE", ""),
		DataType:      domain.DataType(strings.ToUpper(b.store.String(SectionConfig, s+"_MODE_INPUT_DATATYPE", ""))),
		IsProb:        b.boolVal(SectionConfig, s+"_IS_PROB", false),
		PcpCombineRun: b.boolVal(SectionConfig, s+"_PCP_COMBINE_RUN", false),
		WindowBegin:   b.window(side, "BEGIN"),
		WindowEnd:     b.window(side, "END"),
	}
	if sc.InputTemplate == "" {
		b.fail(SectionTemplates, s+"_MODE_INPUT_TEMPLATE", ErrMissingKey)
	}

	var key string
	sc.ConvRadius, key = b.pair("MODE_CONV_RADIUS", "MODE_"+s+"_CONV_RADIUS", DefaultConvRadius)
	if _, err := cast.ToIntE(sc.ConvRadius); err != nil {
		b.fail(SectionConfig, key, fmt.Errorf("convolution radius %q is not an integer", sc.ConvRadius))
	}

	sc.ConvThresh, key = b.pair("MODE_CONV_THRESH", "MODE_"+s+"_CONV_THRESH", DefaultConvThresh)
	b.thresholds(key, sc.ConvThresh)

	sc.MergeThresh, key = b.pair("MODE_MERGE_THRESH", "MODE_"+s+"_MERGE_THRESH", DefaultMergeThresh)
	b.thresholds(key, sc.MergeThresh)

	sc.MergeFlag, key = b.pair("MODE_MERGE_FLAG", "MODE_"+s+"_MERGE_FLAG", DefaultMergeFlag)
	sc.MergeFlag = strings.ToUpper(sc.MergeFlag)
	if !mergeFlags[sc.MergeFlag] {
		b.fail(SectionConfig, key, fmt.Errorf("merge flag %q must be one of NONE, THRESH, ENGINE, BOTH", sc.MergeFlag))
	}
	return sc
}

func (b *builder) thresholds(key, value string) {
	if err := threshold.ValidateList(SplitList(value)); err != nil {
		b.fail(SectionConfig, key, fmt.Errorf("%s items must start with a comparison operator: %w", key, err))
	}
}
