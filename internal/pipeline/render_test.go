package pipeline

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-mode-driver/internal/config"
	"github.com/couchcryptid/storm-mode-driver/internal/domain"
	"github.com/couchcryptid/storm-mode-driver/internal/threshold"
)

func renderConfig() *config.RunConfig {
	return &config.RunConfig{
		AppPath:         "/met/bin/mode",
		ConfigFile:      "/parm/MODEConfig_wrapped",
		ConfigDir:       "/parm",
		OutputDir:       "/out",
		OutputTemplate:  "{init?fmt=%Y%m%d%H}",
		MergeConfigFile: "/parm/merge.conf",
		Model:           "HRRR",
		ObType:          "MRMS",
		Quilt:           true,
		Verbosity:       3,
		Fcst: config.SideConfig{
			Side: domain.Forecast, IsProb: true,
			ConvRadius: "5", ConvThresh: ">0.5", MergeThresh: ">0.45", MergeFlag: "THRESH",
		},
		Obs: config.SideConfig{
			Side: domain.Observation, PcpCombineRun: true,
			ConvRadius: "4", ConvThresh: ">=1", MergeThresh: ">=0.8", MergeFlag: "ENGINE",
		},
		UserEnv: domain.EnvSet{{Name: "MET_TMP_DIR", Value: "/scratch"}},
	}
}

func TestExpandThresholds(t *testing.T) {
	pairs, err := ExpandThresholds(domain.VarInfo{
		FcstThresh: []string{">0.5", ">1.0"},
		ObsThresh:  []string{">0.4", ">0.8"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []ThresholdPair{
		{Index: 0, Fcst: ">0.5", Obs: ">0.4"},
		{Index: 1, Fcst: ">1.0", Obs: ">0.8"},
	}, pairs)

	pairs, err = ExpandThresholds(domain.VarInfo{}, false)
	require.NoError(t, err)
	assert.Equal(t, []ThresholdPair{{}}, pairs)
	assert.Equal(t, "none", pairs[0].fcstLabel())
	assert.Equal(t, "none", pairs[0].obsLabel())

	_, err = ExpandThresholds(domain.VarInfo{}, true)
	assert.ErrorIs(t, err, ErrProbNeedsThreshold)

	pairs, err = ExpandThresholds(domain.VarInfo{FcstThresh: []string{">1"}}, true)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestBuildField(t *testing.T) {
	f, err := BuildField(config.SideConfig{}, "TMP", "P500", "", ">273")
	require.NoError(t, err)
	assert.Equal(t, domain.DeterministicField{Name: "TMP", Level: "P500"}, f)

	f, err = BuildField(config.SideConfig{IsProb: true, DataType: domain.DataTypeGempak}, "APCP", "A03", "x;", "ge1")
	require.NoError(t, err)
	pf, ok := f.(domain.ProbabilisticField)
	require.True(t, ok)
	assert.Equal(t, domain.DataTypeGempak, pf.DataType)
	require.NotNil(t, pf.Thresh)
	assert.Equal(t, threshold.GE, pf.Thresh.Op)

	f, err = BuildField(config.SideConfig{IsProb: true}, "APCP", "A03", "", "")
	require.NoError(t, err)
	assert.Nil(t, f.(domain.ProbabilisticField).Thresh)

	_, err = BuildField(config.SideConfig{IsProb: true}, "APCP", "A03", "", "1")
	assert.ErrorIs(t, err, threshold.ErrInvalid)
}

func TestRenderIteration(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	ti := domain.NewTimeInfo(time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC), 3*time.Hour)
	v := domain.VarInfo{
		Index: 1, FcstName: "APCP", FcstLevel: "A3", FcstThresh: []string{"ge12.7"},
		ObsName: "APCP", ObsLevel: "A03", ObsExtra: `file_type=NETCDF_MET;`, ObsThresh: []string{"ge12.7"},
	}
	pair := ThresholdPair{Index: 0, Fcst: "ge12.7", Obs: "ge12.7"}

	it, err := RenderIteration(renderConfig(), ti, v, pair, "/in/fcst.grb2", "/in/obs.nc")
	require.NoError(t, err)

	assert.Equal(t, `{ name="PROB"; level="A03"; prob={ name="APCP"; thresh_lo=12.7; }  }`, it.FcstField)
	assert.Equal(t, `{ name="APCP_03"; level="(*,*)"; file_type=NETCDF_MET; }`, it.ObsField)

	inv := it.Invocation
	assert.Equal(t, "/out/2024042612", inv.OutputDir)
	assert.Equal(t, []string{"/in/fcst.grb2", "/in/obs.nc"}, inv.Inputs)
	assert.Equal(t, "/parm/merge.conf", inv.MergeConfig)
	assert.Equal(t, 3, inv.Verbosity)
	assert.Equal(t, time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC), inv.CreatedAt)

	assert.Equal(t, []string{
		"MET_TMP_DIR",
		"MODEL", "OBTYPE", "FCST_VAR", "OBS_VAR", "LEVEL",
		"FCST_FIELD", "OBS_FIELD", "CONFIG_DIR", "MET_VALID_HHMM", "QUILT",
		"FCST_CONV_RADIUS", "OBS_CONV_RADIUS", "FCST_CONV_THRESH", "OBS_CONV_THRESH",
		"FCST_MERGE_THRESH", "OBS_MERGE_THRESH", "FCST_MERGE_FLAG", "OBS_MERGE_FLAG",
	}, inv.Env.Names())

	want := map[string]string{
		"MODEL":             "HRRR",
		"OBTYPE":            "MRMS",
		"LEVEL":             "3",
		"FCST_FIELD":        it.FcstField,
		"OBS_FIELD":         it.ObsField,
		"CONFIG_DIR":        "/parm",
		"MET_VALID_HHMM":    "1500",
		"QUILT":             "TRUE",
		"OBS_CONV_RADIUS":   "4",
		"OBS_CONV_THRESH":   ">=1",
		"OBS_MERGE_FLAG":    "ENGINE",
		"FCST_MERGE_FLAG":   "THRESH",
		"FCST_MERGE_THRESH": ">0.45",
	}
	for name, value := range want {
		got, ok := inv.Env.Get(name)
		assert.True(t, ok, name)
		assert.Equal(t, value, got, name)
	}
}

func TestRenderIteration_DoesNotShareEnvAcrossCalls(t *testing.T) {
	cfg := renderConfig()
	cfg.UserEnv = make(domain.EnvSet, 1, 8)
	cfg.UserEnv[0] = domain.EnvVar{Name: "MET_TMP_DIR", Value: "/scratch"}
	ti := domain.NewTimeInfo(time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC), 0)
	v := domain.VarInfo{FcstName: "APCP", FcstLevel: "A03", ObsName: "APCP", ObsLevel: "A03"}

	first, err := RenderIteration(cfg, ti, v, ThresholdPair{Fcst: ">1", Obs: ">1"}, "f", "o")
	require.NoError(t, err)
	second, err := RenderIteration(cfg, ti, v, ThresholdPair{Index: 1, Fcst: "<5", Obs: "<5"}, "f", "o")
	require.NoError(t, err)

	f1, _ := first.Invocation.Env.Get("FCST_FIELD")
	f2, _ := second.Invocation.Env.Get("FCST_FIELD")
	assert.Contains(t, f1, "thresh_lo=1;")
	assert.Contains(t, f2, "thresh_hi=5;")
	assert.Len(t, cfg.UserEnv, 1)
}

func TestRenderIteration_BadOutputTemplate(t *testing.T) {
	cfg := renderConfig()
	cfg.OutputTemplate = "{init?fmt=%Q}"
	_, err := RenderIteration(cfg, domain.TimeInfo{}, domain.VarInfo{}, ThresholdPair{Fcst: ">1"}, "f", "o")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output template")
}
