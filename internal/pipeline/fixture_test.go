package pipeline_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-mode-driver/internal/config"
	"github.com/couchcryptid/storm-mode-driver/internal/domain"
	"github.com/couchcryptid/storm-mode-driver/internal/pipeline"
)

type expectedField struct {
	Var        int    `json:"var"`
	Level      string `json:"level"`
	FcstThresh string `json:"fcst_thresh"`
	ObsThresh  string `json:"obs_thresh"`
	FcstField  string `json:"fcst_field"`
	ObsField   string `json:"obs_field"`
}

// TestRenderIteration_Fixture renders every iteration of a realistic SREF
// probability run and compares the field strings against a fixture.
func TestRenderIteration_Fixture(t *testing.T) {
	store, err := config.OpenStore(filepath.Join("testdata", "mode.toml"))
	require.NoError(t, err)
	cfg, err := config.Build(store)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join("testdata", "expected_fields.json"))
	require.NoError(t, err)
	var want []expectedField
	require.NoError(t, json.Unmarshal(data, &want))

	ti := domain.NewTimeInfo(time.Date(2024, time.April, 26, 9, 0, 0, 0, time.UTC), 3*time.Hour)

	var got []expectedField
	for _, v := range cfg.Vars {
		pairs, err := pipeline.ExpandThresholds(v, cfg.Fcst.IsProb)
		require.NoError(t, err)
		for _, pair := range pairs {
			it, err := pipeline.RenderIteration(cfg, ti, v, pair, "fcst", "obs")
			require.NoError(t, err)
			got = append(got, expectedField{
				Var:        v.Index,
				Level:      v.FcstLevel,
				FcstThresh: pair.Fcst,
				ObsThresh:  pair.Obs,
				FcstField:  it.FcstField,
				ObsField:   it.ObsField,
			})
		}
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rendered fields mismatch (-want +got):\n%s", diff)
	}
}
