package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStore writes a TOML config file and opens it.
func writeStore(t *testing.T, body string) *ViperStore {
	t.Helper()
	p := filepath.Join(t.TempDir(), "mode.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	s, err := OpenStore(p)
	require.NoError(t, err)
	return s
}

func TestViperStore_TypedLookups(t *testing.T) {
	t.Setenv("MODE_TEST_ROOT", "/data/met")
	s := writeStore(t, `
[config]
MODEL = "GFS"
OUT_DIR = "{ENV[MODE_TEST_ROOT]}/out//mode/"
RADIUS = "7"
QUILT = "true"
VERBOSITY = 4
THRESH = ">0.5, ge1.0"
THRESH_ARRAY = ["<1", " <=2 "]

[filename_templates]
TEMPLATE = "{init?fmt=%Y%m%d%H}/gfs.f{lead?fmt=%HHH}"
`)

	assert.Equal(t, "GFS", s.String(SectionConfig, "MODEL", ""))
	assert.Equal(t, "GFS", s.String(SectionConfig, "model", ""))
	assert.Equal(t, "fallback", s.String(SectionConfig, "MISSING", "fallback"))

	dir, err := s.Dir(SectionConfig, "OUT_DIR", "")
	require.NoError(t, err)
	assert.Equal(t, "/data/met/out/mode", dir)

	n, err := s.Int(SectionConfig, "RADIUS", 5)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	n, err = s.Int(SectionConfig, "VERBOSITY", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = s.Int(SectionConfig, "MISSING", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	b, err := s.Bool(SectionConfig, "QUILT", false)
	require.NoError(t, err)
	assert.True(t, b)

	list, err := s.List(SectionConfig, "THRESH")
	require.NoError(t, err)
	assert.Equal(t, []string{">0.5", "ge1.0"}, list)
	list, err = s.List(SectionConfig, "THRESH_ARRAY")
	require.NoError(t, err)
	assert.Equal(t, []string{"<1", "<=2"}, list)

	assert.Equal(t, "{init?fmt=%Y%m%d%H}/gfs.f{lead?fmt=%HHH}", s.Raw(SectionTemplates, "TEMPLATE", ""))
	assert.True(t, s.Has(SectionConfig, "MODEL"))
	assert.False(t, s.Has(SectionConfig, "NOPE"))
	assert.Equal(t, []string{"MODEL", "OUT_DIR", "QUILT", "RADIUS", "THRESH", "THRESH_ARRAY", "VERBOSITY"}, s.Keys(SectionConfig))
}

func TestViperStore_Errors(t *testing.T) {
	v := viper.New()
	v.Set("config.radius", "wide")
	v.Set("config.quilt", "sometimes")
	s := NewStore(v)

	_, err := s.Int(SectionConfig, "RADIUS", 5)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "RADIUS", cerr.Key)

	_, err = s.Bool(SectionConfig, "QUILT", false)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "QUILT", cerr.Key)

	_, err = s.Dir(SectionConfig, "OUT_DIR", "")
	require.ErrorIs(t, err, ErrMissingKey)

	dir, err := s.Dir(SectionConfig, "OUT_DIR", "/tmp/out/")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", dir)
}

func TestOpenStore_MissingFile(t *testing.T) {
	_, err := OpenStore(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.toml")
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{">0.5", []string{">0.5"}},
		{" >0.5 , >1.0 ,", []string{">0.5", ">1.0"}},
		{"[gt1, lt2]", []string{"gt1", "lt2"}},
		{"P500, (*,*), A03", []string{"P500", "(*,*)", "A03"}},
		{"[a],[b]", []string{"[a]", "[b]"}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, SplitList(tc.in), tc.in)
	}
}
