package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInit(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"20240426", time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)},
		{"2024042612", time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)},
		{"202404261230", time.Date(2024, 4, 26, 12, 30, 0, 0, time.UTC)},
		{" 20240426123045 ", time.Date(2024, 4, 26, 12, 30, 45, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInit(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	for _, bad := range []string{"", "2024", "2024042625", "abcdefghij"} {
		_, err := ParseInit(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseLead(t *testing.T) {
	d, err := ParseLead("6")
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, d)

	d, err = ParseLead("90m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	_, err = ParseLead("six")
	assert.Error(t, err)
}

func TestTimes_CrossesInitsAndLeads(t *testing.T) {
	times, err := Times([]string{"2024042600", "2024042612"}, []string{"3", "6"})
	require.NoError(t, err)
	require.Len(t, times, 4)

	assert.Equal(t, "20240426000000", times[0].InitFmt())
	assert.Equal(t, 3, times[0].LeadHours())
	assert.Equal(t, 6, times[1].LeadHours())
	assert.Equal(t, "20240426120000", times[2].InitFmt())
	assert.Equal(t, "20240426180000", times[3].ValidFmt())
}

func TestTimes_DefaultLeadAndErrors(t *testing.T) {
	times, err := Times([]string{"2024042600"}, nil)
	require.NoError(t, err)
	require.Len(t, times, 1)
	assert.Zero(t, times[0].Lead)

	_, err = Times(nil, []string{"3"})
	assert.ErrorIs(t, err, ErrNoTimes)
}

func TestTimeLoop(t *testing.T) {
	s := writeStore(t, withConfig(`INIT_BEG = "2024042600"
INIT_END = "2024042612"
INIT_INCREMENT = 21600
LEAD_SEQ = [3, 6]
`))

	times, err := TimeLoop(s)
	require.NoError(t, err)
	require.Len(t, times, 6)
	assert.Equal(t, "20240426000000", times[0].InitFmt())
	assert.Equal(t, "20240426060000", times[2].InitFmt())
	assert.Equal(t, "20240426120000", times[5].InitFmt())
	assert.Equal(t, 6, times[5].LeadHours())
}

func TestTimeLoop_SingleInitDefaultsToZeroLead(t *testing.T) {
	times, err := TimeLoop(writeStore(t, withConfig("INIT_BEG = \"2024042600\"\n")))
	require.NoError(t, err)
	require.Len(t, times, 1)
	assert.Zero(t, times[0].Lead)
}

func TestTimeLoop_Errors(t *testing.T) {
	_, err := TimeLoop(writeStore(t, minimalConfig))
	assert.ErrorIs(t, err, ErrNoTimes)

	_, err = TimeLoop(writeStore(t, withConfig("INIT_BEG = \"2024042612\"\nINIT_END = \"2024042600\"\n")))
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "INIT_END", cerr.Key)

	_, err = TimeLoop(writeStore(t, withConfig("INIT_BEG = \"2024042600\"\nINIT_INCREMENT = 0\n")))
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "INIT_INCREMENT", cerr.Key)
}
