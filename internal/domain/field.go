package domain

import (
	"strings"

	"github.com/couchcryptid/storm-mode-driver/internal/threshold"
)

// Side selects the forecast or observation half of a comparison.
type Side string

const (
	Forecast    Side = "FCST"
	Observation Side = "OBS"
)

// DataType is the input file format declared for a side.
type DataType string

const (
	DataTypeNetCDF DataType = "NETCDF"
	DataTypeGempak DataType = "GEMPAK"
)

// FlagsProbability reports whether probabilities in this format are plain
// fields marked with prob=TRUE rather than nested under the PROB name.
func (d DataType) FlagsProbability() bool {
	return d == DataTypeNetCDF || d == DataTypeGempak
}

// Field is a field specification for one side of a MODE run. It is either
// a ProbabilisticField or a DeterministicField.
type Field interface {
	field()
}

// ProbabilisticField selects a probability field. Thresh is nil when the
// variable has no thresholds.
type ProbabilisticField struct {
	Name     string
	Level    string
	Extra    string
	DataType DataType
	Thresh   *threshold.Threshold
}

// DeterministicField selects a plain field. PcpCombine marks input produced
// by PCP-Combine, which names accumulations NAME_LEVEL.
type DeterministicField struct {
	Name       string
	Level      string
	Extra      string
	PcpCombine bool
}

func (ProbabilisticField) field() {}
func (DeterministicField) field() {}

// RenderField writes f in MET config syntax.
func RenderField(f Field) string {
	var b strings.Builder
	var extra string
	switch f := f.(type) {
	case ProbabilisticField:
		extra = f.Extra
		if f.DataType.FlagsProbability() {
			_, level := SplitLevel(f.Level)
			b.WriteString(`{ name="` + f.Name + `"; level="` + level + `"; prob=TRUE; `)
			break
		}
		levelType, level := SplitLevel(f.Level)
		b.WriteString(`{ name="PROB"; level="` + levelType + zfill(level, 2) + `"; prob={ name="` + f.Name + `"; `)
		if bound := probabilityBound(f.Thresh); bound != "" {
			b.WriteString(bound + " ")
		}
		b.WriteString("} ")
	case DeterministicField:
		extra = f.Extra
		if f.PcpCombine {
			_, level := SplitLevel(f.Level)
			b.WriteString(`{ name="` + f.Name + "_" + level + `"; level="(*,*)"; `)
			break
		}
		b.WriteString(`{ name="` + f.Name + `"; level="` + f.Level + `"; `)
	}
	b.WriteString(extra + " }")
	return b.String()
}

func probabilityBound(t *threshold.Threshold) string {
	switch {
	case t == nil:
		return ""
	case t.Op.IsLowerBound():
		return "thresh_lo=" + t.Literal + ";"
	case t.Op.IsUpperBound():
		return "thresh_hi=" + t.Literal + ";"
	}
	return ""
}
