package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Benchmarks holds the end-of-year DIBELS 8th targets a roster is scored
// against. DIBELS publications circulate more than one table for first
// grade; this service treats exactly one table as canonical per deployment
// and never merges tables. Operators who need a different table supply a
// YAML file via BENCHMARKS_PATH.
type Benchmarks struct {
	Composite   float64 `yaml:"composite"`
	LNF         float64 `yaml:"lnf"`
	PSF         float64 `yaml:"psf"`
	NWFCls      float64 `yaml:"nwfCls"`
	NWFWrc      float64 `yaml:"nwfWrc"`
	WRF         float64 `yaml:"wrf"`
	ORF         float64 `yaml:"orf"`
	ORFAccuracy float64 `yaml:"orfAccuracy"`
}

// DefaultBenchmarks returns the canonical 1st grade EOY table.
func DefaultBenchmarks() Benchmarks {
	return Benchmarks{
		Composite:   441,
		LNF:         59,
		PSF:         45,
		NWFCls:      55,
		NWFWrc:      15,
		WRF:         25,
		ORF:         39,
		ORFAccuracy: 91,
	}
}

// LoadBenchmarks reads a benchmark table from a YAML file. Zero-valued
// fields fall back to the default table so partial overrides are possible.
func LoadBenchmarks(path string) (Benchmarks, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Benchmarks{}, fmt.Errorf("failed to read benchmarks file: %w", err)
	}

	b := DefaultBenchmarks()
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Benchmarks{}, fmt.Errorf("failed to parse benchmarks file: %w", err)
	}
	return b, nil
}
