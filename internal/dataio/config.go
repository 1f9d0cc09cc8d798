package dataio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-elliot/analysis"
	"github.com/cwbudde/algo-elliot/bandgap"
	"github.com/cwbudde/algo-elliot/baseline"
	"github.com/cwbudde/algo-elliot/model"
	"github.com/cwbudde/algo-elliot/spectrum"
	"gopkg.in/yaml.v3"
)

// ErrConfig reports an invalid configuration document.
var ErrConfig = errors.New("dataio: invalid config")

// fileConfig mirrors analysis.Config with optional fields. Absent keys keep
// the base value.
type fileConfig struct {
	DeltaE        *float64              `yaml:"delta_e"`
	NS            *int                  `yaml:"ns"`
	FitMode       *int                  `yaml:"fit_mode"`
	Datasets      []int                 `yaml:"datasets"`
	Start         map[string]float64    `yaml:"start"`
	Bounds        map[string][]*float64 `yaml:"bounds"`
	AutoRange     *bool                 `yaml:"auto_range"`
	NarrowWidth   *float64              `yaml:"narrow_half_width"`
	Preliminary   *bool                 `yaml:"preliminary"`
	BaselineRange []float64             `yaml:"baseline_range"`
	FitRange      []float64             `yaml:"fit_range"`
	Workers       *int                  `yaml:"workers"`
	MaxIterations *int                  `yaml:"max_iterations"`
	Levels        *int                  `yaml:"levels"`
	SmoothSigma   *float64              `yaml:"smooth_sigma"`
	UrbachWidth   *float64              `yaml:"urbach_width"`
}

// LoadConfigFile applies the YAML document at path to base.
func LoadConfigFile(path string, base analysis.Config) (analysis.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, err
	}
	defer f.Close()

	return LoadConfig(f, base)
}

// LoadConfig applies a YAML document to base and returns the result. Unknown
// keys are rejected. An empty document returns base unchanged.
//
// Example:
//
//	fit_mode: 1
//	baseline_range: [1.8, 2.1]
//	start: {Eg: 2.5, q: 0.3}
//	bounds:
//	  q: [0, 0.9]
//	  Gamma: [~, 0.2]
func LoadConfig(r io.Reader, base analysis.Config) (analysis.Config, error) {
	var fc fileConfig

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}

		return base, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	return fc.apply(base)
}

func (fc fileConfig) apply(cfg analysis.Config) (analysis.Config, error) {
	setFloat(&cfg.DeltaE, fc.DeltaE)
	setInt(&cfg.NS, fc.NS)
	setInt(&cfg.Workers, fc.Workers)
	setInt(&cfg.MaxIterations, fc.MaxIterations)
	setInt(&cfg.Levels, fc.Levels)
	setFloat(&cfg.NarrowHalfWidth, fc.NarrowWidth)
	setFloat(&cfg.SmoothSigma, fc.SmoothSigma)
	setFloat(&cfg.UrbachWidth, fc.UrbachWidth)

	if fc.AutoRange != nil {
		cfg.AutoRange = *fc.AutoRange
	}

	if fc.Preliminary != nil {
		cfg.Preliminary = *fc.Preliminary
	}

	if fc.FitMode != nil {
		m, err := baseline.ParseMode(*fc.FitMode)
		if err != nil {
			return cfg, fmt.Errorf("%w: %w", ErrConfig, err)
		}

		cfg.FitMode = m
	}

	if fc.Datasets != nil {
		cfg.Datasets = append([]int(nil), fc.Datasets...)
	}

	var err error
	if cfg.BaselineRange, err = parseRange("baseline_range", fc.BaselineRange, cfg.BaselineRange); err != nil {
		return cfg, err
	}

	if cfg.FitRange, err = parseRange("fit_range", fc.FitRange, cfg.FitRange); err != nil {
		return cfg, err
	}

	for name, v := range fc.Start {
		i := model.ParamIndex(name)
		if i < 0 {
			return cfg, fmt.Errorf("%w: start: unknown parameter %q", ErrConfig, name)
		}

		cfg.Start = cfg.Start.With(i, v)
	}

	if len(fc.Bounds) > 0 {
		ov := make(bandgap.Overrides, len(fc.Bounds)+len(cfg.Overrides))
		for k, v := range cfg.Overrides {
			ov[k] = v
		}

		for name, lim := range fc.Bounds {
			if len(lim) != 2 {
				return cfg, fmt.Errorf("%w: bounds.%s: want [lower, upper]", ErrConfig, name)
			}

			ov[name] = bandgap.Limit{Lower: orNaN(lim[0]), Upper: orNaN(lim[1])}
		}

		if err := ov.Validate(); err != nil {
			return cfg, fmt.Errorf("%w: %w", ErrConfig, err)
		}

		cfg.Overrides = ov
	}

	return cfg, nil
}

func parseRange(key string, v []float64, keep spectrum.Range) (spectrum.Range, error) {
	switch len(v) {
	case 0:
		return keep, nil
	case 2:
		return spectrum.NewRange(v[0], v[1]), nil
	default:
		return keep, fmt.Errorf("%w: %s: want [lo, hi]", ErrConfig, key)
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}

	return *v
}
