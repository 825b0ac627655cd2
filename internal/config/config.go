// Package config owns the shape and defaults of the knobs the
// pipeline consumes: strictness level, process-call allowance, and
// the CTE/residualizer termination bounds. A driver CLI's flag
// parsing is out of scope; this package only defines PipelineConfig
// and a YAML loader for test fixtures and for drivers that prefer a
// config file over flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TypeStrictness mirrors the `--type-strictness {0|1|2}` driver flag.
type TypeStrictness int

const (
	StrictnessLenient TypeStrictness = 0
	StrictnessNormal TypeStrictness = 1
	StrictnessFull TypeStrictness = 2
)

// Bounds holds the CTE/residualizer termination caps.
type Bounds struct {
	RecursionLimit int `yaml:"recursion_limit"`
	LoopIterationCap int `yaml:"loop_iteration_cap"`
	ResidualizerCeiling int `yaml:"residualizer_ceiling"`
}

// DefaultBounds returns the bounds used when a config file omits them.
func DefaultBounds() Bounds {
	return Bounds{
		RecursionLimit: 1000,
		LoopIterationCap: 1_000_000,
		ResidualizerCeiling: 64,
	}
}

// PipelineConfig is the full set of knobs the pipeline and its passes
// read. Corresponds to the `-v`, `--allow-process`,
// `--strict-types[=full]`, `--type-strictness` driver flags; a driver
// is expected to populate one of these from parsed flags or a YAML
// file.
type PipelineConfig struct {
	Verbose bool `yaml:"verbose"`
	AllowProcess bool `yaml:"allow_process"`
	StrictTypes bool `yaml:"strict_types"`
	TypeStrictness TypeStrictness `yaml:"type_strictness"`
	// KnownAnnotations is the recognized-annotation set;
	// anything else is a warning, not an error.
	KnownAnnotations []string `yaml:"known_annotations"`
	Bounds Bounds `yaml:"bounds"`
}

func DefaultKnownAnnotations() []string {
	return []string{
		"reentrant", "nonreentrant", "nonbanked",
		"inline", "noinline", "hot", "cold", "export",
	}
}

func Default() PipelineConfig {
	return PipelineConfig{
		KnownAnnotations: DefaultKnownAnnotations(),
		Bounds: DefaultBounds(),
	}
}

// IsKnownAnnotation reports whether name is in the recognized set.
// Unknown annotations are warned about, not treated as errors.
func (c PipelineConfig) IsKnownAnnotation(name string) bool {
	for _, a := range c.KnownAnnotations {
		if a == name {
			return true
		}
	}
	return false
}

// Load reads a YAML pipeline config file, defaulting any field left
// unset by the file (so a fixture only needs to override what it
// cares about).
func Load(path string) (PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PipelineConfig{}, fmt.Errorf("reading pipeline config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PipelineConfig{}, fmt.Errorf("parsing pipeline config: %w", err)
	}
	if len(cfg.KnownAnnotations) == 0 {
		cfg.KnownAnnotations = DefaultKnownAnnotations()
	}
	if cfg.Bounds == (Bounds{}) {
		cfg.Bounds = DefaultBounds()
	}
	return cfg, nil
}
