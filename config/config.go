// Package config defines PoissonConfig, the parameter block the core
// pipeline is driven by. It mirrors Notargets-gocfd's
// InputParameters/InputParameters.go: a flat YAML-tagged struct, parsed
// with github.com/ghodss/yaml, printed with a terse Print method, and
// bound to Cobra flags one field at a time in cmd/.
package config

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// BoundaryType is the wire/YAML representation of the three boundary
// modes. It is a plain string enum here (not basis.Type) so this package
// stays a leaf with no dependency on the solver internals, exactly as the
// teacher's InputParameters2D has no dependency on the DG element code it
// configures.
type BoundaryType string

const (
	BoundaryFree      BoundaryType = "free"
	BoundaryDirichlet BoundaryType = "dirichlet"
	BoundaryNeumann   BoundaryType = "neumann"
)

// PoissonConfig is the full set of parameters that drive a reconstruction run.
type PoissonConfig struct {
	MaxDepth         int          `yaml:"maxDepth"`
	MinDepth         int          `yaml:"minDepth"`
	SplatDepth       int          `yaml:"splatDepth"`
	SamplesPerNode   float64      `yaml:"samplesPerNode"`
	ScaleFactor      float64      `yaml:"scaleFactor"`
	UseConfidence    bool         `yaml:"useConfidence"`
	UseNormalWeights bool         `yaml:"useNormalWeights"`
	ConstraintWeight float64      `yaml:"constraintWeight"`
	AdaptiveExponent int          `yaml:"adaptiveExponent"`
	BoundaryType     BoundaryType `yaml:"boundaryType"`
	SubdivideDepth   int          `yaml:"subdivideDepth"`
	MinIters         int          `yaml:"minIters"`
	MaxSolveDepth    int          `yaml:"maxSolveDepth"`
	FixedIters       int          `yaml:"fixedIters"`
	Accuracy         float64      `yaml:"accuracy"`
	ShowResidual     bool         `yaml:"showResidual"`
	IsoValue         *float64     `yaml:"isoValue"` // nil => computed internally
	NonLinearFit     bool         `yaml:"nonLinearFit"`
	PolygonMesh      bool         `yaml:"polygonMesh"`
	AddBarycenter    bool         `yaml:"addBarycenter"`
	Threads          int          `yaml:"threads"`
	XForm            [16]float64  `yaml:"xForm"` // row-major 4x4
}

// Default returns sane values for a first run: identity transform,
// single-threaded, no screening, quadratic-fit roots.
func Default() PoissonConfig {
	c := PoissonConfig{
		MaxDepth:         8,
		MinDepth:         0,
		SplatDepth:       0,
		SamplesPerNode:   1.5,
		ScaleFactor:      1.1,
		BoundaryType:     BoundaryNeumann,
		SubdivideDepth:   0,
		MinIters:         1,
		MaxSolveDepth:    -1, // -1 => MaxDepth
		FixedIters:       -1, // -1 => use accuracy-based termination
		Accuracy:         1e-3,
		NonLinearFit:     true,
		Threads:          1,
	}
	c.XForm = identity4x4()
	return c
}

func identity4x4() [16]float64 {
	var m [16]float64
	for i := 0; i < 4; i++ {
		m[i*4+i] = 1
	}
	return m
}

// Parse decodes data (YAML or JSON, per ghodss/yaml) into c in place, so
// fields absent from data keep c's current values; calling it on Default()
// gives the same "parse onto defaults" idiom Notargets-gocfd applies to
// InputParameters2D via a pre-populated struct literal before Parse is
// called.
func (c *PoissonConfig) Parse(data []byte) error {
	return yaml.Unmarshal(data, c)
}

// Print writes the configuration in InputParameters.Print's terse
// name-then-annotation style.
func (c *PoissonConfig) Print() {
	fmt.Printf("%8d\t\t\t= MaxDepth\n", c.MaxDepth)
	fmt.Printf("%8d\t\t\t= MinDepth\n", c.MinDepth)
	fmt.Printf("%8d\t\t\t= SplatDepth\n", c.SplatDepth)
	fmt.Printf("%8.4f\t\t= SamplesPerNode\n", c.SamplesPerNode)
	fmt.Printf("%8.4f\t\t= ScaleFactor\n", c.ScaleFactor)
	fmt.Printf("[%s]\t\t= BoundaryType\n", c.BoundaryType)
	fmt.Printf("%8.4f\t\t= ConstraintWeight\n", c.ConstraintWeight)
	fmt.Printf("%8d\t\t\t= SubdivideDepth\n", c.SubdivideDepth)
	fmt.Printf("%8d\t\t\t= Threads\n", c.Threads)
}

// EffectiveMaxSolveDepth resolves the -1 "use MaxDepth" sentinel.
func (c *PoissonConfig) EffectiveMaxSolveDepth() int {
	if c.MaxSolveDepth < 0 {
		return c.MaxDepth
	}
	return c.MaxSolveDepth
}

// ScreeningEnabled reports whether the Tikhonov point-fidelity (screening)
// term is active.
func (c *PoissonConfig) ScreeningEnabled() bool {
	return c.ConstraintWeight > 0
}
