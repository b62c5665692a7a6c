package combine

import (
	"fmt"
	"math"

	"github.com/abelbrown/watchfloor/internal/intel"
)

const weightTolerance = 1e-6

// PrimaryWeights weight the six scoring dimensions. They must sum to 1.
type PrimaryWeights struct {
	Keyword      float64 `yaml:"keyword" json:"keyword"`
	Entity       float64 `yaml:"entity" json:"entity"`
	Credibility  float64 `yaml:"credibility" json:"credibility"`
	Temporal     float64 `yaml:"temporal" json:"temporal"`
	Geopolitical float64 `yaml:"geopolitical" json:"geopolitical"`
	Threat       float64 `yaml:"threat" json:"threat"`
}

func DefaultPrimaryWeights() PrimaryWeights {
	return PrimaryWeights{
		Keyword:      0.30,
		Entity:       0.25,
		Credibility:  0.20,
		Temporal:     0.10,
		Geopolitical: 0.08,
		Threat:       0.07,
	}
}

func (w PrimaryWeights) byName() map[string]float64 {
	return map[string]float64{
		intel.DimKeyword:      w.Keyword,
		intel.DimEntity:       w.Entity,
		intel.DimCredibility:  w.Credibility,
		intel.DimTemporal:     w.Temporal,
		intel.DimGeopolitical: w.Geopolitical,
		intel.DimThreat:       w.Threat,
	}
}

func (w PrimaryWeights) Validate() error {
	return checkWeights("primary", w.byName())
}

// SecondaryWeights weight the secondary factors. They must sum to 1.
type SecondaryWeights struct {
	Depth          float64 `yaml:"depth" json:"depth"`
	Linguistic     float64 `yaml:"linguistic" json:"linguistic"`
	CrossReference float64 `yaml:"cross_reference" json:"cross_reference"`
	Operational    float64 `yaml:"operational" json:"operational"`
	Strategic      float64 `yaml:"strategic" json:"strategic"`
}

func DefaultSecondaryWeights() SecondaryWeights {
	return SecondaryWeights{
		Depth:          0.15,
		Linguistic:     0.15,
		CrossReference: 0.20,
		Operational:    0.25,
		Strategic:      0.25,
	}
}

func (w SecondaryWeights) byName() map[string]float64 {
	return map[string]float64{
		intel.FactorDepth:          w.Depth,
		intel.FactorLinguistic:     w.Linguistic,
		intel.FactorCrossReference: w.CrossReference,
		intel.FactorOperational:    w.Operational,
		intel.FactorStrategic:      w.Strategic,
	}
}

func (w SecondaryWeights) Validate() error {
	return checkWeights("secondary", w.byName())
}

func checkWeights(kind string, ws map[string]float64) error {
	var sum float64
	for name, v := range ws {
		if v < 0 {
			return fmt.Errorf("%s weight %s is negative: %v", kind, name, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%s weights sum to %v, want 1.0", kind, sum)
	}
	return nil
}
