package timespec

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// DistributionKind names the supported duration distributions.
type DistributionKind string

const (
	KindFixed      DistributionKind = "fixed"
	KindPert       DistributionKind = "pert"
	KindUniform    DistributionKind = "uniform"
	KindTriangular DistributionKind = "triangular"
	KindLogNormal  DistributionKind = "lognormal"
)

// DurationDistribution is a tagged union over the supported duration
// models. The Kind field selects which parameter set is meaningful.
// Means and quantiles are analytic, never simulated.
type DurationDistribution struct {
	Kind DistributionKind `json:"kind"`

	// Fixed
	FixedMs int64 `json:"fixed_ms,omitempty"`

	// Pert
	Pert *PertEstimate `json:"pert,omitempty"`

	// Uniform and Triangular
	MinMs  int64 `json:"min_ms,omitempty"`
	ModeMs int64 `json:"mode_ms,omitempty"`
	MaxMs  int64 `json:"max_ms,omitempty"`

	// LogNormal, parameterized on the log scale
	Mu    float64 `json:"mu,omitempty"`
	Sigma float64 `json:"sigma,omitempty"`
}

// Fixed returns a deterministic duration.
func Fixed(ms int64) DurationDistribution {
	return DurationDistribution{Kind: KindFixed, FixedMs: ms}
}

// Pert returns a Beta-PERT distributed duration.
func Pert(optimisticMs, mostLikelyMs, pessimisticMs int64) DurationDistribution {
	p := PertEstimate{OptimisticMs: optimisticMs, MostLikelyMs: mostLikelyMs, PessimisticMs: pessimisticMs}
	return DurationDistribution{Kind: KindPert, Pert: &p}
}

// Uniform returns a duration uniformly distributed on [min, max].
func Uniform(minMs, maxMs int64) DurationDistribution {
	return DurationDistribution{Kind: KindUniform, MinMs: minMs, MaxMs: maxMs}
}

// Triangular returns a triangular distributed duration on [min, max]
// with the given mode.
func Triangular(minMs, modeMs, maxMs int64) DurationDistribution {
	return DurationDistribution{Kind: KindTriangular, MinMs: minMs, ModeMs: modeMs, MaxMs: maxMs}
}

// LogNormal returns a log-normally distributed duration.
func LogNormal(mu, sigma float64) DurationDistribution {
	return DurationDistribution{Kind: KindLogNormal, Mu: mu, Sigma: sigma}
}

// Validate checks the parameter set selected by Kind.
func (d DurationDistribution) Validate() error {
	switch d.Kind {
	case KindFixed, "":
		if d.FixedMs < 0 {
			return fmt.Errorf("%w: negative fixed duration %d", ErrInvalidSpec, d.FixedMs)
		}
	case KindPert:
		if d.Pert == nil {
			return fmt.Errorf("%w: pert distribution without estimate", ErrInvalidSpec)
		}
		return d.Pert.Validate()
	case KindUniform:
		if d.MinMs < 0 || d.MaxMs < d.MinMs {
			return fmt.Errorf("%w: uniform bounds (%d, %d)", ErrInvalidSpec, d.MinMs, d.MaxMs)
		}
	case KindTriangular:
		if d.MinMs < 0 || d.ModeMs < d.MinMs || d.MaxMs < d.ModeMs {
			return fmt.Errorf("%w: triangular parameters (%d, %d, %d)", ErrInvalidSpec, d.MinMs, d.ModeMs, d.MaxMs)
		}
	case KindLogNormal:
		if d.Sigma < 0 {
			return fmt.Errorf("%w: lognormal sigma %f", ErrInvalidSpec, d.Sigma)
		}
	default:
		return fmt.Errorf("%w: unknown distribution kind %q", ErrInvalidSpec, d.Kind)
	}
	return nil
}

// MeanMs returns the expected duration.
func (d DurationDistribution) MeanMs() float64 {
	switch d.Kind {
	case KindPert:
		return d.Pert.MeanMs()
	case KindUniform:
		return float64(d.MinMs+d.MaxMs) / 2
	case KindTriangular:
		return float64(d.MinMs+d.ModeMs+d.MaxMs) / 3
	case KindLogNormal:
		return math.Exp(d.Mu + d.Sigma*d.Sigma/2)
	default:
		return float64(d.FixedMs)
	}
}

// Quantile returns the duration at the given confidence level.
func (d DurationDistribution) Quantile(confidence float64) int64 {
	c := clampUnit(confidence)
	switch d.Kind {
	case KindPert:
		return d.Pert.Quantile(c)
	case KindUniform:
		if d.MaxMs == d.MinMs {
			return d.MinMs
		}
		u := distuv.Uniform{Min: float64(d.MinMs), Max: float64(d.MaxMs)}
		return int64(u.Quantile(c))
	case KindTriangular:
		if d.MaxMs == d.MinMs {
			return d.MinMs
		}
		t := distuv.NewTriangle(float64(d.MinMs), float64(d.MaxMs), float64(d.ModeMs), nil)
		return int64(t.Quantile(c))
	case KindLogNormal:
		ln := distuv.LogNormal{Mu: d.Mu, Sigma: d.Sigma}
		return int64(ln.Quantile(c))
	default:
		return d.FixedMs
	}
}

// P95 returns the 95th percentile duration.
func (d DurationDistribution) P95() int64 { return d.Quantile(0.95) }
