package timespec

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// PertEstimate is a three-point (optimistic, most likely, pessimistic)
// duration estimate. Mean and quantiles follow the Beta-PERT
// approximation: the underlying Beta distribution on [O, P] has
// shape parameters alpha = 1 + 4(M-O)/(P-O) and
// beta = 1 + 4(P-M)/(P-O), which yields the classic mean
// (O + 4M + P) / 6.
type PertEstimate struct {
	OptimisticMs  int64 `json:"optimistic_ms"`
	MostLikelyMs  int64 `json:"most_likely_ms"`
	PessimisticMs int64 `json:"pessimistic_ms"`
}

// NewPert validates and returns a PERT estimate. The triple must
// satisfy 0 <= O <= M <= P.
func NewPert(optimisticMs, mostLikelyMs, pessimisticMs int64) (PertEstimate, error) {
	p := PertEstimate{OptimisticMs: optimisticMs, MostLikelyMs: mostLikelyMs, PessimisticMs: pessimisticMs}
	return p, p.Validate()
}

// FromVariance builds a symmetric estimate around base with the given
// variance ratio, e.g. FromVariance(1000, 0.2) => O=800, M=1000, P=1200.
func FromVariance(baseMs int64, ratio float64) PertEstimate {
	spread := int64(float64(baseMs) * ratio)
	return PertEstimate{OptimisticMs: baseMs - spread, MostLikelyMs: baseMs, PessimisticMs: baseMs + spread}
}

// Symmetric builds an estimate with equal spread on both sides of the
// most likely value.
func Symmetric(mostLikelyMs, spreadMs int64) PertEstimate {
	return PertEstimate{OptimisticMs: mostLikelyMs - spreadMs, MostLikelyMs: mostLikelyMs, PessimisticMs: mostLikelyMs + spreadMs}
}

// Validate checks the O <= M <= P ordering.
func (p PertEstimate) Validate() error {
	if p.OptimisticMs < 0 {
		return fmt.Errorf("%w: negative optimistic duration %d", ErrInvalidSpec, p.OptimisticMs)
	}
	if p.OptimisticMs > p.MostLikelyMs || p.MostLikelyMs > p.PessimisticMs {
		return fmt.Errorf("%w: pert triple must satisfy optimistic <= most likely <= pessimistic, got (%d, %d, %d)",
			ErrInvalidSpec, p.OptimisticMs, p.MostLikelyMs, p.PessimisticMs)
	}
	return nil
}

// MeanMs returns the Beta-PERT expected duration (O + 4M + P) / 6.
func (p PertEstimate) MeanMs() float64 {
	return (float64(p.OptimisticMs) + 4*float64(p.MostLikelyMs) + float64(p.PessimisticMs)) / 6
}

// StdDevMs returns the PERT standard deviation (P - O) / 6.
func (p PertEstimate) StdDevMs() float64 {
	return float64(p.PessimisticMs-p.OptimisticMs) / 6
}

// VarianceMs returns the squared standard deviation.
func (p PertEstimate) VarianceMs() float64 {
	sd := p.StdDevMs()
	return sd * sd
}

func (p PertEstimate) beta() distuv.Beta {
	span := float64(p.PessimisticMs - p.OptimisticMs)
	mode := float64(p.MostLikelyMs - p.OptimisticMs)
	return distuv.Beta{
		Alpha: 1 + 4*mode/span,
		Beta:  1 + 4*(span-mode)/span,
	}
}

// Quantile returns the duration at the given confidence level in
// (0, 1), computed from the scaled Beta distribution. The result is
// always within [O, P].
func (p PertEstimate) Quantile(confidence float64) int64 {
	if p.PessimisticMs == p.OptimisticMs {
		return p.MostLikelyMs
	}
	q := p.beta().Quantile(clampUnit(confidence))
	span := float64(p.PessimisticMs - p.OptimisticMs)
	return p.OptimisticMs + int64(q*span)
}

// P50 returns the median duration.
func (p PertEstimate) P50() int64 { return p.Quantile(0.50) }

// P85 returns the 85th percentile duration.
func (p PertEstimate) P85() int64 { return p.Quantile(0.85) }

// P95 returns the 95th percentile duration.
func (p PertEstimate) P95() int64 { return p.Quantile(0.95) }

// CompletionProbability returns the probability that the activity
// completes within durationMs.
func (p PertEstimate) CompletionProbability(durationMs int64) float64 {
	if p.PessimisticMs == p.OptimisticMs {
		if durationMs >= p.MostLikelyMs {
			return 1
		}
		return 0
	}
	span := float64(p.PessimisticMs - p.OptimisticMs)
	x := (float64(durationMs) - float64(p.OptimisticMs)) / span
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return p.beta().CDF(x)
}

func clampUnit(v float64) float64 {
	switch {
	case v <= 0:
		return 1e-9
	case v >= 1:
		return 1 - 1e-9
	default:
		return v
	}
}
